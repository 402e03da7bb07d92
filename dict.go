// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package fleck

import (
	"bytes"
	"sort"
)

// Dict is a view of an encoded dict: alternating key/value slots
// sorted by key. Lookup is a binary search over the key slots, so the
// comparator here must match the encoder's sort order exactly: plain
// byte-wise comparison of the UTF-8 key bytes.
type Dict struct {
	buf   []byte
	first int
	count int
	width int
	wide  bool
}

// AsDict returns the dict stored in v.
func (v Value) AsDict() (Dict, error) {
	if v.Type() != TypeDict {
		return Dict{}, v.mismatch(TypeDict)
	}
	h, err := readCollHeader(v.buf, v.off)
	if err != nil {
		return Dict{}, err
	}
	return Dict{buf: v.buf, first: h.first, count: h.count, width: h.width, wide: h.wide}, nil
}

// Len returns the number of entries, read from the header.
func (d Dict) Len() int { return d.count }

// keyBytes returns the key bytes of entry i, or nil when the key slot
// does not hold a string.
func (d Dict) keyBytes(i int) []byte {
	kv, ok := loadSlot(d.buf, d.first+2*i*d.width, d.wide)
	if !ok || kv.Type() != TypeString {
		return nil
	}
	p, err := kv.payload()
	if err != nil {
		return nil
	}
	return p
}

// Get looks up key and returns its value, or an absent value when the
// key is not present. O(log n). If a malformed buffer carries
// duplicate keys, the first match in sort order wins.
func (d Dict) Get(key string) (Value, bool) {
	want := []byte(key)
	i := sort.Search(d.count, func(i int) bool {
		return bytes.Compare(d.keyBytes(i), want) >= 0
	})
	if i >= d.count || !bytes.Equal(d.keyBytes(i), want) {
		return Value{}, false
	}
	return loadSlot(d.buf, d.first+(2*i+1)*d.width, d.wide)
}

// Iter returns a fresh iterator over the entries in stored (sorted)
// order. Independent iterators keep independent cursors.
func (d Dict) Iter() *DictIter {
	return &DictIter{d: d, i: -1}
}

// DictIter lazily walks a dict's entries. Usage:
//
//	for it := dict.Iter(); it.Next(); {
//		use(it.Key(), it.Value())
//	}
type DictIter struct {
	d   Dict
	i   int
	key []byte
	cur Value
}

// Next advances to the next entry, returning false when exhausted.
func (it *DictIter) Next() bool {
	it.i++
	if it.i >= it.d.count {
		return false
	}
	it.key = it.d.keyBytes(it.i)
	it.cur, _ = loadSlot(it.d.buf, it.d.first+(2*it.i+1)*it.d.width, it.d.wide)
	return true
}

// Key returns the current entry's key.
func (it *DictIter) Key() string { return string(it.key) }

// KeyBytes returns the current entry's key without copying. Callers
// must not modify it.
func (it *DictIter) KeyBytes() []byte { return it.key }

// Value returns the current entry's value.
func (it *DictIter) Value() Value { return it.cur }
