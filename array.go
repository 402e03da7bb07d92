// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package fleck

// Array is a view of an encoded array: a run of fixed-width slots
// holding inline values or backward pointers. Indexing is O(1).
type Array struct {
	buf   []byte
	first int
	count int
	width int
	wide  bool
}

// AsArray returns the array stored in v.
func (v Value) AsArray() (Array, error) {
	if v.Type() != TypeArray {
		return Array{}, v.mismatch(TypeArray)
	}
	h, err := readCollHeader(v.buf, v.off)
	if err != nil {
		return Array{}, err
	}
	return Array{buf: v.buf, first: h.first, count: h.count, width: h.width, wide: h.wide}, nil
}

// Len returns the element count, read from the header.
func (a Array) Len() int { return a.count }

// Get returns the element at index i, or an absent value when i is out
// of range.
func (a Array) Get(i int) (Value, bool) {
	if i < 0 || i >= a.count {
		return Value{}, false
	}
	return loadSlot(a.buf, a.first+i*a.width, a.wide)
}

// loadSlot interprets the slot at off: either an inline value or a
// pointer to follow. Pointer resolution cannot fail on a validated
// buffer; on a trusted-decoded corrupt one it degrades to absent.
func loadSlot(b []byte, off int, wide bool) (Value, bool) {
	if off+2 > len(b) {
		return Value{}, false
	}
	if !isPointer(b[off]) {
		return Value{buf: b, off: off}, true
	}
	target, err := resolvePointer(b, off, wide)
	if err != nil {
		return Value{}, false
	}
	return Value{buf: b, off: target}, true
}

// Iter returns a fresh iterator over the elements in stored order.
// Independent iterators keep independent cursors.
func (a Array) Iter() *ArrayIter {
	return &ArrayIter{a: a, i: -1}
}

// ArrayIter lazily walks an array. Usage:
//
//	for it := arr.Iter(); it.Next(); {
//		use(it.Value())
//	}
type ArrayIter struct {
	a   Array
	i   int
	cur Value
}

// Next advances to the next element, returning false when exhausted.
func (it *ArrayIter) Next() bool {
	it.i++
	if it.i >= it.a.count {
		return false
	}
	it.cur, _ = it.a.Get(it.i)
	return true
}

// Value returns the element Next advanced to.
func (it *ArrayIter) Value() Value { return it.cur }

// Index returns the current element's index.
func (it *ArrayIter) Index() int { return it.i }
