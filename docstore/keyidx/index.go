// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

// Package keyidx maintains an inverted index from top-level dict keys
// to the sequence numbers of the documents that carry them. Bitmaps are
// kept in memory and persisted through a persist.Saver.
package keyidx // import "github.com/ssbc/fleck/docstore/keyidx"

import (
	"sync"

	"github.com/dgraph-io/sroar"
	"github.com/pkg/errors"

	"github.com/ssbc/fleck"
	"github.com/ssbc/fleck/internal/persist"
)

type Index struct {
	mu sync.Mutex

	saver   persist.Saver
	bitmaps map[string]*sroar.Bitmap
}

// Open loads all persisted bitmaps from the saver.
func Open(saver persist.Saver) (*Index, error) {
	ix := &Index{
		saver:   saver,
		bitmaps: make(map[string]*sroar.Bitmap),
	}

	keys, err := saver.List()
	if err != nil {
		return nil, errors.Wrap(err, "keyidx: failed to list stored bitmaps")
	}
	for _, k := range keys {
		data, err := saver.Get(k)
		if err != nil {
			return nil, errors.Wrapf(err, "keyidx: failed to load bitmap for %q", string(k))
		}
		ix.bitmaps[string(k)] = sroar.FromBuffer(data)
	}

	return ix, nil
}

// Add records seq under every top-level key of the document. Roots
// that are not dicts leave the index untouched.
func (ix *Index) Add(seq uint64, root fleck.Value) error {
	d, err := root.AsDict()
	if err != nil {
		if fleck.IsTypeMismatch(err) {
			return nil
		}
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	for it := d.Iter(); it.Next(); {
		key := it.Key()
		bm, ok := ix.bitmaps[key]
		if !ok {
			bm = sroar.NewBitmap()
			ix.bitmaps[key] = bm
		}
		bm.Set(seq)

		if err := ix.saver.Put(persist.Key(key), bm.ToBuffer()); err != nil {
			return errors.Wrapf(err, "keyidx: failed to persist bitmap for %q", key)
		}
	}
	return nil
}

// Keys returns every indexed key.
func (ix *Index) Keys() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	keys := make([]string, 0, len(ix.bitmaps))
	for k := range ix.bitmaps {
		keys = append(keys, k)
	}
	return keys
}

// Has reports whether the document at seq carries key.
func (ix *Index) Has(key string, seq uint64) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	bm, ok := ix.bitmaps[key]
	return ok && bm.Contains(seq)
}

// SeqsWith returns the sequence numbers of all documents carrying key,
// in ascending order.
func (ix *Index) SeqsWith(key string) []uint64 {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	bm, ok := ix.bitmaps[key]
	if !ok {
		return nil
	}
	return bm.ToArray()
}

// Close closes the underlying saver.
func (ix *Index) Close() error {
	return ix.saver.Close()
}
