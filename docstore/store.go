// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package docstore

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/pkg/errors"
	luigi "github.com/ssbc/go-luigi"

	"github.com/ssbc/fleck"
	"github.com/ssbc/fleck/docstore/keyidx"
	"github.com/ssbc/fleck/internal/persist"
)

type Option func(*store) error

// WithKeyIndex feeds every appended document into idx. The index is
// owned by the caller and not closed with the store.
func WithKeyIndex(idx *keyidx.Index) Option {
	return func(st *store) error {
		st.idx = idx
		return nil
	}
}

type store struct {
	mu sync.Mutex

	saver  persist.Saver
	seq    luigi.Observable
	cur    Seq
	idx    *keyidx.Index
	closed bool
}

var _ Store = (*store)(nil)

// New opens a store on the passed saver and recovers the current
// sequence number from the stored keys.
func New(saver persist.Saver, opts ...Option) (Store, error) {
	st := &store{
		saver: saver,
		cur:   SeqEmpty,
	}

	for _, o := range opts {
		if err := o(st); err != nil {
			return nil, err
		}
	}

	keys, err := saver.List()
	if err != nil {
		return nil, errors.Wrap(err, "docstore: failed to list stored documents")
	}
	for _, k := range keys {
		if len(k) != 8 {
			continue
		}
		if s := Seq(binary.BigEndian.Uint64(k)); s > st.cur {
			st.cur = s
		}
	}

	st.seq = luigi.NewObservable(st.cur)
	return st, nil
}

func seqKey(s Seq) persist.Key {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(s))
	return k[:]
}

func (st *store) Seq() luigi.Observable {
	return st.seq
}

func (st *store) Append(doc []byte) (Seq, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return SeqEmpty, io.ErrClosedPipe
	}

	// never let a malformed document onto disk; reads trust the store
	root, err := fleck.Decode(doc)
	if err != nil {
		return SeqEmpty, errors.Wrap(err, "docstore: refusing to append invalid document")
	}

	next := st.cur + 1
	if err := st.saver.Put(seqKey(next), doc); err != nil {
		return SeqEmpty, errors.Wrap(err, "docstore: failed to store document")
	}
	if st.idx != nil {
		if err := st.idx.Add(uint64(next), root); err != nil {
			return SeqEmpty, errors.Wrap(err, "docstore: failed to index document")
		}
	}

	st.cur = next
	st.seq.Set(next)
	return next, nil
}

func (st *store) Get(seq Seq) (fleck.Value, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.get(seq)
}

// get expects st.mu to be held.
func (st *store) get(seq Seq) (fleck.Value, error) {
	if st.closed {
		return fleck.Value{}, io.ErrClosedPipe
	}
	if seq < 0 || seq > st.cur {
		return fleck.Value{}, OOB
	}

	doc, err := st.saver.Get(seqKey(seq))
	if err != nil {
		if err == persist.ErrNotFound {
			return fleck.Value{}, OOB
		}
		return fleck.Value{}, errors.Wrap(err, "docstore: failed to load document")
	}

	// validated on append
	return fleck.DecodeTrusted(doc)
}

func (st *store) Fetch(seq Seq, path ...interface{}) (fleck.Value, bool, error) {
	root, err := st.Get(seq)
	if err != nil {
		return fleck.Value{}, false, err
	}
	v, ok := root.Fetch(path...)
	return v, ok, nil
}

func (st *store) Query(specs ...QuerySpec) (luigi.Source, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return nil, io.ErrClosedPipe
	}

	qry := &query{
		log: st,

		gt:  SeqEmpty,
		gte: SeqEmpty,
		lt:  SeqEmpty,
		lte: SeqEmpty,

		limit: -1, //i.e. no limit
	}

	for _, spec := range specs {
		err := spec(qry)
		if err != nil {
			return nil, err
		}
	}

	// the stream covers the documents present now; later appends are
	// not part of it
	qry.resolveWindow(st.cur)
	return qry, nil
}

func (st *store) Close() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return io.ErrClosedPipe // already closed
	}
	st.closed = true
	return st.saver.Close()
}
