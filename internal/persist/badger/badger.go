// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

// Package badger stores entries in a badger key-value database, either
// one it owns or a bucket inside a shared one.
package badger

import (
	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	"github.com/ssbc/fleck/internal/persist"
)

type Saver struct {
	db *badger.DB

	// set on shared instances; keys are stored prefixed and the db is
	// owned by the caller
	prefix []byte
	shared bool
}

var _ persist.Saver = (*Saver)(nil)

func New(path string) (*Saver, error) {
	db, err := badger.Open(BadgerOpts(path))
	if err != nil {
		return nil, errors.Wrapf(err, "persist/badger: failed to open db at %s", path)
	}
	return &Saver{db: db}, nil
}

// NewShared stores entries under prefix inside db. Multiple buckets can
// share one db without seeing each other's keys; closing a shared saver
// does not close the db.
func NewShared(db *badger.DB, prefix []byte) (*Saver, error) {
	if len(prefix) == 0 {
		return nil, errors.New("persist/badger: shared bucket needs a prefix")
	}
	return &Saver{db: db, prefix: prefix, shared: true}, nil
}

func (s *Saver) Close() error {
	if s.shared {
		return nil
	}
	return s.db.Close()
}
