// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

// Package mkv stores entries in a single-file modernc.org/kv database.
package mkv

import (
	"os"

	"github.com/pkg/errors"
	"modernc.org/kv"

	"github.com/ssbc/fleck/internal/persist"
)

type Saver struct {
	db *kv.DB
}

var _ persist.Saver = (*Saver)(nil)

func (s Saver) Close() error {
	return s.db.Close()
}

func New(path string) (*Saver, error) {
	var s Saver

	opts := &kv.Options{}
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		s.db, err = kv.Create(path, opts)
		if err != nil {
			return nil, errors.Wrap(err, "persist/mkv: failed to create db")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "persist/mkv: failed to stat path")
	} else {
		s.db, err = kv.Open(path, opts)
		if err != nil {
			return nil, errors.Wrap(err, "persist/mkv: failed to open db")
		}
	}

	return &s, nil
}
