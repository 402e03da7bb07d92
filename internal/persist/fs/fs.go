// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

// Package fs stores each entry as its own file, named by the hex form
// of the key.
package fs

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ssbc/fleck/internal/persist"
)

type Saver struct {
	base string
}

var _ persist.Saver = (*Saver)(nil)

func New(base string) *Saver {
	return &Saver{base: base}
}

func (s Saver) fileName(key persist.Key) string {
	return filepath.Join(s.base, hex.EncodeToString(key))
}

func (s Saver) Put(key persist.Key, data []byte) error {
	if err := os.MkdirAll(s.base, 0700); err != nil {
		return errors.Wrap(err, "persist/fs: failed to create base directory")
	}

	// write-then-rename so a crash never leaves a half-written entry
	tmp, err := ioutil.TempFile(s.base, "put-*")
	if err != nil {
		return errors.Wrap(err, "persist/fs: failed to create temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "persist/fs: failed to write data")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "persist/fs: failed to close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.fileName(key)), "persist/fs: failed to rename temp file")
}

func (s Saver) Get(key persist.Key) ([]byte, error) {
	data, err := ioutil.ReadFile(s.fileName(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persist.ErrNotFound
		}
		return nil, errors.Wrap(err, "persist/fs: failed to read entry")
	}
	return data, nil
}

func (s Saver) Delete(key persist.Key) error {
	err := os.Remove(s.fileName(key))
	if os.IsNotExist(err) {
		return persist.ErrNotFound
	}
	return errors.Wrap(err, "persist/fs: failed to remove entry")
}

func (s Saver) List() ([]persist.Key, error) {
	entries, err := ioutil.ReadDir(s.base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "persist/fs: failed to read base directory")
	}

	var keys []persist.Key
	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}
		k, err := hex.DecodeString(fi.Name())
		if err != nil {
			continue // temp files and other strays
		}
		keys = append(keys, persist.Key(k))
	}
	return keys, nil
}

func (s Saver) Close() error { return nil }
