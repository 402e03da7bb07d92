// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

// Package persist defines a small key-value saver interface used by the
// document store and the key index to keep encoded state on disk.
package persist

import "errors"

type Key []byte

var ErrNotFound = errors.New("persist: item not found")

type Saver interface {
	Put(Key, []byte) error
	Get(Key) ([]byte, error)
	Delete(Key) error

	// List returns all stored keys, in unspecified order.
	List() ([]Key, error)

	Close() error
}
