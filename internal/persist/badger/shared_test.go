// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package badger

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/ssbc/fleck/internal/persist"
)

func TestGetDoesNotMaskErrors(t *testing.T) {
	r := require.New(t)

	path := filepath.Join("testrun", t.Name())
	os.RemoveAll(path)

	s, err := New(path)
	r.NoError(err)

	k := persist.Key("some-key")
	r.NoError(s.Put(k, []byte("some-data")))

	// a missing key is the only condition reported as not-found
	_, err = s.Get(persist.Key("missing"))
	r.Equal(persist.ErrNotFound, err)

	// reads against the closed db fail loudly instead
	r.NoError(s.Close())
	_, err = s.Get(k)
	r.Error(err)
	r.NotEqual(persist.ErrNotFound, err)
	r.NotEqual(persist.ErrNotFound, errors.Cause(err))
}

func TestSharedBadger(t *testing.T) {
	r := require.New(t)

	path := filepath.Join("testrun", t.Name())
	os.RemoveAll(path)
	os.MkdirAll(path, 0700)

	o := BadgerOpts(path)
	db, err := badger.Open(o)
	r.NoError(err)

	// each bucket can use keys as if it were alone
	collidingKey := persist.Key("meins")

	fooBucket, err := NewShared(db, []byte("foo"))
	r.NoError(err)

	barBucket, err := NewShared(db, []byte("bar"))
	r.NoError(err)

	fooData := make([]byte, 32)
	rand.Read(fooData)
	err = fooBucket.Put(collidingKey, fooData)
	r.NoError(err)

	barData := make([]byte, 32)
	rand.Read(barData)
	err = barBucket.Put(collidingKey, barData)
	r.NoError(err)

	// each sees just its own key
	fooKeys, err := fooBucket.List()
	r.NoError(err)
	r.Len(fooKeys, 1)
	r.Equal(collidingKey, fooKeys[0])

	barKeys, err := barBucket.List()
	r.NoError(err)
	r.Len(barKeys, 1)
	r.Equal(collidingKey, barKeys[0])

	// and they didnt overwrite each other
	fooGot, err := fooBucket.Get(collidingKey)
	r.NoError(err)
	r.Equal(fooData, fooGot)

	barGot, err := barBucket.Get(collidingKey)
	r.NoError(err)
	r.Equal(barData, barGot)

	// closing a shared bucket is a noop
	r.NoError(fooBucket.Close())
	r.NoError(barBucket.Close())

	r.False(db.IsClosed())
	r.NoError(db.Close())

	// reopen
	db, err = badger.Open(o)
	r.NoError(err)

	fooBucket, err = NewShared(db, []byte("foo"))
	r.NoError(err)

	fooKeys, err = fooBucket.List()
	r.NoError(err)
	r.Len(fooKeys, 1)
	r.Equal(collidingKey, fooKeys[0])

	// manual lookup of the prefixed keys
	var hasFoo, hasBar bool
	db.View(func(txn *badger.Txn) error {
		iter := txn.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			k := iter.Item().Key()

			if bytes.Equal(k, []byte("foomeins")) {
				hasFoo = true
			}
			if bytes.Equal(k, []byte("barmeins")) {
				hasBar = true
			}
		}
		return nil
	})

	r.True(hasFoo, "foo not found")
	r.True(hasBar, "bar not found")

	r.NoError(db.Close())
}
