// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

// fleckdump prints the contents of a badger-backed document store.
// Document entries are rendered as JSON, key index entries as the
// bitmap of sequence numbers they hold.
package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/sroar"
	"github.com/pkg/errors"
	"go.mindeco.de/logging"

	"github.com/ssbc/fleck"
	jsoncodec "github.com/ssbc/fleck/codec/json"
)

var check = logging.CheckFatal

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <dir> [idx-prefix]\n", os.Args[0])
		os.Exit(1)
	}
	logging.SetupLogging(nil)

	dir := os.Args[1]

	idxPrefix := []byte("idx-")
	if len(os.Args) > 2 {
		idxPrefix = []byte(os.Args[2])
	}

	db, err := badger.Open(badger.DefaultOptions(dir))
	check(errors.Wrap(err, "error opening database"))

	jc := jsoncodec.New()

	err = db.View(func(txn *badger.Txn) error {
		iter := txn.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			it := iter.Item()
			k := it.KeyCopy(nil)

			err := it.Value(func(v []byte) error {
				if bytes.HasPrefix(k, idxPrefix) {
					bmap := sroar.FromBuffer(v)
					fmt.Printf("%q: %s\n", string(k[len(idxPrefix):]), bmap.String())
					return nil
				}

				root, err := fleck.Decode(v)
				if err != nil {
					fmt.Printf("%x: %d bytes (not a document: %s)\n", k, len(v), err)
					return nil
				}

				out, err := jc.FromFleck(root)
				if err != nil {
					return errors.Wrapf(err, "error rendering document %x", k)
				}

				if len(k) >= 8 {
					seq := binary.BigEndian.Uint64(k[len(k)-8:])
					fmt.Printf("%d: %s\n", seq, out)
				} else {
					fmt.Printf("%x: %s\n", k, out)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	check(err)

	check(db.Close())
}
