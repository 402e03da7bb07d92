// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

// Package docstore keeps a sequence of encoded fleck documents on a
// persist.Saver backend. Documents are validated once on append and
// read back as zero-copy views, individually with Get and Fetch or as
// streams using Query.
package docstore // import "github.com/ssbc/fleck/docstore"

import (
	luigi "github.com/ssbc/go-luigi"

	"github.com/ssbc/fleck"
)

// Seq is the sequence number of a document in the store.
type Seq int64

// Seq returns itself, so wrapped and bare sequence numbers can be used
// interchangeably.
func (s Seq) Seq() Seq {
	return s
}

// SeqEmpty is the current sequence number of an empty store.
const SeqEmpty Seq = -1

// Store holds an append-only sequence of documents.
type Store interface {
	// Seq returns an observable that holds the current sequence number.
	Seq() luigi.Observable

	// Append validates the encoded document and stores it under the
	// next sequence number.
	Append(doc []byte) (Seq, error)

	// Get returns the document with sequence number seq.
	Get(seq Seq) (fleck.Value, error)

	// Fetch looks up a path inside the document at seq. A path that
	// does not reach a value reports false, not an error.
	Fetch(seq Seq, path ...interface{}) (fleck.Value, bool, error)

	// Query returns a stream of documents constrained by the passed
	// query specification.
	Query(...QuerySpec) (luigi.Source, error)

	Close() error
}

type oob struct{}

// OOB is an out of bounds error
var OOB oob

func (oob) Error() string {
	return "out of bounds"
}

// IsOutOfBounds returns whether a particular error is an out-of-bounds error
func IsOutOfBounds(err error) bool {
	_, ok := err.(oob)
	return ok
}
