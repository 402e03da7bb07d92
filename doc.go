// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

/*
Package fleck implements a compact, self-describing binary encoding for
semi-structured values: null, booleans, integers, floats, strings, byte
blobs, arrays and dicts. Documents are built bottom-up by an Encoder
and read back through zero-copy views, so a single leaf of a large
document can be fetched without parsing the rest of it.

The format stores small values inline in a 2-byte header and larger
ones behind backward pointers. Pointers come in two widths: narrow
(2 bytes, distance counted in 2-byte units) and wide (4 bytes, distance
in bytes), picked per reference from the actual backward distance.
Because leaves are written before the values referencing them, decoding
never needs lookahead and bounds checks are a subtraction and a range
test. Repeated strings and blobs are written once and shared through
pointers.

Arrays are a count plus fixed-width slots, giving O(1) indexing. Dicts
keep their entries sorted by byte-wise key comparison, giving O(log n)
lookup via binary search; the Encoder establishes that order and the
decoder relies on it.

Reading is allocation-free and safe on untrusted input: Decode
validates all headers and pointers up front and the accessors return
errors instead of panicking. A finalized buffer is immutable, so any
number of goroutines may share its views, iterators and navigators
without locking. An Encoder, in contrast, is a single-writer object.
*/
package fleck // import "github.com/ssbc/fleck"
