// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package fleck // import "github.com/ssbc/fleck"

import (
	"fmt"

	"github.com/pkg/errors"
)

// CorruptError reports malformed input: an unknown header, a truncated
// payload, or a pointer that leaves the buffer. The decode path returns
// it instead of ever reading out of bounds.
type CorruptError struct {
	Offset int
	Reason string
}

func (e CorruptError) Error() string {
	return fmt.Sprintf("fleck: corrupt data at offset %d: %s", e.Offset, e.Reason)
}

func corruptf(off int, format string, args ...interface{}) error {
	return CorruptError{Offset: off, Reason: fmt.Sprintf(format, args...)}
}

// IsCorrupt returns whether an error was caused by malformed input.
func IsCorrupt(err error) bool {
	_, ok := errors.Cause(err).(CorruptError)
	return ok
}

// TypeMismatchError is returned by the typed accessors when the stored
// value has a different type than the requested one.
type TypeMismatchError struct {
	Want, Got ValueType
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("fleck: type mismatch: have %s, want %s", e.Got, e.Want)
}

// IsTypeMismatch returns whether an error came from an accessor called
// on a value of the wrong type.
func IsTypeMismatch(err error) bool {
	_, ok := errors.Cause(err).(TypeMismatchError)
	return ok
}

// Encoder misuse. These are programmer errors, reported synchronously
// so they can't silently corrupt output.
var (
	ErrEncoderFinished = errors.New("fleck: encoder already finished")
	ErrRootWritten     = errors.New("fleck: document already has a root value")
	ErrArrayNotOpen    = errors.New("fleck: no open array")
	ErrDictNotOpen     = errors.New("fleck: no open dict")
	ErrKeyExpected     = errors.New("fleck: dict expects a key before this value")
	ErrValueExpected   = errors.New("fleck: dict key is still waiting for its value")
	ErrOpenCollection  = errors.New("fleck: unclosed array or dict")
	ErrEmptyDocument   = errors.New("fleck: no value written")
	ErrTooLarge        = errors.New("fleck: document exceeds maximum encodable size")
)
