// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

// Package codec bridges fleck documents to other serialization
// formats. The core never depends on these; they are layered on top of
// the public decoder and encoder.
package codec // import "github.com/ssbc/fleck/codec"

import (
	"github.com/ssbc/fleck"
)

// Codec converts between fleck documents and one external format.
type Codec interface {
	// FromFleck renders the document rooted at v in the codec's
	// format.
	FromFleck(v fleck.Value) ([]byte, error)

	// ToFleck parses data and re-encodes it as a finished fleck
	// document.
	ToFleck(data []byte) ([]byte, error)
}
