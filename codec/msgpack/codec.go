// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

// Package msgpack converts between fleck documents and MessagePack.
package msgpack // import "github.com/ssbc/fleck/codec/msgpack"

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"

	"github.com/ssbc/fleck"
	cdc "github.com/ssbc/fleck/codec"
)

// New returns a codec for MessagePack.
func New() cdc.Codec {
	var h codec.MsgpackHandle
	h.WriteExt = true
	h.RawToString = true
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	h.SignedInteger = true
	return bridge{h: &h}
}

type bridge struct {
	h *codec.MsgpackHandle
}

func (b bridge) FromFleck(v fleck.Value) ([]byte, error) {
	goval, err := v.Interface()
	if err != nil {
		return nil, errors.Wrap(err, "msgpack: error reading document")
	}

	var out []byte
	err = codec.NewEncoderBytes(&out, b.h).Encode(goval)
	return out, errors.Wrap(err, "msgpack: error marshaling document")
}

func (b bridge) ToFleck(data []byte) ([]byte, error) {
	var goval interface{}
	if err := codec.NewDecoderBytes(data, b.h).Decode(&goval); err != nil {
		return nil, errors.Wrap(err, "msgpack: error parsing input")
	}

	buf, err := fleck.Marshal(goval)
	return buf, errors.Wrap(err, "msgpack: error encoding document")
}
