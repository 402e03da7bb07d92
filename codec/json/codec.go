// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

// Package json converts between fleck documents and JSON text.
package json // import "github.com/ssbc/fleck/codec/json"

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ssbc/fleck"
	cdc "github.com/ssbc/fleck/codec"
)

// New returns a codec for JSON text. Integers survive the round trip
// exactly; they are never widened to float64 on the way in.
func New() cdc.Codec {
	return codec{}
}

type codec struct{}

func (codec) FromFleck(v fleck.Value) ([]byte, error) {
	goval, err := v.Interface()
	if err != nil {
		return nil, errors.Wrap(err, "json: error reading document")
	}
	data, err := json.Marshal(goval)
	return data, errors.Wrap(err, "json: error marshaling document")
}

func (codec) ToFleck(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var goval interface{}
	if err := dec.Decode(&goval); err != nil {
		return nil, errors.Wrap(err, "json: error parsing input")
	}
	if dec.More() {
		return nil, errors.New("json: trailing data after document")
	}

	buf, err := fleck.Marshal(denumber(goval))
	return buf, errors.Wrap(err, "json: error encoding document")
}

// denumber replaces json.Number nodes with int64, uint64 or float64,
// whichever fits first.
func denumber(v interface{}) interface{} {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(string(v), 10, 64); err == nil {
			return u
		}
		f, err := v.Float64()
		if err != nil {
			return string(v)
		}
		return f
	case []interface{}:
		for i := range v {
			v[i] = denumber(v[i])
		}
	case map[string]interface{}:
		for k := range v {
			v[k] = denumber(v[k])
		}
	}
	return v
}
