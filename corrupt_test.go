// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package fleck

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// exercise walks every reachable part of a decoded document. It is
// used on mutated buffers, so all errors are acceptable; panics are
// not.
func exercise(v Value) {
	switch v.Type() {
	case TypeArray:
		if arr, err := v.AsArray(); err == nil {
			for it := arr.Iter(); it.Next(); {
				exercise(it.Value())
			}
			arr.Get(-1)
			arr.Get(arr.Len())
		}
	case TypeDict:
		if d, err := v.AsDict(); err == nil {
			for it := d.Iter(); it.Next(); {
				_ = it.Key()
				exercise(it.Value())
			}
			d.Get("probe")
		}
	default:
		v.AsBool()
		v.AsInt()
		v.AsUint()
		v.AsFloat()
		v.AsString()
		v.AsBytes()
	}
}

func corpus(t *testing.T) [][]byte {
	r := require.New(t)

	var out [][]byte
	for _, doc := range []interface{}{
		int64(-5),
		"a string that is stored behind a pointer",
		[]interface{}{int64(1), "two", 3.0, nil, true},
		map[string]interface{}{
			"nested": map[string]interface{}{
				"deep": []interface{}{[]byte("payload"), "shared", "shared"},
			},
			"n": int64(70000),
		},
	} {
		buf, err := Marshal(doc)
		r.NoError(err)
		out = append(out, buf)
	}
	return out
}

func TestTruncationSafety(t *testing.T) {
	for _, buf := range corpus(t) {
		for i := 0; i <= len(buf); i++ {
			v, err := Decode(buf[:i])
			if err != nil {
				continue
			}
			exercise(v)
			v.Fetch("nested", "deep", 0)
		}
	}
}

func TestMutationSafety(t *testing.T) {
	for _, buf := range corpus(t) {
		for i := range buf {
			for _, mask := range []byte{0xFF, 0x80, 0x40, 0x08, 0x01} {
				mut := append([]byte(nil), buf...)
				mut[i] ^= mask

				v, err := Decode(mut)
				if err != nil {
					continue
				}
				// mutation survived validation (e.g. payload bytes);
				// reading it must still be safe
				exercise(v)
			}
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	r := require.New(t)

	for _, data := range [][]byte{
		nil,
		{},
		{0x30},             // odd length
		{0x00, 0x00, 0x00}, // odd length
		{0x80, 0x01},       // pointer past the start
		{0x80, 0x00},       // zero distance
		{0xC0, 0x01},       // external pointer
		{0x30, 0x00, 0x30, 0x00}, // trailing value is not a pointer
		// string with a malformed varint length (10th byte overflows)
		{0x4F, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x7F, 0x00, 0x80, 0x06},
	} {
		_, err := Decode(data)
		r.Error(err, "%x", data)
		r.True(IsCorrupt(err), "%x: %v", data, err)
	}
}

func TestDecodeTrustedStillBounded(t *testing.T) {
	r := require.New(t)

	buf, err := Marshal(map[string]interface{}{"k": "value beyond inline size"})
	r.NoError(err)

	v, err := DecodeTrusted(buf)
	r.NoError(err)
	got, ok := v.Fetch("k")
	r.True(ok)
	s, err := got.AsString()
	r.NoError(err)
	r.Equal("value beyond inline size", s)

	// truncating body bytes off a trusted decode must not read out of
	// bounds either
	for i := 2; i+2 <= len(buf); i += 2 {
		tail := make([]byte, 0, i+2)
		tail = append(tail, buf[:i]...)
		tail = append(tail, buf[len(buf)-2:]...)
		if v, err := DecodeTrusted(tail); err == nil {
			exercise(v)
		}
	}
}
