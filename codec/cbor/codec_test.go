// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package cbor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssbc/fleck"
)

func TestCBORRoundTrip(t *testing.T) {
	r := require.New(t)

	doc := map[string]interface{}{
		"name": "fleck",
		"n":    int64(-70000),
		"pi":   3.25,
		"ok":   true,
		"none": nil,
		"blob": []byte{0xDE, 0xAD},
		"tags": []interface{}{"a", "b", "a"},
	}
	buf, err := fleck.Marshal(doc)
	r.NoError(err)
	root, err := fleck.Decode(buf)
	r.NoError(err)

	c := New()
	wire, err := c.FromFleck(root)
	r.NoError(err)

	back, err := c.ToFleck(wire)
	r.NoError(err)

	got, err := fleck.Unmarshal(back)
	r.NoError(err)
	r.Equal(doc, got)
}

func TestCBORRejectsGarbage(t *testing.T) {
	r := require.New(t)

	_, err := New().ToFleck([]byte{0xFF, 0xFF, 0xFF})
	r.Error(err)
}
