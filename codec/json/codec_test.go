// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package json

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssbc/fleck"
)

func TestJSONRoundTrip(t *testing.T) {
	r := require.New(t)

	const in = `{"name":"fleck","n":9007199254740993,"pi":3.25,"ok":true,"none":null,"tags":["a","b","a"]}`

	c := New()
	buf, err := c.ToFleck([]byte(in))
	r.NoError(err)

	root, err := fleck.Decode(buf)
	r.NoError(err)

	// large integers survive without float rounding
	v, ok := root.Fetch("n")
	r.True(ok)
	n, err := v.AsInt()
	r.NoError(err)
	r.Equal(int64(9007199254740993), n)

	v, ok = root.Fetch("tags", 2)
	r.True(ok)
	s, err := v.AsString()
	r.NoError(err)
	r.Equal("a", s)

	out, err := c.FromFleck(root)
	r.NoError(err)
	r.JSONEq(in, string(out))
}

func TestJSONUint64(t *testing.T) {
	r := require.New(t)

	buf, err := New().ToFleck([]byte(`18446744073709551615`))
	r.NoError(err)

	root, err := fleck.Decode(buf)
	r.NoError(err)
	u, err := root.AsUint()
	r.NoError(err)
	r.Equal(uint64(18446744073709551615), u)
}

func TestJSONUndefinedRendersAsNull(t *testing.T) {
	r := require.New(t)

	e := fleck.NewEncoder()
	r.NoError(e.BeginDict())
	r.NoError(e.WriteKey("u"))
	r.NoError(e.WriteUndefined())
	r.NoError(e.WriteKey("n"))
	r.NoError(e.WriteNull())
	r.NoError(e.EndDict())
	buf, err := e.Finish()
	r.NoError(err)

	root, err := fleck.Decode(buf)
	r.NoError(err)

	out, err := New().FromFleck(root)
	r.NoError(err)
	r.JSONEq(`{"u":null,"n":null}`, string(out))
}

func TestJSONRejectsGarbage(t *testing.T) {
	r := require.New(t)

	for _, in := range []string{``, `{`, `{"a":1}tail`, `nope`} {
		_, err := New().ToFleck([]byte(in))
		r.Error(err, "input %q", in)
	}
}
