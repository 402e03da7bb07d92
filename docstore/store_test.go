// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package docstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	luigi "github.com/ssbc/go-luigi"
	"github.com/stretchr/testify/require"

	"github.com/ssbc/fleck"
	"github.com/ssbc/fleck/internal/persist/fs"
)

func makeStore(t *testing.T) Store {
	base := filepath.Join("testrun", t.Name())
	os.RemoveAll(base)
	st, err := New(fs.New(base))
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func mustDoc(t *testing.T, v interface{}) []byte {
	buf, err := fleck.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestStoreAppendGet(t *testing.T) {
	r := require.New(t)
	st := makeStore(t)
	defer st.Close()

	cur, err := st.Seq().Value()
	r.NoError(err)
	r.Equal(SeqEmpty, cur)

	_, err = st.Get(0)
	r.True(IsOutOfBounds(err))

	seq, err := st.Append(mustDoc(t, map[string]interface{}{"n": int64(1)}))
	r.NoError(err)
	r.Equal(Seq(0), seq)

	seq, err = st.Append(mustDoc(t, map[string]interface{}{"n": int64(2)}))
	r.NoError(err)
	r.Equal(Seq(1), seq)

	cur, err = st.Seq().Value()
	r.NoError(err)
	r.Equal(Seq(1), cur)

	v, err := st.Get(1)
	r.NoError(err)
	n, ok := v.Fetch("n")
	r.True(ok)
	i, err := n.AsInt()
	r.NoError(err)
	r.Equal(int64(2), i)

	_, err = st.Get(2)
	r.True(IsOutOfBounds(err))
	_, err = st.Get(-1)
	r.True(IsOutOfBounds(err))
}

func TestStoreRejectsInvalid(t *testing.T) {
	r := require.New(t)
	st := makeStore(t)
	defer st.Close()

	_, err := st.Append([]byte{0x80, 0x01})
	r.Error(err)
	r.True(fleck.IsCorrupt(err))

	// nothing was stored
	cur, err := st.Seq().Value()
	r.NoError(err)
	r.Equal(SeqEmpty, cur)
}

func TestStoreFetch(t *testing.T) {
	r := require.New(t)
	st := makeStore(t)
	defer st.Close()

	_, err := st.Append(mustDoc(t, map[string]interface{}{
		"user": map[string]interface{}{"name": "ada"},
	}))
	r.NoError(err)

	v, ok, err := st.Fetch(0, "user", "name")
	r.NoError(err)
	r.True(ok)
	s, err := v.AsString()
	r.NoError(err)
	r.Equal("ada", s)

	_, ok, err = st.Fetch(0, "user", "height")
	r.NoError(err)
	r.False(ok)

	_, _, err = st.Fetch(9, "user")
	r.True(IsOutOfBounds(err))
}

func TestStoreReopen(t *testing.T) {
	r := require.New(t)

	base := filepath.Join("testrun", t.Name())
	os.RemoveAll(base)

	st, err := New(fs.New(base))
	r.NoError(err)
	for i := 0; i < 5; i++ {
		_, err = st.Append(mustDoc(t, map[string]interface{}{"i": int64(i)}))
		r.NoError(err)
	}
	r.NoError(st.Close())

	st, err = New(fs.New(base))
	r.NoError(err)
	defer st.Close()

	cur, err := st.Seq().Value()
	r.NoError(err)
	r.Equal(Seq(4), cur)

	seq, err := st.Append(mustDoc(t, map[string]interface{}{"i": int64(5)}))
	r.NoError(err)
	r.Equal(Seq(5), seq)
}

func drainInts(t *testing.T, src luigi.Source) []int64 {
	r := require.New(t)

	var got []int64
	ctx := context.TODO()
	for {
		v, err := src.Next(ctx)
		if luigi.IsEOS(err) {
			break
		}
		r.NoError(err)

		iv, ok := v.(fleck.Value).Fetch("i")
		r.True(ok)
		n, err := iv.AsInt()
		r.NoError(err)
		got = append(got, n)
	}
	return got
}

func TestStoreQuery(t *testing.T) {
	r := require.New(t)
	st := makeStore(t)
	defer st.Close()

	for i := 0; i < 10; i++ {
		_, err := st.Append(mustDoc(t, map[string]interface{}{"i": int64(i)}))
		r.NoError(err)
	}

	src, err := st.Query()
	r.NoError(err)
	r.Equal([]int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, drainInts(t, src))

	src, err = st.Query(Gt(2), Lte(6))
	r.NoError(err)
	r.Equal([]int64{3, 4, 5, 6}, drainInts(t, src))

	src, err = st.Query(Gte(8), Limit(1))
	r.NoError(err)
	r.Equal([]int64{8}, drainInts(t, src))

	src, err = st.Query(Reverse(true), Lt(3))
	r.NoError(err)
	r.Equal([]int64{2, 1, 0}, drainInts(t, src))

	// a window past the end is just empty
	src, err = st.Query(Gt(99))
	r.NoError(err)
	r.Nil(drainInts(t, src))
}

func TestStoreQuerySeqWrap(t *testing.T) {
	r := require.New(t)
	st := makeStore(t)
	defer st.Close()

	for i := 0; i < 3; i++ {
		_, err := st.Append(mustDoc(t, map[string]interface{}{"i": int64(i)}))
		r.NoError(err)
	}

	src, err := st.Query(SeqWrap(true))
	r.NoError(err)

	ctx := context.TODO()
	for want := Seq(0); ; want++ {
		v, err := src.Next(ctx)
		if luigi.IsEOS(err) {
			r.Equal(Seq(3), want)
			break
		}
		r.NoError(err)

		sw, ok := v.(SeqWrapper)
		r.True(ok, "expected a seq wrapper, got %T", v)
		r.Equal(want, sw.Seq())

		iv, ok := sw.Value().Fetch("i")
		r.True(ok)
		n, err := iv.AsInt()
		r.NoError(err)
		r.Equal(int64(want), n)
	}
}

func TestStoreQuerySnapshot(t *testing.T) {
	r := require.New(t)
	st := makeStore(t)
	defer st.Close()

	for i := 0; i < 3; i++ {
		_, err := st.Append(mustDoc(t, map[string]interface{}{"i": int64(i)}))
		r.NoError(err)
	}

	src, err := st.Query()
	r.NoError(err)

	// appended after the query was made, not part of the stream
	_, err = st.Append(mustDoc(t, map[string]interface{}{"i": int64(99)}))
	r.NoError(err)

	r.Equal([]int64{0, 1, 2}, drainInts(t, src))
}
