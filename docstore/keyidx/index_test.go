// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package keyidx

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssbc/fleck"
	"github.com/ssbc/fleck/internal/persist/fs"
)

func mustValue(t *testing.T, v interface{}) fleck.Value {
	buf, err := fleck.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	root, err := fleck.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestIndexAddAndLookup(t *testing.T) {
	r := require.New(t)

	base := filepath.Join("testrun", t.Name())
	os.RemoveAll(base)

	ix, err := Open(fs.New(base))
	r.NoError(err)

	r.NoError(ix.Add(0, mustValue(t, map[string]interface{}{"name": "a", "age": int64(1)})))
	r.NoError(ix.Add(1, mustValue(t, map[string]interface{}{"name": "b"})))
	r.NoError(ix.Add(2, mustValue(t, map[string]interface{}{"age": int64(2), "tags": []interface{}{"x"}})))

	// non-dict roots are skipped
	r.NoError(ix.Add(3, mustValue(t, "just a string")))

	keys := ix.Keys()
	sort.Strings(keys)
	r.Equal([]string{"age", "name", "tags"}, keys)

	r.Equal([]uint64{0, 1}, ix.SeqsWith("name"))
	r.Equal([]uint64{0, 2}, ix.SeqsWith("age"))
	r.Equal([]uint64{2}, ix.SeqsWith("tags"))
	r.Nil(ix.SeqsWith("missing"))

	r.True(ix.Has("name", 1))
	r.False(ix.Has("name", 2))
	r.False(ix.Has("missing", 0))

	r.NoError(ix.Close())

	// bitmaps survive a reopen
	ix, err = Open(fs.New(base))
	r.NoError(err)
	defer ix.Close()

	r.Equal([]uint64{0, 2}, ix.SeqsWith("age"))
	r.True(ix.Has("tags", 2))
}
