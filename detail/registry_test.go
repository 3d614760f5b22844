// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package detail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nwbview/hdf/hdftest"
)

func TestRegistry_EnsureBuildsOnce(t *testing.T) {
	r := NewRegistry()
	builds := 0
	build := func() *Window {
		builds++
		return &Window{Kind: WindowTable}
	}

	w1, created := r.Ensure("a", "a#/x", build)
	require.True(t, created)
	assert.Equal(t, "a#/x", w1.Key)
	assert.True(t, w1.Open)

	w2, created := r.Ensure("a", "a#/x", build)
	assert.False(t, created)
	assert.Same(t, w1, w2)
	assert.Equal(t, 1, builds)
	assert.True(t, r.Has("a#/x"))
}

func TestRegistry_ReopenRereads(t *testing.T) {
	f := hdftest.NewFile()
	ds := f.RootGroup().Floats("data", 1, 2, 3)
	r := NewRegistry()
	open := func() *Window { return OpenDataset("f#/data", ds) }

	_, created := r.Ensure("f", "f#/data", open)
	require.True(t, created)
	assert.Equal(t, 1, ds.Reads)

	require.True(t, r.Remove("f#/data"))
	assert.False(t, r.Has("f#/data"))
	assert.False(t, r.Remove("f#/data"))

	w, created := r.Ensure("f", "f#/data", open)
	require.True(t, created)
	assert.Equal(t, 2, ds.Reads)
	assert.Equal(t, WindowTable, w.Kind)
}

func TestRegistry_ReopenAfterErrorRereads(t *testing.T) {
	f := hdftest.NewFile()
	ds := f.RootGroup().Floats("data", 1, 2, 3)
	ds.ReadErr = assert.AnError
	r := NewRegistry()
	open := func() *Window { return OpenDataset("f#/data", ds) }

	w, _ := r.Ensure("f", "f#/data", open)
	require.Equal(t, WindowError, w.Kind)

	// The file recovers; reopening must not serve the cached error.
	ds.ReadErr = nil
	r.Remove("f#/data")
	w, _ = r.Ensure("f", "f#/data", open)
	assert.Equal(t, WindowTable, w.Kind)
}

func TestRegistry_AcknowledgedWindowIsRebuilt(t *testing.T) {
	r := NewRegistry()
	w, _ := r.Ensure("f", "k", func() *Window { return NewErrorWindow("k", "t", assert.AnError) })
	w.Acknowledge()
	assert.False(t, r.Has("k"))

	w2, created := r.Ensure("f", "k", func() *Window { return &Window{Kind: WindowTable} })
	assert.True(t, created)
	assert.NotSame(t, w, w2)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SweepClosed(t *testing.T) {
	r := NewRegistry()
	for _, k := range []string{"a", "b", "c"} {
		r.Ensure("f", k, func() *Window { return &Window{} })
	}
	wb, _ := r.Get("b")
	wb.Open = false

	assert.Equal(t, []string{"b"}, r.SweepClosed())
	assert.Equal(t, []string{"a", "c"}, r.Keys())
	assert.Empty(t, r.SweepClosed())
}

func TestRegistry_DropFile(t *testing.T) {
	r := NewRegistry()
	entries := []struct{ file, key string }{
		{"/d/a.nwb", Key("/d/a.nwb", "/acquisition/ts/data")},
		{"/d/b.nwb", Key("/d/b.nwb", "/acquisition/ts/data")},
		{"/d/a.nwb", PlotKey("/d/a.nwb", "/acquisition/ts")},
		{"/d/a.nwb.bak", Key("/d/a.nwb.bak", "/x")},
	}
	for _, e := range entries {
		r.Ensure(e.file, e.key, func() *Window { return &Window{} })
	}
	require.Equal(t, 4, r.Len())

	removed := r.DropFile("/d/a.nwb")
	assert.ElementsMatch(t, []string{entries[0].key, entries[2].key}, removed)
	assert.Equal(t, []string{entries[1].key, entries[3].key}, r.Keys())

	windows := r.Windows()
	require.Len(t, windows, 2)
	assert.Equal(t, entries[1].key, windows[0].Key)
	assert.Equal(t, "/d/b.nwb", windows[0].File)
}

func TestRegistry_DropFileWithSeparatorInPath(t *testing.T) {
	r := NewRegistry()
	file := "/tmp/run#/a.nwb"
	other := "/tmp/run"
	r.Ensure(file, Key(file, "/x"), func() *Window { return &Window{} })
	r.Ensure(file, PlotKey(file, "/ts"), func() *Window { return &Window{} })
	r.Ensure(other, Key(other, "/a.nwb#/x"), func() *Window { return &Window{} })

	removed := r.DropFile(file)
	assert.ElementsMatch(t, []string{Key(file, "/x"), PlotKey(file, "/ts")}, removed)
	assert.Equal(t, []string{Key(other, "/a.nwb#/x")}, r.Keys())

	assert.Equal(t, []string{Key(other, "/a.nwb#/x")}, r.DropFile(other))
	assert.Zero(t, r.Len())
}
