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

package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nwbview/hdf/hdftest"
	"nwbview/internal/testutil"
)

func sampleFile() *hdftest.File {
	f := hdftest.NewFile()
	root := f.RootGroup()
	root.Scalar("session_description", "mouse V1")
	root.Strings("file_create_date", "2024-01-01")

	ts := f.Group("/acquisition/TimeSeries")
	ts.Floats("data", 1, 2, 3)
	ts.Floats("timestamps", 0.1, 0.2, 0.3)

	f.Group("/processing/behavior/position").Floats("data", 4, 5)
	f.Group("/general")
	return f
}

func TestBuildTree_MirrorsStructure(t *testing.T) {
	f := sampleFile()

	root, err := BuildTree(f.Root())
	require.NoError(t, err)

	assert.Equal(t, "/", root.Path)
	assert.Equal(t, "/", root.Name())
	assert.Equal(t, []string{"/session_description", "/file_create_date"}, root.DatasetPaths)

	var groups []string
	root.Walk(func(g *GroupNode) { groups = append(groups, g.Path) })
	assert.Equal(t, []string{
		"/",
		"/acquisition",
		"/acquisition/TimeSeries",
		"/processing",
		"/processing/behavior",
		"/processing/behavior/position",
		"/general",
	}, groups)

	ts := root.Find("/acquisition/TimeSeries")
	require.NotNil(t, ts)
	assert.Equal(t, "TimeSeries", ts.Name())
	assert.True(t, ts.HasPlotPair())
	assert.False(t, root.Find("/processing/behavior/position").HasPlotPair())
	assert.Nil(t, root.Find("/missing"))
}

func TestBuildTree_DatasetSetMatchesBackingFile(t *testing.T) {
	f := sampleFile()
	root, err := BuildTree(f.Root())
	require.NoError(t, err)

	// Union of the snapshot's dataset paths equals what the backing API lists.
	var want []string
	var collect func(g *hdftest.Group)
	collect = func(g *hdftest.Group) {
		paths, err := g.DatasetPaths()
		require.NoError(t, err)
		want = append(want, paths...)
		children, err := g.Groups()
		require.NoError(t, err)
		for _, c := range children {
			collect(c.(*hdftest.Group))
		}
	}
	collect(f.RootGroup())

	got := root.AllDatasetPaths()
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)
	assert.Len(t, got, 5)
}

func TestBuildTree_EnumerationFailureAborts(t *testing.T) {
	f := sampleFile()
	f.Group("/processing/behavior").EnumErr = errors.New("corrupt symbol table")

	root, err := BuildTree(f.Root())
	require.Error(t, err)
	assert.Nil(t, root)
	assert.ErrorIs(t, err, ErrEnumerationFailed)
	assert.Contains(t, err.Error(), "/processing/behavior")
	assert.Contains(t, err.Error(), "corrupt symbol table")
}

func TestBuildTree_ReadsNoData(t *testing.T) {
	f := hdftest.NewFile()
	ds := f.RootGroup().Floats("data", 1, 2, 3)

	_, err := BuildTree(f.Root())
	require.NoError(t, err)
	assert.Zero(t, ds.Reads)
}

func TestOpenFile(t *testing.T) {
	opener := hdftest.NewOpener()
	f := sampleFile()
	opener.Add("/data/a.nwb", f)

	snap, err := OpenFile("/data/a.nwb", opener.Open)
	require.NoError(t, err)
	assert.True(t, snap.Open)
	assert.Equal(t, "a.nwb", snap.Name())
	assert.Equal(t, "/", snap.Root.Path)

	require.NoError(t, snap.Close())
	assert.True(t, f.Closed)
	require.NoError(t, snap.Close())
	assert.Equal(t, 1, f.Closes)
}

func TestOpenFile_Errors(t *testing.T) {
	opener := hdftest.NewOpener()

	_, err := OpenFile("/data/missing.nwb", opener.Open)
	assert.ErrorIs(t, err, ErrCannotOpen)
	assert.ErrorIs(t, err, hdftest.ErrNotContainer)

	broken := sampleFile()
	broken.RootGroup().EnumErr = errors.New("bad b-tree")
	opener.Add("/data/broken.nwb", broken)

	_, err = OpenFile("/data/broken.nwb", opener.Open)
	assert.ErrorIs(t, err, ErrEnumerationFailed)
	assert.True(t, broken.Closed, "handle is released when the build fails")
}

func newRegistry(t *testing.T) (*Registry, *hdftest.Opener, string) {
	t.Helper()
	opener := hdftest.NewOpener()
	return NewRegistry(opener.Open, testutil.NewTestLogger(t)), opener, t.TempDir()
}

func TestRegistry_AddIsIdempotent(t *testing.T) {
	reg, opener, dir := newRegistry(t)
	path := hdftest.Touch(t, dir, "session.nwb")
	opener.Add(path, sampleFile())

	first, err := reg.Add(path)
	require.NoError(t, err)

	t.Chdir(dir)
	again, err := reg.Add("./session.nwb")
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
	assert.Same(t, first, again)

	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, opener.Opens[path])
}

func TestRegistry_AddThroughSymlink(t *testing.T) {
	reg, opener, dir := newRegistry(t)
	path := hdftest.Touch(t, dir, "session.nwb")
	opener.Add(path, sampleFile())

	link := filepath.Join(dir, "link.nwb")
	if err := os.Symlink(path, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := reg.Add(path)
	require.NoError(t, err)
	_, err = reg.Add(link)
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_AddFailuresLeaveRegistryUnchanged(t *testing.T) {
	reg, opener, dir := newRegistry(t)

	_, err := reg.Add(filepath.Join(dir, "does-not-exist.nwb"))
	assert.ErrorIs(t, err, ErrPathInvalid)

	notContainer := hdftest.Touch(t, dir, "notes.txt")
	_, err = reg.Add(notContainer)
	assert.ErrorIs(t, err, ErrCannotOpen)

	broken := sampleFile()
	broken.Group("/acquisition").EnumErr = errors.New("truncated")
	brokenPath := hdftest.Touch(t, dir, "broken.nwb")
	opener.Add(brokenPath, broken)
	_, err = reg.Add(brokenPath)
	assert.ErrorIs(t, err, ErrEnumerationFailed)

	assert.Zero(t, reg.Len())
}

func TestRegistry_SweepClosed(t *testing.T) {
	reg, opener, dir := newRegistry(t)

	files := make(map[string]*hdftest.File)
	var paths []string
	for _, name := range []string{"a.nwb", "b.nwb", "c.nwb", "d.nwb"} {
		p := hdftest.Touch(t, dir, name)
		files[name] = sampleFile()
		opener.Add(p, files[name])
		_, err := reg.Add(p)
		require.NoError(t, err)
		paths = append(paths, p)
	}

	snaps := reg.Files()
	snaps[1].Open = false
	snaps[3].Open = false

	removed := reg.SweepClosed()
	require.Len(t, removed, 2)
	assert.Equal(t, paths[1], removed[0].Path)
	assert.Equal(t, paths[3], removed[1].Path)
	assert.True(t, files["b.nwb"].Closed)
	assert.True(t, files["d.nwb"].Closed)
	assert.False(t, files["a.nwb"].Closed)

	remaining := reg.Files()
	require.Len(t, remaining, 2)
	assert.Equal(t, paths[0], remaining[0].Path)
	assert.Equal(t, paths[2], remaining[1].Path)

	assert.Empty(t, reg.SweepClosed())

	// A swept file can be loaded again.
	_, err := reg.Add(paths[1])
	require.NoError(t, err)
	assert.Equal(t, paths[1], reg.Files()[2].Path)
}

func TestRegistry_CloseAll(t *testing.T) {
	reg, opener, dir := newRegistry(t)
	p := hdftest.Touch(t, dir, "a.nwb")
	f := sampleFile()
	opener.Add(p, f)
	_, err := reg.Add(p)
	require.NoError(t, err)

	removed := reg.CloseAll()
	assert.Len(t, removed, 1)
	assert.True(t, f.Closed)
	assert.Zero(t, reg.Len())
}
