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

// Package hdftest provides an in-memory implementation of the hdf interfaces
// with failure injection, for tests that should not depend on real files.
package hdftest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nwbview/hdf"
)

// ErrNotContainer is returned by Opener for paths it does not know.
var ErrNotContainer = errors.New("not an HDF5 file")

// File is an in-memory container file.
type File struct {
	root   *Group
	Closed bool
	Closes int
}

// NewFile returns an empty file with a root group "/".
func NewFile() *File {
	return &File{root: &Group{path: "/"}}
}

func (f *File) Root() hdf.Group { return f.root }

func (f *File) Close() error {
	f.Closed = true
	f.Closes++
	return nil
}

// RootGroup returns the concrete root group for building.
func (f *File) RootGroup() *Group { return f.root }

// Group returns the group at p, creating any missing groups along the way.
func (f *File) Group(p string) *Group {
	g := f.root
	for _, seg := range strings.Split(strings.Trim(p, "/"), "/") {
		if seg == "" {
			continue
		}
		g = g.Group(seg)
	}
	return g
}

// Group is an in-memory group. Setting EnumErr makes every enumeration fail.
type Group struct {
	path     string
	groups   []*Group
	datasets []*Dataset
	EnumErr  error
}

func (g *Group) Path() string { return g.path }

func (g *Group) Groups() ([]hdf.Group, error) {
	if g.EnumErr != nil {
		return nil, g.EnumErr
	}
	out := make([]hdf.Group, len(g.groups))
	for i, c := range g.groups {
		out[i] = c
	}
	return out, nil
}

func (g *Group) DatasetPaths() ([]string, error) {
	if g.EnumErr != nil {
		return nil, g.EnumErr
	}
	out := make([]string, len(g.datasets))
	for i, d := range g.datasets {
		out[i] = d.path
	}
	return out, nil
}

func (g *Group) Dataset(name string) (hdf.Dataset, error) {
	want := hdf.Base(name)
	for _, d := range g.datasets {
		if hdf.Base(d.path) == want {
			return d, nil
		}
	}
	return nil, fmt.Errorf("dataset %q not found in group %s", want, g.path)
}

// Group returns the named child group, adding it if absent.
func (g *Group) Group(name string) *Group {
	for _, c := range g.groups {
		if hdf.Base(c.path) == name {
			return c
		}
	}
	c := &Group{path: hdf.Join(g.path, name)}
	g.groups = append(g.groups, c)
	return c
}

func (g *Group) add(name string, desc hdf.TypeDescriptor) *Dataset {
	d := &Dataset{path: hdf.Join(g.path, name), desc: desc}
	g.datasets = append(g.datasets, d)
	return d
}

func vector(n int) []uint64 { return []uint64{uint64(n)} }

// Floats adds a one-dimensional float64 dataset.
func (g *Group) Floats(name string, values ...float64) *Dataset {
	d := g.add(name, hdf.TypeDescriptor{Class: hdf.ClassFloat, Size: 8, Dims: vector(len(values))})
	d.floats = values
	return d
}

// Ints adds a one-dimensional int64 dataset.
func (g *Group) Ints(name string, values ...int64) *Dataset {
	d := g.add(name, hdf.TypeDescriptor{Class: hdf.ClassSignedInt, Size: 8, Dims: vector(len(values))})
	d.ints = values
	return d
}

// Uints adds a one-dimensional uint64 dataset.
func (g *Group) Uints(name string, values ...uint64) *Dataset {
	d := g.add(name, hdf.TypeDescriptor{Class: hdf.ClassUnsignedInt, Size: 8, Dims: vector(len(values))})
	d.uints = values
	return d
}

// Bools adds a one-dimensional bool dataset.
func (g *Group) Bools(name string, values ...bool) *Dataset {
	d := g.add(name, hdf.TypeDescriptor{Class: hdf.ClassBool, Size: 1, Dims: vector(len(values))})
	d.bools = values
	return d
}

// Strings adds a one-dimensional string dataset.
func (g *Group) Strings(name string, values ...string) *Dataset {
	d := g.add(name, hdf.TypeDescriptor{Class: hdf.ClassString, Size: 16, Dims: vector(len(values))})
	d.strs = values
	return d
}

// Scalar adds a rank-0 dataset holding v, which must be a float64, int64,
// uint64, bool or string.
func (g *Group) Scalar(name string, v any) *Dataset {
	var d *Dataset
	switch x := v.(type) {
	case float64:
		d = g.add(name, hdf.TypeDescriptor{Class: hdf.ClassFloat, Size: 8})
		d.floats = []float64{x}
	case int64:
		d = g.add(name, hdf.TypeDescriptor{Class: hdf.ClassSignedInt, Size: 8})
		d.ints = []int64{x}
	case uint64:
		d = g.add(name, hdf.TypeDescriptor{Class: hdf.ClassUnsignedInt, Size: 8})
		d.uints = []uint64{x}
	case bool:
		d = g.add(name, hdf.TypeDescriptor{Class: hdf.ClassBool, Size: 1})
		d.bools = []bool{x}
	case string:
		d = g.add(name, hdf.TypeDescriptor{Class: hdf.ClassString, Size: len(x)})
		d.strs = []string{x}
	default:
		panic(fmt.Sprintf("hdftest: unsupported scalar %T", v))
	}
	return d
}

// Compound adds a dataset of a type that no detail view can display.
func (g *Group) Compound(name string, n int) *Dataset {
	return g.add(name, hdf.TypeDescriptor{Class: hdf.ClassCompound, Size: 24, Dims: vector(n)})
}

// Dataset is an in-memory dataset. DescErr and ReadErr inject failures;
// Reads counts read calls.
type Dataset struct {
	path    string
	desc    hdf.TypeDescriptor
	floats  []float64
	ints    []int64
	uints   []uint64
	bools   []bool
	strs    []string
	DescErr error
	ReadErr error
	Reads   int
}

func (d *Dataset) Path() string { return d.path }

func (d *Dataset) Descriptor() (hdf.TypeDescriptor, error) {
	if d.DescErr != nil {
		return hdf.TypeDescriptor{}, d.DescErr
	}
	return d.desc, nil
}

func read[T any](d *Dataset, values []T, want hdf.TypeClass) ([]T, error) {
	d.Reads++
	if d.ReadErr != nil {
		return nil, d.ReadErr
	}
	if d.desc.Class != want && !(want == hdf.ClassFloat && isNumeric(d.desc.Class)) {
		return nil, fmt.Errorf("dataset %s holds %s, not %s", d.path, d.desc.Class, want)
	}
	out := make([]T, len(values))
	copy(out, values)
	return out, nil
}

func isNumeric(c hdf.TypeClass) bool {
	return c == hdf.ClassSignedInt || c == hdf.ClassUnsignedInt
}

// ReadFloat64s converts integer datasets the way the real reader does.
func (d *Dataset) ReadFloat64s() ([]float64, error) {
	switch d.desc.Class {
	case hdf.ClassSignedInt:
		ints, err := read(d, d.ints, hdf.ClassSignedInt)
		return convert(ints), err
	case hdf.ClassUnsignedInt:
		uints, err := read(d, d.uints, hdf.ClassUnsignedInt)
		return convert(uints), err
	}
	return read(d, d.floats, hdf.ClassFloat)
}

func convert[T int64 | uint64](values []T) []float64 {
	if values == nil {
		return nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

func (d *Dataset) ReadInt64s() ([]int64, error) { return read(d, d.ints, hdf.ClassSignedInt) }

func (d *Dataset) ReadUint64s() ([]uint64, error) { return read(d, d.uints, hdf.ClassUnsignedInt) }

func (d *Dataset) ReadBools() ([]bool, error) { return read(d, d.bools, hdf.ClassBool) }

func (d *Dataset) ReadStrings() ([]string, error) { return read(d, d.strs, hdf.ClassString) }

// Opener serves in-memory files by path and counts opens.
type Opener struct {
	files map[string]*File
	Opens map[string]int
}

// NewOpener returns an Opener that knows no files.
func NewOpener() *Opener {
	return &Opener{files: make(map[string]*File), Opens: make(map[string]int)}
}

// Add registers f under path.
func (o *Opener) Add(path string, f *File) {
	o.files[path] = f
}

// Open implements hdf.Opener.
func (o *Opener) Open(path string) (hdf.File, error) {
	f, ok := o.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, path)
	}
	o.Opens[path]++
	f.Closed = false
	return f, nil
}

// Touch creates an empty file named name in dir and returns its canonical path.
func Touch(t testing.TB, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	canonical, err := filepath.EvalSymlinks(p)
	if err != nil {
		t.Fatal(err)
	}
	abs, err := filepath.Abs(canonical)
	if err != nil {
		t.Fatal(err)
	}
	return abs
}
