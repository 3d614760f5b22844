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

package hdf

import (
	"fmt"

	"github.com/scigolib/hdf5"
)

// Open opens an HDF5 (or NWB) file read-only using the pure Go reader.
func Open(filePath string) (File, error) {
	f, err := hdf5.Open(filePath)
	if err != nil {
		return nil, err
	}
	return &h5File{
		file: f,
		root: &h5Group{group: f.Root(), path: "/"},
	}, nil
}

var _ Opener = Open

type h5File struct {
	file *hdf5.File
	root *h5Group
}

func (f *h5File) Root() Group { return f.root }

func (f *h5File) Close() error { return f.file.Close() }

type h5Group struct {
	group *hdf5.Group
	path  string
}

func (g *h5Group) Path() string { return g.path }

func (g *h5Group) Groups() ([]Group, error) {
	groups := make([]Group, 0)
	for _, child := range g.group.Children() {
		if cg, ok := child.(*hdf5.Group); ok {
			groups = append(groups, &h5Group{group: cg, path: Join(g.path, cg.Name())})
		}
	}
	return groups, nil
}

func (g *h5Group) DatasetPaths() ([]string, error) {
	paths := make([]string, 0)
	for _, child := range g.group.Children() {
		if ds, ok := child.(*hdf5.Dataset); ok {
			paths = append(paths, Join(g.path, ds.Name()))
		}
	}
	return paths, nil
}

func (g *h5Group) Dataset(name string) (Dataset, error) {
	want := Base(name)
	for _, child := range g.group.Children() {
		if ds, ok := child.(*hdf5.Dataset); ok && Base(ds.Name()) == want {
			return &h5Dataset{dataset: ds, path: Join(g.path, ds.Name())}, nil
		}
	}
	return nil, fmt.Errorf("dataset %q not found in group %s", want, g.path)
}

type h5Dataset struct {
	dataset *hdf5.Dataset
	path    string
}

func (d *h5Dataset) Path() string { return d.path }

func (d *h5Dataset) Descriptor() (TypeDescriptor, error) {
	info, err := d.dataset.Info()
	if err != nil {
		return TypeDescriptor{}, err
	}
	return ParseInfo(info)
}

// ReadFloat64s returns the values converted to float64 by the reader.
func (d *h5Dataset) ReadFloat64s() ([]float64, error) {
	return d.dataset.Read()
}

func (d *h5Dataset) ReadInt64s() ([]int64, error) {
	values, err := d.dataset.Read()
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out, nil
}

func (d *h5Dataset) ReadUint64s() ([]uint64, error) {
	values, err := d.dataset.Read()
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(values))
	for i, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("negative value %v at index %d in unsigned dataset %s", v, i, d.path)
		}
		out[i] = uint64(v)
	}
	return out, nil
}

func (d *h5Dataset) ReadBools() ([]bool, error) {
	values, err := d.dataset.Read()
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = v != 0
	}
	return out, nil
}

func (d *h5Dataset) ReadStrings() ([]string, error) {
	return d.dataset.ReadStrings()
}
