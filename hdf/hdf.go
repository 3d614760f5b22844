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

// Package hdf defines the read-only view of a hierarchical container file
// (groups and typed datasets) used by the rest of the application, and an
// implementation backed by github.com/scigolib/hdf5.
package hdf

import (
	"fmt"
	"path"
	"strings"
)

// File is an open container file. It owns the underlying OS handle.
type File interface {
	// Root returns the top-level group ("/").
	Root() Group
	// Close releases the file handle. Calling Close more than once is safe.
	Close() error
}

// Group is a named node that may contain child groups and datasets.
type Group interface {
	// Path returns the fully-qualified slash-separated path of the group.
	Path() string
	// Groups returns the child groups in file iteration order.
	Groups() ([]Group, error)
	// DatasetPaths returns the fully-qualified paths of the datasets directly
	// under this group, in file iteration order.
	DatasetPaths() ([]string, error)
	// Dataset looks up a dataset directly under this group. The argument may be
	// either a basename or a fully-qualified path.
	Dataset(name string) (Dataset, error)
}

// Dataset is a typed scalar or array leaf. All reads go to the file on demand.
type Dataset interface {
	Path() string
	Descriptor() (TypeDescriptor, error)
	ReadFloat64s() ([]float64, error)
	ReadInt64s() ([]int64, error)
	ReadUint64s() ([]uint64, error)
	ReadBools() ([]bool, error)
	ReadStrings() ([]string, error)
}

// Opener opens a container file read-only.
type Opener func(path string) (File, error)

// TypeClass is the runtime type family of a dataset's elements.
type TypeClass int

const (
	ClassOther TypeClass = iota
	ClassFloat
	ClassSignedInt
	ClassUnsignedInt
	ClassBool
	ClassString
	ClassCompound
)

// String returns the string representation of a TypeClass.
func (c TypeClass) String() string {
	switch c {
	case ClassFloat:
		return "float"
	case ClassSignedInt:
		return "int"
	case ClassUnsignedInt:
		return "uint"
	case ClassBool:
		return "bool"
	case ClassString:
		return "string"
	case ClassCompound:
		return "compound"
	default:
		return "other"
	}
}

// TypeDescriptor describes a dataset's element type and shape.
type TypeDescriptor struct {
	Class TypeClass
	// Size is the element size in bytes.
	Size int
	// Dims is the dataspace shape. Empty for scalar dataspaces.
	Dims []uint64
}

// IsScalar reports whether the dataset holds a single value in a rank-0 dataspace.
func (d TypeDescriptor) IsScalar() bool {
	return len(d.Dims) == 0
}

// Len returns the total number of elements.
func (d TypeDescriptor) Len() uint64 {
	if d.IsScalar() {
		return 1
	}
	n := uint64(1)
	for _, dim := range d.Dims {
		n *= dim
	}
	return n
}

// String renders the descriptor as e.g. "float (8 bytes) [100]".
func (d TypeDescriptor) String() string {
	if d.IsScalar() {
		return fmt.Sprintf("%s (%d bytes) scalar", d.Class, d.Size)
	}
	dims := make([]string, len(d.Dims))
	for i, dim := range d.Dims {
		dims[i] = fmt.Sprintf("%d", dim)
	}
	return fmt.Sprintf("%s (%d bytes) [%s]", d.Class, d.Size, strings.Join(dims, " x "))
}

// Base returns the last segment of a slash-separated object path.
func Base(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	return path.Base(p)
}

// Join appends a child name to a parent group path.
func Join(parent, name string) string {
	return path.Join("/", parent, Base(name))
}
