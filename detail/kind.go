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

// Package detail builds the detail views shown for datasets and plottable
// groups, and tracks which of them are open.
package detail

import (
	"errors"
	"fmt"
	"strconv"

	"nwbview/hdf"
)

// Per-dataset errors. They are shown in an ErrorPopup rather than returned
// to the tree.
var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrReadFailed      = errors.New("read failed")
	ErrLengthMismatch  = errors.New("length mismatch")
	ErrMissingData     = errors.New("missing data")
)

// ScalarKind is the closed set of element types a detail view can display.
type ScalarKind int

const (
	KindUnsupported ScalarKind = iota
	KindFloat
	KindInt
	KindUint
	KindBool
	KindString
)

func (k ScalarKind) String() string {
	switch k {
	case KindFloat:
		return "float64"
	case KindInt:
		return "int64"
	case KindUint:
		return "uint64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unsupported"
	}
}

// KindOf maps a dataset's type descriptor to a ScalarKind.
func KindOf(desc hdf.TypeDescriptor) ScalarKind {
	switch desc.Class {
	case hdf.ClassFloat:
		return KindFloat
	case hdf.ClassSignedInt:
		return KindInt
	case hdf.ClassUnsignedInt:
		return KindUint
	case hdf.ClassBool:
		return KindBool
	case hdf.ClassString:
		return KindString
	default:
		return KindUnsupported
	}
}

// Scalar is the set of Go types backing a ScalarKind.
type Scalar interface {
	float64 | int64 | uint64 | bool | string
}

// Format renders v in its display form.
func Format[T Scalar](v T) string {
	switch x := any(v).(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

// Rows is the read-only row data of a Table view.
type Rows interface {
	Len() int
	Kind() ScalarKind
	// Cell returns the display form of row i.
	Cell(i int) string
	// Value returns row i as float64, int64, uint64, bool or string.
	Value(i int) any
}

// Series is a Rows backed by a slice of one scalar type.
type Series[T Scalar] struct {
	kind   ScalarKind
	values []T
}

// NewSeries wraps values. The slice is owned by the series afterwards.
func NewSeries[T Scalar](kind ScalarKind, values []T) *Series[T] {
	return &Series[T]{kind: kind, values: values}
}

func (s *Series[T]) Len() int          { return len(s.values) }
func (s *Series[T]) Kind() ScalarKind  { return s.kind }
func (s *Series[T]) Cell(i int) string { return Format(s.values[i]) }
func (s *Series[T]) Value(i int) any   { return s.values[i] }

// Values returns the underlying slice.
func (s *Series[T]) Values() []T { return s.values }

// ReadRows reads every element of ds according to kind.
func ReadRows(ds hdf.Dataset, kind ScalarKind) (Rows, error) {
	switch kind {
	case KindFloat:
		return read(ds.ReadFloat64s, kind)
	case KindInt:
		return read(ds.ReadInt64s, kind)
	case KindUint:
		return read(ds.ReadUint64s, kind)
	case KindBool:
		return read(ds.ReadBools, kind)
	case KindString:
		return read(ds.ReadStrings, kind)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ds.Path())
	}
}

func read[T Scalar](fn func() ([]T, error), kind ScalarKind) (Rows, error) {
	values, err := fn()
	if err != nil {
		return nil, err
	}
	return NewSeries(kind, values), nil
}

// ScalarLabel is a single read-only value.
type ScalarLabel struct {
	Kind  ScalarKind
	Value any
	Text  string
}

// Dataset reads ds and describes it. Errors match ErrUnsupportedType or
// ErrReadFailed.
func Dataset(ds hdf.Dataset) (Rows, hdf.TypeDescriptor, error) {
	desc, err := ds.Descriptor()
	if err != nil {
		return nil, desc, fmt.Errorf("%w: %s: %w", ErrReadFailed, ds.Path(), err)
	}
	kind := KindOf(desc)
	if kind == KindUnsupported {
		return nil, desc, fmt.Errorf("%w: %s is %s", ErrUnsupportedType, ds.Path(), desc)
	}
	rows, err := ReadRows(ds, kind)
	if err != nil {
		return nil, desc, fmt.Errorf("%w: %s: %w", ErrReadFailed, ds.Path(), err)
	}
	if desc.IsScalar() && rows.Len() == 0 {
		return nil, desc, fmt.Errorf("%w: %s: scalar dataset returned no value", ErrReadFailed, ds.Path())
	}
	return rows, desc, nil
}
