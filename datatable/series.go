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

package datatable

import (
	"fmt"

	"nwbview/detail"
)

// Column names of a series table.
const (
	IndexColumn = "Index"
	ValueColumn = "Value"
)

// SeriesSource exposes detail rows as an Index/Value table.
type SeriesSource struct {
	name string
	rows detail.Rows
	typ  DataType
}

// NewSeriesSource wraps rows. name is reported in the metadata.
func NewSeriesSource(name string, rows detail.Rows) (*SeriesSource, error) {
	if rows == nil {
		return nil, ErrNoDataSource
	}
	return &SeriesSource{name: name, rows: rows, typ: TypeOf(rows.Kind())}, nil
}

// TypeOf maps a scalar kind to a column type.
func TypeOf(kind detail.ScalarKind) DataType {
	switch kind {
	case detail.KindFloat:
		return TypeFloat
	case detail.KindInt:
		return TypeInt
	case detail.KindUint:
		return TypeUint
	case detail.KindBool:
		return TypeBool
	default:
		return TypeString
	}
}

func (s *SeriesSource) RowCount() int    { return s.rows.Len() }
func (s *SeriesSource) ColumnCount() int { return 2 }

func (s *SeriesSource) ColumnName(col int) (string, error) {
	switch col {
	case 0:
		return IndexColumn, nil
	case 1:
		return ValueColumn, nil
	}
	return "", fmt.Errorf("%w: %d", ErrInvalidColumn, col)
}

func (s *SeriesSource) ColumnType(col int) (DataType, error) {
	switch col {
	case 0:
		return TypeInt, nil
	case 1:
		return s.typ, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
}

func (s *SeriesSource) Cell(row, col int) (Value, error) {
	if row < 0 || row >= s.rows.Len() {
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	switch col {
	case 0:
		return NewValue(int64(row), TypeInt), nil
	case 1:
		return NewValue(s.rows.Value(row), s.typ), nil
	}
	return Value{}, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
}

func (s *SeriesSource) Row(row int) ([]Value, error) {
	if row < 0 || row >= s.rows.Len() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	return []Value{
		NewValue(int64(row), TypeInt),
		NewValue(s.rows.Value(row), s.typ),
	}, nil
}

func (s *SeriesSource) Metadata() Metadata {
	return Metadata{"name": s.name, "kind": s.rows.Kind().String()}
}
