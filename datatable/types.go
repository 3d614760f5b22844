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

// Package datatable provides the tabular model behind dataset tables:
// typed cell values, a read-only data source, filtering and sorting.
package datatable

import (
	"fmt"
	"strconv"
)

// DataType represents the type of data in a column.
type DataType int

const (
	// TypeString represents string data.
	TypeString DataType = iota
	// TypeInt represents signed integer data.
	TypeInt
	// TypeUint represents unsigned integer data.
	TypeUint
	// TypeFloat represents floating-point data.
	TypeFloat
	// TypeBool represents boolean data.
	TypeBool
)

// String returns the string representation of a DataType.
func (dt DataType) String() string {
	switch dt {
	case TypeString:
		return "String"
	case TypeInt:
		return "Int"
	case TypeUint:
		return "Uint"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	default:
		return fmt.Sprintf("Unknown(%d)", dt)
	}
}

// Numeric reports whether values of the type compare as numbers.
func (dt DataType) Numeric() bool {
	return dt == TypeInt || dt == TypeUint || dt == TypeFloat
}

// Value is a typed container for cell values.
// It holds the raw value, type information, and a pre-formatted string for display.
type Value struct {
	// Raw holds the underlying value: int64, uint64, float64, bool or string.
	Raw any

	// Type indicates the data type of this value.
	Type DataType

	// IsNull indicates whether this value is null/nil.
	IsNull bool

	// Formatted is the display form, computed once.
	Formatted string
}

// NewValue creates a new Value from a raw value and type.
func NewValue(raw any, dataType DataType) Value {
	if raw == nil {
		return NewNullValue(dataType)
	}
	return Value{
		Raw:       raw,
		Type:      dataType,
		Formatted: formatValue(raw),
	}
}

// NewNullValue creates a null value of the specified type.
func NewNullValue(dataType DataType) Value {
	return Value{Type: dataType, IsNull: true}
}

func formatValue(raw any) string {
	switch v := raw.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", raw)
	}
}

// Float returns the value as a float64 for numeric types.
func (v Value) Float() (float64, bool) {
	switch x := v.Raw.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

// Metadata holds optional metadata about a data source.
type Metadata map[string]any

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// SortNone indicates no sorting.
	SortNone SortDirection = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the string representation of a SortDirection.
func (sd SortDirection) String() string {
	switch sd {
	case SortNone:
		return "None"
	case SortAscending:
		return "Ascending"
	case SortDescending:
		return "Descending"
	default:
		return fmt.Sprintf("Unknown(%d)", sd)
	}
}

// Next returns the direction following sd in the none, ascending,
// descending cycle.
func (sd SortDirection) Next() SortDirection {
	switch sd {
	case SortNone:
		return SortAscending
	case SortAscending:
		return SortDescending
	default:
		return SortNone
	}
}

// SortState represents the current sorting configuration.
type SortState struct {
	// Column is the index of the sorted column (-1 if unsorted).
	Column int
	// Direction is the sort direction.
	Direction SortDirection
}

// IsSorted returns true if this state represents an active sort.
func (s SortState) IsSorted() bool {
	return s.Column >= 0 && s.Direction != SortNone
}
