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
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// TableModel is a filtered and sorted view over a DataSource. The source is
// never modified; only the visible row order changes.
type TableModel struct {
	source  DataSource
	columns []string
	filter  Filter
	sort    SortState
	visible []int
}

// NewTableModel creates a model showing every row of source.
func NewTableModel(source DataSource) (*TableModel, error) {
	if source == nil {
		return nil, ErrNoDataSource
	}
	m := &TableModel{
		source: source,
		sort:   SortState{Column: -1},
	}
	m.columns = make([]string, source.ColumnCount())
	for i := range m.columns {
		name, err := source.ColumnName(i)
		if err != nil {
			return nil, err
		}
		m.columns[i] = name
	}
	if err := m.rebuild(); err != nil {
		return nil, err
	}
	return m, nil
}

// Source returns the underlying data source.
func (m *TableModel) Source() DataSource { return m.source }

// OriginalRowCount returns the number of rows in the source.
func (m *TableModel) OriginalRowCount() int { return m.source.RowCount() }

// VisibleRowCount returns the number of rows passing the filter.
func (m *TableModel) VisibleRowCount() int { return len(m.visible) }

// ColumnCount returns the number of columns.
func (m *TableModel) ColumnCount() int { return len(m.columns) }

// ColumnNames returns the column names.
func (m *TableModel) ColumnNames() []string { return slices.Clone(m.columns) }

// ColumnName returns the name of column col.
func (m *TableModel) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(m.columns) {
		return "", fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	return m.columns[col], nil
}

// ColumnIndex returns the index of the column named name, ignoring case.
func (m *TableModel) ColumnIndex(name string) (int, error) {
	for i, c := range m.columns {
		if strings.EqualFold(c, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

// VisibleCell returns the cell at a visible row.
func (m *TableModel) VisibleCell(row, col int) (Value, error) {
	if row < 0 || row >= len(m.visible) {
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	return m.source.Cell(m.visible[row], col)
}

// VisibleRow returns all cells of a visible row.
func (m *TableModel) VisibleRow(row int) ([]Value, error) {
	if row < 0 || row >= len(m.visible) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	return m.source.Row(m.visible[row])
}

// VisibleRowIndices returns the source row of each visible row, in display order.
func (m *TableModel) VisibleRowIndices() []int { return slices.Clone(m.visible) }

// Filter returns the active filter, or nil.
func (m *TableModel) Filter() Filter { return m.filter }

// SetFilter replaces the filter. A nil filter shows all rows. On error the
// previous view is kept.
func (m *TableModel) SetFilter(f Filter) error {
	prev := m.filter
	m.filter = f
	if err := m.rebuild(); err != nil {
		m.filter = prev
		return err
	}
	return nil
}

// ClearFilter removes the filter.
func (m *TableModel) ClearFilter() {
	m.filter = nil
	_ = m.rebuild()
}

// GetSortState returns the current sort.
func (m *TableModel) GetSortState() SortState { return m.sort }

// SetSort orders visible rows by col. SortNone restores source order.
func (m *TableModel) SetSort(col int, dir SortDirection) error {
	if dir != SortNone && (col < 0 || col >= len(m.columns)) {
		return fmt.Errorf("%w: %d", ErrInvalidSortColumn, col)
	}
	if dir == SortNone {
		col = -1
	}
	m.sort = SortState{Column: col, Direction: dir}
	return m.rebuild()
}

// CycleSort advances the sort of col through none, ascending, descending.
// Sorting a different column starts at ascending.
func (m *TableModel) CycleSort(col int) (SortDirection, error) {
	dir := SortAscending
	if m.sort.Column == col {
		dir = m.sort.Direction.Next()
	}
	if err := m.SetSort(col, dir); err != nil {
		return SortNone, err
	}
	return dir, nil
}

func (m *TableModel) rebuild() error {
	n := m.source.RowCount()
	visible := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if m.filter != nil {
			row, err := m.source.Row(i)
			if err != nil {
				return err
			}
			ok, err := m.filter.Evaluate(row, m.columns)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}
		visible = append(visible, i)
	}

	if m.sort.IsSorted() {
		col, desc := m.sort.Column, m.sort.Direction == SortDescending
		var sortErr error
		slices.SortStableFunc(visible, func(a, b int) int {
			va, err := m.source.Cell(a, col)
			if err != nil {
				sortErr = err
				return 0
			}
			vb, err := m.source.Cell(b, col)
			if err != nil {
				sortErr = err
				return 0
			}
			c := Compare(va, vb)
			if desc {
				c = -c
			}
			return c
		})
		if sortErr != nil {
			return sortErr
		}
	}
	m.visible = visible
	return nil
}

// Compare orders two values: nulls first, then numbers numerically,
// bools false before true, everything else by formatted text.
func Compare(a, b Value) int {
	switch {
	case a.IsNull && b.IsNull:
		return 0
	case a.IsNull:
		return -1
	case b.IsNull:
		return 1
	}
	if fa, ok := a.Float(); ok {
		if fb, ok := b.Float(); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if ba, ok := a.Raw.(bool); ok {
		if bb, ok := b.Raw.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(a.Formatted, b.Formatted)
}
