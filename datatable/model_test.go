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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nwbview/detail"
)

type evenValues struct{}

func (evenValues) Evaluate(row []Value, _ []string) (bool, error) {
	f, _ := row[1].Float()
	return int(f)%2 == 0, nil
}

func (evenValues) Description() string { return "even values" }

type failingFilter struct{}

func (failingFilter) Evaluate([]Value, []string) (bool, error) {
	return false, errors.New("boom")
}

func (failingFilter) Description() string { return "failing" }

func newModel(t *testing.T, values ...float64) *TableModel {
	t.Helper()
	src, err := NewSeriesSource("rates", detail.NewSeries(detail.KindFloat, values))
	require.NoError(t, err)
	m, err := NewTableModel(src)
	require.NoError(t, err)
	return m
}

func TestSeriesSource(t *testing.T) {
	src, err := NewSeriesSource("ids", detail.NewSeries(detail.KindUint, []uint64{7, 9}))
	require.NoError(t, err)

	assert.Equal(t, 2, src.RowCount())
	assert.Equal(t, 2, src.ColumnCount())
	name, err := src.ColumnName(1)
	require.NoError(t, err)
	assert.Equal(t, ValueColumn, name)
	typ, err := src.ColumnType(1)
	require.NoError(t, err)
	assert.Equal(t, TypeUint, typ)

	v, err := src.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), v.Raw)
	assert.Equal(t, "9", v.Formatted)

	row, err := src.Row(1)
	require.NoError(t, err)
	assert.Equal(t, "1", row[0].Formatted)

	_, err = src.Cell(2, 0)
	assert.ErrorIs(t, err, ErrInvalidRow)
	_, err = src.Cell(0, 2)
	assert.ErrorIs(t, err, ErrInvalidColumn)
	_, err = src.ColumnName(-1)
	assert.ErrorIs(t, err, ErrInvalidColumn)
	assert.Equal(t, "uint64", src.Metadata()["kind"])

	_, err = NewSeriesSource("nil", nil)
	assert.ErrorIs(t, err, ErrNoDataSource)
}

func TestTableModel_FilterIsViewOnly(t *testing.T) {
	m := newModel(t, 1, 2, 3, 4)

	require.NoError(t, m.SetFilter(evenValues{}))
	assert.Equal(t, 4, m.OriginalRowCount())
	assert.Equal(t, 2, m.VisibleRowCount())
	assert.Equal(t, []int{1, 3}, m.VisibleRowIndices())

	v, err := m.VisibleCell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v.Raw)

	m.ClearFilter()
	assert.Equal(t, 4, m.VisibleRowCount())
	assert.Nil(t, m.Filter())
}

func TestTableModel_FilterErrorKeepsView(t *testing.T) {
	m := newModel(t, 1, 2, 3)
	require.NoError(t, m.SetFilter(evenValues{}))

	err := m.SetFilter(failingFilter{})
	require.Error(t, err)
	assert.Equal(t, []int{1}, m.VisibleRowIndices())
	assert.Equal(t, "even values", m.Filter().Description())
}

func TestTableModel_Sort(t *testing.T) {
	m := newModel(t, 3, 1, 2, 1)

	dir, err := m.CycleSort(1)
	require.NoError(t, err)
	assert.Equal(t, SortAscending, dir)
	assert.Equal(t, []int{1, 3, 2, 0}, m.VisibleRowIndices())

	dir, err = m.CycleSort(1)
	require.NoError(t, err)
	assert.Equal(t, SortDescending, dir)
	assert.Equal(t, []int{0, 2, 1, 3}, m.VisibleRowIndices())

	dir, err = m.CycleSort(1)
	require.NoError(t, err)
	assert.Equal(t, SortNone, dir)
	assert.False(t, m.GetSortState().IsSorted())
	assert.Equal(t, []int{0, 1, 2, 3}, m.VisibleRowIndices())

	assert.ErrorIs(t, m.SetSort(5, SortAscending), ErrInvalidSortColumn)
}

func TestTableModel_SortAndFilterCombine(t *testing.T) {
	m := newModel(t, 4, 1, 2, 3)
	require.NoError(t, m.SetSort(1, SortDescending))
	require.NoError(t, m.SetFilter(evenValues{}))
	assert.Equal(t, []int{0, 2}, m.VisibleRowIndices())

	_, err := m.VisibleRow(2)
	assert.ErrorIs(t, err, ErrInvalidRow)
}

func TestTableModel_Columns(t *testing.T) {
	m := newModel(t, 1)
	assert.Equal(t, []string{IndexColumn, ValueColumn}, m.ColumnNames())
	idx, err := m.ColumnIndex("value")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	_, err = m.ColumnIndex("missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = NewTableModel(nil)
	assert.ErrorIs(t, err, ErrNoDataSource)
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(NewValue(int64(1), TypeInt), NewValue(2.5, TypeFloat)))
	assert.Equal(t, 1, Compare(NewValue(uint64(3), TypeUint), NewValue(int64(-3), TypeInt)))
	assert.Equal(t, -1, Compare(NewValue(false, TypeBool), NewValue(true, TypeBool)))
	assert.Equal(t, 0, Compare(NewValue(true, TypeBool), NewValue(true, TypeBool)))
	assert.Equal(t, -1, Compare(NewNullValue(TypeFloat), NewValue(1.0, TypeFloat)))
	assert.Equal(t, -1, Compare(NewValue("a", TypeString), NewValue("b", TypeString)))
}

func TestSortDirection(t *testing.T) {
	assert.Equal(t, SortAscending, SortNone.Next())
	assert.Equal(t, SortDescending, SortAscending.Next())
	assert.Equal(t, SortNone, SortDescending.Next())
	assert.Equal(t, "Descending", SortDescending.String())
	assert.True(t, TypeFloat.Numeric())
	assert.False(t, TypeBool.Numeric())
}
