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

package export

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"nwbview/datatable"
)

// ReadParquet loads a Parquet file, such as a previous export, into memory.
func ReadParquet(filePath string) (arrow.Table, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	mem := memory.NewGoAllocator()
	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	return table, nil
}

// ArrowSource is a datatable.DataSource over a fully materialized Arrow table.
type ArrowSource struct {
	names []string
	types []datatable.DataType
	rows  [][]datatable.Value
	meta  datatable.Metadata
}

var _ datatable.DataSource = (*ArrowSource)(nil)

// NewArrowSource copies the rows of table. The table may be released afterwards.
func NewArrowSource(table arrow.Table) (*ArrowSource, error) {
	if table == nil {
		return nil, datatable.ErrNoDataSource
	}
	schema := table.Schema()
	s := &ArrowSource{
		names: make([]string, schema.NumFields()),
		types: make([]datatable.DataType, schema.NumFields()),
		rows:  make([][]datatable.Value, 0, table.NumRows()),
		meta:  datatable.Metadata{"rows": table.NumRows()},
	}
	for i, field := range schema.Fields() {
		s.names[i] = field.Name
		s.types[i] = dataType(field.Type)
	}

	err := eachRow(table, func(rec arrow.Record, row int) error {
		values := make([]datatable.Value, len(s.names))
		for col := range s.names {
			values[col] = datatable.NewValue(sourceCell(rec.Column(col), row), s.types[col])
		}
		s.rows = append(s.rows, values)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func dataType(t arrow.DataType) datatable.DataType {
	switch t.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		return datatable.TypeInt
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datatable.TypeUint
	case arrow.FLOAT32, arrow.FLOAT64:
		return datatable.TypeFloat
	case arrow.BOOL:
		return datatable.TypeBool
	default:
		return datatable.TypeString
	}
}

// sourceCell widens the value at pos to the Go type of its datatable column.
func sourceCell(col arrow.Array, pos int) any {
	if col.IsNull(pos) {
		return nil
	}
	switch c := col.(type) {
	case *array.Int8:
		return int64(c.Value(pos))
	case *array.Int16:
		return int64(c.Value(pos))
	case *array.Int32:
		return int64(c.Value(pos))
	case *array.Int64:
		return c.Value(pos)
	case *array.Uint8:
		return uint64(c.Value(pos))
	case *array.Uint16:
		return uint64(c.Value(pos))
	case *array.Uint32:
		return uint64(c.Value(pos))
	case *array.Uint64:
		return c.Value(pos)
	case *array.Float32:
		return float64(c.Value(pos))
	case *array.Float64:
		return c.Value(pos)
	case *array.Boolean:
		return c.Value(pos)
	case *array.String:
		return c.Value(pos)
	default:
		return c.ValueStr(pos)
	}
}

func (s *ArrowSource) RowCount() int    { return len(s.rows) }
func (s *ArrowSource) ColumnCount() int { return len(s.names) }

func (s *ArrowSource) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.names) {
		return "", fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.names[col], nil
}

func (s *ArrowSource) ColumnType(col int) (datatable.DataType, error) {
	if col < 0 || col >= len(s.types) {
		return 0, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.types[col], nil
}

func (s *ArrowSource) Cell(row, col int) (datatable.Value, error) {
	if row < 0 || row >= len(s.rows) {
		return datatable.Value{}, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, row)
	}
	if col < 0 || col >= len(s.names) {
		return datatable.Value{}, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.rows[row][col], nil
}

func (s *ArrowSource) Row(row int) ([]datatable.Value, error) {
	if row < 0 || row >= len(s.rows) {
		return nil, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, row)
	}
	out := make([]datatable.Value, len(s.rows[row]))
	copy(out, s.rows[row])
	return out, nil
}

func (s *ArrowSource) Metadata() datatable.Metadata { return s.meta }
