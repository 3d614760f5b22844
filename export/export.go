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

// Package export writes the visible rows of a table model to Parquet, CSV
// or JSON through an Arrow table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"nwbview/datatable"
)

// Format represents the supported export formats
type Format int

const (
	FormatParquet Format = iota
	FormatCSV
	FormatJSON
)

// Formats lists every format in menu order.
var Formats = []Format{FormatParquet, FormatCSV, FormatJSON}

func (f Format) String() string {
	switch f {
	case FormatParquet:
		return "Parquet"
	case FormatCSV:
		return "CSV"
	case FormatJSON:
		return "JSON"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the file extension, including the dot.
func (f Format) Ext() string {
	return "." + strings.ToLower(f.String())
}

// ParseFormat accepts a format name or extension, ignoring case.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	for _, f := range Formats {
		if strings.ToLower(f.String()) == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown export format %q", s)
}

// Options control an export.
type Options struct {
	Format Format
	// Limit caps the number of exported rows; 0 exports all visible rows.
	Limit int
}

func arrowType(t datatable.DataType) arrow.DataType {
	switch t {
	case datatable.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case datatable.TypeUint:
		return arrow.PrimitiveTypes.Uint64
	case datatable.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case datatable.TypeBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// Table builds an Arrow table from the model's visible rows, in display
// order, capped at limit when limit > 0. The caller releases the table.
func Table(model *datatable.TableModel, limit int) (arrow.Table, error) {
	rows := model.VisibleRowIndices()
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data to export", datatable.ErrEmptyData)
	}

	source := model.Source()
	ncols := model.ColumnCount()
	fields := make([]arrow.Field, ncols)
	for c := range fields {
		name, err := model.ColumnName(c)
		if err != nil {
			return nil, err
		}
		typ, err := source.ColumnType(c)
		if err != nil {
			return nil, err
		}
		fields[c] = arrow.Field{Name: name, Type: arrowType(typ), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	pool := memory.NewGoAllocator()
	columns := make([]arrow.Column, ncols)
	for c, field := range fields {
		builder := array.NewBuilder(pool, field.Type)
		for _, r := range rows {
			v, err := source.Cell(r, c)
			if err != nil {
				builder.Release()
				return nil, err
			}
			appendValue(builder, v)
		}
		arr := builder.NewArray()
		builder.Release()

		chunked := arrow.NewChunked(field.Type, []arrow.Array{arr})
		arr.Release()
		columns[c] = *arrow.NewColumn(field, chunked)
		chunked.Release()
	}
	return array.NewTable(schema, columns, int64(len(rows))), nil
}

func appendValue(builder array.Builder, v datatable.Value) {
	if v.IsNull {
		builder.AppendNull()
		return
	}
	switch b := builder.(type) {
	case *array.Int64Builder:
		if x, ok := v.Raw.(int64); ok {
			b.Append(x)
			return
		}
	case *array.Uint64Builder:
		if x, ok := v.Raw.(uint64); ok {
			b.Append(x)
			return
		}
	case *array.Float64Builder:
		if x, ok := v.Float(); ok {
			b.Append(x)
			return
		}
	case *array.BooleanBuilder:
		if x, ok := v.Raw.(bool); ok {
			b.Append(x)
			return
		}
	case *array.StringBuilder:
		b.Append(v.Formatted)
		return
	}
	builder.AppendNull()
}

// Write encodes table to w in the given format.
func Write(table arrow.Table, w io.Writer, format Format) error {
	var err error
	switch format {
	case FormatParquet:
		err = WriteParquet(table, w)
	case FormatCSV:
		err = WriteCSV(table, w)
	case FormatJSON:
		err = WriteJSON(table, w)
	default:
		err = fmt.Errorf("unknown export format %d", format)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", datatable.ErrExportFailed, err)
	}
	return nil
}

// ToFile exports the model's visible rows to path.
func ToFile(model *datatable.TableModel, path string, opts Options) (int64, error) {
	table, err := Table(model, opts.Limit)
	if err != nil {
		return 0, err
	}
	defer table.Release()

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", datatable.ErrExportFailed, err)
	}
	if err := Write(table, f, opts.Format); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("%w: %w", datatable.ErrExportFailed, err)
	}
	return table.NumRows(), nil
}

// WriteParquet writes the table with snappy compression.
func WriteParquet(table arrow.Table, w io.Writer) error {
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(table.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.WriteTable(table, table.NumRows()); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	return writer.Close()
}

// WriteCSV writes a header row followed by one line per row. Nulls are
// written as empty fields.
func WriteCSV(table arrow.Table, w io.Writer) error {
	writer := csv.NewWriter(w)

	schema := table.Schema()
	headers := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		headers[i] = field.Name
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	err := eachRow(table, func(rec arrow.Record, row int) error {
		line := make([]string, rec.NumCols())
		for c, col := range rec.Columns() {
			line[c] = formatCell(col, row)
		}
		return writer.Write(line)
	})
	if err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON writes an indented array of objects keyed by column name.
func WriteJSON(table arrow.Table, w io.Writer) error {
	schema := table.Schema()
	records := make([]map[string]any, 0, table.NumRows())
	err := eachRow(table, func(rec arrow.Record, row int) error {
		record := make(map[string]any, rec.NumCols())
		for c, col := range rec.Columns() {
			record[schema.Field(c).Name] = typedCell(col, row)
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func eachRow(table arrow.Table, fn func(rec arrow.Record, row int) error) error {
	tr := array.NewTableReader(table, table.NumRows())
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		for row := 0; row < int(rec.NumRows()); row++ {
			if err := fn(rec, row); err != nil {
				return err
			}
		}
	}
	if err := tr.Err(); err != nil {
		return fmt.Errorf("error reading table: %w", err)
	}
	return nil
}

func formatCell(col arrow.Array, pos int) string {
	if col.IsNull(pos) {
		return ""
	}
	switch c := col.(type) {
	case *array.Int64:
		return strconv.FormatInt(c.Value(pos), 10)
	case *array.Uint64:
		return strconv.FormatUint(c.Value(pos), 10)
	case *array.Float64:
		return strconv.FormatFloat(c.Value(pos), 'g', -1, 64)
	case *array.Boolean:
		return strconv.FormatBool(c.Value(pos))
	case *array.String:
		return c.Value(pos)
	default:
		return c.ValueStr(pos)
	}
}

func typedCell(col arrow.Array, pos int) any {
	if col.IsNull(pos) {
		return nil
	}
	switch c := col.(type) {
	case *array.Int64:
		return c.Value(pos)
	case *array.Uint64:
		return c.Value(pos)
	case *array.Float64:
		v := c.Value(pos)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	case *array.Boolean:
		return c.Value(pos)
	case *array.String:
		return c.Value(pos)
	default:
		return c.ValueStr(pos)
	}
}
