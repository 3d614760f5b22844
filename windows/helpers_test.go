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

package windows

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nwbview/datatable"
	"nwbview/datatable/filter"
	"nwbview/detail"
	"nwbview/export"
	"nwbview/hdf"
)

func TestListEntries(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.nwb", "a.h5", "notes.txt", "table.PARQUET", ".hidden.nwb"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sessions"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))

	entries, err := listEntries(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []fileEntry{
		{Name: "sessions", Dir: true},
		{Name: "a.h5"},
		{Name: "b.nwb"},
		{Name: "table.PARQUET"},
	}, entries)

	entries, err = listEntries(dir, []string{"**/*.nwb"})
	require.NoError(t, err)
	assert.Equal(t, []fileEntry{
		{Name: "sessions", Dir: true},
		{Name: "b.nwb"},
		{Name: "table.PARQUET"},
	}, entries)

	_, err = listEntries(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}

func TestDetectFileType(t *testing.T) {
	dir := t.TempDir()
	container := filepath.Join(dir, "real.nwb")
	require.NoError(t, os.WriteFile(container, append(append([]byte{}, hdf.Signature...), "rest"...), 0o600))
	empty := filepath.Join(dir, "empty.nwb")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	table := filepath.Join(dir, "t.parquet")
	require.NoError(t, os.WriteFile(table, nil, 0o600))

	assert.Equal(t, FileTypeDirectory, DetectFileType(dir))
	assert.Equal(t, FileTypeContainer, DetectFileType(container))
	assert.Equal(t, FileTypeParquet, DetectFileType(table))
	assert.Equal(t, FileTypeUnknown, DetectFileType(empty))
	assert.Equal(t, FileTypeUnknown, DetectFileType(filepath.Join(dir, "missing.h5")))

	tree, tables := splitPaths([]string{container, table, empty, dir})
	assert.Equal(t, []string{container, empty, dir}, tree)
	assert.Equal(t, []string{table}, tables)
}

func TestParseExportOptions(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		limit   string
		want    export.Options
		wantErr bool
	}{
		{name: "csv all rows", format: "CSV", want: export.Options{Format: export.FormatCSV}},
		{name: "parquet limited", format: "Parquet", limit: " 25 ", want: export.Options{Format: export.FormatParquet, Limit: 25}},
		{name: "json", format: "JSON", limit: "", want: export.Options{Format: export.FormatJSON}},
		{name: "zero limit", format: "CSV", limit: "0", wantErr: true},
		{name: "text limit", format: "CSV", limit: "ten", wantErr: true},
		{name: "unknown format", format: "XLSX", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExportOptions(tt.format, tt.limit)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanFilename(t *testing.T) {
	assert.Equal(t, "acquisition_ts_data", cleanFilename("/acquisition/ts/data"))
	assert.Equal(t, "my_table-1", cleanFilename("my table-1"))
	assert.Equal(t, "export", cleanFilename("/"))
}

func TestUriPaths(t *testing.T) {
	remote, err := storage.ParseURI("https://example.org/b.nwb")
	require.NoError(t, err)
	uris := []fyne.URI{storage.NewFileURI("/data/a.nwb"), remote, nil}
	assert.Equal(t, []string{"/data/a.nwb"}, uriPaths(uris))
}

func TestTableStatus(t *testing.T) {
	src, err := datatable.NewSeriesSource("values", detail.NewSeries(detail.KindInt, []int64{5, 1, 3, 8}))
	require.NoError(t, err)
	model, err := datatable.NewTableModel(src)
	require.NoError(t, err)

	assert.Equal(t, "/ts/data (4 rows)", tableStatus("/ts/data", model))

	f, err := filter.Parse("Value > 2", model.ColumnNames())
	require.NoError(t, err)
	require.NoError(t, model.SetFilter(f))
	_, err = model.CycleSort(1)
	require.NoError(t, err)
	assert.Equal(t, "/ts/data (showing 3/4 rows) | Filter: "+f.Description()+" | Sorted: Value ↑", tableStatus("/ts/data", model))

	_, err = model.CycleSort(1)
	require.NoError(t, err)
	assert.Equal(t, "Value ↓", headerText("Value", 1, model.GetSortState()))
	assert.Equal(t, "Index", headerText("Index", 0, model.GetSortState()))
}
