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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2/dialog"

	"nwbview/export"
	"nwbview/hdf"
)

// FileType represents the type of a path handed to the application
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeDirectory
	FileTypeContainer
	FileTypeParquet
)

// DetectFileType determines the type of a path from its extension and, for
// files, the container signature.
func DetectFileType(filePath string) FileType {
	info, err := os.Stat(filePath)
	if err != nil {
		return FileTypeUnknown
	}
	if info.IsDir() {
		return FileTypeDirectory
	}
	if strings.EqualFold(filepath.Ext(filePath), ".parquet") {
		return FileTypeParquet
	}
	if ok, err := hdf.IsContainer(filePath); err == nil && ok {
		return FileTypeContainer
	}
	return FileTypeUnknown
}

// splitPaths separates Parquet tables from the paths loaded into the tree.
// Unknown paths go to the tree so that the load summary reports them.
func splitPaths(paths []string) (tree, tables []string) {
	for _, p := range paths {
		if DetectFileType(p) == FileTypeParquet {
			tables = append(tables, p)
			continue
		}
		tree = append(tree, p)
	}
	return tree, tables
}

// LoadDataFiles loads container files and folders into the tree and opens
// Parquet files as tables.
func (t *MainWindow) LoadDataFiles(paths []string) {
	tree, tables := splitPaths(paths)
	if len(tree) > 0 {
		t.Load(tree)
	}
	for _, p := range tables {
		if err := t.loadParquetFile(p); err != nil {
			t.logger.Error("parquet load failed", "path", p, "error", err)
			dialog.ShowError(err, t.w)
		}
	}
}

// loadParquetFile opens a previously exported table in a new tab
func (t *MainWindow) loadParquetFile(filePath string) error {
	name := filepath.Base(filePath)
	t.SetStatus("Loading Parquet file: " + name)

	table, err := export.ReadParquet(filePath)
	if err != nil {
		return err
	}
	defer table.Release()

	source, err := export.NewArrowSource(table)
	if err != nil {
		return fmt.Errorf("failed to read parquet table: %w", err)
	}

	desc := fmt.Sprintf("%s: %d rows, %d columns", filePath, source.RowCount(), source.ColumnCount())
	if err := t.dataBrowser.ShowTable(name, desc, source); err != nil {
		return err
	}
	t.SetStatus(fmt.Sprintf("Loaded Parquet file: %s (%d rows, %d columns)",
		name, source.RowCount(), source.ColumnCount()))
	return nil
}
