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
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"nwbview/datatable"
	"nwbview/datatable/filter"
)

const (
	indexColumnWidth = 90
	valueColumnWidth = 220
)

// TableView shows a data source with a filter bar, sortable headers and an
// export action.
type TableView struct {
	w       fyne.Window
	name    string
	model   *datatable.TableModel
	table   *widget.Table
	query   *widget.Entry
	info    *widget.Label
	content fyne.CanvasObject
	logger  *slog.Logger

	// OnStatus receives the status line whenever the view changes.
	OnStatus func(string)
}

// NewTableView builds the view. description is shown above the table.
func NewTableView(w fyne.Window, name, description string, source datatable.DataSource, logger *slog.Logger) (*TableView, error) {
	model, err := datatable.NewTableModel(source)
	if err != nil {
		return nil, err
	}
	v := &TableView{w: w, name: name, model: model, logger: logger}

	v.table = widget.NewTableWithHeaders(
		func() (int, int) { return v.model.VisibleRowCount(), v.model.ColumnCount() },
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		v.updateCell,
	)
	v.table.ShowHeaderColumn = false
	v.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton("", nil)
	}
	v.table.UpdateHeader = v.updateHeader
	for col := 0; col < model.ColumnCount(); col++ {
		width := float32(valueColumnWidth)
		if col == 0 && model.ColumnCount() > 1 {
			width = indexColumnWidth
		}
		v.table.SetColumnWidth(col, width)
	}

	v.query = widget.NewEntry()
	v.query.SetPlaceHolder("Filter, e.g. Value > 0.5 AND Index <= 100")
	v.query.OnSubmitted = func(string) { v.applyFilter() }

	apply := widget.NewButtonWithIcon("", theme.SearchIcon(), v.applyFilter)
	reset := widget.NewButtonWithIcon("", theme.ContentClearIcon(), func() {
		v.query.SetText("")
		v.applyFilter()
	})
	export := widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), func() {
		exportTable(v.w, v.name, v.model, v.logger, v.setStatus)
	})

	v.info = widget.NewLabel(description)
	v.info.TextStyle = fyne.TextStyle{Italic: true}

	bar := container.NewBorder(nil, nil, nil, container.NewHBox(apply, reset, export), v.query)
	v.content = container.NewBorder(container.NewVBox(v.info, bar), nil, nil, nil, v.table)
	return v, nil
}

// Content returns the view's root object.
func (v *TableView) Content() fyne.CanvasObject { return v.content }

// Model returns the table model.
func (v *TableView) Model() *datatable.TableModel { return v.model }

// Status returns the status line for the current view.
func (v *TableView) Status() string {
	return tableStatus(v.name, v.model)
}

func (v *TableView) setStatus(msg string) {
	if v.OnStatus != nil {
		v.OnStatus(msg)
	}
}

func (v *TableView) updateCell(id widget.TableCellID, obj fyne.CanvasObject) {
	label, ok := obj.(*widget.Label)
	if !ok {
		return
	}
	cell, err := v.model.VisibleCell(id.Row, id.Col)
	if err != nil {
		label.SetText("")
		return
	}
	if cell.IsNull {
		label.SetText("null")
		return
	}
	label.SetText(cell.Formatted)
}

func (v *TableView) updateHeader(id widget.TableCellID, obj fyne.CanvasObject) {
	btn, ok := obj.(*widget.Button)
	if !ok || id.Col < 0 {
		return
	}
	name, err := v.model.ColumnName(id.Col)
	if err != nil {
		return
	}
	btn.SetText(headerText(name, id.Col, v.model.GetSortState()))
	col := id.Col
	btn.OnTapped = func() { v.sortBy(col) }
}

func (v *TableView) sortBy(col int) {
	if _, err := v.model.CycleSort(col); err != nil {
		v.logger.Warn("sort failed", "table", v.name, "column", col, "error", err)
		v.setStatus(fmt.Sprintf("Error: %v", err))
		return
	}
	v.table.Refresh()
	v.setStatus(v.Status())
}

func (v *TableView) applyFilter() {
	f, err := filter.Parse(v.query.Text, v.model.ColumnNames())
	if err != nil {
		v.setStatus(fmt.Sprintf("Invalid filter: %v", err))
		return
	}
	if f == nil {
		v.model.ClearFilter()
	} else if err := v.model.SetFilter(f); err != nil {
		v.setStatus(fmt.Sprintf("Filter failed: %v", err))
		return
	}
	v.table.ScrollToTop()
	v.table.Refresh()
	v.setStatus(v.Status())
}

func headerText(name string, col int, sort datatable.SortState) string {
	if !sort.IsSorted() || sort.Column != col {
		return name
	}
	if sort.Direction == datatable.SortDescending {
		return name + " ↓"
	}
	return name + " ↑"
}

// tableStatus describes the visible rows, active filter and sort.
func tableStatus(name string, model *datatable.TableModel) string {
	total, visible := model.OriginalRowCount(), model.VisibleRowCount()
	var b strings.Builder
	if visible != total {
		fmt.Fprintf(&b, "%s (showing %d/%d rows)", name, visible, total)
	} else {
		fmt.Fprintf(&b, "%s (%d rows)", name, total)
	}
	if f := model.Filter(); f != nil {
		fmt.Fprintf(&b, " | Filter: %s", f.Description())
	}
	if sort := model.GetSortState(); sort.IsSorted() {
		colName, _ := model.ColumnName(sort.Column)
		fmt.Fprintf(&b, " | Sorted: %s", headerText(colName, sort.Column, sort))
	}
	return b.String()
}
