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
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"nwbview/export"
)

// ExportOptionsDialog asks for the export format and an optional row limit.
type ExportOptionsDialog struct {
	dialog       dialog.Dialog
	window       fyne.Window
	formatSelect *widget.RadioGroup
	limitEntry   *widget.Entry
	callback     func(export.Options)
}

// NewExportOptionsDialog creates the dialog. visibleRows is shown as a hint.
func NewExportOptionsDialog(w fyne.Window, visibleRows int, callback func(export.Options)) *ExportOptionsDialog {
	eod := &ExportOptionsDialog{window: w, callback: callback}
	eod.createDialog(visibleRows)
	return eod
}

func (eod *ExportOptionsDialog) createDialog(visibleRows int) {
	formatLabel := widget.NewLabel("Format:")
	formatLabel.TextStyle = fyne.TextStyle{Bold: true}

	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = f.String()
	}
	eod.formatSelect = widget.NewRadioGroup(names, nil)
	eod.formatSelect.Horizontal = true
	eod.formatSelect.Required = true
	eod.formatSelect.SetSelected(export.FormatCSV.String())

	limitLabel := widget.NewLabel("Row Limit:")
	limitLabel.TextStyle = fyne.TextStyle{Bold: true}

	eod.limitEntry = widget.NewEntry()
	eod.limitEntry.SetPlaceHolder("Leave empty for all rows")

	limitHelp := widget.NewLabel(fmt.Sprintf("%d rows match the current filter.", visibleRows))
	limitHelp.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewVBox(
		formatLabel,
		eod.formatSelect,
		widget.NewSeparator(),
		limitLabel,
		eod.limitEntry,
		limitHelp,
	)

	eod.dialog = dialog.NewCustomConfirm(
		"Export Options",
		"Export",
		"Cancel",
		content,
		func(confirmed bool) {
			if confirmed {
				eod.handleConfirm()
			}
		},
		eod.window,
	)
	eod.dialog.Resize(fyne.NewSize(420, 260))
}

func (eod *ExportOptionsDialog) handleConfirm() {
	opts, err := parseExportOptions(eod.formatSelect.Selected, eod.limitEntry.Text)
	if err != nil {
		dialog.ShowError(err, eod.window)
		return
	}
	if eod.callback != nil {
		eod.callback(opts)
	}
}

// Show displays the dialog.
func (eod *ExportOptionsDialog) Show() {
	eod.dialog.Show()
}

func parseExportOptions(format, limit string) (export.Options, error) {
	var opts export.Options
	f, err := export.ParseFormat(format)
	if err != nil {
		return opts, err
	}
	opts.Format = f

	limit = strings.TrimSpace(limit)
	if limit == "" {
		return opts, nil
	}
	n, err := strconv.Atoi(limit)
	if err != nil || n <= 0 {
		return opts, fmt.Errorf("invalid limit: must be a positive number")
	}
	opts.Limit = n
	return opts, nil
}
