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

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"nwbview/datatable"
	"nwbview/export"
)

// exportTable asks for options and a destination, then writes the visible
// rows of model. The arrow table is built on the calling goroutine so later
// sorting or filtering does not race the writer.
func exportTable(w fyne.Window, name string, model *datatable.TableModel, logger *slog.Logger, status func(string)) {
	NewExportOptionsDialog(w, model.VisibleRowCount(), func(opts export.Options) {
		saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if writer == nil {
				return
			}

			table, err := export.Table(model, opts.Limit)
			if err != nil {
				_ = writer.Close()
				dialog.ShowError(fmt.Errorf("export failed: %w", err), w)
				return
			}

			filePath := writer.URI().Path()
			pbi := widget.NewProgressBarInfinite()
			progress := dialog.NewCustomWithoutButtons("Exporting...", pbi, w)
			progress.Resize(fyne.NewSize(300, 100))
			progress.Show()

			go func() {
				defer table.Release()
				rows := table.NumRows()
				exportErr := export.Write(table, writer, opts.Format)
				if closeErr := writer.Close(); exportErr == nil && closeErr != nil {
					exportErr = fmt.Errorf("%w: %w", datatable.ErrExportFailed, closeErr)
				}

				fyne.Do(func() {
					pbi.Stop()
					progress.Hide()
					if exportErr != nil {
						logger.Error("export failed", "table", name, "path", filePath, "error", exportErr)
						dialog.ShowError(fmt.Errorf("export failed: %w", exportErr), w)
						return
					}
					logger.Info("exported", "table", name, "path", filePath, "rows", rows, "format", opts.Format)
					status(fmt.Sprintf("Exported %d rows to %s", rows, filePath))
					dialog.ShowInformation("Export Successful",
						fmt.Sprintf("Data exported successfully to:\n%s", filePath), w)
				})
			}()
		}, w)

		saveDialog.SetFileName(cleanFilename(name) + opts.Format.Ext())
		saveDialog.Show()
	}).Show()
}
