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
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"nwbview/browser"
	"nwbview/chartimg"
	"nwbview/config"
	"nwbview/hdf"
	"nwbview/snapshot"
)

// MainWindow is the browser window: the file tree on the left, detail tabs
// on the right and a status bar.
type MainWindow struct {
	a           fyne.App
	w           fyne.Window
	cfg         *config.Config
	logger      *slog.Logger
	state       *browser.State
	nav         *NavigationTree
	dataBrowser *DataBrowser
	watcher     *snapshot.Watcher
	theme       *CustomTheme
	left        fyne.CanvasObject
	emptyHint   *widget.Label
	statusBar   *widget.Label
}

// Run opens the main window, loads files and blocks until the window is
// closed. Every loaded file is released before it returns.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, files []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := CreateMainWindow(ctx, app.NewWithID("nwbview"), cfg, logger, hdf.Open)
	defer t.Shutdown()

	if len(files) > 0 {
		t.LoadDataFiles(files)
	}
	t.w.ShowAndRun()
	return nil
}

// CreateMainWindow builds the window on a.
func CreateMainWindow(ctx context.Context, a fyne.App, cfg *config.Config, logger *slog.Logger, open hdf.Opener) *MainWindow {
	t := &MainWindow{
		a:      a,
		cfg:    cfg,
		logger: logger,
		state:  browser.NewState(open, logger),
		theme:  NewCustomTheme(cfg.Theme),
	}
	t.a.Settings().SetTheme(t.theme)
	t.w = t.a.NewWindow("NWB Viewer")
	t.w.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))

	t.statusBar = widget.NewLabel("Ready")
	t.statusBar.TextStyle = fyne.TextStyle{Italic: true}
	t.statusBar.Truncation = fyne.TextTruncateEllipsis

	t.nav = NewNavigationTree(t.Refresh)
	plotSize := chartimg.Size{Width: cfg.Plot.Width, Height: cfg.Plot.Height}
	t.dataBrowser = NewDataBrowser(t.w, t.state.Windows, plotSize, logger, t.SetStatus, t.Refresh)

	if cfg.Files.Watch {
		t.startWatcher(ctx)
	}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.MenuIcon(), func() {
			if t.left.Visible() {
				t.left.Hide()
			} else {
				t.left.Show()
			}
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FileIcon(), t.OpenFiles),
		widget.NewToolbarAction(theme.FolderOpenIcon(), t.OpenFolder),
		widget.NewToolbarAction(theme.DeleteIcon(), t.CloseAll),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.ColorPaletteIcon(), t.ToggleTheme),
	)

	t.emptyHint = widget.NewLabel("Open an NWB or HDF5 file, or drop one here")
	t.emptyHint.Alignment = fyne.TextAlignCenter
	t.emptyHint.Wrapping = fyne.TextWrapWord
	t.left = container.NewStack(t.emptyHint, t.nav.Widget())
	t.showTree(false)

	split := container.NewHSplit(t.left, t.dataBrowser.Widget())
	split.Offset = 0.3

	t.w.SetContent(container.NewBorder(toolbar, container.NewHBox(t.statusBar), nil, nil, split))
	t.w.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		t.LoadDataFiles(uriPaths(uris))
	})
	return t
}

func (t *MainWindow) startWatcher(ctx context.Context) {
	w, err := snapshot.NewWatcher(t.logger, func(path string) {
		fyne.Do(func() {
			t.SetStatus(fmt.Sprintf("%s changed on disk; close and reopen to refresh", filepath.Base(path)))
		})
	})
	if err != nil {
		t.logger.Warn("file watching disabled", "error", err)
		return
	}
	t.watcher = w
	go w.Run(ctx)
}

// SetStatus updates the status bar message
func (t *MainWindow) SetStatus(message string) {
	if t.statusBar != nil {
		t.statusBar.SetText(message)
	}
}

// Load adds container files and folders to the tree.
func (t *MainWindow) Load(paths []string) {
	results := t.state.Load(paths, t.cfg.Files.Patterns)
	for _, r := range results {
		if !r.Loaded() {
			t.logger.Warn("file not loaded", "path", r.Path, "error", r.Err)
			continue
		}
		if t.watcher != nil {
			if err := t.watcher.Add(r.Path); err != nil {
				t.logger.Warn("cannot watch file", "path", r.Path, "error", err)
			}
		}
	}
	t.Refresh()
	t.SetStatus(browser.Summary(results))
}

// Refresh renders a frame of the tree and applies the resulting changes. A
// second frame follows when the first changed anything so the tree shows
// the new state.
func (t *MainWindow) Refresh() {
	for pass := 0; pass < 2; pass++ {
		t.nav.Begin()
		changes := t.state.Frame(t.nav)
		t.nav.End()

		t.dataBrowser.Sync(changes)
		for _, f := range changes.Evicted {
			if t.watcher != nil {
				t.watcher.Remove(f.Path)
			}
			t.SetStatus("Closed " + f.Name())
		}
		if changes.Empty() {
			break
		}
	}
	t.showTree(t.state.Files.Len() > 0)
}

func (t *MainWindow) showTree(show bool) {
	if show {
		t.emptyHint.Hide()
		t.nav.Widget().Show()
		return
	}
	t.nav.Widget().Hide()
	t.emptyHint.Show()
}

// OpenFiles shows the file dialog.
func (t *MainWindow) OpenFiles() {
	NewFileDialog(t.w, t.cfg.Files.Patterns, t.LoadDataFiles).Show()
}

// OpenFolder picks a folder and loads every matching file below it.
func (t *MainWindow) OpenFolder() {
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, t.w)
			return
		}
		if dir == nil {
			return
		}
		t.LoadDataFiles(uriPaths([]fyne.URI{dir}))
	}, t.w)
}

// CloseAll closes every file and detail window.
func (t *MainWindow) CloseAll() {
	for _, f := range t.state.Files.Files() {
		f.Open = false
	}
	t.Refresh()
	t.SetStatus("Ready")
}

// ToggleTheme switches between the light and dark palette.
func (t *MainWindow) ToggleTheme() {
	v := t.theme.Toggle(t.a.Settings().ThemeVariant())
	t.a.Settings().SetTheme(t.theme)
	t.logger.Debug("theme toggled", "variant", v)
}

// Shutdown releases every file and stops watching.
func (t *MainWindow) Shutdown() {
	t.state.CloseAll()
	if t.watcher != nil {
		if err := t.watcher.Close(); err != nil {
			t.logger.Warn("closing watcher", "error", err)
		}
	}
}
