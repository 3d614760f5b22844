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
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"nwbview/snapshot"
)

// fileEntry is one row of the file dialog.
type fileEntry struct {
	Name string
	Dir  bool
}

// FileDialog browses the local file system for container files and exported
// Parquet tables. Picking a file, or "Open Folder" for the directory shown,
// passes the paths to the callback.
type FileDialog struct {
	dialog      dialog.Dialog
	window      fyne.Window
	callback    func([]string)
	patterns    []string
	fileList    *widget.List
	files       []fileEntry
	homeDir     string
	currentPath string
	pathLabel   *widget.Label
}

// NewFileDialog creates a dialog starting in the working directory.
func NewFileDialog(w fyne.Window, patterns []string, callback func([]string)) *FileDialog {
	fd := &FileDialog{
		window:   w,
		callback: callback,
		patterns: patterns,
		files:    make([]fileEntry, 0),
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	fd.homeDir = homeDir
	fd.currentPath = homeDir
	if wd, err := os.Getwd(); err == nil {
		fd.currentPath = wd
	}
	return fd
}

func (fd *FileDialog) Show() {
	fd.pathLabel = widget.NewLabel(fd.currentPath)
	fd.pathLabel.Truncation = fyne.TextTruncateEllipsis
	fd.pathLabel.TextStyle = fyne.TextStyle{Bold: true}

	fd.fileList = widget.NewList(
		func() int {
			return len(fd.files)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.FileIcon()), widget.NewLabel("template"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			cont := obj.(*fyne.Container)
			icon := cont.Objects[0].(*widget.Icon)
			label := cont.Objects[1].(*widget.Label)

			entry := fd.files[id]
			label.SetText(entry.Name)
			if entry.Dir {
				icon.SetResource(theme.FolderIcon())
			} else {
				icon.SetResource(theme.FileApplicationIcon())
			}
		},
	)

	fd.fileList.OnSelected = func(id widget.ListItemID) {
		entry := fd.files[id]
		fullPath := filepath.Join(fd.currentPath, entry.Name)
		fd.fileList.UnselectAll()
		if entry.Dir {
			fd.currentPath = fullPath
			fd.loadDirectory()
			return
		}
		fd.dialog.Hide()
		fd.callback([]string{fullPath})
	}

	homeButton := widget.NewButtonWithIcon("Home", theme.HomeIcon(), func() {
		fd.currentPath = fd.homeDir
		fd.loadDirectory()
	})
	upButton := widget.NewButtonWithIcon("Up", theme.NavigateBackIcon(), func() {
		parent := filepath.Dir(fd.currentPath)
		if parent != fd.currentPath {
			fd.currentPath = parent
			fd.loadDirectory()
		}
	})
	refreshButton := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() {
		fd.loadDirectory()
	})
	folderButton := widget.NewButtonWithIcon("Open Folder", theme.FolderOpenIcon(), func() {
		fd.dialog.Hide()
		fd.callback([]string{fd.currentPath})
	})

	filterInfo := widget.NewLabel("Showing: " + strings.Join(fd.displayPatterns(), ", ") + " and directories")
	filterInfo.TextStyle = fyne.TextStyle{Italic: true}

	navToolbar := container.NewBorder(
		nil, nil,
		container.NewHBox(homeButton, upButton, refreshButton),
		folderButton,
		fd.pathLabel,
	)

	instructions := widget.NewRichTextFromMarkdown("**Select an NWB or HDF5 file**\n\nClick a folder to navigate into it, or use Open Folder to load every matching file below the current directory.")
	instructions.Wrapping = fyne.TextWrapWord

	content := container.NewBorder(
		container.NewVBox(
			instructions,
			widget.NewSeparator(),
			navToolbar,
			widget.NewSeparator(),
			filterInfo,
		),
		nil, nil, nil,
		fd.fileList,
	)

	fd.dialog = dialog.NewCustom("Open Files", "Close", content, fd.window)
	fd.dialog.Resize(fyne.NewSize(800, 600))
	fd.loadDirectory()
	fd.dialog.Show()
}

func (fd *FileDialog) displayPatterns() []string {
	patterns := fd.patterns
	if len(patterns) == 0 {
		patterns = snapshot.DefaultPatterns
	}
	out := make([]string, 0, len(patterns)+1)
	for _, p := range patterns {
		out = append(out, filepath.Base(p))
	}
	return append(out, "*.parquet")
}

func (fd *FileDialog) loadDirectory() {
	files, err := listEntries(fd.currentPath, fd.patterns)
	if err != nil {
		dialog.ShowError(err, fd.window)
		return
	}
	fd.files = files
	fd.pathLabel.SetText(fd.currentPath)
	fd.fileList.Refresh()
}

// listEntries returns the visible directories of dir followed by the files
// matching patterns or carrying a .parquet extension. Hidden entries are
// skipped.
func listEntries(dir string, patterns []string) ([]fileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	dirs := make([]fileEntry, 0)
	files := make([]fileEntry, 0)
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case entry.IsDir():
			dirs = append(dirs, fileEntry{Name: name, Dir: true})
		case snapshot.MatchesAny(name, patterns) || strings.EqualFold(filepath.Ext(name), ".parquet"):
			files = append(files, fileEntry{Name: name})
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return append(dirs, files...), nil
}
