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
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"nwbview/browser"
	"nwbview/chartimg"
	"nwbview/datatable"
	"nwbview/detail"
	"nwbview/hdf"
)

// Data holds information about a detail tab.
type Data struct {
	key   string // window registry key; empty for tables opened from Parquet
	title string
	tab   *container.TabItem
	table *TableView
}

// DataBrowser shows the detail windows of the registry as document tabs and
// error windows as popups.
type DataBrowser struct {
	w              fyne.Window
	docTabs        *container.DocTabs
	windows        *detail.Registry
	tabDataMap     map[*container.TabItem]*Data
	keyDataMap     map[string]*Data
	popups         map[string]dialog.Dialog
	plotSize       chartimg.Size
	logger         *slog.Logger
	statusCallback func(string)
	refresh        func()
}

// NewDataBrowser creates the tab container. refresh renders a frame and is
// called after the user closed a tab or acknowledged a popup.
func NewDataBrowser(w fyne.Window, windows *detail.Registry, plotSize chartimg.Size, logger *slog.Logger, statusCallback func(string), refresh func()) *DataBrowser {
	t := &DataBrowser{
		w:              w,
		windows:        windows,
		tabDataMap:     make(map[*container.TabItem]*Data),
		keyDataMap:     make(map[string]*Data),
		popups:         make(map[string]dialog.Dialog),
		plotSize:       plotSize,
		logger:         logger,
		statusCallback: statusCallback,
		refresh:        refresh,
	}
	t.docTabs = container.NewDocTabs()
	t.docTabs.CloseIntercept = t.closeIntercept
	t.docTabs.OnSelected = t.updateStatusForTab
	return t
}

// Widget returns the tab container.
func (t *DataBrowser) Widget() fyne.CanvasObject {
	return t.docTabs
}

// Len returns the number of open tabs.
func (t *DataBrowser) Len() int {
	return len(t.tabDataMap)
}

// Sync applies the changes of a frame: closed windows lose their tab or
// popup, opened windows get one and revealed windows are selected.
func (t *DataBrowser) Sync(changes browser.Changes) {
	for _, key := range changes.Closed {
		t.remove(key)
	}
	for _, win := range changes.Opened {
		t.show(win)
	}
	for _, key := range changes.Revealed {
		if data, ok := t.keyDataMap[key]; ok {
			t.docTabs.Select(data.tab)
		}
	}
}

// closeIntercept marks the window closed; the tab goes away when the next
// frame sweeps it from the registry.
func (t *DataBrowser) closeIntercept(ti *container.TabItem) {
	data, exists := t.tabDataMap[ti]
	if !exists || data.key == "" {
		t.removeTab(ti)
		return
	}
	if win, ok := t.windows.Get(data.key); ok {
		win.Open = false
		t.refresh()
		return
	}
	t.removeTab(ti)
}

func (t *DataBrowser) show(win *detail.Window) {
	var (
		content fyne.CanvasObject
		view    *TableView
	)
	switch win.Kind {
	case detail.WindowError:
		t.showError(win)
		return
	case detail.WindowScalar:
		content = t.scalarView(win)
	case detail.WindowPlot:
		content = newPlotView(win.Plot, t.plotSize)
	case detail.WindowTable:
		source, err := datatable.NewSeriesSource(win.Title, win.Table)
		if err == nil {
			view, err = NewTableView(t.w, win.Title, win.Descriptor.String(), source, t.logger)
		}
		if err != nil {
			t.logger.Error("table view failed", "window", win.Key, "error", err)
			dialog.ShowError(fmt.Errorf("cannot show %s: %w", win.Title, err), t.w)
			win.Open = false
			return
		}
		content = view.Content()
	default:
		return
	}
	t.addTab(&Data{key: win.Key, title: tabTitle(win), table: view}, content)
}

// ShowTable opens a tab for a data source that has no registry window.
func (t *DataBrowser) ShowTable(name, description string, source datatable.DataSource) error {
	view, err := NewTableView(t.w, name, description, source, t.logger)
	if err != nil {
		return fmt.Errorf("failed to create table model: %w", err)
	}
	t.addTab(&Data{title: name, table: view}, view.Content())
	return nil
}

func (t *DataBrowser) addTab(data *Data, content fyne.CanvasObject) {
	data.tab = container.NewTabItem(data.title, content)
	if data.table != nil {
		data.table.OnStatus = t.statusCallback
	}
	t.tabDataMap[data.tab] = data
	if data.key != "" {
		t.keyDataMap[data.key] = data
	}
	t.docTabs.Append(data.tab)
	t.docTabs.Select(data.tab)
	t.updateStatusForTab(data.tab)
}

func (t *DataBrowser) showError(win *detail.Window) {
	msg := widget.NewLabel(win.Error.Message)
	msg.Wrapping = fyne.TextWrapWord
	content := container.NewBorder(nil, nil, widget.NewIcon(theme.ErrorIcon()), nil, msg)

	d := dialog.NewCustom(win.Error.Title, "Ok", content, t.w)
	d.SetOnClosed(func() {
		if _, live := t.popups[win.Key]; !live {
			return
		}
		win.Acknowledge()
		t.refresh()
	})
	d.Resize(fyne.NewSize(480, 180))
	t.popups[win.Key] = d
	d.Show()
}

func (t *DataBrowser) remove(key string) {
	if d, ok := t.popups[key]; ok {
		delete(t.popups, key)
		d.Hide()
	}
	if data, ok := t.keyDataMap[key]; ok {
		t.removeTab(data.tab)
	}
}

func (t *DataBrowser) removeTab(ti *container.TabItem) {
	if data, ok := t.tabDataMap[ti]; ok {
		delete(t.tabDataMap, ti)
		if data.key != "" {
			delete(t.keyDataMap, data.key)
		}
	}
	t.docTabs.Remove(ti)

	if selected := t.docTabs.Selected(); selected != nil {
		t.updateStatusForTab(selected)
	} else if t.statusCallback != nil {
		t.statusCallback("Ready")
	}
}

// updateStatusForTab updates the status bar with information about the given tab.
func (t *DataBrowser) updateStatusForTab(ti *container.TabItem) {
	if ti == nil || t.statusCallback == nil {
		return
	}
	data, exists := t.tabDataMap[ti]
	if !exists {
		return
	}
	if data.table != nil {
		t.statusCallback(data.table.Status())
		return
	}
	if win, ok := t.windows.Get(data.key); ok {
		t.statusCallback(fmt.Sprintf("%s (%s)", win.Title, win.Kind))
	}
}

func (t *DataBrowser) scalarView(win *detail.Window) fyne.CanvasObject {
	value := widget.NewLabel(win.Scalar.Text)
	value.TextStyle = fyne.TextStyle{Bold: true}
	value.Wrapping = fyne.TextWrapWord
	value.Selectable = true

	copyButton := widget.NewButtonWithIcon("Copy", theme.ContentCopyIcon(), func() {
		t.w.Clipboard().SetContent(win.Scalar.Text)
		if t.statusCallback != nil {
			t.statusCallback("Copied " + hdf.Base(win.Title))
		}
	})

	card := widget.NewCard(hdf.Base(win.Title), win.Descriptor.String(), value)
	return container.NewVBox(card, container.NewHBox(copyButton))
}

func tabTitle(win *detail.Window) string {
	if win.Kind == detail.WindowPlot {
		return "Plot " + hdf.Base(detail.ObjectPath(win.File, win.Key))
	}
	return hdf.Base(win.Title)
}
