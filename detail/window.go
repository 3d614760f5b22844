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

package detail

import (
	"fmt"
	"strings"

	"nwbview/hdf"
)

// WindowKind tags the payload held by a Window.
type WindowKind int

const (
	WindowTable WindowKind = iota
	WindowScalar
	WindowPlot
	WindowError
)

func (k WindowKind) String() string {
	switch k {
	case WindowTable:
		return "table"
	case WindowScalar:
		return "scalar"
	case WindowPlot:
		return "plot"
	case WindowError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrorPopup is a message with an acknowledge action.
type ErrorPopup struct {
	Title   string
	Message string
	Err     error
}

// Window is one detail view. Exactly one payload field, selected by Kind,
// is set.
type Window struct {
	Key string
	// File is the canonical path of the file the window reads from.
	File  string
	Kind  WindowKind
	Title string
	// Open is the visibility flag. Cleared windows are removed by the next
	// Registry.SweepClosed.
	Open bool

	Descriptor hdf.TypeDescriptor
	Table      Rows
	Scalar     *ScalarLabel
	Plot       *Plot
	Error      *ErrorPopup
}

// Acknowledge closes an error popup.
func (w *Window) Acknowledge() {
	w.Open = false
}

// NewErrorWindow wraps err in an ErrorPopup window.
func NewErrorWindow(key, title string, err error) *Window {
	return &Window{
		Key:   key,
		Kind:  WindowError,
		Title: title,
		Open:  true,
		Error: &ErrorPopup{Title: title, Message: err.Error(), Err: err},
	}
}

// OpenDataset reads ds and returns a Table or ScalarLabel window, or an
// ErrorPopup window when the type is unsupported or the read fails.
func OpenDataset(key string, ds hdf.Dataset) *Window {
	rows, desc, err := Dataset(ds)
	if err != nil {
		return NewErrorWindow(key, fmt.Sprintf("Cannot open %s", hdf.Base(ds.Path())), err)
	}

	w := &Window{
		Key:        key,
		Title:      ds.Path(),
		Open:       true,
		Descriptor: desc,
	}
	if desc.IsScalar() {
		w.Kind = WindowScalar
		w.Scalar = &ScalarLabel{Kind: rows.Kind(), Value: rows.Value(0), Text: rows.Cell(0)}
		return w
	}
	w.Kind = WindowTable
	w.Table = rows
	return w
}

// OpenPlot reads the plot series of g, or returns an ErrorPopup window.
func OpenPlot(key string, g hdf.Group) *Window {
	p, err := LoadPlot(g)
	if err != nil {
		return NewErrorWindow(key, fmt.Sprintf("Cannot plot %s", hdf.Base(g.Path())), err)
	}
	return &Window{
		Key:   key,
		Kind:  WindowPlot,
		Title: "Plot " + g.Path(),
		Open:  true,
		Plot:  p,
	}
}

const keySep = "#"

// Key identifies an object of a loaded file in the window registry.
func Key(file, object string) string {
	return file + keySep + object
}

// PlotKey identifies the plot of a group.
func PlotKey(file, group string) string {
	return Key(file, group) + keySep + "plot"
}

// ObjectPath returns the object path part of a key built for file, or ""
// when key does not belong to file.
func ObjectPath(file, key string) string {
	obj, ok := strings.CutPrefix(key, file+keySep)
	if !ok || !strings.HasPrefix(obj, "/") {
		return ""
	}
	return strings.TrimSuffix(obj, keySep+"plot")
}
