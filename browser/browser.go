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

// Package browser renders loaded files as a tree on a Surface and applies
// the resulting user intents to the file and window registries once per
// frame.
package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"nwbview/detail"
	"nwbview/hdf"
	"nwbview/snapshot"
)

// Surface is the part of the host toolkit the tree renderer needs.
// Button and Toggle report whether the widget with the given id was
// clicked since the previous frame.
type Surface interface {
	Collapsing(id, label string, body func())
	Toggle(id, label string, open bool) bool
	Button(id, label string) bool
}

// IntentKind is the kind of a queued user action.
type IntentKind int

const (
	IntentOpenDataset IntentKind = iota
	IntentCloseDataset
	IntentShowPlot
	IntentCloseFile
)

// Intent is a user action recorded while rendering.
type Intent struct {
	Kind    IntentKind
	Key     string
	File    *snapshot.FileSnapshot
	Group   *snapshot.GroupNode
	Dataset string
}

// Changes summarizes what a frame did to the registries.
type Changes struct {
	Opened  []*detail.Window
	Closed  []string
	Evicted []*snapshot.FileSnapshot
	// Revealed lists already-open windows the user asked to see again.
	Revealed []string
}

// Empty reports whether the frame changed the registries. Revealed does not
// count.
func (c Changes) Empty() bool {
	return len(c.Opened) == 0 && len(c.Closed) == 0 && len(c.Evicted) == 0
}

// State is the top-level session: the loaded files and the open detail
// windows. It is driven from a single UI goroutine.
type State struct {
	Files   *snapshot.Registry
	Windows *detail.Registry

	logger  *slog.Logger
	intents []Intent
}

// NewState creates a session with no files.
func NewState(open hdf.Opener, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &State{
		Files:   snapshot.NewRegistry(open, logger),
		Windows: detail.NewRegistry(),
		logger:  logger,
	}
}

// FileNodeID is the tree id of a file's header.
func FileNodeID(file string) string { return "file:" + file }

// CloseFileID is the tree id of a file's close action.
func CloseFileID(file string) string { return "close:" + file }

// Frame renders every open file and then applies the queued intents. No
// registry is mutated while the tree is being walked.
func (s *State) Frame(surf Surface) Changes {
	for _, f := range s.Files.Files() {
		if f.Open {
			s.RenderFile(surf, f)
		}
	}
	return s.apply()
}

// RenderFile renders one file header with its close action and tree.
func (s *State) RenderFile(surf Surface, f *snapshot.FileSnapshot) {
	surf.Collapsing(FileNodeID(f.Path), f.Name(), func() {
		if surf.Button(CloseFileID(f.Path), "Close") {
			s.enqueue(Intent{Kind: IntentCloseFile, File: f})
		}
		s.RenderGroup(surf, f, f.Root)
	})
}

// RenderGroup renders node's subgroups depth-first, then one toggle per
// dataset, then a single Plot action when the group holds a data and
// timestamps pair.
func (s *State) RenderGroup(surf Surface, f *snapshot.FileSnapshot, node *snapshot.GroupNode) {
	surf.Collapsing(detail.Key(f.Path, node.Path), node.Name(), func() {
		for _, sub := range node.Subgroups {
			s.RenderGroup(surf, f, sub)
		}
		for _, p := range node.DatasetPaths {
			key := detail.Key(f.Path, p)
			open := s.Windows.Has(key)
			if !surf.Toggle(key, hdf.Base(p), open) {
				continue
			}
			kind := IntentOpenDataset
			if open {
				kind = IntentCloseDataset
			}
			s.enqueue(Intent{Kind: kind, Key: key, File: f, Group: node, Dataset: p})
		}
		if node.HasPlotPair() {
			key := detail.PlotKey(f.Path, node.Path)
			if surf.Button(key, "Plot") {
				s.enqueue(Intent{Kind: IntentShowPlot, Key: key, File: f, Group: node})
			}
		}
	})
}

func (s *State) enqueue(in Intent) {
	s.intents = append(s.intents, in)
}

// Pending returns the number of queued intents.
func (s *State) Pending() int {
	return len(s.intents)
}

func (s *State) apply() Changes {
	var ch Changes
	intents := s.intents
	s.intents = nil

	for _, in := range intents {
		switch in.Kind {
		case IntentOpenDataset:
			w, created := s.Windows.Ensure(in.File.Path, in.Key, func() *detail.Window {
				return s.openDataset(in)
			})
			if created {
				ch.Opened = append(ch.Opened, w)
			}
		case IntentCloseDataset:
			if s.Windows.Remove(in.Key) {
				ch.Closed = append(ch.Closed, in.Key)
			}
		case IntentShowPlot:
			w, created := s.Windows.Ensure(in.File.Path, in.Key, func() *detail.Window {
				s.logger.Debug("plot", "file", in.File.Path, "group", in.Group.Path)
				return detail.OpenPlot(in.Key, in.Group.Handle)
			})
			if created {
				ch.Opened = append(ch.Opened, w)
			} else {
				ch.Revealed = append(ch.Revealed, in.Key)
			}
		case IntentCloseFile:
			in.File.Open = false
		}
	}

	for _, f := range s.Files.SweepClosed() {
		ch.Evicted = append(ch.Evicted, f)
		ch.Closed = append(ch.Closed, s.Windows.DropFile(f.Path)...)
	}
	ch.Closed = append(ch.Closed, s.Windows.SweepClosed()...)

	// Windows opened and dropped within the same frame never reach the host.
	ch.Opened = slices.DeleteFunc(ch.Opened, func(w *detail.Window) bool {
		cur, ok := s.Windows.Get(w.Key)
		return !ok || cur != w
	})
	ch.Revealed = slices.DeleteFunc(ch.Revealed, func(key string) bool {
		return !s.Windows.Has(key)
	})
	return ch
}

func (s *State) openDataset(in Intent) *detail.Window {
	s.logger.Debug("open dataset", "file", in.File.Path, "dataset", in.Dataset)
	var w *detail.Window
	ds, err := in.Group.Handle.Dataset(in.Dataset)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", detail.ErrReadFailed, in.Dataset, err)
		w = detail.NewErrorWindow(in.Key, "Cannot open "+hdf.Base(in.Dataset), err)
	} else {
		w = detail.OpenDataset(in.Key, ds)
	}
	if w.Kind == detail.WindowError {
		s.logger.Warn("dataset unavailable", "file", in.File.Path, "dataset", in.Dataset, "error", w.Error.Err)
	}
	return w
}

// LoadResult is the outcome of loading one path.
type LoadResult struct {
	Path     string
	Snapshot *snapshot.FileSnapshot
	Err      error
}

// Loaded reports whether the path was newly added.
func (r LoadResult) Loaded() bool {
	return r.Err == nil
}

// Load adds each path to the file registry. Directories are expanded with
// patterns. Already-loaded files are reported with an error matching
// snapshot.ErrAlreadyLoaded.
func (s *State) Load(paths []string, patterns []string) []LoadResult {
	var results []LoadResult
	for _, p := range paths {
		info, err := os.Stat(p)
		if err == nil && info.IsDir() {
			found, err := snapshot.Discover(p, patterns)
			if err != nil {
				s.logger.Warn("discover failed", "dir", p, "error", err)
				results = append(results, LoadResult{Path: p, Err: err})
				continue
			}
			s.logger.Info("discovered files", "dir", p, "count", len(found))
			for _, f := range found {
				results = append(results, s.add(f))
			}
			continue
		}
		results = append(results, s.add(p))
	}
	return results
}

func (s *State) add(p string) LoadResult {
	snap, err := s.Files.Add(p)
	res := LoadResult{Path: p, Snapshot: snap, Err: err}
	if snap != nil {
		res.Path = snap.Path
	}
	return res
}

// Summary renders load results for a status line.
func Summary(results []LoadResult) string {
	loaded, dup, failed := 0, 0, 0
	for _, r := range results {
		switch {
		case r.Err == nil:
			loaded++
		case errors.Is(r.Err, snapshot.ErrAlreadyLoaded):
			dup++
		default:
			failed++
		}
	}
	msg := fmt.Sprintf("Loaded %d file(s)", loaded)
	if dup > 0 {
		msg += fmt.Sprintf(", %d already loaded", dup)
	}
	if failed > 0 {
		msg += fmt.Sprintf(", %d could not be loaded", failed)
	}
	return msg
}

// CloseAll evicts every file and drops all windows.
func (s *State) CloseAll() {
	for _, f := range s.Files.CloseAll() {
		s.Windows.DropFile(f.Path)
	}
}
