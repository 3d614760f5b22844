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

package snapshot

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"nwbview/hdf"
)

// Registry holds the loaded files in load order. No two entries share a
// canonical path. It is owned by the UI frame and is not safe for
// concurrent use.
type Registry struct {
	open   hdf.Opener
	logger *slog.Logger
	files  []*FileSnapshot
}

// NewRegistry creates an empty registry that opens files with open.
func NewRegistry(open hdf.Opener, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		open:   open,
		logger: logger,
		files:  make([]*FileSnapshot, 0),
	}
}

// Canonicalize resolves path to an absolute, symlink-free form.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrPathInvalid, path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrPathInvalid, path, err)
	}
	return resolved, nil
}

// Add loads path unless a file with the same canonical path is already
// present, in which case it returns the existing snapshot and an error
// matching ErrAlreadyLoaded. Every outcome is logged; on failure the
// registry is unchanged.
func (r *Registry) Add(path string) (*FileSnapshot, error) {
	canonical, err := Canonicalize(path)
	if err != nil {
		r.logger.Warn("could not load", "path", path, "error", err)
		return nil, err
	}

	if existing := r.Find(canonical); existing != nil {
		r.logger.Info("already loaded", "path", canonical)
		return existing, fmt.Errorf("%w: %s", ErrAlreadyLoaded, canonical)
	}

	snap, err := OpenFile(canonical, r.open)
	if err != nil {
		r.logger.Warn("could not load", "path", canonical, "error", err)
		return nil, err
	}

	r.files = append(r.files, snap)
	r.logger.Info("loaded", "path", canonical, "datasets", len(snap.Root.AllDatasetPaths()))
	return snap, nil
}

// Find returns the snapshot with the given canonical path, or nil.
func (r *Registry) Find(canonical string) *FileSnapshot {
	for _, f := range r.files {
		if f.Path == canonical {
			return f
		}
	}
	return nil
}

// Files returns the snapshots in load order.
func (r *Registry) Files() []*FileSnapshot {
	out := make([]*FileSnapshot, len(r.files))
	copy(out, r.files)
	return out
}

// Len returns the number of loaded files.
func (r *Registry) Len() int {
	return len(r.files)
}

// SweepClosed evicts every snapshot whose Open flag is false, closing its
// handle, and returns the evicted snapshots. Remaining entries keep their
// relative order.
func (r *Registry) SweepClosed() []*FileSnapshot {
	var removed []*FileSnapshot
	kept := r.files[:0]
	for _, f := range r.files {
		if f.Open {
			kept = append(kept, f)
			continue
		}
		if err := f.Close(); err != nil {
			r.logger.Warn("close failed", "path", f.Path, "error", err)
		}
		r.logger.Info("closed", "path", f.Path)
		removed = append(removed, f)
	}
	clear(r.files[len(kept):])
	r.files = kept
	return removed
}

// CloseAll marks every file closed and sweeps the registry.
func (r *Registry) CloseAll() []*FileSnapshot {
	for _, f := range r.files {
		f.Open = false
	}
	return r.SweepClosed()
}

func baseName(p string) string {
	return filepath.Base(p)
}
