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

// Package snapshot materializes container files into immutable group trees
// and keeps the ordered set of loaded files.
package snapshot

import (
	"errors"
	"fmt"

	"nwbview/hdf"
)

// Load errors. AlreadyLoaded is reported but is not a failure.
var (
	ErrPathInvalid       = errors.New("path invalid")
	ErrAlreadyLoaded     = errors.New("already loaded")
	ErrCannotOpen        = errors.New("cannot open")
	ErrEnumerationFailed = errors.New("enumeration failed")
)

// GroupNode mirrors one group of a file at the moment it was loaded
type GroupNode struct {
	Handle       hdf.Group    // Live group, used for deferred dataset reads
	Path         string       // Fully-qualified path, unique within the file
	Subgroups    []*GroupNode // File iteration order
	DatasetPaths []string     // Fully-qualified dataset paths directly under this group
}

// Name returns the last path segment ("/" for the root).
func (n *GroupNode) Name() string {
	return hdf.Base(n.Path)
}

// DatasetNames returns the deduplicated basenames of the group's datasets.
func (n *GroupNode) DatasetNames() map[string]struct{} {
	names := make(map[string]struct{}, len(n.DatasetPaths))
	for _, p := range n.DatasetPaths {
		names[hdf.Base(p)] = struct{}{}
	}
	return names
}

// Dataset and timestamp basenames that make a group plottable.
const (
	DataName       = "data"
	TimestampsName = "timestamps"
)

// HasPlotPair reports whether the group directly holds both "data" and
// "timestamps" datasets.
func (n *GroupNode) HasPlotPair() bool {
	names := n.DatasetNames()
	_, hasData := names[DataName]
	_, hasTimestamps := names[TimestampsName]
	return hasData && hasTimestamps
}

// Walk visits n and its descendants depth-first in declaration order.
func (n *GroupNode) Walk(fn func(*GroupNode)) {
	fn(n)
	for _, child := range n.Subgroups {
		child.Walk(fn)
	}
}

// AllDatasetPaths returns every dataset path in the subtree.
func (n *GroupNode) AllDatasetPaths() []string {
	var paths []string
	n.Walk(func(g *GroupNode) {
		paths = append(paths, g.DatasetPaths...)
	})
	return paths
}

// Find returns the group with the given path, or nil.
func (n *GroupNode) Find(p string) *GroupNode {
	var found *GroupNode
	n.Walk(func(g *GroupNode) {
		if found == nil && g.Path == p {
			found = g
		}
	})
	return found
}

// BuildTree recursively enumerates g. It reads no dataset contents. Any
// enumeration failure aborts the whole build.
func BuildTree(g hdf.Group) (*GroupNode, error) {
	node := &GroupNode{Handle: g, Path: g.Path()}

	paths, err := g.DatasetPaths()
	if err != nil {
		return nil, fmt.Errorf("%w: datasets of %s: %w", ErrEnumerationFailed, node.Path, err)
	}
	node.DatasetPaths = paths

	children, err := g.Groups()
	if err != nil {
		return nil, fmt.Errorf("%w: subgroups of %s: %w", ErrEnumerationFailed, node.Path, err)
	}
	node.Subgroups = make([]*GroupNode, 0, len(children))
	for _, child := range children {
		sub, err := BuildTree(child)
		if err != nil {
			return nil, err
		}
		node.Subgroups = append(node.Subgroups, sub)
	}
	return node, nil
}

// FileSnapshot is one loaded file. It owns File exclusively.
type FileSnapshot struct {
	Path string // Canonical absolute path
	File hdf.File
	Root *GroupNode
	Open bool // UI visibility; false marks the snapshot for eviction
}

// Name returns the file's base name for display.
func (s *FileSnapshot) Name() string {
	return baseName(s.Path)
}

// Close releases the file handle.
func (s *FileSnapshot) Close() error {
	if s.File == nil {
		return nil
	}
	err := s.File.Close()
	s.File = nil
	return err
}

// OpenFile opens path read-only and builds its snapshot. On failure no
// handle is left open.
func OpenFile(path string, open hdf.Opener) (*FileSnapshot, error) {
	f, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCannotOpen, path, err)
	}
	root, err := BuildTree(f.Root())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &FileSnapshot{Path: path, File: f, Root: root, Open: true}, nil
}
