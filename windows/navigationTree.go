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
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"nwbview/browser"
)

// TreeNodeType represents the type of node in the navigation tree
type TreeNodeType string

const (
	NodeTypeFile    TreeNodeType = "file"
	NodeTypeGroup   TreeNodeType = "group"
	NodeTypeDataset TreeNodeType = "dataset"
	NodeTypePlot    TreeNodeType = "plot"
	NodeTypeClose   TreeNodeType = "close"
)

// TreeNode represents a node in the navigation tree
type TreeNode struct {
	ID       string       // Unique identifier, the id passed to the surface
	NodeType TreeNodeType // Type of node
	Name     string       // Display name
	Checked  bool         // Dataset toggle state
	Children []string     // Child node IDs
}

// NavigationTree is the browser.Surface of the main window. Each frame the
// nodes are rebuilt from what the renderer draws; clicks made on the
// widget.Tree in between are reported back by Toggle and Button.
type NavigationTree struct {
	nodes   map[string]*TreeNode
	rootIDs []string
	parents []*TreeNode
	clicks  map[string]bool
	known   map[string]bool
	tree    *widget.Tree
	onClick func()
}

var _ browser.Surface = (*NavigationTree)(nil)

// NewNavigationTree creates the tree widget. onClick runs after a toggle or
// button row was clicked and should render a frame.
func NewNavigationTree(onClick func()) *NavigationTree {
	nt := &NavigationTree{
		nodes:   make(map[string]*TreeNode),
		rootIDs: make([]string, 0),
		clicks:  make(map[string]bool),
		known:   make(map[string]bool),
		onClick: onClick,
	}
	nt.tree = widget.NewTree(
		nt.GetChildren,
		nt.IsBranch,
		func(branch bool) fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.FileIcon()), widget.NewLabel("template"))
		},
		func(id widget.TreeNodeID, branch bool, obj fyne.CanvasObject) {
			nt.UpdateNodeDisplay(id, obj, branch)
		},
	)
	nt.tree.OnSelected = nt.handleSelection
	return nt
}

// Widget returns the tree widget.
func (nt *NavigationTree) Widget() *widget.Tree {
	return nt.tree
}

// Begin starts a new frame.
func (nt *NavigationTree) Begin() {
	nt.nodes = make(map[string]*TreeNode)
	nt.rootIDs = nt.rootIDs[:0]
	nt.parents = nt.parents[:0]
}

// End finishes a frame: unconsumed clicks are dropped and files seen for
// the first time are expanded down to their root group.
func (nt *NavigationTree) End() {
	clear(nt.clicks)
	for id := range nt.known {
		if _, ok := nt.nodes[id]; !ok {
			delete(nt.known, id)
		}
	}
	nt.tree.Refresh()
	for _, id := range nt.rootIDs {
		if nt.known[id] {
			continue
		}
		nt.known[id] = true
		nt.tree.OpenBranch(id)
		for _, child := range nt.nodes[id].Children {
			if nt.nodes[child].NodeType == NodeTypeGroup {
				nt.tree.OpenBranch(child)
			}
		}
	}
}

func (nt *NavigationTree) add(node *TreeNode) {
	nt.nodes[node.ID] = node
	if len(nt.parents) == 0 {
		nt.rootIDs = append(nt.rootIDs, node.ID)
		return
	}
	parent := nt.parents[len(nt.parents)-1]
	parent.Children = append(parent.Children, node.ID)
}

// Collapsing adds a file (top level) or group node. The widget keeps the
// expanded state, so body always runs.
func (nt *NavigationTree) Collapsing(id, label string, body func()) {
	nodeType := NodeTypeGroup
	if len(nt.parents) == 0 {
		nodeType = NodeTypeFile
	}
	node := &TreeNode{ID: id, NodeType: nodeType, Name: label, Children: make([]string, 0)}
	nt.add(node)
	nt.parents = append(nt.parents, node)
	body()
	nt.parents = nt.parents[:len(nt.parents)-1]
}

// Toggle adds a dataset row and reports whether it was clicked.
func (nt *NavigationTree) Toggle(id, label string, open bool) bool {
	nt.add(&TreeNode{ID: id, NodeType: NodeTypeDataset, Name: label, Checked: open})
	return nt.consume(id)
}

// Button adds an action row and reports whether it was clicked.
func (nt *NavigationTree) Button(id, label string) bool {
	nodeType := NodeTypePlot
	if strings.HasPrefix(id, browser.CloseFileID("")) {
		nodeType = NodeTypeClose
	}
	nt.add(&TreeNode{ID: id, NodeType: nodeType, Name: label})
	return nt.consume(id)
}

func (nt *NavigationTree) consume(id string) bool {
	if !nt.clicks[id] {
		return false
	}
	delete(nt.clicks, id)
	return true
}

// Click records a click on a row, to be reported during the next frame.
func (nt *NavigationTree) Click(id string) {
	nt.clicks[id] = true
}

func (nt *NavigationTree) handleSelection(id widget.TreeNodeID) {
	nt.tree.Unselect(id)
	node := nt.GetNode(id)
	if node == nil {
		return
	}
	if nt.IsBranch(id) {
		nt.tree.ToggleBranch(id)
		return
	}
	nt.Click(id)
	if nt.onClick != nil {
		nt.onClick()
	}
}

// GetChildren returns the child node IDs for a given parent node
// Returns root nodes if nodeID is empty
func (nt *NavigationTree) GetChildren(nodeID widget.TreeNodeID) []widget.TreeNodeID {
	if nodeID == "" {
		return nt.rootIDs
	}
	node, exists := nt.nodes[nodeID]
	if !exists {
		return []widget.TreeNodeID{}
	}
	return node.Children
}

// IsBranch returns true if the node can have children
func (nt *NavigationTree) IsBranch(nodeID widget.TreeNodeID) bool {
	if nodeID == "" {
		return true
	}
	node, exists := nt.nodes[nodeID]
	if !exists {
		return false
	}
	return node.NodeType == NodeTypeFile || node.NodeType == NodeTypeGroup
}

// GetNode retrieves a node by ID
func (nt *NavigationTree) GetNode(nodeID widget.TreeNodeID) *TreeNode {
	return nt.nodes[nodeID]
}

// UpdateNodeDisplay updates the visual representation of a tree node
func (nt *NavigationTree) UpdateNodeDisplay(nodeID widget.TreeNodeID, obj fyne.CanvasObject, branch bool) {
	node := nt.GetNode(nodeID)
	if node == nil {
		return
	}
	box, ok := obj.(*fyne.Container)
	if !ok || len(box.Objects) < 2 {
		return
	}

	if icon, ok := box.Objects[0].(*widget.Icon); ok {
		icon.SetResource(nodeIcon(node))
	}
	if label, ok := box.Objects[1].(*widget.Label); ok {
		label.TextStyle = fyne.TextStyle{Bold: node.NodeType == NodeTypeFile, Italic: node.NodeType == NodeTypeClose}
		label.SetText(node.Name)
	}
}

func nodeIcon(node *TreeNode) fyne.Resource {
	switch node.NodeType {
	case NodeTypeFile:
		return theme.FileApplicationIcon()
	case NodeTypeGroup:
		return theme.FolderOpenIcon()
	case NodeTypeDataset:
		if node.Checked {
			return theme.CheckButtonCheckedIcon()
		}
		return theme.CheckButtonIcon()
	case NodeTypePlot:
		return theme.VisibilityIcon()
	case NodeTypeClose:
		return theme.CancelIcon()
	default:
		return theme.QuestionIcon()
	}
}
