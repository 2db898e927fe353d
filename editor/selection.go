package editor

import (
	"grid-editor/scene"
)

// Selection holds at most one top-level node.
//
// Deleting the selected node does not clear it: the reference stays until an
// explicit Clear, and commands keep acting on the detached node.
type Selection struct {
	node *scene.Node
}

func NewSelection() *Selection {
	return &Selection{}
}

// Select replaces the selection and reports whether it changed.
func (s *Selection) Select(node *scene.Node) bool {
	if node == nil || node == s.node {
		return false
	}
	s.node = node
	return true
}

func (s *Selection) Clear() {
	s.node = nil
}

// Node returns the selected node, or nil.
func (s *Selection) Node() *scene.Node {
	return s.node
}

// HasSelection returns true if anything is selected
func (s *Selection) HasSelection() bool {
	return s.node != nil
}

// ResolveTopLevel walks from hit up to the ancestor whose parent is root.
// A direct child of root resolves to itself; a node not under root, or root
// itself, resolves to nil.
func ResolveTopLevel(root, hit *scene.Node) *scene.Node {
	for n := hit; n != nil; n = n.Parent {
		if n.Parent == root {
			return n
		}
	}
	return nil
}
