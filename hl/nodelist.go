package hl

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/baltrad-go/hlhdf/hdf5"
)

// NodeList is an ordered collection of nodes representing a full tree via
// path naming. Insertion order is the traversal order used for persistence,
// so every parent must be added before its children.
type NodeList struct {
	filename string
	nodes    []*Node
}

// NewNodeList creates an empty list targeting the given store file.
func NewNodeList(filename string) *NodeList {
	return &NodeList{filename: filename}
}

// FileName returns the target store path.
func (l *NodeList) FileName() string { return l.filename }

// SetFileName changes the target store path.
func (l *NodeList) SetFileName(filename string) { l.filename = filename }

// Len returns the number of nodes.
func (l *NodeList) Len() int { return len(l.nodes) }

// NodeAt returns the i-th node in insertion order.
func (l *NodeList) NodeAt(i int) *Node { return l.nodes[i] }

// Add appends a node. Paths must be unique within the list.
func (l *NodeList) Add(n *Node) error {
	if n == nil {
		return errors.New("nil node")
	}
	if existing := l.Find(n.name); existing != nil {
		return errors.Wrap(ErrDuplicateNode, n.name)
	}
	l.nodes = append(l.nodes, n)
	return nil
}

// Find returns the node with the exact path, or nil.
func (l *NodeList) Find(name string) *Node {
	for _, n := range l.nodes {
		if n.name == name {
			return n
		}
	}
	return nil
}

// MarkAll sets every node's mark. Typically used to reset a freshly read
// tree to Original so later edits stand out.
func (l *NodeList) MarkAll(m Mark) {
	for _, n := range l.nodes {
		n.mark = m
	}
}

// FindCompoundDescription returns the compound description recorded on a
// named-type or dataset node whose store identity matches id, or nil.
func (l *NodeList) FindCompoundDescription(id hdf5.ObjectID) *CompoundTypeDescription {
	if id.IsZero() {
		return nil
	}
	for _, n := range l.nodes {
		if n.kind != KindNamedType && n.kind != KindDataset {
			continue
		}
		if n.compound != nil && n.compound.id == id {
			return n.compound
		}
	}
	return nil
}

// splitNodePath splits a full path into its parent path and local name. An
// empty parent denotes the store root.
func splitNodePath(name string) (parent, local string) {
	trimmed := strings.TrimSuffix(name, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return "", trimmed
	}
	return trimmed[:idx], trimmed[idx+1:]
}

// joinNodePath joins a parent path and local name back into a full path.
func joinNodePath(parent, local string) string {
	if parent == "" || parent == "/" {
		return "/" + local
	}
	return parent + "/" + local
}
