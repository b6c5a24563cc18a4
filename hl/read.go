package hl

import (
	"github.com/pkg/errors"

	"github.com/baltrad-go/hlhdf/hdf5"
)

// Read opens a store read-only and reconstructs the whole tree as a
// NodeList. Every node comes back marked Original.
func Read(filename string) (*NodeList, error) {
	f, err := hdf5.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(ErrStoreOpenFailed, "%s: %v", filename, err)
	}
	defer f.Close()

	l := NewNodeList(filename)
	if err := readInto(l, f.Root(), ""); err != nil {
		return nil, err
	}
	l.MarkAll(MarkOriginal)
	return l, nil
}

// ReadNode reads a single node from a store by path without materializing
// the rest of the tree. The node comes back marked Original.
func ReadNode(filename, nodePath string) (*Node, error) {
	f, err := hdf5.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(ErrStoreOpenFailed, "%s: %v", filename, err)
	}
	defer f.Close()

	parentPath, localName := splitNodePath(nodePath)

	// The addressed object may be a group member or an attribute on its
	// parent; try the member first.
	if parent, err := openReadGroup(f, parentPath); err == nil {
		if kind, err := parent.ChildKind(localName); err == nil {
			n, err := readMember(parent, kind, nodePath, localName)
			if err != nil {
				return nil, err
			}
			n.mark = MarkOriginal
			return n, nil
		}
		if attr := parent.Attr(localName); attr != nil {
			n := attributeNode(nodePath, attr)
			n.mark = MarkOriginal
			return n, nil
		}
	}

	if ds, err := f.OpenDataset(parentPath); err == nil {
		if attr := ds.Attr(localName); attr != nil {
			n := attributeNode(nodePath, attr)
			n.mark = MarkOriginal
			return n, nil
		}
	}

	return nil, errors.Wrap(ErrNodeNotFound, nodePath)
}

// openReadGroup opens a group by absolute path, treating the empty path as
// the root container.
func openReadGroup(f *hdf5.File, path string) (*hdf5.Group, error) {
	if path == "" || path == "/" {
		return f.Root(), nil
	}
	return f.OpenGroup(path)
}

// readInto walks a group preorder and appends the reconstructed nodes.
// Attributes come before members, matching the order the store lists them.
func readInto(l *NodeList, g *hdf5.Group, groupPath string) error {
	for _, name := range g.Attrs() {
		attr := g.Attr(name)
		if attr == nil {
			continue
		}
		if err := l.Add(attributeNode(joinNodePath(groupPath, name), attr)); err != nil {
			return err
		}
	}

	members, err := g.Members()
	if err != nil {
		return errors.Wrapf(err, "listing %s", groupPath)
	}
	for _, name := range members {
		kind, err := g.ChildKind(name)
		if err != nil {
			return errors.Wrapf(err, "classifying %s", joinNodePath(groupPath, name))
		}
		fullPath := joinNodePath(groupPath, name)
		n, err := readMember(g, kind, fullPath, name)
		if err != nil {
			return err
		}
		if err := l.Add(n); err != nil {
			return err
		}
		if kind == hdf5.KindGroup {
			child, err := g.OpenGroup(name)
			if err != nil {
				return errors.Wrapf(err, "opening %s", fullPath)
			}
			if err := readInto(l, child, fullPath); err != nil {
				return err
			}
		} else if kind == hdf5.KindDataset {
			ds, err := g.OpenDataset(name)
			if err != nil {
				return errors.Wrapf(err, "opening %s", fullPath)
			}
			for _, attrName := range ds.Attrs() {
				attr := ds.Attr(attrName)
				if attr == nil {
					continue
				}
				if err := l.Add(attributeNode(joinNodePath(fullPath, attrName), attr)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// readMember reconstructs one group member as a node.
func readMember(g *hdf5.Group, kind hdf5.ObjectKind, fullPath, name string) (*Node, error) {
	switch kind {
	case hdf5.KindGroup:
		return NewGroup(fullPath), nil

	case hdf5.KindDataset:
		ds, err := g.OpenDataset(name)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", fullPath)
		}
		return datasetNode(fullPath, ds)

	case hdf5.KindNamedType:
		nt, err := g.OpenNamedType(name)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", fullPath)
		}
		return namedTypeNode(fullPath, nt), nil

	default:
		return nil, errors.Errorf("%s: unexpected object kind %s", fullPath, kind)
	}
}

// attributeNode reconstructs an attribute as a node. An attribute with a
// reference-class type comes back as a reference node whose payload is the
// target path.
func attributeNode(fullPath string, attr *hdf5.Attribute) *Node {
	dt := attr.Datatype()
	raw := attr.Raw()

	if dt != nil && dt.IsReference() {
		n := NewReference(fullPath)
		n.data = raw
		n.rawData = attr.Raw()
		n.format = FormatString
		n.storeType = dt.Copy()
		return n
	}

	n := NewAttribute(fullPath)
	n.data = raw
	n.rawData = attr.Raw()
	n.dims = attr.Shape()
	n.format = formatOf(dt)
	n.storeType = dt.Copy()
	if n.format == FormatCompound {
		n.compound = descriptionOf(dt)
	}
	return n
}

// datasetNode reconstructs a dataset as a node with its decoded payload.
func datasetNode(fullPath string, ds *hdf5.Dataset) (*Node, error) {
	raw, err := ds.ReadRaw()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", fullPath)
	}
	dt := ds.Datatype()

	n := NewDataset(fullPath)
	n.data = raw
	n.rawData = append([]byte(nil), raw...)
	n.dims = ds.Shape()
	n.format = formatOf(dt)
	n.storeType = dt.Copy()
	if n.format == FormatCompound {
		n.compound = descriptionOf(dt)
	}
	return n, nil
}

// namedTypeNode reconstructs a committed datatype as a node.
func namedTypeNode(fullPath string, nt *hdf5.NamedType) *Node {
	dt := nt.Datatype()
	n := NewNamedType(fullPath)
	n.storeType = dt.Copy()
	if dt.IsCompound() {
		n.format = FormatCompound
		n.compound = descriptionOf(dt)
	} else {
		n.format = formatOf(dt)
	}
	return n
}
