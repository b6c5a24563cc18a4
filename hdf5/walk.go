package hdf5

import (
	"path"
)

// WalkFunc is called for each object during traversal.
// path is the full path to the object.
// obj is *Group, *Dataset, or *NamedType.
// err is any error encountered opening the object.
// Return nil to continue walking, or an error to stop.
type WalkFunc func(path string, obj interface{}, err error) error

// Walk traverses all objects in the hierarchy starting from g. The callback
// is called for each group, dataset, and committed named type, including the
// starting group.
//
// Example:
//
//	Walk(root, func(path string, obj interface{}, err error) error {
//	    if err != nil {
//	        return err // or skip: return nil
//	    }
//	    switch o := obj.(type) {
//	    case *Group:
//	        fmt.Println("Group:", path)
//	    case *Dataset:
//	        fmt.Println("Dataset:", path, "shape:", o.Shape())
//	    case *NamedType:
//	        fmt.Println("Type:", path)
//	    }
//	    return nil
//	})
func Walk(g *Group, fn WalkFunc) error {
	return walkGroup(g, fn)
}

// walkGroup recursively walks a group and its children.
func walkGroup(g *Group, fn WalkFunc) error {
	// Call fn for this group first
	if err := fn(g.Path(), g, nil); err != nil {
		return err
	}

	members, err := g.Members()
	if err != nil {
		return err
	}

	for _, name := range members {
		childPath := path.Join(g.Path(), name)

		kind, err := g.ChildKind(name)
		if err != nil {
			if err := fn(childPath, nil, err); err != nil {
				return err
			}
			continue
		}

		switch kind {
		case KindGroup:
			child, err := g.OpenGroup(name)
			if err != nil {
				if err := fn(childPath, nil, err); err != nil {
					return err
				}
				continue
			}
			if err := walkGroup(child, fn); err != nil {
				return err
			}

		case KindDataset:
			dataset, err := g.OpenDataset(name)
			if err != nil {
				if err := fn(childPath, nil, err); err != nil {
					return err
				}
				continue
			}
			if err := fn(childPath, dataset, nil); err != nil {
				return err
			}

		case KindNamedType:
			nt, err := g.OpenNamedType(name)
			if err != nil {
				if err := fn(childPath, nil, err); err != nil {
					return err
				}
				continue
			}
			if err := fn(childPath, nt, nil); err != nil {
				return err
			}
		}
	}

	return nil
}

// AttrInfo contains information about an attribute during walking.
type AttrInfo struct {
	// Path is the full attribute path (e.g., "/group/dataset@attr")
	Path string

	// ObjectPath is the path to the object containing this attribute
	ObjectPath string

	// ObjectType is "group" or "dataset"
	ObjectType string

	// Name is the attribute name
	Name string

	// Attr provides access to the full attribute for detailed reading
	Attr *Attribute

	// Value contains the auto-read attribute value (nil on read error)
	Value interface{}

	// Err contains any error from reading the attribute value
	Err error
}

// WalkAttrsFunc is the callback function type for WalkAttrs.
// Return nil to continue walking, or an error to stop.
type WalkAttrsFunc func(info AttrInfo) error

// WalkAttrs recursively walks all attributes in the file.
// The callback is called for each attribute on groups and datasets.
//
// Example:
//
//	f.WalkAttrs(func(info hdf5.AttrInfo) error {
//	    fmt.Printf("%s = %v\n", info.Path, info.Value)
//	    return nil
//	})
func (f *File) WalkAttrs(fn WalkAttrsFunc) error {
	if f.closed {
		return ErrClosed
	}
	return f.walkGroupAttrs(f.root, fn)
}

// walkGroupAttrs recursively walks attributes in a group and its children.
func (f *File) walkGroupAttrs(g *Group, fn WalkAttrsFunc) error {
	for _, name := range g.Attrs() {
		if err := fn(attrInfoFor(g.Path(), "group", name, g.Attr(name))); err != nil {
			return err
		}
	}

	members, err := g.Members()
	if err != nil {
		return err
	}

	for _, name := range members {
		kind, err := g.ChildKind(name)
		if err != nil {
			continue
		}

		switch kind {
		case KindGroup:
			child, err := g.OpenGroup(name)
			if err != nil {
				continue
			}
			if err := f.walkGroupAttrs(child, fn); err != nil {
				return err
			}

		case KindDataset:
			dataset, err := g.OpenDataset(name)
			if err != nil {
				continue
			}
			childPath := path.Join(g.Path(), name)
			for _, attrName := range dataset.Attrs() {
				if err := fn(attrInfoFor(childPath, "dataset", attrName, dataset.Attr(attrName))); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// attrInfoFor assembles the callback payload, reading the value eagerly.
func attrInfoFor(objectPath, objectType, name string, attr *Attribute) AttrInfo {
	info := AttrInfo{
		Path:       JoinAttrPath(objectPath, name),
		ObjectPath: objectPath,
		ObjectType: objectType,
		Name:       name,
		Attr:       attr,
	}
	if attr != nil {
		info.Value, info.Err = attr.Value()
	}
	return info
}

// ErrStopWalk can be returned from WalkAttrsFunc to stop walking without an error.
var ErrStopWalk = &walkStopError{}

type walkStopError struct{}

func (e *walkStopError) Error() string { return "walk stopped" }

// IsStopWalk returns true if the error is ErrStopWalk.
func IsStopWalk(err error) bool {
	_, ok := err.(*walkStopError)
	return ok
}
