package hdf5

import (
	"fmt"
	"path"

	"github.com/baltrad-go/hlhdf/internal/message"
	"github.com/baltrad-go/hlhdf/internal/object"
)

// ObjectKind identifies what kind of object a group member is.
type ObjectKind int

const (
	KindGroup ObjectKind = iota
	KindDataset
	KindNamedType
)

func (k ObjectKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindDataset:
		return "dataset"
	case KindNamedType:
		return "named datatype"
	default:
		return "unknown"
	}
}

// ChildKind reports the kind of the named child object. Datasets carry a
// dataspace message; committed datatypes carry a datatype message but no
// dataspace; everything else is a group.
func (g *Group) ChildKind(name string) (ObjectKind, error) {
	res, err := g.findChildFull(name, make(map[string]bool))
	if err != nil {
		return 0, err
	}

	f := g.file
	if res.file != nil {
		f = res.file
	}
	header, err := object.Read(f.reader, res.address)
	if err != nil {
		return 0, fmt.Errorf("reading object header: %w", err)
	}

	switch {
	case header.GetMessage(message.TypeDataspace) != nil:
		return KindDataset, nil
	case header.GetMessage(message.TypeDatatype) != nil:
		return KindNamedType, nil
	default:
		return KindGroup, nil
	}
}

// NamedType is a datatype committed to the file as its own object.
type NamedType struct {
	file *File
	path string
	addr uint64
	dt   *Datatype
}

// OpenNamedType opens a committed datatype by relative path.
func (g *Group) OpenNamedType(name string) (*NamedType, error) {
	res, err := g.findChildFull(name, make(map[string]bool))
	if err != nil {
		return nil, err
	}

	f := g.file
	if res.file != nil {
		f = res.file
	}
	header, err := object.Read(f.reader, res.address)
	if err != nil {
		return nil, fmt.Errorf("reading object header: %w", err)
	}

	dtMsg := header.Datatype()
	if dtMsg == nil || header.GetMessage(message.TypeDataspace) != nil {
		return nil, fmt.Errorf("%q is not a named datatype", name)
	}

	dt := newDatatype(dtMsg)
	dt.id = ObjectID{res.address, 0}

	fullPath := path.Join(g.path, name)
	if g.path == "/" {
		fullPath = "/" + name
	}

	return &NamedType{
		file: f,
		path: fullPath,
		addr: res.address,
		dt:   dt,
	}, nil
}

// Name returns the type name (last component of path).
func (t *NamedType) Name() string {
	return path.Base(t.path)
}

// Path returns the full path to this named type.
func (t *NamedType) Path() string {
	return t.path
}

// Datatype returns the committed datatype.
func (t *NamedType) Datatype() *Datatype {
	return t.dt
}

// ID returns the object identity of the committed type.
func (t *NamedType) ID() ObjectID {
	return t.dt.ID()
}
