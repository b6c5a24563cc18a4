package hl

import (
	"github.com/pkg/errors"

	"github.com/baltrad-go/hlhdf/hdf5"
)

// CompoundMember is one member of a compound type description. Dims is empty
// for scalar members; a non-empty Dims makes the member a fixed-size array
// of Format elements.
type CompoundMember struct {
	Name   string
	Offset uint64
	Format FormatSpecifier
	Dims   []uint64
}

// CompoundTypeDescription describes a record type as an ordered sequence of
// named, offset-positioned members. Two descriptions are never compared
// structurally; identity comes from the store object id recorded when the
// type is committed to or read from a store.
type CompoundTypeDescription struct {
	Size    uint64
	Members []CompoundMember

	id hdf5.ObjectID
}

// NewCompoundTypeDescription builds a description from an ordered member
// list. Member names must be unique and offsets non-decreasing.
func NewCompoundTypeDescription(size uint64, members []CompoundMember) (*CompoundTypeDescription, error) {
	seen := make(map[string]bool, len(members))
	prev := uint64(0)
	for _, m := range members {
		if m.Name == "" {
			return nil, errors.Wrap(ErrInvalidLayout, "member with empty name")
		}
		if seen[m.Name] {
			return nil, errors.Wrapf(ErrInvalidLayout, "duplicate member %q", m.Name)
		}
		seen[m.Name] = true
		if m.Offset < prev {
			return nil, errors.Wrapf(ErrInvalidLayout, "member %q offset decreases", m.Name)
		}
		prev = m.Offset
	}

	d := &CompoundTypeDescription{
		Size:    size,
		Members: make([]CompoundMember, len(members)),
	}
	copy(d.Members, members)
	for i := range d.Members {
		if src := members[i].Dims; src != nil {
			d.Members[i].Dims = append([]uint64(nil), src...)
		}
	}
	return d, nil
}

// Clone returns a deep copy. The store identity is carried along.
func (d *CompoundTypeDescription) Clone() *CompoundTypeDescription {
	if d == nil {
		return nil
	}
	c := &CompoundTypeDescription{
		Size:    d.Size,
		Members: make([]CompoundMember, len(d.Members)),
		id:      d.id,
	}
	copy(c.Members, d.Members)
	for i := range c.Members {
		if src := d.Members[i].Dims; src != nil {
			c.Members[i].Dims = append([]uint64(nil), src...)
		}
	}
	return c
}

// ObjectID returns the store identity recorded when the description was
// committed to or read from a store, or the zero id.
func (d *CompoundTypeDescription) ObjectID() hdf5.ObjectID {
	return d.id
}

// Datatype realizes the description as a store compound type. Member formats
// must be fixed-width.
func (d *CompoundTypeDescription) Datatype() (*hdf5.Datatype, error) {
	members := make([]hdf5.CompoundMember, 0, len(d.Members))
	for _, m := range d.Members {
		// Members must be fixed-width; their sizes come from the format alone.
		if _, err := m.Format.Size(); err != nil {
			return nil, errors.Wrapf(err, "member %q", m.Name)
		}
		base, err := storeDatatype(m.Format, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "member %q", m.Name)
		}
		mt := base
		if len(m.Dims) > 0 {
			mt = hdf5.NewArrayType(m.Dims, base)
		}
		members = append(members, hdf5.CompoundMember{
			Name:       m.Name,
			ByteOffset: m.Offset,
			Type:       mt,
		})
	}
	return hdf5.NewCompoundType(int(d.Size), members)
}

// descriptionOf reconstructs a description from a store compound type,
// recording the type's object identity for later lookup.
func descriptionOf(dt *hdf5.Datatype) *CompoundTypeDescription {
	if dt == nil || !dt.IsCompound() {
		return nil
	}
	d := &CompoundTypeDescription{
		Size: uint64(dt.Size()),
		id:   dt.ID(),
	}
	for _, m := range dt.Members() {
		member := CompoundMember{
			Name:   m.Name,
			Offset: m.ByteOffset,
		}
		if dims := m.Type.ArrayDims(); dims != nil {
			member.Dims = dims
			member.Format = formatOf(m.Type.ArrayBase())
		} else {
			member.Format = formatOf(m.Type)
		}
		d.Members = append(d.Members, member)
	}
	return d
}
