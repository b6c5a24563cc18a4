package hdf5

import (
	"fmt"

	"github.com/baltrad-go/hlhdf/internal/message"
)

// ObjectID identifies an object committed to a file. Two handles referring to
// the same committed object compare equal. The zero value means "not committed".
type ObjectID [2]uint64

// IsZero returns true if the identity has not been assigned.
func (id ObjectID) IsZero() bool {
	return id[0] == 0 && id[1] == 0
}

// Datatype is a concrete, file-representable value type. It wraps the on-disk
// datatype message and can be attached to attributes and datasets, or committed
// under a name to become a reusable named type.
type Datatype struct {
	msg *message.Datatype

	// Identity of the committed object, set by CommitDatatype and when a
	// named type is opened from a file.
	id ObjectID
}

// CompoundMember describes one member of a compound datatype.
type CompoundMember struct {
	Name       string
	ByteOffset uint64
	Type       *Datatype
}

// NewFixedPointType creates a little-endian integer type of the given width.
func NewFixedPointType(size int, signed bool) *Datatype {
	return &Datatype{msg: message.NewFixedPointDatatype(uint32(size), signed, message.OrderLE)}
}

// NewFloatType creates a little-endian IEEE floating-point type of the given width.
func NewFloatType(size int) *Datatype {
	return &Datatype{msg: message.NewFloatDatatype(uint32(size), message.OrderLE)}
}

// NewStringType creates a fixed-length, null-terminated ASCII string type.
func NewStringType(length int) *Datatype {
	return &Datatype{msg: message.NewStringDatatype(uint32(length), message.PadNullTerm, message.CharsetASCII)}
}

// NewCompoundType creates a compound type with the given total size and members.
func NewCompoundType(size int, members []CompoundMember) (*Datatype, error) {
	msgMembers := make([]message.CompoundMember, 0, len(members))
	for _, m := range members {
		if m.Type == nil {
			return nil, fmt.Errorf("compound member %q has no type", m.Name)
		}
		msgMembers = append(msgMembers, message.CompoundMember{
			Name:       m.Name,
			ByteOffset: uint32(m.ByteOffset),
			Type:       m.Type.msg,
		})
	}
	return &Datatype{msg: message.NewCompoundDatatype(uint32(size), msgMembers)}, nil
}

// NewArrayType creates a fixed-size array type over a base type.
func NewArrayType(dims []uint64, base *Datatype) *Datatype {
	d32 := make([]uint32, len(dims))
	for i, d := range dims {
		d32[i] = uint32(d)
	}
	return &Datatype{msg: message.NewArrayDatatype(d32, base.msg)}
}

// newReferenceType creates an object-reference type sized for an encoded
// target path.
func newReferenceType(size int) *Datatype {
	return &Datatype{msg: &message.Datatype{
		Class: message.ClassReference,
		Size:  uint32(size),
	}}
}

// newDatatype wraps a parsed datatype message.
func newDatatype(msg *message.Datatype) *Datatype {
	if msg == nil {
		return nil
	}
	return &Datatype{msg: msg}
}

// Copy returns an independent copy of the datatype. The committed identity is
// carried along so copies of a named type still resolve to the same object.
func (t *Datatype) Copy() *Datatype {
	if t == nil {
		return nil
	}
	msg := *t.msg
	if t.msg.Members != nil {
		msg.Members = make([]message.CompoundMember, len(t.msg.Members))
		copy(msg.Members, t.msg.Members)
	}
	if t.msg.ArrayDims != nil {
		msg.ArrayDims = make([]uint32, len(t.msg.ArrayDims))
		copy(msg.ArrayDims, t.msg.ArrayDims)
	}
	return &Datatype{msg: &msg, id: t.id}
}

// Size returns the size in bytes of one element of this type.
func (t *Datatype) Size() int {
	return int(t.msg.Size)
}

// ID returns the committed object identity, or the zero ObjectID if the type
// was never committed.
func (t *Datatype) ID() ObjectID {
	return t.id
}

// IsFixedPoint returns true for integer types.
func (t *Datatype) IsFixedPoint() bool { return t.msg.IsInteger() }

// IsSigned returns true for signed integer types.
func (t *Datatype) IsSigned() bool { return t.msg.Signed }

// IsFloat returns true for floating-point types.
func (t *Datatype) IsFloat() bool { return t.msg.IsFloat() }

// IsString returns true for string types.
func (t *Datatype) IsString() bool { return t.msg.IsString() }

// IsCompound returns true for compound types.
func (t *Datatype) IsCompound() bool { return t.msg.IsCompound() }

// IsReference returns true for object-reference types.
func (t *Datatype) IsReference() bool { return t.msg.Class == message.ClassReference }

// Members returns the member layout of a compound type (nil otherwise).
func (t *Datatype) Members() []CompoundMember {
	if !t.IsCompound() {
		return nil
	}
	members := make([]CompoundMember, 0, len(t.msg.Members))
	for _, m := range t.msg.Members {
		members = append(members, CompoundMember{
			Name:       m.Name,
			ByteOffset: uint64(m.ByteOffset),
			Type:       newDatatype(m.Type),
		})
	}
	return members
}

// ArrayDims returns the dimensions of an array type (nil otherwise).
func (t *Datatype) ArrayDims() []uint64 {
	if t.msg.Class != message.ClassArray {
		return nil
	}
	dims := make([]uint64, len(t.msg.ArrayDims))
	for i, d := range t.msg.ArrayDims {
		dims[i] = uint64(d)
	}
	return dims
}

// ArrayBase returns the base type of an array type (nil otherwise).
func (t *Datatype) ArrayBase() *Datatype {
	if t.msg.Class != message.ClassArray {
		return nil
	}
	return newDatatype(t.msg.BaseType)
}
