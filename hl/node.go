package hl

import (
	"github.com/pkg/errors"

	"github.com/baltrad-go/hlhdf/hdf5"
)

// NodeKind identifies what a node materializes as in the store.
type NodeKind int

const (
	KindGroup NodeKind = iota
	KindAttribute
	KindDataset
	KindNamedType
	KindReference
)

func (k NodeKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindAttribute:
		return "attribute"
	case KindDataset:
		return "dataset"
	case KindNamedType:
		return "named type"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Mark is a node's lifecycle state. New nodes start Created; a successful
// incremental append transitions them to Original; setting a value on an
// already-persisted node makes it Changed.
type Mark int

const (
	MarkCreated Mark = iota
	MarkChanged
	MarkOriginal
)

func (m Mark) String() string {
	switch m {
	case MarkCreated:
		return "created"
	case MarkChanged:
		return "changed"
	case MarkOriginal:
		return "original"
	default:
		return "unknown"
	}
}

// Node is a named, typed value destined for (or read from) the store. The
// name is the full slash-delimited path; the payload is an owned byte buffer
// in canonical layout.
type Node struct {
	kind        NodeKind
	name        string
	dims        []uint64
	data        []byte
	rawData     []byte
	format      FormatSpecifier
	storeType   *hdf5.Datatype
	mark        Mark
	compound    *CompoundTypeDescription
	compression *Compression
}

func newNode(kind NodeKind, name string) *Node {
	return &Node{
		kind:   kind,
		name:   name,
		format: FormatUndefined,
		mark:   MarkCreated,
	}
}

// NewGroup creates a group node.
func NewGroup(name string) *Node { return newNode(KindGroup, name) }

// NewAttribute creates an attribute node.
func NewAttribute(name string) *Node { return newNode(KindAttribute, name) }

// NewDataset creates a dataset node.
func NewDataset(name string) *Node { return newNode(KindDataset, name) }

// NewNamedType creates a named-type node.
func NewNamedType(name string) *Node { return newNode(KindNamedType, name) }

// NewReference creates a reference node. Its payload is the target path.
func NewReference(name string) *Node { return newNode(KindReference, name) }

// Name returns the node's full path.
func (n *Node) Name() string { return n.name }

// Kind returns the node kind.
func (n *Node) Kind() NodeKind { return n.kind }

// Mark returns the lifecycle state.
func (n *Node) Mark() Mark { return n.mark }

// SetMark overrides the lifecycle state.
func (n *Node) SetMark(m Mark) { n.mark = m }

// Dims returns the node's shape. Empty means scalar.
func (n *Node) Dims() []uint64 { return n.dims }

// Data returns the payload in canonical layout.
func (n *Node) Data() []byte { return n.data }

// RawData returns the payload exactly as it existed in the source store, or
// nil if the node was never read.
func (n *Node) RawData() []byte { return n.rawData }

// Format returns the value format tag.
func (n *Node) Format() FormatSpecifier { return n.format }

// Type returns the resolved store type, or nil.
func (n *Node) Type() *hdf5.Datatype { return n.storeType }

// CompoundDescription returns the compound layout, or nil.
func (n *Node) CompoundDescription() *CompoundTypeDescription { return n.compound }

// SetCompoundDescription attaches a compound layout to the node.
func (n *Node) SetCompoundDescription(d *CompoundTypeDescription) { n.compound = d }

// Compression returns the node's own compression descriptor, or nil.
func (n *Node) Compression() *Compression { return n.compression }

// SetCompression attaches a compression descriptor. Only dataset nodes
// consult it.
func (n *Node) SetCompression(c *Compression) { n.compression = c }

// SetScalarValue sets a scalar payload of size bytes. The format name must
// parse to a usable scalar format; "array" is rejected. A string value
// without an explicit type gets a fixed-length string type of the payload
// size; a compound value requires an explicit type or an attached compound
// description.
func (n *Node) SetScalarValue(size int, value []byte, format string, typ *hdf5.Datatype) error {
	spec, dt, err := n.resolveValueType(size, value, format, typ)
	if err != nil {
		return err
	}

	n.data = append([]byte(nil), value[:size]...)
	n.format = spec
	n.storeType = dt
	n.dims = nil
	n.touch()
	return nil
}

// SetArrayValue sets an array payload shaped by dims, with size bytes per
// element. The payload must be exactly size times the product of dims.
func (n *Node) SetArrayValue(size int, dims []uint64, value []byte, format string, typ *hdf5.Datatype) error {
	if len(dims) == 0 {
		return errors.Wrapf(ErrInvalidShape, "node %s: array value needs at least one dimension", n.name)
	}
	total := size
	for _, d := range dims {
		total *= int(d)
	}
	if len(value) < total {
		return errors.Wrapf(ErrInvalidShape, "node %s: payload is %d bytes, shape needs %d", n.name, len(value), total)
	}

	spec, dt, err := n.resolveValueType(size, value, format, typ)
	if err != nil {
		return err
	}

	n.data = append([]byte(nil), value[:total]...)
	n.format = spec
	n.storeType = dt
	n.dims = append([]uint64(nil), dims...)
	n.touch()
	return nil
}

// resolveValueType validates the format name and produces the store type for
// a value, honoring an explicit caller-supplied type.
func (n *Node) resolveValueType(size int, value []byte, format string, typ *hdf5.Datatype) (FormatSpecifier, *hdf5.Datatype, error) {
	spec := ParseFormat(format)
	if spec == FormatUndefined || spec == FormatArray {
		return 0, nil, errors.Wrapf(ErrUnrecognizedFormat, "node %s: %q", n.name, format)
	}
	if len(value) < size {
		return 0, nil, errors.Wrapf(ErrInvalidShape, "node %s: payload is %d bytes, need %d", n.name, len(value), size)
	}

	if typ != nil {
		return spec, typ.Copy(), nil
	}

	switch spec {
	case FormatCompound:
		if n.compound == nil {
			return 0, nil, errors.Wrapf(ErrMissingCompoundType, "node %s", n.name)
		}
		dt, err := n.compound.Datatype()
		if err != nil {
			return 0, nil, errors.Wrapf(err, "node %s", n.name)
		}
		return spec, dt, nil
	default:
		dt, err := storeDatatype(spec, size)
		if err != nil {
			return 0, nil, errors.Wrapf(err, "node %s", n.name)
		}
		return spec, dt, nil
	}
}

// touch records that the value changed after the node was already persisted.
func (n *Node) touch() {
	if n.mark != MarkCreated {
		n.mark = MarkChanged
	}
}

// Clone returns a deep copy with independent buffers. The clone keeps the
// mark and an independent copy of the store type.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		kind:        n.kind,
		name:        n.name,
		format:      n.format,
		mark:        n.mark,
		storeType:   n.storeType.Copy(),
		compound:    n.compound.Clone(),
		compression: n.compression.Clone(),
	}
	if n.dims != nil {
		c.dims = append([]uint64(nil), n.dims...)
	}
	if n.data != nil {
		c.data = append([]byte(nil), n.data...)
	}
	if n.rawData != nil {
		c.rawData = append([]byte(nil), n.rawData...)
	}
	return c
}

// resolveType returns the node's store type, deriving one from the format
// and payload when no explicit type was ever attached.
func (n *Node) resolveType() (*hdf5.Datatype, error) {
	if n.storeType != nil {
		return n.storeType, nil
	}
	if n.format == FormatCompound {
		if n.compound == nil {
			return nil, errors.Wrapf(ErrMissingCompoundType, "node %s", n.name)
		}
		dt, err := n.compound.Datatype()
		if err != nil {
			return nil, errors.Wrapf(err, "node %s", n.name)
		}
		n.storeType = dt
		return dt, nil
	}

	elems := 1
	for _, d := range n.dims {
		elems *= int(d)
	}
	size := 0
	if elems > 0 {
		size = len(n.data) / elems
	}
	dt, err := storeDatatype(n.format, size)
	if err != nil {
		return nil, errors.Wrapf(err, "node %s", n.name)
	}
	n.storeType = dt
	return dt, nil
}
