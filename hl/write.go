package hl

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"

	"github.com/baltrad-go/hlhdf/hdf5"
)

// openHandles tracks the store objects materialized so far during a full
// write, keyed by full node path. The empty path is the root container.
type openHandles struct {
	groups   map[string]*hdf5.Group
	datasets map[string]*hdf5.Dataset
}

func newOpenHandles(root *hdf5.Group) *openHandles {
	return &openHandles{
		groups:   map[string]*hdf5.Group{"": root, "/": root},
		datasets: map[string]*hdf5.Dataset{},
	}
}

// Write persists the whole list into a brand-new store at the list's target
// path. Nodes are processed in insertion order, so parents must precede
// children. A compression override applies to every dataset in this call;
// pass nil to honor each node's own descriptor. Node marks are not touched.
func (l *NodeList) Write(compression *Compression, opts ...hdf5.FileOption) error {
	if compression != nil {
		if err := compression.Validate(); err != nil {
			return err
		}
	}

	f, err := hdf5.Create(l.filename, opts...)
	if err != nil {
		return errors.Wrapf(ErrStoreCreateFailed, "%s: %v", l.filename, err)
	}
	defer f.Close()

	handles := newOpenHandles(f.Root())
	for _, n := range l.nodes {
		logger.Debug().Str("node", n.name).Stringer("kind", n.kind).Msg("writing node")
		if err := writeNode(n, handles, compression); err != nil {
			return fmt.Errorf("%w: node %s: %w", ErrWriteAborted, n.name, err)
		}
	}
	return nil
}

// writeNode materializes one node against the handles opened earlier in the
// same pass.
func writeNode(n *Node, h *openHandles, override *Compression) error {
	parentPath, localName := splitNodePath(n.name)

	switch n.kind {
	case KindGroup:
		parent, ok := h.groups[parentPath]
		if !ok {
			return errors.Wrap(ErrParentNotFound, parentPath)
		}
		g, err := parent.CreateGroup(localName)
		if err != nil {
			return err
		}
		h.groups[n.name] = g
		return nil

	case KindAttribute:
		dt, err := n.resolveType()
		if err != nil {
			return err
		}
		if parent, ok := h.groups[parentPath]; ok {
			return parent.SetAttribute(localName, dt, n.dims, n.data)
		}
		if parent, ok := h.datasets[parentPath]; ok {
			return parent.SetAttribute(localName, dt, n.dims, n.data)
		}
		return errors.Wrap(ErrParentNotFound, parentPath)

	case KindDataset:
		parent, ok := h.groups[parentPath]
		if !ok {
			return errors.Wrap(ErrParentNotFound, parentPath)
		}
		dt, err := n.resolveType()
		if err != nil {
			return err
		}
		level, err := deflateLevel(n, override)
		if err != nil {
			return err
		}
		ds, err := parent.CreateDatasetRaw(localName, dt, n.dims, n.data, level)
		if err != nil {
			return err
		}
		h.datasets[n.name] = ds
		return nil

	case KindNamedType:
		parent, ok := h.groups[parentPath]
		if !ok {
			return errors.Wrap(ErrParentNotFound, parentPath)
		}
		dt := n.storeType
		if dt == nil && n.compound != nil {
			var err error
			dt, err = n.compound.Datatype()
			if err != nil {
				return errors.Wrapf(ErrTypeCommitFailed, "%s: %v", n.name, err)
			}
			n.storeType = dt
		}
		if dt == nil {
			return errors.Wrapf(ErrTypeCommitFailed, "%s: type was never resolved", n.name)
		}
		id, err := parent.CommitDatatype(localName, dt)
		if err != nil {
			return errors.Wrapf(ErrTypeCommitFailed, "%s: %v", n.name, err)
		}
		if n.compound != nil {
			n.compound.id = id
		}
		return nil

	case KindReference:
		target := referenceTarget(n.data)
		if parent, ok := h.groups[parentPath]; ok {
			return parent.CreateReference(localName, target)
		}
		if parent, ok := h.datasets[parentPath]; ok {
			return parent.CreateReference(localName, target)
		}
		return errors.Wrap(ErrParentNotFound, parentPath)

	default:
		return errors.Errorf("node %s has unknown kind %d", n.name, n.kind)
	}
}

// deflateLevel maps a node's effective compression descriptor onto a deflate
// level for the store. The store has no szip codec.
func deflateLevel(n *Node, override *Compression) (int, error) {
	c := n.compression
	if override != nil {
		c = override
	}
	if c == nil {
		return 0, nil
	}
	if err := c.Validate(); err != nil {
		return 0, err
	}
	switch c.Kind {
	case CompressionNone:
		return 0, nil
	case CompressionZLib:
		return c.Level, nil
	default:
		return 0, errors.Wrapf(hdf5.ErrUnsupported, "%s compression", c.Kind)
	}
}

// referenceTarget interprets a reference payload as its target path.
func referenceTarget(data []byte) string {
	return string(bytes.TrimRight(data, "\x00"))
}
