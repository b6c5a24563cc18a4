package hl

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/baltrad-go/hlhdf/hdf5"
)

// Update appends the list's Created nodes to an existing store. Parents are
// opened by path against the store opened by this call, never through
// handles left over from an earlier write. Each successfully appended node
// transitions to Original; the first failure aborts the scan and earlier
// transitions are kept.
func (l *NodeList) Update(compression *Compression) error {
	if compression != nil {
		if err := compression.Validate(); err != nil {
			return err
		}
	}

	f, err := hdf5.OpenReadWrite(l.filename)
	if err != nil {
		return errors.Wrapf(ErrStoreOpenFailed, "%s: %v", l.filename, err)
	}
	defer f.Close()

	for _, n := range l.nodes {
		if n.mark != MarkCreated {
			continue
		}
		logger.Debug().Str("node", n.name).Stringer("kind", n.kind).Msg("appending node")
		if err := appendNode(f, n, compression); err != nil {
			return fmt.Errorf("%w: node %s: %w", ErrUpdateAborted, n.name, err)
		}
		n.mark = MarkOriginal
	}
	return nil
}

// appendNode materializes one node against a freshly opened store, resolving
// its parent by path.
func appendNode(f *hdf5.File, n *Node, override *Compression) error {
	parentPath, localName := splitNodePath(n.name)
	parentGroup, parentDataset, err := openParent(f, parentPath)
	if err != nil {
		return err
	}

	switch n.kind {
	case KindGroup:
		if parentGroup == nil {
			return errors.Wrapf(ErrParentNotFound, "%s is not a group", parentPath)
		}
		_, err := parentGroup.CreateGroup(localName)
		return err

	case KindAttribute:
		dt, err := n.resolveType()
		if err != nil {
			return err
		}
		if parentGroup != nil {
			return parentGroup.SetAttribute(localName, dt, n.dims, n.data)
		}
		return parentDataset.SetAttribute(localName, dt, n.dims, n.data)

	case KindDataset:
		if parentGroup == nil {
			return errors.Wrapf(ErrParentNotFound, "%s is not a group", parentPath)
		}
		dt, err := n.resolveType()
		if err != nil {
			return err
		}
		level, err := deflateLevel(n, override)
		if err != nil {
			return err
		}
		_, err = parentGroup.CreateDatasetRaw(localName, dt, n.dims, n.data, level)
		return err

	case KindNamedType:
		if parentGroup == nil {
			return errors.Wrapf(ErrParentNotFound, "%s is not a group", parentPath)
		}
		dt := n.storeType
		if dt == nil && n.compound != nil {
			dt, err = n.compound.Datatype()
			if err != nil {
				return errors.Wrapf(ErrTypeCommitFailed, "%s: %v", n.name, err)
			}
			n.storeType = dt
		}
		if dt == nil {
			return errors.Wrapf(ErrTypeCommitFailed, "%s: type was never resolved", n.name)
		}
		id, err := parentGroup.CommitDatatype(localName, dt)
		if err != nil {
			return errors.Wrapf(ErrTypeCommitFailed, "%s: %v", n.name, err)
		}
		if n.compound != nil {
			n.compound.id = id
		}
		return nil

	case KindReference:
		target := referenceTarget(n.data)
		if parentGroup != nil {
			return parentGroup.CreateReference(localName, target)
		}
		return parentDataset.CreateReference(localName, target)

	default:
		return errors.Errorf("node %s has unknown kind %d", n.name, n.kind)
	}
}

// openParent opens a node's parent object in the store. Exactly one of the
// returned group and dataset is non-nil on success.
func openParent(f *hdf5.File, parentPath string) (*hdf5.Group, *hdf5.Dataset, error) {
	if parentPath == "" || parentPath == "/" {
		return f.Root(), nil, nil
	}

	g, err := f.OpenGroup(parentPath)
	if err == nil {
		return g, nil, nil
	}
	if !errors.Is(err, hdf5.ErrNotGroup) {
		return nil, nil, errors.Wrapf(ErrParentNotFound, "%s: %v", parentPath, err)
	}

	ds, err := f.OpenDataset(parentPath)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrParentNotFound, "%s: %v", parentPath, err)
	}
	return nil, ds, nil
}
