package hdf5

import (
	"fmt"
	"path"

	"github.com/baltrad-go/hlhdf/internal/message"
	"github.com/baltrad-go/hlhdf/internal/object"
)

// CreateGroup creates a new subgroup with the given name.
func (g *Group) CreateGroup(name string) (*Group, error) {
	if !g.file.writable {
		return nil, fmt.Errorf("file is not writable")
	}

	if name == "" {
		return nil, fmt.Errorf("group name cannot be empty")
	}

	// Calculate the path for the new group
	newPath := path.Join(g.path, name)
	if g.path == "/" {
		newPath = "/" + name
	}

	// Create an empty group object header
	groupMessages := object.NewEmptyGroupHeader()

	// Calculate header size and allocate space
	headerSize := object.HeaderSize(g.file.writer, groupMessages)
	groupAddr := g.file.allocate(int64(headerSize))

	// Write the group object header
	w := g.file.writer.At(int64(groupAddr))
	if _, err := object.WriteHeader(w, groupMessages); err != nil {
		return nil, fmt.Errorf("writing group header: %w", err)
	}

	// Create a hard link from parent to this group
	link := message.NewHardLink(name, groupAddr)

	// Add the link to the parent group
	if err := g.addLink(link); err != nil {
		return nil, fmt.Errorf("adding link to parent: %w", err)
	}

	newGroup := &Group{
		file:        g.file,
		path:        newPath,
		header:      nil, // Nothing to load, the group is brand new
		addr:        groupAddr,
		stateLoaded: true,
	}
	g.file.registerGroup(newGroup)

	return newGroup, nil
}

// SetAttribute creates an attribute on this group. A nil or empty dims slice
// produces a scalar attribute, otherwise a simple dataspace with the given
// extents. The attribute must not already exist.
func (g *Group) SetAttribute(name string, dt *Datatype, dims []uint64, data []byte) error {
	if !g.file.writable {
		return fmt.Errorf("file is not writable")
	}
	if dt == nil {
		return fmt.Errorf("attribute %q has no datatype", name)
	}

	var dataspace *message.Dataspace
	if len(dims) == 0 {
		dataspace = message.NewScalarDataspace()
	} else {
		dataspace = message.NewDataspace(dims, nil)
	}

	return g.addAttribute(message.NewAttribute(name, dt.msg, dataspace, data))
}

// CreateReference creates a scalar reference attribute on this group pointing
// at the object with the given absolute path.
func (g *Group) CreateReference(name, targetPath string) error {
	dt, data := encodeReference(targetPath)
	return g.SetAttribute(name, dt, nil, data)
}

// encodeReference builds the reference datatype and payload for a target path.
// The path is stored null-terminated so references stay resolvable by name
// after header relocation.
func encodeReference(targetPath string) (*Datatype, []byte) {
	data := make([]byte, len(targetPath)+1)
	copy(data, targetPath)
	return newReferenceType(len(data)), data
}

// CommitDatatype writes the datatype as a named type object linked under this
// group and returns its object identity.
func (g *Group) CommitDatatype(name string, dt *Datatype) (ObjectID, error) {
	if !g.file.writable {
		return ObjectID{}, fmt.Errorf("file is not writable")
	}
	if dt == nil {
		return ObjectID{}, fmt.Errorf("no datatype to commit under %q", name)
	}

	messages := object.NewDatatypeHeader(dt.msg)
	headerSize := object.HeaderSize(g.file.writer, messages)
	addr := g.file.allocate(int64(headerSize))

	w := g.file.writer.At(int64(addr))
	if _, err := object.WriteHeader(w, messages); err != nil {
		return ObjectID{}, fmt.Errorf("writing datatype header: %w", err)
	}

	link := message.NewHardLink(name, addr)
	if err := g.addLink(link); err != nil {
		return ObjectID{}, fmt.Errorf("adding link to parent: %w", err)
	}

	id := ObjectID{addr, 0}
	dt.id = id
	return id, nil
}

// addLink adds a link message to this group and rewrites its object header.
func (g *Group) addLink(link *message.Link) error {
	if !g.file.writable {
		return fmt.Errorf("file is not writable")
	}

	if err := g.loadExistingState(); err != nil {
		return fmt.Errorf("loading group state: %w", err)
	}

	for _, l := range g.pendingLinks {
		if l.Name == link.Name {
			return fmt.Errorf("%q already exists in group %s", link.Name, g.path)
		}
	}

	g.pendingLinks = append(g.pendingLinks, link)

	return g.rewriteHeader()
}

// addAttribute adds an attribute message to this group and rewrites its header.
func (g *Group) addAttribute(attr *message.Attribute) error {
	if err := g.loadExistingState(); err != nil {
		return fmt.Errorf("loading group state: %w", err)
	}

	for _, a := range g.pendingAttrs {
		if a.Name == attr.Name {
			return fmt.Errorf("attribute %q already exists on %s", attr.Name, g.path)
		}
	}

	g.pendingAttrs = append(g.pendingAttrs, attr)

	return g.rewriteHeader()
}

// loadExistingState pulls existing link and attribute messages out of the
// group's object header so rewrites preserve them.
func (g *Group) loadExistingState() error {
	if g.stateLoaded {
		return nil
	}
	g.stateLoaded = true
	g.pendingLinks = make([]*message.Link, 0)
	g.pendingAttrs = make([]*message.Attribute, 0)

	// If we don't have a header loaded, try to load it
	if g.header == nil && g.file.reader != nil {
		header, err := object.Read(g.file.reader, g.addr)
		if err != nil {
			// If we can't read the header, start fresh (this is OK for new groups)
			return nil
		}
		g.header = header
	}

	if g.header != nil {
		for _, msg := range g.header.GetMessages(message.TypeLink) {
			if linkMsg, ok := msg.(*message.Link); ok {
				g.pendingLinks = append(g.pendingLinks, linkMsg)
			}
		}
		for _, msg := range g.header.GetMessages(message.TypeAttribute) {
			if attrMsg, ok := msg.(*message.Attribute); ok {
				g.pendingAttrs = append(g.pendingAttrs, attrMsg)
			}
		}
	}

	return nil
}

// rewriteHeader rewrites the group's object header with all pending links and
// attributes. Headers cannot grow in place, so the header moves to a fresh
// address and the referrer is repointed.
func (g *Group) rewriteHeader() error {
	messages := object.NewGroupHeaderWithAttrs(g.pendingLinks, g.pendingAttrs)

	// Minimum chunk size keeps headers compatible with the HDF5 C library
	headerSize := object.HeaderSizeWithMinChunk(g.file.writer, messages, object.MinGroupChunkSize)

	newAddr := g.file.allocate(int64(headerSize))

	w := g.file.writer.At(int64(newAddr))
	if _, err := object.WriteHeaderWithMinChunk(w, messages, object.MinGroupChunkSize); err != nil {
		return err
	}

	g.addr = newAddr

	// Keep the parsed header in sync so path traversal sees the new links.
	if g.file.reader != nil {
		if header, err := object.Read(g.file.reader, newAddr); err == nil {
			g.header = header
		}
	}

	// The root group is referenced from the superblock; everything else is
	// referenced by a hard link in its parent group.
	if g.path == "/" {
		g.file.superblock.RootGroupAddress = newAddr
		return nil
	}
	return g.repointParent(newAddr)
}

// repointParent updates the parent group's link to this object's new address.
func (g *Group) repointParent(newAddr uint64) error {
	parent, err := g.file.parentGroupOf(g.path)
	if err != nil {
		return err
	}
	return parent.updateChildLink(path.Base(g.path), newAddr)
}

// updateChildLink repoints the named child's hard link and rewrites this
// group's header, cascading the relocation up to the root.
func (g *Group) updateChildLink(name string, newAddr uint64) error {
	if err := g.loadExistingState(); err != nil {
		return err
	}

	found := false
	for _, link := range g.pendingLinks {
		if link.Name == name {
			link.ObjectAddress = newAddr
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("no link for %q in group %s", name, g.path)
	}

	return g.rewriteHeader()
}

// parentGroupOf resolves the parent group of a path in a writable file,
// preferring already-open groups and falling back to reading from the file.
func (f *File) parentGroupOf(childPath string) (*Group, error) {
	parentPath := path.Dir(childPath)
	if parentPath == "" || parentPath == "." {
		parentPath = "/"
	}

	if parentPath == "/" {
		return f.root, nil
	}
	if g, ok := f.groups[parentPath]; ok {
		return g, nil
	}
	if f.reader != nil {
		return f.OpenGroup(parentPath)
	}
	return nil, fmt.Errorf("parent group %s is not open", parentPath)
}
