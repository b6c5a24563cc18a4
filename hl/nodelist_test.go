package hl

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeListAdd(t *testing.T) {
	l := NewNodeList("out.h5")
	require.NoError(t, l.Add(NewGroup("/where")))
	require.NoError(t, l.Add(NewGroup("/what")))
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, "/where", l.NodeAt(0).Name())

	err := l.Add(NewGroup("/where"))
	assert.ErrorIs(t, err, ErrDuplicateNode)
	assert.Equal(t, 2, l.Len())
}

func TestNodeListFind(t *testing.T) {
	l := NewNodeList("out.h5")
	require.NoError(t, l.Add(NewGroup("/where")))

	assert.NotNil(t, l.Find("/where"))
	assert.Nil(t, l.Find("/missing"))
}

func TestSplitNodePath(t *testing.T) {
	cases := []struct {
		in, parent, local string
	}{
		{"/g", "", "g"},
		{"/g/d", "/g", "d"},
		{"/a/b/c", "/a/b", "c"},
		{"name", "", "name"},
	}
	for _, c := range cases {
		parent, local := splitNodePath(c.in)
		assert.Equal(t, c.parent, parent, c.in)
		assert.Equal(t, c.local, local, c.in)
	}
}

func intPayload(vals ...int32) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

func TestWriteReadRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "roundtrip.h5")

	l := NewNodeList(file)
	require.NoError(t, l.Add(NewGroup("/g")))

	d := NewDataset("/g/d")
	payload := intPayload(1, 2, 3, 4, 5, 6)
	require.NoError(t, d.SetArrayValue(4, []uint64{2, 3}, payload, "int", nil))
	require.NoError(t, l.Add(d))

	a := NewAttribute("/g/xscale")
	scale := make([]byte, 8)
	binary.LittleEndian.PutUint64(scale, 0x3FF0000000000000) // 1.0
	require.NoError(t, a.SetScalarValue(8, scale, "double", nil))
	require.NoError(t, l.Add(a))

	require.NoError(t, l.Write(nil))

	// Marks are untouched by a full write.
	assert.Equal(t, MarkCreated, d.Mark())

	got, err := Read(file)
	require.NoError(t, err)

	g := got.Find("/g")
	require.NotNil(t, g)
	assert.Equal(t, KindGroup, g.Kind())
	assert.Equal(t, MarkOriginal, g.Mark())

	ds := got.Find("/g/d")
	require.NotNil(t, ds)
	assert.Equal(t, KindDataset, ds.Kind())
	assert.Equal(t, []uint64{2, 3}, ds.Dims())
	assert.Equal(t, FormatInt, ds.Format())
	assert.Equal(t, payload, ds.Data())

	attr := got.Find("/g/xscale")
	require.NotNil(t, attr)
	assert.Equal(t, KindAttribute, attr.Kind())
	assert.Equal(t, FormatDouble, attr.Format())
	assert.Equal(t, scale, attr.Data())
}

func TestWriteParentNotFound(t *testing.T) {
	file := filepath.Join(t.TempDir(), "orphan.h5")

	l := NewNodeList(file)
	require.NoError(t, l.Add(NewGroup("/a/b")))

	err := l.Write(nil)
	assert.ErrorIs(t, err, ErrWriteAborted)
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestWriteRejectsInvalidCompression(t *testing.T) {
	l := NewNodeList(filepath.Join(t.TempDir(), "x.h5"))
	err := l.Write(ZLibCompression(10))
	assert.ErrorIs(t, err, ErrInvalidCompressionParams)
}

func TestWriteCompressedDataset(t *testing.T) {
	file := filepath.Join(t.TempDir(), "zipped.h5")

	payload := make([]byte, 4*100)
	for i := 0; i < 100; i++ {
		binary.LittleEndian.PutUint32(payload[i*4:], uint32(i%7))
	}

	l := NewNodeList(file)
	d := NewDataset("/data")
	require.NoError(t, d.SetArrayValue(4, []uint64{10, 10}, payload, "int", nil))
	d.SetCompression(ZLibCompression(6))
	require.NoError(t, l.Add(d))
	require.NoError(t, l.Write(nil))

	got, err := Read(file)
	require.NoError(t, err)

	ds := got.Find("/data")
	require.NotNil(t, ds)
	assert.Equal(t, []uint64{10, 10}, ds.Dims())
	assert.Equal(t, payload, ds.Data())
}

func TestUpdateAppendsCreatedNodesOnly(t *testing.T) {
	file := filepath.Join(t.TempDir(), "append.h5")

	base := NewNodeList(file)
	require.NoError(t, base.Add(NewGroup("/g")))
	require.NoError(t, base.Write(nil))

	l := NewNodeList(file)

	fresh := NewDataset("/g/new")
	require.NoError(t, fresh.SetArrayValue(4, []uint64{3}, intPayload(7, 8, 9), "int", nil))
	require.NoError(t, l.Add(fresh))

	stale := NewDataset("/g/old")
	require.NoError(t, stale.SetArrayValue(4, []uint64{1}, intPayload(1), "int", nil))
	stale.SetMark(MarkOriginal)
	require.NoError(t, l.Add(stale))

	require.NoError(t, l.Update(nil))

	assert.Equal(t, MarkOriginal, fresh.Mark())
	assert.Equal(t, MarkOriginal, stale.Mark())

	got, err := Read(file)
	require.NoError(t, err)
	assert.NotNil(t, got.Find("/g/new"))
	assert.Nil(t, got.Find("/g/old"), "non-created nodes must not be appended")
}

func TestUpdateAbortKeepsEarlierTransitions(t *testing.T) {
	file := filepath.Join(t.TempDir(), "abort.h5")

	base := NewNodeList(file)
	require.NoError(t, base.Add(NewGroup("/g")))
	require.NoError(t, base.Write(nil))

	l := NewNodeList(file)

	first := NewDataset("/g/first")
	require.NoError(t, first.SetArrayValue(4, []uint64{2}, intPayload(1, 2), "int", nil))
	require.NoError(t, l.Add(first))

	orphan := NewDataset("/missing/second")
	require.NoError(t, orphan.SetArrayValue(4, []uint64{1}, intPayload(3), "int", nil))
	require.NoError(t, l.Add(orphan))

	err := l.Update(nil)
	assert.ErrorIs(t, err, ErrUpdateAborted)
	assert.ErrorIs(t, err, ErrParentNotFound)
	assert.Contains(t, err.Error(), "/missing/second")

	// The node appended before the failure keeps its transition.
	assert.Equal(t, MarkOriginal, first.Mark())
	assert.Equal(t, MarkCreated, orphan.Mark())

	got, err := Read(file)
	require.NoError(t, err)
	assert.NotNil(t, got.Find("/g/first"))
	assert.Nil(t, got.Find("/missing/second"))
}

func TestUpdateMissingFile(t *testing.T) {
	l := NewNodeList(filepath.Join(t.TempDir(), "missing.h5"))
	err := l.Update(nil)
	assert.ErrorIs(t, err, ErrStoreOpenFailed)
}

func TestWriteNamedTypeRecordsIdentity(t *testing.T) {
	file := filepath.Join(t.TempDir(), "types.h5")

	desc, err := NewCompoundTypeDescription(16, []CompoundMember{
		{Name: "xsize", Offset: 0, Format: FormatInt},
		{Name: "scale", Offset: 8, Format: FormatDouble},
	})
	require.NoError(t, err)

	l := NewNodeList(file)
	nt := NewNamedType("/rave_type")
	nt.SetCompoundDescription(desc)
	require.NoError(t, l.Add(nt))
	require.NoError(t, l.Write(nil))

	id := desc.ObjectID()
	assert.False(t, id.IsZero())
	assert.Equal(t, desc, l.FindCompoundDescription(id))

	got, err := Read(file)
	require.NoError(t, err)

	n := got.Find("/rave_type")
	require.NotNil(t, n)
	assert.Equal(t, KindNamedType, n.Kind())
	require.NotNil(t, n.CompoundDescription())
	assert.False(t, n.CompoundDescription().ObjectID().IsZero())
	require.Len(t, n.CompoundDescription().Members, 2)
	assert.Equal(t, "xsize", n.CompoundDescription().Members[0].Name)
}

func TestWriteReference(t *testing.T) {
	file := filepath.Join(t.TempDir(), "refs.h5")

	l := NewNodeList(file)
	d := NewDataset("/data")
	require.NoError(t, d.SetArrayValue(4, []uint64{2}, intPayload(1, 2), "int", nil))
	require.NoError(t, l.Add(d))

	ref := NewReference("/source")
	require.NoError(t, ref.SetScalarValue(6, append([]byte("/data"), 0), "string", nil))
	require.NoError(t, l.Add(ref))

	require.NoError(t, l.Write(nil))

	got, err := Read(file)
	require.NoError(t, err)

	n := got.Find("/source")
	require.NotNil(t, n)
	assert.Equal(t, KindReference, n.Kind())
	assert.Equal(t, "/data", referenceTarget(n.Data()))
}
