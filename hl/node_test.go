package hl

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetScalarValue(t *testing.T) {
	n := NewAttribute("/where/xsize")
	payload := []byte{1, 0, 0, 0}

	require.NoError(t, n.SetScalarValue(4, payload, "int", nil))
	assert.Equal(t, payload, n.Data())
	assert.Empty(t, n.Dims())
	assert.Equal(t, FormatInt, n.Format())
	require.NotNil(t, n.Type())
	assert.Equal(t, 4, n.Type().Size())

	// The node owns its payload.
	payload[0] = 99
	assert.Equal(t, byte(1), n.Data()[0])
}

func TestSetScalarValueString(t *testing.T) {
	n := NewAttribute("/what/object")
	value := append([]byte("PVOL"), 0)

	require.NoError(t, n.SetScalarValue(len(value), value, "string", nil))
	assert.Equal(t, FormatString, n.Format())
	require.NotNil(t, n.Type())
	assert.True(t, n.Type().IsString())
	assert.Equal(t, len(value), n.Type().Size())
}

func TestSetScalarValueRejectsBadFormat(t *testing.T) {
	n := NewAttribute("/a")
	err := n.SetScalarValue(4, make([]byte, 4), "array", nil)
	assert.ErrorIs(t, err, ErrUnrecognizedFormat)

	err = n.SetScalarValue(4, make([]byte, 4), "gibberish", nil)
	assert.ErrorIs(t, err, ErrUnrecognizedFormat)
}

func TestSetScalarValueCompoundNeedsType(t *testing.T) {
	n := NewAttribute("/a")
	err := n.SetScalarValue(8, make([]byte, 8), "compound", nil)
	assert.ErrorIs(t, err, ErrMissingCompoundType)
}

func TestSetArrayValue(t *testing.T) {
	n := NewDataset("/data")
	payload := make([]byte, 24)
	for i := range payload {
		payload[i] = byte(i)
	}

	require.NoError(t, n.SetArrayValue(4, []uint64{2, 3}, payload, "int", nil))
	assert.Len(t, n.Data(), 24)
	assert.Equal(t, []uint64{2, 3}, n.Dims())
	assert.Equal(t, FormatInt, n.Format())
}

func TestSetArrayValueRejectsEmptyShape(t *testing.T) {
	n := NewDataset("/data")
	err := n.SetArrayValue(4, nil, make([]byte, 4), "int", nil)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestSetArrayValueRejectsShortPayload(t *testing.T) {
	n := NewDataset("/data")
	err := n.SetArrayValue(4, []uint64{2, 3}, make([]byte, 20), "int", nil)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestSetValueMarksChanged(t *testing.T) {
	n := NewAttribute("/a")
	require.NoError(t, n.SetScalarValue(4, make([]byte, 4), "int", nil))
	assert.Equal(t, MarkCreated, n.Mark())

	n.SetMark(MarkOriginal)
	require.NoError(t, n.SetScalarValue(4, make([]byte, 4), "int", nil))
	assert.Equal(t, MarkChanged, n.Mark())
}

func TestNodeClone(t *testing.T) {
	n := NewDataset("/data")
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, 42)
	require.NoError(t, n.SetArrayValue(8, []uint64{1}, payload, "llong", nil))
	n.SetCompression(ZLibCompression(6))

	c := n.Clone()
	require.NotNil(t, c)

	c.Data()[0] = 0xFF
	assert.Equal(t, byte(42), n.Data()[0])

	c.Dims()[0] = 9
	assert.Equal(t, uint64(1), n.Dims()[0])

	c.Compression().Level = 1
	assert.Equal(t, 6, n.Compression().Level)
}
