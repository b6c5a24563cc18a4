package hdf5

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func rawInt32(vals ...int32) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

func TestCreateDatasetRaw(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "test_raw.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	raw := rawInt32(1, 2, 3, 4, 5, 6)
	dt := NewFixedPointType(4, true)
	if _, err := f.Root().CreateDatasetRaw("data", dt, []uint64{2, 3}, raw, 0); err != nil {
		t.Fatalf("CreateDatasetRaw failed: %v", err)
	}
	f.Close()

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	ds, err := f2.OpenDataset("/data")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}

	shape := ds.Shape()
	if len(shape) != 2 || shape[0] != 2 || shape[1] != 3 {
		t.Errorf("Expected shape [2 3], got %v", shape)
	}

	got, err := ds.ReadRaw()
	if err != nil {
		t.Fatalf("ReadRaw failed: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("Raw data mismatch: got %v, want %v", got, raw)
	}
}

func TestCreateDatasetRawCompressed(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "test_raw_deflate.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	vals := make([]int32, 256)
	for i := range vals {
		vals[i] = int32(i % 16)
	}
	raw := rawInt32(vals...)

	dt := NewFixedPointType(4, true)
	if _, err := f.Root().CreateDatasetRaw("data", dt, []uint64{16, 16}, raw, 6); err != nil {
		t.Fatalf("CreateDatasetRaw failed: %v", err)
	}
	f.Close()

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	ds, err := f2.OpenDataset("/data")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}

	got, err := ds.ReadRaw()
	if err != nil {
		t.Fatalf("ReadRaw failed: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("Decompressed data mismatch: got %d bytes, want %d", len(got), len(raw))
	}

	values, err := ds.ReadInt32()
	if err != nil {
		t.Fatalf("ReadInt32 failed: %v", err)
	}
	if len(values) != 256 || values[17] != 1 {
		t.Errorf("Unexpected decoded values: len=%d", len(values))
	}
}

func TestCreateDatasetRawSizeMismatch(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	f, err := Create(filepath.Join(tmpDir, "test_mismatch.h5"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer f.Close()

	dt := NewFixedPointType(4, true)
	if _, err := f.Root().CreateDatasetRaw("data", dt, []uint64{3}, rawInt32(1, 2), 0); err == nil {
		t.Error("Expected error for payload/shape mismatch")
	}
}

func TestDatasetSetAttribute(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "test_ds_attr.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dt := NewFixedPointType(4, true)
	ds, err := f.Root().CreateDatasetRaw("data", dt, []uint64{2}, rawInt32(10, 20), 0)
	if err != nil {
		t.Fatalf("CreateDatasetRaw failed: %v", err)
	}

	if err := ds.SetAttribute("gain", NewFloatType(8), nil, make([]byte, 8)); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}
	if err := ds.SetAttribute("gain", NewFloatType(8), nil, make([]byte, 8)); err == nil {
		t.Error("Expected error for duplicate attribute")
	}
	f.Close()

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	ds2, err := f2.OpenDataset("/data")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}
	attr := ds2.Attr("gain")
	if attr == nil {
		t.Fatal("Attribute 'gain' not found after reopen")
	}
	if !attr.Datatype().IsFloat() {
		t.Error("Expected float attribute type")
	}

	raw, err := ds2.ReadRaw()
	if err != nil {
		t.Fatalf("ReadRaw failed: %v", err)
	}
	if !bytes.Equal(raw, rawInt32(10, 20)) {
		t.Error("Dataset data corrupted by attribute rewrite")
	}
}
