package hdf5

import (
	"path/filepath"
	"testing"
)

func TestWalkVisitsAllObjectKinds(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "walk.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	grp, err := f.Root().CreateGroup("where")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	_, err = grp.CreateDatasetRaw("data", NewFixedPointType(4, true), []uint64{4}, rawInt32(1, 2, 3, 4), 0)
	if err != nil {
		t.Fatalf("CreateDatasetRaw failed: %v", err)
	}
	point, err := NewCompoundType(8, []CompoundMember{
		{Name: "x", ByteOffset: 0, Type: NewFloatType(4)},
		{Name: "y", ByteOffset: 4, Type: NewFloatType(4)},
	})
	if err != nil {
		t.Fatalf("NewCompoundType failed: %v", err)
	}
	if _, err := f.Root().CommitDatatype("point", point); err != nil {
		t.Fatalf("CommitDatatype failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err = Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	kinds := make(map[string]string)
	err = Walk(f.Root(), func(p string, obj interface{}, err error) error {
		if err != nil {
			return err
		}
		switch obj.(type) {
		case *Group:
			kinds[p] = "group"
		case *Dataset:
			kinds[p] = "dataset"
		case *NamedType:
			kinds[p] = "type"
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	want := map[string]string{
		"/":           "group",
		"/where":      "group",
		"/where/data": "dataset",
		"/point":      "type",
	}
	for p, kind := range want {
		if kinds[p] != kind {
			t.Errorf("path %s: got kind %q, want %q", p, kinds[p], kind)
		}
	}
	if len(kinds) != len(want) {
		t.Errorf("visited %d objects, want %d: %v", len(kinds), len(want), kinds)
	}
}

func TestWalkAttrsCollectsValues(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "walkattrs.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := f.Root().SetAttribute("object", NewStringType(5), nil, []byte("PVOL\x00")); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}
	ds, err := f.Root().CreateDatasetRaw("data", NewFixedPointType(4, true), []uint64{2}, rawInt32(7, 8), 0)
	if err != nil {
		t.Fatalf("CreateDatasetRaw failed: %v", err)
	}
	if err := ds.SetAttribute("gain", NewFixedPointType(4, true), nil, rawInt32(3)); err != nil {
		t.Fatalf("dataset SetAttribute failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err = Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	seen := make(map[string]string)
	err = f.WalkAttrs(func(info AttrInfo) error {
		if info.Err != nil {
			t.Errorf("attribute %s: read error %v", info.Path, info.Err)
		}
		seen[info.Path] = info.ObjectType
		return nil
	})
	if err != nil {
		t.Fatalf("WalkAttrs failed: %v", err)
	}

	if seen["/@object"] != "group" {
		t.Errorf("/@object: got %q, want group", seen["/@object"])
	}
	if seen["/data@gain"] != "dataset" {
		t.Errorf("/data@gain: got %q, want dataset", seen["/data@gain"])
	}
}

func TestParseAttrPath(t *testing.T) {
	tests := []struct {
		path       string
		wantObject string
		wantAttr   string
		wantErr    bool
	}{
		{"/@root_attr", "/", "root_attr", false},
		{"/data@units", "/data", "units", false},
		{"/group/dataset@attr", "/group/dataset", "attr", false},
		{"/a/b/c@d", "/a/b/c", "d", false},
		{"data@attr", "/data", "attr", false}, // relative path normalized
		{"", "", "", true},                    // empty
		{"/path/no/at", "", "", true},         // missing @
		{"/path@", "", "", true},              // empty attr name
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			obj, attr, err := ParseAttrPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.path)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error for %q: %v", tt.path, err)
				return
			}
			if obj != tt.wantObject {
				t.Errorf("object path: got %q, want %q", obj, tt.wantObject)
			}
			if attr != tt.wantAttr {
				t.Errorf("attr name: got %q, want %q", attr, tt.wantAttr)
			}
		})
	}
}

func TestJoinAttrPath(t *testing.T) {
	tests := []struct {
		objectPath string
		attrName   string
		want       string
	}{
		{"/", "attr", "/@attr"},
		{"/data", "units", "/data@units"},
		{"/group/dataset", "calibration", "/group/dataset@calibration"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := JoinAttrPath(tt.objectPath, tt.attrName)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitPathUtil(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/", []string{}},
		{"/foo", []string{"foo"}},
		{"/foo/bar", []string{"foo", "bar"}},
		{"/a/b/c", []string{"a", "b", "c"}},
		{"foo/bar", []string{"foo", "bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := SplitPath(tt.path)
			if len(got) != len(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
				return
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}
