package storage

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/anombench/internal/diffusion"
)

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	trajs := []diffusion.Trajectory{
		{0, 0.1, -0.30000000000000004, math.Pi},
		{0, 1e-17, 2.5, 3},
	}
	meta := BucketMetadata{Key: "fbm_a0.5_t4_n2_s42", Process: "fbm", Alpha: 0.5, TMax: 4, Seed: 42}

	if err := st.Save(meta, trajs); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, ok, err := st.Load(meta.Key)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !ok {
		t.Fatal("expected cached bucket")
	}
	if len(got) != len(trajs) {
		t.Fatalf("expected %d trajectories, got %d", len(trajs), len(got))
	}
	for i := range trajs {
		for j := range trajs[i] {
			if got[i][j] != trajs[i][j] {
				t.Errorf("trajectory %d position %d: want %v, got %v", i, j, trajs[i][j], got[i][j])
			}
		}
	}

	m, err := st.Metadata(meta.Key)
	if err != nil {
		t.Fatalf("metadata failed: %v", err)
	}
	if m.Count != 2 {
		t.Errorf("expected count 2, got %d", m.Count)
	}
	if m.Seed != 42 {
		t.Errorf("expected seed 42, got %d", m.Seed)
	}
	if m.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())

	trajs, ok, err := st.Load("absent")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok || trajs != nil {
		t.Error("expected cache miss")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 buckets, got %d", len(runs))
	}

	for _, key := range []string{"sbm_b", "fbm_a"} {
		if err := st.Save(BucketMetadata{Key: key}, []diffusion.Trajectory{{0}}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(runs))
	}
	if runs[0].Key != "fbm_a" {
		t.Errorf("expected sorted keys, got %s first", runs[0].Key)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty list, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Save(BucketMetadata{Key: "k"}, []diffusion.Trajectory{{0, 1}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, trajectoriesFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, "k", name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Save(BucketMetadata{}, nil); err == nil {
		t.Error("expected error for empty key")
	}
}
