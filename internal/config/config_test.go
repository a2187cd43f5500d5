package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("expected data dir %q, got %q", DefaultDataDir, cfg.DataDir)
	}
	if cfg.ByMolecule || cfg.ByResidue {
		t.Error("aggregation should default to atom mode")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	want := &Config{
		MDI:        "-role DRIVER -name efprobe -method TCP -port 8021",
		Snapshot:   "water.arc",
		Probes:     "1,5,9",
		ByMolecule: true,
		DataDir:    "/tmp/runs",
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
