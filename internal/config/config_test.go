package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsZeroConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if cfg.User.Name != "" {
		t.Errorf("missing config loaded user.name %q", cfg.User.Name)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := Save(path, &Config{User: User{Name: "Alice Example"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.User.Name != "Alice Example" {
		t.Errorf("user.name = %q, want Alice Example", cfg.User.Name)
	}
}

func TestDefaultLayout(t *testing.T) {
	layout := DefaultLayout()
	if layout.RepoDirName == "" || layout.ObjectsDir == "" || layout.DefaultBranch == "" {
		t.Errorf("default layout has empty fields: %+v", layout)
	}
}
