package fstree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stratavcs/strata/internal/cas"
	"github.com/stratavcs/strata/internal/objects"
)

const testSkipName = ".strata"

func writeTestFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir for %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestBuildNestedDirectories(t *testing.T) {
	root := t.TempDir()
	writeTestFiles(t, root, map[string]string{
		"readme.md":        "top",
		"src/main.go":      "package main",
		"src/util/util.go": "package util",
	})

	result, err := Build(root, testSkipName, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(result.Files) != 3 {
		t.Errorf("Files has %d entries, want 3: %v", len(result.Files), result.Files)
	}
	if result.Files["src/util/util.go"] != cas.SumB3([]byte("package util")) {
		t.Error("nested file hash mismatch")
	}

	// Root tree has readme.md and src.
	if result.Root.Len() != 2 {
		t.Errorf("root tree has %d records, want 2", result.Root.Len())
	}
	rec, ok := result.Root.Record("src")
	if !ok || rec.Kind != objects.KindTree {
		t.Fatalf("src record = %v, %v", rec, ok)
	}
	if _, ok := result.Subtrees[rec.Hash]; !ok {
		t.Error("src subtree missing from Subtrees memo")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	files := map[string]string{
		"b.txt":     "bee",
		"a.txt":     "ay",
		"dir/c.txt": "sea",
	}

	root1 := t.TempDir()
	root2 := t.TempDir()
	writeTestFiles(t, root1, files)
	writeTestFiles(t, root2, files)

	r1, err := Build(root1, testSkipName, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	r2, err := Build(root2, testSkipName, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if r1.RootHash != r2.RootHash {
		t.Error("identical directory contents produced different root hashes")
	}
}

func TestBuildSkipsMetadataDirectory(t *testing.T) {
	root := t.TempDir()
	writeTestFiles(t, root, map[string]string{
		"tracked.txt":                   "tracked",
		testSkipName + "/internal.txt":  "never tracked",
		"sub/" + testSkipName + "/x":    "skipped at depth too",
		"sub/tracked.txt":               "also tracked",
	})

	result, err := Build(root, testSkipName, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(result.Files) != 2 {
		t.Errorf("Files = %v, want only tracked files", result.Files)
	}
	for path := range result.Files {
		if filepath.Base(filepath.Dir(path)) == testSkipName {
			t.Errorf("metadata file %s leaked into the tree", path)
		}
	}
}

func TestBuildRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	writeTestFiles(t, root, map[string]string{"file.txt": "x"})

	if _, err := Build(filepath.Join(root, "file.txt"), testSkipName, nil); err == nil {
		t.Error("Build accepted a file path")
	}
	if _, err := Build(filepath.Join(root, "missing"), testSkipName, nil); err == nil {
		t.Error("Build accepted a missing path")
	}
}

func TestBuildEmptyDirectory(t *testing.T) {
	result, err := Build(t.TempDir(), testSkipName, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.Root.Len() != 0 {
		t.Errorf("empty directory built %d records", result.Root.Len())
	}
	if len(result.Files) != 0 {
		t.Errorf("empty directory recorded files: %v", result.Files)
	}
}

func TestSnapshotMatchesBuild(t *testing.T) {
	root := t.TempDir()
	writeTestFiles(t, root, map[string]string{
		"a.txt":                        "a",
		"nested/deep/b.txt":            "b",
		testSkipName + "/internal.bin": "skip me",
	})

	snapshot, err := Snapshot(root, testSkipName, nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	result, err := Build(root, testSkipName, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(snapshot) != len(result.Files) {
		t.Fatalf("snapshot has %d files, build has %d", len(snapshot), len(result.Files))
	}
	for path, hash := range result.Files {
		if snapshot[path] != hash {
			t.Errorf("snapshot[%s] = %s, build = %s", path, snapshot[path], hash)
		}
	}
}

func TestTreeFilesRoundTrip(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"top.txt":       "top",
		"dir/inner.txt": "inner",
	}
	writeTestFiles(t, root, files)

	result, err := Build(root, testSkipName, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	store := cas.NewMemoryCAS()
	for _, tree := range result.Subtrees {
		if _, err := objects.SaveTree(store, tree); err != nil {
			t.Fatalf("SaveTree failed: %v", err)
		}
	}

	flattened, err := TreeFiles(store, result.RootHash)
	if err != nil {
		t.Fatalf("TreeFiles failed: %v", err)
	}

	if len(flattened) != len(result.Files) {
		t.Fatalf("TreeFiles has %d entries, want %d", len(flattened), len(result.Files))
	}
	for path, hash := range result.Files {
		if flattened[path] != hash {
			t.Errorf("TreeFiles[%s] = %s, want %s", path, flattened[path], hash)
		}
	}
}
