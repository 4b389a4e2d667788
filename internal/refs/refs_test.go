package refs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stratavcs/strata/internal/cas"
	"github.com/stratavcs/strata/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	layout := config.DefaultLayout()
	repoDir := filepath.Join(t.TempDir(), layout.RepoDirName)
	dirs := []string{
		filepath.Join(repoDir, layout.RefsDir, layout.HeadsDir),
		filepath.Join(repoDir, layout.RefsDir, layout.TagsDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return NewStore(repoDir, layout)
}

func TestRecordRoundTrips(t *testing.T) {
	dir := t.TempDir()
	hash := cas.SumB3([]byte("commit"))

	hashPath := filepath.Join(dir, "hashref")
	if err := WriteRecord(hashPath, HashRef{Hash: hash}); err != nil {
		t.Fatalf("WriteRecord failed: %v", err)
	}
	ref, err := ReadRecord(hashPath)
	if err != nil {
		t.Fatalf("ReadRecord failed: %v", err)
	}
	if hr, ok := ref.(HashRef); !ok || hr.Hash != hash {
		t.Errorf("read %v, want HashRef %s", ref, hash)
	}

	symPath := filepath.Join(dir, "symref")
	if err := WriteRecord(symPath, SymRef{Name: "refs/heads/main"}); err != nil {
		t.Fatalf("WriteRecord failed: %v", err)
	}
	ref, err = ReadRecord(symPath)
	if err != nil {
		t.Fatalf("ReadRecord failed: %v", err)
	}
	if sr, ok := ref.(SymRef); !ok || sr.Name != "refs/heads/main" {
		t.Errorf("read %v, want SymRef refs/heads/main", ref)
	}
}

func TestEmptyRecordIsUnborn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unborn")
	if err := WriteRecord(path, nil); err != nil {
		t.Fatalf("WriteRecord failed: %v", err)
	}
	ref, err := ReadRecord(path)
	if err != nil {
		t.Fatalf("ReadRecord failed: %v", err)
	}
	if ref != nil {
		t.Errorf("empty record read as %v, want nil", ref)
	}
}

func TestReadRecordErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadRecord(filepath.Join(dir, "missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing record returned %v, want ErrNotFound", err)
	}

	malformed := filepath.Join(dir, "malformed")
	if err := os.WriteFile(malformed, []byte("neither hash nor symref"), 0644); err != nil {
		t.Fatalf("write malformed record: %v", err)
	}
	_, err = ReadRecord(malformed)
	if !errors.Is(err, ErrInvalidReference) {
		t.Errorf("malformed record returned %v, want ErrInvalidReference", err)
	}
}

func TestResolveThroughHead(t *testing.T) {
	store := newTestStore(t)
	hash := cas.SumB3([]byte("tip"))

	if err := WriteRecord(store.BranchPath("main"), HashRef{Hash: hash}); err != nil {
		t.Fatalf("write branch record: %v", err)
	}
	if err := store.SetHead(store.BranchRef("main")); err != nil {
		t.Fatalf("SetHead failed: %v", err)
	}

	got, found, err := store.ResolveName("HEAD")
	if err != nil {
		t.Fatalf("ResolveName(HEAD) failed: %v", err)
	}
	if !found || got != hash {
		t.Errorf("HEAD resolved to %s, %v; want %s, true", got, found, hash)
	}
}

func TestResolveUnbornBranchIsAbsent(t *testing.T) {
	store := newTestStore(t)

	if err := WriteRecord(store.BranchPath("main"), nil); err != nil {
		t.Fatalf("write branch record: %v", err)
	}

	_, found, err := store.ResolveName("main")
	if err != nil {
		t.Fatalf("ResolveName failed: %v", err)
	}
	if found {
		t.Error("unborn branch resolved to a commit")
	}
}

func TestResolveNamePrecedence(t *testing.T) {
	store := newTestStore(t)

	// A branch whose name is a well-formed hash must resolve as a branch,
	// not as the literal hash.
	branchTip := cas.SumB3([]byte("branch tip"))
	confusingName := cas.SumB3([]byte("something else")).String()

	if err := WriteRecord(store.BranchPath(confusingName), HashRef{Hash: branchTip}); err != nil {
		t.Fatalf("write branch record: %v", err)
	}

	got, found, err := store.ResolveName(confusingName)
	if err != nil {
		t.Fatalf("ResolveName failed: %v", err)
	}
	if !found || got != branchTip {
		t.Errorf("hash-shaped branch name resolved to %s, want branch tip %s", got, branchTip)
	}
}

func TestResolveNameBranchBeforeTag(t *testing.T) {
	store := newTestStore(t)
	branchTip := cas.SumB3([]byte("branch"))
	tagTip := cas.SumB3([]byte("tag"))

	if err := WriteRecord(store.BranchPath("v1"), HashRef{Hash: branchTip}); err != nil {
		t.Fatalf("write branch record: %v", err)
	}
	if err := WriteRecord(store.TagPath("v1"), HashRef{Hash: tagTip}); err != nil {
		t.Fatalf("write tag record: %v", err)
	}

	got, _, err := store.ResolveName("v1")
	if err != nil {
		t.Fatalf("ResolveName failed: %v", err)
	}
	if got != branchTip {
		t.Error("branch did not take precedence over same-named tag")
	}
}

func TestResolveNameLiteralHash(t *testing.T) {
	store := newTestStore(t)
	hash := cas.SumB3([]byte("detached"))

	got, found, err := store.ResolveName(hash.String())
	if err != nil {
		t.Fatalf("ResolveName failed: %v", err)
	}
	if !found || got != hash {
		t.Errorf("literal hash resolved to %s, %v", got, found)
	}
}

func TestResolveNameInvalid(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.ResolveName("no-such-ref")
	if !errors.Is(err, ErrInvalidReference) {
		t.Errorf("unknown name returned %v, want ErrInvalidReference", err)
	}
}

func TestBranchAndTagListing(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"main", "feature/x"} {
		if err := WriteRecord(store.BranchPath(name), nil); err != nil {
			t.Fatalf("write branch %s: %v", name, err)
		}
	}
	if err := WriteRecord(store.TagPath("v1.0"), HashRef{Hash: cas.SumB3([]byte("v1"))}); err != nil {
		t.Fatalf("write tag: %v", err)
	}

	branches, err := store.Branches()
	if err != nil {
		t.Fatalf("Branches failed: %v", err)
	}
	if len(branches) != 2 {
		t.Errorf("Branches = %v, want 2 entries", branches)
	}
	found := false
	for _, b := range branches {
		if b == "feature/x" {
			found = true
		}
	}
	if !found {
		t.Errorf("nested branch missing from %v", branches)
	}

	tags, err := store.Tags()
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	if len(tags) != 1 || tags[0] != "v1.0" {
		t.Errorf("Tags = %v, want [v1.0]", tags)
	}
}

func TestBranchNameExtraction(t *testing.T) {
	store := newTestStore(t)

	if name, ok := store.BranchName(store.BranchRef("main")); !ok || name != "main" {
		t.Errorf("BranchName = %q, %v", name, ok)
	}
	if _, ok := store.BranchName(store.TagRef("v1")); ok {
		t.Error("BranchName accepted a tag ref")
	}
	if _, ok := store.BranchName(SymRef{Name: "HEAD"}); ok {
		t.Error("BranchName accepted HEAD")
	}
}
