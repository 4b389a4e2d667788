package objects

import (
	"errors"
	"testing"

	"github.com/stratavcs/strata/internal/cas"
)

func blobRecord(content, name string) TreeRecord {
	return TreeRecord{Kind: KindBlob, Hash: cas.SumB3([]byte(content)), Name: name}
}

func TestNewTreeSortsRecords(t *testing.T) {
	tree, err := NewTree([]TreeRecord{
		blobRecord("z", "zebra.txt"),
		blobRecord("a", "alpha.txt"),
		blobRecord("m", "middle.txt"),
	})
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}

	records := tree.Records()
	want := []string{"alpha.txt", "middle.txt", "zebra.txt"}
	for i, name := range want {
		if records[i].Name != name {
			t.Errorf("record %d = %q, want %q", i, records[i].Name, name)
		}
	}
}

func TestNewTreeRejectsDuplicateNames(t *testing.T) {
	_, err := NewTree([]TreeRecord{
		blobRecord("a", "same.txt"),
		blobRecord("b", "same.txt"),
	})
	if err == nil {
		t.Fatal("NewTree accepted duplicate record names")
	}
}

func TestNewTreeRejectsEmptyNames(t *testing.T) {
	_, err := NewTree([]TreeRecord{blobRecord("a", "")})
	if err == nil {
		t.Fatal("NewTree accepted an empty record name")
	}
}

func TestTreeHashIsOrderIndependent(t *testing.T) {
	forward, err := NewTree([]TreeRecord{
		blobRecord("1", "a.txt"),
		blobRecord("2", "b.txt"),
	})
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}
	reversed, err := NewTree([]TreeRecord{
		blobRecord("2", "b.txt"),
		blobRecord("1", "a.txt"),
	})
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}

	if HashTree(forward) != HashTree(reversed) {
		t.Error("record insertion order changed the tree hash")
	}
}

func TestTreeRecordLookup(t *testing.T) {
	tree, err := NewTree([]TreeRecord{
		blobRecord("a", "a.txt"),
		blobRecord("b", "b.txt"),
	})
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}

	rec, ok := tree.Record("b.txt")
	if !ok || rec.Name != "b.txt" {
		t.Errorf("Record(b.txt) = %v, %v", rec, ok)
	}
	if _, ok := tree.Record("missing.txt"); ok {
		t.Error("Record found a missing name")
	}
}

func TestNilTreeIsEmpty(t *testing.T) {
	var tree *Tree
	if tree.Len() != 0 {
		t.Error("nil tree has nonzero length")
	}
	if tree.Records() != nil {
		t.Error("nil tree has records")
	}
	if _, ok := tree.Record("x"); ok {
		t.Error("nil tree found a record")
	}
}

func TestTreeCodecRoundTrip(t *testing.T) {
	sub, err := NewTree([]TreeRecord{blobRecord("inner", "inner.txt")})
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}
	tree, err := NewTree([]TreeRecord{
		blobRecord("file", "file.txt"),
		{Kind: KindTree, Hash: HashTree(sub), Name: "subdir"},
	})
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}

	decoded, err := DecodeTree(EncodeTree(tree))
	if err != nil {
		t.Fatalf("DecodeTree failed: %v", err)
	}
	if HashTree(decoded) != HashTree(tree) {
		t.Error("decoded tree hashes differently from the original")
	}
	if decoded.Len() != 2 {
		t.Errorf("decoded tree has %d records, want 2", decoded.Len())
	}
}

func TestEmptyTreeCodecRoundTrip(t *testing.T) {
	tree, err := NewTree(nil)
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}
	decoded, err := DecodeTree(EncodeTree(tree))
	if err != nil {
		t.Fatalf("DecodeTree failed: %v", err)
	}
	if decoded.Len() != 0 {
		t.Errorf("decoded empty tree has %d records", decoded.Len())
	}
}

func TestCommitCodecRoundTrip(t *testing.T) {
	commit := &Commit{
		TreeHash:  cas.SumB3([]byte("tree")),
		Author:    "Alice Example",
		Message:   "first commit\n\nwith a body",
		Timestamp: 1700000000,
		Parents: []cas.Hash{
			cas.SumB3([]byte("parent1")),
			cas.SumB3([]byte("parent2")),
		},
	}

	decoded, err := DecodeCommit(EncodeCommit(commit))
	if err != nil {
		t.Fatalf("DecodeCommit failed: %v", err)
	}

	if decoded.TreeHash != commit.TreeHash {
		t.Error("tree hash changed in round trip")
	}
	if decoded.Author != commit.Author {
		t.Errorf("author = %q, want %q", decoded.Author, commit.Author)
	}
	if decoded.Message != commit.Message {
		t.Errorf("message = %q, want %q", decoded.Message, commit.Message)
	}
	if decoded.Timestamp != commit.Timestamp {
		t.Errorf("timestamp = %d, want %d", decoded.Timestamp, commit.Timestamp)
	}
	if len(decoded.Parents) != 2 || decoded.Parents[0] != commit.Parents[0] || decoded.Parents[1] != commit.Parents[1] {
		t.Errorf("parents = %v, want %v", decoded.Parents, commit.Parents)
	}
}

func TestCommitMessageRoundTripsExactly(t *testing.T) {
	store := cas.NewMemoryCAS()
	messages := []string{
		"fix things\n",
		"no trailing newline",
		"several\ntrailing\nnewlines\n\n",
		"",
	}

	for _, msg := range messages {
		commit := &Commit{
			TreeHash:  cas.SumB3([]byte("tree")),
			Author:    "a",
			Message:   msg,
			Timestamp: 1,
		}
		hash, err := SaveCommit(store, commit)
		if err != nil {
			t.Fatalf("SaveCommit(%q) failed: %v", msg, err)
		}
		loaded, err := LoadCommit(store, hash)
		if err != nil {
			t.Fatalf("LoadCommit(%q) failed: %v", msg, err)
		}
		if loaded.Message != msg {
			t.Errorf("message changed in round trip: saved %q, loaded %q", msg, loaded.Message)
		}
	}
}

func TestRootCommitHasNoParents(t *testing.T) {
	commit := &Commit{
		TreeHash:  cas.SumB3([]byte("tree")),
		Author:    "a",
		Message:   "root",
		Timestamp: 1,
	}
	decoded, err := DecodeCommit(EncodeCommit(commit))
	if err != nil {
		t.Fatalf("DecodeCommit failed: %v", err)
	}
	if len(decoded.Parents) != 0 {
		t.Errorf("root commit decoded with %d parents", len(decoded.Parents))
	}
}

func TestDecodeRejectsMalformedObjects(t *testing.T) {
	cases := []struct {
		name string
		data string
		tree bool
	}{
		{"wrong tree header", "commit\n", true},
		{"truncated tree record", "tree\nblob abc\n", true},
		{"bad tree record hash", "tree\nblob nothex name\n", true},
		{"wrong commit header", "tree\n\nmsg", false},
		{"commit missing separator", "commit\ntree abc", false},
		{"commit missing fields", "commit\n\nmsg", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var err error
			if tc.tree {
				_, err = DecodeTree([]byte(tc.data))
			} else {
				_, err = DecodeCommit([]byte(tc.data))
			}
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("decode returned %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestStoreRoundTrips(t *testing.T) {
	store := cas.NewMemoryCAS()

	blob, err := SaveBlob(store, []byte("blob content"))
	if err != nil {
		t.Fatalf("SaveBlob failed: %v", err)
	}
	content, err := LoadBlob(store, blob.Hash)
	if err != nil {
		t.Fatalf("LoadBlob failed: %v", err)
	}
	if string(content) != "blob content" {
		t.Errorf("LoadBlob returned %q", content)
	}

	tree, err := NewTree([]TreeRecord{{Kind: KindBlob, Hash: blob.Hash, Name: "f.txt"}})
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}
	treeHash, err := SaveTree(store, tree)
	if err != nil {
		t.Fatalf("SaveTree failed: %v", err)
	}
	loadedTree, err := LoadTree(store, treeHash)
	if err != nil {
		t.Fatalf("LoadTree failed: %v", err)
	}
	if HashTree(loadedTree) != treeHash {
		t.Error("loaded tree hash mismatch")
	}

	commit := &Commit{TreeHash: treeHash, Author: "a", Message: "m", Timestamp: 1}
	commitHash, err := SaveCommit(store, commit)
	if err != nil {
		t.Fatalf("SaveCommit failed: %v", err)
	}
	loadedCommit, err := LoadCommit(store, commitHash)
	if err != nil {
		t.Fatalf("LoadCommit failed: %v", err)
	}
	if loadedCommit.TreeHash != treeHash {
		t.Error("loaded commit tree hash mismatch")
	}
}

func TestLoadWrongKindIsCorrupt(t *testing.T) {
	store := cas.NewMemoryCAS()

	blob, err := SaveBlob(store, []byte("just a blob"))
	if err != nil {
		t.Fatalf("SaveBlob failed: %v", err)
	}

	if _, err := LoadTree(store, blob.Hash); !errors.Is(err, ErrCorrupt) {
		t.Errorf("LoadTree of blob returned %v, want ErrCorrupt", err)
	}
	if _, err := LoadCommit(store, blob.Hash); !errors.Is(err, ErrCorrupt) {
		t.Errorf("LoadCommit of blob returned %v, want ErrCorrupt", err)
	}
}
