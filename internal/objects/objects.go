// Package objects defines the three persisted object kinds (Blob, Tree and
// Commit) together with their canonical encodings and typed store access.
//
// Canonical encodings are deterministic: two objects with identical contents
// always encode to identical bytes, so their content addresses match. Trees
// keep their records sorted by name, which makes tree hashes independent of
// filesystem iteration order.
package objects

import (
	"fmt"
	"sort"

	"github.com/stratavcs/strata/internal/cas"
)

// Kind identifies a persisted object kind.
type Kind uint8

const (
	KindBlob Kind = iota + 1
	KindTree
	KindCommit
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBlob:
		return "blob"
	case KindTree:
		return "tree"
	case KindCommit:
		return "commit"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ErrCorrupt is returned when stored bytes fail to decode as the requested
// kind. It wraps cas.ErrCorrupt so callers can match either sentinel.
var ErrCorrupt = cas.ErrCorrupt

// Blob wraps the content address of raw file content already persisted in
// the store. Blobs are immutable once created.
type Blob struct {
	Hash cas.Hash
}

// TreeRecord is one directory entry: a named reference to a blob or subtree.
type TreeRecord struct {
	Kind Kind
	Hash cas.Hash
	Name string
}

// Tree is one directory snapshot: records ordered by name, names unique
// within the tree. Immutable once created; its identity is its content hash.
type Tree struct {
	records []TreeRecord
}

// NewTree builds a Tree from the given records, sorting them by name.
// Empty and duplicate names are rejected, matching what DecodeTree accepts:
// a constructible tree is always loadable.
func NewTree(records []TreeRecord) (*Tree, error) {
	sorted := make([]TreeRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	for i, rec := range sorted {
		if rec.Name == "" {
			return nil, fmt.Errorf("empty tree record name")
		}
		if i > 0 && rec.Name == sorted[i-1].Name {
			return nil, fmt.Errorf("duplicate tree record name %q", rec.Name)
		}
	}
	return &Tree{records: sorted}, nil
}

// Records returns the tree's records in name order. The returned slice must
// not be mutated.
func (t *Tree) Records() []TreeRecord {
	if t == nil {
		return nil
	}
	return t.records
}

// Record returns the record with the given name, if present.
func (t *Tree) Record(name string) (TreeRecord, bool) {
	if t == nil {
		return TreeRecord{}, false
	}
	i := sort.Search(len(t.records), func(i int) bool {
		return t.records[i].Name >= name
	})
	if i < len(t.records) && t.records[i].Name == name {
		return t.records[i], true
	}
	return TreeRecord{}, false
}

// Len returns the number of records in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Commit is one history node: a tree snapshot plus metadata and parent
// edges. Zero parents denotes a root commit; more than one a recorded merge.
type Commit struct {
	TreeHash  cas.Hash
	Author    string
	Message   string
	Timestamp int64
	Parents   []cas.Hash
}

// HashTree returns the content address of a tree.
func HashTree(t *Tree) cas.Hash {
	return cas.SumB3(EncodeTree(t))
}

// HashCommit returns the content address of a commit.
func HashCommit(c *Commit) cas.Hash {
	return cas.SumB3(EncodeCommit(c))
}
