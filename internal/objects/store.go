// Typed save/load over a raw CAS. Saving is idempotent; loading verifies the
// bytes decode as the requested kind and reports ErrCorrupt otherwise.
package objects

import (
	"fmt"

	"github.com/stratavcs/strata/internal/cas"
)

// SaveBlob persists raw file content and returns its Blob.
func SaveBlob(store cas.CAS, content []byte) (Blob, error) {
	hash := cas.SumB3(content)
	if err := store.Put(hash, content); err != nil {
		return Blob{}, fmt.Errorf("save blob: %w", err)
	}
	return Blob{Hash: hash}, nil
}

// LoadBlob returns the raw content addressed by a blob hash.
func LoadBlob(store cas.CAS, hash cas.Hash) ([]byte, error) {
	content, err := store.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("load blob %s: %w", hash, err)
	}
	return content, nil
}

// SaveTree persists a tree and returns its content address.
func SaveTree(store cas.CAS, t *Tree) (cas.Hash, error) {
	encoded := EncodeTree(t)
	hash := cas.SumB3(encoded)
	if err := store.Put(hash, encoded); err != nil {
		return cas.Hash{}, fmt.Errorf("save tree: %w", err)
	}
	return hash, nil
}

// LoadTree loads and decodes the tree at the given hash.
func LoadTree(store cas.CAS, hash cas.Hash) (*Tree, error) {
	data, err := store.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w", hash, err)
	}
	tree, err := DecodeTree(data)
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w", hash, err)
	}
	return tree, nil
}

// SaveCommit persists a commit and returns its content address.
func SaveCommit(store cas.CAS, c *Commit) (cas.Hash, error) {
	encoded := EncodeCommit(c)
	hash := cas.SumB3(encoded)
	if err := store.Put(hash, encoded); err != nil {
		return cas.Hash{}, fmt.Errorf("save commit: %w", err)
	}
	return hash, nil
}

// LoadCommit loads and decodes the commit at the given hash.
func LoadCommit(store cas.CAS, hash cas.Hash) (*Commit, error) {
	data, err := store.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", hash, err)
	}
	commit, err := DecodeCommit(data)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", hash, err)
	}
	return commit, nil
}
