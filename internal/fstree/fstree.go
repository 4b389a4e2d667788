// Package fstree builds Tree object graphs from a live working directory and
// flattens stored trees back into path -> hash snapshots.
//
// Building never writes to the object store: the caller decides when (and
// whether) to persist the resulting trees and blobs.
package fstree

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/stratavcs/strata/internal/cas"
	"github.com/stratavcs/strata/internal/objects"
)

// FileHasher computes the content hash of a file on disk.
type FileHasher interface {
	HashFile(path string) (cas.Hash, error)
}

// ContentHasher hashes file contents directly, with no caching.
type ContentHasher struct{}

// HashFile implements FileHasher.
func (ContentHasher) HashFile(path string) (cas.Hash, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return cas.Hash{}, fmt.Errorf("read %s: %w", path, err)
	}
	return cas.SumB3(content), nil
}

// Result is the outcome of building a tree from the filesystem.
type Result struct {
	Root     *objects.Tree
	RootHash cas.Hash

	// Subtrees memoizes every constructed tree (including the root) by its
	// content hash, so later diffs can consult memory before the store.
	Subtrees map[cas.Hash]*objects.Tree

	// Files maps root-relative slash paths to content hashes for every file
	// recorded in the tree.
	Files map[string]cas.Hash
}

// Build constructs the Tree graph for a directory. Entries named skipName
// (the repository metadata directory) are ignored at every level. Directory
// entries are processed in lexicographic name order, so two directories with
// identical contents always hash identically.
//
// The traversal uses an explicit two-phase stack rather than recursion, so
// arbitrarily deep hierarchies cannot exhaust the call stack.
func Build(root string, skipName string, hasher FileHasher) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	if hasher == nil {
		hasher = ContentHasher{}
	}

	type frame struct {
		dir      string
		expanded bool
	}

	hashesByPath := make(map[string]cas.Hash)
	subtrees := make(map[cas.Hash]*objects.Tree)
	files := make(map[string]cas.Hash)

	stack := []frame{{dir: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(top.dir)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", top.dir, err)
		}

		if !top.expanded {
			// First visit: queue subdirectories so their hashes exist by
			// the time this directory is built.
			stack = append(stack, frame{dir: top.dir, expanded: true})
			for _, entry := range entries {
				if entry.Name() == skipName || !entry.IsDir() {
					continue
				}
				stack = append(stack, frame{dir: filepath.Join(top.dir, entry.Name())})
			}
			continue
		}

		var records []objects.TreeRecord
		for _, entry := range entries {
			if entry.Name() == skipName {
				continue
			}

			full := filepath.Join(top.dir, entry.Name())
			switch {
			case entry.IsDir():
				subHash, ok := hashesByPath[full]
				if !ok {
					return nil, fmt.Errorf("subtree %s not built before parent", full)
				}
				records = append(records, objects.TreeRecord{
					Kind: objects.KindTree,
					Hash: subHash,
					Name: entry.Name(),
				})
			case entry.Type().IsRegular():
				contentHash, err := hasher.HashFile(full)
				if err != nil {
					return nil, err
				}
				rel, err := filepath.Rel(root, full)
				if err != nil {
					return nil, err
				}
				files[filepath.ToSlash(rel)] = contentHash
				records = append(records, objects.TreeRecord{
					Kind: objects.KindBlob,
					Hash: contentHash,
					Name: entry.Name(),
				})
			}
		}

		tree, err := objects.NewTree(records)
		if err != nil {
			return nil, fmt.Errorf("build tree for %s: %w", top.dir, err)
		}
		treeHash := objects.HashTree(tree)
		hashesByPath[top.dir] = treeHash
		subtrees[treeHash] = tree
	}

	rootHash := hashesByPath[root]
	return &Result{
		Root:     subtrees[rootHash],
		RootHash: rootHash,
		Subtrees: subtrees,
		Files:    files,
	}, nil
}

// Snapshot maps every file under root (relative slash path) to its content
// hash, ignoring the skipName directory. This reflects the live, uncommitted
// filesystem state.
func Snapshot(root string, skipName string, hasher FileHasher) (map[string]cas.Hash, error) {
	if hasher == nil {
		hasher = ContentHasher{}
	}

	snapshot := make(map[string]cas.Hash)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == skipName && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		hash, err := hasher.HashFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		snapshot[filepath.ToSlash(rel)] = hash
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", root, err)
	}
	return snapshot, nil
}

// TreeFiles flattens a stored tree into a map of relative slash paths to
// blob content hashes, walking subtrees iteratively.
func TreeFiles(store cas.CAS, rootHash cas.Hash) (map[string]cas.Hash, error) {
	files := make(map[string]cas.Hash)

	type frame struct {
		prefix string
		hash   cas.Hash
	}
	stack := []frame{{hash: rootHash}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		tree, err := objects.LoadTree(store, top.hash)
		if err != nil {
			return nil, err
		}

		for _, rec := range tree.Records() {
			full := rec.Name
			if top.prefix != "" {
				full = top.prefix + "/" + rec.Name
			}
			switch rec.Kind {
			case objects.KindBlob:
				files[full] = rec.Hash
			case objects.KindTree:
				stack = append(stack, frame{prefix: full, hash: rec.Hash})
			}
		}
	}

	return files, nil
}
