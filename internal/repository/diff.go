package repository

import (
	"fmt"
	"os"

	"github.com/stratavcs/strata/internal/diff"
	"github.com/stratavcs/strata/internal/fstree"
	"github.com/stratavcs/strata/internal/objects"
)

// sourceToTree turns a diff source into a root tree plus a subtree source.
// A source naming an existing directory is built from the live filesystem
// (directory paths take precedence over ref-like strings, even when the
// name looks like a hash); anything else resolves as a ref or hash and
// loads from the store. An unborn branch yields a nil (empty) tree.
func (r *Repository) sourceToTree(source string) (*objects.Tree, diff.TreeSource, error) {
	store, err := r.store()
	if err != nil {
		return nil, nil, err
	}
	storeSrc := diff.StoreSource{Store: store}

	if info, err := os.Stat(source); err == nil && info.IsDir() {
		var result *fstree.Result
		buildErr := r.withIndex(func(hasher fstree.FileHasher) error {
			var err error
			result, err = fstree.Build(source, r.layout.RepoDirName, hasher)
			return err
		})
		if buildErr != nil {
			return nil, nil, fmt.Errorf("build tree from %s: %w", source, buildErr)
		}
		return result.Root, diff.MemSource{Trees: result.Subtrees, Fallback: storeSrc}, nil
	}

	hash, found, err := r.refs.ResolveName(source)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, storeSrc, nil // unborn branch: empty tree
	}

	commit, err := objects.LoadCommit(store, hash)
	if err != nil {
		return nil, nil, fmt.Errorf("load commit for diff: %w", err)
	}
	tree, err := objects.LoadTree(store, commit.TreeHash)
	if err != nil {
		return nil, nil, fmt.Errorf("load tree for diff: %w", err)
	}
	return tree, storeSrc, nil
}

// Diff compares two sources: commit refs, hashes, or directory paths.
// Empty strings default to HEAD.
func (r *Repository) Diff(source1, source2 string) (*diff.Diff, error) {
	if err := r.requireRepo(); err != nil {
		return nil, err
	}

	if source1 == "" {
		source1 = "HEAD"
	}
	if source2 == "" {
		source2 = "HEAD"
	}

	// Same input on both sides can never differ.
	if source1 == source2 {
		return &diff.Diff{}, nil
	}

	treeA, srcA, err := r.sourceToTree(source1)
	if err != nil {
		return nil, err
	}
	treeB, srcB, err := r.sourceToTree(source2)
	if err != nil {
		return nil, err
	}

	return diff.Compare(treeA, treeB, srcA, srcB)
}
