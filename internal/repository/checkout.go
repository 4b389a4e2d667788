package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/stratavcs/strata/internal/cas"
	"github.com/stratavcs/strata/internal/diff"
	"github.com/stratavcs/strata/internal/fstree"
	"github.com/stratavcs/strata/internal/objects"
	"github.com/stratavcs/strata/internal/refs"
)

// Checkout makes the working directory match the tree of the target commit
// and repoints HEAD.
//
// All safety checks run before any filesystem mutation:
//   - uncommitted changes to tracked files (relative to the current HEAD
//     tree) refuse the checkout, and
//   - untracked files that collide by path with a file the target tree
//     would write refuse the checkout.
//
// A branch name leaves HEAD symbolic; a raw hash or tag detaches it.
func (r *Repository) Checkout(target string) error {
	if err := r.requireRepo(); err != nil {
		return err
	}

	targetRef, err := r.refs.Classify(target)
	if err != nil {
		return err
	}
	targetHash, targetFound, err := r.refs.Resolve(targetRef)
	if err != nil {
		return err
	}

	store, err := r.store()
	if err != nil {
		return err
	}

	// Current HEAD tree; empty for an unborn branch.
	headHash, headFound, err := r.HeadCommit()
	if err != nil {
		return err
	}
	var headTree *objects.Tree
	currentFiles := make(map[string]cas.Hash)
	if headFound {
		headCommit, err := objects.LoadCommit(store, headHash)
		if err != nil {
			return fmt.Errorf("load HEAD commit: %w", err)
		}
		headTree, err = objects.LoadTree(store, headCommit.TreeHash)
		if err != nil {
			return fmt.Errorf("load HEAD tree: %w", err)
		}
		currentFiles, err = fstree.TreeFiles(store, headCommit.TreeHash)
		if err != nil {
			return fmt.Errorf("flatten HEAD tree: %w", err)
		}
	}

	// Live working directory.
	var workTree *fstree.Result
	err = r.withIndex(func(hasher fstree.FileHasher) error {
		var buildErr error
		workTree, buildErr = fstree.Build(r.workDir, r.layout.RepoDirName, hasher)
		return buildErr
	})
	if err != nil {
		return fmt.Errorf("scan working directory: %w", err)
	}

	// Dirty check: any non-additive change between HEAD and the working
	// directory means tracked work would be silently discarded.
	storeSrc := diff.StoreSource{Store: store}
	workSrc := diff.MemSource{Trees: workTree.Subtrees, Fallback: storeSrc}
	localDiff, err := diff.Compare(headTree, workTree.Root, storeSrc, workSrc)
	if err != nil {
		return fmt.Errorf("diff working directory: %w", err)
	}
	if !localDiff.OnlyAdditions() {
		return fmt.Errorf("%w: local changes would be overwritten by checkout", ErrConflict)
	}

	// Target tree file set; empty for an unborn branch.
	targetFiles := make(map[string]cas.Hash)
	if targetFound {
		targetCommit, err := objects.LoadCommit(store, targetHash)
		if err != nil {
			return fmt.Errorf("load target commit: %w", err)
		}
		targetFiles, err = fstree.TreeFiles(store, targetCommit.TreeHash)
		if err != nil {
			return fmt.Errorf("flatten target tree: %w", err)
		}
	}

	// Untracked collision check.
	for path := range workTree.Files {
		if _, tracked := currentFiles[path]; tracked {
			continue
		}
		if _, collides := targetFiles[path]; collides {
			return fmt.Errorf("%w: untracked file %q would be overwritten by checkout", ErrConflict, path)
		}
	}

	// Make sure every blob the checkout needs is loadable before touching
	// the working directory.
	for path, blobHash := range targetFiles {
		exists, err := store.Has(blobHash)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("checkout %s: blob for %q: %w", target, path, cas.ErrNotFound)
		}
	}

	// Write every path in the target tree.
	for path, blobHash := range targetFiles {
		content, err := objects.LoadBlob(store, blobHash)
		if err != nil {
			return fmt.Errorf("checkout %q: %w", path, err)
		}
		full := filepath.Join(r.workDir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return fmt.Errorf("checkout %q: %w", path, err)
		}
		if err := os.WriteFile(full, content, 0644); err != nil {
			return fmt.Errorf("checkout %q: %w", path, err)
		}
	}

	// Remove tracked paths absent from the target, then their emptied
	// parent directories.
	for path := range currentFiles {
		if _, keep := targetFiles[path]; keep {
			continue
		}
		full := filepath.Join(r.workDir, filepath.FromSlash(path))
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %q: %w", path, err)
		}
		r.removeEmptyParents(filepath.Dir(full))
	}

	// Finally repoint HEAD.
	var newHead refs.Ref
	if sym, ok := targetRef.(refs.SymRef); ok {
		if _, isBranch := r.refs.BranchName(sym); isBranch {
			newHead = sym
		}
	}
	if newHead == nil {
		if !targetFound {
			return fmt.Errorf("%w: cannot detach HEAD onto unborn target %q", ErrInvalidArgument, target)
		}
		newHead = refs.HashRef{Hash: targetHash}
	}
	if err := r.refs.SetHead(newHead); err != nil {
		return fmt.Errorf("update HEAD: %w", err)
	}

	return nil
}

// removeEmptyParents removes now-empty directories from dir up to (but
// never including) the working directory root.
func (r *Repository) removeEmptyParents(dir string) {
	for {
		if dir == r.workDir || len(dir) <= len(r.workDir) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
