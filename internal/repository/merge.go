package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stratavcs/strata/internal/cas"
	"github.com/stratavcs/strata/internal/merge"
	"github.com/stratavcs/strata/internal/refs"
)

// Merge merges the target commit into the current HEAD and returns the
// resulting merge state.
//
// Only pointer-level resolutions are performed here: UP_TO_DATE and
// DISCONNECTED change nothing, FAST_FORWARD moves the current branch (or a
// detached HEAD) to the target, and THREE_WAY records the in-progress merge
// marker and returns so content-level resolution can happen on top of it.
// The working directory is never touched.
func (r *Repository) Merge(target string) (merge.State, error) {
	if err := r.requireRepo(); err != nil {
		return 0, err
	}
	if r.IsMerging() {
		return 0, fmt.Errorf("%w: resolve or abort it first", ErrMergeInProgress)
	}

	targetHash, targetFound, err := r.refs.ResolveName(target)
	if err != nil {
		return 0, err
	}
	if !targetFound {
		return 0, fmt.Errorf("%w: %q does not resolve to a commit", ErrInvalidArgument, target)
	}

	headHash, headFound, err := r.HeadCommit()
	if err != nil {
		return 0, err
	}

	// An unborn HEAD has no history at all; adopting the target is a
	// trivial fast-forward.
	if !headFound {
		if err := r.moveHead(targetHash); err != nil {
			return 0, err
		}
		return merge.FastForward, nil
	}

	store, err := r.store()
	if err != nil {
		return 0, err
	}

	base, baseFound, err := merge.FindCommonAncestor(merge.StoreLoader{Store: store}, headHash, targetHash)
	if err != nil {
		return 0, fmt.Errorf("merge %s: %w", target, err)
	}

	state := merge.Classify(base, baseFound, headHash, targetHash)
	switch state {
	case merge.Disconnected, merge.UpToDate:
		return state, nil
	case merge.FastForward:
		if err := r.moveHead(targetHash); err != nil {
			return 0, err
		}
		return state, nil
	default:
		if err := r.StartMerge(); err != nil {
			return 0, err
		}
		return state, nil
	}
}

// moveHead points the current branch at hash, or HEAD itself when detached.
func (r *Repository) moveHead(hash cas.Hash) error {
	head, err := r.refs.Head()
	if err != nil {
		return err
	}
	if sym, ok := head.(refs.SymRef); ok && !sym.IsHead() {
		if err := refs.WriteRecord(
			filepath.Join(r.RepoPath(), filepath.FromSlash(sym.Name)),
			refs.HashRef{Hash: hash},
		); err != nil {
			return fmt.Errorf("move branch ref: %w", err)
		}
		return nil
	}
	if err := r.refs.SetHead(refs.HashRef{Hash: hash}); err != nil {
		return fmt.Errorf("move HEAD: %w", err)
	}
	return nil
}

// StartMerge records that a merge is in progress. Merges never nest.
func (r *Repository) StartMerge() error {
	if err := r.requireRepo(); err != nil {
		return err
	}
	if err := os.Mkdir(r.mergeDir(), 0755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrMergeInProgress
		}
		return fmt.Errorf("start merge: %w", err)
	}
	return nil
}

// AbortMerge clears the in-progress merge marker. HEAD and the working
// directory are left untouched.
func (r *Repository) AbortMerge() error {
	if err := r.requireRepo(); err != nil {
		return err
	}
	if !r.IsMerging() {
		return fmt.Errorf("%w: no merge in progress", ErrInvalidArgument)
	}
	if err := os.RemoveAll(r.mergeDir()); err != nil {
		return fmt.Errorf("abort merge: %w", err)
	}
	return nil
}

// IsMerging reports whether a merge is in progress.
func (r *Repository) IsMerging() bool {
	info, err := os.Stat(r.mergeDir())
	return err == nil && info.IsDir()
}
