package repository

import (
	"fmt"
	"os"

	"github.com/stratavcs/strata/internal/refs"
)

// AddBranch creates a new branch as an empty (unborn) reference.
func (r *Repository) AddBranch(branch string) error {
	if err := r.requireRepo(); err != nil {
		return err
	}
	if branch == "" {
		return fmt.Errorf("%w: branch name is required", ErrInvalidArgument)
	}
	if r.refs.BranchExists(branch) {
		return fmt.Errorf("%w: branch %q already exists", ErrConflict, branch)
	}
	if r.refs.TagExists(branch) {
		return fmt.Errorf("%w: a tag named %q already exists", ErrConflict, branch)
	}

	return refs.WriteRecord(r.refs.BranchPath(branch), nil)
}

// DeleteBranch removes a branch. The last remaining branch cannot be
// deleted.
func (r *Repository) DeleteBranch(branch string) error {
	if err := r.requireRepo(); err != nil {
		return err
	}
	if branch == "" {
		return fmt.Errorf("%w: branch name is required", ErrInvalidArgument)
	}
	if !r.refs.BranchExists(branch) {
		return fmt.Errorf("%w: branch %q", refs.ErrNotFound, branch)
	}

	branches, err := r.Branches()
	if err != nil {
		return err
	}
	if len(branches) == 1 {
		return fmt.Errorf("%w: cannot delete the last branch %q", ErrInvalidArgument, branch)
	}

	if err := os.Remove(r.refs.BranchPath(branch)); err != nil {
		return fmt.Errorf("delete branch %q: %w", branch, err)
	}
	return nil
}

// Branches lists all branch names.
func (r *Repository) Branches() ([]string, error) {
	if err := r.requireRepo(); err != nil {
		return nil, err
	}
	return r.refs.Branches()
}

// BranchExists reports whether a branch exists.
func (r *Repository) BranchExists(branch string) (bool, error) {
	if err := r.requireRepo(); err != nil {
		return false, err
	}
	return r.refs.BranchExists(branch), nil
}

// CurrentBranch returns the branch HEAD points at, if HEAD is symbolic.
func (r *Repository) CurrentBranch() (string, bool, error) {
	head, err := r.HeadRef()
	if err != nil {
		return "", false, err
	}
	if sym, ok := head.(refs.SymRef); ok {
		if name, isBranch := r.refs.BranchName(sym); isBranch {
			return name, true, nil
		}
	}
	return "", false, nil
}
