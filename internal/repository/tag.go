package repository

import (
	"fmt"
	"os"

	"github.com/stratavcs/strata/internal/refs"
)

// CreateTag creates a tag pointing at an existing commit. Tags are never
// reassigned in place: changing a tag requires delete-then-create.
func (r *Repository) CreateTag(tag, target string) error {
	if err := r.requireRepo(); err != nil {
		return err
	}
	if tag == "" {
		return fmt.Errorf("%w: tag name is required", ErrInvalidArgument)
	}
	if r.refs.TagExists(tag) {
		return fmt.Errorf("%w: tag %q already exists", ErrConflict, tag)
	}
	if r.refs.BranchExists(tag) {
		return fmt.Errorf("%w: a branch named %q already exists", ErrConflict, tag)
	}

	hash, found, err := r.refs.ResolveName(target)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %q does not resolve to a commit", ErrInvalidArgument, target)
	}

	store, err := r.store()
	if err != nil {
		return err
	}
	exists, err := store.Has(hash)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: commit %s does not exist", refs.ErrNotFound, hash)
	}

	return refs.WriteRecord(r.refs.TagPath(tag), refs.HashRef{Hash: hash})
}

// DeleteTag removes a tag.
func (r *Repository) DeleteTag(tag string) error {
	if err := r.requireRepo(); err != nil {
		return err
	}
	if tag == "" {
		return fmt.Errorf("%w: tag name is required", ErrInvalidArgument)
	}
	if !r.refs.TagExists(tag) {
		return fmt.Errorf("%w: tag %q", refs.ErrNotFound, tag)
	}

	if err := os.Remove(r.refs.TagPath(tag)); err != nil {
		return fmt.Errorf("delete tag %q: %w", tag, err)
	}
	return nil
}

// Tags lists all tag names.
func (r *Repository) Tags() ([]string, error) {
	if err := r.requireRepo(); err != nil {
		return nil, err
	}
	return r.refs.Tags()
}
