// Package repository ties the object store, refs, tree builder, diff and
// merge engines together behind one Repository type.
//
// Every operation that needs an initialized repository starts with a guard
// that reports ErrNotARepository; no operation partially commits observable
// state on failure. Objects are always persisted before any ref is updated
// to point at them.
package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stratavcs/strata/internal/cas"
	"github.com/stratavcs/strata/internal/config"
	"github.com/stratavcs/strata/internal/fstree"
	"github.com/stratavcs/strata/internal/refs"
	"github.com/stratavcs/strata/internal/wsindex"
)

var (
	// ErrNotARepository is returned when an operation requires an
	// initialized repository and none exists.
	ErrNotARepository = errors.New("repository not initialized")

	// ErrConflict is returned when an operation would discard uncommitted
	// or untracked work, or would collide with an existing name.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument is returned for empty required strings,
	// non-directory paths, and similar caller mistakes.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMergeInProgress is returned when a merge marker already exists.
	ErrMergeInProgress = errors.New("merge already in progress")
)

// Repository is a handle on one working directory and its metadata
// directory. Creating the handle does not touch the filesystem; Init does.
//
// Operations are synchronous and must be externally serialized per
// repository: object-store writes are idempotent and safe to interleave,
// ref updates are not.
type Repository struct {
	workDir string
	layout  config.Layout
	refs    *refs.Store
}

// New creates a repository handle with an explicit layout.
func New(workDir string, layout config.Layout) *Repository {
	return &Repository{
		workDir: workDir,
		layout:  layout,
		refs:    refs.NewStore(filepath.Join(workDir, layout.RepoDirName), layout),
	}
}

// NewDefault creates a repository handle with the default layout.
func NewDefault(workDir string) *Repository {
	return New(workDir, config.DefaultLayout())
}

// WorkDir returns the working directory path.
func (r *Repository) WorkDir() string { return r.workDir }

// Layout returns the repository layout.
func (r *Repository) Layout() config.Layout { return r.layout }

// RepoPath returns the metadata directory path.
func (r *Repository) RepoPath() string {
	return filepath.Join(r.workDir, r.layout.RepoDirName)
}

// ObjectsDir returns the object store directory path.
func (r *Repository) ObjectsDir() string {
	return filepath.Join(r.RepoPath(), r.layout.ObjectsDir)
}

// ConfigPath returns the user config file path.
func (r *Repository) ConfigPath() string {
	return filepath.Join(r.RepoPath(), r.layout.ConfigFile)
}

func (r *Repository) indexPath() string {
	return filepath.Join(r.RepoPath(), r.layout.IndexFile)
}

func (r *Repository) mergeDir() string {
	return filepath.Join(r.RepoPath(), r.layout.MergeDir)
}

// Refs returns the repository's ref store.
func (r *Repository) Refs() *refs.Store { return r.refs }

// Exists reports whether the repository metadata directory exists.
func (r *Repository) Exists() bool {
	info, err := os.Stat(r.RepoPath())
	return err == nil && info.IsDir()
}

// requireRepo guards operations that need an initialized repository.
func (r *Repository) requireRepo() error {
	if !r.Exists() {
		return fmt.Errorf("%w at %s", ErrNotARepository, r.RepoPath())
	}
	return nil
}

// Init creates the repository on disk: metadata directory, object store,
// ref directories, the default branch (unborn) and a HEAD pointing at it.
func (r *Repository) Init(defaultBranch string) error {
	if defaultBranch == "" {
		defaultBranch = r.layout.DefaultBranch
	}

	if r.Exists() {
		return fmt.Errorf("%w: repository already exists at %s", ErrConflict, r.RepoPath())
	}

	dirs := []string{
		r.RepoPath(),
		r.ObjectsDir(),
		filepath.Join(r.RepoPath(), r.layout.RefsDir, r.layout.HeadsDir),
		filepath.Join(r.RepoPath(), r.layout.RefsDir, r.layout.TagsDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("init repository: %w", err)
		}
	}

	if err := r.AddBranch(defaultBranch); err != nil {
		return err
	}
	if err := r.refs.SetHead(r.refs.BranchRef(defaultBranch)); err != nil {
		return fmt.Errorf("init HEAD: %w", err)
	}

	return config.Save(r.ConfigPath(), &config.Config{})
}

// Destroy deletes the entire metadata directory: all objects and refs. The
// working directory's files are left alone.
func (r *Repository) Destroy() error {
	if err := r.requireRepo(); err != nil {
		return err
	}
	return os.RemoveAll(r.RepoPath())
}

// store opens the file-backed object store.
func (r *Repository) store() (*cas.FileCAS, error) {
	return cas.NewFileCAS(r.ObjectsDir())
}

// withIndex runs fn with a FileHasher backed by the working-set index, so
// unchanged files are not re-hashed. The index database is opened per
// operation and closed before returning.
func (r *Repository) withIndex(fn func(hasher fstree.FileHasher) error) error {
	ix, err := wsindex.Open(r.indexPath())
	if err != nil {
		// The index is only a cache; fall back to direct hashing.
		return fn(fstree.ContentHasher{})
	}
	defer ix.Close()
	return fn(ix.Hasher(fstree.ContentHasher{}))
}

// HeadRef returns the current HEAD reference.
func (r *Repository) HeadRef() (refs.Ref, error) {
	if err := r.requireRepo(); err != nil {
		return nil, err
	}
	return r.refs.Head()
}

// HeadCommit resolves HEAD to a commit hash. The boolean is false when HEAD
// points at an unborn branch.
func (r *Repository) HeadCommit() (cas.Hash, bool, error) {
	if err := r.requireRepo(); err != nil {
		return cas.Hash{}, false, err
	}
	head, err := r.refs.Head()
	if err != nil {
		return cas.Hash{}, false, err
	}
	return r.refs.Resolve(head)
}

// ResolveName resolves a branch, tag, HEAD or hash string to a commit hash.
func (r *Repository) ResolveName(name string) (cas.Hash, bool, error) {
	if err := r.requireRepo(); err != nil {
		return cas.Hash{}, false, err
	}
	return r.refs.ResolveName(name)
}
