package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stratavcs/strata/internal/cas"
	"github.com/stratavcs/strata/internal/fstree"
	"github.com/stratavcs/strata/internal/objects"
	"github.com/stratavcs/strata/internal/refs"
)

// SaveFileContent persists one file's content as a blob.
func (r *Repository) SaveFileContent(path string) (objects.Blob, error) {
	if err := r.requireRepo(); err != nil {
		return objects.Blob{}, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return objects.Blob{}, fmt.Errorf("%w: read %s: %v", ErrInvalidArgument, path, err)
	}

	store, err := r.store()
	if err != nil {
		return objects.Blob{}, err
	}
	return objects.SaveBlob(store, content)
}

// SaveWorkingDir builds the working directory's tree graph and persists
// every blob and subtree, returning the root tree hash. Building is
// read-only; this is the explicit save step.
func (r *Repository) SaveWorkingDir() (cas.Hash, error) {
	if err := r.requireRepo(); err != nil {
		return cas.Hash{}, err
	}

	store, err := r.store()
	if err != nil {
		return cas.Hash{}, err
	}

	var result *fstree.Result
	err = r.withIndex(func(hasher fstree.FileHasher) error {
		var buildErr error
		result, buildErr = fstree.Build(r.workDir, r.layout.RepoDirName, hasher)
		return buildErr
	})
	if err != nil {
		return cas.Hash{}, fmt.Errorf("build working tree: %w", err)
	}

	for path := range result.Files {
		content, err := os.ReadFile(filepath.Join(r.workDir, filepath.FromSlash(path)))
		if err != nil {
			return cas.Hash{}, fmt.Errorf("save blob %s: %w", path, err)
		}
		if _, err := objects.SaveBlob(store, content); err != nil {
			return cas.Hash{}, err
		}
	}

	for _, tree := range result.Subtrees {
		if _, err := objects.SaveTree(store, tree); err != nil {
			return cas.Hash{}, err
		}
	}

	return result.RootHash, nil
}

// CommitWorkingDir snapshots the working directory as a new commit on the
// current branch. Objects are fully persisted before any ref moves, so a
// crash mid-commit leaves refs pointing only at complete objects.
func (r *Repository) CommitWorkingDir(author, message string) (cas.Hash, error) {
	if err := r.requireRepo(); err != nil {
		return cas.Hash{}, err
	}
	if author == "" {
		return cas.Hash{}, fmt.Errorf("%w: author is required", ErrInvalidArgument)
	}
	if message == "" {
		return cas.Hash{}, fmt.Errorf("%w: commit message is required", ErrInvalidArgument)
	}

	// If HEAD is symbolic, the branch moves once the commit is saved.
	// Detached HEAD keeps pointing at the same commit.
	head, err := r.refs.Head()
	if err != nil {
		return cas.Hash{}, err
	}
	var branch refs.Ref
	if sym, ok := head.(refs.SymRef); ok {
		branch = sym
	}

	parent, hasParent, err := r.refs.Resolve(head)
	if err != nil {
		return cas.Hash{}, err
	}

	treeHash, err := r.SaveWorkingDir()
	if err != nil {
		return cas.Hash{}, err
	}

	var parents []cas.Hash
	if hasParent {
		parents = append(parents, parent)
	}

	commit := &objects.Commit{
		TreeHash:  treeHash,
		Author:    author,
		Message:   message,
		Timestamp: time.Now().Unix(),
		Parents:   parents,
	}

	store, err := r.store()
	if err != nil {
		return cas.Hash{}, err
	}
	commitHash, err := objects.SaveCommit(store, commit)
	if err != nil {
		return cas.Hash{}, err
	}

	if branch != nil {
		sym := branch.(refs.SymRef)
		if err := refs.WriteRecord(
			filepath.Join(r.RepoPath(), filepath.FromSlash(sym.Name)),
			refs.HashRef{Hash: commitHash},
		); err != nil {
			return cas.Hash{}, fmt.Errorf("update branch ref: %w", err)
		}
	}

	return commitHash, nil
}

// WorkingDirSnapshot maps every tracked-candidate file in the working
// directory (relative slash path) to its content hash.
func (r *Repository) WorkingDirSnapshot() (map[string]cas.Hash, error) {
	if err := r.requireRepo(); err != nil {
		return nil, err
	}

	var snapshot map[string]cas.Hash
	err := r.withIndex(func(hasher fstree.FileHasher) error {
		var snapErr error
		snapshot, snapErr = fstree.Snapshot(r.workDir, r.layout.RepoDirName, hasher)
		return snapErr
	})
	return snapshot, err
}

// LogEntry is one step of a history walk.
type LogEntry struct {
	Hash   cas.Hash
	Commit *objects.Commit
}

// LogIter lazily walks history from a tip, following first parents. It is
// backed by explicit state (the current hash) and terminates at a root
// commit.
type LogIter struct {
	store   cas.CAS
	current cas.Hash
	done    bool
}

// Next returns the next log entry, or nil when the walk is finished.
func (it *LogIter) Next() (*LogEntry, error) {
	if it.done {
		return nil, nil
	}

	commit, err := objects.LoadCommit(it.store, it.current)
	if err != nil {
		return nil, fmt.Errorf("walk history at %s: %w", it.current, err)
	}

	entry := &LogEntry{Hash: it.current, Commit: commit}

	if len(commit.Parents) > 0 {
		it.current = commit.Parents[0]
	} else {
		it.done = true
	}
	return entry, nil
}

// Log starts a history walk at tip ("", a ref name, or a hash; empty means
// HEAD). An unborn tip yields an immediately-exhausted iterator.
func (r *Repository) Log(tip string) (*LogIter, error) {
	if err := r.requireRepo(); err != nil {
		return nil, err
	}

	var (
		hash  cas.Hash
		found bool
		err   error
	)
	if tip == "" {
		hash, found, err = r.HeadCommit()
	} else {
		hash, found, err = r.refs.ResolveName(tip)
	}
	if err != nil {
		return nil, err
	}

	store, err := r.store()
	if err != nil {
		return nil, err
	}

	return &LogIter{store: store, current: hash, done: !found}, nil
}
