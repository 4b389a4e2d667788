// Package refs implements symbolic and direct references: branch heads, tags
// and the HEAD pointer, stored as one small record file per ref.
//
// A ref record is either a raw lowercase-hex hash, a symbolic line of the
// form "ref: refs/heads/<branch>", or empty for an unborn branch.
package refs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/stratavcs/strata/internal/cas"
	"github.com/stratavcs/strata/internal/config"
)

var (
	// ErrNotFound is returned when a ref's backing record does not exist.
	ErrNotFound = errors.New("reference not found")

	// ErrInvalidReference is returned for strings that are neither a known
	// ref name nor a well-formed hash.
	ErrInvalidReference = errors.New("invalid reference")
)

const symRefPrefix = "ref: "

// Ref is either a HashRef (a literal content address, "detached") or a
// SymRef (a named indirection). The variant set is closed.
type Ref interface {
	isRef()
	String() string
}

// HashRef is a direct content address.
type HashRef struct {
	Hash cas.Hash
}

func (HashRef) isRef() {}

func (r HashRef) String() string { return r.Hash.String() }

// SymRef names another ref record by its repo-dir-relative path, such as
// "refs/heads/main" or "refs/tags/v1.0", or the literal name "HEAD".
type SymRef struct {
	Name string
}

func (SymRef) isRef() {}

func (r SymRef) String() string { return r.Name }

// IsHead reports whether the symref names the HEAD pointer.
func (r SymRef) IsHead() bool { return strings.EqualFold(r.Name, "HEAD") }

// Store reads, writes and resolves refs rooted at a repository metadata
// directory.
type Store struct {
	repoDir string
	layout  config.Layout
}

// NewStore creates a ref store for the given metadata directory.
func NewStore(repoDir string, layout config.Layout) *Store {
	return &Store{repoDir: repoDir, layout: layout}
}

// BranchRef returns the symbolic ref for a branch name.
func (s *Store) BranchRef(branch string) SymRef {
	return SymRef{Name: path.Join(s.layout.RefsDir, s.layout.HeadsDir, branch)}
}

// TagRef returns the symbolic ref for a tag name.
func (s *Store) TagRef(tag string) SymRef {
	return SymRef{Name: path.Join(s.layout.RefsDir, s.layout.TagsDir, tag)}
}

// BranchName extracts the branch name from a symref, if it names one.
func (s *Store) BranchName(r SymRef) (string, bool) {
	prefix := s.layout.RefsDir + "/" + s.layout.HeadsDir + "/"
	if strings.HasPrefix(r.Name, prefix) {
		return strings.TrimPrefix(r.Name, prefix), true
	}
	return "", false
}

// HeadPath returns the path of the HEAD record file.
func (s *Store) HeadPath() string {
	return filepath.Join(s.repoDir, s.layout.HeadFile)
}

func (s *Store) headsDir() string {
	return filepath.Join(s.repoDir, s.layout.RefsDir, s.layout.HeadsDir)
}

func (s *Store) tagsDir() string {
	return filepath.Join(s.repoDir, s.layout.RefsDir, s.layout.TagsDir)
}

// BranchPath returns the record file path for a branch.
func (s *Store) BranchPath(branch string) string {
	return filepath.Join(s.headsDir(), filepath.FromSlash(branch))
}

// TagPath returns the record file path for a tag.
func (s *Store) TagPath(tag string) string {
	return filepath.Join(s.tagsDir(), filepath.FromSlash(tag))
}

// refPath resolves a symref name to its record file path.
func (s *Store) refPath(r SymRef) string {
	if r.IsHead() {
		return s.HeadPath()
	}
	return filepath.Join(s.repoDir, filepath.FromSlash(r.Name))
}

// ReadRecord reads one ref record file. An empty record (unborn branch)
// yields a nil Ref with no error.
func ReadRecord(recordPath string) (Ref, error) {
	data, err := os.ReadFile(recordPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, recordPath)
		}
		return nil, fmt.Errorf("read ref %s: %w", recordPath, err)
	}

	content := strings.TrimSpace(string(data))
	switch {
	case content == "":
		return nil, nil
	case strings.HasPrefix(content, symRefPrefix):
		return SymRef{Name: strings.TrimPrefix(content, symRefPrefix)}, nil
	case cas.ValidHex(content):
		hash, err := cas.ParseHash(content)
		if err != nil {
			return nil, fmt.Errorf("ref %s: %w", recordPath, err)
		}
		return HashRef{Hash: hash}, nil
	default:
		return nil, fmt.Errorf("%w: malformed record in %s", ErrInvalidReference, recordPath)
	}
}

// WriteRecord writes one ref record file. A nil Ref writes an empty record.
func WriteRecord(recordPath string, ref Ref) error {
	if err := os.MkdirAll(filepath.Dir(recordPath), 0755); err != nil {
		return fmt.Errorf("create ref directory: %w", err)
	}

	var content string
	switch r := ref.(type) {
	case nil:
		content = ""
	case HashRef:
		content = r.Hash.String() + "\n"
	case SymRef:
		content = symRefPrefix + r.Name + "\n"
	default:
		return fmt.Errorf("%w: unknown ref type %T", ErrInvalidReference, ref)
	}

	return os.WriteFile(recordPath, []byte(content), 0644)
}

// Head reads the HEAD ref.
func (s *Store) Head() (Ref, error) {
	return ReadRecord(s.HeadPath())
}

// SetHead writes the HEAD ref.
func (s *Store) SetHead(ref Ref) error {
	return WriteRecord(s.HeadPath(), ref)
}

// Resolve follows a ref to a concrete commit hash.
//
// The boolean result is false when the ref resolves to "absent": a nil ref,
// or an unborn branch whose record is empty.
func (s *Store) Resolve(ref Ref) (cas.Hash, bool, error) {
	switch r := ref.(type) {
	case nil:
		return cas.Hash{}, false, nil
	case HashRef:
		return r.Hash, true, nil
	case SymRef:
		inner, err := ReadRecord(s.refPath(r))
		if err != nil {
			return cas.Hash{}, false, err
		}
		return s.Resolve(inner)
	default:
		return cas.Hash{}, false, fmt.Errorf("%w: unknown ref type %T", ErrInvalidReference, ref)
	}
}

// ResolveName classifies a plain string and resolves it.
//
// Ref names are probed before the string is considered as a literal hash, so
// a branch named like a valid hash still resolves as a ref.
func (s *Store) ResolveName(name string) (cas.Hash, bool, error) {
	ref, err := s.Classify(name)
	if err != nil {
		return cas.Hash{}, false, err
	}
	return s.Resolve(ref)
}

// Classify turns a plain string into a Ref without resolving it: HEAD and
// existing branch/tag names become symrefs, hash-shaped strings become
// HashRefs, anything else is an invalid reference.
func (s *Store) Classify(name string) (Ref, error) {
	if strings.EqualFold(name, "HEAD") {
		return SymRef{Name: "HEAD"}, nil
	}
	if s.BranchExists(name) {
		return s.BranchRef(name), nil
	}
	if s.TagExists(name) {
		return s.TagRef(name), nil
	}
	if cas.ValidHex(name) {
		hash, err := cas.ParseHash(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidReference, name)
		}
		return HashRef{Hash: hash}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidReference, name)
}

// BranchExists reports whether a branch record exists.
func (s *Store) BranchExists(branch string) bool {
	info, err := os.Stat(s.BranchPath(branch))
	return err == nil && !info.IsDir()
}

// TagExists reports whether a tag record exists.
func (s *Store) TagExists(tag string) bool {
	info, err := os.Stat(s.TagPath(tag))
	return err == nil && !info.IsDir()
}

// Branches lists all branch names, slash-separated for nested refs.
func (s *Store) Branches() ([]string, error) {
	return listRefs(s.headsDir())
}

// Tags lists all tag names.
func (s *Store) Tags() ([]string, error) {
	return listRefs(s.tagsDir())
}

func listRefs(dir string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list refs in %s: %w", dir, err)
	}
	return names, nil
}
