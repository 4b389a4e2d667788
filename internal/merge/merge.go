// Package merge computes merge bases and classifies merges between commits.
//
// The classification is a small state machine over a head commit and a
// target commit: DISCONNECTED (no common ancestor), UP_TO_DATE (the base is
// the target), FAST_FORWARD (the base is the head) or THREE_WAY (the base is
// neither endpoint). Performing the resulting action (moving refs, entering
// the merge marker state) is the repository's job.
package merge

import (
	"fmt"

	"github.com/stratavcs/strata/internal/cas"
	"github.com/stratavcs/strata/internal/objects"
)

// State classifies the relationship between a head commit and a merge
// target.
type State uint8

const (
	// Disconnected means no common ancestor exists between the commits.
	Disconnected State = iota + 1
	// UpToDate means the common ancestor equals the target: head already
	// contains everything the target has.
	UpToDate
	// FastForward means the common ancestor equals the head: the target is
	// strictly ahead, and the merge resolves by moving the pointer.
	FastForward
	// ThreeWay means the common ancestor is neither endpoint: content-level
	// conflict resolution is required.
	ThreeWay
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case UpToDate:
		return "up-to-date"
	case FastForward:
		return "fast-forward"
	case ThreeWay:
		return "three-way"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// CommitLoader loads commits by hash during ancestor walks.
type CommitLoader interface {
	Commit(hash cas.Hash) (*objects.Commit, error)
}

// StoreLoader loads commits from an object store.
type StoreLoader struct {
	Store cas.CAS
}

// Commit implements CommitLoader.
func (l StoreLoader) Commit(hash cas.Hash) (*objects.Commit, error) {
	return objects.LoadCommit(l.Store, hash)
}

// FindCommonAncestor returns the lowest common ancestor of two commits, or
// false if their histories are disjoint.
//
// The full ancestor set of a is collected first via an exhaustive walk over
// every parent edge; then a breadth-first walk outward from b returns the
// first commit already in that set, which is the lowest common ancestor
// under a closest-to-b tie-break. Both walks deduplicate visits so merge
// commits with shared ancestors terminate. A commit that fails to load fails
// the whole search: the merge cannot safely proceed with an incomplete
// ancestor set.
func FindCommonAncestor(loader CommitLoader, a, b cas.Hash) (cas.Hash, bool, error) {
	if a == b {
		return a, true, nil
	}

	ancestorsOfA := make(map[cas.Hash]bool)
	stack := []cas.Hash{a}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if ancestorsOfA[current] {
			continue
		}
		ancestorsOfA[current] = true

		commit, err := loader.Commit(current)
		if err != nil {
			return cas.Hash{}, false, fmt.Errorf("walk ancestors of %s: %w", a, err)
		}
		stack = append(stack, commit.Parents...)
	}

	// Breadth-first from b. This also covers b being an ancestor of a,
	// since a itself is in the ancestor set.
	queue := []cas.Hash{b}
	visited := make(map[cas.Hash]bool)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		if ancestorsOfA[current] {
			return current, true, nil
		}

		commit, err := loader.Commit(current)
		if err != nil {
			return cas.Hash{}, false, fmt.Errorf("walk ancestors of %s: %w", b, err)
		}
		queue = append(queue, commit.Parents...)
	}

	return cas.Hash{}, false, nil
}

// Classify maps a merge base onto the merge state machine.
func Classify(base cas.Hash, baseFound bool, head, target cas.Hash) State {
	switch {
	case !baseFound:
		return Disconnected
	case base == target:
		return UpToDate
	case base == head:
		return FastForward
	default:
		return ThreeWay
	}
}
