// Package diff structurally compares two Tree graphs, producing a
// hierarchical diff annotated with Added/Removed/Modified/Moved semantics.
//
// Diff nodes live in an arena and refer to each other by index: parent and
// moved-pair links are plain ints rather than shared pointers, so the node
// graph has no ownership cycles. Nodes for identical subtrees are omitted;
// the tree mirrors the directory hierarchy of the differing paths only.
package diff

import (
	"fmt"
	"strings"

	"github.com/stratavcs/strata/internal/cas"
	"github.com/stratavcs/strata/internal/objects"
)

// Variant classifies one diff node. The set is closed and exhaustively
// matched everywhere it is consumed.
type Variant uint8

const (
	Added Variant = iota + 1
	Removed
	Modified
	// MovedTo marks the old location of a moved record; its Pair index
	// points at the matching MovedFrom node.
	MovedTo
	// MovedFrom marks the new location of a moved record; its Pair index
	// points at the matching MovedTo node.
	MovedFrom
)

// String returns a human-readable variant name.
func (v Variant) String() string {
	switch v {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	case MovedTo:
		return "moved-to"
	case MovedFrom:
		return "moved-from"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// None is the null arena index, used for absent parent and pair links.
const None = -1

// Node is one entry in the diff tree.
type Node struct {
	Record   objects.TreeRecord
	Variant  Variant
	Parent   int   // arena index of the enclosing node, None at top level
	Children []int // arena indices, in discovery order
	Pair     int   // arena index of the moved-pair partner, None otherwise
}

// Diff is the result of comparing two trees: an arena of nodes plus the
// indices of the top-level entries.
type Diff struct {
	nodes []Node
	roots []int
}

// Empty reports whether the diff contains no changes.
func (d *Diff) Empty() bool {
	return len(d.nodes) == 0
}

// Roots returns the arena indices of the top-level diff nodes, in discovery
// order.
func (d *Diff) Roots() []int {
	return d.roots
}

// Node returns the node at an arena index.
func (d *Diff) Node(i int) *Node {
	return &d.nodes[i]
}

// Len returns the total number of diff nodes.
func (d *Diff) Len() int {
	return len(d.nodes)
}

// OnlyAdditions reports whether every change in the diff is an addition.
// Removed, moved and file-level modified nodes all count as non-additive;
// modified directory nodes are judged by their children.
func (d *Diff) OnlyAdditions() bool {
	for i := range d.nodes {
		switch d.nodes[i].Variant {
		case Removed, MovedTo, MovedFrom:
			return false
		case Modified:
			// Interior tree/tree nodes carry their real changes as
			// children; a childless Modified node is a file-level change.
			if len(d.nodes[i].Children) == 0 {
				return false
			}
		}
	}
	return true
}

// Path returns the slash-joined path of a node, built by following parent
// links up to the top level.
func (d *Diff) Path(i int) string {
	var parts []string
	for ; i != None; i = d.nodes[i].Parent {
		parts = append(parts, d.nodes[i].Record.Name)
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return strings.Join(parts, "/")
}

// Walk visits every node depth-first in discovery order, calling fn with the
// arena index and depth.
func (d *Diff) Walk(fn func(idx, depth int)) {
	type frame struct {
		idx   int
		depth int
	}
	var stack []frame
	for i := len(d.roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{idx: d.roots[i]})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(top.idx, top.depth)
		children := d.nodes[top.idx].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{idx: children[i], depth: top.depth + 1})
		}
	}
}

// TreeSource supplies subtrees by hash during a diff. Implementations may
// serve trees from memory, from the object store, or both.
type TreeSource interface {
	Tree(hash cas.Hash) (*objects.Tree, error)
}

// StoreSource loads subtrees from an object store.
type StoreSource struct {
	Store cas.CAS
}

// Tree implements TreeSource.
func (s StoreSource) Tree(hash cas.Hash) (*objects.Tree, error) {
	return objects.LoadTree(s.Store, hash)
}

// MemSource serves subtrees from an in-memory memo first, falling back to
// another source for anything it does not hold.
type MemSource struct {
	Trees    map[cas.Hash]*objects.Tree
	Fallback TreeSource
}

// Tree implements TreeSource.
func (s MemSource) Tree(hash cas.Hash) (*objects.Tree, error) {
	if t, ok := s.Trees[hash]; ok {
		return t, nil
	}
	if s.Fallback != nil {
		return s.Fallback.Tree(hash)
	}
	return nil, fmt.Errorf("subtree %s not in memory", hash)
}

// Compare diffs treeA against treeB, pulling subtrees from the given
// sources. A nil tree is treated as empty. Moves are detected globally
// within the invocation: a Removed record and an Added record with the same
// content hash are reclassified as a linked MovedTo/MovedFrom pair no matter
// where in the hierarchy each side occurs.
func Compare(treeA, treeB *objects.Tree, srcA, srcB TreeSource) (*Diff, error) {
	d := &Diff{}

	if treeA != nil && treeB != nil && objects.HashTree(treeA) == objects.HashTree(treeB) {
		return d, nil
	}

	type pair struct {
		a, b   *objects.Tree
		parent int // None for the top level
	}

	stack := []pair{{a: treeA, b: treeB, parent: None}}

	// Move candidates, keyed by content hash, discovered anywhere in the
	// walk so far.
	potentiallyAdded := make(map[cas.Hash]int)
	potentiallyRemoved := make(map[cas.Hash]int)

	appendChild := func(parent, idx int) {
		if parent == None {
			d.roots = append(d.roots, idx)
		} else {
			d.nodes[parent].Children = append(d.nodes[parent].Children, idx)
		}
	}

	newNode := func(rec objects.TreeRecord, variant Variant, parent int) int {
		d.nodes = append(d.nodes, Node{
			Record:  rec,
			Variant: variant,
			Parent:  parent,
			Pair:    None,
		})
		idx := len(d.nodes) - 1
		appendChild(parent, idx)
		return idx
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, recA := range top.a.Records() {
			recB, inB := top.b.Record(recA.Name)
			if !inB {
				// Gone from this directory: a move if the same content
				// appeared as an addition elsewhere, otherwise a removal.
				if addedIdx, ok := potentiallyAdded[recA.Hash]; ok {
					delete(potentiallyAdded, recA.Hash)
					idx := newNode(recA, MovedTo, top.parent)
					d.nodes[idx].Pair = addedIdx
					d.nodes[addedIdx].Variant = MovedFrom
					d.nodes[addedIdx].Pair = idx
				} else {
					idx := newNode(recA, Removed, top.parent)
					potentiallyRemoved[recA.Hash] = idx
				}
				continue
			}

			if recA.Hash == recB.Hash {
				continue // identical subtree, pruned
			}

			if recA.Kind == objects.KindTree && recB.Kind == objects.KindTree {
				idx := newNode(recA, Modified, top.parent)

				subA, err := srcA.Tree(recA.Hash)
				if err != nil {
					return nil, fmt.Errorf("load subtree for diff: %w", err)
				}
				subB, err := srcB.Tree(recB.Hash)
				if err != nil {
					return nil, fmt.Errorf("load subtree for diff: %w", err)
				}

				stack = append(stack, pair{a: subA, b: subB, parent: idx})
			} else {
				newNode(recA, Modified, top.parent)
			}
		}

		for _, recB := range top.b.Records() {
			if _, inA := top.a.Record(recB.Name); inA {
				continue
			}

			if removedIdx, ok := potentiallyRemoved[recB.Hash]; ok {
				delete(potentiallyRemoved, recB.Hash)
				idx := newNode(recB, MovedFrom, top.parent)
				d.nodes[idx].Pair = removedIdx
				d.nodes[removedIdx].Variant = MovedTo
				d.nodes[removedIdx].Pair = idx
			} else {
				idx := newNode(recB, Added, top.parent)
				potentiallyAdded[recB.Hash] = idx
			}
		}
	}

	return d, nil
}
