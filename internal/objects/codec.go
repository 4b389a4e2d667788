// Canonical text encodings for trees and commits.
//
// Tree:
//	tree\n
//	(blob|tree) <hash-hex> <name>\n   per record, in name order
//
// Commit:
//	commit\n
//	tree <hash-hex>\n
//	parent <hash-hex>\n               zero or more, in parent order
//	author <author>\n
//	timestamp <unix-seconds>\n
//	\n
//	<message>
//
// The message is the raw remainder after the blank separator line, with no
// added or stripped bytes, so every message round-trips exactly.
//
// Blobs have no envelope: their stored bytes are the raw file content and
// their hash is the hash of that content.
package objects

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/stratavcs/strata/internal/cas"
)

const (
	treeHeader   = "tree"
	commitHeader = "commit"
)

// EncodeTree returns the canonical bytes of a tree.
func EncodeTree(t *Tree) []byte {
	var buf bytes.Buffer
	buf.WriteString(treeHeader)
	buf.WriteByte('\n')

	for _, rec := range t.Records() {
		buf.WriteString(rec.Kind.String())
		buf.WriteByte(' ')
		buf.WriteString(rec.Hash.String())
		buf.WriteByte(' ')
		buf.WriteString(rec.Name)
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

// DecodeTree parses canonical tree bytes.
func DecodeTree(data []byte) (*Tree, error) {
	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 || lines[0] != treeHeader {
		return nil, fmt.Errorf("%w: not a tree object", ErrCorrupt)
	}

	var records []TreeRecord
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: malformed tree record %q", ErrCorrupt, line)
		}

		var kind Kind
		switch parts[0] {
		case "blob":
			kind = KindBlob
		case "tree":
			kind = KindTree
		default:
			return nil, fmt.Errorf("%w: unknown record kind %q", ErrCorrupt, parts[0])
		}

		hash, err := cas.ParseHash(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad record hash: %v", ErrCorrupt, err)
		}
		if parts[2] == "" {
			return nil, fmt.Errorf("%w: empty record name", ErrCorrupt)
		}

		records = append(records, TreeRecord{Kind: kind, Hash: hash, Name: parts[2]})
	}

	tree, err := NewTree(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return tree, nil
}

// EncodeCommit returns the canonical bytes of a commit.
func EncodeCommit(c *Commit) []byte {
	var buf bytes.Buffer
	buf.WriteString(commitHeader)
	buf.WriteByte('\n')

	buf.WriteString("tree ")
	buf.WriteString(c.TreeHash.String())
	buf.WriteByte('\n')

	for _, parent := range c.Parents {
		buf.WriteString("parent ")
		buf.WriteString(parent.String())
		buf.WriteByte('\n')
	}

	buf.WriteString("author ")
	buf.WriteString(c.Author)
	buf.WriteByte('\n')

	buf.WriteString("timestamp ")
	buf.WriteString(strconv.FormatInt(c.Timestamp, 10))
	buf.WriteByte('\n')

	buf.WriteByte('\n')
	buf.WriteString(c.Message)

	return buf.Bytes()
}

// DecodeCommit parses canonical commit bytes.
func DecodeCommit(data []byte) (*Commit, error) {
	body := string(data)
	head, message, found := strings.Cut(body, "\n\n")
	if !found {
		return nil, fmt.Errorf("%w: commit missing message separator", ErrCorrupt)
	}

	lines := strings.Split(head, "\n")
	if len(lines) == 0 || lines[0] != commitHeader {
		return nil, fmt.Errorf("%w: not a commit object", ErrCorrupt)
	}

	commit := &Commit{}
	sawTree := false
	sawAuthor := false
	sawTimestamp := false

	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed commit line %q", ErrCorrupt, line)
		}

		switch key {
		case "tree":
			hash, err := cas.ParseHash(value)
			if err != nil {
				return nil, fmt.Errorf("%w: bad tree hash: %v", ErrCorrupt, err)
			}
			commit.TreeHash = hash
			sawTree = true

		case "parent":
			hash, err := cas.ParseHash(value)
			if err != nil {
				return nil, fmt.Errorf("%w: bad parent hash: %v", ErrCorrupt, err)
			}
			commit.Parents = append(commit.Parents, hash)

		case "author":
			commit.Author = value
			sawAuthor = true

		case "timestamp":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad timestamp %q", ErrCorrupt, value)
			}
			commit.Timestamp = ts
			sawTimestamp = true

		default:
			return nil, fmt.Errorf("%w: unknown commit field %q", ErrCorrupt, key)
		}
	}

	if !sawTree || !sawAuthor || !sawTimestamp {
		return nil, fmt.Errorf("%w: commit missing required fields", ErrCorrupt)
	}

	commit.Message = message
	return commit, nil
}
