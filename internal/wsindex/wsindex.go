// Package wsindex caches working-directory file hashes in a bbolt database.
//
// The index maps a file path to its (size, mtime, content hash) triple.
// Snapshotting a working directory consults the index first and only
// re-hashes files whose size or modification time changed. The database is
// purely a cache: deleting it is always safe and never loses repository
// state.
package wsindex

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/stratavcs/strata/internal/cas"
	"github.com/stratavcs/strata/internal/fstree"
)

var bucketFiles = []byte("files")

// entrySize is 8 bytes size + 8 bytes mtime + 32 bytes hash.
const entrySize = 48

// Index is a bbolt-backed working-set hash cache.
type Index struct {
	db *bbolt.DB
}

// Open opens (or creates) the index database at path.
func Open(path string) (*Index, error) {
	db, err := bbolt.Open(path, 0666, nil)
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFiles)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init index db: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the index database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Hasher wraps a base FileHasher with index lookups. A stat match on size
// and mtime reuses the cached hash; a miss computes the hash with base and
// records it.
func (ix *Index) Hasher(base fstree.FileHasher) fstree.FileHasher {
	if base == nil {
		base = fstree.ContentHasher{}
	}
	return &cachingHasher{index: ix, base: base}
}

type cachingHasher struct {
	index *Index
	base  fstree.FileHasher
}

func (h *cachingHasher) HashFile(path string) (cas.Hash, error) {
	info, err := os.Stat(path)
	if err != nil {
		return cas.Hash{}, fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()
	mtime := info.ModTime().UnixNano()

	// Key by absolute path so relative and absolute spellings of the same
	// file share one entry.
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	if hash, ok := h.index.lookup(key, size, mtime); ok {
		return hash, nil
	}

	hash, err := h.base.HashFile(path)
	if err != nil {
		return cas.Hash{}, err
	}

	if err := h.index.record(key, size, mtime, hash); err != nil {
		return cas.Hash{}, err
	}
	return hash, nil
}

func (ix *Index) lookup(path string, size, mtime int64) (cas.Hash, bool) {
	var hash cas.Hash
	found := false

	_ = ix.db.View(func(tx *bbolt.Tx) error {
		entry := tx.Bucket(bucketFiles).Get([]byte(path))
		if len(entry) != entrySize {
			return nil
		}
		cachedSize := int64(binary.BigEndian.Uint64(entry[0:8]))
		cachedMtime := int64(binary.BigEndian.Uint64(entry[8:16]))
		if cachedSize != size || cachedMtime != mtime {
			return nil
		}
		copy(hash[:], entry[16:])
		found = true
		return nil
	})

	return hash, found
}

func (ix *Index) record(path string, size, mtime int64, hash cas.Hash) error {
	entry := make([]byte, entrySize)
	binary.BigEndian.PutUint64(entry[0:8], uint64(size))
	binary.BigEndian.PutUint64(entry[8:16], uint64(mtime))
	copy(entry[16:], hash[:])

	err := ix.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).Put([]byte(path), entry)
	})
	if err != nil {
		return fmt.Errorf("record index entry for %s: %w", path, err)
	}
	return nil
}

// Forget drops the cache entry for a path, if present.
func (ix *Index) Forget(path string) error {
	return ix.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).Delete([]byte(path))
	})
}
