// File-backed CAS. Objects live under root/<hex[0:2]>/<hex>, zstd-compressed.
package cas

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// FileCAS implements CAS using file system storage.
//
// Each object is stored at <root>/<hex[0:2]>/<hex>, sharded by hash prefix
// to bound directory fan-out. The payload on disk is the zstd-compressed
// object bytes; hashes are always computed over the uncompressed bytes.
type FileCAS struct {
	root string
}

// NewFileCAS creates a new file-based CAS rooted at the given directory.
func NewFileCAS(root string) (*FileCAS, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create object store directory: %w", err)
	}
	return &FileCAS{root: root}, nil
}

// Root returns the object store root directory.
func (f *FileCAS) Root() string {
	return f.root
}

// objectPath returns the on-disk path for a hash.
func (f *FileCAS) objectPath(hash Hash) string {
	hexStr := hash.String()
	return filepath.Join(f.root, hexStr[:2], hexStr)
}

// Put implements CAS.Put. Writing the same content twice is a no-op.
func (f *FileCAS) Put(hash Hash, data []byte) error {
	computed := SumB3(data)
	if computed != hash {
		return fmt.Errorf("%w: hash mismatch, expected %s got %s", ErrCorrupt, hash, computed)
	}

	path := f.objectPath(hash)

	if _, err := os.Stat(path); err == nil {
		return nil // already stored, content-addressed
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create shard directory: %w", err)
	}

	compressed, err := compress(data)
	if err != nil {
		return err
	}

	// Write to a temporary file first, then rename, so readers never
	// observe a partially written object.
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp object file: %w", err)
	}

	_, werr := file.Write(compressed)
	cerr := file.Close()

	if werr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write object: %w", werr)
	}
	if cerr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close object file: %w", cerr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename object file: %w", err)
	}

	return nil
}

// Get implements CAS.Get.
func (f *FileCAS) Get(hash Hash) ([]byte, error) {
	compressed, err := os.ReadFile(f.objectPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
		}
		return nil, fmt.Errorf("read object file: %w", err)
	}

	data, err := decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, hash, err)
	}

	if computed := SumB3(data); computed != hash {
		return nil, fmt.Errorf("%w: hash mismatch for %s", ErrCorrupt, hash)
	}

	return data, nil
}

// Has implements CAS.Has.
func (f *FileCAS) Has(hash Hash) (bool, error) {
	_, err := os.Stat(f.objectPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object file: %w", err)
	}
	return true, nil
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	out := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("zstd close: %w", err)
	}
	return out, nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}
