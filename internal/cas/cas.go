// Package cas provides content-addressable storage keyed by BLAKE3 hashes.
package cas

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"lukechampine.com/blake3"
)

// HashLength is the length of a hash in lowercase-hex form.
const HashLength = 64

// Hash represents a BLAKE3-256 hash value.
type Hash [32]byte

// String returns the hexadecimal representation of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is the all-zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// SumB3 computes the BLAKE3 hash of the given data.
func SumB3(data []byte) Hash {
	return blake3.Sum256(data)
}

// ParseHash parses a lowercase-hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	if len(s) != HashLength {
		return Hash{}, fmt.Errorf("invalid hash length %d, want %d", len(s), HashLength)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	var h Hash
	copy(h[:], raw)
	return h, nil
}

// ValidHex reports whether s is a well-formed lowercase-hex hash string.
func ValidHex(s string) bool {
	if len(s) != HashLength {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

var (
	// ErrNotFound is returned when no object exists for a hash.
	ErrNotFound = errors.New("object not found")

	// ErrCorrupt is returned when stored bytes fail verification.
	ErrCorrupt = errors.New("object corrupt")
)

// CAS defines the content-addressable storage interface.
//
// Put is idempotent: storing the same content twice is a no-op on the
// second call. Implementations never mutate or remove an object once
// written; deletion only happens via whole-repository teardown.
type CAS interface {
	// Put stores data keyed by its hash.
	Put(hash Hash, data []byte) error

	// Get retrieves data by its hash.
	Get(hash Hash) ([]byte, error)

	// Has checks if data exists for the given hash.
	Has(hash Hash) (bool, error)
}

// MemoryCAS implements CAS using in-memory storage with thread-safe access.
type MemoryCAS struct {
	mu   sync.RWMutex
	data map[Hash][]byte
}

// NewMemoryCAS creates a new in-memory CAS.
func NewMemoryCAS() *MemoryCAS {
	return &MemoryCAS{
		data: make(map[Hash][]byte),
	}
}

// Put implements CAS.Put.
func (m *MemoryCAS) Put(hash Hash, data []byte) error {
	computed := SumB3(data)
	if computed != hash {
		return fmt.Errorf("%w: hash mismatch, expected %s got %s", ErrCorrupt, hash, computed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[hash]; exists {
		return nil
	}

	// Store a copy to avoid external mutations
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	m.data[hash] = dataCopy

	return nil
}

// Get implements CAS.Get.
func (m *MemoryCAS) Get(hash Hash) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.data[hash]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}

	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// Has implements CAS.Has.
func (m *MemoryCAS) Has(hash Hash) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.data[hash]
	return exists, nil
}

// Len returns the number of objects stored in the CAS.
func (m *MemoryCAS) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
