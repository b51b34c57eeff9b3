package storage

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

// Store is a persistent key-value tier with whole-value JSON reads and
// writes. Get reports false when the key is absent. There is no
// field-level locking: every mutation is a whole-value read-modify-write.
type Store interface {
	Get(key string, out any) (bool, error)
	Set(key string, v any) error
	Remove(key string) error
}

// Tiers holds the two persistence tiers of an installation. Local is
// scoped to this installation only. Sync lives in a directory replicated
// across the user's devices by the host platform; the daemon treats the
// two identically.
type Tiers struct {
	Local Store
	Sync  Store
}

type DiskStore struct {
	mu sync.Mutex
	d  *diskv.Diskv
}

// Open creates a store rooted at basePath. The directory is created on
// first write.
func Open(basePath string) *DiskStore {
	return &DiskStore{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
	}
}

// Keys become file names, so they are base64url-encoded on disk.
func encodeKey(key string) string {
	return base64.URLEncoding.EncodeToString([]byte(key))
}

func (s *DiskStore) Get(key string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.d.Read(encodeKey(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %q: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

func (s *DiskStore) Set(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := s.d.Write(encodeKey(key), data); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

func (s *DiskStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.d.Erase(encodeKey(key)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}
