// Package device owns the installation's stable identifier.
package device

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tewodrosm/scripture-notify/internal/storage"
)

const deviceIDKey = "deviceId"

// Identity lazily generates a random device id on first use and persists
// it in the local tier. Once created the id never changes for the
// lifetime of the installation.
type Identity struct {
	mu    sync.Mutex
	store storage.Store
	id    string
}

func NewIdentity(store storage.Store) *Identity {
	return &Identity{store: store}
}

// ID returns the device id, creating and persisting one if absent.
func (i *Identity) ID() (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.id != "" {
		return i.id, nil
	}

	var stored string
	ok, err := i.store.Get(deviceIDKey, &stored)
	if err != nil {
		return "", fmt.Errorf("load device id: %w", err)
	}
	if ok && stored != "" {
		i.id = stored
		return i.id, nil
	}

	id := uuid.New().String()
	if err := i.store.Set(deviceIDKey, id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	i.id = id
	return i.id, nil
}
