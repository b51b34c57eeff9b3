package device

import (
	"testing"

	"github.com/google/uuid"

	"github.com/tewodrosm/scripture-notify/internal/storage"
)

func TestIDLazilyCreated(t *testing.T) {
	store := storage.NewMemory()

	id, err := NewIdentity(store).ID()
	if err != nil {
		t.Fatalf("first ID: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("device id %q is not a uuid: %v", id, err)
	}

	var persisted string
	ok, err := store.Get("deviceId", &persisted)
	if err != nil || !ok {
		t.Fatalf("device id not persisted (ok=%v, err=%v)", ok, err)
	}
	if persisted != id {
		t.Errorf("persisted id %q != returned id %q", persisted, id)
	}
}

func TestIDStableAcrossInstances(t *testing.T) {
	store := storage.NewMemory()

	first, err := NewIdentity(store).ID()
	if err != nil {
		t.Fatalf("first ID: %v", err)
	}

	// A new Identity models a process restart: it must load, not
	// regenerate.
	second, err := NewIdentity(store).ID()
	if err != nil {
		t.Fatalf("second ID: %v", err)
	}
	if first != second {
		t.Errorf("id changed across restart: %q then %q", first, second)
	}
}
