package storage

import (
	"path/filepath"
	"testing"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "local"))

	type settings struct {
		Quiet string `json:"quiet"`
	}

	if err := s.Set("userSettings", settings{Quiet: "22:00"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got settings
	ok, err := s.Get("userSettings", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("get reported missing after set")
	}
	if got.Quiet != "22:00" {
		t.Errorf("got %+v, want quiet 22:00", got)
	}
}

func TestDiskStoreSurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "local")

	if err := Open(dir).Set("deviceId", "abc-123"); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got string
	ok, err := Open(dir).Get("deviceId", &got)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if !ok || got != "abc-123" {
		t.Errorf("after reopen got (%q, %v), want (abc-123, true)", got, ok)
	}
}

func TestDiskStoreMissingKey(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "local"))

	var got string
	ok, err := s.Get("nope", &got)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if ok {
		t.Error("get reported ok for missing key")
	}
}

func TestDiskStoreRemoveIdempotent(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "local"))

	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Remove("k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove("k"); err != nil {
		t.Fatalf("second remove should be a no-op, got: %v", err)
	}

	var got string
	if ok, _ := s.Get("k", &got); ok {
		t.Error("key still present after remove")
	}
}
