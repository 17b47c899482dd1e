// internal/storage/storage_test.go
package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func testStoreContract(t *testing.T, store Store) {
	t.Helper()

	// Missing key
	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on missing key: expected ErrNotFound, got %v", err)
	}

	// Set / Get
	if err := store.Set("alpha", "one"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := store.Get("alpha")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "one" {
		t.Errorf("Expected 'one', got '%s'", value)
	}

	// Overwrite
	if err := store.Set("alpha", "two"); err != nil {
		t.Fatalf("Set (overwrite) failed: %v", err)
	}
	value, _ = store.Get("alpha")
	if value != "two" {
		t.Errorf("Expected 'two' after overwrite, got '%s'", value)
	}

	// Remove, including an absent key
	if err := store.Remove("alpha"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := store.Get("alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Remove: expected ErrNotFound, got %v", err)
	}
	if err := store.Remove("never-existed"); err != nil {
		t.Errorf("Remove on absent key should be a no-op, got %v", err)
	}
}

func TestMemory_Contract(t *testing.T) {
	testStoreContract(t, NewMemory())
}

func TestSQLite_Contract(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer store.Close()

	testStoreContract(t, store)
}

func TestBadger_Contract(t *testing.T) {
	store, err := OpenBadger(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadger failed: %v", err)
	}
	defer store.Close()

	testStoreContract(t, store)
}

func TestCompressed_Contract(t *testing.T) {
	testStoreContract(t, NewCompressed(NewMemory(), 3))
}

func TestCompressed_RoundTripLargeValue(t *testing.T) {
	store := NewCompressed(NewMemory(), 3)

	payload := strings.Repeat("node data with a lot of repetition ", 1000)
	if err := store.Set("canvas", payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := store.Get("canvas")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != payload {
		t.Error("Round-tripped value differs from original")
	}
}

func TestQuota_RejectsOverBudget(t *testing.T) {
	store := NewQuota(NewMemory(), 32)

	if err := store.Set("a", "short"); err != nil {
		t.Fatalf("Set within budget failed: %v", err)
	}

	err := store.Set("b", strings.Repeat("x", 64))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("Expected ErrQuotaExceeded, got %v", err)
	}

	// The failed write must not disturb existing data.
	value, err := store.Get("a")
	if err != nil || value != "short" {
		t.Errorf("Existing key damaged after rejected write: %q, %v", value, err)
	}
}

func TestQuota_OverwriteReleasesOldSize(t *testing.T) {
	store := NewQuota(NewMemory(), 40)

	if err := store.Set("key", strings.Repeat("a", 30)); err != nil {
		t.Fatalf("First Set failed: %v", err)
	}
	// Replacing the value should account against the new size, not old+new.
	if err := store.Set("key", strings.Repeat("b", 30)); err != nil {
		t.Fatalf("Overwrite within budget failed: %v", err)
	}

	if err := store.Remove("key"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := store.Set("other", strings.Repeat("c", 30)); err != nil {
		t.Errorf("Budget not released after Remove: %v", err)
	}
}
