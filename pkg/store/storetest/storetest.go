// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"bytes"
	"errors"
	"testing"

	"src.protosketch.dev/pkg/store/storedefs"
)

// TestStore tests the Store contract against a store with no entries for the
// keys "k1" and "k2".
func TestStore(t *testing.T, store storedefs.Store) {
	t.Helper()
	if _, err := store.Get("k1"); !errors.Is(err, storedefs.ErrNotFound) {
		t.Errorf("Get on a missing key returned error %v, want ErrNotFound", err)
	}

	blob := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}
	if err := store.Put("k1", blob); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, err := store.Get("k1")
	if err != nil || !bytes.Equal(data, blob) {
		t.Errorf("Get -> (%v, %v), want (%v, nil)", data, err, blob)
	}

	// Entries are immutable: a second Put keeps the first blob.
	if err := store.Put("k1", []byte("other")); err != nil {
		t.Errorf("second Put: %v", err)
	}
	if data, _ := store.Get("k1"); !bytes.Equal(data, blob) {
		t.Errorf("Get after second Put -> %v, want %v", data, blob)
	}

	// Mutating the argument of Put or the result of Get does not affect the
	// stored blob.
	data[0] = 0
	if again, _ := store.Get("k1"); !bytes.Equal(again, blob) {
		t.Errorf("Get after mutating an earlier result -> %v, want %v", again, blob)
	}

	if _, err := store.Get("k2"); !errors.Is(err, storedefs.ErrNotFound) {
		t.Errorf("Get on another missing key returned error %v, want ErrNotFound", err)
	}

	// Delete makes room for a different blob under the same key.
	if err := store.Delete("k2"); err != nil {
		t.Errorf("Delete on a missing key: %v", err)
	}
	if err := store.Delete("k1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get("k1"); !errors.Is(err, storedefs.ErrNotFound) {
		t.Errorf("Get after Delete returned error %v, want ErrNotFound", err)
	}
	other := []byte("other")
	if err := store.Put("k1", other); err != nil {
		t.Fatalf("Put after Delete: %v", err)
	}
	if data, _ := store.Get("k1"); !bytes.Equal(data, other) {
		t.Errorf("Get after Delete and Put -> %v, want %v", data, other)
	}
}
