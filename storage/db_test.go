package storage

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestMemDBMissingKey(t *testing.T) {
	db := NewMemDB()
	value, err := db.Get([]byte("absent"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != nil {
		t.Fatalf("missing key should read nil, got %x", value)
	}
}

func TestMemDBRoundTrip(t *testing.T) {
	db := NewMemDB()
	if err := db.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	value, err := db.Get([]byte("k"))
	if err != nil || !bytes.Equal(value, []byte("v")) {
		t.Fatalf("get = %q (%v)", value, err)
	}
	if db.Len() != 1 {
		t.Fatalf("len = %d, want 1", db.Len())
	}
}

func TestMemDBCopiesValues(t *testing.T) {
	db := NewMemDB()
	value := []byte("original")
	if err := db.Put([]byte("k"), value); err != nil {
		t.Fatalf("put: %v", err)
	}
	value[0] = 'X'

	stored, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(stored, []byte("original")) {
		t.Fatalf("stored value mutated: %q", stored)
	}
	stored[0] = 'Y'
	again, _ := db.Get([]byte("k"))
	if !bytes.Equal(again, []byte("original")) {
		t.Fatalf("returned slice aliased the store: %q", again)
	}
}

func TestLevelDBRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	db, err := NewLevelDB(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if value, err := db.Get([]byte("absent")); err != nil || value != nil {
		t.Fatalf("missing key = %x (%v), want nil", value, err)
	}
	if err := db.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	value, err := db.Get([]byte("k"))
	if err != nil || !bytes.Equal(value, []byte("v")) {
		t.Fatalf("get = %q (%v)", value, err)
	}
}
