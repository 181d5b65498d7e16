package local

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if store == nil {
		t.Fatal("NewStore() returned nil")
	}
}

func TestStore_Save_Load(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	in := record{Name: "two-sum", Count: 3}
	if err := store.Save("progress", "alice", in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var out record
	if err := store.Load("progress", "alice", &out); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out != in {
		t.Errorf("Load() = %+v; want %+v", out, in)
	}
}

func TestStore_Save_Overwrites(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	store.Save("progress", "alice", record{Name: "first"})
	if err := store.Save("progress", "alice", record{Name: "second"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var out record
	store.Load("progress", "alice", &out)
	if out.Name != "second" {
		t.Errorf("Name = %q; want %q", out.Name, "second")
	}
}

func TestStore_Load_NotFound(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	var out record
	if err := store.Load("progress", "missing", &out); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v; want ErrNotFound", err)
	}
}

func TestStore_Save_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir)

	if err := store.Save("state", "app", record{Name: "snapshot"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "state"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "app.json" {
		t.Errorf("collection contents = %v; want exactly app.json", entries)
	}
}

func TestStore_Delete(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	store.Save("users", "u1", record{Name: "alice"})
	if err := store.Delete("users", "u1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var out record
	if err := store.Load("users", "u1", &out); !errors.Is(err, ErrNotFound) {
		t.Error("Load() after Delete() should return ErrNotFound")
	}
}

func TestStore_Delete_NotFound(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	if err := store.Delete("users", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v; want ErrNotFound", err)
	}
}

func TestStore_List(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	store.Save("users", "u1", record{})
	store.Save("users", "u2", record{})

	ids, err := store.List("users")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("List() returned %d ids; want 2", len(ids))
	}
}

func TestStore_List_EmptyCollection(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	ids, err := store.List("nothing")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("List() returned %d ids; want 0", len(ids))
	}
}

func TestStore_Exists(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	if store.Exists("users", "u1") {
		t.Error("Exists() = true before save")
	}
	store.Save("users", "u1", record{})
	if !store.Exists("users", "u1") {
		t.Error("Exists() = false after save")
	}
}
