package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorageSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	ctx := context.Background()

	first := NewFileStorage(path)
	if err := first.Set(ctx, KeyUser, `{"id":"u-1"}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := first.Set(ctx, KeySessionID, "tok"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	second := NewFileStorage(path)
	got, err := second.Get(ctx, KeySessionID)
	if err != nil || got != "tok" {
		t.Errorf("Get() = %q, %v, want tok", got, err)
	}

	if err := second.Delete(ctx, KeySessionID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := first.Get(ctx, KeySessionID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := first.Get(ctx, KeyUser); err != nil {
		t.Errorf("Get(user) error = %v", err)
	}
}

func TestFileStorageMissingAndCorruptFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	missing := NewFileStorage(filepath.Join(dir, "none.json"))
	if _, err := missing.Get(ctx, KeyUser); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := missing.Delete(ctx, KeyUser); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	corruptPath := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corruptPath, []byte("{{{"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	corrupt := NewFileStorage(corruptPath)
	if _, err := corrupt.Get(ctx, KeyUser); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := corrupt.Set(ctx, KeyUser, "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := corrupt.Get(ctx, KeyUser); got != "v" {
		t.Errorf("Get() = %q, want v", got)
	}
}

func TestNamespacedIsolation(t *testing.T) {
	ctx := context.Background()
	shared := NewMemoryStorage()
	a := Namespaced(shared, "client-a")
	b := Namespaced(shared, "client-b")

	a.Set(ctx, KeyUser, "alice")
	b.Set(ctx, KeyUser, "bob")

	if got, _ := a.Get(ctx, KeyUser); got != "alice" {
		t.Errorf("a.Get() = %q, want alice", got)
	}
	if got, _ := shared.Get(ctx, "client-b:user"); got != "bob" {
		t.Errorf("shared key = %q, want bob", got)
	}

	a.Delete(ctx, KeyUser)
	if _, err := a.Get(ctx, KeyUser); !errors.Is(err, ErrNotFound) {
		t.Errorf("a.Get() error = %v, want ErrNotFound", err)
	}
	if got, _ := b.Get(ctx, KeyUser); got != "bob" {
		t.Errorf("b.Get() = %q, want bob after deleting a", got)
	}
}
