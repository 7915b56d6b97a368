package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "http://localhost:8080/static/avatars/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	url, err := store.Save(context.Background(), "me.PNG", strings.NewReader("fake-image-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/static/avatars/") {
		t.Fatalf("unexpected url %q", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Fatalf("extension should be normalized, got %q", url)
	}
	if strings.Contains(url, "me.") {
		t.Fatalf("original filename must not leak into the url: %q", url)
	}

	name := url[strings.LastIndex(url, "/")+1:]
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "fake-image-bytes" {
		t.Fatalf("content mismatch")
	}
}

func TestDiskStoreRejectsUnsupportedTypes(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/static/avatars")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	for _, name := range []string{"evil.exe", "script.svg", "noext", "double.png.sh"} {
		if _, err := store.Save(context.Background(), name, strings.NewReader("x")); !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("%s: want ErrUnsupportedType, got %v", name, err)
		}
	}
}

func TestDiskStoreHonorsContext(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/static/avatars")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, "a.png", strings.NewReader("x")); err == nil {
		t.Fatalf("expected context error")
	}
}
