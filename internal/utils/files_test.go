package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	if err := SafeWriteFile(path, []byte("[OVERVIEW]\n")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "[OVERVIEW]\n" {
		t.Fatalf("got %q", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	data := filepath.Join(root, "data")
	deep := filepath.Join(root, "a", "b")
	for _, d := range []string{data, deep} {
		if err := EnsureDir(d); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	got, err := FindUp(deep, "data")
	if err != nil {
		t.Fatalf("FindUp: %v", err)
	}
	if got != data {
		t.Fatalf("got %s, want %s", got, data)
	}
	if _, err := FindUp(deep, "nothing-here"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}
