package fsutil

import (
	"io"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fs := OSFileSystem{}

	if !fs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}

	if fs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_CreateOpenGlob(t *testing.T) {
	fs := OSFileSystem{}
	dir := t.TempDir()

	for _, name := range []string{"b.csv", "a.csv", "c.txt"} {
		w, err := fs.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := io.WriteString(w, name); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		w.Close()
	}

	matches, err := fs.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	want := []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}
	if len(matches) != len(want) || matches[0] != want[0] || matches[1] != want[1] {
		t.Errorf("Glob = %v, want %v", matches, want)
	}

	r, err := fs.Open(want[0])
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "a.csv" {
		t.Errorf("contents = %q, want %q", data, "a.csv")
	}
}

func TestMemoryFileSystem_CreateAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/out/created.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !mfs.Exists("/out/created.txt") {
		t.Error("file should exist before Close")
	}
	w.Write([]byte("hello "))
	w.Write([]byte("world"))
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := mfs.ReadFile("/out/created.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", data)
	}
}

func TestMemoryFileSystem_OpenMissing(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if _, err := mfs.Open("/missing.csv"); err == nil {
		t.Error("expected error opening missing file")
	}
}

func TestMemoryFileSystem_MkdirAllAndGlob(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("/data/raw", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if !mfs.Exists("/data") || !mfs.Exists("/data/raw") {
		t.Error("expected parent directories to exist")
	}

	mfs.WriteFile("/data/raw/2.csv", []byte("x"))
	mfs.WriteFile("/data/raw/1.csv", []byte("y"))
	mfs.WriteFile("/data/raw/notes.md", []byte("z"))

	matches, err := mfs.Glob("/data/raw/*.csv")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 || matches[0] != "/data/raw/1.csv" || matches[1] != "/data/raw/2.csv" {
		t.Errorf("Glob = %v", matches)
	}
}
