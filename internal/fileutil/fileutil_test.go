package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"storyvault/internal/fileutil"
)

func TestWriteFileAtomicCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "image.jpg")
	payload := []byte("jpeg-bytes")

	if err := fileutil.WriteFileAtomic(path, payload, 0o644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("content mismatch: %q", data)
	}
}

func TestWriteFileAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.jpg")
	if err := fileutil.WriteFileAtomic(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "image.jpg" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}

func TestWriteFileAtomicOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.jpg")
	if err := fileutil.WriteFileAtomic(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("new"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Fatalf("overwrite failed: %q", data)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if !fileutil.FileExists(path) {
		t.Fatal("expected file to exist")
	}
	if fileutil.FileExists(filepath.Join(dir, "absent")) {
		t.Fatal("expected missing file")
	}
	if fileutil.FileExists(dir) {
		t.Fatal("directories are not regular files")
	}
}

func TestFreeBytes(t *testing.T) {
	free, err := fileutil.FreeBytes(t.TempDir())
	if err != nil {
		t.Fatalf("FreeBytes failed: %v", err)
	}
	if free == 0 {
		t.Fatal("expected nonzero free space in temp dir")
	}
}
