//go:build (darwin || freebsd || linux || netbsd || windows) && !ios && !android && (amd64 || arm64)

package bindings

import (
	"errors"
	"testing"
	"unsafe"
)

func TestLoadLibraryNotFound(t *testing.T) {
	_, _, err := loadLibrary([]string{"libffgate-does-not-exist.so.42"})
	if !errors.Is(err, ErrLibraryNotFound) {
		t.Fatalf("expected ErrLibraryNotFound, got %v", err)
	}
}

// Integration test - only runs if the C runtime can be opened
func TestCallocFree(t *testing.T) {
	if testing.Short() {
		t.Log("Skipping C runtime load test in short mode")
		return
	}

	if err := Load(); err != nil {
		t.Fatalf("C runtime not available: %v", err)
	}
	if !IsLoaded() {
		t.Fatal("IsLoaded should be true after successful Load")
	}
	if LibraryPath() == "" {
		t.Error("LibraryPath should be set after Load")
	}

	z, err := Calloc(4, 8)
	if err != nil {
		t.Fatalf("Calloc: %v", err)
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(z)), 32)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("calloc byte %d = %d, want 0", i, b)
		}
	}
	for i := range buf {
		buf[i] = byte(i)
	}
	if buf[31] != 31 {
		t.Errorf("expected 31, got %d", buf[31])
	}
	if err := Free(z); err != nil {
		t.Errorf("Free: %v", err)
	}

	if err := Free(0); err != nil {
		t.Errorf("Free(0) should be a no-op, got %v", err)
	}
}
