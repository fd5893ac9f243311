//go:build !ios && !android && (amd64 || arm64)

package platform

import (
	"runtime"
	"strings"
	"testing"
)

func TestSupportsCallbacks(t *testing.T) {
	switch runtime.GOOS {
	case "darwin", "linux", "windows", "freebsd":
		if !SupportsCallbacks {
			t.Errorf("%s should support callbacks", runtime.GOOS)
		}
	default:
		if SupportsCallbacks {
			t.Errorf("%s should not support callbacks", runtime.GOOS)
		}
	}
}

func TestLibraryExtension(t *testing.T) {
	switch runtime.GOOS {
	case "darwin":
		if LibraryExtension != ".dylib" {
			t.Errorf("expected .dylib, got %s", LibraryExtension)
		}
	case "windows":
		if LibraryExtension != ".dll" {
			t.Errorf("expected .dll, got %s", LibraryExtension)
		}
	default:
		if LibraryExtension != ".so" {
			t.Errorf("expected .so, got %s", LibraryExtension)
		}
	}
}

func TestFormatLibraryName(t *testing.T) {
	tests := []struct {
		name    string
		version int
		goos    string
		want    string
	}{
		{"c", 6, "linux", "libc.so.6"},
		{"c", 0, "linux", "libc.so"},
		{"c", 7, "freebsd", "libc.so.7"},
		{"System", 0, "darwin", "libSystem.dylib"},
		{"System", 1, "darwin", "libSystem.1.dylib"},
		{"msvcrt", 0, "windows", "msvcrt.dll"},
		{"api-ms-win-crt-heap-l1-1", 0, "windows", "api-ms-win-crt-heap-l1-1.dll"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_"+tt.goos, func(t *testing.T) {
			if runtime.GOOS != tt.goos {
				t.Skipf("test only applies to %s", tt.goos)
			}
			got := FormatLibraryName(tt.name, tt.version)
			if got != tt.want {
				t.Errorf("FormatLibraryName(%q, %d) = %q, want %q", tt.name, tt.version, got, tt.want)
			}
		})
	}
}

func TestLibCCandidates(t *testing.T) {
	candidates := LibCCandidates()
	if len(candidates) == 0 {
		t.Fatal("LibCCandidates should return at least one library")
	}
	for _, c := range candidates {
		if !strings.HasSuffix(c, LibraryExtension) && !strings.Contains(c, LibraryExtension+".") {
			t.Errorf("candidate %q does not look like a %s library", c, LibraryExtension)
		}
	}
}
