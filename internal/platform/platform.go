//go:build !ios && !android && (amd64 || arm64)

// Package platform provides platform detection for ffgate: shared library
// naming, the C runtime to load for native allocations, and the identity of
// the calling OS thread.
package platform

import (
	"fmt"
	"runtime"
)

// SupportsCallbacks indicates whether purego can turn Go functions into C
// function pointers on this platform.
const SupportsCallbacks = runtime.GOOS == "darwin" ||
	runtime.GOOS == "linux" ||
	runtime.GOOS == "windows" ||
	runtime.GOOS == "freebsd"

// LibraryExtension is the file extension for shared libraries on this platform.
var LibraryExtension string

// LibraryPrefix is the prefix for shared library names on this platform.
var LibraryPrefix string

func init() {
	switch runtime.GOOS {
	case "darwin":
		LibraryExtension = ".dylib"
		LibraryPrefix = "lib"
	case "windows":
		LibraryExtension = ".dll"
		LibraryPrefix = ""
	default: // linux, freebsd, etc.
		LibraryExtension = ".so"
		LibraryPrefix = "lib"
	}
}

// FormatLibraryName returns the platform-specific library filename.
// If version is 0, returns the unversioned library name.
//
// Examples:
//   - Linux:   FormatLibraryName("c", 6)     -> "libc.so.6"
//   - macOS:   FormatLibraryName("System", 0) -> "libSystem.dylib"
//   - Windows: FormatLibraryName("msvcrt", 0) -> "msvcrt.dll"
func FormatLibraryName(name string, version int) string {
	switch runtime.GOOS {
	case "darwin":
		if version > 0 {
			return fmt.Sprintf("%s%s.%d%s", LibraryPrefix, name, version, LibraryExtension)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	case "windows":
		if version > 0 {
			return fmt.Sprintf("%s%s-%d%s", LibraryPrefix, name, version, LibraryExtension)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	default: // linux, freebsd
		if version > 0 {
			return fmt.Sprintf("%s%s%s.%d", LibraryPrefix, name, LibraryExtension, version)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	}
}

// LibCCandidates returns the C runtime libraries to try, most specific first.
func LibCCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/usr/lib/libSystem.B.dylib", FormatLibraryName("System", 0)}
	case "windows":
		return []string{FormatLibraryName("ucrtbase", 0), FormatLibraryName("msvcrt", 0)}
	case "freebsd":
		return []string{FormatLibraryName("c", 7), FormatLibraryName("c", 0)}
	default:
		return []string{FormatLibraryName("c", 6), FormatLibraryName("c", 0)}
	}
}

