//go:build (darwin || freebsd || linux || netbsd || windows) && !ios && !android && (amd64 || arm64)

// Package bindings loads the C runtime and registers the allocation functions
// ffgate needs using purego.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/ffgate/internal/platform"
)

// ErrNotLoaded is returned when native functions are called before Load().
var ErrNotLoaded = errors.New("ffgate: C runtime not loaded; call ffgate.Init() first")

// ErrLibraryNotFound is returned when no C runtime library can be opened.
var ErrLibraryNotFound = errors.New("ffgate: C runtime library not found")

// EnvLibC names an explicit C runtime to load instead of the platform default.
const EnvLibC = "FFGATE_LIBC"

// Library handle
var (
	libC     uintptr
	libCPath string

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// Allocation function bindings
var (
	cCalloc func(count, size uintptr) uintptr
	cFree   func(ptr uintptr)
)

// IsLoaded returns true if the C runtime has been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Load opens the C runtime and registers the allocation bindings.
// It is safe to call multiple times; subsequent calls are no-ops.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	candidates := platform.LibCCandidates()
	if p := os.Getenv(EnvLibC); p != "" {
		candidates = []string{p}
	}

	var err error
	libC, libCPath, err = loadLibrary(candidates)
	if err != nil {
		return fmt.Errorf("loading C runtime: %w", err)
	}

	for _, b := range []struct {
		fptr any
		name string
	}{
		{&cCalloc, "calloc"},
		{&cFree, "free"},
	} {
		sym, err := lookup(libC, b.name)
		if err != nil {
			return fmt.Errorf("resolving %s in %s: %w", b.name, libCPath, err)
		}
		purego.RegisterFunc(b.fptr, sym)
	}
	return nil
}

// loadLibrary opens the first candidate that loads.
func loadLibrary(candidates []string) (uintptr, string, error) {
	var errs []error
	for _, name := range candidates {
		lib, err := openLibrary(name)
		if err == nil {
			return lib, name, nil
		}
		errs = append(errs, err)
	}
	return 0, "", fmt.Errorf("%w: tried %v: %w", ErrLibraryNotFound, candidates, errors.Join(errs...))
}

// LibraryPath returns the name the C runtime was loaded from, or "" before Load.
func LibraryPath() string {
	return libCPath
}

// Calloc allocates count*size zeroed bytes of native memory.
func Calloc(count, size uintptr) (uintptr, error) {
	if !loaded {
		return 0, ErrNotLoaded
	}
	p := cCalloc(count, size)
	if p == 0 {
		return 0, fmt.Errorf("ffgate: calloc(%d, %d) failed", count, size)
	}
	return p, nil
}

// Free releases memory obtained from Calloc. Free(0) is a no-op.
func Free(ptr uintptr) error {
	if !loaded {
		return ErrNotLoaded
	}
	if ptr != 0 {
		cFree(ptr)
	}
	return nil
}
