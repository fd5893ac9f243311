//go:build (darwin || freebsd || linux || netbsd) && !ios && !android && (amd64 || arm64)

package bindings

import "github.com/ebitengine/purego"

// openLibrary opens a shared library with RTLD_NOW | RTLD_GLOBAL.
func openLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func lookup(lib uintptr, name string) (uintptr, error) {
	return purego.Dlsym(lib, name)
}
