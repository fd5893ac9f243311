//go:build windows && (amd64 || arm64)

package bindings

import "golang.org/x/sys/windows"

// openLibrary loads a DLL by name or path.
func openLibrary(path string) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func lookup(lib uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(lib), name)
}
