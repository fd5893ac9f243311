//go:build (darwin || freebsd || linux || netbsd || windows) && !ios && !android && (amd64 || arm64)

package main

import "github.com/obinnaokechukwu/ffgate"

// nativeRuntime loads the C runtime and reports where it came from.
func nativeRuntime() string {
	if err := ffgate.Init(); err != nil {
		return "unavailable (" + err.Error() + ")"
	}
	return ffgate.LibraryPath()
}
