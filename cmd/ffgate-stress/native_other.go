//go:build !((darwin || freebsd || linux || netbsd || windows) && !ios && !android && (amd64 || arm64))

package main

func nativeRuntime() string {
	return "unsupported"
}
