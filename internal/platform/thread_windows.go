//go:build windows

package platform

import "golang.org/x/sys/windows"

// ThreadID returns the id of the calling OS thread.
func ThreadID() uint64 {
	return uint64(windows.GetCurrentThreadId())
}
