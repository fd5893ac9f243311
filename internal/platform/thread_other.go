//go:build !linux && !windows && !freebsd && !netbsd && !(darwin && !ios && (amd64 || arm64))

package platform

// ThreadID is unavailable here; every thread shares one slot.
func ThreadID() uint64 {
	return 0
}
