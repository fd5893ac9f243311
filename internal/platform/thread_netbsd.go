//go:build netbsd

package platform

import "golang.org/x/sys/unix"

// ThreadID returns the id of the calling lightweight process.
func ThreadID() uint64 {
	id, _, _ := unix.RawSyscall(unix.SYS__LWP_SELF, 0, 0, 0)
	return uint64(id)
}
