//go:build freebsd

package platform

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ThreadID returns the kernel id of the calling OS thread.
func ThreadID() uint64 {
	var id int64
	unix.RawSyscall(unix.SYS_THR_SELF, uintptr(unsafe.Pointer(&id)), 0, 0)
	return uint64(id)
}
