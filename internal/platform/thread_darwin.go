//go:build darwin && !ios && (amd64 || arm64)

package platform

import (
	"sync"

	"github.com/ebitengine/purego"
)

var (
	threadidOnce sync.Once
	threadidNP   func(thread uintptr, id *uint64) int32
)

// ThreadID returns the system-wide id of the calling OS thread, or 0 when
// libSystem could not be opened.
func ThreadID() uint64 {
	threadidOnce.Do(func() {
		lib, err := purego.Dlopen(LibCCandidates()[0], purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			return
		}
		purego.RegisterLibFunc(&threadidNP, lib, "pthread_threadid_np")
	})
	if threadidNP == nil {
		return 0
	}

	// A zero thread selects the caller.
	var id uint64
	if threadidNP(0, &id) != 0 {
		return 0
	}
	return id
}
