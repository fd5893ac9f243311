//go:build (darwin || freebsd || linux || netbsd || windows) && !ios && !android && (amd64 || arm64)

package ffgate

import (
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/ffgate/internal/platform"
	"github.com/obinnaokechukwu/ffgate/lasterr"
)

// CExports holds C function pointers for the boundary functions every
// foreign caller needs. Hand them to C code through a function table or an
// init call.
type CExports struct {
	// Free releases any tracked address: int32 (*)(void *ptr).
	// Returns 0 on success (including NULL) and -1 on failure.
	Free uintptr

	// ErrorCode returns the caller thread's last error code: int32 (*)(void).
	ErrorCode uintptr

	// ErrorMessage returns the caller thread's last error message as a new C
	// string, or NULL if there is none: char *(*)(void). Release the result
	// with StringFree.
	ErrorMessage uintptr

	// StringFree releases a string returned by ffgate: int32 (*)(char *s).
	StringFree uintptr
}

// Pre-registered callbacks to avoid hitting purego's callback limit.
// They are created once and shared by every caller of Exports.
var (
	exportsOnce    sync.Once
	exports        CExports
	exportsInitErr error
)

// Exports returns the C-callable boundary functions, creating them on first
// use.
func Exports() (CExports, error) {
	exportsOnce.Do(func() {
		if !platform.SupportsCallbacks {
			exportsInitErr = ErrCallbacksUnsupported
			return
		}

		// int32 free(void *ptr)
		exports.Free = purego.NewCallback(func(_ purego.CDecl, ptr uintptr) int32 {
			return FreeTracked(ptr)
		})

		// int32 error_code(void)
		exports.ErrorCode = purego.NewCallback(func(_ purego.CDecl) int32 {
			return lasterr.Code()
		})

		// char *error_message(void)
		exports.ErrorMessage = purego.NewCallback(func(_ purego.CDecl) uintptr {
			msg, ok := lasterr.Message()
			if !ok {
				return 0
			}
			// Failing to allocate must not replace the record being read.
			p, err := NewCString(msg)
			if err != nil {
				logger.Warn("cannot copy last error message", "err", err)
				return 0
			}
			return p
		})

		// int32 string_free(char *s)
		exports.StringFree = purego.NewCallback(func(_ purego.CDecl, s uintptr) int32 {
			return GuardNeg(func() (int32, error) {
				return 0, FreeCString(s)
			})
		})
	})
	return exports, exportsInitErr
}
