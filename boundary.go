package ffgate

import (
	"fmt"

	"github.com/obinnaokechukwu/ffgate/lasterr"
	"github.com/obinnaokechukwu/ffgate/registry"
)

// Guard runs fn on behalf of a foreign caller. On success it returns fn's
// value. If fn fails or panics, the failure is recorded in the calling
// thread's last-error slot and fail is returned instead.
//
// Panics must not unwind into C frames, so every exported function should
// run its body through Guard or one of its shorthands.
func Guard[T any](fail T, fn func() (T, error)) (v T) {
	defer func() {
		if r := recover(); r != nil {
			err := &registry.Error{Kind: registry.KindPanic, Detail: fmt.Sprint(r)}
			logger.Error("panic at the C boundary", "err", err)
			lasterr.SetError(err)
			v = fail
		}
	}()

	v, err := fn()
	if err != nil {
		lasterr.SetError(err)
		return fail
	}
	return v
}

// GuardNull is Guard for functions returning an address; failure is 0 (NULL).
func GuardNull(fn func() (uintptr, error)) uintptr {
	return Guard(0, fn)
}

// GuardNeg is Guard for status codes; failure is -1.
func GuardNeg(fn func() (int32, error)) int32 {
	return Guard(-1, fn)
}

// GuardBool is Guard for predicates; failure is false.
func GuardBool(fn func() (bool, error)) bool {
	return Guard(false, fn)
}
