//go:build (darwin || freebsd || linux || netbsd || windows) && !ios && !android && (amd64 || arm64)

package ffgate

import (
	"fmt"
	"testing"

	"github.com/ebitengine/purego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(fn, args...)
	return r1
}

func TestExportsFromC(t *testing.T) {
	requireNative(t)
	lockThread(t)

	ex, err := Exports()
	require.NoError(t, err)
	again, err := Exports()
	require.NoError(t, err)
	assert.Equal(t, ex, again, "callbacks are created once")

	assert.Equal(t, int32(0), int32(call(ex.ErrorCode)))
	assert.Zero(t, call(ex.ErrorMessage), "no message before any failure")

	addr := TrackBox(&widget{name: "c-owned"}, nil)
	assert.Equal(t, int32(0), int32(call(ex.Free, addr)))
	assert.Equal(t, int32(0), int32(call(ex.Free, 0)), "free(NULL) succeeds")

	// Double free from C.
	assert.Equal(t, int32(-1), int32(call(ex.Free, addr)))
	assert.Equal(t, int32(KindUntrackedPointer), int32(call(ex.ErrorCode)))

	msgPtr := call(ex.ErrorMessage)
	require.NotZero(t, msgPtr)
	msg, err := GoString(msgPtr)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("UntrackedPointer: 0x%x", addr), msg)

	assert.Equal(t, int32(0), int32(call(ex.StringFree, msgPtr)))
	assert.Equal(t, int32(-1), int32(call(ex.StringFree, msgPtr)))
	assert.Equal(t, int32(KindUntrackedPointer), int32(call(ex.ErrorCode)))
}

func TestExportStringFreeRejectsOtherTypes(t *testing.T) {
	requireNative(t)
	lockThread(t)

	ex, err := Exports()
	require.NoError(t, err)

	addr := TrackBox(&widget{}, nil)
	defer Free(addr)

	assert.Equal(t, int32(-1), int32(call(ex.StringFree, addr)))
	assert.Equal(t, int32(KindWrongType), int32(call(ex.ErrorCode)))
	assert.Equal(t, 1, countLive(addr), "a rejected free leaves the address live")
}

func countLive(addr uintptr) int {
	n := 0
	for _, e := range Default().Snapshot() {
		if e.Addr == addr {
			n++
		}
	}
	return n
}
