package ffgate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/ffgate/lasterr"
)

func TestGuardSuccess(t *testing.T) {
	lockThread(t)

	assert.Equal(t, uintptr(42), GuardNull(func() (uintptr, error) { return 42, nil }))
	assert.Equal(t, int32(7), GuardNeg(func() (int32, error) { return 7, nil }))
	assert.True(t, GuardBool(func() (bool, error) { return true, nil }))
	assert.Zero(t, lasterr.Code(), "success leaves the slot untouched")
}

func TestGuardFailure(t *testing.T) {
	lockThread(t)

	got := GuardNull(func() (uintptr, error) {
		_, err := Deref[widget](0xdead)
		return 0x1, err
	})
	assert.Zero(t, got)
	assert.Equal(t, int32(KindUntrackedPointer), lasterr.Code())

	assert.Equal(t, int32(-1), GuardNeg(func() (int32, error) {
		return 0, errors.New("plain failure")
	}))
	msg, _ := lasterr.Message()
	assert.Equal(t, "Other: plain failure", msg)

	assert.False(t, GuardBool(func() (bool, error) {
		return true, NewError(120, "Quota", "too many widgets")
	}))
	rec, ok := lasterr.Last()
	require.True(t, ok)
	assert.Equal(t, lasterr.Record{Code: 120, Message: "Quota: too many widgets"}, rec)
}

func TestGuardRecoversPanic(t *testing.T) {
	lockThread(t)

	got := Guard("fallback", func() (string, error) {
		var m map[string]int
		m["boom"] = 1
		return "unreachable", nil
	})
	assert.Equal(t, "fallback", got)
	assert.Equal(t, int32(KindPanic), lasterr.Code())
	msg, _ := lasterr.Message()
	assert.Contains(t, msg, "Panic: assignment to entry in nil map")
}
