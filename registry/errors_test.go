package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  *Error
		code int32
		want string
	}{
		{&Error{Kind: KindNullParameter, Detail: "input_ptr"}, 1, "NullParameter: input_ptr"},
		{&Error{Kind: KindStringTooLong, Detail: "name"}, 2, "StringTooLong: name"},
		{&Error{Kind: KindUntrackedPointer, Addr: 0xdeadbeef}, 3, "UntrackedPointer: 0xdeadbeef"},
		{&Error{Kind: KindWrongType, Addr: 0x10, Expected: TagOf[int](), Found: TagOf[string]()}, 4, "WrongType: expected int, found string at 0x10"},
		{&Error{Kind: KindOther, Detail: "custom message"}, 5, "Other: custom message"},
		{&Error{Kind: KindMutexPoisoned}, 6, "MutexPoisoned: thread panic detected"},
		{&Error{Kind: KindInvalidBufferSize, Detail: "1000 for 'data'"}, 7, "InvalidBufferSize: 1000 for 'data'"},
		{&Error{Kind: KindReadOnly, Addr: 0x2, Found: TagOf[int]()}, 8, "ReadOnly: int at 0x2 is shared and cannot be borrowed mutably"},
		{&Error{Kind: KindPanic, Detail: "boom"}, 9, "Panic: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code())
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Less(t, tt.code, int32(FirstUserCode))
		})
	}
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("freeing handle: %w", untracked(0x42))

	assert.True(t, errors.Is(err, ErrUntrackedPointer))
	assert.False(t, errors.Is(err, ErrWrongType))
	assert.True(t, IsUntracked(err))
	assert.Equal(t, KindUntrackedPointer, KindOf(err))

	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindOther, KindOf(errors.New("plain")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "UntrackedPointer", KindUntrackedPointer.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestTagIdentity(t *testing.T) {
	type named [16]byte
	type alias = [16]byte

	assert.Equal(t, TagOf[[16]byte](), TagOf[alias]())
	assert.NotEqual(t, TagOf[[16]byte](), TagOf[named]())
	assert.NotEqual(t, TagOf[*int](), TagOf[int]())

	var zero Tag
	assert.True(t, zero.IsZero())
	assert.Equal(t, "<none>", zero.String())
	assert.Equal(t, "[16]uint8", TagOf[[16]byte]().String())
}
