package ffgate

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/ffgate/registry"
)

// Error is a failure reported by the registry or the boundary helpers.
type Error = registry.Error

// Kind classifies an Error; its value is the last-error code.
type Kind = registry.Kind

// Common errors
var (
	// ErrCallbacksUnsupported indicates purego cannot create C callbacks here.
	ErrCallbacksUnsupported = errors.New("ffgate: C callbacks not supported on this platform")

	// ErrMemoryLimit indicates a native allocation would exceed SetNativeMemoryLimit.
	ErrMemoryLimit = errors.New("ffgate: native memory limit exceeded")

	ErrNullParameter     = registry.ErrNullParameter
	ErrStringTooLong     = registry.ErrStringTooLong
	ErrUntrackedPointer  = registry.ErrUntrackedPointer
	ErrWrongType         = registry.ErrWrongType
	ErrMutexPoisoned     = registry.ErrMutexPoisoned
	ErrInvalidBufferSize = registry.ErrInvalidBufferSize
	ErrReadOnly          = registry.ErrReadOnly
	ErrPanic             = registry.ErrPanic
)

// Kind constants re-exported from registry
const (
	KindNone              = registry.KindNone
	KindNullParameter     = registry.KindNullParameter
	KindStringTooLong     = registry.KindStringTooLong
	KindUntrackedPointer  = registry.KindUntrackedPointer
	KindWrongType         = registry.KindWrongType
	KindOther             = registry.KindOther
	KindMutexPoisoned     = registry.KindMutexPoisoned
	KindInvalidBufferSize = registry.KindInvalidBufferSize
	KindReadOnly          = registry.KindReadOnly
	KindPanic             = registry.KindPanic

	FirstUserCode = registry.FirstUserCode
)

// IsUntracked returns true if err reports an unknown or already released address.
func IsUntracked(err error) bool {
	return registry.IsUntracked(err)
}

// IsWrongType returns true if err reports an address used as the wrong type.
func IsWrongType(err error) bool {
	return registry.IsWrongType(err)
}

// CodedError is an error with a collaborator-defined code.
type CodedError struct {
	code   int32
	Name   string
	Detail string
}

// NewError creates an error with a code from the collaborator range. It
// panics if code is below FirstUserCode, since lower codes belong to ffgate.
//
// The last-error message is "<name>: <detail>".
func NewError(code int32, name, detail string) *CodedError {
	if code < FirstUserCode {
		panic(fmt.Sprintf("ffgate: error code %d is reserved; use %d or above", code, FirstUserCode))
	}
	return &CodedError{code: code, Name: name, Detail: detail}
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	return e.Name + ": " + e.Detail
}

// Code returns the collaborator code.
func (e *CodedError) Code() int32 {
	return e.code
}

// Is reports whether target is a CodedError with the same code.
func (e *CodedError) Is(target error) bool {
	t, ok := target.(*CodedError)
	return ok && t.code == e.code
}

// Code returns the last-error code for err: 0 for nil, the error's own code
// when it has one, and KindOther otherwise.
func Code(err error) int32 {
	if err == nil {
		return 0
	}
	var c interface{ Code() int32 }
	if errors.As(err, &c) {
		return c.Code()
	}
	return int32(KindOther)
}
