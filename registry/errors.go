package registry

import (
	"errors"
	"fmt"
)

// Kind classifies a registry or boundary failure. Its numeric value is the
// code reported through the last-error channel.
//
// Codes 1-99 are reserved for this module. Libraries built on top of it
// assign their own codes starting at FirstUserCode.
type Kind int32

const (
	KindNone              Kind = 0
	KindNullParameter     Kind = 1
	KindStringTooLong     Kind = 2
	KindUntrackedPointer  Kind = 3
	KindWrongType         Kind = 4
	KindOther             Kind = 5
	KindMutexPoisoned     Kind = 6
	KindInvalidBufferSize Kind = 7
	KindReadOnly          Kind = 8
	KindPanic             Kind = 9
)

// MaxReservedCode is the highest code reserved for this module.
const MaxReservedCode = 99

// FirstUserCode is the first code available to collaborators.
const FirstUserCode = 100

// String returns the symbolic name used as the message prefix.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindNullParameter:
		return "NullParameter"
	case KindStringTooLong:
		return "StringTooLong"
	case KindUntrackedPointer:
		return "UntrackedPointer"
	case KindWrongType:
		return "WrongType"
	case KindOther:
		return "Other"
	case KindMutexPoisoned:
		return "MutexPoisoned"
	case KindInvalidBufferSize:
		return "InvalidBufferSize"
	case KindReadOnly:
		return "ReadOnly"
	case KindPanic:
		return "Panic"
	default:
		return fmt.Sprintf("Kind(%d)", int32(k))
	}
}

// Error is a failure reported by the registry or the boundary helpers.
type Error struct {
	Kind     Kind
	Addr     uintptr // Address involved, if any
	Expected Tag     // WrongType: the tag the caller asked for
	Found    Tag     // WrongType: the tag the address was registered with
	Detail   string  // Free-form details (parameter name, panic value, ...)
}

// Sentinel errors for use with errors.Is. They compare by Kind only.
var (
	ErrNullParameter     = &Error{Kind: KindNullParameter}
	ErrStringTooLong     = &Error{Kind: KindStringTooLong}
	ErrUntrackedPointer  = &Error{Kind: KindUntrackedPointer}
	ErrWrongType         = &Error{Kind: KindWrongType}
	ErrMutexPoisoned     = &Error{Kind: KindMutexPoisoned}
	ErrInvalidBufferSize = &Error{Kind: KindInvalidBufferSize}
	ErrReadOnly          = &Error{Kind: KindReadOnly}
	ErrPanic             = &Error{Kind: KindPanic}
)

// Error implements the error interface using the "Kind: details" format.
func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.details()
}

func (e *Error) details() string {
	switch e.Kind {
	case KindUntrackedPointer:
		return fmt.Sprintf("0x%x", e.Addr)
	case KindWrongType:
		return fmt.Sprintf("expected %s, found %s at 0x%x", e.Expected, e.Found, e.Addr)
	case KindReadOnly:
		return fmt.Sprintf("%s at 0x%x is shared and cannot be borrowed mutably", e.Found, e.Addr)
	case KindMutexPoisoned:
		if e.Detail == "" {
			return "thread panic detected"
		}
		return e.Detail
	default:
		return e.Detail
	}
}

// Code returns the numeric code for the last-error channel.
func (e *Error) Code() int32 {
	return int32(e.Kind)
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func untracked(addr uintptr) error {
	return &Error{Kind: KindUntrackedPointer, Addr: addr}
}

func wrongType(addr uintptr, expected, found Tag) error {
	return &Error{Kind: KindWrongType, Addr: addr, Expected: expected, Found: found}
}

func poisoned(detail string) error {
	return &Error{Kind: KindMutexPoisoned, Detail: detail}
}

func recovered(v any) error {
	return &Error{Kind: KindPanic, Detail: fmt.Sprint(v)}
}

// KindOf returns the Kind of err, KindNone for nil, and KindOther for errors
// that are not registry errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// IsUntracked returns true if err is an UntrackedPointer failure.
func IsUntracked(err error) bool {
	return errors.Is(err, ErrUntrackedPointer)
}

// IsWrongType returns true if err is a WrongType failure.
func IsWrongType(err error) bool {
	return errors.Is(err, ErrWrongType)
}

// IsPoisoned returns true if err reports a poisoned lock.
func IsPoisoned(err error) bool {
	return errors.Is(err, ErrMutexPoisoned)
}
