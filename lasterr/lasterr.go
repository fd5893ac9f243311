// Package lasterr holds the most recent failure reported on each OS thread.
//
// Foreign callers cannot receive Go errors, so a failing boundary call returns
// a sentinel (NULL, -1, false) and records a code and message here. The caller
// asks for them on the same thread afterwards. A record stays until the next
// failure on that thread overwrites it; successful calls never clear it.
//
// Records are keyed by the OS thread id. Calls arriving through C callbacks
// already run on a fixed OS thread. Go code that wants the same semantics must
// call runtime.LockOSThread around the failing call and the lookup.
package lasterr

import (
	"errors"
	"sync"

	"github.com/obinnaokechukwu/ffgate/internal/platform"
	"github.com/obinnaokechukwu/ffgate/registry"
)

// CodeOther is used for errors that carry no code of their own.
const CodeOther = int32(registry.KindOther)

// Record is a single last-error entry.
type Record struct {
	Code    int32
	Message string
}

// Error implements the error interface.
func (r Record) Error() string {
	return r.Message
}

// Coder is implemented by errors that carry a numeric code.
type Coder interface {
	Code() int32
}

var records sync.Map // uint64 thread id -> Record

// Set records code and message for the calling thread.
func Set(code int32, message string) {
	records.Store(platform.ThreadID(), Record{Code: code, Message: message})
}

// SetError records err for the calling thread. Errors that implement Coder
// (anywhere in their chain) keep their code and message; any other error is
// recorded as CodeOther with an "Other: " prefix. A nil err is ignored.
func SetError(err error) {
	if err == nil {
		return
	}
	var c Coder
	if errors.As(err, &c) {
		Set(c.Code(), err.Error())
		return
	}
	Set(CodeOther, registry.KindOther.String()+": "+err.Error())
}

// Last returns the calling thread's record, if any.
func Last() (Record, bool) {
	v, ok := records.Load(platform.ThreadID())
	if !ok {
		return Record{}, false
	}
	return v.(Record), true
}

// Code returns the calling thread's last error code, or 0.
func Code() int32 {
	r, _ := Last()
	return r.Code
}

// Message returns the calling thread's last error message.
func Message() (string, bool) {
	r, ok := Last()
	return r.Message, ok
}

// Take returns and removes the calling thread's record.
func Take() (Record, bool) {
	v, ok := records.LoadAndDelete(platform.ThreadID())
	if !ok {
		return Record{}, false
	}
	return v.(Record), true
}

// Clear removes the calling thread's record.
func Clear() {
	records.Delete(platform.ThreadID())
}
