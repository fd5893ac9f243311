package ffgate

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/obinnaokechukwu/ffgate/registry"
)

// MaxCStringLen bounds how far GoString scans for the terminating NUL.
const MaxCStringLen = 64 * 1024

// GoString copies a NUL-terminated string owned by foreign code. Invalid
// UTF-8 is replaced with U+FFFD. It fails with NullParameter for a NULL p and
// with StringTooLong if no NUL appears within MaxCStringLen bytes.
func GoString(p uintptr) (string, error) {
	if p == 0 {
		return "", &registry.Error{Kind: registry.KindNullParameter, Detail: "string"}
	}

	n := -1
	for i := 0; i < MaxCStringLen; i++ {
		if *(*byte)(unsafe.Pointer(p + uintptr(i))) == 0 {
			n = i
			break
		}
	}
	if n < 0 {
		return "", &registry.Error{Kind: registry.KindStringTooLong, Detail: fmt.Sprintf("no terminator within %d bytes", MaxCStringLen)}
	}

	raw := string(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
	s, _, err := transform.String(runes.ReplaceIllFormed(), raw)
	if err != nil {
		return "", &registry.Error{Kind: registry.KindOther, Detail: err.Error()}
	}
	return s, nil
}

// ValidBufferSize reports whether n bytes starting at p form a plausible
// buffer: non-empty, no larger than the largest signed size, and not wrapping
// around the address space.
func ValidBufferSize(p, n uintptr) bool {
	if n == 0 || n > math.MaxInt64 {
		return false
	}
	return p+n > p
}

// GoBytes copies n bytes owned by foreign code.
func GoBytes(p, n uintptr) ([]byte, error) {
	if p == 0 {
		return nil, &registry.Error{Kind: registry.KindNullParameter, Detail: "data"}
	}
	if !ValidBufferSize(p, n) {
		return nil, &registry.Error{Kind: registry.KindInvalidBufferSize, Detail: fmt.Sprintf("%d for 'data'", n)}
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
	return out, nil
}
