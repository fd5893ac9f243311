package registry

import "reflect"

// Tag identifies the concrete Go type an allocation was registered as.
//
// Two tags are equal only if they name the same type. Defined types with an
// identical underlying layout (for example uuid.UUID and [16]byte) produce
// distinct tags. Type aliases name the same type and therefore share a tag.
type Tag struct {
	t reflect.Type
}

// TagOf returns the tag for T.
func TagOf[T any]() Tag {
	return Tag{t: reflect.TypeFor[T]()}
}

// Type returns the underlying reflect.Type, or nil for the zero Tag.
func (t Tag) Type() reflect.Type {
	return t.t
}

// IsZero reports whether t is the zero Tag.
func (t Tag) IsZero() bool {
	return t.t == nil
}

// String returns the type name, e.g. "main.Point" or "[16]uint8".
func (t Tag) String() string {
	if t.t == nil {
		return "<none>"
	}
	return t.t.String()
}
