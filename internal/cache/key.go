package cache

import "strings"

// Key identifies a cached query: an operation name followed by its parameters.
type Key []string

// NewKey builds a key from an operation name and its parameters.
func NewKey(op string, params ...string) Key {
	k := make(Key, 0, len(params)+1)
	k = append(k, op)
	return append(k, params...)
}

// With returns a copy of k extended with params.
func (k Key) With(params ...string) Key {
	out := make(Key, 0, len(k)+len(params))
	out = append(out, k...)
	return append(out, params...)
}

// HasPrefix reports whether every part of prefix matches the leading parts of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, p := range prefix {
		if k[i] != p {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	return "[" + strings.Join(k, ", ") + "]"
}

// id is the map key of k. Parts are joined by the unit separator so that
// parameters containing commas or slashes never collide.
func (k Key) id() string {
	return strings.Join(k, "\x1f")
}
