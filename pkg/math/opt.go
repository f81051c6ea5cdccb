package math

import "fmt"

// OptVec2 is a position that may be unset. The zero value is None, so a
// real position at the world origin is never mistaken for "no value".
type OptVec2 struct {
	v  Vec2
	ok bool
}

// Some wraps a set position.
func Some(v Vec2) OptVec2 {
	return OptVec2{v: v, ok: true}
}

// None returns an unset position.
func None() OptVec2 {
	return OptVec2{}
}

// Get returns the position and whether it is set.
func (o OptVec2) Get() (Vec2, bool) {
	return o.v, o.ok
}

// IsSet reports whether a position is present.
func (o OptVec2) IsSet() bool {
	return o.ok
}

// Or returns the position, or def when unset.
func (o OptVec2) Or(def Vec2) Vec2 {
	if o.ok {
		return o.v
	}
	return def
}

// String implements fmt.Stringer.
func (o OptVec2) String() string {
	if !o.ok {
		return "None"
	}
	return fmt.Sprintf("Some(%g, %g)", o.v.X, o.v.Y)
}
