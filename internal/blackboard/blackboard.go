// Package blackboard provides the per-agent key-value store behaviour tree
// nodes share across ticks.
//
// A Blackboard is owned by exactly one agent and is only touched from the
// simulation thread, so it carries no locking.
package blackboard

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// ErrClosed is the panic value of a write to a closed or nil blackboard.
var ErrClosed = errors.New("blackboard: write after close")

// Key addresses a blackboard entry.
type Key string

// TypeError reports a read or write with the wrong value type. It is a
// wiring bug and is raised with panic.
type TypeError struct {
	Key  Key
	Want string
	Got  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("blackboard: key %q holds %s, accessed as %s", e.Key, e.Got, e.Want)
}

// Blackboard is a key-value store with optional per-key type declarations.
//
// Usage: Create with New() or new(Blackboard). The internal maps are lazily
// initialized on the first write. Close ends the board's life: reads see an
// empty board and writes panic with ErrClosed.
type Blackboard struct {
	data     map[Key]any
	declared map[Key]reflect.Type
	closed   bool
}

// New creates an empty blackboard.
func New() *Blackboard {
	return new(Blackboard)
}

func (b *Blackboard) init() {
	if b == nil || b.closed {
		panic(ErrClosed)
	}
	if b.data == nil {
		b.data = make(map[Key]any)
	}
	if b.declared == nil {
		b.declared = make(map[Key]reflect.Type)
	}
}

// Declare fixes the type of key to the type of zero and stores zero as its
// initial value. Later writes of another type panic with *TypeError.
func (b *Blackboard) Declare(key Key, zero any) {
	b.init()
	b.declared[key] = reflect.TypeOf(zero)
	b.data[key] = zero
}

// Set stores a value.
func (b *Blackboard) Set(key Key, value any) {
	b.init()
	if want, ok := b.declared[key]; ok {
		if got := reflect.TypeOf(value); got != want {
			panic(&TypeError{Key: key, Want: typeName(want), Got: typeName(got)})
		}
	}
	b.data[key] = value
}

// Get retrieves a value. Returns nil if the key doesn't exist or b is nil.
func (b *Blackboard) Get(key Key) any {
	if b == nil || b.data == nil {
		return nil
	}
	return b.data[key]
}

// Has returns true if the key exists.
func (b *Blackboard) Has(key Key) bool {
	if b == nil || b.data == nil {
		return false
	}
	_, ok := b.data[key]
	return ok
}

// Delete removes a key. A declared key is reset to its zero value instead.
func (b *Blackboard) Delete(key Key) {
	if b == nil || b.data == nil {
		return
	}
	if t, ok := b.declared[key]; ok {
		b.data[key] = reflect.Zero(t).Interface()
		return
	}
	delete(b.data, key)
}

// Keys returns all keys in sorted order.
func (b *Blackboard) Keys() []Key {
	if b == nil {
		return nil
	}
	keys := make([]Key, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Len returns the number of keys.
func (b *Blackboard) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Clear removes all entries and declarations. The board stays usable.
func (b *Blackboard) Clear() {
	if b == nil {
		return
	}
	b.data = nil
	b.declared = nil
}

// Close clears the board and rejects every later write.
func (b *Blackboard) Close() {
	if b == nil {
		return
	}
	b.Clear()
	b.closed = true
}

// Closed reports whether Close has been called.
func (b *Blackboard) Closed() bool {
	return b != nil && b.closed
}

// Snapshot returns a shallow copy of the data.
// Mutable values (slices, pointers) are shared with the blackboard.
func (b *Blackboard) Snapshot() map[Key]any {
	if b == nil || b.data == nil {
		return nil
	}
	out := make(map[Key]any, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out
}

// Value reads key as T. An absent key yields the zero T; a value of another
// type panics with *TypeError.
func Value[T any](b *Blackboard, key Key) T {
	var zero T
	raw := b.Get(key)
	if raw == nil {
		return zero
	}
	v, ok := raw.(T)
	if !ok {
		panic(&TypeError{Key: key, Want: typeName(reflect.TypeOf(&zero).Elem()), Got: typeName(reflect.TypeOf(raw))})
	}
	return v
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}
