// Package planning holds the leaves that turn perception into jumps: the
// pending jump queue, obstacle promotion, and the launch speed solver.
package planning

import (
	"fmt"
	"sort"

	"github.com/Faultbox/pitrunner/pkg/math"
)

// JumpAction is a launch point paired with an optional landing point.
// A missing landing point means the agent jumps blind at full force.
type JumpAction struct {
	Launch math.Vec2
	Land   math.OptVec2
}

func (a JumpAction) String() string {
	return fmt.Sprintf("launch=(%.2f, %.2f) land=%s", a.Launch.X, a.Launch.Y, a.Land)
}

// JumpQueue keeps pending jumps ordered by launch x along the facing
// direction, nearest first.
type JumpQueue struct {
	facing float32
	items  []JumpAction
}

// NewJumpQueue creates an empty queue for an agent facing +X.
func NewJumpQueue() *JumpQueue {
	return &JumpQueue{facing: 1}
}

func (q *JumpQueue) key(a JumpAction) float32 {
	return a.Launch.X * q.facing
}

// Insert adds a keeping the order. Equal keys keep insertion order.
func (q *JumpQueue) Insert(a JumpAction) {
	k := q.key(a)
	i := sort.Search(len(q.items), func(i int) bool { return q.key(q.items[i]) > k })
	q.items = append(q.items, JumpAction{})
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = a
}

// Peek returns the nearest jump without removing it.
func (q *JumpQueue) Peek() (JumpAction, bool) {
	if len(q.items) == 0 {
		return JumpAction{}, false
	}
	return q.items[0], true
}

// Pop removes and returns the nearest jump.
func (q *JumpQueue) Pop() (JumpAction, bool) {
	a, ok := q.Peek()
	if ok {
		q.items = q.items[1:]
	}
	return a, ok
}

// Len returns the number of pending jumps.
func (q *JumpQueue) Len() int {
	return len(q.items)
}

// Items returns a copy of the pending jumps in order.
func (q *JumpQueue) Items() []JumpAction {
	out := make([]JumpAction, len(q.items))
	copy(out, q.items)
	return out
}

// Facing returns the direction the queue is ordered along.
func (q *JumpQueue) Facing() float32 {
	return q.facing
}

// SetFacing reorders the queue when the agent turns around.
func (q *JumpQueue) SetFacing(f float32) {
	if f < 0 {
		f = -1
	} else {
		f = 1
	}
	if f == q.facing {
		return
	}
	q.facing = f
	sort.SliceStable(q.items, func(i, j int) bool { return q.key(q.items[i]) < q.key(q.items[j]) })
}

// Clear drops every pending jump.
func (q *JumpQueue) Clear() {
	q.items = q.items[:0]
}
