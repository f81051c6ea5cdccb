// Package behaviour implements the behaviour tree engine: the Node contract,
// the composite combinators, and a bridge to go-behaviortree.
//
// Evaluate is called once per simulation tick and must be re-entrant: any
// state a node needs between ticks lives on the agent's blackboard, never
// in the node. Failure is always a Status, never an error or a panic.
package behaviour

import (
	"strings"

	bt "github.com/joeycumines/go-behaviortree"
)

// Status is the tri-state result of evaluating a node. It is the
// go-behaviortree status so nodes interoperate with that library.
type Status = bt.Status

// Status values.
const (
	Running = bt.Running
	Success = bt.Success
	Failure = bt.Failure
)

// Node is a behaviour tree element. Implementations embed Base, which
// supplies the parent link and the recorded status.
type Node interface {
	// Evaluate runs the node once and returns its status.
	Evaluate() Status

	Name() string
	Parent() Node
	Status() Status

	attach(parent Node)
	record(s Status)
}

// Base holds the state every node shares. Embed it in leaf types.
//
// The parent link is a back reference: composites own their children,
// children never own their parent.
type Base struct {
	name   string
	parent Node
	status Status
}

// NewBase returns a Base with the given diagnostic name.
func NewBase(name string) Base {
	return Base{name: name}
}

// Name returns the diagnostic name.
func (b *Base) Name() string { return b.name }

// Parent returns the owning composite, or nil for a root.
func (b *Base) Parent() Node { return b.parent }

// Status returns the status recorded by the last Run, or 0 before the node
// has run.
func (b *Base) Status() Status { return b.status }

func (b *Base) attach(parent Node) { b.parent = parent }

func (b *Base) record(s Status) { b.status = s }

// Run evaluates n and records the result on it.
func Run(n Node) Status {
	s := n.Evaluate()
	n.record(s)
	return s
}

// Path returns the slash-separated names from the root down to n.
func Path(n Node) string {
	var parts []string
	for ; n != nil; n = n.Parent() {
		parts = append(parts, n.Name())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Action is a leaf that runs a function.
type Action struct {
	Base
	fn func() Status
}

// NewAction creates a leaf that returns fn's status.
func NewAction(name string, fn func() Status) *Action {
	return &Action{Base: NewBase(name), fn: fn}
}

// Evaluate implements Node.
func (a *Action) Evaluate() Status {
	return a.fn()
}

// Condition is a leaf that maps a predicate to Success or Failure.
type Condition struct {
	Base
	fn func() bool
}

// NewCondition creates a leaf that succeeds when fn returns true.
func NewCondition(name string, fn func() bool) *Condition {
	return &Condition{Base: NewBase(name), fn: fn}
}

// Evaluate implements Node.
func (c *Condition) Evaluate() Status {
	if c.fn() {
		return Success
	}
	return Failure
}
