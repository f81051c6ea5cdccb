package behaviour

import bt "github.com/joeycumines/go-behaviortree"

// Composite owns an ordered list of children and sets each child's parent.
// The children are also kept as go-behaviortree nodes for the library
// combinators; ticking one of those still records the child's status.
type Composite struct {
	Base
	children []Node
	nodes    []bt.Node
}

// Children returns the children in insertion order.
func (c *Composite) Children() []Node {
	return c.children
}

func (c *Composite) adopt(self Node, children []Node) {
	c.children = children
	c.nodes = make([]bt.Node, len(children))
	for i, child := range children {
		child.attach(self)
		c.nodes[i] = ToBT(child)
	}
}

// tick runs a go-behaviortree combinator over the children. Bridged
// children never return an error, so one is reported as Failure.
func (c *Composite) tick(fn bt.Tick) Status {
	status, err := fn(c.nodes)
	if err != nil {
		return Failure
	}
	return status
}

// Sequence ticks children in order until one fails or is running.
// An empty Sequence succeeds.
type Sequence struct {
	Composite
}

// NewSequence creates a Sequence over children.
func NewSequence(name string, children ...Node) *Sequence {
	s := &Sequence{Composite: Composite{Base: NewBase(name)}}
	s.adopt(s, children)
	return s
}

// Evaluate implements Node.
func (s *Sequence) Evaluate() Status {
	return s.tick(bt.Sequence)
}

// Selector ticks children in order until one succeeds or is running.
// An empty Selector fails.
type Selector struct {
	Composite
}

// NewSelector creates a Selector over children.
func NewSelector(name string, children ...Node) *Selector {
	s := &Selector{Composite: Composite{Base: NewBase(name)}}
	s.adopt(s, children)
	return s
}

// Evaluate implements Node.
func (s *Selector) Evaluate() Status {
	return s.tick(bt.Selector)
}

// Parallel ticks every child, with no short-circuit.
//
// It fails only when every child fails, runs while any child runs, and
// succeeds otherwise. An empty Parallel succeeds.
type Parallel struct {
	Composite
}

// NewParallel creates a Parallel over children.
func NewParallel(name string, children ...Node) *Parallel {
	p := &Parallel{Composite: Composite{Base: NewBase(name)}}
	p.adopt(p, children)
	return p
}

// Evaluate implements Node.
func (p *Parallel) Evaluate() Status {
	if len(p.children) == 0 {
		return Success
	}

	var failed, running int
	for _, child := range p.children {
		switch Run(child) {
		case Failure:
			failed++
		case Running:
			running++
		}
	}

	switch {
	case failed == len(p.children):
		return Failure
	case running > 0:
		return Running
	default:
		return Success
	}
}
