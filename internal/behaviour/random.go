package behaviour

import (
	"math/rand"

	bt "github.com/joeycumines/go-behaviortree"
)

// RandomSequence behaves like Sequence over a fresh random permutation of
// its children on every Evaluate.
type RandomSequence struct {
	Composite
	shuffled bt.Tick
}

// NewRandomSequence creates a RandomSequence drawing from src.
// A nil src uses a source seeded with 1.
func NewRandomSequence(name string, src rand.Source, children ...Node) *RandomSequence {
	s := &RandomSequence{
		Composite: Composite{Base: NewBase(name)},
		shuffled:  bt.Shuffle(bt.Sequence, orDefault(src)),
	}
	s.adopt(s, children)
	return s
}

// Evaluate implements Node.
func (s *RandomSequence) Evaluate() Status {
	return s.tick(s.shuffled)
}

// RandomSelector behaves like Selector over a fresh random permutation of
// its children on every Evaluate. Every child can be drawn first.
type RandomSelector struct {
	Composite
	shuffled bt.Tick
}

// NewRandomSelector creates a RandomSelector drawing from src.
// A nil src uses a source seeded with 1.
func NewRandomSelector(name string, src rand.Source, children ...Node) *RandomSelector {
	s := &RandomSelector{
		Composite: Composite{Base: NewBase(name)},
		shuffled:  bt.Shuffle(bt.Selector, orDefault(src)),
	}
	s.adopt(s, children)
	return s
}

// Evaluate implements Node.
func (s *RandomSelector) Evaluate() Status {
	return s.tick(s.shuffled)
}

func orDefault(src rand.Source) rand.Source {
	if src == nil {
		return rand.NewSource(1)
	}
	return src
}
