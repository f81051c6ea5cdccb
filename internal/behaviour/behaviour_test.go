package behaviour

import (
	"errors"
	"math/rand"
	"testing"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	calls int
}

func (c *counter) leaf(name string, s Status) *Action {
	return NewAction(name, func() Status {
		c.calls++
		return s
	})
}

func TestSequence(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
		calls    int
	}{
		{"empty", nil, Success, 0},
		{"all succeed", []Status{Success, Success, Success}, Success, 3},
		{"stops at failure", []Status{Success, Failure, Success}, Failure, 2},
		{"stops at running", []Status{Running, Success}, Running, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &counter{}
			var children []Node
			for _, s := range tt.statuses {
				children = append(children, c.leaf("leaf", s))
			}
			seq := NewSequence("seq", children...)
			assert.Equal(t, tt.want, Run(seq))
			assert.Equal(t, tt.calls, c.calls)
			assert.Equal(t, tt.want, seq.Status())
		})
	}
}

func TestSelector(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
		calls    int
	}{
		{"empty", nil, Failure, 0},
		{"all fail", []Status{Failure, Failure}, Failure, 2},
		{"stops at success", []Status{Failure, Success, Failure}, Success, 2},
		{"stops at running", []Status{Running, Success}, Running, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &counter{}
			var children []Node
			for _, s := range tt.statuses {
				children = append(children, c.leaf("leaf", s))
			}
			assert.Equal(t, tt.want, Run(NewSelector("sel", children...)))
			assert.Equal(t, tt.calls, c.calls)
		})
	}
}

func TestParallel(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, Success},
		{"all fail", []Status{Failure, Failure}, Failure},
		{"one running", []Status{Failure, Running, Success}, Running},
		{"mixed success", []Status{Failure, Success}, Success},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &counter{}
			var children []Node
			for _, s := range tt.statuses {
				children = append(children, c.leaf("leaf", s))
			}
			assert.Equal(t, tt.want, Run(NewParallel("par", children...)))
			assert.Equal(t, len(tt.statuses), c.calls, "parallel must tick every child")
		})
	}
}

func TestCondition(t *testing.T) {
	flag := false
	cond := NewCondition("flag", func() bool { return flag })
	assert.Equal(t, Failure, Run(cond))
	flag = true
	assert.Equal(t, Success, Run(cond))
}

func TestInvert(t *testing.T) {
	for in, want := range map[Status]Status{
		Success: Failure,
		Failure: Success,
		Running: Running,
	} {
		child := NewAction("child", func() Status { return in })
		inv := Invert("not", child)
		assert.Equal(t, want, Run(inv), "invert %v", in)
		assert.Equal(t, in, child.Status())
		assert.Same(t, Node(inv), child.Parent())
	}
}

func TestFromBT_ErrorIsFailure(t *testing.T) {
	node := bt.New(func([]bt.Node) (bt.Status, error) {
		return bt.Success, errors.New("boom")
	})
	assert.Equal(t, Failure, Run(FromBT("broken", node)))
	assert.Equal(t, Failure, Run(FromBT("nil", nil)))
}

func TestToBT_InsideLibraryComposite(t *testing.T) {
	a := NewAction("a", func() Status { return Failure })
	b := NewAction("b", func() Status { return Success })

	status, err := bt.New(bt.Selector, ToBT(a), ToBT(b)).Tick()
	require.NoError(t, err)
	assert.Equal(t, bt.Success, status)
	assert.Equal(t, Failure, a.Status())
	assert.Equal(t, Success, b.Status())
}

func TestSequence_RecordsChildStatuses(t *testing.T) {
	c := &counter{}
	a, b, skipped := c.leaf("a", Success), c.leaf("b", Failure), c.leaf("c", Success)
	seq := NewSequence("seq", a, b, skipped)

	require.Equal(t, Failure, Run(seq))
	assert.Equal(t, Success, a.Status())
	assert.Equal(t, Failure, b.Status())
	assert.Zero(t, skipped.Status(), "never ticked")

	sel := NewSelector("sel", c.leaf("x", Failure), c.leaf("y", Running))
	require.Equal(t, Running, Run(sel))
	assert.Equal(t, Running, sel.Children()[1].Status())
}

func TestParentAndPath(t *testing.T) {
	leaf := NewAction("leap", func() Status { return Success })
	seq := NewSequence("jump", leaf)
	root := NewSelector("root", seq)

	assert.Nil(t, root.Parent())
	assert.Same(t, Node(seq), leaf.Parent())
	assert.Same(t, Node(root), seq.Parent())
	assert.Equal(t, "root/jump/leap", Path(leaf))
	assert.Len(t, root.Children(), 1)
}

func TestRandomSelector_EveryChildCanRunFirst(t *testing.T) {
	first := map[string]int{}
	mk := func(name string) Node {
		return NewAction(name, func() Status {
			first[name]++
			return Success
		})
	}
	sel := NewRandomSelector("rsel", rand.New(rand.NewSource(42)), mk("a"), mk("b"), mk("c"))

	for i := 0; i < 300; i++ {
		require.Equal(t, Success, Run(sel))
	}

	// Selector stops at the first success, so each count is how often that
	// child was drawn first.
	for _, name := range []string{"a", "b", "c"} {
		assert.Greater(t, first[name], 50, "child %s drawn first too rarely", name)
	}
}

func TestRandomSelector_BareSource(t *testing.T) {
	first := map[string]int{}
	mk := func(name string) Node {
		return NewAction(name, func() Status {
			first[name]++
			return Success
		})
	}
	sel := NewRandomSelector("rsel", rand.NewSource(42), mk("a"), mk("b"), mk("c"))

	for i := 0; i < 90; i++ {
		require.Equal(t, Success, Run(sel))
	}
	assert.Len(t, first, 3)
	assert.Equal(t, []string{"a", "b", "c"}, names(sel.Children()), "shuffling leaves the declared order alone")
}

func TestRandomSequence_RunsAllChildren(t *testing.T) {
	c := &counter{}
	seq := NewRandomSequence("rseq", rand.New(rand.NewSource(7)),
		c.leaf("a", Success), c.leaf("b", Success), c.leaf("c", Success))

	assert.Equal(t, Success, Run(seq))
	assert.Equal(t, 3, c.calls)
	assert.Equal(t, Success, Run(NewRandomSequence("empty", nil)))
	assert.Equal(t, Failure, Run(NewRandomSelector("empty", nil)))
}

func TestRandomSequence_Deterministic(t *testing.T) {
	order := func(seed int64) []string {
		var got []string
		mk := func(name string) Node {
			return NewAction(name, func() Status {
				got = append(got, name)
				return Success
			})
		}
		seq := NewRandomSequence("rseq", rand.New(rand.NewSource(seed)), mk("a"), mk("b"), mk("c"), mk("d"))
		Run(seq)
		Run(seq)
		return got
	}
	assert.Equal(t, order(3), order(3))
}

func names(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}
