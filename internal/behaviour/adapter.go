package behaviour

import (
	"errors"

	bt "github.com/joeycumines/go-behaviortree"
	"go.uber.org/zap"

	"github.com/Faultbox/pitrunner/internal/logger"
)

// ErrNilBTNode is logged when a bridged go-behaviortree node is nil.
var ErrNilBTNode = errors.New("behaviour: nil go-behaviortree node")

// ToBT exposes n as a go-behaviortree node. The node is evaluated through
// Run, so its status is still recorded.
func ToBT(n Node) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		return Run(n), nil
	})
}

// BTNode wraps a go-behaviortree node as a Node. A tick error is logged and
// reported as Failure.
type BTNode struct {
	Base
	node bt.Node
	log  *zap.Logger
}

// FromBT wraps node.
func FromBT(name string, node bt.Node) *BTNode {
	return &BTNode{Base: NewBase(name), node: node, log: logger.Named(nil, "behaviour")}
}

// Evaluate implements Node.
func (b *BTNode) Evaluate() Status {
	if b.node == nil {
		b.log.Warn("bridged tick failed", zap.String("node", Path(b)), zap.Error(ErrNilBTNode))
		return Failure
	}
	status, err := b.node.Tick()
	if err != nil {
		b.log.Warn("bridged tick failed", zap.String("node", Path(b)), zap.Error(err))
		return Failure
	}
	return status
}

// Invert swaps Success and Failure of child. Running passes through.
//
// The result is a bridged node; child is re-parented onto it.
func Invert(name string, child Node) *BTNode {
	inv := FromBT(name, bt.New(bt.Not(bt.Sequence), ToBT(child)))
	child.attach(inv)
	return inv
}
