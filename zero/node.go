// Package zero implements the AlphaZero-style search tree: a flat node
// arena, PUCT selection, batched-evaluation gather/apply, and a resumable
// search driver (spec.md sections 3, 4.1, 4.2, 4.5).
//
// The arena is owned exclusively by one goroutine for the duration of one
// search - unlike the teacher's mcts.Node, which carried a sync.Mutex to
// support the concurrent multi-goroutine tree walk in mcts/search.go's
// doSearch pool, this Node has no locking: spec.md section 5 assigns one
// tree per generator and forbids cross-thread access to the arena.
package zero

import "github.com/alphazero/engine/board"

// Values is the WDL + scalar-value + moves-left estimate a node carries,
// always stored from the perspective of the player to move at that node.
type Values struct {
	Value     float32 // scalar in [-1, 1]
	Win       float32
	Draw      float32
	Loss      float32
	MovesLeft float32
}

// Flip returns v from the opposing player's perspective, i.e. one hop up
// or down the tree.
func (v Values) Flip() Values {
	return Values{
		Value:     -v.Value,
		Win:       v.Loss,
		Draw:      v.Draw,
		Loss:      v.Win,
		MovesLeft: v.MovesLeft + 1,
	}
}

func (a Values) add(b Values) Values {
	return Values{
		Value:     a.Value + b.Value,
		Win:       a.Win + b.Win,
		Draw:      a.Draw + b.Draw,
		Loss:      a.Loss + b.Loss,
		MovesLeft: a.MovesLeft + b.MovesLeft,
	}
}

func (a Values) scale(f float32) Values {
	return Values{
		Value:     a.Value * f,
		Win:       a.Win * f,
		Draw:      a.Draw * f,
		Loss:      a.Loss * f,
		MovesLeft: a.MovesLeft * f,
	}
}

// ValuesFromOutcome converts a terminal board.Outcome into Values from the
// perspective of `mover`, the player who was to move at the terminal node.
func ValuesFromOutcome(o board.Outcome, mover board.Player) Values {
	switch o {
	case board.Draw:
		return Values{Win: 0, Draw: 1, Loss: 0}
	case board.WinX:
		if mover == board.PlayerX {
			return Values{Value: 1, Win: 1}
		}
		return Values{Value: -1, Loss: 1}
	case board.WinO:
		if mover == board.PlayerO {
			return Values{Value: 1, Win: 1}
		}
		return Values{Value: -1, Loss: 1}
	default:
		panic("zero: ValuesFromOutcome called on a non-terminal outcome")
	}
}

// ChildRange is the contiguous [Start, Start+Length) slice of the arena
// holding one node's children. Length is a byte, so a node holds at most
// 255 children (Tree.Expand panics beyond that), and Start is never
// zero since the root (index 0) can never be anyone's child - together
// they would pack into 32 bits, noted here in case node size ever matters.
type ChildRange struct {
	Start  int32
	Length uint8
}

// Empty reports whether the range holds no children (node not yet expanded).
func (r ChildRange) Empty() bool { return r.Length == 0 }

// Node is one entry in the arena (spec.md section 3 "Node").
type Node struct {
	Parent   int32 // -1 for the root
	LastMove board.Move

	Children    ChildRange
	hasChildren bool

	NetValues  Values
	hasNet     bool
	NetPolicy  float32 // prior assigned by the parent's policy output

	CompleteVisits uint32
	VirtualVisits  uint32
	SumValues      Values
}

// HasChildren reports whether this node has been expanded.
func (n *Node) HasChildren() bool { return n.hasChildren }

// HasNetValues reports whether this node has received a network evaluation.
func (n *Node) HasNetValues() bool { return n.hasNet }

// TotalVisits is complete_visits + virtual_visits, the PUCT denominator
// base (spec.md section 3).
func (n *Node) TotalVisits() uint32 { return n.CompleteVisits + n.VirtualVisits }

// Mean returns the running mean of SumValues/CompleteVisits, from the
// perspective of the player to move at this node. It returns zero Values
// when CompleteVisits is 0.
func (n *Node) Mean() Values {
	if n.CompleteVisits == 0 {
		return Values{}
	}
	return n.SumValues.scale(1 / float32(n.CompleteVisits))
}
