package zero

import (
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/alphazero/engine/board"
)

// Request names a node needing network evaluation, together with the board
// reached at that node (spec.md section 3 "Search request / response").
type Request struct {
	Node  int32
	Board board.Board
}

// Response carries a network evaluation back for a previously issued
// Request. Policy is ordered to match the board's legal moves exactly as
// returned by AvailableMoves on the request's own board (any symmetry the
// evaluator applied has already been undone).
type Response struct {
	Node      int32
	Values    Values
	Policy    []float32
}

// Gather walks the tree from the root by PUCT selection (spec.md section
// 4.2 "Gather phase"), grounded directly on
// original_source/kz-core/src/zero/step.rs's zero_step_gather. It returns
// a Request when it reaches a node that needs expansion/evaluation, or nil
// if it hit a terminal node (whose value has already been backpropagated
// inline).
func Gather(t *Tree, weights Weights, fpu FPUMode, rng *rand.Rand) *Request {
	curr := int32(0)
	currBoard := t.RootBoard

	for {
		node := t.Node(curr)
		node.VirtualVisits++

		if currBoard.IsDone() {
			values := ValuesFromOutcome(currBoard.Outcome(), currBoard.NextPlayer())
			propagate(t, curr, values)
			return nil
		}

		if !node.HasChildren() {
			moves := currBoard.AvailableMoves()
			t.Expand(curr, moves, 1.0)
			return &Request{Node: curr, Board: currBoard}
		}

		selected := selectChild(t, curr, weights, fpu, rng)
		child := t.Node(selected)
		curr = selected
		currBoard = currBoard.Play(child.LastMove)
	}
}

// selectChild picks the child of `parent` maximizing the PUCT formula
// (spec.md section 4.2 step 4). Ties are broken by lowest child index.
func selectChild(t *Tree, parent int32, weights Weights, fpu FPUMode, rng *rand.Rand) int32 {
	p := t.Node(parent)
	parentTotal := p.TotalVisits()
	sqrtParent := math32.Sqrt(float32(parentTotal))
	parentML := p.Mean().MovesLeft

	best := int32(-1)
	var bestScore float32
	children := t.ChildIndices(parent)
	for _, ci := range children {
		c := t.Node(ci)
		var q float32
		if c.CompleteVisits > 0 {
			q = -c.Mean().Value // flip into the parent's perspective
		} else {
			q = fpu.valueFor(p)
		}

		totalChild := float32(c.TotalVisits())
		exploration := weights.ExplorationWeight * c.NetPolicy * sqrtParent / (1 + totalChild)
		score := q + exploration
		if c.CompleteVisits > 0 {
			score += weights.movesLeftTerm(parentML, c.Mean().MovesLeft)
		}

		if best == -1 || score > bestScore {
			best = ci
			bestScore = score
		}
	}
	if best == -1 {
		panic("zero: selectChild called on a childless node")
	}
	_ = rng // reserved for randomized tie-break, unused: ties broken by index per spec.md
	return best
}

// propagate pushes `values` (from the perspective of the player to move at
// `node`) up to the root, flipping perspective at every hop (spec.md
// section 4.2 "Apply phase" step 3, also used directly for terminal hits
// in Gather). Grounded on
// original_source/kz-core/src/zero/step.rs's tree_propagate_values.
func propagate(t *Tree, node int32, values Values) {
	curr := node
	for {
		n := t.Node(curr)
		if n.VirtualVisits == 0 {
			panic("zero: propagate called on a node with no outstanding virtual visit")
		}
		n.CompleteVisits++
		n.VirtualVisits--
		n.SumValues = n.SumValues.add(values)

		if n.Parent == noParent {
			return
		}
		values = values.Flip()
		curr = n.Parent
	}
}

// Apply applies a network response to the node it targets (spec.md section
// 4.2 "Apply phase"). It panics on the programmer-invariant violations
// spec.md section 7 names: re-applying an already-evaluated node, or a
// policy length mismatch against the node's children.
func Apply(t *Tree, resp Response) {
	n := t.Node(resp.Node)
	if n.HasNetValues() {
		panic(fmt.Sprintf("zero: node %d was already evaluated by the network", resp.Node))
	}
	if int(n.Children.Length) != len(resp.Policy) {
		panic(fmt.Sprintf("zero: node %d expected %d policy entries, got %d",
			resp.Node, n.Children.Length, len(resp.Policy)))
	}

	n.NetValues = resp.Values
	n.hasNet = true

	children := t.ChildIndices(resp.Node)
	for i, ci := range children {
		t.Node(ci).NetPolicy = resp.Policy[i]
	}

	propagate(t, resp.Node, resp.Values)
}
