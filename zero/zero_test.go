package zero

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphazero/engine/board/ttt"
)

// uniformEval answers every request of a batch with a zero value and a
// uniform policy, mirroring a dummy network's shape without pulling
// in package network (would be an import cycle: network imports zero).
func uniformEval(reqs []Request) []Response {
	out := make([]Response, len(reqs))
	for i, r := range reqs {
		n := len(r.Board.AvailableMoves())
		policy := make([]float32, n)
		for j := range policy {
			policy[j] = 1 / float32(n)
		}
		out[i] = Response{Node: r.Node, Values: Values{}, Policy: policy}
	}
	return out
}

// scenario A (spec.md section 8): X to move, "X.O|.X.|O.." row-major.
// The forced completion of the X diagonal must end up the most-visited
// root child.
func TestSearchFindsForcedWin(t *testing.T) {
	b, err := ttt.Parse("X.O.X.O..")
	require.NoError(t, err)

	tree := NewTree(b, 32)
	rng := rand.New(rand.NewSource(1))
	state := NewState(tree, Weights{ExplorationWeight: 2.0}, ParentFPU(0), 1, 200, rng)
	state.Run(EvaluatorFunc(uniformEval), nil)

	best := tree.BestChild(0)
	require.NotEqual(t, int32(-1), best)
	move := tree.Node(best).LastMove.(ttt.Move)
	assert.Equal(t, 8, move.Cell(), "expected the forced diagonal completion at cell 8")

	root := tree.Root()
	assert.GreaterOrEqual(t, root.Mean().Value, float32(0.9))
}

// EvaluatorFunc adapts a plain function to the Evaluator interface, the
// same func-as-interface idiom used throughout this package's callers.
type EvaluatorFunc func(reqs []Request) []Response

func (f EvaluatorFunc) EvaluateBatch(reqs []Request) []Response { return f(reqs) }

// Invariant 1 & 2 (spec.md section 8): visit accounting and virtual-visit
// drain.
func TestVisitAccountingInvariants(t *testing.T) {
	b := ttt.New()
	tree := NewTree(b, 32)
	rng := rand.New(rand.NewSource(2))
	const target = 50
	state := NewState(tree, DefaultWeights(), ParentFPU(0), 4, target, rng)
	state.Run(EvaluatorFunc(uniformEval), nil)

	root := tree.Root()
	assert.Equal(t, uint32(target), root.CompleteVisits)
	assert.Equal(t, uint32(0), root.VirtualVisits)

	var childSum uint32
	for _, ci := range tree.ChildIndices(0) {
		childSum += tree.Node(ci).CompleteVisits
		assert.Equal(t, uint32(0), tree.Node(ci).VirtualVisits)
	}
	assert.Equal(t, root.CompleteVisits-1, childSum)
}

// Invariant 3: a node's net policy sums to ~1 once applied.
func TestAppliedPolicySumsToOne(t *testing.T) {
	b := ttt.New()
	tree := NewTree(b, 16)
	req := Gather(tree, DefaultWeights(), ParentFPU(0), rand.New(rand.NewSource(3)))
	require.NotNil(t, req)
	resp := uniformEval([]Request{*req})[0]
	Apply(tree, resp)

	var sum float32
	for _, ci := range tree.ChildIndices(req.Node) {
		sum += tree.Node(ci).NetPolicy
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
}

// Scenario F: after a full search of N visits at batch size B, complete
// visits equal N exactly.
func TestVirtualVisitDrainExact(t *testing.T) {
	b := ttt.New()
	tree := NewTree(b, 32)
	const n, batch = 37, 4
	state := NewState(tree, DefaultWeights(), ParentFPU(0), batch, n, rand.New(rand.NewSource(4)))
	state.Run(EvaluatorFunc(uniformEval), nil)
	assert.Equal(t, uint32(n), tree.Root().CompleteVisits)
}

// Scenario D: reusing a subtree plus the remaining visits should agree
// with a fresh tree built to the same total visit count.
func TestSubtreeReuseAgreesWithFreshTree(t *testing.T) {
	b := ttt.New()
	weights := DefaultWeights()

	tree := NewTree(b, 64)
	rng1 := rand.New(rand.NewSource(5))
	NewState(tree, weights, ParentFPU(0), 1, 500, rng1).Run(EvaluatorFunc(uniformEval), nil)
	topMove := tree.BestChild(0)
	reused := tree.Node(topMove).CompleteVisits

	reuse := KeepChild(tree, topMove, 64)
	require.NotNil(t, reuse.Tree)
	rng2 := rand.New(rand.NewSource(6))
	remaining := uint32(500) - reused
	NewState(reuse.Tree, weights, ParentFPU(0), 1, reused+remaining, rng2).Run(EvaluatorFunc(uniformEval), nil)

	next := b.Play(tree.Node(topMove).LastMove)
	freshTree := NewTree(next, 64)
	rng3 := rand.New(rand.NewSource(7))
	NewState(freshTree, weights, ParentFPU(0), 1, 500, rng3).Run(EvaluatorFunc(uniformEval), nil)

	reusedBestMove := reuse.Tree.Node(reuse.Tree.BestChild(0)).LastMove
	freshBestMove := freshTree.Node(freshTree.BestChild(0)).LastMove
	assert.Equal(t, freshBestMove, reusedBestMove)
	assert.InDelta(t, freshTree.Root().Mean().Value, reuse.Tree.Root().Mean().Value, 0.1)
}
