package zero

import "github.com/alphazero/engine/board"

// noParent is the sentinel Node.Parent value for the root.
const noParent = -1

// Tree is a root board plus its node arena (spec.md section 3 "Tree").
// The root always occupies index 0. Indices are stable for the lifetime
// of the tree: the arena only ever grows.
type Tree struct {
	RootBoard board.Board
	nodes     []Node
}

// NewTree allocates a tree with only the root node, matching the teacher's
// mcts.MCTS.New pre-sizing idiom (reserve capacity up front on the hot
// path, see mcts/tree.go's `make([]Node, 0, 12288)`).
func NewTree(root board.Board, reserve int) *Tree {
	if reserve < 1 {
		reserve = 1
	}
	t := &Tree{
		RootBoard: root,
		nodes:     make([]Node, 0, reserve),
	}
	t.nodes = append(t.nodes, Node{Parent: noParent})
	return t
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns a pointer to the node at index i. The pointer is only valid
// until the next call that grows the arena (Expand).
func (t *Tree) Node(i int32) *Node { return &t.nodes[i] }

// Root returns the root node.
func (t *Tree) Root() *Node { return &t.nodes[0] }

// Expand allocates len(moves) contiguous children for node `parent`, each
// with the given uniform prior, and records the Children range on the
// parent. It panics if the node was already expanded (spec.md section 3
// invariant: children transitions from absent to present exactly once).
func (t *Tree) Expand(parent int32, moves []board.Move, uniformPrior float32) ChildRange {
	p := &t.nodes[parent]
	if p.hasChildren {
		panic("zero: node already expanded")
	}
	if len(moves) > 255 {
		panic("zero: more than 255 legal moves, does not fit ChildRange.Length")
	}
	start := int32(len(t.nodes))
	for _, m := range moves {
		t.nodes = append(t.nodes, Node{
			Parent:    parent,
			LastMove:  m,
			NetPolicy: uniformPrior,
		})
	}
	rng := ChildRange{Start: start, Length: uint8(len(moves))}
	p.Children = rng
	p.hasChildren = true
	return rng
}

// ChildIndices returns the arena indices of node i's children.
func (t *Tree) ChildIndices(i int32) []int32 {
	n := &t.nodes[i]
	if !n.hasChildren {
		return nil
	}
	out := make([]int32, n.Children.Length)
	for k := range out {
		out[k] = n.Children.Start + int32(k)
	}
	return out
}

// BestChild returns the index of the child with the highest complete-visit
// count, breaking ties by lowest index, or -1 if the node has no children.
func (t *Tree) BestChild(i int32) int32 {
	n := &t.nodes[i]
	if !n.hasChildren {
		return -1
	}
	best := int32(-1)
	var bestVisits uint32
	for k := uint8(0); k < n.Children.Length; k++ {
		ci := n.Children.Start + int32(k)
		v := t.nodes[ci].CompleteVisits
		if best == -1 || v > bestVisits {
			best = ci
			bestVisits = v
		}
	}
	return best
}
