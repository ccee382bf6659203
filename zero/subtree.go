package zero

import "github.com/alphazero/engine/board"

// Reuse is the outcome of requesting a new tree rooted at a specific child
// of an old one (spec.md section 4.1 "Subtree reuse", section 7 "Terminal-
// board subtree-reuse request"). Exactly one of Tree or Done is set.
type Reuse struct {
	Tree *Tree
	Done *DoneResult
}

// DoneResult reports that the requested child is a terminal board, so no
// subtree exists to reuse - this is a distinct, expected outcome, not an
// error (spec.md section 7).
type DoneResult struct {
	Board   board.Board
	Outcome board.Outcome
}

// KeepChild builds a fresh tree rooted at child `childIdx` of `old`,
// breadth-first copying the retained subtree and rewriting child ranges to
// point at the new arena (spec.md section 4.1). Grounded on the teacher's
// mcts/search.go newRootState/cleanup (walk the subtree, re-root,
// invalidate the rest), adapted from in-place free-list invalidation to a
// fresh-arena BFS copy so indices stay append-only within the new tree.
func KeepChild(old *Tree, childIdx int32, reserve int) Reuse {
	oldRoot := old.Node(childIdx)
	childBoard := old.RootBoard.Play(oldRoot.LastMove)

	if childBoard.IsDone() {
		return Reuse{Done: &DoneResult{Board: childBoard, Outcome: childBoard.Outcome()}}
	}

	nt := NewTree(childBoard, reserve)
	// nt already has a fresh root node at index 0; copy the retained
	// subtree's data onto it and BFS-copy its descendants.
	copyNodeData(nt.Node(0), oldRoot)

	type queued struct {
		oldIdx int32
		newIdx int32
	}
	var queue []queued
	if oldRoot.HasChildren() {
		queue = append(queue, queued{oldIdx: childIdx, newIdx: 0})
	}

	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]

		oldChildren := old.ChildIndices(q.oldIdx)
		moves := make([]board.Move, len(oldChildren))
		for i, oci := range oldChildren {
			moves[i] = old.Node(oci).LastMove
		}
		newRange := nt.Expand(q.newIdx, moves, 0)
		for i, oci := range oldChildren {
			newIdx := newRange.Start + int32(i)
			copyNodeData(nt.Node(newIdx), old.Node(oci))
			if old.Node(oci).HasChildren() {
				queue = append(queue, queued{oldIdx: oci, newIdx: newIdx})
			}
		}
	}

	return Reuse{Tree: nt}
}

// copyNodeData copies visit/value/policy state from src onto dst, leaving
// dst's Parent/LastMove/Children (already set by Expand/NewTree) untouched.
func copyNodeData(dst, src *Node) {
	dst.NetValues = src.NetValues
	dst.hasNet = src.hasNet
	dst.NetPolicy = src.NetPolicy
	dst.CompleteVisits = src.CompleteVisits
	dst.VirtualVisits = 0 // a reused tree starts with no in-flight selections
	dst.SumValues = src.SumValues
}
