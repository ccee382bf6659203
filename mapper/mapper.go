// Package mapper implements the bridge between board.Board and the
// fixed-shape tensor inputs/outputs a network consumes and produces
// (spec.md section 3 "Mapper contract", section 4.3 symmetry handling).
package mapper

import "github.com/alphazero/engine/board"

// Mapper is the contract between a game and the network. Implementations
// must guarantee InputFullSize == product(InputFullShape) and
// PolicySize == product(PolicyShape).
type Mapper interface {
	// InputFullShape is the fixed tensor shape for one encoded board.
	InputFullShape() []int
	// InputFullSize is the flattened length of InputFullShape.
	InputFullSize() int

	// PolicyShape is the fixed tensor shape for one policy vector.
	PolicyShape() []int
	// PolicySize is the flattened length of PolicyShape.
	PolicySize() int

	// EncodeInput appends the board's input tensor (row-major) to out and
	// returns the extended slice.
	EncodeInput(b board.Board, out []float32) []float32

	// MoveToIndex returns the policy-vector slot for a legal move of b.
	MoveToIndex(b board.Board, m board.Move) int

	// IndexToMove returns the move at a policy slot, or (nil, false) if the
	// slot does not correspond to any move on b (e.g. a promotion slot for
	// a piece that isn't a pawn on the last rank).
	IndexToMove(b board.Board, index int) (board.Move, bool)
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
