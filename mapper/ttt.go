package mapper

import (
	"github.com/alphazero/engine/board"
	"github.com/alphazero/engine/board/ttt"
)

// TTT is the identity mapper for tic-tac-toe: nine cells, two one-hot
// stone planes (mover, opponent) plus a bias plane, policy indexed by cell
// directly. Grounded on the teacher's game/encoding.go InputEncoder (a flat
// board-plus-player-layer vector), generalized to per-player planes since
// ttt has no piece values to encode.
type TTT struct{}

var _ Mapper = TTT{}

func (TTT) InputFullShape() []int { return []int{3, 3, 3} } // [plane, rank, file]
func (TTT) InputFullSize() int    { return product(TTT{}.InputFullShape()) }
func (TTT) PolicyShape() []int    { return []int{ttt.Size} }
func (TTT) PolicySize() int       { return ttt.Size }

func (TTT) EncodeInput(b board.Board, out []float32) []float32 {
	tb := b.(*ttt.Board)
	mine, theirs := tb.Stones()

	start := len(out)
	out = append(out, make([]float32, TTT{}.InputFullSize())...)
	buf := out[start:]
	for cell := 0; cell < ttt.Size; cell++ {
		if mine&(1<<uint(cell)) != 0 {
			buf[cell] = 1
		}
		if theirs&(1<<uint(cell)) != 0 {
			buf[ttt.Size+cell] = 1
		}
		buf[2*ttt.Size+cell] = 1
	}
	return out
}

func (TTT) MoveToIndex(_ board.Board, m board.Move) int {
	return m.(ttt.Move).Cell()
}

func (TTT) IndexToMove(b board.Board, index int) (board.Move, bool) {
	if index < 0 || index >= ttt.Size {
		return nil, false
	}
	for _, m := range b.AvailableMoves() {
		if m.(ttt.Move).Cell() == index {
			return m, true
		}
	}
	return nil, false
}
