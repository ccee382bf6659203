package mapper

import (
	"github.com/alphazero/engine/board"
	"github.com/alphazero/engine/board/sttt"
)

// STTT encodes Super Tic-Tac-Toe as a [plane, 9, 9] tensor (each sub-board
// flattened 3x3 into one quadrant of a conceptual 9x9 grid is overkill for
// a distillation this size; instead planes are [big-board, 3, 3] stacked),
// generalizing mapper.TTT's stone-plane idiom per sub-board plus a
// constrained-board plane for the next_big restriction.
type STTT struct{}

var _ Mapper = STTT{}

// Channels: mover stones, opponent stones (one bit per cell within its
// sub-board), a bias plane, and a "legal sub-board" plane marking which of
// the 9 sub-boards accepts the next move.
func (STTT) InputFullShape() []int { return []int{4, sttt.Dim, sttt.CellsPer} }
func (STTT) InputFullSize() int    { return product(STTT{}.InputFullShape()) }
func (STTT) PolicyShape() []int    { return []int{sttt.Dim * sttt.CellsPer} }
func (STTT) PolicySize() int       { return sttt.Dim * sttt.CellsPer }

func (STTT) EncodeInput(b board.Board, buf []float32) []float32 {
	sb := b.(*sttt.Board)
	size := STTT{}.InputFullSize()
	start := len(buf)
	buf = append(buf, make([]float32, size)...)
	out := buf[start:]

	plane := func(ch, big, small int) int {
		return ch*sttt.Dim*sttt.CellsPer + big*sttt.CellsPer + small
	}

	legalBig := make(map[int]bool)
	for _, m := range b.AvailableMoves() {
		legalBig[int(m.(sttt.Move).Big)] = true
	}

	for big := 0; big < sttt.Dim; big++ {
		mine, theirs := sb.Stones(big)
		for small := 0; small < sttt.CellsPer; small++ {
			if mine&(1<<uint(small)) != 0 {
				out[plane(0, big, small)] = 1
			}
			if theirs&(1<<uint(small)) != 0 {
				out[plane(1, big, small)] = 1
			}
			out[plane(2, big, small)] = 1 // bias
			if legalBig[big] {
				out[plane(3, big, small)] = 1
			}
		}
	}
	return buf
}

func moveIndex(m sttt.Move) int {
	return int(m.Big)*sttt.CellsPer + int(m.Small)
}

func (STTT) MoveToIndex(_ board.Board, m board.Move) int {
	return moveIndex(m.(sttt.Move))
}

func (STTT) IndexToMove(b board.Board, index int) (board.Move, bool) {
	big, small := index/sttt.CellsPer, index%sttt.CellsPer
	want := sttt.Move{Big: uint8(big), Small: uint8(small)}
	for _, m := range b.AvailableMoves() {
		if m.(sttt.Move) == want {
			return m, true
		}
	}
	return nil, false
}
