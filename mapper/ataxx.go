package mapper

import (
	"github.com/alphazero/engine/board"
	"github.com/alphazero/engine/board/ataxx"
)

// Ataxx encodes an Ataxx board as [3, size, size] (mover stones, opponent
// stones, bias) and its policy as a flat [size*size*size*size + 1] vector:
// one slot per (from, to) jump pair (clones are addressed as from==to),
// plus one trailing slot for Pass. Grounded on mapper.TTT's stone-plane
// convention, extended to a two-endpoint move the way board/ataxx.Move
// itself is two-endpoint.
type Ataxx struct {
	Size int
}

var _ Mapper = Ataxx{}

func (a Ataxx) InputFullShape() []int { return []int{3, a.Size, a.Size} }
func (a Ataxx) InputFullSize() int    { return product(a.InputFullShape()) }

func (a Ataxx) PolicyShape() []int { return []int{a.Size*a.Size*a.Size*a.Size + 1} }
func (a Ataxx) PolicySize() int    { return a.Size*a.Size*a.Size*a.Size + 1 }

func (a Ataxx) EncodeInput(b board.Board, buf []float32) []float32 {
	ab := b.(*ataxx.Board)
	mine, theirs := ab.Stones()
	size := a.InputFullSize()

	start := len(buf)
	buf = append(buf, make([]float32, size)...)
	out := buf[start:]

	cells := a.Size * a.Size
	for cell := 0; cell < cells; cell++ {
		if mine&(1<<uint(cell)) != 0 {
			out[cell] = 1
		}
		if theirs&(1<<uint(cell)) != 0 {
			out[cells+cell] = 1
		}
		out[2*cells+cell] = 1
	}
	return buf
}

func (a Ataxx) moveIndex(m ataxx.Move) int {
	cells := a.Size * a.Size
	if m.Pass {
		return cells * cells
	}
	from := m.From
	if from == ataxx.NoSquare {
		from = m.To // clone: from == to addresses the diagonal slot
	}
	return from*cells + m.To
}

func (a Ataxx) MoveToIndex(_ board.Board, m board.Move) int {
	return a.moveIndex(m.(ataxx.Move))
}

func (a Ataxx) IndexToMove(b board.Board, index int) (board.Move, bool) {
	cells := a.Size * a.Size
	if index == cells*cells {
		for _, m := range b.AvailableMoves() {
			if m.(ataxx.Move).Pass {
				return m, true
			}
		}
		return nil, false
	}
	from, to := index/cells, index%cells
	for _, m := range b.AvailableMoves() {
		mv := m.(ataxx.Move)
		if mv.Pass {
			continue
		}
		mvFrom := mv.From
		if mvFrom == ataxx.NoSquare {
			mvFrom = mv.To
		}
		if mvFrom == from && mv.To == to {
			return m, true
		}
	}
	return nil, false
}
