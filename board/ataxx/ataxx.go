// Package ataxx implements the Ataxx board game (configurable square size)
// on top of board.Board: cloning into an adjacent cell or jumping from a
// cell two squares away, then converting every adjacent enemy stone.
// Bitboard representation follows the same per-player-uint64-mask idiom
// board/ttt and board/sttt use, generalized from a fixed 9-cell mask to a
// configurable size*size one (sizes up to 8 fit a uint64).
package ataxx

import (
	"fmt"
	"strings"

	"github.com/alphazero/engine/board"
)

// Move is either a placement at To (clone, when From == NoSquare) or a
// jump from From to To.
type Move struct {
	From, To int // cell indices, row-major; From == NoSquare for a clone
	Pass      bool
}

const NoSquare = -1

func (m Move) String() string {
	if m.Pass {
		return "pass"
	}
	if m.From == NoSquare {
		return fmt.Sprintf("clone(%d)", m.To)
	}
	return fmt.Sprintf("jump(%d->%d)", m.From, m.To)
}

// Board is one Ataxx position on a Size x Size grid.
type Board struct {
	Size      int
	bitboards [2]uint64 // index 0 = X, 1 = O
	blocked   uint64     // cells that can never be occupied
	turn      board.Player
	outcome   board.Outcome
	done      bool
}

func idx(p board.Player) int {
	if p == board.PlayerX {
		return 0
	}
	return 1
}

// New returns the standard opening position for a Size x Size board: each
// player owns two diagonally opposite corners.
func New(size int) *Board {
	b := &Board{Size: size, turn: board.PlayerX}
	last := size - 1
	b.bitboards[0] |= 1 << uint(b.cell(0, 0))
	b.bitboards[0] |= 1 << uint(b.cell(last, last))
	b.bitboards[1] |= 1 << uint(b.cell(0, last))
	b.bitboards[1] |= 1 << uint(b.cell(last, 0))
	return b
}

func (b *Board) cell(r, c int) int { return r*b.Size + c }
func (b *Board) rc(cell int) (r, c int) { return cell / b.Size, cell % b.Size }

func (b *Board) occupied() uint64 { return b.bitboards[0] | b.bitboards[1] | b.blocked }

func (b *Board) NextPlayer() board.Player { return b.turn }
func (b *Board) IsDone() bool             { return b.done }
func (b *Board) Outcome() board.Outcome   { return b.outcome }

// AvailableMoves returns every clone/jump from the mover's stones into an
// empty cell within Chebyshev distance 2, plus a single Pass move if the
// mover has no other legal move but the game is not yet decided.
func (b *Board) AvailableMoves() []board.Move {
	if b.done {
		return nil
	}
	mine := b.bitboards[idx(b.turn)]
	empty := ^b.occupied()

	var moves []board.Move
	for from := 0; from < b.Size*b.Size; from++ {
		if mine&(1<<uint(from)) == 0 {
			continue
		}
		fr, fc := b.rc(from)
		for dr := -2; dr <= 2; dr++ {
			for dc := -2; dc <= 2; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				tr, tc := fr+dr, fc+dc
				if tr < 0 || tr >= b.Size || tc < 0 || tc >= b.Size {
					continue
				}
				to := b.cell(tr, tc)
				if empty&(1<<uint(to)) == 0 {
					continue
				}
				dist := chebyshev(dr, dc)
				if dist == 1 {
					moves = append(moves, Move{From: NoSquare, To: to})
				} else if dist == 2 {
					moves = append(moves, Move{From: from, To: to})
				}
			}
		}
	}
	if len(moves) == 0 {
		moves = append(moves, Move{Pass: true})
	}
	return moves
}

func chebyshev(dr, dc int) int {
	a, b := dr, dc
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}

func (b *Board) Play(m board.Move) board.Board {
	mv := m.(Move)
	nb := *b
	mine := idx(b.turn)
	opp := idx(b.turn.Other())

	if !mv.Pass {
		if mv.From != NoSquare {
			nb.bitboards[mine] &^= 1 << uint(mv.From)
		}
		nb.bitboards[mine] |= 1 << uint(mv.To)

		tr, tc := b.rc(mv.To)
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				ar, ac := tr+dr, tc+dc
				if ar < 0 || ar >= b.Size || ac < 0 || ac >= b.Size {
					continue
				}
				adj := b.cell(ar, ac)
				if nb.bitboards[opp]&(1<<uint(adj)) != 0 {
					nb.bitboards[opp] &^= 1 << uint(adj)
					nb.bitboards[mine] |= 1 << uint(adj)
				}
			}
		}
	}

	nb.turn = b.turn.Other()
	nb.evaluateTermination()
	return &nb
}

func (b *Board) evaluateTermination() {
	xCount := popcount(b.bitboards[0])
	oCount := popcount(b.bitboards[1])
	full := popcount(b.occupied()) == b.Size*b.Size

	noMovesX := !hasAnyMove(b, board.PlayerX)
	noMovesO := !hasAnyMove(b, board.PlayerO)

	if xCount == 0 {
		b.done, b.outcome = true, board.WinO
		return
	}
	if oCount == 0 {
		b.done, b.outcome = true, board.WinX
		return
	}
	if full || (noMovesX && noMovesO) {
		b.done = true
		switch {
		case xCount > oCount:
			b.outcome = board.WinX
		case oCount > xCount:
			b.outcome = board.WinO
		default:
			b.outcome = board.Draw
		}
	}
}

// hasAnyMove reports whether `p` has a legal clone/jump (ignoring the Pass
// fallback AvailableMoves would otherwise synthesize).
func hasAnyMove(b *Board, p board.Player) bool {
	mine := b.bitboards[idx(p)]
	empty := ^b.occupied()
	for from := 0; from < b.Size*b.Size; from++ {
		if mine&(1<<uint(from)) == 0 {
			continue
		}
		fr, fc := b.rc(from)
		for dr := -2; dr <= 2; dr++ {
			for dc := -2; dc <= 2; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				tr, tc := fr+dr, fc+dc
				if tr < 0 || tr >= b.Size || tc < 0 || tc >= b.Size {
					continue
				}
				if empty&(1<<uint(b.cell(tr, tc))) != 0 {
					return true
				}
			}
		}
	}
	return false
}

func popcount(x uint64) int {
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}

func (b *Board) Clone() board.Board {
	nb := *b
	return &nb
}

// Symmetries returns the dihedral group of the square board: identity,
// three rotations and four reflections - every one of them preserves
// Ataxx's adjacency-based rules since the board itself is a plain square
// grid with no asymmetric blocked cells in this implementation.
func (b *Board) Symmetries() []board.Symmetry {
	return []board.Symmetry{0, 1, 2, 3, 4, 5, 6, 7}
}

// mapCell rotates/reflects a (row, col) pair within a size x size grid.
func mapCell(s board.Symmetry, size, r, c int) (int, int) {
	last := size - 1
	switch s {
	case 0:
		return r, c
	case 1: // rotate 90
		return c, last - r
	case 2: // rotate 180
		return last - r, last - c
	case 3: // rotate 270
		return last - c, r
	case 4: // flip horizontal (mirror columns)
		return r, last - c
	case 5: // flip vertical (mirror rows)
		return last - r, c
	case 6: // transpose
		return c, r
	default: // anti-transpose
		return last - c, last - r
	}
}

func (b *Board) Map(s board.Symmetry) board.Board {
	nb := &Board{Size: b.Size, turn: b.turn, done: b.done, outcome: b.outcome, blocked: 0}
	for cell := 0; cell < b.Size*b.Size; cell++ {
		r, c := b.rc(cell)
		nr, nc := mapCell(s, b.Size, r, c)
		dst := nb.cell(nr, nc)
		for p := 0; p < 2; p++ {
			if b.bitboards[p]&(1<<uint(cell)) != 0 {
				nb.bitboards[p] |= 1 << uint(dst)
			}
		}
	}
	return nb
}

func (b *Board) MapMove(s board.Symmetry, m board.Move) board.Move {
	mv := m.(Move)
	if mv.Pass {
		return mv
	}
	to := mv.To
	tr, tc := b.rc(to)
	ntr, ntc := mapCell(s, b.Size, tr, tc)
	out := Move{To: b.cell(ntr, ntc), From: NoSquare}
	if mv.From != NoSquare {
		fr, fc := b.rc(mv.From)
		nfr, nfc := mapCell(s, b.Size, fr, fc)
		out.From = b.cell(nfr, nfc)
	}
	return out
}

func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.Size; r++ {
		for c := 0; c < b.Size; c++ {
			cell := b.cell(r, c)
			switch {
			case b.bitboards[0]&(1<<uint(cell)) != 0:
				sb.WriteByte('X')
			case b.bitboards[1]&(1<<uint(cell)) != 0:
				sb.WriteByte('O')
			case b.blocked&(1<<uint(cell)) != 0:
				sb.WriteByte('#')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Stones returns the mover's and opponent's stone bitboard, in absolute
// cell numbering.
func (b *Board) Stones() (mine, theirs uint64) {
	return b.bitboards[idx(b.turn)], b.bitboards[idx(b.turn.Other())]
}
