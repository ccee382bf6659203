// Package ttt implements classic 3x3 tic-tac-toe on top of board.Board,
// using the bitboard-per-player representation from the IlikeChooros
// go-mcts tic-tac-toe example.
package ttt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alphazero/engine/board"
)

const Size = 9

// lines are the eight winning triples, row-major index order:
// 0 1 2
// 3 4 5
// 6 7 8
var lines = [8][3]uint8{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Move is a single cell index, 0-8.
type Move uint8

func (m Move) String() string { return strconv.Itoa(int(m)) }

// Cell returns the 0-8 board index this move plays into.
func (m Move) Cell() int { return int(m) }

// Board is the tic-tac-toe position: one bitmask per player plus whose turn
// it is. Cells are numbered row-major.
type Board struct {
	bitboards [2]uint16 // index 0 = X, index 1 = O
	turn      board.Player
	outcome   board.Outcome
	done      bool
}

// New returns the empty starting position.
func New() *Board {
	return &Board{turn: board.PlayerX}
}

func idx(p board.Player) int {
	if p == board.PlayerX {
		return 0
	}
	return 1
}

func (b *Board) NextPlayer() board.Player { return b.turn }
func (b *Board) IsDone() bool             { return b.done }
func (b *Board) Outcome() board.Outcome   { return b.outcome }

func (b *Board) occupied() uint16 { return b.bitboards[0] | b.bitboards[1] }

// Stones returns the bitboard of the player to move and of their opponent,
// both in absolute (not symmetry-mapped) cell numbering.
func (b *Board) Stones() (mine, theirs uint16) {
	return b.bitboards[idx(b.turn)], b.bitboards[idx(b.turn.Other())]
}

func (b *Board) AvailableMoves() []board.Move {
	if b.done {
		return nil
	}
	occ := b.occupied()
	moves := make([]board.Move, 0, Size)
	for i := 0; i < Size; i++ {
		if occ&(1<<uint(i)) == 0 {
			moves = append(moves, Move(i))
		}
	}
	return moves
}

func (b *Board) Play(m board.Move) board.Board {
	cell := uint(m.(Move))
	nb := *b
	nb.bitboards[idx(b.turn)] |= 1 << cell
	nb.turn = b.turn.Other()
	nb.evaluateTermination()
	return &nb
}

func (b *Board) evaluateTermination() {
	mine := b.bitboards[idx(b.turn.Other())] // the player who just moved
	for _, l := range lines {
		mask := uint16(1)<<l[0] | uint16(1)<<l[1] | uint16(1)<<l[2]
		if mine&mask == mask {
			b.done = true
			if b.turn.Other() == board.PlayerX {
				b.outcome = board.WinX
			} else {
				b.outcome = board.WinO
			}
			return
		}
	}
	if b.occupied() == (1<<Size)-1 {
		b.done = true
		b.outcome = board.Draw
	}
}

func (b *Board) Clone() board.Board {
	nb := *b
	return &nb
}

// Symmetries returns the dihedral group of the square: identity, three
// rotations, and four reflections.
func (b *Board) Symmetries() []board.Symmetry {
	return []board.Symmetry{0, 1, 2, 3, 4, 5, 6, 7}
}

// permutations[s][cell] is the cell that `cell` maps to under symmetry s.
var permutations = [8][9]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8}, // identity
	{2, 5, 8, 1, 4, 7, 0, 3, 6}, // rotate 90
	{8, 7, 6, 5, 4, 3, 2, 1, 0}, // rotate 180
	{6, 3, 0, 7, 4, 1, 8, 5, 2}, // rotate 270
	{2, 1, 0, 5, 4, 3, 8, 7, 6}, // flip horizontal
	{6, 7, 8, 3, 4, 5, 0, 1, 2}, // flip vertical
	{0, 3, 6, 1, 4, 7, 2, 5, 8}, // transpose (main diagonal)
	{8, 5, 2, 7, 4, 1, 6, 3, 0}, // anti-transpose
}

func (b *Board) Map(s board.Symmetry) board.Board {
	perm := permutations[s]
	nb := &Board{turn: b.turn, done: b.done, outcome: b.outcome}
	for cell := 0; cell < Size; cell++ {
		for p := 0; p < 2; p++ {
			if b.bitboards[p]&(1<<uint(cell)) != 0 {
				nb.bitboards[p] |= 1 << uint(perm[cell])
			}
		}
	}
	return nb
}

func (b *Board) MapMove(s board.Symmetry, m board.Move) board.Move {
	cell := int(m.(Move))
	return Move(permutations[s][cell])
}

func (b *Board) String() string {
	var sb strings.Builder
	for i := 0; i < Size; i++ {
		switch {
		case b.bitboards[0]&(1<<uint(i)) != 0:
			sb.WriteByte('X')
		case b.bitboards[1]&(1<<uint(i)) != 0:
			sb.WriteByte('O')
		default:
			sb.WriteByte('.')
		}
		if i%3 == 2 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Parse builds a board from a 9-character row-major string using 'X', 'O'
// and '.' for empty, as used by spec.md scenario A's fixture notation.
func Parse(s string) (*Board, error) {
	s = strings.ReplaceAll(s, "|", "")
	if len(s) != Size {
		return nil, fmt.Errorf("ttt: expected %d cells, got %d", Size, len(s))
	}
	b := New()
	xCount, oCount := 0, 0
	for i, c := range s {
		switch c {
		case 'X':
			b.bitboards[0] |= 1 << uint(i)
			xCount++
		case 'O':
			b.bitboards[1] |= 1 << uint(i)
			oCount++
		case '.':
		default:
			return nil, fmt.Errorf("ttt: invalid cell %q", c)
		}
	}
	if xCount == oCount {
		b.turn = board.PlayerX
	} else {
		b.turn = board.PlayerO
	}
	b.evaluateTerminationFromScratch()
	return b, nil
}

func (b *Board) evaluateTerminationFromScratch() {
	for _, p := range []board.Player{board.PlayerX, board.PlayerO} {
		mine := b.bitboards[idx(p)]
		for _, l := range lines {
			mask := uint16(1)<<l[0] | uint16(1)<<l[1] | uint16(1)<<l[2]
			if mine&mask == mask {
				b.done = true
				if p == board.PlayerX {
					b.outcome = board.WinX
				} else {
					b.outcome = board.WinO
				}
				return
			}
		}
	}
	if b.occupied() == (1<<Size)-1 {
		b.done = true
		b.outcome = board.Draw
	}
}
