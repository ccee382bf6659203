// Package sttt implements Super (Ultimate) Tic-Tac-Toe on top of
// board.Board: a 3x3 grid of 3x3 sub-boards, where the cell played
// determines which sub-board the opponent must play in next. Grounded on
// IlikeChooros-go-mcts's uttt/core.Position (per-sub-board bitboards, a
// `nextBig` constraint, and a `bigPositionState` array tracking which
// sub-boards have been won/drawn), adapted from its in-place
// MakeMove/UndoMove history to board.Board's copy-on-Play contract.
package sttt

import (
	"strconv"
	"strings"

	"github.com/alphazero/engine/board"
)

const (
	Dim      = 9 // 9 sub-boards
	CellsPer = 9 // 9 cells per sub-board
)

// lines are the eight winning triples within one 3x3 grid (sub-board or
// the meta grid of sub-board outcomes), reused for both.
var lines = [8][3]uint8{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Move names the sub-board and the cell within it.
type Move struct {
	Big, Small uint8
}

func (m Move) String() string {
	return strconv.Itoa(int(m.Big)) + ":" + strconv.Itoa(int(m.Small))
}

type subOutcome uint8

const (
	subOngoing subOutcome = iota
	subWonX
	subWonO
	subDrawn
)

type subBoard struct {
	bitboards [2]uint16 // index 0 = X, 1 = O, both 9-bit masks
	outcome   subOutcome
}

func (s *subBoard) occupied() uint16 { return s.bitboards[0] | s.bitboards[1] }

func (s *subBoard) evaluate() {
	for p := 0; p < 2; p++ {
		mine := s.bitboards[p]
		for _, l := range lines {
			mask := uint16(1)<<l[0] | uint16(1)<<l[1] | uint16(1)<<l[2]
			if mine&mask == mask {
				if p == 0 {
					s.outcome = subWonX
				} else {
					s.outcome = subWonO
				}
				return
			}
		}
	}
	if s.occupied() == (1<<CellsPer)-1 {
		s.outcome = subDrawn
	}
}

// Board is one Super Tic-Tac-Toe position.
type Board struct {
	subs    [Dim]subBoard
	turn    board.Player
	nextBig int // -1 means "any open sub-board"
	outcome board.Outcome
	done    bool
}

const anyBig = -1

// New returns the empty starting position; the first move may land in any
// sub-board.
func New() *Board {
	return &Board{turn: board.PlayerX, nextBig: anyBig}
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

func (b *Board) AvailableMoves() []board.Move {
	if b.done {
		return nil
	}
	var moves []board.Move
	for big := 0; big < Dim; big++ {
		if b.nextBig != anyBig && big != b.nextBig {
			continue
		}
		s := &b.subs[big]
		if s.outcome != subOngoing {
			continue
		}
		occ := s.occupied()
		for small := 0; small < CellsPer; small++ {
			if occ&(1<<uint(small)) == 0 {
				moves = append(moves, Move{Big: uint8(big), Small: uint8(small)})
			}
		}
	}
	return moves
}

func (b *Board) Play(m board.Move) board.Board {
	mv := m.(Move)
	nb := *b
	s := nb.subs[mv.Big]
	s.bitboards[idx(b.turn)] |= 1 << uint(mv.Small)
	s.evaluate()
	nb.subs[mv.Big] = s

	nb.turn = b.turn.Other()

	if nb.subs[mv.Small].outcome == subOngoing {
		nb.nextBig = int(mv.Small)
	} else {
		nb.nextBig = anyBig
	}

	nb.evaluateMeta()
	return &nb
}

// evaluateMeta checks whether enough sub-boards have been won to end the
// game, using the same winning-line table at the meta level.
func (b *Board) evaluateMeta() {
	var wonX, wonO uint16
	anyOngoing := false
	for i, s := range b.subs {
		switch s.outcome {
		case subWonX:
			wonX |= 1 << uint(i)
		case subWonO:
			wonO |= 1 << uint(i)
		case subOngoing:
			anyOngoing = true
		}
	}
	for _, l := range lines {
		mask := uint16(1)<<l[0] | uint16(1)<<l[1] | uint16(1)<<l[2]
		if wonX&mask == mask {
			b.done = true
			b.outcome = board.WinX
			return
		}
		if wonO&mask == mask {
			b.done = true
			b.outcome = board.WinO
			return
		}
	}
	if !anyOngoing {
		b.done = true
		b.outcome = board.Draw
	}
}

func (b *Board) Clone() board.Board {
	nb := *b
	return &nb
}

// Symmetries returns the dihedral group of the square, applying the same
// cell permutation at both the sub-board and within-sub-board level (the
// 3x3-of-3x3 grid has the same geometry at each scale).
func (b *Board) Symmetries() []board.Symmetry {
	return []board.Symmetry{0, 1, 2, 3, 4, 5, 6, 7}
}

var permutations = [8][9]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8},
	{2, 5, 8, 1, 4, 7, 0, 3, 6},
	{8, 7, 6, 5, 4, 3, 2, 1, 0},
	{6, 3, 0, 7, 4, 1, 8, 5, 2},
	{2, 1, 0, 5, 4, 3, 8, 7, 6},
	{6, 7, 8, 3, 4, 5, 0, 1, 2},
	{0, 3, 6, 1, 4, 7, 2, 5, 8},
	{8, 5, 2, 7, 4, 1, 6, 3, 0},
}

func (b *Board) Map(s board.Symmetry) board.Board {
	perm := permutations[s]
	nb := &Board{turn: b.turn, done: b.done, outcome: b.outcome}
	if b.nextBig == anyBig {
		nb.nextBig = anyBig
	} else {
		nb.nextBig = perm[b.nextBig]
	}
	for big := 0; big < Dim; big++ {
		newBig := perm[big]
		src := b.subs[big]
		dst := subBoard{outcome: src.outcome}
		for small := 0; small < CellsPer; small++ {
			newSmall := perm[small]
			for p := 0; p < 2; p++ {
				if src.bitboards[p]&(1<<uint(small)) != 0 {
					dst.bitboards[p] |= 1 << uint(newSmall)
				}
			}
		}
		nb.subs[newBig] = dst
	}
	return nb
}

func (b *Board) MapMove(s board.Symmetry, m board.Move) board.Move {
	mv := m.(Move)
	perm := permutations[s]
	return Move{Big: uint8(perm[mv.Big]), Small: uint8(perm[mv.Small])}
}

func (b *Board) String() string {
	var sb strings.Builder
	for big := 0; big < Dim; big++ {
		s := &b.subs[big]
		for small := 0; small < CellsPer; small++ {
			switch {
			case s.bitboards[0]&(1<<uint(small)) != 0:
				sb.WriteByte('X')
			case s.bitboards[1]&(1<<uint(small)) != 0:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		if big%3 == 2 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte('|')
		}
	}
	return sb.String()
}

// SubOutcome reports the outcome of the sub-board at `big`, exposed for
// the mapper's input encoding (which planes in a won/drawn sub-board are
// irrelevant to legality but still informative to the network).
func (b *Board) SubOutcome(big int) (ongoing, wonMine, wonTheirs, drawn bool) {
	s := &b.subs[big]
	switch s.outcome {
	case subOngoing:
		return true, false, false, false
	case subDrawn:
		return false, false, false, true
	case subWonX:
		return false, b.turn == board.PlayerX, b.turn == board.PlayerO, false
	default: // subWonO
		return false, b.turn == board.PlayerO, b.turn == board.PlayerX, false
	}
}

// Stones returns the mover's and opponent's stone bitboard within one
// sub-board, in absolute cell numbering.
func (b *Board) Stones(big int) (mine, theirs uint16) {
	return b.subs[big].bitboards[idx(b.turn)], b.subs[big].bitboards[idx(b.turn.Other())]
}

// NextBig returns the sub-board the mover is constrained to, or -1 if any
// open sub-board is playable.
func (b *Board) NextBig() int { return b.nextBig }
