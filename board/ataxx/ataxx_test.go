package ataxx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphazero/engine/board"
)

func TestNewOpeningPosition(t *testing.T) {
	b := New(5)
	assert.Equal(t, board.PlayerX, b.NextPlayer())
	assert.False(t, b.IsDone())
	assert.NotEmpty(t, b.AvailableMoves())
}

func TestCloneConvertsAdjacentEnemyStones(t *testing.T) {
	b := New(3)
	// X at (0,0) and (2,2); O at (0,2) and (2,0) on a 3x3 board.
	var clone Move
	for _, m := range b.AvailableMoves() {
		mv := m.(Move)
		if mv.From == NoSquare && mv.To == b.cell(0, 1) {
			clone = mv
			break
		}
	}
	require.NotEqual(t, Move{}, clone)

	next := b.Play(clone).(*Board)
	// Stones reports the player to move (now O) first, so X's stones are
	// the second value.
	_, x := next.Stones()
	// After X clones into (0,1), the adjacent O at (0,2) should flip to X.
	assert.NotZero(t, x&(1<<uint(next.cell(0, 2))))
}

func TestJumpVacatesOrigin(t *testing.T) {
	b := New(5)
	var jump Move
	for _, m := range b.AvailableMoves() {
		mv := m.(Move)
		if mv.From != NoSquare {
			jump = mv
			break
		}
	}
	require.NotEqual(t, Move{}, jump)

	next := b.Play(jump).(*Board)
	// The jumping player (X) is no longer to move, so its stones come second.
	_, x := next.Stones()
	assert.Zero(t, x&(1<<uint(jump.From)), "jump must vacate the origin cell")
}

// scenario C (spec.md section 8): mapping a board through a symmetry and
// mapping a move through the same symmetry, then playing, must agree with
// mapping the played-out board directly - the dihedral group acting on
// Ataxx must commute with Play.
func TestSymmetriesCommuteWithPlay(t *testing.T) {
	b := New(5)
	for _, sym := range b.Symmetries() {
		for _, m := range b.AvailableMoves() {
			mapped := b.Map(sym)
			mappedMove := b.MapMove(sym, m)

			viaMapThenPlay := mapped.Play(mappedMove).(*Board)
			viaPlayThenMap := b.Play(m).(*Board).Map(sym).(*Board)

			assert.Equal(t, viaPlayThenMap.String(), viaMapThenPlay.String(),
				"symmetry %d should commute with Play for move %v", sym, m)
		}
	}
}

func TestSymmetriesAreDistinctOnAsymmetricPosition(t *testing.T) {
	b := New(5)
	one := b.Play(Move{From: NoSquare, To: b.cell(0, 1)}).(*Board)

	seen := map[string]bool{}
	for _, sym := range one.Symmetries() {
		seen[one.Map(sym).String()] = true
	}
	assert.Greater(t, len(seen), 1, "an asymmetric position should look different under at least some symmetries")
}
