// Package chess adapts github.com/notnil/chess to the board.Board contract,
// generalizing the teacher's game/chess.go Chess wrapper (which hard-coded
// a flat int32 action space read from a move-list file) to the abstract
// interface the rest of this engine is built against.
package chess

import (
	gochess "github.com/notnil/chess"

	"github.com/alphazero/engine/board"
)

// Move wraps a notnil/chess move. Its String() is the move's UCI-style
// coordinate notation, matching the teacher's own use of Move.String() as
// the lookup key into its action space (game/chess.go's reverseActionSpace).
type Move struct {
	inner *gochess.Move
}

func (m Move) String() string { return m.inner.String() }

// Board wraps one notnil/chess position. Unlike the teacher's Chess type,
// this carries no move history or mutex: Play returns a new, independent
// Board (spec.md section 6's "the receiver is left unmodified" contract),
// so there is nothing to synchronize.
type Board struct {
	game *gochess.Game
}

// New returns the starting position.
func New() *Board {
	return &Board{game: gochess.NewGame()}
}

// FromFEN builds a Board from Forsyth-Edwards notation, used by tests to
// set up specific positions (spec.md section 8 scenario B, "mate in one").
func FromFEN(fen string) (*Board, error) {
	opt, err := gochess.FEN(fen)
	if err != nil {
		return nil, err
	}
	return &Board{game: gochess.NewGame(opt)}, nil
}

func (b *Board) NextPlayer() board.Player {
	if b.game.Position().Turn() == gochess.White {
		return board.PlayerX
	}
	return board.PlayerO
}

func (b *Board) IsDone() bool {
	return b.game.Outcome() != gochess.NoOutcome
}

func (b *Board) Outcome() board.Outcome {
	switch b.game.Outcome() {
	case gochess.WhiteWon:
		return board.WinX
	case gochess.BlackWon:
		return board.WinO
	case gochess.Draw:
		return board.Draw
	default:
		return board.NoOutcome
	}
}

func (b *Board) AvailableMoves() []board.Move {
	valid := b.game.ValidMoves()
	out := make([]board.Move, len(valid))
	for i, m := range valid {
		out[i] = Move{inner: m}
	}
	return out
}

func (b *Board) Play(m board.Move) board.Board {
	cm := m.(Move)
	ng := b.game.Clone()
	if err := ng.Move(cm.inner); err != nil {
		panic(err)
	}
	return &Board{game: ng}
}

func (b *Board) Clone() board.Board {
	return &Board{game: b.game.Clone()}
}

// Symmetries returns only the identity. spec.md section 4.3 names
// "rank-flip plus colour-flip" as chess's symmetry, but that transform
// changes which player is to move, which board.Board's Play/Outcome
// contract assumes stays fixed across Map - so this engine applies the
// equivalent POV normalization unconditionally inside mapper/chess.go's
// EncodeInput instead of exposing it as a sampled board.Symmetry (see
// DESIGN.md).
func (b *Board) Symmetries() []board.Symmetry {
	return []board.Symmetry{board.SymmetryIdentity}
}

func (b *Board) Map(s board.Symmetry) board.Board {
	return b
}

func (b *Board) MapMove(s board.Symmetry, m board.Move) board.Move {
	return m
}

func (b *Board) String() string {
	return b.game.Position().Board().Draw()
}

// Game exposes the underlying notnil/chess game for the mapper, which
// needs piece placement and turn to build the 73-plane policy head.
func (b *Board) Game() *gochess.Game {
	return b.game
}

// From, To and Promo expose the underlying move's endpoints and promotion
// piece, for the chess mapper's move classification (spec.md section 4.4).
func (m Move) From() gochess.Square     { return m.inner.S1() }
func (m Move) To() gochess.Square       { return m.inner.S2() }
func (m Move) Promo() gochess.PieceType { return m.inner.Promo() }
