// Package selfplay implements the concurrent self-play orchestrator:
// generators building search trees and recording positions, a batched
// executor loop feeding the network, a collector assembling finished games
// into generation files, and a commander driving all of it from a
// line-delimited-JSON TCP command stream (spec.md sections 4.6-4.8, 6).
package selfplay

import "github.com/alphazero/engine/board"

// Position is one recorded training label (spec.md section 3
// "Simulation"): the board before the move, the move played, the search's
// visit-derived policy target, the search's value/WDL/moves-left mean
// estimate at the root, and the raw (pre-search-averaging) network
// evaluation of that same root - both are kept since training needs the
// search-improved target and the raw network prediction it improved on.
type Position struct {
	Board        board.Board
	Move         board.Move
	Policy       []float32 // pi(a), indexed like Board.AvailableMoves()
	Value        float32   // search's mean value estimate at the root
	WDL          [3]float32
	MovesLeft    float32
	RawValue     float32 // the network's own (pre-search) root value
	RawWDL       [3]float32
	RawPolicy    []float32
}

// Simulation is one finished self-play game (spec.md section 3).
type Simulation struct {
	Positions []Position
	Final     board.Board
	Outcome   board.Outcome
}
