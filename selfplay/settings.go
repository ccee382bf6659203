package selfplay

import "github.com/alphazero/engine/zero"

// Settings configures search/temperature/Dirichlet parameters for every
// generator (spec.md section 4.8 "NewSettings"). Grounded 1:1 on
// original_source's alpha-zero/src/selfplay/protocol.rs Settings struct,
// since no Go teacher file carries an equivalent and spec.md itself only
// names these knobs individually across sections 4.2-4.6.
type Settings struct {
	MaxGameLength int64
	Weights       zero.Weights

	RandomSymmetries bool
	KeepTree         bool

	Temperature       float32
	ZeroTempMoveCount uint32

	DirichletAlpha float64
	DirichletEps   float64

	FullSearchProb  float64
	FullIterations  uint64
	PartIterations  uint64

	// CacheSize supplements spec.md section 4.7's "{cached, real, moves}"
	// throughput counters: CacheSize > 0 enables a per-generator evaluation
	// cache keyed by the board's text rendering (original_source's same Settings field), and hits
	// against it are what "cached" counts.
	CacheSize int

	// DepthBudget supplements spec.md section 4.6 step 7's "for MuZero
	// variants, a depth budget expires" stop condition: when positive,
	// PlayGame ends the game once moveCount reaches it, same as
	// MaxGameLength but settable independently (e.g. lower, to bound a
	// single generator's move depth without affecting the session-wide
	// cap). Zero means unlimited; this engine's AlphaZero games leave it
	// unset.
	DepthBudget int
}

// DefaultSettings returns sane values matching scenario defaults used in
// spec.md section 8 (c_puct via zero.DefaultWeights, Dirichlet noise with
// alpha 0.3 and epsilon 0.25, no subtree reuse).
func DefaultSettings() Settings {
	return Settings{
		MaxGameLength:     1000,
		Weights:           zero.DefaultWeights(),
		RandomSymmetries:  true,
		Temperature:       1.0,
		ZeroTempMoveCount: 30,
		DirichletAlpha:    0.3,
		DirichletEps:      0.25,
		FullSearchProb:    1.0,
		FullIterations:    800,
		PartIterations:    100,
	}
}

// GameConfig is static, per-game-type configuration that does not change
// mid-session (unlike Settings, which NewSettings can update at any time).
type GameConfig struct {
	MaxLegalMoves int // used to size the root's reserved capacity
	TopMoves      int // spec.md section 4.6 step 1's "top_moves" reserve factor
}
