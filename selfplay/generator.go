package selfplay

import (
	"math/rand"

	"github.com/alphazero/engine/board"
	"github.com/alphazero/engine/mapper"
	"github.com/alphazero/engine/zero"
)

// SettingsBox holds the live Settings shared across every generator in a
// session, updated by the commander's NewSettings command (spec.md
// section 4.8) and read by each generator at the start of every move
// decision. A one-slot channel used as a binary semaphore guards the
// value: reads happen once per move (not per search iteration), so
// contention is a non-issue and a bespoke lock-free scheme would be
// premature.
type SettingsBox struct {
	mu       chan struct{} // binary semaphore; see Load/Store
	current  Settings
}

// NewSettingsBox wraps an initial Settings value.
func NewSettingsBox(s Settings) *SettingsBox {
	b := &SettingsBox{mu: make(chan struct{}, 1), current: s}
	b.mu <- struct{}{}
	return b
}

// Load returns the current Settings.
func (b *SettingsBox) Load() Settings {
	<-b.mu
	s := b.current
	b.mu <- struct{}{}
	return s
}

// Store replaces the current Settings, taking effect for every generator's
// next move decision.
func (b *SettingsBox) Store(s Settings) {
	<-b.mu
	b.current = s
	b.mu <- struct{}{}
}

// Generator owns one self-play game (spec.md section 4.6). One goroutine
// per generator; the only suspension point is the evaluator round trip
// (spec.md section 5's scheduling model), so everything here is
// synchronous and non-yielding apart from that one call.
type Generator struct {
	ID       int
	Game     GameConfig
	Mapper   mapper.Mapper
	Settings *SettingsBox
	rng      *rand.Rand

	cache *evalCache
}

// NewGenerator builds a Generator. seed should be distinct per generator
// so concurrent games explore different lines despite identical priors.
func NewGenerator(id int, game GameConfig, m mapper.Mapper, settings *SettingsBox, seed int64) *Generator {
	return &Generator{
		ID:       id,
		Game:     game,
		Mapper:   m,
		Settings: settings,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// PlayGame runs one complete game from `start` to a terminal board, or
// until MaxGameLength or DepthBudget moves have been played, whichever
// comes first (spec.md section 4.6), submitting evaluation batches through
// eval and reporting progress through updates. It returns the finished
// Simulation (with Outcome set only when the final board is terminal),
// or nil if stop() returned true before the game ended.
func (g *Generator) PlayGame(start board.Board, eval zero.Evaluator, updates chan<- Update, stop func() bool) *Simulation {
	settings := g.Settings.Load()
	if settings.CacheSize > 0 && g.cache == nil {
		g.cache = newEvalCache(settings.CacheSize)
	}

	current := start
	var tree *zero.Tree
	sim := &Simulation{}

	reserve := 1 + g.Game.MaxLegalMoves + int(settings.FullIterations)*g.Game.TopMoves

	var moveCount int64
	for !current.IsDone() {
		if stop != nil && stop() {
			return nil
		}
		if settings.MaxGameLength > 0 && moveCount >= settings.MaxGameLength {
			break
		}
		if settings.DepthBudget > 0 && moveCount >= int64(settings.DepthBudget) {
			break
		}

		if tree == nil {
			tree = zero.NewTree(current, reserve)
		}

		full := g.rng.Float64() < settings.FullSearchProb
		iterations := settings.PartIterations
		if full {
			iterations = settings.FullIterations
		}

		rawRoot := g.evaluateRoot(tree, eval, settings)

		g.runSearch(tree, eval, settings, iterations, updates)

		temperature := settings.Temperature
		if uint32(moveCount) >= settings.ZeroTempMoveCount {
			temperature = 0
		}
		pi := zero.PolicyTarget(tree, 0, temperature)
		childIdx := tree.ChildIndices(0)[zero.SampleMove(pi, g.rng)]

		chosen := tree.Node(childIdx)
		root := tree.Root()
		rootMean := root.Mean()

		if full {
			policy := make([]float32, len(pi))
			copy(policy, pi)
			sim.Positions = append(sim.Positions, Position{
				Board:     current,
				Move:      chosen.LastMove,
				Policy:    policy,
				Value:     rootMean.Value,
				WDL:       [3]float32{rootMean.Win, rootMean.Draw, rootMean.Loss},
				MovesLeft: rootMean.MovesLeft,
				RawValue:  rawRoot.Values.Value,
				RawWDL:    [3]float32{rawRoot.Values.Win, rawRoot.Values.Draw, rawRoot.Values.Loss},
				RawPolicy: rawRoot.Policy,
			})
		}

		current = current.Play(chosen.LastMove)
		moveCount++

		if settings.KeepTree {
			reuse := zero.KeepChild(tree, childIdx, reserve)
			if reuse.Tree != nil {
				tree = reuse.Tree
			} else {
				tree = nil // terminal: next loop iteration's IsDone check ends the game
			}
		} else {
			tree = nil
		}

		if updates != nil {
			updates <- Update{Moves: 1}
		}
	}

	sim.Final = current
	if current.IsDone() {
		sim.Outcome = current.Outcome()
	}
	return sim
}

// evaluateRoot returns the network's raw (un-searched) evaluation of the
// tree's root board, used only to record Position.Raw* (spec.md section 3
// notes both the search estimate and the raw root evaluation are needed
// for training); it is not applied to the tree.
func (g *Generator) evaluateRoot(tree *zero.Tree, eval zero.Evaluator, settings Settings) zero.Response {
	req := zero.Request{Node: 0, Board: tree.RootBoard}
	if g.cache != nil {
		if resp, ok := g.cache.get(tree.RootBoard); ok {
			return resp
		}
	}
	resp := eval.EvaluateBatch([]zero.Request{req})[0]
	if g.cache != nil {
		g.cache.put(tree.RootBoard, resp)
	}
	return resp
}

// runSearch drives the tree to `iterations` root visits, injecting
// Dirichlet noise into the root right after its first expansion (spec.md
// section 4.6 step 3), and reports evaluation counts on updates.
func (g *Generator) runSearch(tree *zero.Tree, eval zero.Evaluator, settings Settings, iterations uint64, updates chan<- Update) {
	batchSize := g.Game.TopMoves
	if batchSize <= 0 {
		batchSize = 1
	}
	state := zero.NewState(tree, settings.Weights, zero.ParentFPU(0), batchSize, uint32(iterations), g.rng)
	tracked := &trackingEvaluator{inner: eval, cache: g.cache, updates: updates}

	noiseApplied := false
	for !state.Done() {
		batch := state.FillBatch()
		if len(batch) == 0 {
			continue
		}
		state.ApplyBatch(tracked.EvaluateBatch(batch))

		if !noiseApplied && tree.Root().HasChildren() && settings.DirichletEps > 0 {
			zero.AddDirichletNoise(tree, 0, settings.DirichletAlpha, settings.DirichletEps, g.rng)
			noiseApplied = true
		}
	}
}

// trackingEvaluator wraps a zero.Evaluator with a generator's eval cache
// and Update reporting, splitting each incoming batch into cache hits
// (resolved locally) and misses (forwarded to inner) so the executor never
// sees a request its caller already knows the answer to.
type trackingEvaluator struct {
	inner   zero.Evaluator
	cache   *evalCache
	updates chan<- Update
}

func (t *trackingEvaluator) EvaluateBatch(reqs []zero.Request) []zero.Response {
	out := make([]zero.Response, len(reqs))
	var misses []int
	var missReqs []zero.Request
	var cached int

	for i, req := range reqs {
		if t.cache != nil {
			if resp, ok := t.cache.get(req.Board); ok {
				resp.Node = req.Node
				out[i] = resp
				cached++
				continue
			}
		}
		misses = append(misses, i)
		missReqs = append(missReqs, req)
	}

	if len(missReqs) > 0 {
		missResps := t.inner.EvaluateBatch(missReqs)
		for j, i := range misses {
			out[i] = missResps[j]
			if t.cache != nil {
				t.cache.put(missReqs[j].Board, missResps[j])
			}
		}
	}

	if t.updates != nil {
		t.updates <- Update{RealEvals: uint64(len(missReqs)), CachedEvals: uint64(cached)}
	}
	return out
}

// Update is a progress delta a generator reports on its updates channel,
// which the server feeds to its Throughput reporter (spec.md section 4.7 step 5, section 4.8 throughput line).
type Update struct {
	CachedEvals uint64
	RealEvals   uint64
	Moves       uint64
}
