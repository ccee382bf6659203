package selfplay

import (
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Collector batches finished Simulations into generation files (spec.md
// section 4.8's games_per_gen) and, when reorder_games is set, buffers
// out-of-order completions so each file's games come out in the order
// generators were asked to start them. Grounded on no single teacher file
// (the teacher plays exactly one game at a time); the buffering scheme
// follows original_source/rust/kz-selfplay's ReorderBuffer directly, since
// spec.md's own distillation dropped this detail.
type Collector struct {
	mu sync.Mutex

	gamesPerGen  int
	reorder      bool
	nextGenIndex int

	nextExpected int // game sequence number the reorder buffer is waiting for
	pending      map[int]*Simulation
	current      []*Simulation

	onFile func(index int, games []*Simulation) error
}

// NewCollector builds a Collector. onFile is invoked once per completed
// generation file, synchronously, from whichever goroutine's Submit call
// completes the batch, and its error (if any) is folded into that Submit's
// return value via go-multierror, the same accumulation the teacher's
// agent.go Agent.Close uses for closing several inferers at once.
func NewCollector(gamesPerGen, firstGenIndex int, reorder bool, onFile func(index int, games []*Simulation) error) *Collector {
	return &Collector{
		gamesPerGen:  gamesPerGen,
		reorder:      reorder,
		nextGenIndex: firstGenIndex,
		pending:      make(map[int]*Simulation),
		onFile:       onFile,
	}
}

// Submit reports that the game started as the seq-th of the session (0
// based, in generator dispatch order) has finished. With reorder disabled,
// seq is ignored and games are batched in arrival order. The returned error
// aggregates every onFile failure triggered by this submission (a single
// Submit can complete more than one file once the reorder buffer unblocks a
// run of pending games).
func (c *Collector) Submit(seq int, sim *Simulation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs error

	if !c.reorder {
		c.current = append(c.current, sim)
		if err := c.flushIfFull(); err != nil {
			errs = multierror.Append(errs, err)
		}
		return errs
	}

	c.pending[seq] = sim
	for {
		next, ok := c.pending[c.nextExpected]
		if !ok {
			break
		}
		delete(c.pending, c.nextExpected)
		c.nextExpected++
		c.current = append(c.current, next)
		if err := c.flushIfFull(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}

func (c *Collector) flushIfFull() error {
	if len(c.current) < c.gamesPerGen {
		return nil
	}
	games := c.current[:c.gamesPerGen]
	rest := append([]*Simulation(nil), c.current[c.gamesPerGen:]...)
	c.current = rest
	return c.flush(games)
}

func (c *Collector) flush(games []*Simulation) error {
	index := c.nextGenIndex
	c.nextGenIndex++
	if c.onFile == nil {
		return nil
	}
	return c.onFile(index, games)
}

// Close flushes whatever games remain buffered - including any still stuck
// in the reorder buffer behind a game that never finished - as one final,
// possibly partial, generation file, and aggregates every error this
// produces (spec.md section 4.8's shutdown path must not silently drop
// games that were recorded but never reached a full games_per_gen batch).
func (c *Collector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reorder && len(c.pending) > 0 {
		for _, seq := range c.sortedPendingSeqs() {
			c.current = append(c.current, c.pending[seq])
			delete(c.pending, seq)
		}
	}

	var errs error
	if len(c.current) > 0 {
		games := c.current
		c.current = nil
		if err := c.flush(games); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}

// PendingCount reports how many games are buffered waiting on missing
// predecessors (reorder mode only); used for diagnostics/tests.
func (c *Collector) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// sortedPendingSeqs returns the buffered sequence numbers in ascending
// order; Close uses it to flush leftovers deterministically.
func (c *Collector) sortedPendingSeqs() []int {
	seqs := make([]int, 0, len(c.pending))
	for s := range c.pending {
		seqs = append(seqs, s)
	}
	sort.Ints(seqs)
	return seqs
}
