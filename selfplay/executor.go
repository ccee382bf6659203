package selfplay

import (
	"sync"

	"github.com/alphazero/engine/zero"
)

// job is one generator's request awaiting a batched forward pass.
type job struct {
	req   zero.Request
	reply chan zero.Response
}

// Executor is the batched evaluation loop spec.md section 5 describes:
// many generator goroutines submit single requests through EvaluateBatch,
// the executor accumulates them up to maxBatch requests, forwards them
// through the wrapped evaluator (typically a *network.Evaluator, which
// handles encoding, symmetry, NaN padding and the policy read internally),
// and fans results back out to each waiting caller. Grounded on the
// teacher's agent.go/arena.go inference goroutine, which plays the same
// role for the teacher's single-game self-play loop; here it is
// generalized to serve many concurrent generators over a channel.
type Executor struct {
	evalMu sync.RWMutex
	eval   zero.Evaluator

	maxBatch int
	jobs     chan job

	once sync.Once
}

// NewExecutor builds an Executor that batches up to maxBatch requests per
// forward pass. Call Run in its own goroutine to drive the loop.
func NewExecutor(eval zero.Evaluator, maxBatch, queue int) *Executor {
	return &Executor{
		eval:     eval,
		maxBatch: maxBatch,
		jobs:     make(chan job, queue),
	}
}

// SwapEvaluator installs a newly trained network's evaluator, taking
// effect for every batch assembled after the call returns (spec.md
// section 4.8's "NewNetwork" command).
func (e *Executor) SwapEvaluator(eval zero.Evaluator) {
	e.evalMu.Lock()
	e.eval = eval
	e.evalMu.Unlock()
}

// EvaluateBatch implements zero.Evaluator by submitting every request as
// an individual job and waiting for the executor goroutine to batch them
// with other concurrent callers. This is the engine's one suspension
// point: a generator calling this blocks until Run's next batch round
// completes (spec.md section 5).
func (e *Executor) EvaluateBatch(reqs []zero.Request) []zero.Response {
	replies := make([]chan zero.Response, len(reqs))
	for i, req := range reqs {
		reply := make(chan zero.Response, 1)
		replies[i] = reply
		e.jobs <- job{req: req, reply: reply}
	}
	out := make([]zero.Response, len(reqs))
	for i, reply := range replies {
		out[i] = <-reply
	}
	return out
}

// Run drains jobs into batches of at most maxBatch and forwards them
// through the current evaluator, until stop is closed. It blocks; call it
// from its own goroutine.
func (e *Executor) Run(stop <-chan struct{}) {
	for {
		var batch []job
		select {
		case <-stop:
			return
		case j := <-e.jobs:
			batch = append(batch, j)
		}

	drain:
		for len(batch) < e.maxBatch {
			select {
			case j := <-e.jobs:
				batch = append(batch, j)
			default:
				break drain
			}
		}

		e.forward(batch)
	}
}

func (e *Executor) forward(batch []job) {
	e.evalMu.RLock()
	eval := e.eval
	e.evalMu.RUnlock()

	reqs := make([]zero.Request, len(batch))
	for i, j := range batch {
		reqs[i] = j.req
	}
	responses := eval.EvaluateBatch(reqs)
	for i, j := range batch {
		j.reply <- responses[i]
	}
}
