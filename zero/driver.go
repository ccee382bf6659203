package zero

import "math/rand"

// Evaluator is the narrow network-facing contract the driver needs: turn a
// batch of requests into a batch of responses. Concrete batching, padding
// and dispatch to CPU/GPU graphs live in package network; zero only needs
// this to stay decoupled from it (spec.md section 6 "Network evaluation
// interface").
type Evaluator interface {
	EvaluateBatch(reqs []Request) []Response
}

// State is the ("tree", "target_visits", "batch_size", "exploration_weight")
// tuple spec.md section 4.5 names, plus the in-flight expected_nodes list.
// It is the resumable state machine described in spec.md's design notes:
// FillBatch and ApplyBatch can be called alternately, FillBatch yielding a
// batch of requests to submit whenever one fills up, so a caller with its own async scheduler (the
// self-play generator) can suspend exactly at the network round-trip.
type State struct {
	Tree       *Tree
	Weights    Weights
	FPU        FPUMode
	BatchSize  int
	TargetVisits uint32
	rng        *rand.Rand

	pending []Request
}

// NewState builds a driver state for one move decision.
func NewState(tree *Tree, weights Weights, fpu FPUMode, batchSize int, targetVisits uint32, rng *rand.Rand) *State {
	return &State{
		Tree:         tree,
		Weights:      weights,
		FPU:          fpu,
		BatchSize:    batchSize,
		TargetVisits: targetVisits,
		rng:          rng,
	}
}

// Done reports whether the root has accumulated TargetVisits complete
// visits.
func (s *State) Done() bool {
	return s.Tree.Root().CompleteVisits >= s.TargetVisits
}

// FillBatch runs the gather phase until either BatchSize requests have
// accumulated or the root's complete plus in-flight visits have reached
// TargetVisits, whichever comes first, so that applying the batch never
// carries the root past TargetVisits complete visits.
// It returns the accumulated batch of boards awaiting evaluation; terminal
// hits are backpropagated inline and never appear in the batch.
func (s *State) FillBatch() []Request {
	for s.Tree.Root().TotalVisits() < s.TargetVisits && len(s.pending) < s.BatchSize {
		if req := Gather(s.Tree, s.Weights, s.FPU, s.rng); req != nil {
			s.pending = append(s.pending, *req)
		}
	}
	return s.pending
}

// ApplyBatch zips responses with the pending requests, applies each, and
// clears the pending list (spec.md section 4.5 steps 3-4). It panics if
// the lengths don't match, matching the "Responses within one batch may be
// applied in any order" guarantee from spec.md section 5 - order here is
// irrelevant since each response targets a distinct node.
func (s *State) ApplyBatch(responses []Response) {
	if len(responses) != len(s.pending) {
		panic("zero: response batch length does not match pending request count")
	}
	for _, r := range responses {
		Apply(s.Tree, r)
	}
	s.pending = s.pending[:0]
}

// Run drives the full search to TargetVisits, calling eval.EvaluateBatch
// for every filled batch, and polling stop() between batches (spec.md
// section 4.5). stop may be nil. Grounded on the teacher's mcts/search.go
// Search() loop (collect up to budget, submit, apply, repeat), generalized
// from per-request inference to true batch submission.
func (s *State) Run(eval Evaluator, stop func() bool) {
	for !s.Done() {
		if stop != nil && stop() {
			return
		}
		batch := s.FillBatch()
		if len(batch) == 0 {
			// Done() became true mid-gather with no pending requests.
			continue
		}
		responses := eval.EvaluateBatch(batch)
		s.ApplyBatch(responses)
	}
}
