package network

// DummyGraph is the "dummy network" spec.md section 8 scenarios A-C call
// for: every policy logit is zero (so the post-softmax policy is uniform)
// and value/WDL are fixed at a neutral estimate. It exists purely so the
// search's own tree statistics, not network quality, drive test outcomes.
type DummyGraph struct {
	MaxBatch    int
	PolicySize  int
	FixedValue  float32
	FixedWDL    [3]float32 // win, draw, loss logits
}

var _ Graph = (*DummyGraph)(nil)

// NewUniformDummy returns a DummyGraph producing a uniform policy and a
// draw-leaning value estimate, matching the teacher's placeholder
// Inferencer used before a trained dualnet is available.
func NewUniformDummy(maxBatch, policySize int) *DummyGraph {
	return &DummyGraph{
		MaxBatch:   maxBatch,
		PolicySize: policySize,
		FixedValue: 0,
		FixedWDL:   [3]float32{0, 0, 0}, // uniform softmax -> 1/3 each
	}
}

func (g *DummyGraph) MaxBatchSize() int { return g.MaxBatch }

func (g *DummyGraph) Forward(input []float32) (value, wdlLogits, policyLogits []float32) {
	value = make([]float32, g.MaxBatch)
	wdlLogits = make([]float32, g.MaxBatch*3)
	policyLogits = make([]float32, g.MaxBatch*g.PolicySize)
	for i := 0; i < g.MaxBatch; i++ {
		value[i] = g.FixedValue
		copy(wdlLogits[i*3:i*3+3], g.FixedWDL[:])
	}
	return
}
