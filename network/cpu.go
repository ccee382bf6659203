package network

import "github.com/chewxy/math32"

// CPUConfig configures CPUGraph. Field names mirror the teacher's
// dualnet.Config (K filters, FC width, BatchSize, ActionSpace) - this is
// deliberately not a convolutional residual tower like the teacher's
// gorgonia-backed dual-headed network, since SPEC_FULL.md's Non-goals
// exclude training/backprop and network kernels (spec.md section 1): this
// graph only needs to produce *some* deterministic, legal-shaped forward
// pass so the rest of the engine (batching, PUCT, self-play) is fully
// exercisable without a real trained model.
type CPUConfig struct {
	InputSize   int
	PolicySize  int
	Hidden      int
	BatchSize   int
}

func (c CPUConfig) IsValid() bool {
	return c.InputSize > 0 && c.PolicySize > 0 && c.Hidden > 0 && c.BatchSize > 0
}

// CPUGraph is a single hidden-layer feed-forward network evaluated with
// plain float32 math - a forward-only reference implementation of the
// Graph contract, not a production inference graph (see CPUConfig's doc).
type CPUGraph struct {
	conf CPUConfig

	w1 []float32 // [InputSize x Hidden]
	b1 []float32 // [Hidden]

	wValue []float32 // [Hidden]
	bValue float32

	wWDL []float32 // [Hidden x 3]
	bWDL [3]float32

	wPolicy []float32 // [Hidden x PolicySize]
	bPolicy []float32 // [PolicySize]
}

var _ Graph = (*CPUGraph)(nil)

// NewCPUGraph builds a CPUGraph with weights drawn from a deterministic
// pseudo-random source (so results are reproducible across runs and
// across batch sizes, which scenario E in spec.md section 8 requires).
func NewCPUGraph(conf CPUConfig, seed uint64) *CPUGraph {
	if !conf.IsValid() {
		panic("network: invalid CPUConfig")
	}
	g := &CPUGraph{conf: conf}
	r := &splitmix{state: seed}

	g.w1 = randSlice(r, conf.InputSize*conf.Hidden)
	g.b1 = randSlice(r, conf.Hidden)
	g.wValue = randSlice(r, conf.Hidden)
	g.bValue = r.nextFloat()
	g.wWDL = randSlice(r, conf.Hidden*3)
	for i := range g.bWDL {
		g.bWDL[i] = r.nextFloat()
	}
	g.wPolicy = randSlice(r, conf.Hidden*conf.PolicySize)
	g.bPolicy = randSlice(r, conf.PolicySize)
	return g
}

func (g *CPUGraph) MaxBatchSize() int { return g.conf.BatchSize }

func (g *CPUGraph) Forward(input []float32) (value, wdlLogits, policyLogits []float32) {
	c := g.conf
	value = make([]float32, c.BatchSize)
	wdlLogits = make([]float32, c.BatchSize*3)
	policyLogits = make([]float32, c.BatchSize*c.PolicySize)

	hidden := make([]float32, c.Hidden)
	for row := 0; row < c.BatchSize; row++ {
		in := input[row*c.InputSize : (row+1)*c.InputSize]

		for h := 0; h < c.Hidden; h++ {
			var sum float32
			for i, x := range in {
				if math32.IsNaN(x) {
					continue // padded row, leave contribution at 0
				}
				sum += x * g.w1[i*c.Hidden+h]
			}
			hidden[h] = relu(sum + g.b1[h])
		}

		var v float32
		for h, hv := range hidden {
			v += hv * g.wValue[h]
		}
		value[row] = math32.Tanh(v + g.bValue)

		for k := 0; k < 3; k++ {
			var s float32
			for h, hv := range hidden {
				s += hv * g.wWDL[h*3+k]
			}
			wdlLogits[row*3+k] = s + g.bWDL[k]
		}

		for p := 0; p < c.PolicySize; p++ {
			var s float32
			for h, hv := range hidden {
				s += hv * g.wPolicy[h*c.PolicySize+p]
			}
			policyLogits[row*c.PolicySize+p] = s + g.bPolicy[p]
		}
	}
	return
}

func relu(x float32) float32 {
	if x < 0 {
		return 0
	}
	return x
}

func randSlice(r *splitmix, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = (r.nextFloat()*2 - 1) * 0.1
	}
	return out
}

// splitmix is a tiny deterministic PRNG so CPUGraph's weights don't depend
// on math/rand's global state or version.
type splitmix struct{ state uint64 }

func (s *splitmix) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (s *splitmix) nextFloat() float32 {
	return float32(s.next()>>11) / float32(1<<53)
}
