// Package network implements the network-facing glue the search treats as
// an opaque collaborator (spec.md section 1, section 6 "Network evaluation
// interface"): batching/padding boards into a fixed-size tensor, dispatch
// to a concrete graph, and turning raw value/WDL/policy logits into the
// normalized Values + policy the zero package consumes.
package network

import (
	"sync/atomic"

	"github.com/chewxy/math32"
	"gorgonia.org/tensor"
	"gorgonia.org/vecf32"

	"github.com/alphazero/engine/board"
	"github.com/alphazero/engine/mapper"
	"github.com/alphazero/engine/zero"
)

// Graph is the opaque tensor-kernel collaborator spec.md section 1 treats
// as external: evaluate a batch of encoded boards, already padded to
// exactly maxBatchSize rows, and produce raw (unnormalized) outputs for
// every row, including the padding. Concrete implementations (ONNX,
// cuDNN, ...) live outside this repo; network/cpu.go ships a deterministic
// reference implementation sufficient to exercise the rest of the engine.
type Graph interface {
	// MaxBatchSize is the fixed row count this graph was built for.
	MaxBatchSize() int
	// Forward consumes a [MaxBatchSize * InputSize] row-major buffer and
	// returns value [MaxBatchSize], wdlLogits [MaxBatchSize*3] and
	// policyLogits [MaxBatchSize*PolicySize], all raw (pre-softmax) except
	// value, which the graph already squashes to [-1, 1] via tanh.
	Forward(input []float32) (value, wdlLogits, policyLogits []float32)
}

// Evaluator adapts a Graph + Mapper pair into zero.Evaluator: batching
// requests, padding to the graph's fixed batch size, reading back only the
// real rows, and normalizing WDL/policy logits via softmax. Grounded on
// the teacher's agent.go Agent.Infer (single-board encode-then-infer),
// generalized to true batching per spec.md section 4.7.
type Evaluator struct {
	Graph  Graph
	Mapper mapper.Mapper
	rng    SymmetryRNG

	// randomSymmetries mirrors selfplay.Settings.RandomSymmetries, re-read
	// on every request rather than cached at construction time since a
	// session's NewSettings command can flip it mid-run (spec.md section
	// 4.8). atomic.Bool because EvaluateBatch runs concurrently with the
	// commander goroutine that calls SetRandomSymmetries.
	randomSymmetries atomic.Bool
}

// SymmetryRNG is the minimal randomness contract for symmetry sampling,
// satisfied by *rand.Rand.
type SymmetryRNG interface {
	Intn(n int) int
}

// NewEvaluator builds an Evaluator. rng may be nil if random symmetries are
// never enabled via SetRandomSymmetries.
func NewEvaluator(g Graph, m mapper.Mapper, rng SymmetryRNG) *Evaluator {
	return &Evaluator{Graph: g, Mapper: m, rng: rng}
}

// SetRandomSymmetries toggles per-request symmetry sampling, callable at any
// time from a goroutine other than the one calling EvaluateBatch.
func (e *Evaluator) SetRandomSymmetries(v bool) {
	e.randomSymmetries.Store(v)
}

// RandomSymmetries reports the current setting.
func (e *Evaluator) RandomSymmetries() bool {
	return e.randomSymmetries.Load()
}

var _ zero.Evaluator = (*Evaluator)(nil)

// EvaluateBatch implements zero.Evaluator (spec.md section 4.7).
func (e *Evaluator) EvaluateBatch(reqs []zero.Request) []zero.Response {
	if len(reqs) == 0 {
		return nil
	}
	maxBatch := e.Graph.MaxBatchSize()
	if len(reqs) > maxBatch {
		panic("network: request batch larger than graph's max batch size")
	}

	inputSize := e.Mapper.InputFullSize()
	policySize := e.Mapper.PolicySize()

	input := make([]float32, maxBatch*inputSize)
	for i := range input {
		input[i] = math32.NaN() // pad unused rows with NaN to surface bugs (spec.md section 4.7 step 2)
	}
	inputTensor := batchTensor(input, maxBatch, inputSize)

	randomSymmetries := e.RandomSymmetries()
	symmetries := make([]board.Symmetry, len(reqs))
	encodedBoards := make([]board.Board, len(reqs))
	for i, req := range reqs {
		sym := board.SymmetryIdentity
		if randomSymmetries && e.rng != nil {
			syms := req.Board.Symmetries()
			sym = syms[e.rng.Intn(len(syms))]
		}
		symmetries[i] = sym
		mapped := req.Board
		if sym != board.SymmetryIdentity {
			mapped = req.Board.Map(sym)
		}
		encodedBoards[i] = mapped

		row := e.Mapper.EncodeInput(mapped, nil)
		copy(input[i*inputSize:(i+1)*inputSize], row)
	}

	value, wdlLogits, policyLogits := e.Graph.Forward(inputTensor.Data().([]float32))

	wdlTensor := batchTensor(wdlLogits, maxBatch, 3)
	policyTensor := batchTensor(policyLogits, maxBatch, policySize)

	responses := make([]zero.Response, len(reqs))
	for i, req := range reqs {
		wdlRow, err := wdlTensor.Slice(tensor.S(i, i+1))
		if err != nil {
			panic(err)
		}
		policyRow, err := policyTensor.Slice(tensor.S(i, i+1))
		if err != nil {
			panic(err)
		}

		wdl := softmax3(wdlRow.Data().([]float32))
		policyProbs := softmax(policyRow.Data().([]float32))

		policy := readLegalPolicy(req.Board, encodedBoards[i], symmetries[i], e.Mapper, policyProbs)

		responses[i] = zero.Response{
			Node: req.Node,
			Values: zero.Values{
				Value: value[i],
				Win:   wdl[0],
				Draw:  wdl[1],
				Loss:  wdl[2],
			},
			Policy: policy,
		}
	}
	return responses
}

// readLegalPolicy implements spec.md section 4.3's symmetry-aware policy
// read: translate each legal move of the original board through sym, look
// it up in the symmetry-mapped board's legal-move list, and read the
// policy entry there.
func readLegalPolicy(original, mapped board.Board, sym board.Symmetry, m mapper.Mapper, policyRow []float32) []float32 {
	moves := original.AvailableMoves()
	out := make([]float32, len(moves))
	var sum float32
	for i, mv := range moves {
		mappedMove := mv
		if sym != board.SymmetryIdentity {
			mappedMove = original.MapMove(sym, mv)
		}
		idx := m.MoveToIndex(mapped, mappedMove)
		out[i] = policyRow[idx]
		sum += out[i]
	}
	if sum > math32.SmallestNonzeroFloat32 {
		vecf32.Scale(out, 1/sum)
	} else if len(out) > 0 {
		uniform := 1 / float32(len(out))
		for i := range out {
			out[i] = uniform
		}
	}
	return out
}

func softmax(logits []float32) []float32 {
	out := make([]float32, len(logits))
	max := math32.Inf(-1)
	for _, l := range logits {
		if l > max {
			max = l
		}
	}
	var sum float32
	for i, l := range logits {
		e := math32.Exp(l - max)
		out[i] = e
		sum += e
	}
	vecf32.Scale(out, 1/sum) // in-place out[i] /= sum, see gorgonia.org/vecf32
	return out
}

func softmax3(logits []float32) [3]float32 {
	s := softmax(logits)
	return [3]float32{s[0], s[1], s[2]}
}

// batchTensor wraps a flat row-major buffer crossing the network boundary
// as a gorgonia tensor, mirroring the teacher's agogo.go prepareExamples
// use of tensor.New/tensor.WithShape/tensor.WithBacking. EvaluateBatch uses
// it for the input buffer and both output logit buffers so row access goes
// through tensor.Dense.Slice rather than hand-rolled index arithmetic.
func batchTensor(data []float32, batch, size int) *tensor.Dense {
	return tensor.New(tensor.WithBacking(data), tensor.WithShape(batch, size))
}
