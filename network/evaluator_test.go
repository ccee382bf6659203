package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphazero/engine/board/ttt"
	"github.com/alphazero/engine/mapper"
	"github.com/alphazero/engine/zero"
)

// scenario E (spec.md section 8): evaluating a batch of N<maxBatch requests
// together must agree with evaluating each request alone through a
// single-row graph built from the same seed and weight shape - CPUGraph's
// per-row computation has no cross-row interaction, so batch size must not
// change results.
func TestBatchedEvaluationMatchesSingleRequestEvaluation(t *testing.T) {
	m := mapper.TTT{}
	const seed = 42

	boards := []*ttt.Board{
		ttt.New(),
		ttt.New().Play(ttt.Move(0)).(*ttt.Board),
		mustPlayTwo(t),
	}

	batchConf := CPUConfig{InputSize: m.InputFullSize(), PolicySize: m.PolicySize(), Hidden: 8, BatchSize: 32}
	singleConf := CPUConfig{InputSize: m.InputFullSize(), PolicySize: m.PolicySize(), Hidden: 8, BatchSize: 1}

	batchGraph := NewCPUGraph(batchConf, seed)
	singleGraph := NewCPUGraph(singleConf, seed)

	batchEval := NewEvaluator(batchGraph, m, nil)
	singleEval := NewEvaluator(singleGraph, m, nil)

	reqs := make([]zero.Request, len(boards))
	for i, b := range boards {
		reqs[i] = zero.Request{Node: int32(i), Board: b}
	}

	batched := batchEval.EvaluateBatch(reqs)
	require.Len(t, batched, len(boards))

	for i, req := range reqs {
		single := singleEval.EvaluateBatch([]zero.Request{req})
		require.Len(t, single, 1)

		assert.Equal(t, batched[i].Values.Value, single[0].Values.Value)
		assert.Equal(t, batched[i].Values.Win, single[0].Values.Win)
		assert.Equal(t, batched[i].Values.Draw, single[0].Values.Draw)
		assert.Equal(t, batched[i].Values.Loss, single[0].Values.Loss)
		assert.Equal(t, batched[i].Policy, single[0].Policy)
	}
}

func mustPlayTwo(t *testing.T) *ttt.Board {
	t.Helper()
	b := ttt.New()
	moves := b.AvailableMoves()
	require.NotEmpty(t, moves)
	next := b.Play(moves[0]).(*ttt.Board)
	moves2 := next.AvailableMoves()
	require.NotEmpty(t, moves2)
	return next.Play(moves2[0]).(*ttt.Board)
}

func TestEvaluateBatchPolicySumsToOne(t *testing.T) {
	m := mapper.TTT{}
	conf := CPUConfig{InputSize: m.InputFullSize(), PolicySize: m.PolicySize(), Hidden: 4, BatchSize: 4}
	g := NewCPUGraph(conf, 7)
	e := NewEvaluator(g, m, nil)

	resp := e.EvaluateBatch([]zero.Request{{Node: 0, Board: ttt.New()}})
	require.Len(t, resp, 1)

	var sum float32
	for _, p := range resp[0].Policy {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
}

func TestSoftmaxIsNormalized(t *testing.T) {
	out := softmax([]float32{1, 2, 3, 4})
	var sum float32
	for _, v := range out {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestBatchTensorShape(t *testing.T) {
	data := make([]float32, 12)
	ts := batchTensor(data, 3, 4)
	require.Equal(t, 2, ts.Dims())
	assert.Equal(t, 3, ts.Shape()[0])
	assert.Equal(t, 4, ts.Shape()[1])
}
