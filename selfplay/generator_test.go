package selfplay

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphazero/engine/board/ttt"
	"github.com/alphazero/engine/mapper"
	"github.com/alphazero/engine/zero"
)

type uniformEvaluator struct{}

func (uniformEvaluator) EvaluateBatch(reqs []zero.Request) []zero.Response {
	out := make([]zero.Response, len(reqs))
	for i, r := range reqs {
		n := len(r.Board.AvailableMoves())
		policy := make([]float32, n)
		for j := range policy {
			policy[j] = 1 / float32(n)
		}
		out[i] = zero.Response{Node: r.Node, Policy: policy}
	}
	return out
}

func TestGeneratorPlaysGameToCompletion(t *testing.T) {
	box := NewSettingsBox(Settings{
		MaxGameLength:  20,
		Weights:        zero.DefaultWeights(),
		FullSearchProb: 1.0,
		FullIterations: 20,
		PartIterations: 5,
		Temperature:    1.0,
	})
	gen := NewGenerator(0, GameConfig{MaxLegalMoves: ttt.Size, TopMoves: 4}, mapper.TTT{}, box, 1)

	sim := gen.PlayGame(ttt.New(), uniformEvaluator{}, nil, nil)
	require.NotNil(t, sim)
	assert.True(t, sim.Final.IsDone())
	assert.NotEmpty(t, sim.Positions)
	for _, p := range sim.Positions {
		var sum float32
		for _, v := range p.Policy {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-3)
	}
}

func TestGeneratorHonorsCacheSetting(t *testing.T) {
	box := NewSettingsBox(Settings{
		MaxGameLength:  20,
		Weights:        zero.DefaultWeights(),
		FullSearchProb: 1.0,
		FullIterations: 10,
		PartIterations: 5,
		Temperature:    1.0,
		CacheSize:      16,
	})
	gen := NewGenerator(0, GameConfig{MaxLegalMoves: ttt.Size, TopMoves: 4}, mapper.TTT{}, box, 2)

	updates := make(chan Update, 1024)
	go func() {
		for range updates {
		}
	}()
	sim := gen.PlayGame(ttt.New(), uniformEvaluator{}, updates, nil)
	require.NotNil(t, sim)
	require.NotNil(t, gen.cache)
}

func TestGeneratorStopFuncEndsGameEarly(t *testing.T) {
	box := NewSettingsBox(Settings{
		MaxGameLength:  20,
		Weights:        zero.DefaultWeights(),
		FullSearchProb: 1.0,
		FullIterations: 10,
		PartIterations: 5,
		Temperature:    1.0,
	})
	gen := NewGenerator(0, GameConfig{MaxLegalMoves: ttt.Size, TopMoves: 4}, mapper.TTT{}, box, 3)

	sim := gen.PlayGame(ttt.New(), uniformEvaluator{}, nil, func() bool { return true })
	assert.Nil(t, sim)
}

func TestSettingsBoxConcurrentLoadStore(t *testing.T) {
	box := NewSettingsBox(DefaultSettings())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			box.Store(Settings{FullIterations: uint64(i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = box.Load()
		}()
	}
	wg.Wait()
}
