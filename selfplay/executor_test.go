package selfplay

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphazero/engine/board/ttt"
	"github.com/alphazero/engine/zero"
)

// countingEvaluator records the batch sizes it was called with and replies
// with each request's node index as its value, so callers can check their
// own request was answered.
type countingEvaluator struct {
	mu    sync.Mutex
	sizes []int
}

func (e *countingEvaluator) EvaluateBatch(reqs []zero.Request) []zero.Response {
	e.mu.Lock()
	e.sizes = append(e.sizes, len(reqs))
	e.mu.Unlock()

	out := make([]zero.Response, len(reqs))
	for i, r := range reqs {
		out[i] = zero.Response{Node: r.Node, Values: zero.Values{Value: float32(r.Node)}}
	}
	return out
}

func TestExecutorAnswersEachConcurrentCallerWithItsOwnResponse(t *testing.T) {
	eval := &countingEvaluator{}
	ex := NewExecutor(eval, 8, 16)
	stop := make(chan struct{})
	go ex.Run(stop)
	defer close(stop)

	b := ttt.New()
	const callers = 6
	var wg sync.WaitGroup
	results := make([]zero.Response, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := ex.EvaluateBatch([]zero.Request{{Node: int32(i), Board: b}})
			results[i] = resp[0]
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		assert.Equal(t, int32(i), r.Node)
		assert.Equal(t, float32(i), r.Values.Value)
	}
}

func TestExecutorRespectsMaxBatchSize(t *testing.T) {
	eval := &countingEvaluator{}
	ex := NewExecutor(eval, 2, 64)
	stop := make(chan struct{})
	go ex.Run(stop)
	defer close(stop)

	b := ttt.New()
	const callers = 20
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ex.EvaluateBatch([]zero.Request{{Node: int32(i), Board: b}})
		}(i)
	}
	wg.Wait()

	eval.mu.Lock()
	defer eval.mu.Unlock()
	for _, size := range eval.sizes {
		assert.LessOrEqual(t, size, 2)
	}
}

func TestExecutorSwapEvaluatorTakesEffectForLaterBatches(t *testing.T) {
	first := &countingEvaluator{}
	ex := NewExecutor(first, 8, 16)
	stop := make(chan struct{})
	go ex.Run(stop)
	defer close(stop)

	b := ttt.New()
	ex.EvaluateBatch([]zero.Request{{Node: 0, Board: b}})

	second := &countingEvaluator{}
	ex.SwapEvaluator(second)

	ex.EvaluateBatch([]zero.Request{{Node: 1, Board: b}})
	time.Sleep(time.Millisecond) // let the run loop settle before inspecting

	first.mu.Lock()
	firstCalls := len(first.sizes)
	first.mu.Unlock()
	second.mu.Lock()
	secondCalls := len(second.sizes)
	second.mu.Unlock()

	require.Equal(t, 1, firstCalls)
	require.Equal(t, 1, secondCalls)
}
