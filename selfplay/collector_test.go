package selfplay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphazero/engine/board"
)

func simWithOutcome(o board.Outcome) *Simulation {
	return &Simulation{Outcome: o}
}

func noErrFile(files *[][]*Simulation) func(int, []*Simulation) error {
	return func(index int, games []*Simulation) error {
		*files = append(*files, games)
		return nil
	}
}

func TestCollectorFlushesInArrivalOrderWithoutReorder(t *testing.T) {
	var files [][]*Simulation
	c := NewCollector(2, 0, false, noErrFile(&files))

	a := simWithOutcome(board.WinX)
	b := simWithOutcome(board.WinO)
	require.NoError(t, c.Submit(0, a))
	assert.Empty(t, files)
	require.NoError(t, c.Submit(1, b))
	require.Len(t, files, 1)
	assert.Equal(t, []*Simulation{a, b}, files[0])
}

func TestCollectorReordersOutOfSequenceSubmissions(t *testing.T) {
	var files [][]*Simulation
	c := NewCollector(3, 5, true, noErrFile(&files))

	g0, g1, g2 := simWithOutcome(board.WinX), simWithOutcome(board.Draw), simWithOutcome(board.WinO)

	require.NoError(t, c.Submit(2, g2))
	assert.Equal(t, 1, c.PendingCount())
	require.NoError(t, c.Submit(0, g0))
	assert.Equal(t, 1, c.PendingCount()) // g0 flushed into current, g2 still waiting on g1
	require.NoError(t, c.Submit(1, g1))

	require.Len(t, files, 1)
	assert.Equal(t, []*Simulation{g0, g1, g2}, files[0])
	assert.Equal(t, 0, c.PendingCount())
}

func TestCollectorGenerationIndexIncrements(t *testing.T) {
	var indices []int
	c := NewCollector(1, 10, false, func(index int, games []*Simulation) error {
		indices = append(indices, index)
		return nil
	})
	require.NoError(t, c.Submit(0, simWithOutcome(board.WinX)))
	require.NoError(t, c.Submit(0, simWithOutcome(board.WinO)))
	assert.Equal(t, []int{10, 11}, indices)
}

func TestCollectorCarriesOverflowGamesToNextFile(t *testing.T) {
	var files [][]*Simulation
	c := NewCollector(1, 0, false, noErrFile(&files))
	a, b, d := simWithOutcome(board.WinX), simWithOutcome(board.WinO), simWithOutcome(board.Draw)
	require.NoError(t, c.Submit(0, a))
	require.NoError(t, c.Submit(0, b))
	require.NoError(t, c.Submit(0, d))
	require.Len(t, files, 3)
	assert.Equal(t, []*Simulation{a}, files[0])
	assert.Equal(t, []*Simulation{b}, files[1])
	assert.Equal(t, []*Simulation{d}, files[2])
}

func TestCollectorSubmitAggregatesOnFileErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewCollector(1, 0, false, func(index int, games []*Simulation) error {
		return boom
	})
	err := c.Submit(0, simWithOutcome(board.WinX))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCollectorCloseFlushesPartialBatch(t *testing.T) {
	var files [][]*Simulation
	c := NewCollector(5, 0, false, noErrFile(&files))
	a := simWithOutcome(board.WinX)
	require.NoError(t, c.Submit(0, a))
	assert.Empty(t, files, "below games_per_gen, nothing flushed yet")

	require.NoError(t, c.Close())
	require.Len(t, files, 1)
	assert.Equal(t, []*Simulation{a}, files[0])
}

func TestCollectorCloseFlushesStuckReorderBuffer(t *testing.T) {
	var files [][]*Simulation
	c := NewCollector(5, 0, true, noErrFile(&files))
	g2 := simWithOutcome(board.WinO)
	// seq 1's game never finishes; seq 2 must not be lost on shutdown.
	require.NoError(t, c.Submit(2, g2))
	assert.Equal(t, 1, c.PendingCount())

	require.NoError(t, c.Close())
	require.Len(t, files, 1)
	assert.Equal(t, []*Simulation{g2}, files[0])
	assert.Equal(t, 0, c.PendingCount())
}

func TestCollectorCloseIsNoOpWhenNothingBuffered(t *testing.T) {
	var files [][]*Simulation
	c := NewCollector(5, 0, false, noErrFile(&files))
	require.NoError(t, c.Close())
	assert.Empty(t, files)
}
