package selfplay

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThroughputLogsAfterWindowElapses(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	th := NewThroughput(time.Second, logger)

	t0 := time.Unix(0, 0)
	th.Record(Update{RealEvals: 10, Moves: 1}, t0)
	assert.Empty(t, buf.String(), "first Record only seeds the window start")

	th.Record(Update{RealEvals: 10, Moves: 1}, t0.Add(500*time.Millisecond))
	assert.Empty(t, buf.String(), "window has not elapsed yet")

	th.Record(Update{RealEvals: 10, Moves: 1}, t0.Add(1500*time.Millisecond))
	assert.Contains(t, buf.String(), "Throughput:")
}

func TestThroughputResetsCountersAfterLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	th := NewThroughput(time.Second, logger)

	t0 := time.Unix(0, 0)
	th.Reset(t0)
	th.Record(Update{RealEvals: 5}, t0.Add(2*time.Second))
	assert.Equal(t, uint64(0), th.real)
	assert.Equal(t, uint64(0), th.cached)
	assert.Equal(t, uint64(0), th.moves)
}
