package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphazero/engine/board/ttt"
	"github.com/alphazero/engine/mapper"
)

func TestTTTMoveIndexRoundTrip(t *testing.T) {
	m := mapper.TTT{}
	var walk func(b *ttt.Board)
	walk = func(b *ttt.Board) {
		for _, mv := range b.AvailableMoves() {
			idx := m.MoveToIndex(b, mv)
			got, ok := m.IndexToMove(b, idx)
			require.True(t, ok)
			assert.Equal(t, mv, got)
		}
	}
	walk(ttt.New())
}

func TestTTTInputEncodingSizes(t *testing.T) {
	m := mapper.TTT{}
	buf := m.EncodeInput(ttt.New(), nil)
	assert.Len(t, buf, m.InputFullSize())
	assert.Equal(t, 27, m.InputFullSize())
	assert.Equal(t, 9, m.PolicySize())
}
