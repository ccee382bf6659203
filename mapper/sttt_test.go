package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphazero/engine/board/sttt"
	"github.com/alphazero/engine/mapper"
)

func TestSTTTMoveIndexRoundTrip(t *testing.T) {
	m := mapper.STTT{}
	b := sttt.New()
	for _, mv := range b.AvailableMoves() {
		idx := m.MoveToIndex(b, mv)
		got, ok := m.IndexToMove(b, idx)
		require.True(t, ok)
		assert.Equal(t, mv, got)
	}

	constrained := b.Play(sttt.Move{Big: 0, Small: 4}).(*sttt.Board)
	for _, mv := range constrained.AvailableMoves() {
		idx := m.MoveToIndex(constrained, mv)
		got, ok := m.IndexToMove(constrained, idx)
		require.True(t, ok)
		assert.Equal(t, mv, got)
	}
}

func TestSTTTInputEncodingSizes(t *testing.T) {
	m := mapper.STTT{}
	buf := m.EncodeInput(sttt.New(), nil)
	assert.Len(t, buf, m.InputFullSize())
	assert.Equal(t, 4*sttt.Dim*sttt.CellsPer, m.InputFullSize())
	assert.Equal(t, sttt.Dim*sttt.CellsPer, m.PolicySize())
}
