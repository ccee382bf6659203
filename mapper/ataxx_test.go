package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphazero/engine/board/ataxx"
	"github.com/alphazero/engine/mapper"
)

func TestAtaxxMoveIndexRoundTrip(t *testing.T) {
	m := mapper.Ataxx{Size: 5}
	b := ataxx.New(5)

	for _, mv := range b.AvailableMoves() {
		idx := m.MoveToIndex(b, mv)
		got, ok := m.IndexToMove(b, idx)
		require.True(t, ok)
		assert.Equal(t, mv.String(), got.String())
	}
}

func TestAtaxxInputSizeMatchesShape(t *testing.T) {
	m := mapper.Ataxx{Size: 5}
	buf := m.EncodeInput(ataxx.New(5), nil)
	assert.Len(t, buf, m.InputFullSize())
	assert.Equal(t, 3*5*5, m.InputFullSize())
	assert.Equal(t, 5*5*5*5+1, m.PolicySize())
}
