package selfplay

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphazero/engine/board/ttt"
	"github.com/alphazero/engine/mapper"
)

func TestBinaryOutputAppendAndDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gen", "0001.bin")

	out, err := NewBinaryOutput(path, mapper.TTT{})
	require.NoError(t, err)

	b := ttt.New()
	move := b.AvailableMoves()[0]
	sim := &Simulation{
		Positions: []Position{
			{Board: b, Move: move, Policy: []float32{0.1, 0.9}, Value: 0.5, WDL: [3]float32{0.5, 0.3, 0.2}},
		},
		Outcome: b.Outcome(),
	}
	require.NoError(t, out.Append(sim))
	require.NoError(t, out.Finish())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := gob.NewDecoder(f)
	var recs []record
	for {
		var r record
		if err := dec.Decode(&r); err != nil {
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
		}
		recs = append(recs, r)
	}

	require.Len(t, recs, 1)
	assert.Equal(t, b.String(), recs[0].Board)
	assert.Equal(t, move.String(), recs[0].Move)
	assert.Equal(t, []float32{0.1, 0.9}, recs[0].Policy)
	assert.Equal(t, float32(0.5), recs[0].Value)
}

func TestBinaryOutputCreatesOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "0001.bin")

	_, err := NewBinaryOutput(path, mapper.TTT{})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Dir(path))
	assert.NoError(t, statErr)
}
