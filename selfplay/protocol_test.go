package selfplay

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandReaderDecodesEachLineIndependently(t *testing.T) {
	input := strings.NewReader(
		`{"StartupSettings":{"game":"ttt","games_per_gen":10,"generator_count":4}}` + "\n" +
			`{"NewSettings":{"MaxGameLength":500}}` + "\n" +
			`{"Stop":{}}` + "\n",
	)
	r := NewCommandReader(input)

	cmd1, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, cmd1.StartupSettings)
	assert.Equal(t, "ttt", cmd1.StartupSettings.Game)
	assert.Equal(t, 4, cmd1.StartupSettings.GeneratorCount)

	cmd2, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, cmd2.NewSettings)
	assert.EqualValues(t, 500, cmd2.NewSettings.MaxGameLength)

	cmd3, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, cmd3.Stop)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestUpdateWriterEncodesOnePerLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewUpdateWriter(&buf)

	require.NoError(t, w.Send(ServerUpdate{FinishedFile: &FinishedFile{Index: 3}}))
	require.NoError(t, w.Send(ServerUpdate{Stopped: &struct{}{}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"index":3`)
	assert.Contains(t, lines[1], `"Stopped"`)
}
