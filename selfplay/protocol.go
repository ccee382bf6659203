package selfplay

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Command is the commander->engine line-delimited JSON wire format (spec.md
// section 4.8). Exactly one of the pointer fields is set per line, mirroring
// the tagged-union Command enum original_source/rust/kz-selfplay's protocol
// defines; Go has no sum type, so the teacher's own `dualnet/config.go`
// pattern of a single struct with optional fields is reused here instead of
// reaching for a third-party union/variant library the pack never imports.
type Command struct {
	StartupSettings *StartupSettings `json:"StartupSettings,omitempty"`
	NewSettings     *Settings        `json:"NewSettings,omitempty"`
	NewNetwork      *string          `json:"NewNetwork,omitempty"`
	WaitForNewNetwork *struct{}      `json:"WaitForNewNetwork,omitempty"`
	Stop            *struct{}        `json:"Stop,omitempty"`
}

// StartupSettings configures a session once at start-up: which game, how
// many concurrent generators, how evaluation is batched, and how finished
// games are grouped into generation files (spec.md section 4.8).
type StartupSettings struct {
	Game           string `json:"game"`
	GamesPerGen    int    `json:"games_per_gen"`
	FirstGenIndex  int    `json:"first_gen_index"`
	GeneratorCount int    `json:"generator_count"`
	BatchSize      int    `json:"batch_size"`
	QueueSize      int    `json:"queue_size"`
	ReorderGames   bool   `json:"reorder_games"`
	OutputDir      string `json:"output_dir"`
}

// ServerUpdate is the engine->commander reply stream.
type ServerUpdate struct {
	Stopped      *struct{}     `json:"Stopped,omitempty"`
	FinishedFile *FinishedFile `json:"FinishedFile,omitempty"`
}

// FinishedFile announces that generation file Index has been written.
type FinishedFile struct {
	Index int `json:"index"`
}

// CommandReader decodes one Command per line from r.
type CommandReader struct {
	scanner *bufio.Scanner
}

func NewCommandReader(r io.Reader) *CommandReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &CommandReader{scanner: s}
}

// Next blocks for the next Command, returning io.EOF when the stream ends.
func (c *CommandReader) Next() (Command, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return Command{}, errors.Wrap(err, "selfplay: reading command")
		}
		return Command{}, io.EOF
	}
	var cmd Command
	if err := json.Unmarshal(c.scanner.Bytes(), &cmd); err != nil {
		return Command{}, errors.Wrap(err, "selfplay: decoding command")
	}
	return cmd, nil
}

// UpdateWriter encodes one ServerUpdate per line to w.
type UpdateWriter struct {
	w   io.Writer
	mu  writerLock
}

// writerLock serializes concurrent Send calls; a plain sync.Mutex would do
// the same job, this is here only because selfplay already models its
// other single-slot locks (SettingsBox) as a buffered channel and the
// style is kept consistent within the package.
type writerLock chan struct{}

func NewUpdateWriter(w io.Writer) *UpdateWriter {
	lock := make(writerLock, 1)
	lock <- struct{}{}
	return &UpdateWriter{w: w, mu: lock}
}

func (u *UpdateWriter) Send(update ServerUpdate) error {
	line, err := json.Marshal(update)
	if err != nil {
		return errors.Wrap(err, "selfplay: encoding update")
	}
	<-u.mu
	defer func() { u.mu <- struct{}{} }()
	if _, err := u.w.Write(append(line, '\n')); err != nil {
		return errors.Wrap(err, "selfplay: writing update")
	}
	return nil
}
