package selfplay

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/alphazero/engine/mapper"
)

// BinaryOutput is the append-only, per-generation training-data file
// spec.md section 6 describes as "opaque to the core": the collector
// calls Append for each finished Simulation and Finish when a generation
// file is complete, and nothing upstream inspects the bytes it writes.
// Grounded on the teacher's agogo.go SaveAZ/LoadAZ, the only place in the
// pack that persists training artifacts to disk; gob is the teacher's own
// choice of encoding, kept here rather than reaching for a schema'd binary
// format no example repo imports.
type BinaryOutput struct {
	mapper mapper.Mapper
	f      *os.File
	enc    *gob.Encoder
	count  int
}

// record is the gob-encoded unit; Board/Move are captured as their
// String() form since board.Board and board.Move are interfaces backed by
// unexported concrete types gob cannot decode without registration, and
// the core treats this file as opaque in any case.
type record struct {
	Board     string
	Move      string
	Policy    []float32
	Value     float32
	WDL       [3]float32
	MovesLeft float32
	RawValue  float32
	RawWDL    [3]float32
	RawPolicy []float32
}

// NewBinaryOutput creates (or truncates) the generation file at path.
func NewBinaryOutput(path string, m mapper.Mapper) (*BinaryOutput, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "selfplay: creating output directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "selfplay: creating generation file")
	}
	return &BinaryOutput{mapper: m, f: f, enc: gob.NewEncoder(f)}, nil
}

// Append writes one finished game's positions to the file.
func (o *BinaryOutput) Append(sim *Simulation) error {
	for _, p := range sim.Positions {
		rec := record{
			Board:     p.Board.String(),
			Move:      p.Move.String(),
			Policy:    p.Policy,
			Value:     p.Value,
			WDL:       p.WDL,
			MovesLeft: p.MovesLeft,
			RawValue:  p.RawValue,
			RawWDL:    p.RawWDL,
			RawPolicy: p.RawPolicy,
		}
		if err := o.enc.Encode(&rec); err != nil {
			return errors.Wrap(err, "selfplay: encoding position")
		}
		o.count++
	}
	return nil
}

// Finish flushes and closes the file.
func (o *BinaryOutput) Finish() error {
	return errors.Wrap(o.f.Close(), "selfplay: closing generation file")
}
