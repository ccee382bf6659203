// Command selfplay-server is the self-play CLI surface spec.md section 6
// describes: a TCP listener that, once connected, drives the command
// protocol of section 4.8 end to end - generators, a batched executor,
// a collector writing generation files, and throughput reporting.
// Grounded on the teacher's cmd/train/main.go and cmd/infer/main.go
// (flag-based single-purpose binaries, game selected by a moves file),
// generalized to a network listener per original_source's
// alpha-zero/src/selfplay/server.rs bind-then-serve shape.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/alphazero/engine/board"
	"github.com/alphazero/engine/board/ataxx"
	"github.com/alphazero/engine/board/chess"
	"github.com/alphazero/engine/board/sttt"
	"github.com/alphazero/engine/board/ttt"
	"github.com/alphazero/engine/mapper"
	"github.com/alphazero/engine/network"
	"github.com/alphazero/engine/selfplay"
)

var addr = flag.String("addr", "127.0.0.1:63105", "address to bind the self-play command socket on")

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("selfplay-server: bind %s: %v", *addr, err)
	}
	defer ln.Close()
	log.Printf("selfplay-server: listening on %s", *addr)

	conn, err := ln.Accept()
	if err != nil {
		log.Fatalf("selfplay-server: accept: %v", err)
	}
	defer conn.Close()

	reader := selfplay.NewCommandReader(conn)
	writer := selfplay.NewUpdateWriter(conn)

	cmd, err := reader.Next()
	if err != nil {
		log.Fatalf("selfplay-server: reading first command: %v", err)
	}
	if cmd.StartupSettings == nil {
		log.Fatal("selfplay-server: first command must be StartupSettings")
	}

	session, err := newSession(*cmd.StartupSettings, writer)
	if err != nil {
		log.Fatalf("selfplay-server: %v", err)
	}
	session.run(reader)
}

// session holds everything built from one StartupSettings command: the
// game-specific board/mapper pair, the settings box every generator reads,
// the executor/generators/collector wiring, and the background goroutines
// driving them (spec.md section 4.8, section 5's concurrency model).
type session struct {
	mapper    mapper.Mapper
	gameStart func() board.Board

	settings  *selfplay.SettingsBox
	executor  *selfplay.Executor
	collector *selfplay.Collector
	eval      *network.Evaluator
	writer    *selfplay.UpdateWriter
	outDir    string

	updates chan selfplay.Update
	stopCh  chan struct{}
	stopped bool
	mu      sync.Mutex

	seqMu   sync.Mutex
	nextSeq int

	// runErrs accumulates per-generator Submit errors (spec.md section 4.8
	// shutdown path) so Shutdown can report every generation-file failure
	// instead of only the last one logged.
	errMu   sync.Mutex
	runErrs error

	wg sync.WaitGroup
}

// nextSequence assigns each started game a number in dispatch order across
// every generator, so Collector's reorder_games mode can reassemble games
// into the order they were started regardless of which generator (or how
// fast) finishes first.
func (s *session) nextSequence() int {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	n := s.nextSeq
	s.nextSeq++
	return n
}

func newSession(s selfplay.StartupSettings, writer *selfplay.UpdateWriter) (*session, error) {
	if s.GeneratorCount <= 0 || s.BatchSize <= 0 || s.GamesPerGen <= 0 {
		return nil, fmt.Errorf("invalid StartupSettings: generator_count=%d batch_size=%d games_per_gen=%d",
			s.GeneratorCount, s.BatchSize, s.GamesPerGen)
	}

	m, gameConf, start, err := gameByName(s.Game)
	if err != nil {
		return nil, err
	}

	graph := network.NewCPUGraph(network.CPUConfig{
		InputSize:  m.InputFullSize(),
		PolicySize: m.PolicySize(),
		Hidden:     64,
		BatchSize:  s.BatchSize,
	}, 0xC0FFEE)
	initial := selfplay.DefaultSettings()
	eval := network.NewEvaluator(graph, m, rand.New(rand.NewSource(1)))
	eval.SetRandomSymmetries(initial.RandomSymmetries)

	queue := s.QueueSize
	if queue <= 0 {
		queue = 4 * s.BatchSize
	}
	executor := selfplay.NewExecutor(eval, s.BatchSize, queue)

	sess := &session{
		mapper:    m,
		gameStart: start,

		settings: selfplay.NewSettingsBox(initial),
		executor: executor,
		eval:     eval,
		writer:   writer,
		outDir:   s.OutputDir,
		updates:  make(chan selfplay.Update, 256),
		stopCh:   make(chan struct{}),
	}

	sess.collector = selfplay.NewCollector(s.GamesPerGen, s.FirstGenIndex, s.ReorderGames, sess.onGenerationFile)

	go executor.Run(sess.stopCh)
	go sess.reportThroughput()

	for i := 0; i < s.GeneratorCount; i++ {
		gen := selfplay.NewGenerator(i, gameConf, m, sess.settings, int64(i)+1)
		sess.wg.Add(1)
		go sess.runGenerator(gen, i)
	}

	return sess, nil
}

// gameByName resolves a StartupSettings.Game id to a mapper, a fresh-board
// constructor and a GameConfig, the one place outside tests this engine
// imports a concrete game package (spec.md section 6's game interface is
// otherwise only ever consumed through board.Board).
func gameByName(name string) (mapper.Mapper, selfplay.GameConfig, func() board.Board, error) {
	switch name {
	case "ttt":
		return mapper.TTT{}, selfplay.GameConfig{MaxLegalMoves: 9, TopMoves: 9},
			func() board.Board { return ttt.New() }, nil
	case "sttt":
		return mapper.STTT{}, selfplay.GameConfig{MaxLegalMoves: 81, TopMoves: 16},
			func() board.Board { return sttt.New() }, nil
	case "ataxx":
		m := mapper.Ataxx{Size: 7}
		return m, selfplay.GameConfig{MaxLegalMoves: m.PolicySize(), TopMoves: 16},
			func() board.Board { return ataxx.New(7) }, nil
	case "chess":
		return mapper.Chess{}, selfplay.GameConfig{MaxLegalMoves: 218, TopMoves: 16},
			func() board.Board { return chess.New() }, nil
	default:
		return nil, selfplay.GameConfig{}, nil, fmt.Errorf("unknown game id %q", name)
	}
}

// runGenerator repeatedly plays games until stopped, submitting each
// finished Simulation to the collector and forwarding progress Updates.
// Submit errors (a generation file that failed to write) are accumulated
// rather than dropped, so Shutdown can report every one of them.
func (s *session) runGenerator(gen *selfplay.Generator, _ int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}
		seq := s.nextSequence()
		sim := gen.PlayGame(s.gameStart(), s.executor, s.updates, s.isStopped)
		if sim == nil {
			return
		}
		if err := s.collector.Submit(seq, sim); err != nil {
			s.recordErr(err)
		}
	}
}

// recordErr folds err into the session's accumulated shutdown error via
// go-multierror, the same pattern the teacher's agent.go Agent.Close uses
// for closing several inferers at once.
func (s *session) recordErr(err error) {
	s.errMu.Lock()
	s.runErrs = multierror.Append(s.runErrs, err)
	s.errMu.Unlock()
}

func (s *session) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// onGenerationFile is the collector's callback: write the generation file
// via BinaryOutput and report FinishedFile back to the commander. Every
// Append/Finish failure is aggregated into one error via go-multierror
// rather than logged and discarded, matching the teacher's agent.go
// Agent.Close; Collector.Submit/Close fold this into their own return value.
func (s *session) onGenerationFile(index int, games []*selfplay.Simulation) error {
	path := filepath.Join(s.outDir, fmt.Sprintf("generation_%d.bin", index))
	out, err := selfplay.NewBinaryOutput(path, s.mapper)
	if err != nil {
		return fmt.Errorf("generation %d: %w", index, err)
	}

	var errs error
	for _, sim := range games {
		if err := out.Append(sim); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("generation %d: %w", index, err))
		}
	}
	if err := out.Finish(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("generation %d: %w", index, err))
		return errs
	}
	if err := s.writer.Send(selfplay.ServerUpdate{FinishedFile: &selfplay.FinishedFile{Index: index}}); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("reporting generation %d: %w", index, err))
	}
	return errs
}

func (s *session) reportThroughput() {
	t := selfplay.NewThroughput(5*time.Second, log.Default())
	t.Reset(time.Now())
	for {
		select {
		case <-s.stopCh:
			return
		case u := <-s.updates:
			t.Record(u, time.Now())
		}
	}
}

// run drives the command loop for the lifetime of the connection (spec.md
// section 4.8): NewSettings hot-swaps search parameters, Stop drains
// generators and replies once every one has exited. NewNetwork and
// WaitForNewNetwork are only logged: the evaluator keeps the CPU graph
// built at startup, no graph is loaded and generators are not paused.
func (s *session) run(reader *selfplay.CommandReader) {
	for {
		cmd, err := reader.Next()
		if err != nil {
			log.Printf("selfplay-server: command stream ended: %v", err)
			s.doStop()
			return
		}
		switch {
		case cmd.NewSettings != nil:
			s.settings.Store(*cmd.NewSettings)
			s.eval.SetRandomSymmetries(cmd.NewSettings.RandomSymmetries)
		case cmd.NewNetwork != nil:
			log.Printf("selfplay-server: NewNetwork(%s) requested; this reference build keeps the deterministic CPU graph", *cmd.NewNetwork)
		case cmd.WaitForNewNetwork != nil:
			log.Printf("selfplay-server: WaitForNewNetwork requested; no training loop drives this reference build, ignoring")
		case cmd.Stop != nil:
			s.doStop()
			return
		default:
			log.Printf("selfplay-server: ignoring empty or unrecognized command")
		}
	}
}

func (s *session) doStop() {
	if err := s.Shutdown(); err != nil {
		log.Printf("selfplay-server: shutdown: %v", err)
	}
	os.Exit(0)
}

// Shutdown drains every generator, flushes whatever the collector still
// holds buffered, and reports Stopped to the commander, aggregating every
// error along the way (generation-file write failures recorded during the
// run, the collector's own final flush, and the Stopped report) into one
// error via go-multierror - the same accumulation the teacher's agent.go
// Agent.Close uses for closing several inferers at once. Safe to call more
// than once; only the first call does anything.
func (s *session) Shutdown() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	var errs error
	s.errMu.Lock()
	if s.runErrs != nil {
		errs = multierror.Append(errs, s.runErrs)
	}
	s.errMu.Unlock()

	if err := s.collector.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := s.writer.Send(selfplay.ServerUpdate{Stopped: &struct{}{}}); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("reporting stop: %w", err))
	}
	return errs
}
