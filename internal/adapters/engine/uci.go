// Package engine drives an external UCI chess engine process.
// Clean Architecture: Adapter implementing ports.EngineService.
//
// The engine speaks a strict line-oriented request/response protocol over
// stdin/stdout, so all access to one process is serialized through a mutex.
// One long-lived process is reused across requests to amortize startup cost.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/notnil/chess"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
)

const (
	defaultSearchTimeout = 30 * time.Second
	handshakeTimeout     = 10 * time.Second
	// After a cancelled search the engine still owes us a "bestmove"; wait
	// this long for it before declaring the connection out of sync.
	stopGrace = 2 * time.Second

	// Principal variations are trimmed for prompt use.
	pvLimit = 5
)

// Config holds engine process settings.
type Config struct {
	// Path to the engine binary (e.g. stockfish).
	Path string
	// SearchTimeout bounds one search; zero means 30s.
	SearchTimeout time.Duration
	Logger        *slog.Logger
}

// UCIEngine owns one engine process. Safe for concurrent use; calls are
// serialized on the underlying protocol.
type UCIEngine struct {
	cfg     Config
	cmd     *exec.Cmd
	in      *bufio.Writer
	closeIn func() error
	lines   chan string
	log     *slog.Logger

	mu     sync.Mutex
	broken bool

	closeOnce sync.Once
	closeErr  error
}

// New starts the engine process and performs the UCI handshake.
func New(cfg Config) (*UCIEngine, error) {
	cmd := exec.Command(cfg.Path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &entities.EngineError{Cause: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &entities.EngineError{Cause: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &entities.EngineError{Cause: fmt.Errorf("starting %s: %w", cfg.Path, err)}
	}

	e := newFromIO(cfg, stdin, stdout)
	e.cmd = cmd
	if err := e.handshake(); err != nil {
		e.Close()
		return nil, &entities.EngineError{Cause: err}
	}
	e.log.Info("engine ready", "path", cfg.Path)
	return e, nil
}

// newFromIO wires an engine over arbitrary streams. Tests drive it with a
// scripted fake on the far side of a pipe.
func newFromIO(cfg Config, w io.WriteCloser, r io.Reader) *UCIEngine {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	e := &UCIEngine{
		cfg:     cfg,
		in:      bufio.NewWriter(w),
		closeIn: w.Close,
		lines:   make(chan string, 64),
		log:     log,
	}
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			e.lines <- scanner.Text()
		}
		close(e.lines)
	}()
	return e
}

func (e *UCIEngine) send(cmd string) error {
	if _, err := e.in.WriteString(cmd + "\n"); err != nil {
		return err
	}
	return e.in.Flush()
}

// handshake runs the uci/isready exchange that must precede any search.
func (e *UCIEngine) handshake() error {
	if err := e.send("uci"); err != nil {
		return err
	}
	if err := e.waitFor("uciok"); err != nil {
		return err
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok")
}

func (e *UCIEngine) waitFor(token string) error {
	timer := time.NewTimer(handshakeTimeout)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			return fmt.Errorf("timed out waiting for %q", token)
		case line, ok := <-e.lines:
			if !ok {
				return errors.New("engine closed its output")
			}
			if line == token {
				return nil
			}
		}
	}
}

// EvaluateMove scores one candidate: the candidate is forced onto the
// position and the resulting position searched. The engine reports the
// result from the opponent's point of view, so the sign is flipped to the
// mover's perspective before it surfaces.
func (e *UCIEngine) EvaluateMove(ctx context.Context, pos entities.Position, move entities.Move, depth int) (entities.Evaluation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	info, _, err := e.search(ctx, pos.FEN, move.UCI, depth)
	if err != nil {
		return entities.Evaluation{}, &entities.EngineError{Move: move.UCI, Cause: err}
	}
	score, err := scoreFromInfo(info)
	if err != nil {
		return entities.Evaluation{}, &entities.EngineError{Move: move.UCI, Cause: err}
	}
	pv, err := translatePV(pos.FEN, move.UCI, info.pv, pvLimit)
	if err != nil {
		return entities.Evaluation{}, &entities.EngineError{Move: move.UCI, Cause: err}
	}
	// "mate 0" on the searched position means the candidate itself delivered
	// checkmate; from the mover's side that is mate in one, not mate against.
	if m, ok := score.Mate(); ok && m == 0 {
		score = entities.MateIn(1)
	} else {
		score = score.Negate()
	}
	return entities.Evaluation{
		Score: score,
		Depth: searchDepth(info, depth),
		PV:    pv,
	}, nil
}

// BestMove runs an unconstrained search and returns the engine's own choice.
// The score is already from the mover's perspective; the surfaced principal
// variation starts after the chosen move, matching EvaluateMove.
func (e *UCIEngine) BestMove(ctx context.Context, pos entities.Position, depth int) (entities.Move, entities.Evaluation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	info, bestUCI, err := e.search(ctx, pos.FEN, "", depth)
	if err != nil {
		return entities.Move{}, entities.Evaluation{}, &entities.EngineError{Cause: err}
	}
	if bestUCI == "" {
		return entities.Move{}, entities.Evaluation{}, &entities.EngineError{Cause: errors.New("engine reported no legal move")}
	}
	score, err := scoreFromInfo(info)
	if err != nil {
		return entities.Move{}, entities.Evaluation{}, &entities.EngineError{Cause: err}
	}

	best, err := translateMove(pos.FEN, bestUCI)
	if err != nil {
		return entities.Move{}, entities.Evaluation{}, &entities.EngineError{Cause: err}
	}
	continuation := info.pv
	switch {
	case len(continuation) == 0:
	case continuation[0] == bestUCI:
		continuation = continuation[1:]
	default:
		// The last info line predates a late change of mind; its moves do
		// not follow the chosen move, so no continuation can be surfaced.
		continuation = nil
	}
	pv, err := translatePV(pos.FEN, bestUCI, continuation, pvLimit)
	if err != nil {
		return entities.Move{}, entities.Evaluation{}, &entities.EngineError{Cause: err}
	}
	return best, entities.Evaluation{
		Score: score,
		Depth: searchDepth(info, depth),
		PV:    pv,
	}, nil
}

// search issues one position/go exchange and reads until bestmove. Caller
// must hold e.mu. A timed-out or cancelled search asks the engine to stop
// and drains the pending output so the protocol stays in sync.
func (e *UCIEngine) search(ctx context.Context, fen, forced string, depth int) (searchInfo, string, error) {
	if e.broken {
		return searchInfo{}, "", errors.New("engine connection is out of sync")
	}

	posCmd := "position fen " + fen
	if forced != "" {
		posCmd += " moves " + forced
	}
	if err := e.send(posCmd); err != nil {
		return searchInfo{}, "", err
	}
	if err := e.send(fmt.Sprintf("go depth %d", depth)); err != nil {
		return searchInfo{}, "", err
	}

	timeout := e.cfg.SearchTimeout
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var last searchInfo
	for {
		select {
		case <-ctx.Done():
			e.abortSearch()
			return searchInfo{}, "", ctx.Err()
		case <-timer.C:
			e.abortSearch()
			return searchInfo{}, "", fmt.Errorf("search exceeded %v", timeout)
		case line, ok := <-e.lines:
			if !ok {
				e.broken = true
				return searchInfo{}, "", errors.New("engine closed its output")
			}
			if info, ok := parseInfo(line); ok {
				last = last.merge(info)
			}
			if best, ok := parseBestMove(line); ok {
				return last, best, nil
			}
		}
	}
}

// abortSearch stops an in-flight search and consumes the bestmove the engine
// still owes. If it never arrives the connection is marked broken and later
// searches fail fast instead of reading a stale response.
func (e *UCIEngine) abortSearch() {
	if err := e.send("stop"); err != nil {
		e.broken = true
		return
	}
	timer := time.NewTimer(stopGrace)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			e.broken = true
			e.log.Warn("engine did not acknowledge stop")
			return
		case line, ok := <-e.lines:
			if !ok {
				e.broken = true
				return
			}
			if _, ok := parseBestMove(line); ok {
				return
			}
		}
	}
}

// Close terminates the engine process. Idempotent.
func (e *UCIEngine) Close() error {
	e.closeOnce.Do(func() {
		_ = e.send("quit")
		_ = e.closeIn()
		if e.cmd != nil {
			done := make(chan error, 1)
			go func() { done <- e.cmd.Wait() }()
			select {
			case err := <-done:
				e.closeErr = err
			case <-time.After(stopGrace):
				_ = e.cmd.Process.Kill()
				e.closeErr = <-done
			}
		}
	})
	return e.closeErr
}

func scoreFromInfo(info searchInfo) (entities.Score, error) {
	switch {
	case info.mate != nil:
		return entities.MateIn(*info.mate), nil
	case info.cp != nil:
		return entities.Centipawns(*info.cp), nil
	default:
		return entities.Score{}, errors.New("engine output carried no score")
	}
}

func searchDepth(info searchInfo, requested int) int {
	if info.depth > 0 {
		return info.depth
	}
	return requested
}

// translatePV replays the engine's principal variation from the position
// after the evaluated move, converting each ply into the domain move form
// (canonical UCI plus SAN). A ply that is not legal where it appears means
// the engine output was malformed.
func translatePV(fen, played string, pv []string, limit int) ([]entities.Move, error) {
	game, err := gameAt(fen)
	if err != nil {
		return nil, err
	}
	if played != "" {
		if _, err := applyUCI(game, played); err != nil {
			return nil, err
		}
	}
	if len(pv) > limit {
		pv = pv[:limit]
	}
	moves := make([]entities.Move, 0, len(pv))
	for _, raw := range pv {
		m, err := applyUCI(game, raw)
		if err != nil {
			return nil, fmt.Errorf("principal variation broke at %s: %w", raw, err)
		}
		moves = append(moves, m)
	}
	return moves, nil
}

// translateMove converts one engine move into the domain form without
// advancing past it.
func translateMove(fen, raw string) (entities.Move, error) {
	game, err := gameAt(fen)
	if err != nil {
		return entities.Move{}, err
	}
	return applyUCI(game, raw)
}

func gameAt(fen string) (*chess.Game, error) {
	fenOpt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("reloading position: %w", err)
	}
	return chess.NewGame(fenOpt), nil
}

// applyUCI plays one engine-notation move on the game, returning it in
// domain form with SAN derived at the position where it was played.
func applyUCI(game *chess.Game, raw string) (entities.Move, error) {
	pos := game.Position()
	decoded, err := chess.UCINotation{}.Decode(pos, raw)
	if err != nil {
		return entities.Move{}, fmt.Errorf("move %s: %w", raw, err)
	}
	var match *chess.Move
	for _, lm := range pos.ValidMoves() {
		if lm.S1() == decoded.S1() && lm.S2() == decoded.S2() && lm.Promo() == decoded.Promo() {
			match = lm
			break
		}
	}
	if match == nil {
		return entities.Move{}, fmt.Errorf("move %s is not legal here", raw)
	}
	m := entities.Move{
		UCI: chess.UCINotation{}.Encode(pos, match),
		SAN: chess.AlgebraicNotation{}.Encode(pos, match),
	}
	if err := game.Move(match); err != nil {
		return entities.Move{}, err
	}
	return m, nil
}
