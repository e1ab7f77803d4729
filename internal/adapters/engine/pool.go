package engine

import (
	"context"
	"fmt"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
)

// Pool spreads searches over a bounded set of long-lived engine processes so
// candidates can be evaluated concurrently without violating the one-search-
// at-a-time protocol of a single process. A size of 1 degenerates to fully
// serialized access, which is the safe default.
type Pool struct {
	idle chan *UCIEngine
	all  []*UCIEngine
}

// NewPool starts size engine processes. On any start failure the already
// started processes are shut down.
func NewPool(cfg Config, size int) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	p := &Pool{idle: make(chan *UCIEngine, size)}
	for i := 0; i < size; i++ {
		e, err := New(cfg)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("starting engine %d of %d: %w", i+1, size, err)
		}
		p.all = append(p.all, e)
		p.idle <- e
	}
	return p, nil
}

// Size reports the number of pooled engine processes.
func (p *Pool) Size() int {
	return len(p.all)
}

// EvaluateMove runs the search on the next free engine. Waiting for a free
// engine respects the caller's context, so one cancelled request never
// blocks another request's searches.
func (p *Pool) EvaluateMove(ctx context.Context, pos entities.Position, move entities.Move, depth int) (entities.Evaluation, error) {
	e, err := p.acquire(ctx)
	if err != nil {
		return entities.Evaluation{}, &entities.EngineError{Move: move.UCI, Cause: err}
	}
	defer p.release(e)
	return e.EvaluateMove(ctx, pos, move, depth)
}

// BestMove runs an unconstrained search on the next free engine.
func (p *Pool) BestMove(ctx context.Context, pos entities.Position, depth int) (entities.Move, entities.Evaluation, error) {
	e, err := p.acquire(ctx)
	if err != nil {
		return entities.Move{}, entities.Evaluation{}, &entities.EngineError{Cause: err}
	}
	defer p.release(e)
	return e.BestMove(ctx, pos, depth)
}

func (p *Pool) acquire(ctx context.Context) (*UCIEngine, error) {
	select {
	case e := <-p.idle:
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pool) release(e *UCIEngine) {
	p.idle <- e
}

// Close shuts down every pooled process, returning the first error seen.
func (p *Pool) Close() error {
	var first error
	for _, e := range p.all {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
