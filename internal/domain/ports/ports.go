// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
package ports

import (
	"context"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
)

// Validator checks a position descriptor and its candidate moves.
// Pure over its inputs; no external calls.
type Validator interface {
	// Validate parses the position and confirms every candidate is legal in
	// it. All-or-nothing: returns *entities.IllegalMoveError as soon as one
	// candidate is not, *entities.InvalidPositionError for a bad descriptor.
	Validate(fen string, moves []string) (*entities.ValidatedInput, error)
}

// EngineService drives the external move-scoring engine. Implementations own
// the engine process lifecycle and must be safe for concurrent use.
type EngineService interface {
	// EvaluateMove scores one candidate at the given depth. The returned
	// score is from the mover's perspective and the principal variation
	// starts from the position after the candidate.
	EvaluateMove(ctx context.Context, pos entities.Position, move entities.Move, depth int) (entities.Evaluation, error)

	// BestMove runs an unconstrained search and returns the engine's own
	// choice together with its evaluation.
	BestMove(ctx context.Context, pos entities.Position, depth int) (entities.Move, entities.Evaluation, error)

	// Close releases the engine process(es). Idempotent.
	Close() error
}

// ExplanationService turns a prompt into narrative text.
type ExplanationService interface {
	// Explain sends the prompt to the text-generation service. Failures are
	// reported as *entities.ExplanationError.
	Explain(ctx context.Context, prompt string) (string, error)
}
