package entities

import "fmt"

// InvalidPositionError reports a position descriptor that does not decode
// to a legal, internally consistent board state.
type InvalidPositionError struct {
	FEN    string
	Reason string
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid position %q: %s", e.FEN, e.Reason)
}

// IllegalMoveError reports a candidate move that is not legal in the
// validated position. Validation is all-or-nothing: one illegal candidate
// fails the whole request.
type IllegalMoveError struct {
	Move string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %q for this position", e.Move)
}

// EngineError reports a failure talking to the move-scoring engine. Move is
// the candidate being evaluated when the failure happened, empty for
// process-level failures or an unconstrained search.
type EngineError struct {
	Move  string
	Cause error
}

func (e *EngineError) Error() string {
	if e.Move == "" {
		return fmt.Sprintf("engine: %v", e.Cause)
	}
	return fmt.Sprintf("engine: evaluating %s: %v", e.Move, e.Cause)
}

func (e *EngineError) Unwrap() error { return e.Cause }

// ExplanationReason classifies explanation-service failures.
type ExplanationReason string

const (
	ExplanationTimeout          ExplanationReason = "timeout"
	ExplanationConnectionFailed ExplanationReason = "connection_failed"
	ExplanationServiceError     ExplanationReason = "service_error"
)

// ExplanationError reports a failure to obtain narrative text.
type ExplanationError struct {
	Reason ExplanationReason
	Cause  error
}

func (e *ExplanationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("explanation service: %s", e.Reason)
	}
	return fmt.Sprintf("explanation service: %s: %v", e.Reason, e.Cause)
}

func (e *ExplanationError) Unwrap() error { return e.Cause }
