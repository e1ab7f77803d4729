// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import "strings"

// Position represents a validated chess position.
// The FEN string is opaque to the domain; adapters decode it.
type Position struct {
	FEN         string
	WhiteToMove bool
}

// Move represents a single chess move. UCI is the canonical form
// (origin square, destination square, optional promotion piece);
// SAN is carried for readability when an adapter can derive it.
type Move struct {
	UCI string
	SAN string
}

// String prefers SAN when available for human-facing output.
func (m Move) String() string {
	if m.SAN != "" {
		return m.SAN
	}
	return m.UCI
}

// ValidatedInput is the validator's output: a structurally legal position
// plus the candidate moves confirmed legal in it. Candidates may be empty,
// which means "evaluate the engine's own best move".
type ValidatedInput struct {
	Position   Position
	Candidates []Move
}

// AudienceLevel controls explanation vocabulary and depth.
type AudienceLevel string

const (
	AudienceBeginner     AudienceLevel = "beginner"
	AudienceIntermediate AudienceLevel = "intermediate"
	AudienceExpert       AudienceLevel = "expert"
)

// ParseAudience maps a caller-supplied string onto the closed enumeration,
// defaulting to beginner for anything unrecognized.
func ParseAudience(s string) AudienceLevel {
	switch AudienceLevel(strings.ToLower(strings.TrimSpace(s))) {
	case AudienceIntermediate:
		return AudienceIntermediate
	case AudienceExpert:
		return AudienceExpert
	default:
		return AudienceBeginner
	}
}

// AnalysisRequest carries one analysis order from the presentation layer.
type AnalysisRequest struct {
	FEN      string
	Moves    []string
	Audience AudienceLevel
}

// AnalysisResult is the orchestrator's output. Success implies a non-empty
// explanation and no error text. A failed explanation after a successful
// evaluation still populates BestMove and Score/Mate (degraded result).
type AnalysisResult struct {
	AnalysisID  string `json:"analysis_id,omitempty"`
	Success     bool   `json:"success"`
	Explanation string `json:"explanation,omitempty"`
	Error       string `json:"error,omitempty"`
	BestMove    string `json:"best_move,omitempty"`
	Score       *int   `json:"score,omitempty"`
	Mate        *int   `json:"mate,omitempty"`
}
