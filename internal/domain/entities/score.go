package entities

import (
	"fmt"
	"strings"
)

// scoreKind discriminates the two mutually exclusive score forms.
type scoreKind uint8

const (
	kindCentipawns scoreKind = iota + 1
	kindMate
)

// Score is the engine's verdict on one move: either a centipawn value or a
// forced-mate distance, never both. The zero Score is invalid and only comes
// out of a failed evaluation.
type Score struct {
	kind  scoreKind
	value int
}

// Centipawns constructs a centipawn score. Positive favors the side to move.
func Centipawns(cp int) Score {
	return Score{kind: kindCentipawns, value: cp}
}

// MateIn constructs a forced-mate score. Positive means the side to move
// delivers mate, negative means it receives it.
func MateIn(plies int) Score {
	return Score{kind: kindMate, value: plies}
}

// Centipawns reports the centipawn value, if this is a centipawn score.
func (s Score) Centipawns() (int, bool) {
	return s.value, s.kind == kindCentipawns
}

// Mate reports the mate distance, if this is a mate score.
func (s Score) Mate() (int, bool) {
	return s.value, s.kind == kindMate
}

// IsZero reports whether the score was never populated.
func (s Score) IsZero() bool {
	return s.kind == 0
}

// Negate flips the score to the opponent's perspective.
func (s Score) Negate() Score {
	return Score{kind: s.kind, value: -s.value}
}

// SelectionValue maps the score onto a single total order used to rank
// candidates: any mate for the mover outranks any centipawn value, shorter
// mates outrank longer ones, and a mate against the mover ranks below every
// centipawn value (longer mates against being slightly less bad).
func (s Score) SelectionValue() int {
	switch s.kind {
	case kindMate:
		if s.value > 0 {
			return 100000 - s.value
		}
		return -100000 - s.value
	case kindCentipawns:
		return s.value
	default:
		return -100000 * 10
	}
}

// String renders the score the way engine GUIs do: "+34" / "-120" for
// centipawns, "#3" / "#-5" for mate.
func (s Score) String() string {
	switch s.kind {
	case kindMate:
		return fmt.Sprintf("#%d", s.value)
	case kindCentipawns:
		return fmt.Sprintf("%+d", s.value)
	default:
		return "?"
	}
}

// Phrase renders the score for prompt text: "34 centipawns" or "Mate in 3".
func (s Score) Phrase() string {
	switch s.kind {
	case kindMate:
		return fmt.Sprintf("Mate in %d", s.value)
	case kindCentipawns:
		return fmt.Sprintf("%d centipawns", s.value)
	default:
		return "unknown"
	}
}

// Evaluation is the engine's full verdict on one (position, move) pair:
// the score plus the principal continuation after the move, in game order.
type Evaluation struct {
	Score Score
	Depth int
	PV    []Move
}

// PVString joins the principal variation for display.
func (e Evaluation) PVString() string {
	if len(e.PV) == 0 {
		return ""
	}
	parts := make([]string, len(e.PV))
	for i, m := range e.PV {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}
