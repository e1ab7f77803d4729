// Package prompt builds audience-targeted prompts for the explanation service.
// Pure domain logic: no side effects, no external calls.
package prompt

import (
	"fmt"
	"strings"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
)

// Alternative is a rejected or secondary candidate shown for comparison.
type Alternative struct {
	Move  entities.Move
	Score entities.Score
}

// Builder assembles the explanation prompt section by section. The move, its
// evaluation phrasing, and the principal variation are embedded verbatim so
// the downstream narrative stays grounded in engine fact.
type Builder struct {
	fen          string
	move         *entities.Move
	eval         *entities.Evaluation
	baseline     *entities.Score
	alternatives []Alternative
	audience     entities.AudienceLevel
}

// New returns an empty builder targeting the beginner audience.
func New() *Builder {
	return &Builder{audience: entities.AudienceBeginner}
}

// Position sets the FEN of the position being discussed.
func (b *Builder) Position(fen string) *Builder {
	b.fen = fen
	return b
}

// Move sets the move under explanation.
func (b *Builder) Move(m entities.Move) *Builder {
	b.move = &m
	return b
}

// Evaluation sets the engine verdict for the move.
func (b *Builder) Evaluation(ev entities.Evaluation) *Builder {
	b.eval = &ev
	return b
}

// Baseline sets the evaluation of the position before the move, when known.
func (b *Builder) Baseline(s entities.Score) *Builder {
	b.baseline = &s
	return b
}

// Alternatives adds other candidates for comparison.
func (b *Builder) Alternatives(alts []Alternative) *Builder {
	b.alternatives = alts
	return b
}

// Audience sets the target reading level.
func (b *Builder) Audience(a entities.AudienceLevel) *Builder {
	b.audience = a
	return b
}

// Build renders the final prompt text.
func (b *Builder) Build() string {
	var sb strings.Builder
	sb.WriteString("You are a chess expert. Explain the following chess move in a clear and educational way.\n\n")

	if b.fen != "" {
		fmt.Fprintf(&sb, "FEN: %s\n\n", b.fen)
	}
	if b.move != nil {
		fmt.Fprintf(&sb, "Move played: %s (%s)\n\n", b.move.String(), b.move.UCI)
	}
	if b.eval != nil {
		fmt.Fprintf(&sb, "Evaluation: %s\n", b.eval.Score.Phrase())
		if b.eval.Depth > 0 {
			fmt.Fprintf(&sb, "Analysis depth: %d\n", b.eval.Depth)
		}
		if pv := b.eval.PVString(); pv != "" {
			fmt.Fprintf(&sb, "Best continuation: %s\n", pv)
		}
		sb.WriteString("\n")
	}
	if b.baseline != nil {
		fmt.Fprintf(&sb, "Evaluation before the move: %s\n\n", b.baseline.Phrase())
	}
	if len(b.alternatives) > 0 {
		sb.WriteString("Alternative moves:\n")
		for _, alt := range b.alternatives {
			fmt.Fprintf(&sb, "  - %s: %s\n", alt.Move.String(), alt.Score.Phrase())
		}
		sb.WriteString("\n")
	}

	sb.WriteString(instructions(b.audience))
	return sb.String()
}

// instructions returns the audience-specific closing block. The enumeration is
// closed; unknown values were already normalized to beginner upstream.
func instructions(a entities.AudienceLevel) string {
	switch a {
	case entities.AudienceExpert:
		return strings.Join([]string{
			"Please explain for a strong club or titled player:",
			"1. The concrete point of the move, citing the principal variation line by line",
			"2. How the evaluation trend compares to the alternatives",
			"3. Long-term structural or dynamic factors the line reveals",
			"",
			"Use standard algebraic notation freely. Be precise and dense.",
		}, "\n")
	case entities.AudienceIntermediate:
		return strings.Join([]string{
			"Please explain for a club-level player:",
			"1. What this move accomplishes",
			"2. The key tactical or strategic themes involved",
			"3. How it compares to the alternatives (if provided)",
			"",
			"You may use standard move notation. Keep the explanation concise but informative.",
		}, "\n")
	default:
		return strings.Join([]string{
			"Please explain for a beginner:",
			"1. What this move does, in plain language",
			"2. Why it helps (or hurts) the player who made it",
			"3. One simple idea to remember from this position",
			"",
			"Avoid chess jargon and notation. Use short, friendly sentences.",
		}, "\n")
	}
}
