// Package validator checks position descriptors and candidate moves.
// Clean Architecture: Adapter implementing ports.Validator on top of notnil/chess.
package validator

import (
	"strings"

	"github.com/notnil/chess"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
)

// ChessValidator implements ports.Validator using the notnil/chess move
// generator. Stateless and safe for concurrent use.
type ChessValidator struct{}

// New creates a ChessValidator.
func New() *ChessValidator {
	return &ChessValidator{}
}

// Validate parses the FEN, generates the legal moves of the position, and
// confirms every candidate against them. The first illegal candidate fails
// the whole request; no partial candidate sets.
func (v *ChessValidator) Validate(fen string, moves []string) (*entities.ValidatedInput, error) {
	fen = strings.TrimSpace(fen)
	// notnil/chess tolerates some truncated descriptors; the contract is a
	// full six-field FEN.
	if len(strings.Fields(fen)) != 6 {
		return nil, &entities.InvalidPositionError{FEN: fen, Reason: "expected 6 FEN fields"}
	}

	fenOpt, err := chess.FEN(fen)
	if err != nil {
		return nil, &entities.InvalidPositionError{FEN: fen, Reason: err.Error()}
	}
	game := chess.NewGame(fenOpt)
	pos := game.Position()
	legal := pos.ValidMoves()

	candidates := make([]entities.Move, 0, len(moves))
	for _, raw := range moves {
		normalized := strings.ToLower(strings.TrimSpace(raw))
		decoded, err := chess.UCINotation{}.Decode(pos, normalized)
		if err != nil {
			return nil, &entities.IllegalMoveError{Move: raw}
		}
		match := findLegal(legal, decoded)
		if match == nil {
			return nil, &entities.IllegalMoveError{Move: raw}
		}
		candidates = append(candidates, entities.Move{
			UCI: chess.UCINotation{}.Encode(pos, match),
			SAN: chess.AlgebraicNotation{}.Encode(pos, match),
		})
	}

	return &entities.ValidatedInput{
		Position: entities.Position{
			FEN:         pos.String(),
			WhiteToMove: pos.Turn() == chess.White,
		},
		Candidates: candidates,
	}, nil
}

// findLegal returns the generated legal move matching the decoded candidate.
// Matching by squares plus promotion piece is enough to identify a move; the
// generated move carries the tags (castle, en passant) the decoder may lack.
func findLegal(legal []*chess.Move, m *chess.Move) *chess.Move {
	for _, lm := range legal {
		if lm.S1() == m.S1() && lm.S2() == m.S2() && lm.Promo() == m.Promo() {
			return lm
		}
	}
	return nil
}
