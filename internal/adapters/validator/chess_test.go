package validator

import (
	"errors"
	"testing"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
)

const (
	startFEN     = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	afterE4FEN   = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	promotionFEN = "8/P7/8/8/8/8/k6K/8 w - - 0 1"
)

func TestValidate_LegalCandidates(t *testing.T) {
	in, err := New().Validate(afterE4FEN, []string{"e7e5", "g8f6"})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if in.Position.WhiteToMove {
		t.Error("black should be to move")
	}
	if len(in.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(in.Candidates))
	}
	if in.Candidates[0].UCI != "e7e5" || in.Candidates[0].SAN != "e5" {
		t.Errorf("unexpected first candidate: %+v", in.Candidates[0])
	}
	if in.Candidates[1].SAN != "Nf6" {
		t.Errorf("expected SAN Nf6, got %s", in.Candidates[1].SAN)
	}
}

func TestValidate_InvalidFEN(t *testing.T) {
	cases := []string{
		"",
		"not a fen",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -", // 5 fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",       // 7 ranks
	}
	for _, fen := range cases {
		_, err := New().Validate(fen, nil)
		var invalid *entities.InvalidPositionError
		if !errors.As(err, &invalid) {
			t.Errorf("FEN %q: expected InvalidPositionError, got %v", fen, err)
		}
	}
}

func TestValidate_IllegalMoveNamesOffender(t *testing.T) {
	_, err := New().Validate(startFEN, []string{"e2e4", "e2e5"})
	var illegal *entities.IllegalMoveError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalMoveError, got %v", err)
	}
	if illegal.Move != "e2e5" {
		t.Errorf("error should name the offending move, got %q", illegal.Move)
	}
}

func TestValidate_AllOrNothing(t *testing.T) {
	// One bad candidate fails the request even when others are legal.
	in, err := New().Validate(startFEN, []string{"e2e4", "zzzz"})
	if err == nil {
		t.Fatalf("expected error, got candidates %v", in.Candidates)
	}
	var illegal *entities.IllegalMoveError
	if !errors.As(err, &illegal) || illegal.Move != "zzzz" {
		t.Errorf("expected IllegalMoveError naming zzzz, got %v", err)
	}
}

func TestValidate_EmptyCandidateListIsValid(t *testing.T) {
	in, err := New().Validate(startFEN, nil)
	if err != nil {
		t.Fatalf("empty candidate list should validate: %v", err)
	}
	if len(in.Candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(in.Candidates))
	}
}

func TestValidate_PromotionMove(t *testing.T) {
	in, err := New().Validate(promotionFEN, []string{"a7a8q"})
	if err != nil {
		t.Fatalf("promotion move should be legal: %v", err)
	}
	if in.Candidates[0].UCI != "a7a8q" {
		t.Errorf("unexpected promotion candidate: %+v", in.Candidates[0])
	}
}

func TestValidate_NormalizesInput(t *testing.T) {
	in, err := New().Validate(startFEN, []string{" E2E4 "})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if in.Candidates[0].UCI != "e2e4" {
		t.Errorf("expected canonical e2e4, got %s", in.Candidates[0].UCI)
	}
}
