package entities

import (
	"errors"
	"testing"
)

func TestScore_ExactlyOneForm(t *testing.T) {
	cp := Centipawns(-34)
	if _, ok := cp.Centipawns(); !ok {
		t.Error("centipawn score should expose centipawns")
	}
	if _, ok := cp.Mate(); ok {
		t.Error("centipawn score must not expose a mate distance")
	}

	mate := MateIn(3)
	if _, ok := mate.Mate(); !ok {
		t.Error("mate score should expose mate distance")
	}
	if _, ok := mate.Centipawns(); ok {
		t.Error("mate score must not expose centipawns")
	}

	var zero Score
	if !zero.IsZero() {
		t.Error("zero score should report IsZero")
	}
}

func TestScore_SelectionOrdering(t *testing.T) {
	mateFor := MateIn(5)
	shorterMateFor := MateIn(2)
	bigCP := Centipawns(900)
	smallCP := Centipawns(-300)
	mateAgainst := MateIn(-2)
	longerMateAgainst := MateIn(-7)

	if shorterMateFor.SelectionValue() <= mateFor.SelectionValue() {
		t.Error("shorter mate for the mover should rank higher")
	}
	if mateFor.SelectionValue() <= bigCP.SelectionValue() {
		t.Error("any mate for the mover should outrank centipawns")
	}
	if bigCP.SelectionValue() <= smallCP.SelectionValue() {
		t.Error("higher centipawn value should rank higher")
	}
	if smallCP.SelectionValue() <= mateAgainst.SelectionValue() {
		t.Error("mate against the mover should rank below any centipawn score")
	}
	if longerMateAgainst.SelectionValue() <= mateAgainst.SelectionValue() {
		t.Error("a longer mate against should rank above a shorter one")
	}
}

func TestScore_Negate(t *testing.T) {
	if v, _ := Centipawns(34).Negate().Centipawns(); v != -34 {
		t.Errorf("expected -34, got %d", v)
	}
	if v, _ := MateIn(-4).Negate().Mate(); v != 4 {
		t.Errorf("expected 4, got %d", v)
	}
}

func TestScore_Strings(t *testing.T) {
	if got := Centipawns(-34).String(); got != "-34" {
		t.Errorf("unexpected string: %s", got)
	}
	if got := MateIn(3).String(); got != "#3" {
		t.Errorf("unexpected string: %s", got)
	}
	if got := Centipawns(25).Phrase(); got != "25 centipawns" {
		t.Errorf("unexpected phrase: %s", got)
	}
	if got := MateIn(2).Phrase(); got != "Mate in 2" {
		t.Errorf("unexpected phrase: %s", got)
	}
}

func TestParseAudience(t *testing.T) {
	cases := map[string]AudienceLevel{
		"beginner":     AudienceBeginner,
		"Intermediate": AudienceIntermediate,
		" expert ":     AudienceExpert,
		"":             AudienceBeginner,
		"grandmaster":  AudienceBeginner,
	}
	for in, want := range cases {
		if got := ParseAudience(in); got != want {
			t.Errorf("ParseAudience(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMove_String(t *testing.T) {
	if got := (Move{UCI: "g1f3", SAN: "Nf3"}).String(); got != "Nf3" {
		t.Errorf("expected SAN, got %s", got)
	}
	if got := (Move{UCI: "e2e4"}).String(); got != "e2e4" {
		t.Errorf("expected UCI fallback, got %s", got)
	}
}

func TestEvaluation_PVString(t *testing.T) {
	ev := Evaluation{PV: []Move{{UCI: "g1f3", SAN: "Nf3"}, {UCI: "b8c6", SAN: "Nc6"}}}
	if got := ev.PVString(); got != "Nf3 Nc6" {
		t.Errorf("unexpected PV string: %s", got)
	}
}

func TestErrors_Taxonomy(t *testing.T) {
	var illegal *IllegalMoveError
	err := error(&IllegalMoveError{Move: "e2e5"})
	if !errors.As(err, &illegal) || illegal.Move != "e2e5" {
		t.Error("IllegalMoveError should carry the offending move")
	}

	cause := errors.New("broken pipe")
	engErr := &EngineError{Move: "e7e5", Cause: cause}
	if !errors.Is(engErr, cause) {
		t.Error("EngineError should unwrap its cause")
	}

	expErr := &ExplanationError{Reason: ExplanationTimeout}
	var target *ExplanationError
	if !errors.As(error(expErr), &target) || target.Reason != ExplanationTimeout {
		t.Error("ExplanationError should carry its reason")
	}
}
