package prompt

import (
	"strings"
	"testing"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
)

const testFEN = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"

func TestBuilder_EmbedsEngineFactsVerbatim(t *testing.T) {
	ev := entities.Evaluation{
		Score: entities.Centipawns(-34),
		Depth: 15,
		PV: []entities.Move{
			{UCI: "g1f3", SAN: "Nf3"},
			{UCI: "b8c6", SAN: "Nc6"},
		},
	}
	text := New().
		Position(testFEN).
		Move(entities.Move{UCI: "e7e5", SAN: "e5"}).
		Evaluation(ev).
		Audience(entities.AudienceIntermediate).
		Build()

	for _, want := range []string{
		testFEN,
		"e7e5",
		"-34 centipawns",
		"Analysis depth: 15",
		"Nf3 Nc6",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q:\n%s", want, text)
		}
	}
}

func TestBuilder_MatePhrasing(t *testing.T) {
	text := New().
		Move(entities.Move{UCI: "d8h4", SAN: "Qh4#"}).
		Evaluation(entities.Evaluation{Score: entities.MateIn(1)}).
		Build()

	if !strings.Contains(text, "Mate in 1") {
		t.Errorf("prompt should phrase mate scores:\n%s", text)
	}
	if strings.Contains(text, "centipawns") {
		t.Error("mate score must not be phrased as centipawns")
	}
}

func TestBuilder_AudienceInstructions(t *testing.T) {
	base := New().Move(entities.Move{UCI: "e2e4"}).
		Evaluation(entities.Evaluation{Score: entities.Centipawns(25)})

	beginner := base.Audience(entities.AudienceBeginner).Build()
	if !strings.Contains(beginner, "Avoid chess jargon") {
		t.Error("beginner prompt should ban notation jargon")
	}

	intermediate := base.Audience(entities.AudienceIntermediate).Build()
	if !strings.Contains(intermediate, "standard move notation") {
		t.Error("intermediate prompt should allow standard notation")
	}

	expert := base.Audience(entities.AudienceExpert).Build()
	if !strings.Contains(expert, "principal variation") {
		t.Error("expert prompt should reference the principal variation")
	}
}

func TestBuilder_AlternativesAndBaseline(t *testing.T) {
	text := New().
		Move(entities.Move{UCI: "e7e5", SAN: "e5"}).
		Evaluation(entities.Evaluation{Score: entities.Centipawns(-34)}).
		Baseline(entities.Centipawns(-20)).
		Alternatives([]Alternative{
			{Move: entities.Move{UCI: "c7c5", SAN: "c5"}, Score: entities.Centipawns(-40)},
		}).
		Build()

	if !strings.Contains(text, "Evaluation before the move: -20 centipawns") {
		t.Error("prompt should include the baseline evaluation")
	}
	if !strings.Contains(text, "c5: -40 centipawns") {
		t.Errorf("prompt should list alternatives:\n%s", text)
	}
}
