// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
package usecases

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
	"github.com/0xcro3dile/movexplainer-go/internal/domain/ports"
	"github.com/0xcro3dile/movexplainer-go/internal/domain/prompt"
)

// AnalyzeUseCase runs the full pipeline: validate the position and
// candidates, score every candidate against the engine, pick the strongest,
// and narrate it for the requested audience.
type AnalyzeUseCase struct {
	validator   ports.Validator
	engine      ports.EngineService
	explainer   ports.ExplanationService
	depth       int
	parallelism int
	log         *slog.Logger
}

// NewAnalyzeUseCase creates an AnalyzeUseCase with injected dependencies.
// parallelism bounds concurrent engine searches and should not exceed the
// number of engine processes behind the service; 1 keeps evaluation serial.
func NewAnalyzeUseCase(
	validator ports.Validator,
	engine ports.EngineService,
	explainer ports.ExplanationService,
	depth, parallelism int,
) *AnalyzeUseCase {
	if depth <= 0 {
		depth = 15
	}
	if parallelism <= 0 {
		parallelism = 1
	}
	return &AnalyzeUseCase{
		validator:   validator,
		engine:      engine,
		explainer:   explainer,
		depth:       depth,
		parallelism: parallelism,
		log:         slog.Default(),
	}
}

// candidateEval pairs one candidate with its engine verdict or failure.
type candidateEval struct {
	move entities.Move
	eval entities.Evaluation
	err  error
}

// Execute runs one analysis. Every failure path yields a result record with
// Success=false rather than an error; when evaluation succeeded but the
// narration did not, the chosen move and its score are still populated.
func (uc *AnalyzeUseCase) Execute(ctx context.Context, req *entities.AnalysisRequest) *entities.AnalysisResult {
	res := uc.execute(ctx, req)
	res.AnalysisID = uuid.NewString()
	if !res.Success {
		uc.log.Warn("analysis failed", "analysis_id", res.AnalysisID, "error", res.Error)
	}
	return res
}

func (uc *AnalyzeUseCase) execute(ctx context.Context, req *entities.AnalysisRequest) *entities.AnalysisResult {
	// 1. Validate position and candidates.
	in, err := uc.validator.Validate(req.FEN, req.Moves)
	if err != nil {
		return &entities.AnalysisResult{Error: err.Error()}
	}

	// 2. Evaluate. An empty candidate list means the engine picks its own
	// best move; its evaluation doubles as the position baseline.
	var (
		evals    []candidateEval
		baseline *entities.Score
	)
	if len(in.Candidates) == 0 {
		move, ev, err := uc.engine.BestMove(ctx, in.Position, uc.depth)
		if err != nil {
			return &entities.AnalysisResult{Error: "engine could not analyze the position: " + err.Error()}
		}
		evals = []candidateEval{{move: move, eval: ev}}
		s := ev.Score
		baseline = &s
	} else {
		baseline = uc.baselineScore(ctx, in.Position)
		evals = uc.evaluateCandidates(ctx, in.Position, in.Candidates)
	}

	// 3. Select. Per-candidate failures were recovered locally; they only
	// become terminal when no candidate evaluated at all.
	best := selectBest(evals)
	if best == nil {
		return &entities.AnalysisResult{Error: "evaluation failed for every candidate: " + lastError(evals)}
	}

	// 4. Narrate.
	text, err := uc.explainer.Explain(ctx, uc.buildPrompt(in, best, evals, baseline, req.Audience))
	result := resultFor(best)
	if err != nil {
		// Degraded result: we know the answer but could not narrate it.
		result.Error = "explanation unavailable: " + err.Error()
		return result
	}

	result.Success = true
	result.Explanation = text
	return result
}

// evaluateCandidates scores every candidate, bounded by the configured
// parallelism. Each candidate's failure is recorded, not propagated, so a
// timeout on one never aborts the others.
func (uc *AnalyzeUseCase) evaluateCandidates(ctx context.Context, pos entities.Position, candidates []entities.Move) []candidateEval {
	evals := make([]candidateEval, len(candidates))
	g := new(errgroup.Group)
	g.SetLimit(uc.parallelism)
	for i, mv := range candidates {
		i, mv := i, mv
		g.Go(func() error {
			ev, err := uc.engine.EvaluateMove(ctx, pos, mv, uc.depth)
			if err != nil {
				uc.log.Warn("candidate evaluation failed", "move", mv.UCI, "error", err)
			}
			evals[i] = candidateEval{move: mv, eval: ev, err: err}
			return nil
		})
	}
	g.Wait()
	return evals
}

// baselineScore evaluates the position before any candidate so the prompt
// can cite the starting point. Best effort: a failure here never fails the
// request.
func (uc *AnalyzeUseCase) baselineScore(ctx context.Context, pos entities.Position) *entities.Score {
	_, ev, err := uc.engine.BestMove(ctx, pos, uc.depth)
	if err != nil {
		uc.log.Warn("baseline evaluation failed", "error", err)
		return nil
	}
	s := ev.Score
	return &s
}

// selectBest picks the evaluation most favorable to the side to move: mate
// for the mover beats any centipawn score, higher centipawns beat lower, a
// mate against ranks below everything. Ties keep the first-listed candidate.
func selectBest(evals []candidateEval) *candidateEval {
	var best *candidateEval
	for i := range evals {
		ce := &evals[i]
		if ce.err != nil {
			continue
		}
		if best == nil || ce.eval.Score.SelectionValue() > best.eval.Score.SelectionValue() {
			best = ce
		}
	}
	return best
}

func lastError(evals []candidateEval) string {
	msg := "no candidates evaluated"
	for _, ce := range evals {
		if ce.err != nil {
			msg = ce.err.Error()
		}
	}
	return msg
}

func (uc *AnalyzeUseCase) buildPrompt(in *entities.ValidatedInput, best *candidateEval, evals []candidateEval, baseline *entities.Score, audience entities.AudienceLevel) string {
	b := prompt.New().
		Position(in.Position.FEN).
		Move(best.move).
		Evaluation(best.eval).
		Audience(audience)
	if baseline != nil {
		b.Baseline(*baseline)
	}
	var alts []prompt.Alternative
	for _, ce := range evals {
		if ce.err != nil || ce.move.UCI == best.move.UCI {
			continue
		}
		alts = append(alts, prompt.Alternative{Move: ce.move, Score: ce.eval.Score})
	}
	if len(alts) > 0 {
		b.Alternatives(alts)
	}
	return b.Build()
}

// resultFor carries the chosen move and its score/mate value into the
// result record, exactly one of the two forms populated.
func resultFor(best *candidateEval) *entities.AnalysisResult {
	res := &entities.AnalysisResult{BestMove: best.move.UCI}
	if cp, ok := best.eval.Score.Centipawns(); ok {
		res.Score = &cp
	}
	if mate, ok := best.eval.Score.Mate(); ok {
		res.Mate = &mate
	}
	return res
}
