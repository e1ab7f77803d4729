// Command analyze runs a single position analysis from the command line
// and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/0xcro3dile/movexplainer-go/internal/adapters/engine"
	"github.com/0xcro3dile/movexplainer-go/internal/adapters/llm"
	"github.com/0xcro3dile/movexplainer-go/internal/adapters/validator"
	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
	"github.com/0xcro3dile/movexplainer-go/internal/domain/ports"
	"github.com/0xcro3dile/movexplainer-go/internal/domain/usecases"
	"github.com/0xcro3dile/movexplainer-go/internal/platform/config"
)

type moveList []string

func (m *moveList) String() string { return strings.Join(*m, ",") }

func (m *moveList) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	var (
		fen      string
		moves    moveList
		audience string
		depth    int
	)
	flag.StringVar(&fen, "fen", "", "position in FEN notation (required)")
	flag.Var(&moves, "move", "candidate move in UCI notation (repeatable; omit to let the engine choose)")
	flag.StringVar(&audience, "audience", "beginner", "explanation audience: beginner, intermediate or expert")
	flag.IntVar(&depth, "depth", 0, "engine search depth (0 uses the configured default)")
	flag.Parse()

	if fen == "" {
		fmt.Fprintln(os.Stderr, "analyze: -fen is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := config.FromEnv()
	if depth <= 0 {
		depth = cfg.EngineDepth
	}

	eng, err := engine.New(engine.Config{
		Path:          cfg.EnginePath,
		SearchTimeout: cfg.SearchTimeout,
		Logger:        logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze: starting engine: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()

	explainer := newExplainer(cfg, logger)

	uc := usecases.NewAnalyzeUseCase(validator.New(), eng, explainer, depth, 1)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := uc.Execute(ctx, &entities.AnalysisRequest{
		FEN:      fen,
		Moves:    moves,
		Audience: entities.ParseAudience(audience),
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze: encoding result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if !result.Success {
		os.Exit(1)
	}
}

// newExplainer picks the explanation backend from LLM_PROVIDER.
func newExplainer(cfg config.Config, logger *slog.Logger) ports.ExplanationService {
	if cfg.LLMProvider == "groq" {
		return llm.NewGroqExplainer(llm.GroqConfig{
			Model:      cfg.GroqModel,
			APIKey:     cfg.GroqAPIKey,
			Timeout:    cfg.ExplainTimeout,
			MaxRetries: cfg.ExplainRetries,
			Logger:     logger,
		})
	}
	return llm.NewOllamaExplainer(llm.Config{
		BaseURL:    cfg.OllamaURL,
		Model:      cfg.OllamaModel,
		Timeout:    cfg.ExplainTimeout,
		MaxRetries: cfg.ExplainRetries,
		Logger:     logger,
	})
}
