// Command explainer serves the chess move explanation API over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xcro3dile/movexplainer-go/internal/adapters/engine"
	"github.com/0xcro3dile/movexplainer-go/internal/adapters/llm"
	"github.com/0xcro3dile/movexplainer-go/internal/adapters/validator"
	"github.com/0xcro3dile/movexplainer-go/internal/domain/ports"
	"github.com/0xcro3dile/movexplainer-go/internal/domain/usecases"
	httpserver "github.com/0xcro3dile/movexplainer-go/internal/infrastructure/http"
	"github.com/0xcro3dile/movexplainer-go/internal/platform/config"
	"github.com/0xcro3dile/movexplainer-go/internal/platform/metrics"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.FromEnv()
	m := metrics.New()

	pool, err := engine.NewPool(engine.Config{
		Path:          cfg.EnginePath,
		SearchTimeout: cfg.SearchTimeout,
		Logger:        logger,
	}, cfg.EnginePoolSize)
	if err != nil {
		logger.Error("failed to start engine pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	explainer := newExplainer(cfg, logger)

	uc := usecases.NewAnalyzeUseCase(
		validator.New(),
		metrics.InstrumentEngine(pool, m),
		metrics.InstrumentExplainer(explainer, m),
		cfg.EngineDepth,
		pool.Size(),
	)

	srv := httpserver.NewServer(uc, m, cfg.Addr, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
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
