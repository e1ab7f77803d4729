// Package llm provides the Ollama explanation-service adapter.
// Clean Architecture: Adapter implementing ports.ExplanationService.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "mistral"
	defaultTimeout = 30 * time.Second
	defaultRetries = 3
)

// Config holds explanation-service settings.
type Config struct {
	BaseURL string
	Model   string
	// Timeout bounds the whole Explain call including retries.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// InitialBackoff seeds the exponential backoff; zero means 500ms.
	InitialBackoff time.Duration
	Logger         *slog.Logger
}

// OllamaExplainer implements ports.ExplanationService against the Ollama
// generate API. Transient failures (connection errors, 5xx) are retried with
// exponential backoff; a well-formed error response is surfaced immediately.
type OllamaExplainer struct {
	cfg    Config
	client *http.Client
	log    *slog.Logger
}

// NewOllamaExplainer creates the adapter, filling unset config with defaults.
func NewOllamaExplainer(cfg Config) *OllamaExplainer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultRetries
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &OllamaExplainer{cfg: cfg, client: &http.Client{}, log: log}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Explain sends the prompt and returns the generated narrative. All failure
// paths yield *entities.ExplanationError with a reason of
// timeout, connection_failed, or service_error.
func (a *OllamaExplainer) Explain(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	var out string
	attempt := func() error {
		text, err := a.generate(ctx, prompt)
		if err != nil {
			return err
		}
		out = text
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.cfg.InitialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, a.cfg.MaxRetries), ctx)

	err := backoff.Retry(attempt, policy)
	if err == nil {
		return out, nil
	}
	var expErr *entities.ExplanationError
	if errors.As(err, &expErr) {
		return "", expErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "", &entities.ExplanationError{Reason: entities.ExplanationTimeout, Cause: err}
	}
	return "", &entities.ExplanationError{Reason: entities.ExplanationConnectionFailed, Cause: err}
}

// generate performs one attempt. Retryable failures return a plain
// *entities.ExplanationError; non-retryable ones are wrapped in
// backoff.Permanent so the retry loop stops immediately.
func (a *OllamaExplainer) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: a.cfg.Model, Prompt: prompt})
	if err != nil {
		return "", backoff.Permanent(&entities.ExplanationError{Reason: entities.ExplanationServiceError, Cause: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(&entities.ExplanationError{Reason: entities.ExplanationServiceError, Cause: err})
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return "", backoff.Permanent(&entities.ExplanationError{Reason: entities.ExplanationTimeout, Cause: err})
		}
		return "", &entities.ExplanationError{Reason: entities.ExplanationConnectionFailed, Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		a.log.Warn("explanation service error, will retry", "status", resp.StatusCode)
		return "", &entities.ExplanationError{
			Reason: entities.ExplanationServiceError,
			Cause:  fmt.Errorf("ollama returned status %d", resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		// A well-formed error response is final; retrying will not help.
		io.Copy(io.Discard, resp.Body)
		return "", backoff.Permanent(&entities.ExplanationError{
			Reason: entities.ExplanationServiceError,
			Cause:  fmt.Errorf("ollama returned status %d", resp.StatusCode),
		})
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", backoff.Permanent(&entities.ExplanationError{Reason: entities.ExplanationServiceError, Cause: err})
	}
	if genResp.Response == "" {
		return "", backoff.Permanent(&entities.ExplanationError{
			Reason: entities.ExplanationServiceError,
			Cause:  errors.New("service returned an empty narrative"),
		})
	}
	return genResp.Response, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
