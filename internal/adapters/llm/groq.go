package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "llama-3.1-8b-instant"

	groqSystemMessage = "You are a chess expert who provides clear, educational explanations of chess moves and positions."
)

// GroqConfig holds Groq explanation-service settings.
type GroqConfig struct {
	BaseURL string
	Model   string
	// APIKey authenticates requests; Explain fails immediately without one.
	APIKey string
	// Timeout bounds the whole Explain call including retries.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// InitialBackoff seeds the exponential backoff; zero means 500ms.
	InitialBackoff time.Duration
	Logger         *slog.Logger
}

// GroqExplainer implements ports.ExplanationService against the Groq
// chat-completions API (OpenAI-compatible). Retry semantics match
// OllamaExplainer: connection errors and 5xx are retried with exponential
// backoff, everything else is surfaced immediately.
type GroqExplainer struct {
	cfg    GroqConfig
	client *http.Client
	log    *slog.Logger
}

// NewGroqExplainer creates the adapter, filling unset config with defaults.
func NewGroqExplainer(cfg GroqConfig) *GroqExplainer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultGroqModel
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
	return &GroqExplainer{cfg: cfg, client: &http.Client{}, log: log}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Explain sends the prompt and returns the generated narrative. All failure
// paths yield *entities.ExplanationError with a reason of
// timeout, connection_failed, or service_error.
func (a *GroqExplainer) Explain(ctx context.Context, prompt string) (string, error) {
	if a.cfg.APIKey == "" {
		return "", &entities.ExplanationError{
			Reason: entities.ExplanationServiceError,
			Cause:  errors.New("groq api key not configured"),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	var out string
	attempt := func() error {
		text, err := a.complete(ctx, prompt)
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

// complete performs one chat-completion attempt, classified the same way as
// OllamaExplainer.generate.
func (a *GroqExplainer) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: a.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: groqSystemMessage},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", backoff.Permanent(&entities.ExplanationError{Reason: entities.ExplanationServiceError, Cause: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(&entities.ExplanationError{Reason: entities.ExplanationServiceError, Cause: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

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
			Cause:  fmt.Errorf("groq returned status %d", resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		// A well-formed error response is final; retrying will not help.
		io.Copy(io.Discard, resp.Body)
		return "", backoff.Permanent(&entities.ExplanationError{
			Reason: entities.ExplanationServiceError,
			Cause:  fmt.Errorf("groq returned status %d", resp.StatusCode),
		})
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", backoff.Permanent(&entities.ExplanationError{Reason: entities.ExplanationServiceError, Cause: err})
	}
	if len(chatResp.Choices) == 0 {
		return "", backoff.Permanent(&entities.ExplanationError{
			Reason: entities.ExplanationServiceError,
			Cause:  errors.New("service returned no choices"),
		})
	}
	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", backoff.Permanent(&entities.ExplanationError{
			Reason: entities.ExplanationServiceError,
			Cause:  errors.New("service returned an empty narrative"),
		})
	}
	return text, nil
}
