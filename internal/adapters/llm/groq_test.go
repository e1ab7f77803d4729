package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
)

func testGroqConfig(baseURL string) GroqConfig {
	return GroqConfig{
		BaseURL:        baseURL,
		Model:          "test-model",
		APIKey:         "test-key",
		Timeout:        2 * time.Second,
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
	}
}

func groqReply(text string) chatResponse {
	var resp chatResponse
	resp.Choices = append(resp.Choices, struct {
		Message chatMessage `json:"message"`
	}{Message: chatMessage{Role: "assistant", Content: text}})
	return resp
}

func TestGroqExplain_ReturnsNarrative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "test-model" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "explain e5" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(groqReply("  A fine pawn break.  "))
	}))
	defer server.Close()

	text, err := NewGroqExplainer(testGroqConfig(server.URL)).Explain(context.Background(), "explain e5")
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}
	if text != "A fine pawn break." {
		t.Errorf("unexpected narrative: %q", text)
	}
}

func TestGroqExplain_MissingAPIKeyFailsWithoutCalling(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	cfg := testGroqConfig(server.URL)
	cfg.APIKey = ""
	_, err := NewGroqExplainer(cfg).Explain(context.Background(), "p")
	var expErr *entities.ExplanationError
	if !errors.As(err, &expErr) || expErr.Reason != entities.ExplanationServiceError {
		t.Fatalf("expected service_error, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("no request should be made without a key, got %d", calls.Load())
	}
}

func TestGroqExplain_RetriesTransientServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(groqReply("Recovered."))
	}))
	defer server.Close()

	text, err := NewGroqExplainer(testGroqConfig(server.URL)).Explain(context.Background(), "p")
	if err != nil {
		t.Fatalf("explain should succeed after retries: %v", err)
	}
	if text != "Recovered." {
		t.Errorf("unexpected narrative: %s", text)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestGroqExplain_DoesNotRetryAuthErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewGroqExplainer(testGroqConfig(server.URL)).Explain(context.Background(), "p")
	var expErr *entities.ExplanationError
	if !errors.As(err, &expErr) || expErr.Reason != entities.ExplanationServiceError {
		t.Fatalf("expected service_error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("auth errors must not be retried, got %d attempts", calls.Load())
	}
}

func TestGroqExplain_NoChoicesIsServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer server.Close()

	_, err := NewGroqExplainer(testGroqConfig(server.URL)).Explain(context.Background(), "p")
	var expErr *entities.ExplanationError
	if !errors.As(err, &expErr) || expErr.Reason != entities.ExplanationServiceError {
		t.Fatalf("expected service_error, got %v", err)
	}
}

func TestNewGroqExplainer_Defaults(t *testing.T) {
	a := NewGroqExplainer(GroqConfig{APIKey: "k"})
	if a.cfg.BaseURL != defaultGroqBaseURL {
		t.Errorf("base url = %s", a.cfg.BaseURL)
	}
	if a.cfg.Model != defaultGroqModel {
		t.Errorf("model = %s", a.cfg.Model)
	}
	if a.cfg.Timeout != defaultTimeout || a.cfg.MaxRetries != defaultRetries {
		t.Errorf("unexpected defaults: %+v", a.cfg)
	}
}
