package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dubline/internal/services"
)

func contentResponse(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"finish_reason": "stop",
				"message":       map[string]any{"content": content},
			},
		},
	}
}

func TestClientCompleteSendsPrompts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "dubline" {
			t.Errorf("X-Title = %q", got)
		}
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "demo-model" || len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.ResponseFormat != nil {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(contentResponse("  Hola, mundo  "))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model", Title: "dubline"})
	out, err := client.Complete(context.Background(), "translate", "Hello, world")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if out != "Hola, mundo" {
		t.Fatalf("Complete = %q", out)
	}
}

func TestClientCompleteTolerantPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"delta", map[string]any{"choices": []any{map[string]any{"delta": map[string]any{"content": "Hola"}}}}},
		{"legacy text", map[string]any{"choices": []any{map[string]any{"text": "Hola"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(tt.payload)
			}))
			defer server.Close()
			out, err := NewClient(Config{APIKey: "k", BaseURL: server.URL}).Complete(context.Background(), "", "Hello")
			if err != nil || out != "Hola" {
				t.Fatalf("Complete = %q, %v", out, err)
			}
		})
	}
}

func TestClientCompleteRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{}).Complete(context.Background(), "sys", "user")
	if !errors.Is(err, services.ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestClientCompleteClassifiesUnauthorizedAsPermanent(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	_, err := NewClient(Config{APIKey: "bad", BaseURL: server.URL}).Complete(context.Background(), "sys", "user")
	if !errors.Is(err, services.ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("401 must not be retried, got %d calls", calls)
	}
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected wrapped status error, got %v", err)
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
			return
		}
		_ = json.NewEncoder(w).Encode(contentResponse("Bonjour"))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
	)
	out, err := client.Complete(context.Background(), "sys", "Hello")
	if err != nil || out != "Bonjour" {
		t.Fatalf("Complete = %q, %v", out, err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientEmptyContentExhaustsAsTransient(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(contentResponse(""))
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(3),
	)
	_, err := client.Complete(context.Background(), "sys", "Hello")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !strings.Contains(err.Error(), "finish_reason=\"stop\"") {
		t.Fatalf("expected finish reason in %q", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestClientHealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		content string
		status  int
		wantErr bool
	}{
		{"plain json", `{"ok":true}`, http.StatusOK, false},
		{"code fence", "```json\n{\"ok\":true}\n```", http.StatusOK, false},
		{"not ok", `{"ok":false}`, http.StatusOK, true},
		{"unauthorized", "", http.StatusUnauthorized, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req chatCompletionRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				if req.ResponseFormat["type"] != "json_object" {
					t.Errorf("health check must request json, got %+v", req.ResponseFormat)
				}
				if tt.status != http.StatusOK {
					w.WriteHeader(tt.status)
					return
				}
				_ = json.NewEncoder(w).Encode(contentResponse(tt.content))
			}))
			defer server.Close()
			err := NewClient(Config{APIKey: "test", BaseURL: server.URL}).HealthCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("HealthCheck error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	var out struct {
		Value int `json:"value"`
	}
	if err := DecodeLLMJSON("Sure! Here it is: {\"value\": 7} hope that helps", &out); err != nil || out.Value != 7 {
		t.Fatalf("DecodeLLMJSON = %+v, %v", out, err)
	}
	if err := DecodeLLMJSON("   ", &out); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
