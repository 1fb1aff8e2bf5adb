package openai

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dubline/internal/services"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{APIKey: "test", BaseURL: server.URL + "/v1", ChatModel: "gpt-4o-mini"})
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("Authorization = %q", got)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "gpt-4o-mini" || len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" Hola "}}]}`))
	})

	out, err := client.Complete(context.Background(), "translate", "Hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Hola" {
		t.Fatalf("Complete = %q", out)
	}
}

func TestCompleteClassifiesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		marker error
	}{
		{"unauthorized", http.StatusUnauthorized, services.ErrPermanent},
		{"bad request", http.StatusBadRequest, services.ErrPermanent},
		{"rate limited", http.StatusTooManyRequests, services.ErrTransient},
		{"server error", http.StatusBadGateway, services.ErrTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
			})
			_, err := client.Complete(context.Background(), "", "Hello")
			if !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, err)
			}
		})
	}
}

func TestCompleteQuotaExhaustionIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"code", `{"error":{"message":"You exceeded your current quota","type":"requests","code":"insufficient_quota"}}`},
		{"type", `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":null}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.Complete(context.Background(), "", "Hello")
			if !errors.Is(err, services.ErrPermanent) {
				t.Fatalf("expected permanent error, got %v", err)
			}
			if services.IsRetryable(err) {
				t.Fatalf("quota exhaustion must not be retryable: %v", err)
			}
		})
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	})
	_, err := client.Complete(context.Background(), "", "Hello")
	if !errors.Is(err, services.ErrTransient) || !services.IsRetryable(err) {
		t.Fatalf("plain rate limit should stay transient, got %v", err)
	}
}

func TestCompleteEmptyChoicesIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[]}`))
	})
	if _, err := client.Complete(context.Background(), "", "Hello"); !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestMissingKeyIsPermanent(t *testing.T) {
	client := New(Config{})
	if _, err := client.Complete(context.Background(), "", "Hello"); !errors.Is(err, services.ErrPermanent) {
		t.Fatalf("Complete: expected permanent, got %v", err)
	}
	if _, err := client.Synthesize(context.Background(), "Hello", "alloy"); !errors.Is(err, services.ErrPermanent) {
		t.Fatalf("Synthesize: expected permanent, got %v", err)
	}
}

func TestSynthesizeDecodesPCM(t *testing.T) {
	pcm := make([]byte, 2400*2)
	for i := 0; i < 2400; i++ {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(8192)))
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req struct {
			Model          string `json:"model"`
			Input          string `json:"input"`
			Voice          string `json:"voice"`
			ResponseFormat string `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "tts-1" || req.Voice != "nova" || req.ResponseFormat != "pcm" || req.Input != "Hola" {
			t.Errorf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "audio/pcm")
		_, _ = w.Write(pcm)
	})

	track, err := client.Synthesize(context.Background(), "Hola", "nova")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if track.Format != SpeechFormat || track.Frames() != 2400 {
		t.Fatalf("track %s frames=%d", track.Format, track.Frames())
	}
	if track.Samples[0] != 0.25 {
		t.Fatalf("sample = %v", track.Samples[0])
	}
}

func TestSynthesizeServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("overloaded"))
	})
	_, err := client.Synthesize(context.Background(), "Hola", "alloy")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient, got %v", err)
	}
}
