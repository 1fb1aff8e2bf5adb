package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dubline/internal/audio"
	"dubline/internal/services"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io/v1"
	defaultModelID = "eleven_multilingual_v2"
	defaultTimeout = 60 * time.Second
	outputFormat   = "pcm_24000"
)

// SpeechFormat is the layout of the PCM requested from the API.
var SpeechFormat = audio.Format{SampleRate: 24000, Channels: 1}

// Config captures ElevenLabs settings.
type Config struct {
	APIKey         string
	BaseURL        string
	ModelID        string
	TimeoutSeconds int
}

// Client calls the ElevenLabs text-to-speech endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			ModelID:        strings.TrimSpace(cfg.ModelID),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	if c.cfg.BaseURL == "" {
		c.cfg.BaseURL = defaultBaseURL
	}
	if c.cfg.ModelID == "" {
		c.cfg.ModelID = defaultModelID
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider in logs and chains.
func (c *Client) Name() string {
	return "elevenlabs"
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type speechRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("elevenlabs: http %d: %s", e.StatusCode, e.Body)
}

// Synthesize renders text with the given voice ID.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (*audio.Track, error) {
	if !c.Configured() {
		return nil, services.Wrap(services.ErrPermanent, "synthesize", "elevenlabs speech", "api key required", nil)
	}
	voiceID = strings.TrimSpace(voiceID)
	if voiceID == "" {
		return nil, services.Wrap(services.ErrPermanent, "synthesize", "elevenlabs speech", "voice required", nil)
	}
	body, err := json.Marshal(speechRequest{Text: text, ModelID: c.cfg.ModelID})
	if err != nil {
		return nil, services.Wrap(services.ErrPermanent, "synthesize", "elevenlabs speech", "encode body", err)
	}
	endpoint := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s",
		c.cfg.BaseURL, url.PathEscape(voiceID), outputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrPermanent, "synthesize", "elevenlabs speech", "new request", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/pcm")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrTransient, "synthesize", "elevenlabs speech", "http error", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "synthesize", "elevenlabs speech", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &statusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
		marker := services.ErrTransient
		if !retryableStatus(resp.StatusCode) {
			marker = services.ErrPermanent
		}
		return nil, services.Wrap(marker, "synthesize", "elevenlabs speech", "", statusErr)
	}
	if len(payload) == 0 {
		return nil, services.Wrap(services.ErrTransient, "synthesize", "elevenlabs speech", "empty audio", nil)
	}
	track, err := audio.FromPCM16(payload, SpeechFormat)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "synthesize", "elevenlabs speech", "decode pcm", err)
	}
	return track, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}
