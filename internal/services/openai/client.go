package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"dubline/internal/audio"
	"dubline/internal/services"
)

const (
	defaultChatModel   = "gpt-4o-mini"
	defaultSpeechModel = string(goopenai.TTSModel1)
	defaultTimeout     = 60 * time.Second
	translationTemp    = 0.3
)

// SpeechFormat is the layout of the raw PCM returned by the speech endpoint.
var SpeechFormat = audio.Format{SampleRate: 24000, Channels: 1}

// Config captures the OpenAI endpoint settings.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	SpeechModel    string
	TimeoutSeconds int
}

// Client talks to the OpenAI chat and speech endpoints.
type Client struct {
	cfg    Config
	client *goopenai.Client
}

// Option customizes the client.
type Option func(*goopenai.ClientConfig)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *goopenai.ClientConfig) {
		if client != nil {
			cfg.HTTPClient = client
		}
	}
}

// New constructs a client. An empty BaseURL keeps the library default.
func New(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if strings.TrimSpace(cfg.ChatModel) == "" {
		cfg.ChatModel = defaultChatModel
	}
	if strings.TrimSpace(cfg.SpeechModel) == "" {
		cfg.SpeechModel = defaultSpeechModel
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	for _, opt := range opts {
		opt(&clientCfg)
	}
	return &Client{cfg: cfg, client: goopenai.NewClientWithConfig(clientCfg)}
}

// Name identifies the provider in logs and chains.
func (c *Client) Name() string {
	return "openai"
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Complete runs a chat completion with the given prompts.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Configured() {
		return "", services.Wrap(services.ErrPermanent, "translate", "openai chat", "api key required", nil)
	}
	messages := []goopenai.ChatCompletionMessage{}
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role: goopenai.ChatMessageRoleUser, Content: userPrompt,
	})
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.cfg.ChatModel,
		Messages:    messages,
		Temperature: translationTemp,
	})
	if err != nil {
		return "", classify("translate", "openai chat", err)
	}
	for _, choice := range resp.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, nil
		}
	}
	return "", services.Wrap(services.ErrTransient, "translate", "openai chat", "empty completion", nil)
}

// Synthesize renders text with the given voice and returns 24 kHz mono PCM.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (*audio.Track, error) {
	if !c.Configured() {
		return nil, services.Wrap(services.ErrPermanent, "synthesize", "openai speech", "api key required", nil)
	}
	if strings.TrimSpace(voiceID) == "" {
		return nil, services.Wrap(services.ErrPermanent, "synthesize", "openai speech", "voice required", nil)
	}
	resp, err := c.client.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(c.cfg.SpeechModel),
		Input:          text,
		Voice:          goopenai.SpeechVoice(voiceID),
		ResponseFormat: goopenai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return nil, classify("synthesize", "openai speech", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "synthesize", "openai speech", "read body", err)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrTransient, "synthesize", "openai speech", "empty audio", nil)
	}
	track, err := audio.FromPCM16(data, SpeechFormat)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "synthesize", "openai speech", "decode pcm", err)
	}
	return track, nil
}

// HealthCheck lists models to verify the key.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.Configured() {
		return errors.New("openai health: api key required")
	}
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai health: %w", err)
	}
	return nil
}

func classify(stage, op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if quotaExhausted(err) {
		return services.Wrap(services.ErrPermanent, stage, op, "insufficient quota", err)
	}
	status := statusCode(err)
	if status != 0 && !retryableStatus(status) {
		return services.Wrap(services.ErrPermanent, stage, op, fmt.Sprintf("http %d", status), err)
	}
	return services.Wrap(services.ErrTransient, stage, op, "", err)
}

func statusCode(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// quotaExhausted reports a 429 caused by billing rather than rate limiting;
// waiting does not clear it.
func quotaExhausted(err error) bool {
	var apiErr *goopenai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Type == "insufficient_quota" || fmt.Sprint(apiErr.Code) == "insufficient_quota"
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}
