package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"dubline/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and state file locations.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	JobDB     string `toml:"job_db"`
}

// Languages names the source and target languages of a dubbing job.
type Languages struct {
	Source string `toml:"source"`
	Target string `toml:"target"`
}

// Merge contains the thresholds used to group segments into paragraphs.
type Merge struct {
	MaxDurationSeconds float64 `toml:"max_duration_seconds"`
	MinDurationSeconds float64 `toml:"min_duration_seconds"`
	MaxWords           int     `toml:"max_words"`
	MinWords           int     `toml:"min_words"`
	MaxGapSeconds      float64 `toml:"max_gap_seconds"`
}

// Translation controls the paragraph translator.
type Translation struct {
	// Providers lists translation backends in fallback order ("llm", "openai").
	Providers         []string `toml:"providers"`
	Workers           int      `toml:"workers"`
	MaxAttempts       int      `toml:"max_attempts"`
	BackoffSeconds    float64  `toml:"backoff_seconds"`
	ContextWindow     int      `toml:"context_window"`
	CacheMaxWords     int      `toml:"cache_max_words"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
}

// LLM contains OpenRouter-compatible chat completion settings.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// OpenAI contains settings for the OpenAI chat and speech endpoints.
type OpenAI struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	ChatModel      string `toml:"chat_model"`
	SpeechModel    string `toml:"speech_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ElevenLabs contains settings for the ElevenLabs text-to-speech API.
type ElevenLabs struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	ModelID        string `toml:"model_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Voices controls speaker to voice assignment.
type Voices struct {
	Provider         string `toml:"provider"`
	DefaultVoice     string `toml:"default_voice"`
	AutoDetectGender bool   `toml:"auto_detect_gender"`
}

// Synthesis controls text-to-speech dispatch.
type Synthesis struct {
	// Providers lists synthesis backends in fallback order ("openai", "elevenlabs").
	Providers         []string `toml:"providers"`
	Workers           int      `toml:"workers"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
}

// Audio describes the compositing format and the level of the original track.
type Audio struct {
	SampleRate   int     `toml:"sample_rate"`
	Channels     int     `toml:"channels"`
	OriginalGain float64 `toml:"original_gain"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dubline.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and job database locations
//   - Languages: source and target language codes
//   - Merge: paragraph grouping thresholds
//   - Translation: translator workers, retries, cache, and provider order
//   - LLM / OpenAI / ElevenLabs: provider credentials and endpoints
//   - Voices: voice provider and assignment behaviour
//   - Synthesis: speech provider order and dispatch
//   - Audio: compositing format and original track gain
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Languages   Languages   `toml:"languages"`
	Merge       Merge       `toml:"merge"`
	Translation Translation `toml:"translation"`
	LLM         LLM         `toml:"llm"`
	OpenAI      OpenAI      `toml:"openai"`
	ElevenLabs  ElevenLabs  `toml:"elevenlabs"`
	Voices      Voices      `toml:"voices"`
	Synthesis   Synthesis   `toml:"synthesis"`
	Audio       Audio       `toml:"audio"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dubline.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.LogDir}
	if c.Paths.JobDB != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.JobDB))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMTimeout returns the request timeout for the chat completion client.
func (c *Config) LLMTimeout() time.Duration {
	return secondsOrDefault(c.LLM.TimeoutSeconds, defaultTimeoutSeconds)
}

// OpenAITimeout returns the request timeout for the OpenAI client.
func (c *Config) OpenAITimeout() time.Duration {
	return secondsOrDefault(c.OpenAI.TimeoutSeconds, defaultTimeoutSeconds)
}

// ElevenLabsTimeout returns the request timeout for the ElevenLabs client.
func (c *Config) ElevenLabsTimeout() time.Duration {
	return secondsOrDefault(c.ElevenLabs.TimeoutSeconds, defaultTimeoutSeconds)
}

// TranslationBackoff returns the base delay between translation attempts.
func (c *Config) TranslationBackoff() time.Duration {
	if c.Translation.BackoffSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Translation.BackoffSeconds * float64(time.Second))
}

func secondsOrDefault(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}
