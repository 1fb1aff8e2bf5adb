package config

const (
	defaultConfigPath = "~/.config/dubline/config.toml"
	defaultOutputDir  = "~/.local/share/dubline/output"
	defaultLogDir     = "~/.local/share/dubline/logs"
	defaultJobDB      = "~/.local/share/dubline/jobs.db"

	defaultSourceLanguage = "en"
	defaultTargetLanguage = "es"

	defaultMergeMaxDuration = 30.0
	defaultMergeMinDuration = 5.0
	defaultMergeMaxWords    = 150
	defaultMergeMinWords    = 20
	defaultMergeMaxGap      = 2.0

	defaultTranslationWorkers  = 1
	defaultTranslationAttempts = 3
	defaultTranslationBackoff  = 2.0
	defaultContextWindow       = 2
	defaultCacheMaxWords       = 10
	defaultTranslationRPM      = 60

	defaultLLMBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel       = "google/gemini-3-flash-preview"
	defaultLLMReferer     = "https://github.com/dubline/dubline"
	defaultLLMTitle       = "dubline translator"
	defaultTimeoutSeconds = 60

	defaultOpenAIBaseURL     = "https://api.openai.com/v1"
	defaultOpenAIChatModel   = "gpt-4o-mini"
	defaultOpenAISpeechModel = "tts-1"

	defaultElevenLabsBaseURL = "https://api.elevenlabs.io/v1"
	defaultElevenLabsModelID = "eleven_multilingual_v2"

	defaultVoiceProvider = "openai"
	defaultVoice         = "alloy"

	defaultSynthesisWorkers = 2
	defaultSynthesisRPM     = 50

	defaultSampleRate   = 48000
	defaultChannels     = 2
	defaultOriginalGain = 0.2

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			JobDB:     defaultJobDB,
		},
		Languages: Languages{
			Source: defaultSourceLanguage,
			Target: defaultTargetLanguage,
		},
		Merge: Merge{
			MaxDurationSeconds: defaultMergeMaxDuration,
			MinDurationSeconds: defaultMergeMinDuration,
			MaxWords:           defaultMergeMaxWords,
			MinWords:           defaultMergeMinWords,
			MaxGapSeconds:      defaultMergeMaxGap,
		},
		Translation: Translation{
			Providers:         []string{"llm", "openai"},
			Workers:           defaultTranslationWorkers,
			MaxAttempts:       defaultTranslationAttempts,
			BackoffSeconds:    defaultTranslationBackoff,
			ContextWindow:     defaultContextWindow,
			CacheMaxWords:     defaultCacheMaxWords,
			RequestsPerMinute: defaultTranslationRPM,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		OpenAI: OpenAI{
			BaseURL:        defaultOpenAIBaseURL,
			ChatModel:      defaultOpenAIChatModel,
			SpeechModel:    defaultOpenAISpeechModel,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		ElevenLabs: ElevenLabs{
			BaseURL:        defaultElevenLabsBaseURL,
			ModelID:        defaultElevenLabsModelID,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Voices: Voices{
			Provider:         defaultVoiceProvider,
			DefaultVoice:     defaultVoice,
			AutoDetectGender: true,
		},
		Synthesis: Synthesis{
			Providers:         []string{"openai", "elevenlabs"},
			Workers:           defaultSynthesisWorkers,
			RequestsPerMinute: defaultSynthesisRPM,
		},
		Audio: Audio{
			SampleRate:   defaultSampleRate,
			Channels:     defaultChannels,
			OriginalGain: defaultOriginalGain,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
