package testsupport

import (
	"context"
	"strings"
	"sync"

	"dubline/internal/audio"
	"dubline/internal/textutil"
)

// PromptText extracts the paragraph text from a translation user prompt.
func PromptText(user string) string {
	_, after, _ := strings.Cut(user, "Text to translate:\n")
	return after
}

// FakeTranslator is a translation provider that rewrites every word of the
// paragraph as "hola", keeping word counts intact.
type FakeTranslator struct {
	ProviderName string
	// Respond overrides the default rewrite. It receives the paragraph text.
	Respond func(text string) (string, error)

	mu    sync.Mutex
	texts []string
}

// Name implements translate.Provider.
func (f *FakeTranslator) Name() string {
	if f.ProviderName == "" {
		return "fake-translator"
	}
	return f.ProviderName
}

// Complete implements translate.Provider.
func (f *FakeTranslator) Complete(ctx context.Context, _, user string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text := PromptText(user)
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.Respond != nil {
		return f.Respond(text)
	}
	words := make([]string, textutil.WordCount(text))
	for i := range words {
		words[i] = "hola"
	}
	return strings.Join(words, " "), nil
}

// Texts returns the paragraph texts seen so far.
func (f *FakeTranslator) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

// FakeSpeech is a synthesis provider returning a constant-level mono clip.
type FakeSpeech struct {
	ProviderName string
	Format       audio.Format
	// SecondsPerWord sets the clip length; defaults to 0.1.
	SecondsPerWord float64
	Level          float32
	// Fail, when set, decides whether a call errors.
	Fail func(text, voiceID string) error

	mu     sync.Mutex
	voices []string
}

// Name implements synth.Provider.
func (f *FakeSpeech) Name() string {
	if f.ProviderName == "" {
		return "openai"
	}
	return f.ProviderName
}

// Synthesize implements synth.Provider.
func (f *FakeSpeech) Synthesize(ctx context.Context, text, voiceID string) (*audio.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.voices = append(f.voices, voiceID)
	f.mu.Unlock()
	if f.Fail != nil {
		if err := f.Fail(text, voiceID); err != nil {
			return nil, err
		}
	}
	format := f.Format
	if format.SampleRate == 0 {
		format = audio.Format{SampleRate: 24000, Channels: 1}
	}
	perWord := f.SecondsPerWord
	if perWord <= 0 {
		perWord = 0.1
	}
	level := f.Level
	if level == 0 {
		level = 0.5
	}
	track := audio.Silence(format, format.FramesAt(perWord*float64(textutil.WordCount(text))))
	for i := range track.Samples {
		track.Samples[i] = level
	}
	return track, nil
}

// Voices returns the voice IDs requested so far.
func (f *FakeSpeech) Voices() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.voices...)
}
