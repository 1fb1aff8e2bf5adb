package translate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"dubline/internal/conversation"
	"dubline/internal/fanout"
	"dubline/internal/language"
	"dubline/internal/logging"
	"dubline/internal/services"
	"dubline/internal/textutil"
	"dubline/internal/transcript"
)

const (
	defaultMaxAttempts   = 3
	defaultBackoff       = 2 * time.Second
	defaultCacheMaxWords = 10

	// echoMinTokens and echoSimilarity flag a response that repeats the
	// source text instead of translating it.
	echoMinTokens  = 4
	echoSimilarity = 0.9
)

var (
	errEmptyResponse = errors.New("empty translation")
	errWrongScript   = errors.New("translation not in target script")
	errEcho          = errors.New("translation echoes source text")
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Result is the outcome of translating one paragraph.
type Result struct {
	OriginalText   string
	TranslatedText string
	// Fallback is set when every attempt failed and TranslatedText is the original.
	Fallback bool
	Cached   bool
	Attempts int
}

// Paragraph is a merged paragraph with its translation.
type Paragraph struct {
	transcript.Paragraph
	Result
}

// Option configures a Translator.
type Option func(*Translator)

// WithMaxAttempts sets how many provider calls are made per paragraph.
func WithMaxAttempts(n int) Option {
	return func(t *Translator) {
		if n > 0 {
			t.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay; attempt n waits n times this value.
func WithBackoff(d time.Duration) Option {
	return func(t *Translator) {
		if d >= 0 {
			t.backoff = d
		}
	}
}

// WithSleeper overrides the backoff sleep, mainly for tests.
func WithSleeper(s Sleeper) Option {
	return func(t *Translator) {
		if s != nil {
			t.sleep = s
		}
	}
}

// WithCacheMaxWords sets the longest phrase, in words, that is cached. Zero
// disables the cache.
func WithCacheMaxWords(n int) Option {
	return func(t *Translator) {
		t.cache = newCache(n)
	}
}

// WithLimiter throttles provider calls.
func WithLimiter(l *rate.Limiter) Option {
	return func(t *Translator) {
		t.limiter = l
	}
}

// WithWorkers sets how many paragraphs TranslateAll translates concurrently.
func WithWorkers(n int) Option {
	return func(t *Translator) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		t.logger = logging.NewComponentLogger(logger, "translator")
	}
}

// Translator translates the paragraphs of one job. Its cache and styles are
// per job; create a new Translator for every job.
type Translator struct {
	provider    Provider
	source      string
	target      string
	maxAttempts int
	backoff     time.Duration
	sleep       Sleeper
	cache       *cache
	limiter     *rate.Limiter
	workers     int
	styles      map[string]Style
	logger      *slog.Logger
}

// New constructs a Translator from source to target language.
func New(provider Provider, source, target string, opts ...Option) *Translator {
	t := &Translator{
		provider:    provider,
		source:      source,
		target:      target,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		sleep:       contextSleep,
		cache:       newCache(defaultCacheMaxWords),
		workers:     1,
		styles:      map[string]Style{},
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PrepareStyles computes per-speaker styles for the job's paragraphs.
func (t *Translator) PrepareStyles(paragraphs []transcript.Paragraph) {
	t.styles = PrepareStyles(paragraphs)
}

// Style returns the style prepared for speaker.
func (t *Translator) Style(speaker string) Style {
	if s, ok := t.styles[speaker]; ok {
		return s
	}
	return StyleNeutral
}

// CacheSize reports the number of cached phrases.
func (t *Translator) CacheSize() int {
	return t.cache.len()
}

// Translate translates one paragraph. It never fails: when the provider cannot
// produce a valid translation the original text is returned with Fallback set.
func (t *Translator) Translate(ctx context.Context, p transcript.Paragraph, cc conversation.Context, prior []Pair) Result {
	result := Result{OriginalText: p.Text, TranslatedText: p.Text}
	if textutil.WordCount(p.Text) == 0 {
		return result
	}
	if cached, ok := t.cache.get(p.Text); ok {
		result.TranslatedText = cached
		result.Cached = true
		t.logger.Debug("paragraph translated",
			logging.String("speaker", p.Speaker),
			logging.Bool("cached", true),
		)
		return result
	}

	system := systemPrompt(t.source, t.target)
	user := userPrompt(p.Text, cc, t.Style(p.Speaker), prior)

	var lastErr error
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if err := t.wait(ctx); err != nil {
			lastErr = err
			break
		}
		result.Attempts = attempt
		out, err := t.provider.Complete(ctx, system, user)
		if err == nil {
			out = cleanResponse(out)
			err = t.validate(p.Text, out)
		}
		if err == nil {
			result.TranslatedText = out
			t.cache.put(p.Text, out)
			t.logger.Debug("paragraph translated",
				logging.String("speaker", p.Speaker),
				logging.Int("attempts", attempt),
				logging.Bool("cached", false),
			)
			return result
		}
		lastErr = err
		if ctx.Err() != nil || !services.IsRetryable(err) {
			break
		}
		if attempt < t.maxAttempts {
			t.logger.Debug("translation attempt failed",
				logging.Int("attempt", attempt),
				logging.String("speaker", p.Speaker),
				logging.Error(err),
			)
			if err := t.sleep(ctx, t.backoff*time.Duration(attempt)); err != nil {
				lastErr = err
				break
			}
		}
	}

	result.Fallback = true
	logging.WarnWithContext(logging.WithContext(ctx, t.logger), "translation failed; keeping original text",
		"translation_fallback",
		logging.Int("attempts", result.Attempts),
		logging.Bool("fallback", true),
		logging.String("speaker", p.Speaker),
		logging.Float64("start", p.Start),
		logging.Error(lastErr),
		logging.String(logging.FieldErrorHint, "check translation provider credentials and quota"),
		logging.String(logging.FieldImpact, "paragraph dubbed in the source language"),
	)
	return result
}

func (t *Translator) wait(ctx context.Context) error {
	if t.limiter == nil {
		return ctx.Err()
	}
	return t.limiter.Wait(ctx)
}

func (t *Translator) validate(source, out string) error {
	if textutil.WordCount(out) == 0 {
		return errEmptyResponse
	}
	if !language.MatchesScript(out, t.target) {
		return errWrongScript
	}
	if language.ToISO2(t.source) != language.ToISO2(t.target) && language.SameScript(t.source, t.target) {
		src := textutil.NewFingerprint(source)
		if src.TokenCount() >= echoMinTokens && textutil.CosineSimilarity(src, textutil.NewFingerprint(out)) >= echoSimilarity {
			return errEcho
		}
	}
	return nil
}

// ProgressFunc receives the number of paragraphs finished so far.
type ProgressFunc func(done, total int)

// TranslateAll translates every paragraph. With one worker paragraphs run in
// order and each prompt carries the preceding translations; with more workers
// paragraphs run concurrently without prior translations. The returned slice
// is always in paragraph order. The error is non-nil only when ctx is done.
func (t *Translator) TranslateAll(ctx context.Context, paragraphs []transcript.Paragraph, builder *conversation.Builder, progress ProgressFunc) ([]Paragraph, error) {
	if builder == nil {
		builder = conversation.NewBuilder(conversation.DefaultWindow)
	}
	total := len(paragraphs)
	out := make([]Paragraph, total)

	if t.workers <= 1 {
		var prior []Pair
		for i, p := range paragraphs {
			if err := ctx.Err(); err != nil {
				return out[:i], err
			}
			res := t.Translate(ctx, p, builder.Context(paragraphs, i), prior)
			out[i] = Paragraph{Paragraph: p, Result: res}
			if !res.Fallback {
				prior = append(prior, Pair{Original: res.OriginalText, Translated: res.TranslatedText})
				if len(prior) > MaxPriorPairs {
					prior = prior[1:]
				}
			}
			if progress != nil {
				progress(i+1, total)
			}
		}
		return out, ctx.Err()
	}

	var (
		mu   sync.Mutex
		done int
	)
	results, err := fanout.Run(ctx, total, t.workers, func(ctx context.Context, i int) Result {
		res := t.Translate(ctx, paragraphs[i], builder.Context(paragraphs, i), nil)
		if progress != nil {
			mu.Lock()
			done++
			progress(done, total)
			mu.Unlock()
		}
		return res
	})
	for i, res := range results {
		out[i] = Paragraph{Paragraph: paragraphs[i], Result: res}
	}
	return out, err
}
