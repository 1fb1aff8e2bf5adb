package synth

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"dubline/internal/audio"
	"dubline/internal/fanout"
	"dubline/internal/logging"
	"dubline/internal/services"
	"dubline/internal/voice"
)

const (
	defaultMaxAttempts = 2
	defaultBackoff     = time.Second
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

// Clip is the synthesized audio for one segment, already in the
// compositing format.
type Clip struct {
	Index    int
	Start    float64
	Track    *audio.Track
	Voice    string
	Provider string
	// Fallback is set when Track is silence standing in for a failed call.
	Fallback bool
	// Skipped is set when the segment had no text to speak.
	Skipped  bool
	Attempts int
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithWorkers sets the number of concurrent synthesis calls.
func WithWorkers(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLimiter throttles provider calls.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Synthesizer) {
		s.limiter = l
	}
}

// WithMaxAttempts sets how many times the chain is tried per segment.
func WithMaxAttempts(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay between attempts.
func WithBackoff(d time.Duration) Option {
	return func(s *Synthesizer) {
		if d >= 0 {
			s.backoff = d
		}
	}
}

// WithSleeper overrides the backoff sleep, mainly for tests.
func WithSleeper(sl Sleeper) Option {
	return func(s *Synthesizer) {
		if sl != nil {
			s.sleep = sl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = logging.NewComponentLogger(logger, "synthesizer")
	}
}

// Synthesizer renders prepared segments through a Chain.
type Synthesizer struct {
	chain       *Chain
	format      audio.Format
	workers     int
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
	sleep       Sleeper
	logger      *slog.Logger
}

// New constructs a Synthesizer producing clips in format.
func New(chain *Chain, format audio.Format, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		chain:       chain,
		format:      format,
		workers:     1,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		sleep:       contextSleep,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize renders one segment. It never fails: on error it returns a
// silence clip of the segment's duration with Fallback set.
func (s *Synthesizer) Synthesize(ctx context.Context, p voice.Prepared) Clip {
	frames := s.format.FramesAt(p.End) - s.format.FramesAt(p.Start)
	clip := Clip{Index: p.Index, Start: p.Start, Voice: p.Voice.ID}
	text := strings.TrimSpace(p.TranslatedText)
	if text == "" {
		clip.Track = audio.Silence(s.format, frames)
		clip.Skipped = true
		return clip
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.wait(ctx); err != nil {
			lastErr = err
			break
		}
		clip.Attempts = attempt
		track, provider, err := s.chain.Synthesize(ctx, text, p.Voice)
		if err == nil {
			clip.Track = audio.Convert(track, s.format)
			clip.Provider = provider
			return clip
		}
		lastErr = err
		if ctx.Err() != nil || !services.IsRetryable(err) {
			break
		}
		if attempt < s.maxAttempts {
			if err := s.sleep(ctx, s.backoff*time.Duration(attempt)); err != nil {
				lastErr = err
				break
			}
		}
	}

	clip.Track = audio.Silence(s.format, frames)
	clip.Fallback = true
	logging.WarnWithContext(logging.WithContext(ctx, s.logger), "synthesis failed; using silence",
		"synthesis_fallback",
		logging.Int("segment", p.Index),
		logging.String("voice", p.Voice.ID),
		logging.Int("attempts", clip.Attempts),
		logging.Error(lastErr),
		logging.String(logging.FieldErrorHint, "check speech provider credentials and quota"),
		logging.String(logging.FieldImpact, "segment left silent in the dub"),
	)
	return clip
}

func (s *Synthesizer) wait(ctx context.Context) error {
	if s.limiter == nil {
		return ctx.Err()
	}
	return s.limiter.Wait(ctx)
}

// ProgressFunc receives the number of segments finished so far.
type ProgressFunc func(done, total int)

// SynthesizeAll renders every member of groups. Tasks are issued in group
// order and the returned clips are sorted by segment Index. The error is
// non-nil only when ctx is done.
func (s *Synthesizer) SynthesizeAll(ctx context.Context, groups []voice.Group, progress ProgressFunc) ([]Clip, error) {
	var tasks []voice.Prepared
	for _, g := range groups {
		tasks = append(tasks, g.Members...)
	}
	total := len(tasks)

	var (
		mu   sync.Mutex
		done int
	)
	results, err := fanout.Run(ctx, total, s.workers, func(ctx context.Context, i int) *Clip {
		clip := s.Synthesize(ctx, tasks[i])
		if progress != nil {
			mu.Lock()
			done++
			progress(done, total)
			mu.Unlock()
		}
		return &clip
	})
	if err != nil {
		return nil, err
	}
	return Gather(results), nil
}

// Gather orders clips by segment index and drops nil entries.
func Gather(results []*Clip) []Clip {
	out := make([]Clip, 0, len(results))
	for _, c := range results {
		if c != nil {
			out = append(out, *c)
		}
	}
	slices.SortFunc(out, func(a, b Clip) int { return cmp.Compare(a.Index, b.Index) })
	return out
}
