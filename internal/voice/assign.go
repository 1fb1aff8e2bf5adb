package voice

import (
	"fmt"
	"log/slog"
	"strings"

	"dubline/internal/logging"
	"dubline/internal/services"
	"dubline/internal/timing"
	"dubline/internal/transcript"
)

// Assignment maps speaker labels to voices for one job.
type Assignment map[string]Profile

// Assigner hands out voices from one provider's pool. It keeps no state
// between Assign calls.
type Assigner struct {
	catalog  *Catalog
	provider string
	logger   *slog.Logger
}

// NewAssigner fails with services.ErrConfiguration when provider has no voices.
func NewAssigner(catalog *Catalog, provider string, logger *slog.Logger) (*Assigner, error) {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if len(catalog.Voices(provider)) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "voices", "assign",
			fmt.Sprintf("no voices for provider %q", provider), nil)
	}
	return &Assigner{
		catalog:  catalog,
		provider: provider,
		logger:   logging.NewComponentLogger(logger, "voices"),
	}, nil
}

// Provider returns the provider voices are drawn from.
func (a *Assigner) Provider() string {
	return a.provider
}

// Assign picks one voice per speaker. With autoDetectGender, speakers whose
// gender is detected get the next unused voice of that gender. The rest are
// served round-robin from the interleaved pool, preferring unused voices.
func (a *Assigner) Assign(speakers []string, segments []transcript.Segment, autoDetectGender bool) Assignment {
	pool := a.catalog.Voices(a.provider)
	combined := interleave(pool)
	used := make(map[string]bool, len(pool))
	assignment := make(Assignment, len(speakers))

	var texts map[string]string
	if autoDetectGender {
		texts = speakerTexts(segments)
	}

	cursor := 0
	genderCursor := map[Gender]int{}
	for _, speaker := range speakers {
		if _, done := assignment[speaker]; done {
			continue
		}
		gender := GenderUnknown
		if autoDetectGender {
			gender = DetectGender(texts[speaker])
		}

		var (
			profile Profile
			ok      bool
		)
		if gender != GenderUnknown {
			profile, ok = nextOfGender(pool, gender, used, genderCursor)
		}
		if !ok {
			profile, cursor = nextRoundRobin(combined, used, cursor)
		}
		used[profile.ID] = true
		assignment[speaker] = profile
		a.logger.Debug("voice assigned",
			logging.String("speaker", speaker),
			logging.String("voice", profile.Label()),
			logging.String("detected_gender", string(gender)),
		)
	}
	return assignment
}

func nextOfGender(pool []Profile, gender Gender, used map[string]bool, cursors map[Gender]int) (Profile, bool) {
	var matching []Profile
	for _, p := range pool {
		if p.Gender == gender {
			matching = append(matching, p)
		}
	}
	if len(matching) == 0 {
		return Profile{}, false
	}
	for _, p := range matching {
		if !used[p.ID] {
			return p, true
		}
	}
	p := matching[cursors[gender]%len(matching)]
	cursors[gender]++
	return p, true
}

func nextRoundRobin(combined []Profile, used map[string]bool, cursor int) (Profile, int) {
	for k := 0; k < len(combined); k++ {
		idx := (cursor + k) % len(combined)
		if !used[combined[idx].ID] {
			return combined[idx], idx + 1
		}
	}
	idx := cursor % len(combined)
	return combined[idx], idx + 1
}

// interleave orders the pool male, female, male, ... with neutral voices last.
func interleave(pool []Profile) []Profile {
	var males, females, others []Profile
	for _, p := range pool {
		switch p.Gender {
		case GenderMale:
			males = append(males, p)
		case GenderFemale:
			females = append(females, p)
		default:
			others = append(others, p)
		}
	}
	out := make([]Profile, 0, len(pool))
	for i := 0; i < max(len(males), len(females)); i++ {
		if i < len(males) {
			out = append(out, males[i])
		}
		if i < len(females) {
			out = append(out, females[i])
		}
	}
	return append(out, others...)
}

func speakerTexts(segments []transcript.Segment) map[string]string {
	builders := make(map[string]*strings.Builder)
	for _, seg := range segments {
		b, ok := builders[seg.Speaker]
		if !ok {
			b = &strings.Builder{}
			builders[seg.Speaker] = b
		}
		b.WriteString(seg.Text)
		b.WriteByte(' ')
	}
	out := make(map[string]string, len(builders))
	for speaker, b := range builders {
		out[speaker] = b.String()
	}
	return out
}

// Prepared is a restored segment with its resolved voice.
type Prepared struct {
	timing.Segment
	Voice Profile
}

// Prepare resolves each segment's voice; speakers missing from the
// assignment, including unknown speakers, get defaultVoice.
func Prepare(segments []timing.Segment, assignment Assignment, defaultVoice Profile) []Prepared {
	out := make([]Prepared, len(segments))
	for i, seg := range segments {
		v, ok := assignment[seg.Speaker]
		if !ok {
			v = defaultVoice
		}
		out[i] = Prepared{Segment: seg, Voice: v}
	}
	return out
}

// Group is every prepared segment that shares one voice.
type Group struct {
	Voice   Profile
	Members []Prepared
}

// GroupByVoice partitions prepared segments by voice ID. Groups follow the
// first appearance of each voice and members keep their original order.
func GroupByVoice(prepared []Prepared) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, p := range prepared {
		i, ok := index[p.Voice.ID]
		if !ok {
			i = len(groups)
			index[p.Voice.ID] = i
			groups = append(groups, Group{Voice: p.Voice})
		}
		groups[i].Members = append(groups[i].Members, p)
	}
	return groups
}
