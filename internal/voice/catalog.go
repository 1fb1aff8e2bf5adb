package voice

import (
	"fmt"
	"slices"
	"strings"

	"dubline/internal/services"
)

// Gender of a voice or detected speaker. Empty means unknown or neutral.
type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// Profile describes one synthetic voice.
type Profile struct {
	ID        string
	Name      string
	Provider  string
	Gender    Gender
	AgeGroup  string
	StyleTags []string
}

// Label renders "Name (id)" for logs and tables.
func (p Profile) Label() string {
	if p.Name == "" || p.Name == p.ID {
		return p.ID
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}

// Catalog indexes voices by provider.
type Catalog struct {
	providers []string
	pools     map[string][]Profile
	byID      map[string]Profile
	// direct maps a voice ID to its equivalent voice ID on each other provider.
	direct map[string]map[string]string
}

// NewCatalog builds a catalog from profiles and pairs of equivalent voice IDs.
// Pairs are symmetric.
func NewCatalog(profiles []Profile, pairs [][2]string) *Catalog {
	c := &Catalog{
		pools:  make(map[string][]Profile),
		byID:   make(map[string]Profile),
		direct: make(map[string]map[string]string),
	}
	for _, p := range profiles {
		if _, ok := c.pools[p.Provider]; !ok {
			c.providers = append(c.providers, p.Provider)
		}
		c.pools[p.Provider] = append(c.pools[p.Provider], p)
		c.byID[p.ID] = p
	}
	for _, pair := range pairs {
		a, okA := c.byID[pair[0]]
		b, okB := c.byID[pair[1]]
		if !okA || !okB {
			continue
		}
		c.link(a, b)
		c.link(b, a)
	}
	return c
}

func (c *Catalog) link(from, to Profile) {
	if c.direct[from.ID] == nil {
		c.direct[from.ID] = make(map[string]string)
	}
	c.direct[from.ID][to.Provider] = to.ID
}

// Providers lists providers in registration order.
func (c *Catalog) Providers() []string {
	return slices.Clone(c.providers)
}

// Voices returns the pool for provider.
func (c *Catalog) Voices(provider string) []Profile {
	return slices.Clone(c.pools[strings.ToLower(strings.TrimSpace(provider))])
}

// Lookup finds a voice by ID.
func (c *Catalog) Lookup(id string) (Profile, bool) {
	p, ok := c.byID[strings.TrimSpace(id)]
	return p, ok
}

// Resolve returns the voice named id on provider, or the provider's first
// voice when id is unknown or belongs elsewhere.
func (c *Catalog) Resolve(id, provider string) (Profile, error) {
	if p, ok := c.Lookup(id); ok && p.Provider == provider {
		return p, nil
	}
	if p, ok := c.FallbackVoice(id, provider); ok {
		return p, nil
	}
	return Profile{}, services.Wrap(services.ErrConfiguration, "voices", "resolve",
		fmt.Sprintf("no voices for provider %q", provider), nil)
}

// FallbackVoice maps voiceID onto targetProvider. It tries the direct table,
// then the target voice sharing the most of gender, age group, and style tags
// (ties keep catalog order), then the target's first voice.
func (c *Catalog) FallbackVoice(voiceID, targetProvider string) (Profile, bool) {
	pool := c.pools[targetProvider]
	if len(pool) == 0 {
		return Profile{}, false
	}
	source, known := c.byID[voiceID]
	if known && source.Provider == targetProvider {
		return source, true
	}
	if id, ok := c.direct[voiceID][targetProvider]; ok {
		return c.byID[id], true
	}
	if !known {
		return pool[0], true
	}
	best, bestScore := pool[0], -1
	for _, candidate := range pool {
		if score := similarity(source, candidate); score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, true
}

func similarity(a, b Profile) int {
	score := 0
	if a.Gender != GenderUnknown && a.Gender == b.Gender {
		score++
	}
	if a.AgeGroup != "" && a.AgeGroup == b.AgeGroup {
		score++
	}
	for _, tag := range a.StyleTags {
		if slices.Contains(b.StyleTags, tag) {
			score++
		}
	}
	return score
}

// DefaultCatalog returns the built-in OpenAI and ElevenLabs voices.
func DefaultCatalog() *Catalog {
	return NewCatalog(builtinVoices, builtinPairs)
}

var builtinVoices = []Profile{
	{ID: "onyx", Name: "Onyx", Provider: "openai", Gender: GenderMale, AgeGroup: "middle", StyleTags: []string{"deep", "authoritative"}},
	{ID: "nova", Name: "Nova", Provider: "openai", Gender: GenderFemale, AgeGroup: "young", StyleTags: []string{"bright", "energetic"}},
	{ID: "echo", Name: "Echo", Provider: "openai", Gender: GenderMale, AgeGroup: "young", StyleTags: []string{"warm", "conversational"}},
	{ID: "shimmer", Name: "Shimmer", Provider: "openai", Gender: GenderFemale, AgeGroup: "middle", StyleTags: []string{"clear", "calm"}},
	{ID: "fable", Name: "Fable", Provider: "openai", Gender: GenderMale, AgeGroup: "middle", StyleTags: []string{"expressive", "narration"}},
	{ID: "coral", Name: "Coral", Provider: "openai", Gender: GenderFemale, AgeGroup: "young", StyleTags: []string{"warm", "conversational"}},
	{ID: "alloy", Name: "Alloy", Provider: "openai", AgeGroup: "young", StyleTags: []string{"neutral", "clear"}},

	{ID: "pNInz6obpgDQGcFmaJgB", Name: "Adam", Provider: "elevenlabs", Gender: GenderMale, AgeGroup: "middle", StyleTags: []string{"deep", "narration"}},
	{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Provider: "elevenlabs", Gender: GenderFemale, AgeGroup: "young", StyleTags: []string{"calm", "clear"}},
	{ID: "ErXwobaYiN019PkySvjV", Name: "Antoni", Provider: "elevenlabs", Gender: GenderMale, AgeGroup: "young", StyleTags: []string{"warm", "conversational"}},
	{ID: "EXAVITQu4vr4xnJTrdgS", Name: "Bella", Provider: "elevenlabs", Gender: GenderFemale, AgeGroup: "young", StyleTags: []string{"soft", "conversational"}},
	{ID: "VR6AewLTigWG4xSOukaG", Name: "Arnold", Provider: "elevenlabs", Gender: GenderMale, AgeGroup: "middle", StyleTags: []string{"crisp", "authoritative"}},
	{ID: "MF3mGyEYCl7XYWbV9V6O", Name: "Elli", Provider: "elevenlabs", Gender: GenderFemale, AgeGroup: "young", StyleTags: []string{"bright", "energetic"}},
}

var builtinPairs = [][2]string{
	{"onyx", "pNInz6obpgDQGcFmaJgB"},
	{"nova", "MF3mGyEYCl7XYWbV9V6O"},
	{"echo", "ErXwobaYiN019PkySvjV"},
	{"shimmer", "21m00Tcm4TlvDq8ikWAM"},
	{"fable", "VR6AewLTigWG4xSOukaG"},
	{"coral", "EXAVITQu4vr4xnJTrdgS"},
}
