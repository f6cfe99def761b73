package matching

import (
	"sort"
	"strings"
	"time"
)

// Candidate is a known vendor with the keywords that identify it.
type Candidate struct {
	Vendor string

	// Keywords identify the vendor in page text. When empty the vendor
	// name itself is used.
	Keywords []string

	// UpdatedAt breaks ties between equally scored vendors (newest wins)
	UpdatedAt time.Time
}

// Match is a scored vendor.
type Match struct {
	Vendor     string  `json:"vendor"`
	Confidence float64 `json:"confidence"` // mean keyword credit in [0, 1]

	// Matched lists the normalized keywords that earned any credit
	Matched []string `json:"matched,omitempty"`
}

// Config holds matching configuration
type Config struct {
	// Threshold is the confidence a vendor needs to be selected
	Threshold float64

	// FuzzyCutoff is the minimum similarity for a fuzzy keyword hit
	FuzzyCutoff float64

	// FuzzyWeight scales the credit of a fuzzy hit
	FuzzyWeight float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Threshold:   0.6,
		FuzzyCutoff: 0.8,
		FuzzyWeight: 0.5,
	}
}

// Matcher scores page text against vendor keyword sets. It is stateless and
// safe for concurrent use.
type Matcher struct {
	config Config
}

// NewMatcher creates a matcher. Zero or out-of-range values fall back to
// the defaults.
func NewMatcher(config Config) *Matcher {
	def := DefaultConfig()
	if config.Threshold <= 0 || config.Threshold > 1 {
		config.Threshold = def.Threshold
	}
	if config.FuzzyCutoff <= 0 || config.FuzzyCutoff > 1 {
		config.FuzzyCutoff = def.FuzzyCutoff
	}
	if config.FuzzyWeight <= 0 || config.FuzzyWeight > 1 {
		config.FuzzyWeight = def.FuzzyWeight
	}
	return &Matcher{config: config}
}

// Config returns the matcher's effective configuration.
func (m *Matcher) Config() Config {
	return m.config
}

// Match returns the best vendor for pageText. The boolean is false when no
// candidate reaches the threshold; the returned Match then still carries the
// best score seen so callers can report how close it came.
func (m *Matcher) Match(pageText string, candidates []Candidate) (Match, bool) {
	ranked := m.Rank(pageText, candidates)
	if len(ranked) == 0 {
		return Match{}, false
	}
	best := ranked[0]
	return best, best.Confidence >= m.config.Threshold
}

// Rank scores every candidate and orders them best first: by confidence,
// then most recent UpdatedAt, then vendor name.
func (m *Matcher) Rank(pageText string, candidates []Candidate) []Match {
	page := Normalize(pageText)

	type scored struct {
		match   Match
		updated time.Time
	}
	all := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		keywords := c.Keywords
		if len(keywords) == 0 {
			keywords = []string{c.Vendor}
		}
		confidence, matched := m.score(page, keywords)
		all = append(all, scored{
			match:   Match{Vendor: c.Vendor, Confidence: confidence, Matched: matched},
			updated: c.UpdatedAt,
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.match.Confidence != b.match.Confidence {
			return a.match.Confidence > b.match.Confidence
		}
		if !a.updated.Equal(b.updated) {
			return a.updated.After(b.updated)
		}
		return a.match.Vendor < b.match.Vendor
	})

	out := make([]Match, len(all))
	for i, s := range all {
		out[i] = s.match
	}
	return out
}

// Score returns the mean keyword credit of keywords against pageText.
func (m *Matcher) Score(pageText string, keywords []string) float64 {
	score, _ := m.score(Normalize(pageText), keywords)
	return score
}

func (m *Matcher) score(page string, keywords []string) (float64, []string) {
	seen := make(map[string]bool)
	var normalized []string
	for _, kw := range keywords {
		n := Normalize(kw)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		normalized = append(normalized, n)
	}
	if len(normalized) == 0 || page == "" {
		return 0, nil
	}

	words := strings.Fields(page)
	padded := " " + page + " "

	total := 0.0
	var matched []string
	for _, kw := range normalized {
		credit := m.keywordCredit(padded, words, kw)
		if credit > 0 {
			matched = append(matched, kw)
		}
		total += credit
	}
	return total / float64(len(normalized)), matched
}

// keywordCredit is 1 for an exact phrase hit, otherwise the best fuzzy
// similarity against any run of page words with the keyword's word count,
// scaled by FuzzyWeight, or 0 below FuzzyCutoff.
func (m *Matcher) keywordCredit(padded string, words []string, keyword string) float64 {
	if strings.Contains(padded, " "+keyword+" ") {
		return 1
	}

	n := len(strings.Fields(keyword))
	best := 0.0
	for i := 0; i+n <= len(words); i++ {
		if s := Similarity(strings.Join(words[i:i+n], " "), keyword); s > best {
			best = s
		}
	}

	if best >= m.config.FuzzyCutoff {
		return best * m.config.FuzzyWeight
	}
	return 0
}
