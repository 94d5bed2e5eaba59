// Package match classifies how well a spoken or typed name fragment
// matches a stored customer name. Matching is tiered: exact equality
// beats a nickname relation, which beats phonetic equivalence, which
// beats substring containment and edit-distance fallbacks. The first
// qualifying tier wins, so a strong signal is never diluted by a weaker
// one.
package match

import (
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vyapari/grahak/errors"
	"github.com/vyapari/grahak/nickname"
	"github.com/vyapari/grahak/phonetic"
	"github.com/vyapari/grahak/translit"
)

// Type identifies which tier produced a match.
type Type string

const (
	TypeExact           Type = "exact"
	TypeNickname        Type = "nickname"
	TypePhonetic        Type = "phonetic"
	TypeFuzzy           Type = "fuzzy"
	TypeTransliteration Type = "transliteration"
)

// Default thresholds. A tier below DefaultThreshold is never returned;
// SamePersonThreshold is the stricter bar for treating two names as the
// same human being.
const (
	DefaultThreshold    = 0.75
	SamePersonThreshold = 0.8
)

// Result describes one qualifying query/candidate pair.
type Result struct {
	Score       float64
	Type        Type
	MatchedText string
}

// Engine evaluates the tiered decision list for query/candidate pairs.
type Engine struct {
	nicknames  *nickname.Dictionary
	logger     *zap.SugaredLogger
	threshold  float64
	samePerson float64
}

// EngineOption configures a match engine.
type EngineOption func(*Engine)

// WithThreshold overrides the default tier qualification threshold used
// by Match, FindBestMatch and FindAllMatches.
func WithThreshold(t float64) EngineOption {
	return func(e *Engine) { e.threshold = t }
}

// WithSamePersonThreshold overrides the stricter bar used by
// IsSamePerson.
func WithSamePersonThreshold(t float64) EngineOption {
	return func(e *Engine) { e.samePerson = t }
}

// NewEngine creates a match engine backed by the given nickname
// dictionary. Pass nickname.Default() unless a deployment loads its own.
func NewEngine(nicknames *nickname.Dictionary, opts ...EngineOption) *Engine {
	e := &Engine{
		nicknames:  nicknames,
		threshold:  DefaultThreshold,
		samePerson: SamePersonThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetLogger sets the logger for debug output.
func (e *Engine) SetLogger(logger *zap.SugaredLogger) {
	e.logger = logger
}

// Match evaluates query against candidate at the default threshold.
// A nil Result with nil error means no tier qualified: a legitimate
// no-match, not an error.
func (e *Engine) Match(query, candidate string) (*Result, error) {
	return e.MatchThreshold(query, candidate, e.threshold)
}

// MatchThreshold evaluates the ordered decision list; the first
// qualifying tier wins. Devanagari input on either side is
// transliterated before comparison.
func (e *Engine) MatchThreshold(query, candidate string, threshold float64) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.Wrap(errors.ErrEmptyQuery, "match")
	}
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}
	if strings.TrimSpace(candidate) == "" {
		return nil, nil
	}

	start := time.Now()
	q := strings.ToLower(strings.TrimSpace(translit.Transliterate(query)))
	c := strings.ToLower(strings.TrimSpace(translit.Transliterate(candidate)))

	result := e.classify(q, c, threshold)
	if result != nil {
		result.MatchedText = candidate
		if e.logger != nil {
			e.logger.Debugw("name match",
				"query", query,
				"candidate", candidate,
				"type", result.Type,
				"score", result.Score,
				"time_us", time.Since(start).Microseconds(),
			)
		}
	}
	return result, nil
}

// classify runs the decision list on lowercased, transliterated forms.
func (e *Engine) classify(q, c string, threshold float64) *Result {
	// 1. Exact equality
	if q == c {
		return &Result{Score: 1.0, Type: TypeExact}
	}

	// 2. Nickname relation
	if e.nicknames != nil && e.nicknames.IsNicknameRelation(q, c) {
		return &Result{Score: 0.95, Type: TypeNickname}
	}

	// 3. Phonetic-canonical equality
	if phonetic.Equivalent(q, c) {
		return &Result{Score: 0.9, Type: TypePhonetic}
	}

	// 4. Substring containment either direction, scored by length ratio
	if strings.Contains(q, c) || strings.Contains(c, q) {
		shorter, longer := len(q), len(c)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		if score := float64(shorter) / float64(longer); score >= threshold {
			return &Result{Score: score, Type: TypeTransliteration}
		}
	}

	// 5. Raw edit-distance similarity
	if score := Similarity(q, c); score >= threshold {
		return &Result{Score: score, Type: TypeFuzzy}
	}

	// 6. Phonetic-canonical edit-distance similarity, lower confidence
	// than the equality tier above
	if score := Similarity(phonetic.Normalize(q), phonetic.Normalize(c)); score >= threshold {
		return &Result{Score: score * 0.9, Type: TypePhonetic}
	}

	return nil
}

// FindBestMatch scans candidates and keeps the maximum-score result, or
// nil when none qualify.
func (e *Engine) FindBestMatch(query string, candidates []string) (*Result, error) {
	var best *Result
	for _, c := range candidates {
		r, err := e.Match(query, c)
		if err != nil {
			return nil, err
		}
		if r != nil && (best == nil || r.Score > best.Score) {
			best = r
		}
	}
	return best, nil
}

// FindAllMatches returns every qualifying candidate sorted by descending
// score.
func (e *Engine) FindAllMatches(query string, candidates []string) ([]Result, error) {
	var results []Result
	for _, c := range candidates {
		r, err := e.Match(query, c)
		if err != nil {
			return nil, err
		}
		if r != nil {
			results = append(results, *r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// IsSamePerson reports whether two names denote the same person: a match
// at the stricter same-person threshold.
func (e *Engine) IsSamePerson(a, b string) (bool, error) {
	r, err := e.MatchThreshold(a, b, e.samePerson)
	if err != nil {
		return false, err
	}
	return r != nil && r.Score >= e.samePerson, nil
}

func validateThreshold(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 || t > 1 {
		return errors.Wrapf(errors.ErrInvalidThreshold, "%v", t)
	}
	return nil
}
