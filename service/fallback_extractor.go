package service

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/danilovichz/lawpro-v2/location"
	"github.com/danilovichz/lawpro-v2/models"
)

// Fixed fallback confidences; deliberately below what a successful AI parse reports
const (
	FallbackStateConfidence    = 0.8
	FallbackCountyConfidence   = 0.7
	FallbackCaseTypeConfidence = 0.8
)

const (
	minCountyLength   = 3
	maxCountyWords    = 3
	minTypoLength     = 4
	maxTypoDistance   = 2
	maxLongTypoLength = 8 // names at least this long tolerate one extra edit
)

var (
	// "... ny" / "..., me." at the very end of the message
	endAbbreviationRe = regexp.MustCompile(`(?i)(?:^|(,)\s*|\s+)([a-z]{2})\s*[.!?]*\s*$`)

	// "in|at|from <words>," -- the text after the comma is inspected separately
	prepositionCommaRe = regexp.MustCompile(`(?i)\b(?:in|at|from)\s+[a-z][a-z.' -]*?\s*,\s*`)

	// up to two words after the comma, plus what follows them
	afterCommaRe = regexp.MustCompile(`(?i)^([a-z]+)(?:\s+([a-z]+))?`)

	fullStateNameRe = regexp.MustCompile(`(?i)\b(` + strings.Join(quoteAll(location.StateNamesLongestFirst()), "|") + `)\b`)

	anyAbbreviationRe = regexp.MustCompile(`(?i)\b([a-z]{2})\b`)

	countyRe = regexp.MustCompile(`(?i)\b((?:[a-z][a-z.'-]*\s+){1,4})county\b`)

	// never read as a state from an end-anchored match, even in upper case
	interjections = map[string]struct{}{"ok": {}, "hi": {}, "oh": {}, "me": {}}

	// first words of multi-word state names
	stateNamePrefixes = map[string]struct{}{
		"new": {}, "north": {}, "south": {}, "west": {}, "rhode": {}, "district": {},
	}
)

// FallbackExtractor extracts county, state and case type with deterministic
// patterns when the AI parser is unavailable
type FallbackExtractor struct {
	logger *zap.Logger
}

// FallbackExtractorOption is a functional option for FallbackExtractor
type FallbackExtractorOption func(*FallbackExtractor)

// FallbackWithLogger sets the logger
func FallbackWithLogger(logger *zap.Logger) FallbackExtractorOption {
	return func(e *FallbackExtractor) {
		e.logger = logger
	}
}

// NewFallbackExtractor creates a new fallback extractor
func NewFallbackExtractor(opts ...FallbackExtractorOption) *FallbackExtractor {
	e := &FallbackExtractor{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses one utterance. It performs no I/O and never fails.
func (e *FallbackExtractor) Extract(utterance string) *models.ParsedQuery {
	parsed := &models.ParsedQuery{}

	if state, rule := extractState(utterance); state != "" {
		parsed.State = models.StringPtr(state)
		parsed.Confidence.State = FallbackStateConfidence
		e.logger.Debug("fallback state match", zap.String("state", state), zap.String("rule", rule))
	}

	if county := extractCounty(utterance); county != "" {
		parsed.County = models.StringPtr(county)
		parsed.Confidence.County = FallbackCountyConfidence
		e.logger.Debug("fallback county match", zap.String("county", county))
	}

	if caseType := ClassifyCaseType(strings.ToLower(utterance)); caseType != nil {
		parsed.CaseType = caseType
		parsed.Confidence.CaseType = FallbackCaseTypeConfidence
	}

	return parsed
}

// extractState applies the state rules in priority order and returns the
// state (canonical, or a raw typo candidate) and the rule that matched
func extractState(text string) (string, string) {
	if s := matchEndAbbreviation(text); s != "" {
		return s, "end_abbreviation"
	}
	if s := matchPrepositionComma(text); s != "" {
		return s, "preposition_comma"
	}
	if m := fullStateNameRe.FindStringSubmatch(text); m != nil {
		if name, ok := location.CanonicalState(m[1]); ok {
			return name, "full_name"
		}
	}
	for _, m := range anyAbbreviationRe.FindAllStringSubmatch(text, -1) {
		abbr := strings.ToLower(m[1])
		if location.IsAbbreviationCollision(abbr) {
			continue
		}
		if s, ok := location.LookupAbbreviation(abbr); ok {
			return s.Name, "abbreviation"
		}
	}
	return "", ""
}

func matchEndAbbreviation(text string) string {
	m := endAbbreviationRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	token := m[2]
	abbr := strings.ToLower(token)
	s, ok := location.LookupAbbreviation(abbr)
	if !ok {
		return ""
	}
	if location.IsAbbreviationCollision(abbr) {
		commaQualified := m[1] != ""
		_, interjection := interjections[abbr]
		upper := token == strings.ToUpper(token)
		if !commaQualified && (interjection || !upper) {
			return ""
		}
	}
	return s.Name
}

func matchPrepositionComma(text string) string {
	for _, loc := range prepositionCommaRe.FindAllStringIndex(text, -1) {
		rest := text[loc[1]:]
		m := afterCommaRe.FindStringSubmatchIndex(rest)
		if m == nil {
			continue
		}
		first := rest[m[2]:m[3]]
		second := ""
		if m[4] >= 0 {
			second = rest[m[4]:m[5]]
		}

		if second != "" {
			if s, ok := location.LookupState(first + " " + second); ok {
				return s.Name
			}
		}

		lower := strings.ToLower(first)
		if s, ok := location.LookupState(lower); ok {
			if len(lower) > 2 || !location.IsAbbreviationCollision(lower) {
				return s.Name
			}
			// "in" / "me" after a comma only counts when it closes the clause or is written as a code
			if isMessageEnd(rest[m[3]:]) || first == strings.ToUpper(first) {
				return s.Name
			}
			continue
		}

		if second != "" {
			if _, ok := stateNamePrefixes[lower]; ok {
				if candidate := typoCandidate(first + " " + second); candidate != "" {
					return candidate
				}
			}
		}
		if candidate := typoCandidate(first); candidate != "" {
			return candidate
		}
	}
	return ""
}

// typoCandidate returns the token title-cased when it is plausibly a
// misspelled state name; the fuzzy corrector repairs it later
func typoCandidate(token string) string {
	lower := strings.ToLower(strings.TrimSpace(token))
	if len(lower) < minTypoLength {
		return ""
	}
	for _, w := range strings.Fields(lower) {
		if location.IsStopword(w) || location.IsIncidentWord(w) {
			return ""
		}
	}
	_, dist := location.NearestState(lower)
	limit := maxTypoDistance
	if len(lower) >= maxLongTypoLength {
		limit++
	}
	if dist < 0 || dist > limit {
		return ""
	}
	return location.TitleCase(lower)
}

func isMessageEnd(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.Trim(s, ".!?,;") == ""
}

// extractCounty finds "<name> county" and returns "Name County"
func extractCounty(text string) string {
	for _, m := range countyRe.FindAllStringSubmatch(text, -1) {
		words := strings.Fields(strings.ToLower(m[1]))

		// keep the trailing run of non-stopwords directly before "county"
		start := len(words)
		for start > 0 && len(words)-start < maxCountyWords && !location.IsStopword(words[start-1]) {
			start--
		}
		run := words[start:]
		if len(run) == 0 {
			continue
		}

		rejected := false
		for _, w := range run {
			if location.IsIncidentWord(w) {
				rejected = true
				break
			}
		}
		name := strings.Join(run, " ")
		if rejected || len(name) < minCountyLength {
			continue
		}
		return location.TitleCase(name) + " County"
	}
	return ""
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = regexp.QuoteMeta(v)
	}
	return out
}
