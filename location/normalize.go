package location

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/danilovichz/lawpro-v2/models"
)

const countySuffix = " county"

var titleCaser = cases.Title(language.English)

// Normalize returns lowercase lookup candidates for a raw location token,
// cheapest first. Unknown states come back as the trimmed lowercase input.
func Normalize(raw string, kind models.LocationKind) []string {
	value := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if value == "" {
		return nil
	}

	switch kind {
	case models.LocationKindState:
		if s, ok := LookupState(value); ok {
			return []string{strings.ToLower(s.Name), strings.ToLower(s.Abbreviation)}
		}
		return []string{value}
	case models.LocationKindCounty:
		if strings.HasSuffix(value, countySuffix) {
			bare := strings.TrimSpace(strings.TrimSuffix(value, countySuffix))
			if bare == "" {
				return []string{value}
			}
			return []string{value, bare}
		}
		if value == "county" {
			return []string{value}
		}
		return []string{value, value + countySuffix}
	}
	return []string{value}
}

// StripCountySuffix removes a trailing "County" in any case
func StripCountySuffix(county string) string {
	trimmed := strings.TrimSpace(county)
	if strings.HasSuffix(strings.ToLower(trimmed), countySuffix) {
		return strings.TrimSpace(trimmed[:len(trimmed)-len(countySuffix)])
	}
	return trimmed
}

// TitleCase capitalizes each word ("los angeles" -> "Los Angeles")
func TitleCase(s string) string {
	return titleCaser.String(strings.Join(strings.Fields(s), " "))
}

// NearestState returns the full state name closest to token by edit
// distance, together with that distance
func NearestState(token string) (string, int) {
	token = strings.ToLower(strings.TrimSpace(token))
	best, bestDist := "", -1
	for _, s := range states {
		d := levenshtein.ComputeDistance(token, strings.ToLower(s.Name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = s.Name, d
		}
	}
	return best, bestDist
}
