// Package location canonicalizes US state and county tokens and holds the
// shared word tables used by extraction and correction.
package location

import (
	"sort"
	"strings"
)

// State is a canonical state entry
type State struct {
	Name         string
	Abbreviation string
}

// states lists the 50 states plus the District of Columbia
var states = []State{
	{"Alabama", "AL"}, {"Alaska", "AK"}, {"Arizona", "AZ"}, {"Arkansas", "AR"},
	{"California", "CA"}, {"Colorado", "CO"}, {"Connecticut", "CT"}, {"Delaware", "DE"},
	{"District of Columbia", "DC"}, {"Florida", "FL"}, {"Georgia", "GA"}, {"Hawaii", "HI"},
	{"Idaho", "ID"}, {"Illinois", "IL"}, {"Indiana", "IN"}, {"Iowa", "IA"},
	{"Kansas", "KS"}, {"Kentucky", "KY"}, {"Louisiana", "LA"}, {"Maine", "ME"},
	{"Maryland", "MD"}, {"Massachusetts", "MA"}, {"Michigan", "MI"}, {"Minnesota", "MN"},
	{"Mississippi", "MS"}, {"Missouri", "MO"}, {"Montana", "MT"}, {"Nebraska", "NE"},
	{"Nevada", "NV"}, {"New Hampshire", "NH"}, {"New Jersey", "NJ"}, {"New Mexico", "NM"},
	{"New York", "NY"}, {"North Carolina", "NC"}, {"North Dakota", "ND"}, {"Ohio", "OH"},
	{"Oklahoma", "OK"}, {"Oregon", "OR"}, {"Pennsylvania", "PA"}, {"Rhode Island", "RI"},
	{"South Carolina", "SC"}, {"South Dakota", "SD"}, {"Tennessee", "TN"}, {"Texas", "TX"},
	{"Utah", "UT"}, {"Vermont", "VT"}, {"Virginia", "VA"}, {"Washington", "WA"},
	{"West Virginia", "WV"}, {"Wisconsin", "WI"}, {"Wyoming", "WY"},
}

var (
	byName = make(map[string]State, len(states))
	byAbbr = make(map[string]State, len(states))
)

func init() {
	for _, s := range states {
		byName[strings.ToLower(s.Name)] = s
		byAbbr[strings.ToLower(s.Abbreviation)] = s
	}
}

// States returns a copy of the state table
func States() []State {
	out := make([]State, len(states))
	copy(out, states)
	return out
}

// LookupState resolves a full name or postal abbreviation, any case
func LookupState(raw string) (State, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := byName[key]; ok {
		return s, true
	}
	if s, ok := byAbbr[key]; ok {
		return s, true
	}
	return State{}, false
}

// LookupAbbreviation resolves only a two-letter postal abbreviation
func LookupAbbreviation(raw string) (State, bool) {
	s, ok := byAbbr[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}

// CanonicalState returns the full state name for a name or abbreviation
func CanonicalState(raw string) (string, bool) {
	s, ok := LookupState(raw)
	return s.Name, ok
}

// StateAbbreviation returns the postal abbreviation for a name or abbreviation
func StateAbbreviation(raw string) (string, bool) {
	s, ok := LookupState(raw)
	return s.Abbreviation, ok
}

// StateNamesLongestFirst returns lowercase state names ordered so multi-word
// names are tried before names they contain ("west virginia" before "virginia")
func StateNamesLongestFirst() []string {
	names := make([]string, 0, len(states))
	for _, s := range states {
		names = append(names, strings.ToLower(s.Name))
	}
	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})
	return names
}

// Abbreviations returns all lowercase postal abbreviations
func Abbreviations() []string {
	out := make([]string, 0, len(states))
	for _, s := range states {
		out = append(out, strings.ToLower(s.Abbreviation))
	}
	return out
}
