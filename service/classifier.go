package service

import (
	"regexp"
	"strings"

	"github.com/danilovichz/lawpro-v2/models"
)

// impairedDrivingRe matches DUI/DWI language, which always classifies as criminal
var impairedDrivingRe = regexp.MustCompile(`\b(?:dui|dwi|owi|drunk driving|driving under the influence|driving while intoxicated)s?\b`)

// CaseKeywordSet lists the keywords that indicate a case type
type CaseKeywordSet struct {
	CaseType models.CaseType
	Keywords []string
}

// caseKeywordTable is scanned in declaration order; the first table with a hit wins
var caseKeywordTable = []CaseKeywordSet{
	{
		CaseType: models.CaseTypeCriminal,
		Keywords: []string{
			"arrest", "criminal", "court", "police", "jail", "citation", "ticket",
			"pulled over", "charged", "charge", "offense", "felony", "misdemeanor",
			"warrant", "probation", "assault", "theft",
		},
	},
	{
		CaseType: models.CaseTypePersonalInjury,
		Keywords: []string{
			"accident", "crash", "injury", "injured", "hurt", "damages", "medical",
			"collision", "hit by", "personal injury", "compensation", "slip and fall",
		},
	},
}

var caseKeywordRes = compileCaseKeywords(caseKeywordTable)

// compileCaseKeywords builds one pattern per set. Keywords match whole words
// with an optional inflection; a trailing y also matches "ies".
func compileCaseKeywords(table []CaseKeywordSet) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(table))
	for i, entry := range table {
		quoted := make([]string, len(entry.Keywords))
		for j, kw := range entry.Keywords {
			if stem, ok := strings.CutSuffix(kw, "y"); ok {
				quoted[j] = regexp.QuoteMeta(stem) + `(?:y|ies)`
				continue
			}
			quoted[j] = regexp.QuoteMeta(kw)
		}
		res[i] = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)(?:s|es|ed|ing)?\b`)
	}
	return res
}

// ClassifyCaseType maps an utterance to a case type, or nil when no keyword matches.
// The input is expected lowercased; it is lowercased again for safety.
func ClassifyCaseType(utteranceLower string) *models.CaseType {
	text := strings.ToLower(utteranceLower)

	if impairedDrivingRe.MatchString(text) {
		return models.CaseTypePtr(models.CaseTypeCriminal)
	}

	for i, re := range caseKeywordRes {
		if re.MatchString(text) {
			return models.CaseTypePtr(caseKeywordTable[i].CaseType)
		}
	}

	return nil
}

// CaseKeywords returns a copy of the keyword table in scan order
func CaseKeywords() []CaseKeywordSet {
	out := make([]CaseKeywordSet, len(caseKeywordTable))
	for i, entry := range caseKeywordTable {
		out[i] = CaseKeywordSet{CaseType: entry.CaseType, Keywords: append([]string(nil), entry.Keywords...)}
	}
	return out
}

// CaseTypeFromHint maps a free-form override such as "DUI" or "car accident"
// to a case type
func CaseTypeFromHint(hint string) *models.CaseType {
	h := strings.ToLower(strings.TrimSpace(hint))
	switch {
	case h == "":
		return nil
	case models.CaseType(h).Valid():
		return models.CaseTypePtr(models.CaseType(h))
	case strings.Contains(h, "criminal"), strings.Contains(h, "dui"):
		return models.CaseTypePtr(models.CaseTypeCriminal)
	case strings.Contains(h, "injury"), strings.Contains(h, "accident"):
		return models.CaseTypePtr(models.CaseTypePersonalInjury)
	}
	return nil
}
