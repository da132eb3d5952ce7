package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danilovichz/lawpro-v2/location"
	"github.com/danilovichz/lawpro-v2/models"
)

// QueryParser extracts a ParsedQuery from one utterance using a language model
type QueryParser interface {
	Parse(ctx context.Context, utterance string) (*models.ParsedQuery, error)
	Name() string
}

const queryParserSystemPrompt = `You are a legal query parser. Extract the location where the user needs a lawyer and the case type.
For "I killed a guy in monroe ny", extract: county="Monroe County", state="New York", caseType="criminal".
Expand state abbreviations (ny -> New York, ca -> California). Use full county names ending in "County".
caseType must be "criminal", "personal_injury" or null. Use null for anything not stated in the message.
Return only JSON: {"county": "County Name" or null, "state": "State Name" or null, "caseType": "criminal" or "personal_injury" or null, "confidence": {"county": 0.9, "state": 0.9, "caseType": 0.9}}`

// parsedQueryPayload mirrors the JSON contract returned by the model
type parsedQueryPayload struct {
	County     *string `json:"county"`
	State      *string `json:"state"`
	CaseType   *string `json:"caseType"`
	Confidence *struct {
		County   *float64 `json:"county"`
		State    *float64 `json:"state"`
		CaseType *float64 `json:"caseType"`
	} `json:"confidence"`
}

// decodeParsedQuery turns raw model output into a validated ParsedQuery.
// Unknown case types are rejected; missing confidences become zero.
func decodeParsedQuery(provider, raw string) (*models.ParsedQuery, error) {
	body := extractJSONObject(raw)
	if body == "" {
		return nil, &ParseError{Provider: provider, Stage: ParseStageEmpty, Err: errors.New("no JSON object in response")}
	}

	var payload parsedQueryPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, &ParseError{Provider: provider, Stage: ParseStageJSON, Err: err}
	}

	parsed := &models.ParsedQuery{}

	if payload.County != nil {
		parsed.County = models.StringPtr(strings.TrimSpace(*payload.County))
	}
	if payload.State != nil {
		state := strings.TrimSpace(*payload.State)
		if canonical, ok := location.CanonicalState(state); ok {
			state = canonical
		}
		parsed.State = models.StringPtr(state)
	}
	if payload.CaseType != nil && strings.TrimSpace(*payload.CaseType) != "" {
		ct := models.CaseType(strings.ToLower(strings.TrimSpace(*payload.CaseType)))
		if !ct.Valid() {
			return nil, &ParseError{
				Provider: provider,
				Stage:    ParseStageValidation,
				Err:      fmt.Errorf("unknown case type %q", *payload.CaseType),
			}
		}
		parsed.CaseType = &ct
	}

	if c := payload.Confidence; c != nil {
		parsed.Confidence = models.Confidence{
			County:   floatOrZero(c.County),
			State:    floatOrZero(c.State),
			CaseType: floatOrZero(c.CaseType),
		}.Clamp()
	}

	// a confidence without a value carries no information
	if parsed.County == nil {
		parsed.Confidence.County = 0
	}
	if parsed.State == nil {
		parsed.Confidence.State = 0
	}
	if parsed.CaseType == nil {
		parsed.Confidence.CaseType = 0
	}

	return parsed, nil
}

// extractJSONObject strips markdown fences and returns the outermost {...}
func extractJSONObject(raw string) string {
	s := stripCodeFences(raw)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// classifyParseTransportError maps a provider call failure to a parse stage
func classifyParseTransportError(ctx context.Context, provider string, err error) *ParseError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ParseError{Provider: provider, Stage: ParseStageTimeout, Err: err}
	}
	return &ParseError{Provider: provider, Stage: ParseStageTransport, Err: err}
}
