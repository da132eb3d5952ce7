package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrStateNotFound is returned by state stores when a session has no stored state yet
var ErrStateNotFound = errors.New("conversation state not found")

// ErrLawyerNotFound is returned when a directory row does not exist
var ErrLawyerNotFound = errors.New("lawyer not found")

// CaseType represents the legal case category of a conversation
type CaseType string

const (
	CaseTypeCriminal       CaseType = "criminal"
	CaseTypePersonalInjury CaseType = "personal_injury"
)

// Valid reports whether the case type is one of the known categories
func (c CaseType) Valid() bool {
	switch c {
	case CaseTypeCriminal, CaseTypePersonalInjury:
		return true
	}
	return false
}

// DisplayName returns the practice-area label used in specialties
func (c CaseType) DisplayName() string {
	switch c {
	case CaseTypeCriminal:
		return "Criminal Defense"
	case CaseTypePersonalInjury:
		return "Personal Injury"
	}
	return "Legal"
}

// DirectoryTag returns the value stored in the directory's type column
func (c CaseType) DirectoryTag() string {
	switch c {
	case CaseTypeCriminal:
		return "Criminal"
	case CaseTypePersonalInjury:
		return "Personal Injury"
	}
	return ""
}

// Confidence holds per-field confidence scores in [0,1]
type Confidence struct {
	County   float64 `json:"county"`
	State    float64 `json:"state"`
	CaseType float64 `json:"caseType"`
}

// Max returns the per-field maximum of two confidence sets
func (c Confidence) Max(other Confidence) Confidence {
	return Confidence{
		County:   max(c.County, other.County),
		State:    max(c.State, other.State),
		CaseType: max(c.CaseType, other.CaseType),
	}
}

// Clamp bounds every field to [0,1]
func (c Confidence) Clamp() Confidence {
	return Confidence{
		County:   clampUnit(c.County),
		State:    clampUnit(c.State),
		CaseType: clampUnit(c.CaseType),
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ConversationState represents the accumulated belief about a chat session's
// jurisdiction and case category
type ConversationState struct {
	County      *string    `json:"county,omitempty"`
	State       *string    `json:"state,omitempty"`
	CaseType    *CaseType  `json:"caseType,omitempty"`
	Confidence  Confidence `json:"confidence"`
	IsComplete  bool       `json:"isComplete"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// SearchReady reports whether enough is known to query the directory.
// County is never required; a county without a state is never trusted.
func (s *ConversationState) SearchReady() bool {
	if s == nil {
		return false
	}
	return present(s.State) && s.CaseType != nil && s.CaseType.Valid()
}

// HasAny reports whether any field has been resolved
func (s *ConversationState) HasAny() bool {
	if s == nil {
		return false
	}
	return present(s.County) || present(s.State) || s.CaseType != nil
}

// LocationLabel returns "County, State", "State", or "" when no state is known
func (s *ConversationState) LocationLabel() string {
	if s == nil || !present(s.State) {
		return ""
	}
	if present(s.County) {
		return *s.County + ", " + *s.State
	}
	return *s.State
}

// Clone returns a deep copy of the state
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return &ConversationState{}
	}
	out := *s
	out.County = cloneString(s.County)
	out.State = cloneString(s.State)
	if s.CaseType != nil {
		ct := *s.CaseType
		out.CaseType = &ct
	}
	return &out
}

// Value implements driver.Valuer for JSONB
func (s ConversationState) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *ConversationState) Scan(value interface{}) error {
	if value == nil {
		*s = ConversationState{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*s = ConversationState{}
		return nil
	}

	if len(bytes) == 0 {
		*s = ConversationState{}
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// ParsedQuery is the per-utterance extraction result, produced by the AI
// parser or the fallback extractor and consumed by the merger
type ParsedQuery struct {
	County     *string    `json:"county"`
	State      *string    `json:"state"`
	CaseType   *CaseType  `json:"caseType"`
	Confidence Confidence `json:"confidence"`
}

// IsEmpty reports whether no field was extracted
func (p *ParsedQuery) IsEmpty() bool {
	return p == nil || (!present(p.County) && !present(p.State) && p.CaseType == nil)
}

// StringPtr returns a pointer to s, or nil when s is blank
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// CaseTypePtr returns a pointer to c
func CaseTypePtr(c CaseType) *CaseType {
	return &c
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
