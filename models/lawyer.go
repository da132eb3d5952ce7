package models

import (
	"time"

	"github.com/google/uuid"
)

// LawyerRecord represents a row of the external lawyer directory.
// Name, Specialty, Description and PracticeAreas are synthesized for display;
// the directory does not store them.
type LawyerRecord struct {
	ID             uuid.UUID `json:"id"`
	State          string    `json:"state"`
	City           string    `json:"city"`
	County         string    `json:"county"`
	LawFirm        string    `json:"law_firm"`
	PhoneNumber    string    `json:"phone_number"`
	Email          *string   `json:"email,omitempty"`
	Website        *string   `json:"website,omitempty"`
	Type           string    `json:"type"` // "Criminal", "Personal Injury"
	RelevanceScore float64   `json:"relevance_score,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	Name          string   `json:"name"`
	Specialty     string   `json:"specialty"`
	Description   string   `json:"description"`
	PracticeAreas []string `json:"practice_areas"`
}

// LawyerFilter describes a direct directory scan
type LawyerFilter struct {
	State  string
	County string // partial match, optional
	Type   string // partial match on the directory tag, optional
	Limit  int
}
