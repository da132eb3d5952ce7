package models

// LocationKind distinguishes county and state location tokens
type LocationKind string

const (
	LocationKindCounty LocationKind = "county"
	LocationKindState  LocationKind = "state"
)

// DirectorySuggestion is a ranked fuzzy match returned by the directory
type DirectorySuggestion struct {
	Location        string       `json:"location"`
	LocationType    LocationKind `json:"location_type"`
	SimilarityScore float64      `json:"similarity_score"`
}
