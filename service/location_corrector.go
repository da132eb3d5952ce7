package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/danilovichz/lawpro-v2/location"
	"github.com/danilovichz/lawpro-v2/models"
)

// SuggestionThreshold is the minimum similarity for accepting a suggestion
// whose kind does not match the requested one
const SuggestionThreshold = 0.5

// LocationDirectory is the lawyer directory's location lookup surface
type LocationDirectory interface {
	// FindExactLocation returns the stored value matching value case-insensitively
	FindExactLocation(ctx context.Context, kind models.LocationKind, value string) (string, bool, error)
	// LocationSuggestions returns fuzzy matches ranked by similarity
	LocationSuggestions(ctx context.Context, term string) ([]models.DirectorySuggestion, error)
}

// LocationCorrector maps raw county and state strings onto the directory's
// canonical spellings
type LocationCorrector struct {
	directory LocationDirectory
	logger    *zap.Logger
}

// LocationCorrectorOption is a functional option for LocationCorrector
type LocationCorrectorOption func(*LocationCorrector)

// CorrectorWithDirectory sets the directory
func CorrectorWithDirectory(d LocationDirectory) LocationCorrectorOption {
	return func(c *LocationCorrector) {
		c.directory = d
	}
}

// CorrectorWithLogger sets the logger
func CorrectorWithLogger(logger *zap.Logger) LocationCorrectorOption {
	return func(c *LocationCorrector) {
		c.logger = logger
	}
}

// NewLocationCorrector creates a new location corrector
func NewLocationCorrector(opts ...LocationCorrectorOption) *LocationCorrector {
	c := &LocationCorrector{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Correct returns the canonical spelling of raw, or raw itself when nothing
// better is found. It never fails.
func (c *LocationCorrector) Correct(ctx context.Context, raw string, kind models.LocationKind) string {
	value := strings.TrimSpace(raw)
	if value == "" || c == nil || c.directory == nil {
		return raw
	}

	corrected, tier, err := c.correct(ctx, value, kind)
	if err != nil {
		c.logger.Warn("location correction failed",
			zap.String("raw", value),
			zap.String("kind", string(kind)),
			zap.Error(fmt.Errorf("%w: %w", ErrCorrection, err)),
		)
		locationCorrectionsTotal.WithLabelValues(string(kind), "error").Inc()
		return raw
	}

	locationCorrectionsTotal.WithLabelValues(string(kind), tier).Inc()
	if tier == "unchanged" {
		return raw
	}
	if corrected != value {
		c.logger.Info("location corrected",
			zap.String("raw", value),
			zap.String("corrected", corrected),
			zap.String("tier", tier),
		)
	}
	return corrected
}

func (c *LocationCorrector) correct(ctx context.Context, value string, kind models.LocationKind) (string, string, error) {
	var exactErr error
	for _, candidate := range location.Normalize(value, kind) {
		stored, ok, err := c.directory.FindExactLocation(ctx, kind, candidate)
		if err != nil {
			exactErr = err
			break
		}
		if ok && stored != "" {
			return stored, "exact", nil
		}
	}

	suggestions, err := c.directory.LocationSuggestions(ctx, value)
	if err != nil {
		return "", "", errors.Join(exactErr, err)
	}
	if len(suggestions) == 0 {
		return value, "unchanged", nil
	}

	sorted := make([]models.DirectorySuggestion, len(suggestions))
	copy(sorted, suggestions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SimilarityScore > sorted[j].SimilarityScore
	})

	for _, s := range sorted {
		if s.LocationType == kind && strings.TrimSpace(s.Location) != "" {
			return s.Location, "suggestion", nil
		}
	}

	if best := sorted[0]; best.SimilarityScore > SuggestionThreshold && strings.TrimSpace(best.Location) != "" {
		return best.Location, "similarity", nil
	}

	return value, "unchanged", nil
}
