package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danilovichz/lawpro-v2/models"
)

// MergePolicy decides when a newly parsed field replaces the stored one
type MergePolicy string

const (
	// MergePolicyOverwrite lets the newest present value win. It is the
	// default so that a user's own correction always takes effect.
	MergePolicyOverwrite MergePolicy = "overwrite"
	// MergePolicyConfidenceGated overwrites only when the parsed confidence
	// is at least the stored aggregate confidence for that field. The
	// aggregate never decreases, so a field set at high confidence stays put.
	MergePolicyConfidenceGated MergePolicy = "confidence"
)

// ParseMergePolicy maps a configuration value to a policy
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MergePolicyOverwrite:
		return MergePolicyOverwrite, nil
	case MergePolicyConfidenceGated:
		return MergePolicyConfidenceGated, nil
	}
	return "", fmt.Errorf("unknown merge policy %q", s)
}

// StateMerger folds a ParsedQuery into a ConversationState
type StateMerger struct {
	policy    MergePolicy
	corrector *LocationCorrector
	now       func() time.Time
	logger    *zap.Logger
}

// StateMergerOption is a functional option for StateMerger
type StateMergerOption func(*StateMerger)

// MergerWithPolicy sets the merge policy
func MergerWithPolicy(policy MergePolicy) StateMergerOption {
	return func(m *StateMerger) {
		m.policy = policy
	}
}

// MergerWithCorrector sets the corrector applied to new county and state values
func MergerWithCorrector(c *LocationCorrector) StateMergerOption {
	return func(m *StateMerger) {
		m.corrector = c
	}
}

// MergerWithClock overrides time.Now
func MergerWithClock(now func() time.Time) StateMergerOption {
	return func(m *StateMerger) {
		m.now = now
	}
}

// MergerWithLogger sets the logger
func MergerWithLogger(logger *zap.Logger) StateMergerOption {
	return func(m *StateMerger) {
		m.logger = logger
	}
}

// NewStateMerger creates a new state merger
func NewStateMerger(opts ...StateMergerOption) *StateMerger {
	m := &StateMerger{
		policy: MergePolicyOverwrite,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Policy returns the configured merge policy
func (m *StateMerger) Policy() MergePolicy { return m.policy }

// Merge returns a new state; current is not modified. Confidence never
// decreases and IsComplete is always recomputed.
func (m *StateMerger) Merge(ctx context.Context, current *models.ConversationState, parsed *models.ParsedQuery) *models.ConversationState {
	merged := current.Clone()
	if parsed == nil {
		parsed = &models.ParsedQuery{}
	}
	incoming := parsed.Confidence.Clamp()

	if parsed.County != nil && m.accepts(incoming.County, merged.Confidence.County) {
		merged.County = m.mergeLocation(ctx, merged.County, *parsed.County, models.LocationKindCounty)
	}
	if parsed.State != nil && m.accepts(incoming.State, merged.Confidence.State) {
		merged.State = m.mergeLocation(ctx, merged.State, *parsed.State, models.LocationKindState)
	}
	if parsed.CaseType != nil && parsed.CaseType.Valid() && m.accepts(incoming.CaseType, merged.Confidence.CaseType) {
		ct := *parsed.CaseType
		merged.CaseType = &ct
	}

	merged.Confidence = merged.Confidence.Max(incoming)
	merged.IsComplete = merged.SearchReady()
	merged.LastUpdated = m.now()

	return merged
}

func (m *StateMerger) accepts(incoming, stored float64) bool {
	if m.policy == MergePolicyOverwrite {
		return true
	}
	return incoming >= stored
}

// mergeLocation corrects a location only when it differs from the stored one
func (m *StateMerger) mergeLocation(ctx context.Context, stored *string, value string, kind models.LocationKind) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return stored
	}
	if stored != nil && strings.EqualFold(strings.TrimSpace(*stored), value) {
		return stored
	}

	corrected := value
	if m.corrector != nil {
		corrected = m.corrector.Correct(ctx, value, kind)
	}

	m.logger.Debug("merged location",
		zap.String("kind", string(kind)),
		zap.String("value", value),
		zap.String("corrected", corrected),
	)
	return models.StringPtr(corrected)
}

// IsSearchReady reports whether state has a state and a case type; county is not required
func IsSearchReady(state *models.ConversationState) bool {
	return state.SearchReady()
}
