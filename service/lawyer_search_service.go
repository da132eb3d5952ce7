package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danilovichz/lawpro-v2/location"
	"github.com/danilovichz/lawpro-v2/models"
)

// DirectPageSize is the row limit of the direct filtered scan
const DirectPageSize = 15

// LawyerDirectory is the lawyer directory's search surface
type LawyerDirectory interface {
	// SearchLawyersRanked runs the directory's combined relevance-ranked search
	SearchLawyersRanked(ctx context.Context, county *string, state string, caseType *models.CaseType) ([]models.LawyerRecord, error)
	// FilterLawyers scans the directory by state, partial county and partial type, newest first
	FilterLawyers(ctx context.Context, filter models.LawyerFilter) ([]models.LawyerRecord, error)
	// GetByID returns one row or models.ErrLawyerNotFound
	GetByID(ctx context.Context, id uuid.UUID) (*models.LawyerRecord, error)
}

// LawyerSearchService finds lawyers for a conversation state
type LawyerSearchService struct {
	directory LawyerDirectory
	states    StateStore
	logger    *zap.Logger
}

// LawyerSearchOption is a functional option for LawyerSearchService
type LawyerSearchOption func(*LawyerSearchService)

// SearchWithDirectory sets the lawyer directory
func SearchWithDirectory(d LawyerDirectory) LawyerSearchOption {
	return func(s *LawyerSearchService) {
		s.directory = d
	}
}

// SearchWithStateStore sets the store used by SearchForSession
func SearchWithStateStore(store StateStore) LawyerSearchOption {
	return func(s *LawyerSearchService) {
		s.states = store
	}
}

// SearchWithLogger sets the logger
func SearchWithLogger(logger *zap.Logger) LawyerSearchOption {
	return func(s *LawyerSearchService) {
		s.logger = logger
	}
}

// NewLawyerSearchService creates a new lawyer search service
func NewLawyerSearchService(opts ...LawyerSearchOption) *LawyerSearchService {
	s := &LawyerSearchService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns display-ready lawyers for state. A state without a US state
// yields no results; directory errors fall through to the next tier.
func (s *LawyerSearchService) Search(ctx context.Context, state *models.ConversationState) []models.LawyerRecord {
	if state == nil || state.State == nil || strings.TrimSpace(*state.State) == "" || s.directory == nil {
		return []models.LawyerRecord{}
	}
	usState := strings.TrimSpace(*state.State)

	var county *string
	if state.County != nil && strings.TrimSpace(*state.County) != "" {
		county = state.County
	}

	if county != nil {
		records, err := s.directory.SearchLawyersRanked(ctx, county, usState, state.CaseType)
		switch {
		case err != nil:
			lawyerSearchTotal.WithLabelValues("ranked", "error").Inc()
			s.logger.Warn("ranked lawyer search failed",
				zap.String("state", usState),
				zap.Error(fmt.Errorf("%w: %w", ErrSearch, err)),
			)
		case len(records) == 0:
			lawyerSearchTotal.WithLabelValues("ranked", "empty").Inc()
		default:
			lawyerSearchTotal.WithLabelValues("ranked", "hit").Inc()
			return formatLawyers(records, state.CaseType)
		}
	}

	filter := models.LawyerFilter{State: usState, Limit: DirectPageSize}
	if county != nil {
		// partial matching also finds rows stored without the suffix
		filter.County = location.StripCountySuffix(*county)
	}
	if state.CaseType != nil {
		filter.Type = state.CaseType.DirectoryTag()
	}

	if records := s.filter(ctx, "filtered", filter); len(records) > 0 {
		return formatLawyers(records, state.CaseType)
	}

	// widen to the whole state when county or type narrowed the scan
	if filter.County == "" && filter.Type == "" {
		return []models.LawyerRecord{}
	}
	records := s.filter(ctx, "state", models.LawyerFilter{State: usState, Limit: DirectPageSize})
	if len(records) == 0 {
		return []models.LawyerRecord{}
	}
	return formatLawyers(records, state.CaseType)
}

func (s *LawyerSearchService) filter(ctx context.Context, tier string, filter models.LawyerFilter) []models.LawyerRecord {
	records, err := s.directory.FilterLawyers(ctx, filter)
	if err != nil {
		lawyerSearchTotal.WithLabelValues(tier, "error").Inc()
		s.logger.Warn("filtered lawyer search failed",
			zap.String("tier", tier),
			zap.String("state", filter.State),
			zap.Error(fmt.Errorf("%w: %w", ErrSearch, err)),
		)
		return nil
	}
	if len(records) == 0 {
		lawyerSearchTotal.WithLabelValues(tier, "empty").Inc()
		return nil
	}
	lawyerSearchTotal.WithLabelValues(tier, "hit").Inc()
	return records
}

// Lawyer returns a single directory row formatted for display. The case
// type shown is taken from the row's own type column.
func (s *LawyerSearchService) Lawyer(ctx context.Context, id uuid.UUID) (*models.LawyerRecord, error) {
	if s.directory == nil {
		return nil, errors.New("lawyer directory not set")
	}

	record, err := s.directory.GetByID(ctx, id)
	if errors.Is(err, models.ErrLawyerNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}

	formatted := formatLawyer(*record, CaseTypeFromHint(record.Type))
	return &formatted, nil
}

// SearchForSession searches with the stored state of a session. A non-empty
// caseTypeOverride such as "DUI" or "car accident" replaces the stored case type.
func (s *LawyerSearchService) SearchForSession(ctx context.Context, sessionID, caseTypeOverride string) ([]models.LawyerRecord, error) {
	if s.states == nil {
		return nil, errors.New("state store not set")
	}

	state, err := s.states.GetState(ctx, sessionID)
	if errors.Is(err, models.ErrStateNotFound) {
		return []models.LawyerRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if override := CaseTypeFromHint(caseTypeOverride); override != nil {
		state = state.Clone()
		state.CaseType = override
	}

	return s.Search(ctx, state), nil
}

func formatLawyers(records []models.LawyerRecord, caseType *models.CaseType) []models.LawyerRecord {
	out := make([]models.LawyerRecord, len(records))
	for i, r := range records {
		out[i] = formatLawyer(r, caseType)
	}
	return out
}

var (
	lawOfficesOfRe  = regexp.MustCompile(`(?i)^law offices? of\s+(.+)$`)
	lawFirmSuffixRe = regexp.MustCompile(`(?i)^(.+?)\s+law firm$`)
)

// displayName derives a human-facing name from a firm name
func displayName(firm string) string {
	firm = strings.TrimSpace(firm)
	if firm == "" {
		return "Legal Professional"
	}
	if m := lawOfficesOfRe.FindStringSubmatch(firm); m != nil {
		return strings.TrimSpace(m[1])
	}
	if before, _, ok := strings.Cut(firm, " & "); ok && strings.TrimSpace(before) != "" {
		return strings.TrimSpace(before)
	}
	if m := lawFirmSuffixRe.FindStringSubmatch(firm); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.Fields(firm)[0]
}

// formatLawyer fills the synthesized display fields; the directory does not store them
func formatLawyer(r models.LawyerRecord, caseType *models.CaseType) models.LawyerRecord {
	var ct models.CaseType
	if caseType != nil {
		ct = *caseType
	}

	place := r.County
	if strings.TrimSpace(place) == "" {
		place = r.City
	}
	if strings.TrimSpace(place) == "" {
		place = "Local"
	}

	where := r.State
	switch {
	case r.County != "" && r.State != "":
		where = r.County + ", " + r.State
	case r.City != "" && r.State != "":
		where = r.City + ", " + r.State
	case where == "":
		where = "your area"
	}

	r.Name = displayName(r.LawFirm)
	r.Specialty = fmt.Sprintf("%s Specialist in %s, %s", ct.DisplayName(), place, r.State)
	r.Description = fmt.Sprintf(
		"Experienced %s professional serving %s. We provide comprehensive legal services with a focus on achieving the best outcomes for our clients.",
		strings.ToLower(ct.DisplayName()), where,
	)
	r.PracticeAreas = practiceAreas(r.Type, ct, r.State)
	return r
}

func practiceAreas(directoryType string, ct models.CaseType, state string) []string {
	var areas []string
	switch ct {
	case models.CaseTypeCriminal:
		areas = []string{"Criminal Defense", "DUI Defense", "Court Representation"}
	case models.CaseTypePersonalInjury:
		areas = []string{"Personal Injury", "Car Accidents", "Insurance Claims"}
	default:
		areas = []string{"Legal Consultation"}
	}
	if state != "" {
		areas = append(areas, state+" Law")
	}
	if t := strings.TrimSpace(directoryType); t != "" {
		areas = append([]string{t}, areas...)
	}
	return areas
}
