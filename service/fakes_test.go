package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/danilovichz/lawpro-v2/models"
)

// fakeLocationDirectory serves exact values and suggestions from memory
type fakeLocationDirectory struct {
	counties    []string
	states      []string
	suggestions map[string][]models.DirectorySuggestion
	exactErr    error
	suggestErr  error

	exactCalls   int
	suggestCalls int
}

func (d *fakeLocationDirectory) FindExactLocation(_ context.Context, kind models.LocationKind, value string) (string, bool, error) {
	d.exactCalls++
	if d.exactErr != nil {
		return "", false, d.exactErr
	}
	values := d.states
	if kind == models.LocationKindCounty {
		values = d.counties
	}
	for _, v := range values {
		if strings.EqualFold(v, value) {
			return v, true, nil
		}
	}
	return "", false, nil
}

func (d *fakeLocationDirectory) LocationSuggestions(_ context.Context, term string) ([]models.DirectorySuggestion, error) {
	d.suggestCalls++
	if d.suggestErr != nil {
		return nil, d.suggestErr
	}
	return d.suggestions[strings.ToLower(term)], nil
}

// memoryStateStore is an in-memory StateStore
type memoryStateStore struct {
	mu      sync.Mutex
	states  map[string]models.ConversationState
	getErr  error
	saveErr error
	saves   int
}

func newMemoryStateStore() *memoryStateStore {
	return &memoryStateStore{states: make(map[string]models.ConversationState)}
}

func (m *memoryStateStore) GetState(_ context.Context, sessionID string) (*models.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.states[sessionID]
	if !ok {
		return nil, models.ErrStateNotFound
	}
	return s.Clone(), nil
}

func (m *memoryStateStore) SaveState(_ context.Context, sessionID string, state *models.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.states[sessionID] = *state.Clone()
	return nil
}

func (m *memoryStateStore) DeleteState(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sessionID)
	return nil
}

// fakeQueryParser returns a canned result or error
type fakeQueryParser struct {
	result *models.ParsedQuery
	err    error
	block  bool
	calls  int
}

func (f *fakeQueryParser) Name() string { return "fake" }

func (f *fakeQueryParser) Parse(ctx context.Context, _ string) (*models.ParsedQuery, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, &ParseError{Provider: "fake", Stage: ParseStageTimeout, Err: ctx.Err()}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeLawyerDirectory records which search tiers were attempted
type fakeLawyerDirectory struct {
	ranked    []models.LawyerRecord
	filtered  []models.LawyerRecord
	stateWide []models.LawyerRecord
	lawyers   map[uuid.UUID]models.LawyerRecord
	rankedErr error
	filterErr error

	rankedCalls  int
	filterCalls  int
	filters      []models.LawyerFilter
	lastFilter   models.LawyerFilter
	lastCounty   *string
	lastState    string
	lastCaseType *models.CaseType
}

func (d *fakeLawyerDirectory) SearchLawyersRanked(_ context.Context, county *string, state string, caseType *models.CaseType) ([]models.LawyerRecord, error) {
	d.rankedCalls++
	d.lastCounty, d.lastState, d.lastCaseType = county, state, caseType
	if d.rankedErr != nil {
		return nil, d.rankedErr
	}
	return d.ranked, nil
}

func (d *fakeLawyerDirectory) FilterLawyers(_ context.Context, filter models.LawyerFilter) ([]models.LawyerRecord, error) {
	d.filterCalls++
	d.filters = append(d.filters, filter)
	d.lastFilter = filter
	if d.filterErr != nil {
		return nil, d.filterErr
	}
	if filter.County == "" && filter.Type == "" && d.stateWide != nil {
		return d.stateWide, nil
	}
	return d.filtered, nil
}

func (d *fakeLawyerDirectory) GetByID(_ context.Context, id uuid.UUID) (*models.LawyerRecord, error) {
	l, ok := d.lawyers[id]
	if !ok {
		return nil, models.ErrLawyerNotFound
	}
	return &l, nil
}
