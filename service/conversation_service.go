package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/danilovichz/lawpro-v2/models"
)

// DefaultParseTimeout bounds one AI parse call
const DefaultParseTimeout = 8 * time.Second

// StateStore persists one ConversationState per session.
// GetState returns models.ErrStateNotFound for unknown sessions.
type StateStore interface {
	GetState(ctx context.Context, sessionID string) (*models.ConversationState, error)
	SaveState(ctx context.Context, sessionID string, state *models.ConversationState) error
	DeleteState(ctx context.Context, sessionID string) error
}

// ConversationService runs the per-message pipeline: load, parse, merge,
// persist, evaluate readiness
type ConversationService struct {
	store        StateStore
	parser       QueryParser
	fallback     *FallbackExtractor
	merger       *StateMerger
	parseTimeout time.Duration
	logger       *zap.Logger
}

// ConversationServiceOption is a functional option for ConversationService
type ConversationServiceOption func(*ConversationService)

// WithStateStore sets the state store
func WithStateStore(store StateStore) ConversationServiceOption {
	return func(s *ConversationService) {
		s.store = store
	}
}

// WithQueryParser sets the AI parser; without one every message uses the fallback extractor
func WithQueryParser(parser QueryParser) ConversationServiceOption {
	return func(s *ConversationService) {
		s.parser = parser
	}
}

// WithFallbackExtractor sets the fallback extractor
func WithFallbackExtractor(e *FallbackExtractor) ConversationServiceOption {
	return func(s *ConversationService) {
		s.fallback = e
	}
}

// WithStateMerger sets the merger
func WithStateMerger(m *StateMerger) ConversationServiceOption {
	return func(s *ConversationService) {
		s.merger = m
	}
}

// WithParseTimeout sets the AI parse timeout
func WithParseTimeout(d time.Duration) ConversationServiceOption {
	return func(s *ConversationService) {
		if d > 0 {
			s.parseTimeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ConversationServiceOption {
	return func(s *ConversationService) {
		s.logger = logger
	}
}

// NewConversationService creates a new conversation service
func NewConversationService(opts ...ConversationServiceOption) *ConversationService {
	s := &ConversationService{
		parseTimeout: DefaultParseTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fallback == nil {
		s.fallback = NewFallbackExtractor(FallbackWithLogger(s.logger))
	}
	if s.merger == nil {
		s.merger = NewStateMerger(MergerWithLogger(s.logger))
	}
	return s
}

// ProcessMessageRequest represents one user utterance in a session
type ProcessMessageRequest struct {
	SessionID string
	Message   string
}

// ProcessMessageResult represents the outcome of processing one utterance
type ProcessMessageResult struct {
	State            *models.ConversationState `json:"state"`
	ShouldSearch     bool                      `json:"should_search"`
	AnnotatedMessage string                    `json:"annotated_message"`
	SearchLocation   string                    `json:"search_location,omitempty"`
}

// Process runs the pipeline for one message. It never fails: any error or
// panic yields an empty state, ShouldSearch=false and the message unchanged.
func (s *ConversationService) Process(ctx context.Context, req ProcessMessageRequest) (result *ProcessMessageResult) {
	start := time.Now()
	defer func() {
		processDuration.Observe(time.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while processing message",
				zap.String("session_id", req.SessionID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			result = passThrough(req.Message)
		}
	}()

	result, err := s.process(ctx, req)
	if err != nil {
		s.logger.Error("failed to process message",
			zap.String("session_id", req.SessionID),
			zap.Error(err),
		)
		return passThrough(req.Message)
	}
	return result
}

func (s *ConversationService) process(ctx context.Context, req ProcessMessageRequest) (*ProcessMessageResult, error) {
	if s.store == nil {
		return nil, errors.New("state store not set")
	}

	current, err := s.loadState(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	parsed := s.parse(ctx, req.Message)
	merged := s.merger.Merge(ctx, current, parsed)

	if err := s.store.SaveState(ctx, req.SessionID, merged); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.Info("conversation state updated",
		zap.String("session_id", req.SessionID),
		zap.Stringp("county", merged.County),
		zap.Stringp("state", merged.State),
		zap.Bool("complete", merged.IsComplete),
	)

	return &ProcessMessageResult{
		State:            merged,
		ShouldSearch:     IsSearchReady(merged),
		AnnotatedMessage: AnnotateMessage(req.Message, merged),
		SearchLocation:   merged.LocationLabel(),
	}, nil
}

// GetState returns the stored state, or an empty one for unknown sessions
func (s *ConversationService) GetState(ctx context.Context, sessionID string) (*models.ConversationState, error) {
	if s.store == nil {
		return nil, errors.New("state store not set")
	}
	return s.loadState(ctx, sessionID)
}

// ResetState forgets everything known about a session
func (s *ConversationService) ResetState(ctx context.Context, sessionID string) error {
	if s.store == nil {
		return errors.New("state store not set")
	}
	if err := s.store.DeleteState(ctx, sessionID); err != nil && !errors.Is(err, models.ErrStateNotFound) {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (s *ConversationService) loadState(ctx context.Context, sessionID string) (*models.ConversationState, error) {
	current, err := s.store.GetState(ctx, sessionID)
	if errors.Is(err, models.ErrStateNotFound) {
		return &models.ConversationState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if current == nil {
		return &models.ConversationState{}, nil
	}
	return current, nil
}

// parse tries the AI parser under a timeout and falls back to deterministic extraction
func (s *ConversationService) parse(ctx context.Context, message string) *models.ParsedQuery {
	if s.parser != nil {
		parsed, err := s.parseWithAI(ctx, message)
		if err == nil {
			parserCallsTotal.WithLabelValues(s.parser.Name(), "success").Inc()
			return parsed
		}
		parserCallsTotal.WithLabelValues(s.parser.Name(), "error").Inc()
		s.logger.Warn("AI parse failed, using fallback extraction",
			zap.String("provider", s.parser.Name()),
			zap.Error(err),
		)
	}

	parserCallsTotal.WithLabelValues("fallback", "success").Inc()
	return s.fallback.Extract(message)
}

func (s *ConversationService) parseWithAI(ctx context.Context, message string) (*models.ParsedQuery, error) {
	pctx, cancel := context.WithTimeout(ctx, s.parseTimeout)
	defer cancel()

	parsed, err := s.parser.Parse(pctx, message)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, &ParseError{Provider: s.parser.Name(), Stage: ParseStageEmpty}
	}
	return parsed, nil
}

// AnnotateMessage appends the resolved location and case type as bracketed
// metadata; the message is returned unchanged when nothing is known
func AnnotateMessage(message string, state *models.ConversationState) string {
	if !state.HasAny() {
		return message
	}

	loc := state.LocationLabel()
	if loc == "" && state.County != nil {
		loc = *state.County
	}
	if loc == "" {
		loc = "unspecified"
	}

	caseType := "unspecified"
	if state.CaseType != nil {
		switch *state.CaseType {
		case models.CaseTypeCriminal:
			caseType = "criminal defense"
		case models.CaseTypePersonalInjury:
			caseType = "personal injury"
		}
	}

	return fmt.Sprintf("%s [LOCATION: %s] [CASE_TYPE: %s]", message, loc, caseType)
}

func passThrough(message string) *ProcessMessageResult {
	return &ProcessMessageResult{
		State:            &models.ConversationState{},
		ShouldSearch:     false,
		AnnotatedMessage: message,
	}
}
