package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danilovichz/lawpro-v2/models"
)

type panickingParser struct{}

func (panickingParser) Name() string { return "panicking" }

func (panickingParser) Parse(context.Context, string) (*models.ParsedQuery, error) {
	panic("unexpected nil map")
}

func TestConversationService_MultiTurn(t *testing.T) {
	store := newMemoryStateStore()
	svc := NewConversationService(WithStateStore(store))
	ctx := context.Background()

	first := svc.Process(ctx, ProcessMessageRequest{SessionID: "s1", Message: "I got a DUI in Los Angeles California"})
	require.NotNil(t, first.State)
	assert.Equal(t, "California", deref(first.State.State))
	assert.Nil(t, first.State.County)
	require.NotNil(t, first.State.CaseType)
	assert.Equal(t, models.CaseTypeCriminal, *first.State.CaseType)
	assert.True(t, first.State.IsComplete)
	assert.True(t, first.ShouldSearch)
	assert.Equal(t, "California", first.SearchLocation)
	assert.Equal(t, "I got a DUI in Los Angeles California [LOCATION: California] [CASE_TYPE: criminal defense]", first.AnnotatedMessage)

	second := svc.Process(ctx, ProcessMessageRequest{SessionID: "s1", Message: "Actually, I'm in Orange County"})
	assert.Equal(t, "California", deref(second.State.State))
	assert.Equal(t, "Orange County", deref(second.State.County))
	assert.Equal(t, models.CaseTypeCriminal, *second.State.CaseType)
	assert.True(t, second.State.IsComplete)
	assert.Equal(t, "Orange County, California", second.SearchLocation)

	stored, err := svc.GetState(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Orange County", deref(stored.County))
	assert.Equal(t, 2, store.saves)
}

func TestConversationService_UsesAIParseResult(t *testing.T) {
	parser := &fakeQueryParser{result: &models.ParsedQuery{
		County:     models.StringPtr("Monroe County"),
		State:      models.StringPtr("New York"),
		CaseType:   models.CaseTypePtr(models.CaseTypeCriminal),
		Confidence: models.Confidence{County: 0.9, State: 0.9, CaseType: 0.9},
	}}
	svc := NewConversationService(WithStateStore(newMemoryStateStore()), WithQueryParser(parser))

	got := svc.Process(context.Background(), ProcessMessageRequest{SessionID: "s1", Message: "I killed a guy in monroe ny"})
	assert.Equal(t, 1, parser.calls)
	assert.Equal(t, "Monroe County", deref(got.State.County))
	assert.Equal(t, "New York", deref(got.State.State))
	assert.Equal(t, 0.9, got.State.Confidence.County)
	assert.True(t, got.ShouldSearch)
}

func TestConversationService_FallbackCorrectionAfterAITurn(t *testing.T) {
	parser := &fakeQueryParser{result: &models.ParsedQuery{
		County:     models.StringPtr("Los Angeles County"),
		State:      models.StringPtr("California"),
		CaseType:   models.CaseTypePtr(models.CaseTypeCriminal),
		Confidence: models.Confidence{County: 0.95, State: 0.95, CaseType: 0.95},
	}}
	svc := NewConversationService(WithStateStore(newMemoryStateStore()), WithQueryParser(parser))
	ctx := context.Background()

	first := svc.Process(ctx, ProcessMessageRequest{SessionID: "s1", Message: "I got a DUI in LA"})
	assert.Equal(t, "Los Angeles County", deref(first.State.County))

	parser.result = nil
	parser.err = &ParseError{Provider: "fake", Stage: ParseStageTransport, Err: errors.New("connection reset")}

	second := svc.Process(ctx, ProcessMessageRequest{SessionID: "s1", Message: "Actually, I'm in Orange County"})
	assert.Equal(t, "Orange County", deref(second.State.County))
	assert.Equal(t, "California", deref(second.State.State))
	assert.Equal(t, 0.95, second.State.Confidence.County)
	assert.Equal(t, "Orange County, California", second.SearchLocation)
}

func TestConversationService_AINetworkErrorFallsBack(t *testing.T) {
	parser := &fakeQueryParser{err: &ParseError{Provider: "fake", Stage: ParseStageTransport, Err: errors.New("dial tcp: i/o timeout")}}
	svc := NewConversationService(WithStateStore(newMemoryStateStore()), WithQueryParser(parser))

	got := svc.Process(context.Background(), ProcessMessageRequest{SessionID: "s1", Message: "I got a DUI in Houston, TX"})
	assert.Equal(t, 1, parser.calls)
	assert.Equal(t, "Texas", deref(got.State.State))
	require.NotNil(t, got.State.CaseType)
	assert.Equal(t, models.CaseTypeCriminal, *got.State.CaseType)
	assert.Equal(t, FallbackStateConfidence, got.State.Confidence.State)
	assert.True(t, got.ShouldSearch)
}

func TestConversationService_AITimeoutFallsBack(t *testing.T) {
	parser := &fakeQueryParser{block: true}
	svc := NewConversationService(
		WithStateStore(newMemoryStateStore()),
		WithQueryParser(parser),
		WithParseTimeout(10*time.Millisecond),
	)

	got := svc.Process(context.Background(), ProcessMessageRequest{SessionID: "s1", Message: "I was in a car accident in Ohio"})
	assert.Equal(t, "Ohio", deref(got.State.State))
	require.NotNil(t, got.State.CaseType)
	assert.Equal(t, models.CaseTypePersonalInjury, *got.State.CaseType)
}

func TestConversationService_PersistenceFailurePassesThrough(t *testing.T) {
	store := newMemoryStateStore()
	store.saveErr = errors.New("disk full")
	svc := NewConversationService(WithStateStore(store))

	got := svc.Process(context.Background(), ProcessMessageRequest{SessionID: "s1", Message: "I got a DUI in Houston, TX"})
	assert.Equal(t, &models.ConversationState{}, got.State)
	assert.False(t, got.ShouldSearch)
	assert.Equal(t, "I got a DUI in Houston, TX", got.AnnotatedMessage)
	assert.Empty(t, got.SearchLocation)
}

func TestConversationService_PanicPassesThrough(t *testing.T) {
	svc := NewConversationService(WithStateStore(newMemoryStateStore()), WithQueryParser(panickingParser{}))

	got := svc.Process(context.Background(), ProcessMessageRequest{SessionID: "s1", Message: "help"})
	require.NotNil(t, got)
	assert.False(t, got.ShouldSearch)
	assert.Equal(t, "help", got.AnnotatedMessage)
}

func TestConversationService_GetStateUnknownSession(t *testing.T) {
	svc := NewConversationService(WithStateStore(newMemoryStateStore()))

	got, err := svc.GetState(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, got.HasAny())
}

func TestConversationService_ResetState(t *testing.T) {
	store := newMemoryStateStore()
	svc := NewConversationService(WithStateStore(store))
	ctx := context.Background()

	svc.Process(ctx, ProcessMessageRequest{SessionID: "s1", Message: "I'm in Ohio"})
	require.NoError(t, svc.ResetState(ctx, "s1"))

	got, err := svc.GetState(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, got.HasAny())
}

func TestAnnotateMessage(t *testing.T) {
	assert.Equal(t, "hello", AnnotateMessage("hello", &models.ConversationState{}))
	assert.Equal(t, "hi [LOCATION: Clark County] [CASE_TYPE: unspecified]", AnnotateMessage("hi", &models.ConversationState{
		County: models.StringPtr("Clark County"),
	}))
	assert.Equal(t, "hi [LOCATION: unspecified] [CASE_TYPE: personal injury]", AnnotateMessage("hi", &models.ConversationState{
		CaseType: models.CaseTypePtr(models.CaseTypePersonalInjury),
	}))
}
