package service

import (
	"context"
	"errors"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danilovichz/lawpro-v2/models"
)

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(f.text)}}},
		},
	}, nil
}

type mockMessager struct {
	response *anthropic.Message
	err      error
}

func (m *mockMessager) New(_ context.Context, _ anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	return m.response, m.err
}

func newMockMessage(text string) *anthropic.Message {
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: text},
		},
	}
}

func TestDecodeParsedQuery(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		got, err := decodeParsedQuery("test", `{"county":"Monroe County","state":"ny","caseType":"criminal","confidence":{"county":0.9,"state":0.95,"caseType":0.9}}`)
		require.NoError(t, err)
		assert.Equal(t, "Monroe County", *got.County)
		assert.Equal(t, "New York", *got.State)
		assert.Equal(t, models.CaseTypeCriminal, *got.CaseType)
		assert.Equal(t, models.Confidence{County: 0.9, State: 0.95, CaseType: 0.9}, got.Confidence)
	})

	t.Run("code fences and prose", func(t *testing.T) {
		got, err := decodeParsedQuery("test", "```json\n{\"county\":null,\"state\":\"Ohio\",\"caseType\":null,\"confidence\":{\"state\":0.8}}\n```")
		require.NoError(t, err)
		assert.Nil(t, got.County)
		assert.Equal(t, "Ohio", *got.State)
		assert.Nil(t, got.CaseType)
		assert.Equal(t, 0.8, got.Confidence.State)
	})

	t.Run("missing confidence defaults to zero", func(t *testing.T) {
		got, err := decodeParsedQuery("test", `{"state":"Texas"}`)
		require.NoError(t, err)
		assert.Equal(t, models.Confidence{}, got.Confidence)
	})

	t.Run("confidence is clamped and dropped without a value", func(t *testing.T) {
		got, err := decodeParsedQuery("test", `{"state":"Texas","confidence":{"state":1.7,"county":0.9}}`)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got.Confidence.State)
		assert.Equal(t, 0.0, got.Confidence.County)
	})

	t.Run("unknown case type is rejected", func(t *testing.T) {
		_, err := decodeParsedQuery("test", `{"caseType":"divorce"}`)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrParse))

		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, ParseStageValidation, perr.Stage)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := decodeParsedQuery("test", `{"state": "Ohio",}`)
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, ParseStageJSON, perr.Stage)
	})

	t.Run("no object", func(t *testing.T) {
		_, err := decodeParsedQuery("test", "I cannot help with that")
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, ParseStageEmpty, perr.Stage)
	})
}

func TestGeminiQueryParser_Parse(t *testing.T) {
	gen := &fakeGenerator{text: `{"county":"Orange County","state":"California","caseType":"personal_injury","confidence":{"county":0.9,"state":0.9,"caseType":0.85}}`}
	parser := NewGeminiQueryParser(nil, "", GeminiWithGenerator(gen))

	got, err := parser.Parse(context.Background(), "I was rear-ended in Orange County, CA")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, ProviderGemini, parser.Name())
	assert.Equal(t, "Orange County", *got.County)
	assert.Equal(t, models.CaseTypePersonalInjury, *got.CaseType)
}

func TestGeminiQueryParser_TransportError(t *testing.T) {
	parser := NewGeminiQueryParser(nil, "", GeminiWithGenerator(&fakeGenerator{err: errors.New("connection reset")}))

	_, err := parser.Parse(context.Background(), "hello")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ParseStageTransport, perr.Stage)
	assert.Equal(t, ProviderGemini, perr.Provider)
}

func TestGeminiQueryParser_Timeout(t *testing.T) {
	parser := NewGeminiQueryParser(nil, "", GeminiWithGenerator(&fakeGenerator{err: context.DeadlineExceeded}))

	_, err := parser.Parse(context.Background(), "hello")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ParseStageTimeout, perr.Stage)
}

func TestGeminiQueryParser_NotConfigured(t *testing.T) {
	_, err := NewGeminiQueryParser(nil, "").Parse(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrParse)
}

func TestAnthropicQueryParser_Parse(t *testing.T) {
	parser := NewAnthropicQueryParser("", "", AnthropicWithMessager(&mockMessager{
		response: newMockMessage("Here you go:\n{\"county\":null,\"state\":\"Nevada\",\"caseType\":\"criminal\",\"confidence\":{\"state\":0.9,\"caseType\":0.9}}"),
	}))

	got, err := parser.Parse(context.Background(), "dui in vegas nevada")
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, parser.Name())
	assert.Nil(t, got.County)
	assert.Equal(t, "Nevada", *got.State)
	assert.Equal(t, models.CaseTypeCriminal, *got.CaseType)
}

func TestAnthropicQueryParser_EmptyResponse(t *testing.T) {
	parser := NewAnthropicQueryParser("", "", AnthropicWithMessager(&mockMessager{response: newMockMessage("  ")}))

	_, err := parser.Parse(context.Background(), "hello")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ParseStageEmpty, perr.Stage)
}

func TestAnthropicQueryParser_TransportError(t *testing.T) {
	parser := NewAnthropicQueryParser("", "", AnthropicWithMessager(&mockMessager{err: errors.New("dial tcp: no route to host")}))

	_, err := parser.Parse(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrParse)
}
