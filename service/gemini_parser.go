package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"

	"github.com/danilovichz/lawpro-v2/models"
)

const (
	ProviderGemini     = "gemini"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// GeminiGenerator is the subset of *genai.GenerativeModel used by the parser
type GeminiGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiQueryParser parses utterances with a Gemini model in JSON mode
type GeminiQueryParser struct {
	model  GeminiGenerator
	logger *zap.Logger
}

// GeminiParserOption is a functional option for GeminiQueryParser
type GeminiParserOption func(*GeminiQueryParser)

// GeminiWithGenerator overrides the model, mainly for tests
func GeminiWithGenerator(g GeminiGenerator) GeminiParserOption {
	return func(p *GeminiQueryParser) {
		p.model = g
	}
}

// GeminiWithLogger sets the logger
func GeminiWithLogger(logger *zap.Logger) GeminiParserOption {
	return func(p *GeminiQueryParser) {
		p.logger = logger
	}
}

// NewGeminiQueryParser configures modelName on client for deterministic JSON output
func NewGeminiQueryParser(client *genai.Client, modelName string, opts ...GeminiParserOption) *GeminiQueryParser {
	p := &GeminiQueryParser{logger: zap.NewNop()}
	if client != nil {
		if modelName == "" {
			modelName = DefaultGeminiModel
		}
		model := client.GenerativeModel(modelName)
		model.SystemInstruction = genai.NewUserContent(genai.Text(queryParserSystemPrompt))
		model.ResponseMIMEType = "application/json"
		model.SetTemperature(0)
		p.model = model
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *GeminiQueryParser) Name() string { return ProviderGemini }

// Parse sends the utterance to Gemini and validates the JSON reply
func (p *GeminiQueryParser) Parse(ctx context.Context, utterance string) (*models.ParsedQuery, error) {
	if p.model == nil {
		return nil, &ParseError{Provider: ProviderGemini, Stage: ParseStageTransport, Err: errors.New("gemini model not configured")}
	}

	resp, err := p.model.GenerateContent(ctx, genai.Text(utterance))
	if err != nil {
		return nil, classifyParseTransportError(ctx, ProviderGemini, err)
	}

	text := geminiResponseText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Provider: ProviderGemini, Stage: ParseStageEmpty, Err: errors.New("empty response")}
	}

	p.logger.Debug("gemini parse response", zap.String("content", text))
	return decodeParsedQuery(ProviderGemini, text)
}

func geminiResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		// first usable candidate wins
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}
