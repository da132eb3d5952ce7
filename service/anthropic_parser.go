package service

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/danilovichz/lawpro-v2/models"
)

const (
	ProviderAnthropic     = "anthropic"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"

	anthropicParseMaxTokens = 256
)

// AnthropicMessager is satisfied by the SDK's Messages service
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicQueryParser parses utterances with a Claude model
type AnthropicQueryParser struct {
	messages AnthropicMessager
	model    string
	logger   *zap.Logger
}

// AnthropicParserOption is a functional option for AnthropicQueryParser
type AnthropicParserOption func(*AnthropicQueryParser)

// AnthropicWithMessager overrides the messages client, mainly for tests
func AnthropicWithMessager(m AnthropicMessager) AnthropicParserOption {
	return func(p *AnthropicQueryParser) {
		p.messages = m
	}
}

// AnthropicWithLogger sets the logger
func AnthropicWithLogger(logger *zap.Logger) AnthropicParserOption {
	return func(p *AnthropicQueryParser) {
		p.logger = logger
	}
}

// NewAnthropicQueryParser creates a parser; an empty apiKey leaves the client
// unset so it must be supplied with AnthropicWithMessager
func NewAnthropicQueryParser(apiKey, model string, opts ...AnthropicParserOption) *AnthropicQueryParser {
	if model == "" {
		model = DefaultAnthropicModel
	}
	p := &AnthropicQueryParser{model: model, logger: zap.NewNop()}
	if apiKey != "" {
		c := anthropic.NewClient(option.WithAPIKey(apiKey))
		p.messages = &c.Messages
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *AnthropicQueryParser) Name() string { return ProviderAnthropic }

// Parse sends the utterance to Claude and validates the JSON reply
func (p *AnthropicQueryParser) Parse(ctx context.Context, utterance string) (*models.ParsedQuery, error) {
	if p.messages == nil {
		return nil, &ParseError{Provider: ProviderAnthropic, Stage: ParseStageTransport, Err: errors.New("anthropic client not configured")}
	}

	resp, err := p.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   anthropicParseMaxTokens,
		System:      []anthropic.TextBlockParam{{Text: queryParserSystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(utterance))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &ParseError{Provider: ProviderAnthropic, Stage: ParseStageStatus, Err: err}
		}
		return nil, classifyParseTransportError(ctx, ProviderAnthropic, err)
	}

	var sb strings.Builder
	if resp != nil {
		for _, b := range resp.Content {
			if b.Type == "text" {
				sb.WriteString(b.Text)
			}
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Provider: ProviderAnthropic, Stage: ParseStageEmpty, Err: errors.New("empty response")}
	}

	p.logger.Debug("anthropic parse response", zap.String("content", text))
	return decodeParsedQuery(ProviderAnthropic, text)
}
