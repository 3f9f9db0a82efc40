// Package oracle turns natural-language machining requests into setups
// using langchaingo model backends.
package oracle

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/mbuchner/millwright/internal/config"
	"github.com/mbuchner/millwright/internal/metrics"
)

// Oracle wraps a langchaingo model for setup proposals.
type Oracle struct {
	llm       llms.Model
	modelName string
	collector *metrics.Collector
}

// New creates an oracle based on configuration.
func New(ctx context.Context, cfg config.Config) (*Oracle, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		var optFns []func(*awsconfig.LoadOptions) error
		if cfg.BedrockRegion != "" {
			optFns = append(optFns, awsconfig.WithRegion(cfg.BedrockRegion))
		}
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx, optFns...)
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		model, err = bedrock.New(
			bedrock.WithModel(cfg.LLMModel),
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Oracle{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

// NewWithModel wraps an existing model, mainly for tests.
func NewWithModel(model llms.Model, name string) *Oracle {
	return &Oracle{llm: model, modelName: name}
}

// WithCollector attaches a metrics collector that receives timing, token
// usage and failures for every oracle round trip.
func (o *Oracle) WithCollector(c *metrics.Collector) *Oracle {
	o.collector = c
	return o
}

// Model returns the model name.
func (o *Oracle) Model() string {
	return o.modelName
}

// GenerateWithSystem generates text with a system prompt.
func (o *Oracle) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	return o.generate(ctx, "generate with system", messages)
}

// generateWithImage sends a system prompt plus an image and a text part.
func (o *Oracle) generateWithImage(ctx context.Context, systemPrompt, userPrompt string, image []byte, mimeType string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, image),
				llms.TextPart(userPrompt),
			},
		},
	}

	return o.generate(ctx, "generate with image", messages)
}

// generate runs one model round trip and reports it to the collector.
func (o *Oracle) generate(ctx context.Context, label string, messages []llms.MessageContent) (string, error) {
	start := time.Now()

	response, err := o.llm.GenerateContent(ctx, messages)
	if err != nil {
		err = wrapFatalError(fmt.Errorf("%s: %w", label, err))
		o.recordError(err)
		return "", err
	}

	if len(response.Choices) == 0 {
		err = fmt.Errorf("no response choices")
		o.recordError(err)
		return "", err
	}

	o.recordUsage(time.Since(start), response.Choices[0])
	return response.Choices[0].Content, nil
}

func (o *Oracle) recordError(err error) {
	if o.collector != nil {
		o.collector.RecordError(metrics.OpPropose, err)
	}
}

// recordUsage reports one successful round trip. Token counts come out of
// the provider's generation info; key names and integer widths vary per
// backend.
func (o *Oracle) recordUsage(d time.Duration, choice *llms.ContentChoice) {
	if o.collector == nil {
		return
	}

	in := tokenCount(choice.GenerationInfo, "PromptTokens", "InputTokens")
	out := tokenCount(choice.GenerationInfo, "CompletionTokens", "OutputTokens")
	o.collector.RecordOracleUsage(metrics.OpPropose, d, in, out)
}

func tokenCount(info map[string]any, keys ...string) int64 {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}
