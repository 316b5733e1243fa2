// Package genai provides GenAI-enhanced operations using the OpenAI API.
//
// It wraps chat completion, streaming, structured extraction, and vision
// analysis behind a small interface so flows and handlers can be tested
// with mocks.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/oakandbeam/renoflow/internal/models"
)

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey string
	Model  openai.ChatModel
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key, overriding $OPENAI_API_KEY.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model used for all operations.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = openai.ChatModel(model) }
}

// ClientInterface defines the GenAI operations consumed by the flows and
// the API layer.
type ClientInterface interface {
	// GenerateWithMessages produces a whole completion for the given messages.
	GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)

	// GenerateStream produces a completion, invoking onDelta for each token
	// chunk as it arrives, and returns the full accumulated text.
	GenerateStream(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, onDelta func(string)) (string, error)

	// ExtractDesignIntent turns one free-text visualizer message into a
	// structured delta matching the extraction schema.
	ExtractDesignIntent(ctx context.Context, message string) (models.DesignIntentDelta, error)

	// ExtractQuoteDetails turns one free-text quote message into a
	// structured delta of quote-intake fields.
	ExtractQuoteDetails(ctx context.Context, message string) (models.QuoteDataDelta, error)

	// AnalyzeRoomPhoto runs vision analysis on a room photo, given as an
	// http(s) or data URL.
	AnalyzeRoomPhoto(ctx context.Context, imageURL string) (models.PhotoAnalysis, error)
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	client openai.Client
	model  openai.ChatModel
}

// NewClient initializes a new GenAI client. The API key falls back to the
// OPENAI_API_KEY environment variable when not provided via options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4o
	}
	slog.Debug("genai.NewClient: client configured", "model", cfg.Model)

	return &Client{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
	}, nil
}

// GenerateWithMessages produces a whole completion for the given messages.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		slog.Error("genai.GenerateWithMessages: completion failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	slog.Debug("genai.GenerateWithMessages: completion succeeded", "responseLength", len(resp.Choices[0].Message.Content))
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream streams a completion token-by-token through onDelta and
// returns the accumulated text.
func (c *Client) GenerateStream(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, onDelta func(string)) (string, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	defer stream.Close()

	var full strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	if err := stream.Err(); err != nil {
		slog.Error("genai.GenerateStream: stream failed", "error", err)
		return "", fmt.Errorf("chat completion stream failed: %w", err)
	}
	slog.Debug("genai.GenerateStream: stream completed", "responseLength", full.Len())
	return full.String(), nil
}

const designIntentExtractionPrompt = `You extract renovation design intent from a single homeowner message.
Return only what the message actually says. Desired changes are concrete alterations they want.
Constraints to preserve are things they explicitly want kept. Material preferences are named
materials or finishes. Style preference is a short style word if they express one, otherwise empty.
Room type is the room they mention, otherwise empty. Do not invent values.`

// ExtractDesignIntent turns one free-text visualizer message into a
// structured delta using JSON-schema constrained output.
func (c *Client) ExtractDesignIntent(ctx context.Context, message string) (models.DesignIntentDelta, error) {
	var delta models.DesignIntentDelta

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"desired_changes":         stringArraySchema,
			"constraints_to_preserve": stringArraySchema,
			"material_preferences":    stringArraySchema,
			"style_preference":        map[string]any{"type": "string"},
			"room_type":               map[string]any{"type": "string"},
		},
		"required":             []string{"desired_changes", "constraints_to_preserve", "material_preferences", "style_preference", "room_type"},
		"additionalProperties": false,
	}

	raw, err := c.extractJSON(ctx, "design_intent", designIntentExtractionPrompt, message, schema)
	if err != nil {
		return delta, err
	}
	if err := json.Unmarshal([]byte(raw), &delta); err != nil {
		slog.Error("genai.ExtractDesignIntent: malformed extraction payload", "error", err)
		return models.DesignIntentDelta{}, fmt.Errorf("failed to parse design intent extraction: %w", err)
	}
	slog.Debug("genai.ExtractDesignIntent: extraction succeeded",
		"changes", len(delta.DesiredChanges),
		"constraints", len(delta.ConstraintsToPreserve),
		"materials", len(delta.MaterialPreferences),
		"style", delta.StylePreference)
	return delta, nil
}

const quoteExtractionPrompt = `You extract renovation quote details from a single homeowner message.
Fill only the fields the message actually answers and leave the rest empty.
Budget band is a rough range in their words. Special requirements are accessibility,
structural, or scheduling constraints. Do not invent values.`

// ExtractQuoteDetails turns one free-text quote message into a structured
// delta of quote-intake fields.
func (c *Client) ExtractQuoteDetails(ctx context.Context, message string) (models.QuoteDataDelta, error) {
	var delta models.QuoteDataDelta

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"room_type":            map[string]any{"type": "string"},
			"area_sq_ft":           map[string]any{"type": "string"},
			"finish_level":         map[string]any{"type": "string"},
			"layout_changes":       map[string]any{"type": "string"},
			"timeline":             map[string]any{"type": "string"},
			"budget_band":          map[string]any{"type": "string"},
			"special_requirements": stringArraySchema,
			"contact_name":         map[string]any{"type": "string"},
			"contact_phone":        map[string]any{"type": "string"},
			"contact_email":        map[string]any{"type": "string"},
		},
		"required": []string{
			"room_type", "area_sq_ft", "finish_level", "layout_changes", "timeline",
			"budget_band", "special_requirements", "contact_name", "contact_phone", "contact_email",
		},
		"additionalProperties": false,
	}

	raw, err := c.extractJSON(ctx, "quote_details", quoteExtractionPrompt, message, schema)
	if err != nil {
		return delta, err
	}
	if err := json.Unmarshal([]byte(raw), &delta); err != nil {
		slog.Error("genai.ExtractQuoteDetails: malformed extraction payload", "error", err)
		return models.QuoteDataDelta{}, fmt.Errorf("failed to parse quote extraction: %w", err)
	}
	slog.Debug("genai.ExtractQuoteDetails: extraction succeeded", "specialRequirements", len(delta.SpecialRequirements))
	return delta, nil
}

const roomAnalysisPrompt = `You analyze a photo of a room in a home being considered for renovation.
Describe the room type, layout, overall condition, and current style in a few words each.
List visible fixtures, and list elements that should be preserved in a redesign
(windows, load-bearing features, plumbing locations, architectural details worth keeping).`

// AnalyzeRoomPhoto runs vision analysis on a room photo.
func (c *Client) AnalyzeRoomPhoto(ctx context.Context, imageURL string) (models.PhotoAnalysis, error) {
	var analysis models.PhotoAnalysis

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"room_type":                map[string]any{"type": "string"},
			"layout":                   map[string]any{"type": "string"},
			"condition":                map[string]any{"type": "string"},
			"current_style":            map[string]any{"type": "string"},
			"fixtures":                 stringArraySchema,
			"preservation_constraints": stringArraySchema,
		},
		"required":             []string{"room_type", "layout", "condition", "current_style", "fixtures", "preservation_constraints"},
		"additionalProperties": false,
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart("Analyze this room photo."),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: imageURL}),
	}
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(roomAnalysisPrompt),
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: parts,
				},
			},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:          c.model,
		Messages:       messages,
		ResponseFormat: jsonSchemaFormat("room_analysis", schema),
	})
	if err != nil {
		slog.Error("genai.AnalyzeRoomPhoto: vision analysis failed", "error", err)
		return analysis, fmt.Errorf("vision analysis failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return analysis, fmt.Errorf("no choices returned")
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &analysis); err != nil {
		slog.Error("genai.AnalyzeRoomPhoto: malformed analysis payload", "error", err)
		return models.PhotoAnalysis{}, fmt.Errorf("failed to parse room analysis: %w", err)
	}
	slog.Debug("genai.AnalyzeRoomPhoto: analysis succeeded",
		"roomType", analysis.RoomType,
		"fixtures", len(analysis.Fixtures),
		"constraints", len(analysis.PreservationConstraints))
	return analysis, nil
}

// extractJSON runs a schema-constrained completion over one user message
// and returns the raw JSON payload.
func (c *Client) extractJSON(ctx context.Context, name, systemPrompt, message string, schema map[string]any) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(message),
		},
		ResponseFormat: jsonSchemaFormat(name, schema),
	})
	if err != nil {
		return "", fmt.Errorf("extraction completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

var stringArraySchema = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}

// jsonSchemaFormat builds the strict JSON-schema response format parameter.
func jsonSchemaFormat(name string, schema map[string]any) openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   name,
				Schema: schema,
				Strict: openai.Bool(true),
			},
		},
	}
}
