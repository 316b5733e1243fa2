package genai

import (
	"testing"

	"github.com/openai/openai-go"
)

func TestNewClient_NoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	if err == nil {
		t.Error("expected error when API key not provided, got nil")
	}
}

func TestNewClient_WithKey(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("expected no error with API key, got %v", err)
	}
	if cli == nil {
		t.Fatal("expected client instance, got nil")
	}
	if cli.model != openai.ChatModelGPT4o {
		t.Errorf("expected default model %q, got %q", openai.ChatModelGPT4o, cli.model)
	}
}

func TestNewClient_EnvKeyFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	cli, err := NewClient()
	if err != nil {
		t.Fatalf("expected no error with env API key, got %v", err)
	}
	if cli == nil {
		t.Error("expected client instance, got nil")
	}
}

func TestNewClient_WithModel(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"), WithModel("gpt-4o-mini"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cli.model != openai.ChatModel("gpt-4o-mini") {
		t.Errorf("expected model override, got %q", cli.model)
	}
}

func TestJSONSchemaFormat(t *testing.T) {
	schema := map[string]any{"type": "object"}
	format := jsonSchemaFormat("test_schema", schema)

	if format.OfJSONSchema == nil {
		t.Fatal("expected JSON schema response format, got nil")
	}
	if format.OfJSONSchema.JSONSchema.Name != "test_schema" {
		t.Errorf("expected schema name 'test_schema', got %q", format.OfJSONSchema.JSONSchema.Name)
	}
	if !format.OfJSONSchema.JSONSchema.Strict.Value {
		t.Error("expected strict schema enforcement")
	}
}
