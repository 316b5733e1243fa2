package flow

import (
	"context"
	"errors"

	"github.com/openai/openai-go"

	"github.com/oakandbeam/renoflow/internal/models"
)

// mockGenAIClient is a configurable ClientInterface for flow tests.
type mockGenAIClient struct {
	generateResponse string
	generateErr      error
	designDelta      models.DesignIntentDelta
	designErr        error
	quoteDelta       models.QuoteDataDelta
	quoteErr         error
	analysis         models.PhotoAnalysis
	analysisErr      error

	extractCalls int
}

func (m *mockGenAIClient) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	return m.generateResponse, m.generateErr
}

func (m *mockGenAIClient) GenerateStream(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, onDelta func(string)) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	if onDelta != nil {
		onDelta(m.generateResponse)
	}
	return m.generateResponse, nil
}

func (m *mockGenAIClient) ExtractDesignIntent(ctx context.Context, message string) (models.DesignIntentDelta, error) {
	m.extractCalls++
	return m.designDelta, m.designErr
}

func (m *mockGenAIClient) ExtractQuoteDetails(ctx context.Context, message string) (models.QuoteDataDelta, error) {
	m.extractCalls++
	return m.quoteDelta, m.quoteErr
}

func (m *mockGenAIClient) AnalyzeRoomPhoto(ctx context.Context, imageURL string) (models.PhotoAnalysis, error) {
	return m.analysis, m.analysisErr
}

var errGenAIUnavailable = errors.New("genai unavailable")
