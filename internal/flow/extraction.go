// Package flow provides the extraction step shared by both engines.
package flow

import (
	"context"
	"log/slog"

	"github.com/oakandbeam/renoflow/internal/genai"
	"github.com/oakandbeam/renoflow/internal/models"
)

// Extractor turns free-text user messages into structured deltas via the
// GenAI client. Extraction failures never surface to the conversation: a
// failed or malformed extraction is treated as an empty delta so the turn
// proceeds, and the missed detail gets re-asked on a later turn.
type Extractor struct {
	client genai.ClientInterface
}

// NewExtractor creates an extractor over a GenAI client.
func NewExtractor(client genai.ClientInterface) *Extractor {
	return &Extractor{client: client}
}

// DesignIntent extracts a visualizer delta from one user message. It
// returns nil (meaning "nothing extracted this turn") on any failure.
func (e *Extractor) DesignIntent(ctx context.Context, sessionID, message string) *models.DesignIntentDelta {
	if e.client == nil {
		return nil
	}
	delta, err := e.client.ExtractDesignIntent(ctx, message)
	if err != nil {
		slog.Warn("flow.Extractor.DesignIntent: extraction failed, proceeding with empty delta",
			"sessionID", sessionID, "error", err)
		return nil
	}
	if delta.IsEmpty() {
		return nil
	}
	return &delta
}

// QuoteDetails extracts a quote-intake delta from one user message. It
// returns the zero delta on any failure.
func (e *Extractor) QuoteDetails(ctx context.Context, sessionID, message string) models.QuoteDataDelta {
	if e.client == nil {
		return models.QuoteDataDelta{}
	}
	delta, err := e.client.ExtractQuoteDetails(ctx, message)
	if err != nil {
		slog.Warn("flow.Extractor.QuoteDetails: extraction failed, proceeding with empty delta",
			"sessionID", sessionID, "error", err)
		return models.QuoteDataDelta{}
	}
	return delta
}
