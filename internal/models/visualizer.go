// Package models defines the visualizer conversation context and its
// extraction schema.
package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// VisualizerState represents a phase of the visualizer conversation.
type VisualizerState string

const (
	VisualizerStatePhotoAnalysis   VisualizerState = "photo_analysis"
	VisualizerStateIntentGathering VisualizerState = "intent_gathering"
	VisualizerStateStyleSelection  VisualizerState = "style_selection"
	VisualizerStateRefinement      VisualizerState = "refinement"
	VisualizerStateGenerationReady VisualizerState = "generation_ready"
)

// DesignStyle is one of the six canonical styles the visualizer recognizes.
type DesignStyle string

const (
	StyleModern       DesignStyle = "modern"
	StyleTraditional  DesignStyle = "traditional"
	StyleFarmhouse    DesignStyle = "farmhouse"
	StyleIndustrial   DesignStyle = "industrial"
	StyleMinimalist   DesignStyle = "minimalist"
	StyleContemporary DesignStyle = "contemporary"
)

// DesignStyles lists the canonical styles in presentation order.
var DesignStyles = []DesignStyle{
	StyleModern, StyleTraditional, StyleFarmhouse,
	StyleIndustrial, StyleMinimalist, StyleContemporary,
}

// ParseDesignStyle matches free text against the closed style vocabulary,
// case-insensitively. Unrecognized text returns ok=false and must never
// overwrite an existing preference.
func ParseDesignStyle(s string) (DesignStyle, bool) {
	switch DesignStyle(strings.ToLower(strings.TrimSpace(s))) {
	case StyleModern:
		return StyleModern, true
	case StyleTraditional:
		return StyleTraditional, true
	case StyleFarmhouse:
		return StyleFarmhouse, true
	case StyleIndustrial:
		return StyleIndustrial, true
	case StyleMinimalist:
		return StyleMinimalist, true
	case StyleContemporary:
		return StyleContemporary, true
	default:
		return "", false
	}
}

// PhotoAnalysis holds the vision collaborator's read of an uploaded room
// photo. It is produced once per session and read-only thereafter.
type PhotoAnalysis struct {
	RoomType                string   `json:"room_type,omitempty"`
	Layout                  string   `json:"layout,omitempty"`
	Condition               string   `json:"condition,omitempty"`
	CurrentStyle            string   `json:"current_style,omitempty"`
	Fixtures                []string `json:"fixtures,omitempty"`
	PreservationConstraints []string `json:"preservation_constraints,omitempty"`
}

// DesignIntentDelta is the structured extraction from a single user message.
// A failed or malformed extraction is represented as the zero value.
type DesignIntentDelta struct {
	DesiredChanges        []string `json:"desired_changes,omitempty"`
	ConstraintsToPreserve []string `json:"constraints_to_preserve,omitempty"`
	MaterialPreferences   []string `json:"material_preferences,omitempty"`
	StylePreference       string   `json:"style_preference,omitempty"`
	RoomType              string   `json:"room_type,omitempty"`
}

// IsEmpty reports whether the delta carries no extracted data.
func (d DesignIntentDelta) IsEmpty() bool {
	return len(d.DesiredChanges) == 0 &&
		len(d.ConstraintsToPreserve) == 0 &&
		len(d.MaterialPreferences) == 0 &&
		d.StylePreference == "" &&
		d.RoomType == ""
}

// ExtractedDesignData accumulates structured design intent across turns.
// The three slice fields are sets in insertion order: merging an
// already-present element never grows them.
type ExtractedDesignData struct {
	DesiredChanges        []string    `json:"desired_changes,omitempty"`
	ConstraintsToPreserve []string    `json:"constraints_to_preserve,omitempty"`
	MaterialPreferences   []string    `json:"material_preferences,omitempty"`
	StylePreference       DesignStyle `json:"style_preference,omitempty"`
	RoomType              string      `json:"room_type,omitempty"`
	// ConfidenceScore is a snapshot of the readiness confidence taken when
	// the context is shipped to the client. It is recomputed from the
	// context on every turn, never carried forward as running state.
	ConfidenceScore float64 `json:"confidence_score"`
}

// VisualizerMessage is one immutable entry in the conversation history.
type VisualizerMessage struct {
	ID        string             `json:"id"`
	Role      string             `json:"role"`
	Content   string             `json:"content"`
	Timestamp time.Time          `json:"timestamp"`
	Extracted *DesignIntentDelta `json:"extracted,omitempty"`
}

// VisualizerContext is the complete visualizer conversation state. Like
// QuoteContext it is a plain serializable value; it crosses the transport
// boundary in a response header because the response body is a token stream.
type VisualizerContext struct {
	SessionID     string              `json:"session_id,omitempty"`
	State         VisualizerState     `json:"state"`
	PhotoAnalysis *PhotoAnalysis      `json:"photo_analysis,omitempty"`
	Extracted     ExtractedDesignData `json:"extracted_data"`
	History       []VisualizerMessage `json:"conversation_history,omitempty"`
	TurnCount     int                 `json:"turn_count"`
}

// Encode serializes the context for the X-Visualizer-Context response
// header. Headers cannot carry raw JSON safely, so the payload is base64.
func (c *VisualizerContext) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal visualizer context: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeVisualizerContext parses a context previously produced by Encode.
func DecodeVisualizerContext(encoded string) (*VisualizerContext, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode visualizer context: %w", err)
	}
	var ctx VisualizerContext
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal visualizer context: %w", err)
	}
	return &ctx, nil
}
