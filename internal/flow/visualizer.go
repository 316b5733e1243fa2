// Package flow provides the visualizer conversation engine.
package flow

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oakandbeam/renoflow/internal/models"
)

// NewVisualizerContext returns a fresh visualizer context in the
// photo_analysis state with empty accumulators.
func NewVisualizerContext(sessionID string) models.VisualizerContext {
	return models.VisualizerContext{
		SessionID: sessionID,
		State:     models.VisualizerStatePhotoAnalysis,
	}
}

// AddPhotoAnalysis merges a vision analysis into the context: preservation
// constraints union into the accumulator, the room type fills in if not
// already known, and the conversation advances to intent gathering.
// Calling it again with the same analysis just re-unions; it is never an
// error.
func AddPhotoAnalysis(vc models.VisualizerContext, analysis models.PhotoAnalysis) models.VisualizerContext {
	vc = cloneVisualizerContext(vc)

	a := analysis
	vc.PhotoAnalysis = &a
	vc.Extracted.ConstraintsToPreserve = unionStrings(vc.Extracted.ConstraintsToPreserve, analysis.PreservationConstraints)
	if vc.Extracted.RoomType == "" {
		vc.Extracted.RoomType = analysis.RoomType
	}
	vc.State = models.VisualizerStateIntentGathering

	slog.Debug("flow.AddPhotoAnalysis: photo analysis merged",
		"sessionID", vc.SessionID,
		"roomType", vc.Extracted.RoomType,
		"constraints", len(vc.Extracted.ConstraintsToPreserve))
	return vc
}

// AddMessage appends an immutable message to the history. User messages
// increment the turn count. When an extraction delta is supplied, its set
// fields union into the accumulators and the style preference overwrites
// only when the delta names one of the six canonical styles; anything else
// is discarded silently as "could not classify this turn".
func AddMessage(vc models.VisualizerContext, role, content string, delta *models.DesignIntentDelta) models.VisualizerContext {
	vc = cloneVisualizerContext(vc)

	msg := models.VisualizerMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	if delta != nil {
		snapshot := *delta
		msg.Extracted = &snapshot
	}
	vc.History = append(vc.History, msg)

	if role == "user" {
		vc.TurnCount++
	}

	if delta != nil {
		vc.Extracted.DesiredChanges = unionStrings(vc.Extracted.DesiredChanges, delta.DesiredChanges)
		vc.Extracted.ConstraintsToPreserve = unionStrings(vc.Extracted.ConstraintsToPreserve, delta.ConstraintsToPreserve)
		vc.Extracted.MaterialPreferences = unionStrings(vc.Extracted.MaterialPreferences, delta.MaterialPreferences)

		if style, ok := models.ParseDesignStyle(delta.StylePreference); ok {
			vc.Extracted.StylePreference = style
		}
		if vc.Extracted.RoomType == "" && delta.RoomType != "" {
			vc.Extracted.RoomType = delta.RoomType
		}
	}

	slog.Debug("flow.AddMessage: message appended",
		"sessionID", vc.SessionID,
		"role", role,
		"turnCount", vc.TurnCount,
		"hasDelta", delta != nil)
	return vc
}

// UpdateState overwrites the conversation state. Callers invoke it after
// ShouldTransitionState or CheckGenerationReadiness signals a move.
func UpdateState(vc models.VisualizerContext, state models.VisualizerState) models.VisualizerContext {
	vc = cloneVisualizerContext(vc)
	vc.State = state
	return vc
}

// unionStrings appends the elements of add that are not already present in
// set, preserving insertion order. Duplicate merges are idempotent.
func unionStrings(set, add []string) []string {
	if len(add) == 0 {
		return set
	}
	seen := make(map[string]struct{}, len(set))
	for _, s := range set {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		set = append(set, s)
	}
	return set
}

// cloneVisualizerContext copies the slices backing a context so that the
// returned value can be mutated without aliasing the caller's copy.
func cloneVisualizerContext(vc models.VisualizerContext) models.VisualizerContext {
	vc.History = append([]models.VisualizerMessage(nil), vc.History...)
	vc.Extracted.DesiredChanges = append([]string(nil), vc.Extracted.DesiredChanges...)
	vc.Extracted.ConstraintsToPreserve = append([]string(nil), vc.Extracted.ConstraintsToPreserve...)
	vc.Extracted.MaterialPreferences = append([]string(nil), vc.Extracted.MaterialPreferences...)
	return vc
}
