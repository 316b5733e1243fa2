// Package flow provides the visualizer readiness heuristics.
package flow

import (
	"fmt"
	"strings"

	"github.com/oakandbeam/renoflow/internal/models"
)

// Confidence increments for the readiness heuristic. These are tuned magic
// numbers, not calibrated probabilities: the score only gates UI messaging
// and the turn-count escape hatch.
const (
	confidenceBase      = 0.3
	confidenceRoomType  = 0.2
	confidenceStyle     = 0.2
	confidenceChanges   = 0.15
	confidencePhoto     = 0.10
	confidenceMaterials = 0.05
)

// minTurnsBeforeReady is the escape hatch threshold: after this many user
// turns a known style is enough to proceed, so the conversation never
// interrogates forever.
const minTurnsBeforeReady = 3

// GenerationReadiness reports whether enough design intent has been
// gathered to start image generation.
type GenerationReadiness struct {
	IsReady           bool               `json:"is_ready"`
	MissingInfo       []string           `json:"missing_info,omitempty"`
	QualityConfidence float64            `json:"quality_confidence"`
	SuggestedStyle    models.DesignStyle `json:"suggested_style,omitempty"`
	GenerationSummary string             `json:"generation_summary"`
}

// CheckGenerationReadiness evaluates the accumulated context. It is a pure
// function: the confidence is recomputed from scratch every call, so two
// calls on the same context always agree.
func CheckGenerationReadiness(vc models.VisualizerContext) GenerationReadiness {
	var missing []string
	if vc.Extracted.RoomType == "" {
		missing = append(missing, "what room we're visualizing")
	}
	if vc.Extracted.StylePreference == "" {
		missing = append(missing, "your preferred design style")
	}
	if len(vc.Extracted.DesiredChanges) == 0 && vc.TurnCount < 2 {
		missing = append(missing, "what you'd like to change")
	}

	confidence := confidenceBase
	if vc.Extracted.RoomType != "" {
		confidence += confidenceRoomType
	}
	if vc.Extracted.StylePreference != "" {
		confidence += confidenceStyle
	}
	if len(vc.Extracted.DesiredChanges) > 0 {
		confidence += confidenceChanges
	}
	if vc.PhotoAnalysis != nil {
		confidence += confidencePhoto
	}
	if len(vc.Extracted.MaterialPreferences) > 0 {
		confidence += confidenceMaterials
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	// Escape hatch: after enough turns, proceed with whatever style is
	// known rather than asking again.
	ready := len(missing) == 0 ||
		(vc.TurnCount >= minTurnsBeforeReady && vc.Extracted.StylePreference != "")

	result := GenerationReadiness{
		IsReady:           ready,
		MissingInfo:       missing,
		QualityConfidence: confidence,
	}
	if vc.Extracted.StylePreference == "" {
		result.SuggestedStyle = SuggestStyle(vc)
	}
	result.GenerationSummary = generationSummary(vc, result.SuggestedStyle)
	return result
}

// SuggestStyle proposes a style when the user has not named one. The
// heuristic reads the photo analysis first, then material preference text.
func SuggestStyle(vc models.VisualizerContext) models.DesignStyle {
	if vc.PhotoAnalysis != nil {
		current := strings.ToLower(vc.PhotoAnalysis.CurrentStyle)
		if strings.Contains(current, "dated") || strings.Contains(current, "traditional") {
			return models.StyleModern
		}
		if strings.Contains(current, "modern") || strings.Contains(current, "contemporary") {
			return models.StyleMinimalist
		}
	}

	materials := strings.ToLower(strings.Join(vc.Extracted.MaterialPreferences, " "))
	switch {
	case strings.Contains(materials, "wood") || strings.Contains(materials, "rustic") || strings.Contains(materials, "barn"):
		return models.StyleFarmhouse
	case strings.Contains(materials, "metal") || strings.Contains(materials, "brick") || strings.Contains(materials, "concrete"):
		return models.StyleIndustrial
	default:
		return models.StyleModern
	}
}

// generationSummary builds the one-line description of what will be
// generated, from whatever is known so far.
func generationSummary(vc models.VisualizerContext, suggested models.DesignStyle) string {
	style := vc.Extracted.StylePreference
	if style == "" {
		style = suggested
	}

	room := vc.Extracted.RoomType
	if room == "" && vc.PhotoAnalysis != nil {
		room = vc.PhotoAnalysis.RoomType
	}
	if room == "" {
		room = "room"
	}

	changes := "a fresh new look"
	if len(vc.Extracted.DesiredChanges) > 0 {
		picked := vc.Extracted.DesiredChanges
		if len(picked) > 3 {
			picked = picked[:3]
		}
		changes = strings.Join(picked, ", ")
	}

	return fmt.Sprintf("A %s %s featuring %s.", style, room, changes)
}

// ShouldTransitionState decides whether the conversation should advance,
// returning the next state and true, or false when it should stay put.
// Readiness always wins; otherwise each phase has its own forward rule.
func ShouldTransitionState(vc models.VisualizerContext) (models.VisualizerState, bool) {
	if CheckGenerationReadiness(vc).IsReady {
		return models.VisualizerStateGenerationReady, true
	}

	changesKnown := len(vc.Extracted.DesiredChanges) > 0
	styleKnown := vc.Extracted.StylePreference != ""

	switch vc.State {
	case models.VisualizerStatePhotoAnalysis:
		return models.VisualizerStateIntentGathering, true
	case models.VisualizerStateIntentGathering:
		if changesKnown && styleKnown {
			return models.VisualizerStateRefinement, true
		}
		if changesKnown {
			return models.VisualizerStateStyleSelection, true
		}
	case models.VisualizerStateStyleSelection:
		if styleKnown {
			return models.VisualizerStateRefinement, true
		}
	case models.VisualizerStateRefinement:
		if vc.TurnCount >= minTurnsBeforeReady {
			return models.VisualizerStateGenerationReady, true
		}
	}
	return "", false
}
