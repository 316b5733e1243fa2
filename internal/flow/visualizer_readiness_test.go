package flow

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/oakandbeam/renoflow/internal/models"
)

func TestCheckGenerationReadinessConfidence(t *testing.T) {
	// Known room, known style, one desired change, no photo, no materials:
	// 0.3 + 0.2 + 0.2 + 0.15 = 0.85.
	vc := NewVisualizerContext("session-r1")
	vc = AddMessage(vc, "user", "modern kitchen, new countertops", &models.DesignIntentDelta{
		RoomType:        "kitchen",
		StylePreference: "modern",
		DesiredChanges:  []string{"new countertops"},
	})

	r := CheckGenerationReadiness(vc)
	if math.Abs(r.QualityConfidence-0.85) > 1e-9 {
		t.Errorf("expected confidence 0.85, got %v", r.QualityConfidence)
	}
	if !r.IsReady {
		t.Error("expected ready when nothing is missing")
	}
	if len(r.MissingInfo) != 0 {
		t.Errorf("expected no missing info, got %v", r.MissingInfo)
	}
}

func TestCheckGenerationReadinessConfidenceCapped(t *testing.T) {
	vc := NewVisualizerContext("session-r2")
	vc = AddPhotoAnalysis(vc, models.PhotoAnalysis{RoomType: "kitchen"})
	vc = AddMessage(vc, "user", "everything", &models.DesignIntentDelta{
		StylePreference:     "modern",
		DesiredChanges:      []string{"cabinets", "floors"},
		MaterialPreferences: []string{"quartz"},
	})

	// 0.3 + 0.2 + 0.2 + 0.15 + 0.10 + 0.05 = 1.0; must never exceed it.
	if r := CheckGenerationReadiness(vc); math.Abs(r.QualityConfidence-1.0) > 1e-9 {
		t.Errorf("expected confidence capped at 1.0, got %v", r.QualityConfidence)
	}
}

func TestCheckGenerationReadinessMissingInfo(t *testing.T) {
	vc := NewVisualizerContext("session-r3")

	r := CheckGenerationReadiness(vc)
	if r.IsReady {
		t.Error("fresh context must not be ready")
	}
	if len(r.MissingInfo) != 3 {
		t.Errorf("expected 3 missing items on a fresh context, got %v", r.MissingInfo)
	}

	// After two user turns, absent desired changes drops off the missing
	// list so the conversation stops nagging about it.
	vc = AddMessage(vc, "user", "hi", nil)
	vc = AddMessage(vc, "user", "just browsing", nil)
	r = CheckGenerationReadiness(vc)
	for _, m := range r.MissingInfo {
		if strings.Contains(m, "change") {
			t.Errorf("desired changes should not be reported missing at turn 2, got %v", r.MissingInfo)
		}
	}
}

func TestCheckGenerationReadinessEscapeHatch(t *testing.T) {
	vc := NewVisualizerContext("session-r4")
	vc = AddMessage(vc, "user", "one", &models.DesignIntentDelta{StylePreference: "industrial"})
	vc = AddMessage(vc, "user", "two", nil)

	if r := CheckGenerationReadiness(vc); r.IsReady {
		t.Error("missing room type at turn 2 must not be ready")
	}

	vc = AddMessage(vc, "user", "three", nil)
	r := CheckGenerationReadiness(vc)
	if !r.IsReady {
		t.Error("expected ready at turn 3 with a known style despite missing info")
	}
	if len(r.MissingInfo) == 0 {
		t.Error("escape-hatch readiness should still report what is missing")
	}
}

func TestCheckGenerationReadinessIsDeterministic(t *testing.T) {
	vc := NewVisualizerContext("session-r5")
	vc = AddPhotoAnalysis(vc, models.PhotoAnalysis{RoomType: "bathroom", CurrentStyle: "dated"})
	vc = AddMessage(vc, "user", "walk-in shower", &models.DesignIntentDelta{DesiredChanges: []string{"walk-in shower"}})

	first := CheckGenerationReadiness(vc)
	second := CheckGenerationReadiness(vc)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("readiness diverged on identical context:\n%+v\n%+v", first, second)
	}
}

func TestSuggestStyle(t *testing.T) {
	tests := []struct {
		name      string
		photo     *models.PhotoAnalysis
		materials []string
		want      models.DesignStyle
	}{
		{"dated photo", &models.PhotoAnalysis{CurrentStyle: "dated traditional kitchen"}, nil, models.StyleModern},
		{"traditional photo", &models.PhotoAnalysis{CurrentStyle: "Traditional"}, nil, models.StyleModern},
		{"modern photo", &models.PhotoAnalysis{CurrentStyle: "modern"}, nil, models.StyleMinimalist},
		{"contemporary photo", &models.PhotoAnalysis{CurrentStyle: "contemporary open plan"}, nil, models.StyleMinimalist},
		{"wood materials", nil, []string{"reclaimed wood"}, models.StyleFarmhouse},
		{"barn materials", nil, []string{"barn doors"}, models.StyleFarmhouse},
		{"metal materials", nil, []string{"blackened metal"}, models.StyleIndustrial},
		{"concrete materials", nil, []string{"polished concrete"}, models.StyleIndustrial},
		{"no signal", nil, nil, models.StyleModern},
		{"photo wins over materials", &models.PhotoAnalysis{CurrentStyle: "dated"}, []string{"wood"}, models.StyleModern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vc := NewVisualizerContext("session-r6")
			vc.PhotoAnalysis = tt.photo
			vc.Extracted.MaterialPreferences = tt.materials
			if got := SuggestStyle(vc); got != tt.want {
				t.Errorf("SuggestStyle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerationSummary(t *testing.T) {
	vc := NewVisualizerContext("session-r7")
	vc = AddMessage(vc, "user", "farm kitchen", &models.DesignIntentDelta{
		RoomType:        "kitchen",
		StylePreference: "farmhouse",
		DesiredChanges:  []string{"apron sink", "open shelving", "butcher block", "new lighting"},
	})

	r := CheckGenerationReadiness(vc)
	want := "A farmhouse kitchen featuring apron sink, open shelving, butcher block."
	if r.GenerationSummary != want {
		t.Errorf("summary = %q, want %q", r.GenerationSummary, want)
	}
}

func TestGenerationSummaryFallbacks(t *testing.T) {
	// Nothing known: suggested style, generic room, generic changes.
	vc := NewVisualizerContext("session-r8")
	r := CheckGenerationReadiness(vc)
	if want := "A modern room featuring a fresh new look."; r.GenerationSummary != want {
		t.Errorf("summary = %q, want %q", r.GenerationSummary, want)
	}

	// Room falls back to the photo analysis when not extracted.
	vc = NewVisualizerContext("session-r9")
	pa := models.PhotoAnalysis{RoomType: "basement", CurrentStyle: "modern"}
	vc.PhotoAnalysis = &pa
	r = CheckGenerationReadiness(vc)
	if want := "A minimalist basement featuring a fresh new look."; r.GenerationSummary != want {
		t.Errorf("summary = %q, want %q", r.GenerationSummary, want)
	}
}

func TestShouldTransitionState(t *testing.T) {
	changes := []string{"new floors"}

	tests := []struct {
		name      string
		state     models.VisualizerState
		changes   []string
		style     models.DesignStyle
		roomType  string
		turnCount int
		wantState models.VisualizerState
		wantMove  bool
	}{
		{"photo analysis always advances", models.VisualizerStatePhotoAnalysis, nil, "", "", 0, models.VisualizerStateIntentGathering, true},
		{"intent gathering holds with nothing", models.VisualizerStateIntentGathering, nil, "", "", 1, "", false},
		{"intent gathering to style selection", models.VisualizerStateIntentGathering, changes, "", "", 1, models.VisualizerStateStyleSelection, true},
		{"intent gathering skips to refinement", models.VisualizerStateIntentGathering, changes, models.StyleModern, "", 1, models.VisualizerStateRefinement, true},
		{"style selection holds without style", models.VisualizerStateStyleSelection, changes, "", "", 1, "", false},
		{"style selection to refinement", models.VisualizerStateStyleSelection, changes, models.StyleModern, "", 1, models.VisualizerStateRefinement, true},
		{"refinement holds below threshold", models.VisualizerStateRefinement, changes, "", "", 2, "", false},
		{"refinement advances at turn three", models.VisualizerStateRefinement, changes, "", "", 3, models.VisualizerStateGenerationReady, true},
		{"readiness short-circuits everything", models.VisualizerStateIntentGathering, changes, models.StyleModern, "kitchen", 1, models.VisualizerStateGenerationReady, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vc := NewVisualizerContext("session-r10")
			vc.State = tt.state
			vc.Extracted.DesiredChanges = tt.changes
			vc.Extracted.StylePreference = tt.style
			vc.Extracted.RoomType = tt.roomType
			vc.TurnCount = tt.turnCount

			got, move := ShouldTransitionState(vc)
			if move != tt.wantMove || got != tt.wantState {
				t.Errorf("ShouldTransitionState() = (%q, %v), want (%q, %v)", got, move, tt.wantState, tt.wantMove)
			}
		})
	}
}
