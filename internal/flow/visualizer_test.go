package flow

import (
	"context"
	"reflect"
	"testing"

	"github.com/oakandbeam/renoflow/internal/models"
)

func TestNewVisualizerContext(t *testing.T) {
	vc := NewVisualizerContext("session-1")

	if vc.State != models.VisualizerStatePhotoAnalysis {
		t.Errorf("expected initial state photo_analysis, got %q", vc.State)
	}
	if vc.TurnCount != 0 {
		t.Errorf("expected turnCount 0, got %d", vc.TurnCount)
	}
	if len(vc.History) != 0 || len(vc.Extracted.DesiredChanges) != 0 {
		t.Error("expected empty accumulators")
	}
}

func TestAddPhotoAnalysis(t *testing.T) {
	vc := NewVisualizerContext("session-2")
	analysis := models.PhotoAnalysis{
		RoomType:                "kitchen",
		CurrentStyle:            "dated traditional",
		PreservationConstraints: []string{"bay window", "exposed beams"},
	}

	vc = AddPhotoAnalysis(vc, analysis)

	if vc.State != models.VisualizerStateIntentGathering {
		t.Errorf("expected intent_gathering state, got %q", vc.State)
	}
	if vc.Extracted.RoomType != "kitchen" {
		t.Errorf("expected room type from analysis, got %q", vc.Extracted.RoomType)
	}
	if len(vc.Extracted.ConstraintsToPreserve) != 2 {
		t.Errorf("expected 2 constraints, got %d", len(vc.Extracted.ConstraintsToPreserve))
	}

	// Re-applying just re-unions, it never duplicates or errors.
	again := AddPhotoAnalysis(vc, analysis)
	if !reflect.DeepEqual(again.Extracted.ConstraintsToPreserve, vc.Extracted.ConstraintsToPreserve) {
		t.Error("expected idempotent re-union of preservation constraints")
	}
}

func TestAddPhotoAnalysisDoesNotOverwriteRoomType(t *testing.T) {
	vc := NewVisualizerContext("session-3")
	vc = AddMessage(vc, "user", "it's my basement", &models.DesignIntentDelta{RoomType: "basement"})

	vc = AddPhotoAnalysis(vc, models.PhotoAnalysis{RoomType: "kitchen"})
	if vc.Extracted.RoomType != "basement" {
		t.Errorf("expected room type to stay 'basement', got %q", vc.Extracted.RoomType)
	}
}

func TestAddMessageTurnCount(t *testing.T) {
	vc := NewVisualizerContext("session-4")

	vc = AddMessage(vc, "assistant", "Hi! What would you like to change?", nil)
	if vc.TurnCount != 0 {
		t.Errorf("assistant messages must not count as turns, got %d", vc.TurnCount)
	}

	vc = AddMessage(vc, "user", "new countertops please", nil)
	if vc.TurnCount != 1 {
		t.Errorf("expected turnCount 1 after one user message, got %d", vc.TurnCount)
	}
	if len(vc.History) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(vc.History))
	}
	if vc.History[0].ID == "" || vc.History[1].ID == "" {
		t.Error("expected history messages to carry ids")
	}
}

func TestAddMessageSetMergeIsIdempotent(t *testing.T) {
	vc := NewVisualizerContext("session-5")
	delta := &models.DesignIntentDelta{
		DesiredChanges:        []string{"new countertops", "open shelving"},
		ConstraintsToPreserve: []string{"window"},
		MaterialPreferences:   []string{"quartz"},
	}

	vc = AddMessage(vc, "user", "countertops and shelving, keep the window", delta)
	once := vc.Extracted
	vc = AddMessage(vc, "user", "like I said, countertops and shelving", delta)
	twice := vc.Extracted

	if !reflect.DeepEqual(once.DesiredChanges, twice.DesiredChanges) {
		t.Errorf("desiredChanges grew on duplicate merge: %v -> %v", once.DesiredChanges, twice.DesiredChanges)
	}
	if !reflect.DeepEqual(once.ConstraintsToPreserve, twice.ConstraintsToPreserve) {
		t.Errorf("constraintsToPreserve grew on duplicate merge: %v -> %v", once.ConstraintsToPreserve, twice.ConstraintsToPreserve)
	}
	if !reflect.DeepEqual(once.MaterialPreferences, twice.MaterialPreferences) {
		t.Errorf("materialPreferences grew on duplicate merge: %v -> %v", once.MaterialPreferences, twice.MaterialPreferences)
	}
}

func TestAddMessageStyleOverwriteGuard(t *testing.T) {
	vc := NewVisualizerContext("session-6")

	vc = AddMessage(vc, "user", "farmhouse all the way", &models.DesignIntentDelta{StylePreference: "farmhouse"})
	if vc.Extracted.StylePreference != models.StyleFarmhouse {
		t.Fatalf("expected farmhouse, got %q", vc.Extracted.StylePreference)
	}

	// Unrecognized style text never overwrites.
	vc = AddMessage(vc, "user", "something funky", &models.DesignIntentDelta{StylePreference: "not-a-real-style"})
	if vc.Extracted.StylePreference != models.StyleFarmhouse {
		t.Errorf("unrecognized style overwrote preference: got %q", vc.Extracted.StylePreference)
	}

	// A recognized style does overwrite, case-insensitively.
	vc = AddMessage(vc, "user", "actually let's go Modern", &models.DesignIntentDelta{StylePreference: "Modern"})
	if vc.Extracted.StylePreference != models.StyleModern {
		t.Errorf("expected recognized style to overwrite, got %q", vc.Extracted.StylePreference)
	}
}

func TestAddMessageDoesNotMutateInput(t *testing.T) {
	vc := NewVisualizerContext("session-7")
	vc = AddMessage(vc, "user", "first", &models.DesignIntentDelta{DesiredChanges: []string{"a"}})

	before := len(vc.Extracted.DesiredChanges)
	_ = AddMessage(vc, "user", "second", &models.DesignIntentDelta{DesiredChanges: []string{"b"}})

	if len(vc.Extracted.DesiredChanges) != before {
		t.Error("AddMessage mutated its input context")
	}
	if len(vc.History) != 1 {
		t.Errorf("AddMessage mutated input history, len=%d", len(vc.History))
	}
}

func TestUpdateState(t *testing.T) {
	vc := NewVisualizerContext("session-8")
	vc = UpdateState(vc, models.VisualizerStateRefinement)
	if vc.State != models.VisualizerStateRefinement {
		t.Errorf("expected refinement, got %q", vc.State)
	}
}

func TestContextHeaderRoundTrip(t *testing.T) {
	vc := NewVisualizerContext("session-9")
	vc = AddPhotoAnalysis(vc, models.PhotoAnalysis{RoomType: "bathroom", PreservationConstraints: []string{"skylight"}})
	vc = AddMessage(vc, "user", "walk-in shower", &models.DesignIntentDelta{
		DesiredChanges:  []string{"walk-in shower"},
		StylePreference: "minimalist",
	})

	encoded, err := vc.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := models.DecodeVisualizerContext(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.State != vc.State || decoded.TurnCount != vc.TurnCount {
		t.Errorf("round trip changed state/turnCount: %+v vs %+v", decoded, vc)
	}
	if !reflect.DeepEqual(decoded.Extracted, vc.Extracted) {
		t.Errorf("round trip changed extracted data: %+v vs %+v", decoded.Extracted, vc.Extracted)
	}
	if len(decoded.History) != len(vc.History) {
		t.Errorf("round trip changed history length: %d vs %d", len(decoded.History), len(vc.History))
	}
}

func TestDecodeVisualizerContextRejectsGarbage(t *testing.T) {
	if _, err := models.DecodeVisualizerContext("not base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := models.DecodeVisualizerContext("bm90IGpzb24="); err == nil {
		t.Error("expected error for non-JSON payload")
	}
}

func TestExtractorFailureYieldsEmptyDelta(t *testing.T) {
	client := &mockGenAIClient{designErr: errGenAIUnavailable, quoteErr: errGenAIUnavailable}
	extractor := NewExtractor(client)
	ctx := context.Background()

	if delta := extractor.DesignIntent(ctx, "s", "new floors"); delta != nil {
		t.Errorf("expected nil delta on extraction failure, got %+v", delta)
	}
	if delta := extractor.QuoteDetails(ctx, "s", "new floors"); !delta.IsEmpty() {
		t.Errorf("expected empty quote delta on extraction failure, got %+v", delta)
	}

	// The conversation itself still proceeds with the empty delta.
	vc := NewVisualizerContext("session-10")
	vc = AddMessage(vc, "user", "new floors", extractor.DesignIntent(ctx, "s", "new floors"))
	if vc.TurnCount != 1 || len(vc.History) != 1 {
		t.Error("expected turn to proceed despite failed extraction")
	}
}

func TestExtractorPassThrough(t *testing.T) {
	client := &mockGenAIClient{
		designDelta: models.DesignIntentDelta{DesiredChanges: []string{"paint walls"}},
		quoteDelta:  models.QuoteDataDelta{Timeline: "summer"},
	}
	extractor := NewExtractor(client)
	ctx := context.Background()

	delta := extractor.DesignIntent(ctx, "s", "paint the walls")
	if delta == nil || len(delta.DesiredChanges) != 1 {
		t.Errorf("expected extracted delta, got %+v", delta)
	}
	if q := extractor.QuoteDetails(ctx, "s", "sometime this summer"); q.Timeline != "summer" {
		t.Errorf("expected quote delta passthrough, got %+v", q)
	}
}
