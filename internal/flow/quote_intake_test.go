package flow

import (
	"reflect"
	"testing"

	"github.com/oakandbeam/renoflow/internal/models"
)

func TestParseQuoteAction(t *testing.T) {
	tests := []struct {
		token   string
		want    models.QuoteAction
		wantOK  bool
	}{
		{"photo_uploaded", models.QuoteAction{Kind: models.ActionPhotoUploaded}, true},
		{"skip_photo", models.QuoteAction{Kind: models.ActionSkipPhoto}, true},
		{"analysis_complete", models.QuoteAction{Kind: models.ActionAnalysisComplete}, true},
		{"select_kitchen", models.SelectProject(models.ProjectTypeKitchen), true},
		{"select_bathroom", models.SelectProject(models.ProjectTypeBathroom), true},
		{"select_deck", models.SelectProject(models.ProjectType("deck")), true},
		{"scope_confirmed", models.QuoteAction{Kind: models.ActionScopeConfirmed}, true},
		{"show_estimate", models.QuoteAction{Kind: models.ActionShowEstimate}, true},
		{"estimate_shown", models.QuoteAction{Kind: models.ActionEstimateShown}, true},
		{"contact_provided", models.QuoteAction{Kind: models.ActionContactProvided}, true},
		{"select_", models.QuoteAction{}, false},
		{"reboot", models.QuoteAction{}, false},
		{"", models.QuoteAction{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseQuoteAction(tt.token)
		if ok != tt.wantOK {
			t.Errorf("ParseQuoteAction(%q) ok = %v, want %v", tt.token, ok, tt.wantOK)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseQuoteAction(%q) = %+v, want %+v", tt.token, got, tt.want)
		}
	}
}

func TestTransitionHappyPath(t *testing.T) {
	qc := NewQuoteContext("session-1")

	steps := []string{
		"skip_photo", "select_kitchen", "scope_confirmed",
		"show_estimate", "estimate_shown", "contact_provided",
	}
	for _, token := range steps {
		action, ok := ParseQuoteAction(token)
		if !ok {
			t.Fatalf("failed to parse action %q", token)
		}
		qc = Transition(qc, action)
	}

	if qc.State != models.QuoteStateCompletion {
		t.Errorf("expected final state %q, got %q", models.QuoteStateCompletion, qc.State)
	}
	if qc.ProjectType != models.ProjectTypeKitchen {
		t.Errorf("expected project type kitchen, got %q", qc.ProjectType)
	}
	if qc.HasPhoto {
		t.Error("expected hasPhoto=false on the skip-photo path")
	}
	if qc.PhotoAnalyzed {
		t.Error("expected photoAnalyzed=false on the skip-photo path")
	}
	if !qc.ScopeConfirmed || !qc.EstimateProvided || !qc.ContactCollected {
		t.Errorf("expected scopeConfirmed/estimateProvided/contactCollected all true, got %v/%v/%v",
			qc.ScopeConfirmed, qc.EstimateProvided, qc.ContactCollected)
	}
}

func TestTransitionPhotoPath(t *testing.T) {
	qc := NewQuoteContext("session-2")

	qc = Transition(qc, models.QuoteAction{Kind: models.ActionPhotoUploaded})
	if qc.State != models.QuoteStatePhotoAnalysis {
		t.Fatalf("expected photo_analysis state, got %q", qc.State)
	}
	if !qc.HasPhoto {
		t.Error("expected hasPhoto=true after photo upload")
	}

	qc = Transition(qc, models.QuoteAction{Kind: models.ActionAnalysisComplete})
	if qc.State != models.QuoteStateProjectType {
		t.Errorf("expected project_type state, got %q", qc.State)
	}
	if !qc.PhotoAnalyzed {
		t.Error("expected photoAnalyzed=true after analysis completes")
	}
}

func TestTransitionUnknownProjectRoutesToOther(t *testing.T) {
	qc := NewQuoteContext("")
	qc = Transition(qc, models.QuoteAction{Kind: models.ActionSkipPhoto})
	qc = Transition(qc, models.SelectProject(models.ProjectType("sunroom")))

	if qc.State != models.QuoteStateOtherQuestions {
		t.Errorf("expected other_questions state, got %q", qc.State)
	}
	if qc.ProjectType != models.ProjectType("sunroom") {
		t.Errorf("expected project type preserved as 'sunroom', got %q", qc.ProjectType)
	}
}

func TestTransitionIgnoresOutOfOrderActions(t *testing.T) {
	qc := NewQuoteContext("session-3")

	// Every action that is meaningless in the welcome state is a no-op.
	for _, kind := range []models.QuoteActionKind{
		models.ActionAnalysisComplete, models.ActionScopeConfirmed,
		models.ActionShowEstimate, models.ActionEstimateShown, models.ActionContactProvided,
	} {
		got := Transition(qc, models.QuoteAction{Kind: kind})
		if !reflect.DeepEqual(got, qc) {
			t.Errorf("expected no-op for %q in welcome state, context changed: %+v", kind, got)
		}
	}

	// select in welcome is also ignored.
	got := Transition(qc, models.SelectProject(models.ProjectTypeKitchen))
	if !reflect.DeepEqual(got, qc) {
		t.Errorf("expected no-op for project selection in welcome state, context changed: %+v", got)
	}
}

func TestTransitionCompletionIsTerminal(t *testing.T) {
	qc := NewQuoteContext("session-4")
	for _, token := range []string{"skip_photo", "select_bathroom", "scope_confirmed", "show_estimate", "estimate_shown", "contact_provided"} {
		action, _ := ParseQuoteAction(token)
		qc = Transition(qc, action)
	}
	if qc.State != models.QuoteStateCompletion {
		t.Fatalf("expected completion state, got %q", qc.State)
	}

	for _, token := range []string{"photo_uploaded", "skip_photo", "select_kitchen", "scope_confirmed", "contact_provided"} {
		action, _ := ParseQuoteAction(token)
		got := Transition(qc, action)
		if !reflect.DeepEqual(got, qc) {
			t.Errorf("expected completion to be terminal, %q changed context", token)
		}
	}
}

func TestTransitionBooleansAreMonotonic(t *testing.T) {
	qc := NewQuoteContext("session-5")
	tokens := []string{"photo_uploaded", "analysis_complete", "select_basement", "scope_confirmed", "show_estimate", "estimate_shown", "contact_provided"}

	var seen models.QuoteContext
	for _, token := range tokens {
		action, _ := ParseQuoteAction(token)
		qc = Transition(qc, action)

		if seen.HasPhoto && !qc.HasPhoto {
			t.Error("hasPhoto regressed to false")
		}
		if seen.PhotoAnalyzed && !qc.PhotoAnalyzed {
			t.Error("photoAnalyzed regressed to false")
		}
		if seen.ScopeConfirmed && !qc.ScopeConfirmed {
			t.Error("scopeConfirmed regressed to false")
		}
		if seen.EstimateProvided && !qc.EstimateProvided {
			t.Error("estimateProvided regressed to false")
		}
		if seen.ContactCollected && !qc.ContactCollected {
			t.Error("contactCollected regressed to false")
		}
		seen = qc
	}
}

func TestMergeQuoteDataIsIdempotent(t *testing.T) {
	qc := NewQuoteContext("session-6")
	delta := models.QuoteDataDelta{
		RoomType:            "kitchen",
		Timeline:            "this fall",
		SpecialRequirements: []string{"wheelchair access", "keep plumbing"},
	}

	once := MergeQuoteData(qc, delta)
	twice := MergeQuoteData(once, delta)

	if !reflect.DeepEqual(once.Data, twice.Data) {
		t.Errorf("merge not idempotent: once=%+v twice=%+v", once.Data, twice.Data)
	}
	if len(twice.Data.SpecialRequirements) != 2 {
		t.Errorf("expected 2 special requirements, got %d", len(twice.Data.SpecialRequirements))
	}
}

func TestMergeQuoteDataFirstKnownWins(t *testing.T) {
	qc := NewQuoteContext("session-7")
	qc = MergeQuoteData(qc, models.QuoteDataDelta{BudgetBand: "30-50k"})
	qc = MergeQuoteData(qc, models.QuoteDataDelta{BudgetBand: "under 10k", Timeline: "spring"})

	if qc.Data.BudgetBand != "30-50k" {
		t.Errorf("expected first budget band to win, got %q", qc.Data.BudgetBand)
	}
	if qc.Data.Timeline != "spring" {
		t.Errorf("expected timeline to fill in, got %q", qc.Data.Timeline)
	}
}

func TestQuestionsForEveryQuestionState(t *testing.T) {
	states := []models.QuoteState{
		models.QuoteStateKitchenQuestions,
		models.QuoteStateBathroomQuestions,
		models.QuoteStateBasementQuestions,
		models.QuoteStateFlooringQuestions,
		models.QuoteStateOtherQuestions,
	}
	for _, state := range states {
		qs := QuestionsFor(state)
		if len(qs) < 4 || len(qs) > 5 {
			t.Errorf("expected 4-5 questions for %q, got %d", state, len(qs))
		}
	}

	// Non-question states fall back to the generic set.
	if got := QuestionsFor(models.QuoteStateWelcome); !reflect.DeepEqual(got, QuestionsFor(models.QuoteStateOtherQuestions)) {
		t.Error("expected generic question set for non-question state")
	}
}
