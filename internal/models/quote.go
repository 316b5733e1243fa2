// Package models defines the quote-intake conversation state machine types.
package models

// QuoteState represents a phase of the quote-intake conversation.
// Phases advance in a strict forward order; there is no loop-back action.
type QuoteState string

const (
	QuoteStateWelcome           QuoteState = "welcome"
	QuoteStatePhotoAnalysis     QuoteState = "photo_analysis"
	QuoteStateProjectType       QuoteState = "project_type"
	QuoteStateKitchenQuestions  QuoteState = "kitchen_questions"
	QuoteStateBathroomQuestions QuoteState = "bathroom_questions"
	QuoteStateBasementQuestions QuoteState = "basement_questions"
	QuoteStateFlooringQuestions QuoteState = "flooring_questions"
	QuoteStateOtherQuestions    QuoteState = "other_questions"
	QuoteStateScopeSummary      QuoteState = "scope_summary"
	QuoteStateEstimateDisplay   QuoteState = "estimate_display"
	QuoteStateContactCapture    QuoteState = "contact_capture"
	QuoteStateCompletion        QuoteState = "completion"
)

// IsQuestions reports whether the state is one of the per-project question phases.
func (s QuoteState) IsQuestions() bool {
	switch s {
	case QuoteStateKitchenQuestions, QuoteStateBathroomQuestions, QuoteStateBasementQuestions,
		QuoteStateFlooringQuestions, QuoteStateOtherQuestions:
		return true
	default:
		return false
	}
}

// ProjectType categorizes a renovation project. Unrecognized selections are
// preserved as-is and routed to the generic question set.
type ProjectType string

const (
	ProjectTypeKitchen  ProjectType = "kitchen"
	ProjectTypeBathroom ProjectType = "bathroom"
	ProjectTypeBasement ProjectType = "basement"
	ProjectTypeFlooring ProjectType = "flooring"
	ProjectTypeOther    ProjectType = "other"
)

// QuestionStateFor maps a project type onto its question phase. Anything
// outside the fixed table lands in the generic question set.
func QuestionStateFor(p ProjectType) QuoteState {
	switch p {
	case ProjectTypeKitchen:
		return QuoteStateKitchenQuestions
	case ProjectTypeBathroom:
		return QuoteStateBathroomQuestions
	case ProjectTypeBasement:
		return QuoteStateBasementQuestions
	case ProjectTypeFlooring:
		return QuoteStateFlooringQuestions
	default:
		return QuoteStateOtherQuestions
	}
}

// QuoteActionKind identifies a discrete event in the quote-intake conversation.
type QuoteActionKind string

const (
	ActionPhotoUploaded    QuoteActionKind = "photo_uploaded"
	ActionSkipPhoto        QuoteActionKind = "skip_photo"
	ActionAnalysisComplete QuoteActionKind = "analysis_complete"
	ActionSelectProject    QuoteActionKind = "select_project"
	ActionScopeConfirmed   QuoteActionKind = "scope_confirmed"
	ActionShowEstimate     QuoteActionKind = "show_estimate"
	ActionEstimateShown    QuoteActionKind = "estimate_shown"
	ActionContactProvided  QuoteActionKind = "contact_provided"
)

// QuoteAction is a tagged event consumed by the quote-intake transition
// function. Project is set only for ActionSelectProject.
type QuoteAction struct {
	Kind    QuoteActionKind
	Project ProjectType
}

// SelectProject builds a project-selection action.
func SelectProject(p ProjectType) QuoteAction {
	return QuoteAction{Kind: ActionSelectProject, Project: p}
}

// QuoteData accumulates structured fields extracted turn-by-turn from the
// quote conversation. Fields fill incrementally and are never cleared;
// SpecialRequirements follows set-union semantics so repeated extraction
// of the same requirement is idempotent.
type QuoteData struct {
	RoomType            string   `json:"room_type,omitempty"`
	AreaSqFt            string   `json:"area_sq_ft,omitempty"`
	FinishLevel         string   `json:"finish_level,omitempty"`
	LayoutChanges       string   `json:"layout_changes,omitempty"`
	Timeline            string   `json:"timeline,omitempty"`
	BudgetBand          string   `json:"budget_band,omitempty"`
	SpecialRequirements []string `json:"special_requirements,omitempty"`
	ContactName         string   `json:"contact_name,omitempty"`
	ContactPhone        string   `json:"contact_phone,omitempty"`
	ContactEmail        string   `json:"contact_email,omitempty"`
}

// QuoteDataDelta is the structured extraction from one free-text quote
// message. Scalar fields follow first-known-wins when merged;
// SpecialRequirements is unioned.
type QuoteDataDelta struct {
	RoomType            string   `json:"room_type,omitempty"`
	AreaSqFt            string   `json:"area_sq_ft,omitempty"`
	FinishLevel         string   `json:"finish_level,omitempty"`
	LayoutChanges       string   `json:"layout_changes,omitempty"`
	Timeline            string   `json:"timeline,omitempty"`
	BudgetBand          string   `json:"budget_band,omitempty"`
	SpecialRequirements []string `json:"special_requirements,omitempty"`
	ContactName         string   `json:"contact_name,omitempty"`
	ContactPhone        string   `json:"contact_phone,omitempty"`
	ContactEmail        string   `json:"contact_email,omitempty"`
}

// IsEmpty reports whether the delta carries no extracted data.
func (d QuoteDataDelta) IsEmpty() bool {
	return d.RoomType == "" && d.AreaSqFt == "" && d.FinishLevel == "" &&
		d.LayoutChanges == "" && d.Timeline == "" && d.BudgetBand == "" &&
		len(d.SpecialRequirements) == 0 &&
		d.ContactName == "" && d.ContactPhone == "" && d.ContactEmail == ""
}

// QuoteContext is the complete quote-intake conversation state. It is a
// plain value: the engine never retains it between calls, and callers carry
// it across turns through whatever session mechanism they use.
type QuoteContext struct {
	SessionID   string      `json:"session_id,omitempty"`
	State       QuoteState  `json:"state"`
	ProjectType ProjectType `json:"project_type,omitempty"`

	// Monotonic flags: each flips false -> true exactly once per session.
	HasPhoto         bool `json:"has_photo"`
	PhotoAnalyzed    bool `json:"photo_analyzed"`
	ScopeConfirmed   bool `json:"scope_confirmed"`
	EstimateProvided bool `json:"estimate_provided"`
	ContactCollected bool `json:"contact_collected"`

	Data QuoteData `json:"data"`
}
