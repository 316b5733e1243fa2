// Package flow implements RenoFlow's two conversation engines: the
// quote-intake state machine and the visualizer conversation engine.
//
// Both engines are pure, synchronous transformations over plain context
// values. They hold no internal state and never touch storage; callers
// carry contexts across turns and persist final results themselves.
package flow

import (
	"log/slog"
	"strings"

	"github.com/oakandbeam/renoflow/internal/models"
)

// ParseQuoteAction maps the wire-level action vocabulary onto the tagged
// QuoteAction union. Project selections arrive as "select_<type>"; the
// suffix is preserved verbatim so unrecognized project types still route
// to the generic question set. Unknown tokens return ok=false.
func ParseQuoteAction(token string) (models.QuoteAction, bool) {
	if suffix, found := strings.CutPrefix(token, "select_"); found && suffix != "" {
		return models.SelectProject(models.ProjectType(suffix)), true
	}
	switch models.QuoteActionKind(token) {
	case models.ActionPhotoUploaded:
		return models.QuoteAction{Kind: models.ActionPhotoUploaded}, true
	case models.ActionSkipPhoto:
		return models.QuoteAction{Kind: models.ActionSkipPhoto}, true
	case models.ActionAnalysisComplete:
		return models.QuoteAction{Kind: models.ActionAnalysisComplete}, true
	case models.ActionScopeConfirmed:
		return models.QuoteAction{Kind: models.ActionScopeConfirmed}, true
	case models.ActionShowEstimate:
		return models.QuoteAction{Kind: models.ActionShowEstimate}, true
	case models.ActionEstimateShown:
		return models.QuoteAction{Kind: models.ActionEstimateShown}, true
	case models.ActionContactProvided:
		return models.QuoteAction{Kind: models.ActionContactProvided}, true
	default:
		return models.QuoteAction{}, false
	}
}

// NewQuoteContext returns a fresh quote-intake context in the welcome state.
func NewQuoteContext(sessionID string) models.QuoteContext {
	return models.QuoteContext{
		SessionID: sessionID,
		State:     models.QuoteStateWelcome,
	}
}

// Transition advances a quote-intake context in response to an action.
// It is total: an action that is not meaningful in the current state is
// silently ignored and the context comes back unchanged, so out-of-order
// client events can never break the conversation.
func Transition(qc models.QuoteContext, action models.QuoteAction) models.QuoteContext {
	switch qc.State {
	case models.QuoteStateWelcome:
		switch action.Kind {
		case models.ActionPhotoUploaded:
			qc.State = models.QuoteStatePhotoAnalysis
			qc.HasPhoto = true
		case models.ActionSkipPhoto:
			qc.State = models.QuoteStateProjectType
		}

	case models.QuoteStatePhotoAnalysis:
		if action.Kind == models.ActionAnalysisComplete {
			qc.State = models.QuoteStateProjectType
			qc.PhotoAnalyzed = true
		}

	case models.QuoteStateProjectType:
		if action.Kind == models.ActionSelectProject {
			qc.ProjectType = action.Project
			qc.State = models.QuestionStateFor(action.Project)
		}

	case models.QuoteStateKitchenQuestions, models.QuoteStateBathroomQuestions,
		models.QuoteStateBasementQuestions, models.QuoteStateFlooringQuestions,
		models.QuoteStateOtherQuestions:
		if action.Kind == models.ActionScopeConfirmed {
			qc.State = models.QuoteStateScopeSummary
			qc.ScopeConfirmed = true
		}

	case models.QuoteStateScopeSummary:
		if action.Kind == models.ActionShowEstimate {
			qc.State = models.QuoteStateEstimateDisplay
		}

	case models.QuoteStateEstimateDisplay:
		if action.Kind == models.ActionEstimateShown {
			qc.State = models.QuoteStateContactCapture
			qc.EstimateProvided = true
		}

	case models.QuoteStateContactCapture:
		if action.Kind == models.ActionContactProvided {
			qc.State = models.QuoteStateCompletion
			qc.ContactCollected = true
		}

	case models.QuoteStateCompletion:
		// Terminal: every action is a no-op.
	}

	return qc
}

// MergeQuoteData folds an extraction delta into the accumulated quote data.
// Merging the same delta twice yields the same result as merging it once.
func MergeQuoteData(qc models.QuoteContext, delta models.QuoteDataDelta) models.QuoteContext {
	d := &qc.Data
	d.RoomType = firstNonEmpty(d.RoomType, delta.RoomType)
	d.AreaSqFt = firstNonEmpty(d.AreaSqFt, delta.AreaSqFt)
	d.FinishLevel = firstNonEmpty(d.FinishLevel, delta.FinishLevel)
	d.LayoutChanges = firstNonEmpty(d.LayoutChanges, delta.LayoutChanges)
	d.Timeline = firstNonEmpty(d.Timeline, delta.Timeline)
	d.BudgetBand = firstNonEmpty(d.BudgetBand, delta.BudgetBand)
	d.SpecialRequirements = unionStrings(append([]string(nil), d.SpecialRequirements...), delta.SpecialRequirements)
	d.ContactName = firstNonEmpty(d.ContactName, delta.ContactName)
	d.ContactPhone = firstNonEmpty(d.ContactPhone, delta.ContactPhone)
	d.ContactEmail = firstNonEmpty(d.ContactEmail, delta.ContactEmail)

	slog.Debug("flow.MergeQuoteData: merged extraction delta",
		"sessionID", qc.SessionID,
		"state", qc.State,
		"specialRequirements", len(d.SpecialRequirements))
	return qc
}

// firstNonEmpty keeps the accumulated value once it is known.
func firstNonEmpty(current, incoming string) string {
	if current != "" {
		return current
	}
	return strings.TrimSpace(incoming)
}

// QuestionsFor returns the ordered follow-up questions asked in the given
// question phase. Unknown states return the generic set.
func QuestionsFor(state models.QuoteState) []string {
	if qs, ok := questionBank[state]; ok {
		return qs
	}
	return questionBank[models.QuoteStateOtherQuestions]
}

// questionBank holds the fixed follow-up questions per project type. The
// order matters: the estimator persona asks them one at a time.
var questionBank = map[models.QuoteState][]string{
	models.QuoteStateKitchenQuestions: {
		"Are you planning a full gut renovation, or an update of finishes and fixtures?",
		"What are you thinking for cabinets and countertops - replace, reface, or keep what's there?",
		"Will the layout change at all, like moving the sink or stove, or opening up a wall?",
		"Which appliances are staying, and which are being replaced?",
		"Any accessibility or structural concerns we should plan around?",
	},
	models.QuoteStateBathroomQuestions: {
		"Is this a full remodel, or a refresh of fixtures and finishes?",
		"Are you keeping a tub, going shower-only, or doing a tub-to-shower conversion?",
		"Will anything move in the layout, like the vanity or toilet?",
		"What finish level are you picturing for tile and fixtures - builder grade, mid-range, or high end?",
		"Any accessibility needs, such as grab bars or a curbless shower?",
	},
	models.QuoteStateBasementQuestions: {
		"Is the basement currently unfinished, partially finished, or finished but dated?",
		"What will the space be used for - family room, bedroom, office, or a rental suite?",
		"Will you want a bathroom or kitchenette added down there?",
		"Any moisture issues, low ceilings, or egress windows we should know about?",
		"Are we framing new walls, or finishing within the existing layout?",
	},
	models.QuoteStateFlooringQuestions: {
		"Which rooms are getting new flooring, and roughly how many square feet in total?",
		"What material are you leaning toward - hardwood, laminate, vinyl plank, or tile?",
		"Does the existing flooring need to come out, and do you know what's underneath it?",
		"Are there stairs, transitions, or known subfloor issues to plan for?",
	},
	models.QuoteStateOtherQuestions: {
		"Tell me a bit about the project - what space are we working on?",
		"Is the work mostly cosmetic, or does it involve layout or structural changes?",
		"What materials or finishes do you already have in mind?",
		"What's your rough timeline and budget range for this?",
		"Any accessibility, permit, or structural concerns to plan around?",
	},
}
