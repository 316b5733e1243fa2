// Package flow provides the system prompt builders for both engines.
//
// Prompts are pure functions of the conversation context and are rebuilt
// from scratch every turn; nothing here is cached.
package flow

import (
	"fmt"
	"strings"

	"github.com/oakandbeam/renoflow/internal/models"
)

// styleDescriptions is the fixed reference table of the six canonical
// design styles, rendered into every visualizer system prompt.
var styleDescriptions = map[models.DesignStyle]string{
	models.StyleModern:       "clean lines, flat-panel cabinetry, neutral palette with bold accents",
	models.StyleTraditional:  "classic millwork, raised-panel details, warm woods and rich tones",
	models.StyleFarmhouse:    "shiplap, apron sinks, reclaimed wood, cozy and lived-in",
	models.StyleIndustrial:   "exposed brick and metal, concrete surfaces, utilitarian fixtures",
	models.StyleMinimalist:   "pared-back forms, hidden storage, monochrome, nothing extra",
	models.StyleContemporary: "current trends, mixed materials, soft curves and layered lighting",
}

// BuildVisualizerSystemPrompt renders the current visualizer context into
// the system prompt that conditions the next model turn.
func BuildVisualizerSystemPrompt(vc models.VisualizerContext) string {
	var b strings.Builder

	b.WriteString("You are Maya, the design consultant for Oak & Beam Renovations. ")
	b.WriteString("You help homeowners describe how they want a room to look so we can generate a visualization of it.\n\n")

	fmt.Fprintf(&b, "CONVERSATION PHASE: %s (user turn %d)\n\n", vc.State, vc.TurnCount)

	if vc.PhotoAnalysis != nil {
		pa := vc.PhotoAnalysis
		b.WriteString("WHAT THE PHOTO SHOWS:\n")
		if pa.RoomType != "" {
			fmt.Fprintf(&b, "- Room: %s\n", pa.RoomType)
		}
		if pa.Layout != "" {
			fmt.Fprintf(&b, "- Layout: %s\n", pa.Layout)
		}
		if pa.Condition != "" {
			fmt.Fprintf(&b, "- Condition: %s\n", pa.Condition)
		}
		if pa.CurrentStyle != "" {
			fmt.Fprintf(&b, "- Current style: %s\n", pa.CurrentStyle)
		}
		if len(pa.Fixtures) > 0 {
			fmt.Fprintf(&b, "- Fixtures: %s\n", strings.Join(pa.Fixtures, ", "))
		}
		if len(pa.PreservationConstraints) > 0 {
			fmt.Fprintf(&b, "- Must preserve: %s\n", strings.Join(pa.PreservationConstraints, ", "))
		}
		b.WriteString("\n")
	}

	ex := vc.Extracted
	if len(ex.DesiredChanges) > 0 || len(ex.ConstraintsToPreserve) > 0 ||
		len(ex.MaterialPreferences) > 0 || ex.StylePreference != "" || ex.RoomType != "" {
		b.WriteString("WHAT WE KNOW SO FAR:\n")
		if ex.RoomType != "" {
			fmt.Fprintf(&b, "- Room type: %s\n", ex.RoomType)
		}
		if ex.StylePreference != "" {
			fmt.Fprintf(&b, "- Style preference: %s\n", ex.StylePreference)
		}
		if len(ex.DesiredChanges) > 0 {
			fmt.Fprintf(&b, "- Desired changes: %s\n", strings.Join(ex.DesiredChanges, ", "))
		}
		if len(ex.ConstraintsToPreserve) > 0 {
			fmt.Fprintf(&b, "- Keeping: %s\n", strings.Join(ex.ConstraintsToPreserve, ", "))
		}
		if len(ex.MaterialPreferences) > 0 {
			fmt.Fprintf(&b, "- Materials: %s\n", strings.Join(ex.MaterialPreferences, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("DESIGN STYLES YOU CAN OFFER:\n")
	for _, style := range models.DesignStyles {
		fmt.Fprintf(&b, "- %s: %s\n", style, styleDescriptions[style])
	}
	b.WriteString("\n")

	b.WriteString("HOW TO BEHAVE:\n")
	b.WriteString("- Ask exactly one question per reply and keep replies to a few sentences.\n")
	b.WriteString("- Work toward learning the room, the style, and the changes they want.\n")
	b.WriteString("- If asked about pricing or timelines, say our estimator assistant handles that and steer back to design.\n")
	b.WriteString("- Never promise structural changes the photo analysis says must be preserved.\n")
	b.WriteString("- Sign off as Maya.")

	return b.String()
}

// BuildQuoteSystemPrompt renders the current quote-intake context into the
// system prompt for the estimator persona's next turn.
func BuildQuoteSystemPrompt(qc models.QuoteContext) string {
	var b strings.Builder

	b.WriteString("You are Sam, the estimator assistant for Oak & Beam Renovations. ")
	b.WriteString("You guide homeowners through a short structured intake so we can put together a preliminary estimate.\n\n")

	fmt.Fprintf(&b, "CONVERSATION PHASE: %s\n", qc.State)
	if qc.ProjectType != "" {
		fmt.Fprintf(&b, "PROJECT TYPE: %s\n", qc.ProjectType)
	}
	b.WriteString("\n")

	d := qc.Data
	var known []string
	appendKnown := func(label, value string) {
		if value != "" {
			known = append(known, fmt.Sprintf("- %s: %s", label, value))
		}
	}
	appendKnown("Room", d.RoomType)
	appendKnown("Approximate area", d.AreaSqFt)
	appendKnown("Finish level", d.FinishLevel)
	appendKnown("Layout changes", d.LayoutChanges)
	appendKnown("Timeline", d.Timeline)
	appendKnown("Budget range", d.BudgetBand)
	if len(d.SpecialRequirements) > 0 {
		known = append(known, fmt.Sprintf("- Special requirements: %s", strings.Join(d.SpecialRequirements, ", ")))
	}
	if len(known) > 0 {
		b.WriteString("DETAILS GATHERED SO FAR:\n")
		b.WriteString(strings.Join(known, "\n"))
		b.WriteString("\n\n")
	}

	if qc.State.IsQuestions() {
		b.WriteString("QUESTIONS TO WORK THROUGH, IN ORDER (skip any already answered above):\n")
		for i, q := range QuestionsFor(qc.State) {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
		b.WriteString("\n")
	}

	b.WriteString("HOW TO BEHAVE:\n")
	b.WriteString("- Ask one question at a time and acknowledge what they just told you.\n")
	b.WriteString("- Do not quote firm prices; estimates are preliminary ranges prepared by the office.\n")

	switch qc.State {
	case models.QuoteStateScopeSummary:
		b.WriteString("- Summarize the scope back to them and ask them to confirm it before moving on.\n")
	case models.QuoteStateEstimateDisplay:
		b.WriteString("- Present the preliminary estimate range and explain what could move it up or down.\n")
	case models.QuoteStateContactCapture:
		b.WriteString("- Ask for their name and the best phone number or email so the office can follow up.\n")
	case models.QuoteStateCompletion:
		b.WriteString("- Thank them and let them know the office will be in touch within one business day.\n")
	}

	b.WriteString("- Sign off as Sam.")

	return b.String()
}
