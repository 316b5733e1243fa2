// Package api provides quote-intake conversation handlers for RenoFlow endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"

	"github.com/oakandbeam/renoflow/internal/flow"
	"github.com/oakandbeam/renoflow/internal/models"
	"github.com/oakandbeam/renoflow/internal/util"
)

// quoteFallbackWelcome is sent when the model is unavailable so the intake
// still starts.
const quoteFallbackWelcome = "Hi, I'm Sam from Oak & Beam Renovations! I can put together a preliminary estimate for your project. " +
	"To start, you can upload a photo of the space, or just tell me what you're planning."

// quoteFallbackReply keeps the conversation moving when the model is
// unavailable mid-intake.
const quoteFallbackReply = "Got it, thanks! Tell me a bit more about your project and I'll keep building your estimate."

// QuoteMessageRequest is the request body for POST /api/quote/message.
type QuoteMessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message,omitempty"`
	Action    string `json:"action,omitempty"`
}

// Validate checks that the request addresses a session and carries either a
// free-text message or an action token.
func (r QuoteMessageRequest) Validate() error {
	if r.SessionID == "" {
		return models.ErrEmptySessionID
	}
	if r.Message == "" && r.Action == "" {
		return models.ErrEmptyMessageBody
	}
	return nil
}

// QuoteTurnResult is the response payload for both quote endpoints.
type QuoteTurnResult struct {
	SessionID   string             `json:"session_id"`
	State       models.QuoteState  `json:"state"`
	ProjectType models.ProjectType `json:"project_type,omitempty"`
	Reply       string             `json:"reply"`
	Data        models.QuoteData   `json:"data"`
	Completed   bool               `json:"completed"`
}

// quoteStartHandler handles POST /api/quote/start.
func (s *Server) quoteStartHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.quoteStartHandler: processing start request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.quoteStartHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sessionID := util.GenerateQuoteSessionID()
	qc := flow.NewQuoteContext(sessionID)

	if err := s.st.SaveQuoteSession(qc); err != nil {
		slog.Error("Server.quoteStartHandler: failed to save session", "error", err, "sessionID", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to start quote session"))
		return
	}

	reply := s.generateQuoteReply(r.Context(), qc, "Hi, I'd like an estimate.")
	if reply == "" {
		reply = quoteFallbackWelcome
	}

	slog.Info("Server.quoteStartHandler: quote session started", "sessionID", sessionID)
	writeJSONResponse(w, http.StatusCreated, models.Success(QuoteTurnResult{
		SessionID: sessionID,
		State:     qc.State,
		Reply:     reply,
		Data:      qc.Data,
	}))
}

// quoteMessageHandler handles POST /api/quote/message. A turn may carry a
// free-text message, an action token from the chat UI, or both; actions are
// applied before the message is extracted.
func (s *Server) quoteMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.quoteMessageHandler: processing message request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.quoteMessageHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req QuoteMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.quoteMessageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.quoteMessageHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	qcPtr, err := s.st.GetQuoteSession(req.SessionID)
	if err != nil {
		slog.Error("Server.quoteMessageHandler: failed to load session", "error", err, "sessionID", req.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load quote session"))
		return
	}
	if qcPtr == nil {
		slog.Warn("Server.quoteMessageHandler: session not found", "sessionID", req.SessionID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	qc := *qcPtr
	wasCompleted := qc.State == models.QuoteStateCompletion && qc.ContactCollected

	if req.Action != "" {
		action, ok := flow.ParseQuoteAction(req.Action)
		if !ok {
			slog.Warn("Server.quoteMessageHandler: unknown action", "action", req.Action, "sessionID", req.SessionID)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Unknown action: "+req.Action))
			return
		}
		qc = flow.Transition(qc, action)
	}

	if req.Message != "" {
		delta := s.extractor.QuoteDetails(r.Context(), req.SessionID, req.Message)
		qc = flow.MergeQuoteData(qc, delta)
	}

	completed := qc.State == models.QuoteStateCompletion && qc.ContactCollected
	// Completion is terminal, so the lead is finalized only on the turn that
	// first reaches it; later messages must not insert duplicates.
	if completed && !wasCompleted {
		if err := s.finalizeQuoteLead(qc); err != nil {
			slog.Error("Server.quoteMessageHandler: lead creation failed", "error", err, "sessionID", req.SessionID)
			// The conversation still completes; the session record keeps the data.
		}
	}

	if err := s.st.SaveQuoteSession(qc); err != nil {
		slog.Error("Server.quoteMessageHandler: failed to save session", "error", err, "sessionID", req.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save quote session"))
		return
	}

	reply := s.generateQuoteReply(r.Context(), qc, req.Message)
	if reply == "" {
		reply = quoteFallbackReply
	}

	slog.Debug("Server.quoteMessageHandler: turn processed",
		"sessionID", req.SessionID, "state", qc.State, "completed", completed)
	writeJSONResponse(w, http.StatusOK, models.Success(QuoteTurnResult{
		SessionID:   qc.SessionID,
		State:       qc.State,
		ProjectType: qc.ProjectType,
		Reply:       reply,
		Data:        qc.Data,
		Completed:   completed,
	}))
}

// generateQuoteReply asks the model for the estimator's next message. It
// returns "" on any failure so callers can substitute a fallback.
func (s *Server) generateQuoteReply(ctx context.Context, qc models.QuoteContext, userMessage string) string {
	if s.gaClient == nil {
		return ""
	}
	if userMessage == "" {
		userMessage = "(The customer clicked a button instead of typing. Acknowledge and continue.)"
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultGenAITimeout)
	defer cancel()

	reply, err := s.gaClient.GenerateWithMessages(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(flow.BuildQuoteSystemPrompt(qc)),
		openai.UserMessage(userMessage),
	})
	if err != nil {
		slog.Error("Server.generateQuoteReply: generation failed", "error", err, "sessionID", qc.SessionID)
		return ""
	}
	return reply
}

// finalizeQuoteLead turns a completed intake session into a lead record.
func (s *Server) finalizeQuoteLead(qc models.QuoteContext) error {
	now := time.Now()
	lead := models.Lead{
		ID:           uuid.NewString(),
		Name:         qc.Data.ContactName,
		Phone:        qc.Data.ContactPhone,
		Email:        qc.Data.ContactEmail,
		ProjectType:  string(qc.ProjectType),
		RoomType:     qc.Data.RoomType,
		Timeline:     qc.Data.Timeline,
		BudgetBand:   qc.Data.BudgetBand,
		ScopeSummary: summarizeQuoteScope(qc),
		Source:       models.LeadSourceQuoteChat,
		Status:       models.LeadStatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := lead.Validate(); err != nil {
		return fmt.Errorf("completed session %s produced invalid lead: %w", qc.SessionID, err)
	}
	if err := s.st.SaveLead(lead); err != nil {
		return err
	}
	slog.Info("Server.finalizeQuoteLead: lead created", "leadID", lead.ID, "sessionID", qc.SessionID)
	return nil
}

// summarizeQuoteScope builds the one-line scope description stored on the lead.
func summarizeQuoteScope(qc models.QuoteContext) string {
	var parts []string
	if qc.ProjectType != "" {
		parts = append(parts, string(qc.ProjectType)+" renovation")
	}
	if qc.Data.AreaSqFt != "" {
		parts = append(parts, "about "+qc.Data.AreaSqFt+" sq ft")
	}
	if qc.Data.FinishLevel != "" {
		parts = append(parts, qc.Data.FinishLevel+" finishes")
	}
	if qc.Data.LayoutChanges != "" {
		parts = append(parts, "layout: "+qc.Data.LayoutChanges)
	}
	if len(qc.Data.SpecialRequirements) > 0 {
		parts = append(parts, "notes: "+strings.Join(qc.Data.SpecialRequirements, ", "))
	}
	return strings.Join(parts, "; ")
}
