// Package api provides the Twilio voice webhook handler for RenoFlow.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"

	"github.com/oakandbeam/renoflow/internal/models"
	"github.com/oakandbeam/renoflow/internal/receptionist"
)

// signatureValidator is implemented by the real Twilio client; the mock
// sender used in tests does not validate, so validation is skipped for it.
type signatureValidator interface {
	ValidateSignature(url string, params map[string]string, signature string) bool
}

// voiceWebhookHandler handles POST /webhooks/voice. Twilio calls it twice
// per call: once when the call connects (answered with a greeting and a
// speech gather), and once with the gathered SpeechResult (answered with a
// thank-you, a new lead, and an SMS follow-up).
func (s *Server) voiceWebhookHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.voiceWebhookHandler invoked", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.voiceWebhookHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recep == nil {
		slog.Warn("Server.voiceWebhookHandler: voice line not configured")
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Voice line not configured"))
		return
	}

	if err := r.ParseForm(); err != nil {
		slog.Warn("Server.voiceWebhookHandler: failed to parse form", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if validator, ok := s.recep.(signatureValidator); ok {
		params := make(map[string]string, len(r.PostForm))
		for key := range r.PostForm {
			params[key] = r.PostForm.Get(key)
		}
		url := "https://" + r.Host + r.URL.RequestURI()
		if !validator.ValidateSignature(url, params, r.Header.Get("X-Twilio-Signature")) {
			slog.Warn("Server.voiceWebhookHandler: signature validation failed", "from", r.PostForm.Get("From"))
			w.WriteHeader(http.StatusForbidden)
			return
		}
	}

	caller := r.PostForm.Get("From")
	speech := r.PostForm.Get("SpeechResult")

	if speech == "" {
		// First leg of the call: greet and gather.
		xml, err := receptionist.GreetingTwiML(r.URL.Path)
		if err != nil {
			slog.Error("Server.voiceWebhookHandler: TwiML build failed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeTwiML(w, xml)
		slog.Info("Voice call answered", "from", caller)
		return
	}

	// Second leg: the caller described their project.
	now := time.Now()
	lead := models.Lead{
		ID:           uuid.NewString(),
		Name:         "Phone caller",
		Phone:        caller,
		ScopeSummary: speech,
		Source:       models.LeadSourceVoice,
		Status:       models.LeadStatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := lead.Validate(); err != nil {
		slog.Warn("Server.voiceWebhookHandler: lead validation failed", "error", err, "from", caller)
	} else if err := s.st.SaveLead(lead); err != nil {
		slog.Error("Server.voiceWebhookHandler: lead save failed", "error", err, "from", caller)
	} else {
		slog.Info("Voice lead created", "leadID", lead.ID, "from", caller)
	}

	if caller != "" {
		if err := s.recep.SendSMS(r.Context(), caller, receptionist.FollowUpSMS(s.quoteChatURL)); err != nil {
			slog.Error("Server.voiceWebhookHandler: follow-up SMS failed", "error", err, "to", caller)
		}
	}

	xml, err := receptionist.ThanksTwiML(s.generateVoiceAcknowledgment(r.Context(), speech))
	if err != nil {
		slog.Error("Server.voiceWebhookHandler: TwiML build failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeTwiML(w, xml)
}

// voiceReceptionistPrompt keeps the spoken reply short enough for a phone call.
const voiceReceptionistPrompt = "You are the phone receptionist for Oak & Beam Renovations, a home " +
	"renovation company. The caller just described their renovation project. Reply with one short " +
	"spoken sentence acknowledging the specifics of what they described. Do not ask questions, " +
	"quote prices, or mention texting or callbacks; those are handled separately."

// generateVoiceAcknowledgment asks the model for a one-line spoken
// acknowledgment of the caller's project. It returns "" on any failure so
// the TwiML falls back to a stock line.
func (s *Server) generateVoiceAcknowledgment(ctx context.Context, speech string) string {
	if s.gaClient == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultGenAITimeout)
	defer cancel()

	ack, err := s.gaClient.GenerateWithMessages(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(voiceReceptionistPrompt),
		openai.UserMessage(speech),
	})
	if err != nil {
		slog.Warn("Server.generateVoiceAcknowledgment: generation failed", "error", err)
		return ""
	}
	return strings.TrimSpace(ack)
}

// writeTwiML writes a TwiML document with the content type Twilio expects.
func writeTwiML(w http.ResponseWriter, xml string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(xml)); err != nil {
		slog.Error("Server.writeTwiML: failed to write TwiML response", "error", err)
	}
}
