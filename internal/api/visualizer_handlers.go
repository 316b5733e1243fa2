// Package api provides visualizer conversation handlers for RenoFlow endpoints.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"

	"github.com/oakandbeam/renoflow/internal/flow"
	"github.com/oakandbeam/renoflow/internal/models"
	"github.com/oakandbeam/renoflow/internal/util"
)

// VisualizerContextHeader carries the base64-encoded conversation context on
// visualizer responses. The chat endpoint streams its body, so the context
// has to ride on a header the client echoes back on the next turn.
const VisualizerContextHeader = "X-Visualizer-Context"

// VisualizerStateHeader exposes the post-turn conversation state so clients
// can switch UI phases without decoding the full context.
const VisualizerStateHeader = "X-Visualizer-State"

// VisualizerAnalyzeRequest is the request body for POST /api/visualizer/analyze.
type VisualizerAnalyzeRequest struct {
	SessionID string `json:"session_id,omitempty"`
	ImageURL  string `json:"image_url"`
}

// VisualizerAnalyzeResult is the response payload for the analyze endpoint.
type VisualizerAnalyzeResult struct {
	SessionID string                   `json:"session_id"`
	State     models.VisualizerState   `json:"state"`
	Analysis  models.PhotoAnalysis     `json:"analysis"`
	Readiness flow.GenerationReadiness `json:"readiness"`
}

// VisualizerChatRequest is the request body for POST /api/visualizer/chat.
// The conversation context arrives on the X-Visualizer-Context request
// header, not in the body. AssistantReply carries the streamed reply from
// the previous turn: the context header is written before the body streams,
// so the assistant's words can only enter the transcript when the client
// echoes them back here.
type VisualizerChatRequest struct {
	Message        string `json:"message"`
	AssistantReply string `json:"assistant_reply,omitempty"`
}

// visualizerAnalyzeHandler handles POST /api/visualizer/analyze. It runs the
// vision model over the uploaded photo and returns a fresh conversation
// context advanced to intent gathering.
func (s *Server) visualizerAnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.visualizerAnalyzeHandler: processing analyze request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.visualizerAnalyzeHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req VisualizerAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.visualizerAnalyzeHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.ImageURL == "" {
		slog.Warn("Server.visualizerAnalyzeHandler: missing image URL")
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required field: image_url"))
		return
	}
	if req.SessionID == "" {
		req.SessionID = util.GenerateVisualizerSessionID()
	}

	if s.gaClient == nil {
		slog.Warn("Server.visualizerAnalyzeHandler: GenAI client not configured")
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Photo analysis is not available"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), DefaultGenAITimeout)
	defer cancel()

	analysis, err := s.gaClient.AnalyzeRoomPhoto(ctx, req.ImageURL)
	if err != nil {
		slog.Error("Server.visualizerAnalyzeHandler: photo analysis failed", "error", err, "sessionID", req.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to analyze photo"))
		return
	}

	vc := flow.NewVisualizerContext(req.SessionID)
	vc = flow.AddPhotoAnalysis(vc, analysis)
	readiness := flow.CheckGenerationReadiness(vc)
	vc.Extracted.ConfidenceScore = readiness.QualityConfidence

	encoded, err := vc.Encode()
	if err != nil {
		slog.Error("Server.visualizerAnalyzeHandler: context encoding failed", "error", err, "sessionID", req.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to encode conversation context"))
		return
	}
	w.Header().Set(VisualizerContextHeader, encoded)
	w.Header().Set(VisualizerStateHeader, string(vc.State))

	slog.Info("Server.visualizerAnalyzeHandler: photo analyzed", "sessionID", req.SessionID, "roomType", analysis.RoomType)
	writeJSONResponse(w, http.StatusOK, models.Success(VisualizerAnalyzeResult{
		SessionID: req.SessionID,
		State:     vc.State,
		Analysis:  analysis,
		Readiness: readiness,
	}))
}

// visualizerChatHandler handles POST /api/visualizer/chat. The reply streams
// as plain text; the updated context (including this user turn) is returned
// on the X-Visualizer-Context header. The streamed reply is not in that
// context, so clients echo it back as assistant_reply on the next turn to
// keep the model's transcript two-sided.
func (s *Server) visualizerChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.visualizerChatHandler: processing chat request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.visualizerChatHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req VisualizerChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.visualizerChatHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.Message == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyMessageBody.Error()))
		return
	}

	var vc models.VisualizerContext
	if encoded := r.Header.Get(VisualizerContextHeader); encoded != "" {
		decoded, err := models.DecodeVisualizerContext(encoded)
		if err != nil {
			slog.Warn("Server.visualizerChatHandler: invalid context header", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid visualizer context header"))
			return
		}
		vc = *decoded
		if req.AssistantReply != "" {
			vc = flow.AddMessage(vc, "assistant", req.AssistantReply, nil)
		}
	} else {
		vc = flow.NewVisualizerContext(util.GenerateVisualizerSessionID())
		// No photo was uploaded, so skip straight to intent gathering.
		vc = flow.UpdateState(vc, models.VisualizerStateIntentGathering)
	}

	delta := s.extractor.DesignIntent(r.Context(), vc.SessionID, req.Message)
	vc = flow.AddMessage(vc, "user", req.Message, delta)

	wasReady := vc.State == models.VisualizerStateGenerationReady
	if next, ok := flow.ShouldTransitionState(vc); ok {
		vc = flow.UpdateState(vc, next)
	}
	if !wasReady && vc.State == models.VisualizerStateGenerationReady {
		s.recordVisualization(vc)
	}
	vc.Extracted.ConfidenceScore = flow.CheckGenerationReadiness(vc).QualityConfidence

	encoded, err := vc.Encode()
	if err != nil {
		slog.Error("Server.visualizerChatHandler: context encoding failed", "error", err, "sessionID", vc.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to encode conversation context"))
		return
	}

	if s.gaClient == nil {
		slog.Warn("Server.visualizerChatHandler: GenAI client not configured")
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("The design assistant is not available"))
		return
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(flow.BuildVisualizerSystemPrompt(vc)),
	}
	for _, msg := range vc.History {
		switch msg.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	w.Header().Set(VisualizerContextHeader, encoded)
	w.Header().Set(VisualizerStateHeader, string(vc.State))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	ctx, cancel := context.WithTimeout(r.Context(), DefaultGenAITimeout)
	defer cancel()

	_, err = s.gaClient.GenerateStream(ctx, messages, func(chunk string) {
		if _, writeErr := w.Write([]byte(chunk)); writeErr != nil {
			slog.Warn("Server.visualizerChatHandler: client write failed", "error", writeErr, "sessionID", vc.SessionID)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	})
	if err != nil {
		// Headers are already on the wire; all we can do is log and stop.
		slog.Error("Server.visualizerChatHandler: stream failed", "error", err, "sessionID", vc.SessionID)
		return
	}

	slog.Debug("Server.visualizerChatHandler: turn streamed",
		"sessionID", vc.SessionID, "state", vc.State, "turnCount", vc.TurnCount)
}

// recordVisualization persists the generation-ready session for the back office.
func (s *Server) recordVisualization(vc models.VisualizerContext) {
	readiness := flow.CheckGenerationReadiness(vc)

	style := vc.Extracted.StylePreference
	if style == "" {
		style = readiness.SuggestedStyle
	}
	roomType := vc.Extracted.RoomType
	if roomType == "" && vc.PhotoAnalysis != nil {
		roomType = vc.PhotoAnalysis.RoomType
	}

	v := models.Visualization{
		ID:             uuid.NewString(),
		SessionID:      vc.SessionID,
		RoomType:       roomType,
		Style:          string(style),
		DesiredChanges: vc.Extracted.DesiredChanges,
		Summary:        readiness.GenerationSummary,
		CreatedAt:      time.Now(),
	}
	if err := s.st.AddVisualization(v); err != nil {
		slog.Error("Server.recordVisualization: failed to persist", "error", err, "sessionID", vc.SessionID)
		return
	}
	slog.Info("Server.recordVisualization: visualization recorded", "sessionID", vc.SessionID, "style", v.Style)
}

// visualizationsHandler returns all recorded visualizations (GET /api/visualizations).
func (s *Server) visualizationsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.visualizationsHandler invoked", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.visualizationsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	visualizations, err := s.st.GetVisualizations()
	if err != nil {
		slog.Error("Error fetching visualizations", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch visualizations"))
		return
	}
	slog.Debug("visualizations fetched", "count", len(visualizations))
	writeJSONResponse(w, http.StatusOK, models.Success(visualizations))
}
