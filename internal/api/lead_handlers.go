// Package api provides lead management handlers for RenoFlow endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oakandbeam/renoflow/internal/models"
)

// LeadCreateRequest is the request body for POST /api/leads. It covers the
// back-office and website form paths; chat and voice leads are created by
// their own handlers.
type LeadCreateRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	ProjectType  string `json:"project_type,omitempty"`
	RoomType     string `json:"room_type,omitempty"`
	Timeline     string `json:"timeline,omitempty"`
	BudgetBand   string `json:"budget_band,omitempty"`
	ScopeSummary string `json:"scope_summary,omitempty"`
	Source       string `json:"source,omitempty"`
}

// LeadStatusUpdateRequest is the request body for PUT /api/leads/{id}/status.
type LeadStatusUpdateRequest struct {
	Status models.LeadStatus `json:"status"`
}

// leadsHandler dispatches /api/leads and /api/leads/{id}[/status].
func (s *Server) leadsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.leadsHandler invoked", "method", r.Method, "path", r.URL.Path)

	path := strings.TrimPrefix(r.URL.Path, "/api/leads")
	path = strings.TrimPrefix(path, "/")
	segments := strings.Split(path, "/")

	if len(segments) == 0 || segments[0] == "" {
		// /api/leads
		switch r.Method {
		case http.MethodGet:
			s.listLeadsHandler(w, r)
		case http.MethodPost:
			s.createLeadHandler(w, r)
		default:
			w.Header().Set("Allow", "GET, POST")
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		}
		return
	}

	leadID := segments[0]

	if len(segments) == 1 {
		// /api/leads/{id}
		switch r.Method {
		case http.MethodGet:
			s.getLeadHandler(w, r, leadID)
		default:
			w.Header().Set("Allow", "GET")
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		}
		return
	}

	if len(segments) == 2 && segments[1] == "status" {
		// /api/leads/{id}/status
		switch r.Method {
		case http.MethodPut:
			s.updateLeadStatusHandler(w, r, leadID)
		default:
			w.Header().Set("Allow", "PUT")
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		}
		return
	}

	writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown lead endpoint"))
}

// createLeadHandler handles POST /api/leads.
func (s *Server) createLeadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	var req LeadCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.createLeadHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	source := models.LeadSource(req.Source)
	if source == "" {
		source = models.LeadSourceQuoteChat
	}

	now := time.Now()
	lead := models.Lead{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		ProjectType:  req.ProjectType,
		RoomType:     req.RoomType,
		Timeline:     req.Timeline,
		BudgetBand:   req.BudgetBand,
		ScopeSummary: req.ScopeSummary,
		Source:       source,
		Status:       models.LeadStatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := lead.Validate(); err != nil {
		slog.Warn("Server.createLeadHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	if err := s.st.SaveLead(lead); err != nil {
		slog.Error("Server.createLeadHandler: save failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save lead"))
		return
	}

	slog.Info("Lead created", "leadID", lead.ID, "source", lead.Source)
	writeJSONResponse(w, http.StatusCreated, models.Recorded(lead))
}

// listLeadsHandler handles GET /api/leads.
func (s *Server) listLeadsHandler(w http.ResponseWriter, r *http.Request) {
	leads, err := s.st.GetLeads()
	if err != nil {
		slog.Error("Server.listLeadsHandler: failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list leads"))
		return
	}
	slog.Debug("Server.listLeadsHandler succeeded", "count", len(leads))
	writeJSONResponse(w, http.StatusOK, models.Success(leads))
}

// getLeadHandler handles GET /api/leads/{id}.
func (s *Server) getLeadHandler(w http.ResponseWriter, r *http.Request, leadID string) {
	lead, err := s.st.GetLead(leadID)
	if err == models.ErrLeadNotFound {
		slog.Debug("Server.getLeadHandler: not found", "leadID", leadID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Lead not found"))
		return
	}
	if err != nil {
		slog.Error("Server.getLeadHandler: failed", "error", err, "leadID", leadID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to get lead"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(lead))
}

// updateLeadStatusHandler handles PUT /api/leads/{id}/status.
func (s *Server) updateLeadStatusHandler(w http.ResponseWriter, r *http.Request, leadID string) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	var req LeadStatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.updateLeadStatusHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	err := s.st.UpdateLeadStatus(leadID, req.Status)
	switch err {
	case nil:
	case models.ErrUnknownLeadStatus:
		slog.Warn("Server.updateLeadStatusHandler: invalid status", "status", req.Status, "leadID", leadID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	case models.ErrLeadNotFound:
		slog.Debug("Server.updateLeadStatusHandler: not found", "leadID", leadID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Lead not found"))
		return
	default:
		slog.Error("Server.updateLeadStatusHandler: failed", "error", err, "leadID", leadID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update lead status"))
		return
	}

	slog.Info("Lead status updated", "leadID", leadID, "status", req.Status)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Lead status updated successfully", nil))
}
