// Package models defines the core data structures for RenoFlow.
//
// It includes the conversation contexts for the quote-intake and visualizer
// engines, lead and visualization records, and API response types shared
// across modules.
package models

import (
	"errors"
	"time"
)

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
	// APIStatusRecorded indicates data was successfully recorded via API.
	APIStatusRecorded APIStatus = "recorded"
)

// Validation errors shared across handlers and the store.
var (
	ErrEmptyLeadContact  = errors.New("lead requires at least a phone number or email")
	ErrEmptyLeadName     = errors.New("lead name cannot be empty")
	ErrEmptySessionID    = errors.New("session id cannot be empty")
	ErrEmptyMessageBody  = errors.New("message body cannot be empty")
	ErrUnknownLeadStatus = errors.New("unknown lead status")
	ErrSessionNotFound   = errors.New("session not found")
	ErrLeadNotFound      = errors.New("lead not found")
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}

// Recorded creates a recorded API response with optional result data.
func Recorded(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusRecorded), Result: result}
}

// LeadStatus represents the back-office pipeline status of a lead.
type LeadStatus string

const (
	// LeadStatusNew indicates a freshly captured lead.
	LeadStatusNew LeadStatus = "new"
	// LeadStatusContacted indicates the office has reached out.
	LeadStatusContacted LeadStatus = "contacted"
	// LeadStatusQuoted indicates a formal quote was sent.
	LeadStatusQuoted LeadStatus = "quoted"
	// LeadStatusWon indicates the job was booked.
	LeadStatusWon LeadStatus = "won"
	// LeadStatusLost indicates the lead went elsewhere.
	LeadStatusLost LeadStatus = "lost"
)

// IsValidLeadStatus checks if the given lead status is supported.
func IsValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQuoted, LeadStatusWon, LeadStatusLost:
		return true
	default:
		return false
	}
}

// LeadSource identifies which surface captured a lead.
type LeadSource string

const (
	// LeadSourceQuoteChat marks leads captured by the quote-intake conversation.
	LeadSourceQuoteChat LeadSource = "quote_chat"
	// LeadSourceVisualizer marks leads captured after a visualization session.
	LeadSourceVisualizer LeadSource = "visualizer"
	// LeadSourceVoice marks leads captured by the voice receptionist.
	LeadSourceVoice LeadSource = "voice"
)

// Lead represents a finalized quote-intake result persisted for the back office.
type Lead struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	ProjectType  string     `json:"project_type,omitempty"`
	RoomType     string     `json:"room_type,omitempty"`
	Timeline     string     `json:"timeline,omitempty"`
	BudgetBand   string     `json:"budget_band,omitempty"`
	ScopeSummary string     `json:"scope_summary,omitempty"`
	Source       LeadSource `json:"source"`
	Status       LeadStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Validate performs validation on a Lead before persistence.
func (l *Lead) Validate() error {
	if l.Name == "" {
		return ErrEmptyLeadName
	}
	if l.Phone == "" && l.Email == "" {
		return ErrEmptyLeadContact
	}
	if l.Status != "" && !IsValidLeadStatus(l.Status) {
		return ErrUnknownLeadStatus
	}
	return nil
}

// Visualization represents a completed visualizer session persisted for the back office.
type Visualization struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	RoomType       string    `json:"room_type,omitempty"`
	Style          string    `json:"style,omitempty"`
	DesiredChanges []string  `json:"desired_changes,omitempty"`
	Summary        string    `json:"summary,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
