// Package store provides storage backends for RenoFlow.
//
// This file implements the in-memory store used by tests and by
// deployments that do not need persistence across restarts.
package store

import (
	"sync"
	"time"

	"github.com/oakandbeam/renoflow/internal/models"
)

// InMemoryStore keeps everything in process memory behind a mutex.
type InMemoryStore struct {
	mu             sync.RWMutex
	leads          []models.Lead
	visualizations []models.Visualization
	sessions       map[string]models.QuoteContext
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]models.QuoteContext),
	}
}

func (s *InMemoryStore) SaveLead(lead models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = append(s.leads, lead)
	return nil
}

func (s *InMemoryStore) GetLeads() ([]models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Newest first, matching the SQL backends' ORDER BY created_at DESC.
	out := make([]models.Lead, len(s.leads))
	for i, l := range s.leads {
		out[len(s.leads)-1-i] = l
	}
	return out, nil
}

func (s *InMemoryStore) GetLead(id string) (*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.leads {
		if l.ID == id {
			lead := l
			return &lead, nil
		}
	}
	return nil, models.ErrLeadNotFound
}

func (s *InMemoryStore) UpdateLeadStatus(id string, status models.LeadStatus) error {
	if !models.IsValidLeadStatus(status) {
		return models.ErrUnknownLeadStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads[i].Status = status
			s.leads[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return models.ErrLeadNotFound
}

func (s *InMemoryStore) AddVisualization(v models.Visualization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visualizations = append(s.visualizations, v)
	return nil
}

func (s *InMemoryStore) GetVisualizations() ([]models.Visualization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Visualization, len(s.visualizations))
	for i, v := range s.visualizations {
		out[len(s.visualizations)-1-i] = v
	}
	return out, nil
}

func (s *InMemoryStore) SaveQuoteSession(qc models.QuoteContext) error {
	if qc.SessionID == "" {
		return models.ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[qc.SessionID] = qc
	return nil
}

func (s *InMemoryStore) GetQuoteSession(sessionID string) (*models.QuoteContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	qc, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &qc, nil
}

func (s *InMemoryStore) DeleteQuoteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
