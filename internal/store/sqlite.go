// Package store provides storage backends for RenoFlow.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/oakandbeam/renoflow/internal/models"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore: creating SQLite store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore: migrations applied")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveLead(lead models.Lead) error {
	_, err := s.db.Exec(`
		INSERT INTO leads (id, name, phone, email, project_type, room_type, timeline, budget_band, scope_summary, source, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.Name, nilIfEmpty(lead.Phone), nilIfEmpty(lead.Email),
		nilIfEmpty(lead.ProjectType), nilIfEmpty(lead.RoomType), nilIfEmpty(lead.Timeline),
		nilIfEmpty(lead.BudgetBand), nilIfEmpty(lead.ScopeSummary),
		string(lead.Source), string(lead.Status), lead.CreatedAt, lead.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore.SaveLead failed", "error", err, "leadID", lead.ID)
		return fmt.Errorf("failed to insert lead %s: %w", lead.ID, err)
	}
	slog.Debug("SQLiteStore.SaveLead succeeded", "leadID", lead.ID, "source", lead.Source)
	return nil
}

func (s *SQLiteStore) GetLeads() ([]models.Lead, error) {
	rows, err := s.db.Query(`
		SELECT id, name, phone, email, project_type, room_type, timeline, budget_band, scope_summary, source, status, created_at, updated_at
		FROM leads ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("SQLiteStore.GetLeads query failed", "error", err)
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			slog.Error("SQLiteStore.GetLeads scan failed", "error", err)
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore.GetLeads rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate lead rows: %w", err)
	}
	slog.Debug("SQLiteStore.GetLeads succeeded", "count", len(leads))
	return leads, nil
}

func (s *SQLiteStore) GetLead(id string) (*models.Lead, error) {
	row := s.db.QueryRow(`
		SELECT id, name, phone, email, project_type, room_type, timeline, budget_band, scope_summary, source, status, created_at, updated_at
		FROM leads WHERE id = ?`, id)
	lead, err := scanLeadRow(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrLeadNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore.GetLead failed", "error", err, "leadID", id)
		return nil, err
	}
	return &lead, nil
}

func (s *SQLiteStore) UpdateLeadStatus(id string, status models.LeadStatus) error {
	if !models.IsValidLeadStatus(status) {
		return models.ErrUnknownLeadStatus
	}
	res, err := s.db.Exec(`UPDATE leads SET status = ?, updated_at = ? WHERE id = ?`, string(status), time.Now(), id)
	if err != nil {
		slog.Error("SQLiteStore.UpdateLeadStatus failed", "error", err, "leadID", id)
		return fmt.Errorf("failed to update lead %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrLeadNotFound
	}
	slog.Debug("SQLiteStore.UpdateLeadStatus succeeded", "leadID", id, "status", status)
	return nil
}

func (s *SQLiteStore) AddVisualization(v models.Visualization) error {
	changesJSON, err := json.Marshal(v.DesiredChanges)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO visualizations (id, session_id, room_type, style, desired_changes, summary, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.SessionID, nilIfEmpty(v.RoomType), nilIfEmpty(v.Style),
		string(changesJSON), nilIfEmpty(v.Summary), nilIfEmpty(v.ImageURL), v.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore.AddVisualization failed", "error", err, "sessionID", v.SessionID)
		return fmt.Errorf("failed to insert visualization for session %s: %w", v.SessionID, err)
	}
	slog.Debug("SQLiteStore.AddVisualization succeeded", "sessionID", v.SessionID)
	return nil
}

func (s *SQLiteStore) GetVisualizations() ([]models.Visualization, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, room_type, style, desired_changes, summary, image_url, created_at
		FROM visualizations ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("SQLiteStore.GetVisualizations query failed", "error", err)
		return nil, fmt.Errorf("failed to query visualizations: %w", err)
	}
	defer rows.Close()

	var visualizations []models.Visualization
	for rows.Next() {
		v, err := scanVisualization(rows)
		if err != nil {
			slog.Error("SQLiteStore.GetVisualizations scan failed", "error", err)
			return nil, err
		}
		visualizations = append(visualizations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate visualization rows: %w", err)
	}
	slog.Debug("SQLiteStore.GetVisualizations succeeded", "count", len(visualizations))
	return visualizations, nil
}

// SaveQuoteSession stores or updates an in-flight quote-intake session.
// The full context is serialized as JSON so the schema never chases the
// context shape.
func (s *SQLiteStore) SaveQuoteSession(qc models.QuoteContext) error {
	if qc.SessionID == "" {
		return models.ErrEmptySessionID
	}
	contextJSON, err := json.Marshal(qc)
	if err != nil {
		slog.Error("SQLiteStore.SaveQuoteSession marshal failed", "error", err, "sessionID", qc.SessionID)
		return err
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO quote_sessions (session_id, state, context_json, updated_at)
		VALUES (?, ?, ?, ?)`,
		qc.SessionID, string(qc.State), string(contextJSON), time.Now())
	if err != nil {
		slog.Error("SQLiteStore.SaveQuoteSession failed", "error", err, "sessionID", qc.SessionID)
		return fmt.Errorf("failed to save quote session %s: %w", qc.SessionID, err)
	}
	slog.Debug("SQLiteStore.SaveQuoteSession succeeded", "sessionID", qc.SessionID, "state", qc.State)
	return nil
}

func (s *SQLiteStore) GetQuoteSession(sessionID string) (*models.QuoteContext, error) {
	var contextJSON string
	err := s.db.QueryRow(`SELECT context_json FROM quote_sessions WHERE session_id = ?`, sessionID).Scan(&contextJSON)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore.GetQuoteSession not found", "sessionID", sessionID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore.GetQuoteSession failed", "error", err, "sessionID", sessionID)
		return nil, err
	}

	var qc models.QuoteContext
	if err := json.Unmarshal([]byte(contextJSON), &qc); err != nil {
		slog.Error("SQLiteStore.GetQuoteSession unmarshal failed", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to decode quote session %s: %w", sessionID, err)
	}
	return &qc, nil
}

func (s *SQLiteStore) DeleteQuoteSession(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM quote_sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		slog.Error("SQLiteStore.DeleteQuoteSession failed", "error", err, "sessionID", sessionID)
		return err
	}
	slog.Debug("SQLiteStore.DeleteQuoteSession succeeded", "sessionID", sessionID)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}
