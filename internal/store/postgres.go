// Package store provides storage backends for RenoFlow.
//
// This file implements the Postgres-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/oakandbeam/renoflow/internal/models"
)

// Database connection pool configuration constants.
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused.
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore.NewPostgresStore: migrations applied")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveLead(lead models.Lead) error {
	_, err := s.db.Exec(`
		INSERT INTO leads (id, name, phone, email, project_type, room_type, timeline, budget_band, scope_summary, source, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		lead.ID, lead.Name, nilIfEmpty(lead.Phone), nilIfEmpty(lead.Email),
		nilIfEmpty(lead.ProjectType), nilIfEmpty(lead.RoomType), nilIfEmpty(lead.Timeline),
		nilIfEmpty(lead.BudgetBand), nilIfEmpty(lead.ScopeSummary),
		string(lead.Source), string(lead.Status), lead.CreatedAt, lead.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore.SaveLead failed", "error", err, "leadID", lead.ID)
		return fmt.Errorf("failed to insert lead %s: %w", lead.ID, err)
	}
	slog.Debug("PostgresStore.SaveLead succeeded", "leadID", lead.ID, "source", lead.Source)
	return nil
}

func (s *PostgresStore) GetLeads() ([]models.Lead, error) {
	rows, err := s.db.Query(`
		SELECT id, name, phone, email, project_type, room_type, timeline, budget_band, scope_summary, source, status, created_at, updated_at
		FROM leads ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("PostgresStore.GetLeads query failed", "error", err)
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			slog.Error("PostgresStore.GetLeads scan failed", "error", err)
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lead rows: %w", err)
	}
	slog.Debug("PostgresStore.GetLeads succeeded", "count", len(leads))
	return leads, nil
}

func (s *PostgresStore) GetLead(id string) (*models.Lead, error) {
	row := s.db.QueryRow(`
		SELECT id, name, phone, email, project_type, room_type, timeline, budget_band, scope_summary, source, status, created_at, updated_at
		FROM leads WHERE id = $1`, id)
	lead, err := scanLeadRow(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrLeadNotFound
	}
	if err != nil {
		slog.Error("PostgresStore.GetLead failed", "error", err, "leadID", id)
		return nil, err
	}
	return &lead, nil
}

func (s *PostgresStore) UpdateLeadStatus(id string, status models.LeadStatus) error {
	if !models.IsValidLeadStatus(status) {
		return models.ErrUnknownLeadStatus
	}
	res, err := s.db.Exec(`UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`, string(status), time.Now(), id)
	if err != nil {
		slog.Error("PostgresStore.UpdateLeadStatus failed", "error", err, "leadID", id)
		return fmt.Errorf("failed to update lead %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrLeadNotFound
	}
	slog.Debug("PostgresStore.UpdateLeadStatus succeeded", "leadID", id, "status", status)
	return nil
}

func (s *PostgresStore) AddVisualization(v models.Visualization) error {
	changesJSON, err := json.Marshal(v.DesiredChanges)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO visualizations (id, session_id, room_type, style, desired_changes, summary, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.ID, v.SessionID, nilIfEmpty(v.RoomType), nilIfEmpty(v.Style),
		string(changesJSON), nilIfEmpty(v.Summary), nilIfEmpty(v.ImageURL), v.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore.AddVisualization failed", "error", err, "sessionID", v.SessionID)
		return fmt.Errorf("failed to insert visualization for session %s: %w", v.SessionID, err)
	}
	slog.Debug("PostgresStore.AddVisualization succeeded", "sessionID", v.SessionID)
	return nil
}

func (s *PostgresStore) GetVisualizations() ([]models.Visualization, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, room_type, style, desired_changes, summary, image_url, created_at
		FROM visualizations ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("PostgresStore.GetVisualizations query failed", "error", err)
		return nil, fmt.Errorf("failed to query visualizations: %w", err)
	}
	defer rows.Close()

	var visualizations []models.Visualization
	for rows.Next() {
		v, err := scanVisualization(rows)
		if err != nil {
			slog.Error("PostgresStore.GetVisualizations scan failed", "error", err)
			return nil, err
		}
		visualizations = append(visualizations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate visualization rows: %w", err)
	}
	slog.Debug("PostgresStore.GetVisualizations succeeded", "count", len(visualizations))
	return visualizations, nil
}

func (s *PostgresStore) SaveQuoteSession(qc models.QuoteContext) error {
	if qc.SessionID == "" {
		return models.ErrEmptySessionID
	}
	contextJSON, err := json.Marshal(qc)
	if err != nil {
		slog.Error("PostgresStore.SaveQuoteSession marshal failed", "error", err, "sessionID", qc.SessionID)
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO quote_sessions (session_id, state, context_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE SET state = $2, context_json = $3, updated_at = $4`,
		qc.SessionID, string(qc.State), string(contextJSON), time.Now())
	if err != nil {
		slog.Error("PostgresStore.SaveQuoteSession failed", "error", err, "sessionID", qc.SessionID)
		return fmt.Errorf("failed to save quote session %s: %w", qc.SessionID, err)
	}
	slog.Debug("PostgresStore.SaveQuoteSession succeeded", "sessionID", qc.SessionID, "state", qc.State)
	return nil
}

func (s *PostgresStore) GetQuoteSession(sessionID string) (*models.QuoteContext, error) {
	var contextJSON string
	err := s.db.QueryRow(`SELECT context_json FROM quote_sessions WHERE session_id = $1`, sessionID).Scan(&contextJSON)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore.GetQuoteSession not found", "sessionID", sessionID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore.GetQuoteSession failed", "error", err, "sessionID", sessionID)
		return nil, err
	}

	var qc models.QuoteContext
	if err := json.Unmarshal([]byte(contextJSON), &qc); err != nil {
		slog.Error("PostgresStore.GetQuoteSession unmarshal failed", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to decode quote session %s: %w", sessionID, err)
	}
	return &qc, nil
}

func (s *PostgresStore) DeleteQuoteSession(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM quote_sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		slog.Error("PostgresStore.DeleteQuoteSession failed", "error", err, "sessionID", sessionID)
		return err
	}
	slog.Debug("PostgresStore.DeleteQuoteSession succeeded", "sessionID", sessionID)
	return nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}
