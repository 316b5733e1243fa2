// Package store provides storage backends for RenoFlow.
//
// It persists leads, visualizations, and in-flight quote-intake sessions.
// Three implementations share the Store interface: an in-memory store for
// tests and ephemeral deployments, an SQLite store for single-node
// installs, and a Postgres store for shared deployments.
package store

import (
	"strings"

	"github.com/oakandbeam/renoflow/internal/models"
)

// Store is the persistence interface shared by all backends.
type Store interface {
	// SaveLead persists a new lead. The caller is expected to have
	// validated it and assigned an ID.
	SaveLead(lead models.Lead) error
	// GetLeads returns all leads, newest first.
	GetLeads() ([]models.Lead, error)
	// GetLead returns one lead by ID, or models.ErrLeadNotFound.
	GetLead(id string) (*models.Lead, error)
	// UpdateLeadStatus moves a lead through the back-office pipeline.
	UpdateLeadStatus(id string, status models.LeadStatus) error

	// AddVisualization persists a completed visualizer session record.
	AddVisualization(v models.Visualization) error
	// GetVisualizations returns all visualization records, newest first.
	GetVisualizations() ([]models.Visualization, error)

	// SaveQuoteSession stores or updates an in-flight quote-intake
	// session keyed by its session ID.
	SaveQuoteSession(qc models.QuoteContext) error
	// GetQuoteSession retrieves a quote-intake session, or nil if the
	// session does not exist.
	GetQuoteSession(sessionID string) (*models.QuoteContext, error)
	// DeleteQuoteSession removes a completed or abandoned session.
	DeleteQuoteSession(sessionID string) error

	// Close releases any underlying resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	// DSN is the database connection string: a file path for SQLite, a
	// connection URL or key=value string for Postgres.
	DSN string
}

// Option defines a functional option for store configuration.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN sets the Postgres connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite3" so callers can
// pick a backend from a single DATABASE_URL-style setting.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite3"
}
