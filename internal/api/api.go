// Package api provides HTTP handlers and the main API server logic for RenoFlow.
//
// It exposes the quote-intake chat, the visualizer conversation, lead
// management for the back office, and the Twilio voice webhook. The API
// integrates with the genai, flow, store, and receptionist modules.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oakandbeam/renoflow/internal/flow"
	"github.com/oakandbeam/renoflow/internal/genai"
	"github.com/oakandbeam/renoflow/internal/receptionist"
	"github.com/oakandbeam/renoflow/internal/store"
)

// Default server configuration constants.
const (
	// DefaultAPIAddr is the default listen address for the API server.
	DefaultAPIAddr = ":8080"
	// DefaultQuoteChatURL is the default link texted to voice callers.
	DefaultQuoteChatURL = "https://oakandbeam.example/quote"
	// DefaultGenAITimeout bounds a single model call made by a handler.
	DefaultGenAITimeout = 60 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr         string
	QuoteChatURL string
}

// Option defines a functional option for API server configuration.
type Option func(*Opts)

// WithAddr sets the listen address for the API server.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithQuoteChatURL sets the quote-chat link texted to voice callers.
func WithQuoteChatURL(url string) Option {
	return func(o *Opts) { o.QuoteChatURL = url }
}

// Server wires the conversation engines, storage, and Twilio surface behind
// the HTTP API.
type Server struct {
	st           store.Store
	gaClient     genai.ClientInterface
	extractor    *flow.Extractor
	recep        receptionist.Sender
	addr         string
	quoteChatURL string
}

// NewServer creates an API server over the given collaborators.
func NewServer(st store.Store, gaClient genai.ClientInterface, recep receptionist.Sender, opts ...Option) *Server {
	cfg := Opts{
		Addr:         DefaultAPIAddr,
		QuoteChatURL: DefaultQuoteChatURL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		st:           st,
		gaClient:     gaClient,
		extractor:    flow.NewExtractor(gaClient),
		recep:        recep,
		addr:         cfg.Addr,
		quoteChatURL: cfg.QuoteChatURL,
	}
}

// Handler returns the routed HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/api/quote/start", s.quoteStartHandler)
	mux.HandleFunc("/api/quote/message", s.quoteMessageHandler)
	mux.HandleFunc("/api/visualizer/analyze", s.visualizerAnalyzeHandler)
	mux.HandleFunc("/api/visualizer/chat", s.visualizerChatHandler)
	mux.HandleFunc("/api/leads", s.leadsHandler)
	mux.HandleFunc("/api/leads/", s.leadsHandler)
	mux.HandleFunc("/api/visualizations", s.visualizationsHandler)
	mux.HandleFunc("/webhooks/voice", s.voiceWebhookHandler)
	return mux
}

// ListenAndServe starts the HTTP server and blocks until the context is
// canceled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("RenoFlow API running", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server.ListenAndServe: shutdown failed", "error", err)
			return err
		}
		slog.Info("RenoFlow API shut down cleanly")
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	}
}

// Run assembles the store, GenAI client, and receptionist from the given
// module options and serves the API until the process is stopped. It is the
// single integration point used by the command-line entry.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, recepOpts []receptionist.Option, apiOpts []Option) error {
	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	gaClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize GenAI client: %w", err)
	}

	var recep receptionist.Sender
	recepClient, err := receptionist.NewClient(recepOpts...)
	if err != nil {
		// The voice line is optional: the chat surfaces still work without
		// Twilio credentials.
		slog.Warn("Run: Twilio not configured, voice webhook disabled", "error", err)
	} else {
		recep = recepClient
	}

	server := NewServer(st, gaClient, recep, apiOpts...)
	return server.ListenAndServe(context.Background())
}

// buildStore picks a storage backend from the configured options: Postgres
// or SQLite when a DSN is present, in-memory otherwise.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Info("No database DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		return store.NewPostgresStore(storeOpts...)
	}
	return store.NewSQLiteStore(storeOpts...)
}

// healthHandler provides a health check endpoint for monitoring and load balancing.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	// The store is the only hard dependency worth probing.
	if _, err := s.st.GetLeads(); err != nil {
		slog.Warn("Health check: store probe failed", "error", err)
		healthData["status"] = "degraded"
		healthData["error"] = "Failed to reach lead store"
	}

	statusCode := http.StatusOK
	if healthData["status"] == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, statusCode, healthData)
}
