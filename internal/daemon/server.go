package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/codeforge-dev/codeforge/internal/catalog"
	"github.com/codeforge-dev/codeforge/internal/config"
	"github.com/codeforge-dev/codeforge/internal/progress"
	"github.com/codeforge-dev/codeforge/internal/runner"
	"github.com/codeforge-dev/codeforge/internal/stats"
	"github.com/codeforge-dev/codeforge/internal/storage/sqlite"
)

// Version is the daemon version reported by /v1/status
const Version = "0.1.0"

// Server is the CodeForge daemon: the HTTP API the browser UI talks to
type Server struct {
	cfg    *config.LocalConfig
	server *http.Server
	router *http.ServeMux

	registry *catalog.Registry
	store    *progress.Store
	runner   *runner.Service
	stats    *stats.Service
	executor *runner.ResilientExecutor
	db       *sqlite.DB
}

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Config      *config.LocalConfig
	DataDir     string // progress store location
	ArchivePath string // submission archive database
	CatalogFS   fs.FS  // overrides config; nil resolves catalog path or embedded
}

// NewServer wires the catalog, the progress store, the submission archive
// and the evaluation service behind the HTTP API.
func NewServer(cfg ServerConfig) (*Server, error) {
	s := &Server{
		cfg:    cfg.Config,
		router: http.NewServeMux(),
	}

	catalogFS := cfg.CatalogFS
	if catalogFS == nil {
		if path := cfg.Config.Catalog.Path; path != "" {
			catalogFS = os.DirFS(path)
		} else {
			catalogFS = catalog.Builtin()
		}
	}
	s.registry = catalog.NewRegistry(catalog.NewLoader(catalogFS))
	if err := s.registry.Load(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	store, err := progress.NewStore(cfg.DataDir, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("create progress store: %w", err)
	}
	s.store = store

	db, err := sqlite.Open(cfg.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("open submission archive: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate submission archive: %w", err)
	}
	s.db = db
	archive := sqlite.NewSubmissionArchive(db)

	runnerCfg := cfg.Config.Runner
	mock := runner.NewMockExecutor(time.Duration(runnerCfg.LatencyMs) * time.Millisecond)
	s.executor = runner.NewResilientExecutor(mock, runner.ResilientConfig{
		EnableCircuitBreaker: runnerCfg.Resilience.CircuitBreaker,
		EnableRetry:          runnerCfg.Resilience.Retry,
		EnableBulkhead:       runnerCfg.Resilience.Bulkhead,
		EnableRateLimit:      runnerCfg.Resilience.RateLimit,
		MaxConcurrent:        runnerCfg.Resilience.MaxConcurrent,
		RatePerSecond:        runnerCfg.Resilience.RatePerSecond,
		Logger:               slog.Default(),
	})
	s.runner = runner.NewService(s.executor, store, archive, runnerCfg.PassRate, slog.Default())
	s.stats = stats.NewService(s.registry, store, archive)

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Config.Daemon.Bind, cfg.Config.Daemon.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      correlationIDMiddleware(recoveryMiddleware(loggingMiddleware(s.router))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health & status
	s.router.HandleFunc("GET /v1/health", s.handleHealth)
	s.router.HandleFunc("GET /v1/status", s.handleStatus)

	// Auth & profile
	s.router.HandleFunc("POST /v1/auth/signup", s.handleSignup)
	s.router.HandleFunc("POST /v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /v1/auth/logout", s.handleLogout)
	s.router.HandleFunc("GET /v1/auth/me", s.handleMe)
	s.router.HandleFunc("PUT /v1/auth/profile", s.handleUpdateProfile)
	s.router.HandleFunc("PUT /v1/auth/password", s.handleChangePassword)

	// Catalog
	s.router.HandleFunc("GET /v1/problems", s.handleListProblems)
	s.router.HandleFunc("GET /v1/problems/{id}", s.handleGetProblem)
	s.router.HandleFunc("GET /v1/tags", s.handleListTags)
	s.router.HandleFunc("GET /v1/languages", s.handleListLanguages)

	// Evaluation
	s.router.HandleFunc("POST /v1/problems/{id}/run", s.handleRun)

	// Per-problem progress
	s.router.HandleFunc("GET /v1/problems/{id}/code", s.handleGetCode)
	s.router.HandleFunc("PUT /v1/problems/{id}/code", s.handleSaveCode)
	s.router.HandleFunc("POST /v1/problems/{id}/bookmark", s.handleToggleBookmark)
	s.router.HandleFunc("GET /v1/problems/{id}/submissions", s.handleListSubmissions)

	// Sessions
	s.router.HandleFunc("POST /v1/problems/{id}/session/start", s.handleStartSession)
	s.router.HandleFunc("POST /v1/problems/{id}/session/end", s.handleEndSession)
	s.router.HandleFunc("POST /v1/problems/{id}/session/hints", s.handleSessionHints)
	s.router.HandleFunc("GET /v1/problems/{id}/session", s.handleGetSession)

	// Analytics
	s.router.HandleFunc("GET /v1/stats/overview", s.handleStatsOverview)
	s.router.HandleFunc("GET /v1/stats/leaderboard", s.handleLeaderboard)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("starting codeforge daemon",
		"addr", s.server.Addr,
		"problems", s.registry.Count(),
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its resources
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down daemon...")

	if err := s.executor.Close(); err != nil {
		slog.Warn("failed to close executor", "error", err)
	}

	err := s.server.Shutdown(ctx)
	if closeErr := s.db.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "running",
		"version":   Version,
		"problems":  s.registry.Count(),
		"pack":      s.registry.Pack().Name,
		"logged_in": s.store.IsLoggedIn(),
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.jsonResponse(w, status, response)
}
