// Package server exposes the HTTP trigger surface: one POST endpoint per
// workflow for the scheduler, plus read-only diagnostics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"seoflow/internal/config"
	"seoflow/internal/logging"
	"seoflow/internal/logs"
	"seoflow/internal/sheet"
	"seoflow/internal/workflow"
)

// Server owns the router and its listener lifecycle.
type Server struct {
	cfg     *config.Config
	manager *workflow.Manager
	store   *sheet.Store
	logger  *slog.Logger
	router  chi.Router

	listener net.Listener
	httpSrv  *http.Server
}

// New builds the server and its routes.
func New(cfg *config.Config, manager *workflow.Manager, store *sheet.Store, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		manager: manager,
		store:   store,
		logger:  logging.NewComponentLogger(logger, "server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(cfg.Paths.APIToken))
		r.Post("/run/{workflow}", s.handleRun)
		r.Get("/api/records", s.handleRecords)
		r.Get("/api/stats", s.handleStats)
		r.Get("/api/logs", s.handleLogs)
	})
	s.router = r

	s.httpSrv = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Paths.APIBind)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Paths.APIBind, err)
	}
	s.listener = listener

	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.httpSrv.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	workflows := make([]map[string]string, 0, len(s.manager.Registry().All()))
	for _, wf := range s.manager.Registry().All() {
		workflows = append(workflows, map[string]string{"id": wf.ID(), "name": wf.Name()})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service":   "seoflow",
		"dry_run":   s.cfg.DryRun,
		"workflows": workflows,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.store.Health(r.Context())
	status := http.StatusOK
	if err != nil || !health.DatabaseReadable {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, map[string]any{
		"database_readable": health.DatabaseReadable,
		"integrity_check":   health.IntegrityCheck,
		"total_records":     health.TotalRecords,
		"error":             health.Error,
	})
}

type runResponse struct {
	Workflow  string   `json:"workflow"`
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	ElapsedMS int64    `json:"elapsed_ms"`
	Notes     []string `json:"notes,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflow")
	summary, err := s.manager.Run(r.Context(), id)
	response := runResponse{
		Workflow:  id,
		Processed: summary.Processed,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
		ElapsedMS: summary.Elapsed.Milliseconds(),
		Notes:     summary.Notes,
	}
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, response)
	case errors.Is(err, workflow.ErrUnknownWorkflow):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, workflow.ErrAlreadyRunning):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		response.Error = err.Error()
		s.writeJSON(w, http.StatusInternalServerError, response)
	}
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	tab, ok := sheet.ParseTab(r.URL.Query().Get("tab"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown or missing tab parameter")
		return
	}
	var records []*sheet.Record
	var err error
	if status := r.URL.Query().Get("status"); status != "" {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, _ = strconv.Atoi(raw)
		}
		records, err = s.store.RecordsByStatus(r.Context(), tab, sheet.Status(status), limit)
	} else {
		records, err = s.store.List(r.Context(), tab)
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := make([]map[string]any, 0, len(records))
	for _, record := range records {
		payload = append(payload, map[string]any{
			"id":         record.ID,
			"tab":        record.Tab,
			"status":     record.Status,
			"fields":     record.Fields,
			"last_error": record.LastError,
			"created_at": record.CreatedAt,
			"updated_at": record.UpdatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"records": payload})
}

// handleLogs serves the tail of the shared log file. A limit parameter
// bounds the initial read; an offset parameter continues a previous read.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	path := logging.LogPath(s.cfg)
	if path == "" {
		s.writeError(w, http.StatusNotFound, "log directory is not configured")
		return
	}

	var (
		lines     []string
		newOffset int64
		err       error
	)
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			s.writeError(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		lines, newOffset, err = logs.ReadFrom(path, offset)
	} else {
		limit := 100
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, _ = strconv.Atoi(raw)
		}
		lines, newOffset, err = logs.Tail(path, limit)
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"lines":  lines,
		"offset": newOffset,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tabs": stats})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("response encode failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
