// Package server provides the HTTP and websocket API for the dashd daemon.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/openclaw/dashd/config"
	"github.com/openclaw/dashd/errors"
	"github.com/openclaw/dashd/internal/daemon/channel"
	"github.com/openclaw/dashd/internal/daemon/discovery"
	"github.com/openclaw/dashd/internal/daemon/engine"
	"github.com/openclaw/dashd/internal/daemon/store"
	"github.com/openclaw/dashd/pkg/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/time/rate"
)

// Refresher is the scheduler surface the server needs: an on-demand,
// immediately-returning rescan trigger.
type Refresher interface {
	Refresh()
}

// Server exposes the discovery snapshot, the supplemental read views, and
// the realtime channel endpoint.
type Server struct {
	cfg       *config.Config
	logger    *logrus.Entry
	store     *store.Store
	engine    *engine.Engine
	manager   *channel.Manager
	refresher Refresher

	// refreshLimiter bounds how often clients can force rescans. The
	// scheduler coalesces anyway; the limiter keeps refresh storms off the
	// log.
	refreshLimiter *rate.Limiter

	server *http.Server
}

// New creates a server over the daemon's shared components.
func New(cfg *config.Config, logger *logrus.Entry, st *store.Store, mgr *channel.Manager, eng *engine.Engine, refresher Refresher) *Server {
	return &Server{
		cfg:            cfg,
		logger:         logger,
		store:          st,
		engine:         eng,
		manager:        mgr,
		refresher:      refresher,
		refreshLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Handler builds the route table. Exposed separately so tests can drive the
// server through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/discovery", s.handleDiscovery)
	mux.HandleFunc("/api/discovery/refresh", s.handleRefresh)
	mux.HandleFunc("/api/discovery/skills/", s.handleSkillReadme)
	mux.HandleFunc("/api/overview", s.handleOverview)
	mux.HandleFunc("/api/jobs", s.handleJobs)
	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return h2c.NewHandler(mux, &http2.Server{})
}

// ListenAndServe starts the daemon API on the configured address. It blocks
// until the server stops or fails.
func (s *Server) ListenAndServe() error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.server = &http.Server{Handler: s.Handler()}

	s.logger.WithField("addr", addr).Info("Daemon listening")
	return s.server.Serve(listener)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleHealth reports liveness plus whether a snapshot exists yet.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, discovered := s.store.Current()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"discovered": discovered,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// handleDiscovery returns the full current snapshot. Before the first
// successful scan it answers 503 with an explicit not-yet state; scan
// failures are never visible here.
func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, ok := s.store.Current()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_yet_discovered",
		})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleRefresh triggers an on-demand rescan and acknowledges immediately;
// it never waits for scan completion.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.refreshLimiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"status": "rate_limited",
		})
		return
	}

	s.refresher.Refresh()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleSkillReadme serves the lazily-loaded full README text for one
// skill: GET /api/discovery/skills/{name}/readme.
func (s *Server) handleSkillReadme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/discovery/skills/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "readme" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	name := parts[0]

	text, err := discovery.SkillReadme(s.cfg.WorkspaceRoot, s.cfg.Signatures.SkillsRoot, name)
	if err != nil {
		status := http.StatusNotFound
		if errors.Is(err, errors.ErrCodeInvalidInput) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "readme": text})
}

// handleOverview assembles the dashboard counters from the snapshot and the
// supplemental collectors.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	overview := models.Overview{LastUpdated: time.Now().UTC().Format(time.RFC3339)}

	jobs := s.engine.Jobs()
	overview.TotalJobs = len(jobs)
	for _, job := range jobs {
		if job.Enabled {
			overview.ActiveJobs++
		}
		if job.LastStatus == "error" {
			overview.ErrorJobs++
		}
	}
	overview.ActiveSessions = len(s.engine.Sessions())

	if snap, ok := s.store.Current(); ok {
		overview.PipelinesCount = len(snap.Pipelines)
		overview.AgentsCount = len(snap.Agents)
		overview.SkillsCount = len(snap.Skills)
	}

	writeJSON(w, http.StatusOK, overview)
}

// handleJobs returns the read-only cron jobs view.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Jobs())
}

// handleSessions returns the read-only sessions view.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Sessions())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
