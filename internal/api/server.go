// Package api provides the HTTP API for observing and tuning the
// simulation. GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/notarikon-nz/subversive-sub001/internal/engine"
	"github.com/notarikon-nz/subversive-sub001/internal/persistence"
	"github.com/notarikon-nz/subversive-sub001/internal/tuning"
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

// Server serves the simulation state over HTTP.
type Server struct {
	Sim          *engine.Simulation
	Eng          *engine.Engine
	Tuning       *tuning.Tuning
	DB           *persistence.DB
	SnapshotPath string
	Port         int
	AdminKey     string // Bearer token for POST endpoints. Empty = POST disabled.
	RunID        string
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Tuning mutations invalidate every guard's plan; meter them so a
	// misbehaving client cannot thrash the planners.
	tuningLimiter := newPatchLimiter(6, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can watch the facility).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/guards", s.handleGuards)
	mux.HandleFunc("/api/v1/guard/", s.handleGuardDetail)
	mux.HandleFunc("/api/v1/intruders", s.handleIntruders)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/map", s.handleMap)

	// WebSocket observer feed.
	mux.HandleFunc("/api/v1/watch", s.handleWatch)

	// Tuning reads are public; mutations go through the admin gate and
	// the rate limiter.
	mux.HandleFunc("/api/v1/tuning", limitPatches(tuningLimiter, s.adminOnly(s.handleTuning)))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no TACSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Sim.StatsView()
	alert := s.Sim.AlertView()
	status := map[string]any{
		"name":              "tacsim",
		"run_id":            s.RunID,
		"tick":              s.Sim.CurrentTick(),
		"speed":             s.Eng.Speed(),
		"running":           s.Eng.Running(),
		"guards_alive":      stats.GuardsAlive,
		"intruders_alive":   stats.IntrudersAlive,
		"facility_alert":    alert.Active,
		"backup_called":     alert.BackupCalled,
		"tuning_generation": s.Tuning.Generation(),
	}
	writeJSON(w, status)
}

func (s *Server) handleGuards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.GuardViews())
}

func (s *Server) handleGuardDetail(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/guard/")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid guard id", http.StatusBadRequest)
		return
	}
	detail, ok := s.Sim.GuardDetailOf(engine.GuardID(id))
	if !ok {
		http.Error(w, "guard not found", http.StatusNotFound)
		return
	}
	writeJSON(w, detail)
}

func (s *Server) handleIntruders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.IntruderViews())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	writeJSON(w, s.Sim.EventsTail(limit, r.URL.Query().Get("category")))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.StatsView())
}

// handleMap returns the facility grid as one string per row plus the
// feature indexes, enough for any renderer to draw the floor.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	m := s.Sim.WorldMap
	glyphs := map[world.TileKind]byte{
		world.TileFloor:      '.',
		world.TileWall:       '#',
		world.TileCover:      'c',
		world.TileAlarmPanel: 'A',
		world.TileEntry:      'E',
	}

	rows := make([]string, m.Height)
	line := make([]byte, m.Width)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			line[x] = glyphs[m.At(world.TileCoord{X: x, Y: y})]
		}
		rows[y] = string(line)
	}

	writeJSON(w, map[string]any{
		"width":        m.Width,
		"height":       m.Height,
		"rows":         rows,
		"cover_points": m.CoverPoints,
		"alarm_panels": m.AlarmPanels,
		"entries":      m.Entries,
	})
}

// handleTuning serves the live parameter set and accepts patches.
func (s *Server) handleTuning(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var patch tuning.Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		gen, err := s.Tuning.Apply(patch)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Info("tuning patched", "generation", gen)
	}

	writeJSON(w, map[string]any{
		"generation": s.Tuning.Generation(),
		"config":     s.Tuning.Snapshot(),
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.DB.SaveRunState(s.Sim); err != nil {
		slog.Error("run state save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}

	snapFile := ""
	if s.SnapshotPath != "" {
		snap := persistence.BuildSnapshot(s.Sim, s.RunID)
		snapFile = fmt.Sprintf("%s/tick-%d.snap.zst", s.SnapshotPath, snap.Header.Tick)
		if err := persistence.WriteSnapshot(snapFile, snap); err != nil {
			slog.Error("snapshot write failed", "error", err)
			http.Error(w, "snapshot failed", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, map[string]any{
		"tick":    s.Sim.CurrentTick(),
		"file":    snapFile,
		"message": "snapshot saved",
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
