// Package api provides the optional local HTTP viewer. Every endpoint is
// GET and read-only: the viewer is a rendering collaborator of the store,
// never a mutation path.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/hexhaven/factionledger/internal/faction"
	"github.com/hexhaven/factionledger/internal/store"
	"github.com/hexhaven/factionledger/internal/upkeep"
)

// Server serves the current faction snapshot over HTTP.
type Server struct {
	Store *store.Store
	Table upkeep.Table
	Port  int
}

// Handler builds the route mux. Split out from Start for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/hexes", s.handleHexes)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/gains", s.handleGains)
	mux.HandleFunc("/api/v1/upkeep", s.handleUpkeep)
	return corsMiddleware(mux)
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf("localhost:%d", s.Port)
	slog.Info("viewer starting", "addr", addr)

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("viewer server error", "error", err)
		}
	}()
}

// corsMiddleware allows local dev frontends to read the viewer endpoints.
// Extra origins come from FACTIONLEDGER_CORS_ORIGINS (comma-separated).
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("FACTIONLEDGER_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func readOnly(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}
	f := s.Store.Snapshot()
	writeJSON(w, map[string]any{
		"faction":     f.Name,
		"coffers":     f.Coffers,
		"hexes":       len(f.Hexes),
		"events":      len(f.Events),
		"seasonGains": len(f.SeasonGains),
		"dirty":       s.Store.Dirty(),
	})
}

func (s *Server) handleHexes(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}
	f := s.Store.Snapshot()
	type hexEntry struct {
		faction.Hex
		Upkeep upkeep.Cost `json:"upkeep"`
	}
	out := make([]hexEntry, 0, len(f.Hexes))
	for _, h := range f.Hexes {
		out = append(out, hexEntry{Hex: h, Upkeep: upkeep.Calc(h, s.Table)})
	}
	writeJSON(w, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}
	f := s.Store.Snapshot()
	type eventEntry struct {
		faction.Event
		// Resolved build locations; dangling hex refs render as "none".
		BuildLocations map[string]string `json:"buildLocations"`
	}
	out := make([]eventEntry, 0, len(f.Events))
	for _, e := range f.Events {
		locs := map[string]string{}
		for _, b := range e.ActiveBuilds() {
			if h := f.HexByID(b.HexID); h != nil {
				locs[b.ID] = h.Name
			} else {
				locs[b.ID] = "none"
			}
		}
		out = append(out, eventEntry{Event: e, BuildLocations: locs})
	}
	writeJSON(w, out)
}

func (s *Server) handleGains(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}
	f := s.Store.Snapshot()
	writeJSON(w, f.SeasonGains)
}

func (s *Server) handleUpkeep(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}
	f := s.Store.Snapshot()
	perHex := make(map[string]upkeep.Cost, len(f.Hexes))
	var total upkeep.Cost
	for _, h := range f.Hexes {
		c := upkeep.Calc(h, s.Table)
		perHex[h.ID] = c
		total = total.Add(c)
	}
	writeJSON(w, map[string]any{
		"perHex": perHex,
		"total":  total,
	})
}
