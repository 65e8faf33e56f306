// Package api exposes the route planner over HTTP with JSON bodies.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"floor-planner/internal/layout"
	"floor-planner/internal/metrics"
	"floor-planner/internal/route"
)

// Server serves route queries for one planner.
type Server struct {
	planner *route.Planner
	mux     *http.ServeMux
}

// NewServer registers all endpoints.
func NewServer(p *route.Planner) *Server {
	metrics.RegisterDefault()

	s := &Server{planner: p, mux: http.NewServeMux()}
	s.mux.HandleFunc("/route", s.routeHandler)
	s.mux.HandleFunc("/path", s.pathHandler)
	s.mux.HandleFunc("/pairs", s.pairsHandler)
	s.mux.HandleFunc("/nearest", s.nearestHandler)
	s.mux.HandleFunc("/edges", s.edgesHandler)
	s.mux.HandleFunc("/health", s.healthHandler)
	s.mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	return s
}

// Handler returns the mux wrapped in CORS, request-id and logging middleware.
func (s *Server) Handler() http.Handler {
	return logMiddleware(s.mux, corsMiddleware(s.mux))
}

type RouteRequest struct {
	Waypoints []string `json:"waypoints"`
}

type RouteResponse struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message,omitempty"`
	Legs     []route.Leg `json:"legs,omitempty"`
	Distance float64     `json:"distance"`
	Time     float64     `json:"time"`
}

type PathResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message,omitempty"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Path     []string `json:"path"`
	Distance *float64 `json:"distance,omitempty"` // nil when not found
	Time     *float64 `json:"time,omitempty"`
	Expanded int      `json:"expanded"`
}

type NearestResponse struct {
	Node     string  `json:"node"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Distance float64 `json:"distance"`
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logMiddleware labels metrics with the matched mux pattern so unknown paths
// share one "other" series.
func logMiddleware(mux *http.ServeMux, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		dur := time.Since(start)
		status := strconv.Itoa(rec.status)
		_, pattern := mux.Handler(r)
		if pattern == "" {
			pattern = "other"
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, pattern, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, pattern, status).Observe(dur.Seconds())
		slog.Info("request", "id", id, "remote", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", dur)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// errorStatus maps lookup failures to 404 and everything else to 400.
func errorStatus(err error) int {
	if errors.Is(err, layout.ErrUnknownNode) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// POST /route - chain shortest paths through the given waypoints
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Waypoints) < 2 {
		http.Error(w, "At least two waypoints are required", http.StatusBadRequest)
		return
	}

	rt, err := s.planner.Route(req.Waypoints)
	switch {
	case errors.Is(err, route.ErrNoRoute):
		writeJSON(w, http.StatusOK, RouteResponse{Success: false, Message: err.Error()})
		return
	case err != nil:
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	slog.Debug("route computed", "waypoints", len(req.Waypoints), "distance", rt.Distance())
	writeJSON(w, http.StatusOK, RouteResponse{
		Success:  true,
		Legs:     rt.Legs,
		Distance: rt.Distance(),
		Time:     rt.Time(),
	})
}

// GET /path?from=&to= - single shortest path
func (s *Server) pathHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" || to == "" {
		http.Error(w, "from and to are required", http.StatusBadRequest)
		return
	}

	res, err := s.planner.Find(from, to)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	resp := PathResponse{From: from, To: to, Path: res.Path, Expanded: res.Expanded, Success: res.Found}
	if res.Found {
		t := s.planner.Time(res.Cost)
		resp.Distance = &res.Cost
		resp.Time = &t
	} else {
		resp.Message = "No path found"
		resp.Path = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /pairs?labels=a,b,c - shortest paths between every pair of labels
func (s *Server) pairsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var labels []string
	if v := r.URL.Query().Get("labels"); v != "" {
		for _, l := range strings.Split(v, ",") {
			if l = strings.TrimSpace(l); l != "" {
				labels = append(labels, l)
			}
		}
	}

	pairs, err := s.planner.AllPairs(r.Context(), labels)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"pairs":    pairs,
		"numPairs": len(pairs),
	})
}

// GET /nearest?x=&y= - snap a coordinate to the closest node
func (s *Server) nearestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		http.Error(w, "x and y must be numbers", http.StatusBadRequest)
		return
	}

	n, d, err := s.planner.Graph().Nearest(orb.Point{x, y})
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, NearestResponse{Node: n.Name, X: n.Pos[0], Y: n.Pos[1], Distance: d})
}

// GET /edges - the layout as a GeoJSON feature collection for visualization
func (s *Server) edgesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.planner.Graph().FeatureCollection())
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	g := s.planner.Graph()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"numNodes": g.Len(),
		"numEdges": len(g.Edges()),
		"speed":    s.planner.Speed(),
	})
}
