package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/awork-io/sting/pkg/cycles"
	"github.com/awork-io/sting/pkg/entity"
	"github.com/awork-io/sting/pkg/graph"
	"github.com/awork-io/sting/pkg/logging"
	"github.com/awork-io/sting/pkg/pubsub"
	"github.com/awork-io/sting/pkg/table"
)

//go:embed static/*
var staticFiles embed.FS

// entityView is the JSON shape of an entity in API responses.
type entityView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	File string `json:"file"`
	Used bool   `json:"used"`
}

// cycleView is one cycle in the /api/cycles response.
type cycleView struct {
	Nodes []*graph.Node `json:"nodes"`
}

// Server serves the dependency graph UI and API. Analysis results are
// swapped atomically under the mutex when watch mode re-analyzes.
type Server struct {
	router    *mux.Router
	publisher pubsub.Publisher

	mu        sync.RWMutex
	table     table.Table
	graph     *graph.Graph
	maxCycles int
	maxDepth  int
}

// NewServer creates a new web server
func NewServer(maxCycles, maxDepth int) *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// New subscribers only need the current state, not history.
	ssePublisher.ConfigureTopic(pubsub.TopicAnalysisStatus, pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false,
	})
	ssePublisher.ConfigureTopic(pubsub.TopicEntityGraph, pubsub.TopicConfig{
		BufferSize: 5,
		ReplayAll:  false,
	})

	s := &Server{
		router:    mux.NewRouter(),
		publisher: ssePublisher,
		maxCycles: maxCycles,
		maxDepth:  maxDepth,
	}
	s.setupRoutes()
	return s
}

// SetAnalysis swaps in fresh analysis results.
func (s *Server) SetAnalysis(t table.Table, g *graph.Graph) {
	s.mu.Lock()
	s.table = t
	s.graph = g
	s.mu.Unlock()
}

// PublishAnalysisStatus publishes a status event to the analysis_status topic.
func (s *Server) PublishAnalysisStatus(state, message string, step, total int) error {
	status := pubsub.AnalysisStatus{
		State:   state,
		Message: message,
		Step:    step,
		Total:   total,
	}
	return s.publisher.Publish(pubsub.TopicAnalysisStatus, state, status)
}

// PublishEntityGraph publishes a graph summary event to the entity_graph topic.
func (s *Server) PublishEntityGraph(eventType string, complete bool) error {
	s.mu.RLock()
	var entitiesCount, depsCount int
	if s.graph != nil {
		entitiesCount = len(s.graph.Nodes())
		depsCount = len(s.graph.Edges())
	}
	s.mu.RUnlock()

	data := pubsub.EntityGraphData{
		EntitiesCount:     entitiesCount,
		DependenciesCount: depsCount,
		Complete:          complete,
	}
	return s.publisher.Publish(pubsub.TopicEntityGraph, eventType, data)
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/analysis_status", s.handleSubscribe(pubsub.TopicAnalysisStatus)).Methods("GET")
	s.router.HandleFunc("/api/subscribe/entity_graph", s.handleSubscribe(pubsub.TopicEntityGraph)).Methods("GET")

	// API routes
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/entities", s.handleEntities).Methods("GET")
	s.router.HandleFunc("/api/cycles", s.handleCycles).Methods("GET")

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("failed to load embedded static files", "error", err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

// handleSubscribe streams events for a topic as Server-Sent Events until the
// client disconnects.
func (s *Server) handleSubscribe(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		// Initial comment establishes the connection (Safari compatibility).
		fmt.Fprintf(w, ": connected\n\n")
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		sub, err := s.publisher.Subscribe(r.Context(), topic)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer sub.Close()

		for event := range sub.Events() {
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.ErrorContext(r.Context(), "error writing SSE event", "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

// handleGraph returns the full dependency graph in D3 force-layout format.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	if g == nil {
		w.Write([]byte(`{"nodes":[],"links":[]}`))
		return
	}

	if err := json.NewEncoder(w).Encode(g); err != nil {
		logging.ErrorContext(r.Context(), "failed to encode graph", "error", err)
	}
}

// handleEntities lists entities, optionally filtered by ?type= and ?unused=true.
func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s.mu.RLock()
	t := s.table
	s.mu.RUnlock()

	views := []entityView{}
	if t != nil {
		kindFilter := r.URL.Query().Get("type")
		unusedOnly := r.URL.Query().Get("unused") == "true"

		var entities []*entity.Entity
		if unusedOnly {
			entities = t.Unused()
		} else {
			for _, id := range t.SortedIDs() {
				entities = append(entities, t[id])
			}
		}

		for _, e := range entities {
			if kindFilter != "" && string(e.Kind) != kindFilter {
				continue
			}
			views = append(views, entityView{
				ID:   e.ID,
				Name: e.Name,
				Type: string(e.Kind),
				File: e.FilePath,
				Used: e.Used,
			})
		}
	}

	if err := json.NewEncoder(w).Encode(views); err != nil {
		logging.ErrorContext(r.Context(), "failed to encode entities", "error", err)
	}
}

// handleCycles runs bounded cycle detection on the current graph.
func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	response := struct {
		Cycles    []cycleView `json:"cycles"`
		Truncated bool        `json:"truncated"`
	}{Cycles: []cycleView{}}

	if g != nil {
		found, truncated := cycles.Find(g, s.maxCycles, s.maxDepth)
		response.Truncated = truncated
		for _, cycle := range found {
			view := cycleView{Nodes: make([]*graph.Node, 0, len(cycle.Nodes))}
			for _, id := range cycle.Nodes {
				view.Nodes = append(view.Nodes, g.Node(id))
			}
			response.Cycles = append(response.Cycles, view)
		}
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.ErrorContext(r.Context(), "failed to encode cycles", "error", err)
	}
}

// ServeHTTP makes the server usable as a plain http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start starts the web server on the specified port
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("starting web server", "url", fmt.Sprintf("http://localhost%s", addr))
	return http.ListenAndServe(addr, s.router)
}
