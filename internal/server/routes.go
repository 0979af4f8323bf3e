package server

import "net/http"

// registerRoutes attaches all REST endpoints to the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Service endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Index snapshot
	mux.HandleFunc("/api/index", s.handleIndex)
}
