package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to write JSON response", "path", r.URL.Path)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, map[string]interface{}{
		"status": "ok",
		"icons":  len(s.Catalog().Keys()),
	})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, s.Catalog().GetIconManifest())
}

// handleRejections drains pending rejection messages; a second request
// returns an empty list until the next rebuild records new ones.
func (s *Server) handleRejections(w http.ResponseWriter, r *http.Request) {
	messages := s.Catalog().ConsumeRejectedCustomIcons()
	if messages == nil {
		messages = []string{}
	}
	s.writeJSON(w, r, messages)
}

func (s *Server) handleIcon(w http.ResponseWriter, r *http.Request) {
	key, ok := strings.CutSuffix(r.PathValue("file"), ".svg")
	if !ok || key == "" {
		http.NotFound(w, r)
		return
	}

	markup, ok := s.Catalog().Icon(key)
	if !ok {
		http.NotFound(w, r)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "image/svg+xml; charset=utf-8")
	h.Set("Content-Security-Policy", IconCSP)
	h.Set("Cache-Control", "no-cache")
	if _, err := w.Write([]byte(markup)); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to write icon", "key", key)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	templ.Handler(galleryPage(s.Catalog().GetIconManifest())).ServeHTTP(w, r)
}
