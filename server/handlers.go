package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/poiesic/vectorview/conn"
	"github.com/poiesic/vectorview/core"
	"github.com/poiesic/vectorview/vset"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, conn.ErrNotConnected):
		status = http.StatusConflict
	case errors.Is(err, conn.ErrProfileNotFound), errors.Is(err, vset.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidProfile),
		errors.Is(err, core.ErrEmptyCollection),
		errors.Is(err, core.ErrEmptyElement),
		errors.Is(err, core.ErrEmptyVector):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

type connectRequest struct {
	Alias string `json:"alias"`
	URL   string `json:"url"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.console.Connect(r.Context(), req.Alias, req.URL); err != nil {
		if errors.Is(err, core.ErrInvalidProfile) {
			writeError(w, err)
			return
		}
		// All retries exhausted: a single aggregated failure for the user.
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"alias": req.Alias, "status": "connected"})
}

type connectionsResponse struct {
	Active string                    `json:"active,omitempty"`
	Recent []*core.ConnectionProfile `json:"recent"`
}

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.console.Recent()
	if err != nil {
		writeError(w, err)
		return
	}
	if profiles == nil {
		profiles = []*core.ConnectionProfile{}
	}
	writeJSON(w, http.StatusOK, connectionsResponse{
		Active: s.console.ActiveAlias(),
		Recent: profiles,
	})
}

func (s *Server) handleDeleteConnection(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")

	// Drop the live connection if there is one, then the saved profile.
	if err := s.console.Disconnect(alias); err != nil && !errors.Is(err, conn.ErrNotConnected) {
		writeError(w, err)
		return
	}
	if err := s.console.ForgetProfile(alias); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	names, err := s.console.Collections(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"collections": names})
}

func (s *Server) handleCollectionInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.console.CollectionInfo(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type searchRequest struct {
	Query      string  `json:"query"`
	Count      int     `json:"count,omitempty"`
	Epsilon    float64 `json:"epsilon,omitempty"`
	EF         int     `json:"ef,omitempty"`
	WithScores bool    `json:"withScores,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	matches, err := s.console.Search(r.Context(), chi.URLParam(r, "name"), req.Query, vset.SimOptions{
		WithScores: req.WithScores,
		Count:      req.Count,
		Epsilon:    req.Epsilon,
		EF:         req.EF,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if matches == nil {
		matches = []core.SimilarityMatch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	result, err := s.console.Import(r.Context(), chi.URLParam(r, "name"), r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type embedRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req embedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
		return
	}

	vector, cached, err := s.console.Embed(r.Context(), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vector": vector, "cached": cached})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.console.ClearCache(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
