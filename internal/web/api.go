package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/gamevault/internal/form"
	"github.com/mesh-intelligence/gamevault/internal/i18n"
	"github.com/mesh-intelligence/gamevault/internal/store"
	"github.com/mesh-intelligence/gamevault/pkg/types"
)

const (
	maxBodyBytes = 20 << 20
	tagsField    = "tags"
)

func (s *Server) apiEnsureLoaded(w http.ResponseWriter, r *http.Request) bool {
	if _, err := s.store.EnsureLoaded(r.Context()); err != nil {
		s.logger.Error("loading games", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", localizer(r).T(i18n.KeyGenericError))
		return false
	}
	return true
}

// apiList returns the visible games. List parameters in the query string
// narrow this response only; without them the store's list state applies.
func (s *Server) apiList(w http.ResponseWriter, r *http.Request) {
	if !s.apiEnsureLoaded(w, r) {
		return
	}
	if r.URL.RawQuery == "" {
		writeJSON(w, http.StatusOK, s.store.Visible())
		return
	}
	params := parseListParams(r.URL.Query())
	writeJSON(w, http.StatusOK, store.Apply(s.store.Games(), params.Query, params.Filter, params.Sort))
}

func (s *Server) apiGet(w http.ResponseWriter, r *http.Request) {
	if !s.apiEnsureLoaded(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	for _, g := range s.store.Games() {
		if g.ID == id {
			writeJSON(w, http.StatusOK, g)
			return
		}
	}
	writeError(w, http.StatusNotFound, "not_found", localizer(r).T(i18n.KeyNotFound))
}

func decodeGame(w http.ResponseWriter, r *http.Request) (types.Game, error) {
	defer r.Body.Close()
	var g types.Game
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&g); err != nil {
		return types.Game{}, err
	}
	return g, nil
}

func (s *Server) apiCreate(w http.ResponseWriter, r *http.Request) {
	g, err := decodeGame(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	g.ID = ""
	s.apiSave(w, r, g, http.StatusCreated)
}

func (s *Server) apiUpdate(w http.ResponseWriter, r *http.Request) {
	g, err := decodeGame(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	g.ID = chi.URLParam(r, "id")
	s.apiSave(w, r, g, http.StatusOK)
}

func (s *Server) apiSave(w http.ResponseWriter, r *http.Request, g types.Game, status int) {
	if err := g.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid", err.Error())
		return
	}
	id, err := s.store.Upsert(r.Context(), g)
	switch {
	case err == nil:
		writeJSON(w, status, map[string]string{"id": id})
	case errors.Is(err, types.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", localizer(r).T(i18n.KeyNotFound))
	case errors.Is(err, types.ErrInvalidData), errors.Is(err, types.ErrInvalidName), errors.Is(err, types.ErrInvalidID):
		writeError(w, http.StatusUnprocessableEntity, "invalid", err.Error())
	default:
		s.logger.Error("saving game", "id", g.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", localizer(r).T(i18n.KeyGenericError))
	}
}

func (s *Server) apiDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Remove(r.Context(), id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, types.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", localizer(r).T(i18n.KeyNotFound))
	default:
		s.logger.Error("deleting game", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", localizer(r).T(i18n.KeyGenericError))
	}
}

// apiTags returns every tag in the collection. With q or current in the
// query string it returns the suggestions for a tag input instead: tags
// containing q that are not among current, at most form.MaxTagSuggestions.
func (s *Server) apiTags(w http.ResponseWriter, r *http.Request) {
	if !s.apiEnsureLoaded(w, r) {
		return
	}
	query := r.URL.Query()
	if !query.Has("q") && !query.Has("current") {
		writeJSON(w, http.StatusOK, s.store.AllTags())
		return
	}
	f := form.New(s.fields, map[string]any{tagsField: query["current"]})
	found, err := f.TagSuggestions(tagsField, query.Get("q"), s.store.AllTags())
	if err != nil {
		s.logger.Error("suggesting tags", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", localizer(r).T(i18n.KeyGenericError))
		return
	}
	writeJSON(w, http.StatusOK, found)
}
