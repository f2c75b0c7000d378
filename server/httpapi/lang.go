package httpapi

import (
	"net/http"
	"strconv"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/models"
)

func (a *API) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	langs, err := a.languages.ListLanguages(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, langs)
}

func (a *API) handleGetLanguage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	lang, ok, err := a.languages.GetLanguage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.NotFound("language %d not found", id))
		return
	}
	writeJSON(w, lang)
}

func (a *API) handleCreateLanguage(w http.ResponseWriter, r *http.Request) {
	var lang models.Language
	if err := decodeJSON(r, &lang); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := a.languages.CreateLanguage(r.Context(), lang)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, created)
}

func (a *API) handleUpdateLanguage(w http.ResponseWriter, r *http.Request) {
	var lang models.Language
	if err := decodeJSON(r, &lang); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := a.languages.UpdateLanguage(r.Context(), lang)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, updated)
}

func (a *API) handleDeleteLanguage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.languages.DeleteLanguage(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseID parses a path segment as the numeric id routes of spec.md §6
// expect, surfacing a malformed value as a Validation error rather than a
// 500.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, apperr.Validation("invalid id %q", s)
	}
	return id, nil
}
