package httpapi

import (
	"net/http"

	"github.com/influx-reader/influx-server/internal/apperr"
)

// handleDictionaryLookup backs GET /dictionary/lookup?dict_path=...&query=...
func (a *API) handleDictionaryLookup(w http.ResponseWriter, r *http.Request) {
	dictPath := r.URL.Query().Get("dict_path")
	query := r.URL.Query().Get("query")
	if dictPath == "" || query == "" {
		writeError(w, r, apperr.Validation("dictionary/lookup: dict_path and query are required"))
		return
	}

	defs, err := a.dicts.Lookup(dictPath, query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, defs)
}
