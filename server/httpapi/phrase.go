package httpapi

import (
	"net/http"
	"strings"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/models"
)

func normaliseSeq(seq []string) []string {
	out := make([]string, len(seq))
	for i, o := range seq {
		out[i] = strings.ToLower(o)
	}
	return out
}

func (a *API) handleUpdatePhrase(w http.ResponseWriter, r *http.Request) {
	var ph models.Phrase
	if err := decodeJSON(r, &ph); err != nil {
		writeError(w, r, err)
		return
	}
	ph.OrthographySeq = normaliseSeq(ph.OrthographySeq)

	var updated models.Phrase
	var err error
	if ph.ID == nil {
		updated, err = a.terms.CreatePhrase(r.Context(), ph)
	} else {
		updated, err = a.terms.UpdatePhrase(r.Context(), ph)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, updated)
}

func (a *API) handleDeletePhrase(w http.ResponseWriter, r *http.Request) {
	var ph models.Phrase
	if err := decodeJSON(r, &ph); err != nil {
		writeError(w, r, err)
		return
	}
	if ph.ID == nil {
		writeError(w, r, apperr.Validation("delete_phrase: id is required"))
		return
	}
	deleted, err := a.terms.DeletePhrase(r.Context(), *ph.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, deleted)
}
