package httpapi

import (
	"net/http"
	"strings"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/models"
)

// handleGetToken backs GET /vocab/token/{lang_identifier}/{orthography}. A
// miss is not an error here: it returns the same UNMARKED placeholder
// dict_from_orthography_set synthesises for an unseen orthography (spec.md
// §4.D), so callers get a uniform Token shape whether or not the learner has
// encountered the word before.
func (a *API) handleGetToken(w http.ResponseWriter, r *http.Request) {
	langIdentifier := r.PathValue("lang_identifier")
	orthography := strings.ToLower(r.PathValue("orthography"))

	lang, err := a.resolveLanguage(r, langIdentifier)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tok, ok, err := a.terms.GetTokenByOrthography(r.Context(), lang.ID, orthography)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, models.Unmarked(lang.ID, orthography))
		return
	}
	writeJSON(w, tok)
}

func (a *API) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var tok models.Token
	if err := decodeJSON(r, &tok); err != nil {
		writeError(w, r, err)
		return
	}
	tok.Orthography = strings.ToLower(tok.Orthography)
	created, err := a.terms.CreateToken(r.Context(), tok)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, created)
}

func (a *API) handleUpdateToken(w http.ResponseWriter, r *http.Request) {
	var tok models.Token
	if err := decodeJSON(r, &tok); err != nil {
		writeError(w, r, err)
		return
	}
	tok.Orthography = strings.ToLower(tok.Orthography)
	updated, err := a.terms.UpdateToken(r.Context(), tok)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, updated)
}

// handleDeleteToken deletes the token named by the request body and returns
// an UNMARKED placeholder for its orthography, per spec.md §6.
func (a *API) handleDeleteToken(w http.ResponseWriter, r *http.Request) {
	var tok models.Token
	if err := decodeJSON(r, &tok); err != nil {
		writeError(w, r, err)
		return
	}
	if tok.ID == nil {
		writeError(w, r, apperr.Validation("delete_token: id is required"))
		return
	}
	deleted, err := a.terms.DeleteToken(r.Context(), *tok.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, models.Unmarked(deleted.LangID, deleted.Orthography))
}
