package httpapi

import (
	"log"
	"net/http"
	"os/exec"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/translate"
)

// handleMacOSDict backs GET /extern/macos_dict/{lang}/{orthography}: a
// fire-and-forget `open dict:///{orthography}` that hands the lookup to the
// OS Dictionary app. lang is accepted for symmetry with the rest of the
// external surface but the macOS dictionary protocol has no language
// parameter to pass it through to.
func (a *API) handleMacOSDict(w http.ResponseWriter, r *http.Request) {
	orthography := r.PathValue("orthography")
	cmd := exec.Command("open", "dict:///"+orthography)
	if err := cmd.Start(); err != nil {
		log.Printf("httpapi: open macOS dictionary for %q: %v", orthography, err)
	}
	w.WriteHeader(http.StatusAccepted)
}

type translateRequest struct {
	FromLangID     int64  `json:"from_lang_id"`
	ToLangID       int64  `json:"to_lang_id"`
	SourceSequence string `json:"source_sequence"`
	Provider       string `json:"provider"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

func (a *API) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	fromLang, ok, err := a.languages.GetLanguage(r.Context(), req.FromLangID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.NotFound("language %d not found", req.FromLangID))
		return
	}
	toLang, ok, err := a.languages.GetLanguage(r.Context(), req.ToLangID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.NotFound("language %d not found", req.ToLangID))
		return
	}

	translated, err := a.translate.Translate(r.Context(), translate.Provider(req.Provider), fromLang.Code, toLang.Code, req.SourceSequence)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, translateResponse{TranslatedText: translated})
}
