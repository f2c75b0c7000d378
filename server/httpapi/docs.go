package httpapi

import (
	"net/http"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/models"
)

// resolveLanguage looks up the language addressed by a lang_identifier path
// segment (its code), returning a NotFound apperr if absent.
func (a *API) resolveLanguage(r *http.Request, identifier string) (models.Language, error) {
	lang, ok, err := a.languages.GetLanguageByCode(r.Context(), identifier)
	if err != nil {
		return models.Language{}, err
	}
	if !ok {
		return models.Language{}, apperr.NotFound("language %q not found", identifier)
	}
	return lang, nil
}

func (a *API) handleListDocs(w http.ResponseWriter, r *http.Request) {
	langIdentifier := r.PathValue("lang_identifier")
	if _, err := a.resolveLanguage(r, langIdentifier); err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := a.content.List(langIdentifier)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, entries)
}

// termDict mirrors the `term_dict = {token_dict, phrase_dict}` shape of
// spec.md §4.F step 8, surfaced alongside (not instead of) annotated_doc's
// own TokenDict/PhraseDict fields.
type termDict struct {
	TokenDict  map[string]models.Token  `json:"token_dict"`
	PhraseDict map[string]models.Phrase `json:"phrase_dict"`
}

type getDocResponse struct {
	Metadata     models.DocMetadata  `json:"metadata"`
	LangID       int64               `json:"lang_id"`
	Text         string              `json:"text"`
	AnnotatedDoc *models.AnnotatedDoc `json:"annotated_doc"`
	TermDict     termDict            `json:"term_dict"`
}

func (a *API) handleGetDoc(w http.ResponseWriter, r *http.Request) {
	langIdentifier := r.PathValue("lang_identifier")
	file := r.PathValue("file")

	lang, err := a.resolveLanguage(r, langIdentifier)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metadata, text, err := a.content.Read(langIdentifier, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := a.pipeline.Annotate(r.Context(), lang.ID, lang.Code, text)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, getDocResponse{
		Metadata:     metadata,
		LangID:       lang.ID,
		Text:         text,
		AnnotatedDoc: doc,
		TermDict:     termDict{TokenDict: doc.TokenDict, PhraseDict: doc.PhraseDict},
	})
}
