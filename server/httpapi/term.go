package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/models"
)

// termAction is the requested_action discriminant of POST /term/edit
// (spec.md §6).
type termAction string

const (
	actionCreateTerm termAction = "CreateTerm"
	actionUpdateTerm termAction = "UpdateTerm"
	actionDeleteTerm termAction = "DeleteTerm"
)

// termVariant mirrors models.SentSeg's TokenCst/PhraseCst split: exactly one
// of Token/Phrase is set, inferred from which arrived on the wire rather
// than from an explicit tag, matching how the tokeniser's own output
// discriminates DocSeg/SentSeg elsewhere in this codebase.
type termVariant struct {
	Token  *models.Token
	Phrase *models.Phrase
}

type termVariantWire struct {
	Token  *models.Token  `json:"token,omitempty"`
	Phrase *models.Phrase `json:"phrase,omitempty"`
}

func (t *termVariant) UnmarshalJSON(data []byte) error {
	var w termVariantWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t.Token, t.Phrase = w.Token, w.Phrase
	return nil
}

func (t termVariant) MarshalJSON() ([]byte, error) {
	return json.Marshal(termVariantWire{Token: t.Token, Phrase: t.Phrase})
}

// docPath addresses the document a term edit should re-annotate, reusing
// the cache (spec.md §4.F's "repeat steps 3-7" note) rather than a fresh
// tokeniser round trip.
type docPath struct {
	Lang string `json:"lang"`
	File string `json:"file"`
}

type termEditRequest struct {
	RequestedAction termAction   `json:"requested_action"`
	Term            termVariant  `json:"term"`
	DocPath         *docPath     `json:"doc_path,omitempty"`
}

type termEditResponse struct {
	Term                termVariant         `json:"term"`
	PerformedAction     termAction          `json:"performed_action"`
	UpdatedAnnotatedDoc *models.AnnotatedDoc `json:"updated_annotated_doc,omitempty"`
}

func (a *API) handleTermEdit(w http.ResponseWriter, r *http.Request) {
	var req termEditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := a.applyTermEdit(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := termEditResponse{Term: result, PerformedAction: req.RequestedAction}
	if req.DocPath != nil {
		doc, err := a.reannotateForTermEdit(r.Context(), *req.DocPath)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.UpdatedAnnotatedDoc = doc
	}
	writeJSON(w, resp)
}

// applyTermEdit dispatches (requested_action, term variant) to the matching
// TermStore method, mirroring the six-way match of spec.md §6's /term/edit.
func (a *API) applyTermEdit(ctx context.Context, req termEditRequest) (termVariant, error) {
	switch {
	case req.Term.Token != nil:
		tok := *req.Term.Token
		tok.Orthography = strings.ToLower(tok.Orthography)

		var result models.Token
		var err error
		switch req.RequestedAction {
		case actionCreateTerm:
			result, err = a.terms.CreateToken(ctx, tok)
		case actionUpdateTerm:
			result, err = a.terms.UpdateToken(ctx, tok)
		case actionDeleteTerm:
			if tok.ID == nil {
				return termVariant{}, apperr.Validation("term/edit: delete requires token id")
			}
			deleted, delErr := a.terms.DeleteToken(ctx, *tok.ID)
			result, err = models.Unmarked(deleted.LangID, deleted.Orthography), delErr
		default:
			return termVariant{}, apperr.Validation("term/edit: unknown requested_action %q", req.RequestedAction)
		}
		if err != nil {
			return termVariant{}, err
		}
		return termVariant{Token: &result}, nil

	case req.Term.Phrase != nil:
		ph := *req.Term.Phrase
		ph.OrthographySeq = normaliseSeq(ph.OrthographySeq)

		var result models.Phrase
		var err error
		switch req.RequestedAction {
		case actionCreateTerm:
			result, err = a.terms.CreatePhrase(ctx, ph)
		case actionUpdateTerm:
			result, err = a.terms.UpdatePhrase(ctx, ph)
		case actionDeleteTerm:
			if ph.ID == nil {
				return termVariant{}, apperr.Validation("term/edit: delete requires phrase id")
			}
			result, err = a.terms.DeletePhrase(ctx, *ph.ID)
		default:
			return termVariant{}, apperr.Validation("term/edit: unknown requested_action %q", req.RequestedAction)
		}
		if err != nil {
			return termVariant{}, err
		}
		return termVariant{Phrase: &result}, nil

	default:
		return termVariant{}, apperr.Validation("term/edit: term must set either token or phrase")
	}
}

// reannotateForTermEdit re-runs phrase fitting over the cached tokenisation
// of path's document without repopulating TokenDict, per spec.md §4.F's note
// that term-edit re-annotation "skips token dict population".
func (a *API) reannotateForTermEdit(ctx context.Context, path docPath) (*models.AnnotatedDoc, error) {
	lang, ok, err := a.languages.GetLanguageByCode(ctx, path.Lang)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("language %q not found", path.Lang)
	}

	_, text, err := a.content.Read(path.Lang, path.File)
	if err != nil {
		return nil, err
	}

	doc, err := a.pipeline.Annotate(ctx, lang.ID, lang.Code, text)
	if err != nil {
		return nil, err
	}
	doc.TokenDict = nil
	return doc, nil
}
