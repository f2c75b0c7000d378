package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/influx-reader/influx-server/internal/config"
	"github.com/influx-reader/influx-server/internal/contentstore"
	"github.com/influx-reader/influx-server/internal/db"
	"github.com/influx-reader/influx-server/internal/docpipeline"
	"github.com/influx-reader/influx-server/internal/fsrs"
	"github.com/influx-reader/influx-server/internal/models"
	"github.com/influx-reader/influx-server/internal/nlpcache"
	"github.com/influx-reader/influx-server/internal/stardict"
	"github.com/influx-reader/influx-server/internal/store"
	"github.com/influx-reader/influx-server/internal/tokeniser"
	"github.com/influx-reader/influx-server/internal/translate"
)

// fakeTokeniserDoc is a minimal single-token sentence.
func fakeTokeniserDoc(text string) models.AnnotatedDoc {
	return models.AnnotatedDoc{
		Text: text,
		Segments: []models.DocSeg{
			{
				Text: text, StartChar: 0, EndChar: len(text), Kind: models.DocSegSentence,
				Sentence: &models.Sentence{Segments: []models.SentSeg{
					{SentenceIdx: 0, Text: text, StartChar: 0, EndChar: len(text), Kind: models.SentSegToken, TokenCst: &models.TokenCst{Idx: 0, Orthography: text}},
				}},
			},
		},
	}
}

func newTestAPI(t *testing.T) (*API, int64) {
	t.Helper()

	tokSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Text string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(fakeTokeniserDoc(req.Text))
	}))
	t.Cleanup(tokSrv.Close)

	conn, err := db.Open(db.ChoiceSurrealMemory, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	languages := store.NewLanguageStore(conn.Conn())
	lang, err := languages.CreateLanguage(context.Background(), models.Language{Name: "English", Code: "en"})
	if err != nil {
		t.Fatalf("CreateLanguage: %v", err)
	}

	terms := store.New(conn.Conn())
	cards := store.NewCardStore(conn.Conn())
	fsrsConfigs := store.NewFSRSConfigStore(conn.Conn())
	applier := fsrs.NewApplier(conn.Conn(), cards)

	contentDir := t.TempDir()
	content := contentstore.New(contentDir)
	if err := content.Write("en", "hello.md", models.DocMetadata{Title: "Hello"}, "hello"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	cache := nlpcache.New(filepath.Join(t.TempDir(), "_influx_nlp_cache"))
	tok := tokeniser.New(tokSrv.URL, time.Second)
	pipeline := docpipeline.New(cache, tok, terms)

	translateSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"translations":[{"text":"bonjour"}]}`))
	}))
	t.Cleanup(translateSrv.Close)
	translateClient := translate.New(translate.Config{DeepLAPIKey: "k", DeepLAPIURL: translateSrv.URL})

	dicts := stardict.NewManager()

	api := New(config.Default(), languages, terms, cards, fsrsConfigs, applier, pipeline, content, translateClient, dicts)
	return api, lang.ID
}

func (a *API) testServer() *httptest.Server {
	mux := http.NewServeMux()
	a.Routes(mux)
	return httptest.NewServer(mux)
}

func TestHandleTestLiveness(t *testing.T) {
	api, _ := newTestAPI(t)
	srv := api.testServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/test")
	if err != nil {
		t.Fatalf("GET /test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}
}

func TestListAndGetLanguage(t *testing.T) {
	api, langID := newTestAPI(t)
	srv := api.testServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/lang")
	if err != nil {
		t.Fatalf("GET /lang: %v", err)
	}
	defer resp.Body.Close()
	var langs []models.Language
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(langs) != 1 || langs[0].Code != "en" {
		t.Fatalf("got %+v, want one English language", langs)
	}

	resp2, err := http.Get(srv.URL + "/lang/" + itoa(langID))
	if err != nil {
		t.Fatalf("GET /lang/{id}: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp2.StatusCode)
	}
}

func TestGetLanguageMissingIs404(t *testing.T) {
	api, _ := newTestAPI(t)
	srv := api.testServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/lang/99999")
	if err != nil {
		t.Fatalf("GET /lang/{id}: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", resp.StatusCode)
	}
}

func TestGetTokenUnseenReturnsUnmarkedPlaceholder(t *testing.T) {
	api, _ := newTestAPI(t)
	srv := api.testServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/vocab/token/en/zebra")
	if err != nil {
		t.Fatalf("GET /vocab/token: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}
	var tok models.Token
	json.NewDecoder(resp.Body).Decode(&tok)
	if tok.Status != models.StatusUnmarked || tok.Orthography != "zebra" {
		t.Fatalf("got %+v, want an UNMARKED placeholder for zebra", tok)
	}
}

func TestCreateTokenThenLookup(t *testing.T) {
	api, langID := newTestAPI(t)
	srv := api.testServer()
	defer srv.Close()

	body, _ := json.Marshal(models.Token{LangID: langID, Orthography: "Cat", Status: models.StatusL1})
	resp, err := http.Post(srv.URL+"/vocab/create_token", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST create_token: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}

	resp2, err := http.Get(srv.URL + "/vocab/token/en/cat")
	if err != nil {
		t.Fatalf("GET /vocab/token: %v", err)
	}
	defer resp2.Body.Close()
	var tok models.Token
	json.NewDecoder(resp2.Body).Decode(&tok)
	if tok.Status != models.StatusL1 {
		t.Fatalf("got %+v, want L1 status", tok)
	}
}

func TestCreateTokenConflictIs409(t *testing.T) {
	api, langID := newTestAPI(t)
	srv := api.testServer()
	defer srv.Close()

	body, _ := json.Marshal(models.Token{LangID: langID, Orthography: "dup", Status: models.StatusL1})
	http.Post(srv.URL+"/vocab/create_token", "application/json", bytes.NewReader(body))

	resp, err := http.Post(srv.URL+"/vocab/create_token", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST create_token: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("got status %d, want 409", resp.StatusCode)
	}
}

func TestGetDocReturnsAnnotatedDoc(t *testing.T) {
	api, langID := newTestAPI(t)
	srv := api.testServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/docs/en/hello.md")
	if err != nil {
		t.Fatalf("GET /docs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}
	var got getDocResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.LangID != langID || got.Text != "hello" {
		t.Fatalf("got %+v", got)
	}
	if got.AnnotatedDoc == nil || len(got.AnnotatedDoc.Segments) == 0 {
		t.Fatalf("expected a populated annotated doc")
	}
}

func TestListDocsUnknownLanguageIs404(t *testing.T) {
	api, _ := newTestAPI(t)
	srv := api.testServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/docs/xx")
	if err != nil {
		t.Fatalf("GET /docs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", resp.StatusCode)
	}
}

func TestTermEditCreatesToken(t *testing.T) {
	api, langID := newTestAPI(t)
	srv := api.testServer()
	defer srv.Close()

	reqBody := []byte(`{"requested_action":"CreateTerm","term":{"token":{"lang_id":` + itoa(langID) + `,"orthography":"dog","status":"L2"}}}`)
	resp, err := http.Post(srv.URL+"/term/edit", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		t.Fatalf("POST /term/edit: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}
	var got termEditResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Term.Token == nil || got.Term.Token.Orthography != "dog" {
		t.Fatalf("got %+v, want a created token named dog", got)
	}
	if got.PerformedAction != actionCreateTerm {
		t.Fatalf("got performed_action %q, want CreateTerm", got.PerformedAction)
	}
}

func TestTranslateDeepL(t *testing.T) {
	api, langID := newTestAPI(t)
	srv := api.testServer()
	defer srv.Close()

	body, _ := json.Marshal(translateRequest{FromLangID: langID, ToLangID: langID, SourceSequence: "hello", Provider: "deepl"})
	resp, err := http.Post(srv.URL+"/extern/translate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /extern/translate: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}
	var got translateResponse
	json.NewDecoder(resp.Body).Decode(&got)
	if got.TranslatedText != "bonjour" {
		t.Fatalf("got %q, want bonjour", got.TranslatedText)
	}
}

func TestDictionaryLookupMissingParamsIs400(t *testing.T) {
	api, _ := newTestAPI(t)
	srv := api.testServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/dictionary/lookup")
	if err != nil {
		t.Fatalf("GET /dictionary/lookup: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", resp.StatusCode)
	}
}

func TestDictionaryLookupReturnsDefinitions(t *testing.T) {
	api, _ := newTestAPI(t)
	srv := api.testServer()
	defer srv.Close()

	dictPath := filepath.Join(t.TempDir(), "en.dict")
	if err := os.WriteFile(dictPath, []byte("cat\ta small domesticated carnivore\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	resp, err := http.Get(srv.URL + "/dictionary/lookup?dict_path=" + url.QueryEscape(dictPath) + "&query=cat")
	if err != nil {
		t.Fatalf("GET /dictionary/lookup: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}
	var defs []string
	json.NewDecoder(resp.Body).Decode(&defs)
	if len(defs) != 1 || defs[0] != "a small domesticated carnivore" {
		t.Fatalf("got %v", defs)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
