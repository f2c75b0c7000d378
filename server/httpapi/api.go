package httpapi

import (
	"net/http"

	"github.com/influx-reader/influx-server/internal/config"
	"github.com/influx-reader/influx-server/internal/contentstore"
	"github.com/influx-reader/influx-server/internal/docpipeline"
	"github.com/influx-reader/influx-server/internal/fsrs"
	"github.com/influx-reader/influx-server/internal/stardict"
	"github.com/influx-reader/influx-server/internal/store"
	"github.com/influx-reader/influx-server/internal/translate"
)

// API holds every dependency a route handler needs, mirroring the teacher's
// Handlers struct in server/handlers/handlers.go: one place wiring storage,
// external clients and configuration together, with route methods hung off
// it as receivers.
type API struct {
	cfg *config.Config

	languages  *store.LanguageStore
	terms      *store.TermStore
	cards      *store.CardStore
	fsrsConfig *store.FSRSConfigStore
	applier    *fsrs.Applier

	pipeline  *docpipeline.Pipeline
	content   *contentstore.Store
	translate *translate.Client
	dicts     *stardict.Manager
}

// New wires a API from its constituent packages. Each argument is owned by
// cmd/influxd's startup sequence.
func New(
	cfg *config.Config,
	languages *store.LanguageStore,
	terms *store.TermStore,
	cards *store.CardStore,
	fsrsConfig *store.FSRSConfigStore,
	applier *fsrs.Applier,
	pipeline *docpipeline.Pipeline,
	content *contentstore.Store,
	translateClient *translate.Client,
	dicts *stardict.Manager,
) *API {
	return &API{
		cfg:        cfg,
		languages:  languages,
		terms:      terms,
		cards:      cards,
		fsrsConfig: fsrsConfig,
		applier:    applier,
		pipeline:   pipeline,
		content:    content,
		translate:  translateClient,
		dicts:      dicts,
	}
}

// Routes registers every handler on mux using Go 1.22's method+pattern
// ServeMux syntax, replacing the teacher's manual method-switch-then-prefix-
// match dispatch in server/handlers/handlers.go with routing the standard
// library now does natively.
func (a *API) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /test", a.handleTest)

	mux.HandleFunc("GET /lang", a.handleListLanguages)
	mux.HandleFunc("GET /lang/{id}", a.handleGetLanguage)
	mux.HandleFunc("POST /lang", a.handleCreateLanguage)
	mux.HandleFunc("POST /lang/edit", a.handleUpdateLanguage)
	mux.HandleFunc("DELETE /lang/{id}", a.handleDeleteLanguage)

	mux.HandleFunc("GET /docs/{lang_identifier}", a.handleListDocs)
	mux.HandleFunc("GET /docs/{lang_identifier}/{file}", a.handleGetDoc)

	mux.HandleFunc("GET /vocab/token/{lang_identifier}/{orthography}", a.handleGetToken)
	mux.HandleFunc("POST /vocab/create_token", a.handleCreateToken)
	mux.HandleFunc("POST /vocab/update_token", a.handleUpdateToken)
	mux.HandleFunc("POST /vocab/delete_token", a.handleDeleteToken)

	mux.HandleFunc("POST /phrase/update_phrase", a.handleUpdatePhrase)
	mux.HandleFunc("POST /phrase/delete_phrase", a.handleDeletePhrase)

	mux.HandleFunc("POST /term/edit", a.handleTermEdit)

	mux.HandleFunc("GET /extern/macos_dict/{lang}/{orthography}", a.handleMacOSDict)
	mux.HandleFunc("POST /extern/translate", a.handleTranslate)

	mux.HandleFunc("GET /dictionary/lookup", a.handleDictionaryLookup)
}

func (a *API) handleTest(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
