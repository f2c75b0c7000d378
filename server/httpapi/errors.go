// Package httpapi exposes the HTTP surface of spec.md §6 over the core
// packages: language registry, content store, term/phrase CRUD, the
// annotation pipeline, translation, and dictionary lookup. No route applies
// FSRS reviews. It follows the teacher's server/handlers idiom (a struct holding
// every dependency, one method per route, json.NewDecoder/Encoder +
// http.Error for the wire format) adapted onto net/http.ServeMux's Go 1.22+
// pattern routing instead of the teacher's hand-rolled path parsing.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/influx-reader/influx-server/internal/apperr"
)

// statusFor maps an apperr.Kind to the HTTP status spec.md §7 specifies.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and sends a status+message appropriate to its kind.
// Internal/Storage/IO failures are logged with full detail but only a
// generic message crosses the wire, matching the teacher's handlers never
// leaking internal error text for 500s.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		log.Printf("httpapi: %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

// writeJSON encodes v as the response body with a 200 status. A failure to
// encode at this point means v itself is broken, not a request to handle
// differently, so it is logged and otherwise ignored.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpapi: encode response: %v", err)
	}
}

// decodeJSON reads and decodes r's body into v, returning a Validation error
// on malformed JSON.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}
