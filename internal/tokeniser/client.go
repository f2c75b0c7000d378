// Package tokeniser is the outbound HTTP client for the external tokeniser
// service (spec.md §4.M, §6): POST {nlp_url}/tokeniser/{lang_code} with
// {"text": string}, returning the pre-phrase-fit AnnotatedDoc shape exactly.
package tokeniser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/models"
)

// Client talks to one tokeniser service instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client targeting baseURL (e.g. "http://localhost:8090"),
// with requests bounded by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type tokeniseRequest struct {
	Text string `json:"text"`
}

// Tokenise calls POST {baseURL}/tokeniser/{langCode} and decodes the
// resulting pre-phrase-fit AnnotatedDoc. A non-2xx response, a network
// error, or a context cancellation all surface as a retriable Upstream
// error (spec.md §7).
func (c *Client) Tokenise(ctx context.Context, langCode, text string) (*models.AnnotatedDoc, error) {
	body, err := json.Marshal(tokeniseRequest{Text: text})
	if err != nil {
		return nil, apperr.Internal("tokeniser: encode request: %v", err)
	}

	url := fmt.Sprintf("%s/tokeniser/%s", c.baseURL, langCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Internal("tokeniser: build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Upstream(err, "tokeniser request to %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, apperr.Upstream(fmt.Errorf("status %d: %s", resp.StatusCode, snippet), "tokeniser request to %s", url)
	}

	var doc models.AnnotatedDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, apperr.Upstream(err, "tokeniser: decode response from %s", url)
	}
	return &doc, nil
}
