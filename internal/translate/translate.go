// Package translate backs POST /extern/translate (spec.md §6). Google Cloud
// Translation v3 is bearer-token authenticated, so the Google path reuses
// golang.org/x/oauth2 the way any Google API client does: a static token
// source wrapped into an *http.Client via oauth2. DeepL instead uses a plain
// API-key header, so its path is a bare http.Client.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/influx-reader/influx-server/internal/apperr"
)

// Provider selects the upstream translation backend.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderDeepL  Provider = "deepl"
)

// Client dispatches translation requests to either provider.
type Client struct {
	googleHTTP   *http.Client
	googleAPIURL string
	deeplAPIKey  string
	deeplAPIURL  string
	plainHTTP    *http.Client
}

// Config carries the credentials/endpoints for both providers. Either half
// may be left zero if that provider is not in use — the call fails with an
// Internal error if invoked without configuration.
type Config struct {
	GoogleAccessToken string // OAuth2 bearer token for Cloud Translation v3
	GoogleAPIURL      string // e.g. https://translation.googleapis.com/v3/projects/{project}:translateText
	DeepLAPIKey       string
	DeepLAPIURL       string // e.g. https://api-free.deepl.com/v2/translate
}

// New builds a Client. The Google half's *http.Client is produced via
// oauth2.StaticTokenSource + oauth2.NewClient so every outbound request
// automatically carries "Authorization: Bearer <token>".
func New(cfg Config) *Client {
	var googleHTTP *http.Client
	if cfg.GoogleAccessToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GoogleAccessToken})
		googleHTTP = oauth2.NewClient(context.Background(), src)
	} else {
		googleHTTP = http.DefaultClient
	}
	return &Client{
		googleHTTP:   googleHTTP,
		googleAPIURL: cfg.GoogleAPIURL,
		deeplAPIKey:  cfg.DeepLAPIKey,
		deeplAPIURL:  cfg.DeepLAPIURL,
		plainHTTP:    http.DefaultClient,
	}
}

// Translate dispatches to the requested provider and returns the translated
// text, or an Upstream error (spec.md §7) on any failure.
func (c *Client) Translate(ctx context.Context, provider Provider, sourceLang, targetLang, sourceSequence string) (string, error) {
	switch provider {
	case ProviderGoogle:
		return c.translateGoogle(ctx, sourceLang, targetLang, sourceSequence)
	case ProviderDeepL:
		return c.translateDeepL(ctx, sourceLang, targetLang, sourceSequence)
	default:
		return "", apperr.Validation("translate: unknown provider %q", provider)
	}
}

type googleRequest struct {
	Contents           []string `json:"contents"`
	SourceLanguageCode string   `json:"sourceLanguageCode"`
	TargetLanguageCode string   `json:"targetLanguageCode"`
	MimeType           string   `json:"mimeType"`
}

type googleResponse struct {
	Translations []struct {
		TranslatedText string `json:"translatedText"`
	} `json:"translations"`
}

func (c *Client) translateGoogle(ctx context.Context, sourceLang, targetLang, text string) (string, error) {
	if c.googleAPIURL == "" {
		return "", apperr.Internal("translate: google provider not configured")
	}
	reqBody, err := json.Marshal(googleRequest{
		Contents:           []string{text},
		SourceLanguageCode: sourceLang,
		TargetLanguageCode: targetLang,
		MimeType:           "text/plain",
	})
	if err != nil {
		return "", apperr.Internal("translate: encode google request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.googleAPIURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", apperr.Internal("translate: build google request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.googleHTTP.Do(req)
	if err != nil {
		return "", apperr.Upstream(err, "google translate request")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", apperr.Upstream(fmt.Errorf("status %d: %s", resp.StatusCode, snippet), "google translate request")
	}

	var out googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Upstream(err, "google translate: decode response")
	}
	if len(out.Translations) == 0 {
		return "", apperr.Upstream(fmt.Errorf("empty translations array"), "google translate request")
	}
	return out.Translations[0].TranslatedText, nil
}

type deeplResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

func (c *Client) translateDeepL(ctx context.Context, sourceLang, targetLang, text string) (string, error) {
	if c.deeplAPIURL == "" {
		return "", apperr.Internal("translate: deepl provider not configured")
	}
	form := fmt.Sprintf("text=%s&source_lang=%s&target_lang=%s", url.QueryEscape(text), url.QueryEscape(sourceLang), url.QueryEscape(targetLang))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.deeplAPIURL, bytes.NewReader([]byte(form)))
	if err != nil {
		return "", apperr.Internal("translate: build deepl request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.deeplAPIKey)

	resp, err := c.plainHTTP.Do(req)
	if err != nil {
		return "", apperr.Upstream(err, "deepl translate request")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", apperr.Upstream(fmt.Errorf("status %d: %s", resp.StatusCode, snippet), "deepl translate request")
	}

	var out deeplResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Upstream(err, "deepl translate: decode response")
	}
	if len(out.Translations) == 0 {
		return "", apperr.Upstream(fmt.Errorf("empty translations array"), "deepl translate request")
	}
	return out.Translations[0].Text, nil
}

