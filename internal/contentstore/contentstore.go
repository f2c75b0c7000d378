// Package contentstore implements the on-disk Markdown content layout of
// spec.md §6: `./{lang_identifier}/*.md`, each file YAML front matter
// (delimited by `---` lines) followed by a Markdown body. Front matter is
// split out with gopkg.in/yaml.v3 (the teacher's config-file library,
// reused here for a second, unrelated purpose) by string splitting on the
// delimiter rather than parsed and re-rendered through a Markdown AST —
// goldmark was deliberately not used here; see DESIGN.md.
package contentstore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/influx-reader/influx-server/internal/apperr"
	"github.com/influx-reader/influx-server/internal/models"
)

const frontMatterDelim = "---"

// Store roots the Markdown tree at dir, matching the `--influx-path` CLI
// flag's content root.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) langDir(langIdentifier string) string {
	return filepath.Join(s.dir, langIdentifier)
}

// List returns every document in langIdentifier's directory with its parsed
// front matter, for GET /docs/{lang_identifier}.
func (s *Store) List(langIdentifier string) ([]models.DocEntry, error) {
	dir := s.langDir(langIdentifier)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("no content directory for language %q", langIdentifier)
		}
		return nil, apperr.IO(err, "list documents for %q", langIdentifier)
	}

	var out []models.DocEntry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		_, meta, err := s.readFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, models.DocEntry{File: e.Name(), Metadata: meta})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, nil
}

// Read returns (metadata, body text) for langIdentifier/file, for
// GET /docs/{lang_identifier}/{file}.
func (s *Store) Read(langIdentifier, file string) (models.DocMetadata, string, error) {
	return s.readFile(filepath.Join(s.langDir(langIdentifier), file))
}

func (s *Store) readFile(path string) (models.DocMetadata, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.DocMetadata{}, "", apperr.NotFound("document %s not found", path)
		}
		return models.DocMetadata{}, "", apperr.IO(err, "read document %s", path)
	}
	return splitFrontMatter(string(raw))
}

// Write serialises metadata + body back to langIdentifier/file, preserving
// the same front-matter/body split on the way out.
func (s *Store) Write(langIdentifier, file string, meta models.DocMetadata, body string) error {
	dir := s.langDir(langIdentifier)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperr.IO(err, "create language directory %s", dir)
	}

	fmYAML, err := yaml.Marshal(meta)
	if err != nil {
		return apperr.Internal("contentstore: encode front matter: %v", err)
	}

	var buf strings.Builder
	buf.WriteString(frontMatterDelim)
	buf.WriteByte('\n')
	buf.Write(fmYAML)
	buf.WriteString(frontMatterDelim)
	buf.WriteByte('\n')
	buf.WriteString(body)

	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(buf.String()), 0644); err != nil {
		return apperr.IO(err, "write document %s", path)
	}
	return nil
}

// splitFrontMatter separates a leading `---\n...\n---\n` YAML block from the
// remainder of raw. A file with no front-matter delimiters is treated as a
// document without metadata (empty DocMetadata, full text as body).
func splitFrontMatter(raw string) (models.DocMetadata, string, error) {
	if !strings.HasPrefix(raw, frontMatterDelim) {
		return models.DocMetadata{}, raw, nil
	}
	rest := raw[len(frontMatterDelim):]
	rest = strings.TrimPrefix(rest, "\n")

	end := strings.Index(rest, "\n"+frontMatterDelim)
	if end == -1 {
		return models.DocMetadata{}, raw, nil
	}

	fmBlock := rest[:end]
	body := rest[end+1+len(frontMatterDelim):]
	body = strings.TrimPrefix(body, "\n")

	var meta models.DocMetadata
	if err := yaml.Unmarshal([]byte(fmBlock), &meta); err != nil {
		return models.DocMetadata{}, "", apperr.Validation("invalid front matter: %v", err)
	}
	return meta, body, nil
}
