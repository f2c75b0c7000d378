// Package nlpcache implements the content-addressed cache of tokeniser
// output described in spec.md §4.E. It never raises: a failed read is a
// miss, a failed write is logged and ignored (§7), so the document pipeline
// orchestrator (internal/docpipeline) never has to distinguish "cache
// unavailable" from "cache miss".
package nlpcache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/influx-reader/influx-server/internal/models"
)

// Cache is a directory of `{md5}.nlp` files, each a JSON-serialised
// models.AnnotatedDoc (pre phrase-fit, pre token_dict/phrase_dict).
type Cache struct {
	dir string
}

// New returns a Cache rooted at dir. The directory is provisioned lazily on
// first Store, not here (spec.md §4.E: "provisioned lazily").
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key hashes text with MD5, matching spec.md §4.E's key scheme.
func Key(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".nlp")
}

// Load returns the cached doc for key only if its embedded text matches
// expectedText exactly, guarding against hash collisions and stale entries
// from a key namespace reused across runs. Any failure (missing file, bad
// JSON, mismatched text) is treated as a miss, never an error.
func (c *Cache) Load(key, expectedText string) (*models.AnnotatedDoc, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var doc models.AnnotatedDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("nlpcache: corrupt entry %s: %v", key, err)
		return nil, false
	}
	if doc.Text != expectedText {
		return nil, false
	}
	return &doc, true
}

// Store writes doc under key, atomically (tmpfile + rename) so a reader
// never observes a partially-written entry. Failures are logged and
// swallowed: a cache write is an optimisation, not a correctness dependency.
func (c *Cache) Store(key string, doc *models.AnnotatedDoc) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		log.Printf("nlpcache: provision %s: %v", c.dir, err)
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		log.Printf("nlpcache: marshal entry %s: %v", key, err)
		return
	}

	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		log.Printf("nlpcache: create temp file for %s: %v", key, err)
		return
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		log.Printf("nlpcache: write temp file for %s: %v", key, err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		log.Printf("nlpcache: close temp file for %s: %v", key, err)
		return
	}
	if err := os.Rename(tmpPath, c.path(key)); err != nil {
		os.Remove(tmpPath)
		log.Printf("nlpcache: rename temp file for %s: %v", key, err)
		return
	}
}
