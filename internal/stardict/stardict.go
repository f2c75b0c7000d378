// Package stardict implements the process-wide dictionary manager of
// spec.md §4.O / §5: a mutex-guarded object memoising opened dictionary
// files by path, backing GET /dictionary/lookup. StarDict (.ifo/.idx/.dict)
// is the de facto open dictionary format; no example repo in this corpus
// ships a StarDict parser, so the on-disk format here is a minimal
// line-oriented ("orthography\tdefinition") text index — the same contract
// the HTTP handler needs, built the way the teacher builds its own small
// line-oriented stores (internal/commands.Indexer's compgen/whatis parsing).
package stardict

import (
	"bufio"
	"os"
	"strings"
	"sync"

	"github.com/influx-reader/influx-server/internal/apperr"
)

// Dictionary is one opened, fully-loaded dictionary file.
type Dictionary struct {
	entries map[string][]string // orthography -> definitions (a word may repeat)
}

func loadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.IO(err, "open dictionary %s", path)
	}
	defer f.Close()

	d := &Dictionary{entries: make(map[string][]string)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		word, def, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		d.entries[word] = append(d.entries[word], def)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.IO(err, "read dictionary %s", path)
	}
	return d, nil
}

// Lookup returns every definition recorded for query, case-sensitive.
func (d *Dictionary) Lookup(query string) []string {
	return d.entries[query]
}

// Manager is the process-wide, mutex-guarded dictionary cache (spec.md §5:
// "a process-wide object guarded by a mutex; it memoises opened
// dictionaries").
type Manager struct {
	mu    sync.Mutex
	cache map[string]*Dictionary
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{cache: make(map[string]*Dictionary)}
}

// Lookup opens (or reuses a cached open of) dictPath and returns the
// definitions for query.
func (m *Manager) Lookup(dictPath, query string) ([]string, error) {
	m.mu.Lock()
	dict, ok := m.cache[dictPath]
	if !ok {
		var err error
		dict, err = loadDictionary(dictPath)
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
		m.cache[dictPath] = dict
	}
	m.mu.Unlock()

	return dict.Lookup(query), nil
}
