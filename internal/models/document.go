package models

import "time"

// Document is a piece of source content in a target language.
type Document struct {
	ID        int64     `json:"id"`
	LangID    int64     `json:"lang_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"` // opaque Markdown body, front matter stripped
	DocType   DocType   `json:"doc_type"`
	Tags      []string  `json:"tags"`
	CreatedTS time.Time `json:"created_ts"`
	UpdatedTS time.Time `json:"updated_ts"`
}

// DocMetadata is the YAML front-matter shape stored alongside each document
// on disk (SPEC_FULL.md §4.L).
type DocMetadata struct {
	Title      string    `yaml:"title" json:"title"`
	DocType    DocType   `yaml:"doc_type" json:"doc_type"`
	Tags       []string  `yaml:"tags" json:"tags"`
	DateCreate time.Time `yaml:"date_created" json:"date_created"`
	DateModify time.Time `yaml:"date_modified" json:"date_modified"`
}

// DocEntry is the lightweight listing shape for GET /docs/{lang_identifier}.
type DocEntry struct {
	File     string      `json:"file"`
	Metadata DocMetadata `json:"metadata"`
}
