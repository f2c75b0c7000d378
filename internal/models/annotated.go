package models

import "encoding/json"

// AnnotatedDoc is the phrase-fitted, dictionary-annotated view of a source
// document (spec.md §3).
type AnnotatedDoc struct {
	Text           string             `json:"text"`
	Segments       []DocSeg           `json:"segments"`
	OrthographySet map[string]bool    `json:"orthography_set"`
	LemmaSet       map[string]bool    `json:"lemma_set"`
	TokenDict      map[string]Token   `json:"token_dict,omitempty"`
	PhraseDict     map[string]Phrase  `json:"phrase_dict,omitempty"`
}

// DocSegKind discriminates the DocSeg.Inner variant.
type DocSegKind int

const (
	DocSegSentence DocSegKind = iota
	DocSegWhitespace
)

// DocSeg is a top-level segment of the document: either a sentence or
// inter-sentence whitespace. Spans are char offsets into AnnotatedDoc.Text.
type DocSeg struct {
	Text       string     `json:"text"`
	StartChar  int        `json:"start_char"`
	EndChar    int        `json:"end_char"`
	Kind       DocSegKind `json:"-"`
	Sentence   *Sentence  `json:"sentence,omitempty"`
}

// Sentence holds the ordered SentSeg children of a DocSegSentence.
type Sentence struct {
	Segments []SentSeg `json:"segments"`
}

// SentSegKind discriminates the SentSeg.Inner variant.
type SentSegKind int

const (
	SentSegToken SentSegKind = iota
	SentSegPhrase
	SentSegWhitespace
)

// SentSeg is a node inside a sentence: a lexical token, a matched phrase
// covering >=2 tokens, or whitespace. Kind discriminates the variant: a token
// sets TokenCst, a phrase sets PhraseCst, whitespace sets neither.
type SentSeg struct {
	SentenceIdx int               `json:"sentence_idx"`
	Text        string            `json:"text"`
	StartChar   int               `json:"start_char"`
	EndChar     int               `json:"end_char"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Kind        SentSegKind       `json:"-"`
	TokenCst    *TokenCst         `json:"token,omitempty"`
	PhraseCst   *PhraseCst        `json:"phrase,omitempty"`
}

// TokenCst is a single lexical token. Subwords (pieces of a composite
// surface form split by the tokeniser, e.g. "Let's" -> "Let", "'s") are
// nested here and never independently phrase-matched.
type TokenCst struct {
	Idx         int        `json:"idx"`
	Orthography string     `json:"orthography"`
	Lemma       string     `json:"lemma,omitempty"`
	Subwords    []SentSeg  `json:"subwords,omitempty"`
}

// PhraseCst covers a contiguous run of >=2 TokenCst SentSegs (plus any
// whitespace between them) matched against the phrase trie.
type PhraseCst struct {
	NormalisedOrthography string    `json:"normalised_orthography"`
	Components            []SentSeg `json:"components"`
}

// NewAnnotatedDoc builds an AnnotatedDoc with initialized sets, avoiding a
// nil-map panic on first insert.
func NewAnnotatedDoc(text string) *AnnotatedDoc {
	return &AnnotatedDoc{
		Text:           text,
		OrthographySet: make(map[string]bool),
		LemmaSet:       make(map[string]bool),
	}
}

// docSegWire and sentSegWire mirror DocSeg/SentSeg's wire tags without the
// Kind field, so UnmarshalJSON can decode into them and then
// re-derive Kind from which variant pointer came back non-nil. Kind itself
// is tagged json:"-" because the wire shape (the tokeniser's own output,
// spec.md §6) has no discriminant field — variant membership is implicit in
// which of Sentence/TokenCst/PhraseCst is present.
type docSegWire struct {
	Text      string    `json:"text"`
	StartChar int       `json:"start_char"`
	EndChar   int       `json:"end_char"`
	Sentence  *Sentence `json:"sentence,omitempty"`
}

func (d *DocSeg) UnmarshalJSON(data []byte) error {
	var w docSegWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	d.Text, d.StartChar, d.EndChar, d.Sentence = w.Text, w.StartChar, w.EndChar, w.Sentence
	if d.Sentence != nil {
		d.Kind = DocSegSentence
	} else {
		d.Kind = DocSegWhitespace
	}
	return nil
}

type sentSegWire struct {
	SentenceIdx int               `json:"sentence_idx"`
	Text        string            `json:"text"`
	StartChar   int               `json:"start_char"`
	EndChar     int               `json:"end_char"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	TokenCst    *TokenCst         `json:"token,omitempty"`
	PhraseCst   *PhraseCst        `json:"phrase,omitempty"`
}

func (s *SentSeg) UnmarshalJSON(data []byte) error {
	var w sentSegWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.SentenceIdx, s.Text, s.StartChar, s.EndChar, s.Attributes = w.SentenceIdx, w.Text, w.StartChar, w.EndChar, w.Attributes
	s.TokenCst, s.PhraseCst = w.TokenCst, w.PhraseCst
	switch {
	case w.PhraseCst != nil:
		s.Kind = SentSegPhrase
	case w.TokenCst != nil:
		s.Kind = SentSegToken
	default:
		s.Kind = SentSegWhitespace
	}
	return nil
}
