// Package annotate implements the annotation assembler (spec.md §4.C): it
// merges the tokeniser's sentence/token structure with the phrase-fit
// engine's segmentation to produce the final annotated document shape. Term
// dictionary population (token_dict) is left to the caller (the document
// pipeline orchestrator, internal/docpipeline) since it requires a store
// round-trip this package has no business knowing about.
package annotate

import (
	"strings"

	"github.com/influx-reader/influx-server/internal/models"
	"github.com/influx-reader/influx-server/internal/phrasefit"
	"github.com/influx-reader/influx-server/internal/trie"
)

// PhraseTrie indexes candidate phrase orthography sequences, keyed by the
// space-joined lowercase orthography string for payload retrieval.
type PhraseTrie = trie.Trie[string, models.Phrase]

// BuildPhraseTrie constructs a PhraseTrie from a candidate phrase list. Only
// phrases actually fit against a sentence end up in the returned
// AnnotatedDoc's PhraseDict.
func BuildPhraseTrie(phrases []models.Phrase) *PhraseTrie {
	entries := make([]trie.Entry[string, models.Phrase], 0, len(phrases))
	for _, p := range phrases {
		entries = append(entries, trie.Entry[string, models.Phrase]{
			Seq:        p.OrthographySeq,
			Payload:    p,
			HasPayload: true,
		})
	}
	return trie.FromEntriesWithPayloads(entries)
}

// Assemble fits phrases into raw (the tokeniser's pre-phrase-fit output,
// copied by value into a fresh result so repeated calls over the same raw
// doc and trie are side-effect free and bit-identical — spec.md §8's
// round-trip property) and returns the resulting AnnotatedDoc, with
// PhraseDict populated for every phrase that actually matched and
// OrthographySet/LemmaSet recomputed from the (possibly re-nested) segments.
func Assemble(raw *models.AnnotatedDoc, pt *PhraseTrie) *models.AnnotatedDoc {
	out := &models.AnnotatedDoc{
		Text:           raw.Text,
		OrthographySet: make(map[string]bool),
		LemmaSet:       make(map[string]bool),
		PhraseDict:     make(map[string]models.Phrase),
	}

	out.Segments = make([]models.DocSeg, len(raw.Segments))
	for i, seg := range raw.Segments {
		out.Segments[i] = assembleDocSeg(seg, pt, out)
	}

	return out
}

func assembleDocSeg(seg models.DocSeg, pt *PhraseTrie, out *models.AnnotatedDoc) models.DocSeg {
	if seg.Kind != models.DocSegSentence || seg.Sentence == nil {
		return seg
	}

	fitted := fitSentence(seg.Sentence.Segments, pt, out)
	return models.DocSeg{
		Text:      seg.Text,
		StartChar: seg.StartChar,
		EndChar:   seg.EndChar,
		Kind:      models.DocSegSentence,
		Sentence:  &models.Sentence{Segments: fitted},
	}
}

// fitSentence runs the phrase-fit DP over the sentence's TokenCst children
// and stitches any non-trivial match back into the mixed token/whitespace
// stream, per spec.md §4.C steps 1-3. It also records every TokenCst's
// orthography (including those nested under a subword parent or shadowed by
// a PhraseCst) into out.OrthographySet/LemmaSet.
func fitSentence(segments []models.SentSeg, pt *PhraseTrie, out *models.AnnotatedDoc) []models.SentSeg {
	type tokenRef struct {
		segIdx      int // index into segments
		orthography string
	}
	var tokens []tokenRef
	for i, s := range segments {
		if s.Kind != models.SentSegToken || s.TokenCst == nil {
			continue
		}
		recordOrthography(s, out)
		tokens = append(tokens, tokenRef{segIdx: i, orthography: s.TokenCst.Orthography})
	}

	if len(tokens) == 0 {
		return segments
	}

	orthos := make([]string, len(tokens))
	for i, tr := range tokens {
		orthos[i] = tr.orthography
	}
	slices := phrasefit.Fit(orthos, pt)

	result := make([]models.SentSeg, 0, len(segments))
	cursor := 0 // next unconsumed index into `segments`
	for _, sl := range slices {
		if sl.Len() < 2 {
			continue // singleton: assembler leaves it untouched
		}
		segStart := tokens[sl.Start].segIdx
		segEnd := tokens[sl.End-1].segIdx // inclusive

		// Everything between cursor and segStart is untouched (whitespace,
		// or prior singleton tokens already appended by earlier iterations).
		result = append(result, segments[cursor:segStart]...)

		components := make([]models.SentSeg, segEnd-segStart+1)
		copy(components, segments[segStart:segEnd+1])

		normalised := strings.Join(orthos[sl.Start:sl.End], " ")
		first, last := segments[segStart], segments[segEnd]
		phraseSeg := models.SentSeg{
			SentenceIdx: first.SentenceIdx,
			Text:        out.Text[first.StartChar:last.EndChar],
			StartChar:   first.StartChar,
			EndChar:     last.EndChar,
			Kind:        models.SentSegPhrase,
			PhraseCst: &models.PhraseCst{
				NormalisedOrthography: normalised,
				Components:            components,
			},
		}
		result = append(result, phraseSeg)

		if phrase, ok := lookupPhrasePayload(pt, orthos[sl.Start:sl.End]); ok {
			out.PhraseDict[normalised] = phrase
		}

		cursor = segEnd + 1
	}
	result = append(result, segments[cursor:]...)

	return result
}

func lookupPhrasePayload(pt *PhraseTrie, seq []string) (models.Phrase, bool) {
	terminal, payload, hasPayload := pt.Lookup(seq)
	if !terminal || !hasPayload {
		return models.Phrase{}, false
	}
	return payload, true
}

// recordOrthography contributes a TokenCst's orthography/lemma, and those of
// any nested subwords, to the running sets. Subwords are never
// phrase-matched but still count toward the sets (spec.md §3).
func recordOrthography(s models.SentSeg, out *models.AnnotatedDoc) {
	if s.TokenCst == nil {
		return
	}
	out.OrthographySet[s.TokenCst.Orthography] = true
	if s.TokenCst.Lemma != "" {
		out.LemmaSet[s.TokenCst.Lemma] = true
	}
	for _, sub := range s.TokenCst.Subwords {
		if sub.TokenCst == nil {
			continue
		}
		out.OrthographySet[sub.TokenCst.Orthography] = true
		if sub.TokenCst.Lemma != "" {
			out.LemmaSet[sub.TokenCst.Lemma] = true
		}
	}
}

