// Package docpipeline orchestrates the full annotation pipeline (spec.md
// §4.F): cache lookup, tokeniser call, phrase-fit, dictionary population. It
// is the one place that wires together nlpcache (E), tokeniser (M),
// phrasefit (B) via annotate (C), and the term store (D).
package docpipeline

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/influx-reader/influx-server/internal/annotate"
	"github.com/influx-reader/influx-server/internal/models"
	"github.com/influx-reader/influx-server/internal/nlpcache"
	"github.com/influx-reader/influx-server/internal/store"
	"github.com/influx-reader/influx-server/internal/tokeniser"
)

// Pipeline wires the NLP cache, tokeniser client, and term/phrase store
// together behind a single Annotate call.
type Pipeline struct {
	cache     *nlpcache.Cache
	tokeniser *tokeniser.Client
	terms     *store.TermStore
}

func New(cache *nlpcache.Cache, tok *tokeniser.Client, terms *store.TermStore) *Pipeline {
	return &Pipeline{cache: cache, tokeniser: tok, terms: terms}
}

// Annotate produces the fully-annotated document for text in the language
// identified by (langID, langCode): langCode addresses the tokeniser
// service, langID addresses the term store.
//
// Steps (spec.md §4.F):
//  1. cache lookup by MD5(text); on miss, call the tokeniser and store the
//     result (pre phrase-fit).
//  2. collect every token orthography appearing in the raw doc, fetch the
//     candidate phrase set by onset concurrently with the term dictionary —
//     the two queries share no data dependency.
//  3. fit phrases (internal/annotate) over the raw doc using those
//     candidates.
//  4. populate TokenDict/PhraseDict on the assembled result.
func (p *Pipeline) Annotate(ctx context.Context, langID int64, langCode, text string) (*models.AnnotatedDoc, error) {
	raw, err := p.tokenise(ctx, langCode, text)
	if err != nil {
		return nil, err
	}

	orthos := collectOrthographies(raw)
	onsets := make([]string, 0, len(orthos))
	for o := range orthos {
		onsets = append(onsets, o)
	}

	var candidates []models.Phrase
	var tokenDict map[string]models.Token

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = p.terms.QueryPhraseByOnsetOrthographies(gctx, langID, onsets)
		return err
	})
	g.Go(func() error {
		var err error
		tokenDict, err = p.terms.DictFromOrthographySet(gctx, langID, orthos)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	trie := annotate.BuildPhraseTrie(candidates)
	out := annotate.Assemble(raw, trie)
	out.TokenDict = tokenDict
	return out, nil
}

// tokenise serves raw (pre phrase-fit) AnnotatedDoc from the cache if
// present, otherwise calls the tokeniser and populates the cache for next
// time.
func (p *Pipeline) tokenise(ctx context.Context, langCode, text string) (*models.AnnotatedDoc, error) {
	key := nlpcache.Key(text)
	if doc, ok := p.cache.Load(key, text); ok {
		return doc, nil
	}

	doc, err := p.tokeniser.Tokenise(ctx, langCode, text)
	if err != nil {
		return nil, err
	}
	p.cache.Store(key, doc)
	return doc, nil
}

// collectOrthographies gathers every lowercase token orthography appearing
// anywhere in raw, including subwords, for the dict/phrase-candidate
// queries' IN clauses.
func collectOrthographies(raw *models.AnnotatedDoc) map[string]bool {
	out := make(map[string]bool)
	for _, seg := range raw.Segments {
		if seg.Kind != models.DocSegSentence || seg.Sentence == nil {
			continue
		}
		for _, s := range seg.Sentence.Segments {
			collectSentSeg(s, out)
		}
	}
	return out
}

func collectSentSeg(s models.SentSeg, out map[string]bool) {
	if s.TokenCst == nil {
		return
	}
	out[strings.ToLower(s.TokenCst.Orthography)] = true
	for _, sub := range s.TokenCst.Subwords {
		collectSentSeg(sub, out)
	}
}
