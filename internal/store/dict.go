package store

import (
	"context"
	"strings"

	"github.com/influx-reader/influx-server/internal/models"
)

// DictFromOrthographySet performs the set query and returns exactly one entry
// per requested orthography: the real token where one exists, otherwise a
// synthetic UNMARKED placeholder (spec.md §4.D).
func (s *TermStore) DictFromOrthographySet(ctx context.Context, langID int64, orthographies map[string]bool) (map[string]models.Token, error) {
	out := make(map[string]models.Token, len(orthographies))
	for o := range orthographies {
		out[o] = models.Unmarked(langID, o)
	}
	if len(orthographies) == 0 {
		return out, nil
	}

	list := make([]string, 0, len(orthographies))
	for o := range orthographies {
		list = append(list, o)
	}
	found, err := s.GetTokensByOrthographies(ctx, langID, list)
	if err != nil {
		return nil, err
	}
	for _, tok := range found {
		out[tok.Orthography] = tok
	}
	return out, nil
}

// DictFromOrthographySeq lowercases seq and delegates to DictFromOrthographySet.
func (s *TermStore) DictFromOrthographySeq(ctx context.Context, langID int64, seq []string) (map[string]models.Token, error) {
	set := make(map[string]bool, len(seq))
	for _, o := range seq {
		set[strings.ToLower(o)] = true
	}
	return s.DictFromOrthographySet(ctx, langID, set)
}

// DictFromTextSet lowercases a set already keyed by raw text and delegates.
func (s *TermStore) DictFromTextSet(ctx context.Context, langID int64, text map[string]bool) (map[string]models.Token, error) {
	set := make(map[string]bool, len(text))
	for t := range text {
		set[strings.ToLower(t)] = true
	}
	return s.DictFromOrthographySet(ctx, langID, set)
}

// DictFromTextSeq lowercases a raw-text sequence and delegates.
func (s *TermStore) DictFromTextSeq(ctx context.Context, langID int64, text []string) (map[string]models.Token, error) {
	return s.DictFromOrthographySeq(ctx, langID, text)
}
