package trie

import (
	"reflect"
	"testing"
)

func TestInsertContainsLookup(t *testing.T) {
	tr := New[int, string]()
	tr.Insert([]int{1, 2, 3}, "abc")
	tr.InsertNoPayload([]int{6, 7})

	if !tr.Contains([]int{1, 2, 3}) {
		t.Fatalf("expected [1 2 3] to be a terminal")
	}
	if tr.Contains([]int{1, 2}) {
		t.Fatalf("did not expect [1 2] to be a terminal")
	}

	terminal, payload, has := tr.Lookup([]int{1, 2, 3})
	if !terminal || !has || payload != "abc" {
		t.Fatalf("lookup mismatch: terminal=%v payload=%q has=%v", terminal, payload, has)
	}

	terminal, _, has = tr.Lookup([]int{6, 7})
	if !terminal || has {
		t.Fatalf("expected terminal with no payload, got terminal=%v has=%v", terminal, has)
	}
}

func TestPrefixesOrderedAscending(t *testing.T) {
	entries := []Entry[int, struct{}]{
		{Seq: []int{1, 2, 3}, HasPayload: false},
		{Seq: []int{1, 2, 3, 4}, HasPayload: false},
		{Seq: []int{1, 2, 3, 4, 5}, HasPayload: false},
	}
	tr := FromEntriesWithPayloads(entries)

	got := tr.Prefixes([]int{1, 2, 3, 4, 5, 9}, false)
	want := [][]int{{1, 2, 3}, {1, 2, 3, 4}, {1, 2, 3, 4, 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPrefixesSyntheticSingleRoot(t *testing.T) {
	tr := New[int, struct{}]()
	tr.InsertNoPayload([]int{6, 7})

	got := tr.Prefixes([]int{9, 9, 9}, true)
	want := [][]int{{9}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// Without allowSingleRoot, no match means no prefixes at all.
	got = tr.Prefixes([]int{9, 9, 9}, false)
	if len(got) != 0 {
		t.Fatalf("expected no prefixes, got %v", got)
	}
}

func TestPrefixesSyntheticOnDeadEndDescent(t *testing.T) {
	tr := New[int, struct{}]()
	tr.InsertNoPayload([]int{6, 7, 8})

	// seq[0]=6 has a trie child, but [6] itself is not a terminal, and [6,9]
	// diverges from the only path through 6 before reaching any terminal.
	// The DP still needs a transition at this position, so the synthetic
	// singleton [6] is appended even though the root does have a child for 6.
	got := tr.Prefixes([]int{6, 9}, true)
	want := [][]int{{6}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEmptySeq(t *testing.T) {
	tr := New[int, struct{}]()
	tr.InsertNoPayload([]int{1})
	if got := tr.Prefixes(nil, true); len(got) != 0 {
		t.Fatalf("expected no prefixes for empty seq, got %v", got)
	}
}
