package document

import "testing"

func sentencesABC() []Sentence {
	return []Sentence{
		{RawContent: "A.", Tokens: []string{"a"}},
		{RawContent: "B.", Tokens: []string{"b", "b"}},
		{RawContent: "C.", Tokens: []string{"c", "c", "c"}},
	}
}

func TestTermFrequencyCounts(t *testing.T) {
	doc := Document{Sentences: sentencesABC()}
	tf := doc.TermFrequency()

	if got := tf.Weight("a"); got != 1 {
		t.Fatalf("Weight(a) = %v, want 1", got)
	}
	if got := tf.Weight("b"); got != 2 {
		t.Fatalf("Weight(b) = %v, want 2", got)
	}
	if got := tf.Weight("c"); got != 3 {
		t.Fatalf("Weight(c) = %v, want 3", got)
	}
}

func TestCollectionNumTokens(t *testing.T) {
	col := Collection{Documents: []Document{
		{Sentences: sentencesABC()},
		{Sentences: sentencesABC()},
	}}
	if got := col.NumTokens(); got != 12 {
		t.Fatalf("NumTokens() = %d, want 12", got)
	}
}

func TestReachesLengthLimitToken(t *testing.T) {
	spec := LengthSpec{Unit: Token, Limit: 3}
	selected := []Sentence{{Tokens: []string{"a"}}}
	candidate := Sentence{Tokens: []string{"b", "c"}}

	if !ReachesLengthLimit(selected, candidate, spec) {
		t.Fatal("ReachesLengthLimit = false, want true (1+2 >= 3)")
	}
}

func TestReachesLengthLimitSentence(t *testing.T) {
	spec := LengthSpec{Unit: Sentence, Limit: 2}
	selected := []Sentence{{Tokens: []string{"a"}}}
	candidate := Sentence{Tokens: []string{"b"}}

	if !ReachesLengthLimit(selected, candidate, spec) {
		t.Fatal("ReachesLengthLimit = false, want true (2 sentences >= 2)")
	}
}

func TestReachesLengthLimitZeroNeverReaches(t *testing.T) {
	spec := LengthSpec{Unit: Token, Limit: 0}
	if ReachesLengthLimit(nil, Sentence{Tokens: []string{"a"}}, spec) {
		t.Fatal("ReachesLengthLimit = true, want false for Limit<=0")
	}
}

func TestFitToSizeTokenTruncatesLastSentence(t *testing.T) {
	sentences := sentencesABC() // 1, 2, 3 tokens = 6 total
	out := FitToSize(sentences, LengthSpec{Unit: Token, Limit: 4})

	if len(out) != 3 {
		t.Fatalf("FitToSize returned %d sentences, want 3", len(out))
	}
	if got := out[2].NumTokens(); got != 1 {
		t.Fatalf("last sentence has %d tokens, want 1 (truncated from 3)", got)
	}
}

func TestFitToSizeSentenceLimit(t *testing.T) {
	sentences := sentencesABC()
	out := FitToSize(sentences, LengthSpec{Unit: Sentence, Limit: 2})

	if len(out) != 2 {
		t.Fatalf("FitToSize returned %d sentences, want 2", len(out))
	}
}

func TestFitToSizeZeroLimitReturnsAll(t *testing.T) {
	sentences := sentencesABC()
	out := FitToSize(sentences, LengthSpec{Unit: Token, Limit: 0})
	if len(out) != len(sentences) {
		t.Fatalf("FitToSize returned %d sentences, want %d", len(out), len(sentences))
	}
}
