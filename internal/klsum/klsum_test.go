package klsum

import (
	"math"
	"testing"

	"github.com/wencanluo/summarizer/internal/distribution"
	"github.com/wencanluo/summarizer/internal/document"
	"github.com/wencanluo/summarizer/internal/lexicon"
	"github.com/wencanluo/summarizer/internal/postprocess"
)

func buildLexiconAndTarget(sentences []document.Sentence) (*lexicon.Lexicon, *distribution.Sparse) {
	lex := lexicon.New()
	target := distribution.NewSparse()
	for _, s := range sentences {
		for _, tok := range s.Tokens {
			lex.Add(tok)
			target.Add(tok, 1)
		}
	}
	return lex, target
}

func singleDoc(sentences []document.Sentence) []document.Document {
	return []document.Document{{ID: "doc", Sentences: sentences}}
}

func sampleSentences() []document.Sentence {
	return []document.Sentence{
		{RawContent: "The cat sat on the mat.", Tokens: []string{"the", "cat", "sat", "on", "the", "mat"}},
		{RawContent: "A dog ran in the park.", Tokens: []string{"a", "dog", "ran", "in", "the", "park"}},
		{RawContent: "The cat sat on the mat again today.", Tokens: []string{"the", "cat", "sat", "on", "the", "mat", "again", "today"}},
		{RawContent: "Birds fly over the lake.", Tokens: []string{"birds", "fly", "over", "the", "lake"}},
	}
}

func TestSummarizeGreedySelectsWithinLengthLimit(t *testing.T) {
	sentences := sampleSentences()
	lex, target := buildLexiconAndTarget(sentences)

	eng := New(lex, target, Options{
		Strategy: Greedy,
		Length:   document.LengthSpec{Unit: document.Sentence, Limit: 2},
	})

	got := eng.Summarize(singleDoc(sentences))
	if len(got) > 2 {
		t.Fatalf("Summarize returned %d sentences, want <= 2", len(got))
	}
	if len(got) == 0 {
		t.Fatal("Summarize returned no sentences")
	}
}

func TestSummarizeGreedyRejectsNearDuplicateSentence(t *testing.T) {
	sentences := []document.Sentence{
		{RawContent: "The cat sat on the mat today.", Tokens: []string{"the", "cat", "sat", "on", "the", "mat", "today"}},
		{RawContent: "The cat sat on the mat today too.", Tokens: []string{"the", "cat", "sat", "on", "the", "mat", "today", "too"}},
		{RawContent: "Birds fly over the distant lake each summer.", Tokens: []string{"birds", "fly", "over", "the", "distant", "lake", "each", "summer"}},
	}
	lex, target := buildLexiconAndTarget(sentences)

	eng := New(lex, target, Options{
		Strategy: Greedy,
		Length:   document.LengthSpec{Unit: document.Sentence, Limit: 3},
	})

	got := eng.Summarize(singleDoc(sentences))
	// The second sentence is almost entirely redundant with the first;
	// it should not survive the redundancy check even though the limit
	// allows room for a third sentence.
	if len(got) >= 3 {
		t.Fatalf("Summarize selected %d sentences, want < 3 (redundant sentence should be dropped)", len(got))
	}
}

func TestSummarizeRespectsPostprocessorRejection(t *testing.T) {
	sentences := sampleSentences()
	lex, target := buildLexiconAndTarget(sentences)

	eng := New(lex, target, Options{
		Strategy:      Greedy,
		Length:        document.LengthSpec{Unit: document.Sentence, Limit: 10},
		Postprocessor: postprocess.Test{},
	})

	marked := append([]document.Sentence{}, sentences...)
	marked[0].Tokens = append(marked[0].Tokens, "0")

	got := eng.Summarize(singleDoc(marked))
	for _, s := range got {
		for _, tok := range s.Tokens {
			if tok == "0" {
				t.Fatalf("Summarize selected a sentence containing the rejected marker token: %q", s.RawContent)
			}
		}
	}
}

func TestSummarizeRankingRespectsLengthLimit(t *testing.T) {
	sentences := sampleSentences()
	lex, target := buildLexiconAndTarget(sentences)

	eng := New(lex, target, Options{
		Strategy: SentenceRanking,
		Length:   document.LengthSpec{Unit: document.Sentence, Limit: 2},
	})

	got := eng.Summarize(singleDoc(sentences))
	if len(got) > 2 {
		t.Fatalf("Summarize (ranking) returned %d sentences, want <= 2", len(got))
	}
}

// TestSummarizeRankingScoresNonDecreasing exercises the boundary
// behaviour pinned by the spec: in sentence-ranking mode, the emitted
// selection order follows non-decreasing score.
func TestSummarizeRankingScoresNonDecreasing(t *testing.T) {
	sentences := sampleSentences()
	lex, target := buildLexiconAndTarget(sentences)

	var steps []Step
	eng := New(lex, target, Options{
		Strategy: SentenceRanking,
		Length:   document.LengthSpec{Unit: document.Sentence, Limit: 10},
		Debug:    &steps,
	})
	eng.Summarize(singleDoc(sentences))

	var last float64
	seenFirst := false
	for _, st := range steps {
		if !st.Selected {
			continue
		}
		if seenFirst && st.Score < last {
			t.Fatalf("selected scores not non-decreasing: %v before %v", last, st.Score)
		}
		last = st.Score
		seenFirst = true
	}
}

func TestNumTopTopicModelWordsTokenVsSentenceUnit(t *testing.T) {
	if got := NumTopTopicModelWords(document.LengthSpec{Unit: document.Token, Limit: 10}); got != 10 {
		t.Fatalf("NumTopTopicModelWords(token,10) = %d, want 10", got)
	}
	if got := NumTopTopicModelWords(document.LengthSpec{Unit: document.Sentence, Limit: 10}); got != 150 {
		t.Fatalf("NumTopTopicModelWords(sentence,10) = %d, want 150", got)
	}
}

func TestDebugTraceRecordsSteps(t *testing.T) {
	sentences := sampleSentences()
	lex, target := buildLexiconAndTarget(sentences)

	var steps []Step
	eng := New(lex, target, Options{
		Strategy: Greedy,
		Length:   document.LengthSpec{Unit: document.Sentence, Limit: 2},
		Debug:    &steps,
	})

	eng.Summarize(singleDoc(sentences))
	if len(steps) == 0 {
		t.Fatal("expected at least one debug step to be recorded")
	}

	foundSelected := false
	for _, st := range steps {
		if st.Selected {
			foundSelected = true
		}
	}
	if !foundSelected {
		t.Fatal("expected at least one selected step")
	}
}

// --- isRedundant: dense predicate against the collection vector ---

func TestIsRedundantRejectsWhenNoNewCollectionWords(t *testing.T) {
	sentences := []document.Sentence{
		{RawContent: "the cat sat", Tokens: []string{"the", "cat", "sat"}},
	}
	lex, target := buildLexiconAndTarget(sentences)
	eng := New(lex, target, Options{Length: document.LengthSpec{Unit: document.Token, Limit: 100}})

	c := candidate{
		sentence: document.Sentence{Tokens: []string{"the", "cat"}},
		distinct: map[string]bool{"the": true, "cat": true},
	}
	seen := map[string]bool{"the": true, "cat": true}
	if !eng.isRedundant(c, seen) {
		t.Fatal("isRedundant = false, want true when every collection word already seen")
	}
}

func TestIsRedundantAcceptsSubstantiallyNewSentence(t *testing.T) {
	sentences := []document.Sentence{
		{RawContent: "completely new content here", Tokens: []string{"completely", "new", "content", "here"}},
	}
	lex, target := buildLexiconAndTarget(sentences)
	eng := New(lex, target, Options{Length: document.LengthSpec{Unit: document.Token, Limit: 100}})

	c := candidate{
		sentence: document.Sentence{Tokens: []string{"completely", "new", "content", "here"}},
		distinct: map[string]bool{"completely": true, "new": true, "content": true, "here": true},
	}
	if eng.isRedundant(c, map[string]bool{}) {
		t.Fatal("isRedundant = true, want false for an entirely new sentence")
	}
}

// TestIsRedundantIgnoresNonCollectionWords verifies the defect the
// review flagged: a candidate made entirely of rare words that never
// cross topWordsThreshold contributes zero collection words, and is
// therefore redundant (n_new_coll stays 0) regardless of novelty.
func TestIsRedundantIgnoresNonCollectionWords(t *testing.T) {
	lex := lexicon.New()
	target := distribution.NewSparse()
	// "common" dominates the collection; "rare" appears once.
	for i := 0; i < 50; i++ {
		lex.Add("common")
		target.Add("common", 1)
	}
	lex.Add("rare")
	target.Add("rare", 1)

	// limit=1 restricts the top-words window to just "common", so
	// topWordsThreshold sits above "rare"'s weight.
	eng := New(lex, target, Options{Length: document.LengthSpec{Unit: document.Token, Limit: 1}})

	c := candidate{
		sentence: document.Sentence{Tokens: []string{"rare"}},
		distinct: map[string]bool{"rare": true},
	}
	if !eng.isRedundant(c, map[string]bool{}) {
		t.Fatal("isRedundant = false, want true: candidate has no words above topWordsThreshold")
	}
}

// --- score: position multiplier and prior/summary weight mixing ---

func TestScoreFirstPositionLeavesKLUnchanged(t *testing.T) {
	eng := &Engine{opts: Options{SummaryWeight: 1}}
	c := candidate{position: 1, sentence: document.Sentence{}}
	got := eng.score(c, 2.0)
	if math.Abs(got-2.0) > 1e-9 {
		t.Fatalf("score at position 1 = %v, want 2.0 (1+log(1)=1 multiplier)", got)
	}
}

func TestScoreLaterPositionInflatesKL(t *testing.T) {
	eng := &Engine{opts: Options{SummaryWeight: 1}}
	early := eng.score(candidate{position: 1}, 2.0)
	later := eng.score(candidate{position: 5}, 2.0)
	if later <= early {
		t.Fatalf("score(position=5) = %v, want > score(position=1) = %v", later, early)
	}
	want := 2.0 * (1 + math.Log(5))
	if math.Abs(later-want) > 1e-9 {
		t.Fatalf("score(position=5) = %v, want %v", later, want)
	}
}

func TestScoreMixesPriorWeight(t *testing.T) {
	eng := &Engine{opts: Options{SummaryWeight: 1, PriorWeight: 0.5}}
	c := candidate{position: 1, sentence: document.Sentence{PriorScore: 4.0}}
	got := eng.score(c, 2.0)
	want := 2.0 + 0.5*4.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("score with prior = %v, want %v", got, want)
	}
}

func TestScoreDefaultsSummaryWeightToOne(t *testing.T) {
	eng := &Engine{opts: Options{}} // zero-value SummaryWeight
	got := eng.score(candidate{position: 1}, 3.0)
	if math.Abs(got-3.0) > 1e-9 {
		t.Fatalf("score with zero SummaryWeight = %v, want 3.0 (defaults to weight 1)", got)
	}
}

// TestKLDivergenceDirectionIsCollectionGivenSummary pins the direction
// fixed per spec §4.6: the engine scores kl_divergence(collection, summary),
// not the reverse. With the collection fixed, a summary that omits a word
// the collection contains produces a larger divergence than a summary that
// covers it, which only holds in the collection-as-p direction once
// smoothing is applied solely to the summary side.
func TestKLDivergenceDirectionIsCollectionGivenSummary(t *testing.T) {
	collection := distribution.NewSparse()
	collection.Add("common", 100)
	collection.Add("rare", 1)

	summaryAll := distribution.NewSparse()
	summaryAll.Add("common", 10)
	summaryAll.Add("rare", 1)

	summaryMissingRare := distribution.NewSparse()
	summaryMissingRare.Add("common", 10)

	dMatch := collection.KLDivergence(summaryAll, distribution.DefaultSmoothing)
	dMismatch := collection.KLDivergence(summaryMissingRare, distribution.DefaultSmoothing)

	if dMismatch <= dMatch {
		t.Fatalf("KLDivergence(collection, summary-missing-rare) = %v, want > KLDivergence(collection, summary-with-rare) = %v", dMismatch, dMatch)
	}
}

// Reproducing spec §8 scenarios 3 and 4 verbatim requires the original
// Reuters-derived corpus and its exact tokenization/POS tags, which are
// not available in this environment; the tests above instead pin the
// mechanisms (score direction, position multiplier, weight mixing,
// dense redundancy predicate) that those concrete scores depend on.
