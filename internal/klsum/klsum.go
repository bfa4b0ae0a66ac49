// Package klsum implements the KL-divergence summarization engine:
// given a target word distribution to approximate (the full collection,
// or a TopicSum document posterior) and a pool of candidate sentences,
// it greedily assembles a summary whose word distribution stays as
// close to the target as possible, while rejecting sentences that are
// too short, too similar to what has already been selected, or that
// fail the active postprocess.Processor's rules.
package klsum

import (
	"fmt"
	"math"
	"sort"

	"github.com/wencanluo/summarizer/internal/distribution"
	"github.com/wencanluo/summarizer/internal/document"
	"github.com/wencanluo/summarizer/internal/lexicon"
	"github.com/wencanluo/summarizer/internal/postprocess"
)

// Redundancy thresholds, matching the original tool's fixed constants:
// a candidate sentence is rejected as redundant if it contributes fewer
// than one new distinct collection word, if new collection words make
// up less than a quarter of its own distinct-token count, or if new
// collection words make up less than two-thirds of the candidate's own
// collection words.
const (
	minNewTokens              = 1.0
	minNewTokenFraction       = 0.25
	minNewToCollectedFraction = 0.67
)

// Strategy selects how candidate sentences are ordered for selection.
type Strategy int

const (
	// Greedy recomputes, at every step, the KL divergence of the
	// tentative summary (current selection plus one more candidate)
	// against the target distribution, and picks whichever candidate
	// minimizes it. This is the original tool's default.
	Greedy Strategy = iota

	// SentenceRanking scores every candidate once, independent of the
	// evolving summary, then selects in ascending score order subject
	// to the redundancy check. It is cheaper than Greedy for large
	// candidate pools, at the cost of not re-evaluating a sentence's
	// marginal value after earlier selections.
	SentenceRanking
)

// Options configures one summarization run.
type Options struct {
	Strategy Strategy

	// Length bounds the produced summary.
	Length document.LengthSpec

	// Smoothing is the KL-divergence smoothing mass; <= 0 uses
	// distribution.DefaultSmoothing.
	Smoothing float64

	// SummaryWeight and PriorWeight mix a candidate's position-adjusted
	// KL divergence with its externally supplied document.Sentence.PriorScore:
	// score_i = SummaryWeight*kl_i + PriorWeight*prior_score_i. SummaryWeight
	// <= 0 defaults to 1; PriorWeight defaults to 0, so a summary with no
	// prior scores behaves exactly as before.
	SummaryWeight float64
	PriorWeight   float64

	// Postprocessor filters and cleans candidate sentences. Greedy skips
	// rejected sentences before scoring them; SentenceRanking scores every
	// candidate and skips rejected ones while walking its ranking. A nil
	// Postprocessor defaults to postprocess.None.
	Postprocessor postprocess.Processor

	// Debug, if non-nil, receives one Step per scoring decision made
	// during the run, for tracing why a sentence was or was not
	// selected.
	Debug *[]Step
}

// Step records one candidate's evaluation, for debugging and tests.
type Step struct {
	Sentence document.Sentence
	Score    float64
	Selected bool
	Rejected string // reason, empty if Selected
}

// candidate bundles a sentence with precomputed data the engine reuses
// across scoring calls. tokenCounts and distinct are always derived
// from the sentence's original (pre-postprocess) tokens, since the
// running summary vector must reflect what the sentence actually
// contributes to the collection's word distribution even when the
// postprocessor trims what is rendered; compressed is what actually
// gets appended to the produced summary.
type candidate struct {
	sentence    document.Sentence // original, pre-compression
	compressed  document.Sentence // postprocess.Compress(sentence), used for output
	position    int               // 1-based position within its source document
	tokenCounts map[int]float64   // lexicon id -> count; VectorDistribution ignores ids outside the trimmed vocab
	distinct    map[string]bool   // distinct raw tokens, for redundancy checks
}

// Engine runs KLSum over a fixed target distribution.
type Engine struct {
	lex  *lexicon.Lexicon
	opts Options

	// collection is the target distribution restricted to its top
	// NumTopTopicModelWords entries, used for KL scoring. collectionFull
	// is the untrimmed distribution, consulted by the redundancy check
	// to tell whether a token is one of the collection's top words even
	// if it fell outside the trimmed vocabulary.
	collection        *distribution.Sparse
	collectionFull    *distribution.Sparse
	topWordsThreshold float64
	vocab             []int
}

// New builds an Engine whose target distribution is target (e.g. a
// collection's term frequency, or a topicsum.Sampler's Posterior for a
// document), restricted to its NumTopTopicModelWords highest-weighted
// entries per opts.Length.
func New(lex *lexicon.Lexicon, target *distribution.Sparse, opts Options) *Engine {
	if opts.Postprocessor == nil {
		opts.Postprocessor = postprocess.None{}
	}

	limit := NumTopTopicModelWords(opts.Length)
	trimmed, vocab := trimToTopWords(lex, target, limit)

	return &Engine{
		lex:               lex,
		opts:              opts,
		collection:        trimmed,
		collectionFull:    target,
		topWordsThreshold: topWordsThreshold(target, limit),
		vocab:             vocab,
	}
}

// NumTopTopicModelWords returns how many of the target distribution's
// highest-weighted words are retained for scoring: length_limit when
// the summary is bounded by token count, 15*length_limit when bounded
// by sentence count, matching the original tool's heuristic that a
// sentence-limited summary needs a wider vocabulary window since each
// selected sentence is expected to be longer relative to the limit.
func NumTopTopicModelWords(spec document.LengthSpec) int {
	if spec.Limit <= 0 {
		return 0 // unbounded: keep every word, trimToTopWords treats 0 as "no trim"
	}
	if spec.Unit == document.Sentence {
		return 15 * spec.Limit
	}
	return spec.Limit
}

// trimToTopWords returns a copy of target containing only its limit
// highest-weighted tokens (or every token, if limit <= 0), plus the
// lexicon ids of the surviving vocabulary.
func trimToTopWords(lex *lexicon.Lexicon, target *distribution.Sparse, limit int) (*distribution.Sparse, []int) {
	sorted := sortedEntries(target)

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	out := distribution.NewSparse()
	vocab := make([]int, 0, len(sorted))
	for _, e := range sorted {
		out.Add(e.token, e.weight)
		if id, ok := lex.TryIDOf(e.token); ok {
			vocab = append(vocab, id)
		}
	}
	return out, vocab
}

// topWordsThreshold returns the weight of the word at rank
// W-NumTopTopicModelWords in target's full (untrimmed) weight
// distribution, where W is its vocabulary size: the cutoff below which
// a word does not count as one of the collection's top words. A word's
// weight must exceed this threshold, not merely equal it, to count.
func topWordsThreshold(target *distribution.Sparse, limit int) float64 {
	tokens := target.Tokens()
	if limit <= 0 || limit >= len(tokens) {
		return -1 // every word counts as a top word
	}

	weights := make([]float64, len(tokens))
	for i, tok := range tokens {
		weights[i] = target.Weight(tok)
	}
	sort.Float64s(weights)

	idx := len(weights) - limit
	if idx < 0 {
		idx = 0
	}
	return weights[idx]
}

type weightedToken struct {
	token  string
	weight float64
}

func sortedEntries(d *distribution.Sparse) []weightedToken {
	tokens := d.Tokens()
	all := make([]weightedToken, 0, len(tokens))
	for _, tok := range tokens {
		all = append(all, weightedToken{tok, d.Weight(tok)})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].weight != all[j].weight {
			return all[i].weight > all[j].weight
		}
		return all[i].token < all[j].token
	})
	return all
}

// Summarize selects sentences from docs, using opts.Strategy, and
// returns them in the order they should appear in the rendered summary
// (selection order for Greedy, ranked order for SentenceRanking).
func (e *Engine) Summarize(docs []document.Document) []document.Sentence {
	candidates := e.buildCandidates(docs)

	switch e.opts.Strategy {
	case SentenceRanking:
		return e.summarizeRanking(candidates)
	default:
		return e.summarizeGreedy(candidates)
	}
}

func (e *Engine) buildCandidates(docs []document.Document) []candidate {
	var out []candidate
	for _, doc := range docs {
		for pos, s := range doc.Sentences {
			counts := make(map[int]float64)
			distinct := make(map[string]bool)
			for _, tok := range s.Tokens {
				distinct[tok] = true
				if id, ok := e.lex.TryIDOf(tok); ok {
					counts[id]++
				}
			}
			out = append(out, candidate{
				sentence:    s,
				compressed:  e.opts.Postprocessor.Compress(s),
				position:    pos + 1,
				tokenCounts: counts,
				distinct:    distinct,
			})
		}
	}
	return out
}

// summarizeGreedy implements the original tool's default strategy:
// repeatedly pick whichever remaining candidate, if added, yields the
// lowest score against the target, until the length limit is reached or
// no candidate can be added.
func (e *Engine) summarizeGreedy(candidates []candidate) []document.Sentence {
	summaryVec := NewVectorDistribution(e.vocab)
	var selected []document.Sentence
	seenTokens := make(map[string]bool)
	used := make([]bool, len(candidates))

	for {
		bestIdx := -1
		bestScore := 0.0
		bestFound := false

		for i, c := range candidates {
			if used[i] {
				continue
			}
			if !e.isEligible(c, seenTokens) {
				e.trace(c.compressed, 0, false, "rejected")
				continue
			}

			tentative := summaryVec.Clone()
			tentative.AddVector(c.tokenCounts)
			kl := e.collection.KLDivergence(tentative.ToSparse(e.lex.TokenOf), e.opts.Smoothing)
			score := e.score(c, kl)

			if !bestFound || score < bestScore {
				bestFound = true
				bestScore = score
				bestIdx = i
			}
		}

		if !bestFound {
			break
		}

		chosen := candidates[bestIdx]
		used[bestIdx] = true

		// A summary may never be empty, so the first sentence is always
		// added even if it alone reaches the limit; after that, a
		// candidate that would push the running summary past the limit
		// is rejected rather than truncated.
		wouldReachLimit := document.ReachesLengthLimit(selected, chosen.compressed, e.opts.Length)
		over := e.opts.Length
		over.Limit++ // reaching Limit+1 means exceeding Limit
		wouldExceedLimit := wouldReachLimit && document.ReachesLengthLimit(selected, chosen.compressed, over)
		if wouldExceedLimit && len(selected) > 0 {
			e.trace(chosen.compressed, bestScore, false, "length limit")
			break
		}

		summaryVec.AddVector(chosen.tokenCounts)
		selected = append(selected, chosen.compressed)
		for tok := range chosen.distinct {
			seenTokens[tok] = true
		}
		e.trace(chosen.compressed, bestScore, true, "")

		if wouldReachLimit {
			break
		}
	}

	return selected
}

// summarizeRanking scores every candidate once (its marginal KL
// contribution against the bare target, ignoring the summary built so
// far) and walks the resulting ranking in ascending-score order,
// applying the same redundancy and length checks as Greedy.
func (e *Engine) summarizeRanking(candidates []candidate) []document.Sentence {
	type scored struct {
		candidate candidate
		score     float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		vec := NewVectorDistribution(e.vocab)
		vec.AddVector(c.tokenCounts)
		kl := e.collection.KLDivergence(vec.ToSparse(e.lex.TokenOf), e.opts.Smoothing)
		ranked = append(ranked, scored{c, e.score(c, kl)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score < ranked[j].score })

	summaryVec := NewVectorDistribution(e.vocab)
	var selected []document.Sentence
	seenTokens := make(map[string]bool)

	over := e.opts.Length
	over.Limit++ // reaching Limit+1 means exceeding Limit

	for _, r := range ranked {
		if !e.isEligible(r.candidate, seenTokens) {
			e.trace(r.candidate.compressed, r.score, false, "rejected")
			continue
		}
		if e.opts.Length.Limit > 0 && document.ReachesLengthLimit(selected, r.candidate.compressed, over) && len(selected) > 0 {
			e.trace(r.candidate.compressed, r.score, false, "length limit")
			continue
		}

		summaryVec.AddVector(r.candidate.tokenCounts)
		selected = append(selected, r.candidate.compressed)
		for tok := range r.candidate.distinct {
			seenTokens[tok] = true
		}
		e.trace(r.candidate.compressed, r.score, true, "")
	}

	return selected
}

// score combines a candidate's KL divergence with its lead-position
// prior and its externally supplied PriorScore: the KL term is first
// scaled by (1 + log(position)), so a candidate's first sentence
// (position 1) is unaffected while later sentences are penalized, then
// mixed with PriorScore via SummaryWeight/PriorWeight.
func (e *Engine) score(c candidate, kl float64) float64 {
	klAdjusted := kl * (1 + math.Log(float64(c.position)))

	summaryWeight := e.opts.SummaryWeight
	if summaryWeight <= 0 {
		summaryWeight = 1
	}
	return summaryWeight*klAdjusted + e.opts.PriorWeight*c.sentence.PriorScore
}

// isEligible applies the postprocessor's validity rule and the
// redundancy check.
func (e *Engine) isEligible(c candidate, seenTokens map[string]bool) bool {
	if !e.opts.Postprocessor.IsValidSentence(c.sentence) {
		return false
	}
	return !e.isRedundant(c, seenTokens)
}

// isRedundant reports whether candidate c adds too little new
// collection-relevant content relative to what seenTokens already
// covers. It operates over the dense notion of "collection word": a
// token counts only if its weight in the full collection distribution
// exceeds topWordsThreshold. Of those, n_new_coll counts the ones not
// already present in seenTokens (i.e. not yet covered by the summary).
func (e *Engine) isRedundant(c candidate, seenTokens map[string]bool) bool {
	nTokens := 0.0
	nColl := 0.0
	nNewColl := 0.0

	for tok := range c.distinct {
		nTokens++
		if e.collectionFull.Weight(tok) > e.topWordsThreshold {
			nColl++
			if !seenTokens[tok] {
				nNewColl++
			}
		}
	}

	if nTokens == 0 {
		return true
	}
	if nNewColl < minNewTokens {
		return true
	}
	if nNewColl/nTokens < minNewTokenFraction {
		return true
	}
	if nColl > 0 && nNewColl/nColl < minNewToCollectedFraction {
		return true
	}
	return false
}

func (e *Engine) trace(s document.Sentence, score float64, selected bool, reason string) {
	if e.opts.Debug == nil {
		return
	}
	*e.opts.Debug = append(*e.opts.Debug, Step{Sentence: s, Score: score, Selected: selected, Rejected: reason})
}

// String implements fmt.Stringer for Step, primarily for debug logs.
func (s Step) String() string {
	if s.Selected {
		return fmt.Sprintf("selected score=%.4f %q", s.Score, s.Sentence.RawContent)
	}
	return fmt.Sprintf("rejected(%s) score=%.4f %q", s.Rejected, s.Score, s.Sentence.RawContent)
}
