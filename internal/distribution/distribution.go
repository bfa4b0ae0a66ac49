// Package distribution implements the sparse and dense word-frequency
// distributions used by KLSum and TopicSum, along with the KL-divergence
// measure that drives KLSum's sentence selection.
package distribution

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultSmoothing is the additive (Laplace) smoothing mass added to a
// reference distribution's probabilities before computing KL divergence
// against it, so that tokens absent from the reference do not produce an
// infinite divergence.
const DefaultSmoothing = 1e-7

// Sparse is a token-keyed distribution, appropriate for document- or
// sentence-sized vocabularies where most of the corpus vocabulary never
// appears.
type Sparse struct {
	counts map[string]float64
	total  float64
}

// NewSparse returns an empty Sparse distribution.
func NewSparse() *Sparse {
	return &Sparse{counts: make(map[string]float64)}
}

// Add increments token's weight by delta. Negative deltas are allowed.
func (s *Sparse) Add(token string, delta float64) {
	s.counts[token] += delta
	s.total += delta
}

// Weight returns the raw (possibly unnormalized) weight of token.
func (s *Sparse) Weight(token string) float64 {
	return s.counts[token]
}

// Total returns the sum of all weights currently stored.
func (s *Sparse) Total() float64 {
	return s.total
}

// Tokens returns the distribution's tokens in no particular order.
func (s *Sparse) Tokens() []string {
	out := make([]string, 0, len(s.counts))
	for tok := range s.counts {
		out = append(out, tok)
	}
	return out
}

// Normalized returns a copy of the distribution scaled so that its
// weights sum to 1. It returns an all-zero copy if Total is 0.
func (s *Sparse) Normalized() *Sparse {
	out := NewSparse()
	if s.total == 0 {
		for tok := range s.counts {
			out.counts[tok] = 0
		}
		return out
	}
	for tok, w := range s.counts {
		out.counts[tok] = w / s.total
	}
	out.total = 1
	return out
}

// KLDivergence computes the Kullback-Leibler divergence D(p||q) between
// this distribution (treated as p) and reference (treated as q), with
// additive (Laplace) smoothing applied only to q's probabilities before
// taking logs: q'_i = (q_i + smoothing) / (1 + length*smoothing), where
// length is the size of the combined vocabulary. Smoothing <= 0 falls
// back to DefaultSmoothing, matching the original tool's default.
//
// Tokens present in p but absent from q are treated as having smoothing
// mass under q; tokens present in q but absent from p contribute zero to
// the sum, since p's probability for them is zero.
func (s *Sparse) KLDivergence(reference *Sparse, smoothing float64) float64 {
	if smoothing <= 0 {
		smoothing = DefaultSmoothing
	}

	p := s.Normalized()
	q := reference.Normalized()

	length := len(q.counts)
	for tok := range p.counts {
		if _, ok := q.counts[tok]; !ok {
			length++
		}
	}
	if length == 0 {
		length = 1
	}

	var divergence float64
	for tok, pw := range p.counts {
		if pw <= 0 {
			continue
		}
		qw := smoothedProbability(q, tok, smoothing, length)
		divergence += pw * math.Log(pw/qw)
	}
	return divergence
}

// smoothedProbability returns q's additively-smoothed probability mass
// for tok: (raw + smoothing) / (1 + length*smoothing), matching the
// original tool's distribution.cc smoothing formula.
func smoothedProbability(q *Sparse, tok string, smoothing float64, length int) float64 {
	raw := q.counts[tok]
	return (raw + smoothing) / (1 + float64(length)*smoothing)
}

// FormatTSV renders the distribution as tab-separated "token\tweight"
// lines, sorted by descending weight then ascending token, matching the
// original tool's PrintDistribution debug output.
func (s *Sparse) FormatTSV() string {
	type entry struct {
		token  string
		weight float64
	}
	entries := make([]entry, 0, len(s.counts))
	for tok, w := range s.counts {
		entries = append(entries, entry{tok, w})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].token < entries[j].token
	})

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s\t%g\n", e.token, e.weight)
	}
	return b.String()
}

// Dense is an array-backed distribution indexed by lexicon id, used for
// the Gibbs sampler's vocabulary-wide output distributions (topicsum's
// BackgroundDistribution, CollectionDistribution and Posterior).
type Dense struct {
	weights []float64
}

// NewDense returns a Dense distribution with size slots, all zero.
func NewDense(size int) *Dense {
	return &Dense{weights: make([]float64, size)}
}

// Add increments the weight at id by delta.
func (d *Dense) Add(id int, delta float64) {
	d.weights[id] += delta
}

// Weight returns the weight at id.
func (d *Dense) Weight(id int) float64 {
	return d.weights[id]
}

// Len returns the number of slots.
func (d *Dense) Len() int {
	return len(d.weights)
}

// Normalize scales the distribution in place so its weights sum to 1.
// It is a no-op on an all-zero distribution.
func (d *Dense) Normalize() {
	var total float64
	for _, w := range d.weights {
		total += w
	}
	if total == 0 {
		return
	}
	for i := range d.weights {
		d.weights[i] /= total
	}
}
