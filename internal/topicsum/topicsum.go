// Package topicsum implements the three-topic collapsed Gibbs sampler
// (background/collection/document) that TopicSum uses to separate a
// collection's content into what is generic (background), what is
// shared across the collection's documents (collection), and what is
// specific to a single document (document) — the DOC-topic
// distribution is what gets handed to KLSum for sentence selection.
package topicsum

import (
	"math"
	"math/rand"

	"github.com/wencanluo/summarizer/internal/distribution"
	"github.com/wencanluo/summarizer/internal/document"
	"github.com/wencanluo/summarizer/internal/gibbs"
	"github.com/wencanluo/summarizer/internal/lexicon"
	"github.com/wencanluo/summarizer/internal/sampling"
)

// Topic identifies one of the three latent topics every token is
// assigned to.
type Topic int

const (
	Background Topic = iota
	Collection
	Document
	numTopics = 3
)

// Params bundles the sampler's Dirichlet hyperparameters. Lambda
// controls the sharpness of each topic's word distribution; Gamma
// controls how a document's tokens split across the three topics.
// Both must have exactly 3 entries, indexed by Topic.
type Params struct {
	Lambda [numTopics]float64
	Gamma  [numTopics]float64
}

// FixedBackground optionally clamps the background word distribution
// to an externally supplied unigram prior instead of learning it from
// the training collection, following the original sampler's support for
// a precomputed background model. Phi maps token to probability and
// need not sum to exactly 1; AvgWords is the assumed total background
// token mass the clamp formula scales against.
type FixedBackground struct {
	Phi      map[string]float64
	AvgWords float64
}

// Sampler is a collapsed Gibbs sampler over one document.Collection. Its
// zero value is not usable; construct with New.
type Sampler struct {
	lex    *lexicon.Lexicon
	col    document.Collection
	params Params
	fixed  *FixedBackground

	// tokens[d][i] is the lexicon id of the i'th token flattened across
	// document d's sentences, in sentence order.
	tokens [][]int
	// assignment[d][i] is the current topic assignment for tokens[d][i].
	assignment [][]Topic

	vocabSize int

	nwb []float64   // background word counts, size vocabSize
	nwc []float64   // collection word counts, size vocabSize
	nwd [][]float64 // per-document word counts, [doc][vocabSize]

	nb float64   // total background-assigned tokens
	nc float64   // total collection-assigned tokens
	nd []float64 // per-document DOC-assigned tokens

	nzs [][numTopics]float64 // per-document per-topic token counts
	ns  []float64            // per-document total tokens

	phiBSum []float64
	phiCSum []float64
	phiDSum [][]float64

	backgroundFixed bool
}

// New builds a Sampler over col using lex to resolve token ids. lex
// must already contain every token appearing in col (the caller ingests
// through the lexicon before training). If fixed is non-nil, the
// background distribution is clamped rather than learned.
func New(col document.Collection, lex *lexicon.Lexicon, params Params, fixed *FixedBackground) *Sampler {
	s := &Sampler{
		lex:       lex,
		col:       col,
		params:    params,
		fixed:     fixed,
		vocabSize: lex.Size(),
	}

	s.tokens = make([][]int, len(col.Documents))
	s.assignment = make([][]Topic, len(col.Documents))
	for d, doc := range col.Documents {
		var ids []int
		for _, sent := range doc.Sentences {
			for _, tok := range sent.Tokens {
				ids = append(ids, lex.IDOf(tok))
			}
		}
		s.tokens[d] = ids
		s.assignment[d] = make([]Topic, len(ids))
	}

	return s
}

// Init allocates the sampler's counters. Implements gibbs.Trainer.
func (s *Sampler) Init() {
	n := len(s.col.Documents)
	s.nwb = make([]float64, s.vocabSize)
	s.nwc = make([]float64, s.vocabSize)
	s.nwd = make([][]float64, n)
	s.nd = make([]float64, n)
	s.nzs = make([][numTopics]float64, n)
	s.ns = make([]float64, n)
	s.phiBSum = make([]float64, s.vocabSize)
	s.phiCSum = make([]float64, s.vocabSize)
	s.phiDSum = make([][]float64, n)
	for d := range s.phiDSum {
		s.nwd[d] = make([]float64, s.vocabSize)
		s.phiDSum[d] = make([]float64, s.vocabSize)
	}

	if s.fixed != nil {
		s.applyFixedBackground()
		s.backgroundFixed = true
	}
}

// applyFixedBackground sets nwb and nb from the external prior, per
// NWB[w] = floor(phi_B[w] * AvgWords * gamma[0] / sum(gamma)).
func (s *Sampler) applyFixedBackground() {
	gammaSum := s.params.Gamma[0] + s.params.Gamma[1] + s.params.Gamma[2]
	scale := s.fixed.AvgWords * s.params.Gamma[0] / gammaSum
	for tok, p := range s.fixed.Phi {
		id, ok := s.lex.TryIDOf(tok)
		if !ok {
			continue
		}
		count := math.Floor(p * scale)
		s.nwb[id] = count
		s.nb += count
	}
}

// InitialAssignment samples every token an initial topic uniformly at
// random and updates counters accordingly. Implements gibbs.Trainer.
func (s *Sampler) InitialAssignment(r *rand.Rand) {
	for d, ids := range s.tokens {
		for i, w := range ids {
			topic := Topic(sampling.Uniform(r, numTopics))
			s.assignment[d][i] = topic
			s.increment(d, w, topic)
		}
	}
}

// Iteration resamples every token's topic conditioned on all others.
// Implements gibbs.Trainer.
func (s *Sampler) Iteration(r *rand.Rand) {
	for d, ids := range s.tokens {
		for i, w := range ids {
			current := s.assignment[d][i]
			s.decrement(d, w, current)

			weights := s.conditional(d, w)
			next := Topic(sampling.Multinomial(r, weights[:]))

			s.assignment[d][i] = next
			s.increment(d, w, next)
		}
	}
}

// conditional returns the unnormalized conditional probability of each
// topic for word w in document d, per:
//
//	p_k ∝ (NWZ_k[w]+λ_k)/(NZ_k+W·λ_k) · (NZS[d][k]+γ_k)/(NS[d]+Σγ)
func (s *Sampler) conditional(d, w int) [numTopics]float64 {
	W := float64(s.vocabSize)
	gammaSum := s.params.Gamma[0] + s.params.Gamma[1] + s.params.Gamma[2]
	nsD := s.ns[d]

	var out [numTopics]float64

	wordCounts := [numTopics]float64{s.nwb[w], s.nwc[w], s.nwd[d][w]}
	topicTotals := [numTopics]float64{s.nb, s.nc, s.nd[d]}

	for k := 0; k < numTopics; k++ {
		lambda := s.params.Lambda[k]
		gamma := s.params.Gamma[k]
		wordTerm := (wordCounts[k] + lambda) / (topicTotals[k] + W*lambda)
		docTerm := (s.nzs[d][k] + gamma) / (nsD + gammaSum)
		out[k] = wordTerm * docTerm
	}
	return out
}

// increment adds one token of word w under topic to the counters.
func (s *Sampler) increment(d, w int, topic Topic) {
	switch topic {
	case Background:
		if !s.backgroundFixed {
			s.nwb[w]++
			s.nb++
		}
	case Collection:
		s.nwc[w]++
		s.nc++
	case Document:
		s.nwd[d][w]++
		s.nd[d]++
	}
	s.nzs[d][topic]++
	s.ns[d]++
}

// decrement removes one token of word w under topic from the counters.
func (s *Sampler) decrement(d, w int, topic Topic) {
	switch topic {
	case Background:
		if !s.backgroundFixed {
			s.nwb[w]--
			s.nb--
		}
	case Collection:
		s.nwc[w]--
		s.nc--
	case Document:
		s.nwd[d][w]--
		s.nd[d]--
	}
	s.nzs[d][topic]--
	s.ns[d]--
}

// CalculateParams accumulates this iteration's normalized word-topic
// distributions into the running sums averaged at the end of training.
// Implements gibbs.Trainer.
func (s *Sampler) CalculateParams() {
	W := float64(s.vocabSize)
	lambdaB, lambdaC := s.params.Lambda[0], s.params.Lambda[1]

	for w := 0; w < s.vocabSize; w++ {
		s.phiBSum[w] += (s.nwb[w] + lambdaB) / (s.nb + W*lambdaB)
		s.phiCSum[w] += (s.nwc[w] + lambdaC) / (s.nc + W*lambdaC)
	}
	lambdaD := s.params.Lambda[2]
	for d := range s.col.Documents {
		for w := 0; w < s.vocabSize; w++ {
			s.phiDSum[d][w] += (s.nwd[d][w] + lambdaD) / (s.nd[d] + W*lambdaD)
		}
	}
}

// MultiplyParams scales the accumulated parameter sums by factor,
// turning a running sum into an average. Implements gibbs.Trainer.
func (s *Sampler) MultiplyParams(factor float64) {
	for w := range s.phiBSum {
		s.phiBSum[w] *= factor
		s.phiCSum[w] *= factor
	}
	for d := range s.phiDSum {
		for w := range s.phiDSum[d] {
			s.phiDSum[d][w] *= factor
		}
	}
}

// ModelLikelihood returns the log-likelihood of the current topic
// assignment under the collapsed-Gibbs joint, for convergence
// tracking. Implements gibbs.Trainer.
func (s *Sampler) ModelLikelihood() float64 {
	W := float64(s.vocabSize)
	gammaSum := s.params.Gamma[0] + s.params.Gamma[1] + s.params.Gamma[2]

	var ll float64
	for d, ids := range s.tokens {
		for i, w := range ids {
			topic := s.assignment[d][i]
			lambda := s.params.Lambda[topic]
			gamma := s.params.Gamma[topic]

			var wordCount, topicTotal float64
			switch topic {
			case Background:
				wordCount, topicTotal = s.nwb[w], s.nb
			case Collection:
				wordCount, topicTotal = s.nwc[w], s.nc
			case Document:
				wordCount, topicTotal = s.nwd[d][w], s.nd[d]
			}

			wordProb := (wordCount + lambda) / (topicTotal + W*lambda)
			docProb := (s.nzs[d][topic] + gamma) / (s.ns[d] + gammaSum)
			ll += math.Log(wordProb) + math.Log(docProb)
		}
	}
	return ll
}

// Run executes cfg on the sampler via the generic gibbs driver and
// returns the training result.
func (s *Sampler) Run(cfg gibbs.Config) gibbs.Result {
	return gibbs.Run(s, cfg)
}

// BackgroundDistribution returns the trained (or fixed) background
// word distribution as a Dense vector indexed by lexicon id.
func (s *Sampler) BackgroundDistribution() *distribution.Dense {
	d := distribution.NewDense(s.vocabSize)
	for w, p := range s.phiBSum {
		d.Add(w, p)
	}
	return d
}

// CollectionDistribution returns the trained collection-topic word
// distribution as a Dense vector indexed by lexicon id.
func (s *Sampler) CollectionDistribution() *distribution.Dense {
	d := distribution.NewDense(s.vocabSize)
	for w, p := range s.phiCSum {
		d.Add(w, p)
	}
	return d
}

// Posterior returns the trained document-topic word distribution for
// document docIndex, the distribution TopicSum feeds to KLSum as the
// target a document's summary should cover. It panics if docIndex is
// out of range.
func (s *Sampler) Posterior(docIndex int) *distribution.Dense {
	if docIndex < 0 || docIndex >= len(s.phiDSum) {
		panic("topicsum: Posterior docIndex out of range")
	}
	d := distribution.NewDense(s.vocabSize)
	for w, p := range s.phiDSum[docIndex] {
		d.Add(w, p)
	}
	return d
}
