package klsum

import "github.com/wencanluo/summarizer/internal/distribution"

// VectorDistribution is a dense word-count vector restricted to a fixed
// vocabulary (the top words of a target distribution), used to hold the
// running sum of a candidate summary's token counts without
// reallocating a map on every greedy step.
type VectorDistribution struct {
	vocab   []int // lexicon ids included in this vector's restricted vocabulary
	index   map[int]int
	weights []float64
}

// NewVectorDistribution builds an empty vector over the given
// restricted vocabulary (lexicon ids).
func NewVectorDistribution(vocab []int) *VectorDistribution {
	v := &VectorDistribution{
		vocab:   vocab,
		index:   make(map[int]int, len(vocab)),
		weights: make([]float64, len(vocab)),
	}
	for i, id := range vocab {
		v.index[id] = i
	}
	return v
}

// AddVector adds counts for each (id, count) pair whose id is within
// this vector's restricted vocabulary; ids outside it are ignored,
// since the target distribution was already trimmed to the words that
// matter for scoring.
func (v *VectorDistribution) AddVector(counts map[int]float64) {
	for id, c := range counts {
		if i, ok := v.index[id]; ok {
			v.weights[i] += c
		}
	}
}

// SubtractVector is AddVector's inverse: it subtracts counts for ids
// within this vector's restricted vocabulary and ignores the rest.
func (v *VectorDistribution) SubtractVector(counts map[int]float64) {
	for id, c := range counts {
		if i, ok := v.index[id]; ok {
			v.weights[i] -= c
		}
	}
}

// Clone returns a deep copy, used to evaluate a tentative addition
// without mutating the caller's running vector.
func (v *VectorDistribution) Clone() *VectorDistribution {
	out := &VectorDistribution{
		vocab:   v.vocab,
		index:   v.index,
		weights: make([]float64, len(v.weights)),
	}
	copy(out.weights, v.weights)
	return out
}

// ToSparse renders the vector as a distribution.Sparse keyed by the
// string token, for use with distribution.Sparse.KLDivergence.
func (v *VectorDistribution) ToSparse(tokenOf func(id int) string) *distribution.Sparse {
	out := distribution.NewSparse()
	for i, id := range v.vocab {
		if v.weights[i] != 0 {
			out.Add(tokenOf(id), v.weights[i])
		}
	}
	return out
}
