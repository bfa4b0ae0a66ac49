package sampling

import (
	"math/rand"
	"testing"
)

func TestUniformWithinRange(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for i := 0; i < 1000; i++ {
		v := Uniform(r, 5)
		if v < 0 || v >= 5 {
			t.Fatalf("Uniform(5) = %d, want in [0,5)", v)
		}
	}
}

func TestUniformPanicsOnNonPositiveN(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	defer func() {
		if recover() == nil {
			t.Fatal("Uniform(0) did not panic")
		}
	}()
	Uniform(r, 0)
}

func TestMultinomialPicksOnlyPositiveWeight(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	weights := []float64{0, 0, 5, 0}
	for i := 0; i < 100; i++ {
		if got := Multinomial(r, weights); got != 2 {
			t.Fatalf("Multinomial = %d, want 2 (only positive weight)", got)
		}
	}
}

func TestMultinomialDistributionRoughlyMatchesWeights(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	weights := []float64{1, 3}
	counts := make([]int, 2)
	const trials = 20000
	for i := 0; i < trials; i++ {
		counts[Multinomial(r, weights)]++
	}
	ratio := float64(counts[1]) / float64(counts[0])
	// Expect roughly 3:1; allow generous tolerance for a statistical test.
	if ratio < 2.5 || ratio > 3.5 {
		t.Fatalf("counts = %v, ratio = %v, want ~3", counts, ratio)
	}
}

func TestMultinomialPanicsOnEmptyWeights(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	defer func() {
		if recover() == nil {
			t.Fatal("Multinomial(nil) did not panic")
		}
	}()
	Multinomial(r, nil)
}

func TestMultinomialPanicsWhenAllNonPositive(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	defer func() {
		if recover() == nil {
			t.Fatal("Multinomial with all-zero weights did not panic")
		}
	}()
	Multinomial(r, []float64{0, 0, -1})
}
