// Package gibbs implements a generic collapsed-Gibbs training loop. The
// loop itself knows nothing about topics or words; all sampler-specific
// state lives behind the Trainer interface, which TopicSum implements.
package gibbs

import "math/rand"

// Trainer is implemented by a concrete collapsed-Gibbs sampler. The loop
// in Run drives a Trainer through initialization, burn-in, and sampling
// iterations, asking it to accumulate its parameter estimates once per
// kept iteration.
type Trainer interface {
	// Init prepares any counters needed before the first iteration.
	Init()

	// InitialAssignment assigns every latent variable (e.g. a topic per
	// token) an initial value, typically sampled uniformly.
	InitialAssignment(r *rand.Rand)

	// Iteration performs one full sweep resampling every latent
	// variable conditioned on all the others, collapsed-Gibbs style.
	Iteration(r *rand.Rand)

	// CalculateParams accumulates the current iteration's parameter
	// estimates (e.g. topic-word distributions) into a running sum. It
	// is called once per kept iteration, after burn-in and subject to
	// Lag.
	CalculateParams()

	// MultiplyParams is called once, after training completes, with the
	// reciprocal of the number of iterations CalculateParams was invoked
	// for; it is not called when no iteration was kept. Implementations
	// use it to turn an accumulated sum into an average.
	MultiplyParams(factor float64)

	// ModelLikelihood returns the current log-likelihood of the model
	// under the latent-variable assignment, for convergence tracking.
	ModelLikelihood() float64
}

// Config controls the training loop's iteration count and which
// iterations contribute to the averaged parameter estimate.
type Config struct {
	// NumIterations is the total number of Gibbs sweeps to perform,
	// including any discarded as burn-in.
	NumIterations int

	// BurnIn is the number of initial iterations whose latent-variable
	// samples are discarded before parameter accumulation begins. An
	// iteration index i (0-based) is past burn-in when i > BurnIn,
	// following the original implementation's strict inequality: the
	// iteration at index == BurnIn is itself still discarded, so the
	// number of non-burn-in iterations is NumIterations-BurnIn-1, not
	// NumIterations-BurnIn. This one-off is a documented open question
	// in the source material and is preserved here rather than
	// "fixed" to the more obvious >=.
	BurnIn int

	// Lag thins the post-burn-in iterations kept for averaging: with
	// Lag > 0, only iterations where i%Lag == 0 are accumulated. Lag
	// <= 0 means every post-burn-in iteration is kept.
	Lag int

	// Seed seeds the run's PRNG for reproducibility.
	Seed int64
}

// Result reports how many iterations actually contributed to the
// averaged parameter estimate, and the model likelihood trace recorded
// at the end of every iteration.
type Result struct {
	KeptIterations  int
	LikelihoodTrace []float64
}

// Run drives trainer through cfg.NumIterations Gibbs sweeps, discarding
// burn-in and applying lag as described on Config, then scales the
// accumulated parameters by 1/KeptIterations via MultiplyParams.
//
// Run panics if cfg.NumIterations <= 0: training for zero iterations
// produces no usable parameters and indicates a misconfigured caller.
func Run(trainer Trainer, cfg Config) Result {
	if cfg.NumIterations <= 0 {
		panic("gibbs: NumIterations must be > 0")
	}

	r := rand.New(rand.NewSource(cfg.Seed))

	trainer.Init()
	trainer.InitialAssignment(r)

	result := Result{LikelihoodTrace: make([]float64, 0, cfg.NumIterations)}

	for i := 0; i < cfg.NumIterations; i++ {
		trainer.Iteration(r)

		if keepIteration(i, cfg) {
			trainer.CalculateParams()
			result.KeptIterations++
		}

		result.LikelihoodTrace = append(result.LikelihoodTrace, trainer.ModelLikelihood())
	}

	if result.KeptIterations > 0 {
		trainer.MultiplyParams(1.0 / float64(result.KeptIterations))
	}

	return result
}

// keepIteration reports whether iteration i's sample should contribute
// to the averaged parameter estimate, per Config.BurnIn and Config.Lag.
func keepIteration(i int, cfg Config) bool {
	if i <= cfg.BurnIn {
		return false
	}
	if cfg.Lag <= 0 {
		return true
	}
	return i%cfg.Lag == 0
}
