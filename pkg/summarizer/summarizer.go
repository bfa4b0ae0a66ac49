// Package summarizer is the public facade composing XML ingestion with
// either a direct KLSum run or a TopicSum-trained run feeding KLSum, the
// two summarization modes the original tool supported.
package summarizer

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wencanluo/summarizer/internal/distribution"
	"github.com/wencanluo/summarizer/internal/document"
	"github.com/wencanluo/summarizer/internal/gibbs"
	"github.com/wencanluo/summarizer/internal/internalerr"
	"github.com/wencanluo/summarizer/internal/klsum"
	"github.com/wencanluo/summarizer/internal/lexicon"
	"github.com/wencanluo/summarizer/internal/postprocess"
	"github.com/wencanluo/summarizer/internal/topicsum"
)

// Mode selects which engine produces the summary.
type Mode int

const (
	// KLSumMode summarizes directly against the collection's own term
	// frequency as the target distribution.
	KLSumMode Mode = iota

	// TopicSumMode first trains a three-topic Gibbs sampler over the
	// collection and summarizes each document against its own
	// document-topic posterior, isolating document-specific content
	// from what is shared across the collection or merely common
	// background language.
	TopicSumMode
)

// Options configures a Facade. DefaultOptions returns a KLSumMode
// configuration with a 100-token summary limit and no postprocessing;
// in the zero value Length.Limit is 0, which leaves the summary unbounded.
type Options struct {
	Mode Mode `yaml:"mode"`

	Length document.LengthSpec `yaml:"length"`

	Strategy      klsum.Strategy `yaml:"strategy"`
	Smoothing     float64        `yaml:"smoothing"`
	SummaryWeight float64        `yaml:"summary_weight"`
	PriorWeight   float64        `yaml:"prior_weight"`
	Postprocessor string         `yaml:"postprocessor"` // "news", "test", "none"

	TopicSum TopicSumOptions `yaml:"topicsum"`
}

// TopicSumOptions configures the TopicSum training run, used only when
// Options.Mode is TopicSumMode.
type TopicSumOptions struct {
	Lambda [3]float64 `yaml:"lambda"`
	Gamma  [3]float64 `yaml:"gamma"`

	NumIterations int   `yaml:"num_iterations"`
	BurnIn        int   `yaml:"burn_in"`
	Lag           int   `yaml:"lag"`
	Seed          int64 `yaml:"seed"`

	FixedBackgroundPhi      map[string]float64 `yaml:"fixed_background_phi"`
	FixedBackgroundAvgWords float64             `yaml:"fixed_background_avg_words"`
}

// DefaultOptions returns the same defaults the original tool's command
// line wrapper assumed when no configuration file was supplied.
func DefaultOptions() Options {
	return Options{
		Mode:          KLSumMode,
		Length:        document.LengthSpec{Unit: document.Token, Limit: 100},
		Smoothing:     distribution.DefaultSmoothing,
		SummaryWeight: 1.0,
		TopicSum: TopicSumOptions{
			Lambda:        [3]float64{0.1, 0.1, 0.1},
			Gamma:         [3]float64{1.0, 1.0, 1.0},
			NumIterations: 1000,
			BurnIn:        50,
			Lag:           10,
			Seed:          0,
		},
	}
}

// LoadOptions reads Options from a YAML file at path, starting from
// DefaultOptions so an incomplete file still produces a usable
// configuration.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("summarizer: reading options file: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("summarizer: %w: parsing options file: %v", internalerr.ErrConfiguration, err)
	}
	return opts, nil
}

func (o Options) postprocessor() postprocess.Processor {
	switch o.Postprocessor {
	case "news":
		return postprocess.News{}
	case "test":
		return postprocess.Test{}
	default:
		return postprocess.None{}
	}
}

// Facade is the summarizer's entry point: build one with New, then call
// Summarize for each collection. A Facade is not safe for concurrent
// use from multiple goroutines, matching the Gibbs sampler and KLSum
// engine it wraps.
type Facade struct {
	opts     Options
	lastErr  error
	logger   *log.Logger
}

// New builds a Facade with the given options. A nil logger defaults to
// log.Default().
func New(opts Options, logger *log.Logger) *Facade {
	if logger == nil {
		logger = log.Default()
	}
	return &Facade{opts: opts, logger: logger}
}

// LastError returns the error from the most recent Summarize call, or
// nil if it succeeded.
func (f *Facade) LastError() error {
	return f.lastErr
}

// Summarize ingests col and returns its selected summary sentences.
// It returns internalerr.ErrEmptyCollection if col has no documents.
func (f *Facade) Summarize(col document.Collection) ([]document.Sentence, error) {
	f.lastErr = nil

	if len(col.Documents) == 0 {
		f.lastErr = internalerr.ErrEmptyCollection
		return nil, f.lastErr
	}

	lex := lexicon.New()
	for _, doc := range col.Documents {
		for _, s := range doc.Sentences {
			for _, tok := range s.Tokens {
				lex.Add(tok)
			}
		}
	}

	var result []document.Sentence
	var err error
	switch f.opts.Mode {
	case TopicSumMode:
		result, err = f.summarizeTopicSum(col, lex)
	default:
		result, err = f.summarizeKLSum(col, lex)
	}

	if err != nil {
		f.lastErr = err
		return nil, err
	}
	return result, nil
}

func (f *Facade) summarizeKLSum(col document.Collection, lex *lexicon.Lexicon) ([]document.Sentence, error) {
	target := col.TermFrequency()
	engine := klsum.New(lex, target, klsum.Options{
		Strategy:      f.opts.Strategy,
		Length:        f.opts.Length,
		Smoothing:     f.opts.Smoothing,
		SummaryWeight: f.opts.SummaryWeight,
		PriorWeight:   f.opts.PriorWeight,
		Postprocessor: f.opts.postprocessor(),
	})
	return engine.Summarize(col.Documents), nil
}

func (f *Facade) summarizeTopicSum(col document.Collection, lex *lexicon.Lexicon) ([]document.Sentence, error) {
	var fixed *topicsum.FixedBackground
	if len(f.opts.TopicSum.FixedBackgroundPhi) > 0 {
		fixed = &topicsum.FixedBackground{
			Phi:      f.opts.TopicSum.FixedBackgroundPhi,
			AvgWords: f.opts.TopicSum.FixedBackgroundAvgWords,
		}
	}

	params := topicsum.Params{Lambda: f.opts.TopicSum.Lambda, Gamma: f.opts.TopicSum.Gamma}
	sampler := topicsum.New(col, lex, params, fixed)

	result := sampler.Run(gibbs.Config{
		NumIterations: f.opts.TopicSum.NumIterations,
		BurnIn:        f.opts.TopicSum.BurnIn,
		Lag:           f.opts.TopicSum.Lag,
		Seed:          f.opts.TopicSum.Seed,
	})
	f.logger.Printf("summarizer: topicsum trained, kept_iterations=%d final_likelihood=%.4f",
		result.KeptIterations, lastOf(result.LikelihoodTrace))

	var out []document.Sentence
	for i, doc := range col.Documents {
		posteriorDense := sampler.Posterior(i)
		posterior := denseToSparse(posteriorDense, lex)

		engine := klsum.New(lex, posterior, klsum.Options{
			Strategy:      f.opts.Strategy,
			Length:        f.opts.Length,
			Smoothing:     f.opts.Smoothing,
			SummaryWeight: f.opts.SummaryWeight,
			PriorWeight:   f.opts.PriorWeight,
			Postprocessor: f.opts.postprocessor(),
		})
		out = append(out, engine.Summarize([]document.Document{doc})...)
	}
	return out, nil
}

func denseToSparse(d *distribution.Dense, lex *lexicon.Lexicon) *distribution.Sparse {
	out := distribution.NewSparse()
	for id := 0; id < d.Len(); id++ {
		if w := d.Weight(id); w != 0 {
			out.Add(lex.TokenOf(id), w)
		}
	}
	return out
}

func lastOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[len(xs)-1]
}

// Quick produces a naive lead-based summary without running KLSum or
// TopicSum at all: it takes sentences in document order until spec's
// limit is reached. It is the fallback the original tool used when the
// full pipeline was unavailable or the input was too small to justify
// it (e.g. a single short document), and is also useful as a baseline
// to compare KLSum's output against.
func Quick(col document.Collection, spec document.LengthSpec) []document.Sentence {
	var out []document.Sentence
	for _, doc := range col.Documents {
		for _, s := range doc.Sentences {
			if document.ReachesLengthLimit(out, s, spec) && len(out) > 0 {
				return document.FitToSize(append(out, s), spec)
			}
			out = append(out, s)
		}
	}
	return out
}
