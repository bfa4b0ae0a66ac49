// Package document defines the value types the summarizer operates on:
// tokenized sentences grouped into documents, grouped into a collection
// ready for KLSum or TopicSum to summarize.
package document

import (
	"strings"

	"github.com/wencanluo/summarizer/internal/distribution"
)

// Sentence is a single tokenized sentence plus its original surface form.
type Sentence struct {
	// RawContent is the untokenized sentence text, used for the final
	// rendered summary.
	RawContent string

	// Tokens are the sentence's word tokens in order, lowercased and
	// ready for lexicon lookup.
	Tokens []string

	// POSTags holds a part-of-speech tag per token, parallel to Tokens.
	// It may be empty if the source did not supply tags.
	POSTags []string

	// PriorScore is an externally supplied salience score for this
	// sentence (e.g. from lead position, headline overlap, or a
	// supervised model), mixed into KLSum's selection score alongside
	// its KL-divergence term. Zero if no prior is available.
	PriorScore float64
}

// NumTokens returns len(s.Tokens).
func (s Sentence) NumTokens() int {
	return len(s.Tokens)
}

// TermFrequency returns a Sparse distribution counting each token's
// occurrences in the sentence.
func (s Sentence) TermFrequency() *distribution.Sparse {
	d := distribution.NewSparse()
	for _, tok := range s.Tokens {
		d.Add(tok, 1)
	}
	return d
}

// Document is one article: a title and an ordered list of sentences.
type Document struct {
	// ID identifies the document, e.g. for provenance in a summary trace.
	ID string

	Title string

	Sentences []Sentence
}

// NumTokens returns the total token count across all sentences.
func (d Document) NumTokens() int {
	n := 0
	for _, s := range d.Sentences {
		n += s.NumTokens()
	}
	return n
}

// TermFrequency returns a Sparse distribution counting every token
// occurrence across the document's sentences.
func (d Document) TermFrequency() *distribution.Sparse {
	out := distribution.NewSparse()
	for _, s := range d.Sentences {
		for _, tok := range s.Tokens {
			out.Add(tok, 1)
		}
	}
	return out
}

// Collection is a set of documents to be jointly summarized. TopicSum
// treats a Collection as the unit that shares a single COL-topic
// distribution; KLSum treats it as the pool of candidate sentences.
type Collection struct {
	Documents []Document
}

// NumTokens returns the total token count across every document.
func (c Collection) NumTokens() int {
	n := 0
	for _, d := range c.Documents {
		n += d.NumTokens()
	}
	return n
}

// TermFrequency returns a Sparse distribution counting every token
// occurrence across every document in the collection.
func (c Collection) TermFrequency() *distribution.Sparse {
	out := distribution.NewSparse()
	for _, d := range c.Documents {
		for _, s := range d.Sentences {
			for _, tok := range s.Tokens {
				out.Add(tok, 1)
			}
		}
	}
	return out
}

// AllSentences flattens every sentence from every document into a single
// slice, in document then sentence order.
func (c Collection) AllSentences() []Sentence {
	var out []Sentence
	for _, d := range c.Documents {
		out = append(out, d.Sentences...)
	}
	return out
}

// LengthUnit selects how a length limit is measured.
type LengthUnit int

const (
	// Token counts the number of word tokens in the candidate summary.
	Token LengthUnit = iota
	// Sentence counts the number of sentences in the candidate summary.
	Sentence
	// Character counts the number of characters across the sentences'
	// RawContent.
	Character
)

// LengthSpec bounds the size of a produced summary.
type LengthSpec struct {
	Unit  LengthUnit
	Limit int
}

// ReachesLengthLimit reports whether appending candidate to the
// sentences already selected would meet or exceed spec's limit. A
// LengthSpec with Limit <= 0 never reaches its limit, so summarization
// can run unbounded if the caller asks for it.
func ReachesLengthLimit(selected []Sentence, candidate Sentence, spec LengthSpec) bool {
	if spec.Limit <= 0 {
		return false
	}
	switch spec.Unit {
	case Sentence:
		return len(selected)+1 >= spec.Limit
	case Character:
		total := len(candidate.RawContent)
		for _, s := range selected {
			total += len(s.RawContent)
		}
		return total >= spec.Limit
	default: // Token
		total := candidate.NumTokens()
		for _, s := range selected {
			total += s.NumTokens()
		}
		return total >= spec.Limit
	}
}

// FitToSize trims the tail of sentences so the running total never
// exceeds spec's limit, truncating the sentence that would cross the
// boundary rather than dropping it outright when the unit is Character
// or Token and partial inclusion still leaves room. It mirrors the
// original implementation's fit-to-size post-pass over a greedily
// assembled summary.
func FitToSize(sentences []Sentence, spec LengthSpec) []Sentence {
	if spec.Limit <= 0 {
		return sentences
	}

	var kept []Sentence
	switch spec.Unit {
	case Sentence:
		if len(sentences) > spec.Limit {
			kept = sentences[:spec.Limit]
		} else {
			kept = sentences
		}
	case Character:
		total := 0
		for _, s := range sentences {
			if total+len(s.RawContent) > spec.Limit {
				remaining := spec.Limit - total
				if remaining > 0 {
					kept = append(kept, Sentence{
						RawContent: truncateRunes(s.RawContent, remaining),
						Tokens:     s.Tokens,
						POSTags:    s.POSTags,
					})
				}
				return kept
			}
			kept = append(kept, s)
			total += len(s.RawContent)
		}
	default: // Token
		total := 0
		for _, s := range sentences {
			if total+s.NumTokens() > spec.Limit {
				remaining := spec.Limit - total
				if remaining <= 0 {
					return kept
				}
				kept = append(kept, Sentence{
					RawContent: s.RawContent,
					Tokens:     s.Tokens[:remaining],
					POSTags:    posPrefix(s.POSTags, remaining),
				})
				return kept
			}
			kept = append(kept, s)
			total += s.NumTokens()
		}
	}
	return kept
}

func truncateRunes(s string, n int) string {
	if n >= len(s) {
		return s
	}
	return strings.TrimSpace(s[:n])
}

func posPrefix(tags []string, n int) []string {
	if n > len(tags) {
		n = len(tags)
	}
	return tags[:n]
}
