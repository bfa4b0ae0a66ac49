// Package lexicon implements the bijective mapping between string tokens
// and dense integer ids used throughout the summarizer to avoid repeated
// string comparisons in hot loops (Gibbs sampling, KL divergence).
package lexicon

import "fmt"

// Lexicon is an append-only bijection between tokens and ids. Ids are
// assigned in insertion order starting at 0, so a freshly built Lexicon's
// Size also serves as the bound for any dense array indexed by id.
//
// Lexicon is not safe for concurrent use; callers that share one across
// goroutines must provide their own synchronization.
type Lexicon struct {
	tokenToID map[string]int
	idToToken []string
}

// New returns an empty Lexicon.
func New() *Lexicon {
	return &Lexicon{
		tokenToID: make(map[string]int),
	}
}

// Add inserts token if it is not already present and returns its id.
// Calling Add twice with the same token is idempotent and returns the
// same id both times.
func (l *Lexicon) Add(token string) int {
	if id, ok := l.tokenToID[token]; ok {
		return id
	}
	id := len(l.idToToken)
	l.tokenToID[token] = id
	l.idToToken = append(l.idToToken, token)
	return id
}

// Contains reports whether token has been added.
func (l *Lexicon) Contains(token string) bool {
	_, ok := l.tokenToID[token]
	return ok
}

// IDOf returns the id assigned to token. It panics if token was never
// added: an unknown token at this point is a programming error, not a
// recoverable condition, since every token reaching the lexicon should
// have gone through Add during ingestion.
func (l *Lexicon) IDOf(token string) int {
	id, ok := l.tokenToID[token]
	if !ok {
		panic(fmt.Sprintf("lexicon: unknown token %q", token))
	}
	return id
}

// TryIDOf returns the id for token and whether it was found, without
// panicking.
func (l *Lexicon) TryIDOf(token string) (int, bool) {
	id, ok := l.tokenToID[token]
	return id, ok
}

// TokenOf returns the token assigned to id. It panics if id is out of
// range.
func (l *Lexicon) TokenOf(id int) string {
	if id < 0 || id >= len(l.idToToken) {
		panic(fmt.Sprintf("lexicon: id %d out of range [0,%d)", id, len(l.idToToken)))
	}
	return l.idToToken[id]
}

// Size returns the number of distinct tokens added so far.
func (l *Lexicon) Size() int {
	return len(l.idToToken)
}

// Tokens returns the tokens in id order. The returned slice is owned by
// the caller and safe to mutate.
func (l *Lexicon) Tokens() []string {
	out := make([]string, len(l.idToToken))
	copy(out, l.idToToken)
	return out
}
