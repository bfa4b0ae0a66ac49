// Package xmldoc ingests the tokenized XML article format the original
// tool's corpora were distributed in, turning it into document.Document
// values ready for the lexicon, KLSum, and TopicSum.
package xmldoc

import (
	"crypto/rand"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/wencanluo/summarizer/internal/document"
	"github.com/wencanluo/summarizer/internal/internalerr"
)

type xmlArticle struct {
	XMLName xml.Name  `xml:"article"`
	ID      string    `xml:"id,attr"`
	Title   string    `xml:"title"`
	Body    xmlBody   `xml:"body"`
}

type xmlBody struct {
	Items []xmlItem `xml:"item"`
}

type xmlItem struct {
	Text xmlText `xml:"text"`
}

type xmlText struct {
	Paragraphs []xmlParagraph `xml:"p"`
}

type xmlParagraph struct {
	Sentences []xmlSentence `xml:"sentence"`
}

type xmlSentence struct {
	PlainText string    `xml:"plainText"`
	Tokens    xmlTokens `xml:"tokens"`
}

type xmlTokens struct {
	Token []xmlToken `xml:"token"`
}

type xmlToken struct {
	POS   string `xml:"pos,attr"`
	Value string `xml:",chardata"`
}

// idEntropy supplies a fallback document ID when the source XML omits
// one, e.g. for ad-hoc ingestion of fragments that were never assigned
// a stable article id.
var idEntropy = ulid.Monotonic(rand.Reader, 0)

// Parse reads one article's XML from r and returns its Document. It
// returns an error wrapping internalerr.ErrInput if the XML cannot be
// decoded. An article without a title element yields a Document with an
// empty Title; one without an id attribute gets a generated ULID.
func Parse(r io.Reader) (document.Document, error) {
	var article xmlArticle
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&article); err != nil {
		return document.Document{}, fmt.Errorf("xmldoc: decoding article: %w: %v", internalerr.ErrInput, err)
	}

	id := article.ID
	if id == "" {
		id = ulid.MustNew(ulid.Now(), idEntropy).String()
	}

	doc := document.Document{
		ID:    id,
		Title: strings.TrimSpace(article.Title),
	}

	for _, item := range article.Body.Items {
		for _, p := range item.Text.Paragraphs {
			for _, s := range p.Sentences {
				doc.Sentences = append(doc.Sentences, convertSentence(s))
			}
		}
	}

	return doc, nil
}

func convertSentence(s xmlSentence) document.Sentence {
	sent := document.Sentence{
		RawContent: strings.TrimSpace(s.PlainText),
	}
	for _, tok := range s.Tokens.Token {
		value := strings.TrimSpace(tok.Value)
		if value == "" {
			continue
		}
		sent.Tokens = append(sent.Tokens, strings.ToLower(value))
		sent.POSTags = append(sent.POSTags, tok.POS)
	}
	return sent
}

// ParseCollection reads every article in docs (each a separate XML
// document) into a single document.Collection, stopping at the first
// parse failure.
func ParseCollection(docs []io.Reader) (document.Collection, error) {
	col := document.Collection{}
	for i, r := range docs {
		doc, err := Parse(r)
		if err != nil {
			return document.Collection{}, fmt.Errorf("xmldoc: document %d: %w", i, err)
		}
		col.Documents = append(col.Documents, doc)
	}
	return col, nil
}
