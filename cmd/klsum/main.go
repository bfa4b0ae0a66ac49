// Command klsum runs the KLSum engine directly over one or more XML
// documents, without TopicSum training.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/wencanluo/summarizer/internal/document"
	"github.com/wencanluo/summarizer/internal/klsum"
	"github.com/wencanluo/summarizer/internal/xmldoc"
	"github.com/wencanluo/summarizer/pkg/summarizer"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional: path to a YAML options file")
		unit       = flag.String("unit", "token", "Length unit: token, sentence, or character")
		limit      = flag.Int("limit", 100, "Summary length limit, in --unit units")
		strategy   = flag.String("strategy", "greedy", "Selection strategy: greedy or ranking")
		pp         = flag.String("postprocess", "none", "Postprocessor: none, news, or test")
	)
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		log.Fatal("klsum: at least one input XML file required")
	}

	opts := summarizer.DefaultOptions()
	if *configPath != "" {
		loaded, err := summarizer.LoadOptions(*configPath)
		if err != nil {
			log.Fatalf("klsum: %v", err)
		}
		opts = loaded
	}
	opts.Mode = summarizer.KLSumMode
	opts.Length = document.LengthSpec{Unit: parseUnit(*unit), Limit: *limit}
	opts.Postprocessor = *pp
	if *strategy == "ranking" {
		opts.Strategy = klsum.SentenceRanking
	}

	readers := make([]*os.File, 0, len(files))
	defer func() {
		for _, f := range readers {
			f.Close()
		}
	}()

	var col document.Collection
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("klsum: opening %s: %v", path, err)
		}
		readers = append(readers, f)

		doc, err := xmldoc.Parse(f)
		if err != nil {
			log.Fatalf("klsum: parsing %s: %v", path, err)
		}
		col.Documents = append(col.Documents, doc)
	}

	facade := summarizer.New(opts, log.Default())
	selected, err := facade.Summarize(col)
	if err != nil {
		log.Fatalf("klsum: %v", err)
	}

	for _, s := range selected {
		os.Stdout.WriteString(s.RawContent)
		os.Stdout.WriteString("\n")
	}
}

func parseUnit(s string) document.LengthUnit {
	switch s {
	case "sentence":
		return document.Sentence
	case "character":
		return document.Character
	default:
		return document.Token
	}
}
