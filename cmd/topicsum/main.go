// Command topicsum trains a three-topic Gibbs sampler over a
// collection of XML documents and summarizes each document against its
// own document-topic posterior.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/wencanluo/summarizer/internal/document"
	"github.com/wencanluo/summarizer/internal/xmldoc"
	"github.com/wencanluo/summarizer/pkg/summarizer"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional: path to a YAML options file")
		limit      = flag.Int("limit", 5, "Summary length limit, in sentences, per document")
		iterations = flag.Int("iterations", 1000, "Number of Gibbs training iterations")
		burnIn     = flag.Int("burn-in", 50, "Number of burn-in iterations to discard")
		lag        = flag.Int("lag", 10, "Thinning interval for parameter averaging")
		seed       = flag.Int64("seed", 0, "Random seed for the Gibbs sampler")
	)
	flag.Parse()

	files := flag.Args()
	if len(files) < 2 {
		log.Fatal("topicsum: at least two input XML files required (a collection needs more than one document)")
	}

	opts := summarizer.DefaultOptions()
	if *configPath != "" {
		loaded, err := summarizer.LoadOptions(*configPath)
		if err != nil {
			log.Fatalf("topicsum: %v", err)
		}
		opts = loaded
	}
	opts.Mode = summarizer.TopicSumMode
	opts.Length = document.LengthSpec{Unit: document.Sentence, Limit: *limit}
	opts.TopicSum.NumIterations = *iterations
	opts.TopicSum.BurnIn = *burnIn
	opts.TopicSum.Lag = *lag
	opts.TopicSum.Seed = *seed

	var col document.Collection
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("topicsum: opening %s: %v", path, err)
		}

		doc, err := xmldoc.Parse(f)
		f.Close()
		if err != nil {
			log.Fatalf("topicsum: parsing %s: %v", path, err)
		}
		col.Documents = append(col.Documents, doc)
	}

	facade := summarizer.New(opts, log.Default())
	selected, err := facade.Summarize(col)
	if err != nil {
		log.Fatalf("topicsum: %v", err)
	}

	for _, s := range selected {
		os.Stdout.WriteString(s.RawContent)
		os.Stdout.WriteString("\n")
	}
}
