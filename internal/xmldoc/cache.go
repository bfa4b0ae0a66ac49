package xmldoc

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/wencanluo/summarizer/internal/document"
)

// Cache stores ingested document.Document values keyed by a checksum of
// their source bytes, so repeated CLI runs over the same corpus skip
// re-parsing the XML. It caches ingestion output, not any trained
// model state: a TopicSum run still retrains from scratch every time it
// is invoked.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (creating if necessary) a SQLite-backed cache at
// path, enabling WAL mode for concurrent readers the way the original
// store package did for its own database.
func OpenCache(ctx context.Context, path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("xmldoc: opening cache: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("xmldoc: enabling WAL: %w", err)
	}

	if err := initCacheSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

func initCacheSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS ingested_documents (
	checksum TEXT PRIMARY KEY,
	payload  TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("xmldoc: initializing cache schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Checksum returns the cache key for raw source bytes.
func Checksum(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached Document for checksum, if present.
func (c *Cache) Lookup(ctx context.Context, checksum string) (document.Document, bool, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		"SELECT payload FROM ingested_documents WHERE checksum = ?", checksum,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return document.Document{}, false, nil
	}
	if err != nil {
		return document.Document{}, false, fmt.Errorf("xmldoc: cache lookup: %w", err)
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return document.Document{}, false, fmt.Errorf("xmldoc: decoding cached document: %w", err)
	}
	return doc, true, nil
}

// Store saves doc under checksum, overwriting any existing entry.
func (c *Cache) Store(ctx context.Context, checksum string, doc document.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("xmldoc: encoding document for cache: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		"INSERT INTO ingested_documents (checksum, payload) VALUES (?, ?) "+
			"ON CONFLICT(checksum) DO UPDATE SET payload = excluded.payload",
		checksum, string(payload),
	)
	if err != nil {
		return fmt.Errorf("xmldoc: storing cached document: %w", err)
	}
	return nil
}

// ParseCached parses raw XML bytes into a Document, consulting cache
// first and populating it on a miss.
func ParseCached(ctx context.Context, cache *Cache, raw []byte) (document.Document, error) {
	checksum := Checksum(raw)

	if doc, ok, err := cache.Lookup(ctx, checksum); err != nil {
		return document.Document{}, err
	} else if ok {
		return doc, nil
	}

	doc, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return document.Document{}, err
	}

	if err := cache.Store(ctx, checksum, doc); err != nil {
		return document.Document{}, err
	}
	return doc, nil
}
