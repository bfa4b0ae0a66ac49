package xmldoc

import (
	"context"
	"testing"
)

func TestParseCachedPopulatesAndReusesCache(t *testing.T) {
	ctx := context.Background()
	cache, err := OpenCache(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenCache() error = %v", err)
	}
	defer cache.Close()

	raw := []byte(sampleArticle)

	first, err := ParseCached(ctx, cache, raw)
	if err != nil {
		t.Fatalf("ParseCached() first call error = %v", err)
	}
	if first.Title != "Sample Title" {
		t.Fatalf("Title = %q, want Sample Title", first.Title)
	}

	checksum := Checksum(raw)
	_, hit, err := cache.Lookup(ctx, checksum)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !hit {
		t.Fatal("Lookup() hit = false after ParseCached populated the cache")
	}

	second, err := ParseCached(ctx, cache, raw)
	if err != nil {
		t.Fatalf("ParseCached() second call error = %v", err)
	}
	if second.Title != first.Title || len(second.Sentences) != len(first.Sentences) {
		t.Fatalf("second ParseCached() = %+v, want match with first %+v", second, first)
	}
}

func TestLookupMissReturnsFalse(t *testing.T) {
	ctx := context.Background()
	cache, err := OpenCache(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenCache() error = %v", err)
	}
	defer cache.Close()

	_, hit, err := cache.Lookup(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if hit {
		t.Fatal("Lookup() hit = true for a checksum never stored")
	}
}
