package relevance

import (
	"testing"
	"time"

	"github.com/glbaguni/newsdigest/internal/domain"
)

func entry(title, snippet string, published *time.Time) domain.FeedEntry {
	return domain.FeedEntry{Title: title, SummarySnippet: snippet, PublishedAt: published}
}

func ptr(t time.Time) *time.Time { return &t }

func TestFilterDropsZeroScoreEntries(t *testing.T) {
	entries := []domain.FeedEntry{
		entry("Economy grows", "markets rally", nil),
		entry("Sports update", "local team wins", nil),
	}
	keywords := domain.KeywordSet{Terms: []string{"economy"}}

	result := Filter(entries, keywords, 10)
	if len(result) != 1 || result[0].Title != "Economy grows" {
		t.Fatalf("result = %+v, want only the economy entry", result)
	}
}

func TestFilterWeightsTitleHigherThanSnippet(t *testing.T) {
	entries := []domain.FeedEntry{
		entry("General news", "inflation rises across the economy", nil), // snippet hit only
		entry("Economy news today", "general update", nil),               // title hit
	}
	keywords := domain.KeywordSet{Terms: []string{"economy"}}

	result := Filter(entries, keywords, 10)
	if len(result) != 2 || result[0].Title != "Economy news today" {
		t.Fatalf("result = %+v, want title-hit entry ranked first", result)
	}
}

func TestFilterTieBreaksByNewerPublishedAt(t *testing.T) {
	older := ptr(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := ptr(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	entries := []domain.FeedEntry{
		entry("economy older", "", older),
		entry("economy newer", "", newer),
	}
	keywords := domain.KeywordSet{Terms: []string{"economy"}}

	result := Filter(entries, keywords, 10)
	if result[0].Title != "economy newer" {
		t.Fatalf("result = %+v, want newer entry first on tie", result)
	}
}

func TestFilterTieBreaksByStableInputOrderWhenNoDate(t *testing.T) {
	entries := []domain.FeedEntry{
		entry("economy first", "", nil),
		entry("economy second", "", nil),
	}
	keywords := domain.KeywordSet{Terms: []string{"economy"}}

	result := Filter(entries, keywords, 10)
	if result[0].Title != "economy first" || result[1].Title != "economy second" {
		t.Fatalf("result = %+v, want stable input order preserved", result)
	}
}

func TestFilterRespectsLimit(t *testing.T) {
	entries := []domain.FeedEntry{
		entry("economy one", "", nil),
		entry("economy two", "", nil),
		entry("economy three", "", nil),
	}
	keywords := domain.KeywordSet{Terms: []string{"economy"}}

	result := Filter(entries, keywords, 2)
	if len(result) != 2 {
		t.Fatalf("len(result) = %d, want 2", len(result))
	}
}

func TestFilterCaseInsensitiveMatch(t *testing.T) {
	entries := []domain.FeedEntry{entry("ECONOMY surges", "", nil)}
	keywords := domain.KeywordSet{Terms: []string{"economy"}}

	result := Filter(entries, keywords, 10)
	if len(result) != 1 {
		t.Fatalf("expected case-insensitive match, got %+v", result)
	}
}
