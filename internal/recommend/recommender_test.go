package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/glbaguni/newsdigest/internal/domain"
)

type fakeSampler struct {
	entries []domain.FeedEntry
	err     error
}

func (f *fakeSampler) Sample(ctx context.Context, deadline time.Duration, perSource int) ([]domain.FeedEntry, error) {
	return f.entries, f.err
}

type fakeStore struct {
	keywords   map[string]int
	categories map[domain.Category]int
	history    []domain.HistoryRecord
}

func (f *fakeStore) Insert(ctx context.Context, record domain.HistoryRecord) (string, error) {
	f.history = append(f.history, record)
	return "id", nil
}

func (f *fakeStore) List(ctx context.Context, userID string, page, perPage int, languageFilter domain.Language) ([]domain.HistoryRecord, int, error) {
	if page > 1 {
		return nil, len(f.history), nil
	}
	return f.history, len(f.history), nil
}

func (f *fakeStore) KeywordsOfUser(ctx context.Context, userID string, sinceDays int) (map[string]int, error) {
	return f.keywords, nil
}

func (f *fakeStore) CategoriesOfUser(ctx context.Context, userID string, sinceDays int) (map[domain.Category]int, error) {
	return f.categories, nil
}

func (f *fakeStore) InsertFeedback(ctx context.Context, record domain.FeedbackRecord) error {
	return nil
}

func (f *fakeStore) InsertRecommendationClick(ctx context.Context, userID, articleURL string, clickedAt time.Time) error {
	return nil
}

func (f *fakeStore) Close() error { return nil }

func entry(title, link string, category domain.Category, published *time.Time) domain.FeedEntry {
	return domain.FeedEntry{
		Title:       title,
		Link:        link,
		PublishedAt: published,
		Source:      domain.FeedSource{Name: "test-source", Category: category},
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestRecommendTrendingWhenNoHistory(t *testing.T) {
	now := time.Now().UTC()
	sampler := &fakeSampler{entries: []domain.FeedEntry{
		entry("fresh news", "https://a.example/1", domain.CategoryGeneral, ptrTime(now)),
		entry("stale news", "https://a.example/2", domain.CategoryGeneral, ptrTime(now.Add(-96*time.Hour))),
	}}
	store := &fakeStore{}
	r := New(store, sampler, 30)

	recs, err := r.Recommend(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.RecommendationType != domain.RecommendationTrending {
			t.Fatalf("type = %s, want trending", rec.RecommendationType)
		}
	}
	if recs[0].ArticleURL != "https://a.example/1" {
		t.Fatalf("expected fresher article ranked first, got %s", recs[0].ArticleURL)
	}
}

func TestRecommendKeywordCandidatesScoreAndNormalize(t *testing.T) {
	sampler := &fakeSampler{entries: []domain.FeedEntry{
		entry("경제 시장 전망", "https://a.example/1", domain.CategoryEconomy, nil),
		entry("스포츠 소식", "https://a.example/2", domain.CategorySports, nil),
	}}
	store := &fakeStore{keywords: map[string]int{"경제": 5, "시장": 3}}
	r := New(store, sampler, 30)

	recs, err := r.Recommend(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1 (only the matching article)", len(recs))
	}
	if recs[0].ArticleURL != "https://a.example/1" {
		t.Fatalf("unexpected winner: %s", recs[0].ArticleURL)
	}
	if recs[0].RecommendationScore != 1 {
		t.Fatalf("single-result score should normalize to 1, got %f", recs[0].RecommendationScore)
	}
}

func TestRecommendExcludesHistoryURLs(t *testing.T) {
	sampler := &fakeSampler{entries: []domain.FeedEntry{
		entry("경제 시장 전망", "https://a.example/1", domain.CategoryEconomy, nil),
	}}
	store := &fakeStore{
		keywords: map[string]int{"경제": 1},
		history:  []domain.HistoryRecord{{ArticleURL: "https://a.example/1"}},
	}
	r := New(store, sampler, 30)

	recs, err := r.Recommend(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("len(recs) = %d, want 0 (already in history)", len(recs))
	}
}

func TestRecommendRespectsLimit(t *testing.T) {
	now := time.Now().UTC()
	var entries []domain.FeedEntry
	for i := 0; i < 30; i++ {
		entries = append(entries, entry("article", "https://a.example/"+string(rune('a'+i)), domain.CategoryGeneral, ptrTime(now)))
	}
	sampler := &fakeSampler{entries: entries}
	store := &fakeStore{}
	r := New(store, sampler, 30)

	recs, err := r.Recommend(context.Background(), "u1", 50)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != maxLimit {
		t.Fatalf("len(recs) = %d, want capped at %d", len(recs), maxLimit)
	}
}

func TestRecommendDedupesKeepingHigherScore(t *testing.T) {
	sampler := &fakeSampler{entries: []domain.FeedEntry{
		entry("경제 경제 시장", "https://a.example/1", domain.CategoryEconomy, nil),
	}}
	store := &fakeStore{
		keywords:   map[string]int{"경제": 4},
		categories: map[domain.Category]int{domain.CategoryEconomy: 1},
	}
	r := New(store, sampler, 30)

	recs, err := r.Recommend(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1 (deduped by URL)", len(recs))
	}
	if recs[0].RecommendationType != domain.RecommendationKeyword {
		t.Fatalf("type = %s, want keyword (keyword score 8/4=2 beats category score 1/1=1)", recs[0].RecommendationType)
	}
}
