// Package recommend implements the Recommender (C9): ranked article
// suggestions derived from a user's keyword/category history, falling
// back to a recency-decayed trending mix for users with no history.
package recommend

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/glbaguni/newsdigest/internal/domain"
	"github.com/glbaguni/newsdigest/internal/history"
)

const (
	maxLimit            = 20
	defaultWindowDays   = 30
	trendingPerSource   = 2
	candidatePerSource  = 10
	trendingHalfLifeHrs = 48.0
	topCategories       = 3
	sampleDeadline      = 10 * time.Second
)

// Recommender computes personalized recommendations, per spec §4.9.
type Recommender struct {
	store      history.Store
	sampler    FeedSampler
	windowDays int
}

// New builds a Recommender over store and sampler. windowDays bounds how
// far back KeywordsOfUser/CategoriesOfUser look, per
// CoreConfig.Recommendation.WindowDays; a non-positive value falls back
// to the spec's 30-day default.
func New(store history.Store, sampler FeedSampler, windowDays int) *Recommender {
	if windowDays < 1 {
		windowDays = defaultWindowDays
	}
	return &Recommender{store: store, sampler: sampler, windowDays: windowDays}
}

// Recommend returns up to limit ranked recommendations for userID.
func (r *Recommender) Recommend(ctx context.Context, userID string, limit int) ([]domain.Recommendation, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	keywordFreq, err := r.store.KeywordsOfUser(ctx, userID, r.windowDays)
	if err != nil {
		return nil, err
	}
	categoryFreq, err := r.store.CategoriesOfUser(ctx, userID, r.windowDays)
	if err != nil {
		return nil, err
	}

	var recs []domain.Recommendation
	if len(keywordFreq) == 0 && len(categoryFreq) == 0 {
		recs, err = r.trending(ctx)
	} else {
		recs, err = r.personalized(ctx, keywordFreq, categoryFreq)
	}
	if err != nil {
		return nil, err
	}

	recs, err = r.excludeHistory(ctx, userID, recs)
	if err != nil {
		return nil, err
	}

	recs = dedupeKeepHighest(recs)
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].RecommendationScore > recs[j].RecommendationScore })
	if len(recs) > limit {
		recs = recs[:limit]
	}
	normalizeScores(recs)
	return recs, nil
}

func (r *Recommender) trending(ctx context.Context) ([]domain.Recommendation, error) {
	entries, err := r.sampler.Sample(ctx, sampleDeadline, trendingPerSource)
	if err != nil && len(entries) == 0 {
		return nil, err
	}

	now := time.Now().UTC()
	recs := make([]domain.Recommendation, 0, len(entries))
	for _, entry := range entries {
		ageHours := trendingHalfLifeHrs * 1.5
		if entry.PublishedAt != nil {
			ageHours = now.Sub(*entry.PublishedAt).Hours()
			if ageHours < 0 {
				ageHours = 0
			}
		}
		score := math.Exp(-ageHours / trendingHalfLifeHrs)
		recs = append(recs, domain.Recommendation{
			ArticleTitle:        entry.Title,
			ArticleURL:          entry.Link,
			ArticleSource:       entry.Source.Name,
			Category:            entry.Source.Category,
			RecommendationType:  domain.RecommendationTrending,
			RecommendationScore: clamp01(score),
			CreatedAt:           now,
		})
	}
	return recs, nil
}

func (r *Recommender) personalized(ctx context.Context, keywordFreq map[string]int, categoryFreq map[domain.Category]int) ([]domain.Recommendation, error) {
	entries, err := r.sampler.Sample(ctx, sampleDeadline, candidatePerSource)
	if err != nil && len(entries) == 0 {
		return nil, err
	}
	now := time.Now().UTC()

	var recs []domain.Recommendation
	if len(keywordFreq) > 0 {
		recs = append(recs, keywordCandidates(entries, keywordFreq, now)...)
	}
	if len(categoryFreq) > 0 {
		recs = append(recs, categoryCandidates(entries, categoryFreq, now)...)
	}
	return recs, nil
}

// keywordCandidates scores entries by Σ_t freq(t)·titleHits(t), normalized
// by the total keyword frequency mass, per spec §4.9 step 3.
func keywordCandidates(entries []domain.FeedEntry, keywordFreq map[string]int, now time.Time) []domain.Recommendation {
	normalize := 0
	for _, freq := range keywordFreq {
		normalize += freq
	}
	if normalize < 1 {
		normalize = 1
	}

	var matchedKeywords []string
	for term := range keywordFreq {
		matchedKeywords = append(matchedKeywords, term)
	}
	sort.Strings(matchedKeywords)

	var recs []domain.Recommendation
	for _, entry := range entries {
		title := strings.ToLower(entry.Title)
		score := 0.0
		var hit []string
		for term, freq := range keywordFreq {
			t := strings.ToLower(term)
			if t == "" {
				continue
			}
			hits := strings.Count(title, t)
			if hits == 0 {
				continue
			}
			score += float64(freq) * float64(hits)
			hit = append(hit, term)
		}
		if score == 0 {
			continue
		}
		sort.Strings(hit)
		recs = append(recs, domain.Recommendation{
			ArticleTitle:        entry.Title,
			ArticleURL:          entry.Link,
			ArticleSource:       entry.Source.Name,
			Category:            entry.Source.Category,
			Keywords:            hit,
			RecommendationType:  domain.RecommendationKeyword,
			RecommendationScore: score / float64(normalize),
			CreatedAt:           now,
		})
	}
	return recs
}

// categoryCandidates scores entries whose source category is among the
// user's top-3 most frequent categories, per spec §4.9 step 3.
func categoryCandidates(entries []domain.FeedEntry, categoryFreq map[domain.Category]int, now time.Time) []domain.Recommendation {
	type catCount struct {
		category domain.Category
		count    int
	}
	ordered := make([]catCount, 0, len(categoryFreq))
	total := 0
	for cat, count := range categoryFreq {
		ordered = append(ordered, catCount{cat, count})
		total += count
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].category < ordered[j].category
	})
	if len(ordered) > topCategories {
		ordered = ordered[:topCategories]
	}
	if total < 1 {
		total = 1
	}

	top := make(map[domain.Category]int, len(ordered))
	for _, oc := range ordered {
		top[oc.category] = oc.count
	}

	var recs []domain.Recommendation
	for _, entry := range entries {
		count, ok := top[entry.Source.Category]
		if !ok {
			continue
		}
		recs = append(recs, domain.Recommendation{
			ArticleTitle:        entry.Title,
			ArticleURL:          entry.Link,
			ArticleSource:       entry.Source.Name,
			Category:            entry.Source.Category,
			RecommendationType:  domain.RecommendationCategory,
			RecommendationScore: float64(count) / float64(total),
			CreatedAt:           now,
		})
	}
	return recs
}

func (r *Recommender) excludeHistory(ctx context.Context, userID string, recs []domain.Recommendation) ([]domain.Recommendation, error) {
	seen := map[string]bool{}
	page := 1
	for {
		records, total, err := r.store.List(ctx, userID, page, maxPageSize, "")
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			seen[rec.ArticleURL] = true
		}
		if page*maxPageSize >= total || len(records) == 0 {
			break
		}
		page++
	}

	out := recs[:0:0]
	for _, rec := range recs {
		if seen[rec.ArticleURL] {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

const maxPageSize = 100

// dedupeKeepHighest collapses duplicate article URLs, keeping the
// higher-scored entry, per spec §4.9 step 4.
func dedupeKeepHighest(recs []domain.Recommendation) []domain.Recommendation {
	best := map[string]domain.Recommendation{}
	var order []string
	for _, rec := range recs {
		existing, ok := best[rec.ArticleURL]
		if !ok {
			order = append(order, rec.ArticleURL)
			best[rec.ArticleURL] = rec
			continue
		}
		if rec.RecommendationScore > existing.RecommendationScore {
			best[rec.ArticleURL] = rec
		}
	}
	out := make([]domain.Recommendation, 0, len(order))
	for _, url := range order {
		out = append(out, best[url])
	}
	return out
}

// normalizeScores min-max normalizes RecommendationScore to [0,1] across
// the returned set, per the binding resolution of spec.md §9 Open
// Question 2 (the Python original left scores unbounded).
func normalizeScores(recs []domain.Recommendation) {
	if len(recs) == 0 {
		return
	}
	min, max := recs[0].RecommendationScore, recs[0].RecommendationScore
	for _, rec := range recs {
		if rec.RecommendationScore < min {
			min = rec.RecommendationScore
		}
		if rec.RecommendationScore > max {
			max = rec.RecommendationScore
		}
	}
	spread := max - min
	for i := range recs {
		if spread == 0 {
			recs[i].RecommendationScore = 1
			continue
		}
		recs[i].RecommendationScore = clamp01((recs[i].RecommendationScore - min) / spread)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
