// Package relevance implements the Relevance Filter (C5): scores feed
// entries against a keyword set and selects the top-N most relevant.
package relevance

import (
	"sort"
	"strings"

	"github.com/glbaguni/newsdigest/internal/domain"
)

const (
	titleWeight   = 3
	snippetWeight = 1
)

// Filter scores entries against keywords and returns the top limit
// results, per spec §4.5.
func Filter(entries []domain.FeedEntry, keywords domain.KeywordSet, limit int) []domain.FeedEntry {
	type scored struct {
		entry domain.FeedEntry
		score int
		index int
	}

	candidates := make([]scored, 0, len(entries))
	for i, entry := range entries {
		score := scoreEntry(entry, keywords.Terms)
		if score == 0 {
			continue
		}
		candidates = append(candidates, scored{entry: entry, score: score, index: i})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		ti, tj := candidates[i].entry.PublishedAt, candidates[j].entry.PublishedAt
		switch {
		case ti == nil && tj == nil:
			return candidates[i].index < candidates[j].index
		case ti == nil:
			return false
		case tj == nil:
			return true
		case !ti.Equal(*tj):
			return ti.After(*tj)
		default:
			return candidates[i].index < candidates[j].index
		}
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	result := make([]domain.FeedEntry, limit)
	for i := 0; i < limit; i++ {
		result[i] = candidates[i].entry
	}
	return result
}

// scoreEntry computes Σ_t (α·titleHits(t) + β·snippetHits(t)), case
// insensitive substring counts over each keyword term.
func scoreEntry(entry domain.FeedEntry, terms []string) int {
	title := strings.ToLower(entry.Title)
	snippet := strings.ToLower(entry.SummarySnippet)

	score := 0
	for _, term := range terms {
		t := strings.ToLower(term)
		if t == "" {
			continue
		}
		score += titleWeight * strings.Count(title, t)
		score += snippetWeight * strings.Count(snippet, t)
	}
	return score
}
