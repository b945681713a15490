// Package history implements the History Store (C8): append-only
// persistence of summaries, feedback, and recommendation clicks.
package history

import (
	"context"
	"time"

	"github.com/glbaguni/newsdigest/internal/domain"
)

// ErrDuplicateIgnored is returned by Insert when the
// (userID, articleURL, createdAt-to-the-second) uniqueness invariant
// would be violated — the insert is a no-op, not an error to the caller.
type ErrDuplicateIgnored struct{}

func (ErrDuplicateIgnored) Error() string { return "history: duplicate ignored" }

// Store is the persistence contract the core depends on, per spec §4.8.
// Any relational backend may satisfy it; SQLiteStore is the default.
type Store interface {
	Insert(ctx context.Context, record domain.HistoryRecord) (string, error)
	List(ctx context.Context, userID string, page, perPage int, languageFilter domain.Language) ([]domain.HistoryRecord, int, error)
	KeywordsOfUser(ctx context.Context, userID string, sinceDays int) (map[string]int, error)
	CategoriesOfUser(ctx context.Context, userID string, sinceDays int) (map[domain.Category]int, error)
	InsertFeedback(ctx context.Context, record domain.FeedbackRecord) error
	InsertRecommendationClick(ctx context.Context, userID, articleURL string, clickedAt time.Time) error
	Close() error
}

const maxPerPage = 100
