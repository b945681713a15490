package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/glbaguni/newsdigest/internal/domain"
)

// SQLiteStore is the default Store implementation. Grounded on herald's
// internal/storage.Store: database/sql over the pure-Go
// modernc.org/sqlite driver, schema-as-constant applied once at open.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) a SQLite database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Insert persists record, enforcing the
// (userID, articleURL, createdAt-truncated-to-second) uniqueness
// invariant via a deterministic content-hash ID and an ON CONFLICT
// no-op.
func (s *SQLiteStore) Insert(ctx context.Context, record domain.HistoryRecord) (string, error) {
	truncated := record.CreatedAt.Truncate(time.Second)
	id := record.ID
	if id == "" {
		id = contentHashID(record.UserID, record.ArticleURL, truncated)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO summary_history
			(id, user_id, article_url, article_title, content_excerpt, summary_text,
			 summary_language, original_length, summary_length, keywords, category,
			 created_at, created_at_second)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, article_url, created_at_second) DO NOTHING
	`,
		id, record.UserID, record.ArticleURL, record.ArticleTitle, record.ContentExcerpt,
		record.SummaryText, string(record.SummaryLanguage), record.OriginalLength, record.SummaryLength,
		strings.Join(record.Keywords, ","), string(record.Category),
		truncated, truncated.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("history: insert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("history: insert rows affected: %w", err)
	}
	if affected == 0 {
		return "", ErrDuplicateIgnored{}
	}
	return id, nil
}

// List returns userID's records ordered by createdAt desc, per spec §4.8.
func (s *SQLiteStore) List(ctx context.Context, userID string, page, perPage int, languageFilter domain.Language) ([]domain.HistoryRecord, int, error) {
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}

	builder := sq.Select("id", "user_id", "article_url", "article_title", "content_excerpt",
		"summary_text", "summary_language", "original_length", "summary_length", "keywords",
		"category", "created_at").
		From("summary_history").
		Where(sq.Eq{"user_id": userID})
	countBuilder := sq.Select("COUNT(*)").From("summary_history").Where(sq.Eq{"user_id": userID})

	if languageFilter != "" && languageFilter != domain.LanguageAuto {
		builder = builder.Where(sq.Eq{"summary_language": string(languageFilter)})
		countBuilder = countBuilder.Where(sq.Eq{"summary_language": string(languageFilter)})
	}

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("history: build count query: %w", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("history: count: %w", err)
	}

	querySQL, queryArgs, err := builder.
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("history: build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var r domain.HistoryRecord
		var keywordsCSV, language, category string
		var createdAt time.Time
		if err := rows.Scan(&r.ID, &r.UserID, &r.ArticleURL, &r.ArticleTitle, &r.ContentExcerpt,
			&r.SummaryText, &language, &r.OriginalLength, &r.SummaryLength, &keywordsCSV,
			&category, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("history: scan: %w", err)
		}
		r.SummaryLanguage = domain.Language(language)
		r.Category = domain.Category(category)
		r.CreatedAt = createdAt
		if keywordsCSV != "" {
			r.Keywords = strings.Split(keywordsCSV, ",")
		}
		records = append(records, r)
	}
	return records, total, rows.Err()
}

// KeywordsOfUser returns a keyword→count multiset over the last
// sinceDays.
func (s *SQLiteStore) KeywordsOfUser(ctx context.Context, userID string, sinceDays int) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT keywords FROM summary_history
		WHERE user_id = ? AND created_at >= ?
	`, userID, since(sinceDays))
	if err != nil {
		return nil, fmt.Errorf("history: keywordsOfUser: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var keywordsCSV string
		if err := rows.Scan(&keywordsCSV); err != nil {
			return nil, fmt.Errorf("history: keywordsOfUser scan: %w", err)
		}
		for _, k := range strings.Split(keywordsCSV, ",") {
			if k == "" {
				continue
			}
			counts[k]++
		}
	}
	return counts, rows.Err()
}

// CategoriesOfUser returns a category→count multiset over the last
// sinceDays.
func (s *SQLiteStore) CategoriesOfUser(ctx context.Context, userID string, sinceDays int) (map[domain.Category]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category FROM summary_history
		WHERE user_id = ? AND created_at >= ?
	`, userID, since(sinceDays))
	if err != nil {
		return nil, fmt.Errorf("history: categoriesOfUser: %w", err)
	}
	defer rows.Close()

	counts := map[domain.Category]int{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("history: categoriesOfUser scan: %w", err)
		}
		counts[domain.Category(category)]++
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) InsertFeedback(ctx context.Context, record domain.FeedbackRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (user_id, article_url, rating, feedback_type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, record.UserID, record.ArticleURL, record.Rating, string(record.FeedbackType), record.CreatedAt)
	if err != nil {
		return fmt.Errorf("history: insertFeedback: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertRecommendationClick(ctx context.Context, userID, articleURL string, clickedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendation_clicks (user_id, article_url, clicked_at)
		VALUES (?, ?, ?)
	`, userID, articleURL, clickedAt)
	if err != nil {
		return fmt.Errorf("history: insertRecommendationClick: %w", err)
	}
	return nil
}

func since(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -days)
}

func contentHashID(userID, articleURL string, createdAt time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", userID, articleURL, createdAt.Unix())))
	return hex.EncodeToString(sum[:16])
}
