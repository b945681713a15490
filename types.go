// Package newsdigest implements the ingestion, filtering, summarization and
// persistence pipeline for a news aggregation service, plus the
// history-driven recommender that rides on top of it.
package newsdigest

import (
	"time"

	"github.com/glbaguni/newsdigest/internal/domain"
)

// Domain value types are defined once in internal/domain (shared by every
// pipeline stage) and re-exported here as the package's public API.
type (
	Category            = domain.Category
	Language            = domain.Language
	FeedSource          = domain.FeedSource
	FeedEntry           = domain.FeedEntry
	Article             = domain.Article
	KeywordSet          = domain.KeywordSet
	SummarizedArticle   = domain.SummarizedArticle
	HistoryRecord       = domain.HistoryRecord
	FeedbackType        = domain.FeedbackType
	FeedbackRecord      = domain.FeedbackRecord
	RecommendationType  = domain.RecommendationType
	Recommendation      = domain.Recommendation
	ErrKind             = domain.ErrKind
	PipelineError       = domain.PipelineError
)

const (
	CategoryGeneral       = domain.CategoryGeneral
	CategoryIT            = domain.CategoryIT
	CategoryEconomy       = domain.CategoryEconomy
	CategoryBroadcast     = domain.CategoryBroadcast
	CategoryPolitics      = domain.CategoryPolitics
	CategorySociety       = domain.CategorySociety
	CategoryCulture       = domain.CategoryCulture
	CategoryInternational = domain.CategoryInternational
	CategoryEntertainment = domain.CategoryEntertainment
	CategorySports        = domain.CategorySports
	CategoryGovernment    = domain.CategoryGovernment

	LanguageKorean  = domain.LanguageKorean
	LanguageEnglish = domain.LanguageEnglish
	LanguageAuto    = domain.LanguageAuto

	FeedbackPositive = domain.FeedbackPositive
	FeedbackNegative = domain.FeedbackNegative

	RecommendationKeyword  = domain.RecommendationKeyword
	RecommendationCategory = domain.RecommendationCategory
	RecommendationTrending = domain.RecommendationTrending

	ErrKindInvalidRequest      = domain.ErrKindInvalidRequest
	ErrKindKeywordEmpty        = domain.ErrKindKeywordEmpty
	ErrKindNoFeedsConfigured   = domain.ErrKindNoFeedsConfigured
	ErrKindNetworkError        = domain.ErrKindNetworkError
	ErrKindTimeout             = domain.ErrKindTimeout
	ErrKindHTTPError           = domain.ErrKindHTTPError
	ErrKindRateLimited         = domain.ErrKindRateLimited
	ErrKindNotFound            = domain.ErrKindNotFound
	ErrKindParseError          = domain.ErrKindParseError
	ErrKindCharsetUnresolvable = domain.ErrKindCharsetUnresolvable
	ErrKindBodyTooShort        = domain.ErrKindBodyTooShort
	ErrKindUnparseable         = domain.ErrKindUnparseable
	ErrKindLLMUnavailable      = domain.ErrKindLLMUnavailable
	ErrKindSummaryInvalid      = domain.ErrKindSummaryInvalid
	ErrKindInputTooLarge       = domain.ErrKindInputTooLarge
	ErrKindStoreUnavailable    = domain.ErrKindStoreUnavailable
	ErrKindDuplicateIgnored    = domain.ErrKindDuplicateIgnored
	ErrKindNoResults           = domain.ErrKindNoResults
	ErrKindMailError           = domain.ErrKindMailError
)

// PipelineRequest is the validated DTO handed to the core by the HTTP layer.
type PipelineRequest struct {
	Query          string
	RSSURLs        []string
	ArticleURLs    []string
	MaxArticles    int
	Language       Language
	UserID         string
	RecipientEmail string
	CustomPrompt   string
}

// ResponseArticle is one summarized article in a SummarizeResponse.
type ResponseArticle struct {
	Title    string
	URL      string
	Source   string
	Summary  string
	Language Language
	Category Category
}

// SummarizeResponse is the shape returned by SummarizeByQuery/SummarizeByRSS.
type SummarizeResponse struct {
	Success           bool
	Articles          []ResponseArticle
	TotalArticles     int
	ExtractedKeywords []string
	Partial           bool
	Errors            []PipelineError
	ProcessedAt       time.Time
}

// HistoryPage is a page of a user's history, per GetHistory.
type HistoryPage struct {
	Records []HistoryRecord
	Total   int
}
