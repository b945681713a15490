// Package domain holds the value types shared between the root package
// and every internal pipeline stage. Splitting these out of the root
// package avoids an import cycle: internal stages (registry, feedfetch,
// extract, ...) need FeedSource/Article/KeywordSet, and the root package
// needs those same types plus request/response envelopes that wrap them.
package domain

import "time"

// Category is a curated feed category tag.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryIT            Category = "it"
	CategoryEconomy       Category = "economy"
	CategoryBroadcast     Category = "broadcast"
	CategoryPolitics      Category = "politics"
	CategorySociety       Category = "society"
	CategoryCulture       Category = "culture"
	CategoryInternational Category = "international"
	CategoryEntertainment Category = "entertainment"
	CategorySports        Category = "sports"
	CategoryGovernment    Category = "government"
)

// Language is a summary/query language hint.
type Language string

const (
	LanguageKorean  Language = "ko"
	LanguageEnglish Language = "en"
	LanguageAuto    Language = "auto"
)

// FeedSource is an entry in the curated feed registry (C1). Immutable
// after load, keyed by RSSURL.
type FeedSource struct {
	Name     string
	Category Category
	RSSURL   string
}

// FeedEntry is one normalized item produced by the Feed Fetcher (C2).
type FeedEntry struct {
	Title          string
	Link           string
	PublishedAt    *time.Time
	Source         FeedSource
	SummarySnippet string
}

// Article is a fetched and extracted article body (C3).
type Article struct {
	Title     string
	URL       string
	Body      string
	Source    FeedSource
	FetchedAt time.Time
}

// KeywordSet is the output of the Keyword Extractor (C4).
type KeywordSet struct {
	Terms        []string
	LanguageHint Language
}

// SummarizedArticle is an Article paired with its LLM-generated summary (C6).
type SummarizedArticle struct {
	Article         Article
	Summary         string
	SummaryLanguage Language
	Model           string
	ProducedAt      time.Time
}

// HistoryRecord is an append-only persisted summary (C8).
type HistoryRecord struct {
	ID              string
	UserID          string
	ArticleURL      string
	ArticleTitle    string
	ContentExcerpt  string
	SummaryText     string
	SummaryLanguage Language
	OriginalLength  int
	SummaryLength   int
	Keywords        []string
	Category        Category
	CreatedAt       time.Time
}

// FeedbackType classifies a FeedbackRecord.
type FeedbackType string

const (
	FeedbackPositive FeedbackType = "positive"
	FeedbackNegative FeedbackType = "negative"
)

// FeedbackRecord is user feedback on a previously summarized article.
type FeedbackRecord struct {
	UserID       string
	ArticleURL   string
	Rating       int
	FeedbackType FeedbackType
	CreatedAt    time.Time
}

// RecommendationType classifies how a Recommendation was scored.
type RecommendationType string

const (
	RecommendationKeyword  RecommendationType = "keyword"
	RecommendationCategory RecommendationType = "category"
	RecommendationTrending RecommendationType = "trending"
)

// Recommendation is a ranked suggestion produced by the Recommender (C9).
type Recommendation struct {
	ArticleTitle        string
	ArticleURL          string
	ArticleSource       string
	Category            Category
	Keywords            []string
	RecommendationType  RecommendationType
	RecommendationScore float64
	CreatedAt           time.Time
}

// ErrKind is the taxonomy of error kinds a stage or the orchestrator can
// surface, per spec §7.
type ErrKind string

const (
	ErrKindInvalidRequest      ErrKind = "InvalidRequest"
	ErrKindKeywordEmpty        ErrKind = "KeywordEmpty"
	ErrKindNoFeedsConfigured   ErrKind = "NoFeedsConfigured"
	ErrKindNetworkError        ErrKind = "NetworkError"
	ErrKindTimeout             ErrKind = "Timeout"
	ErrKindHTTPError           ErrKind = "HTTPError"
	ErrKindRateLimited         ErrKind = "RateLimited"
	ErrKindNotFound            ErrKind = "NotFound"
	ErrKindParseError          ErrKind = "ParseError"
	ErrKindCharsetUnresolvable ErrKind = "CharsetUnresolvable"
	ErrKindBodyTooShort        ErrKind = "BodyTooShort"
	ErrKindUnparseable         ErrKind = "Unparseable"
	ErrKindLLMUnavailable      ErrKind = "LLMUnavailable"
	ErrKindSummaryInvalid      ErrKind = "SummaryInvalid"
	ErrKindInputTooLarge       ErrKind = "InputTooLarge"
	ErrKindStoreUnavailable    ErrKind = "StoreUnavailable"
	ErrKindDuplicateIgnored    ErrKind = "DuplicateIgnored"
	ErrKindNoResults           ErrKind = "NoResults"
	ErrKindMailError           ErrKind = "MailError"
)

// PipelineError is one per-item failure collected during a request,
// surfaced in SummarizeResponse.Errors.
type PipelineError struct {
	Stage   string
	URL     string
	Kind    ErrKind
	Message string
}
