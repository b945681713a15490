package newsdigest

import (
	"context"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/glbaguni/newsdigest/internal/config"
	"github.com/glbaguni/newsdigest/internal/domain"
	"github.com/glbaguni/newsdigest/internal/extract"
	"github.com/glbaguni/newsdigest/internal/feedfetch"
	"github.com/glbaguni/newsdigest/internal/history"
	"github.com/glbaguni/newsdigest/internal/keywords"
	"github.com/glbaguni/newsdigest/internal/llm"
	"github.com/glbaguni/newsdigest/internal/mailer"
	"github.com/glbaguni/newsdigest/internal/recommend"
	"github.com/glbaguni/newsdigest/internal/registry"
	"github.com/glbaguni/newsdigest/internal/relevance"
)

// Engine is the Pipeline Orchestrator (C7): it wires every stage
// together and is the concurrency core of the service, per spec §4.7.
// Grounded on herald's engine.go Engine struct — one field per
// collaborator, one exported method per public operation.
type Engine struct {
	cfg *config.CoreConfig

	registry    *registry.Registry
	fetcher     *feedfetch.Fetcher
	extractor   *extract.Extractor
	keywords    *keywords.Extractor
	summarizer  *llm.Summarizer
	store       history.Store
	recommender *recommend.Recommender
	mailer      *mailer.Mailer

	cache *idempotencyCache
}

// NewEngine assembles an Engine from its collaborators. store, mailer,
// and recommender may be nil when a caller only needs the summarization
// paths (e.g. a CLI without persistence).
func NewEngine(
	cfg *config.CoreConfig,
	feedRegistry *registry.Registry,
	fetcher *feedfetch.Fetcher,
	extractor *extract.Extractor,
	keywordExtractor *keywords.Extractor,
	summarizer *llm.Summarizer,
	store history.Store,
	recommender *recommend.Recommender,
	mailAdapter *mailer.Mailer,
) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{
		cfg:         cfg,
		registry:    feedRegistry,
		fetcher:     fetcher,
		extractor:   extractor,
		keywords:    keywordExtractor,
		summarizer:  summarizer,
		store:       store,
		recommender: recommender,
		mailer:      mailAdapter,
		cache:       newIdempotencyCache(cfg.Idempotency.Capacity, cfg.Idempotency.Window.D()),
	}
}

// SummarizeByQuery runs the query path: keyword extraction, feed
// fan-out across the whole registry, relevance filtering, then the
// shared extract/summarize/persist/mail pipeline.
func (e *Engine) SummarizeByQuery(ctx context.Context, req PipelineRequest) (SummarizeResponse, error) {
	if req.Query == "" || len(req.RSSURLs) > 0 || len(req.ArticleURLs) > 0 {
		return invalidRequest("exactly one of query or (rssURLs ∪ articleURLs) must be set"), nil
	}

	key := idempotencyKey(req.UserID, nil, req.Query, req.Language)
	if cached, ok := e.cache.get(key, time.Now()); ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeouts.RequestDeadline.D())
	defer cancel()

	var errs []PipelineError

	keywordSet, err := e.keywords.Extract(ctx, req.Query, req.Language, e.cfg.Timeouts.LLM.D())
	if err != nil {
		if _, ok := err.(keywords.EmptyError); ok {
			return SummarizeResponse{
				Success:     false,
				ProcessedAt: time.Now(),
				Errors: []PipelineError{{
					Stage: "keywords", Kind: ErrKindKeywordEmpty, Message: err.Error(),
				}},
			}, nil
		}
		return SummarizeResponse{
			Success:     false,
			ProcessedAt: time.Now(),
			Errors:      []PipelineError{{Stage: "keywords", Kind: ErrKindInvalidRequest, Message: err.Error()}},
		}, nil
	}

	entries, fetchErrs := e.fetchAllSources(ctx)
	errs = append(errs, fetchErrs...)

	maxArticles := clampMaxArticles(req.MaxArticles, e.cfg.Limits.MaxArticlesHard)
	selected := relevance.Filter(entries, keywordSet, maxArticles)

	resp := e.summarizeSelected(ctx, selected, req, errs)
	resp.ExtractedKeywords = keywordSet.Terms

	e.cache.put(key, resp, time.Now())
	return resp, nil
}

// SummarizeByRSS runs the URL-list path: fetch each named RSS feed,
// union with any explicit article URLs, then the shared
// extract/summarize/persist/mail pipeline with no relevance filter.
func (e *Engine) SummarizeByRSS(ctx context.Context, req PipelineRequest) (SummarizeResponse, error) {
	if req.Query != "" || (len(req.RSSURLs) == 0 && len(req.ArticleURLs) == 0) {
		return invalidRequest("exactly one of query or (rssURLs ∪ articleURLs) must be set"), nil
	}

	allURLs := append(append([]string(nil), req.RSSURLs...), req.ArticleURLs...)
	key := idempotencyKey(req.UserID, allURLs, "", req.Language)
	if cached, ok := e.cache.get(key, time.Now()); ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeouts.RequestDeadline.D())
	defer cancel()

	var errs []PipelineError
	var entries []domain.FeedEntry

	rssEntries, fetchErrs := e.fetchURLs(ctx, req.RSSURLs)
	entries = append(entries, rssEntries...)
	errs = append(errs, fetchErrs...)

	for _, articleURL := range req.ArticleURLs {
		entries = append(entries, domain.FeedEntry{
			Link:   articleURL,
			Source: syntheticSource(articleURL),
		})
	}
	entries = dedupeByLink(entries)

	maxArticles := clampMaxArticles(req.MaxArticles, e.cfg.Limits.MaxArticlesHard)
	if len(entries) > maxArticles {
		entries = entries[:maxArticles]
	}

	resp := e.summarizeSelected(ctx, entries, req, errs)

	e.cache.put(key, resp, time.Now())
	return resp, nil
}

// fetchAllSources fans FeedFetcher calls out across every registered
// source, bounded to FEED_PARALLELISM concurrent fetches.
func (e *Engine) fetchAllSources(ctx context.Context) ([]domain.FeedEntry, []PipelineError) {
	sources := e.registry.List()
	fetchOne := func(ctx context.Context, source domain.FeedSource) ([]domain.FeedEntry, feedfetch.Result) {
		return e.fetcher.Fetch(ctx, source, e.cfg.Timeouts.Fetch.D())
	}

	sem := semaphore.NewWeighted(int64(e.cfg.Concurrency.FeedParallelism))
	group, gctx := errgroup.WithContext(ctx)

	type outcome struct {
		entries []domain.FeedEntry
		err     *PipelineError
	}
	results := make([]outcome, len(sources))

	for i, source := range sources {
		i, source := i, source
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)
			entries, result := fetchOne(gctx, source)
			if result.Outcome != feedfetch.OutcomeOK {
				results[i].err = &PipelineError{
					Stage: "fetch", URL: source.RSSURL,
					Kind: fetchOutcomeToErrKind(result.Outcome), Message: errMessage(result.Err),
				}
				return nil
			}
			results[i].entries = entries
			return nil
		})
	}
	group.Wait()

	var entries []domain.FeedEntry
	var errs []PipelineError
	for _, r := range results {
		entries = append(entries, r.entries...)
		if r.err != nil {
			errs = append(errs, *r.err)
		}
	}
	return entries, errs
}

// fetchURLs fetches an explicit list of RSS feed URLs (not from the
// registry), synthesizing a FeedSource per URL, bounded to
// FEED_PARALLELISM.
func (e *Engine) fetchURLs(ctx context.Context, rssURLs []string) ([]domain.FeedEntry, []PipelineError) {
	sem := semaphore.NewWeighted(int64(e.cfg.Concurrency.FeedParallelism))
	group, gctx := errgroup.WithContext(ctx)

	type outcome struct {
		entries []domain.FeedEntry
		err     *PipelineError
	}
	results := make([]outcome, len(rssURLs))

	for i, rssURL := range rssURLs {
		i, rssURL := i, rssURL
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)
			source := domain.FeedSource{Name: rssURL, Category: domain.CategoryGeneral, RSSURL: rssURL}
			entries, result := e.fetcher.Fetch(gctx, source, e.cfg.Timeouts.Fetch.D())
			if result.Outcome != feedfetch.OutcomeOK {
				results[i].err = &PipelineError{
					Stage: "fetch", URL: rssURL,
					Kind: fetchOutcomeToErrKind(result.Outcome), Message: errMessage(result.Err),
				}
				return nil
			}
			results[i].entries = entries
			return nil
		})
	}
	group.Wait()

	var entries []domain.FeedEntry
	var errs []PipelineError
	for _, r := range results {
		entries = append(entries, r.entries...)
		if r.err != nil {
			errs = append(errs, *r.err)
		}
	}
	return entries, errs
}

// summarizeSelected runs the shared tail of both entry paths: bounded
// article extraction, bounded LLM summarization, history persistence,
// and optional mail dispatch.
func (e *Engine) summarizeSelected(ctx context.Context, entries []domain.FeedEntry, req PipelineRequest, priorErrs []PipelineError) SummarizeResponse {
	errs := append([]PipelineError(nil), priorErrs...)

	articles, extractErrs := e.extractArticles(ctx, entries)
	errs = append(errs, extractErrs...)

	summaries, summarizeErrs := e.summarizeArticles(ctx, articles, req)
	errs = append(errs, summarizeErrs...)

	respArticles := make([]ResponseArticle, 0, len(summaries))
	for _, s := range summaries {
		respArticles = append(respArticles, ResponseArticle{
			Title:    s.Article.Title,
			URL:      s.Article.URL,
			Source:   s.Article.Source.Name,
			Summary:  s.Summary,
			Language: s.SummaryLanguage,
			Category: s.Article.Source.Category,
		})

		if req.UserID != "" && e.store != nil {
			if err := e.persist(ctx, req.UserID, s); err != nil {
				errs = append(errs, PipelineError{Stage: "history", URL: s.Article.URL, Kind: ErrKindStoreUnavailable, Message: err.Error()})
			}
		}
	}

	if req.RecipientEmail != "" && e.mailer != nil && len(summaries) > 0 {
		if err := e.mailer.Send(ctx, req.RecipientEmail, "", summaries); err != nil {
			errs = append(errs, PipelineError{Stage: "mail", Kind: ErrKindMailError, Message: err.Error()})
		}
	}

	success := len(respArticles) > 0 || req.MaxArticles == 0
	if !success {
		errs = append(errs, PipelineError{Stage: "orchestrator", Kind: ErrKindNoResults, Message: "no articles were successfully summarized"})
	}

	return SummarizeResponse{
		Success:       success,
		Articles:      respArticles,
		TotalArticles: len(respArticles),
		Partial:       ctx.Err() == context.DeadlineExceeded,
		Errors:        errs,
		ProcessedAt:   time.Now(),
	}
}

func (e *Engine) extractArticles(ctx context.Context, entries []domain.FeedEntry) ([]domain.Article, []PipelineError) {
	sem := semaphore.NewWeighted(int64(e.cfg.Concurrency.ArticleParallelism))
	group, gctx := errgroup.WithContext(ctx)

	type outcome struct {
		article domain.Article
		ok      bool
		err     *PipelineError
	}
	results := make([]outcome, len(entries))

	for i, entry := range entries {
		i, entry := i, entry
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)
			article, failure := e.extractor.Extract(gctx, entry.Link, entry.Source, e.cfg.Timeouts.Extract.D())
			if failure != nil {
				results[i].err = &PipelineError{
					Stage: "extract", URL: entry.Link,
					Kind: extractFailureToErrKind(failure.Kind), Message: failure.Error(),
				}
				return nil
			}
			results[i].article = article
			results[i].ok = true
			return nil
		})
	}
	group.Wait()

	var articles []domain.Article
	var errs []PipelineError
	for _, r := range results {
		if r.ok {
			articles = append(articles, r.article)
		}
		if r.err != nil {
			errs = append(errs, *r.err)
		}
	}
	return articles, errs
}

func (e *Engine) summarizeArticles(ctx context.Context, articles []domain.Article, req PipelineRequest) ([]domain.SummarizedArticle, []PipelineError) {
	sem := semaphore.NewWeighted(int64(e.cfg.Concurrency.LLMParallelism))
	group, gctx := errgroup.WithContext(ctx)

	type outcome struct {
		summary domain.SummarizedArticle
		ok      bool
		err     *PipelineError
	}
	results := make([]outcome, len(articles))

	for i, article := range articles {
		i, article := i, article
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)
			summary, sumErr := e.summarizer.Summarize(gctx, article, req.Language, req.CustomPrompt, e.cfg.Timeouts.LLM.D())
			if sumErr != nil {
				results[i].err = &PipelineError{
					Stage: "summarize", URL: article.URL,
					Kind: summaryErrorToErrKind(sumErr.Kind), Message: sumErr.Error(),
				}
				return nil
			}
			results[i].summary = summary
			results[i].ok = true
			return nil
		})
	}
	group.Wait()

	var summaries []domain.SummarizedArticle
	var errs []PipelineError
	for _, r := range results {
		if r.ok {
			summaries = append(summaries, r.summary)
		}
		if r.err != nil {
			errs = append(errs, *r.err)
		}
	}
	return summaries, errs
}

func (e *Engine) persist(ctx context.Context, userID string, s domain.SummarizedArticle) error {
	record := domain.HistoryRecord{
		UserID:          userID,
		ArticleURL:      s.Article.URL,
		ArticleTitle:    s.Article.Title,
		ContentExcerpt:  excerpt(s.Article.Body, 280),
		SummaryText:     s.Summary,
		SummaryLanguage: s.SummaryLanguage,
		OriginalLength:  len(s.Article.Body),
		SummaryLength:   len(s.Summary),
		Category:        s.Article.Source.Category,
		CreatedAt:       s.ProducedAt,
	}
	_, err := e.store.Insert(ctx, record)
	if _, ok := err.(history.ErrDuplicateIgnored); ok {
		return nil
	}
	return err
}

// GetHistory returns a page of userID's persisted summaries, per spec §6.1.
func (e *Engine) GetHistory(ctx context.Context, userID string, page, perPage int, language Language) (HistoryPage, error) {
	records, total, err := e.store.List(ctx, userID, page, perPage, language)
	if err != nil {
		return HistoryPage{}, err
	}
	return HistoryPage{Records: records, Total: total}, nil
}

// GetRecommendations delegates to the Recommender (C9), per spec §6.1.
func (e *Engine) GetRecommendations(ctx context.Context, userID string, limit int) ([]Recommendation, error) {
	return e.recommender.Recommend(ctx, userID, limit)
}

// RecordFeedback persists user feedback on a previously summarized
// article, per spec §6.1.
func (e *Engine) RecordFeedback(ctx context.Context, record FeedbackRecord) error {
	return e.store.InsertFeedback(ctx, record)
}

// RecordRecommendationClick logs a click-through on a recommendation,
// per spec §6.1.
func (e *Engine) RecordRecommendationClick(ctx context.Context, userID, articleURL string) error {
	return e.store.InsertRecommendationClick(ctx, userID, articleURL, time.Now())
}

func invalidRequest(message string) SummarizeResponse {
	return SummarizeResponse{
		Success:     false,
		ProcessedAt: time.Now(),
		Errors:      []PipelineError{{Stage: "validate", Kind: ErrKindInvalidRequest, Message: message}},
	}
}

func clampMaxArticles(requested, hardCap int) int {
	if requested < 1 {
		return hardCap
	}
	if requested > hardCap {
		return hardCap
	}
	return requested
}

func syntheticSource(articleURL string) domain.FeedSource {
	name := articleURL
	if parsed, err := url.Parse(articleURL); err == nil && parsed.Host != "" {
		name = parsed.Host
	}
	return domain.FeedSource{Name: name, Category: domain.CategoryGeneral}
}

func dedupeByLink(entries []domain.FeedEntry) []domain.FeedEntry {
	seen := make(map[string]bool, len(entries))
	out := entries[:0:0]
	for _, e := range entries {
		if seen[e.Link] {
			continue
		}
		seen[e.Link] = true
		out = append(out, e)
	}
	return out
}

func excerpt(body string, n int) string {
	if len(body) <= n {
		return body
	}
	return strings.TrimSpace(body[:n])
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func fetchOutcomeToErrKind(o feedfetch.Outcome) ErrKind {
	switch o {
	case feedfetch.OutcomeNetworkError:
		return ErrKindNetworkError
	case feedfetch.OutcomeHTTPError:
		return ErrKindHTTPError
	case feedfetch.OutcomeParseError:
		return ErrKindParseError
	case feedfetch.OutcomeTimeout:
		return ErrKindTimeout
	case feedfetch.OutcomeCharsetUnresolvable:
		return ErrKindCharsetUnresolvable
	default:
		return ErrKindNetworkError
	}
}

func extractFailureToErrKind(k extract.FailureKind) ErrKind {
	switch k {
	case extract.FailureNetworkError:
		return ErrKindNetworkError
	case extract.FailureHTTPError:
		return ErrKindHTTPError
	case extract.FailureTimeout:
		return ErrKindTimeout
	case extract.FailureBodyTooShort:
		return ErrKindBodyTooShort
	case extract.FailureUnparseable:
		return ErrKindUnparseable
	default:
		return ErrKindUnparseable
	}
}

func summaryErrorToErrKind(k llm.ErrorKind) ErrKind {
	switch k {
	case llm.ErrorUnavailable:
		return ErrKindLLMUnavailable
	case llm.ErrorRateLimited:
		return ErrKindRateLimited
	case llm.ErrorTimeout:
		return ErrKindTimeout
	case llm.ErrorInputTooLarge:
		return ErrKindInputTooLarge
	case llm.ErrorSummaryInvalid:
		return ErrKindSummaryInvalid
	default:
		return ErrKindLLMUnavailable
	}
}
