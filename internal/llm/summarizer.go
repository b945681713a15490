package llm

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/glbaguni/newsdigest/internal/domain"
)

const (
	systemMessage = "You are a news summarization assistant. Produce a faithful, neutral summary in %s. 3-5 sentences. Do not invent facts."

	// promptLeakWindow is the contiguous-substring length spec §8
	// property 7 checks for, catching a partial prompt leak that a
	// whole-string containment check would miss.
	promptLeakWindow = 20

	defaultSoftCap = 4000
	defaultHardCap = 6000
)

// SummaryError classifies why Summarize did not produce a
// SummarizedArticle, per spec §4.6.
type SummaryError struct {
	Kind ErrorKind
	Err  error
}

func (e *SummaryError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

const (
	// ErrorSummaryInvalid extends ErrorKind for C6's output-validation
	// rejection path.
	ErrorSummaryInvalid ErrorKind = "SummaryInvalid"
)

// Summarizer produces per-article summaries through an injected Client,
// applying spec §4.6's safe prompt construction, retry/backoff, and
// output validation.
type Summarizer struct {
	client  Client
	model   string
	limiter *rate.Limiter
	softCap int
	hardCap int
}

// NewSummarizer builds a Summarizer that throttles outbound calls to at
// most rps requests per second with the given burst allowance. softCap/
// hardCap bound how much of an article body is sent to the model, per
// spec §4.6/§6.3 (CoreConfig.Limits.BodySoftCap/BodyHardCap); a
// non-positive value, or hardCap < softCap, falls back to the package
// defaults rather than propagating a misconfiguration into truncateBody.
func NewSummarizer(client Client, model string, rps float64, burst int, softCap, hardCap int) *Summarizer {
	if softCap < 1 || hardCap < 1 || hardCap < softCap {
		softCap, hardCap = defaultSoftCap, defaultHardCap
	}
	return &Summarizer{client: client, model: model, limiter: rate.NewLimiter(rate.Limit(rps), burst), softCap: softCap, hardCap: hardCap}
}

// Summarize produces a SummarizedArticle for article, honoring deadline
// as a hard bound across all retries.
func (s *Summarizer) Summarize(ctx context.Context, article domain.Article, language domain.Language, customPrompt string, deadline time.Duration) (domain.SummarizedArticle, *SummaryError) {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	sys := fmt.Sprintf(systemMessage, languageName(language))
	userMsg := s.buildUserMessage(customPrompt, article.Body)

	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	invalidRetried := false

	var lastErr *SummaryError
	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return domain.SummarizedArticle{}, &SummaryError{Kind: ErrorTimeout, Err: err}
		}

		req := ChatRequest{
			Model: s.model,
			Messages: []Message{
				{Role: "system", Content: sys},
				{Role: "user", Content: userMsg},
			},
			MaxTokens:   800,
			Temperature: 0.3,
		}

		raw, err := s.client.Chat(ctx, req)
		if err != nil {
			clientErr, ok := err.(*ClientError)
			if !ok {
				clientErr = &ClientError{Kind: ErrorUnavailable, Err: err}
			}
			lastErr = &SummaryError{Kind: clientErr.Kind, Err: clientErr.Err}
			if !clientErr.Retryable() || attempt >= len(backoffs) {
				return domain.SummarizedArticle{}, lastErr
			}
			if err := sleepWithJitter(ctx, backoffs[attempt]); err != nil {
				return domain.SummarizedArticle{}, &SummaryError{Kind: ErrorTimeout, Err: err}
			}
			continue
		}

		summary := strings.TrimSpace(raw)
		if validationErr := validateSummary(summary, sys, article.Body); validationErr != nil {
			lastErr = validationErr
			if invalidRetried || attempt >= len(backoffs) {
				return domain.SummarizedArticle{}, &SummaryError{Kind: ErrorSummaryInvalid, Err: validationErr}
			}
			invalidRetried = true
			if err := sleepWithJitter(ctx, backoffs[attempt]); err != nil {
				return domain.SummarizedArticle{}, &SummaryError{Kind: ErrorTimeout, Err: err}
			}
			continue
		}

		return domain.SummarizedArticle{
			Article:         article,
			Summary:         summary,
			SummaryLanguage: language,
			Model:           s.model,
			ProducedAt:      time.Now().UTC(),
		}, nil
	}
}

func (s *Summarizer) buildUserMessage(customPrompt, body string) string {
	var b strings.Builder
	if strings.TrimSpace(customPrompt) != "" {
		b.WriteString(customPrompt)
		b.WriteString("\n\n")
	}
	b.WriteString(s.truncateBody(body))
	return b.String()
}

// truncateBody applies the soft/hard truncation from spec §4.6: prefer
// cutting on a sentence boundary at softCap, but never exceed hardCap.
func (s *Summarizer) truncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= s.softCap {
		return body
	}

	window := runes[:s.softCap]
	if cut := lastSentenceBoundary(window); cut > 0 && cut <= s.hardCap {
		return string(window[:cut])
	}

	limit := s.hardCap
	if len(runes) < limit {
		limit = len(runes)
	}
	return string(runes[:limit])
}

func lastSentenceBoundary(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		switch runes[i] {
		case '.', '!', '?', '。', '！', '？':
			return i + 1
		}
	}
	return 0
}

func validateSummary(summary, systemPrompt, articleBody string) *SummaryError {
	if summary == "" {
		return &SummaryError{Kind: ErrorSummaryInvalid, Err: fmt.Errorf("empty summary")}
	}
	if len([]rune(summary)) > len([]rune(articleBody)) {
		return &SummaryError{Kind: ErrorSummaryInvalid, Err: fmt.Errorf("summary longer than source article")}
	}
	if promptLeaked(summary, systemPrompt) {
		return &SummaryError{Kind: ErrorSummaryInvalid, Err: fmt.Errorf("summary leaked system prompt")}
	}
	return nil
}

// promptLeaked reports whether any promptLeakWindow-rune contiguous
// slice of systemPrompt appears in summary, catching a partial prompt
// leak rather than only a verbatim full-prompt echo.
func promptLeaked(summary, systemPrompt string) bool {
	runes := []rune(systemPrompt)
	if len(runes) <= promptLeakWindow {
		return strings.Contains(summary, systemPrompt)
	}
	for i := 0; i+promptLeakWindow <= len(runes); i++ {
		if strings.Contains(summary, string(runes[i:i+promptLeakWindow])) {
			return true
		}
	}
	return false
}

func languageName(l domain.Language) string {
	switch l {
	case domain.LanguageKorean:
		return "Korean"
	case domain.LanguageEnglish:
		return "English"
	default:
		return "the request's language"
	}
}

// sleepWithJitter blocks for d plus up to ±20% jitter, or returns early
// if ctx is done — spec §4.6's backoff schedule.
func sleepWithJitter(ctx context.Context, d time.Duration) error {
	jittered := jitter(d)
	timer := time.NewTimer(jittered)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// jitter applies up to ±20% randomness to d, per spec §4.6's backoff
// schedule.
func jitter(d time.Duration) time.Duration {
	spread := float64(d) * 0.2
	offset := (rand.Float64()*2 - 1) * spread
	return d + time.Duration(offset)
}
