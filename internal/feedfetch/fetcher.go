// Package feedfetch implements the Feed Fetcher (C2): charset-resilient
// download and parsing of RSS/Atom feeds into normalized entries.
//
// Adapted from matthewjhunter/herald's internal/feeds.Fetcher — the
// context-scoped GET survives (no conditional-GET headers are sent),
// generalized here
// with the spec's charset negotiation and typed Outcome instead of a bare
// error.
package feedfetch

import (
	"context"
	"errors"
	"html"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/glbaguni/newsdigest/internal/domain"
	"github.com/glbaguni/newsdigest/internal/transport"
)

var errCharsetUnresolvable = errors.New("feedfetch: charset unresolvable")

const acceptFeedTypes = "application/rss+xml, application/xml, text/xml, */*"

// Fetcher fetches and parses a single feed source into normalized entries.
type Fetcher struct {
	http   transport.HTTPClient
	parser *gofeed.Parser
}

// New builds a Fetcher over the given HTTPClient collaborator.
func New(client transport.HTTPClient) *Fetcher {
	return &Fetcher{http: client, parser: gofeed.NewParser()}
}

// Fetch downloads and parses source's feed, honoring deadline as a hard
// bound. Non-Ok outcomes always come back with zero entries.
func (f *Fetcher) Fetch(ctx context.Context, source domain.FeedSource, deadline time.Duration) ([]domain.FeedEntry, Result) {
	ctx, cancel := transport.WithDeadline(ctx, deadline)
	defer cancel()

	headers := map[string]string{"Accept": acceptFeedTypes}
	status, body, respHeaders, err := f.http.Get(ctx, source.RSSURL, headers)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Result{Outcome: OutcomeTimeout, Err: ctx.Err()}
		}
		return nil, Result{Outcome: OutcomeNetworkError, Err: err}
	}
	if status != 200 {
		return nil, Result{Outcome: OutcomeHTTPError, StatusCode: status, Err: errStatus(status)}
	}

	decoded, err := decodeFeedBody(body, respHeaders.Get("Content-Type"))
	if err != nil {
		return nil, Result{Outcome: OutcomeCharsetUnresolvable, Err: err}
	}
	// decoded is UTF-8 now; relabel the XML declaration so the parser does
	// not decode the text a second time from its original charset.
	if loc := xmlDeclEncoding.FindStringSubmatchIndex(decoded); loc != nil && loc[0] < 512 {
		decoded = decoded[:loc[2]] + "UTF-8" + decoded[loc[3]:]
	}

	parsed, err := f.parser.ParseString(decoded)
	if err != nil {
		return nil, Result{Outcome: OutcomeParseError, Err: err}
	}

	entries := make([]domain.FeedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entry, ok := entryFromItem(item, source)
		if !ok {
			continue // malformed items are skipped, not fatal
		}
		entries = append(entries, entry)
	}

	return entries, Result{Outcome: OutcomeOK, StatusCode: status}
}

func entryFromItem(item *gofeed.Item, source domain.FeedSource) (domain.FeedEntry, bool) {
	if item.Title == "" || item.Link == "" {
		return domain.FeedEntry{}, false
	}
	link, err := canonicalizeLink(item.Link)
	if err != nil {
		return domain.FeedEntry{}, false
	}

	entry := domain.FeedEntry{
		Title:          strings.TrimSpace(item.Title),
		Link:           link,
		Source:         source,
		SummarySnippet: snippet(item.Description),
	}
	if item.PublishedParsed != nil {
		entry.PublishedAt = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		entry.PublishedAt = item.UpdatedParsed
	}
	return entry, true
}

// canonicalizeLink strips the fragment and lowercases the host, per
// spec §4.2.
func canonicalizeLink(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", errors.New("feedfetch: invalid link")
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	return u.String(), nil
}

// snippet strips HTML and truncates to 500 characters, per spec §4.2.
func snippet(descriptionHTML string) string {
	text := stripHTML(descriptionHTML)
	text = html.UnescapeString(text)
	text = collapseWhitespace(text)
	runes := []rune(text)
	if len(runes) > 500 {
		return string(runes[:500])
	}
	return text
}

func stripHTML(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return input
	}
	return doc.Text()
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
			}
			lastWasSpace = true
			continue
		}
		lastWasSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

type statusError struct{ code int }

func (e *statusError) Error() string { return "feedfetch: unexpected status" }

func errStatus(code int) error { return &statusError{code: code} }
