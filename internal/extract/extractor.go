package extract

import (
	"context"
	"net/url"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/glbaguni/newsdigest/internal/domain"
	"github.com/glbaguni/newsdigest/internal/transport"
)

// acceptHTML is the Accept header article requests send: the same value
// the Feed Fetcher sends, so both stages present the same request headers
// (the shared transport adds the rotated User-Agent to each).
const acceptHTML = "application/rss+xml, application/xml, text/xml, */*"

// Extractor fetches an article page and pulls a clean title/body out of
// it through the strategy chain in spec §4.3.
type Extractor struct {
	http   transport.HTTPClient
	strict *bluemonday.Policy
}

// New builds an Extractor over the given HTTPClient collaborator.
func New(client transport.HTTPClient) *Extractor {
	return &Extractor{http: client, strict: bluemonday.StrictPolicy()}
}

// Extract downloads articleURL and returns a well-formed Article, or a
// Failure describing why extraction did not succeed.
func (e *Extractor) Extract(ctx context.Context, articleURL string, source domain.FeedSource, deadline time.Duration) (domain.Article, *Failure) {
	ctx, cancel := transport.WithDeadline(ctx, deadline)
	defer cancel()

	status, body, _, err := e.http.Get(ctx, articleURL, map[string]string{"Accept": acceptHTML})
	if err != nil {
		if ctx.Err() != nil {
			return domain.Article{}, &Failure{Kind: FailureTimeout, Err: ctx.Err()}
		}
		return domain.Article{}, &Failure{Kind: FailureNetworkError, Err: err}
	}
	if status != 200 {
		return domain.Article{}, &Failure{Kind: FailureHTTPError, StatusCode: status}
	}

	title, bodyText, ok := e.selectContent(body, articleURL)
	if !ok {
		return domain.Article{}, &Failure{Kind: FailureUnparseable}
	}

	// bluemonday's strict policy drops any markup that survived .Text()
	// extraction (stray entities, script payloads embedded as text) before
	// the body is normalized and persisted.
	cleaned := cleanText(e.strict.Sanitize(bodyText))
	if len([]rune(cleaned)) < minBodyLength {
		return domain.Article{}, &Failure{Kind: FailureBodyTooShort}
	}

	return domain.Article{
		Title:     title,
		URL:       articleURL,
		Body:      cleaned,
		Source:    source,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// selectContent runs the strategy chain in order until one yields a body
// of at least minBodyLength characters of text. removeNoise runs first,
// and every strategy, readability included, works on the page HTML it
// leaves — bluemonday only sanitizes the winning text afterward, since
// its strict policy would strip the very tags the selector-based
// strategies key on. When no strategy reaches minBodyLength, the whole
// <body> text is returned so the caller reports BodyTooShort; ok is false
// only when the page cannot be parsed.
func (e *Extractor) selectContent(rawHTML []byte, pageURL string) (title, body string, ok bool) {
	title = extractTitleFromHTML(rawHTML, pageURL)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(rawHTML)))
	if err != nil {
		return title, "", false
	}
	removeNoise(doc)

	if cleanedHTML, err := doc.Html(); err == nil {
		if text, ok := extractViaReadability([]byte(cleanedHTML), pageURL); ok {
			return firstNonEmpty(title, "제목 없음"), text, true
		}
	}

	if text, ok := extractViaArticleTag(doc); ok {
		return firstNonEmpty(title, titleFromDoc(doc)), text, true
	}
	if text, ok := extractViaSelectors(doc); ok {
		return firstNonEmpty(title, titleFromDoc(doc)), text, true
	}
	if text, ok := extractViaLargestDiv(doc); ok {
		return firstNonEmpty(title, titleFromDoc(doc)), text, true
	}
	if text, ok := extractViaParagraphs(doc); ok {
		return firstNonEmpty(title, titleFromDoc(doc)), text, true
	}
	return firstNonEmpty(title, titleFromDoc(doc)), collapseSpace(doc.Find("body").Text()), true
}

func extractViaReadability(rawHTML []byte, pageURL string) (string, bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}
	article, err := readability.FromReader(strings.NewReader(string(rawHTML)), u)
	if err != nil {
		return "", false
	}
	var textBuf strings.Builder
	if err := article.RenderText(&textBuf); err != nil {
		return "", false
	}
	text := collapseSpace(textBuf.String())
	if len([]rune(text)) < minBodyLength {
		return "", false
	}
	return text, true
}

func extractViaArticleTag(doc *goquery.Document) (string, bool) {
	text := doc.Find("article").First().Text()
	text = collapseSpace(text)
	if len([]rune(text)) < minBodyLength {
		return "", false
	}
	return text, true
}

func extractViaSelectors(doc *goquery.Document) (string, bool) {
	for _, selector := range newsBodySelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		text := collapseSpace(sel.First().Text())
		if len([]rune(text)) >= minBodyLength {
			return text, true
		}
	}
	return "", false
}

// extractViaLargestDiv picks the <div> with the most visible text.
func extractViaLargestDiv(doc *goquery.Document) (string, bool) {
	best := ""
	doc.Find("div").Each(func(_ int, sel *goquery.Selection) {
		text := collapseSpace(sel.Text())
		if len([]rune(text)) > len([]rune(best)) {
			best = text
		}
	})
	if len([]rune(best)) < minBodyLength {
		return "", false
	}
	return best, true
}

// extractViaParagraphs concatenates every <p> under <body>, the last
// resort strategy.
func extractViaParagraphs(doc *goquery.Document) (string, bool) {
	var parts []string
	doc.Find("body p").Each(func(_ int, sel *goquery.Selection) {
		text := collapseSpace(sel.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})
	joined := strings.Join(parts, " ")
	if len([]rune(joined)) < minBodyLength {
		return "", false
	}
	return joined, true
}

// removeNoise strips script/style/noscript and any element whose class
// or id matches the configured ad-class pattern before content selection
// runs.
func removeNoise(doc *goquery.Document) {
	doc.Find("script, style, noscript").Remove()
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		id, _ := sel.Attr("id")
		if adClassPattern.MatchString(class) || adClassPattern.MatchString(id) {
			sel.Remove()
		}
	})
}

// extractTitleFromHTML prefers og:title, falling back to <title> and the
// first <h1>, per spec §4.3.
func extractTitleFromHTML(rawHTML []byte, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(rawHTML)))
	if err != nil {
		return ""
	}
	if og, exists := doc.Find(`meta[property="og:title"]`).Attr("content"); exists && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	return titleFromDoc(doc)
}

func titleFromDoc(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
