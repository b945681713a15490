package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glbaguni/newsdigest/internal/domain"
	"github.com/glbaguni/newsdigest/internal/transport"
)

func testSource() domain.FeedSource {
	return domain.FeedSource{Name: "Test", Category: domain.CategoryGeneral, RSSURL: "https://example.com/rss"}
}

func TestExtractViaArticleTag(t *testing.T) {
	body := strings.Repeat("본문 내용입니다. ", 20)
	html := `<html><head><title>기사 제목</title></head><body><article>` + body + `</article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer srv.Close()

	e := New(transport.NewDefaultClient())
	article, failure := e.Extract(context.Background(), srv.URL, testSource(), 5*time.Second)
	if failure != nil {
		t.Fatalf("Extract failed: %v", failure)
	}
	if article.Title != "기사 제목" {
		t.Errorf("Title = %q, want 기사 제목", article.Title)
	}
	if len([]rune(article.Body)) < minBodyLength {
		t.Errorf("Body too short: %d runes", len([]rune(article.Body)))
	}
}

func TestExtractPrefersOGTitle(t *testing.T) {
	body := strings.Repeat("본문 내용입니다. ", 20)
	html := `<html><head><title>fallback</title><meta property="og:title" content="오픈그래프 제목"/></head>
	<body><article>` + body + `</article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer srv.Close()

	e := New(transport.NewDefaultClient())
	article, failure := e.Extract(context.Background(), srv.URL, testSource(), 5*time.Second)
	if failure != nil {
		t.Fatalf("Extract failed: %v", failure)
	}
	if article.Title != "오픈그래프 제목" {
		t.Errorf("Title = %q, want og:title value", article.Title)
	}
}

func TestExtractViaSelectorFallback(t *testing.T) {
	body := strings.Repeat("뉴스 본문입니다. ", 20)
	html := `<html><head><title>t</title></head><body><div class="article_body">` + body + `</div></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer srv.Close()

	e := New(transport.NewDefaultClient())
	article, failure := e.Extract(context.Background(), srv.URL, testSource(), 5*time.Second)
	if failure != nil {
		t.Fatalf("Extract failed: %v", failure)
	}
	if len([]rune(article.Body)) < minBodyLength {
		t.Errorf("Body too short: %d runes", len([]rune(article.Body)))
	}
}

func TestExtractViaParagraphConcatenation(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 11; i++ {
		b.WriteString("<p>문단 내용입니다.</p>")
	}
	html := `<html><head><title>t</title></head><body>` + b.String() + `</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer srv.Close()

	e := New(transport.NewDefaultClient())
	article, failure := e.Extract(context.Background(), srv.URL, testSource(), 5*time.Second)
	if failure != nil {
		t.Fatalf("Extract failed: %v", failure)
	}
	if len([]rune(article.Body)) < minBodyLength {
		t.Errorf("Body too short: %d runes", len([]rune(article.Body)))
	}
}

func TestExtractBodyTooShort(t *testing.T) {
	html := `<html><head><title>t</title></head><body><article>짧음</article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer srv.Close()

	e := New(transport.NewDefaultClient())
	_, failure := e.Extract(context.Background(), srv.URL, testSource(), 5*time.Second)
	if failure == nil || failure.Kind != FailureBodyTooShort {
		t.Fatalf("failure = %v, want BodyTooShort", failure)
	}
}

func TestExtractHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e := New(transport.NewDefaultClient())
	_, failure := e.Extract(context.Background(), srv.URL, testSource(), 5*time.Second)
	if failure == nil || failure.Kind != FailureHTTPError || failure.StatusCode != 404 {
		t.Fatalf("failure = %v, want HTTPError/404", failure)
	}
}

func TestExtractStripsAdClassNodes(t *testing.T) {
	body := strings.Repeat("본문 내용입니다. ", 20)
	html := `<html><head><title>t</title></head><body>
		<div class="ad-banner">광고입니다 광고입니다 광고입니다</div>
		<article>` + body + `</article>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer srv.Close()

	e := New(transport.NewDefaultClient())
	article, failure := e.Extract(context.Background(), srv.URL, testSource(), 5*time.Second)
	if failure != nil {
		t.Fatalf("Extract failed: %v", failure)
	}
	if strings.Contains(article.Body, "광고입니다") {
		t.Errorf("ad content leaked into body: %q", article.Body)
	}
}

func TestCleanTextStripsBoilerplate(t *testing.T) {
	raw := "실제 기사 내용입니다. " + strings.Repeat("내용 ", 20) + " 저작권자 ⓒ 연합뉴스 무단전재 및 재배포 금지"
	cleaned := cleanText(raw)
	if strings.Contains(cleaned, "저작권자") || strings.Contains(cleaned, "무단전재") {
		t.Errorf("boilerplate not stripped: %q", cleaned)
	}
}
