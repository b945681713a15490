package feedfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/glbaguni/newsdigest/internal/domain"
	"github.com/glbaguni/newsdigest/internal/transport"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Test Article</title>
      <link>https://Example.com/1#ignored</link>
      <description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;&lt;/p&gt;</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
  </channel>
</rss>`

func testSource(url string) domain.FeedSource {
	return domain.FeedSource{Name: "Test", Category: domain.CategoryGeneral, RSSURL: url}
}

func TestFetchOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml; charset=UTF-8")
		w.Write([]byte(testRSS))
	}))
	defer srv.Close()

	f := New(transport.NewDefaultClient())
	entries, res := f.Fetch(context.Background(), testSource(srv.URL), 5*time.Second)
	if res.Outcome != OutcomeOK {
		t.Fatalf("Outcome = %v, err = %v", res.Outcome, res.Err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Link != "https://example.com/1" {
		t.Errorf("Link = %q, want canonicalized host and no fragment", entry.Link)
	}
	if entry.SummarySnippet != "Hello world" {
		t.Errorf("SummarySnippet = %q, want %q", entry.SummarySnippet, "Hello world")
	}
	if entry.PublishedAt == nil {
		t.Error("PublishedAt not parsed")
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(transport.NewDefaultClient())
	_, res := f.Fetch(context.Background(), testSource(srv.URL), 5*time.Second)
	if res.Outcome != OutcomeHTTPError {
		t.Fatalf("Outcome = %v, want HTTPError", res.Outcome)
	}
	if res.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", res.StatusCode)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	f := New(transport.NewDefaultClient())
	_, res := f.Fetch(context.Background(), testSource(srv.URL), 20*time.Millisecond)
	if res.Outcome != OutcomeTimeout {
		t.Fatalf("Outcome = %v, want Timeout", res.Outcome)
	}
}

func TestFetchParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml; charset=UTF-8")
		w.Write([]byte("not a feed at all"))
	}))
	defer srv.Close()

	f := New(transport.NewDefaultClient())
	_, res := f.Fetch(context.Background(), testSource(srv.URL), 5*time.Second)
	if res.Outcome != OutcomeParseError {
		t.Fatalf("Outcome = %v, want ParseError", res.Outcome)
	}
}

func TestFetchEUCKRFeed(t *testing.T) {
	eucKRBody, err := encodeEUCKRFixture()
	if err != nil {
		t.Fatalf("fixture encode: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml; charset=EUC-KR")
		w.Write(eucKRBody)
	}))
	defer srv.Close()

	f := New(transport.NewDefaultClient())
	entries, res := f.Fetch(context.Background(), testSource(srv.URL), 5*time.Second)
	if res.Outcome != OutcomeOK {
		t.Fatalf("Outcome = %v, err = %v", res.Outcome, res.Err)
	}
	if len(entries) != 1 || entries[0].Title != "한국어 제목" {
		t.Fatalf("entries = %+v, want title 한국어 제목", entries)
	}
}

func encodeEUCKRFixture() ([]byte, error) {
	rss := `<?xml version="1.0" encoding="EUC-KR"?>
<rss version="2.0">
  <channel>
    <title>테스트</title>
    <item>
      <title>한국어 제목</title>
      <link>https://example.com/ko</link>
      <description>설명입니다</description>
    </item>
  </channel>
</rss>`
	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(rss))
	return encoded, err
}

// TestFetchCP949Feed pins the approximation charset.go documents: Go's
// standard library has no dedicated CP949 codec, so a feed declaring
// charset=CP949 is decoded through the EUC-KR decoder, which covers the
// vast majority of real-world Korean RSS content.
func TestFetchCP949Feed(t *testing.T) {
	cp949Body, err := encodeCP949Fixture()
	if err != nil {
		t.Fatalf("fixture encode: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml; charset=CP949")
		w.Write(cp949Body)
	}))
	defer srv.Close()

	f := New(transport.NewDefaultClient())
	entries, res := f.Fetch(context.Background(), testSource(srv.URL), 5*time.Second)
	if res.Outcome != OutcomeOK {
		t.Fatalf("Outcome = %v, err = %v", res.Outcome, res.Err)
	}
	if len(entries) != 1 || entries[0].Title != "한글 뉴스 제목" {
		t.Fatalf("entries = %+v, want title 한글 뉴스 제목", entries)
	}
}

func encodeCP949Fixture() ([]byte, error) {
	rss := `<?xml version="1.0" encoding="CP949"?>
<rss version="2.0">
  <channel>
    <title>테스트</title>
    <item>
      <title>한글 뉴스 제목</title>
      <link>https://example.com/cp949</link>
      <description>설명입니다</description>
    </item>
  </channel>
</rss>`
	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(rss))
	return encoded, err
}
