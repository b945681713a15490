package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/glbaguni/newsdigest/internal/domain"
)

type capturedSend struct {
	to, subject, html, text string
}

type fakeSender struct {
	captured *capturedSend
	err      error
}

func (f *fakeSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if f.err != nil {
		return f.err
	}
	*f.captured = capturedSend{to: to, subject: subject, html: htmlBody, text: textBody}
	return nil
}

func testDigest() []domain.SummarizedArticle {
	return []domain.SummarizedArticle{
		{
			Article: domain.Article{
				Title:  "경제 뉴스 제목",
				URL:    "https://a.example/1",
				Source: domain.FeedSource{Name: "Test Source"},
			},
			Summary:         "요약 내용입니다.",
			SummaryLanguage: domain.LanguageKorean,
			ProducedAt:      time.Now(),
		},
	}
}

func TestSendRendersOneBlockPerArticle(t *testing.T) {
	var captured capturedSend
	sender := &fakeSender{captured: &captured}
	m := New(sender)

	if err := m.Send(context.Background(), "user@example.com", "", testDigest()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if captured.to != "user@example.com" {
		t.Fatalf("to = %q", captured.to)
	}
	if !strings.Contains(captured.html, "경제 뉴스 제목") {
		t.Fatalf("html body missing article title: %s", captured.html)
	}
	if !strings.Contains(captured.text, "요약 내용입니다.") {
		t.Fatalf("text body missing summary: %s", captured.text)
	}
	if !strings.Contains(captured.subject, "1 articles") {
		t.Fatalf("expected generated subject with article count, got %q", captured.subject)
	}
}

func TestSendUsesCustomSubject(t *testing.T) {
	var captured capturedSend
	sender := &fakeSender{captured: &captured}
	m := New(sender)

	if err := m.Send(context.Background(), "user@example.com", "오늘의 뉴스", testDigest()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if captured.subject != "오늘의 뉴스" {
		t.Fatalf("subject = %q, want custom subject preserved", captured.subject)
	}
}

func TestSendStripsScriptTags(t *testing.T) {
	var captured capturedSend
	sender := &fakeSender{captured: &captured}
	m := New(sender)

	digest := testDigest()
	digest[0].Summary = `<script>alert(1)</script>safe summary`
	if err := m.Send(context.Background(), "user@example.com", "", digest); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if strings.Contains(captured.html, "<script>") {
		t.Fatalf("sanitized html still contains a script tag: %s", captured.html)
	}
	if !strings.Contains(captured.html, "safe summary") {
		t.Fatalf("sanitized html dropped legitimate content: %s", captured.html)
	}
}

func TestSendRejectsEmptyDigest(t *testing.T) {
	var captured capturedSend
	sender := &fakeSender{captured: &captured}
	m := New(sender)

	if err := m.Send(context.Background(), "user@example.com", "subject", nil); err == nil {
		t.Fatalf("expected error for empty digest")
	}
}

func TestSendPropagatesSenderError(t *testing.T) {
	sender := &fakeSender{captured: &capturedSend{}, err: errors.New("smtp: connection refused")}
	m := New(sender)

	err := m.Send(context.Background(), "user@example.com", "subject", testDigest())
	if err == nil {
		t.Fatalf("expected sender error to propagate")
	}
}
