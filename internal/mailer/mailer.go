// Package mailer implements the Mailer Adapter (C10): renders a digest
// of SummarizedArticles as HTML + plaintext email and hands it to an
// injected transport, per spec §4.10.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/glbaguni/newsdigest/internal/domain"
)

// Sender is the injected external collaborator that actually dials an
// SMTP server or transactional mail API (spec §6.2 MailSender).
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// Mailer renders digests and delegates delivery to a Sender.
type Mailer struct {
	sender Sender
	policy *bluemonday.Policy
	html   *template.Template
}

// New builds a Mailer over sender.
func New(sender Sender) *Mailer {
	return &Mailer{
		sender: sender,
		policy: bluemonday.UGCPolicy(),
		html:   template.Must(template.New("digest").Parse(digestTemplate)),
	}
}

// Send renders subject (or a generated default) and one block per
// article in digest, sanitizes the rendered HTML, and hands both
// representations to the injected Sender. Failures are returned to the
// caller to surface as a non-fatal errors[] entry with stage="mail" —
// the Mailer itself never retries or swallows errors.
func (m *Mailer) Send(ctx context.Context, recipient string, subject string, digest []domain.SummarizedArticle) error {
	if len(digest) == 0 {
		return fmt.Errorf("mailer: digest is empty")
	}
	if subject == "" {
		subject = fmt.Sprintf("News digest (%d articles)", len(digest))
	}

	var htmlBuf bytes.Buffer
	if err := m.html.Execute(&htmlBuf, digestView{Subject: subject, Articles: digest}); err != nil {
		return fmt.Errorf("mailer: render html: %w", err)
	}
	sanitized := m.policy.Sanitize(htmlBuf.String())

	return m.sender.Send(ctx, recipient, subject, sanitized, plainText(subject, digest))
}

type digestView struct {
	Subject  string
	Articles []domain.SummarizedArticle
}

const digestTemplate = `<html>
<head><style>
body { font-family: Arial, sans-serif; line-height: 1.6; }
.header { background-color: #f8f9fa; padding: 20px; text-align: center; }
.article { margin: 20px 0; padding: 15px; border-left: 4px solid #007bff; }
.title { font-weight: bold; color: #333; }
.source { color: #666; font-size: 0.9em; }
.summary { margin: 10px 0; }
.link { color: #007bff; text-decoration: none; }
</style></head>
<body>
<div class="header"><h1>{{.Subject}}</h1><p>{{len .Articles}} articles summarized</p></div>
{{range .Articles}}<div class="article">
<div class="title">{{.Article.Title}}</div>
<div class="source">Source: {{.Article.Source.Name}}</div>
<div class="summary">{{.Summary}}</div>
<a class="link" href="{{.Article.URL}}">Read original</a>
</div>
{{end}}
</body></html>`

func plainText(subject string, digest []domain.SummarizedArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%d articles summarized.\n\n", subject, len(digest))
	for i, article := range digest {
		fmt.Fprintf(&b, "%d. %s\n", i+1, article.Article.Title)
		fmt.Fprintf(&b, "   Source: %s\n", article.Article.Source.Name)
		fmt.Fprintf(&b, "   Summary: %s\n", article.Summary)
		fmt.Fprintf(&b, "   Link: %s\n\n", article.Article.URL)
	}
	return b.String()
}
