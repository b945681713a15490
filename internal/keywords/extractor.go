package keywords

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/glbaguni/newsdigest/internal/domain"
	"github.com/glbaguni/newsdigest/internal/llm"
)

// EmptyError is returned when neither the LLM path nor the heuristic
// fallback produces any keyword — fatal to the query path, per spec
// §4.4.
type EmptyError struct{}

func (EmptyError) Error() string { return "keywords: KeywordEmpty" }

const (
	minKeywords = 1
	maxKeywords = 10

	systemPrompt = "You extract 3-7 salient search keywords from a user query. Reply as a comma-separated list, no commentary."
)

var wordPattern = regexp.MustCompile(`[\p{L}]{2,}`)

// Extractor produces a KeywordSet from a raw user query, per spec §4.4.
type Extractor struct {
	client llm.Client
	model  string
}

// New builds an Extractor over the given LLM collaborator. A nil client
// always falls back to the heuristic tokenizer.
func New(client llm.Client, model string) *Extractor {
	return &Extractor{client: client, model: model}
}

// Extract returns a KeywordSet for query, honoring deadline as a hard
// bound on the LLM call.
func (e *Extractor) Extract(ctx context.Context, query string, langHint domain.Language, deadline time.Duration) (domain.KeywordSet, error) {
	sanitized, needsFallback := sanitize(query)

	if !needsFallback && e.client != nil {
		if terms, ok := e.extractViaLLM(ctx, sanitized, deadline); ok {
			return domain.KeywordSet{Terms: terms, LanguageHint: langHint}, nil
		}
	}

	terms := extractHeuristic(sanitized)
	if len(terms) == 0 {
		// Retry the heuristic path once against the raw, unsanitized
		// query — the denylist strip may have eaten the only content.
		terms = extractHeuristic(query)
	}
	if len(terms) == 0 {
		return domain.KeywordSet{}, EmptyError{}
	}
	return domain.KeywordSet{Terms: terms, LanguageHint: langHint}, nil
}

func (e *Extractor) extractViaLLM(ctx context.Context, query string, deadline time.Duration) ([]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	reply, err := e.client.Chat(ctx, llm.ChatRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
		MaxTokens:   100,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, false
	}

	terms := normalizeTerms(strings.Split(reply, ","))
	if len(terms) < minKeywords {
		return nil, false
	}
	return terms, true
}

// extractHeuristic tokenizes query into Unicode letter runs of length >=
// 2, drops stopwords, and ranks the remainder by frequency (ties broken
// by first occurrence), per spec §4.4.
func extractHeuristic(query string) []string {
	tokens := wordPattern.FindAllString(strings.ToLower(query), -1)

	type counted struct {
		term  string
		count int
		first int
	}
	counts := map[string]*counted{}
	order := 0
	for _, tok := range tokens {
		if isStopword(tok) {
			continue
		}
		if c, ok := counts[tok]; ok {
			c.count++
			continue
		}
		counts[tok] = &counted{term: tok, count: 1, first: order}
		order++
	}

	ranked := make([]*counted, 0, len(counts))
	for _, c := range counts {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].first < ranked[j].first
	})

	terms := make([]string, 0, maxKeywords)
	for _, c := range ranked {
		terms = append(terms, c.term)
		if len(terms) == maxKeywords {
			break
		}
	}
	return terms
}

// normalizeTerms dedupes, lowercases, and trims an LLM's comma-separated
// reply, capping at maxKeywords.
func normalizeTerms(raw []string) []string {
	seen := map[string]bool{}
	var terms []string
	for _, r := range raw {
		term := strings.ToLower(strings.TrimSpace(r))
		term = strings.TrimFunc(term, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != ' ' })
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
		if len(terms) == maxKeywords {
			break
		}
	}
	return terms
}
