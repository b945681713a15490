package extract

import (
	"html"
	"strings"
	"unicode"
)

const minBodyLength = 100

// zeroWidthChars are invisible Unicode runes that occasionally leak through
// from copy-pasted CMS content; spec §4.3 requires they be stripped.
var zeroWidthChars = map[rune]bool{
	'​': true, // zero width space
	'‌': true, // zero width non-joiner
	'‍': true, // zero width joiner
	'\uFEFF': true, // BOM
}

// cleanText normalizes whitespace, decodes HTML entities, strips
// zero-width characters, and removes the configured boilerplate phrases.
// Grounded on content_extractor.py's clean_korean_text, generalized to
// run over any extracted body rather than only Korean text.
func cleanText(raw string) string {
	text := html.UnescapeString(raw)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if zeroWidthChars[r] {
			continue
		}
		b.WriteRune(r)
	}
	text = b.String()

	for _, phrase := range unwantedPhrases {
		text = strings.ReplaceAll(text, phrase, "")
	}

	return collapseSpace(text)
}

func collapseSpace(s string) string {
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
