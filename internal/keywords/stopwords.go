package keywords

// stopwordsEnglish and stopwordsKorean are the language-specific lists
// spec §4.4's heuristic fallback removes before ranking terms by
// frequency.
var stopwordsEnglish = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"of": true, "in": true, "on": true, "at": true, "to": true, "for": true,
	"with": true, "by": true, "from": true, "about": true, "as": true, "it": true,
	"this": true, "that": true, "these": true, "those": true, "what": true,
	"how": true, "when": true, "where": true, "why": true, "who": true,
}

var stopwordsKorean = map[string]bool{
	"그리고": true, "그러나": true, "하지만": true, "그래서": true, "또한": true,
	"이": true, "그": true, "저": true, "것": true, "수": true, "등": true,
	"및": true, "에서": true, "으로": true, "에게": true, "에는": true, "에도": true,
	"들": true, "을": true, "를": true, "은": true, "는": true, "이다": true,
	"있다": true, "없다": true, "하다": true, "되다": true, "이런": true, "저런": true,
}

func isStopword(term string) bool {
	return stopwordsEnglish[term] || stopwordsKorean[term]
}
