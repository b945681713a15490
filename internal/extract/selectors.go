package extract

import "regexp"

// newsBodySelectors is strategy 2's configured selector list: site-specific
// Korean news body containers first, then generic fallbacks. Ported from
// original_source/glbaguni-backend/backend/services/content_extractor.py's
// extract_content_korean selector table.
var newsBodySelectors = []string{
	// SBS
	".article-text-area", ".text_area", ".article_txt",
	// JTBC
	".article_content", ".news_content", ".content_text",
	// 연합뉴스 (Yonhap)
	".story-news-article", ".article-txt",
	// 조선일보 (Chosun)
	".par", ".article_body", ".news_article_body",
	// 중앙일보 (JoongAng)
	".news_text",
	// 한겨레 (Hani)
	".text", ".article-text", ".content-text",
	// MBC
	".news_txt", ".article_area", ".content_area",
	// generic news-body containers
	"div#articleBody", "div.article_body", "div#content", "div.news_content",
	"article", ".article", "#article", ".post-content", ".entry-content",
	".content", ".main-content",
}

// adClassPattern matches container classes/ids that are never article body
// content, stripped before any extraction strategy runs.
var adClassPattern = regexp.MustCompile(`(?i)(^|[-_\s])(ad|ads|advert|banner|sponsor|promo)([-_\s]|$)`)

// unwantedPhrases are boilerplate fragments (bylines, copyright notices,
// social-share prompts) stripped from extracted Korean article text.
// Ported from content_extractor.py's clean_korean_text unwanted_phrases.
var unwantedPhrases = []string{
	"저작권자 ⓒ",
	"무단전재 및 재배포 금지",
	"기자 =",
	"특파원 =",
	"= 기자",
	"본 기사는",
	"이 기사는",
	"▲", "▼", "◆", "◇",
	"Copyright",
	"All rights reserved",
	"뉴스1",
	"연합뉴스",
	"더보기",
	"관련기사",
	"ⓒ 한경닷컴",
	"페이스북",
	"트위터",
	"카카오톡",
	"네이버",
	"URL복사",
}
