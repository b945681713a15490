package feedfetch

import (
	"bytes"
	"mime"
	"regexp"
	"strings"

	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// xmlDeclEncoding matches the encoding attribute of a leading XML
// declaration, e.g. <?xml version="1.0" encoding="EUC-KR"?>.
var xmlDeclEncoding = regexp.MustCompile(`(?i)<\?xml[^>]*encoding\s*=\s*["']([^"']+)["']`)

// sniffOrder is the byte-sniffing fallback order named in spec §4.2 when
// neither the HTTP Content-Type header nor the XML declaration name a
// charset.
var sniffOrder = []string{"UTF-8", "EUC-KR", "CP949", "ISO-8859-1"}

// decodeFeedBody applies spec §4.2's charset resolution: prefer the HTTP
// Content-Type charset, then the XML declaration, then byte-sniffing
// through a fixed fallback order. The first decoder that yields
// well-formed UTF-8 text wins. Returns the decoded string, or an error if
// no decoder in the fallback order produces valid UTF-8
// (CharsetUnresolvable).
func decodeFeedBody(body []byte, contentType string) (string, error) {
	if enc := charsetFromContentType(contentType); enc != "" {
		if decoded, ok := tryDecode(body, enc); ok {
			return decoded, nil
		}
	}
	if enc := charsetFromXMLDecl(body); enc != "" {
		if decoded, ok := tryDecode(body, enc); ok {
			return decoded, nil
		}
	}
	if enc := sniffCharset(body); enc != "" {
		if decoded, ok := tryDecode(body, enc); ok {
			return decoded, nil
		}
	}
	for _, name := range sniffOrder {
		if decoded, ok := tryDecode(body, name); ok {
			return decoded, nil
		}
	}
	return "", errCharsetUnresolvable
}

func charsetFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func charsetFromXMLDecl(body []byte) string {
	head := body
	if len(head) > 512 {
		head = head[:512]
	}
	m := xmlDeclEncoding.FindSubmatch(head)
	if m == nil {
		return ""
	}
	return string(m[1])
}

func sniffCharset(body []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(body)
	if err != nil || result == nil {
		return ""
	}
	return result.Charset
}

// tryDecode decodes body using the named encoding and reports whether the
// result is well-formed UTF-8. UTF-8 and "utf8" pass through unchanged
// (after a validity check); everything else routes through
// golang.org/x/text/encoding, with EUC-KR standing in for CP949 (the
// superset relationship holds for the vast majority of real-world
// Korean RSS content).
func tryDecode(body []byte, name string) (string, bool) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
	switch norm {
	case "UTF-8", "UTF8", "":
		if !bytes.ContainsRune(body, '�') {
			return string(body), true
		}
		return "", false
	case "EUC-KR", "EUCKR", "CP949", "MS949", "UHC":
		return decodeWith(body, korean.EUCKR)
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return decodeWith(body, charmap.ISO8859_1)
	default:
		// Fall back to x/net/html/charset's lookup table for anything
		// else the HTTP layer or XML declaration might have named.
		enc, _ := charset.Lookup(strings.ToLower(name))
		if enc == nil {
			return "", false
		}
		return decodeWith(body, enc)
	}
}

func decodeWith(body []byte, enc encoding.Encoding) (string, bool) {
	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(decoded, '�') {
		return "", false
	}
	return string(decoded), true
}
