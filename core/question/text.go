package question

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// inlineTags are joined to their neighbours without a separating space.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "code": true, "em": true, "font": true, "i": true,
	"mark": true, "s": true, "small": true, "span": true, "strong": true, "sub": true,
	"sup": true, "u": true,
}

// stripMarkup removes every tag from s, decodes character references and collapses whitespace.
// Block-level tags act as word separators. The result is NFC-normalized.
func stripMarkup(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	raw := 0 // depth inside script/style

	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseSpaces(b.String())
		case html.TextToken:
			if raw == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			tt := z.Token()
			switch tt.Data {
			case "script", "style":
				if tt.Type == html.StartTagToken {
					raw++
				} else if tt.Type == html.EndTagToken && raw > 0 {
					raw--
				}
			}
			if !inlineTags[tt.Data] {
				b.WriteByte(' ')
			}
		}
	}
}

func collapseSpaces(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// foldText reduces s to a comparison key: accents dropped, lower-cased, single-spaced.
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
