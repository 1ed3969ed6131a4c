package classify

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxNormalizedChars = 6000

var (
	tagExpr       = regexp.MustCompile(`<[^>]+>`)
	blockExpr     = regexp.MustCompile(`(?is)<(script|style|noscript).*?>.*?</(script|style|noscript)>`)
	spaceExpr     = regexp.MustCompile(`\s+`)
	zeroWidthExpr = regexp.MustCompile("[\u200B-\u200F\uFEFF]")
)

// HTMLToText converts markup to plain text. Parsed extraction drops
// script/style/noscript subtrees and decodes entities; unparseable input falls
// back to regex stripping so the function stays total.
func HTMLToText(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err == nil {
		doc.Find("script,style,noscript").Remove()
		return doc.Text()
	}
	s = blockExpr.ReplaceAllString(s, " ")
	return tagExpr.ReplaceAllString(s, " ")
}

// NormalizeText canonicalizes one text blob for rule matching: markup and
// invisible runes removed, lowercased, whitespace collapsed, capped at 6000
// characters with a truncation marker. Pure and total over arbitrary input.
func NormalizeText(s string) string {
	text := HTMLToText(s)
	text = zeroWidthExpr.ReplaceAllString(text, "")
	text = stripControls(text)
	text = strings.ToLower(text)
	text = strings.TrimSpace(spaceExpr.ReplaceAllString(text, " "))

	if runes := []rune(text); len(runes) > maxNormalizedChars {
		text = string(runes[:maxNormalizedChars]) + "…"
	}
	return text
}

// Normalize builds the canonical matching text for a message. Absent inputs
// are treated as empty strings.
func Normalize(subject, snippet, body string) string {
	return NormalizeText(subject + "\n" + snippet + "\n" + body)
}

func stripControls(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		if r == 0x7f {
			return -1
		}
		return r
	}, s)
}
