package services

import (
	"regexp"
	"strings"
)

var (
	htmlTagRe      = regexp.MustCompile(`<[^>]+>`)
	markdownLinkRe = regexp.MustCompile(`\[.*?\]\(.*?\)`)
	markdownMarkRe = regexp.MustCompile("[*_`]")
	markdownHeadRe = regexp.MustCompile(`(?m)^\s*#+\s+`)
	lineBreakRe    = regexp.MustCompile(`[\n\t\r]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// CleanText normalizes raw retrieved text before chunking and embedding:
// HTML tags, markdown links/emphasis/headers are stripped, everything is
// lowercased, and whitespace runs collapse to a single space.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = htmlTagRe.ReplaceAllString(text, " ")
	text = markdownLinkRe.ReplaceAllString(text, " ")
	text = markdownMarkRe.ReplaceAllString(text, " ")
	text = markdownHeadRe.ReplaceAllString(text, "")
	text = strings.ToLower(text)
	text = lineBreakRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
