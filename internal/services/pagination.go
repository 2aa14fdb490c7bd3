package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PageLimit is the Telegram message length ceiling used for guideline pages.
const PageLimit = 4096

// SplitIntoPages splits text into pages of at most maxLen characters.
// Splitting prefers blank-line paragraph boundaries; a paragraph that alone
// exceeds maxLen is split at sentence boundaries instead. Units are packed
// greedily, so a single sentence longer than maxLen is emitted as one
// oversized page rather than truncated.
func SplitIntoPages(text string, maxLen int) []string {
	if maxLen < 1 {
		maxLen = 1
	}

	units := splitUnits(text, maxLen)
	if len(units) == 0 {
		return nil
	}

	var pages []string
	var page strings.Builder
	pageLen := 0

	for _, u := range units {
		sep := ""
		if pageLen > 0 {
			sep = u.sep
		}
		addLen := utf8.RuneCountInString(sep) + utf8.RuneCountInString(u.text)
		if pageLen > 0 && pageLen+addLen > maxLen {
			pages = append(pages, page.String())
			page.Reset()
			pageLen = 0
			sep = ""
			addLen = utf8.RuneCountInString(u.text)
		}
		page.WriteString(sep)
		page.WriteString(u.text)
		pageLen += addLen
	}
	if pageLen > 0 {
		pages = append(pages, page.String())
	}
	return pages
}

// textUnit is an indivisible piece of text plus the separator that joins it
// to the preceding unit when both land on the same page.
type textUnit struct {
	sep  string
	text string
}

func splitUnits(text string, maxLen int) []textUnit {
	var units []textUnit
	for _, paragraph := range splitParagraphs(text) {
		if utf8.RuneCountInString(paragraph) <= maxLen {
			units = append(units, textUnit{sep: "\n\n", text: paragraph})
			continue
		}
		for i, sentence := range splitSentences(paragraph) {
			sep := " "
			if i == 0 {
				sep = "\n\n"
			}
			units = append(units, textUnit{sep: sep, text: sentence})
		}
	}
	return units
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var paragraphs []string
	for _, part := range strings.Split(text, "\n\n") {
		if part = strings.TrimSpace(part); part != "" {
			paragraphs = append(paragraphs, part)
		}
	}
	return paragraphs
}

// splitSentences cuts after terminal punctuation followed by whitespace.
func splitSentences(paragraph string) []string {
	var sentences []string
	var current strings.Builder
	prevTerminal := false

	for _, r := range paragraph {
		if prevTerminal && unicode.IsSpace(r) {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
			prevTerminal = false
			continue
		}
		current.WriteRune(r)
		switch r {
		case '.', '!', '?', '…':
			prevTerminal = true
		default:
			if !unicode.IsSpace(r) {
				prevTerminal = false
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
