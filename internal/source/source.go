// Package source holds the text primitives shared by the field extractors:
// comment stripping and balanced brace-block extraction.
package source

import "regexp"

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//.*`)
)

// StripComments removes /* */ spans and then // line comments.
// Block comments go first so a "//" inside one is never seen as live.
// String literals are not recognized: a comment marker inside a string
// starts a comment all the same.
func StripComments(text string) string {
	// Removing "/*x*/" from "//*x*/*y*/" forms a new "/*y*/", so repeat
	// until stable to keep stripping idempotent.
	for {
		stripped := blockCommentRe.ReplaceAllString(text, "")
		if stripped == text {
			break
		}
		text = stripped
	}
	return lineCommentRe.ReplaceAllString(text, "")
}

// FindBlock returns the text from the '{' at start through its matching '}'.
// If the text ends before the braces balance, the remainder from start is
// returned so callers still see a partial body.
func FindBlock(text string, start int) string {
	if start < 0 || start >= len(text) {
		return ""
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return text[start:]
}
