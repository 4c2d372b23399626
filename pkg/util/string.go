package util

import (
	"strings"
)

// SplitHashtags splits a space-delimited hashtag string into discrete tokens.
// Empty tokens are dropped; a missing leading '#' is added so adapters can
// rely on a uniform shape.
func SplitHashtags(s string) []string {
	if s == "" {
		return nil
	}

	var tags []string
	for _, tok := range strings.Fields(s) {
		tok = strings.TrimSpace(tok)
		if tok == "" || tok == "#" {
			continue
		}
		if !strings.HasPrefix(tok, "#") {
			tok = "#" + tok
		}
		tags = append(tags, tok)
	}

	return tags
}

// JoinCaption appends hashtags to a post body, separated by a blank line.
func JoinCaption(text string, hashtags []string) string {
	if len(hashtags) == 0 {
		return text
	}
	if text == "" {
		return strings.Join(hashtags, " ")
	}
	return text + "\n\n" + strings.Join(hashtags, " ")
}

// TruncateRunes shortens s to at most limit runes, appending an ellipsis when
// anything was cut. Platform character limits count runes, not bytes.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}
