// Package textclean normalizes free text before it is handed to a classifier.
package textclean

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	urlPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	nonAlphaPattern = regexp.MustCompile(`[^a-zA-Z\s]`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// Normalize lowercases s, removes URLs, drops everything that is not an ASCII
// letter or whitespace and collapses whitespace runs to a single space.
//
// The output only ever contains [a-z ] so a second pass has nothing left to
// remove.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = urlPattern.ReplaceAllString(s, "")
	s = nonAlphaPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeValue coerces v to a string and normalizes it. nil becomes "".
func NormalizeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return Normalize(t)
	case []byte:
		return Normalize(string(t))
	default:
		return Normalize(fmt.Sprint(t))
	}
}
