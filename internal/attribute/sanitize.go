package attribute

import (
	"regexp"
	"strings"
)

// checkmarks are the glyphs spec tables use for a boolean "applies" flag
var checkmarks = []string{"○", "O", "o", "●"}

// IsCheckmark reports whether s (ignoring surrounding whitespace) is a checkmark glyph
func IsCheckmark(s string) bool {
	s = strings.TrimSpace(s)
	for _, c := range checkmarks {
		if s == c {
			return true
		}
	}
	return false
}

// Value cut markers: button captions rendered inside the value cell
const (
	markerCertCheck = "인증번호 확인"
	markerShortcut  = "바로가기"
)

var (
	closedParen   = regexp.MustCompile(`[\s\p{Zs}]*\([^)]*\)`)
	openParenTail = regexp.MustCompile(`[\s\p{Zs}]*\([^)]*$`)
	openParen     = regexp.MustCompile(`[\s\p{Zs}]*\([^)]*`)

	marketingPhrases = []string{"제조사 웹사이트", "웹사이트"}
)

func cutMarkers(s string) string {
	s, _, _ = strings.Cut(s, markerCertCheck)
	s, _, _ = strings.Cut(s, markerShortcut)
	return s
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanInline is the light cleanup applied to 1:1 cells before merging
func CleanInline(value string) string {
	value = strings.TrimSpace(cutMarkers(value))
	value = closedParen.ReplaceAllString(value, "")
	return strings.TrimSpace(value)
}

// Sanitize strips button captions, parenthetical asides and marketing phrases from a
// raw value and collapses whitespace. An empty result means "no value".
func Sanitize(raw string) string {
	s := raw
	for {
		next := sanitizeOnce(s)
		if next == s {
			return next
		}
		// removing a phrase can splice together a new marker, so run to a fixpoint
		s = next
	}
}

func sanitizeOnce(s string) string {
	s = cutMarkers(s)
	s = closedParen.ReplaceAllString(s, "")
	s = openParenTail.ReplaceAllString(s, "")
	s = openParen.ReplaceAllString(s, "")
	for _, phrase := range marketingPhrases {
		s = strings.ReplaceAll(s, phrase, "")
	}
	return collapseSpace(s)
}
