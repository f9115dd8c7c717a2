package speech

import (
	"regexp"
	"strings"
)

var (
	headingRe    = regexp.MustCompile(`#{1,6} `)
	boldRe       = regexp.MustCompile(`(\*\*|__)(.*?)(\*\*|__)`)
	italicRe     = regexp.MustCompile(`(\*|_)(.*?)(\*|_)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanTextForSpeech strips markdown and other non-verbal characters so
// the synthesized audio does not read out formatting noise.
func CleanTextForSpeech(text string) string {
	text = headingRe.ReplaceAllString(text, "")
	text = boldRe.ReplaceAllString(text, "$2")
	text = italicRe.ReplaceAllString(text, "$2")

	// Table pipes, horizontal rules and code backticks
	text = strings.ReplaceAll(text, "|", " ")
	text = strings.ReplaceAll(text, "---", " ")
	text = strings.ReplaceAll(text, "`", "")

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
