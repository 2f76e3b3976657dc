package standup

import (
	"regexp"
	"strings"
)

// helloRunPattern matches one or more consecutive "hello" tokens along with
// their surrounding whitespace. Whisper tends to emit stuttered greetings
// ("hello hello hello") at the start of a recording.
var helloRunPattern = regexp.MustCompile(`(\s*hello\s*)+`)

// corrections fixes recurring speech-to-text misrecognitions of team member
// names. Applied as whole-word substitutions after case folding.
var corrections = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\bshit\b`), "anshid"},
	{regexp.MustCompile(`\bliedida\b`), "ladeeda"},
	{regexp.MustCompile(`\bsaina\b`), "sayana"},
}

// Normalize canonicalizes raw transcript text: folds to lowercase, collapses
// repeated "hello" runs into a single token, and applies the known
// misrecognition corrections. Normalizing already-normalized text is a no-op.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = helloRunPattern.ReplaceAllString(text, " hello ")
	for _, c := range corrections {
		text = c.pattern.ReplaceAllString(text, c.replacement)
	}
	return text
}
