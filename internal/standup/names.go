package standup

import (
	"regexp"
	"strings"
)

// promptPattern matches a floor-handoff phrase followed by a name token,
// e.g. "ok john", "next, maria", "you can start dave". The same pattern
// drives both name extraction and the attribution engine's prompt rule.
var promptPattern = regexp.MustCompile(`\b(start from|ok,?|hello,?|next,?|you can start)\s+([a-z]+)`)

// ExtractNames scans segments for floor-handoff prompts and collects the
// prompted names. Each segment contributes at most its first match. The
// returned set is the fixed universe of known speakers for the transcript;
// ErrNoSpeakersFound is returned when it is empty.
func ExtractNames(segments []Segment) (map[string]struct{}, error) {
	names := make(map[string]struct{})
	for _, seg := range segments {
		m := promptPattern.FindStringSubmatch(seg.Text)
		if m == nil {
			continue
		}
		names[capitalize(m[2])] = struct{}{}
	}
	if len(names) == 0 {
		return nil, ErrNoSpeakersFound
	}
	return names, nil
}

func capitalize(name string) string {
	if name == "" {
		return name
	}
	// Name tokens are captured as lowercase ASCII, so byte slicing is safe.
	return strings.ToUpper(name[:1]) + name[1:]
}
