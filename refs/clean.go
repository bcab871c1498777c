package refs

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// artifactReplacer strips whitespace code points that PDF text
// extraction leaves behind: no-break and narrow spaces become plain
// spaces, zero-width characters and soft hyphens disappear.
var artifactReplacer = strings.NewReplacer(
	"\u00A0", " ", // no-break space
	"\u2007", " ", // figure space
	"\u202F", " ", // narrow no-break space
	"\u00AD", "", // soft hyphen
	"\u200B", "", // zero-width space
	"\u200C", "", // zero-width non-joiner
	"\u200D", "", // zero-width joiner
	"\uFEFF", "", // byte order mark
)

// CleanText normalizes extracted reference text: NFKC normalization
// (folds PDF ligatures like ﬁ back to plain letters), artifact
// whitespace removal, whitespace-run collapsing, trimming, and a
// length cap in runes. Returns the empty string when nothing usable
// remains.
func CleanText(text string, maxRunes int) string {
	text = norm.NFKC.String(text)
	text = artifactReplacer.Replace(text)
	text = strings.Join(strings.Fields(text), " ")

	if maxRunes > 0 {
		runes := []rune(text)
		if len(runes) > maxRunes {
			text = strings.TrimSpace(string(runes[:maxRunes]))
		}
	}
	return text
}
