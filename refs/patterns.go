package refs

import (
	"regexp"

	"github.com/docview/citelens/model"
)

// Start-of-reference patterns in priority order. DOI precedes URL so
// that a doi.org link is classified as a DOI, not a bare URL.
var (
	numberedRe    = regexp.MustCompile(`^\[\d+\]`)
	authorYearRe  = regexp.MustCompile(`^[A-Z][A-Za-z'’-]+,\s*(?:[A-Z]\.[\s-]*)+.*\(\d{4}[a-z]?\)`)
	etAlYearRe    = regexp.MustCompile(`^[A-Z][A-Za-z'’-]+,?\s+et\s+al\.?.*\(\d{4}[a-z]?\)`)
	doiRe         = regexp.MustCompile(`(?i)^(?:doi:\s*|https?://(?:dx\.)?doi\.org/)?10\.\d{4,9}/\S+`)
	urlRe         = regexp.MustCompile(`^https?://\S+`)
	arxivRe       = regexp.MustCompile(`(?i)^arxiv:\s*(?:\d{4}\.\d{4,5}|[a-z-]+(?:\.[A-Z]{2})?/\d{7})`)
	numberedDotRe = regexp.MustCompile(`^\d+\.\s`)
)

// sectionTerminatorRe matches back-matter headings that end a
// bibliography.
var sectionTerminatorRe = regexp.MustCompile(`(?i)^(appendix|appendices|index|acknowledg(?:e)?ments?|figures?|tables?)\b`)

// startPattern pairs a detection method with its regular expression.
type startPattern struct {
	method model.Method
	re     *regexp.Regexp
}

// startPatterns is consulted in order; the first match wins.
var startPatterns = []startPattern{
	{model.MethodNumbered, numberedRe},
	{model.MethodAuthorYear, authorYearRe},
	{model.MethodAuthorYear, etAlYearRe},
	{model.MethodDOI, doiRe},
	{model.MethodURL, urlRe},
	{model.MethodArxiv, arxivRe},
	{model.MethodNumberedDot, numberedDotRe},
}

// MatchStart reports the method whose start-of-reference pattern
// matches the trimmed line text, or MethodNone when nothing matches.
func MatchStart(text string) (model.Method, bool) {
	for _, p := range startPatterns {
		if p.re.MatchString(text) {
			return p.method, true
		}
	}
	return model.MethodNone, false
}

// MatchesMethod reports whether the text matches the start pattern of
// one specific method.
func MatchesMethod(text string, method model.Method) bool {
	for _, p := range startPatterns {
		if p.method == method && p.re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsSectionTerminator reports whether the line is a back-matter
// heading (Appendix, Index, Acknowledgments, Figures, Tables).
func IsSectionTerminator(text string) bool {
	return sectionTerminatorRe.MatchString(text)
}
