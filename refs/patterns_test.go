package refs

import (
	"testing"

	"github.com/docview/citelens/model"
)

func TestMatchStart(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.Method
		ok   bool
	}{
		{"numbered", "[1] Smith, J. A study of things. 2020.", model.MethodNumbered, true},
		{"numbered multi-digit", "[142] Jones, K. Another study. 2019.", model.MethodNumbered, true},
		{"author year", "Smith, J. (2020). A study of things.", model.MethodAuthorYear, true},
		{"author year apostrophe", "O'Brien, P. Q. (1999) Title here.", model.MethodAuthorYear, true},
		{"author year suffix", "Smith, J. (2020a). First of two that year.", model.MethodAuthorYear, true},
		{"et al year", "Smith et al. (2021). Collaborative work.", model.MethodAuthorYear, true},
		{"doi plain", "10.1000/xyz123 The referenced article", model.MethodDOI, true},
		{"doi prefixed", "doi: 10.1038/nature12345", model.MethodDOI, true},
		{"doi url", "https://doi.org/10.1000/182", model.MethodDOI, true},
		{"doi url dx", "https://dx.doi.org/10.1000/182", model.MethodDOI, true},
		{"plain url", "https://example.com/reference", model.MethodURL, true},
		{"http url", "http://example.org/paper.pdf", model.MethodURL, true},
		{"arxiv new style", "arXiv:2103.14030 [cs.CV]", model.MethodArxiv, true},
		{"arxiv old style", "arXiv:hep-th/9901001", model.MethodArxiv, true},
		{"numbered dot", "1. Smith, J. A study of things. 2020.", model.MethodNumberedDot, true},
		{"prose", "as discussed in the previous section", model.MethodNone, false},
		{"empty", "", model.MethodNone, false},
		{"mid-line citation", "see [1] for details", model.MethodNone, false},
		{"year without author", "(2020) was a notable year", model.MethodNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchStart(tt.text)
			if ok != tt.ok || got != tt.want {
				t.Errorf("MatchStart(%q) = (%v, %v), want (%v, %v)", tt.text, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMatchStart_DOIBeforeURL(t *testing.T) {
	// A doi.org link must classify as a DOI, not a generic URL.
	method, ok := MatchStart("https://doi.org/10.1145/3292500")
	if !ok || method != model.MethodDOI {
		t.Errorf("Expected DOI classification, got %v", method)
	}
}

func TestMatchesMethod(t *testing.T) {
	if !MatchesMethod("[2] Next entry begins here.", model.MethodNumbered) {
		t.Error("Expected numbered match")
	}
	if MatchesMethod("[2] Next entry begins here.", model.MethodAuthorYear) {
		t.Error("Numbered entry must not match authorYear")
	}
	if MatchesMethod("continuation of the previous entry", model.MethodNumbered) {
		t.Error("Continuation text must not match")
	}
}

func TestIsSectionTerminator(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Appendix A: Proofs", true},
		{"APPENDIX", true},
		{"Acknowledgments", true},
		{"Acknowledgements", true},
		{"Index", true},
		{"Figures", true},
		{"Tables", true},
		{"appendix to the argument", true},
		{"The appendix contains proofs", false},
		{"Tableau results", false},
		{"[3] Regular reference entry", false},
	}

	for _, tt := range tests {
		if got := IsSectionTerminator(tt.text); got != tt.want {
			t.Errorf("IsSectionTerminator(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
