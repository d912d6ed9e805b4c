package keyword

import "strings"

// Matcher holds a fixed set of watched terms, configured once at process
// start. Matching is plain case-insensitive substring containment; no
// tokenization or fuzzy matching.
type Matcher struct {
	terms []string
}

func NewMatcher(terms []string) *Matcher {
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		lowered = append(lowered, t)
	}
	return &Matcher{terms: lowered}
}

func (m *Matcher) Terms() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// Match returns the first watched term contained in the text, or empty
// string if none. Empty text never matches.
func (m *Matcher) Match(text string) string {
	if text == "" {
		return ""
	}
	t := strings.ToLower(text)
	for _, term := range m.terms {
		if strings.Contains(t, term) {
			return term
		}
	}
	return ""
}

func (m *Matcher) Matches(text string) bool {
	return m.Match(text) != ""
}
