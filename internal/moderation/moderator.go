// Package moderation provides the offensive-content predicate applied
// to chat messages before broadcast.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator answers "does this text contain a censored word". Matching
// runs over a normalized view of the input: lowercased, common leet
// substitutions folded back, punctuation and spacing stripped, so
// "B.4.d word" still hits a "bad word" pattern.
type Moderator struct {
	matcher *goahocorasick.Machine
}

func New(censoredWords []string) (*Moderator, error) {
	if len(censoredWords) == 0 {
		return &Moderator{}, nil
	}
	patterns := make([][]rune, len(censoredWords))
	for i, w := range censoredWords {
		patterns[i] = fold([]rune(w))
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m}, nil
}

// IsOffensive reports whether any censored pattern occurs in text.
func (m *Moderator) IsOffensive(text string) bool {
	if m.matcher == nil {
		return false
	}
	norm := fold([]rune(text))
	if len(norm) == 0 {
		return false
	}
	return len(m.matcher.MultiPatternSearch(norm, true)) > 0
}

func fold(in []rune) []rune {
	out := make([]rune, 0, len(in))
	for _, r := range in {
		r = unfoldLeet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func unfoldLeet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
