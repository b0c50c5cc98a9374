// Package moderation redacts known scam and phishing patterns from
// outgoing content before it reaches the submission pipeline. Once a
// message is on-chain it cannot be unsent, so the pass runs synchronously
// at send time.
package moderation

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// Review is the result of one moderation pass over a message body.
type Review struct {
	Clean string // content with flagged spans replaced
	Hits  int    // number of flagged spans
	Lang  string // ISO 639-1 code of the detected language, may be empty
}

// NewModerator builds the Aho-Corasick automaton over the normalized form
// of the blocked terms.
func NewModerator(blockedTerms []string, replacement rune) (Moderator, error) {
	patterns := make([][]rune, len(blockedTerms))
	for i, term := range blockedTerms {
		patterns[i] = normalize([]rune(term), nil)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: m, replacement: replacement}, nil
}

// Review redacts blocked terms and tags the content language. Matching is
// case- and separator-insensitive ("s-e-e-d p.h.r.a.s.e" still matches)
// while redaction replaces the original characters in place, so spacing
// survives.
func (m *Moderator) Review(content string) Review {
	info := whatlanggo.Detect(content)
	review := Review{Clean: content, Lang: info.Lang.Iso6391()}

	origRunes := []rune(content)
	origIdx := make([]int, 0, len(origRunes))
	normalized := normalize(origRunes, &origIdx)
	if len(normalized) == 0 {
		return review
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return review
	}

	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			if isSeparator(origRunes[i]) {
				continue
			}
			origRunes[i] = m.replacement
		}
		review.Hits++
	}

	review.Clean = string(origRunes)
	return review
}

// normalize lower-cases and strips separator noise. When idx is non-nil it
// records, for each kept rune, its position in the original slice.
func normalize(in []rune, idx *[]int) []rune {
	out := make([]rune, 0, len(in))
	for i, r := range in {
		if isSeparator(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
		if idx != nil {
			*idx = append(*idx, i)
		}
	}
	return out
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}
