package engine

import (
	"strings"
	"unicode"
)

// normalized is a recommendation prepared for comparison.
type normalized struct {
	text  string
	words map[string]struct{}
}

func normalize(s string) normalized {
	text := strings.ToLower(strings.TrimSpace(s))
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		words[w] = struct{}{}
	}
	return normalized{text: text, words: words}
}

// subsetOf reports whether every word of n also appears in other.
func (n normalized) subsetOf(other normalized) bool {
	if len(n.words) == 0 {
		return false
	}
	for w := range n.words {
		if _, ok := other.words[w]; !ok {
			return false
		}
	}
	return true
}

func (n normalized) related(other normalized) bool {
	return n.text == other.text ||
		strings.Contains(n.text, other.text) ||
		strings.Contains(other.text, n.text) ||
		n.subsetOf(other) ||
		other.subsetOf(n)
}

// supersedes reports whether n is strictly more specific than other.
func (n normalized) supersedes(other normalized) bool {
	if len(n.text) <= len(other.text) {
		return false
	}
	return strings.Contains(n.text, other.text) || other.subsetOf(n)
}

// Dedupe collapses overlapping recommendations. A candidate related to a kept
// entry either replaces it in place, when strictly more specific, or is
// dropped. Unrelated candidates are appended. Blank candidates are skipped.
func Dedupe(candidates []string) []string {
	kept := make([]string, 0, len(candidates))
	keptNorm := make([]normalized, 0, len(candidates))

	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		n := normalize(c)

		related := false
		for i, k := range keptNorm {
			if !n.related(k) {
				continue
			}
			related = true
			if n.supersedes(k) {
				kept[i] = c
				keptNorm[i] = n
			}
			break
		}
		if !related {
			kept = append(kept, c)
			keptNorm = append(keptNorm, n)
		}
	}
	return kept
}
