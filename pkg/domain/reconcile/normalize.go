// Package reconcile pairs directory employees with roster rows and merges
// their fields.
package reconcile

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips diacritics, lowercases, replaces every run of
// non-alphanumeric characters with a single space, and trims.
func Normalize(text string) string {
	stripped, _, err := transform.String(diacriticStripper(), text)
	if err != nil {
		stripped = text
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSpace := false
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Tokens returns the normalized tokens of text
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

// BuildKey returns the sorted tokens of the normalized text joined by a
// space, so that token order does not matter.
func BuildKey(text string) string {
	tokens := Tokens(text)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// CandidateKeys returns the key of the name as given and, for "Last, First"
// input, the key of the flipped order. Empty input yields no keys.
func CandidateKeys(raw string) []string {
	var keys []string
	add := func(k string) {
		if k == "" {
			return
		}
		for _, existing := range keys {
			if existing == k {
				return
			}
		}
		keys = append(keys, k)
	}

	add(BuildKey(raw))
	if last, first, ok := strings.Cut(raw, ","); ok {
		add(BuildKey(strings.TrimSpace(first) + " " + strings.TrimSpace(last)))
	}
	return keys
}

func diacriticStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
