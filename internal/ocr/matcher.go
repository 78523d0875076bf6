package ocr

import (
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// ratio is a character-level similarity in [0,100]: 2*matches/(len(a)+len(b)),
// scaled. Both inputs are expected to be normalized already.
func ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio() * 100
}

// normalizeLabel strips every whitespace run and lower-cases, so that
// "Monsters  Slain" and "monstersslain" compare equal.
func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// weightedScore blends content similarity with a length-parity bonus. Pure
// edit-distance ratios over-reward OCR garbage that is much shorter or longer
// than the candidate; the 30% length term penalizes that.
func weightedScore(base float64, candidate, key string) float64 {
	// Lengths count runes, matching the character-level ratio above.
	candLen := utf8.RuneCountInString(candidate)
	keyLen := utf8.RuneCountInString(key)
	maxLen := candLen
	if keyLen > maxLen {
		maxLen = keyLen
	}
	lenSimilarity := 1.0
	if maxLen > 0 {
		diff := candLen - keyLen
		if diff < 0 {
			diff = -diff
		}
		lenSimilarity = 1 - float64(diff)/float64(maxLen)
	}
	return 0.7*base/100 + 0.3*lenSimilarity
}

// Match finds the candidate label closest to rawLabel. Candidates must be
// normalized; rawLabel is normalized here. The strictly highest weighted
// score wins, ties keep the earlier candidate. ok is false only when the
// candidate set is empty.
func Match(rawLabel string, candidates []string) (best string, score float64, ok bool) {
	key := normalizeLabel(rawLabel)
	score = -1
	for _, candidate := range candidates {
		w := weightedScore(ratio(key, candidate), candidate, key)
		if w > score {
			best, score, ok = candidate, w, true
		}
	}
	return best, score, ok
}

// ExtractOne returns the candidate with the highest plain ratio against the
// query, for correction commands that enforce a ratio threshold at the
// caller.
func ExtractOne(query string, candidates []string) (best string, score float64, ok bool) {
	key := normalizeLabel(query)
	score = -1
	for _, candidate := range candidates {
		r := ratio(key, candidate)
		if r > score {
			best, score, ok = candidate, r, true
		}
	}
	return best, score, ok
}
