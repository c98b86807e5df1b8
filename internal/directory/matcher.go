package directory

import (
	"sort"
	"strings"
	"unicode"
)

const (
	minConfidence  = 0.3
	maxSuggestions = 5
)

// suggest finds drivers with names similar to name, best match first.
func suggest(name string, drivers []Driver) []Suggestion {
	query := normalizeName(name)
	if query == "" {
		return nil
	}

	var suggestions []Suggestion
	for _, d := range drivers {
		candidate := normalizeName(d.Name)
		score := (stringSimilarity(query, candidate) + tokenSimilarity(query, candidate)) / 2
		if score > minConfidence {
			suggestions = append(suggestions, Suggestion{
				Driver:     d,
				Confidence: score,
				Reasons:    matchReasons(query, candidate),
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

// normalizeName lowercases name and keeps letters, digits and single spaces.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// stringSimilarity is 1 minus the edit distance relative to the longer string.
func stringSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0.0
	}
	r1, r2 := []rune(s1), []rune(s2)
	return 1.0 - float64(levenshtein(r1, r2))/float64(max(len(r1), len(r2)))
}

// tokenSimilarity is the share of name parts that closely match a part of
// the other name.
func tokenSimilarity(s1, s2 string) float64 {
	tokens1, tokens2 := strings.Fields(s1), strings.Fields(s2)
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0
	}

	var matches int
	for _, t1 := range tokens1 {
		for _, t2 := range tokens2 {
			if stringSimilarity(t1, t2) > 0.8 {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(max(len(tokens1), len(tokens2)))
}

func levenshtein(s1, s2 []rune) int {
	prev := make([]int, len(s2)+1)
	cur := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		cur[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(s2)]
}

func matchReasons(query, candidate string) []string {
	var reasons []string
	switch {
	case query == candidate:
		reasons = append(reasons, "Exact name match")
	case stringSimilarity(query, candidate) > 0.8:
		reasons = append(reasons, "Very similar name")
	}
	if tokenSimilarity(query, candidate) > 0.5 {
		reasons = append(reasons, "Matching name components")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Partial name similarity")
	}
	return reasons
}
