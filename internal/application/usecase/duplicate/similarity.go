// Package duplicate contains the similarity-gated duplicate detector for
// candidate transactions.
package duplicate

import (
	"sort"
	"strings"
	"time"

	"github.com/smart-accounting/backend/internal/domain/entity"
	"github.com/smart-accounting/backend/internal/domain/valueobject"
)

// pairSimilarity scores a candidate against one committed row. Two hard
// gates come first: amounts must be exactly equal and the dates must fall
// on the same calendar day, otherwise the pair scores 0. Only then are the
// description and category texts compared and blended.
func pairSimilarity(
	candidate entity.CandidateTransaction,
	candidateDate time.Time,
	committed *entity.Transaction,
	cfg valueobject.DetectionConfig,
) float64 {
	if !candidate.Amount.Equal(committed.Amount) {
		return 0
	}

	if !sameDay(candidateDate, committed.Date) {
		return 0
	}

	descriptionSimilarity := textSimilarity(candidate.Note, committed.Description)
	categorySimilarity := textSimilarity(candidate.CategoryName, committed.CategoryName)

	return descriptionSimilarity*cfg.DescriptionWeight + categorySimilarity*cfg.CategoryWeight
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// textSimilarity is a cheap string comparison: exact match scores 1,
// containment scores 0.8, anything else falls back to character-set
// overlap (Jaccard). Two empty strings are identical; one empty string
// against a non-empty one scores 0.
func textSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	s1 := strings.ToLower(strings.TrimSpace(a))
	s2 := strings.ToLower(strings.TrimSpace(b))

	if s1 == s2 {
		return 1
	}

	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		return 0.8
	}

	set1 := charSet(s1)
	set2 := charSet(s2)

	intersection := 0
	union := len(set2)
	for r := range set1 {
		if _, ok := set2[r]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func charSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// rankMatches sorts by similarity descending and drops zero-score rows.
func rankMatches(matches []valueobject.MatchedTransaction) []valueobject.MatchedTransaction {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	significant := matches[:0]
	for _, match := range matches {
		if match.Similarity > 0 {
			significant = append(significant, match)
		}
	}
	return significant
}

// describeMatch synthesizes a human-readable reason for the best match.
// The amount and date clauses are unconditional: a pair only reaches this
// point after passing both hard gates.
func describeMatch(candidate entity.CandidateTransaction, best valueobject.MatchedTransaction) string {
	reasons := []string{"amount identical", "same date"}

	if candidate.Note != "" && best.Description != "" {
		note := strings.ToLower(strings.TrimSpace(candidate.Note))
		description := strings.ToLower(strings.TrimSpace(best.Description))
		switch {
		case note == description:
			reasons = append(reasons, "description identical")
		case strings.Contains(note, description) || strings.Contains(description, note):
			reasons = append(reasons, "description highly similar")
		default:
			reasons = append(reasons, "description partially matching")
		}
	}

	if candidate.CategoryName != "" && best.CategoryName != "" &&
		strings.EqualFold(candidate.CategoryName, best.CategoryName) {
		reasons = append(reasons, "category identical")
	}

	return strings.Join(reasons, ", ")
}
