package hazards

import "strings"

// ExtractKeywords counts non-overlapping case-insensitive occurrences of each
// canonical vocabulary term in text. Zero-count terms are omitted, so an
// absent key means zero.
func ExtractKeywords(text string) map[string]int {
	textLower := strings.ToLower(text)
	freq := make(map[string]int)
	for _, keyword := range Keywords {
		if count := strings.Count(textLower, keyword); count > 0 {
			freq[keyword] = count
		}
	}
	return freq
}

// SummarizeKeywords folds per-post keyword frequencies into a single batch
// total. Order-independent; an empty batch yields an empty map.
func SummarizeKeywords(batch []map[string]int) map[string]int {
	summary := make(map[string]int)
	for _, freq := range batch {
		for keyword, count := range freq {
			summary[keyword] += count
		}
	}
	return summary
}
