package hazards

import (
	"fmt"
	"strings"
)

// BuildQuery turns an optional hazard/location filter pair into a recent-search
// query string. A known hazard expands to its quoted synonym disjunction; an
// unknown or empty hazard falls back to every phrase in the vocabulary (broad
// recall). The output is deterministic for identical inputs because the rate
// limiter keys on exact string equality.
func BuildQuery(hazard, location string) string {
	var queryParts []string

	if cat, ok := FindCategory(hazard); ok {
		queryParts = append(queryParts, quotedDisjunction(cat.Synonyms))
	} else {
		var all []string
		for _, c := range Categories {
			all = append(all, c.Synonyms...)
		}
		queryParts = append(queryParts, quotedDisjunction(all))
	}

	if location != "" {
		queryParts = append(queryParts, fmt.Sprintf("(%q)", location))
	}

	// Always enforce language and exclude retweets.
	queryParts = append(queryParts, "lang:en -is:retweet")

	return strings.Join(queryParts, " ")
}

func quotedDisjunction(phrases []string) string {
	quoted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		quoted = append(quoted, fmt.Sprintf("%q", p))
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}
