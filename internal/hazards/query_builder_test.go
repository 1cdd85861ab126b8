package hazards

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery_KnownHazardWithLocation(t *testing.T) {
	query := BuildQuery("flood", "Chennai")

	want := `("flood" OR "flooding" OR "flooded" OR "water level" OR "inundation") ("Chennai") lang:en -is:retweet`
	assert.Equal(t, want, query)
}

func TestBuildQuery_ClauseOrder(t *testing.T) {
	query := BuildQuery("tsunami", "Mumbai")

	synIdx := strings.Index(query, `"tsunami"`)
	locIdx := strings.Index(query, `("Mumbai")`)
	langIdx := strings.Index(query, "lang:en -is:retweet")

	require.NotEqual(t, -1, synIdx)
	require.NotEqual(t, -1, locIdx)
	require.NotEqual(t, -1, langIdx)
	assert.Less(t, synIdx, locIdx)
	assert.Less(t, locIdx, langIdx)
	assert.True(t, strings.HasSuffix(query, "lang:en -is:retweet"))
}

func TestBuildQuery_UnknownHazardFallsBackToBroadMode(t *testing.T) {
	query := BuildQuery("volcano", "")

	// Unknown hazard must not error; it widens to every registered phrase.
	for _, cat := range Categories {
		for _, syn := range cat.Synonyms {
			assert.Contains(t, query, `"`+syn+`"`)
		}
	}
	assert.True(t, strings.HasSuffix(query, "lang:en -is:retweet"))
}

func TestBuildQuery_EmptyFiltersMatchBroadMode(t *testing.T) {
	assert.Equal(t, BuildQuery("volcano", ""), BuildQuery("", ""))
}

func TestBuildQuery_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, BuildQuery("cyclone", "Visakhapatnam"), BuildQuery("cyclone", "Visakhapatnam"))
		assert.Equal(t, BuildQuery("", ""), BuildQuery("", ""))
	}
}
