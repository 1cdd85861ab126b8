package hazards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords_SingleMatch(t *testing.T) {
	freq := ExtractKeywords("storm surge warning issued for the coast")
	assert.Equal(t, map[string]int{"storm surge": 1}, freq)
}

func TestExtractKeywords_CaseInsensitiveAndCounted(t *testing.T) {
	freq := ExtractKeywords("Cyclone alert: CYCLONE Remal nearing landfall, flood risk high")
	assert.Equal(t, 2, freq["cyclone"])
	assert.Equal(t, 1, freq["flood"])
}

func TestExtractKeywords_SparseResult(t *testing.T) {
	freq := ExtractKeywords("sunny day at the beach")
	assert.Empty(t, freq)
}

func TestExtractKeywords_OnlyVocabularyKeys(t *testing.T) {
	vocab := make(map[string]bool, len(Keywords))
	for _, k := range Keywords {
		vocab[k] = true
	}

	freq := ExtractKeywords("tsunami tsunami flood storm surge landslide unrelated words heavy rain")
	for key := range freq {
		assert.True(t, vocab[key], "unexpected key %q", key)
	}
}

func TestSummarizeKeywords_Empty(t *testing.T) {
	assert.Empty(t, SummarizeKeywords(nil))
	assert.Empty(t, SummarizeKeywords([]map[string]int{}))
}

func TestSummarizeKeywords_SingletonIsIdentity(t *testing.T) {
	m := map[string]int{"flood": 2, "tsunami": 1}
	assert.Equal(t, m, SummarizeKeywords([]map[string]int{m}))
}

func TestSummarizeKeywords_OrderIndependent(t *testing.T) {
	a := map[string]int{"flood": 2}
	b := map[string]int{"flood": 1, "cyclone": 3}
	c := map[string]int{"tsunami": 1}

	want := map[string]int{"flood": 3, "cyclone": 3, "tsunami": 1}
	assert.Equal(t, want, SummarizeKeywords([]map[string]int{a, b, c}))
	assert.Equal(t, want, SummarizeKeywords([]map[string]int{c, b, a}))
	assert.Equal(t, want, SummarizeKeywords([]map[string]int{b, a, c}))
}
