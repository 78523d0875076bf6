package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityLabels() *Labels {
	return NewLabels(func(field string) string { return field })
}

func TestParseSplitsOnWideGap(t *testing.T) {
	labels := identityLabels()

	res := Parse([]string{
		"monstersslain    1,234",
		"single space means noise",
		"bossesslain\t\t56",
		"",
	}, labels)

	n, _ := res.Stats["monstersslain"].Int()
	assert.Equal(t, int64(1234), n)

	n, _ = res.Stats["bossesslain"].Int()
	assert.Equal(t, int64(56), n)

	assert.Len(t, res.Stats, 2, "unsplittable lines are skipped")
}

func TestParseKeepsHigherScoredDuplicate(t *testing.T) {
	labels := identityLabels()

	res := Parse([]string{
		"monstersslain    100",
		"mnstrsslain      200",
	}, labels)

	n, _ := res.Stats["monstersslain"].Int()
	assert.Equal(t, int64(100), n, "clean label outscores the garbled one")

	// Order must not matter.
	res = Parse([]string{
		"mnstrsslain      200",
		"monstersslain    100",
	}, labels)
	n, _ = res.Stats["monstersslain"].Int()
	assert.Equal(t, int64(100), n)
}

func TestMergeSecondPass(t *testing.T) {
	labels := identityLabels()

	first := Parse([]string{
		"monstersslain    100",
		"fishcaught       7",
	}, labels)
	second := Parse([]string{
		"mnstrsslain      999", // worse read of the same field
		"bossesslain      3",   // unseen in the first pass
	}, labels)

	merged := MergeSecondPass(first, second)

	n, _ := merged.Stats["monstersslain"].Int()
	assert.Equal(t, int64(100), n, "lower-scored second read is ignored")

	n, _ = merged.Stats["bossesslain"].Int()
	assert.Equal(t, int64(3), n, "fields new in the second pass are adopted")

	n, _ = merged.Stats["fishcaught"].Int()
	assert.Equal(t, int64(7), n)
}

func TestParseLocalizedLabels(t *testing.T) {
	labels := NewLabels(func(field string) string {
		if field == "monstersslain" {
			return "Monsters Slain"
		}
		return field
	})

	res := Parse([]string{"Monsters Slain    42"}, labels)

	n, ok := res.Stats["monstersslain"].Int()
	require.True(t, ok)
	assert.Equal(t, int64(42), n)
}
