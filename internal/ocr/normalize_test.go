package ocr

import (
	"testing"

	"github.com/ClosetPie107/KariBot/internal/domain"
	"github.com/ClosetPie107/KariBot/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(t *testing.T, name string) schema.Field {
	t.Helper()
	f, ok := schema.Lookup(name)
	require.True(t, ok)
	return f
}

func TestNormalizeNumeric(t *testing.T) {
	monsters := field(t, "monstersslain")

	v := NormalizeValue(monsters, "1,234")
	n, ok := v.Int()
	require.True(t, ok)
	assert.Equal(t, int64(1234), n)

	// Trailing 1-2 digit group after a number is a misread glyph.
	v = NormalizeValue(monsters, "4521 2")
	n, _ = v.Int()
	assert.Equal(t, int64(4521), n)

	v = NormalizeValue(monsters, "4.521?")
	n, _ = v.Int()
	assert.Equal(t, int64(4521), n)

	// A lone number is untouched.
	v = NormalizeValue(monsters, "17")
	n, _ = v.Int()
	assert.Equal(t, int64(17), n)

	assert.True(t, NormalizeValue(monsters, "???").IsNull())
}

func TestNormalizeIdempotent(t *testing.T) {
	lvl := field(t, "level")
	v := NormalizeValue(lvl, "250")
	n, _ := v.Int()
	require.Equal(t, int64(250), n)

	again := NormalizeValue(lvl, v.Text())
	m, _ := again.Int()
	assert.Equal(t, n, m)
}

func TestNormalizePlaytime(t *testing.T) {
	pt := field(t, "playtime")

	n, _ := NormalizeValue(pt, "1005").Int()
	assert.Equal(t, int64(29), n, "one day five hours")

	n, _ = NormalizeValue(pt, "5").Int()
	assert.Equal(t, int64(5), n)

	n, _ = NormalizeValue(pt, "garbage").Int()
	assert.Equal(t, int64(0), n)
}

func TestNormalizeDateCreated(t *testing.T) {
	dc := field(t, "datecreated")

	v := NormalizeValue(dc, "20240131")
	assert.Equal(t, "2024-01-31", v.Text())

	assert.True(t, NormalizeValue(dc, "abc").IsNull())
	assert.True(t, NormalizeValue(dc, "20241301").IsNull(), "month 13 is not a date")
	assert.True(t, NormalizeValue(dc, "2024013").IsNull(), "seven digits")
}

func TestNormalizeOpaqueString(t *testing.T) {
	kingdom := field(t, "kingdom")
	v := NormalizeValue(kingdom, "West March 3")
	assert.Equal(t, domain.ValueText, v.Kind())
	assert.Equal(t, "West March 3", v.Text())
}
