package ocr

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ClosetPie107/KariBot/internal/domain"
	"github.com/ClosetPie107/KariBot/internal/schema"
)

var nonDigitRuns = regexp.MustCompile(`\D+`)

// NormalizeValue turns a raw OCR value into a typed value for the given
// field. Opaque string fields pass through untouched; dates must read as
// YYYYMMDD; playtime decodes concatenated days+hours; every other field is
// reduced to its digits.
func NormalizeValue(field schema.Field, raw string) domain.Value {
	if field.Kind == schema.KindString {
		return domain.TextValue(raw)
	}

	value := raw
	if field.Name != "playtime" && field.Name != "datecreated" {
		value = stripTrailingArtifact(nonDigitRuns.ReplaceAllString(value, " "))
	}
	digits := keepDigits(value)

	switch field.Name {
	case "playtime":
		return domain.IntValue(convertToHours(digits))
	case "datecreated":
		return formatDateString(digits)
	}

	if digits == "" {
		return domain.NullValue()
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			// Absurdly long digit runs saturate; the sanitizer clamps later.
			return domain.IntValue(math.MaxInt64)
		}
		return domain.TextValue(raw)
	}
	return domain.IntValue(n)
}

// stripTrailingArtifact removes a spurious 1-2 digit group that follows
// another digit group, a misread question-mark glyph appended after the real
// number.
func stripTrailingArtifact(value string) string {
	parts := strings.Fields(value)
	if len(parts) > 1 {
		last := parts[len(parts)-1]
		if len(last) >= 1 && len(last) <= 2 {
			return strings.Join(parts[:len(parts)-1], " ")
		}
	}
	return value
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// convertToHours reads a digit string as concatenated days+hours: up to two
// digits is hours only, otherwise the last two digits are hours and the rest
// is days. Malformed input counts as zero.
func convertToHours(digits string) int64 {
	if digits == "" {
		return 0
	}
	if len(digits) <= 2 {
		hours, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0
		}
		return hours
	}
	days, err := strconv.ParseInt(digits[:len(digits)-2], 10, 64)
	if err != nil {
		return 0
	}
	hours, err := strconv.ParseInt(digits[len(digits)-2:], 10, 64)
	if err != nil {
		return 0
	}
	return days*24 + hours
}

// formatDateString reformats an 8-digit YYYYMMDD string to YYYY-MM-DD, null
// on anything that is not a real date.
func formatDateString(digits string) domain.Value {
	t, err := time.Parse("20060102", digits)
	if err != nil {
		return domain.NullValue()
	}
	return domain.TextValue(t.Format("2006-01-02"))
}
