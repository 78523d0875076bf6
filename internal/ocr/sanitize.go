package ocr

import "github.com/ClosetPie107/KariBot/internal/domain"

// Persistence range for every numeric field.
const (
	SanitizeMin = 0
	SanitizeMax = 9_999_999_999
)

// Sanitize clamps numeric values into the safe persistence range. Text
// passes through unchanged; null values are dropped so the field is simply
// omitted from the snapshot.
func Sanitize(stats map[string]domain.Value) map[string]domain.Value {
	out := make(map[string]domain.Value, len(stats))
	for field, v := range stats {
		switch v.Kind() {
		case domain.ValueInt:
			n, _ := v.Int()
			if n < SanitizeMin {
				n = SanitizeMin
			} else if n > SanitizeMax {
				n = SanitizeMax
			}
			out[field] = domain.IntValue(n)
		case domain.ValueText:
			out[field] = v
		}
	}
	return out
}
