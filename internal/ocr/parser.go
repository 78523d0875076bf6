package ocr

import (
	"regexp"

	"github.com/ClosetPie107/KariBot/internal/domain"
	"github.com/ClosetPie107/KariBot/internal/schema"
)

var columnGap = regexp.MustCompile(`\s{2,}`)

// Labels maps localized, normalized stat labels back to canonical field
// names. Key order follows the schema so that matching ties resolve
// deterministically.
type Labels struct {
	keys   []string
	fields map[string]string
}

// NewLabels builds the label set, localizing each field name through
// localize (which falls back to the field name itself).
func NewLabels(localize func(field string) string) *Labels {
	l := &Labels{fields: make(map[string]string, len(schema.Fields))}
	for _, f := range schema.Fields {
		key := normalizeLabel(localize(f.Name))
		if _, seen := l.fields[key]; seen {
			continue
		}
		l.keys = append(l.keys, key)
		l.fields[key] = f.Name
	}
	return l
}

// Keys returns the normalized localized labels in schema order.
func (l *Labels) Keys() []string { return l.keys }

// Field resolves a normalized label back to its canonical field name.
func (l *Labels) Field(key string) (string, bool) {
	f, ok := l.fields[key]
	return f, ok
}

// ParseResult is the outcome of one OCR pass: extracted values and the match
// score each field was accepted with.
type ParseResult struct {
	Stats   map[string]domain.Value
	Visited map[string]float64
}

// Parse walks raw OCR lines, splitting each at the first run of two or more
// whitespace characters into a label and a value. Labels fuzzy-match against
// the localized field set; when a field shows up on several lines the
// highest-scoring line wins. Lines that do not split are OCR noise and are
// skipped.
func Parse(lines []string, labels *Labels) ParseResult {
	res := ParseResult{
		Stats:   make(map[string]domain.Value),
		Visited: make(map[string]float64),
	}

	for _, line := range lines {
		loc := columnGap.FindStringIndex(line)
		if loc == nil {
			continue
		}
		rawLabel, rawValue := line[:loc[0]], line[loc[1]:]

		key, score, ok := Match(rawLabel, labels.keys)
		if !ok {
			continue
		}
		field := labels.fields[key]

		if prev, seen := res.Visited[field]; seen && prev > score {
			continue
		}

		f, _ := schema.Lookup(field)
		res.Stats[field] = NormalizeValue(f, rawValue)
		res.Visited[field] = score
	}

	return res
}

// MergeSecondPass folds a second image's parse into the first. A field from
// the second pass is adopted only when the first pass never saw it or the
// second pass matched it with a strictly higher score.
func MergeSecondPass(first, second ParseResult) ParseResult {
	for field, value := range second.Stats {
		score, seenSecond := second.Visited[field]
		if !seenSecond {
			continue
		}
		if prev, seenFirst := first.Visited[field]; !seenFirst || score > prev {
			first.Stats[field] = value
			first.Visited[field] = score
		}
	}
	return first
}
