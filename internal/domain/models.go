package domain

import (
	"strconv"
	"strings"
	"time"
)

// ValueKind discriminates the payload of a Value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueInt
	ValueText
)

// Value is a single stat value as read from OCR output or from storage.
// Numeric fields normally hold ints; text survives as a fallback when a
// noisy value could not be parsed.
type Value struct {
	kind ValueKind
	i    int64
	s    string
}

func NullValue() Value         { return Value{} }
func IntValue(v int64) Value   { return Value{kind: ValueInt, i: v} }
func TextValue(s string) Value { return Value{kind: ValueText, s: s} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == ValueNull }

// Int returns the numeric payload. Text that happens to be a clean integer
// parses as well, so garbage-fallback values stored in numeric columns still
// participate in difference arithmetic.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case ValueInt:
		return v.i, true
	case ValueText:
		n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func (v Value) Text() string {
	switch v.kind {
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueText:
		return v.s
	default:
		return ""
	}
}

// IsZero reports whether the value is falsy for merge purposes: null, zero,
// or empty text.
func (v Value) IsZero() bool {
	switch v.kind {
	case ValueInt:
		return v.i == 0
	case ValueText:
		return v.s == ""
	default:
		return true
	}
}

// StatSnapshot is the finalized extraction result of one ingestion: stat
// values keyed by field name plus the identity of the player it belongs to.
type StatSnapshot struct {
	GuildID    int64
	DiscordID  int64
	PlayerName string
	Stats      map[string]Value
}

// PlayerRecord is one persisted playerstats row.
type PlayerRecord struct {
	ID         int64
	GuildID    int64
	DiscordID  int64
	PlayerName string
	Timestamp  time.Time
	Stats      map[string]Value
}

// Reconciliation result labels, stable codes consumed by localized display.
const (
	ResultInserted = "recordinserted"
	ResultMerged   = "recordmerged"
	ResultUpdated  = "recordupdated"
)

// IngestResult is what one ingestion produces: the reconciliation outcome,
// the finalized record, and the per-field difference against the previous
// record (absent for merges).
type IngestResult struct {
	Result      string
	Record      *PlayerRecord
	Differences map[string]int64
}

// Scope selects which players a query ranges over.
type Scope struct {
	GuildID    int64
	AllServers bool
	Kingdom    string
}

// ScoreEntry is one row of a current-standing scoreboard.
type ScoreEntry struct {
	PlayerName string
	Value      int64
}

// ChangeEntry is one row of a windowed-change scoreboard. Before and after
// are the category values of the player's earliest and latest records inside
// the window; missing or non-numeric values count as zero.
type ChangeEntry struct {
	PlayerName string
	GuildID    int64
	Before     int64
	After      int64
	Difference int64
}
