package constants

import "time"

const (
	ImageFetchTimeout = 10 * time.Second
	OCRTimeout        = 30 * time.Second
	IngestTimeout     = 60 * time.Second
	DatabaseTimeout   = 5 * time.Second
	RequestTimeout    = 90 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// MergeWindow is how recent the newest record must be for a fresh
	// snapshot to be merged into it instead of updating or inserting.
	MergeWindow = 1 * time.Minute

	// CategoryMatchThreshold is the minimum fuzzy ratio for correction
	// commands to accept a category name.
	CategoryMatchThreshold = 90

	ScoreboardDefaultLimit = 10
	ScoreboardMaxLimit     = 25
)
