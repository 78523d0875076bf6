package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ClosetPie107/KariBot/internal/locale"

	"github.com/rs/zerolog"
)

// LanguageRepository stores each discord user's preferred language.
type LanguageRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewLanguageRepository(db *sql.DB, logger zerolog.Logger) *LanguageRepository {
	return &LanguageRepository{db: db, logger: logger}
}

// Get returns the stored preference, defaulting to English.
func (r *LanguageRepository) Get(ctx context.Context, discordID int64) (string, error) {
	var language string
	err := r.db.QueryRowContext(ctx,
		`SELECT language FROM langprefs WHERE discordid = ?`, discordID).Scan(&language)
	if err == sql.ErrNoRows {
		return locale.DefaultLanguage, nil
	}
	if err != nil {
		return "", fmt.Errorf("get language for %d: %w", discordID, err)
	}
	return language, nil
}

// Set upserts the preference.
func (r *LanguageRepository) Set(ctx context.Context, discordID int64, language string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO langprefs (discordid, language) VALUES (?, ?)`, discordID, language)
	if err != nil {
		return fmt.Errorf("set language for %d: %w", discordID, err)
	}
	r.logger.Debug().Int64("discord_id", discordID).Str("language", language).Msg("language preference updated")
	return nil
}
