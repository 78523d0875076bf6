package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ClosetPie107/KariBot/internal/constants"
	"github.com/ClosetPie107/KariBot/internal/domain"
	"github.com/ClosetPie107/KariBot/internal/locale"
	"github.com/ClosetPie107/KariBot/internal/ocr"
	"github.com/ClosetPie107/KariBot/internal/schema"

	"github.com/rs/zerolog"
)

// RecordService covers manual corrections, record lookup, and the
// administrative purges.
type RecordService struct {
	store   HistoryStore
	locales *locale.Store
	langs   LanguagePrefs
	logger  zerolog.Logger
}

func NewRecordService(store HistoryStore, locales *locale.Store, langs LanguagePrefs, logger zerolog.Logger) *RecordService {
	return &RecordService{store: store, locales: locales, langs: langs, logger: logger}
}

// CorrectLatest overwrites one category of the caller's newest record. The
// category is fuzzy-matched against the caller's localized labels and must
// clear the correction threshold.
func (s *RecordService) CorrectLatest(ctx context.Context, discordID int64, category, rawValue string) (string, error) {
	bundle := s.bundleFor(ctx, discordID)

	field, err := s.resolveCategory(bundle, category)
	if err != nil {
		return "", err
	}
	value, err := validateCorrection(field, rawValue)
	if err != nil {
		return "", err
	}

	id, err := s.store.LatestIDByDiscord(ctx, discordID)
	if err != nil {
		return "", err
	}
	if err := s.store.UpdateField(ctx, id, field.Name, value); err != nil {
		return "", fmt.Errorf("correct latest: %w", err)
	}

	s.logger.Info().
		Int64("discord_id", discordID).
		Int64("record_id", id).
		Str("field", field.Name).
		Msg("latest record corrected")
	return field.Name, nil
}

// AlterRecord overwrites one category of a player's first or last record on
// a given date.
func (s *RecordService) AlterRecord(ctx context.Context, discordID, guildID int64, playername, dateStr, which, category, rawValue string) (string, error) {
	bundle := s.bundleFor(ctx, discordID)

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return "", domain.NewValidationError(domain.CodeInvalidDate)
	}
	field, err := s.resolveCategory(bundle, category)
	if err != nil {
		return "", err
	}
	value, err := validateCorrection(field, rawValue)
	if err != nil {
		return "", err
	}

	rec, err := s.store.FirstOrLastOnDate(ctx, guildID, playername, date, which == "first")
	if err != nil {
		return "", err
	}
	if err := s.store.UpdateField(ctx, rec.ID, field.Name, value); err != nil {
		return "", fmt.Errorf("alter record: %w", err)
	}

	s.logger.Info().
		Int64("guild_id", guildID).
		Str("playername", playername).
		Int64("record_id", rec.ID).
		Str("field", field.Name).
		Msg("record altered")
	return field.Name, nil
}

// LatestRecord returns a player's newest record.
func (s *RecordService) LatestRecord(ctx context.Context, guildID int64, playername string) (*domain.PlayerRecord, error) {
	return s.store.Latest(ctx, guildID, playername)
}

// RecordOnDate returns a player's first or last record on one date.
func (s *RecordService) RecordOnDate(ctx context.Context, guildID int64, playername, dateStr, which string) (*domain.PlayerRecord, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, domain.NewValidationError(domain.CodeInvalidDate)
	}
	return s.store.FirstOrLastOnDate(ctx, guildID, playername, date, which == "first")
}

// PurgePlayer deletes a player's whole history.
func (s *RecordService) PurgePlayer(ctx context.Context, guildID int64, playername string) (int64, error) {
	return s.store.PurgeByPlayer(ctx, guildID, playername)
}

// PurgeRecord deletes one record.
func (s *RecordService) PurgeRecord(ctx context.Context, id int64) error {
	return s.store.PurgeByRecordID(ctx, id)
}

// SetLanguage stores a user's display language.
func (s *RecordService) SetLanguage(ctx context.Context, discordID int64, language string) error {
	for _, code := range s.locales.Languages() {
		if code == language {
			return s.langs.Set(ctx, discordID, language)
		}
	}
	return domain.NewValidationError(domain.CodeInvalidInput)
}

func (s *RecordService) bundleFor(ctx context.Context, discordID int64) *locale.Bundle {
	lang, err := s.langs.Get(ctx, discordID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("discord_id", discordID).Msg("language lookup failed, using default")
		lang = locale.DefaultLanguage
	}
	return s.locales.Bundle(lang)
}

func (s *RecordService) resolveCategory(bundle *locale.Bundle, input string) (schema.Field, error) {
	labels := ocr.NewLabels(bundle.Get)
	key, score, ok := ocr.ExtractOne(input, labels.Keys())
	if !ok || score < constants.CategoryMatchThreshold {
		return schema.Field{}, domain.NewValidationError(domain.CodeInvalidCategory)
	}
	name, _ := labels.Field(key)
	field, _ := schema.Lookup(name)
	return field, nil
}

// validateCorrection enforces the declared bound of a field on a manually
// supplied value.
func validateCorrection(field schema.Field, raw string) (domain.Value, error) {
	switch field.Kind {
	case schema.KindString:
		return domain.TextValue(raw), nil
	case schema.KindDate:
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return domain.Value{}, domain.NewValidationError(domain.CodeInvalidDate)
		}
		return domain.TextValue(raw), nil
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return domain.Value{}, domain.NewValidationError(domain.CodeInvalidInput)
	}
	if n < field.Min || n > field.Max {
		return domain.Value{}, domain.NewValidationError(domain.CodeInvalidNumber)
	}
	return domain.IntValue(n), nil
}
