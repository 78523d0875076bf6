package service

import (
	"context"
	"time"

	"github.com/ClosetPie107/KariBot/internal/domain"
)

// HistoryStore is the persistence surface the engines need. The production
// implementation is repository.StatsRepository; tests use an in-memory fake.
type HistoryStore interface {
	MostRecent(ctx context.Context, guildID int64, playername string, limit int) ([]domain.PlayerRecord, error)
	Get(ctx context.Context, id int64) (*domain.PlayerRecord, error)
	Latest(ctx context.Context, guildID int64, playername string) (*domain.PlayerRecord, error)
	Insert(ctx context.Context, rec *domain.PlayerRecord) (int64, error)
	UpdateFields(ctx context.Context, id int64, stats map[string]domain.Value) error
	UpdateField(ctx context.Context, id int64, field string, v domain.Value) error
	LatestPerPlayer(ctx context.Context, scope domain.Scope) ([]domain.PlayerRecord, error)
	SelectInWindow(ctx context.Context, scope domain.Scope, start, endExclusive time.Time) ([]domain.PlayerRecord, error)
	LatestIDByDiscord(ctx context.Context, discordID int64) (int64, error)
	FirstOrLastOnDate(ctx context.Context, guildID int64, playername string, date time.Time, pickFirst bool) (*domain.PlayerRecord, error)
	PurgeByPlayer(ctx context.Context, guildID int64, playername string) (int64, error)
	PurgeByRecordID(ctx context.Context, id int64) error
}

// LanguagePrefs is the per-user language preference surface.
type LanguagePrefs interface {
	Get(ctx context.Context, discordID int64) (string, error)
	Set(ctx context.Context, discordID int64, language string) error
}
