package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/ClosetPie107/KariBot/internal/domain"
	"github.com/ClosetPie107/KariBot/internal/schema"

	"github.com/rs/zerolog"
)

// ScoreboardService answers ranking queries over the whole history.
type ScoreboardService struct {
	store  HistoryStore
	logger zerolog.Logger
}

func NewScoreboardService(store HistoryStore, logger zerolog.Logger) *ScoreboardService {
	return &ScoreboardService{store: store, logger: logger}
}

// Scoreboard ranks each player's latest value for a category. Players whose
// latest value is null or unreadable are excluded.
func (s *ScoreboardService) Scoreboard(ctx context.Context, scope domain.Scope, category string, ascending bool, limit int) ([]domain.ScoreEntry, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}

	records, err := s.store.LatestPerPlayer(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("latest per player: %w", err)
	}

	var entries []domain.ScoreEntry
	for _, rec := range records {
		v := rec.Stats[category]
		if v.IsNull() {
			continue
		}
		n, ok := v.Int()
		if !ok {
			continue
		}
		entries = append(entries, domain.ScoreEntry{PlayerName: rec.PlayerName, Value: n})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if ascending {
			return entries[i].Value < entries[j].Value
		}
		return entries[i].Value > entries[j].Value
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Changes ranks players by how much a category moved inside a time window:
// the difference between each player's latest and earliest record in the
// window. Non-numeric endpoints count as zero so the ranking stays total
// even with partial OCR garbage in the history.
func (s *ScoreboardService) Changes(ctx context.Context, scope domain.Scope, category string, window domain.TimeWindow, ascending bool, limit int) ([]domain.ChangeEntry, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}
	// Windows arrive validated from the HTTP layer, but direct callers get
	// the same check.
	if err := window.Validate(); err != nil {
		return nil, err
	}

	start, end := window.Range()
	records, err := s.store.SelectInWindow(ctx, scope, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("select in window: %w", err)
	}

	type playerKey struct {
		name    string
		guildID int64
	}
	type endpoints struct {
		earliest domain.PlayerRecord
		latest   domain.PlayerRecord
	}

	byPlayer := make(map[playerKey]*endpoints)
	var order []playerKey
	for _, rec := range records {
		key := playerKey{name: rec.PlayerName}
		if !scope.AllServers {
			key.guildID = rec.GuildID
		}
		ep, ok := byPlayer[key]
		if !ok {
			byPlayer[key] = &endpoints{earliest: rec, latest: rec}
			order = append(order, key)
			continue
		}
		if rec.ID < ep.earliest.ID {
			ep.earliest = rec
		}
		if rec.ID > ep.latest.ID {
			ep.latest = rec
		}
	}

	entries := make([]domain.ChangeEntry, 0, len(order))
	for _, key := range order {
		ep := byPlayer[key]
		before := numericOrZero(ep.earliest.Stats[category])
		after := numericOrZero(ep.latest.Stats[category])
		entries = append(entries, domain.ChangeEntry{
			PlayerName: ep.latest.PlayerName,
			GuildID:    ep.latest.GuildID,
			Before:     before,
			After:      after,
			Difference: after - before,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if ascending {
			return entries[i].Difference < entries[j].Difference
		}
		return entries[i].Difference > entries[j].Difference
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func numericOrZero(v domain.Value) int64 {
	n, ok := v.Int()
	if !ok {
		return 0
	}
	return n
}

func checkCategory(category string) error {
	if _, ok := schema.Lookup(category); !ok {
		return domain.NewValidationError(domain.CodeInvalidCategory)
	}
	return nil
}
