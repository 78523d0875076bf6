package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ClosetPie107/KariBot/internal/domain"
)

// fakeStore is an in-memory HistoryStore for engine tests.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []domain.PlayerRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (s *fakeStore) add(rec domain.PlayerRecord) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	if rec.Stats == nil {
		rec.Stats = map[string]domain.Value{}
	}
	s.rows = append(s.rows, rec)
	return rec.ID
}

func (s *fakeStore) MostRecent(_ context.Context, guildID int64, playername string, limit int) ([]domain.PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PlayerRecord
	for _, r := range s.rows {
		if r.GuildID == guildID && r.PlayerName == playername {
			out = append(out, cloneRecord(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) Get(_ context.Context, id int64) (*domain.PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.ID == id {
			c := cloneRecord(r)
			return &c, nil
		}
	}
	return nil, domain.ErrNoRecord
}

func (s *fakeStore) Latest(ctx context.Context, guildID int64, playername string) (*domain.PlayerRecord, error) {
	records, err := s.MostRecent(ctx, guildID, playername, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNoRecord
	}
	return &records[0], nil
}

func (s *fakeStore) Insert(_ context.Context, rec *domain.PlayerRecord) (int64, error) {
	return s.add(*rec), nil
}

func (s *fakeStore) UpdateFields(_ context.Context, id int64, stats map[string]domain.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			for k, v := range stats {
				s.rows[i].Stats[k] = v
			}
			return nil
		}
	}
	return domain.ErrNoRecord
}

func (s *fakeStore) UpdateField(ctx context.Context, id int64, field string, v domain.Value) error {
	return s.UpdateFields(ctx, id, map[string]domain.Value{field: v})
}

func (s *fakeStore) LatestPerPlayer(_ context.Context, scope domain.Scope) ([]domain.PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := make(map[string]domain.PlayerRecord)
	for _, r := range s.rows {
		if !scope.AllServers && r.GuildID != scope.GuildID {
			continue
		}
		if scope.Kingdom != "" && r.Stats["kingdom"].Text() != scope.Kingdom {
			continue
		}
		if prev, ok := latest[r.PlayerName]; !ok || r.ID > prev.ID {
			latest[r.PlayerName] = r
		}
	}
	var out []domain.PlayerRecord
	for _, r := range latest {
		out = append(out, cloneRecord(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) SelectInWindow(_ context.Context, scope domain.Scope, start, endExclusive time.Time) ([]domain.PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PlayerRecord
	for _, r := range s.rows {
		if !scope.AllServers && r.GuildID != scope.GuildID {
			continue
		}
		if scope.Kingdom != "" && r.Stats["kingdom"].Text() != scope.Kingdom {
			continue
		}
		if r.Timestamp.Before(start) || !r.Timestamp.Before(endExclusive) {
			continue
		}
		out = append(out, cloneRecord(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) LatestIDByDiscord(_ context.Context, discordID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *domain.PlayerRecord
	for i := range s.rows {
		r := &s.rows[i]
		if r.DiscordID != discordID {
			continue
		}
		if best == nil || r.Timestamp.After(best.Timestamp) {
			best = r
		}
	}
	if best == nil {
		return 0, domain.ErrNoRecord
	}
	return best.ID, nil
}

func (s *fakeStore) FirstOrLastOnDate(_ context.Context, guildID int64, playername string, date time.Time, pickFirst bool) (*domain.PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	var best *domain.PlayerRecord
	for i := range s.rows {
		r := &s.rows[i]
		if r.GuildID != guildID || r.PlayerName != playername {
			continue
		}
		if r.Timestamp.Before(day) || !r.Timestamp.Before(day.AddDate(0, 0, 1)) {
			continue
		}
		if best == nil ||
			(pickFirst && r.Timestamp.Before(best.Timestamp)) ||
			(!pickFirst && r.Timestamp.After(best.Timestamp)) {
			best = r
		}
	}
	if best == nil {
		return nil, domain.ErrNoRecord
	}
	c := cloneRecord(*best)
	return &c, nil
}

func (s *fakeStore) PurgeByPlayer(_ context.Context, guildID int64, playername string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []domain.PlayerRecord
	var deleted int64
	for _, r := range s.rows {
		if r.GuildID == guildID && r.PlayerName == playername {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return deleted, nil
}

func (s *fakeStore) PurgeByRecordID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func cloneRecord(r domain.PlayerRecord) domain.PlayerRecord {
	stats := make(map[string]domain.Value, len(r.Stats))
	for k, v := range r.Stats {
		stats[k] = v
	}
	r.Stats = stats
	return r
}

// fakeLangs is a trivial LanguagePrefs.
type fakeLangs struct {
	mu    sync.Mutex
	prefs map[int64]string
}

func newFakeLangs() *fakeLangs {
	return &fakeLangs{prefs: map[int64]string{}}
}

func (f *fakeLangs) Get(_ context.Context, discordID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lang, ok := f.prefs[discordID]; ok {
		return lang, nil
	}
	return "en", nil
}

func (f *fakeLangs) Set(_ context.Context, discordID int64, language string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs[discordID] = language
	return nil
}
