package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClosetPie107/KariBot/internal/constants"
	"github.com/ClosetPie107/KariBot/internal/domain"
	"github.com/ClosetPie107/KariBot/internal/schema"

	"github.com/rs/zerolog"
)

// Reconciler turns a sanitized snapshot into a durable history entry. The
// read-decide-write sequence for one (guild, playername) is serialized with
// a per-key mutex; concurrent ingestions for different players proceed in
// parallel.
type Reconciler struct {
	store  HistoryStore
	logger zerolog.Logger
	locks  keyedMutex
	now    func() time.Time
}

func NewReconciler(store HistoryStore, logger zerolog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger, now: time.Now}
}

// Reconcile decides between insert, merge, and update:
//   - no history: insert
//   - newest record younger than the merge window: merge field-wise into it
//   - at least two records and the second-newest is from today: overwrite the
//     newest in place
//   - otherwise: insert
//
// A difference report against the previous newest record accompanies every
// outcome except a merge.
func (r *Reconciler) Reconcile(ctx context.Context, snap *domain.StatSnapshot) (*domain.IngestResult, error) {
	unlock := r.locks.lock(fmt.Sprintf("%d/%s", snap.GuildID, snap.PlayerName))
	defer unlock()

	now := r.now().UTC()

	records, err := r.store.MostRecent(ctx, snap.GuildID, snap.PlayerName, 2)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	result := domain.ResultInserted
	var changedID int64
	var differences map[string]int64

	switch {
	case len(records) == 0:
		changedID, err = r.insert(ctx, snap, now)

	case now.Sub(records[0].Timestamp) < constants.MergeWindow:
		changedID = records[0].ID
		err = r.store.UpdateFields(ctx, changedID, mergeStats(records[0].Stats, snap.Stats))
		result = domain.ResultMerged

	case len(records) >= 2 && sameDay(records[1].Timestamp, now):
		changedID = records[0].ID
		err = r.store.UpdateFields(ctx, changedID, snap.Stats)
		result = domain.ResultUpdated
		differences = calcDifferences(snap.Stats, records[0].Stats)

	default:
		changedID, err = r.insert(ctx, snap, now)
		differences = calcDifferences(snap.Stats, records[0].Stats)
	}
	if err != nil {
		return nil, err
	}

	record, err := r.store.Get(ctx, changedID)
	if err != nil {
		return nil, fmt.Errorf("reload record %d: %w", changedID, err)
	}

	r.logger.Info().
		Int64("guild_id", snap.GuildID).
		Str("playername", snap.PlayerName).
		Int64("record_id", changedID).
		Str("result", result).
		Msg("snapshot reconciled")

	return &domain.IngestResult{Result: result, Record: record, Differences: differences}, nil
}

func (r *Reconciler) insert(ctx context.Context, snap *domain.StatSnapshot, now time.Time) (int64, error) {
	rec := &domain.PlayerRecord{
		GuildID:    snap.GuildID,
		DiscordID:  snap.DiscordID,
		PlayerName: snap.PlayerName,
		Timestamp:  now,
		Stats:      snap.Stats,
	}
	id, err := r.store.Insert(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return id, nil
}

// mergeStats combines two uploads of the same screen: an existing non-empty
// value always wins; empty slots take the new value when one exists.
func mergeStats(old, fresh map[string]domain.Value) map[string]domain.Value {
	merged := make(map[string]domain.Value, len(schema.Fields))
	for _, f := range schema.Fields {
		oldV := old[f.Name]
		newV, ok := fresh[f.Name]
		if oldV.IsZero() && ok && !newV.IsZero() {
			merged[f.Name] = newV
		} else {
			merged[f.Name] = oldV
		}
	}
	return merged
}

// calcDifferences is a best-effort delta: missing or null history counts as
// a zero baseline, so a first-time value reports in full. Unparsable text on
// either side drops the field from the report.
func calcDifferences(fresh, previous map[string]domain.Value) map[string]int64 {
	diff := make(map[string]int64)
	for _, f := range schema.Fields {
		prevV := previous[f.Name]
		var prev int64
		if !prevV.IsNull() {
			n, ok := prevV.Int()
			if !ok {
				continue
			}
			prev = n
		}

		var next int64
		if v, ok := fresh[f.Name]; ok && !v.IsNull() {
			if v.Kind() != domain.ValueInt {
				continue
			}
			next, _ = v.Int()
		}

		diff[f.Name] = next - prev
	}
	return diff
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// keyedMutex hands out one mutex per key. Entries are never evicted; the key
// space is bounded by the player population.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
