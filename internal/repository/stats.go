package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ClosetPie107/KariBot/internal/domain"
	"github.com/ClosetPie107/KariBot/internal/schema"

	"github.com/rs/zerolog"
)

// StatsRepository owns all access to the playerstats table. Column names
// come from the static schema table, never from caller-supplied strings.
type StatsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewStatsRepository(db *sql.DB, logger zerolog.Logger) *StatsRepository {
	return &StatsRepository{db: db, logger: logger}
}

var selectColumns = strings.Join(schema.Columns(), ", ")

// MostRecent returns up to limit records for one player, newest first.
func (r *StatsRepository) MostRecent(ctx context.Context, guildID int64, playername string, limit int) ([]domain.PlayerRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM playerstats
		WHERE guildid = ? AND playername = ?
		ORDER BY timestamp DESC
		LIMIT ?`, selectColumns)

	return r.queryRecords(ctx, query, guildID, playername, limit)
}

// Get returns a single record by id.
func (r *StatsRepository) Get(ctx context.Context, id int64) (*domain.PlayerRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM playerstats WHERE id = ?`, selectColumns)
	records, err := r.queryRecords(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNoRecord
	}
	return &records[0], nil
}

// Latest returns the newest record for a player.
func (r *StatsRepository) Latest(ctx context.Context, guildID int64, playername string) (*domain.PlayerRecord, error) {
	records, err := r.MostRecent(ctx, guildID, playername, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNoRecord
	}
	return &records[0], nil
}

// Insert stores a new record and returns its id.
func (r *StatsRepository) Insert(ctx context.Context, rec *domain.PlayerRecord) (int64, error) {
	columns := []string{"guildid", "discordid", "timestamp", "playername"}
	args := []any{rec.GuildID, rec.DiscordID, rec.Timestamp.UTC(), rec.PlayerName}

	for _, f := range schema.Fields {
		v, ok := rec.Stats[f.Name]
		if !ok || v.IsNull() {
			continue
		}
		columns = append(columns, f.Name)
		args = append(args, valueArg(v))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf(`INSERT INTO playerstats (%s) VALUES (%s)`,
		strings.Join(columns, ", "), placeholders)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert record id: %w", err)
	}
	return id, nil
}

// UpdateFields overwrites the supplied stat fields of one record, leaving
// all others untouched.
func (r *StatsRepository) UpdateFields(ctx context.Context, id int64, stats map[string]domain.Value) error {
	var sets []string
	var args []any
	for _, f := range schema.Fields {
		v, ok := stats[f.Name]
		if !ok {
			continue
		}
		sets = append(sets, f.Name+" = ?")
		args = append(args, valueArg(v))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE playerstats SET %s WHERE id = ?`, strings.Join(sets, ", "))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update record %d: %w", id, err)
	}
	return nil
}

// UpdateField overwrites a single stat field of one record.
func (r *StatsRepository) UpdateField(ctx context.Context, id int64, field string, v domain.Value) error {
	if _, ok := schema.Lookup(field); !ok {
		return fmt.Errorf("unknown field %q", field)
	}
	return r.UpdateFields(ctx, id, map[string]domain.Value{field: v})
}

// LatestPerPlayer returns each distinct player's newest record (by maximum
// id) within the scope.
func (r *StatsRepository) LatestPerPlayer(ctx context.Context, scope domain.Scope) ([]domain.PlayerRecord, error) {
	var guildFilter, scopeFilter string
	var args []any
	if !scope.AllServers {
		guildFilter = "WHERE guildid = ?"
		scopeFilter = "AND p.guildid = ?"
		args = append(args, scope.GuildID, scope.GuildID)
	}
	kingdomFilter := ""
	if scope.Kingdom != "" {
		kingdomFilter = "AND p.kingdom = ?"
		args = append(args, scope.Kingdom)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM playerstats p
		INNER JOIN (
			SELECT playername, MAX(id) AS latest
			FROM playerstats
			%s
			GROUP BY playername
		) latest_record ON p.playername = latest_record.playername AND p.id = latest_record.latest
		WHERE 1=1 %s %s`,
		prefixedColumns("p"), guildFilter, scopeFilter, kingdomFilter)

	return r.queryRecords(ctx, query, args...)
}

// SelectInWindow returns every record in the scope whose timestamp falls in
// [start, endExclusive).
func (r *StatsRepository) SelectInWindow(ctx context.Context, scope domain.Scope, start, endExclusive time.Time) ([]domain.PlayerRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM playerstats
		WHERE timestamp >= ? AND timestamp < ?`, selectColumns)
	args := []any{start.UTC(), endExclusive.UTC()}

	if !scope.AllServers {
		query += " AND guildid = ?"
		args = append(args, scope.GuildID)
	}
	if scope.Kingdom != "" {
		query += " AND kingdom = ?"
		args = append(args, scope.Kingdom)
	}
	query += " ORDER BY id"

	return r.queryRecords(ctx, query, args...)
}

// LatestIDByDiscord returns the id of the newest record uploaded by a
// discord user, across guilds.
func (r *StatsRepository) LatestIDByDiscord(ctx context.Context, discordID int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM playerstats
		WHERE discordid = ?
		ORDER BY timestamp DESC
		LIMIT 1`, discordID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, domain.ErrNoRecord
	}
	if err != nil {
		return 0, fmt.Errorf("latest id for discord %d: %w", discordID, err)
	}
	return id, nil
}

// FirstOrLastOnDate returns a player's first or last record on one calendar
// date.
func (r *StatsRepository) FirstOrLastOnDate(ctx context.Context, guildID int64, playername string, date time.Time, pickFirst bool) (*domain.PlayerRecord, error) {
	order := "DESC"
	if pickFirst {
		order = "ASC"
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	query := fmt.Sprintf(`
		SELECT %s FROM playerstats
		WHERE guildid = ? AND playername = ? AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp %s
		LIMIT 1`, selectColumns, order)

	records, err := r.queryRecords(ctx, query, guildID, playername, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNoRecord
	}
	return &records[0], nil
}

// PurgeByPlayer deletes every record of one player and reports how many rows
// went away.
func (r *StatsRepository) PurgeByPlayer(ctx context.Context, guildID int64, playername string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM playerstats WHERE guildid = ? AND playername = ?`, guildID, playername)
	if err != nil {
		return 0, fmt.Errorf("purge player %s: %w", playername, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge player rows: %w", err)
	}
	r.logger.Info().
		Int64("guild_id", guildID).
		Str("playername", playername).
		Int64("deleted", count).
		Msg("purged player records")
	return count, nil
}

// PurgeByRecordID deletes a single record.
func (r *StatsRepository) PurgeByRecordID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM playerstats WHERE id = ?`, id); err != nil {
		return fmt.Errorf("purge record %d: %w", id, err)
	}
	return nil
}

func (r *StatsRepository) queryRecords(ctx context.Context, query string, args ...any) ([]domain.PlayerRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []domain.PlayerRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (domain.PlayerRecord, error) {
	var rec domain.PlayerRecord
	var guildID, discordID sql.NullInt64
	var timestamp sql.NullTime
	var playername sql.NullString

	dests := []any{&rec.ID, &guildID, &discordID, &timestamp, &playername}
	raw := make([]sql.NullString, len(schema.Fields))
	for i := range raw {
		dests = append(dests, &raw[i])
	}

	if err := rows.Scan(dests...); err != nil {
		return rec, fmt.Errorf("scan record: %w", err)
	}

	rec.GuildID = guildID.Int64
	rec.DiscordID = discordID.Int64
	rec.PlayerName = playername.String
	if timestamp.Valid {
		rec.Timestamp = timestamp.Time.UTC()
	}

	rec.Stats = make(map[string]domain.Value, len(schema.Fields))
	for i, f := range schema.Fields {
		rec.Stats[f.Name] = columnValue(f, raw[i])
	}
	return rec, nil
}

// columnValue converts a scanned column to a typed value. SQLite columns are
// dynamically typed, so an integer field can still carry the text fallback
// the sanitizer let through.
func columnValue(f schema.Field, raw sql.NullString) domain.Value {
	if !raw.Valid {
		return domain.NullValue()
	}
	if f.Kind == schema.KindInt {
		v := domain.TextValue(raw.String)
		if n, ok := v.Int(); ok {
			return domain.IntValue(n)
		}
	}
	return domain.TextValue(raw.String)
}

func valueArg(v domain.Value) any {
	switch v.Kind() {
	case domain.ValueInt:
		n, _ := v.Int()
		return n
	case domain.ValueText:
		return v.Text()
	default:
		return nil
	}
}

func prefixedColumns(alias string) string {
	cols := schema.Columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
}
