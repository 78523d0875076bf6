package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ClosetPie107/KariBot/internal/domain"
	"github.com/ClosetPie107/KariBot/internal/schema"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps domain errors onto status codes: caller mistakes carry
// their message code at 400, missing history is 404, the rest is 500.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Code})
	case errors.Is(err, domain.ErrNoRecord):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "norecordfound"})
	default:
		logger.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
	}
}

func valueJSON(v domain.Value) any {
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

type recordPayload struct {
	ID         int64          `json:"id"`
	GuildID    int64          `json:"guildid"`
	DiscordID  int64          `json:"discordid"`
	PlayerName string         `json:"playername"`
	Timestamp  string         `json:"timestamp"`
	Stats      map[string]any `json:"stats"`
}

func toRecordPayload(rec *domain.PlayerRecord) recordPayload {
	stats := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		stats[f.Name] = valueJSON(rec.Stats[f.Name])
	}
	return recordPayload{
		ID:         rec.ID,
		GuildID:    rec.GuildID,
		DiscordID:  rec.DiscordID,
		PlayerName: rec.PlayerName,
		Timestamp:  rec.Timestamp.UTC().Format(time.RFC3339),
		Stats:      stats,
	}
}

// fieldLabels localizes every field name for display alongside a record.
func fieldLabels(localize func(string) string) map[string]string {
	labels := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		labels[f.Name] = localize(f.Name)
	}
	return labels
}
