package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ClosetPie107/KariBot/internal/constants"
	"github.com/ClosetPie107/KariBot/internal/domain"
	"github.com/ClosetPie107/KariBot/internal/locale"
	"github.com/ClosetPie107/KariBot/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// ascendingDefaults are rank categories where lower is better, so the
// scoreboard defaults to ascending order.
var ascendingDefaults = map[string]bool{
	"globalrank":      true,
	"regionalrank":    true,
	"competitiverank": true,
}

// StatsServer exposes the tracker over HTTP.
type StatsServer struct {
	ingestSvc     *service.IngestService
	recordSvc     *service.RecordService
	scoreboardSvc *service.ScoreboardService
	locales       *locale.Store
	langs         service.LanguagePrefs
	logger        zerolog.Logger
}

func NewStatsServer(
	ingestSvc *service.IngestService,
	recordSvc *service.RecordService,
	scoreboardSvc *service.ScoreboardService,
	locales *locale.Store,
	langs service.LanguagePrefs,
	logger zerolog.Logger,
) *StatsServer {
	return &StatsServer{
		ingestSvc:     ingestSvc,
		recordSvc:     recordSvc,
		scoreboardSvc: scoreboardSvc,
		locales:       locales,
		langs:         langs,
		logger:        logger,
	}
}

// Routes registers every endpoint on the router.
func (s *StatsServer) Routes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/ingest", s.handleIngest).Methods(http.MethodPost)
	api.HandleFunc("/records/latest", s.handleLatestRecord).Methods(http.MethodGet)
	api.HandleFunc("/records/on-date", s.handleRecordOnDate).Methods(http.MethodGet)
	api.HandleFunc("/records/correct-latest", s.handleCorrectLatest).Methods(http.MethodPost)
	api.HandleFunc("/records/alter", s.handleAlterRecord).Methods(http.MethodPost)
	api.HandleFunc("/records/{id:[0-9]+}", s.handlePurgeRecord).Methods(http.MethodDelete)
	api.HandleFunc("/players", s.handlePurgePlayer).Methods(http.MethodDelete)
	api.HandleFunc("/scoreboard", s.handleScoreboard).Methods(http.MethodGet)
	api.HandleFunc("/scoreboard/changes", s.handleChanges).Methods(http.MethodGet)
	api.HandleFunc("/language", s.handleSetLanguage).Methods(http.MethodPut)
}

type ingestBody struct {
	GuildID        int64  `json:"guildid"`
	DiscordID      int64  `json:"discordid"`
	PlayerName     string `json:"playername"`
	ImageURL       string `json:"imageurl"`
	SecondImageURL string `json:"secondimageurl"`
}

func (s *StatsServer) handleIngest(w http.ResponseWriter, r *http.Request) {
	var body ingestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, s.logger, domain.NewValidationError(domain.CodeInvalidInput))
		return
	}
	if body.PlayerName == "" || body.ImageURL == "" {
		writeError(w, s.logger, domain.NewValidationError(domain.CodeInvalidInput))
		return
	}

	result, err := s.ingestSvc.Ingest(r.Context(), service.IngestRequest{
		GuildID:        body.GuildID,
		DiscordID:      body.DiscordID,
		PlayerName:     body.PlayerName,
		ImageURL:       body.ImageURL,
		SecondImageURL: body.SecondImageURL,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	bundle := s.bundleFor(r.Context(), body.DiscordID)
	resp := map[string]any{
		"result":  result.Result,
		"message": bundle.Get(result.Result),
		"record":  toRecordPayload(result.Record),
		"labels":  fieldLabels(bundle.Get),
	}
	if result.Differences != nil {
		resp["differences"] = result.Differences
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *StatsServer) handleLatestRecord(w http.ResponseWriter, r *http.Request) {
	guildID, err := queryInt(r, "guildid")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	playername := r.URL.Query().Get("playername")
	if playername == "" {
		writeError(w, s.logger, domain.NewValidationError(domain.CodeInvalidInput))
		return
	}

	rec, err := s.recordSvc.LatestRecord(r.Context(), guildID, playername)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": toRecordPayload(rec)})
}

func (s *StatsServer) handleRecordOnDate(w http.ResponseWriter, r *http.Request) {
	guildID, err := queryInt(r, "guildid")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	q := r.URL.Query()
	playername := q.Get("playername")
	if playername == "" {
		writeError(w, s.logger, domain.NewValidationError(domain.CodeInvalidInput))
		return
	}

	rec, err := s.recordSvc.RecordOnDate(r.Context(), guildID, playername, q.Get("date"), q.Get("which"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": toRecordPayload(rec)})
}

type correctionBody struct {
	DiscordID int64  `json:"discordid"`
	Category  string `json:"category"`
	Value     string `json:"value"`
}

func (s *StatsServer) handleCorrectLatest(w http.ResponseWriter, r *http.Request) {
	var body correctionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, s.logger, domain.NewValidationError(domain.CodeInvalidInput))
		return
	}

	field, err := s.recordSvc.CorrectLatest(r.Context(), body.DiscordID, body.Category, body.Value)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	bundle := s.bundleFor(r.Context(), body.DiscordID)
	writeJSON(w, http.StatusOK, map[string]string{
		"field":   field,
		"message": bundle.Get("recordupdated"),
	})
}

type alterBody struct {
	DiscordID  int64  `json:"discordid"`
	GuildID    int64  `json:"guildid"`
	PlayerName string `json:"playername"`
	Date       string `json:"date"`
	Which      string `json:"which"`
	Category   string `json:"category"`
	Value      string `json:"value"`
}

func (s *StatsServer) handleAlterRecord(w http.ResponseWriter, r *http.Request) {
	var body alterBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, s.logger, domain.NewValidationError(domain.CodeInvalidInput))
		return
	}

	field, err := s.recordSvc.AlterRecord(r.Context(), body.DiscordID, body.GuildID,
		body.PlayerName, body.Date, body.Which, body.Category, body.Value)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	bundle := s.bundleFor(r.Context(), body.DiscordID)
	writeJSON(w, http.StatusOK, map[string]string{
		"field":   field,
		"message": bundle.Get("recordaltered"),
	})
}

func (s *StatsServer) handlePurgeRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, s.logger, domain.NewValidationError(domain.CodeInvalidInput))
		return
	}
	if err := s.recordSvc.PurgeRecord(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": 1})
}

func (s *StatsServer) handlePurgePlayer(w http.ResponseWriter, r *http.Request) {
	guildID, err := queryInt(r, "guildid")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	playername := r.URL.Query().Get("playername")
	if playername == "" {
		writeError(w, s.logger, domain.NewValidationError(domain.CodeInvalidInput))
		return
	}

	deleted, err := s.recordSvc.PurgePlayer(r.Context(), guildID, playername)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (s *StatsServer) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	scope, err := parseScope(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	entries, err := s.scoreboardSvc.Scoreboard(r.Context(), scope, category,
		parseAscending(r, category), parseLimit(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	rows := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]any{"playername": e.PlayerName, "value": e.Value})
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "entries": rows})
}

func (s *StatsServer) handleChanges(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	scope, err := parseScope(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	entries, err := s.scoreboardSvc.Changes(r.Context(), scope, category, window,
		parseAscending(r, category), parseLimit(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	rows := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]any{
			"playername": e.PlayerName,
			"guildid":    e.GuildID,
			"before":     e.Before,
			"after":      e.After,
			"difference": e.Difference,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "entries": rows})
}

type languageBody struct {
	DiscordID int64  `json:"discordid"`
	Language  string `json:"language"`
}

func (s *StatsServer) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var body languageBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, s.logger, domain.NewValidationError(domain.CodeInvalidInput))
		return
	}
	if err := s.recordSvc.SetLanguage(r.Context(), body.DiscordID, body.Language); err != nil {
		writeError(w, s.logger, err)
		return
	}

	bundle := s.locales.Bundle(body.Language)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": bundle.Get("languageupdated"),
	})
}

func (s *StatsServer) bundleFor(ctx context.Context, discordID int64) *locale.Bundle {
	lang, err := s.langs.Get(ctx, discordID)
	if err != nil {
		lang = locale.DefaultLanguage
	}
	return s.locales.Bundle(lang)
}

func queryInt(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(domain.CodeInvalidInput)
	}
	return n, nil
}

func parseScope(r *http.Request) (domain.Scope, error) {
	q := r.URL.Query()
	scope := domain.Scope{Kingdom: q.Get("kingdom")}
	if q.Get("scope") == "all" {
		scope.AllServers = true
		return scope, nil
	}
	guildID, err := queryInt(r, "guildid")
	if err != nil {
		return domain.Scope{}, err
	}
	scope.GuildID = guildID
	return scope, nil
}

func parseWindow(r *http.Request) (domain.TimeWindow, error) {
	year, err := queryInt(r, "year")
	if err != nil {
		return domain.TimeWindow{}, domain.NewValidationError(domain.CodeInvalidDate)
	}
	window := domain.TimeWindow{Year: int(year)}
	if window.Month, err = queryOptInt(r, "month"); err != nil {
		return domain.TimeWindow{}, err
	}
	if window.Day, err = queryOptInt(r, "day"); err != nil {
		return domain.TimeWindow{}, err
	}
	if window.Week, err = queryOptInt(r, "week"); err != nil {
		return domain.TimeWindow{}, err
	}
	return window, window.Validate()
}

func queryOptInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(domain.CodeInvalidInput)
	}
	return n, nil
}

func parseAscending(r *http.Request, category string) bool {
	switch r.URL.Query().Get("order") {
	case "asc":
		return true
	case "desc":
		return false
	}
	return ascendingDefaults[category]
}

func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return constants.ScoreboardDefaultLimit
	}
	if limit > constants.ScoreboardMaxLimit {
		return constants.ScoreboardMaxLimit
	}
	return limit
}
