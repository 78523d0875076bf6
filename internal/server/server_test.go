package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ClosetPie107/KariBot/internal/database"
	"github.com/ClosetPie107/KariBot/internal/locale"
	"github.com/ClosetPie107/KariBot/internal/repository"
	"github.com/ClosetPie107/KariBot/internal/service"

	"github.com/gorilla/mux"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if url == "https://cdn.example/bad.png" {
		return nil, errors.New("fetch failed")
	}
	return []byte(url), nil
}

type stubRecognizer struct {
	texts map[string]string
}

func (s stubRecognizer) Recognize(_ context.Context, image []byte, _ string) (string, error) {
	return s.texts[string(image)], nil
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db, zerolog.Nop()))

	log := zerolog.Nop()
	statsRepo := repository.NewStatsRepository(db, log)
	langRepo := repository.NewLanguageRepository(db, log)
	locales, err := locale.NewStore()
	require.NoError(t, err)

	recognizer := stubRecognizer{texts: map[string]string{
		"https://cdn.example/one.png": "Level   42\nMonsters Slain   1,234\nKingdom   Emberfall\n",
	}}
	reconciler := service.NewReconciler(statsRepo, log)
	ingestSvc := service.NewIngestService(stubFetcher{}, recognizer, reconciler, locales, langRepo, log)
	recordSvc := service.NewRecordService(statsRepo, locales, langRepo, log)
	scoreboardSvc := service.NewScoreboardService(statsRepo, log)

	router := mux.NewRouter()
	NewStatsServer(ingestSvc, recordSvc, scoreboardSvc, locales, langRepo, log).Routes(router)
	return router
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestIngestThenQuery(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/v1/ingest", map[string]any{
		"guildid":    1,
		"discordid":  7,
		"playername": "kari",
		"imageurl":   "https://cdn.example/one.png",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var ingestResp struct {
		Result string `json:"result"`
		Record struct {
			ID    int64          `json:"id"`
			Stats map[string]any `json:"stats"`
		} `json:"record"`
		Labels map[string]string `json:"labels"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ingestResp))
	assert.Equal(t, "recordinserted", ingestResp.Result)
	assert.Equal(t, float64(42), ingestResp.Record.Stats["level"])
	assert.Equal(t, float64(1234), ingestResp.Record.Stats["monstersslain"])
	assert.Equal(t, "Emberfall", ingestResp.Record.Stats["kingdom"])
	assert.Equal(t, "Monsters Slain", ingestResp.Labels["monstersslain"])

	rr = doJSON(t, router, http.MethodGet, "/api/v1/records/latest?guildid=1&playername=kari", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/scoreboard?guildid=1&category=monstersslain", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var board struct {
		Entries []struct {
			PlayerName string `json:"playername"`
			Value      int64  `json:"value"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	require.Len(t, board.Entries, 1)
	assert.Equal(t, "kari", board.Entries[0].PlayerName)
	assert.Equal(t, int64(1234), board.Entries[0].Value)
}

func TestIngestFailurePropagates(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/v1/ingest", map[string]any{
		"guildid":    1,
		"discordid":  7,
		"playername": "kari",
		"imageurl":   "https://cdn.example/bad.png",
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestValidationAndNotFoundStatuses(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/v1/records/latest?guildid=1&playername=ghost", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/scoreboard?guildid=1&category=nosuchstat", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var errResp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
	assert.Equal(t, "invalidcategoryname", errResp["error"])

	rr = doJSON(t, router, http.MethodGet, "/api/v1/scoreboard/changes?guildid=1&category=level&year=2025&week=53", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
	assert.Equal(t, "53weeks", errResp["error"])
}

func TestCorrectLatestEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/v1/ingest", map[string]any{
		"guildid":    1,
		"discordid":  7,
		"playername": "kari",
		"imageurl":   "https://cdn.example/one.png",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/api/v1/records/correct-latest", map[string]any{
		"discordid": 7,
		"category":  "monsters slain",
		"value":     "1300",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doJSON(t, router, http.MethodGet, "/api/v1/records/latest?guildid=1&playername=kari", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Record struct {
			Stats map[string]any `json:"stats"`
		} `json:"record"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(1300), resp.Record.Stats["monstersslain"])
}

func TestLanguageEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPut, "/api/v1/language", map[string]any{
		"discordid": 7,
		"language":  "de",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodPut, "/api/v1/language", map[string]any{
		"discordid": 7,
		"language":  "tlh",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
