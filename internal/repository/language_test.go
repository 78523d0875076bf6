package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ClosetPie107/KariBot/internal/database"
	"github.com/ClosetPie107/KariBot/internal/locale"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLangRepo(t *testing.T) *LanguageRepository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.RunMigrations(db, zerolog.Nop()))
	return NewLanguageRepository(db, zerolog.Nop())
}

func TestLanguageDefaultsWithoutPreference(t *testing.T) {
	repo := newLangRepo(t)

	lang, err := repo.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, locale.DefaultLanguage, lang)
}

func TestLanguageSetAndOverwrite(t *testing.T) {
	repo := newLangRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, 7, "de"))
	lang, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "de", lang)

	require.NoError(t, repo.Set(ctx, 7, "fr"))
	lang, err = repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)
}
