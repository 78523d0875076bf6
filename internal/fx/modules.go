package fx

import (
	"github.com/ClosetPie107/KariBot/internal/config"
	"github.com/ClosetPie107/KariBot/internal/database"
	"github.com/ClosetPie107/KariBot/internal/imagesource"
	"github.com/ClosetPie107/KariBot/internal/locale"
	"github.com/ClosetPie107/KariBot/internal/logger"
	"github.com/ClosetPie107/KariBot/internal/ocr"
	"github.com/ClosetPie107/KariBot/internal/repository"
	"github.com/ClosetPie107/KariBot/internal/server"
	"github.com/ClosetPie107/KariBot/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideHistoryStore(repo *repository.StatsRepository) service.HistoryStore {
	return repo
}

func ProvideLanguagePrefs(repo *repository.LanguageRepository) service.LanguagePrefs {
	return repo
}

func ProvideImageFetcher(fetcher *imagesource.Fetcher) service.ImageFetcher {
	return fetcher
}

func ProvideRecognizer(cfg *config.Config, log zerolog.Logger) ocr.Recognizer {
	return ocr.NewTesseract(cfg.TesseractBinary, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(locale.NewStore),
	// repos
	fx.Provide(repository.NewStatsRepository),
	fx.Provide(repository.NewLanguageRepository),
	fx.Provide(ProvideHistoryStore),
	fx.Provide(ProvideLanguagePrefs),
	// ocr pipeline
	fx.Provide(imagesource.NewFetcher),
	fx.Provide(ProvideImageFetcher),
	fx.Provide(ProvideRecognizer),
	// svc
	fx.Provide(service.NewReconciler),
	fx.Provide(service.NewIngestService),
	fx.Provide(service.NewRecordService),
	fx.Provide(service.NewScoreboardService),
	// server
	fx.Provide(server.NewStatsServer),
)
