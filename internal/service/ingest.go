package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClosetPie107/KariBot/internal/constants"
	"github.com/ClosetPie107/KariBot/internal/domain"
	"github.com/ClosetPie107/KariBot/internal/locale"
	"github.com/ClosetPie107/KariBot/internal/ocr"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ImageFetcher downloads screenshot bytes.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// IngestRequest is one stat upload: one or two screenshots of the same
// screen for one player.
type IngestRequest struct {
	GuildID        int64
	DiscordID      int64
	PlayerName     string
	ImageURL       string
	SecondImageURL string
}

// IngestService runs the extraction pipeline: fetch, OCR, parse, sanitize,
// merge, reconcile.
type IngestService struct {
	fetcher    ImageFetcher
	recognizer ocr.Recognizer
	reconciler *Reconciler
	locales    *locale.Store
	langs      LanguagePrefs
	logger     zerolog.Logger
}

func NewIngestService(
	fetcher ImageFetcher,
	recognizer ocr.Recognizer,
	reconciler *Reconciler,
	locales *locale.Store,
	langs LanguagePrefs,
	logger zerolog.Logger,
) *IngestService {
	return &IngestService{
		fetcher:    fetcher,
		recognizer: recognizer,
		reconciler: reconciler,
		locales:    locales,
		langs:      langs,
		logger:     logger,
	}
}

// Ingest processes one upload. The two images are independent and run
// concurrently; the merge waits for both. Any fetch or OCR failure aborts
// the whole ingestion with history untouched.
func (s *IngestService) Ingest(ctx context.Context, req IngestRequest) (*domain.IngestResult, error) {
	ingestID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("ingest id: %w", err)
	}
	logger := s.logger.With().
		Str("ingest_id", ingestID).
		Int64("guild_id", req.GuildID).
		Str("playername", req.PlayerName).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, constants.IngestTimeout)
	defer cancel()

	lang, err := s.langs.Get(ctx, req.DiscordID)
	if err != nil {
		logger.Warn().Err(err).Msg("language lookup failed, using default")
		lang = locale.DefaultLanguage
	}
	bundle := s.locales.Bundle(lang)
	labels := ocr.NewLabels(bundle.Get)

	urls := []string{req.ImageURL}
	if req.SecondImageURL != "" {
		urls = append(urls, req.SecondImageURL)
	}

	passes := make([]ocr.ParseResult, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			pass, err := s.processImage(gctx, url, bundle.TesseractModel(), labels)
			if err != nil {
				return err
			}
			passes[i] = pass
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("image processing failed")
		return nil, err
	}

	merged := passes[0]
	if len(passes) == 2 {
		merged = ocr.MergeSecondPass(passes[0], passes[1])
	}
	logger.Debug().Int("fields", len(merged.Stats)).Msg("snapshot extracted")

	snapshot := &domain.StatSnapshot{
		GuildID:    req.GuildID,
		DiscordID:  req.DiscordID,
		PlayerName: req.PlayerName,
		Stats:      merged.Stats,
	}

	result, err := s.reconciler.Reconcile(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("result", result.Result).Int64("record_id", result.Record.ID).Msg("ingestion complete")
	return result, nil
}

func (s *IngestService) processImage(ctx context.Context, url, langModel string, labels *ocr.Labels) (ocr.ParseResult, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, constants.ImageFetchTimeout)
	defer cancel()
	image, err := s.fetcher.Fetch(fetchCtx, url)
	if err != nil {
		return ocr.ParseResult{}, fmt.Errorf("fetch image: %w", err)
	}

	ocrCtx, cancel := context.WithTimeout(ctx, constants.OCRTimeout)
	defer cancel()
	text, err := s.recognizer.Recognize(ocrCtx, image, langModel)
	if err != nil {
		return ocr.ParseResult{}, fmt.Errorf("recognize image: %w", err)
	}

	pass := ocr.Parse(strings.Split(strings.TrimSpace(text), "\n"), labels)
	pass.Stats = ocr.Sanitize(pass.Stats)
	return pass, nil
}
