package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"schedule-planner/internal/bot"
	"schedule-planner/internal/config"
	"schedule-planner/internal/repository"
	"schedule-planner/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config")
	}

	logger := newLogger(cfg.LogLevel)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	scheduleRepo := repository.NewScheduleRepository(db, logger.With().Str("component", "schedule_repo").Logger())
	reportRepo := repository.NewReportRepository(db)

	scheduleSvc := service.NewScheduleService(scheduleRepo, logger.With().Str("component", "schedule").Logger())
	reportSvc := service.NewReportService(reportRepo)
	digestSvc := service.NewDigestService(reportSvc)

	planner, err := bot.New(cfg.TelegramToken, scheduleSvc, reportSvc, digestSvc, cfg.DigestChatID, logger.With().Str("component", "bot").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("create bot")
	}

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.DigestChatID != 0 && (cfg.DigestAt != "" || cfg.DigestInterval > 0) {
		digestJob := func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := planner.SendDigest(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("send digest")
			}
		}
		if cfg.DigestAt != "" {
			_, err = scheduler.ScheduleDaily(cfg.DigestAt, digestJob)
		} else {
			_, err = scheduler.ScheduleInterval(cfg.DigestInterval, digestJob)
		}
		if err != nil {
			logger.Fatal().Err(err).Msg("schedule digest")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	logger.Info().Msg("schedule planner started")
	if err := planner.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("bot stopped")
	}
	logger.Info().Msg("shutdown complete")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}
