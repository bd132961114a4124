package main

import (
	"context"
	"log/slog"
	"os"

	httpapi "github.com/aasfg1234/vote-system/internal/api/http"
	"github.com/aasfg1234/vote-system/internal/config"
	"github.com/aasfg1234/vote-system/internal/repository"
	"github.com/aasfg1234/vote-system/internal/service"
	"github.com/aasfg1234/vote-system/lib/logger/slogpretty"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	meetingRepo := repository.NewInMemoryMeetingRepository()
	meetingService := service.NewMeetingService(meetingRepo, cfg, log)

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	go meetingService.RunReaper(reaperCtx)

	gateway := httpapi.NewGatewayController(meetingService, meetingService, log)
	meetingController := httpapi.NewMeetingController(meetingService)

	router := httpapi.SetupRouter(gateway, meetingController)

	log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
	if err := router.Run(cfg.HTTP.Address); err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
