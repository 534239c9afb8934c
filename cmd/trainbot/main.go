package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	tele "gopkg.in/telebot.v4"

	"trainbot/internal/bot"
	"trainbot/internal/config"
	"trainbot/internal/database"
	"trainbot/internal/logger"
	"trainbot/internal/session"
	"trainbot/internal/storage"
	"trainbot/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("trainbot: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg); err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	startedAt := time.Now()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database); err != nil {
		return err
	}

	machine := session.NewMachine(storage.NewPostgres(db))
	handler := bot.New(machine)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info(ctx, "app", "ready",
		slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
	)

	middlewares := []tele.MiddlewareFunc{
		telegram.RecoverMiddleware,
		telegram.LoggerMiddleware,
	}
	if cfg.RateLimit.IntervalMS > 0 {
		middlewares = append(middlewares, telegram.RateLimitMiddleware(telegram.RateLimitOptions{
			Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
		}))
	}

	err = telegram.Run(ctx, telegram.Options{
		Config:      cfg,
		Middlewares: middlewares,
		Routes:      handler.Routes(),
	})

	logger.Info(context.Background(), "app", "shutdown")
	return err
}
