package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recite/internal/config"
	"recite/internal/domain"
	"recite/internal/handler"
	"recite/internal/i18n"
	"recite/internal/relay"
	"recite/internal/relay/ws"
	"recite/internal/service"
	"recite/internal/storage"
	"recite/internal/widget"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting recite bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if err := cfg.ValidateBot(); err != nil {
		logger.Fatal("Invalid bot config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Bool("review_enabled", cfg.Widget.ReviewEnabled),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open storage (connects with retries and runs migrations)
	store, err := storage.Open(cfg.Storage, cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()

	translator, err := i18n.New(cfg.Widget.Lang)
	if err != nil {
		logger.Fatal("Failed to load translations", zap.Error(err))
	}

	// Connect to the background translation process
	dialCtx, dialCancel := context.WithTimeout(ctx, 30*time.Second)
	client, err := ws.Dial(dialCtx, cfg.Relay.URL, logger)
	dialCancel()
	if err != nil {
		logger.Fatal("Failed to connect to background process", zap.Error(err))
	}
	defer client.Close()

	client.OnDisconnect(func() {
		logger.Error("Background process disconnected, translations unavailable until restart")
	})

	// Initialize services
	rel := relay.New(client, translator, cfg.Relay.Timeout, logger)
	vocabulary := service.NewVocabularyService(store, service.NewReviewSelector(nil), logger)

	opts := widget.Options{
		ReviewEnabled: cfg.Widget.ReviewEnabled,
		DefaultQuery: domain.Query{
			From: cfg.Widget.DefaultFrom,
			To:   cfg.Widget.DefaultTo,
			API:  cfg.Widget.DefaultAPI,
		},
	}
	newWidget := func(owner string) *widget.Widget {
		w := widget.New(opts, rel, vocabulary.ForOwner(owner), translator, logger.With(zap.String("owner", owner)))
		w.Init(ctx)
		return w
	}

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	// Initialize handler
	h := handler.NewHandler(ctx, bot, vocabulary, translator, newWidget, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()

	logger.Info("Bot stopped gracefully")
}
