package main

import (
	"context"
	"fmt"
	"os"

	"recite/internal/cli"
	"recite/internal/config"
	"recite/internal/domain"
	"recite/internal/i18n"
	"recite/internal/relay"
	"recite/internal/relay/ws"
	"recite/internal/service"
	"recite/internal/storage"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	flags := cli.NewFlags()
	rootCmd := cli.CreateRootCommand(flags, func(ctx context.Context, flags *cli.Flags) (*cli.App, error) {
		return openApp(ctx, flags, logger)
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func openApp(ctx context.Context, flags *cli.Flags, logger *zap.Logger) (*cli.App, error) {
	cfg, err := config.Load(func(cfg *config.Config) {
		if flags.Backend != "" {
			cfg.Storage.Backend = flags.Backend
		}
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	store, err := storage.Open(cfg.Storage, cfg.DSN(), logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	translator, err := i18n.New(cfg.Widget.Lang)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load translations: %w", err)
	}

	vocabulary := service.NewVocabularyService(store, service.NewReviewSelector(nil), logger)
	if flags.Owner != "" {
		vocabulary = vocabulary.ForOwner(flags.Owner)
	}

	var client *ws.Client
	app := &cli.App{
		Vocabulary: vocabulary,
		Translator: translator,
		Logger:     logger,
		DefaultQuery: domain.Query{
			From: cfg.Widget.DefaultFrom,
			To:   cfg.Widget.DefaultTo,
			API:  cfg.Widget.DefaultAPI,
		},
		Relay: func(ctx context.Context) (*relay.Relay, error) {
			c, err := ws.Dial(ctx, cfg.Relay.URL, logger)
			if err != nil {
				return nil, err
			}
			client = c
			return relay.New(c, translator, cfg.Relay.Timeout, logger), nil
		},
		Close: func() error {
			if client != nil {
				client.Close()
			}
			return store.Close()
		},
	}
	return app, nil
}
