package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"glpibot/internal/config"
	"glpibot/internal/domain"
	"glpibot/internal/handler"
	"glpibot/internal/middleware"
	"glpibot/internal/poller"
	"glpibot/internal/service"
	"glpibot/internal/ticketing/glpi"
	"glpibot/internal/transport"

	"github.com/spf13/cobra"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "glpibot",
		Short:         "Telegram bot for GLPI helpdesk",
		Long:          `Lets users log in to GLPI, create tickets and follow their status from Telegram.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file (default $CONFIG_FILE)")

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(configPath)
		},
	})

	return root
}

func runBot(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Starting GLPI bot", zap.String("storage", cfg.Storage))

	store, watches, closeStorage, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	priorities, err := domain.DefaultPriorities().WithAliases(cfg.Priorities)
	if err != nil {
		return fmt.Errorf("priority aliases: %w", err)
	}

	backend, err := glpi.NewClient(glpi.Config{
		BaseURL:    cfg.GLPI.URL,
		AppToken:   cfg.GLPI.AppToken,
		HTTPClient: &http.Client{Timeout: cfg.GLPI.Timeout},
		ListLimit:  cfg.GLPI.ListLimit,
	})
	if err != nil {
		return err
	}

	// Initialize Telegram bot
	bot, err := transport.NewBot(transport.BotConfig{
		Token:       cfg.BotToken,
		PollTimeout: cfg.Telegram.PollTimeout,
	}, logger)
	if err != nil {
		return err
	}
	sender := transport.NewSender(bot)

	logger.Info("Telegram bot initialized", zap.String("username", bot.Me.Username))

	// Initialize services
	authService := service.NewAuthService(backend, watches, cfg.GLPI.Timeout, logger)
	ticketService := service.NewTicketService(backend, priorities, cfg.GLPI.Timeout)
	checker := service.NewChecker(store, watches, ticketService, sender, cfg.Checker.Interval, logger)

	// Middleware must be registered before handlers
	bot.Use(middleware.Trace(logger))
	h := handler.NewHandler(store, authService, ticketService, sender, logger)
	h.RegisterHandlers(bot)

	logger.Info("Handlers registered")

	// One worker per user keeps each user's updates in order
	serial := poller.NewSerializer(bot.ProcessUpdate)

	supervisor := poller.New(
		transport.NewPoller(bot),
		serial.Dispatch,
		poller.Config{
			PollTimeout:     cfg.Telegram.PollTimeout,
			RestartInterval: cfg.Telegram.RestartInterval,
			RestartBurst:    cfg.Telegram.RestartBurst,
			SkipPending:     cfg.Telegram.SkipPending,
		},
		logger,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := atomic.NewBool(false)

	var g errgroup.Group
	g.Go(func() error {
		checker.Run(shutdown)
		return nil
	})

	logger.Info("Bot started successfully")
	err = supervisor.Run(ctx)

	// Graceful shutdown: the checker observes the flag on its own cadence
	shutdown.Store(true)
	serial.Wait()
	_ = g.Wait()

	if errors.Is(err, context.Canceled) {
		logger.Info("Bot stopped gracefully")
		return nil
	}
	return fmt.Errorf("polling stopped: %w", err)
}

func runMigrate(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return runMigrations(db, logger)
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
