package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"fuel-price-tracker/internal/alerting"
	"fuel-price-tracker/internal/analytics"
	"fuel-price-tracker/internal/backup"
	"fuel-price-tracker/internal/bot"
	"fuel-price-tracker/internal/config"
	"fuel-price-tracker/internal/extract"
	"fuel-price-tracker/internal/fetcher"
	"fuel-price-tracker/internal/history"
	"fuel-price-tracker/internal/scheduler"
	"fuel-price-tracker/internal/server"
	"fuel-price-tracker/internal/service"
	"fuel-price-tracker/internal/storage"
	"fuel-price-tracker/internal/telegram"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// core bundles the wired collaborators for one command invocation.
type core struct {
	store    *storage.FileStore
	history  *history.Store
	poller   *service.Poller
	analyzer *analytics.Analyzer
	telegram *telegram.Client
	backups  *backup.Manager
	location *time.Location
}

// buildCore wires storage, history, fetching, extraction and alerting. Soft
// configuration gaps (no bot token, no backup dir) degrade the affected
// feature with a warning instead of failing.
func (a *App) buildCore() (*core, error) {
	loc, err := a.Config.Location()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFileStore(a.Config.Storage.DataDir, a.Logger)
	if err != nil {
		return nil, err
	}

	hist := history.NewStore()
	persisted, err := store.LoadHistory()
	if err != nil {
		return nil, err
	}
	hist.Load(persisted)

	pages := fetcher.NewStation(fetcher.StationOptions{
		Timeout:   a.Config.Poller.FetchTimeout,
		UserAgent: a.Config.Poller.UserAgent,
	}, a.Logger)

	extractor := extract.New(a.Logger)

	var tg *telegram.Client
	var notifier alerting.Notifier
	if a.Config.Telegram.BotToken != "" {
		tg = telegram.New(telegram.Options{
			BotToken: a.Config.Telegram.BotToken,
			BaseURL:  a.Config.Telegram.APIBase,
			SendRate: a.Config.Telegram.SendRate,
		}, a.Logger)
		notifier = alerting.NewTelegramNotifier(tg, a.Logger)
	} else {
		a.Logger.Warn().Msg("telegram.bot_token not configured; notifications disabled")
	}

	var backups *backup.Manager
	if a.Config.Backup.Enabled {
		backups, err = backup.New(store.Dir(), a.Config.Backup.Dir, store.Files(), a.Config.Backup.MaxSnapshots, a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("backup disabled")
			backups = nil
		}
	}

	poller := service.New(store, hist, pages, extractor, notifier, loc, a.Logger)

	return &core{
		store:    store,
		history:  hist,
		poller:   poller,
		analyzer: analytics.New(hist, loc),
		telegram: tg,
		backups:  backups,
		location: loc,
	}, nil
}

// Run executes the long-running service: scheduler, chat bot and HTTP
// dashboard under one signal-cancelled context.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := a.buildCore()
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Poller.Interval,
		AlignToStart: a.Config.Poller.AlignToTick,
		StartupDelay: a.Config.Poller.StartupDelay,
		RunAtStart:   a.Config.Poller.RunAtStart,
	}, a.Logger)

	errCh := make(chan error, 3)

	go func() {
		errCh <- sched.Run(ctx, c.poller.Tick)
	}()

	if c.telegram != nil {
		chatBot := bot.New(bot.Options{
			PollTimeout: a.Config.Telegram.PollTimeout,
			AdminChatID: a.Config.Telegram.AdminChatID,
		}, c.telegram, c.poller, c.analyzer, c.store, c.backups, c.location, a.Logger)
		go func() {
			errCh <- chatBot.Run(ctx)
		}()
	}

	if a.Config.Server.Enabled {
		srv := server.New(a.Config.Server.ListenAddr, c.poller, c.location, a.Logger)
		go func() {
			errCh <- srv.Run(ctx)
		}()
	}

	a.Logger.Info().Msg("tracker started")

	err = <-errCh
	cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("tracker stopped")
	return nil
}

// Check runs one poll cycle and exits.
func (a *App) Check(ctx context.Context) error {
	c, err := a.buildCore()
	if err != nil {
		return err
	}

	result, err := c.poller.RunCycle(ctx)
	if err != nil {
		return err
	}

	a.Logger.Info().
		Int("polled", result.Polled).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Int("changed", result.Changed).
		Msg("check complete")
	return nil
}
