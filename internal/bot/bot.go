// Package bot is the chat command surface: a long-polling Telegram update
// loop that maps commands onto the core operations. Each handler catches and
// reports its own failure so a broken command never disturbs the poll loop.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fuel-price-tracker/internal/analytics"
	"fuel-price-tracker/internal/backup"
	"fuel-price-tracker/internal/model"
	"fuel-price-tracker/internal/service"
	"fuel-price-tracker/internal/storage"
	"fuel-price-tracker/internal/telegram"
)

// Options parameterise the bot.
type Options struct {
	PollTimeout time.Duration
	// AdminChatID allow-lists the backup/restore commands. Zero disables
	// them entirely.
	AdminChatID int64
}

// Bot drives the chat interface.
type Bot struct {
	opts     Options
	client   *telegram.Client
	poller   *service.Poller
	analyzer *analytics.Analyzer
	store    storage.Store
	backups  *backup.Manager
	loc      *time.Location
	logger   zerolog.Logger
}

// New constructs the bot. backups may be nil when backup is disabled.
func New(opts Options, client *telegram.Client, poller *service.Poller, analyzer *analytics.Analyzer, store storage.Store, backups *backup.Manager, loc *time.Location, logger zerolog.Logger) *Bot {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30 * time.Second
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Bot{
		opts:     opts,
		client:   client,
		poller:   poller,
		analyzer: analyzer,
		store:    store,
		backups:  backups,
		loc:      loc,
		logger:   logger.With().Str("component", "bot").Logger(),
	}
}

// Run long-polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info().Msg("bot update loop started")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.client.GetUpdates(ctx, offset, b.opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Warn().Err(err).Msg("get updates failed, backing off")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update telegram.Update) {
	switch {
	case update.Callback != nil:
		b.handleCallback(ctx, *update.Callback)
	case update.Message != nil && strings.HasPrefix(update.Message.Text, "/"):
		b.handleCommand(ctx, *update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg telegram.Message) {
	command, args := splitCommand(msg.Text)
	chatID := msg.Chat.ID

	b.logger.Debug().Int64("chat_id", chatID).Str("command", command).Msg("command received")

	var err error
	switch command {
	case "/start":
		err = b.cmdStart(ctx, chatID)
	case "/help":
		err = b.cmdHelp(ctx, chatID)
	case "/prices":
		err = b.cmdPrices(ctx, chatID)
	case "/cached":
		err = b.cmdCached(ctx, chatID)
	case "/check":
		err = b.cmdCheck(ctx, chatID)
	case "/stations":
		err = b.cmdStations(ctx, chatID)
	case "/settarget":
		err = b.cmdSetTarget(ctx, chatID, args)
	case "/analytics":
		err = b.cmdAnalytics(ctx, chatID)
	case "/settings":
		err = b.cmdSettings(ctx, chatID)
	case "/stats":
		err = b.cmdStats(ctx, chatID)
	case "/backup":
		err = b.cmdBackup(ctx, chatID)
	case "/restore":
		err = b.cmdRestore(ctx, chatID)
	default:
		return
	}

	if err != nil {
		b.logger.Warn().Err(err).Str("command", command).Int64("chat_id", chatID).Msg("command failed")
		b.reply(ctx, chatID, "❌ Something went wrong, please try again.")
	}
}

// splitCommand separates the command word (with any @botname suffix removed)
// from its argument string.
func splitCommand(text string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	command := parts[0]
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	args := ""
	if len(parts) == 2 {
		args = strings.TrimSpace(parts[1])
	}
	return strings.ToLower(command), args
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.client.SendMessage(ctx, chatID, text, nil); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("reply failed")
	}
}

func (b *Bot) isAdmin(chatID int64) bool {
	return b.opts.AdminChatID != 0 && chatID == b.opts.AdminChatID
}

// subscriber loads the record for a chat, creating it with defaults on first
// interaction.
func (b *Bot) subscriber(chatID int64) (map[int64]*model.Subscriber, *model.Subscriber, error) {
	subscribers, err := b.store.LoadSubscribers()
	if err != nil {
		return nil, nil, err
	}
	sub, ok := subscribers[chatID]
	if !ok {
		sub = model.NewSubscriber()
		subscribers[chatID] = sub
	}
	return subscribers, sub, nil
}
