package alerting

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"fuel-price-tracker/internal/diff"
	"fuel-price-tracker/internal/telegram"
)

// Notifier delivers free-form text to one subscriber. Failures are
// per-recipient; the caller continues with the remaining subscribers.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// TelegramNotifier delivers alerts through the Bot API.
type TelegramNotifier struct {
	client *telegram.Client
	logger zerolog.Logger
}

// NewTelegramNotifier wraps a telegram client as a Notifier.
func NewTelegramNotifier(client *telegram.Client, logger zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		client: client,
		logger: logger.With().Str("component", "alert_notifier").Logger(),
	}
}

// Notify sends one alert message.
func (n *TelegramNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	if err := n.client.SendMessage(ctx, chatID, text, nil); err != nil {
		return fmt.Errorf("notify chat %d: %w", chatID, err)
	}
	n.logger.Debug().Int64("chat_id", chatID).Msg("alert delivered")
	return nil
}

var _ Notifier = (*TelegramNotifier)(nil)

// RenderTargetAlert formats one target-hit event.
func RenderTargetAlert(ev Event) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⛽ *%s*\n\n", ev.StationName))
	sb.WriteString(fmt.Sprintf("🎯 %s hit your target price!\n", ev.Fuel.Label()))
	sb.WriteString(fmt.Sprintf("💰 %s€ (target: %s€)", ev.Price.String(), ev.Target.String()))
	return sb.String()
}

// RenderChangeNote formats the raw price movements of one station for
// subscribers that opted into change notifications.
func RenderChangeNote(stationName string, notes []diff.ChangeNote) string {
	lines := make([]string, 0, len(notes)+1)
	lines = append(lines, fmt.Sprintf("⛽ *%s*\n\n📊 Price changes:", stationName))
	for _, note := range notes {
		lines = append(lines, note.Text)
	}
	return strings.Join(lines, "\n")
}
