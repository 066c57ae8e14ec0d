package bot

import (
	"context"
	"strings"

	"fuel-price-tracker/internal/model"
	"fuel-price-tracker/internal/telegram"
)

const (
	callbackToggleNotifications = "toggle_notifications"
	callbackToggleChanges       = "toggle_changes"
	callbackFuelPrefix          = "fuel_"
)

// handleCallback processes inline keyboard presses from the settings
// message, applying the change and refreshing the message in place.
func (b *Bot) handleCallback(ctx context.Context, query telegram.CallbackQuery) {
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	subscribers, sub, err := b.subscriber(chatID)
	if err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("callback: load subscriber failed")
		return
	}

	var toast string
	switch {
	case query.Data == callbackToggleNotifications:
		sub.Notifications = !sub.Notifications
		if sub.Notifications {
			toast = "🔔 Notifications on"
		} else {
			toast = "🔕 Notifications off"
		}
	case query.Data == callbackToggleChanges:
		sub.NotifyChanges = !sub.NotifyChanges
		if sub.NotifyChanges {
			toast = "📊 All change alerts on"
		} else {
			toast = "📊 Target alerts only"
		}
	case strings.HasPrefix(query.Data, callbackFuelPrefix):
		fuel, err := model.ParseFuelType(strings.TrimPrefix(query.Data, callbackFuelPrefix))
		if err != nil {
			return
		}
		sub.SelectedFuel = fuel
		toast = "Fuel selected: " + fuel.Label()
	default:
		return
	}

	if err := b.store.SaveSubscribers(subscribers); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("callback: save subscriber failed")
		return
	}

	if err := b.client.AnswerCallbackQuery(ctx, query.ID, toast); err != nil {
		b.logger.Debug().Err(err).Msg("answer callback failed")
	}
	if err := b.client.EditMessageText(ctx, chatID, query.Message.MessageID, renderSettings(sub), settingsKeyboard(sub)); err != nil {
		b.logger.Debug().Err(err).Msg("settings refresh failed")
	}
}
