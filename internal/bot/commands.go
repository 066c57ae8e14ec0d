package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fuel-price-tracker/internal/backup"
	"fuel-price-tracker/internal/model"
	"fuel-price-tracker/internal/service"
)

func (b *Bot) cmdStart(ctx context.Context, chatID int64) error {
	subscribers, _, err := b.subscriber(chatID)
	if err != nil {
		return err
	}
	if err := b.store.SaveSubscribers(subscribers); err != nil {
		return err
	}

	return b.client.SendMessage(ctx, chatID,
		"⛽ *Fuel Price Tracker*\n\n"+
			"📊 *Commands:*\n"+
			"/prices - Current prices (live)\n"+
			"/cached - Last known prices\n"+
			"/check - Poll now\n"+
			"/analytics - Best time to refuel\n"+
			"/stats - Database statistics\n\n"+
			"🎯 *Alerts:*\n"+
			"/settarget - Set a target price\n"+
			"/settings - Preferences\n\n"+
			"/help - Detailed help", nil)
}

func (b *Bot) cmdHelp(ctx context.Context, chatID int64) error {
	return b.client.SendMessage(ctx, chatID,
		"📖 *Help*\n\n"+
			"`/settarget diesel 1.76` alerts you once diesel drops to 1.76€ or below. "+
			"After an alert, you are only notified again when the price falls further; "+
			"once it climbs back above your target the alert re-arms.\n\n"+
			"`/settings` toggles notifications, opts into raw change alerts and picks the "+
			"fuel used by `/analytics`.\n\n"+
			"Prices are checked every few minutes during station opening hours; history "+
			"is kept for 14 days and `/analytics` evaluates the last 7.", nil)
}

func (b *Bot) cmdPrices(ctx context.Context, chatID int64) error {
	b.reply(ctx, chatID, "🔄 Checking current prices...")

	if _, err := b.poller.RunCycle(ctx); err != nil && !errors.Is(err, service.ErrCycleInProgress) {
		return err
	}
	return b.sendPriceList(ctx, chatID, "⛽ *Current prices:*")
}

func (b *Bot) cmdCached(ctx context.Context, chatID int64) error {
	return b.sendPriceList(ctx, chatID, "💾 *Last known prices:*\n_No live refresh_")
}

func (b *Bot) sendPriceList(ctx context.Context, chatID int64, header string) error {
	stations, err := b.poller.Stations()
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(header + "\n\n")
	for _, station := range stations {
		latest, ok := b.poller.History().Latest(station.URL)
		if !ok {
			sb.WriteString(fmt.Sprintf("📍 *%s*\n   _no data yet_\n\n", station.Name))
			continue
		}
		sb.WriteString(renderStationPrices(station, latest, b.loc))
	}
	return b.client.SendMessage(ctx, chatID, sb.String(), nil)
}

func (b *Bot) cmdCheck(ctx context.Context, chatID int64) error {
	b.reply(ctx, chatID, "🔍 Checking prices...")

	result, err := b.poller.RunCycle(ctx)
	if errors.Is(err, service.ErrCycleInProgress) {
		b.reply(ctx, chatID, "⏳ A check is already running.")
		return nil
	}
	if err != nil {
		return err
	}

	if result.Changed == 0 {
		b.reply(ctx, chatID, "✅ No changes")
	} else {
		b.reply(ctx, chatID, fmt.Sprintf("✅ Updated: %d station(s) changed", result.Changed))
	}
	return nil
}

func (b *Bot) cmdStations(ctx context.Context, chatID int64) error {
	stations, err := b.poller.Stations()
	if err != nil {
		return err
	}

	lines := make([]string, 0, len(stations)+1)
	lines = append(lines, "📋 *Tracked stations:*\n")
	for i, station := range stations {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, station.Name))
	}
	return b.client.SendMessage(ctx, chatID, strings.Join(lines, "\n"), nil)
}

func (b *Bot) cmdSetTarget(ctx context.Context, chatID int64, args string) error {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		b.reply(ctx, chatID, "❌ Wrong format!\n\nUse: `/settarget diesel 1.76`\nor: `/settarget e5 1.80`")
		return nil
	}

	fuel, err := model.ParseFuelType(parts[0])
	if err != nil {
		b.reply(ctx, chatID, "❌ Fuel type must be diesel, e5 or e10")
		return nil
	}

	price, err := decimal.NewFromString(strings.ReplaceAll(parts[1], ",", "."))
	if err != nil || !price.IsPositive() {
		b.reply(ctx, chatID, "❌ Invalid price!")
		return nil
	}

	subscribers, sub, err := b.subscriber(chatID)
	if err != nil {
		return err
	}
	sub.Targets.Set(fuel, price)
	if err := b.store.SaveSubscribers(subscribers); err != nil {
		return err
	}

	return b.client.SendMessage(ctx, chatID, fmt.Sprintf(
		"✅ Target price set!\n\n🎯 %s: %s€\n\nYou'll be notified once the price drops to this level or below.",
		fuel.Label(), price.String()), nil)
}

func (b *Bot) cmdAnalytics(ctx context.Context, chatID int64) error {
	_, sub, err := b.subscriber(chatID)
	if err != nil {
		return err
	}
	fuel := sub.SelectedFuel

	b.reply(ctx, chatID, "📊 Analysing the last week...")

	stations, err := b.poller.Stations()
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *Best time to refuel*\n_Fuel: %s, window: 7 days_\n\n", fuel.Label()))
	for _, station := range stations {
		sb.WriteString(renderAnalysis(station, b.analyzer, fuel))
	}
	sb.WriteString("💡 _Based on the last 7 days (14 days retained)_")

	return b.client.SendMessage(ctx, chatID, sb.String(), nil)
}

func (b *Bot) cmdSettings(ctx context.Context, chatID int64) error {
	subscribers, sub, err := b.subscriber(chatID)
	if err != nil {
		return err
	}
	if err := b.store.SaveSubscribers(subscribers); err != nil {
		return err
	}
	return b.client.SendMessage(ctx, chatID, renderSettings(sub), settingsKeyboard(sub))
}

func (b *Bot) cmdStats(ctx context.Context, chatID int64) error {
	stations, err := b.poller.Stations()
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("📊 *Database statistics*\n\n")
	for _, station := range stations {
		count := b.poller.History().Count(station.URL)
		if count == 0 {
			continue
		}
		latest, _ := b.poller.History().Latest(station.URL)
		sb.WriteString(fmt.Sprintf("📍 *%s*\n   Readings: %d\n   Latest: %s\n\n",
			station.Name, count, latest.Timestamp.In(b.loc).Format("02.01.2006 15:04")))
	}

	stats := b.poller.History().Stats()
	sb.WriteString(fmt.Sprintf("📈 Total readings: %d\n", stats.TotalReadings))
	sb.WriteString("🧹 Retention: last 14 days")

	return b.client.SendMessage(ctx, chatID, sb.String(), nil)
}

func (b *Bot) cmdBackup(ctx context.Context, chatID int64) error {
	if !b.isAdmin(chatID) {
		b.reply(ctx, chatID, "❌ You are not allowed to run this command")
		return nil
	}
	if b.backups == nil {
		b.reply(ctx, chatID, "❌ Backup is not configured")
		return nil
	}

	b.reply(ctx, chatID, "🔄 Creating backup snapshot...")
	name, files, err := b.backups.Snapshot()
	if err != nil {
		return err
	}
	return b.client.SendMessage(ctx, chatID, fmt.Sprintf(
		"✅ *Backup complete*\n\n📊 Snapshot: `%s`\n📁 Files: %d", name, files), nil)
}

func (b *Bot) cmdRestore(ctx context.Context, chatID int64) error {
	if !b.isAdmin(chatID) {
		b.reply(ctx, chatID, "❌ You are not allowed to run this command")
		return nil
	}
	if b.backups == nil {
		b.reply(ctx, chatID, "❌ Backup is not configured")
		return nil
	}

	b.reply(ctx, chatID, "🔄 Restoring latest snapshot...")
	name, files, err := b.backups.Restore()
	if errors.Is(err, backup.ErrNoSnapshots) {
		b.reply(ctx, chatID, "❌ No snapshots available")
		return nil
	}
	if err != nil {
		return err
	}

	// Restored files replace the on-disk state; the in-memory history is
	// reloaded so subsequent commands see the restored data.
	if data, err := b.store.LoadHistory(); err == nil {
		b.poller.History().Load(data)
	}

	return b.client.SendMessage(ctx, chatID, fmt.Sprintf(
		"✅ *Restore complete*\n\n📊 Snapshot: `%s`\n📁 Files: %d", name, files), nil)
}
