package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fuel-price-tracker/internal/analytics"
	"fuel-price-tracker/internal/model"
	"fuel-price-tracker/internal/telegram"
)

func renderStationPrices(station model.Station, latest model.Reading, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📍 *Station %s - %s*\n", latest.StationID, station.Name))
	age := time.Since(latest.Timestamp).Round(time.Minute)
	sb.WriteString(fmt.Sprintf("   _%s (%s ago)_\n", latest.Timestamp.In(loc).Format("02.01.2006 15:04"), age))
	for _, fuel := range model.FuelTypes {
		if price := latest.Prices.Get(fuel); price != nil {
			sb.WriteString(fmt.Sprintf("   💰 %s: %s€\n", fuel.Label(), price.String()))
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderAnalysis(station model.Station, analyzer *analytics.Analyzer, fuel model.FuelType) string {
	pattern, err := analyzer.Analyze(station.URL, fuel)
	if err != nil {
		var insufficient analytics.InsufficientData
		if errors.As(err, &insufficient) {
			return fmt.Sprintf("📍 *%s*\nNot enough data yet (%d of %d readings this week)\n\n",
				station.Name, insufficient.Observations, insufficient.Required)
		}
		return fmt.Sprintf("📍 *%s*\nAnalysis unavailable\n\n", station.Name)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📍 *%s*\n📈 Readings: %d\n\n", station.Name, pattern.Observations))
	sb.WriteString(fmt.Sprintf("🏆 *Best day:* %s (avg %s€)\n", pattern.BestDay.Day, pattern.BestDay.AvgPrice.StringFixed(3)))
	sb.WriteString(fmt.Sprintf("⏰ *Best hour:* %d:00 (avg %s€)\n\n", pattern.BestHour.Hour, pattern.BestHour.AvgPrice.StringFixed(3)))
	if len(pattern.TopSlots) > 0 {
		sb.WriteString("🎯 *Top time slots:*\n")
		for i, slot := range pattern.TopSlots {
			sb.WriteString(fmt.Sprintf("%d. %s at %d:00 - %s€\n", i+1, slot.Day, slot.Hour, slot.AvgPrice.StringFixed(3)))
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderSettings(sub *model.Subscriber) string {
	var sb strings.Builder
	sb.WriteString("⚙️ *Settings*\n\n")
	sb.WriteString(fmt.Sprintf("Analytics fuel: *%s*\n\n", sub.SelectedFuel.Label()))

	var targets []string
	for _, fuel := range model.FuelTypes {
		if target := sub.Targets.Get(fuel); target != nil {
			targets = append(targets, fmt.Sprintf("%s: %s€", fuel.Label(), target.String()))
		}
	}
	if len(targets) > 0 {
		sb.WriteString("🎯 *Target prices:*\n")
		sb.WriteString(strings.Join(targets, "\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}

func settingsKeyboard(sub *model.Subscriber) *telegram.InlineKeyboard {
	notifications := "🔕 Notifications: OFF"
	if sub.Notifications {
		notifications = "🔔 Notifications: ON"
	}
	changes := "📊 All changes: OFF"
	if sub.NotifyChanges {
		changes = "📊 All changes: ON"
	}

	return &telegram.InlineKeyboard{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: notifications, CallbackData: callbackToggleNotifications}},
			{{Text: changes, CallbackData: callbackToggleChanges}},
			{
				{Text: "Diesel", CallbackData: callbackFuelPrefix + string(model.FuelDiesel)},
				{Text: "E5", CallbackData: callbackFuelPrefix + string(model.FuelE5)},
				{Text: "E10", CallbackData: callbackFuelPrefix + string(model.FuelE10)},
			},
		},
	}
}
