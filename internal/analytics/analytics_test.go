package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fuel-price-tracker/internal/history"
	"fuel-price-tracker/internal/model"
)

const stationURL = "https://example.org/100"

func fill(s *history.Store, ts time.Time, diesel string) {
	v := decimal.RequireFromString(diesel)
	s.Append(stationURL, model.Reading{
		StationID: "100",
		URL:       stationURL,
		Prices:    model.Prices{Diesel: &v},
		Timestamp: ts,
	})
}

func newAnalyzer(s *history.Store, now time.Time) *Analyzer {
	a := New(s, time.UTC)
	a.now = func() time.Time { return now }
	return a
}

func TestAnalyzeInsufficientData(t *testing.T) {
	now := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	s := history.NewStore()
	for i := 0; i < MinObservations-1; i++ {
		fill(s, now.Add(-time.Duration(i)*time.Hour), "1.70")
	}

	_, err := newAnalyzer(s, now).Analyze(stationURL, model.FuelDiesel)
	var insufficient InsufficientData
	if !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientData, got %v", err)
	}
	if insufficient.Observations != MinObservations-1 || insufficient.Required != MinObservations {
		t.Fatalf("counts = %+v", insufficient)
	}
}

func TestAnalyzeUnpricedReadingsDoNotCount(t *testing.T) {
	now := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	s := history.NewStore()
	for i := 0; i < MinObservations+5; i++ {
		s.Append(stationURL, model.Reading{
			URL:       stationURL,
			Timestamp: now.Add(-time.Duration(i) * time.Hour),
		})
	}

	_, err := newAnalyzer(s, now).Analyze(stationURL, model.FuelDiesel)
	var insufficient InsufficientData
	if !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientData, got %v", err)
	}
	if insufficient.Observations != 0 {
		t.Fatalf("observations = %d, want 0", insufficient.Observations)
	}
}

func TestAnalyzeBestBuckets(t *testing.T) {
	// Monday 2025-06-09. Build a window where Tuesday at 20:00 is clearly
	// the cheapest slot and 20:00 the cheapest hour overall.
	now := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	s := history.NewStore()

	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	// Monday: expensive all day, hourly at 10:00 and 14:00.
	for i := 0; i < 10; i++ {
		fill(s, monday.Add(time.Duration(10+i)*time.Hour), "1.80")
	}
	// Tuesday daytime: mid-range.
	for i := 0; i < 7; i++ {
		fill(s, tuesday.Add(time.Duration(10+i)*time.Hour), "1.74")
	}
	// Tuesday evening: cheap, three observations in the 20:00 slot.
	for i := 0; i < 3; i++ {
		fill(s, tuesday.Add(20*time.Hour).Add(time.Duration(i)*time.Minute), "1.64")
	}

	pattern, err := newAnalyzer(s, now).Analyze(stationURL, model.FuelDiesel)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if pattern.Observations != 20 {
		t.Fatalf("observations = %d", pattern.Observations)
	}
	if pattern.BestDay.Day != time.Tuesday {
		t.Fatalf("best day = %s", pattern.BestDay.Day)
	}
	if pattern.BestHour.Hour != 20 {
		t.Fatalf("best hour = %d", pattern.BestHour.Hour)
	}
	if !pattern.BestHour.AvgPrice.Equal(decimal.RequireFromString("1.64")) {
		t.Fatalf("best hour avg = %s", pattern.BestHour.AvgPrice)
	}

	if len(pattern.TopSlots) == 0 {
		t.Fatal("expected ranked slots")
	}
	best := pattern.TopSlots[0]
	if best.Day != time.Tuesday || best.Hour != 20 {
		t.Fatalf("best slot = %+v", best)
	}
	if best.Observations != 3 {
		t.Fatalf("best slot observations = %d", best.Observations)
	}
	for i := 1; i < len(pattern.TopSlots); i++ {
		if pattern.TopSlots[i].AvgPrice.LessThan(pattern.TopSlots[i-1].AvgPrice) {
			t.Fatalf("slots not sorted ascending at %d", i)
		}
	}
}

func TestAnalyzeSlotNoiseFloor(t *testing.T) {
	now := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	s := history.NewStore()

	wednesday := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	// 24 observations spread one per hour: every slot has a single reading,
	// below the slot noise floor.
	for i := 0; i < 24; i++ {
		fill(s, wednesday.Add(time.Duration(i)*time.Hour), "1.70")
	}

	pattern, err := newAnalyzer(s, now).Analyze(stationURL, model.FuelDiesel)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(pattern.TopSlots) != 0 {
		t.Fatalf("slots below noise floor must be excluded, got %d", len(pattern.TopSlots))
	}
}

func TestAnalyzeRespectsWindow(t *testing.T) {
	now := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	s := history.NewStore()

	// Old cheap readings outside the analytics window must not count.
	for i := 0; i < 30; i++ {
		fill(s, now.Add(-8*24*time.Hour).Add(-time.Duration(i)*time.Hour), "1.10")
	}
	for i := 0; i < MinObservations; i++ {
		fill(s, now.Add(-time.Duration(i)*time.Hour), "1.80")
	}

	pattern, err := newAnalyzer(s, now).Analyze(stationURL, model.FuelDiesel)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if pattern.Observations != MinObservations {
		t.Fatalf("observations = %d, want %d", pattern.Observations, MinObservations)
	}
	if !pattern.BestDay.AvgPrice.Equal(decimal.RequireFromString("1.80")) {
		t.Fatalf("best day avg = %s", pattern.BestDay.AvgPrice)
	}
}
