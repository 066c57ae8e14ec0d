package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fuel-price-tracker/internal/model"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func writeFile(t *testing.T, store *FileStore, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(store.Dir(), name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestMissingFilesYieldDefaults(t *testing.T) {
	store := newTestStore(t)

	stations, err := store.LoadStations()
	if err != nil || stations != nil {
		t.Fatalf("stations = %v, %v", stations, err)
	}

	hist, err := store.LoadHistory()
	if err != nil || len(hist) != 0 {
		t.Fatalf("history = %v, %v", hist, err)
	}

	subs, err := store.LoadSubscribers()
	if err != nil || len(subs) != 0 {
		t.Fatalf("subscribers = %v, %v", subs, err)
	}
}

func TestMalformedFilesYieldDefaults(t *testing.T) {
	store := newTestStore(t)
	writeFile(t, store, "stations.json", "{not json")
	writeFile(t, store, "history.json", "[1,2")
	writeFile(t, store, "subscribers.json", "nope")

	if stations, err := store.LoadStations(); err != nil || len(stations) != 0 {
		t.Fatalf("stations = %v, %v", stations, err)
	}
	if hist, err := store.LoadHistory(); err != nil || len(hist) != 0 {
		t.Fatalf("history = %v, %v", hist, err)
	}
	if subs, err := store.LoadSubscribers(); err != nil || len(subs) != 0 {
		t.Fatalf("subscribers = %v, %v", subs, err)
	}
}

func TestLoadStationsValidation(t *testing.T) {
	store := newTestStore(t)
	writeFile(t, store, "stations.json", `[
		{"name": "No URL"},
		{"name": "Good", "url": "https://example.org/1",
		 "openingHours": {"monFri": "6:00-22:00", "sat": "22:00-6:00"}}
	]`)

	stations, err := store.LoadStations()
	if err != nil {
		t.Fatalf("LoadStations: %v", err)
	}
	if len(stations) != 1 {
		t.Fatalf("stations = %d, want 1", len(stations))
	}

	st := stations[0]
	if st.Name != "Good" {
		t.Fatalf("name = %q", st.Name)
	}
	if st.OpeningHours.MonFri != "6:00-22:00" {
		t.Fatalf("monFri = %q", st.OpeningHours.MonFri)
	}
	// Overnight saturday slot is invalid and must be cleared, fail-open.
	if st.OpeningHours.Sat != "" {
		t.Fatalf("sat should be cleared, got %q", st.OpeningHours.Sat)
	}
}

func TestLoadHistoryScrubbing(t *testing.T) {
	store := newTestStore(t)
	writeFile(t, store, "history.json", `{
		"https://example.org/1": [
			{"id": "1", "url": "https://example.org/1",
			 "prices": {"diesel": "1.759", "e5": "17.59", "e10": null},
			 "timestamp": "2025-06-02T10:00:00Z"},
			{"id": "1", "url": "https://example.org/1",
			 "prices": {"diesel": "1.70", "e5": null, "e10": null},
			 "timestamp": "0001-01-01T00:00:00Z"}
		]
	}`)

	hist, err := store.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}

	readings := hist["https://example.org/1"]
	if len(readings) != 1 {
		t.Fatalf("readings = %d, want 1 (zero timestamp dropped)", len(readings))
	}
	r := readings[0]
	if r.Prices.Diesel == nil || !r.Prices.Diesel.Equal(decimal.RequireFromString("1.759")) {
		t.Fatalf("diesel = %v", r.Prices.Diesel)
	}
	if r.Prices.E5 != nil {
		t.Fatalf("out-of-bound e5 should be cleared, got %v", r.Prices.E5)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	store := newTestStore(t)

	v := decimal.RequireFromString("1.759")
	data := map[string][]model.Reading{
		"https://example.org/1": {
			{
				StationID: "1",
				Name:      "Aral",
				URL:       "https://example.org/1",
				Prices:    model.Prices{Diesel: &v},
				Timestamp: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
			},
		},
	}

	if err := store.SaveHistory(data); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}

	loaded, err := store.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	readings := loaded["https://example.org/1"]
	if len(readings) != 1 {
		t.Fatalf("readings = %d", len(readings))
	}
	if readings[0].Name != "Aral" || !readings[0].Prices.Diesel.Equal(v) {
		t.Fatalf("reading = %+v", readings[0])
	}

	// No stray temp file left behind.
	if _, err := os.Stat(filepath.Join(store.Dir(), "history.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file still present: %v", err)
	}
}

func TestSubscribersRoundTripAndNormalize(t *testing.T) {
	store := newTestStore(t)

	target := decimal.RequireFromString("1.76")
	subs := map[int64]*model.Subscriber{
		42: {
			Notifications: true,
			Targets:       model.Prices{Diesel: &target},
			SelectedFuel:  "kerosene",
		},
	}

	if err := store.SaveSubscribers(subs); err != nil {
		t.Fatalf("SaveSubscribers: %v", err)
	}

	loaded, err := store.LoadSubscribers()
	if err != nil {
		t.Fatalf("LoadSubscribers: %v", err)
	}
	sub := loaded[42]
	if sub == nil {
		t.Fatal("subscriber 42 missing")
	}
	if sub.SelectedFuel != model.FuelDiesel {
		t.Fatalf("unknown fuel selection must normalise to diesel, got %q", sub.SelectedFuel)
	}
	if sub.Targets.Diesel == nil || !sub.Targets.Diesel.Equal(target) {
		t.Fatalf("target = %v", sub.Targets.Diesel)
	}
}
