package schedule

import (
	"testing"
	"time"

	"fuel-price-tracker/internal/model"
)

// mustTime builds a local timestamp on a fixed week: 2025-06-02 is a Monday.
func mustTime(t *testing.T, day time.Weekday, hh, mm int) time.Time {
	t.Helper()
	base := time.Date(2025, 6, 2, hh, mm, 0, 0, time.UTC)
	return base.AddDate(0, 0, int(day-time.Monday))
}

func station(hours *model.OpeningHours) model.Station {
	return model.Station{Name: "test", URL: "https://example.org/1", OpeningHours: hours}
}

func TestIsOpenFailOpen(t *testing.T) {
	at := mustTime(t, time.Monday, 3, 0)

	cases := []struct {
		name  string
		hours *model.OpeningHours
	}{
		{"no hours configured", nil},
		{"24h flag", &model.OpeningHours{Is24h: true}},
		{"empty slot for weekday", &model.OpeningHours{Sat: "8:00-20:00"}},
		{"malformed slot", &model.OpeningHours{MonFri: "whenever"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !IsOpen(station(tc.hours), at) {
				t.Fatal("expected open")
			}
		})
	}
}

func TestIsOpenBoundaries(t *testing.T) {
	hours := &model.OpeningHours{MonFri: "6:00-22:00"}

	cases := []struct {
		name string
		hh   int
		mm   int
		want bool
	}{
		{"before opening", 5, 59, false},
		{"at opening", 6, 0, true},
		{"midday", 12, 30, true},
		{"minute before close", 21, 59, true},
		{"at close", 22, 0, false},
		{"after close", 23, 15, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			at := mustTime(t, time.Wednesday, tc.hh, tc.mm)
			if got := IsOpen(station(hours), at); got != tc.want {
				t.Fatalf("IsOpen at %02d:%02d = %v, want %v", tc.hh, tc.mm, got, tc.want)
			}
		})
	}
}

func TestIsOpenWeekdayGroups(t *testing.T) {
	hours := &model.OpeningHours{
		MonFri: "6:00-22:00",
		Sat:    "8:00-20:00",
		Sun:    "9:00-18:00",
	}
	st := station(hours)

	if !IsOpen(st, mustTime(t, time.Friday, 7, 0)) {
		t.Fatal("friday 07:00 should be open")
	}
	if IsOpen(st, mustTime(t, time.Saturday, 7, 0)) {
		t.Fatal("saturday 07:00 should be closed")
	}
	if IsOpen(st, mustTime(t, time.Sunday, 8, 30)) {
		t.Fatal("sunday 08:30 should be closed")
	}
	if !IsOpen(st, mustTime(t, time.Sunday, 17, 59)) {
		t.Fatal("sunday 17:59 should be open")
	}
}

func TestValidateSlot(t *testing.T) {
	cases := []struct {
		name    string
		slot    string
		wantErr bool
	}{
		{"empty", "", false},
		{"padded", "06:00-22:00", false},
		{"unpadded", "6:00-22:00", false},
		{"overnight", "22:00-6:00", true},
		{"zero length", "8:00-8:00", true},
		{"garbage", "open late", true},
		{"hour out of range", "25:00-26:00", true},
		{"minute out of range", "6:61-8:00", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSlot(tc.slot)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateSlot(%q) err = %v, wantErr %v", tc.slot, err, tc.wantErr)
			}
		})
	}
}
