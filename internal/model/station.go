package model

import (
	"regexp"
	"time"
)

// OpeningHours describes when a station can be polled. Slots use the form
// "H:MM-H:MM" (hours 0-23, padded or not). A missing slot means "open".
type OpeningHours struct {
	Is24h  bool   `json:"is24h,omitempty"`
	MonFri string `json:"monFri,omitempty"`
	Sat    string `json:"sat,omitempty"`
	Sun    string `json:"sun,omitempty"`
}

// SlotFor selects the schedule string for the weekday group containing day.
func (h OpeningHours) SlotFor(day time.Weekday) string {
	switch day {
	case time.Saturday:
		return h.Sat
	case time.Sunday:
		return h.Sun
	default:
		return h.MonFri
	}
}

// Station is an externally configured tracking target. Identity is the URL.
type Station struct {
	Name         string        `json:"name"`
	URL          string        `json:"url"`
	OpeningHours *OpeningHours `json:"openingHours,omitempty"`
}

var stationIDPattern = regexp.MustCompile(`/(\d+)/?$`)

// ID extracts the numeric station id from the trailing path segment of the
// URL, or "" when the URL carries none.
func (s Station) ID() string {
	return StationIDFromURL(s.URL)
}

// StationIDFromURL extracts the numeric trailing path segment of a station URL.
func StationIDFromURL(url string) string {
	m := stationIDPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}
