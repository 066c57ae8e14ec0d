package model

import "time"

// Reading is one timestamped price snapshot for one station. Readings are
// immutable once created; the history store owns them after insertion.
type Reading struct {
	StationID string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Prices    Prices    `json:"prices"`
	Timestamp time.Time `json:"timestamp"`
}

// Age returns how long ago the reading was taken.
func (r Reading) Age(now time.Time) time.Duration {
	return now.Sub(r.Timestamp)
}
