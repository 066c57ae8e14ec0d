package model

// Subscriber holds per-chat alert configuration and de-duplication state.
// Created on first interaction, mutated by settings commands and by the alert
// engine; never deleted here.
type Subscriber struct {
	// Notifications is the master switch for all outbound alerts.
	Notifications bool `json:"notifications"`
	// NotifyChanges opts into raw price-change notes on top of target alerts.
	NotifyChanges bool `json:"notifyChanges"`
	// Targets are optional per-grade price ceilings.
	Targets Prices `json:"targets"`
	// SelectedFuel scopes the analytics report. Defaults to diesel.
	SelectedFuel FuelType `json:"fuelType"`
	// LastAlerts remembers, per station URL, the price at which a target
	// alert was last sent for each grade. A nil entry means the alert is
	// armed (price above target, or never alerted).
	LastAlerts map[string]*Prices `json:"lastAlerts,omitempty"`
}

// NewSubscriber returns the default configuration for a first interaction.
func NewSubscriber() *Subscriber {
	return &Subscriber{
		Notifications: true,
		NotifyChanges: false,
		SelectedFuel:  FuelDiesel,
	}
}

// Normalize repairs a subscriber loaded from storage: zero-value fields from
// older or hand-edited records fall back to safe defaults.
func (s *Subscriber) Normalize() {
	if s.SelectedFuel != FuelDiesel && s.SelectedFuel != FuelE5 && s.SelectedFuel != FuelE10 {
		s.SelectedFuel = FuelDiesel
	}
}

// AlertState returns the last-alert record for a station, creating it on
// first use.
func (s *Subscriber) AlertState(stationURL string) *Prices {
	if s.LastAlerts == nil {
		s.LastAlerts = make(map[string]*Prices)
	}
	state, ok := s.LastAlerts[stationURL]
	if !ok || state == nil {
		state = &Prices{}
		s.LastAlerts[stationURL] = state
	}
	return state
}
