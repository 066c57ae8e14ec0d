// Package service ties the pipeline together: schedule gate, page fetch,
// price extraction, change detection, history retention and alert dispatch,
// executed as one poll cycle per timer tick or on-demand trigger.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fuel-price-tracker/internal/alerting"
	"fuel-price-tracker/internal/diff"
	"fuel-price-tracker/internal/extract"
	"fuel-price-tracker/internal/fetcher"
	"fuel-price-tracker/internal/history"
	"fuel-price-tracker/internal/model"
	"fuel-price-tracker/internal/schedule"
	"fuel-price-tracker/internal/storage"
)

// ErrCycleInProgress is returned when a trigger coalesces into an already
// running poll cycle.
var ErrCycleInProgress = errors.New("poll cycle already in progress")

// StationUpdate is the per-station outcome of one cycle, carried to the
// notification pass.
type StationUpdate struct {
	Station model.Station
	Reading model.Reading
	Changes []diff.ChangeNote
}

// CycleResult summarises one poll cycle.
type CycleResult struct {
	Polled  int
	Skipped int
	Failed  int
	Changed int
}

// Poller runs poll cycles against the shared state. All collaborators are
// injected; the poller holds no global state.
type Poller struct {
	store     storage.Store
	history   *history.Store
	fetcher   fetcher.PageFetcher
	extractor *extract.Extractor
	notifier  alerting.Notifier
	loc       *time.Location
	logger    zerolog.Logger
	now       func() time.Time

	// cycleMu makes the poll cycle single-flight: overlapping timer ticks
	// and on-demand triggers coalesce instead of racing on the history.
	cycleMu sync.Mutex
}

// New constructs a Poller.
func New(store storage.Store, hist *history.Store, pages fetcher.PageFetcher, extractor *extract.Extractor, notifier alerting.Notifier, loc *time.Location, logger zerolog.Logger) *Poller {
	if loc == nil {
		loc = time.UTC
	}
	return &Poller{
		store:     store,
		history:   hist,
		fetcher:   pages,
		extractor: extractor,
		notifier:  notifier,
		loc:       loc,
		logger:    logger.With().Str("component", "poller").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// History exposes the retained time series for read-only consumers
// (analytics, status surfaces).
func (p *Poller) History() *history.Store { return p.history }

// Stations returns the currently configured stations.
func (p *Poller) Stations() ([]model.Station, error) {
	return p.store.LoadStations()
}

// RunCycle executes one poll cycle. When a cycle is already running the call
// returns ErrCycleInProgress without doing any work.
func (p *Poller) RunCycle(ctx context.Context) (CycleResult, error) {
	if !p.cycleMu.TryLock() {
		return CycleResult{}, ErrCycleInProgress
	}
	defer p.cycleMu.Unlock()

	started := p.now()
	stations, err := p.store.LoadStations()
	if err != nil {
		return CycleResult{}, fmt.Errorf("load stations: %w", err)
	}

	var result CycleResult
	var updates []StationUpdate

	for _, station := range stations {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if !schedule.IsOpen(station, p.now().In(p.loc)) {
			p.logger.Debug().Str("station", station.Name).Msg("station closed, skipping")
			result.Skipped++
			continue
		}

		update, err := p.pollStation(ctx, station)
		if err != nil {
			// Transient by definition: the next cycle is the retry.
			p.logger.Warn().Err(err).Str("station", station.Name).Msg("station skipped this cycle")
			result.Failed++
			continue
		}

		result.Polled++
		if len(update.Changes) > 0 {
			result.Changed++
		}
		updates = append(updates, update)
	}

	if err := p.store.SaveHistory(p.history.Snapshot()); err != nil {
		p.logger.Error().Err(err).Msg("failed to persist history")
	}

	p.dispatchAlerts(ctx, updates)

	p.logger.Info().
		Int("polled", result.Polled).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Int("changed", result.Changed).
		Dur("elapsed", p.now().Sub(started)).
		Msg("poll cycle complete")

	return result, nil
}

// pollStation runs the read-diff-append-prune sequence for one station. The
// sequence stays serialized so the diff always sees the previous head.
func (p *Poller) pollStation(ctx context.Context, station model.Station) (StationUpdate, error) {
	page, err := p.fetcher.FetchPage(ctx, station.URL)
	if err != nil {
		return StationUpdate{}, err
	}

	reading := p.extractor.Extract(page, station.URL)
	if station.Name != "" {
		// Configured display names win over whatever the page claims.
		reading.Name = station.Name
	}

	var previous *model.Reading
	if prev, ok := p.history.Latest(station.URL); ok {
		previous = &prev
	}
	changes := diff.Changes(previous, reading)

	p.history.Append(station.URL, reading)
	p.history.Prune(station.URL, history.RetentionWindow, p.now())

	return StationUpdate{Station: station, Reading: reading, Changes: changes}, nil
}

// dispatchAlerts runs the alert engine for every subscriber against every
// fresh reading. A delivery failure to one recipient never aborts the rest.
func (p *Poller) dispatchAlerts(ctx context.Context, updates []StationUpdate) {
	if p.notifier == nil || len(updates) == 0 {
		return
	}

	subscribers, err := p.store.LoadSubscribers()
	if err != nil {
		p.logger.Error().Err(err).Msg("load subscribers failed, no alerts this cycle")
		return
	}
	if len(subscribers) == 0 {
		return
	}

	for _, update := range updates {
		for chatID, sub := range subscribers {
			if !sub.Notifications {
				continue
			}

			for _, ev := range alerting.EvaluateReading(sub, update.Reading) {
				p.send(ctx, chatID, alerting.RenderTargetAlert(ev))
			}

			if sub.NotifyChanges && len(update.Changes) > 0 {
				p.send(ctx, chatID, alerting.RenderChangeNote(update.Reading.Name, update.Changes))
			}
		}
	}

	if err := p.store.SaveSubscribers(subscribers); err != nil {
		p.logger.Error().Err(err).Msg("failed to persist subscriber alert state")
	}
}

func (p *Poller) send(ctx context.Context, chatID int64, text string) {
	if err := p.notifier.Notify(ctx, chatID, text); err != nil {
		p.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("notification failed")
	}
}

// Tick adapts RunCycle to the scheduler, downgrading a coalesced cycle to a
// debug log instead of an error.
func (p *Poller) Tick(ctx context.Context, _ time.Time) error {
	_, err := p.RunCycle(ctx)
	if errors.Is(err, ErrCycleInProgress) {
		p.logger.Debug().Msg("tick coalesced into running cycle")
		return nil
	}
	return err
}

// SimulateReading injects a synthetic reading through the change/alert path
// without touching the network. Used by the simulate-alert CLI to verify
// notification wiring end to end.
func (p *Poller) SimulateReading(ctx context.Context, reading model.Reading) ([]diff.ChangeNote, error) {
	if !p.cycleMu.TryLock() {
		return nil, ErrCycleInProgress
	}
	defer p.cycleMu.Unlock()

	var previous *model.Reading
	if prev, ok := p.history.Latest(reading.URL); ok {
		previous = &prev
	}
	changes := diff.Changes(previous, reading)

	p.history.Append(reading.URL, reading)
	p.history.Prune(reading.URL, history.RetentionWindow, p.now())

	if err := p.store.SaveHistory(p.history.Snapshot()); err != nil {
		return changes, fmt.Errorf("persist history: %w", err)
	}

	p.dispatchAlerts(ctx, []StationUpdate{{Reading: reading, Changes: changes}})
	return changes, nil
}
