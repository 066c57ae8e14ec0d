// Package analytics mines the retained price history for optimal purchase
// timing: mean prices per weekday, per hour of day and per (weekday, hour)
// slot over the trailing analytics window.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fuel-price-tracker/internal/history"
	"fuel-price-tracker/internal/model"
)

const (
	// MinObservations is the minimum number of priced readings in the
	// window before a pattern is reported at all.
	MinObservations = 20
	// MinSlotObservations is the noise floor for a (weekday, hour) slot to
	// enter the best-slot ranking.
	MinSlotObservations = 3
	// TopSlots is the length of the best-slot ranking.
	TopSlots = 5
)

// DayStat is the mean price of one weekday.
type DayStat struct {
	Day      time.Weekday
	AvgPrice decimal.Decimal
}

// HourStat is the mean price of one hour of day.
type HourStat struct {
	Hour     int
	AvgPrice decimal.Decimal
}

// Slot is the mean price of one (weekday, hour) bucket.
type Slot struct {
	Day          time.Weekday
	Hour         int
	AvgPrice     decimal.Decimal
	Observations int
}

// WeeklyPattern is the full analysis result for one station and grade.
type WeeklyPattern struct {
	BestDay      DayStat
	BestHour     HourStat
	TopSlots     []Slot
	Observations int
	Window       time.Duration
}

// InsufficientData is reported when the window holds fewer than
// MinObservations priced readings. It is a typed outcome, not a failure.
type InsufficientData struct {
	Observations int
	Required     int
}

func (e InsufficientData) Error() string {
	return "not enough history yet for analysis"
}

// bucket accumulates prices in insertion order so that ties resolve
// deterministically within one run.
type bucket struct {
	sum   decimal.Decimal
	count int
}

func (b *bucket) add(v decimal.Decimal) {
	b.sum = b.sum.Add(v)
	b.count++
}

func (b *bucket) mean() decimal.Decimal {
	return b.sum.DivRound(decimal.NewFromInt(int64(b.count)), 3)
}

// Analyzer runs pattern analysis against the history store.
type Analyzer struct {
	store *history.Store
	loc   *time.Location
	now   func() time.Time
}

// New constructs an Analyzer. Bucketing happens in the given location, since
// "hour of day" only makes sense in the stations' local time.
func New(store *history.Store, loc *time.Location) *Analyzer {
	if loc == nil {
		loc = time.UTC
	}
	return &Analyzer{store: store, loc: loc, now: time.Now}
}

// Analyze aggregates the trailing-window history of one station for one
// grade. The history store is never mutated.
func (a *Analyzer) Analyze(stationURL string, fuel model.FuelType) (*WeeklyPattern, error) {
	readings := a.store.Windowed(stationURL, history.AnalyticsWindow, a.now())

	type slotKey struct {
		day  time.Weekday
		hour int
	}

	byDay := make(map[time.Weekday]*bucket)
	byHour := make(map[int]*bucket)
	bySlot := make(map[slotKey]*bucket)
	var dayOrder []time.Weekday
	var hourOrder []int
	var slotOrder []slotKey

	observations := 0
	for _, r := range readings {
		price := r.Prices.Get(fuel)
		if price == nil {
			continue
		}
		observations++

		local := r.Timestamp.In(a.loc)
		day := local.Weekday()
		hour := local.Hour()

		if byDay[day] == nil {
			byDay[day] = &bucket{}
			dayOrder = append(dayOrder, day)
		}
		byDay[day].add(*price)

		if byHour[hour] == nil {
			byHour[hour] = &bucket{}
			hourOrder = append(hourOrder, hour)
		}
		byHour[hour].add(*price)

		key := slotKey{day, hour}
		if bySlot[key] == nil {
			bySlot[key] = &bucket{}
			slotOrder = append(slotOrder, key)
		}
		bySlot[key].add(*price)
	}

	if observations < MinObservations {
		return nil, InsufficientData{Observations: observations, Required: MinObservations}
	}

	pattern := &WeeklyPattern{
		Observations: observations,
		Window:       history.AnalyticsWindow,
	}

	for i, day := range dayOrder {
		mean := byDay[day].mean()
		if i == 0 || mean.LessThan(pattern.BestDay.AvgPrice) {
			pattern.BestDay = DayStat{Day: day, AvgPrice: mean}
		}
	}

	for i, hour := range hourOrder {
		mean := byHour[hour].mean()
		if i == 0 || mean.LessThan(pattern.BestHour.AvgPrice) {
			pattern.BestHour = HourStat{Hour: hour, AvgPrice: mean}
		}
	}

	slots := make([]Slot, 0, len(slotOrder))
	for _, key := range slotOrder {
		b := bySlot[key]
		if b.count < MinSlotObservations {
			continue
		}
		slots = append(slots, Slot{
			Day:          key.day,
			Hour:         key.hour,
			AvgPrice:     b.mean(),
			Observations: b.count,
		})
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].AvgPrice.LessThan(slots[j].AvgPrice)
	})
	if len(slots) > TopSlots {
		slots = slots[:TopSlots]
	}
	pattern.TopSlots = slots

	return pattern, nil
}
