// Package schedule decides whether a station should be polled at a given
// instant based on its configured opening hours. Every ambiguous or malformed
// configuration resolves to "open": missing data must not silently stop
// tracking a station.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"fuel-price-tracker/internal/model"
)

var slotPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})-(\d{1,2}):(\d{2})$`)

// IsOpen reports whether the station is open at the given instant. The
// instant is evaluated in its own location; callers pick the station's zone.
func IsOpen(station model.Station, at time.Time) bool {
	hours := station.OpeningHours
	if hours == nil {
		return true
	}
	if hours.Is24h {
		return true
	}

	slot := hours.SlotFor(at.Weekday())
	if slot == "" {
		return true
	}

	open, close, err := parseSlot(slot)
	if err != nil {
		return true
	}

	current := at.Hour()*60 + at.Minute()
	return current >= open && current < close
}

// ValidateSlot checks an "H:MM-H:MM" slot at configuration load time.
// Overnight intervals (close <= open) are rejected rather than guessed at.
func ValidateSlot(slot string) error {
	if slot == "" {
		return nil
	}
	open, close, err := parseSlot(slot)
	if err != nil {
		return err
	}
	if close <= open {
		return fmt.Errorf("slot %q closes before it opens; overnight hours are not supported", slot)
	}
	return nil
}

func parseSlot(slot string) (openMinutes, closeMinutes int, err error) {
	m := slotPattern.FindStringSubmatch(slot)
	if m == nil {
		return 0, 0, fmt.Errorf("slot %q does not match H:MM-H:MM", slot)
	}

	openH, _ := strconv.Atoi(m[1])
	openM, _ := strconv.Atoi(m[2])
	closeH, _ := strconv.Atoi(m[3])
	closeM, _ := strconv.Atoi(m[4])

	if openH > 23 || closeH > 23 || openM > 59 || closeM > 59 {
		return 0, 0, fmt.Errorf("slot %q has out-of-range time", slot)
	}

	return openH*60 + openM, closeH*60 + closeM, nil
}
