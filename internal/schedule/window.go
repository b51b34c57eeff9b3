package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tewodrosm/scripture-notify/internal/model"
)

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	min, err := strconv.Atoi(m)
	if err != nil || min < 0 || min > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour*60 + min, nil
}

// InRange reports whether now falls inside the daily range, local
// wall-clock. Bounds are inclusive on both ends. Start > End wraps
// midnight; Start == End covers the whole day. A malformed range never
// matches.
func InRange(now time.Time, r model.TimeRange) bool {
	start, err := parseClock(r.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(r.End)
	if err != nil {
		return false
	}

	m := now.Hour()*60 + now.Minute()

	switch {
	case start == end:
		return true
	case start < end:
		return m >= start && m <= end
	default:
		// Overnight range, e.g. 22:00-06:00.
		return m >= start || m <= end
	}
}

// CanDeliver decides whether a notification may go out at now. Quiet
// hours are a hard gate. Working hours are advisory only: they feed the
// next-delivery estimate shown to the user but do not block delivery.
func CanDeliver(now time.Time, quiet, working model.TimeRange) bool {
	_ = working
	return !InRange(now, quiet)
}

// NextDeliveryEstimate is the display-only guess at when the next
// notification will arrive: one evaluation period from now, pushed past
// the end of quiet hours when that lands inside them.
func NextDeliveryEstimate(now time.Time, period time.Duration, quiet model.TimeRange) time.Time {
	next := now.Add(period)
	if !InRange(next, quiet) {
		return next
	}
	end, err := parseClock(quiet.End)
	if err != nil {
		return next
	}
	day := time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, next.Location())
	out := day.Add(time.Duration(end+1) * time.Minute)
	if !out.After(next) {
		out = out.Add(24 * time.Hour)
	}
	return out
}
