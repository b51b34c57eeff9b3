package schedule

import (
	"testing"
	"time"

	"github.com/tewodrosm/scripture-notify/internal/model"
)

func at(t *testing.T, clock string) time.Time {
	t.Helper()
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		t.Fatalf("parse clock %q: %v", clock, err)
	}
	return time.Date(2025, 3, 10, parsed.Hour(), parsed.Minute(), 0, 0, time.Local)
}

func TestInRange(t *testing.T) {
	tests := []struct {
		name string
		r    model.TimeRange
		now  string
		want bool
	}{
		{"same-day inside", model.TimeRange{Start: "08:00", End: "17:00"}, "12:00", true},
		{"same-day before", model.TimeRange{Start: "08:00", End: "17:00"}, "07:59", false},
		{"same-day after", model.TimeRange{Start: "08:00", End: "17:00"}, "17:01", false},
		{"same-day start boundary", model.TimeRange{Start: "08:00", End: "17:00"}, "08:00", true},
		{"same-day end boundary", model.TimeRange{Start: "08:00", End: "17:00"}, "17:00", true},
		{"overnight late evening", model.TimeRange{Start: "22:00", End: "06:00"}, "23:00", true},
		{"overnight early morning", model.TimeRange{Start: "22:00", End: "06:00"}, "05:00", true},
		{"overnight midday", model.TimeRange{Start: "22:00", End: "06:00"}, "12:00", false},
		{"overnight start boundary", model.TimeRange{Start: "22:00", End: "06:00"}, "22:00", true},
		{"overnight end boundary", model.TimeRange{Start: "22:00", End: "06:00"}, "06:00", true},
		{"start equals end covers all day", model.TimeRange{Start: "09:30", End: "09:30"}, "03:00", true},
		{"start equals end covers own minute", model.TimeRange{Start: "09:30", End: "09:30"}, "09:30", true},
		{"malformed start never matches", model.TimeRange{Start: "9am", End: "17:00"}, "12:00", false},
		{"malformed end never matches", model.TimeRange{Start: "08:00", End: "25:00"}, "12:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InRange(at(t, tt.now), tt.r); got != tt.want {
				t.Errorf("InRange(%s, %+v) = %v, want %v", tt.now, tt.r, got, tt.want)
			}
		})
	}
}

func TestCanDeliver(t *testing.T) {
	quiet := model.TimeRange{Start: "22:00", End: "06:00"}
	working := model.TimeRange{Start: "08:00", End: "17:00"}

	tests := []struct {
		name string
		now  string
		want bool
	}{
		{"midday", "10:00", true},
		{"inside quiet hours", "23:30", false},
		{"quiet start boundary blocked", "22:00", false},
		{"quiet end boundary blocked", "06:00", false},
		{"just after quiet hours", "06:01", true},
		// Working hours are advisory only: delivery is allowed outside
		// them as long as quiet hours do not apply.
		{"outside working hours still allowed", "19:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanDeliver(at(t, tt.now), quiet, working); got != tt.want {
				t.Errorf("CanDeliver(%s) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestCanDeliverFullDayQuiet(t *testing.T) {
	quiet := model.TimeRange{Start: "13:00", End: "13:00"}
	working := model.TimeRange{Start: "08:00", End: "17:00"}

	for _, clock := range []string{"00:00", "06:15", "13:00", "23:59"} {
		if CanDeliver(at(t, clock), quiet, working) {
			t.Errorf("CanDeliver(%s) = true with full-day quiet hours, want false", clock)
		}
	}
}

func TestNextDeliveryEstimate(t *testing.T) {
	quiet := model.TimeRange{Start: "22:00", End: "06:00"}
	period := 15 * time.Minute

	t.Run("plain next tick", func(t *testing.T) {
		now := at(t, "10:00")
		got := NextDeliveryEstimate(now, period, quiet)
		if want := now.Add(period); !got.Equal(want) {
			t.Errorf("estimate = %v, want %v", got, want)
		}
	})

	t.Run("pushed past quiet hours", func(t *testing.T) {
		now := at(t, "22:30")
		got := NextDeliveryEstimate(now, period, quiet)
		if InRange(got, quiet) {
			t.Errorf("estimate %v still inside quiet hours", got)
		}
		if !got.After(now) {
			t.Errorf("estimate %v not after now %v", got, now)
		}
	})
}
