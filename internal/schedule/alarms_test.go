package schedule

import (
	"strings"
	"sync"
	"testing"
)

// fakeHost records registrations without running any timers.
type fakeHost struct {
	mu      sync.Mutex
	alarms  map[string]Alarm
	handler func(name string)
}

func newFakeHost() *fakeHost {
	return &fakeHost{alarms: make(map[string]Alarm)}
}

func (h *fakeHost) Create(a Alarm) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.alarms[a.Name] = a
	return nil
}

func (h *fakeHost) ClearAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.alarms = make(map[string]Alarm)
	return nil
}

func (h *fakeHost) List() []Alarm {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Alarm, 0, len(h.alarms))
	for _, a := range h.alarms {
		out = append(out, a)
	}
	return out
}

func (h *fakeHost) OnAlarm(fn func(name string)) { h.handler = fn }

func TestSetupAlarmsIdempotent(t *testing.T) {
	host := newFakeHost()
	s := NewScheduler(host, 15, 30)

	if err := s.SetupAlarms(); err != nil {
		t.Fatalf("first setup: %v", err)
	}
	if err := s.SetupAlarms(); err != nil {
		t.Fatalf("second setup: %v", err)
	}

	alarms := host.List()
	if len(alarms) != 1 {
		t.Fatalf("got %d alarms after double setup, want 1: %+v", len(alarms), alarms)
	}
	if alarms[0].Name != AlarmCheckDelivery {
		t.Errorf("alarm name = %q, want %q", alarms[0].Name, AlarmCheckDelivery)
	}
	if alarms[0].PeriodMinutes != 15 {
		t.Errorf("period = %d, want 15", alarms[0].PeriodMinutes)
	}
}

func TestScheduleSnooze(t *testing.T) {
	host := newFakeHost()
	s := NewScheduler(host, 15, 30)

	if err := s.SetupAlarms(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := s.ScheduleSnooze(0); err != nil {
		t.Fatalf("first snooze: %v", err)
	}
	if err := s.ScheduleSnooze(10); err != nil {
		t.Fatalf("second snooze: %v", err)
	}

	var recurring, snoozes int
	for _, a := range host.List() {
		switch {
		case a.Name == AlarmCheckDelivery:
			recurring++
		case IsSnooze(a.Name):
			snoozes++
			if a.PeriodMinutes != 0 {
				t.Errorf("snooze %q has a period, want one-shot", a.Name)
			}
		default:
			t.Errorf("unexpected alarm %q", a.Name)
		}
	}
	if recurring != 1 {
		t.Errorf("recurring alarms = %d, want 1 (snooze must not cancel it)", recurring)
	}
	if snoozes != 2 {
		t.Errorf("snooze alarms = %d, want 2 with unique names", snoozes)
	}
}

func TestScheduleSnoozeDefaultsDelay(t *testing.T) {
	host := newFakeHost()
	s := NewScheduler(host, 15, 30)

	if err := s.ScheduleSnooze(0); err != nil {
		t.Fatalf("snooze: %v", err)
	}
	alarms := host.List()
	if len(alarms) != 1 {
		t.Fatalf("got %d alarms, want 1", len(alarms))
	}
	if alarms[0].DelayMinutes != 30 {
		t.Errorf("delay = %d, want configured default 30", alarms[0].DelayMinutes)
	}
	if !strings.HasPrefix(alarms[0].Name, "snooze-") {
		t.Errorf("snooze name = %q, want snooze- prefix", alarms[0].Name)
	}
}
