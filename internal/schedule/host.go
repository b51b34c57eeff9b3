package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TimerHost is an in-process Host backed by timers. Each alarm runs its
// own goroutine feeding a single dispatch channel, so handlers fire one
// at a time, run-to-completion, mirroring the event model of a platform
// host.
type TimerHost struct {
	mu      sync.Mutex
	alarms  map[string]*hostedAlarm
	handler func(name string)
	fireCh  chan string
}

type hostedAlarm struct {
	alarm Alarm
	stop  chan struct{}
}

func NewTimerHost() *TimerHost {
	return &TimerHost{
		alarms: make(map[string]*hostedAlarm),
		fireCh: make(chan string, 16),
	}
}

func (h *TimerHost) OnAlarm(fn func(name string)) {
	h.mu.Lock()
	h.handler = fn
	h.mu.Unlock()
}

// Create registers an alarm, replacing any existing alarm with the same
// name.
func (h *TimerHost) Create(a Alarm) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.alarms[a.Name]; ok {
		close(prev.stop)
	}
	ha := &hostedAlarm{alarm: a, stop: make(chan struct{})}
	h.alarms[a.Name] = ha
	go h.run(ha)
	return nil
}

func (h *TimerHost) ClearAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for name, ha := range h.alarms {
		close(ha.stop)
		delete(h.alarms, name)
	}
	return nil
}

func (h *TimerHost) List() []Alarm {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Alarm, 0, len(h.alarms))
	for _, ha := range h.alarms {
		out = append(out, ha.alarm)
	}
	return out
}

func (h *TimerHost) run(ha *hostedAlarm) {
	if ha.alarm.PeriodMinutes > 0 {
		ticker := time.NewTicker(time.Duration(ha.alarm.PeriodMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ha.stop:
				return
			case <-ticker.C:
				h.fire(ha.alarm.Name)
			}
		}
	}

	timer := time.NewTimer(time.Duration(ha.alarm.DelayMinutes) * time.Minute)
	defer timer.Stop()
	select {
	case <-ha.stop:
		return
	case <-timer.C:
		h.remove(ha.alarm.Name, ha)
		h.fire(ha.alarm.Name)
	}
}

// remove drops a fired one-shot, unless it was already replaced.
func (h *TimerHost) remove(name string, ha *hostedAlarm) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.alarms[name]; ok && cur == ha {
		delete(h.alarms, name)
	}
}

func (h *TimerHost) fire(name string) {
	select {
	case h.fireCh <- name:
	default:
		slog.Warn("Alarm dispatch queue full, dropping tick", "name", name)
	}
}

// Run dispatches alarm firings to the registered handler until ctx is
// done. Handlers run serially on this goroutine.
func (h *TimerHost) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case name := <-h.fireCh:
			h.mu.Lock()
			fn := h.handler
			h.mu.Unlock()
			if fn != nil {
				fn(name)
			}
		}
	}
}
