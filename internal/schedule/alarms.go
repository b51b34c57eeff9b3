// Package schedule holds the delivery-window evaluator and the alarm
// scheduler that wakes it.
package schedule

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AlarmCheckDelivery is the single recurring alarm driving delivery
// evaluation.
const AlarmCheckDelivery = "check-delivery"

const snoozePrefix = "snooze-"

// Alarm is a named timer registered with the host. Exactly one of
// PeriodMinutes (recurring) or DelayMinutes (one-shot) is set.
type Alarm struct {
	Name          string
	PeriodMinutes int
	DelayMinutes  int
}

// Host is the platform alarm surface. Registered alarms outlive the
// process on a real host; the in-process TimerHost approximates that
// within a single run.
type Host interface {
	Create(a Alarm) error
	ClearAll() error
	List() []Alarm
	OnAlarm(fn func(name string))
}

type Scheduler struct {
	host          Host
	periodMinutes int
	snoozeMinutes int
}

func NewScheduler(host Host, periodMinutes, snoozeMinutes int) *Scheduler {
	return &Scheduler{host: host, periodMinutes: periodMinutes, snoozeMinutes: snoozeMinutes}
}

// SetupAlarms installs the recurring check-delivery alarm. All prior
// alarms are cleared first so repeated setup never accumulates
// duplicates.
func (s *Scheduler) SetupAlarms() error {
	if err := s.host.ClearAll(); err != nil {
		return fmt.Errorf("clear alarms: %w", err)
	}
	if err := s.host.Create(Alarm{Name: AlarmCheckDelivery, PeriodMinutes: s.periodMinutes}); err != nil {
		return fmt.Errorf("create %s alarm: %w", AlarmCheckDelivery, err)
	}
	slog.Info("Alarm installed", "name", AlarmCheckDelivery, "period_minutes", s.periodMinutes)
	return nil
}

// ScheduleSnooze installs a uniquely-named one-shot alarm. Zero or
// negative minutes fall back to the configured snooze delay. The
// recurring alarm is left untouched.
func (s *Scheduler) ScheduleSnooze(minutes int) error {
	if minutes <= 0 {
		minutes = s.snoozeMinutes
	}
	name := snoozePrefix + uuid.New().String()
	if err := s.host.Create(Alarm{Name: name, DelayMinutes: minutes}); err != nil {
		return fmt.Errorf("create snooze alarm: %w", err)
	}
	slog.Info("Snooze scheduled", "name", name, "delay_minutes", minutes)
	return nil
}

// Period is the recurring evaluation cadence.
func (s *Scheduler) Period() time.Duration {
	return time.Duration(s.periodMinutes) * time.Minute
}

// IsSnooze reports whether an alarm name belongs to a snooze one-shot.
func IsSnooze(name string) bool {
	return strings.HasPrefix(name, snoozePrefix)
}
