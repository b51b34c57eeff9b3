// Package background wires storage, scheduling, the offline queue and
// the notification lifecycle into the event handlers of the daemon.
package background

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tewodrosm/scripture-notify/internal/api"
	"github.com/tewodrosm/scripture-notify/internal/model"
	"github.com/tewodrosm/scripture-notify/internal/notify"
	"github.com/tewodrosm/scripture-notify/internal/queue"
	"github.com/tewodrosm/scripture-notify/internal/schedule"
	"github.com/tewodrosm/scripture-notify/internal/storage"
)

const (
	activePlanKey = "activePlanId"
	settingsKey   = "userSettings"
)

// ErrQueuedOffline reports that a mutating call could not reach the
// server and was recorded for a later sync instead.
var ErrQueuedOffline = errors.New("queued for offline sync")

// PlanAPI is the remote surface the orchestrator needs. Satisfied by
// the api client.
type PlanAPI interface {
	queue.Dispatcher
	NextUnit(ctx context.Context, planID string) (*model.Unit, error)
	Progress(ctx context.Context, planID string) (model.Progress, error)
}

// DeviceSource supplies the installation id, creating it on first use.
type DeviceSource interface {
	ID() (string, error)
}

// Orchestrator holds no state that must survive a suspension: every
// handler re-reads the active plan, settings and queue from the stores.
type Orchestrator struct {
	local    storage.Store
	sync     storage.Store
	device   DeviceSource
	remote   PlanAPI
	sched    *schedule.Scheduler
	notifier *notify.Manager
	pending  *queue.Queue

	// tick overlap is a rare race under the 15-minute period; the guard
	// skips rather than serializes.
	tickInFlight atomic.Bool

	now func() time.Time
}

func NewOrchestrator(tiers storage.Tiers, device DeviceSource, remote PlanAPI, sched *schedule.Scheduler, notifier *notify.Manager, pending *queue.Queue) *Orchestrator {
	o := &Orchestrator{
		local:    tiers.Local,
		sync:     tiers.Sync,
		device:   device,
		remote:   remote,
		sched:    sched,
		notifier: notifier,
		pending:  pending,
		now:      time.Now,
	}
	notifier.SetOnRead(func(unitID string) {
		slog.Debug("Plan refresh signalled", "unit", unitID)
	})
	return o
}

// HandleInstalled runs once at install/startup: ensure the device id
// exists, install the recurring alarm, attempt one best-effort drain of
// the offline queue. Failures are logged, never fatal.
func (o *Orchestrator) HandleInstalled(ctx context.Context) {
	if _, err := o.device.ID(); err != nil {
		slog.Error("Failed to ensure device id", "error", err)
	}
	if err := o.sched.SetupAlarms(); err != nil {
		slog.Error("Failed to set up alarms", "error", err)
	}
	if _, err := o.pending.Drain(ctx, o.remote, o.drainHooks()); err != nil {
		slog.Warn("Startup offline sync failed", "error", err)
	}
}

// HandleAlarm dispatches alarm firings. Snooze one-shots run the same
// delivery flow as the recurring alarm; in particular a snooze never
// bypasses the quiet-hours gate.
func (o *Orchestrator) HandleAlarm(ctx context.Context, name string) {
	switch {
	case name == schedule.AlarmCheckDelivery:
		o.tick(ctx)
	case schedule.IsSnooze(name):
		slog.Info("Snooze alarm fired", "name", name)
		o.tick(ctx)
	default:
		slog.Debug("Ignoring unknown alarm", "name", name)
	}
}

func (o *Orchestrator) tick(ctx context.Context) {
	if !o.tickInFlight.CompareAndSwap(false, true) {
		slog.Debug("Delivery tick already in flight, skipping")
		return
	}
	defer o.tickInFlight.Store(false)

	planID, ok := o.ActivePlanID()
	if !ok || planID == "" {
		slog.Debug("No active plan, nothing to deliver")
		return
	}

	settings := o.loadSettings()
	now := o.now()
	if !schedule.CanDeliver(now, settings.QuietHours, settings.WorkingHours) {
		slog.Debug("Inside quiet hours, delivery blocked", "time", now.Format("15:04"))
		return
	}

	unit, err := o.remote.NextUnit(ctx, planID)
	if err != nil {
		// The next scheduled tick is the retry policy; no backoff.
		slog.Warn("Failed to fetch next unit, skipping tick", "plan", planID, "error", err)
		return
	}
	if unit == nil {
		slog.Debug("No unit currently due", "plan", planID)
		return
	}

	if err := o.notifier.Deliver(*unit); err != nil {
		slog.Error("Failed to deliver unit", "unit", unit.ID, "error", err)
	}
}

// HandleOnline runs one drain pass. Called on each offline-to-online
// transition.
func (o *Orchestrator) HandleOnline(ctx context.Context) {
	if _, err := o.pending.Drain(ctx, o.remote, o.drainHooks()); err != nil {
		slog.Warn("Offline sync failed", "error", err)
	}
}

func (o *Orchestrator) drainHooks() queue.Hooks {
	return queue.Hooks{
		UnitMarkedRead: o.notifier.ConfirmRead,
		PlanCreated: func(planID string) {
			o.SetActivePlan(planID)
		},
	}
}

// HandleNotificationButton maps a notification button press to its core
// operation: button 0 marks the unit read, button 1 snoozes.
func (o *Orchestrator) HandleNotificationButton(ctx context.Context, notificationID string, buttonIndex int) {
	switch buttonIndex {
	case 0:
		if err := o.notifier.MarkRead(ctx, notificationID); err != nil {
			slog.Error("Mark-as-read failed", "notification", notificationID, "error", err)
		}
	case 1:
		if err := o.notifier.Snooze(notificationID); err != nil {
			slog.Error("Snooze failed", "notification", notificationID, "error", err)
		}
	default:
		slog.Debug("Ignoring unknown notification button", "notification", notificationID, "index", buttonIndex)
	}
}

// HandleNotificationClick resolves a body click to the unit for the
// detail view. Read path only; no state transition.
func (o *Orchestrator) HandleNotificationClick(notificationID string) (model.Unit, bool) {
	unit, ok := o.notifier.UnitFor(notificationID)
	if !ok {
		slog.Debug("Click on unknown notification", "id", notificationID)
		return model.Unit{}, false
	}
	slog.Info("Opening detail view", "unit", unit.ID)
	return unit, true
}

// HandleMessage acknowledges cross-context messages. refreshPlan is
// acknowledge-only: the progress refetch belongs to the UI layer.
func (o *Orchestrator) HandleMessage(action string) (string, bool) {
	if action == "refreshPlan" {
		return "ok", true
	}
	return "", false
}

// CreatePlan creates a plan remotely and makes it the active plan. When
// the network is unreachable the request is queued and ErrQueuedOffline
// returned; the queued replay sets the active plan on success.
func (o *Orchestrator) CreatePlan(ctx context.Context, req model.CreatePlanRequest) (string, error) {
	deviceID, err := o.device.ID()
	if err != nil {
		return "", err
	}
	req.DeviceID = deviceID

	resp, err := o.remote.CreatePlan(ctx, req)
	if err != nil {
		if api.IsNetworkError(err) {
			if qerr := o.pending.Enqueue(model.NewCreatePlanAction(req)); qerr != nil {
				return "", qerr
			}
			return "", ErrQueuedOffline
		}
		return "", err
	}

	o.SetActivePlan(resp.PlanID)
	return resp.PlanID, nil
}

// MarkUnitRead is the core mark-as-read operation for external callers.
func (o *Orchestrator) MarkUnitRead(ctx context.Context, unitID string) error {
	return o.notifier.MarkRead(ctx, unitID)
}

// Progress fetches the read-only progress snapshot for the active plan.
func (o *Orchestrator) Progress(ctx context.Context) (model.Progress, error) {
	planID, ok := o.ActivePlanID()
	if !ok || planID == "" {
		return model.Progress{}, errors.New("no active plan")
	}
	return o.remote.Progress(ctx, planID)
}

// NextDelivery estimates when the next notification will arrive, for
// display only. Working hours never gate actual delivery.
func (o *Orchestrator) NextDelivery() time.Time {
	settings := o.loadSettings()
	return schedule.NextDeliveryEstimate(o.now(), o.sched.Period(), settings.QuietHours)
}

// ActivePlanID reads the active-plan pointer from the local tier.
func (o *Orchestrator) ActivePlanID() (string, bool) {
	var id string
	ok, err := o.local.Get(activePlanKey, &id)
	if err != nil {
		slog.Error("Failed to load active plan", "error", err)
		return "", false
	}
	return id, ok
}

// SetActivePlan replaces the active-plan pointer.
func (o *Orchestrator) SetActivePlan(planID string) {
	if err := o.local.Set(activePlanKey, planID); err != nil {
		slog.Error("Failed to persist active plan", "plan", planID, "error", err)
		return
	}
	slog.Info("Active plan set", "plan", planID)
}

// loadSettings reads user settings from the sync tier, falling back to
// defaults when absent or unreadable.
func (o *Orchestrator) loadSettings() model.UserSettings {
	var s model.UserSettings
	ok, err := o.sync.Get(settingsKey, &s)
	if err != nil {
		slog.Error("Failed to load settings, using defaults", "error", err)
		return model.DefaultSettings()
	}
	if !ok {
		return model.DefaultSettings()
	}
	return s
}
