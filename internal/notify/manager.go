// Package notify owns the lifecycle of user-facing notifications for
// delivered reading units.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tewodrosm/scripture-notify/internal/api"
	"github.com/tewodrosm/scripture-notify/internal/model"
)

type State string

const (
	StateNotNotified State = "not_notified"
	StateNotified    State = "notified"
	StateRead        State = "read"
	StateDismissed   State = "dismissed"
)

// Notification is the platform-facing shape of a delivered unit.
type Notification struct {
	ID             string
	Title          string
	Message        string
	ContextMessage string
	Buttons        [2]string
}

// Platform is the host notification surface. Clear must be a no-op for
// ids that do not exist.
type Platform interface {
	Create(n Notification) error
	Clear(id string) error
}

// ReadMarker is the remote mark-as-read operation. Satisfied by the api
// client.
type ReadMarker interface {
	MarkUnitRead(ctx context.Context, unitID string) error
}

// Enqueuer records a deferred action when the network is unavailable.
type Enqueuer interface {
	Enqueue(a model.OfflineAction) error
}

// Snoozer installs a one-shot re-delivery alarm.
type Snoozer interface {
	ScheduleSnooze(minutes int) error
}

// Manager runs the per-unit notification state machine. Notifications
// are keyed by unit id, so a unit has at most one live notification.
// States live in memory only; a suspended process simply re-enters
// not_notified, which is safe because delivery re-evaluates from
// persisted data.
type Manager struct {
	mu       sync.Mutex
	platform Platform
	marker   ReadMarker
	pending  Enqueuer
	snoozer  Snoozer

	states map[string]State
	units  map[string]model.Unit

	// onRead is invoked after a confirmed mark-as-read so interested
	// surfaces can refresh plan progress.
	onRead func(unitID string)
}

func NewManager(platform Platform, marker ReadMarker, pending Enqueuer, snoozer Snoozer) *Manager {
	return &Manager{
		platform: platform,
		marker:   marker,
		pending:  pending,
		snoozer:  snoozer,
		states:   make(map[string]State),
		units:    make(map[string]model.Unit),
	}
}

// SetOnRead registers the refresh signal fired after a confirmed read.
func (m *Manager) SetOnRead(fn func(unitID string)) {
	m.mu.Lock()
	m.onRead = fn
	m.mu.Unlock()
}

// Deliver shows a notification for the unit. A unit already in the
// notified state keeps its live notification; nothing is created twice.
func (m *Manager) Deliver(unit model.Unit) error {
	m.mu.Lock()
	if m.states[unit.ID] == StateNotified {
		m.mu.Unlock()
		slog.Debug("Unit already notified, skipping", "unit", unit.ID)
		return nil
	}
	m.mu.Unlock()

	n := Notification{
		ID:             unit.ID,
		Title:          "Your Daily Scripture",
		Message:        unit.Reference(),
		ContextMessage: unit.Text,
		Buttons:        [2]string{"Mark as Read", "Snooze"},
	}
	if err := m.platform.Create(n); err != nil {
		return fmt.Errorf("create notification for unit %s: %w", unit.ID, err)
	}

	m.mu.Lock()
	m.states[unit.ID] = StateNotified
	m.units[unit.ID] = unit
	m.mu.Unlock()

	slog.Info("Notification created", "unit", unit.ID, "reference", unit.Reference())
	return nil
}

// MarkRead handles the "mark as read" button. Online, the remote call is
// made and the notification cleared on success. When the network is
// unreachable the action is queued instead and the notification stays
// up until a later sync confirms it.
func (m *Manager) MarkRead(ctx context.Context, unitID string) error {
	if err := m.marker.MarkUnitRead(ctx, unitID); err != nil {
		if api.IsNetworkError(err) {
			slog.Info("Offline, queueing mark-as-read", "unit", unitID)
			if qerr := m.pending.Enqueue(model.NewMarkUnitReadAction(unitID, unitID)); qerr != nil {
				return fmt.Errorf("queue mark-as-read for unit %s: %w", unitID, qerr)
			}
			return nil
		}
		return fmt.Errorf("mark unit %s read: %w", unitID, err)
	}

	m.ConfirmRead(unitID, unitID)
	return nil
}

// ConfirmRead applies the downstream effects of a successful mark-as-
// read: clear the notification, advance the state, fire the refresh
// signal. Also used as the drain hook so offline replays converge on
// the same path.
func (m *Manager) ConfirmRead(unitID, notificationID string) {
	if notificationID != "" {
		m.Clear(notificationID)
	}

	m.mu.Lock()
	m.states[unitID] = StateRead
	fn := m.onRead
	m.mu.Unlock()

	if fn != nil {
		fn(unitID)
	}
	slog.Info("Unit marked as read", "unit", unitID)
}

// Snooze clears the unit's notification and schedules a one-shot
// re-delivery. The recurring alarm keeps running regardless.
func (m *Manager) Snooze(unitID string) error {
	m.Clear(unitID)

	m.mu.Lock()
	m.states[unitID] = StateDismissed
	m.mu.Unlock()

	if err := m.snoozer.ScheduleSnooze(0); err != nil {
		return fmt.Errorf("snooze unit %s: %w", unitID, err)
	}
	return nil
}

// Clear removes a notification. Unknown or already-cleared ids are a
// no-op.
func (m *Manager) Clear(notificationID string) {
	if err := m.platform.Clear(notificationID); err != nil {
		slog.Warn("Failed to clear notification", "id", notificationID, "error", err)
	}
}

// UnitFor resolves a notification id back to its delivered unit, for
// the body-click detail view. Read path only.
func (m *Manager) UnitFor(notificationID string) (model.Unit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[notificationID]
	return u, ok
}

// StateOf reports the lifecycle state of a unit.
func (m *Manager) StateOf(unitID string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[unitID]; ok {
		return s
	}
	return StateNotNotified
}
