// Package queue persists mutating actions taken while offline and
// replays them when connectivity returns.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tewodrosm/scripture-notify/internal/model"
	"github.com/tewodrosm/scripture-notify/internal/storage"
)

const queueKey = "offlineActionsQueue"

// Dispatcher replays queued actions against the remote service.
// Satisfied by the api client.
type Dispatcher interface {
	MarkUnitRead(ctx context.Context, unitID string) error
	CreatePlan(ctx context.Context, req model.CreatePlanRequest) (model.CreatePlanResponse, error)
}

// Hooks fire after a successful replay so the offline path produces the
// same downstream effects as the online one. Either field may be nil.
type Hooks struct {
	UnitMarkedRead func(unitID, notificationID string)
	PlanCreated    func(planID string)
}

type DrainResult struct {
	Replayed int
	Failed   int
}

// Queue is a durable FIFO of offline actions. It holds no state in
// memory: every operation re-reads the persisted list, so the queue
// survives process teardown between events.
type Queue struct {
	mu    sync.Mutex
	store storage.Store
}

func New(store storage.Store) *Queue {
	return &Queue{store: store}
}

func (q *Queue) load() ([]model.OfflineAction, error) {
	var actions []model.OfflineAction
	if _, err := q.store.Get(queueKey, &actions); err != nil {
		return nil, fmt.Errorf("load offline queue: %w", err)
	}
	return actions, nil
}

// Enqueue appends an action read-modify-write. The mutex serializes
// concurrent callers within this process so no append overwrites
// another.
func (q *Queue) Enqueue(a model.OfflineAction) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.load()
	if err != nil {
		return err
	}
	actions = append(actions, a)
	if err := q.store.Set(queueKey, actions); err != nil {
		return fmt.Errorf("persist offline queue: %w", err)
	}
	slog.Info("Action queued offline", "type", a.Type, "pending", len(actions))
	return nil
}

// Pending returns the persisted actions in insertion order.
func (q *Queue) Pending() ([]model.OfflineAction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

// Drain replays each queued action in insertion order. Successful
// actions are removed; failed ones stay, in order, for the next drain.
// An action with a type this build cannot dispatch is retained and
// counted as failed but never sent. A per-action failure never aborts
// the pass, and nothing already confirmed is replayed again.
func (q *Queue) Drain(ctx context.Context, d Dispatcher, hooks Hooks) (DrainResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.load()
	if err != nil {
		return DrainResult{}, err
	}
	if len(actions) == 0 {
		slog.Debug("No offline actions to sync")
		return DrainResult{}, nil
	}

	slog.Info("Syncing offline actions", "count", len(actions))

	var remaining []model.OfflineAction
	var res DrainResult
	for _, a := range actions {
		if err := q.replay(ctx, d, hooks, a); err != nil {
			slog.Warn("Offline action failed, will retry next sync", "type", a.Type, "error", err)
			remaining = append(remaining, a)
			res.Failed++
			continue
		}
		res.Replayed++
	}

	if remaining == nil {
		remaining = []model.OfflineAction{}
	}
	if err := q.store.Set(queueKey, remaining); err != nil {
		return res, fmt.Errorf("persist offline queue: %w", err)
	}

	slog.Info("Offline sync pass finished", "replayed", res.Replayed, "failed", res.Failed)
	return res, nil
}

func (q *Queue) replay(ctx context.Context, d Dispatcher, hooks Hooks, a model.OfflineAction) error {
	switch {
	case a.Type == model.ActionMarkUnitRead && a.MarkUnitRead != nil:
		p := a.MarkUnitRead
		if err := d.MarkUnitRead(ctx, p.UnitID); err != nil {
			return err
		}
		if hooks.UnitMarkedRead != nil {
			hooks.UnitMarkedRead(p.UnitID, p.NotificationID)
		}
		return nil
	case a.Type == model.ActionCreatePlan && a.CreatePlan != nil:
		resp, err := d.CreatePlan(ctx, a.CreatePlan.PlanData)
		if err != nil {
			return err
		}
		if hooks.PlanCreated != nil {
			hooks.PlanCreated(resp.PlanID)
		}
		return nil
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}
