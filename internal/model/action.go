package model

import (
	"encoding/json"
	"fmt"
)

type ActionType string

const (
	ActionMarkUnitRead ActionType = "markUnitAsRead"
	ActionCreatePlan   ActionType = "createPlan"
)

type MarkUnitReadPayload struct {
	UnitID string `json:"unitId"`
	// NotificationID, when set, is the live notification to clear once the
	// replay succeeds. Cleared-on-sync, not optimistically.
	NotificationID string `json:"notificationId,omitempty"`
}

type CreatePlanPayload struct {
	PlanData CreatePlanRequest `json:"planData"`
}

// OfflineAction is a deferred mutating API call, one variant per type.
// Exactly one of the payload fields is non-nil for a known type. Actions
// with a type this build does not know keep their raw payload so nothing
// is lost across versions; they are never replayed.
type OfflineAction struct {
	Type         ActionType
	MarkUnitRead *MarkUnitReadPayload
	CreatePlan   *CreatePlanPayload

	rawPayload json.RawMessage
}

func NewMarkUnitReadAction(unitID, notificationID string) OfflineAction {
	return OfflineAction{
		Type:         ActionMarkUnitRead,
		MarkUnitRead: &MarkUnitReadPayload{UnitID: unitID, NotificationID: notificationID},
	}
}

func NewCreatePlanAction(req CreatePlanRequest) OfflineAction {
	return OfflineAction{
		Type:       ActionCreatePlan,
		CreatePlan: &CreatePlanPayload{PlanData: req},
	}
}

// Known reports whether this build can dispatch the action.
func (a OfflineAction) Known() bool {
	switch a.Type {
	case ActionMarkUnitRead:
		return a.MarkUnitRead != nil
	case ActionCreatePlan:
		return a.CreatePlan != nil
	}
	return false
}

type actionEnvelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (a OfflineAction) MarshalJSON() ([]byte, error) {
	env := actionEnvelope{Type: a.Type, Payload: a.rawPayload}
	var err error
	switch a.Type {
	case ActionMarkUnitRead:
		if a.MarkUnitRead != nil {
			env.Payload, err = json.Marshal(a.MarkUnitRead)
		}
	case ActionCreatePlan:
		if a.CreatePlan != nil {
			env.Payload, err = json.Marshal(a.CreatePlan)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", a.Type, err)
	}
	return json.Marshal(env)
}

func (a *OfflineAction) UnmarshalJSON(data []byte) error {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*a = OfflineAction{Type: env.Type, rawPayload: env.Payload}
	switch env.Type {
	case ActionMarkUnitRead:
		p := &MarkUnitReadPayload{}
		if err := json.Unmarshal(env.Payload, p); err != nil {
			return fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		a.MarkUnitRead = p
	case ActionCreatePlan:
		p := &CreatePlanPayload{}
		if err := json.Unmarshal(env.Payload, p); err != nil {
			return fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		a.CreatePlan = p
	}
	return nil
}
