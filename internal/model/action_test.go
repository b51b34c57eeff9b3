package model

import (
	"encoding/json"
	"testing"
)

func TestOfflineActionVariants(t *testing.T) {
	a := NewMarkUnitReadAction("unit-9", "unit-9")
	if !a.Known() {
		t.Fatal("mark-as-read action not recognized")
	}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded OfflineAction
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != ActionMarkUnitRead || decoded.MarkUnitRead == nil {
		t.Fatalf("decoded = %+v, want markUnitAsRead variant", decoded)
	}
	if decoded.MarkUnitRead.UnitID != "unit-9" {
		t.Errorf("unit id = %q, want unit-9", decoded.MarkUnitRead.UnitID)
	}
	if decoded.CreatePlan != nil {
		t.Error("createPlan payload set on a mark-as-read action")
	}
}

func TestOfflineActionUnknownTypePreserved(t *testing.T) {
	// A queue written by a different build may carry action types this
	// one cannot dispatch. The payload must survive a decode/encode
	// cycle untouched.
	raw := []byte(`{"type":"sharePlan","payload":{"planId":"p1","channel":"mail"}}`)

	var a OfflineAction
	if err := json.Unmarshal(raw, &a); err != nil {
		t.Fatalf("unmarshal unknown type: %v", err)
	}
	if a.Known() {
		t.Error("unknown action reported as dispatchable")
	}

	out, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal unknown type: %v", err)
	}

	var m struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if m.Type != "sharePlan" {
		t.Errorf("type = %q, want sharePlan", m.Type)
	}
	var payload map[string]string
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		t.Fatalf("payload lost: %v", err)
	}
	if payload["planId"] != "p1" || payload["channel"] != "mail" {
		t.Errorf("payload = %v, want original fields", payload)
	}
}
