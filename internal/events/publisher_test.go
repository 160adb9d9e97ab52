package events

import (
	"context"
	"encoding/json"
	"testing"
)

func TestNilPublisherIsSafe(t *testing.T) {
	var publisher *Publisher
	publisher.Publish(context.Background(), SessionEvent{Action: "session.created", SessionID: 1})
	publisher.Close()
}

func TestNewPublisherDisabledWithoutURL(t *testing.T) {
	if publisher := NewPublisher(""); publisher != nil {
		t.Fatalf("expected nil publisher when no broker is configured")
	}
}

func TestSessionEventOmitsEmptyPackage(t *testing.T) {
	raw, err := json.Marshal(SessionEvent{
		Action:    "session.deleted",
		SessionID: 4,
		DogID:     2,
		ClientID:  9,
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded["packageId"]; ok {
		t.Fatalf("packageId must be omitted when no package is held: %s", raw)
	}
	if decoded["action"] != "session.deleted" || decoded["sessionId"] != float64(4) {
		t.Fatalf("unexpected payload: %s", raw)
	}
}
