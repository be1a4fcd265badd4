package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestTopicFor(t *testing.T) {
	tests := []struct {
		name  string
		event domain.Event
		want  string
	}{
		{"order created", domain.Event{Type: domain.EventTypeOrderCreated}, TopicOrderEvents},
		{"status changed", domain.Event{Type: domain.EventTypeOrderStatusChanged}, TopicOrderEvents},
		{"product added", domain.Event{Type: domain.EventTypeProductAdded}, TopicCatalogEvents},
		{"product removed", domain.Event{Type: domain.EventTypeProductRemoved}, TopicCatalogEvents},
		{"customer registered", domain.Event{Type: domain.EventTypeCustomerRegistered}, TopicCatalogEvents},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopicFor(tt.event); got != tt.want {
				t.Errorf("expected topic %s, got %s", tt.want, got)
			}
		})
	}
}

func TestKeyFor(t *testing.T) {
	tests := []struct {
		name  string
		event domain.Event
		want  string
	}{
		{"order id wins", domain.Event{OrderID: 42, Product: "Laptop", Customer: "alice"}, "42"},
		{"product next", domain.Event{Product: "Laptop", Customer: "alice"}, "Laptop"},
		{"customer last", domain.Event{Customer: "alice"}, "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyFor(tt.event); got != tt.want {
				t.Errorf("expected key %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNewEnvelopeJSON(t *testing.T) {
	occurred := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	env := NewEnvelope(domain.Event{
		ID:       "evt-1",
		Type:     domain.EventTypeOrderCreated,
		OrderID:  7,
		Customer: "alice",
		Status:   domain.OrderStatusNew,
		Occurred: occurred,
	})

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.ID != "evt-1" || decoded.Type != string(domain.EventTypeOrderCreated) {
		t.Errorf("unexpected identity fields: %+v", decoded)
	}
	if decoded.OrderID != 7 || decoded.Customer != "alice" || decoded.Status != string(domain.OrderStatusNew) {
		t.Errorf("unexpected payload fields: %+v", decoded)
	}
	if !decoded.Occurred.Equal(occurred) {
		t.Errorf("expected occurred %v, got %v", occurred, decoded.Occurred)
	}

	// product отсутствует — поле опускается из JSON целиком.
	if _, present := jsonKeys(t, raw)["product"]; present {
		t.Error("empty product must be omitted from the envelope")
	}
}

func jsonKeys(t *testing.T, raw []byte) map[string]json.RawMessage {
	t.Helper()
	keys := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("unmarshal keys failed: %v", err)
	}
	return keys
}
