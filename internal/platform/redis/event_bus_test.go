package redis

import (
	"encoding/json"
	"testing"
	"time"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
)

func TestEncodeEvent(t *testing.T) {
	by := "u1"
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("PET", -5*3600))
	raw, err := encodeEvent(&types.InvoiceEvent{
		OwnerID:   "20123456789",
		InvoiceID: "F001-99",
		Action:    "STATUS_APPROVED",
		ByUID:     &by,
		At:        at,
	})
	if err != nil {
		t.Fatalf("encodeEvent: %v", err)
	}
	var msg EventMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.RecordID != "20123456789/F001-99" {
		t.Fatalf("recordId: want=%q got=%q", "20123456789/F001-99", msg.RecordID)
	}
	if msg.ByUID != "u1" || msg.Action != "STATUS_APPROVED" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if !msg.At.Equal(at) || msg.At.Location() != time.UTC {
		t.Fatalf("at: want UTC %s got=%s", at.UTC(), msg.At)
	}

	if _, err := encodeEvent(nil); err == nil {
		t.Fatalf("encodeEvent(nil): expected error")
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Fatalf("empty config should be disabled")
	}
	if !(Config{Addr: "localhost:6379"}).Enabled() {
		t.Fatalf("addr set should be enabled")
	}
	if key := profileKey("u1"); key != "invoices:profile:u1" {
		t.Fatalf("profileKey: got=%q", key)
	}
}
