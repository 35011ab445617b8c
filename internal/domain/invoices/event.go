package invoices

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ActionExtracted        = "EXTRACTED"
	ActionSkippedDuplicate = "SKIPPED_DUPLICATE"
	actionStatusPrefix     = "STATUS_"
)

// StatusAction names the event appended when a record moves to status.
func StatusAction(status string) string {
	return actionStatusPrefix + strings.ToUpper(strings.TrimSpace(status))
}

// InvoiceEvent is an append-only fact in a record's audit trail. Rows are never updated or deleted.
type InvoiceEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   string    `gorm:"column:owner_id;not null;size:128;index:idx_invoice_event_record,priority:1" json:"supplierId"`
	InvoiceID string    `gorm:"column:invoice_id;not null;size:512;index:idx_invoice_event_record,priority:2" json:"invoiceId"`
	Action    string    `gorm:"column:action;not null;index" json:"action"`
	Note      string    `gorm:"column:note" json:"note,omitempty"`
	ByUID     *string   `gorm:"column:by_uid" json:"byUid,omitempty"`
	At        time.Time `gorm:"column:at;not null;index" json:"at"`
}

func (InvoiceEvent) TableName() string { return "invoice_event" }
