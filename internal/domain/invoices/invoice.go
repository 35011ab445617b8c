package invoices

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusParsed   = "parsed"
	StatusObserved = "observed"
	StatusApproved = "approved"
	StatusPaid     = "paid"

	EngineDocAI  = "docai"
	UnknownOwner = "unknown"
)

// Statuses lists the lifecycle states reported by the stats summary, in display order.
var Statuses = []string{StatusParsed, StatusObserved, StatusApproved, StatusPaid}

// Invoice is the canonical record of one logical invoice. (OwnerID, InvoiceID) is its
// identity: OwnerID is the supplier tax id and InvoiceID the supplier's invoice number.
type Invoice struct {
	OwnerID   string `gorm:"column:owner_id;primaryKey;size:128" json:"supplierId"`
	InvoiceID string `gorm:"column:invoice_id;primaryKey;size:512" json:"invoiceId"`

	FilePath      string `gorm:"column:file_path;not null" json:"filePath"`
	FileName      string `gorm:"column:file_name;not null" json:"name"`
	Generation    string `gorm:"column:generation" json:"generation,omitempty"`
	Engine        string `gorm:"column:engine;not null" json:"engine"`
	SchemaVersion string `gorm:"column:schema_version" json:"schemaVersion"`

	// Values are kept exactly as extracted; nil means the field was not found.
	Currency        *string `gorm:"column:currency" json:"currency"`
	Total           *string `gorm:"column:total" json:"total"`
	TotalTax        *string `gorm:"column:total_tax" json:"totalTax"`
	NetAmount       *string `gorm:"column:net_amount" json:"netAmount"`
	IssueDate       *string `gorm:"column:issue_date" json:"issueDate"`
	DueDate         *string `gorm:"column:due_date" json:"dueDate"`
	SupplierName    *string `gorm:"column:supplier_name" json:"supplierName"`
	SupplierAddress *string `gorm:"column:supplier_address" json:"supplierAddress"`

	// UploaderUID is the principal that owns the record for access checks.
	UploaderUID   string         `gorm:"column:uploader_uid;index" json:"supplierUid,omitempty"`
	UploaderEmail string         `gorm:"column:uploader_email" json:"uploaderEmail,omitempty"`
	OwnerSnapshot datatypes.JSON `gorm:"column:owner_snapshot" json:"supplierSnapshot"`

	Status      string         `gorm:"column:status;not null;index" json:"status"`
	RawEntities datatypes.JSON `gorm:"column:raw_entities" json:"raw,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;not null;index;autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updatedAt"`
}

func (Invoice) TableName() string { return "invoice" }

// RecordID is the composite "owner/invoice" id used on the public surface.
func (i *Invoice) RecordID() string {
	if i == nil {
		return ""
	}
	return RecordID(i.OwnerID, i.InvoiceID)
}

func RecordID(ownerID, invoiceID string) string {
	return ownerID + "/" + invoiceID
}

// ScanFilter narrows a ledger scan. Empty fields do not filter.
type ScanFilter struct {
	Status      string
	OwnerID     string
	UploaderUID string
	Limit       int
	After       *Cursor
}

// Cursor is the keyset position of the last row of a page in created_at DESC order.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	OwnerID   string    `json:"o"`
	InvoiceID string    `json:"i"`
}
