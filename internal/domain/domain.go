package domain

import (
	"github.com/yungbote/invoice-ingest-backend/internal/domain/invoices"
	"github.com/yungbote/invoice-ingest-backend/internal/domain/user"
)

const (
	StatusParsed   = invoices.StatusParsed
	StatusObserved = invoices.StatusObserved
	StatusApproved = invoices.StatusApproved
	StatusPaid     = invoices.StatusPaid

	ActionExtracted        = invoices.ActionExtracted
	ActionSkippedDuplicate = invoices.ActionSkippedDuplicate

	EngineDocAI  = invoices.EngineDocAI
	UnknownOwner = invoices.UnknownOwner

	EntitySupplierTaxID   = invoices.EntitySupplierTaxID
	EntityInvoiceID       = invoices.EntityInvoiceID
	EntityTotalAmount     = invoices.EntityTotalAmount
	EntityTotalTaxAmount  = invoices.EntityTotalTaxAmount
	EntityNetAmount       = invoices.EntityNetAmount
	EntityCurrency        = invoices.EntityCurrency
	EntityInvoiceDate     = invoices.EntityInvoiceDate
	EntityDueDate         = invoices.EntityDueDate
	EntitySupplierName    = invoices.EntitySupplierName
	EntitySupplierAddress = invoices.EntitySupplierAddress

	RoleAdmin    = user.RoleAdmin
	RoleStandard = user.RoleStandard
)

type Invoice = invoices.Invoice
type InvoiceEvent = invoices.InvoiceEvent
type FieldObservation = invoices.FieldObservation
type Extraction = invoices.Extraction
type Source = invoices.Source
type ScanFilter = invoices.ScanFilter
type Cursor = invoices.Cursor

var Statuses = invoices.Statuses

var (
	RecordID      = invoices.RecordID
	SplitRecordID = invoices.SplitRecordID
	SourceFromURI = invoices.SourceFromURI
	StatusAction  = invoices.StatusAction
)

type Profile = user.Profile
type Principal = user.Principal

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&user.Profile{},
		&invoices.Invoice{},
		&invoices.InvoiceEvent{},
	}
}
