package steps

import (
	"strings"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
)

// CanonicalFields is the fixed field set an invoice record carries. A nil field was not observed.
type CanonicalFields struct {
	SupplierTaxID   *string
	InvoiceID       *string
	Total           *string
	TotalTax        *string
	NetAmount       *string
	Currency        *string
	IssueDate       *string
	DueDate         *string
	SupplierName    *string
	SupplierAddress *string
}

// Normalize maps observations onto CanonicalFields. The first observation of each
// recognised type wins, even when its text is empty; unrecognised types are ignored.
// Values are copied verbatim.
func Normalize(obs []types.FieldObservation) CanonicalFields {
	var out CanonicalFields
	for i := range obs {
		slot := out.slot(obs[i].Type)
		if slot == nil || *slot != nil {
			continue
		}
		text := obs[i].Text
		*slot = &text
	}
	return out
}

func (f *CanonicalFields) slot(entityType string) **string {
	switch entityType {
	case types.EntitySupplierTaxID:
		return &f.SupplierTaxID
	case types.EntityInvoiceID:
		return &f.InvoiceID
	case types.EntityTotalAmount:
		return &f.Total
	case types.EntityTotalTaxAmount:
		return &f.TotalTax
	case types.EntityNetAmount:
		return &f.NetAmount
	case types.EntityCurrency:
		return &f.Currency
	case types.EntityInvoiceDate:
		return &f.IssueDate
	case types.EntityDueDate:
		return &f.DueDate
	case types.EntitySupplierName:
		return &f.SupplierName
	case types.EntitySupplierAddress:
		return &f.SupplierAddress
	}
	return nil
}

// IdentityOf derives the record identity. A missing or empty tax id becomes "unknown";
// a missing or empty invoice number falls back to the full object name.
func IdentityOf(f CanonicalFields, objectName string) (ownerID, invoiceID string) {
	ownerID = types.UnknownOwner
	if f.SupplierTaxID != nil && *f.SupplierTaxID != "" {
		ownerID = *f.SupplierTaxID
	}
	invoiceID = objectName
	if f.InvoiceID != nil && *f.InvoiceID != "" {
		invoiceID = *f.InvoiceID
	}
	// Owner ids become the first segment of the record id.
	ownerID = strings.ReplaceAll(ownerID, "/", "_")
	return ownerID, invoiceID
}
