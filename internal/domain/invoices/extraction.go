package invoices

import (
	"fmt"
	"strings"
)

// Entity type names emitted by the invoice parser.
const (
	EntitySupplierTaxID   = "supplier_tax_id"
	EntityInvoiceID       = "invoice_id"
	EntityTotalAmount     = "total_amount"
	EntityTotalTaxAmount  = "total_tax_amount"
	EntityNetAmount       = "net_amount"
	EntityCurrency        = "currency"
	EntityInvoiceDate     = "invoice_date"
	EntityDueDate         = "due_date"
	EntitySupplierName    = "supplier_name"
	EntitySupplierAddress = "supplier_address"
)

// FieldObservation is one typed entity reported by the extractor.
type FieldObservation struct {
	Type       string  `json:"type"`
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence"`
}

type Extraction struct {
	SchemaVersion string             `json:"schemaVersion"`
	Entities      []FieldObservation `json:"entities"`
}

// Source names the stored object an ingestion run reads.
type Source struct {
	Bucket     string `json:"bucket"`
	Name       string `json:"name"`
	Generation string `json:"generation,omitempty"`
}

// Note is the composite provenance string recorded on ingestion events.
func (s Source) Note() string {
	gen := s.Generation
	if gen == "" {
		gen = "nog"
	}
	return s.Bucket + ":" + s.Name + ":" + gen
}

func (s Source) URI() string {
	return "gs://" + s.Bucket + "/" + s.Name
}

// SourceFromURI parses a gs://bucket/name path back into a Source.
func SourceFromURI(uri string) (Source, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "gs://")
	if !ok {
		return Source{}, fmt.Errorf("invalid file path %q: expected gs://bucket/name", uri)
	}
	bucket, name, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || name == "" {
		return Source{}, fmt.Errorf("invalid file path %q: expected gs://bucket/name", uri)
	}
	return Source{Bucket: bucket, Name: name}, nil
}

// SplitRecordID splits "owner/invoice" at the first slash.
func SplitRecordID(recordID string) (ownerID, invoiceID string, ok bool) {
	ownerID, invoiceID, ok = strings.Cut(recordID, "/")
	if !ok || ownerID == "" || invoiceID == "" {
		return "", "", false
	}
	return ownerID, invoiceID, true
}
