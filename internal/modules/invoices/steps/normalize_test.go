package steps

import (
	"testing"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
)

func TestNormalizeFirstObservationWins(t *testing.T) {
	f := Normalize(extraction(
		types.EntityTotalAmount, "100.00",
		types.EntityTotalAmount, "999.99",
		"line_item", "ignored",
		types.EntityCurrency, "PEN",
	).Entities)

	if f.Total == nil || *f.Total != "100.00" {
		t.Fatalf("total: want=100.00 got=%v", f.Total)
	}
	if f.Currency == nil || *f.Currency != "PEN" {
		t.Fatalf("currency: want=PEN got=%v", f.Currency)
	}
	if f.DueDate != nil {
		t.Fatalf("due date: want nil got=%q", *f.DueDate)
	}
}

func TestNormalizeEmptyFirstObservationStillWins(t *testing.T) {
	f := Normalize(extraction(
		types.EntitySupplierName, "",
		types.EntitySupplierName, "ACME SAC",
	).Entities)
	if f.SupplierName == nil || *f.SupplierName != "" {
		t.Fatalf("supplier name: want empty got=%v", f.SupplierName)
	}
}

func TestNormalizeKeepsValuesVerbatim(t *testing.T) {
	f := Normalize(extraction(types.EntityTotalAmount, " S/ 1,180.00 ").Entities)
	if *f.Total != " S/ 1,180.00 " {
		t.Fatalf("total: want verbatim got=%q", *f.Total)
	}
}

func TestIdentityOf(t *testing.T) {
	cases := []struct {
		name      string
		obs       types.Extraction
		object    string
		wantOwner string
		wantInv   string
	}{
		{
			name:      "both present",
			obs:       extraction(types.EntitySupplierTaxID, "20123456789", types.EntityInvoiceID, "F001-99"),
			object:    "uploads/u1/a.pdf",
			wantOwner: "20123456789",
			wantInv:   "F001-99",
		},
		{
			name:      "missing tax id",
			obs:       extraction(types.EntityInvoiceID, "F001-99"),
			object:    "a.pdf",
			wantOwner: "unknown",
			wantInv:   "F001-99",
		},
		{
			name:      "missing invoice number uses full object name",
			obs:       extraction(types.EntitySupplierTaxID, "20123456789"),
			object:    "uploads/u1/20250314-093000-a.pdf",
			wantOwner: "20123456789",
			wantInv:   "uploads/u1/20250314-093000-a.pdf",
		},
		{
			name:      "empty values fall back",
			obs:       extraction(types.EntitySupplierTaxID, "", types.EntityInvoiceID, ""),
			object:    "b.pdf",
			wantOwner: "unknown",
			wantInv:   "b.pdf",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			owner, inv := IdentityOf(Normalize(tc.obs.Entities), tc.object)
			if owner != tc.wantOwner || inv != tc.wantInv {
				t.Fatalf("identity: want=%q/%q got=%q/%q", tc.wantOwner, tc.wantInv, owner, inv)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	if got := Decide(false); got != DecisionCreate {
		t.Fatalf("absent: want=create got=%s", got)
	}
	if got := Decide(true); got != DecisionSkipWithEvent {
		t.Fatalf("present: want=skip_with_event got=%s", got)
	}
}
