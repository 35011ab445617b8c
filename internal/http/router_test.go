package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/invoice-ingest-backend/internal/data/repos"
	"github.com/yungbote/invoice-ingest-backend/internal/data/repos/testutil"
	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	httpH "github.com/yungbote/invoice-ingest-backend/internal/http/handlers"
	httpMW "github.com/yungbote/invoice-ingest-backend/internal/http/middleware"
	"github.com/yungbote/invoice-ingest-backend/internal/modules/invoices"
	"github.com/yungbote/invoice-ingest-backend/internal/services"
)

const testSecret = "router-secret"

type fakeBlobs struct{ dir string }

func (b fakeBlobs) Download(_ context.Context, _, _ string) (string, error) {
	f, err := os.CreateTemp(b.dir, "doc-*.pdf")
	if err != nil {
		return "", err
	}
	return f.Name(), f.Close()
}

func (fakeBlobs) URI(bucket, name string) string { return "gs://" + bucket + "/" + name }

func (fakeBlobs) SignedReadURL(bucket, name string, _ time.Time) (string, error) {
	return "https://signed.test/get/" + bucket + "/" + name, nil
}

func (fakeBlobs) SignedUploadURL(bucket, name, _ string, _ time.Time) (string, error) {
	return "https://signed.test/put/" + bucket + "/" + name, nil
}

// fakeExtractor returns whatever extraction the test set last.
type fakeExtractor struct{ byName map[string]types.Extraction }

func (e fakeExtractor) Extract(context.Context, string) (types.Extraction, error) {
	return e.byName["current"], nil
}

type harness struct {
	router *gin.Engine
	ex     fakeExtractor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	if os.Getenv("TEST_POSTGRES_DSN") != "" {
		t.Skip("router tests need a private sqlite database")
	}
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	db := testutil.DB(t)

	testutil.SeedProfile(t, context.Background(), db, "admin1", types.RoleAdmin)
	profileRepo := repos.NewProfileRepo(db, log)
	profiles := services.NewProfileService(log, profileRepo, nil)
	verifier, err := services.NewHMACVerifier(testSecret, "")
	if err != nil {
		t.Fatalf("NewHMACVerifier: %v", err)
	}

	ex := fakeExtractor{byName: map[string]types.Extraction{}}
	uc := invoices.New(invoices.UsecasesDeps{
		Log:          log,
		Ledger:       repos.NewInvoiceRepo(db, log),
		Blobs:        fakeBlobs{dir: t.TempDir()},
		Extractor:    ex,
		Profiles:     profiles,
		UploadBucket: "inbox",
	})

	r := NewRouter(RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, verifier, profiles),
		HealthHandler:  httpH.NewHealthHandler("test", map[string]bool{"GCS_BUCKET": true}),
		EventHandler:   httpH.NewEventHandler(log, uc),
		UserHandler:    httpH.NewUserHandler(),
		InvoiceHandler: httpH.NewInvoiceHandler(log, uc),
		StorageHandler: httpH.NewStorageHandler(uc),
	})
	return &harness{router: r, ex: ex}
}

func (h *harness) extract(tax, inv string) {
	h.ex.byName["current"] = types.Extraction{SchemaVersion: "1.0", Entities: []types.FieldObservation{
		{Type: types.EntitySupplierTaxID, Text: tax},
		{Type: types.EntityInvoiceID, Text: inv},
		{Type: types.EntityTotalAmount, Text: "118.00"},
	}}
}

func (h *harness) do(t *testing.T, method, path, uid string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		tok, err := services.IssueHMACToken(testSecret, "", uid, uid+"@example.com", time.Minute)
		if err != nil {
			t.Fatalf("IssueHMACToken: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/health", "/healthz", "/env-check"} {
		if rec := h.do(t, http.MethodGet, path, "", nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: want=200 got=%d", path, rec.Code)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/api/invoices", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: want=401 got=%d", rec.Code)
	}
	var env struct {
		Error struct{ Message string } `json:"error"`
	}
	decode(t, rec, &env)
	if env.Error.Message != "Invalid token" {
		t.Fatalf("message: want=%q got=%q", "Invalid token", env.Error.Message)
	}
}

func TestInvoiceFlowOverHTTP(t *testing.T) {
	h := newHarness(t)
	h.extract("20123456789", "F001-99")

	rec := h.do(t, http.MethodPost, "/api/invoices/from-upload", "u1", map[string]string{
		"bucket": "inbox", "name": "uploads/u1/f.pdf", "generation": "1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("from-upload: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	var ingested struct {
		OK      bool   `json:"ok"`
		DocID   string `json:"doc_id"`
		Skipped bool   `json:"skipped"`
	}
	decode(t, rec, &ingested)
	if ingested.DocID != "20123456789/F001-99" || ingested.Skipped {
		t.Fatalf("from-upload: got=%+v", ingested)
	}

	rec = h.do(t, http.MethodPost, "/", "", map[string]any{
		"data": map[string]any{"bucket": "inbox", "name": "uploads/u1/f.pdf", "generation": 1},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("push: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &ingested)
	if !ingested.Skipped {
		t.Fatalf("push of same invoice: want skipped")
	}

	rec = h.do(t, http.MethodPatch, "/api/invoices/20123456789/F001-99/status", "u1", map[string]string{"status": "approved"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := h.do(t, http.MethodPatch, "/api/invoices/20123456789/F404/status", "u1", map[string]string{"status": "paid"}); rec.Code != http.StatusNotFound {
		t.Fatalf("missing status: want=404 got=%d", rec.Code)
	}
	if rec := h.do(t, http.MethodPatch, "/api/invoices/20123456789/F001-99/status", "u2", map[string]string{"status": "paid"}); rec.Code != http.StatusForbidden {
		t.Fatalf("stranger status: want=403 got=%d", rec.Code)
	}

	rec = h.do(t, http.MethodGet, "/api/invoices/20123456789/F001-99", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: want=200 got=%d", rec.Code)
	}
	var got struct {
		Invoice struct {
			ID          string `json:"id"`
			Status      string `json:"status"`
			SupplierID  string `json:"supplierId"`
			SupplierUID string `json:"supplierUid"`
		} `json:"invoice"`
		Events []struct {
			Action string  `json:"action"`
			ByUID  *string `json:"byUid"`
		} `json:"events"`
	}
	decode(t, rec, &got)
	if got.Invoice.ID != "20123456789/F001-99" || got.Invoice.Status != "approved" || got.Invoice.SupplierUID != "u1" {
		t.Fatalf("get invoice: got=%+v", got.Invoice)
	}
	actions := make([]string, 0, len(got.Events))
	for _, ev := range got.Events {
		actions = append(actions, ev.Action)
	}
	if strings.Join(actions, ",") != "EXTRACTED,SKIPPED_DUPLICATE,STATUS_APPROVED" {
		t.Fatalf("events: got=%v", actions)
	}

	var mine []map[string]any
	rec = h.do(t, http.MethodGet, "/api/invoices?supplierId=someone-else", "u1", nil)
	decode(t, rec, &mine)
	if len(mine) != 1 {
		t.Fatalf("owner list: want=1 got=%d", len(mine))
	}
	rec = h.do(t, http.MethodGet, "/api/invoices", "u2", nil)
	var theirs []map[string]any
	decode(t, rec, &theirs)
	if len(theirs) != 0 {
		t.Fatalf("stranger list: want=0 got=%d", len(theirs))
	}
	rec = h.do(t, http.MethodGet, "/api/invoices?supplierId=20123456789", "admin1", nil)
	var all []map[string]any
	decode(t, rec, &all)
	if len(all) != 1 {
		t.Fatalf("admin list: want=1 got=%d", len(all))
	}
	if rec := h.do(t, http.MethodGet, "/api/invoices?limit=500", "u1", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("limit 500: want=400 got=%d", rec.Code)
	}

	rec = h.do(t, http.MethodGet, "/api/invoices/stats", "admin1", nil)
	var stats map[string]int
	decode(t, rec, &stats)
	if stats["approved"] != 1 || stats["total"] != 1 {
		t.Fatalf("stats: got=%v", stats)
	}

	rec = h.do(t, http.MethodGet, "/api/storage/view-url/20123456789/F001-99", "u1", nil)
	var view struct{ URL string }
	decode(t, rec, &view)
	if view.URL != "https://signed.test/get/inbox/uploads/u1/f.pdf" {
		t.Fatalf("view url: got=%q", view.URL)
	}
	if rec := h.do(t, http.MethodGet, "/api/storage/view-url/20123456789/F001-99", "u2", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("stranger view url: want=403 got=%d", rec.Code)
	}

	rec = h.do(t, http.MethodPost, "/api/invoices/20123456789/F001-99/reprocess", "u1", nil)
	decode(t, rec, &ingested)
	if rec.Code != http.StatusOK || !ingested.Skipped {
		t.Fatalf("reprocess: code=%d got=%+v", rec.Code, ingested)
	}
}

func TestUploadURLAndMe(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/storage/upload-url", "u1", map[string]string{"filename": "mi factura.pdf"})
	if rec.Code != http.StatusOK {
		t.Fatalf("upload-url: want=200 got=%d", rec.Code)
	}
	var up struct {
		URL    string `json:"url"`
		Bucket string `json:"bucket"`
		Name   string `json:"name"`
	}
	decode(t, rec, &up)
	if up.Bucket != "inbox" || !strings.HasPrefix(up.Name, "uploads/u1/") || !strings.HasSuffix(up.Name, "-mi_factura.pdf") {
		t.Fatalf("upload-url: got=%+v", up)
	}

	rec = h.do(t, http.MethodGet, "/api/me", "admin1", nil)
	var me struct {
		Me types.Principal `json:"me"`
	}
	decode(t, rec, &me)
	if !me.Me.IsAdmin() {
		t.Fatalf("me: want admin got=%+v", me.Me)
	}
}

func TestEscapedSlashInInvoiceID(t *testing.T) {
	h := newHarness(t)
	h.extract("", "")

	rec := h.do(t, http.MethodPost, "/api/invoices/from-upload", "u1", map[string]string{"bucket": "inbox", "name": "scans/a.pdf"})
	var out struct {
		DocID string `json:"doc_id"`
	}
	decode(t, rec, &out)
	if out.DocID != "unknown/scans/a.pdf" {
		t.Fatalf("doc id: got=%q", out.DocID)
	}
	if rec := h.do(t, http.MethodGet, "/api/invoices/unknown/scans%2Fa.pdf", "u1", nil); rec.Code != http.StatusOK {
		t.Fatalf("escaped get: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
}
