package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/dbctx"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

type memLedger struct {
	mu      sync.Mutex
	records map[string]*types.Invoice
	events  []*types.InvoiceEvent

	// staleExists makes Exists report false for stored records, as a concurrent writer would.
	staleExists bool
	existsErr   error
	scanErr     error
	countErr    error
	// failAppends makes the next n event writes fail with appendErr.
	failAppends int
	appendErr   error
}

func newMemLedger() *memLedger {
	return &memLedger{records: map[string]*types.Invoice{}}
}

func (m *memLedger) Exists(_ dbctx.Context, ownerID, invoiceID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if m.staleExists {
		return false, nil
	}
	_, ok := m.records[types.RecordID(ownerID, invoiceID)]
	return ok, nil
}

func (m *memLedger) Create(_ dbctx.Context, inv *types.Invoice, first *types.InvoiceEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := inv.RecordID()
	if _, ok := m.records[id]; ok {
		return false, nil
	}
	first.OwnerID, first.InvoiceID = inv.OwnerID, inv.InvoiceID
	if err := m.appendLocked(first); err != nil {
		return false, err
	}
	cp := *inv
	m.records[id] = &cp
	return true, nil
}

func (m *memLedger) Get(_ dbctx.Context, ownerID, invoiceID string) (*types.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.records[types.RecordID(ownerID, invoiceID)]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (m *memLedger) matching(f types.ScanFilter) []*types.Invoice {
	out := []*types.Invoice{}
	for _, inv := range m.records {
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.OwnerID != "" && inv.OwnerID != f.OwnerID {
			continue
		}
		if f.UploaderUID != "" && inv.UploaderUID != f.UploaderUID {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	return out
}

func (m *memLedger) Scan(_ dbctx.Context, f types.ScanFilter) ([]*types.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	rows := m.matching(f)
	sort.Slice(rows, func(i, j int) bool { return before(rows[i], rows[j]) })
	if c := f.After; c != nil {
		pivot := &types.Invoice{CreatedAt: c.CreatedAt, OwnerID: c.OwnerID, InvoiceID: c.InvoiceID}
		kept := rows[:0]
		for _, r := range rows {
			if before(pivot, r) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	if f.Limit > 0 && len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}
	return rows, nil
}

// before orders newest first, then by identity.
func before(a, b *types.Invoice) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if a.OwnerID != b.OwnerID {
		return a.OwnerID < b.OwnerID
	}
	return a.InvoiceID < b.InvoiceID
}

func (m *memLedger) Count(_ dbctx.Context, f types.ScanFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.matching(f))), nil
}

func (m *memLedger) SetStatus(_ dbctx.Context, ownerID, invoiceID, status string, ev *types.InvoiceEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.records[types.RecordID(ownerID, invoiceID)]
	if !ok {
		return false, nil
	}
	inv.Status = status
	inv.UpdatedAt = ev.At
	ev.OwnerID, ev.InvoiceID = ownerID, invoiceID
	ev.ID = uuid.New()
	m.events = append(m.events, ev)
	return true, nil
}

func (m *memLedger) AppendEvent(_ dbctx.Context, ev *types.InvoiceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(ev)
}

func (m *memLedger) appendLocked(ev *types.InvoiceEvent) error {
	if m.failAppends > 0 {
		m.failAppends--
		return m.appendErr
	}
	if ev.OwnerID == "" || ev.InvoiceID == "" || ev.Action == "" {
		return fmt.Errorf("incomplete event")
	}
	ev.ID = uuid.New()
	m.events = append(m.events, ev)
	return nil
}

func (m *memLedger) ListEvents(_ dbctx.Context, ownerID, invoiceID string) ([]*types.InvoiceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*types.InvoiceEvent{}
	for _, ev := range m.events {
		if ev.OwnerID == ownerID && ev.InvoiceID == invoiceID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memLedger) actions(ownerID, invoiceID string) []string {
	evs, _ := m.ListEvents(dbctx.Context{}, ownerID, invoiceID)
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Action)
	}
	return out
}

func (m *memLedger) put(inv *types.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.records[inv.RecordID()] = &cp
}

type memBlobs struct {
	dir   string
	err   error
	mu    sync.Mutex
	paths []string
}

func newMemBlobs(t *testing.T) *memBlobs {
	return &memBlobs{dir: t.TempDir()}
}

func (b *memBlobs) Download(_ context.Context, bucket, name string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	f, err := os.CreateTemp(b.dir, "invoice-*.pdf")
	if err != nil {
		return "", err
	}
	_, _ = f.WriteString("%PDF-1.4 " + bucket + "/" + name)
	_ = f.Close()
	b.mu.Lock()
	b.paths = append(b.paths, f.Name())
	b.mu.Unlock()
	return f.Name(), nil
}

func (b *memBlobs) URI(bucket, name string) string { return "gs://" + bucket + "/" + name }

func (b *memBlobs) SignedReadURL(bucket, name string, expires time.Time) (string, error) {
	return fmt.Sprintf("https://signed.test/%s/%s?method=GET&exp=%d", bucket, name, expires.Unix()), nil
}

func (b *memBlobs) SignedUploadURL(bucket, name, contentType string, expires time.Time) (string, error) {
	return fmt.Sprintf("https://signed.test/%s/%s?method=PUT&ct=%s&exp=%d", bucket, filepath.ToSlash(name), contentType, expires.Unix()), nil
}

type memExtractor struct {
	out   types.Extraction
	err   error
	calls int
}

func (e *memExtractor) Extract(_ context.Context, localPath string) (types.Extraction, error) {
	e.calls++
	if _, err := os.Stat(localPath); err != nil {
		return types.Extraction{}, fmt.Errorf("local file missing: %w", err)
	}
	if e.err != nil {
		return types.Extraction{}, e.err
	}
	return e.out, nil
}

type memProfiles struct {
	byUID map[string]*types.Profile
	err   error
}

func (p *memProfiles) Lookup(_ context.Context, uid string) (*types.Profile, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.byUID[uid], nil
}

type memNotifier struct {
	mu     sync.Mutex
	events []*types.InvoiceEvent
	err    error
}

func (n *memNotifier) Publish(_ context.Context, ev *types.InvoiceEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

// tickClock advances one second per reading.
type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTickClock() *tickClock {
	return &tickClock{now: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)}
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func extraction(pairs ...string) types.Extraction {
	out := types.Extraction{SchemaVersion: "1.0"}
	for i := 0; i+1 < len(pairs); i += 2 {
		out.Entities = append(out.Entities, types.FieldObservation{Type: pairs[i], Text: pairs[i+1], Confidence: 0.9})
	}
	return out
}
