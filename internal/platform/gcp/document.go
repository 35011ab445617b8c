package gcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/ctxutil"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

const invoiceSchemaVersion = "1.0"

// InvoiceParser runs a Document AI invoice processor over a local PDF.
type InvoiceParser interface {
	Extract(ctx context.Context, localPath string) (types.Extraction, error)
	Close() error
}

type DocumentConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
	MimeType         string
	Timeout          time.Duration
}

type invoiceParser struct {
	log       *logger.Logger
	docClient *documentai.DocumentProcessorClient
	name      string
	mimeType  string
	timeout   time.Duration
}

func NewInvoiceParser(log *logger.Logger, cfg DocumentConfig) (InvoiceParser, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.InvoiceParser")

	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "us"
	}
	name := processorName(cfg.ProjectID, location, cfg.ProcessorID, cfg.ProcessorVersion)
	if name == "" {
		return nil, fmt.Errorf("document ai processor requires project and processor id")
	}

	// Document AI is regional; the endpoint must match the processor location.
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptionsFromEnv()...)
	c, err := documentai.NewDocumentProcessorClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}

	mime := strings.TrimSpace(cfg.MimeType)
	if mime == "" {
		mime = "application/pdf"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}

	slog.Info("Document AI initialized", "endpoint", endpoint, "processor", name)
	return &invoiceParser{
		log:       slog,
		docClient: c,
		name:      name,
		mimeType:  mime,
		timeout:   timeout,
	}, nil
}

func (p *invoiceParser) Close() error {
	if p == nil || p.docClient == nil {
		return nil
	}
	return p.docClient.Close()
}

func (p *invoiceParser) Extract(ctx context.Context, localPath string) (types.Extraction, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	data, err := os.ReadFile(localPath)
	if err != nil {
		return types.Extraction{}, fmt.Errorf("read %s: %w", localPath, err)
	}
	if len(data) == 0 {
		return types.Extraction{}, errors.New("empty document")
	}

	resp, err := p.docClient.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: p.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: p.mimeType,
			},
		},
	})
	if err != nil {
		return types.Extraction{}, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	if resp == nil || resp.GetDocument() == nil {
		return types.Extraction{}, errors.New("documentai returned no document")
	}

	out := types.Extraction{
		SchemaVersion: invoiceSchemaVersion,
		Entities:      entitiesFromDocument(resp.GetDocument()),
	}
	p.log.Debug("Invoice extracted", "processor", p.name, "entities", len(out.Entities))
	return out, nil
}

// entitiesFromDocument flattens the top-level entities in document order.
func entitiesFromDocument(doc *documentaipb.Document) []types.FieldObservation {
	out := make([]types.FieldObservation, 0, len(doc.GetEntities()))
	for _, e := range doc.GetEntities() {
		if e == nil {
			continue
		}
		out = append(out, types.FieldObservation{
			Type:       e.GetType(),
			Text:       e.GetMentionText(),
			Confidence: e.GetConfidence(),
		})
	}
	return out
}

func processorName(project, location, processorID, version string) string {
	project = strings.TrimSpace(project)
	location = strings.TrimSpace(location)
	processorID = strings.TrimSpace(processorID)
	version = strings.TrimSpace(version)

	if project == "" || location == "" || processorID == "" {
		return ""
	}
	base := fmt.Sprintf("projects/%s/locations/%s/processors/%s", project, location, processorID)
	if version != "" {
		return base + "/processorVersions/" + version
	}
	return base
}
