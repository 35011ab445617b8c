package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/http/response"
	"github.com/yungbote/invoice-ingest-backend/internal/modules/invoices"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

const headerNextCursor = "X-Next-Cursor"

type InvoiceUsecases interface {
	Ingest(ctx context.Context, in invoices.IngestInput) (invoices.IngestOutput, error)
	Reprocess(ctx context.Context, in invoices.ReprocessInput) (invoices.IngestOutput, error)
	List(ctx context.Context, in invoices.ListInput) (invoices.ListOutput, error)
	Get(ctx context.Context, in invoices.GetInput) (invoices.GetOutput, error)
	Stats(ctx context.Context, in invoices.StatsInput) (invoices.StatsOutput, error)
	SetStatus(ctx context.Context, in invoices.SetStatusInput) (invoices.SetStatusOutput, error)
	ViewURL(ctx context.Context, in invoices.ViewURLInput) (invoices.SignedURLOutput, error)
	UploadURL(ctx context.Context, in invoices.UploadURLInput) (invoices.SignedURLOutput, error)
}

type InvoiceHandler struct {
	log *logger.Logger
	uc  InvoiceUsecases
}

func NewInvoiceHandler(log *logger.Logger, uc InvoiceUsecases) *InvoiceHandler {
	return &InvoiceHandler{log: log.With("handler", "InvoiceHandler"), uc: uc}
}

// GET /api/invoices?status=&supplierId=&limit=&cursor=
// The page is the JSON array; the next page token travels in X-Next-Cursor.
func (h *InvoiceHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
			return
		}
		limit = n
	}
	out, err := h.uc.List(c.Request.Context(), invoices.ListInput{
		Principal: p,
		Status:    c.Query("status"),
		OwnerID:   c.Query("supplierId"),
		Limit:     limit,
		Cursor:    c.Query("cursor"),
	})
	if err != nil {
		respondInvoiceError(c, err, http.StatusBadGateway)
		return
	}
	if out.NextCursor != "" {
		c.Header(headerNextCursor, out.NextCursor)
	}
	response.RespondOK(c, viewsOf(out.Items))
}

// GET /api/invoices/stats?supplierId=
func (h *InvoiceHandler) Stats(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.uc.Stats(c.Request.Context(), invoices.StatsInput{Principal: p, OwnerID: c.Query("supplierId")})
	if err != nil {
		respondInvoiceError(c, err, http.StatusBadGateway)
		return
	}
	response.RespondOK(c, out)
}

type fromUploadRequest struct {
	Bucket     string `json:"bucket" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Generation string `json:"generation"`
}

// POST /api/invoices/from-upload
func (h *InvoiceHandler) FromUpload(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req fromUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.uc.Ingest(c.Request.Context(), invoices.IngestInput{
		Source:   types.Source{Bucket: req.Bucket, Name: req.Name, Generation: req.Generation},
		Uploader: &invoices.Uploader{UID: p.UID, Email: p.Email},
	})
	if err != nil {
		respondInvoiceError(c, err, http.StatusBadGateway)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/invoices/:ownerId/:invoiceId
func (h *InvoiceHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.uc.Get(c.Request.Context(), invoices.GetInput{Principal: p, RecordID: recordIDParam(c)})
	if err != nil {
		respondInvoiceError(c, err, http.StatusBadGateway)
		return
	}
	response.RespondOK(c, gin.H{"invoice": viewOf(out.Invoice), "events": out.Events})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/invoices/:ownerId/:invoiceId/status
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.uc.SetStatus(c.Request.Context(), invoices.SetStatusInput{
		Principal: p,
		RecordID:  recordIDParam(c),
		Status:    req.Status,
	})
	if err != nil {
		respondInvoiceError(c, err, http.StatusBadGateway)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/invoices/:ownerId/:invoiceId/reprocess
func (h *InvoiceHandler) Reprocess(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.uc.Reprocess(c.Request.Context(), invoices.ReprocessInput{Principal: p, RecordID: recordIDParam(c)})
	if err != nil {
		respondInvoiceError(c, err, http.StatusBadGateway)
		return
	}
	response.RespondOK(c, out)
}
