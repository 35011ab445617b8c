package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/invoice-ingest-backend/internal/http/response"
	"github.com/yungbote/invoice-ingest-backend/internal/modules/invoices"
)

type StorageHandler struct {
	uc InvoiceUsecases
}

func NewStorageHandler(uc InvoiceUsecases) *StorageHandler {
	return &StorageHandler{uc: uc}
}

// GET /api/storage/view-url/:ownerId/:invoiceId
func (h *StorageHandler) ViewURL(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.uc.ViewURL(c.Request.Context(), invoices.ViewURLInput{Principal: p, RecordID: recordIDParam(c)})
	if err != nil {
		respondInvoiceError(c, err, http.StatusBadGateway)
		return
	}
	response.RespondOK(c, gin.H{"url": out.URL, "expiresAt": out.ExpiresAt})
}

type uploadURLRequest struct {
	Filename string `json:"filename"`
}

// POST /api/storage/upload-url
func (h *StorageHandler) UploadURL(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.uc.UploadURL(c.Request.Context(), invoices.UploadURLInput{Principal: p, Filename: req.Filename})
	if err != nil {
		respondInvoiceError(c, err, http.StatusBadGateway)
		return
	}
	response.RespondOK(c, out)
}
