package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/http/response"
	"github.com/yungbote/invoice-ingest-backend/internal/modules/invoices"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/ctxutil"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

// generation arrives as a string from storage notifications and as a number from some relays.
type generation string

func (g *generation) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*g = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*g = generation(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return err
	}
	*g = generation(n.String())
	return nil
}

type storageEvent struct {
	Data struct {
		Bucket     string     `json:"bucket" binding:"required"`
		Name       string     `json:"name" binding:"required"`
		Generation generation `json:"generation"`
	} `json:"data" binding:"required"`
}

type EventHandler struct {
	log *logger.Logger
	uc  InvoiceUsecases
}

func NewEventHandler(log *logger.Logger, uc InvoiceUsecases) *EventHandler {
	return &EventHandler{log: log.With("handler", "EventHandler"), uc: uc}
}

// POST /
// Storage finalize notifications. Runs carry no uploader.
func (h *EventHandler) Push(c *gin.Context) {
	var ev storageEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ctx := c.Request.Context()
	log := h.log.With(ctxutil.LogFields(ctx)...)
	src := types.Source{Bucket: ev.Data.Bucket, Name: ev.Data.Name, Generation: string(ev.Data.Generation)}

	out, err := h.uc.Ingest(ctx, invoices.IngestInput{Source: src})
	if err != nil {
		log.Error("Storage event processing failed", "bucket", src.Bucket, "object", src.Name, "error", err)
		respondInvoiceError(c, err, http.StatusBadRequest)
		return
	}
	log.Info("Storage event processed", "bucket", src.Bucket, "object", src.Name, "doc_id", out.RecordID, "skipped", out.Skipped)
	response.RespondOK(c, out)
}
