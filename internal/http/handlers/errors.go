package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/invoice-ingest-backend/internal/http/response"
	"github.com/yungbote/invoice-ingest-backend/internal/modules/invoices/steps"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/apierr"
)

// upstreamStatus is the status used for fetch and extraction failures. Their causes carry
// object URIs and provider text, so clients get a fixed message and the cause stays in the log.
func invoiceError(err error, upstreamStatus int) *apierr.Error {
	switch {
	case errors.Is(err, steps.ErrInvalidArgument):
		return apierr.New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, steps.ErrNotFound):
		return apierr.New(http.StatusNotFound, "not_found", errors.New("Not found"))
	case errors.Is(err, steps.ErrForbidden):
		return apierr.New(http.StatusForbidden, "forbidden", errors.New("Forbidden"))
	case errors.Is(err, steps.ErrFetch):
		return apierr.New(upstreamStatus, "fetch_failed", errors.New("could not fetch document"))
	case errors.Is(err, steps.ErrExtraction):
		return apierr.New(upstreamStatus, "extraction_failed", errors.New("extraction failed"))
	case errors.Is(err, steps.ErrQuery):
		return apierr.New(http.StatusInternalServerError, "query_failed", errors.New("query failed"))
	}
	return apierr.New(http.StatusInternalServerError, "internal", errors.New("internal error"))
}

func respondInvoiceError(c *gin.Context, err error, upstreamStatus int) {
	_ = c.Error(err)
	response.RespondAPIError(c, invoiceError(err, upstreamStatus))
}
