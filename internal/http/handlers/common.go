package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/http/response"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/ctxutil"
)

// principal reads the verified caller, writing a 401 when there is none.
func principal(c *gin.Context) (types.Principal, bool) {
	p, ok := ctxutil.PrincipalFrom(c.Request.Context())
	if !ok {
		response.AbortError(c, http.StatusUnauthorized, "unauthorized", "Invalid token")
		return types.Principal{}, false
	}
	return p, true
}

func recordIDParam(c *gin.Context) string {
	return types.RecordID(c.Param("ownerId"), c.Param("invoiceId"))
}

type invoiceView struct {
	ID string `json:"id"`
	*types.Invoice
}

func viewOf(inv *types.Invoice) invoiceView {
	return invoiceView{ID: inv.RecordID(), Invoice: inv}
}

func viewsOf(rows []*types.Invoice) []invoiceView {
	out := make([]invoiceView, 0, len(rows))
	for _, inv := range rows {
		out = append(out, viewOf(inv))
	}
	return out
}
