package ctxutil

import (
	"context"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
)

type requestDataKey struct{}

// RequestData is attached by the auth middleware once a caller is verified.
type RequestData struct {
	Principal types.Principal
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(Default(ctx), requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// PrincipalFrom returns the verified caller, ok=false when the request is anonymous.
func PrincipalFrom(ctx context.Context) (types.Principal, bool) {
	rd := GetRequestData(ctx)
	if rd == nil || rd.Principal.UID == "" {
		return types.Principal{}, false
	}
	return rd.Principal, true
}
