package steps

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/dbctx"
)

type StatsInput struct {
	Principal types.Principal
	OwnerID   string
}

type StatsOutput struct {
	Parsed   int64 `json:"parsed"`
	Observed int64 `json:"observed"`
	Approved int64 `json:"approved"`
	Paid     int64 `json:"paid"`
	Total    int64 `json:"total"`
}

// Stats counts visible records per status. Counts run concurrently under the caller's scope.
func Stats(ctx context.Context, deps QueryDeps, in StatsInput) (StatsOutput, error) {
	var out StatsOutput
	if deps.Ledger == nil {
		return out, fmt.Errorf("invoice_stats: missing deps")
	}
	if in.Principal.UID == "" {
		return out, fmt.Errorf("%w: principal required", ErrForbidden)
	}
	base := ScopeFilter(in.Principal, "", in.OwnerID, 0)

	targets := map[string]*int64{
		types.StatusParsed:   &out.Parsed,
		types.StatusObserved: &out.Observed,
		types.StatusApproved: &out.Approved,
		types.StatusPaid:     &out.Paid,
		"":                   &out.Total,
	}
	g, gctx := errgroup.WithContext(ctx)
	for status, dst := range targets {
		f := base
		f.Status = status
		g.Go(func() error {
			n, err := deps.Ledger.Count(dbctx.Context{Ctx: gctx}, f)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StatsOutput{}, fmt.Errorf("%w: stats: %w", ErrQuery, err)
	}
	return out, nil
}
