package domain

import (
	"context"

	valuationgrpc "github.com/louisbranch/appraisal/internal/services/valuation/api/grpc/valuation"
	"github.com/louisbranch/appraisal/internal/services/valuation/app"
	"github.com/louisbranch/appraisal/internal/services/valuation/storage"
	"google.golang.org/grpc"
)

// ValuationClient is the valuation service surface used by the MCP handlers.
// *valuationgrpc.Client satisfies it.
type ValuationClient interface {
	Appraise(ctx context.Context, attrs map[string]any, opts ...grpc.CallOption) (app.Valuation, error)
	GetValuation(ctx context.Context, id string, opts ...grpc.CallOption) (app.Valuation, error)
	ListValuations(ctx context.Context, opts storage.ListOptions, callOpts ...grpc.CallOption) (app.Page, error)
	DescribeRules(ctx context.Context, opts ...grpc.CallOption) (valuationgrpc.RulesResponse, error)
}

var _ ValuationClient = (*valuationgrpc.Client)(nil)
