package valuation

import (
	"context"

	"github.com/louisbranch/appraisal/internal/services/valuation/app"
	"github.com/louisbranch/appraisal/internal/services/valuation/storage"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the valuation service and decodes its responses.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a client over cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Appraise values raw attributes.
func (c *Client) Appraise(ctx context.Context, attrs map[string]any, opts ...grpc.CallOption) (app.Valuation, error) {
	in, err := structpb.NewStruct(attrs)
	if err != nil {
		return app.Valuation{}, err
	}
	var v app.Valuation
	if err := c.invoke(ctx, AppraiseMethod, in, &v, opts...); err != nil {
		return app.Valuation{}, err
	}
	return v, nil
}

// GetValuation returns a stored valuation.
func (c *Client) GetValuation(ctx context.Context, id string, opts ...grpc.CallOption) (app.Valuation, error) {
	in, err := toStruct(getValuationRequest{ID: id})
	if err != nil {
		return app.Valuation{}, err
	}
	var v app.Valuation
	if err := c.invoke(ctx, GetValuationMethod, in, &v, opts...); err != nil {
		return app.Valuation{}, err
	}
	return v, nil
}

// ListValuations returns a page of stored valuations.
func (c *Client) ListValuations(ctx context.Context, opts storage.ListOptions, callOpts ...grpc.CallOption) (app.Page, error) {
	in, err := toStruct(listValuationsRequest{
		PageSize:  opts.PageSize,
		PageToken: opts.PageToken,
		Filter:    opts.Filter,
		OrderBy:   opts.OrderBy,
	})
	if err != nil {
		return app.Page{}, err
	}
	var page app.Page
	if err := c.invoke(ctx, ListValuationsMethod, in, &page, callOpts...); err != nil {
		return app.Page{}, err
	}
	return page, nil
}

// DescribeRules returns the service's rule metadata.
func (c *Client) DescribeRules(ctx context.Context, opts ...grpc.CallOption) (RulesResponse, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(withOutgoingLocale(ctx), DescribeRulesMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return RulesResponse{}, err
	}
	var resp RulesResponse
	if err := fromStruct(out, &resp); err != nil {
		return RulesResponse{}, err
	}
	return resp, nil
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, v any, opts ...grpc.CallOption) error {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(withOutgoingLocale(ctx), method, in, out, opts...); err != nil {
		return err
	}
	return fromStruct(out, v)
}
