package valuation

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/appraisal/internal/platform/errors"
	"github.com/louisbranch/appraisal/internal/services/valuation/app"
	"github.com/louisbranch/appraisal/internal/services/valuation/storage"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service implements ValuationServiceServer over an app.Pipeline.
type Service struct {
	pipeline *app.Pipeline
}

// NewService creates a Service backed by pipeline.
func NewService(pipeline *app.Pipeline) *Service {
	return &Service{pipeline: pipeline}
}

// Appraise values the attributes carried by in.
func (s *Service) Appraise(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "appraise request is required")
	}
	v, err := s.pipeline.Appraise(ctx, in.AsMap())
	if err != nil {
		return nil, apperrors.HandleError(err, requestLocale(ctx))
	}
	return s.encode(v)
}

// GetValuation returns a stored valuation by id.
func (s *Service) GetValuation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req getValuationRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "valuation id is required")
	}
	v, err := s.pipeline.Get(ctx, req.ID)
	if err != nil {
		return nil, apperrors.HandleError(err, requestLocale(ctx))
	}
	return s.encode(v)
}

// ListValuations returns a page of stored valuations.
func (s *Service) ListValuations(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listValuationsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.PageSize < 0 {
		return nil, status.Error(codes.InvalidArgument, "page size must not be negative")
	}
	page, err := s.pipeline.List(ctx, storage.ListOptions{
		PageSize:  req.PageSize,
		PageToken: req.PageToken,
		Filter:    req.Filter,
		OrderBy:   req.OrderBy,
	})
	if err != nil {
		return nil, apperrors.HandleError(err, requestLocale(ctx))
	}
	return s.encode(page)
}

// DescribeRules reports the rule set and model slots in use.
func (s *Service) DescribeRules(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	info := s.pipeline.Rules()
	return s.encode(RulesResponse{
		RulesVersion:  info.Metadata.RulesVersion,
		UsingDefaults: info.Metadata.UsingDefaults,
		RulesInfo:     info,
	})
}

func (s *Service) encode(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

var _ ValuationServiceServer = (*Service)(nil)
