package valuation

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "appraisal.valuation.v1.ValuationService"

// Full method names.
const (
	AppraiseMethod       = "/" + ServiceName + "/Appraise"
	GetValuationMethod   = "/" + ServiceName + "/GetValuation"
	ListValuationsMethod = "/" + ServiceName + "/ListValuations"
	DescribeRulesMethod  = "/" + ServiceName + "/DescribeRules"
)

// ValuationServiceServer is the server API for the valuation service.
type ValuationServiceServer interface {
	Appraise(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetValuation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListValuations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DescribeRules(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterValuationServiceServer registers srv on s.
func RegisterValuationServiceServer(s grpc.ServiceRegistrar, srv ValuationServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the valuation service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ValuationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Appraise", Handler: structHandler(AppraiseMethod, ValuationServiceServer.Appraise)},
		{MethodName: "GetValuation", Handler: structHandler(GetValuationMethod, ValuationServiceServer.GetValuation)},
		{MethodName: "ListValuations", Handler: structHandler(ListValuationsMethod, ValuationServiceServer.ListValuations)},
		{MethodName: "DescribeRules", Handler: describeRulesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "appraisal/valuation/v1/valuation.proto",
}

type structMethod func(ValuationServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func structHandler(fullMethod string, call structMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(ValuationServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(server, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func describeRulesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	server := srv.(ValuationServiceServer)
	if interceptor == nil {
		return server.DescribeRules(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DescribeRulesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return server.DescribeRules(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
