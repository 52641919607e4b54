package valuation

import (
	"context"
	"strings"

	"github.com/louisbranch/appraisal/internal/platform/requestctx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// LocaleHeader is the gRPC metadata key for the caller's preferred locale.
const LocaleHeader = "x-appraisal-locale"

// LocaleUnaryServerInterceptor copies the LocaleHeader value into the request
// context.
func LocaleUnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if locale := localeFromIncoming(ctx); locale != "" {
			ctx = requestctx.WithLocale(ctx, locale)
		}
		return handler(ctx, req)
	}
}

// LocaleUnaryClientInterceptor forwards the context locale as LocaleHeader.
func LocaleUnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(withOutgoingLocale(ctx), method, req, reply, cc, opts...)
	}
}

func withOutgoingLocale(ctx context.Context) context.Context {
	locale := requestctx.LocaleFromContext(ctx)
	if locale == "" {
		return ctx
	}
	if md, ok := metadata.FromOutgoingContext(ctx); ok && len(md.Get(LocaleHeader)) > 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, LocaleHeader, locale)
}

func localeFromIncoming(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, value := range md.Get(LocaleHeader) {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

// requestLocale returns the locale for error rendering, checking the request
// context first and the raw metadata second.
func requestLocale(ctx context.Context) string {
	if locale := requestctx.LocaleFromContext(ctx); locale != "" {
		return locale
	}
	return localeFromIncoming(ctx)
}
