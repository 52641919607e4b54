// Package valuation exposes the valuation pipeline over gRPC.
//
// The service is declared with a hand-written grpc.ServiceDesc and exchanges
// google.protobuf.Struct messages whose fields mirror the JSON encoding of
// app.Valuation. Errors carry errdetails.ErrorInfo and a LocalizedMessage in
// the caller's locale, read from the LocaleHeader metadata key.
package valuation
