package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGRPCCode(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeInvalidAttributes, codes.InvalidArgument},
		{CodeInvalidFilter, codes.InvalidArgument},
		{CodeInvalidPageToken, codes.InvalidArgument},
		{CodeValuationNotFound, codes.NotFound},
		{CodeStoreUnavailable, codes.FailedPrecondition},
		{CodeUnknown, codes.Internal},
	}
	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Fatalf("%s grpc code = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestErrorMatchesByCode(t *testing.T) {
	cause := fmt.Errorf("row missing")
	err := Wrap(CodeValuationNotFound, "get valuation", cause)
	wrapped := fmt.Errorf("load: %w", err)

	if !stderrors.Is(wrapped, New(CodeValuationNotFound, "")) {
		t.Fatal("expected match by code")
	}
	if !stderrors.Is(wrapped, cause) {
		t.Fatal("expected cause in chain")
	}
	if !IsCode(wrapped, CodeValuationNotFound) {
		t.Fatal("expected IsCode to match")
	}
	if GetCode(cause) != CodeUnknown {
		t.Fatal("expected unknown code for plain errors")
	}
}

func TestHandleErrorAttachesDetails(t *testing.T) {
	err := WithMetadata(CodeValuationNotFound, "valuation missing", map[string]string{"ValuationID": "abc"})

	st, ok := status.FromError(HandleError(err, ""))
	if !ok {
		t.Fatal("expected grpc status")
	}
	if st.Code() != codes.NotFound {
		t.Fatalf("code = %v, want NotFound", st.Code())
	}
	var info *errdetails.ErrorInfo
	var localized *errdetails.LocalizedMessage
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			info = d
		case *errdetails.LocalizedMessage:
			localized = d
		}
	}
	if info == nil || info.Reason != string(CodeValuationNotFound) || info.Domain != Domain {
		t.Fatalf("error info = %+v", info)
	}
	if localized == nil || localized.Message != "Valuation abc was not found" {
		t.Fatalf("localized message = %+v", localized)
	}
}

func TestHandleErrorPassesThroughStatus(t *testing.T) {
	in := status.Error(codes.Unavailable, "down")
	if got := HandleError(in, ""); got != in {
		t.Fatalf("error = %v, want passthrough", got)
	}
	if HandleError(nil, "") != nil {
		t.Fatal("expected nil")
	}
	st, _ := status.FromError(HandleError(stderrors.New("boom"), ""))
	if st.Code() != codes.Internal {
		t.Fatalf("code = %v, want Internal", st.Code())
	}
}

func TestLocalizedMessage(t *testing.T) {
	err := WithMetadata(CodeInvalidAttributes, "bad", map[string]string{"Errors": "Area (sqm) is required"})
	if got := LocalizedMessage(err, "pt-BR"); got != "Os atributos do imóvel são inválidos: Area (sqm) is required" {
		t.Fatalf("message = %q", got)
	}
	if got := LocalizedMessage(stderrors.New("plain"), ""); got != "plain" {
		t.Fatalf("message = %q, want plain", got)
	}
}

func TestInvalidAttributesCarriesViolations(t *testing.T) {
	err := InvalidAttributes([]string{"Area (sqm) is required", "Condition is required"})
	if err.Metadata["Errors"] != "Area (sqm) is required; Condition is required" {
		t.Fatalf("metadata = %v", err.Metadata)
	}

	st, _ := status.FromError(HandleError(err, "en-US"))
	if st.Code() != codes.InvalidArgument {
		t.Fatalf("code = %v, want InvalidArgument", st.Code())
	}
	var badRequest *errdetails.BadRequest
	for _, detail := range st.Details() {
		if d, ok := detail.(*errdetails.BadRequest); ok {
			badRequest = d
		}
	}
	if badRequest == nil || len(badRequest.GetFieldViolations()) != 2 {
		t.Fatalf("bad request = %+v", badRequest)
	}
	if got := badRequest.GetFieldViolations()[1].GetDescription(); got != "Condition is required" {
		t.Fatalf("violation = %q", got)
	}
}

func TestValuationNotFound(t *testing.T) {
	cause := fmt.Errorf("no rows")
	err := ValuationNotFound("abc", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if got := LocalizedMessage(err, ""); got != "Valuation abc was not found" {
		t.Fatalf("message = %q", got)
	}
}

func TestInvalidListArgument(t *testing.T) {
	err := InvalidListArgument(CodeInvalidFilter, "Filter", "price >", stderrors.New("parse error"))
	if err.Message != "parse error" || GetMetadata(err)["Filter"] != "price >" {
		t.Fatalf("error = %+v", err)
	}
	if got := InvalidListArgument(CodeInvalidOrder, "OrderBy", "size", nil).Message; got != string(CodeInvalidOrder) {
		t.Fatalf("message = %q", got)
	}
}
