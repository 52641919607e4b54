package domain

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCallErrorPrefersLocalizedMessage(t *testing.T) {
	st, err := status.New(codes.NotFound, "valuation not found").WithDetails(&errdetails.LocalizedMessage{
		Locale:  "pt-BR",
		Message: "Avaliação v1 não encontrada",
	})
	if err != nil {
		t.Fatalf("with details: %v", err)
	}
	callErr := newCallError("valuation get", st.Err())
	if got := callErr.Error(); got != "valuation get failed: Avaliação v1 não encontrada" {
		t.Fatalf("error = %q", got)
	}
	if status.Code(errors.Unwrap(callErr)) != codes.NotFound {
		t.Fatal("expected wrapped status error")
	}

	plain := newCallError("valuation rules", status.Error(codes.Unavailable, "connection refused"))
	if got := plain.Error(); got != "valuation rules failed: connection refused" {
		t.Fatalf("error = %q", got)
	}

	other := newCallError("valuation list", fmt.Errorf("boom"))
	if got := other.Error(); got != "valuation list failed: boom" {
		t.Fatalf("error = %q", got)
	}
}
