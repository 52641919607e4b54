package id

import (
	"encoding/base32"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewIDIsEncodedV7(t *testing.T) {
	value, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(value) != 26 {
		t.Fatalf("len = %d, want 26", len(value))
	}
	if strings.Trim(value, "0123456789abcdefghijklmnopqrstuv") != "" {
		t.Fatalf("id %q has characters outside base32hex", value)
	}

	raw, err := base32.HexEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(value))
	if err != nil {
		t.Fatalf("decode id: %v", err)
	}
	u, err := uuid.FromBytes(raw)
	if err != nil {
		t.Fatalf("uuid from bytes: %v", err)
	}
	if u.Version() != 7 || u.Variant() != uuid.RFC4122 {
		t.Fatalf("uuid %s version %d variant %s", u, u.Version(), u.Variant())
	}
}

func TestNewIDSortsByIssue(t *testing.T) {
	ids := make([]string, 50)
	for i := range ids {
		value, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		ids[i] = value
	}
	if !slices.IsSorted(ids) {
		t.Fatalf("ids not sorted: %v", ids)
	}
	if len(slices.Compact(slices.Clone(ids))) != len(ids) {
		t.Fatal("duplicate ids")
	}
}
