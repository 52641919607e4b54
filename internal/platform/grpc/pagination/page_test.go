package pagination

import (
	"encoding/base64"
	"testing"
)

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 20, Max: 100}
	tests := []struct {
		in   int32
		want int
	}{
		{0, 20},
		{-3, 20},
		{5, 5},
		{100, 100},
		{500, 100},
	}
	for _, tt := range tests {
		if got := ClampPageSize(tt.in, cfg); got != tt.want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("ClampPageSize without config = %d, want 1", got)
	}
}

func TestNormalizeOrderBy(t *testing.T) {
	cfg := OrderByConfig{Default: "created_at desc", Allowed: []string{"created_at", "final_price"}}
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"", Order{Field: "created_at", Descending: true}, false},
		{"final_price", Order{Field: "final_price"}, false},
		{"final_price asc", Order{Field: "final_price"}, false},
		{"FINAL_PRICE DESC", Order{Field: "final_price", Descending: true}, false},
		{"area", Order{}, true},
		{"final_price sideways", Order{}, true},
		{"final_price desc extra", Order{}, true},
	}
	for _, tt := range tests {
		got, err := NormalizeOrderBy(tt.in, cfg)
		if (err != nil) != tt.wantErr {
			t.Fatalf("NormalizeOrderBy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("NormalizeOrderBy(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if s := (Order{Field: "final_price", Descending: true}).String(); s != "final_price desc" {
		t.Fatalf("order string = %q", s)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := NewCursor(40, `property_type = "flat"`, "final_price desc")
	token, err := Encode(original)
	if err != nil {
		t.Fatalf("encode cursor: %v", err)
	}
	decoded, err := Decode(token)
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}
	if decoded != original {
		t.Fatalf("cursor = %+v, want %+v", decoded, original)
	}
	if err := decoded.Validate(`property_type = "flat"`, "final_price desc"); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := decoded.Validate(`property_type = "house"`, "final_price desc"); err == nil {
		t.Fatal("expected filter mismatch")
	}
	if err := decoded.Validate(`property_type = "flat"`, "created_at desc"); err == nil {
		t.Fatal("expected order mismatch")
	}
}

func TestDecodeRejectsBadTokens(t *testing.T) {
	for _, token := range []string{
		"",
		"not-base64@@",
		base64.URLEncoding.EncodeToString([]byte("not json")),
		base64.URLEncoding.EncodeToString([]byte(`{"o":-1}`)),
	} {
		if _, err := Decode(token); err == nil {
			t.Fatalf("Decode(%q) expected error", token)
		}
	}
}

func TestHashFilter(t *testing.T) {
	if HashFilter("") != "" || HashFilter("   ") != "" {
		t.Fatal("expected empty hash for empty filter")
	}
	hash := HashFilter("foo")
	if len(hash) != 16 {
		t.Fatalf("expected 16-char hash, got %d", len(hash))
	}
	if hash == HashFilter("bar") {
		t.Fatal("expected different hashes for different filters")
	}
}
