package pagination

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Cursor is the decoded form of a page token. It binds an offset to the
// filter and order it was issued for.
type Cursor struct {
	Offset     int    `json:"o"`
	FilterHash string `json:"f,omitempty"`
	OrderHash  string `json:"s,omitempty"`
}

// NewCursor returns a cursor for the page starting at offset.
func NewCursor(offset int, filter, orderBy string) Cursor {
	return Cursor{
		Offset:     offset,
		FilterHash: HashFilter(filter),
		OrderHash:  HashFilter(orderBy),
	}
}

// Encode renders a cursor as an opaque page token.
func Encode(c Cursor) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// Decode parses a page token produced by Encode.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("page token is empty")
	}
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode page token: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, fmt.Errorf("decode page token: %w", err)
	}
	if c.Offset < 0 {
		return Cursor{}, fmt.Errorf("page token offset is negative")
	}
	return c, nil
}

// HashFilter returns a short stable hash of a filter or order expression.
// Empty input hashes to the empty string.
func HashFilter(expression string) string {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(expression))
	return hex.EncodeToString(sum[:])[:16]
}

// Validate reports whether c was issued for the same filter and order.
func (c Cursor) Validate(filter, orderBy string) error {
	if c.FilterHash != HashFilter(filter) {
		return fmt.Errorf("page token was issued for a different filter")
	}
	if c.OrderHash != HashFilter(orderBy) {
		return fmt.Errorf("page token was issued for a different order")
	}
	return nil
}
