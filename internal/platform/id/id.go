// Package id generates identifiers for stored valuations.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// encoding uses the extended hex alphabet so that encoded IDs sort in the
// same order as their bytes.
var encoding = base32.HexEncoding.WithPadding(base32.NoPadding)

// NewID returns a version 7 UUID as 26 lowercase base32hex characters. IDs
// issued later sort after earlier ones.
func NewID() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(u[:])), nil
}
