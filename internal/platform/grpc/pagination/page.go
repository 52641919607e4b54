// Package pagination normalizes list request paging and ordering.
package pagination

import (
	"fmt"
	"slices"
	"strings"
)

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// OrderByConfig configures order_by validation.
type OrderByConfig struct {
	Default string
	Allowed []string
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int32, cfg PageSizeConfig) int {
	pageSize := int(value)
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// Order is a normalized order_by clause.
type Order struct {
	Field      string
	Descending bool
}

// String renders the order in order_by syntax.
func (o Order) String() string {
	if o.Descending {
		return o.Field + " desc"
	}
	return o.Field
}

// NormalizeOrderBy validates an AIP-132 style order_by of one field with an
// optional "asc" or "desc" suffix and applies the default when empty.
func NormalizeOrderBy(orderBy string, cfg OrderByConfig) (Order, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		orderBy = cfg.Default
	}
	fields := strings.Fields(strings.ToLower(orderBy))
	if len(fields) == 0 || len(fields) > 2 {
		return Order{}, fmt.Errorf("invalid order_by: %s", orderBy)
	}
	order := Order{Field: fields[0]}
	if len(fields) == 2 {
		switch fields[1] {
		case "asc":
		case "desc":
			order.Descending = true
		default:
			return Order{}, fmt.Errorf("invalid order_by direction: %s", fields[1])
		}
	}
	if !slices.Contains(cfg.Allowed, order.Field) {
		return Order{}, fmt.Errorf("invalid order_by: %s", orderBy)
	}
	return order, nil
}
