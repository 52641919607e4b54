package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/appraisal/internal/platform/errors"
)

// ErrNotFound indicates a requested valuation is missing.
var ErrNotFound = apperrors.New(apperrors.CodeValuationNotFound, "valuation not found")

// Page size bounds applied by ListValuations.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Orderable columns for ListValuations.
const (
	OrderCreatedAt  = "created_at"
	OrderFinalPrice = "final_price"
	DefaultOrderBy  = OrderCreatedAt + " desc"
)

// ValuationRecord is one persisted valuation.
type ValuationRecord struct {
	ID           string
	PropertyType string
	Location     string
	Area         float64
	ExpertPrice  float64
	FinalPrice   float64
	BlendMethod  string
	Simulated    bool
	RulesVersion string
	// Payload is the JSON encoding of the full valuation.
	Payload   []byte
	CreatedAt time.Time
}

// ListOptions selects a page of valuations.
type ListOptions struct {
	// PageSize defaults to DefaultPageSize and is capped at MaxPageSize.
	PageSize int
	// PageToken continues a previous listing with the same Filter and OrderBy.
	PageToken string
	// Filter is an AIP-160 expression over property_type, location,
	// blend_method, simulated, final_price, expert_price and area.
	Filter string
	// OrderBy is "created_at" or "final_price" with an optional "asc" or
	// "desc". Defaults to DefaultOrderBy.
	OrderBy string
}

// ValuationPage is one page of a listing.
type ValuationPage struct {
	Valuations    []ValuationRecord
	NextPageToken string
}

// ValuationStore persists valuations.
type ValuationStore interface {
	PutValuation(ctx context.Context, record ValuationRecord) error
	GetValuation(ctx context.Context, id string) (ValuationRecord, error)
	ListValuations(ctx context.Context, opts ListOptions) (ValuationPage, error)
}
