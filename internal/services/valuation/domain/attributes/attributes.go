// Package attributes defines the property attribute set consumed by the
// valuation rules and the validation that produces it from raw input.
package attributes

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PropertyType identifies the kind of property being valued.
type PropertyType string

const (
	House      PropertyType = "house"
	Flat       PropertyType = "flat"
	Plot       PropertyType = "plot"
	Commercial PropertyType = "commercial"
)

// Condition describes the physical state of the property.
type Condition string

const (
	ConditionNew             Condition = "new"
	ConditionLikeNew         Condition = "like_new"
	ConditionUsedGood        Condition = "used_good"
	ConditionNeedsRenovation Condition = "needs_renovation"
)

// Parking describes the parking available to the property.
type Parking string

const (
	ParkingNone    Parking = "none"
	ParkingStreet  Parking = "street"
	ParkingCovered Parking = "covered"
	ParkingGarage  Parking = "garage"
)

// DefaultLocation is the baseline location used when none is given.
const DefaultLocation = "general"

// PropertyTypes lists the accepted property types.
var PropertyTypes = []PropertyType{House, Flat, Plot, Commercial}

// Conditions lists the accepted conditions.
var Conditions = []Condition{ConditionNew, ConditionLikeNew, ConditionUsedGood, ConditionNeedsRenovation}

// ParkingTypes lists the accepted parking types.
var ParkingTypes = []Parking{ParkingNone, ParkingStreet, ParkingCovered, ParkingGarage}

// Set is a sanitized attribute set. Every field holds either a
// range-checked input value or its documented default.
type Set struct {
	Area         float64      `json:"area" validate:"gt=0"`
	PropertyType PropertyType `json:"property_type" validate:"oneof=house flat plot commercial"`
	Location     string       `json:"location" validate:"required"`
	Bedrooms     int          `json:"bedrooms" validate:"gte=0"`
	Bathrooms    int          `json:"bathrooms" validate:"gte=0"`
	Condition    Condition    `json:"condition" validate:"oneof=new like_new used_good needs_renovation"`
	Age          int          `json:"age" validate:"gte=0"`
	Floor        int          `json:"floor"`
	Parking      Parking      `json:"parking" validate:"oneof=none street covered garage"`

	AmenitiesScore     float64 `json:"amenities_score" validate:"gte=0,lte=5"`
	DemandScore        float64 `json:"demand_score" validate:"gte=0,lte=5"`
	OccupancyRate      float64 `json:"occupancy_rate" validate:"gte=0,lte=1"`
	MarketAppreciation float64 `json:"market_appreciation_score" validate:"gte=-0.5,lte=0.5"`
	CrimeIndex         float64 `json:"crime_index" validate:"gte=0,lte=1"`
	MarketVolatility   float64 `json:"market_volatility" validate:"gte=0,lte=1"`
	EconomicIndex      float64 `json:"economic_index" validate:"gte=0,lte=1"`
	DevelopmentIndex   float64 `json:"development_index" validate:"gte=0,lte=1"`

	PurchasePrice *float64 `json:"purchase_price,omitempty"`
	CurrentPrice  *float64 `json:"current_price,omitempty"`
	AnnualRent    *float64 `json:"annual_rent,omitempty"`
	Expenses      *float64 `json:"expenses,omitempty"`
}

// Defaults returns a set holding every optional default. Area and property
// type are left for the caller.
func Defaults() Set {
	return Set{
		Location:           DefaultLocation,
		Condition:          ConditionUsedGood,
		Age:                10,
		Floor:              1,
		Parking:            ParkingNone,
		AmenitiesScore:     3,
		DemandScore:        3,
		OccupancyRate:      0.9,
		MarketAppreciation: 0.03,
		CrimeIndex:         0.05,
		MarketVolatility:   0.1,
		EconomicIndex:      0.5,
		DevelopmentIndex:   0,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Check reports whether the set satisfies the bounds the rule engine relies
// on. Sets produced by Validate always pass.
func (s Set) Check() error {
	if err := validate.Struct(s); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid attribute set: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid attribute set: %w", err)
	}
	return nil
}

// IsResidential reports whether bedroom and bathroom counts are expected.
func (t PropertyType) IsResidential() bool {
	return t == House || t == Flat
}

// Float returns a pointer to v, for populating optional money fields.
func Float(v float64) *float64 {
	return &v
}
