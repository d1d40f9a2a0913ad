package booking

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the total price of a stay.
	Calculate(params PricingParams) (decimal.Decimal, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	Stay          DateRange
	PricePerNight decimal.Decimal
	Guests        int
}

// NightlyPricingStrategy charges the property's nightly rate for every night of the stay.
type NightlyPricingStrategy struct{}

// NewNightlyPricingStrategy creates a new NightlyPricingStrategy.
func NewNightlyPricingStrategy() *NightlyPricingStrategy {
	return &NightlyPricingStrategy{}
}

// Calculate computes nights * pricePerNight, rounded to cents.
func (s *NightlyPricingStrategy) Calculate(params PricingParams) (decimal.Decimal, error) {
	if params.PricePerNight.IsNegative() {
		return decimal.Zero, fmt.Errorf("price per night cannot be negative")
	}
	nights := params.Stay.Nights()
	if nights <= 0 {
		return decimal.Zero, fmt.Errorf("stay must be at least one night")
	}
	return params.PricePerNight.Mul(decimal.NewFromInt(int64(nights))).Round(2), nil
}
