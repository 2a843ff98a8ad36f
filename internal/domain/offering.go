package domain

import "github.com/shopspring/decimal"

// Offering a bookable service on a provider's menu
type Offering struct {
	ID                int64
	ProviderID        int64
	CategoryID        *int64
	Name              string
	DurationMinutes   int
	Price             decimal.Decimal
	Currency          string
	PrepBufferMinutes int
	PostBufferMinutes int
	IsActive          bool
}
