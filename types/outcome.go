package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceUpdate is one row of the bulk price write produced by a refresh.
type PriceUpdate struct {
	AssetId   int64
	Price     decimal.Decimal
	UpdatedAt time.Time
}

// RefreshOutcome is the result of a single asset's refresh attempt.
// Exactly one of Update/Err is set.
type RefreshOutcome struct {
	Symbol string
	Kind   AssetKind
	Update *PriceUpdate
	Err    error
}
