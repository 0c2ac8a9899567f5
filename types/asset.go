package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssetKind string

const (
	AssetKindEquity     AssetKind = "EQUITY"
	AssetKindCrypto     AssetKind = "CRYPTO"
	AssetKindBond       AssetKind = "BOND"
	AssetKindFund       AssetKind = "FUND"
	AssetKindCommodity  AssetKind = "COMMODITY"
	AssetKindRealEstate AssetKind = "REAL_ESTATE"
	AssetKindCash       AssetKind = "CASH"
	AssetKindOther      AssetKind = "OTHER"
)

// Field limits enforced on create/update.
const (
	MaxSymbolLen      = 20
	MaxNameLen        = 100
	MaxDescriptionLen = 500
)

var validKinds = map[AssetKind]bool{
	AssetKindEquity:     true,
	AssetKindCrypto:     true,
	AssetKindBond:       true,
	AssetKindFund:       true,
	AssetKindCommodity:  true,
	AssetKindRealEstate: true,
	AssetKindCash:       true,
	AssetKindOther:      true,
}

func (k AssetKind) Valid() bool {
	return validKinds[k]
}

type Asset struct {
	Id               int64               `json:"id"`
	PortfolioId      int64               `json:"portfolioId"`
	Symbol           string              `json:"symbol"`
	Kind             AssetKind           `json:"kind"`
	Quantity         decimal.Decimal     `json:"quantity"`
	AvgPurchasePrice decimal.Decimal     `json:"averagePurchasePrice"`
	CurrentPrice     decimal.NullDecimal `json:"currentPrice"`
	PriceUpdatedAt   *time.Time          `json:"priceUpdatedAt"`
	// ISO-4217 code, set only for cash assets.
	Currency   string    `json:"currency,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}
