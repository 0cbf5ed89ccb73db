package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// JurisdictionRate is one effective tax rate for a region.
// Rates are never edited; a change is a new rate with a later EffectiveFrom.
type JurisdictionRate struct {
	Name          string
	Rate          decimal.Decimal // fraction, e.g. 0.13
	Label         string          // "HST", "GST", "GST+QST"
	EffectiveFrom time.Time
}
