package jurisdiction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/freightbooks/taxledger/internal/model"
)

// epoch is the effective date of the seeded rates.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultRates returns the Canadian provincial and territorial sales tax
// rates a new book starts with.
func DefaultRates() []model.JurisdictionRate {
	rate := func(name, pct, label string) model.JurisdictionRate {
		return model.JurisdictionRate{
			Name:          name,
			Rate:          decimal.RequireFromString(pct).Shift(-2),
			Label:         label,
			EffectiveFrom: epoch,
		}
	}
	novaScotia2025 := rate("Nova Scotia", "14", "HST")
	novaScotia2025.EffectiveFrom = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	return []model.JurisdictionRate{
		rate("Alberta", "5", "GST"),
		rate("British Columbia", "5", "GST"),
		rate("Manitoba", "5", "GST"),
		rate("New Brunswick", "15", "HST"),
		rate("Newfoundland and Labrador", "15", "HST"),
		rate("Northwest Territories", "5", "GST"),
		rate("Nova Scotia", "15", "HST"),
		novaScotia2025,
		rate("Nunavut", "5", "GST"),
		rate("Ontario", "13", "HST"),
		rate("Prince Edward Island", "15", "HST"),
		rate("Quebec", "14.975", "GST+QST"),
		rate("Saskatchewan", "5", "GST"),
		rate("Yukon", "5", "GST"),
		rate("Out of Country", "0", "Zero-rated"),
	}
}

// DefaultTable returns a Table seeded with DefaultRates.
func DefaultTable() *Table {
	t, err := NewTable(DefaultRates())
	if err != nil {
		panic("jurisdiction: invalid default rates: " + err.Error())
	}
	return t
}
