package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/freightbooks/taxledger/internal/model"
)

const (
	clientID  = "7b0c5e1a-3f2d-4c8e-9a61-2d4f8b9c0e11"
	carrierID = "c41d2a90-8e5b-4f17-b3c2-6a0e9d1f4b22"
	vendorID  = "e9a3f7c2-1b4d-4e6a-8c05-3f2b1a0d9e33"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func ts(y, m, d, hh, mm int) time.Time {
	return time.Date(y, time.Month(m), d, hh, mm, 0, 0, time.UTC)
}

func ontario() model.JurisdictionRate {
	return model.JurisdictionRate{Name: "Ontario", Rate: dec("0.13"), Label: "HST", EffectiveFrom: ts(2000, 1, 1, 0, 0)}
}

func ontarioLoad() model.LoadInput {
	return model.LoadInput{
		LoadNumber:           "LD-1001",
		DeliveredAt:          ts(2024, 3, 5, 14, 30),
		ClientID:             clientID,
		CarrierID:            carrierID,
		TaxJurisdiction:      "Ontario",
		DeliveryJurisdiction: "Quebec",
		ClientBaseAmount:     dec("1000"),
		CarrierAllInAmount:   dec("565"),
	}
}
