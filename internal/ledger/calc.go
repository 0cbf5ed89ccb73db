package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/freightbooks/taxledger/internal/model"
)

// DivisionPrecision is the number of fractional digits kept when backing the
// pre-tax carrier cost out of an all-in amount. It is the only rounding the
// calculator performs; display rounding happens at export.
const DivisionPrecision = 16

var one = decimal.NewFromInt(1)

// Split holds the amounts derived from one load.
type Split struct {
	ClientTax           decimal.Decimal
	ClientTotal         decimal.Decimal
	CarrierPreTaxAmount decimal.Decimal
	CarrierTax          decimal.Decimal
	NetPayable          decimal.Decimal
	Profit              decimal.Decimal
}

// SplitAmounts derives the tax split for a client base amount and a
// tax-inclusive carrier amount at rate. Callers must ensure rate >= 0, which
// keeps the divisor at or above 1.
func SplitAmounts(clientBase, carrierAllIn, rate decimal.Decimal) Split {
	clientTax := clientBase.Mul(rate)
	carrierPreTax := carrierAllIn.DivRound(one.Add(rate), DivisionPrecision)
	carrierTax := carrierAllIn.Sub(carrierPreTax)
	return Split{
		ClientTax:           clientTax,
		ClientTotal:         clientBase.Add(clientTax),
		CarrierPreTaxAmount: carrierPreTax,
		CarrierTax:          carrierTax,
		NetPayable:          clientTax.Sub(carrierTax),
		Profit:              clientBase.Sub(carrierPreTax),
	}
}

// Compute turns a load and a jurisdiction rate into a ledger entry. The rate
// is copied into the entry; the entry never consults the table again. The
// rate must be the one recorded for the load's tax jurisdiction.
// ID and CreatedAt are left for the caller to assign.
func Compute(in model.LoadInput, rate model.JurisdictionRate) (model.LoadEntry, error) {
	if err := ValidateLoad(in); err != nil {
		return model.LoadEntry{}, err
	}
	if err := validateRate(in.TaxJurisdiction, rate); err != nil {
		return model.LoadEntry{}, err
	}

	s := SplitAmounts(in.ClientBaseAmount, in.CarrierAllInAmount, rate.Rate)
	return model.LoadEntry{
		LoadNumber:           in.LoadNumber,
		DeliveredAt:          in.DeliveredAt,
		ClientID:             in.ClientID,
		CarrierID:            in.CarrierID,
		TaxJurisdiction:      rate.Name,
		DeliveryJurisdiction: in.DeliveryJurisdiction,
		ClientBaseAmount:     in.ClientBaseAmount,
		CarrierAllInAmount:   in.CarrierAllInAmount,
		TaxRate:              rate.Rate,
		ClientTax:            s.ClientTax,
		ClientTotal:          s.ClientTotal,
		CarrierPreTaxAmount:  s.CarrierPreTaxAmount,
		CarrierTax:           s.CarrierTax,
		NetPayable:           s.NetPayable,
		Profit:               s.Profit,
	}, nil
}
