package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/freightbooks/taxledger/internal/model"
)

// Aggregate sums every load and ITC. It is recomputed on each call and never
// stored; an empty ledger yields all-zero totals.
func Aggregate(loads []model.LoadEntry, itcs []model.ITCEntry) model.Totals {
	t := model.Totals{
		Loads:              len(loads),
		ITCs:               len(itcs),
		ClientBase:         decimal.Zero,
		ClientTax:          decimal.Zero,
		ClientTotal:        decimal.Zero,
		CarrierAllIn:       decimal.Zero,
		CarrierPreTax:      decimal.Zero,
		CarrierTax:         decimal.Zero,
		EntryNetPayable:    decimal.Zero,
		Profit:             decimal.Zero,
		ITCAmountBeforeTax: decimal.Zero,
		ITCTax:             decimal.Zero,
	}

	for _, l := range loads {
		t.ClientBase = t.ClientBase.Add(l.ClientBaseAmount)
		t.ClientTax = t.ClientTax.Add(l.ClientTax)
		t.ClientTotal = t.ClientTotal.Add(l.ClientTotal)
		t.CarrierAllIn = t.CarrierAllIn.Add(l.CarrierAllInAmount)
		t.CarrierPreTax = t.CarrierPreTax.Add(l.CarrierPreTaxAmount)
		t.CarrierTax = t.CarrierTax.Add(l.CarrierTax)
		t.EntryNetPayable = t.EntryNetPayable.Add(l.NetPayable)
		t.Profit = t.Profit.Add(l.Profit)
	}
	for _, e := range itcs {
		t.ITCAmountBeforeTax = t.ITCAmountBeforeTax.Add(e.AmountBeforeTax)
		t.ITCTax = t.ITCTax.Add(e.TaxAmount)
	}

	t.NetPayable = t.ClientTax.Sub(t.CarrierTax).Sub(t.ITCTax)
	return t
}
