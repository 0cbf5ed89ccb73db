package model

import "github.com/shopspring/decimal"

// Totals are ledger-wide sums over every load and ITC entry.
//
// NetPayable is the amount owed to the tax authority. EntryNetPayable is the
// sum of the per-load figures, which do not account for ITCs, and is kept for
// display only.
type Totals struct {
	Loads int
	ITCs  int

	ClientBase      decimal.Decimal
	ClientTax       decimal.Decimal
	ClientTotal     decimal.Decimal
	CarrierAllIn    decimal.Decimal
	CarrierPreTax   decimal.Decimal
	CarrierTax      decimal.Decimal
	EntryNetPayable decimal.Decimal
	Profit          decimal.Decimal

	ITCAmountBeforeTax decimal.Decimal
	ITCTax             decimal.Decimal

	NetPayable decimal.Decimal
}
