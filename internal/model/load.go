package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoadInput is the raw, user-entered part of a load.
type LoadInput struct {
	LoadNumber           string
	DeliveredAt          time.Time
	ClientID             string
	CarrierID            string
	TaxJurisdiction      string
	DeliveryJurisdiction string
	ClientBaseAmount     decimal.Decimal
	CarrierAllInAmount   decimal.Decimal
}

// LoadEntry is a load with its tax rate snapshot and derived amounts.
// The derived fields are computed once when the entry is created and are
// stored as-is afterwards; they never follow later jurisdiction changes.
type LoadEntry struct {
	ID                   string
	LoadNumber           string
	DeliveredAt          time.Time
	ClientID             string
	CarrierID            string
	TaxJurisdiction      string
	DeliveryJurisdiction string
	ClientBaseAmount     decimal.Decimal
	CarrierAllInAmount   decimal.Decimal
	TaxRate              decimal.Decimal

	ClientTax           decimal.Decimal
	ClientTotal         decimal.Decimal
	CarrierPreTaxAmount decimal.Decimal
	CarrierTax          decimal.Decimal
	NetPayable          decimal.Decimal // clientTax - carrierTax; ignores ITCs
	Profit              decimal.Decimal

	CreatedAt time.Time
}

// References reports whether the load points at party id.
func (l LoadEntry) References(id string) bool {
	return l.ClientID == id || l.CarrierID == id
}
