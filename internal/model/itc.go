package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ITCInput is the user-entered part of an input tax credit.
// Blank payee, registration, category and jurisdiction are filled from the
// vendor when VendorID is set.
type ITCInput struct {
	Description           string
	PayeeName             string
	VendorID              string
	InvoicedAt            *time.Time
	TaxRegistrationNumber string
	AmountBeforeTax       decimal.Decimal
	TaxAmount             decimal.Decimal
	PaidAt                time.Time
	Category              string
	Jurisdiction          string
}

// ITCEntry is an input tax credit recorded in the ledger. Vendor-derived
// fields are copies taken at creation, not live references.
type ITCEntry struct {
	ID                    string
	Description           string
	PayeeName             string
	VendorID              string
	InvoicedAt            *time.Time
	TaxRegistrationNumber string
	AmountBeforeTax       decimal.Decimal
	TaxAmount             decimal.Decimal
	PaidAt                time.Time
	Category              string
	Jurisdiction          string
	CreatedAt             time.Time
}
