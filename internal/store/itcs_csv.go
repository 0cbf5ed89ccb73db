package store

import (
	"fmt"
	"io"

	"github.com/freightbooks/taxledger/internal/model"
)

// ITCHeader is the header of itcs.csv.
var ITCHeader = []string{
	"entry_id", "description", "payee_name", "vendor_id", "invoiced_at",
	"tax_registration_number", "amount_before_tax", "tax_amount", "paid_at",
	"category", "jurisdiction", "created_at",
}

const (
	numITCFields   = 12
	icEntryID      = 0
	icDesc         = 1
	icPayee        = 2
	icVendorID     = 3
	icInvoiced     = 4
	icTaxReg       = 5
	icBeforeTax    = 6
	icTaxAmount    = 7
	icPaid         = 8
	icCategory     = 9
	icJurisdiction = 10
	icCreated      = 11
)

// ReadITCs reads itcs.csv.
func ReadITCs(r io.Reader) ([]model.ITCEntry, error) {
	rows, err := readRows(r, numITCFields)
	if err != nil {
		return nil, fmt.Errorf("reading ITC CSV: %w", err)
	}

	var itcs []model.ITCEntry
	for i, rec := range rows {
		e, err := UnmarshalITC(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		itcs = append(itcs, e)
	}
	return itcs, nil
}

// WriteITCs writes itcs.csv including the header.
func WriteITCs(w io.Writer, itcs []model.ITCEntry) error {
	rows := make([][]string, len(itcs))
	for i, e := range itcs {
		rows[i] = MarshalITC(e)
	}
	return writeRows(w, ITCHeader, rows)
}

// MarshalITC converts an ITCEntry to a CSV row.
func MarshalITC(e model.ITCEntry) []string {
	row := make([]string, numITCFields)
	row[icEntryID] = e.ID
	row[icDesc] = e.Description
	row[icPayee] = e.PayeeName
	row[icVendorID] = e.VendorID
	row[icInvoiced] = formatOptionalTime(e.InvoicedAt)
	row[icTaxReg] = e.TaxRegistrationNumber
	row[icBeforeTax] = e.AmountBeforeTax.String()
	row[icTaxAmount] = e.TaxAmount.String()
	row[icPaid] = e.PaidAt.Format(timeFormat)
	row[icCategory] = e.Category
	row[icJurisdiction] = e.Jurisdiction
	row[icCreated] = e.CreatedAt.Format(timeFormat)
	return row
}

// UnmarshalITC converts a CSV row to an ITCEntry.
func UnmarshalITC(record []string) (model.ITCEntry, error) {
	if len(record) != numITCFields {
		return model.ITCEntry{}, fmt.Errorf("expected %d fields, got %d", numITCFields, len(record))
	}

	invoiced, err := parseOptionalTime("invoiced_at", record[icInvoiced])
	if err != nil {
		return model.ITCEntry{}, err
	}
	paid, err := parseTime("paid_at", record[icPaid])
	if err != nil {
		return model.ITCEntry{}, err
	}
	created, err := parseTime("created_at", record[icCreated])
	if err != nil {
		return model.ITCEntry{}, err
	}
	beforeTax, err := parseDecimal("amount_before_tax", record[icBeforeTax])
	if err != nil {
		return model.ITCEntry{}, err
	}
	taxAmount, err := parseDecimal("tax_amount", record[icTaxAmount])
	if err != nil {
		return model.ITCEntry{}, err
	}

	return model.ITCEntry{
		ID:                    record[icEntryID],
		Description:           record[icDesc],
		PayeeName:             record[icPayee],
		VendorID:              record[icVendorID],
		InvoicedAt:            invoiced,
		TaxRegistrationNumber: record[icTaxReg],
		AmountBeforeTax:       beforeTax,
		TaxAmount:             taxAmount,
		PaidAt:                paid,
		Category:              record[icCategory],
		Jurisdiction:          record[icJurisdiction],
		CreatedAt:             created,
	}, nil
}
