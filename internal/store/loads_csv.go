package store

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/freightbooks/taxledger/internal/model"
)

// LoadHeader is the header of loads.csv. Amounts are stored at full
// precision so a reloaded entry reproduces its totals exactly.
var LoadHeader = []string{
	"entry_id", "load_number", "delivered_at", "client_id", "carrier_id",
	"tax_jurisdiction", "delivery_jurisdiction", "client_base", "carrier_all_in", "tax_rate",
	"client_tax", "client_total", "carrier_pre_tax", "carrier_tax", "net_payable", "profit",
	"created_at",
}

const (
	numLoadFields = 17
	lcEntryID     = 0
	lcLoadNumber  = 1
	lcDelivered   = 2
	lcClientID    = 3
	lcCarrierID   = 4
	lcTaxJur      = 5
	lcDeliveryJur = 6
	lcClientBase  = 7
	lcAllIn       = 8
	lcRate        = 9
	lcClientTax   = 10
	lcClientTotal = 11
	lcPreTax      = 12
	lcCarrierTax  = 13
	lcNetPayable  = 14
	lcProfit      = 15
	lcCreated     = 16
)

// ReadLoads reads loads.csv.
func ReadLoads(r io.Reader) ([]model.LoadEntry, error) {
	rows, err := readRows(r, numLoadFields)
	if err != nil {
		return nil, fmt.Errorf("reading loads CSV: %w", err)
	}

	var loads []model.LoadEntry
	for i, rec := range rows {
		l, err := UnmarshalLoad(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		loads = append(loads, l)
	}
	return loads, nil
}

// WriteLoads writes loads.csv including the header.
func WriteLoads(w io.Writer, loads []model.LoadEntry) error {
	rows := make([][]string, len(loads))
	for i, l := range loads {
		rows[i] = MarshalLoad(l)
	}
	return writeRows(w, LoadHeader, rows)
}

// MarshalLoad converts a LoadEntry to a CSV row.
func MarshalLoad(l model.LoadEntry) []string {
	row := make([]string, numLoadFields)
	row[lcEntryID] = l.ID
	row[lcLoadNumber] = l.LoadNumber
	row[lcDelivered] = l.DeliveredAt.Format(timeFormat)
	row[lcClientID] = l.ClientID
	row[lcCarrierID] = l.CarrierID
	row[lcTaxJur] = l.TaxJurisdiction
	row[lcDeliveryJur] = l.DeliveryJurisdiction
	row[lcClientBase] = l.ClientBaseAmount.String()
	row[lcAllIn] = l.CarrierAllInAmount.String()
	row[lcRate] = l.TaxRate.String()
	row[lcClientTax] = l.ClientTax.String()
	row[lcClientTotal] = l.ClientTotal.String()
	row[lcPreTax] = l.CarrierPreTaxAmount.String()
	row[lcCarrierTax] = l.CarrierTax.String()
	row[lcNetPayable] = l.NetPayable.String()
	row[lcProfit] = l.Profit.String()
	row[lcCreated] = l.CreatedAt.Format(timeFormat)
	return row
}

// UnmarshalLoad converts a CSV row to a LoadEntry. Derived amounts are read
// back as stored, never recomputed.
func UnmarshalLoad(record []string) (model.LoadEntry, error) {
	if len(record) != numLoadFields {
		return model.LoadEntry{}, fmt.Errorf("expected %d fields, got %d", numLoadFields, len(record))
	}

	l := model.LoadEntry{
		ID:                   record[lcEntryID],
		LoadNumber:           record[lcLoadNumber],
		ClientID:             record[lcClientID],
		CarrierID:            record[lcCarrierID],
		TaxJurisdiction:      record[lcTaxJur],
		DeliveryJurisdiction: record[lcDeliveryJur],
	}

	var err error
	if l.DeliveredAt, err = parseTime("delivered_at", record[lcDelivered]); err != nil {
		return model.LoadEntry{}, err
	}
	if l.CreatedAt, err = parseTime("created_at", record[lcCreated]); err != nil {
		return model.LoadEntry{}, err
	}

	amounts := []struct {
		col   int
		name  string
		field *decimal.Decimal
	}{
		{lcClientBase, "client_base", &l.ClientBaseAmount},
		{lcAllIn, "carrier_all_in", &l.CarrierAllInAmount},
		{lcRate, "tax_rate", &l.TaxRate},
		{lcClientTax, "client_tax", &l.ClientTax},
		{lcClientTotal, "client_total", &l.ClientTotal},
		{lcPreTax, "carrier_pre_tax", &l.CarrierPreTaxAmount},
		{lcCarrierTax, "carrier_tax", &l.CarrierTax},
		{lcNetPayable, "net_payable", &l.NetPayable},
		{lcProfit, "profit", &l.Profit},
	}
	for _, a := range amounts {
		d, err := parseDecimal(a.name, record[a.col])
		if err != nil {
			return model.LoadEntry{}, err
		}
		*a.field = d
	}
	return l, nil
}
