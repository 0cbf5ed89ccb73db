package jurisdiction

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freightbooks/taxledger/internal/model"
)

const (
	numFields    = 4
	dateFormat   = time.DateOnly
	colName      = 0
	colRate      = 1
	colLabel     = 2
	colEffective = 3
)

// ReadRates reads jurisdictions.csv.
func ReadRates(r io.Reader) ([]model.JurisdictionRate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading jurisdictions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var rates []model.JurisdictionRate
	for i, rec := range records[1:] {
		rate, err := UnmarshalRate(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

// WriteRates writes jurisdictions.csv.
func WriteRates(w io.Writer, rates []model.JurisdictionRate) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"name", "rate", "label", "effective_from"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range rates {
		if err := cw.Write(MarshalRate(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRate converts a rate to a CSV row.
func MarshalRate(r model.JurisdictionRate) []string {
	row := make([]string, numFields)
	row[colName] = r.Name
	row[colRate] = r.Rate.String()
	row[colLabel] = r.Label
	row[colEffective] = r.EffectiveFrom.Format(dateFormat)
	return row
}

// UnmarshalRate converts a CSV row to a rate.
func UnmarshalRate(record []string) (model.JurisdictionRate, error) {
	if len(record) != numFields {
		return model.JurisdictionRate{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	rate, err := decimal.NewFromString(record[colRate])
	if err != nil {
		return model.JurisdictionRate{}, fmt.Errorf("parsing rate %q: %w", record[colRate], err)
	}

	effective, err := time.Parse(dateFormat, record[colEffective])
	if err != nil {
		return model.JurisdictionRate{}, fmt.Errorf("parsing effective_from %q: %w", record[colEffective], err)
	}

	return model.JurisdictionRate{
		Name:          record[colName],
		Rate:          rate,
		Label:         record[colLabel],
		EffectiveFrom: effective,
	}, nil
}
