package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/freightbooks/taxledger/internal/model"
	"github.com/freightbooks/taxledger/internal/timestamp"
)

// LoadSheetHeader is the expected first row of a load sheet.
const LoadSheetHeader = "load_number,delivery,client_id,carrier_id,tax_jurisdiction,delivery_jurisdiction,client_base,carrier_all_in"

// LoadSheetParser parses the brokerage's load sheet export. Client and
// carrier columns hold party ids or names; resolving them is left to the
// caller.
type LoadSheetParser struct{}

const (
	sheetNumFields   = 8
	sheetColLoad     = 0
	sheetColDelivery = 1
	sheetColClient   = 2
	sheetColCarrier  = 3
	sheetColTaxJur   = 4
	sheetColDelivJur = 5
	sheetColBase     = 6
	sheetColAllIn    = 7
)

// Format returns the parser name.
func (p *LoadSheetParser) Format() string { return "loadsheet" }

// Parse reads a load sheet and returns one LoadInput per row. A blank
// delivery jurisdiction defaults to the tax jurisdiction.
func (p *LoadSheetParser) Parse(r io.Reader) ([]model.LoadInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = sheetNumFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading load sheet: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}
	if got := strings.ToLower(strings.Join(records[0], ",")); got != LoadSheetHeader {
		return nil, fmt.Errorf("unexpected load sheet header %q", strings.Join(records[0], ","))
	}

	var loads []model.LoadInput
	for i, rec := range records[1:] {
		in, err := parseSheetRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		loads = append(loads, in)
	}
	return loads, nil
}

func parseSheetRow(rec []string) (model.LoadInput, error) {
	delivered, err := timestamp.Parse(strings.TrimSpace(rec[sheetColDelivery]))
	if err != nil {
		return model.LoadInput{}, err
	}

	base, err := decimal.NewFromString(strings.TrimSpace(rec[sheetColBase]))
	if err != nil {
		return model.LoadInput{}, fmt.Errorf("parsing client_base %q: %w", rec[sheetColBase], err)
	}
	allIn, err := decimal.NewFromString(strings.TrimSpace(rec[sheetColAllIn]))
	if err != nil {
		return model.LoadInput{}, fmt.Errorf("parsing carrier_all_in %q: %w", rec[sheetColAllIn], err)
	}

	taxJur := strings.TrimSpace(rec[sheetColTaxJur])
	delivJur := strings.TrimSpace(rec[sheetColDelivJur])
	if delivJur == "" {
		delivJur = taxJur
	}

	return model.LoadInput{
		LoadNumber:           strings.TrimSpace(rec[sheetColLoad]),
		DeliveredAt:          delivered,
		ClientID:             strings.TrimSpace(rec[sheetColClient]),
		CarrierID:            strings.TrimSpace(rec[sheetColCarrier]),
		TaxJurisdiction:      taxJur,
		DeliveryJurisdiction: delivJur,
		ClientBaseAmount:     base,
		CarrierAllInAmount:   allIn,
	}, nil
}
