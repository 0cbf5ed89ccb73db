package ledger

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/freightbooks/taxledger/internal/id"
	"github.com/freightbooks/taxledger/internal/model"
	"github.com/freightbooks/taxledger/internal/timestamp"
)

// Column headers of the export. The order is a file format: spreadsheets
// built on top of the export depend on it.
var (
	LoadColumns = []string{
		"Load Number", "Delivery Date", "Client", "Carrier",
		"Tax Jurisdiction", "Delivery Jurisdiction",
		"Client Base", "Tax Rate (%)", "Client Tax", "Client Total",
		"Carrier All-In", "Carrier Pre-Tax", "Carrier Tax",
		"Net Payable", "Profit",
	}
	ITCColumns = []string{
		"Description", "Payee", "Vendor", "Invoice Date", "Tax Registration #",
		"Amount Before Tax", "Tax Amount", "Payment Date", "Category", "Jurisdiction",
	}
)

// Section labels.
const (
	ITCSectionTitle = "Additional ITCs"
	SubtotalLabel   = "Subtotal"
	TotalLabel      = "Total"
)

const (
	lcLoadNumber = iota
	lcDelivered
	lcClient
	lcCarrier
	lcTaxJur
	lcDeliveryJur
	lcClientBase
	lcRate
	lcClientTax
	lcClientTotal
	lcCarrierAllIn
	lcCarrierPreTax
	lcCarrierTax
	lcNetPayable
	lcProfit
	numLoadCols
)

const (
	icDesc = iota
	icPayee
	icVendor
	icInvoiced
	icTaxReg
	icAmount
	icTax
	icPaid
	icCategory
	icJurisdiction
	numITCCols
)

// SortKey selects the order of load rows in an export.
type SortKey string

const (
	SortLoadNumber   SortKey = "load"
	SortDeliveryDate SortKey = "delivery"
	SortClient       SortKey = "client"
)

// ParseSortKey accepts "load", "delivery" or "client"; "" means load.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "", SortLoadNumber:
		return SortLoadNumber, nil
	case SortDeliveryDate, SortClient:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q (want load, delivery or client)", s)
}

// ExportOptions controls row order and party name resolution.
// The zero value sorts by load number, highest first, and prints party ids.
type ExportOptions struct {
	Sort      SortKey
	Ascending bool
	// PartyName maps a party id to a display name. Nil or an empty result
	// prints the id itself.
	PartyName func(id string) string
}

func (o ExportOptions) name(partyID string) string {
	if partyID == "" {
		return ""
	}
	if o.PartyName != nil {
		if n := o.PartyName(partyID); n != "" {
			return n
		}
	}
	return partyID
}

// Export writes the ledger as CSV:
//
//	load header, one row per load, blank row,
//	"Additional ITCs", ITC header, one row per ITC, ITC subtotal row,
//	blank row, grand totals row.
//
// Amounts are fixed to 2 decimals. Totals are printed from totals as given,
// so a caller passing Aggregate(loads, itcs) gets figures identical to the
// aggregator's.
func Export(w io.Writer, loads []model.LoadEntry, itcs []model.ITCEntry, totals model.Totals, opts ExportOptions) error {
	cw := csv.NewWriter(w)

	rows := [][]string{LoadColumns}
	for _, l := range sortLoads(loads, opts) {
		rows = append(rows, loadRow(l, opts))
	}
	rows = append(rows, nil, []string{ITCSectionTitle}, ITCColumns)
	for _, e := range sortITCs(itcs) {
		rows = append(rows, itcRow(e, opts))
	}
	rows = append(rows, itcSubtotalRow(totals), nil, totalsRow(totals))

	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing export row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportString is Export into a string.
func ExportString(loads []model.LoadEntry, itcs []model.ITCEntry, totals model.Totals, opts ExportOptions) (string, error) {
	var buf bytes.Buffer
	if err := Export(&buf, loads, itcs, totals, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Money formats an amount the way the export does.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Percent formats a fractional rate as a percentage with 2 decimals.
func Percent(rate decimal.Decimal) string {
	return rate.Shift(2).StringFixed(2)
}

func loadRow(l model.LoadEntry, opts ExportOptions) []string {
	row := make([]string, numLoadCols)
	row[lcLoadNumber] = l.LoadNumber
	row[lcDelivered] = timestamp.Format(l.DeliveredAt)
	row[lcClient] = opts.name(l.ClientID)
	row[lcCarrier] = opts.name(l.CarrierID)
	row[lcTaxJur] = l.TaxJurisdiction
	row[lcDeliveryJur] = l.DeliveryJurisdiction
	row[lcClientBase] = Money(l.ClientBaseAmount)
	row[lcRate] = Percent(l.TaxRate)
	row[lcClientTax] = Money(l.ClientTax)
	row[lcClientTotal] = Money(l.ClientTotal)
	row[lcCarrierAllIn] = Money(l.CarrierAllInAmount)
	row[lcCarrierPreTax] = Money(l.CarrierPreTaxAmount)
	row[lcCarrierTax] = Money(l.CarrierTax)
	row[lcNetPayable] = Money(l.NetPayable)
	row[lcProfit] = Money(l.Profit)
	return row
}

func itcRow(e model.ITCEntry, opts ExportOptions) []string {
	row := make([]string, numITCCols)
	row[icDesc] = e.Description
	row[icPayee] = e.PayeeName
	row[icVendor] = opts.name(e.VendorID)
	row[icInvoiced] = timestamp.FormatOptional(e.InvoicedAt)
	row[icTaxReg] = e.TaxRegistrationNumber
	row[icAmount] = Money(e.AmountBeforeTax)
	row[icTax] = Money(e.TaxAmount)
	row[icPaid] = timestamp.Format(e.PaidAt)
	row[icCategory] = e.Category
	row[icJurisdiction] = e.Jurisdiction
	return row
}

func itcSubtotalRow(t model.Totals) []string {
	row := make([]string, numITCCols)
	row[icDesc] = SubtotalLabel
	row[icAmount] = Money(t.ITCAmountBeforeTax)
	row[icTax] = Money(t.ITCTax)
	return row
}

func totalsRow(t model.Totals) []string {
	row := make([]string, numLoadCols)
	row[lcLoadNumber] = TotalLabel
	row[lcClientBase] = Money(t.ClientBase)
	row[lcClientTax] = Money(t.ClientTax)
	row[lcClientTotal] = Money(t.ClientTotal)
	row[lcCarrierAllIn] = Money(t.CarrierAllIn)
	row[lcCarrierPreTax] = Money(t.CarrierPreTax)
	row[lcCarrierTax] = Money(t.CarrierTax)
	row[lcNetPayable] = Money(t.EntryNetPayable)
	row[lcProfit] = Money(t.Profit)
	return row
}

func sortLoads(loads []model.LoadEntry, opts ExportOptions) []model.LoadEntry {
	out := slices.Clone(loads)

	var compare func(a, b model.LoadEntry) int
	switch opts.Sort {
	case SortDeliveryDate:
		compare = func(a, b model.LoadEntry) int { return a.DeliveredAt.Compare(b.DeliveredAt) }
	case SortClient:
		compare = func(a, b model.LoadEntry) int {
			return cmp.Compare(strings.ToLower(opts.name(a.ClientID)), strings.ToLower(opts.name(b.ClientID)))
		}
	default:
		compare = func(a, b model.LoadEntry) int {
			return id.LoadNumberKey(a.LoadNumber).Cmp(id.LoadNumberKey(b.LoadNumber))
		}
	}

	slices.SortStableFunc(out, func(a, b model.LoadEntry) int {
		if opts.Ascending {
			return compare(a, b)
		}
		return compare(b, a)
	})
	return out
}

func sortITCs(itcs []model.ITCEntry) []model.ITCEntry {
	out := slices.Clone(itcs)
	slices.SortStableFunc(out, func(a, b model.ITCEntry) int {
		return a.PaidAt.Compare(b.PaidAt)
	})
	return out
}
