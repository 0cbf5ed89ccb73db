package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightbooks/taxledger/internal/model"
)

func TestPartyRow(t *testing.T) {
	p := model.Party{
		ID:    "7b0c5e1a-3f2d-4c8e-9a61-2d4f8b9c0e11",
		Kind:  model.PartyVendor,
		Name:  "Petro Fleet",
		Phone: "416-555-0100",
	}
	row := MarshalParty(p)
	assert.Len(t, row, numPartyFields)
	assert.Equal(t, "vendor", row[pcKind])

	got, err := UnmarshalParty(row)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestUnmarshalParty_Errors(t *testing.T) {
	_, err := UnmarshalParty([]string{"a", "client"})
	assert.ErrorContains(t, err, "expected 9 fields")

	row := MarshalParty(model.Party{ID: "x", Kind: model.PartyClient})
	row[pcKind] = "shipper"
	_, err = UnmarshalParty(row)
	assert.ErrorContains(t, err, "unknown party kind")
}

func TestITCRow_OptionalInvoiceDate(t *testing.T) {
	invoiced := ts(2024, 3, 1, 0, 0)
	e := model.ITCEntry{
		ID:              "ITC-000001",
		Description:     "Tires",
		PayeeName:       "Fleet Parts",
		InvoicedAt:      &invoiced,
		AmountBeforeTax: dec("400.00"),
		TaxAmount:       dec("52.00"),
		PaidAt:          ts(2024, 3, 2, 0, 0),
		CreatedAt:       ts(2024, 3, 2, 10, 15),
	}

	row := MarshalITC(e)
	assert.Equal(t, "2024-03-01T00:00:00Z", row[icInvoiced])
	got, err := UnmarshalITC(row)
	require.NoError(t, err)
	require.NotNil(t, got.InvoicedAt)
	assert.True(t, invoiced.Equal(*got.InvoicedAt))

	e.InvoicedAt = nil
	row = MarshalITC(e)
	assert.Empty(t, row[icInvoiced])
	got, err = UnmarshalITC(row)
	require.NoError(t, err)
	assert.Nil(t, got.InvoicedAt)
}

func TestWriteReadITCs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteITCs(&buf, []model.ITCEntry{{
		ID:              "ITC-000003",
		Description:     `Repair "urgent"`,
		AmountBeforeTax: dec("10"),
		TaxAmount:       dec("1.3"),
		PaidAt:          ts(2024, 1, 1, 0, 0),
		CreatedAt:       ts(2024, 1, 1, 0, 0),
	}}))

	got, err := ReadITCs(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, `Repair "urgent"`, got[0].Description)
	assert.True(t, got[0].TaxAmount.Equal(dec("1.3")))
}

func TestReadLoads_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLoads(&buf, nil))

	got, err := ReadLoads(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnmarshalLoad_BlankAmount(t *testing.T) {
	row := MarshalLoad(model.LoadEntry{
		ID:                   "LD-000001",
		LoadNumber:           "LD-1001",
		DeliveredAt:          ts(2024, 3, 5, 14, 30),
		ClientID:             "7b0c5e1a-3f2d-4c8e-9a61-2d4f8b9c0e11",
		CarrierID:            "2c9e4a7d-1b3f-4e8a-8d52-6f0a1c3b5e22",
		TaxJurisdiction:      "Ontario",
		DeliveryJurisdiction: "Ontario",
		ClientBaseAmount:     dec("1000"),
		CarrierAllInAmount:   dec("565"),
		TaxRate:              dec("0.13"),
		CreatedAt:            ts(2024, 3, 5, 15, 0),
	})
	_, err := UnmarshalLoad(row)
	require.NoError(t, err)

	for _, col := range []struct {
		idx  int
		name string
	}{
		{lcRate, "tax_rate"},
		{lcClientBase, "client_base"},
		{lcClientTax, "client_tax"},
		{lcNetPayable, "net_payable"},
	} {
		blank := append([]string(nil), row...)
		blank[col.idx] = ""
		_, err := UnmarshalLoad(blank)
		assert.ErrorContains(t, err, col.name+" is blank")
	}
}

func TestUnmarshalITC_BlankTax(t *testing.T) {
	row := MarshalITC(model.ITCEntry{
		ID:              "ITC-000001",
		Description:     "Tires",
		PayeeName:       "Fleet Parts",
		AmountBeforeTax: dec("400"),
		TaxAmount:       dec("52"),
		PaidAt:          ts(2024, 3, 2, 0, 0),
		CreatedAt:       ts(2024, 3, 2, 10, 15),
	})
	row[icTaxAmount] = ""
	_, err := UnmarshalITC(row)
	assert.ErrorContains(t, err, "tax_amount is blank")

	row = MarshalITC(model.ITCEntry{ID: "ITC-000002", TaxAmount: dec("1"), PaidAt: ts(2024, 3, 2, 0, 0), CreatedAt: ts(2024, 3, 2, 0, 0)})
	row[icBeforeTax] = ""
	_, err = UnmarshalITC(row)
	assert.ErrorContains(t, err, "amount_before_tax is blank")
}
