package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/freightbooks/taxledger/internal/id"
	"github.com/freightbooks/taxledger/internal/model"
)

type checker struct {
	errs ValidationErrors
}

func (c *checker) fail(field, msg string) {
	c.errs = append(c.errs, ValidationError{Field: field, Message: msg})
}

func (c *checker) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.fail(field, "is required")
	}
}

func (c *checker) partyID(field, value string) {
	if value == "" {
		c.fail(field, "is required")
		return
	}
	if !id.ValidPartyID(value) {
		c.fail(field, "malformed id "+value)
	}
}

func (c *checker) nonNegative(field string, d decimal.Decimal) {
	if d.IsNegative() {
		c.fail(field, "must not be negative, got "+d.String())
	}
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

// ValidateLoad checks a load's own fields. Party existence and the
// jurisdiction lookup are checked by the Book.
func ValidateLoad(in model.LoadInput) error {
	var c checker
	c.required("load_number", in.LoadNumber)
	if in.DeliveredAt.IsZero() {
		c.fail("delivered_at", "is required")
	}
	c.partyID("client_id", in.ClientID)
	c.partyID("carrier_id", in.CarrierID)
	c.required("tax_jurisdiction", in.TaxJurisdiction)
	c.nonNegative("client_base_amount", in.ClientBaseAmount)
	c.nonNegative("carrier_all_in_amount", in.CarrierAllInAmount)
	return c.err()
}

// ValidateITC checks an ITC after vendor defaults have been applied.
func ValidateITC(in model.ITCInput) error {
	var c checker
	c.required("description", in.Description)
	c.required("payee_name", in.PayeeName)
	if in.VendorID != "" {
		c.partyID("vendor_id", in.VendorID)
	}
	c.nonNegative("amount_before_tax", in.AmountBeforeTax)
	c.nonNegative("tax_amount", in.TaxAmount)
	if in.PaidAt.IsZero() {
		c.fail("paid_at", "is required")
	}
	return c.err()
}

// ValidateParty checks a new party's fields.
func ValidateParty(in model.PartyInput) error {
	var c checker
	if _, err := model.ParsePartyKind(string(in.Kind)); err != nil {
		c.fail("kind", err.Error())
	}
	c.required("name", in.Name)
	return c.err()
}

func validateRate(jurisdiction string, rate model.JurisdictionRate) error {
	var c checker
	name := strings.TrimSpace(rate.Name)
	switch {
	case name == "":
		c.fail("tax_rate", "no rate for jurisdiction "+jurisdiction)
	case !strings.EqualFold(name, strings.TrimSpace(jurisdiction)):
		c.fail("tax_jurisdiction", "rate is for "+name+", not "+jurisdiction)
	}
	c.nonNegative("tax_rate", rate.Rate)
	return c.err()
}
