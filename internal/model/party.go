package model

import "fmt"

// PartyKind is the role a party plays in the ledger.
type PartyKind string

const (
	PartyClient  PartyKind = "client"
	PartyCarrier PartyKind = "carrier"
	PartyVendor  PartyKind = "vendor"
)

// PartyKinds lists every kind in display order.
var PartyKinds = []PartyKind{PartyClient, PartyCarrier, PartyVendor}

// ParsePartyKind accepts a kind name, case-sensitive.
func ParsePartyKind(s string) (PartyKind, error) {
	for _, k := range PartyKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown party kind %q (want client, carrier or vendor)", s)
}

// Party is a client, carrier or vendor. The three roles share one shape.
type Party struct {
	ID                    string
	Kind                  PartyKind
	Name                  string
	ContactName           string
	Email                 string
	Phone                 string
	TaxRegistrationNumber string
	Jurisdiction          string
	Category              string // vendors only; default for ITC category
}

// PartyInput holds the caller-supplied fields of a new party.
type PartyInput struct {
	Kind                  PartyKind
	Name                  string
	ContactName           string
	Email                 string
	Phone                 string
	TaxRegistrationNumber string
	Jurisdiction          string
	Category              string
}
