package store

import (
	"fmt"
	"io"

	"github.com/freightbooks/taxledger/internal/model"
)

// PartyHeader is the header of parties.csv.
var PartyHeader = []string{"party_id", "kind", "name", "contact_name", "email", "phone", "tax_registration_number", "jurisdiction", "category"}

const (
	numPartyFields = 9
	pcID           = 0
	pcKind         = 1
	pcName         = 2
	pcContact      = 3
	pcEmail        = 4
	pcPhone        = 5
	pcTaxReg       = 6
	pcJurisdiction = 7
	pcCategory     = 8
)

// ReadParties reads parties.csv.
func ReadParties(r io.Reader) ([]model.Party, error) {
	rows, err := readRows(r, numPartyFields)
	if err != nil {
		return nil, fmt.Errorf("reading parties CSV: %w", err)
	}

	var parties []model.Party
	for i, rec := range rows {
		p, err := UnmarshalParty(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		parties = append(parties, p)
	}
	return parties, nil
}

// WriteParties writes parties.csv including the header.
func WriteParties(w io.Writer, parties []model.Party) error {
	rows := make([][]string, len(parties))
	for i, p := range parties {
		rows[i] = MarshalParty(p)
	}
	return writeRows(w, PartyHeader, rows)
}

// MarshalParty converts a Party to a CSV row.
func MarshalParty(p model.Party) []string {
	row := make([]string, numPartyFields)
	row[pcID] = p.ID
	row[pcKind] = string(p.Kind)
	row[pcName] = p.Name
	row[pcContact] = p.ContactName
	row[pcEmail] = p.Email
	row[pcPhone] = p.Phone
	row[pcTaxReg] = p.TaxRegistrationNumber
	row[pcJurisdiction] = p.Jurisdiction
	row[pcCategory] = p.Category
	return row
}

// UnmarshalParty converts a CSV row to a Party.
func UnmarshalParty(record []string) (model.Party, error) {
	if len(record) != numPartyFields {
		return model.Party{}, fmt.Errorf("expected %d fields, got %d", numPartyFields, len(record))
	}

	kind, err := model.ParsePartyKind(record[pcKind])
	if err != nil {
		return model.Party{}, err
	}

	return model.Party{
		ID:                    record[pcID],
		Kind:                  kind,
		Name:                  record[pcName],
		ContactName:           record[pcContact],
		Email:                 record[pcEmail],
		Phone:                 record[pcPhone],
		TaxRegistrationNumber: record[pcTaxReg],
		Jurisdiction:          record[pcJurisdiction],
		Category:              record[pcCategory],
	}, nil
}
