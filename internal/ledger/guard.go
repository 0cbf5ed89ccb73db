package ledger

import (
	"fmt"
	"strings"

	"github.com/freightbooks/taxledger/internal/model"
)

// Verdict is the outcome of a deletion check.
type Verdict struct {
	Allowed bool
	Reason  string
	Loads   int // loads referencing the party
	ITCs    int // ITCs referencing the party
}

// CanDeleteParty reports whether the party may be removed. Every load is
// scanned for client and carrier matches and every ITC for vendor matches,
// regardless of kind, so a party is protected in whatever role it is used.
// Entry age is irrelevant: any reference blocks deletion.
func CanDeleteParty(partyID string, kind model.PartyKind, loads []model.LoadEntry, itcs []model.ITCEntry) Verdict {
	var v Verdict
	for _, l := range loads {
		if l.References(partyID) {
			v.Loads++
		}
	}
	for _, e := range itcs {
		if e.VendorID == partyID {
			v.ITCs++
		}
	}

	if v.Loads == 0 && v.ITCs == 0 {
		v.Allowed = true
		return v
	}

	var parts []string
	if v.Loads > 0 {
		parts = append(parts, fmt.Sprintf("%d load(s)", v.Loads))
	}
	if v.ITCs > 0 {
		parts = append(parts, fmt.Sprintf("%d ITC(s)", v.ITCs))
	}
	who := "party"
	if kind != "" {
		who = string(kind)
	}
	v.Reason = fmt.Sprintf("%s is referenced by %s", who, strings.Join(parts, " and "))
	return v
}
