package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freightbooks/taxledger/internal/model"
)

func TestCanDeleteParty(t *testing.T) {
	loads := []model.LoadEntry{
		{ID: "LD-000001", ClientID: clientID, CarrierID: carrierID},
		{ID: "LD-000002", ClientID: clientID, CarrierID: carrierID},
	}
	itcs := []model.ITCEntry{
		{ID: "ITC-000001", VendorID: vendorID},
		{ID: "ITC-000002"},
	}

	v := CanDeleteParty(clientID, model.PartyClient, loads, itcs)
	assert.False(t, v.Allowed)
	assert.Equal(t, 2, v.Loads)
	assert.Equal(t, "client is referenced by 2 load(s)", v.Reason)

	v = CanDeleteParty(carrierID, model.PartyCarrier, loads, itcs)
	assert.False(t, v.Allowed)
	assert.Equal(t, 2, v.Loads)

	v = CanDeleteParty(vendorID, model.PartyVendor, loads, itcs)
	assert.False(t, v.Allowed)
	assert.Equal(t, 1, v.ITCs)
	assert.Equal(t, "vendor is referenced by 1 ITC(s)", v.Reason)

	v = CanDeleteParty("0d4f3e2a-9b8c-4a7d-8e6f-5a4b3c2d1e00", model.PartyClient, loads, itcs)
	assert.True(t, v.Allowed)
	assert.Empty(t, v.Reason)
}

func TestCanDeleteParty_AnyRole(t *testing.T) {
	loads := []model.LoadEntry{{ClientID: clientID, CarrierID: carrierID}}
	itcs := []model.ITCEntry{{VendorID: clientID}}

	v := CanDeleteParty(clientID, "", loads, itcs)
	assert.False(t, v.Allowed)
	assert.Equal(t, "party is referenced by 1 load(s) and 1 ITC(s)", v.Reason)
}

func TestCanDeleteParty_Empty(t *testing.T) {
	v := CanDeleteParty(clientID, model.PartyClient, nil, nil)
	assert.True(t, v.Allowed)
	assert.Zero(t, v.Loads)
	assert.Zero(t, v.ITCs)
}
