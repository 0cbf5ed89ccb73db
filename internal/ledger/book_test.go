package ledger

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/freightbooks/taxledger/internal/jurisdiction"
	"github.com/freightbooks/taxledger/internal/model"
)

type fixture struct {
	book    *Book
	clock   *time.Time
	client  model.Party
	carrier model.Party
	vendor  model.Party
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := ts(2024, 3, 6, 9, 0)
	f := &fixture{clock: &now}
	f.book = NewBook(jurisdiction.DefaultTable(), zap.NewNop(), WithClock(func() time.Time { return *f.clock }))

	var err error
	f.client, err = f.book.AddParty(model.PartyInput{Kind: model.PartyClient, Name: "Acme Foods", Jurisdiction: "Ontario"})
	require.NoError(t, err)
	f.carrier, err = f.book.AddParty(model.PartyInput{Kind: model.PartyCarrier, Name: "Northern Haul"})
	require.NoError(t, err)
	f.vendor, err = f.book.AddParty(model.PartyInput{
		Kind:                  model.PartyVendor,
		Name:                  "Petro Fleet",
		TaxRegistrationNumber: "123456789RT0001",
		Jurisdiction:          "Ontario",
		Category:              "Fuel",
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) load() model.LoadInput {
	in := ontarioLoad()
	in.ClientID = f.client.ID
	in.CarrierID = f.carrier.ID
	return in
}

func TestBook_AddLoad(t *testing.T) {
	f := newFixture(t)

	e, err := f.book.AddLoad(f.load())
	require.NoError(t, err)
	assert.Equal(t, "LD-000001", e.ID)
	assert.True(t, e.CreatedAt.Equal(*f.clock))
	assert.Equal(t, "130.00", e.ClientTax.StringFixed(2))

	e2, err := f.book.AddLoad(f.load())
	require.NoError(t, err)
	assert.Equal(t, "LD-000002", e2.ID)

	got, ok := f.book.Load(e.ID)
	require.True(t, ok)
	assert.Equal(t, e.LoadNumber, got.LoadNumber)
	assert.Len(t, f.book.Loads(), 2)
}

func TestBook_AddLoad_Rejections(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*model.LoadInput)
		target error
	}{
		{"unknown jurisdiction", func(in *model.LoadInput) { in.TaxJurisdiction = "Atlantis" }, ErrUnknownJurisdiction},
		{"unknown delivery jurisdiction", func(in *model.LoadInput) { in.DeliveryJurisdiction = "Atlantis" }, ErrUnknownJurisdiction},
		{"unknown client", func(in *model.LoadInput) { in.ClientID = clientID }, ErrPartyNotFound},
		{"carrier as client", func(in *model.LoadInput) { in.ClientID = f.carrier.ID }, ErrWrongPartyKind},
		{"vendor as carrier", func(in *model.LoadInput) { in.CarrierID = f.vendor.ID }, ErrWrongPartyKind},
		{"negative amount", func(in *model.LoadInput) { in.ClientBaseAmount = dec("-5") }, ErrPrecondition},
		{"malformed id", func(in *model.LoadInput) { in.CarrierID = "carrier-1" }, ErrPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.load()
			tt.mutate(&in)
			_, err := f.book.AddLoad(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Empty(t, f.book.Loads(), "nothing stored on failure")
		})
	}
}

func TestBook_RateSnapshot(t *testing.T) {
	f := newFixture(t)

	before, err := f.book.AddLoad(f.load())
	require.NoError(t, err)

	// Ontario raises its rate; entries created afterwards pick it up.
	require.NoError(t, f.book.Rates().Add(model.JurisdictionRate{
		Name: "Ontario", Rate: dec("0.15"), Label: "HST", EffectiveFrom: ts(2024, 4, 1, 0, 0),
	}))
	*f.clock = ts(2024, 4, 2, 0, 0)

	after, err := f.book.AddLoad(f.load())
	require.NoError(t, err)
	assert.True(t, after.TaxRate.Equal(dec("0.15")))
	assert.Equal(t, "150.00", after.ClientTax.StringFixed(2))

	stored, ok := f.book.Load(before.ID)
	require.True(t, ok)
	assert.True(t, stored.TaxRate.Equal(dec("0.13")))
	assert.Equal(t, "130.00", stored.ClientTax.StringFixed(2))
	assert.Equal(t, "65.00", stored.CarrierTax.StringFixed(2))
}

func TestBook_AddITC_VendorDefaults(t *testing.T) {
	f := newFixture(t)

	e, err := f.book.AddITC(model.ITCInput{
		Description:     "Fuel card",
		VendorID:        f.vendor.ID,
		AmountBeforeTax: dec("153.85"),
		TaxAmount:       dec("20"),
		PaidAt:          ts(2024, 3, 10, 0, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "ITC-000001", e.ID)
	assert.Equal(t, "Petro Fleet", e.PayeeName)
	assert.Equal(t, "123456789RT0001", e.TaxRegistrationNumber)
	assert.Equal(t, "Fuel", e.Category)
	assert.Equal(t, "Ontario", e.Jurisdiction)

	// Explicit values win over vendor defaults.
	e2, err := f.book.AddITC(model.ITCInput{
		Description:     "Lubricants",
		VendorID:        f.vendor.ID,
		PayeeName:       "Petro Fleet West",
		Category:        "Maintenance",
		AmountBeforeTax: dec("100"),
		TaxAmount:       dec("5"),
		PaidAt:          ts(2024, 3, 11, 0, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Petro Fleet West", e2.PayeeName)
	assert.Equal(t, "Maintenance", e2.Category)
	assert.Equal(t, "123456789RT0001", e2.TaxRegistrationNumber)
}

func TestBook_AddITC_Rejections(t *testing.T) {
	f := newFixture(t)

	_, err := f.book.AddITC(model.ITCInput{Description: "x", PayeeName: "y", TaxAmount: dec("-1"), PaidAt: ts(2024, 1, 1, 0, 0)})
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = f.book.AddITC(model.ITCInput{Description: "x", TaxAmount: dec("1"), PaidAt: ts(2024, 1, 1, 0, 0)})
	assert.ErrorIs(t, err, ErrPrecondition, "payee required without vendor")

	_, err = f.book.AddITC(model.ITCInput{Description: "x", VendorID: f.client.ID, TaxAmount: dec("1"), PaidAt: ts(2024, 1, 1, 0, 0)})
	assert.ErrorIs(t, err, ErrWrongPartyKind)

	_, err = f.book.AddITC(model.ITCInput{Description: "x", VendorID: "petro", TaxAmount: dec("1"), PaidAt: ts(2024, 1, 1, 0, 0)})
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = f.book.AddITC(model.ITCInput{Description: "x", PayeeName: "y", Jurisdiction: "Atlantis", PaidAt: ts(2024, 1, 1, 0, 0)})
	assert.ErrorIs(t, err, ErrUnknownJurisdiction)

	assert.Empty(t, f.book.ITCs())
}

func TestBook_DeleteParty(t *testing.T) {
	f := newFixture(t)
	load, err := f.book.AddLoad(f.load())
	require.NoError(t, err)

	v, err := f.book.DeleteParty(f.client.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIntegrity)
	var ie *IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.False(t, v.Allowed)
	assert.Equal(t, "client is referenced by 1 load(s)", v.Reason)
	assert.Contains(t, err.Error(), "referenced by 1 load(s)")

	_, ok := f.book.Party(f.client.ID)
	assert.True(t, ok, "rejected party stays")

	// Vendor with no ITCs can go.
	v, err = f.book.DeleteParty(f.vendor.ID)
	require.NoError(t, err)
	assert.True(t, v.Allowed)
	_, ok = f.book.Party(f.vendor.ID)
	assert.False(t, ok)

	// Once the load is gone the client is free.
	require.NoError(t, f.book.DeleteLoad(load.ID))
	_, err = f.book.DeleteParty(f.client.ID)
	require.NoError(t, err)

	// Creating against a deleted party fails.
	_, err = f.book.AddLoad(f.load())
	assert.ErrorIs(t, err, ErrPartyNotFound)
}

func TestBook_DeleteParty_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.book.DeleteParty("nope")
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = f.book.DeleteParty(clientID)
	assert.ErrorIs(t, err, ErrPartyNotFound)
}

func TestBook_DeleteEntries(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.book.DeleteLoad("LD-000009"), ErrEntryNotFound)
	assert.ErrorIs(t, f.book.DeleteITC("ITC-000009"), ErrEntryNotFound)

	itc, err := f.book.AddITC(model.ITCInput{Description: "x", VendorID: f.vendor.ID, TaxAmount: dec("1"), PaidAt: ts(2024, 1, 1, 0, 0)})
	require.NoError(t, err)
	_, err = f.book.DeleteParty(f.vendor.ID)
	assert.ErrorIs(t, err, ErrIntegrity)

	require.NoError(t, f.book.DeleteITC(itc.ID))
	_, ok := f.book.ITC(itc.ID)
	assert.False(t, ok)
	_, err = f.book.DeleteParty(f.vendor.ID)
	assert.NoError(t, err)
}

func TestBook_Totals(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "0.00", f.book.Totals().NetPayable.StringFixed(2))

	_, err := f.book.AddLoad(f.load())
	require.NoError(t, err)
	_, err = f.book.AddITC(model.ITCInput{Description: "Fuel", VendorID: f.vendor.ID, TaxAmount: dec("20"), PaidAt: ts(2024, 3, 10, 0, 0)})
	require.NoError(t, err)

	assert.Equal(t, "45.00", f.book.Totals().NetPayable.StringFixed(2))
}

func TestBook_Parties(t *testing.T) {
	f := newFixture(t)

	assert.Len(t, f.book.Parties(""), 3)
	clients := f.book.Parties(model.PartyClient)
	require.Len(t, clients, 1)
	assert.Equal(t, "Acme Foods", clients[0].Name)
	assert.Equal(t, "Northern Haul", f.book.PartyName(f.carrier.ID))
	assert.Empty(t, f.book.PartyName(clientID))

	_, err := f.book.AddParty(model.PartyInput{Kind: model.PartyClient, Name: "  "})
	assert.ErrorIs(t, err, ErrPrecondition)
	_, err = f.book.AddParty(model.PartyInput{Kind: "broker", Name: "X"})
	assert.ErrorIs(t, err, ErrPrecondition)
	_, err = f.book.AddParty(model.PartyInput{Kind: model.PartyClient, Name: "X", Jurisdiction: "Atlantis"})
	assert.ErrorIs(t, err, ErrUnknownJurisdiction)
}

func TestBook_SnapshotRestore(t *testing.T) {
	f := newFixture(t)
	_, err := f.book.AddLoad(f.load())
	require.NoError(t, err)
	_, err = f.book.AddITC(model.ITCInput{Description: "Fuel", VendorID: f.vendor.ID, TaxAmount: dec("20"), PaidAt: ts(2024, 3, 10, 0, 0)})
	require.NoError(t, err)

	snap := f.book.Snapshot()
	require.Len(t, snap.Parties, 3)

	restored := NewBook(jurisdiction.DefaultTable(), nil)
	require.NoError(t, restored.Restore(snap))
	assert.Equal(t, f.book.Totals().NetPayable.String(), restored.Totals().NetPayable.String())

	next, err := restored.AddLoad(f.load())
	require.NoError(t, err)
	assert.Equal(t, "LD-000002", next.ID, "sequence continues after restore")

	assert.Error(t, restored.Restore(snap), "restore needs an empty book")

	dup := snap
	dup.Loads = append(dup.Loads, dup.Loads[0])
	assert.ErrorIs(t, NewBook(jurisdiction.DefaultTable(), nil).Restore(dup), ErrDuplicate)
}

// Concurrent creates against a party and its deletion must never leave a
// load pointing at a deleted party.
func TestBook_DeleteVersusCreate(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, _ = f.book.AddLoad(f.load())
			}
		}()
		go func() {
			defer wg.Done()
			_, _ = f.book.DeleteParty(f.client.ID)
		}()
		wg.Wait()

		_, clientExists := f.book.Party(f.client.ID)
		loads := f.book.Loads()
		if !clientExists {
			assert.Empty(t, loads, "loads reference a deleted client")
		} else {
			assert.Len(t, loads, 10)
		}
	}
}

func TestPartyLocks(t *testing.T) {
	var p partyLocks
	unlock := p.lock("b", "a", "a", "")
	assert.Len(t, p.locks, 2)

	done := make(chan struct{})
	go func() {
		u := p.lock("a")
		u()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("lock on a acquired while held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	<-done
	assert.Empty(t, p.locks, "released locks are dropped")
}
