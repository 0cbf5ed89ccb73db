package ledger

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/freightbooks/taxledger/internal/id"
	"github.com/freightbooks/taxledger/internal/jurisdiction"
	"github.com/freightbooks/taxledger/internal/model"
)

// Book is the in-memory ledger: parties, loads, ITCs and the jurisdiction
// table they are computed against. It is safe for concurrent use.
//
// Every mutating call is all-or-nothing: inputs are validated and references
// resolved before anything is stored.
type Book struct {
	log   *zap.Logger
	rates *jurisdiction.Table
	now   func() time.Time
	locks partyLocks

	mu      sync.RWMutex
	parties map[string]model.Party
	loads   []model.LoadEntry
	itcs    []model.ITCEntry
	loadSeq int
	itcSeq  int
}

// Option configures a Book.
type Option func(*Book)

// WithClock replaces time.Now, used for rate snapshots and CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(b *Book) { b.now = now }
}

// NewBook creates an empty Book computing against rates.
func NewBook(rates *jurisdiction.Table, log *zap.Logger, opts ...Option) *Book {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Book{
		log:     log.Named("book"),
		rates:   rates,
		now:     func() time.Time { return time.Now().UTC() },
		parties: make(map[string]model.Party),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Rates returns the jurisdiction table.
func (b *Book) Rates() *jurisdiction.Table {
	return b.rates
}

// --- Parties ---

// AddParty registers a new party and returns it with its id.
func (b *Book) AddParty(in model.PartyInput) (model.Party, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := ValidateParty(in); err != nil {
		return model.Party{}, err
	}
	if in.Jurisdiction != "" && !b.rates.Exists(in.Jurisdiction) {
		return model.Party{}, fmt.Errorf("%w: %q", ErrUnknownJurisdiction, in.Jurisdiction)
	}

	p := model.Party{
		ID:                    id.NewPartyID(),
		Kind:                  in.Kind,
		Name:                  in.Name,
		ContactName:           in.ContactName,
		Email:                 in.Email,
		Phone:                 in.Phone,
		TaxRegistrationNumber: in.TaxRegistrationNumber,
		Jurisdiction:          in.Jurisdiction,
		Category:              in.Category,
	}

	b.mu.Lock()
	b.parties[p.ID] = p
	b.mu.Unlock()

	b.log.Info("party added", zap.String("id", p.ID), zap.String("kind", string(p.Kind)), zap.String("name", p.Name))
	return p, nil
}

// Party returns the party with the given id.
func (b *Book) Party(partyID string) (model.Party, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.parties[partyID]
	return p, ok
}

// Parties returns the parties of kind, or every party when kind is empty,
// sorted by name.
func (b *Book) Parties(kind model.PartyKind) []model.Party {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []model.Party
	for _, p := range b.parties {
		if kind == "" || p.Kind == kind {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PartyName returns the party's name, or "" when unknown. It fits
// ExportOptions.PartyName.
func (b *Book) PartyName(partyID string) string {
	p, _ := b.Party(partyID)
	return p.Name
}

// CanDeleteParty runs the integrity check for partyID against the current
// entries without deleting anything.
func (b *Book) CanDeleteParty(partyID string) (Verdict, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	p, ok := b.parties[partyID]
	if !ok {
		return Verdict{}, fmt.Errorf("%w: %s", ErrPartyNotFound, partyID)
	}
	return CanDeleteParty(partyID, p.Kind, b.loads, b.itcs), nil
}

// DeleteParty removes a party that no load or ITC references. A referenced
// party is left untouched and an *IntegrityError is returned. The party's
// lock is held from the scan through the removal, so no entry referencing it
// can be created in between.
func (b *Book) DeleteParty(partyID string) (Verdict, error) {
	if !id.ValidPartyID(partyID) {
		return Verdict{}, ValidationErrors{{Field: "party_id", Message: "malformed id " + partyID}}
	}

	unlock := b.locks.lock(partyID)
	defer unlock()

	v, err := b.CanDeleteParty(partyID)
	if err != nil {
		return Verdict{}, err
	}
	if !v.Allowed {
		b.log.Warn("party delete rejected", zap.String("id", partyID), zap.String("reason", v.Reason))
		return v, &IntegrityError{PartyID: partyID, Verdict: v}
	}

	b.mu.Lock()
	delete(b.parties, partyID)
	b.mu.Unlock()

	b.log.Info("party deleted", zap.String("id", partyID))
	return v, nil
}

// requireParty must be called with the party's lock held.
func (b *Book) requireParty(partyID string, kind model.PartyKind) (model.Party, error) {
	p, ok := b.Party(partyID)
	if !ok {
		return model.Party{}, fmt.Errorf("%w: %s %s", ErrPartyNotFound, kind, partyID)
	}
	if p.Kind != kind {
		return model.Party{}, fmt.Errorf("%w: %s is a %s, not a %s", ErrWrongPartyKind, partyID, p.Kind, kind)
	}
	return p, nil
}

// --- Loads ---

// AddLoad validates a load, snapshots the tax rate in effect now for its tax
// jurisdiction, computes the derived amounts and stores the entry.
func (b *Book) AddLoad(in model.LoadInput) (model.LoadEntry, error) {
	if err := ValidateLoad(in); err != nil {
		return model.LoadEntry{}, err
	}

	now := b.now()
	rate, err := b.rates.Lookup(in.TaxJurisdiction, now)
	if err != nil {
		return model.LoadEntry{}, fmt.Errorf("%w: tax jurisdiction %q", ErrUnknownJurisdiction, in.TaxJurisdiction)
	}
	if in.DeliveryJurisdiction != "" && !b.rates.Exists(in.DeliveryJurisdiction) {
		return model.LoadEntry{}, fmt.Errorf("%w: delivery jurisdiction %q", ErrUnknownJurisdiction, in.DeliveryJurisdiction)
	}

	entry, err := Compute(in, rate)
	if err != nil {
		return model.LoadEntry{}, err
	}

	unlock := b.locks.lock(in.ClientID, in.CarrierID)
	defer unlock()

	if _, err := b.requireParty(in.ClientID, model.PartyClient); err != nil {
		return model.LoadEntry{}, err
	}
	if _, err := b.requireParty(in.CarrierID, model.PartyCarrier); err != nil {
		return model.LoadEntry{}, err
	}

	b.mu.Lock()
	b.loadSeq++
	entry.ID = id.FormatEntryID(id.LoadPrefix, b.loadSeq)
	entry.CreatedAt = now
	b.loads = append(b.loads, entry)
	b.mu.Unlock()

	b.log.Info("load added",
		zap.String("id", entry.ID),
		zap.String("load_number", entry.LoadNumber),
		zap.String("jurisdiction", entry.TaxJurisdiction),
		zap.String("tax_rate", entry.TaxRate.String()),
	)
	return entry, nil
}

// Load returns the load entry with the given id.
func (b *Book) Load(entryID string) (model.LoadEntry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := slices.IndexFunc(b.loads, func(l model.LoadEntry) bool { return l.ID == entryID })
	if i < 0 {
		return model.LoadEntry{}, false
	}
	return b.loads[i], true
}

// Loads returns a copy of every load entry in creation order.
func (b *Book) Loads() []model.LoadEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.loads)
}

// DeleteLoad removes a load entry. Parties are never affected.
func (b *Book) DeleteLoad(entryID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.loads, func(l model.LoadEntry) bool { return l.ID == entryID })
	if i < 0 {
		return fmt.Errorf("%w: load %s", ErrEntryNotFound, entryID)
	}
	b.loads = slices.Delete(b.loads, i, i+1)
	b.log.Info("load deleted", zap.String("id", entryID))
	return nil
}

// --- ITCs ---

// AddITC stores an input tax credit. When VendorID is set, blank payee,
// registration number, category and jurisdiction are copied from the vendor
// once; later vendor edits do not reach the entry.
func (b *Book) AddITC(in model.ITCInput) (model.ITCEntry, error) {
	if in.VendorID != "" && !id.ValidPartyID(in.VendorID) {
		return model.ITCEntry{}, ValidationErrors{{Field: "vendor_id", Message: "malformed id " + in.VendorID}}
	}

	unlock := b.locks.lock(in.VendorID)
	defer unlock()

	if in.VendorID != "" {
		v, err := b.requireParty(in.VendorID, model.PartyVendor)
		if err != nil {
			return model.ITCEntry{}, err
		}
		in = fillFromVendor(in, v)
	}

	if err := ValidateITC(in); err != nil {
		return model.ITCEntry{}, err
	}
	if in.Jurisdiction != "" && !b.rates.Exists(in.Jurisdiction) {
		return model.ITCEntry{}, fmt.Errorf("%w: %q", ErrUnknownJurisdiction, in.Jurisdiction)
	}

	entry := model.ITCEntry{
		Description:           in.Description,
		PayeeName:             in.PayeeName,
		VendorID:              in.VendorID,
		InvoicedAt:            in.InvoicedAt,
		TaxRegistrationNumber: in.TaxRegistrationNumber,
		AmountBeforeTax:       in.AmountBeforeTax,
		TaxAmount:             in.TaxAmount,
		PaidAt:                in.PaidAt,
		Category:              in.Category,
		Jurisdiction:          in.Jurisdiction,
		CreatedAt:             b.now(),
	}

	b.mu.Lock()
	b.itcSeq++
	entry.ID = id.FormatEntryID(id.ITCPrefix, b.itcSeq)
	b.itcs = append(b.itcs, entry)
	b.mu.Unlock()

	b.log.Info("itc added", zap.String("id", entry.ID), zap.String("payee", entry.PayeeName), zap.String("tax", entry.TaxAmount.String()))
	return entry, nil
}

func fillFromVendor(in model.ITCInput, v model.Party) model.ITCInput {
	if in.PayeeName == "" {
		in.PayeeName = v.Name
	}
	if in.TaxRegistrationNumber == "" {
		in.TaxRegistrationNumber = v.TaxRegistrationNumber
	}
	if in.Category == "" {
		in.Category = v.Category
	}
	if in.Jurisdiction == "" {
		in.Jurisdiction = v.Jurisdiction
	}
	return in
}

// ITC returns the ITC entry with the given id.
func (b *Book) ITC(entryID string) (model.ITCEntry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := slices.IndexFunc(b.itcs, func(e model.ITCEntry) bool { return e.ID == entryID })
	if i < 0 {
		return model.ITCEntry{}, false
	}
	return b.itcs[i], true
}

// ITCs returns a copy of every ITC entry in creation order.
func (b *Book) ITCs() []model.ITCEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.itcs)
}

// DeleteITC removes an ITC entry.
func (b *Book) DeleteITC(entryID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.itcs, func(e model.ITCEntry) bool { return e.ID == entryID })
	if i < 0 {
		return fmt.Errorf("%w: ITC %s", ErrEntryNotFound, entryID)
	}
	b.itcs = slices.Delete(b.itcs, i, i+1)
	b.log.Info("itc deleted", zap.String("id", entryID))
	return nil
}

// --- Reads ---

// Totals aggregates the current entries.
func (b *Book) Totals() model.Totals {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Aggregate(b.loads, b.itcs)
}

// Snapshot is a point-in-time copy of the book's records.
type Snapshot struct {
	Parties []model.Party
	Loads   []model.LoadEntry
	ITCs    []model.ITCEntry
}

// Snapshot copies every record under one read lock, so loads, ITCs and
// parties are mutually consistent.
func (b *Book) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Snapshot{
		Loads: slices.Clone(b.loads),
		ITCs:  slices.Clone(b.itcs),
	}
	for _, p := range b.parties {
		s.Parties = append(s.Parties, p)
	}
	sort.Slice(s.Parties, func(i, j int) bool { return s.Parties[i].ID < s.Parties[j].ID })
	return s
}

// Restore loads previously stored records into an empty book. Entries keep
// their stored rate snapshot and derived amounts; nothing is recomputed.
func (b *Book) Restore(s Snapshot) error {
	parties := make(map[string]model.Party, len(s.Parties))
	for _, p := range s.Parties {
		if _, dup := parties[p.ID]; dup {
			return fmt.Errorf("%w: party %s", ErrDuplicate, p.ID)
		}
		parties[p.ID] = p
	}

	loadSeq, err := maxSeq(s.Loads, func(l model.LoadEntry) string { return l.ID })
	if err != nil {
		return fmt.Errorf("restoring loads: %w", err)
	}
	itcSeq, err := maxSeq(s.ITCs, func(e model.ITCEntry) string { return e.ID })
	if err != nil {
		return fmt.Errorf("restoring ITCs: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.parties) > 0 || len(b.loads) > 0 || len(b.itcs) > 0 {
		return errors.New("restore into a non-empty book")
	}
	b.parties = parties
	b.loads = slices.Clone(s.Loads)
	b.itcs = slices.Clone(s.ITCs)
	b.loadSeq = loadSeq
	b.itcSeq = itcSeq
	return nil
}

func maxSeq[T any](entries []T, entryID func(T) string) (int, error) {
	seen := make(map[string]bool, len(entries))
	highest := 0
	for _, e := range entries {
		eid := entryID(e)
		if seen[eid] {
			return 0, fmt.Errorf("%w: %s", ErrDuplicate, eid)
		}
		seen[eid] = true
		_, seq, err := id.ParseEntryID(eid)
		if err != nil {
			return 0, err
		}
		highest = max(highest, seq)
	}
	return highest, nil
}
