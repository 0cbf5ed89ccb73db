// Package jurisdiction holds the tax rate reference table.
package jurisdiction

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/freightbooks/taxledger/internal/model"
)

// FileName is the table's file inside a book directory.
const FileName = "jurisdictions.csv"

var (
	// ErrUnknown is returned when no rate exists for a name at a given time.
	ErrUnknown = errors.New("unknown jurisdiction")
	// ErrDuplicate is returned when a rate with the same name and
	// effective date already exists.
	ErrDuplicate = errors.New("duplicate jurisdiction rate")
)

// Table is an append-only set of effective-dated rates keyed by name.
type Table struct {
	mu     sync.RWMutex
	byName map[string][]model.JurisdictionRate // sorted by EffectiveFrom
}

// NewTable builds a Table from rates.
func NewTable(rates []model.JurisdictionRate) (*Table, error) {
	t := &Table{byName: make(map[string][]model.JurisdictionRate)}
	for _, r := range rates {
		if err := t.Add(r); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Load reads jurisdictions.csv from a book directory.
func Load(dir string) (*Table, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("opening jurisdiction table: %w", err)
	}
	defer f.Close()

	rates, err := ReadRates(f)
	if err != nil {
		return nil, fmt.Errorf("reading jurisdiction table: %w", err)
	}
	return NewTable(rates)
}

// Add appends a rate. Existing rates are never replaced.
func (t *Table) Add(r model.JurisdictionRate) error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("jurisdiction name is required")
	}
	if r.Rate.IsNegative() {
		return fmt.Errorf("jurisdiction %s: negative rate %s", r.Name, r.Rate)
	}

	key := normalize(r.Name)

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, existing := range t.byName[key] {
		if existing.EffectiveFrom.Equal(r.EffectiveFrom) {
			return fmt.Errorf("%w: %s from %s", ErrDuplicate, r.Name, r.EffectiveFrom.Format(time.DateOnly))
		}
	}
	rates := append(t.byName[key], r)
	sort.SliceStable(rates, func(i, j int) bool {
		return rates[i].EffectiveFrom.Before(rates[j].EffectiveFrom)
	})
	t.byName[key] = rates
	return nil
}

// Lookup returns the rate for name in effect at time at: the one with the
// latest EffectiveFrom not after at. Names match case-insensitively.
func (t *Table) Lookup(name string, at time.Time) (model.JurisdictionRate, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rates := t.byName[normalize(name)]
	for i := len(rates) - 1; i >= 0; i-- {
		if !rates[i].EffectiveFrom.After(at) {
			return rates[i], nil
		}
	}
	return model.JurisdictionRate{}, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// Exists reports whether any rate is recorded for name.
func (t *Table) Exists(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byName[normalize(name)]) > 0
}

// All returns every rate ordered by name then effective date.
func (t *Table) All() []model.JurisdictionRate {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []model.JurisdictionRate
	for _, name := range t.namesLocked() {
		out = append(out, t.byName[normalize(name)]...)
	}
	return out
}

// Names returns the display name of each jurisdiction, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.namesLocked()
}

func (t *Table) namesLocked() []string {
	names := make([]string, 0, len(t.byName))
	for _, rates := range t.byName {
		names = append(names, rates[len(rates)-1].Name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
