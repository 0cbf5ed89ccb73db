package activity

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Action names a change made to a book.
type Action string

// Actions recorded by the CLI.
const (
	ActionInit            Action = "init"
	ActionAddParty        Action = "add_party"
	ActionDeleteParty     Action = "delete_party"
	ActionAddJurisdiction Action = "add_jurisdiction"
	ActionAddLoad         Action = "add_load"
	ActionDeleteLoad      Action = "delete_load"
	ActionAddITC          Action = "add_itc"
	ActionDeleteITC       Action = "delete_itc"
	ActionImport          Action = "import"
	ActionExport          Action = "export"
)

// EntityKind is the kind of record an action touched.
type EntityKind string

const (
	KindBook         EntityKind = "book"
	KindParty        EntityKind = "party"
	KindJurisdiction EntityKind = "jurisdiction"
	KindLoad         EntityKind = "load"
	KindITC          EntityKind = "itc"
	KindFile         EntityKind = "file"
)

var actionKinds = map[Action]EntityKind{
	ActionInit:            KindBook,
	ActionAddParty:        KindParty,
	ActionDeleteParty:     KindParty,
	ActionAddJurisdiction: KindJurisdiction,
	ActionAddLoad:         KindLoad,
	ActionDeleteLoad:      KindLoad,
	ActionAddITC:          KindITC,
	ActionDeleteITC:       KindITC,
	ActionImport:          KindFile,
	ActionExport:          KindFile,
}

// Kind returns the entity kind the action applies to.
func (a Action) Kind() EntityKind {
	return actionKinds[a]
}

// ParseAction validates an action name read from the log.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := actionKinds[a]; !ok {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// ParseEntityKind validates an entity kind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch k := EntityKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBook, KindParty, KindJurisdiction, KindLoad, KindITC, KindFile:
		return k, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// Ref identifies the record an entry is about: a party id, a jurisdiction
// name, an LD-/ITC- entry id, or a file name.
type Ref struct {
	Kind EntityKind
	ID   string
}

func (r Ref) String() string {
	if r.ID == "" {
		return string(r.Kind)
	}
	return string(r.Kind) + " " + r.ID
}

// Entry is one row in the activity log.
type Entry struct {
	Timestamp  time.Time
	Actor      string
	Action     Action
	Entity     Ref
	Details    string
	CommitHash string
}

// NewEntry builds an entry for action on the record with the given id. The
// entity kind follows from the action.
func NewEntry(at time.Time, actor string, action Action, entityID, details string) Entry {
	return Entry{
		Timestamp: at.UTC(),
		Actor:     actor,
		Action:    action,
		Entity:    Ref{Kind: action.Kind(), ID: entityID},
		Details:   details,
	}
}

// Header is the CSV header for activity-log.csv.
const Header = "timestamp,actor,action,entity_kind,entity_id,details,commit_hash"

// LogFile is the activity log path relative to the book directory.
const LogFile = "logs/activity-log.csv"

const (
	numFields     = 7
	colTimestamp  = 0
	colActor      = 1
	colAction     = 2
	colKind       = 3
	colEntityID   = 4
	colDetails    = 5
	colCommitHash = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colActor] = e.Actor
	row[colAction] = string(e.Action)
	row[colKind] = string(e.Entity.Kind)
	row[colEntityID] = e.Entity.ID
	row[colDetails] = e.Details
	row[colCommitHash] = e.CommitHash
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	action, err := ParseAction(record[colAction])
	if err != nil {
		return Entry{}, err
	}
	kind, err := ParseEntityKind(record[colKind])
	if err != nil {
		return Entry{}, err
	}
	if kind != action.Kind() {
		return Entry{}, fmt.Errorf("action %s does not apply to %s", action, kind)
	}

	return Entry{
		Timestamp:  ts,
		Actor:      record[colActor],
		Action:     action,
		Entity:     Ref{Kind: kind, ID: record[colEntityID]},
		Details:    record[colDetails],
		CommitHash: record[colCommitHash],
	}, nil
}

// Append writes entries to <bookDir>/logs/activity-log.csv, creating the
// file and header if needed.
func Append(bookDir string, entries ...Entry) error {
	path := filepath.Join(bookDir, LogFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for _, e := range entries {
		if e.Entity.Kind == "" {
			e.Entity.Kind = e.Action.Kind()
		}
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing %s entry: %w", e.Action, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <bookDir>/logs/activity-log.csv, oldest
// first. A missing log reads as empty.
func Read(bookDir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(bookDir, LogFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// Filter selects entries about one kind of record, and about one record
// when id is set. Entity ids compare case-insensitively so jurisdiction
// names match however they were typed.
func Filter(entries []Entry, kind EntityKind, id string) []Entry {
	var out []Entry
	for _, e := range entries {
		if kind != "" && e.Entity.Kind != kind {
			continue
		}
		if id != "" && !strings.EqualFold(e.Entity.ID, id) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
