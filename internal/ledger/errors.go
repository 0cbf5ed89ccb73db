package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPrecondition is matched by every input validation failure.
	ErrPrecondition = errors.New("precondition violated")
	// ErrUnknownJurisdiction is returned when a tax jurisdiction has no rate.
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction")
	// ErrPartyNotFound is returned for a party id that is not in the book.
	ErrPartyNotFound = errors.New("party not found")
	// ErrWrongPartyKind is returned when an entry references a party in the
	// wrong role, e.g. a vendor as a load's carrier.
	ErrWrongPartyKind = errors.New("party has wrong kind")
	// ErrIntegrity is matched by rejected party deletions.
	ErrIntegrity = errors.New("party is still referenced")
	// ErrEntryNotFound is returned for an unknown load or ITC id.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrDuplicate is returned when restoring a record whose id is already taken.
	ErrDuplicate = errors.New("duplicate id")
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every rejected field of one input.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, ve := range v {
		msgs[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match ErrPrecondition.
func (v ValidationErrors) Unwrap() error { return ErrPrecondition }

// Field reports whether field is among the violations.
func (v ValidationErrors) Field(field string) bool {
	for _, ve := range v {
		if ve.Field == field {
			return true
		}
	}
	return false
}

// IntegrityError is returned when a referenced party cannot be deleted.
type IntegrityError struct {
	PartyID string
	Verdict Verdict
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("cannot delete party %s: %s", e.PartyID, e.Verdict.Reason)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
