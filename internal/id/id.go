package id

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Entry ID prefixes.
const (
	LoadPrefix = "LD"
	ITCPrefix  = "ITC"
)

// FormatEntryID returns an entry ID like "LD-000042".
func FormatEntryID(prefix string, seq int) string {
	return fmt.Sprintf("%s-%06d", prefix, seq)
}

// ParseEntryID parses "LD-000042" into its prefix and sequence.
func ParseEntryID(id string) (prefix string, seq int, err error) {
	prefix, num, ok := strings.Cut(id, "-")
	if !ok || prefix == "" || num == "" {
		return "", 0, fmt.Errorf("invalid entry ID format: %q", id)
	}
	if strings.ToUpper(prefix) != prefix {
		return "", 0, fmt.Errorf("invalid prefix in entry ID %q", id)
	}

	seq, err = strconv.Atoi(num)
	if err != nil {
		return "", 0, fmt.Errorf("invalid sequence in entry ID %q: %w", id, err)
	}
	if seq < 1 {
		return "", 0, fmt.Errorf("invalid sequence in entry ID %q", id)
	}
	return prefix, seq, nil
}

// NewPartyID returns a fresh random party ID.
func NewPartyID() string {
	return uuid.NewString()
}

// ValidPartyID reports whether s is a well-formed party ID.
func ValidPartyID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// LoadNumberKey extracts the numeric portion of a load number for ordering:
// "LD-1042" -> 1042, "2024/77A" -> 202477. Load numbers without digits sort as 0.
func LoadNumberKey(loadNumber string) *big.Int {
	var b strings.Builder
	for _, r := range loadNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n := new(big.Int)
	if b.Len() == 0 {
		return n
	}
	n.SetString(b.String(), 10)
	return n
}
