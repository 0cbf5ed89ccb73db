package timestamp

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"03/05/2024 14:30", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)},
		{"03/05/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"12/31/2025 23:59", time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)},
		{"02/29/2024", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"01/01/2025 00:00", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.True(t, tt.want.Equal(got), "Parse(%q) = %v, want %v", tt.input, got, tt.want)
	}
}

func TestParse_Rejected(t *testing.T) {
	badInputs := []string{
		"",
		"2024-03-05",
		"3/5/2024",
		"03/05/24",
		"03-05-2024",
		"03/05/2024 2:30",
		"03/05/2024 14:30:00",
		"03/05/2024T14:30",
		"13/01/2024",
		"00/10/2024",
		"02/30/2024",
		"02/29/2023",
		"03/05/2024 24:00",
		"03/05/2024 12:60",
		"ab/cd/efgh",
		" 03/05/2024",
		"03/05/2024 ",
	}
	for _, input := range badInputs {
		_, err := Parse(input)
		require.Error(t, err, "expected error for input: %q", input)
		assert.ErrorIs(t, err, ErrFormat)

		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Contains(t, err.Error(), "MM/DD/YYYY HH:MM")
		assert.Contains(t, err.Error(), "or MM/DD/YYYY")
	}
}

func TestParseOptional(t *testing.T) {
	got, err := ParseOptional("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseOptional("-")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseOptional("07/04/2025")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 4, got.Day())

	_, err = ParseOptional("July 4")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC)
	assert.Equal(t, "03/05/2024 09:07", Format(ts))
	assert.Equal(t, "03/05/2024 09:07", FormatOptional(&ts))
	assert.Equal(t, "-", FormatOptional(nil))

	back, err := Parse(Format(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(back))
}
