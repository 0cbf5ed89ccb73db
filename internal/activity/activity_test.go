package activity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 3, 6, 9, 15, 0, 0, time.UTC)

func testEntry() Entry {
	e := NewEntry(testTime, "dispatch", ActionAddLoad, "LD-000001", "LD-1001 Ontario, client tax 130.00")
	e.CommitHash = "abc1234"
	return e
}

func TestNewEntry_KindFromAction(t *testing.T) {
	tests := []struct {
		action Action
		want   EntityKind
	}{
		{ActionInit, KindBook},
		{ActionDeleteParty, KindParty},
		{ActionAddJurisdiction, KindJurisdiction},
		{ActionAddLoad, KindLoad},
		{ActionDeleteITC, KindITC},
		{ActionImport, KindFile},
		{ActionExport, KindFile},
	}
	for _, tt := range tests {
		e := NewEntry(testTime, "a", tt.action, "x", "")
		assert.Equal(t, tt.want, e.Entity.Kind, string(tt.action))
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	data, err := os.ReadFile(filepath.Join(dir, "logs", "activity-log.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), Header+"\n"))
	assert.Contains(t, string(data), ",add_load,load,LD-000001,")

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dispatch", entries[0].Actor)
	assert.Equal(t, Ref{Kind: KindLoad, ID: "LD-000001"}, entries[0].Entity)
}

func TestAppend_FillsKind(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, Entry{Timestamp: testTime, Actor: "a", Action: ActionAddITC, Entity: Ref{ID: "ITC-000001"}}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, KindITC, entries[0].Entity.Kind)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	e2 := NewEntry(testTime, "dispatch", ActionDeleteLoad, "LD-000001", "LD-1001")
	require.NoError(t, Append(dir, e2))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionAddLoad, entries[0].Action)
	assert.Equal(t, ActionDeleteLoad, entries[1].Action)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := NewEntry(testTime, "dispatch", ActionDeleteParty, "8d0c1b9e-2f51-4a44-9c59-6a4c1e7b2d10",
		`party "Acme, Ltd." is referenced by 2 load(s)`)
	require.NoError(t, Append(dir, original))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, original.Actor, got.Actor)
	assert.Equal(t, original.Action, got.Action)
	assert.Equal(t, original.Entity, got.Entity)
	assert.Equal(t, original.Details, got.Details)
	assert.Empty(t, got.CommitHash)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	tests := []struct {
		name    string
		col     int
		value   string
		wantErr string
	}{
		{"bad timestamp", colTimestamp, "yesterday", "parsing timestamp"},
		{"unknown action", colAction, "rename_load", `unknown action "rename_load"`},
		{"unknown kind", colKind, "truck", `unknown entity kind "truck"`},
		{"kind mismatch", colKind, "itc", "action add_load does not apply to itc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := MarshalEntry(testEntry())
			row[tt.col] = tt.value
			_, err := UnmarshalEntry(row)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFilter(t *testing.T) {
	entries := []Entry{
		NewEntry(testTime, "a", ActionAddJurisdiction, "Ontario", "13%"),
		NewEntry(testTime, "a", ActionAddLoad, "LD-000001", ""),
		NewEntry(testTime, "a", ActionAddLoad, "LD-000002", ""),
		NewEntry(testTime, "a", ActionDeleteLoad, "LD-000001", ""),
	}

	assert.Len(t, Filter(entries, "", ""), 4)
	assert.Len(t, Filter(entries, KindLoad, ""), 3)

	got := Filter(entries, KindLoad, "LD-000001")
	require.Len(t, got, 2)
	assert.Equal(t, ActionDeleteLoad, got[1].Action)

	assert.Len(t, Filter(entries, KindJurisdiction, "ONTARIO"), 1)
	assert.Empty(t, Filter(entries, KindITC, ""))
}
