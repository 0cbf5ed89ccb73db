package gitops

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func TestInit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	err := Init(dir, io.Discard)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestIsRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(dir, io.Discard))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestCommitAll(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir, io.Discard))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "loads.csv"), []byte("entry_id\n"), 0o644))

	hash, err := CommitAll(dir, "init: new book", "Test Author", "test@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init: new book")

	authorLog := exec.Command("git", "log", "--format=%an <%ae>", "-1")
	authorLog.Dir = dir
	out, err = authorLog.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "Test Author <test@example.com>")
}

func TestCommitter(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	c := Committer{Dir: dir, AuthorName: "Test Author", AuthorEmail: "test@example.com", Enabled: true}

	hash, err := c.Commit("no repo yet")
	require.NoError(t, err)
	assert.Empty(t, hash)

	require.NoError(t, Init(dir, io.Discard))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "itcs.csv"), []byte("entry_id\n"), 0o644))

	off := c
	off.Enabled = false
	hash, err = off.Commit("disabled")
	require.NoError(t, err)
	assert.Empty(t, hash)

	hash, err = c.Commit("itc: add ITC-000001")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}
