package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/savelater/internal/domain"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SAVELATER_CONFIG", "")
	t.Setenv("SAVELATER_STORE", "sqlite")
	t.Setenv("SAVELATER_SQLITE_PATH", filepath.Join(dir, "links.db"))
	t.Setenv("SAVELATER_LOG_FILE", filepath.Join(dir, "savelater.log"))
	t.Setenv("SAVELATER_REMOTE_URL", "")
	t.Setenv("SAVELATER_OWNER", "")
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func savedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 2, "unexpected add output %q", out)
	return fields[1]
}

func TestCLIWorkflow(t *testing.T) {
	setupEnv(t)

	out, _, err := runCLI(t, "add", "https://go.dev/doc/effective_go", "--title", "Effective Go")
	require.NoError(t, err)
	id := savedID(t, out)

	out, _, err = runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Effective Go")
	assert.Contains(t, out, "*", "unsynced links are marked")

	out, _, err = runCLI(t, "find", "effective")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, _, err = runCLI(t, "visit", id)
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev/doc/effective_go\n", out)

	_, _, err = runCLI(t, "edit", id, "--title", "Go style")
	require.NoError(t, err)

	out, _, err = runCLI(t, "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Go style"`)
	assert.Contains(t, out, `"visited": true`)

	_, _, err = runCLI(t, "rm", id)
	require.NoError(t, err)

	out, _, err = runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No links saved.")
}

func TestCLIErrors(t *testing.T) {
	setupEnv(t)

	_, stderr, err := runCLI(t, "add", "ftp://example.com")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, stderr, "hyperlink must start with http:// or https://")

	_, _, err = runCLI(t, "visit", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = runCLI(t, "edit", "missing")
	assert.Error(t, err, "edit needs a flag")

	_, _, err = runCLI(t, "wipe")
	assert.Error(t, err, "wipe needs --yes")
}

func TestCLIImportAndWipe(t *testing.T) {
	setupEnv(t)

	file := filepath.Join(t.TempDir(), "bookmarks.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Go docs:
        - abbr: GO
          href: https://go.dev/doc/
`), 0o644))

	out, _, err := runCLI(t, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 of 2 links")

	out, _, err = runCLI(t, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 of 2 links")

	out, _, err = runCLI(t, "wipe", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Local records wiped")

	out, _, err = runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No links saved.")
}

func TestCLISyncDisabled(t *testing.T) {
	setupEnv(t)

	_, stderr, err := runCLI(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, stderr, "sync disabled")
}

func TestCLIVersion(t *testing.T) {
	t.Setenv("SAVELATER_STORE", "not-a-store")

	out, _, err := runCLI(t, "version")
	require.NoError(t, err, "version never opens the store")
	assert.Contains(t, out, "savelater dev")
}
