package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GO_ENV", "test")
	t.Setenv("LOG_DIR", t.TempDir())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestResetNeedsConfirmation(t *testing.T) {
	_, err := run(t, "reset")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestSuperAdminRequiresFlags(t *testing.T) {
	_, err := run(t, "create-superadmin", "--email", "root@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestSeedMissingFile(t *testing.T) {
	_, err := run(t, "seed", "--file", "does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read seed file")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "reset", "seed", "create-superadmin"} {
		assert.True(t, names[want], want)
	}
}
