package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "slot-swapper", cmd.Use)

	cfgFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfgFlag)
	assert.Equal(t, "c", cfgFlag.Shorthand)
	assert.Equal(t, "", cfgFlag.DefValue)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "migrate", "demo"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	port := serveCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "0", port.DefValue)
	assert.NotNil(t, serveCmd.Flags().Lookup("seed"))
}

func TestMigrateMemoryIsNoop(t *testing.T) {
	clearStorageEnv(t)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to migrate")
}

func TestDemoSeedsSQLiteOnce(t *testing.T) {
	clearStorageEnv(t)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  driver: sqlite\n  sqlite_path: " + filepath.Join(dir, "demo.db") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o600))

	out, err := execute(t, "--config", cfgPath, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 3 users, 4 events (sqlite)")

	out, err = execute(t, "--config", cfgPath, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 0 users, 0 events (sqlite)")

	out, err = execute(t, "--config", cfgPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema up to date")
}

func TestInvalidConfigFails(t *testing.T) {
	clearStorageEnv(t)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  driver: mongo\n"), 0o600))

	_, err := execute(t, "--config", cfgPath, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func clearStorageEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DB_DSN", "SQLITE_PATH", "STORAGE_DRIVER", "PORT", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	t.Setenv("LOG_LEVEL", "error")
}
