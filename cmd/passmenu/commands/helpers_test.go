package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const legacyYAML = `gpg-path: /usr/local/bin
gnupghome-override: /home/user/.gnupg-alt
pinentry-fix: true
preload-gpg-agent: false
password-store: ~/secrets
`

// resetFlags restores every flag variable to its default; cobra only
// assigns flags that appear on the command line.
func resetFlags() {
	configPath = ""
	verbosity = 0
	quiet = false
	logFormat = "text"
	logFile = ""
	showPaths = false
	showEffective = false
	showFormat = ""
	migrateDryRun = false
	migrateNoBackup = false
	initForce = false
	backupsJSON = false
	doctorJSON = false
	doctorAll = false
	doctorFix = false
}

// execute runs the root command with args and returns what it wrote.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// configDir points the default config location at a fresh directory and
// returns the config file path inside it.
func configDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PASSMENU_CONFIG_DIR", dir)
	return filepath.Join(dir, "config.yaml")
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
