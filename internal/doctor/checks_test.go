package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/passmenu/internal/config"
	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/logging"
)

const legacyYAML = `gpg-path: /usr/local/bin
pinentry-fix: true
password-store: ~/secrets
`

// env holds a gpg directory and a password store for a config to point at.
type env struct {
	dir   string
	gpg   string
	store string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()

	gpgDir := filepath.Join(dir, "bin")
	require.NoError(t, os.Mkdir(gpgDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(gpgDir, gpgBinary), []byte("#!/bin/sh\n"), 0o700))

	store := filepath.Join(dir, "store")
	require.NoError(t, os.Mkdir(store, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(store, ".gpg-id"), []byte("me@example.com\n"), 0o600))

	return env{dir: dir, gpg: gpgDir, store: store}
}

func (e env) config(t *testing.T, extra string) string {
	t.Helper()
	path := filepath.Join(e.dir, "config.yaml")
	doc := fmt.Sprintf("config-version: \"1.0\"\npassword-store: %s\ngpg:\n  gpg-path: %s\n%s", e.store, e.gpg, extra)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func newTestTarget(t *testing.T, path string) *Target {
	t.Helper()
	return NewTarget(path, config.WithEnv(false), config.WithLogger(logging.ForTest(t)))
}

func TestStandard_HealthyConfig(t *testing.T) {
	e := newEnv(t)
	path := e.config(t, "")

	report := Standard(newTestTarget(t, path)).Run(context.Background())

	for _, res := range report.Results {
		assert.Equal(t, SeverityPass, res.Status, "%s: %s", res.Name, res.Message)
	}
	assert.Equal(t, Summary{Passed: 5}, report.Summary)
}

func TestStandard_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	report := Standard(newTestTarget(t, path)).Run(context.Background())

	assert.Equal(t, Summary{Info: 4, Errors: 1}, report.Summary)
	assert.Equal(t, "passmenu config init", report.Results[0].FixHint)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "doctor must not create the file")
}

func TestTarget_LoadsOnce(t *testing.T) {
	e := newEnv(t)
	path := e.config(t, "")
	target := newTestTarget(t, path)

	first, err := target.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	second, err := target.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, path, target.Path())
}

func TestFileCheck(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on Windows")
	}

	t.Run("directory", func(t *testing.T) {
		res := NewFileCheck(t.TempDir()).Run(context.Background())
		assert.Equal(t, SeverityError, res.Status)
		assert.Contains(t, res.Message, "is a directory")
	})

	t.Run("writable by others is fixable", func(t *testing.T) {
		e := newEnv(t)
		path := e.config(t, "")
		require.NoError(t, os.Chmod(path, 0o666))

		check := NewFileCheck(path)
		res := check.Run(context.Background())
		assert.Equal(t, SeverityWarning, res.Status)
		assert.True(t, res.Fixable)
		assert.Equal(t, "chmod 0600 "+path, res.FixHint)
		require.True(t, check.CanFix())

		fixed := check.Fix()
		require.Len(t, fixed, 1)
		assert.True(t, fixed[0].Fixed)

		res = check.Run(context.Background())
		assert.Equal(t, SeverityPass, res.Status, res.Message)
		assert.False(t, check.CanFix())
	})

	t.Run("world writable directory", func(t *testing.T) {
		e := newEnv(t)
		path := e.config(t, "")
		require.NoError(t, os.Chmod(path, 0o622))
		require.NoError(t, os.Chmod(e.dir, 0o777))
		t.Cleanup(func() { _ = os.Chmod(e.dir, 0o700) })

		check := NewFileCheck(path)
		res := check.Run(context.Background())
		assert.Equal(t, SeverityWarning, res.Status)
		assert.Contains(t, res.Message, "and 1 more")
		assert.Equal(t, 2, check.CountFixable())
	})
}

func TestVersionCheck(t *testing.T) {
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("legacy document has an upgrade", func(t *testing.T) {
		res := NewVersionCheck(write(t, legacyYAML), nil).Run(context.Background())
		assert.Equal(t, SeverityWarning, res.Status)
		assert.Contains(t, res.Message, "declares version 0.1, latest is 1.0")
		assert.Equal(t, "passmenu config migrate", res.FixHint)
		assert.Len(t, res.Details["steps"], 1)
	})

	t.Run("latest document", func(t *testing.T) {
		res := NewVersionCheck(write(t, "config-version: \"1.0\"\n"), nil).Run(context.Background())
		assert.Equal(t, SeverityPass, res.Status)
	})

	t.Run("newer than supported", func(t *testing.T) {
		res := NewVersionCheck(write(t, "config-version: \"9.0\"\n"), nil).Run(context.Background())
		assert.Equal(t, SeverityError, res.Status)
		assert.Contains(t, res.FixHint, "upgrade passmenu")
	})

	t.Run("bad marker", func(t *testing.T) {
		res := NewVersionCheck(write(t, "config-version: [1, 0]\n"), nil).Run(context.Background())
		assert.Equal(t, SeverityError, res.Status)
		assert.NotEmpty(t, res.FixHint)
	})

	t.Run("missing file is skipped", func(t *testing.T) {
		res := NewVersionCheck(filepath.Join(t.TempDir(), "config.yaml"), nil).Run(context.Background())
		assert.Equal(t, SeverityInfo, res.Status)
	})
}

func TestValidationCheck(t *testing.T) {
	e := newEnv(t)

	t.Run("invalid values", func(t *testing.T) {
		path := e.config(t, "clipboard-timeout: -1\n")

		res := NewValidationCheck(newTestTarget(t, path)).Run(context.Background())
		assert.Equal(t, SeverityError, res.Status)
		assert.Contains(t, res.Message, "clipboard-timeout")
		assert.Len(t, res.Details["problems"], 1)
	})

	t.Run("legacy document validates after upgrade", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(legacyYAML), 0o600))

		res := NewValidationCheck(newTestTarget(t, path)).Run(context.Background())
		assert.Equal(t, SeverityPass, res.Status, res.Message)
	})

	t.Run("unloadable document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("gpg: oops\ngpg-path: /bin\n"), 0o600))

		target := newTestTarget(t, path)
		res := NewValidationCheck(target).Run(context.Background())
		assert.Equal(t, SeverityError, res.Status)

		// Checks depending on the loaded config are skipped.
		assert.Equal(t, SeverityInfo, NewGpgCheck(target).Run(context.Background()).Status)
		assert.Equal(t, SeverityInfo, NewStoreCheck(target).Run(context.Background()).Status)
	})
}

func TestGpgCheck(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not meaningful on Windows")
	}

	t.Run("directory without gpg", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, os.Remove(filepath.Join(e.gpg, gpgBinary)))
		res := NewGpgCheck(newTestTarget(t, e.config(t, ""))).Run(context.Background())
		assert.Equal(t, SeverityError, res.Status)
		assert.Contains(t, res.Message, "no gpg in")
	})

	t.Run("not executable", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, os.Chmod(filepath.Join(e.gpg, gpgBinary), 0o600))
		res := NewGpgCheck(newTestTarget(t, e.config(t, ""))).Run(context.Background())
		assert.Equal(t, SeverityError, res.Status)
		assert.Contains(t, res.Message, "not executable")
	})

	t.Run("path to the binary itself", func(t *testing.T) {
		e := newEnv(t)
		e.gpg = filepath.Join(e.gpg, gpgBinary)
		res := NewGpgCheck(newTestTarget(t, e.config(t, ""))).Run(context.Background())
		assert.Equal(t, SeverityPass, res.Status, res.Message)
		assert.Equal(t, e.gpg, res.Details["gpg"])
	})

	t.Run("missing path", func(t *testing.T) {
		e := newEnv(t)
		e.gpg = filepath.Join(e.dir, "nowhere")
		res := NewGpgCheck(newTestTarget(t, e.config(t, ""))).Run(context.Background())
		assert.Equal(t, SeverityError, res.Status)
		assert.Contains(t, res.Message, "does not exist")
	})

	t.Run("missing gnupghome override", func(t *testing.T) {
		e := newEnv(t)
		path := e.config(t, "  gnpghome-override: "+filepath.Join(e.dir, "gnupg")+"\n")
		res := NewGpgCheck(newTestTarget(t, path)).Run(context.Background())
		assert.Equal(t, SeverityWarning, res.Status)
		assert.Contains(t, res.Message, "gnpghome-override")
	})

	t.Run("empty path searches PATH", func(t *testing.T) {
		e := newEnv(t)
		e.gpg = `""`

		orig := lookPath
		t.Cleanup(func() { lookPath = orig })

		lookPath = func(string) (string, error) { return "/opt/gnupg/bin/gpg", nil }
		res := NewGpgCheck(newTestTarget(t, e.config(t, ""))).Run(context.Background())
		assert.Equal(t, SeverityPass, res.Status)
		assert.Contains(t, res.Message, "/opt/gnupg/bin/gpg")

		lookPath = func(string) (string, error) { return "", errors.New("not found") }
		res = NewGpgCheck(newTestTarget(t, e.config(t, ""))).Run(context.Background())
		assert.Equal(t, SeverityWarning, res.Status)
		assert.Equal(t, "install GnuPG or set gpg.gpg-path", res.FixHint)
	})
}

func TestStoreCheck(t *testing.T) {
	t.Run("missing store", func(t *testing.T) {
		e := newEnv(t)
		e.store = filepath.Join(e.dir, "elsewhere")
		res := NewStoreCheck(newTestTarget(t, e.config(t, ""))).Run(context.Background())
		assert.Equal(t, SeverityWarning, res.Status)
		assert.Equal(t, "pass init <gpg-id>", res.FixHint)
	})

	t.Run("not initialised", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, os.Remove(filepath.Join(e.store, ".gpg-id")))
		res := NewStoreCheck(newTestTarget(t, e.config(t, ""))).Run(context.Background())
		assert.Equal(t, SeverityWarning, res.Status)
		assert.Contains(t, res.Message, ".gpg-id")
	})

	t.Run("store is a file", func(t *testing.T) {
		e := newEnv(t)
		e.store = filepath.Join(e.gpg, gpgBinary)
		res := NewStoreCheck(newTestTarget(t, e.config(t, ""))).Run(context.Background())
		assert.Equal(t, SeverityError, res.Status)
	})
}
