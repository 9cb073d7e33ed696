package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/passmenu/internal/backup"
	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/logging"
	"github.com/thoreinstein/passmenu/internal/schema"
	"github.com/thoreinstein/passmenu/internal/tree"
	"github.com/thoreinstein/passmenu/internal/upgrade"
)

const legacyYAML = `gpg-path: /usr/local/bin
gnupghome-override: /home/user/.gnupg-alt
pinentry-fix: true
preload-gpg-agent: false
password-store: ~/secrets
`

const latestYAML = `config-version: "1.0"
password-store: ~/secrets
clipboard-timeout: 10
gpg:
  gpg-path: /usr/bin
  gpg-agent:
    preload: false
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestLoader(t *testing.T, opts ...Option) *Loader {
	t.Helper()
	return NewLoader(append([]Option{WithLogger(logging.ForTest(t)), WithEnv(false)}, opts...)...)
}

func TestLoad_MissingFileCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	res, err := newTestLoader(t).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, StatusNewFileCreated, res.Status)
	assert.Equal(t, schema.Latest, res.Version)
	assert.False(t, res.Report.Upgraded())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultDocument(), data)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	def, err := Default()
	require.NoError(t, err)
	assert.Equal(t, def, res.Config)
}

func TestLoad_MissingFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	res, err := newTestLoader(t).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, StatusNewFileCreated, res.Status)
	assert.True(t, res.Config.Gpg.GpgAgent.Preload)

	again, err := newTestLoader(t).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, StatusLoaded, again.Status)
	assert.Equal(t, res.Config, again.Config)
}

func TestLoad_MissingFileNotCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	_, err := newTestLoader(t, WithCreateMissing(false)).Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Contains(t, errors.GetAllHints(err), "Run: passmenu config init")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteDefault_Fails(t *testing.T) {
	// A regular file where a parent directory should be.
	parent := writeFile(t, "not-a-dir", "")

	_, err := WriteDefault(filepath.Join(parent, "sub", "config.yaml"), FormatYAML)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCreateDefault))
}

func TestLoad_LegacyDocumentIsUpgraded(t *testing.T) {
	path := writeFile(t, "config.yaml", legacyYAML)

	res, err := newTestLoader(t).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, StatusUpgraded, res.Status)
	assert.Equal(t, schema.V0_1, res.Version)
	require.Len(t, res.Report.Steps, 1)
	assert.Equal(t, schema.Latest, res.Report.To)

	cfg := res.Config
	assert.Equal(t, schema.Latest.String(), cfg.ConfigVersion)
	assert.Equal(t, "/usr/local/bin", cfg.Gpg.GpgPath)
	assert.Equal(t, "/home/user/.gnupg-alt", cfg.Gpg.GnupghomeOverride)
	assert.True(t, cfg.Gpg.PinentryFix)
	assert.False(t, cfg.Gpg.GpgAgent.Preload)
	assert.Equal(t, "~/secrets", cfg.PasswordStore)
	assert.Equal(t, 30, cfg.ClipboardTimeout, "missing keys take defaults")

	v, ok, err := res.Tree.Get(VersionKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1.0", v.(tree.Scalar).Interface())
	_, ok, _ = res.Tree.Get("gpg-path")
	assert.False(t, ok)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacyYAML, string(onDisk), "load must not rewrite the file")
}

func TestLoad_LegacyTOML(t *testing.T) {
	path := writeFile(t, "config.toml", "gpg-path = \"/opt/gpg\"\npreload-gpg-agent = true\n")

	res, err := newTestLoader(t).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, StatusUpgraded, res.Status)
	assert.Equal(t, "/opt/gpg", res.Config.Gpg.GpgPath)
	assert.True(t, res.Config.Gpg.GpgAgent.Preload)
}

func TestLoad_LatestDocument(t *testing.T) {
	path := writeFile(t, "config.yaml", latestYAML)

	res, err := newTestLoader(t).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, StatusLoaded, res.Status)
	assert.Empty(t, res.Report.Steps)
	assert.Equal(t, 10, res.Config.ClipboardTimeout)
	assert.Equal(t, "/usr/bin", res.Config.Gpg.GpgPath)
	assert.False(t, res.Config.Gpg.GpgAgent.Preload)
	assert.True(t, res.Config.FirstLineOnly, "default applies")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{name: "newer version", file: "config.yaml", content: "config-version: \"2.0\"\n", wantErr: upgrade.ErrNoUpgradePath},
		{name: "bad marker", file: "config.yaml", content: "config-version: [1]\n", wantErr: ErrVersionMarker},
		{name: "not yaml", file: "config.yaml", content: "key: [unclosed\n", wantErr: ErrInvalidDocument},
		{name: "unsupported extension", file: "config.ini", content: "a=b\n", wantErr: ErrUnsupportedFormat},
		{name: "scalar in the way", file: "config.yaml", content: "gpg: oops\ngpg-path: gpg\n", wantErr: tree.ErrPathAlreadySet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			res, err := newTestLoader(t).Load(context.Background(), path)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", latestYAML)
	t.Setenv("PASSMENU_GPG_GPG_PATH", "/opt/gpg/bin")
	t.Setenv("PASSMENU_CLIPBOARD_TIMEOUT", "5")

	res, err := newTestLoader(t, WithEnv(true)).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/gpg/bin", res.Config.Gpg.GpgPath)
	assert.Equal(t, 5, res.Config.ClipboardTimeout)

	v, _, err := res.Tree.Get("gpg.gpg-path")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin", v.(tree.Scalar).Interface(), "overrides never reach the tree")
}

func TestLoad_DefaultLocation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PASSMENU_CONFIG_DIR", dir)

	res, err := newTestLoader(t).Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), res.Path)
	assert.Equal(t, StatusNewFileCreated, res.Status)
}

func TestLoad_CustomChain(t *testing.T) {
	reg, err := upgrade.NewRegistry(upgrade.MoveStep(schema.V0_1, schema.V1_0, "rename store",
		upgrade.Move{From: "store", To: "password-store"}))
	require.NoError(t, err)

	path := writeFile(t, "config.yaml", "store: /srv/pass\n")
	res, err := newTestLoader(t, WithChain(upgrade.NewChain(reg))).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/pass", res.Config.PasswordStore)
}

func TestSave_MigratedDocument(t *testing.T) {
	path := writeFile(t, "config.yaml", legacyYAML)
	loader := newTestLoader(t)
	mgr := backup.NewManager(backup.WithBackupDir(t.TempDir()))

	res, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	manifest, err := loader.Save(context.Background(), res, backup.NewSession(mgr))
	require.NoError(t, err)
	require.NotNil(t, manifest)
	assert.Equal(t, "0.1", manifest.SchemaVersion)

	again, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, StatusLoaded, again.Status)
	assert.Equal(t, res.Config, again.Config)
	assert.True(t, again.Tree.Equal(res.Tree))

	_, err = mgr.Restore(manifest.ID)
	require.NoError(t, err)
	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacyYAML, string(restored))
}

func TestSave_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", "gpg-path = \"/opt/gpg\"\ngnupghome-override = \"/g\"\n")
	loader := newTestLoader(t)

	res, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	manifest, err := loader.Save(context.Background(), res, nil)
	require.NoError(t, err)
	assert.Nil(t, manifest)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[gpg]")

	again, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, StatusLoaded, again.Status)
	assert.Equal(t, "/g", again.Config.Gpg.GnupghomeOverride)
}

func TestSave_KeepsPermissions(t *testing.T) {
	path := writeFile(t, "config.yaml", legacyYAML)
	require.NoError(t, os.Chmod(path, 0o640))
	loader := newTestLoader(t)

	res, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	_, err = loader.Save(context.Background(), res, nil)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

type failingBackuper struct{}

func (failingBackuper) EnsureBackedUp(string, string) (*backup.Manifest, error) {
	return nil, errors.New("disk full")
}

func TestSave_BackupFailureLeavesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", legacyYAML)
	loader := newTestLoader(t)

	res, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	_, err = loader.Save(context.Background(), res, failingBackuper{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacyYAML, string(data))
}

func TestSave_Nothing(t *testing.T) {
	_, err := newTestLoader(t).Save(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestLoadStatus_String(t *testing.T) {
	assert.Equal(t, "loaded", StatusLoaded.String())
	assert.Equal(t, "created", StatusNewFileCreated.String())
	assert.Equal(t, "upgraded", StatusUpgraded.String())
	assert.Equal(t, "unknown", LoadStatus(42).String())
}
