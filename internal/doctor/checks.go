package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/thoreinstein/passmenu/internal/config"
	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/logging"
	"github.com/thoreinstein/passmenu/internal/paths"
	"github.com/thoreinstein/passmenu/internal/upgrade"
)

// FileCheck validates that the config file exists, is readable, and is not
// writable by other users.
type FileCheck struct {
	PermissionFixer
	path string
}

var (
	_ Check = (*FileCheck)(nil)
	_ Fixer = (*FileCheck)(nil)
)

// NewFileCheck creates a file check for path.
func NewFileCheck(path string) *FileCheck {
	return &FileCheck{path: path}
}

// Name returns the unique identifier for this check.
func (c *FileCheck) Name() string { return "config-file" }

// Category returns the grouping for this check.
func (c *FileCheck) Category() string { return "filesystem" }

// Run executes the file diagnostic check.
func (c *FileCheck) Run(_ context.Context) *CheckResult {
	c.setIssues(nil)

	info, err := os.Stat(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		res := result(c, SeverityError, "no config file at "+c.path)
		res.FixHint = "passmenu config init"
		return res
	}
	if err != nil {
		return result(c, SeverityError, fmt.Sprintf("cannot stat %s: %v", c.path, err))
	}
	if info.IsDir() {
		return result(c, SeverityError, c.path+" is a directory")
	}

	f, err := os.Open(c.path)
	if err != nil {
		res := result(c, SeverityError, c.path+" is not readable")
		res.FixHint = fmt.Sprintf("chmod %04o %s", secureFilePerm, c.path)
		return res
	}
	f.Close()

	// Unix permission bits mean nothing on Windows.
	if runtime.GOOS != "windows" {
		c.checkPermissions(info)
	}

	if len(c.issues) == 0 {
		res := result(c, SeverityPass, fmt.Sprintf("%s is readable (mode %s)", c.path, formatOctal(info.Mode())))
		res.Details = map[string]any{"path": c.path}
		return res
	}

	res := result(c, SeverityWarning, c.issues[0].Problem)
	if len(c.issues) > 1 {
		res.Message = fmt.Sprintf("%s (and %d more)", res.Message, len(c.issues)-1)
	}
	res.Fixable = c.CanFix()
	res.FixHint = c.issues[0].FixHint

	problems := make([]map[string]any, 0, len(c.issues))
	for _, issue := range c.issues {
		problems = append(problems, map[string]any{
			"path":        issue.Path,
			"type":        issue.Type,
			"problem":     issue.Problem,
			"permissions": issue.Permissions,
		})
	}
	res.Details = map[string]any{"path": c.path, "issues": problems}
	return res
}

func (c *FileCheck) checkPermissions(info os.FileInfo) {
	var issues []pathIssue

	if info.Mode().Perm()&0o022 != 0 {
		issues = append(issues, pathIssue{
			Path:        c.path,
			Type:        "file",
			Problem:     "config file is writable by other users",
			Permissions: formatOctal(info.Mode()),
			Fixable:     true,
			FixHint:     fmt.Sprintf("chmod %04o %s", secureFilePerm, c.path),
		})
	}

	dir := filepath.Dir(c.path)
	if dirInfo, err := os.Stat(dir); err == nil && dirInfo.Mode().Perm()&0o002 != 0 {
		issues = append(issues, pathIssue{
			Path:        dir,
			Type:        "directory",
			Problem:     "config directory is world-writable",
			Permissions: formatOctal(dirInfo.Mode()),
			Fixable:     true,
			FixHint:     fmt.Sprintf("chmod %04o %s", secureDirPerm, dir),
		})
	}

	c.setIssues(issues)
}

// VersionCheck reports whether the document's schema version is current
// and, if not, whether an upgrade path to the latest version exists.
type VersionCheck struct {
	path  string
	chain *upgrade.Chain
}

var _ Check = (*VersionCheck)(nil)

// NewVersionCheck creates a version check. A nil chain uses the built-in
// upgrade steps.
func NewVersionCheck(path string, chain *upgrade.Chain) *VersionCheck {
	if chain == nil {
		chain = upgrade.NewChain(upgrade.DefaultRegistry(), upgrade.WithLogger(logging.NewDiscard()))
	}
	return &VersionCheck{path: path, chain: chain}
}

// Name returns the unique identifier for this check.
func (c *VersionCheck) Name() string { return "config-version" }

// Category returns the grouping for this check.
func (c *VersionCheck) Category() string { return "schema" }

// Run executes the version diagnostic check.
func (c *VersionCheck) Run(ctx context.Context) *CheckResult {
	doc, _, err := config.ReadDocument(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return result(c, SeverityInfo, "skipped: no config file")
	}
	if err != nil {
		return errorResult(c, err)
	}

	declared, err := config.DetectVersion(doc)
	if err != nil {
		return errorResult(c, err)
	}

	_, report, err := c.chain.Migrate(ctx, declared, doc)
	if err != nil {
		return errorResult(c, err)
	}

	if !report.Upgraded() {
		res := result(c, SeverityPass, "declares the latest version "+declared.String())
		res.Details = map[string]any{"declared": declared.String(), "latest": report.To.String()}
		return res
	}

	steps := make([]string, 0, len(report.Steps))
	for _, s := range report.Steps {
		steps = append(steps, fmt.Sprintf("%s -> %s: %s", s.From, s.To, s.Description))
	}
	res := result(c, SeverityWarning, fmt.Sprintf("declares version %s, latest is %s (%d upgrade step(s))",
		declared, report.To, len(report.Steps)))
	res.FixHint = "passmenu config migrate"
	res.Details = map[string]any{
		"declared": declared.String(),
		"latest":   report.To.String(),
		"steps":    steps,
	}
	return res
}

// ValidationCheck loads the file, upgrading it in memory, and validates the
// bound configuration.
type ValidationCheck struct {
	target *Target
}

var _ Check = (*ValidationCheck)(nil)

// NewValidationCheck creates a validation check for t.
func NewValidationCheck(t *Target) *ValidationCheck {
	return &ValidationCheck{target: t}
}

// Name returns the unique identifier for this check.
func (c *ValidationCheck) Name() string { return "config-valid" }

// Category returns the grouping for this check.
func (c *ValidationCheck) Category() string { return "config" }

// Run executes the validation diagnostic check.
func (c *ValidationCheck) Run(ctx context.Context) *CheckResult {
	res, err := c.target.Load(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return result(c, SeverityInfo, "skipped: no config file")
	}
	if err != nil {
		return errorResult(c, err)
	}

	errs := config.Validate(res.Config)
	if len(errs) == 0 {
		return result(c, SeverityPass, "configuration is valid")
	}

	problems := make([]string, 0, len(errs))
	for _, e := range errs {
		problems = append(problems, e.Error())
	}
	out := result(c, SeverityError, fmt.Sprintf("%d validation problem(s): %s", len(errs), problems[0]))
	out.Details = map[string]any{"problems": problems}
	out.FixHint = "passmenu config edit"
	return out
}

// gpgBinary is the executable looked up inside a configured gpg directory.
var gpgBinary = func() string {
	if runtime.GOOS == "windows" {
		return "gpg.exe"
	}
	return "gpg"
}()

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// GpgCheck validates that the configured gpg executable and GNUPGHOME
// override exist.
type GpgCheck struct {
	target *Target
}

var _ Check = (*GpgCheck)(nil)

// NewGpgCheck creates a gpg check for t.
func NewGpgCheck(t *Target) *GpgCheck {
	return &GpgCheck{target: t}
}

// Name returns the unique identifier for this check.
func (c *GpgCheck) Name() string { return "gpg" }

// Category returns the grouping for this check.
func (c *GpgCheck) Category() string { return "gpg" }

// Run executes the gpg diagnostic check.
func (c *GpgCheck) Run(ctx context.Context) *CheckResult {
	res, err := c.target.Load(ctx)
	if err != nil {
		return result(c, SeverityInfo, "skipped: configuration did not load")
	}
	gpg := res.Config.Gpg

	out := c.checkBinary(gpg.GpgPath)
	if out.Status != SeverityPass || gpg.GnupghomeOverride == "" {
		return out
	}

	home := paths.ExpandHome(gpg.GnupghomeOverride)
	if info, err := os.Stat(home); err != nil || !info.IsDir() {
		warn := result(c, SeverityWarning, "gpg.gnpghome-override "+home+" is not a directory")
		warn.FixHint = "create the directory or clear gpg.gnpghome-override"
		warn.Details = out.Details
		return warn
	}
	return out
}

func (c *GpgCheck) checkBinary(configured string) *CheckResult {
	if configured == "" {
		bin, err := lookPath(gpgBinary)
		if err != nil {
			res := result(c, SeverityWarning, gpgBinary+" not found on PATH")
			res.FixHint = "install GnuPG or set gpg.gpg-path"
			return res
		}
		res := result(c, SeverityPass, "using "+bin+" from PATH")
		res.Details = map[string]any{"gpg": bin}
		return res
	}

	bin := paths.ExpandHome(configured)
	info, err := os.Stat(bin)
	if err != nil {
		res := result(c, SeverityError, "gpg.gpg-path "+bin+" does not exist")
		res.FixHint = "set gpg.gpg-path to the directory containing " + gpgBinary
		return res
	}
	if info.IsDir() {
		bin = filepath.Join(bin, gpgBinary)
		if info, err = os.Stat(bin); err != nil {
			res := result(c, SeverityError, "no "+gpgBinary+" in "+filepath.Dir(bin))
			res.FixHint = "set gpg.gpg-path to the directory containing " + gpgBinary
			return res
		}
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		res := result(c, SeverityError, bin+" is not executable")
		res.FixHint = "chmod +x " + bin
		return res
	}

	res := result(c, SeverityPass, "using "+bin)
	res.Details = map[string]any{"gpg": bin}
	return res
}

// StoreCheck validates that the password store exists and has been
// initialised with a recipient.
type StoreCheck struct {
	target *Target
}

var _ Check = (*StoreCheck)(nil)

// NewStoreCheck creates a password store check for t.
func NewStoreCheck(t *Target) *StoreCheck {
	return &StoreCheck{target: t}
}

// Name returns the unique identifier for this check.
func (c *StoreCheck) Name() string { return "password-store" }

// Category returns the grouping for this check.
func (c *StoreCheck) Category() string { return "password-store" }

// Run executes the password store diagnostic check.
func (c *StoreCheck) Run(ctx context.Context) *CheckResult {
	res, err := c.target.Load(ctx)
	if err != nil {
		return result(c, SeverityInfo, "skipped: configuration did not load")
	}

	store := paths.ExpandHome(res.Config.PasswordStore)
	info, err := os.Stat(store)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		out := result(c, SeverityWarning, "password store "+store+" does not exist")
		out.FixHint = "pass init <gpg-id>"
		return out
	case err != nil:
		return result(c, SeverityError, fmt.Sprintf("cannot stat %s: %v", store, err))
	case !info.IsDir():
		return result(c, SeverityError, "password store "+store+" is not a directory")
	}

	if _, err := os.Stat(filepath.Join(store, ".gpg-id")); err != nil {
		out := result(c, SeverityWarning, "password store "+store+" has no .gpg-id")
		out.FixHint = "pass init <gpg-id>"
		return out
	}

	out := result(c, SeverityPass, "password store at "+store)
	out.Details = map[string]any{"path": store}
	return out
}

// errorResult reports err with its first hint as the fix.
func errorResult(c Check, err error) *CheckResult {
	res := result(c, SeverityError, err.Error())
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		res.FixHint = hints[0]
	}
	return res
}

func formatOctal(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}
