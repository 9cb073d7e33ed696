package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/passmenu/internal/config"
	"github.com/thoreinstein/passmenu/internal/doctor"
	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/logging"
)

var (
	doctorJSON bool
	doctorAll  bool
	doctorFix  bool
)

func init() {
	configDoctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output results as JSON")
	configDoctorCmd.Flags().BoolVar(&doctorAll, "all", false, "show passing checks too")
	configDoctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "repair fixable problems such as loose file permissions")
	configCmd.AddCommand(configDoctorCmd)
}

var configDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration issues",
	Long: `Run diagnostic checks on the configuration document and the gpg
installation and password store it points at.

The document is loaded and upgraded in memory only; nothing is written
unless --fix is given.

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Args: cobra.NoArgs,
	RunE: runConfigDoctor,
}

// errDoctorWarnings is a sentinel error for exit code 1.
var errDoctorWarnings = errors.New("doctor found warnings")

// errDoctorErrors is a sentinel error for exit code 2.
var errDoctorErrors = errors.New("doctor found errors")

func runConfigDoctor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	target := doctor.NewTarget(configPath, config.WithLogger(logging.FromContext(ctx)))
	runner := doctor.Standard(target)
	report := runner.Run(ctx)

	if doctorFix {
		if fixDoctorIssues(w, runner) {
			report = runner.Run(ctx)
		}
	}

	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
	} else if !quiet {
		printDoctorReport(w, report)
	}

	switch {
	case report.HasErrors():
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	case report.HasWarnings():
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

// fixDoctorIssues applies every available fix and reports whether any ran.
func fixDoctorIssues(w io.Writer, runner *doctor.Runner) bool {
	ran := false
	for _, check := range runner.Checks() {
		fixer, ok := check.(doctor.Fixer)
		if !ok || !fixer.CanFix() {
			continue
		}
		for _, res := range fixer.Fix() {
			ran = true
			if doctorJSON || quiet {
				continue
			}
			if res.Fixed {
				okLabel.Fprint(w, "fixed ")
			} else {
				errLabel.Fprint(w, "not fixed ")
			}
			fmt.Fprintf(w, "%s: %s\n", res.Path, res.Description)
		}
	}
	return ran
}

func printDoctorReport(w io.Writer, report *doctor.Report) {
	shown := false
	for _, res := range report.Results {
		if !doctorAll && res.Status != doctor.SeverityError && res.Status != doctor.SeverityWarning {
			continue
		}
		shown = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(res.Status), res.Category, res.Name, res.Message)
		if res.FixHint != "" && res.Status >= doctor.SeverityWarning {
			hintLabel.Fprint(w, "  hint: ")
			fmt.Fprintln(w, res.FixHint)
		}
	}
	if shown {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return okLabel.Sprint("✓")
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return hintLabel.Sprint("⚠")
	case doctor.SeverityError:
		return errLabel.Sprint("✗")
	default:
		return "?"
	}
}
