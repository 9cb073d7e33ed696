package doctor

import (
	"fmt"
	"os"

	"github.com/thoreinstein/passmenu/internal/errors"
)

// Fixer is an optional interface for checks that can repair what they find.
// CanFix and Fix must be called after Run.
type Fixer interface {
	CanFix() bool
	Fix() []FixResult
}

// FixResult describes the outcome of an attempted fix operation.
type FixResult struct {
	Path        string `json:"path"`
	Fixed       bool   `json:"fixed"`
	Description string `json:"description"`
	Error       error  `json:"-"`
}

const (
	// secureFilePerm matches the mode passmenu writes config files with.
	secureFilePerm os.FileMode = 0o600

	secureDirPerm os.FileMode = 0o700
)

// pathIssue represents a single path or permission problem.
type pathIssue struct {
	Path        string
	Type        string // "file" or "directory"
	Problem     string
	Permissions string
	Fixable     bool
	FixHint     string
}

// PermissionFixer tightens file and directory modes found too permissive.
type PermissionFixer struct {
	issues []pathIssue
}

// CanFix returns true if there are any fixable permission issues.
func (f *PermissionFixer) CanFix() bool {
	return f.CountFixable() > 0
}

// CountFixable returns the number of fixable issues.
func (f *PermissionFixer) CountFixable() int {
	n := 0
	for _, issue := range f.issues {
		if issue.Fixable {
			n++
		}
	}
	return n
}

// Fix applies every fixable issue and reports each attempt.
func (f *PermissionFixer) Fix() []FixResult {
	results := make([]FixResult, 0, f.CountFixable())
	for _, issue := range f.issues {
		if issue.Fixable {
			results = append(results, f.fixIssue(issue))
		}
	}
	return results
}

func (f *PermissionFixer) fixIssue(issue pathIssue) FixResult {
	res := FixResult{Path: issue.Path}

	var target os.FileMode
	switch issue.Type {
	case "file":
		target = secureFilePerm
	case "directory":
		target = secureDirPerm
	default:
		res.Description = "unknown type: " + issue.Type
		res.Error = errors.Newf("cannot fix unknown type: %s", issue.Type)
		return res
	}

	if err := os.Chmod(issue.Path, target); err != nil {
		res.Description = fmt.Sprintf("failed to chmod %04o: %v", target, err)
		res.Error = errors.Wrapf(err, "chmod %04o %s", target, issue.Path)
		return res
	}

	res.Fixed = true
	res.Description = fmt.Sprintf("chmod %04o", target)
	return res
}

func (f *PermissionFixer) setIssues(issues []pathIssue) {
	f.issues = issues
}
