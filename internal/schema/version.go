// Package schema identifies the structural revision of a configuration document.
package schema

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"

	"github.com/thoreinstein/passmenu/internal/errors"
)

// ErrMalformedVersion indicates a version marker has no major.minor pair.
var ErrMalformedVersion = errors.New("malformed config version")

// Version is a (major, minor) schema revision. Versions are values: compare
// them with == and use them as map keys.
type Version struct {
	Major uint64
	Minor uint64
}

// Known schema revisions.
var (
	// V0_1 is the flat layout used before the gpg settings were grouped.
	// Documents without a version marker are treated as V0_1.
	V0_1 = Version{Major: 0, Minor: 1}

	// V1_0 groups the gpg settings under a "gpg" mapping.
	V1_0 = Version{Major: 1, Minor: 0}
)

// Latest is the revision the application binds against. Bump it together
// with registering the upgrade step that produces it.
var Latest = V1_0

// Oldest is the revision assumed when a document declares none.
var Oldest = V0_1

// Known returns every revision this build understands, oldest first.
func Known() []Version {
	return []Version{V0_1, V1_0}
}

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)`)

// Parse reads the first major.minor pair found in s, so "1.0-draft" and
// "v1.0" both parse as 1.0.
func Parse(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, errors.Wrapf(ErrMalformedVersion, "%q", s)
	}

	major, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return Version{}, errors.Wrapf(ErrMalformedVersion, "major component of %q", s)
	}
	minor, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return Version{}, errors.Wrapf(ErrMalformedVersion, "minor component of %q", s)
	}

	return Version{Major: major, Minor: minor}, nil
}

// MustParse is like Parse but panics on error. It is intended for
// package-level declarations.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsLatest reports whether v is the designated latest revision.
func (v Version) IsLatest() bool {
	return v == Latest
}

// Compare returns -1, 0 or 1 as v is older than, equal to, or newer than other.
func (v Version) Compare(other Version) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}
	return cmp.Compare(v.Minor, other.Minor)
}

// String renders v as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
