package config

import (
	"strconv"
	"strings"

	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/schema"
	"github.com/thoreinstein/passmenu/internal/tree"
)

// VersionKey is the top-level key declaring a document's schema revision.
const VersionKey = "config-version"

// ErrVersionMarker indicates config-version is present but is neither a
// string nor a number.
var ErrVersionMarker = errors.New("invalid config-version")

// DetectVersion reads the schema revision declared by doc. A document
// without the marker predates it and is treated as schema.Oldest.
//
// Unquoted YAML numbers arrive as floats, so 1.0 reads as 1.0 but 1.10
// reads as 1.1; the default document quotes the marker.
func DetectVersion(doc tree.Mapping) (schema.Version, error) {
	node, ok := doc[VersionKey]
	if !ok {
		return schema.Oldest, nil
	}

	s, ok := node.(tree.Scalar)
	if !ok {
		return schema.Version{}, markerError("a mapping")
	}

	var text string
	switch v := s.Interface().(type) {
	case string:
		text = v
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(text, ".") {
			text += ".0"
		}
	case int:
		text = strconv.Itoa(v) + ".0"
	case int64:
		text = strconv.FormatInt(v, 10) + ".0"
	case uint64:
		text = strconv.FormatUint(v, 10) + ".0"
	case nil:
		return schema.Version{}, markerError("empty")
	default:
		return schema.Version{}, markerError("a " + typeName(v))
	}

	version, err := schema.Parse(text)
	if err != nil {
		return schema.Version{}, errors.WithHint(
			errors.Wrapf(err, "reading %s", VersionKey),
			`write it as "major.minor", for example "1.0"`,
		)
	}
	return version, nil
}

func markerError(what string) error {
	return errors.WithHintf(
		errors.Wrapf(ErrVersionMarker, "%s is %s", VersionKey, what),
		"set %s to a quoted version such as %q, or remove it to treat the file as %s",
		VersionKey, schema.Latest.String(), schema.Oldest,
	)
}

func typeName(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case []any:
		return "list"
	default:
		return "unsupported value"
	}
}

// stampVersion records v as doc's declared revision.
func stampVersion(doc tree.Mapping, v schema.Version) {
	doc[VersionKey] = tree.NewScalar(v.String())
}
