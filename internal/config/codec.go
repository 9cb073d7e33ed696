package config

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/tree"
)

// Format is an on-disk document encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	// ErrUnsupportedFormat indicates a file extension with no codec.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrInvalidDocument indicates the file could not be decoded into a
	// mapping.
	ErrInvalidDocument = errors.New("invalid config document")
)

// FormatFor picks the codec for path from its extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.WithHint(
			errors.Wrapf(ErrUnsupportedFormat, "%s", path),
			"use a .yaml, .yml or .toml file",
		)
	}
}

// Decode parses data into a tree. An empty document yields an empty
// Mapping; a document whose root is not a mapping is an error.
func Decode(format Format, data []byte) (tree.Mapping, error) {
	var raw map[string]any

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "parsing YAML"), ErrInvalidDocument)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "parsing TOML"), ErrInvalidDocument)
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}

	return tree.FromMap(raw), nil
}

// Encode renders doc in the given format. TOML has no null, so null
// leaves are omitted there.
func Encode(format Format, doc tree.Mapping) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc.ToMap()); err != nil {
			return nil, errors.Wrap(err, "encoding YAML")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "encoding YAML")
		}
		return buf.Bytes(), nil
	case FormatTOML:
		data, err := toml.Marshal(dropNulls(doc.ToMap()))
		if err != nil {
			return nil, errors.Wrap(err, "encoding TOML")
		}
		return data, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
}

func dropNulls(m map[string]any) map[string]any {
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			dropNulls(t)
		}
	}
	return m
}
