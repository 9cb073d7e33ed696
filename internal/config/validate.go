package config

import (
	"path/filepath"
	"strings"

	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/schema"
)

// Validation errors for configuration fields.
var (
	// ErrMissingField indicates a required field is empty.
	ErrMissingField = errors.New("required field is empty")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNegative indicates a count or duration below zero.
	ErrNegative = errors.New("must not be negative")

	// ErrStaleVersion indicates a Config bound from a document that was not
	// brought to the latest schema.
	ErrStaleVersion = errors.New("config is not at the latest version")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	v, err := schema.Parse(cfg.ConfigVersion)
	switch {
	case err != nil:
		errs = append(errs, &FieldError{Field: VersionKey, Value: cfg.ConfigVersion, Err: err})
	case !v.IsLatest():
		errs = append(errs, &FieldError{Field: VersionKey, Value: cfg.ConfigVersion, Err: ErrStaleVersion})
	}

	if cfg.PasswordStore == "" {
		errs = append(errs, &FieldError{Field: "password-store", Err: ErrMissingField})
	} else if err := validatePath(cfg.PasswordStore); err != nil {
		errs = append(errs, &FieldError{Field: "password-store", Value: cfg.PasswordStore, Err: err})
	}

	if cfg.ClipboardTimeout < 0 {
		errs = append(errs, &FieldError{Field: "clipboard-timeout", Err: ErrNegative})
	}

	for field, value := range map[string]string{
		"gpg.gpg-path":          cfg.Gpg.GpgPath,
		"gpg.gnpghome-override": cfg.Gpg.GnupghomeOverride,
	} {
		if err := validatePath(value); err != nil {
			errs = append(errs, &FieldError{Field: field, Value: value, Err: err})
		}
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// FieldError is a validation failure for one dotted key.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return e.Field + ": " + e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
