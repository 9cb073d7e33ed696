package config

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/logging"
	"github.com/thoreinstein/passmenu/internal/paths"
	"github.com/thoreinstein/passmenu/internal/schema"
	"github.com/thoreinstein/passmenu/internal/tree"
	"github.com/thoreinstein/passmenu/internal/upgrade"
	"github.com/thoreinstein/passmenu/pkg/fileutil"
)

// ErrCreateDefault indicates the default document could not be written
// where a missing document was expected.
var ErrCreateDefault = errors.New("creating default config")

// LoadStatus reports what Load had to do to produce a Config.
type LoadStatus int

const (
	// StatusLoaded means the document was already at the latest version.
	StatusLoaded LoadStatus = iota
	// StatusNewFileCreated means no document existed and the default was
	// written in its place.
	StatusNewFileCreated
	// StatusUpgraded means the document was migrated in memory. The file
	// on disk is unchanged until it is saved.
	StatusUpgraded
)

func (s LoadStatus) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusNewFileCreated:
		return "created"
	case StatusUpgraded:
		return "upgraded"
	default:
		return "unknown"
	}
}

// Result is a loaded document.
type Result struct {
	Config *Config
	Status LoadStatus

	// Path is the file the document was read from.
	Path   string
	Format Format

	// Version is the revision the file declared (or was assumed to have).
	Version schema.Version

	// Tree is the migrated document, stamped with its new config-version.
	// It holds file values only: no defaults or environment overrides.
	Tree tree.Mapping

	Report upgrade.Report
}

// Loader reads configuration documents.
type Loader struct {
	chain         *upgrade.Chain
	logger        *slog.Logger
	createMissing bool
	env           bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithChain replaces the upgrade chain. Defaults to the built-in registry.
func WithChain(c *upgrade.Chain) Option {
	return func(l *Loader) {
		l.chain = c
	}
}

// WithLogger sets the logger. Without it the logger in the Load context is
// used.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithCreateMissing controls whether a missing document is replaced by the
// default one (true, the default) or reported as ErrNotFound.
func WithCreateMissing(create bool) Option {
	return func(l *Loader) {
		l.createMissing = create
	}
}

// WithEnv controls whether PASSMENU_* environment variables override file
// values. Enabled by default.
func WithEnv(env bool) Option {
	return func(l *Loader) {
		l.env = env
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		createMissing: true,
		env:           true,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.chain == nil {
		l.chain = upgrade.NewChain(upgrade.DefaultRegistry(), upgrade.WithLogger(l.logger))
	}
	return l
}

func (l *Loader) log(ctx context.Context) *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return logging.FromContext(ctx)
}

// Load reads the document at path, or the default location when path is
// empty, and brings it to the latest schema.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	logger := l.log(ctx)
	path = paths.Resolve(path)

	res := &Result{Path: path, Status: StatusLoaded}

	doc, format, err := ReadDocument(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && l.createMissing:
		logger.Info("no config file, creating default", "path", path)
		data, werr := WriteDefault(path, format)
		if werr != nil {
			return nil, werr
		}
		if doc, err = Decode(format, data); err != nil {
			return nil, errors.Wrap(err, "decoding default config")
		}
		res.Status = StatusNewFileCreated
	case err != nil:
		return nil, err
	}
	res.Format = format

	res.Version, err = DetectVersion(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "detecting version of %s", path)
	}
	logger.Debug("detected config version", "path", path, "version", res.Version.String())

	migrated, report, err := l.chain.Migrate(ctx, res.Version, doc)
	if err != nil {
		return nil, errors.Wrapf(err, "upgrading %s", path)
	}
	res.Report = report

	if report.Upgraded() {
		logger.Info("config upgraded in memory",
			"path", path,
			"from", report.From.String(),
			"to", report.To.String(),
			"steps", len(report.Steps),
		)
		if res.Status == StatusLoaded {
			res.Status = StatusUpgraded
		}
	}
	stampVersion(migrated, report.To)
	res.Tree = migrated

	res.Config, err = Bind(migrated, l.env)
	if err != nil {
		return nil, errors.Wrapf(err, "binding %s", path)
	}

	return res, nil
}

// ReadDocument reads and decodes the file at path without migrating it.
// The format is returned even when the file is missing; a missing file
// yields an error matching both fs.ErrNotExist and errors.ErrNotFound.
func ReadDocument(path string) (tree.Mapping, Format, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, "", err
	}

	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, format, errors.Mark(
				errors.WithHint(errors.Wrap(err, "config file not found"), "Run: passmenu config init"),
				errors.ErrNotFound,
			)
		}
		return nil, format, errors.Wrap(err, "reading config")
	}

	doc, err := Decode(format, data)
	if err != nil {
		return nil, format, errors.Wrapf(err, "decoding %s", path)
	}
	return doc, format, nil
}

// Load reads a document with a default Loader.
func Load(ctx context.Context, path string) (*Result, error) {
	return NewLoader().Load(ctx, path)
}

// WriteDefault writes the default document to path in the given format,
// creating parent directories, and returns the bytes written. An existing
// file is overwritten.
func WriteDefault(path string, format Format) ([]byte, error) {
	data := DefaultDocument()
	if format != FormatYAML {
		doc, err := defaultTree()
		if err != nil {
			return nil, errors.Wrap(err, "decoding embedded default config")
		}
		if data, err = Encode(format, doc); err != nil {
			return nil, err
		}
	}

	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return nil, errors.Mark(err, ErrCreateDefault)
	}
	if err := fileutil.AtomicWriteFile(path, data, fileutil.DefaultFilePerm); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "writing %s", path), ErrCreateDefault)
	}
	return data, nil
}

// Exists reports whether a document exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
