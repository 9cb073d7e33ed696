package upgrade

import (
	"context"
	"log/slog"

	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/logging"
	"github.com/thoreinstein/passmenu/internal/schema"
	"github.com/thoreinstein/passmenu/internal/tree"
)

var (
	// ErrNoUpgradePath indicates no step is registered for a document's version.
	ErrNoUpgradePath = errors.New("no upgrade path")

	// ErrUpgradeChainTooLong indicates the registry loops or never reaches
	// the latest version.
	ErrUpgradeChainTooLong = errors.New("upgrade chain too long")
)

// Applied records one step taken by a migration.
type Applied struct {
	From        schema.Version
	To          schema.Version
	Description string
}

// Report describes a finished migration.
type Report struct {
	From  schema.Version
	To    schema.Version
	Steps []Applied
}

// Upgraded reports whether any step ran.
func (r Report) Upgraded() bool {
	return len(r.Steps) > 0
}

// Chain drives a document from its detected version to the latest one.
type Chain struct {
	registry *Registry
	latest   schema.Version
	logger   *slog.Logger
}

// Option configures a Chain.
type Option func(*Chain)

// WithLatest overrides the target version. Defaults to schema.Latest.
func WithLatest(v schema.Version) Option {
	return func(c *Chain) {
		c.latest = v
	}
}

// WithLogger sets the logger. Without it the logger in the Migrate context
// is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = l
	}
}

// NewChain creates a Chain over reg.
func NewChain(reg *Registry, opts ...Option) *Chain {
	c := &Chain{
		registry: reg,
		latest:   schema.Latest,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Migrate upgrades doc from detected to the latest version, one registered
// step at a time.
//
// doc itself is never modified. A document already at the latest version is
// returned as is without running any step; otherwise the steps run on a deep
// copy, which is returned only if every step succeeds.
func (c *Chain) Migrate(ctx context.Context, detected schema.Version, doc tree.Mapping) (tree.Mapping, Report, error) {
	logger := c.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	report := Report{From: detected, To: detected}
	if detected == c.latest {
		return doc, report, nil
	}

	current := doc.Clone()
	version := detected
	limit := c.registry.Len() + 1

	for applied := 0; version != c.latest; applied++ {
		if applied == limit {
			return nil, report, errors.WithHint(
				errors.Wrapf(ErrUpgradeChainTooLong, "gave up at %s after %d steps from %s", version, applied, detected),
				"the registered upgrade steps form a cycle or never reach "+c.latest.String())
		}

		step, ok := c.registry.Lookup(version)
		if !ok {
			return nil, report, c.noPath(version)
		}

		next, err := step.Apply(current)
		if err != nil {
			return nil, report, errors.Wrapf(err, "upgrading config from %s to %s", step.From, step.To)
		}
		if next == nil {
			next = tree.Mapping{}
		}

		logger.Info("upgraded config",
			slog.String("from", step.From.String()),
			slog.String("to", step.To.String()),
			slog.String("step", step.Description))

		report.Steps = append(report.Steps, Applied{From: step.From, To: step.To, Description: step.Description})
		report.To = step.To
		current, version = next, step.To
	}

	return current, report, nil
}

func (c *Chain) noPath(v schema.Version) error {
	err := errors.Wrapf(ErrNoUpgradePath, "from version %s", v)
	if v.Compare(c.latest) > 0 {
		return errors.WithHintf(err,
			"the file declares config-version %s but this passmenu understands up to %s; upgrade passmenu", v, c.latest)
	}
	return errors.WithHintf(err,
		"config-version %s is not a known version; check the config-version key or recreate the file with: passmenu config init --force", v)
}

// Migrate runs the built-in upgrade steps.
func Migrate(ctx context.Context, detected schema.Version, doc tree.Mapping) (tree.Mapping, Report, error) {
	return NewChain(DefaultRegistry()).Migrate(ctx, detected, doc)
}
