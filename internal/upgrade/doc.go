// Package upgrade migrates configuration documents between schema versions.
//
// A [Registry] holds one [Step] per outdated version. A [Chain] looks up the
// step for the document's current version, applies it, and repeats until the
// latest version is reached:
//
//	migrated, report, err := upgrade.Migrate(ctx, detected, doc)
//	if errors.Is(err, upgrade.ErrNoUpgradePath) {
//		// unknown or future version
//	}
//
// Adding a schema version means declaring it in package schema, pointing
// schema.Latest at it, and registering a step from the previous latest in
// builtinSteps. Most steps are a list of moves built with [MoveStep].
//
// A chain stops with [ErrUpgradeChainTooLong] after Len()+1 steps, which only
// happens when the registry is misconfigured.
package upgrade
