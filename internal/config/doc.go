// Package config loads the passmenu configuration document.
//
// A document is read from YAML or TOML into a [tree.Mapping], its declared
// schema revision is read from the config-version key, and the upgrade
// chain brings it to [schema.Latest] before it is bound into a typed
// [Config] with viper. Environment variables prefixed with PASSMENU_
// override file values.
//
// A missing document is replaced by the embedded default. Upgrades happen in
// memory; [Loader.Save] writes a migrated document back after taking a
// backup.
package config
