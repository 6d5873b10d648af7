// Package config loads, normalizes, and validates abxsurvey configuration.
//
// It resolves config file locations, supplies defaults, expands user paths,
// and exposes helpers for ensuring the directories the survey workflow writes
// into. TOML is the primary format; files ending in .yaml or .yml are decoded
// as YAML so older survey configs keep loading. Marketplace credentials are
// read from an AWS console CSV export or the standard AWS environment
// variables.
package config
