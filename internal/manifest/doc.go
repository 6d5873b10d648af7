// Package manifest persists created surveys in a local SQLite database.
//
// A manifest row records everything needed to publish a survey later and to
// interpret its results: the forms, every question slot with its A/B placement
// and the original and obfuscated file names, and the HIT identifiers once the
// forms are published. Surveys can be exported as YAML for sharing with
// whoever analyses the answers.
package manifest
