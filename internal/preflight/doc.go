// Package preflight provides readiness checks for the filesystem paths,
// templates, audio and credentials that survey creation depends on.
//
// The CLI "abxsurvey status" command prints every result; "abxsurvey create"
// runs the same checks first and stops before touching storage when one
// fails.
package preflight
