// Package main hosts the abxsurvey CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into survey workflow
// calls: creating and publishing listening-test surveys, inspecting the
// requester account, fetching results, and scaffolding configuration and
// templates. Configuration, logging, the manifest and the marketplace client
// are resolved lazily in commandContext so offline commands never need AWS
// credentials.
package main
