// Package session drives one repo-merge run from configuration to published merge.
//
// Controller validates configuration and tooling before touching the disk,
// acquires both working areas, relocates the incoming history, delegates the
// merge to merge.Orchestrator and optionally publishes the result. Any failure
// or cancellation destroys both working areas before Run returns; a successful
// run keeps them for inspection.
package session
