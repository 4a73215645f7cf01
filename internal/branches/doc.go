// Package branches inspects the remote branches of a cloned working copy.
//
// Probe lists remote branches without the HEAD alias, resolves the remote's
// advertised default branch, and reads per-branch last commit dates with each
// lookup isolated from the others.
package branches
