// Package workspace owns the two disposable working areas of a merge session.
//
// Manager clones the base and incoming repositories into fixed directories
// under a workspace root, reports clone progress, and removes both areas on
// demand. Removal tolerates read-only artifacts by making the offending path
// writable and retrying once.
package workspace
