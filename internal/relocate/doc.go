// Package relocate rewrites the history of a working copy so that every tracked
// path lives under a subdirectory.
//
// Relocator drives a HistoryRelocationTool (git-filter-repo in production)
// exactly once per working copy and verifies the rewritten HEAD tree with a
// TreeInspector backed by go-git. A failed relocation leaves the working copy
// in an undefined state and is reported as RelocationError.
package relocate
