// Package merge joins a relocated incoming working copy into the base working copy.
//
// Orchestrator links the incoming working copy as the merge_repo remote, fetches
// it and merges merge_repo/<branch> into the base branch with unrelated histories
// allowed. Failures are routed by cause: an unrelated histories refusal is
// retried once, content conflicts are resolved by ConflictPolicy, left pending
// under AssumeYes or handed to the operator through OperatorDecisions.
package merge
