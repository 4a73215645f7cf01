package merge

import (
	"context"

	"github.com/temirov/repomerge/internal/gitrepo"
)

// VersionControlClient is the subset of gitrepo.RepositoryManager the orchestrator drives.
type VersionControlClient interface {
	CheckoutBranch(executionContext context.Context, repositoryPath string, branch string) error
	EnsureRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error
	Fetch(executionContext context.Context, repositoryPath string, remoteName string) error
	ShowHistoryGraph(executionContext context.Context, repositoryPath string) error
	ShowTrackedFiles(executionContext context.Context, repositoryPath string, reference string) error
	ShowDiff(executionContext context.Context, repositoryPath string, fromReference string, toReference string) error
	Merge(executionContext context.Context, repositoryPath string, options gitrepo.MergeOptions) error
	ListUnmergedPaths(executionContext context.Context, repositoryPath string) ([]string, error)
	ListConflictingPaths(executionContext context.Context, repositoryPath string, reference string) ([]string, error)
	CheckoutConflictSide(executionContext context.Context, repositoryPath string, side gitrepo.ConflictSide, filePath string) error
	RemovePath(executionContext context.Context, repositoryPath string, filePath string) error
	StagePath(executionContext context.Context, repositoryPath string, filePath string) error
	CommitMerge(executionContext context.Context, repositoryPath string) error
	MergeInProgress(executionContext context.Context, repositoryPath string) (bool, error)
}

// OperatorDecisions supplies the answers the orchestrator needs mid-merge.
type OperatorDecisions interface {
	ConfirmDiff(executionContext context.Context) (bool, error)
	// AwaitConflictResolution returns once the operator reports the conflicts as handled.
	AwaitConflictResolution(executionContext context.Context, repositoryPath string, subdirectory string, conflictedPaths []string) error
}
