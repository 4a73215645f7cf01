package session

import (
	"context"

	"github.com/temirov/repomerge/internal/branches"
	"github.com/temirov/repomerge/internal/merge"
	"github.com/temirov/repomerge/internal/workspace"
)

// WorkspaceManager owns the two working areas.
type WorkspaceManager interface {
	Area(role workspace.Role) workspace.WorkingArea
	Exists(role workspace.Role) bool
	Acquire(executionContext context.Context, sourceURL string, role workspace.Role, reporter workspace.ProgressReporter) (int, error)
	DestroyAll() error
}

// BranchProbe describes the remote branches of a working copy.
type BranchProbe interface {
	Describe(executionContext context.Context, repositoryPath string) (branches.Description, error)
}

// HistoryRelocator moves incoming history under the subdirectory.
type HistoryRelocator interface {
	Relocate(executionContext context.Context, repositoryPath string, subdirectory string) error
	IsRelocated(repositoryPath string, subdirectory string) (bool, error)
}

// MergeOrchestrator merges the relocated incoming working copy into the base working copy.
type MergeOrchestrator interface {
	Merge(executionContext context.Context, request merge.Request) (merge.Report, error)
}

// RepositoryClient covers the git operations the controller issues directly.
type RepositoryClient interface {
	CheckoutBranch(executionContext context.Context, repositoryPath string, branch string) error
	ShowDiffStat(executionContext context.Context, repositoryPath string, fromReference string, toReference string) error
	Push(executionContext context.Context, repositoryPath string, remoteName string, reference string) error
}

// TreeInspector lists the paths tracked by HEAD of a working copy.
type TreeInspector interface {
	HeadPaths(repositoryPath string) ([]string, error)
}

// DependencyChecker verifies that external tools are installed.
type DependencyChecker interface {
	Check(executables ...string) error
}

// DecisionSource answers every question a session asks the operator.
type DecisionSource interface {
	merge.OperatorDecisions
	BaseRepositoryURL(executionContext context.Context) (string, error)
	IncomingRepositoryURL(executionContext context.Context) (string, error)
	Subdirectory(executionContext context.Context, defaultSubdirectory string) (string, error)
	IncomingBranch(executionContext context.Context, description branches.Description, defaultBranch string) (string, error)
	BaseBranch(executionContext context.Context, defaultBranch string) (string, error)
	ConfirmPublish(executionContext context.Context) (bool, error)
}
