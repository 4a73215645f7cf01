package relocate

import (
	"context"

	"github.com/temirov/repomerge/internal/execshell"
)

// HistoryRelocationTool rewrites every commit of a working copy under a subdirectory.
type HistoryRelocationTool interface {
	MoveHistoryToSubdirectory(executionContext context.Context, repositoryPath string, subdirectory string) error
}

// TreeInspector lists the paths tracked by the HEAD commit of a working copy.
type TreeInspector interface {
	HeadPaths(repositoryPath string) ([]string, error)
}

// FilterRepoExecutor is the subset of execshell.ShellExecutor used by FilterRepoTool.
type FilterRepoExecutor interface {
	ExecuteFilterRepo(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}
