package relocate

import (
	"context"
	"errors"

	"github.com/temirov/repomerge/internal/execshell"
)

const (
	subdirectoryFilterFlagConstant          = "--to-subdirectory-filter"
	forceFlagConstant                       = "--force"
	filterRepoExecutorNotConfiguredConstant = "filter-repo executor not configured"
)

// ErrFilterRepoExecutorNotConfigured indicates FilterRepoTool was constructed without an executor.
var ErrFilterRepoExecutorNotConfigured = errors.New(filterRepoExecutorNotConfiguredConstant)

// FilterRepoTool relocates history with git-filter-repo.
type FilterRepoTool struct {
	executor FilterRepoExecutor
}

// NewFilterRepoTool constructs a FilterRepoTool.
func NewFilterRepoTool(executor FilterRepoExecutor) (*FilterRepoTool, error) {
	if executor == nil {
		return nil, ErrFilterRepoExecutorNotConfigured
	}
	return &FilterRepoTool{executor: executor}, nil
}

// MoveHistoryToSubdirectory runs git-filter-repo --to-subdirectory-filter in the working copy.
func (tool *FilterRepoTool) MoveHistoryToSubdirectory(executionContext context.Context, repositoryPath string, subdirectory string) error {
	_, executionError := tool.executor.ExecuteFilterRepo(executionContext, execshell.CommandDetails{
		Arguments:        []string{subdirectoryFilterFlagConstant, subdirectory, forceFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}
