package prompt_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repomerge/internal/branches"
	"github.com/temirov/repomerge/internal/prompt"
	"github.com/temirov/repomerge/internal/session"
)

func fixedClock() time.Time {
	return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func acceptingRunner(executed *int) prompt.FormRunner {
	return func(context.Context, *huh.Form) error {
		*executed++
		return nil
	}
}

func TestPresetDecisionSourceAcceptsDefaults(testInstance *testing.T) {
	source := prompt.NewPresetDecisionSource()
	executionContext := context.Background()

	subdirectory, subdirectoryError := source.Subdirectory(executionContext, session.DefaultSubdirectory)
	require.NoError(testInstance, subdirectoryError)
	require.Equal(testInstance, "merged_content", subdirectory)

	incomingBranch, incomingError := source.IncomingBranch(executionContext, branches.Description{}, "dev")
	require.NoError(testInstance, incomingError)
	require.Equal(testInstance, "dev", incomingBranch)

	baseBranch, baseError := source.BaseBranch(executionContext, "main")
	require.NoError(testInstance, baseError)
	require.Equal(testInstance, "main", baseBranch)

	showDiff, diffError := source.ConfirmDiff(executionContext)
	require.NoError(testInstance, diffError)
	require.True(testInstance, showDiff)

	publish, publishError := source.ConfirmPublish(executionContext)
	require.NoError(testInstance, publishError)
	require.False(testInstance, publish)

	baseURL, baseURLError := source.BaseRepositoryURL(executionContext)
	require.NoError(testInstance, baseURLError)
	require.Empty(testInstance, baseURL)

	require.ErrorIs(testInstance, source.AwaitConflictResolution(executionContext, "/workspace/base_repo", "vendor", []string{"vendor/a.txt"}), prompt.ErrInteractionUnavailable)
}

func TestConsoleDecisionSourceKeepsDefaultsWhenUnchanged(testInstance *testing.T) {
	executed := 0
	var output bytes.Buffer
	source := prompt.NewConsoleDecisionSource(strings.NewReader(""), &output, acceptingRunner(&executed), fixedClock)
	executionContext := context.Background()

	subdirectory, subdirectoryError := source.Subdirectory(executionContext, "tools")
	require.NoError(testInstance, subdirectoryError)
	require.Equal(testInstance, "tools", subdirectory)

	baseBranch, baseError := source.BaseBranch(executionContext, "main")
	require.NoError(testInstance, baseError)
	require.Equal(testInstance, "main", baseBranch)

	publish, publishError := source.ConfirmPublish(executionContext)
	require.NoError(testInstance, publishError)
	require.False(testInstance, publish)

	require.Equal(testInstance, 3, executed)
}

func TestConsoleDecisionSourceShowsBranchTable(testInstance *testing.T) {
	executed := 0
	var output bytes.Buffer
	source := prompt.NewConsoleDecisionSource(strings.NewReader(""), &output, acceptingRunner(&executed), fixedClock)
	description := branches.Description{
		Branches: []branches.BranchInfo{
			{Name: "dev", LastCommitTimestamp: "2024-05-31 00:00:00 +0000"},
			{Name: "main", LastCommitTimestamp: "2024-05-01 00:00:00 +0000"},
		},
		DefaultBranch: "main",
	}

	selectedBranch, selectionError := source.IncomingBranch(context.Background(), description, "dev")

	require.NoError(testInstance, selectionError)
	require.Equal(testInstance, "dev", selectedBranch)
	require.Contains(testInstance, output.String(), "Available Branches")
	require.Contains(testInstance, output.String(), "main (default)")
	require.Equal(testInstance, 1, executed)
}

func TestConsoleDecisionSourceListsConflicts(testInstance *testing.T) {
	executed := 0
	var output bytes.Buffer
	source := prompt.NewConsoleDecisionSource(strings.NewReader(""), &output, acceptingRunner(&executed), fixedClock)

	resolutionError := source.AwaitConflictResolution(context.Background(), "/workspace/base_repo", "vendor", []string{"vendor/a.txt", "vendor/b.txt"})

	require.NoError(testInstance, resolutionError)
	require.Contains(testInstance, output.String(), "  - vendor/a.txt")
	require.Contains(testInstance, output.String(), "  - vendor/b.txt")
}

func TestConsoleDecisionSourceTranslatesAborts(testInstance *testing.T) {
	unexpectedError := errors.New("terminal closed")
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	testCases := []struct {
		name             string
		executionContext context.Context
		runnerError      error
		expectedError    error
	}{
		{name: "user_aborted", executionContext: context.Background(), runnerError: huh.ErrUserAborted, expectedError: session.ErrUserAbort},
		{name: "context_cancelled", executionContext: cancelledContext, runnerError: context.Canceled, expectedError: session.ErrUserAbort},
		{name: "other_failure", executionContext: context.Background(), runnerError: unexpectedError, expectedError: unexpectedError},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := func(context.Context, *huh.Form) error {
				return testCase.runnerError
			}
			source := prompt.NewConsoleDecisionSource(strings.NewReader(""), &bytes.Buffer{}, runner, fixedClock)

			_, promptError := source.BaseRepositoryURL(testCase.executionContext)

			require.ErrorIs(testInstance, promptError, testCase.expectedError)
		})
	}
}
