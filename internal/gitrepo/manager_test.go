package gitrepo_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repomerge/internal/execshell"
	"github.com/temirov/repomerge/internal/gitrepo"
)

const (
	testRepositoryPathConstant    = "/workspace/base_repo"
	testIncomingPathConstant      = "/workspace/merge_repo"
	testSourceURLConstant         = "https://example.com/owner/base.git"
	testMergeRemoteNameConstant   = "merge_repo"
	testIncomingReferenceConstant = "merge_repo/main"
)

type scriptedGitExecutor struct {
	results  map[string]execshell.ExecutionResult
	failures map[string]error
	recorded []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	key := strings.Join(details.Arguments, " ")
	if failure, exists := executor.failures[key]; exists {
		return execshell.ExecutionResult{}, failure
	}
	return executor.results[key], nil
}

func commandFailure(exitCode int, standardError string) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result:  execshell.ExecutionResult{ExitCode: exitCode, StandardError: standardError},
	}
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.Nil(testInstance, manager)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)
}

func TestCloneReturnsExitStatusWithoutError(testInstance *testing.T) {
	testCases := []struct {
		name           string
		failure        error
		expectedStatus int
		expectError    bool
	}{
		{
			name:           "clone_succeeds",
			expectedStatus: 0,
		},
		{
			name:           "clone_exits_non_zero",
			failure:        commandFailure(128, "fatal: repository not found"),
			expectedStatus: 128,
		},
		{
			name:        "clone_cannot_run",
			failure:     execshell.CommandExecutionError{Cause: context.Canceled},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{failures: map[string]error{}}
			if testCase.failure != nil {
				executor.failures["clone --progress "+testSourceURLConstant+" "+testRepositoryPathConstant] = testCase.failure
			}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			status, cloneError := manager.Clone(context.Background(), testSourceURLConstant, testRepositoryPathConstant, func(string) {})
			if testCase.expectError {
				require.Error(testInstance, cloneError)
				require.ErrorIs(testInstance, cloneError, context.Canceled)
				return
			}
			require.NoError(testInstance, cloneError)
			require.Equal(testInstance, testCase.expectedStatus, status)
			require.Len(testInstance, executor.recorded, 1)
			require.NotNil(testInstance, executor.recorded[0].StandardErrorLineHandler)
		})
	}
}

func TestEnsureRemoteChoosesAddOrSetURL(testInstance *testing.T) {
	testCases := []struct {
		name               string
		existingRemotes    string
		expectedSubcommand string
	}{
		{
			name:               "remote_missing",
			existingRemotes:    "origin",
			expectedSubcommand: "add",
		},
		{
			name:               "remote_present",
			existingRemotes:    "origin\nmerge_repo",
			expectedSubcommand: "set-url",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{
				results: map[string]execshell.ExecutionResult{
					"remote": {StandardOutput: testCase.existingRemotes},
				},
			}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			ensureError := manager.EnsureRemote(context.Background(), testRepositoryPathConstant, testMergeRemoteNameConstant, testIncomingPathConstant)
			require.NoError(testInstance, ensureError)
			require.Len(testInstance, executor.recorded, 2)
			require.Equal(testInstance, []string{"remote", testCase.expectedSubcommand, testMergeRemoteNameConstant, testIncomingPathConstant}, executor.recorded[1].Arguments)
			require.Equal(testInstance, testRepositoryPathConstant, executor.recorded[1].WorkingDirectory)
		})
	}
}

func TestMergeBuildsArgumentsAndStreams(testInstance *testing.T) {
	testCases := []struct {
		name              string
		options           gitrepo.MergeOptions
		expectedArguments []string
		expectError       bool
	}{
		{
			name:              "no_strategy",
			options:           gitrepo.MergeOptions{Reference: testIncomingReferenceConstant, AllowUnrelatedHistories: true},
			expectedArguments: []string{"merge", testIncomingReferenceConstant, "--allow-unrelated-histories", "--no-edit"},
		},
		{
			name:              "prefer_incoming",
			options:           gitrepo.MergeOptions{Reference: testIncomingReferenceConstant, AllowUnrelatedHistories: true, StrategyOption: gitrepo.ConflictSideTheirs},
			expectedArguments: []string{"merge", testIncomingReferenceConstant, "--allow-unrelated-histories", "--no-edit", "-X", "theirs"},
		},
		{
			name:        "unsupported_strategy",
			options:     gitrepo.MergeOptions{Reference: testIncomingReferenceConstant, StrategyOption: gitrepo.ConflictSide("recursive")},
			expectError: true,
		},
		{
			name:        "missing_reference",
			options:     gitrepo.MergeOptions{},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			mergeError := manager.Merge(context.Background(), testRepositoryPathConstant, testCase.options)
			if testCase.expectError {
				var inputError gitrepo.InvalidInputError
				require.True(testInstance, errors.As(mergeError, &inputError))
				require.Empty(testInstance, executor.recorded)
				return
			}
			require.NoError(testInstance, mergeError)
			require.Len(testInstance, executor.recorded, 1)
			require.Equal(testInstance, testCase.expectedArguments, executor.recorded[0].Arguments)
			require.True(testInstance, executor.recorded[0].StreamOutput)
		})
	}
}

func TestMergeFailureExposesCommandFailure(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		failures: map[string]error{
			"merge merge_repo/main --allow-unrelated-histories --no-edit": commandFailure(128, "fatal: refusing to merge unrelated histories"),
		},
	}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	mergeError := manager.Merge(context.Background(), testRepositoryPathConstant, gitrepo.MergeOptions{Reference: testIncomingReferenceConstant, AllowUnrelatedHistories: true})

	failure, isCommandFailure := execshell.IsCommandFailure(mergeError)
	require.True(testInstance, isCommandFailure)
	require.Equal(testInstance, 128, failure.Result.ExitCode)
}

func TestListUnmergedPathsSplitsNullTerminatedOutput(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		results: map[string]execshell.ExecutionResult{
			"diff --name-only -z --diff-filter=U": {StandardOutput: "vendor/shared.txt\x00vendor/\u00e9t\u00e9 notes.txt\x00README.md\x00"},
		},
	}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	unmergedPaths, listError := manager.ListUnmergedPaths(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{"vendor/shared.txt", "vendor/\u00e9t\u00e9 notes.txt", "README.md"}, unmergedPaths)
}

func TestListConflictingPaths(testInstance *testing.T) {
	const mergeTreeArguments = "merge-tree --write-tree --name-only -z --allow-unrelated-histories HEAD " + testIncomingReferenceConstant

	testCases := []struct {
		name          string
		result        execshell.ExecutionResult
		failure       error
		expectedPaths []string
		expectError   bool
	}{
		{
			name:          "clean_merge",
			result:        execshell.ExecutionResult{StandardOutput: "4b825dc642cb6eb9a060e54bf8d69288fbee4904"},
			expectedPaths: []string{},
		},
		{
			name: "conflicts_listed_before_messages",
			failure: execshell.CommandFailedError{
				Command: execshell.ShellCommand{Name: execshell.CommandGit},
				Result: execshell.ExecutionResult{
					ExitCode:       1,
					StandardOutput: "4b825dc642cb6eb9a060e54bf8d69288fbee4904\x00vendor/shared.txt\x00vendor/\u00e9.txt\x00\x00CONFLICT (add/add): Merge conflict in vendor/shared.txt",
				},
			},
			expectedPaths: []string{"vendor/shared.txt", "vendor/\u00e9.txt"},
		},
		{
			name:        "unsupported_git",
			failure:     commandFailure(129, "error: unknown option `write-tree'"),
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{
				results:  map[string]execshell.ExecutionResult{mergeTreeArguments: testCase.result},
				failures: map[string]error{},
			}
			if testCase.failure != nil {
				executor.failures[mergeTreeArguments] = testCase.failure
			}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			conflictingPaths, listError := manager.ListConflictingPaths(context.Background(), testRepositoryPathConstant, testIncomingReferenceConstant)
			if testCase.expectError {
				require.Error(testInstance, listError)
				return
			}
			require.NoError(testInstance, listError)
			require.Equal(testInstance, testCase.expectedPaths, conflictingPaths)
		})
	}
}

func TestCheckoutConflictSideArguments(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, manager.CheckoutConflictSide(context.Background(), testRepositoryPathConstant, gitrepo.ConflictSideOurs, "a.txt"))
	require.Equal(testInstance, []string{"checkout", "--ours", "--", "a.txt"}, executor.recorded[0].Arguments)

	sideError := manager.CheckoutConflictSide(context.Background(), testRepositoryPathConstant, gitrepo.ConflictSide(""), "a.txt")
	require.Error(testInstance, sideError)
}

func TestOperationsRequireRepositoryPath(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	fetchError := manager.Fetch(context.Background(), " ", testMergeRemoteNameConstant)

	var inputError gitrepo.InvalidInputError
	require.True(testInstance, errors.As(fetchError, &inputError))
	require.Empty(testInstance, executor.recorded)
}

func TestParseHeadBranch(testInstance *testing.T) {
	testCases := []struct {
		name        string
		description string
		expected    string
	}{
		{
			name:        "advertised",
			description: "* remote origin\n  Fetch URL: x\n  HEAD branch: develop\n  Remote branches:",
			expected:    "develop",
		},
		{
			name:        "unknown",
			description: "* remote origin\n  HEAD branch: (unknown)",
			expected:    "",
		},
		{
			name:        "absent",
			description: "* remote origin\n  Fetch URL: x",
			expected:    "",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, gitrepo.ParseHeadBranch(testCase.description))
		})
	}
}
