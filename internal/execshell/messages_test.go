package execshell_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repomerge/internal/execshell"
)

const testBaseWorkingDirectoryConstant = "/workspace/base_repo"

func gitCommand(workingDirectory string, arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: arguments, WorkingDirectory: workingDirectory}}
}

func TestCommandMessageFormatterStartedMessages(testInstance *testing.T) {
	testCases := []struct {
		name            string
		command         execshell.ShellCommand
		expectedMessage string
	}{
		{
			name:            "clone",
			command:         gitCommand("", "clone", "--progress", "https://example.com/owner/base.git", "/workspace/base_repo"),
			expectedMessage: "Cloning https://example.com/owner/base.git into /workspace/base_repo",
		},
		{
			name:            "merge_preferring_incoming",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "merge", "merge_repo/main", "--allow-unrelated-histories", "--no-edit", "-X", "theirs"),
			expectedMessage: "Merging merge_repo/main into /workspace/base_repo preferring incoming changes",
		},
		{
			name:            "merge_without_strategy",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "merge", "--no-edit", "merge_repo/main"),
			expectedMessage: "Merging merge_repo/main into /workspace/base_repo",
		},
		{
			name:            "take_incoming_side",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "checkout", "--theirs", "--", "vendor/shared.txt"),
			expectedMessage: "Taking incoming version of vendor/shared.txt in /workspace/base_repo",
		},
		{
			name:            "take_base_side",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "checkout", "--ours", "--", "README.md"),
			expectedMessage: "Taking base version of README.md in /workspace/base_repo",
		},
		{
			name:            "switch_branch",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "checkout", "develop"),
			expectedMessage: "Switching /workspace/base_repo to branch develop",
		},
		{
			name:            "register_remote",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "remote", "add", "merge_repo", "/workspace/merge_repo"),
			expectedMessage: "Registering remote merge_repo for /workspace/merge_repo in /workspace/base_repo",
		},
		{
			name:            "inspect_remote",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "remote", "show", "origin"),
			expectedMessage: "Inspecting remote origin from /workspace/base_repo",
		},
		{
			name:            "fetch",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "fetch", "merge_repo"),
			expectedMessage: "Fetching from merge_repo in /workspace/base_repo",
		},
		{
			name:            "diff_stat_range",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "diff", "--stat", "HEAD", "merge_repo/main"),
			expectedMessage: "Comparing HEAD..merge_repo/main (stat) in /workspace/base_repo",
		},
		{
			name:            "diff_working_tree",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "diff"),
			expectedMessage: "Comparing working tree in /workspace/base_repo",
		},
		{
			name:            "push",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "push", "origin", "main"),
			expectedMessage: "Pushing main to origin from /workspace/base_repo",
		},
		{
			name:            "history_graph",
			command:         gitCommand("", "log", "--graph", "--oneline"),
			expectedMessage: "Rendering history graph of current directory",
		},
		{
			name:            "remote_branches",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "branch", "-r"),
			expectedMessage: "Listing remote branches in /workspace/base_repo",
		},
		{
			name:            "merge_commit",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "commit", "--no-edit"),
			expectedMessage: "Committing merge in /workspace/base_repo",
		},
		{
			name: "filter_repo",
			command: execshell.ShellCommand{
				Name:    execshell.CommandFilterRepo,
				Details: execshell.CommandDetails{Arguments: []string{"--to-subdirectory-filter", "vendor", "--force"}, WorkingDirectory: "/workspace/merge_repo"},
			},
			expectedMessage: "Relocating history of /workspace/merge_repo under vendor",
		},
		{
			name:            "unrecognized_subcommand",
			command:         gitCommand(testBaseWorkingDirectoryConstant, "ls-tree", "-r", "HEAD"),
			expectedMessage: "Running git ls-tree -r HEAD (in /workspace/base_repo)",
		},
		{
			name:            "plain_log_is_generic",
			command:         gitCommand("", "log", "-1", "--format=%cI"),
			expectedMessage: "Running git log -1 --format=%cI",
		},
		{
			name:            "missing_clone_arguments",
			command:         gitCommand("", "clone"),
			expectedMessage: "Cloning unknown into unknown",
		},
	}

	formatter := execshell.CommandMessageFormatter{}
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedMessage, formatter.BuildStartedMessage(testCase.command))
		})
	}
}

func TestCommandMessageFormatterLaterStages(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	mergeCommand := gitCommand(testBaseWorkingDirectoryConstant, "merge", "merge_repo/main", "--allow-unrelated-histories", "--no-edit")
	listCommand := gitCommand("", "ls-tree", "HEAD")
	spawnFailure := errors.New("signal: killed")

	require.Equal(testInstance, "Merged merge_repo/main into /workspace/base_repo", formatter.BuildSuccessMessage(mergeCommand))
	require.Equal(testInstance,
		"Failed to merge merge_repo/main into /workspace/base_repo (exit code 1: CONFLICT (add/add))",
		formatter.BuildFailureMessage(mergeCommand, execshell.ExecutionResult{ExitCode: 1, StandardError: "CONFLICT (add/add)\n"}))
	require.Equal(testInstance,
		"Failed to merge merge_repo/main into /workspace/base_repo (exit code 1)",
		formatter.BuildFailureMessage(mergeCommand, execshell.ExecutionResult{ExitCode: 1, StandardError: "  \n"}))
	require.Equal(testInstance, "Unable to merge merge_repo/main into /workspace/base_repo: signal: killed", formatter.BuildExecutionFailureMessage(mergeCommand, spawnFailure))

	require.Equal(testInstance, "Completed git ls-tree HEAD", formatter.BuildSuccessMessage(listCommand))
	require.Equal(testInstance, "git ls-tree HEAD failed with exit code 128", formatter.BuildFailureMessage(listCommand, execshell.ExecutionResult{ExitCode: 128}))
	require.Equal(testInstance, "git ls-tree HEAD failed: unknown error", formatter.BuildExecutionFailureMessage(listCommand, nil))
}
