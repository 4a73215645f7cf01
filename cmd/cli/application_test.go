package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repomerge/cmd/cli"
	"github.com/temirov/repomerge/internal/analytics"
	"github.com/temirov/repomerge/internal/dependencies"
	"github.com/temirov/repomerge/internal/execshell"
	"github.com/temirov/repomerge/internal/workspace"
)

const (
	testBaseRepositoryURLConstant           = "https://example.com/acme/base.git"
	testIncomingRepositoryURLConstant       = "https://example.com/acme/widgets.git"
	testEnvironmentRepositoryConstant       = "https://example.com/acme/from-environment.git"
	testCloneFailureStandardErrorConstant   = "fatal: repository not found"
	testCloneFailureExitCodeConstant        = 128
	testSessionIdentifierConstant           = "session-0001"
	testAnalyticsFileNameConstant           = "analytics.yaml"
	testLogFileNameConstant                 = "repo-merge.log"
	testConfigurationFileNameConstant       = "config.yaml"
	testCloneSubcommandConstant             = "clone"
	testSubdirectoryFlagConstant            = "--subdirectory=vendor"
	testAssumeYesFlagConstant               = "-y"
	testWorkspaceFlagTemplateConstant       = "--workspace="
	testBaseEnvironmentVariableConstant     = "GITMERGE_BASE"
	testIncomingEnvironmentVariableConstant = "GITMERGE_MERGE"
	testLogFileMessageKeyConstant           = "msg"
	testLogFileSessionKeyConstant           = "session_id"
)

type recordingCommandRunner struct {
	mutex    sync.Mutex
	commands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	runner.commands = append(runner.commands, command)
	if len(command.Details.Arguments) > 0 && command.Details.Arguments[0] == testCloneSubcommandConstant {
		return execshell.ExecutionResult{ExitCode: testCloneFailureExitCodeConstant, StandardError: testCloneFailureStandardErrorConstant}, nil
	}
	return execshell.ExecutionResult{}, nil
}

func (runner *recordingCommandRunner) recorded() []execshell.ShellCommand {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	return append([]execshell.ShellCommand{}, runner.commands...)
}

type applicationFixture struct {
	runner      *recordingCommandRunner
	output      *bytes.Buffer
	errorOutput *bytes.Buffer
	missing     map[string]bool
	application *cli.Application
}

func newApplicationFixture(testInstance *testing.T, missingExecutables ...string) *applicationFixture {
	testInstance.Helper()
	testInstance.Chdir(testInstance.TempDir())

	fixture := &applicationFixture{
		runner:      &recordingCommandRunner{},
		output:      &bytes.Buffer{},
		errorOutput: &bytes.Buffer{},
		missing:     map[string]bool{},
	}
	for _, executable := range missingExecutables {
		fixture.missing[executable] = true
	}

	fixture.application = cli.NewApplicationWithEnvironment(cli.Environment{
		Input:         strings.NewReader(""),
		Output:        fixture.output,
		ErrorOutput:   fixture.errorOutput,
		CommandRunner: fixture.runner,
		LookPath: func(executable string) (string, error) {
			if fixture.missing[executable] {
				return "", errors.New("not found")
			}
			return filepath.Join("/usr/bin", executable), nil
		},
		Interactive:       func() bool { return false },
		SessionIdentifier: func() string { return testSessionIdentifierConstant },
	})
	return fixture
}

func (fixture *applicationFixture) execute(arguments ...string) error {
	fixture.application.Command().SetArgs(arguments)
	return fixture.application.Execute()
}

func TestApplicationReportsMissingDependenciesBeforeCloning(testInstance *testing.T) {
	fixture := newApplicationFixture(testInstance, dependencies.FilterRepoExecutableName)

	executionError := fixture.execute(testAssumeYesFlagConstant, testBaseRepositoryURLConstant, testIncomingRepositoryURLConstant)

	missingDependency := dependencies.MissingDependencyError{}
	require.ErrorAs(testInstance, executionError, &missingDependency)
	require.Equal(testInstance, []string{dependencies.FilterRepoExecutableName}, missingDependency.Executables)
	require.Empty(testInstance, fixture.runner.recorded())
}

func TestApplicationRejectsConflictingPolicyFlags(testInstance *testing.T) {
	fixture := newApplicationFixture(testInstance)

	executionError := fixture.execute("--merge-conflict-base", "--merge-conflict-side", testBaseRepositoryURLConstant, testIncomingRepositoryURLConstant)

	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "merge-conflict-base")
	require.Empty(testInstance, fixture.runner.recorded())
}

func TestApplicationRejectsTooManyArguments(testInstance *testing.T) {
	fixture := newApplicationFixture(testInstance)

	executionError := fixture.execute(testBaseRepositoryURLConstant, testIncomingRepositoryURLConstant, "extra")

	require.Error(testInstance, executionError)
	require.Empty(testInstance, fixture.runner.recorded())
}

func TestApplicationCloneFailureExportsAnalytics(testInstance *testing.T) {
	fixture := newApplicationFixture(testInstance)
	workspaceDirectory := testInstance.TempDir()
	analyticsPath := filepath.Join(testInstance.TempDir(), testAnalyticsFileNameConstant)

	executionError := fixture.execute(
		testAssumeYesFlagConstant,
		testSubdirectoryFlagConstant,
		testWorkspaceFlagTemplateConstant+workspaceDirectory,
		"--analytics",
		"--analytics-output="+analyticsPath,
		testBaseRepositoryURLConstant,
		testIncomingRepositoryURLConstant,
	)

	cloneError := workspace.CloneError{}
	require.ErrorAs(testInstance, executionError, &cloneError)
	require.Equal(testInstance, workspace.RoleBase, cloneError.Role)
	require.Equal(testInstance, testCloneFailureExitCodeConstant, cloneError.ExitStatus)

	recordedCommands := fixture.runner.recorded()
	require.Len(testInstance, recordedCommands, 1)
	require.Contains(testInstance, recordedCommands[0].Details.Arguments, testBaseRepositoryURLConstant)
	require.Contains(testInstance, recordedCommands[0].Details.Arguments, filepath.Join(workspaceDirectory, "base_repo"))

	require.Contains(testInstance, fixture.output.String(), "Analytics")

	exportedContent, readError := os.ReadFile(analyticsPath)
	require.NoError(testInstance, readError)
	exported := struct {
		Commands []analytics.ExecutionRecord `yaml:"commands"`
	}{}
	require.NoError(testInstance, yaml.Unmarshal(exportedContent, &exported))
	require.Len(testInstance, exported.Commands, 1)
	require.False(testInstance, exported.Commands[0].Succeeded)
	require.True(testInstance, strings.HasPrefix(exported.Commands[0].Command, "git clone"))
}

func TestApplicationReadsRepositoryFromEnvironmentAlias(testInstance *testing.T) {
	fixture := newApplicationFixture(testInstance)
	testInstance.Setenv(testBaseEnvironmentVariableConstant, testEnvironmentRepositoryConstant)
	testInstance.Setenv(testIncomingEnvironmentVariableConstant, testIncomingRepositoryURLConstant)

	executionError := fixture.execute(
		testAssumeYesFlagConstant,
		testSubdirectoryFlagConstant,
		testWorkspaceFlagTemplateConstant+testInstance.TempDir(),
	)

	cloneError := workspace.CloneError{}
	require.ErrorAs(testInstance, executionError, &cloneError)
	require.Equal(testInstance, testEnvironmentRepositoryConstant, cloneError.SourceURL)
}

func TestApplicationConfigurationFileSuppliesMergeSettings(testInstance *testing.T) {
	fixture := newApplicationFixture(testInstance)
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	workspaceDirectory := testInstance.TempDir()
	configurationContent := "merge:\n" +
		"  base_repository_url: " + testBaseRepositoryURLConstant + "\n" +
		"  incoming_repository_url: " + testIncomingRepositoryURLConstant + "\n" +
		"  subdirectory: vendor\n" +
		"  conflict_policy: incoming\n" +
		"  workspace: " + workspaceDirectory + "\n"
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))

	executionError := fixture.execute(testAssumeYesFlagConstant, "--config="+configurationPath)

	cloneError := workspace.CloneError{}
	require.ErrorAs(testInstance, executionError, &cloneError)
	require.Equal(testInstance, testBaseRepositoryURLConstant, cloneError.SourceURL)
	require.Contains(testInstance, fixture.runner.recorded()[0].Details.Arguments, filepath.Join(workspaceDirectory, "base_repo"))
}

func TestApplicationRejectsUnknownConfiguredPolicy(testInstance *testing.T) {
	fixture := newApplicationFixture(testInstance)
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte("merge:\n  conflict_policy: theirs-please\n"), 0o600))

	executionError := fixture.execute(testAssumeYesFlagConstant, "--config="+configurationPath)

	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unknown conflict policy")
	require.Empty(testInstance, fixture.runner.recorded())
}

func TestApplicationLogFileCarriesSessionIdentifier(testInstance *testing.T) {
	fixture := newApplicationFixture(testInstance)
	logFilePath := filepath.Join(testInstance.TempDir(), testLogFileNameConstant)

	_ = fixture.execute(
		testAssumeYesFlagConstant,
		testSubdirectoryFlagConstant,
		testWorkspaceFlagTemplateConstant+testInstance.TempDir(),
		"--logfile="+logFilePath,
		testBaseRepositoryURLConstant,
		testIncomingRepositoryURLConstant,
	)

	logContent, readError := os.ReadFile(logFilePath)
	require.NoError(testInstance, readError)

	logLines := strings.Split(strings.TrimSpace(string(logContent)), "\n")
	require.NotEmpty(testInstance, logLines)
	recordedMessages := []string{}
	for _, logLine := range logLines {
		entry := map[string]any{}
		require.NoError(testInstance, json.Unmarshal([]byte(logLine), &entry))
		require.Equal(testInstance, testSessionIdentifierConstant, entry[testLogFileSessionKeyConstant])
		recordedMessages = append(recordedMessages, entry[testLogFileMessageKeyConstant].(string))
	}
	require.Contains(testInstance, recordedMessages, "Merge session started")
	require.Contains(testInstance, recordedMessages, "Merge session finished")
}
