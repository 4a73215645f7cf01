package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandFailedTemplateConstant             = "%s failed with exit code %d"
	commandFailedWithErrorTemplateConstant    = "%s failed with exit code %d: %s"
	commandExecutionFailedTemplateConstant    = "%s could not be executed: %v"
	commandLabelSeparatorConstant             = " "
	logFieldCommandConstant                   = "command"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldDurationConstant                  = "duration"
	logFieldStandardOutputConstant            = "output"
	logFieldStandardErrorConstant             = "error_output"
	logFieldStreamedConstant                  = "streamed"
)

// CommandName identifies an executable supported by the executor.
type CommandName string

// Supported executables.
const (
	CommandGit        CommandName = CommandName("git")
	CommandFilterRepo CommandName = CommandName("git-filter-repo")
)

// CommandDetails describes the arguments and environment of a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	// StreamOutput sends standard output to the terminal instead of capturing it.
	StreamOutput bool
	// StandardErrorLineHandler receives each standard error line as it is produced.
	StandardErrorLineHandler func(line string)
}

// ShellCommand couples an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// String renders the command line without the working directory.
func (command ShellCommand) String() string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandParts, commandLabelSeparatorConstant)
}

// ExecutionResult captures the observable outcome of a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
	Duration       time.Duration
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandEventObserver is told when a command starts, when it returns a result,
// and when it could not be run at all. Only one of the last two fires per command.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	CommandExecutionFailed(command ShellCommand, failure error)
}

var (
	// ErrLoggerNotConfigured indicates a nil logger was supplied.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates a nil runner was supplied.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a command that exited with a non-zero status.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command, its exit code, and its error output.
func (failure CommandFailedError) Error() string {
	standardError := strings.TrimSpace(failure.Result.StandardError)
	if len(standardError) == 0 {
		return fmt.Sprintf(commandFailedTemplateConstant, failure.Command.String(), failure.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedWithErrorTemplateConstant, failure.Command.String(), failure.Result.ExitCode, standardError)
}

// CommandExecutionError reports a command that could not be run to completion.
type CommandExecutionError struct {
	Command  ShellCommand
	Cause    error
	Duration time.Duration
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailedTemplateConstant, failure.Command.String(), failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor runs commands through a CommandRunner, logging and notifying observers about each invocation.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observers []CommandEventObserver
	formatter CommandMessageFormatter
	clock     func() time.Time
}

// NewShellExecutor constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	registeredObservers := make([]CommandEventObserver, 0, len(observers))
	for _, observer := range observers {
		if observer != nil {
			registeredObservers = append(registeredObservers, observer)
		}
	}

	return &ShellExecutor{
		logger:    logger,
		runner:    runner,
		observers: registeredObservers,
		formatter: CommandMessageFormatter{},
		clock:     time.Now,
	}, nil
}

// AddObserver registers an additional observer for subsequent commands.
func (executor *ShellExecutor) AddObserver(observer CommandEventObserver) {
	if observer == nil {
		return
	}
	executor.observers = append(executor.observers, observer)
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteFilterRepo runs git-filter-repo with the provided details.
func (executor *ShellExecutor) ExecuteFilterRepo(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandFilterRepo, Details: details})
}

// Execute runs the command and converts non-zero exit codes into CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}

	executor.notifyStarted(command)
	executor.logger.Debug(
		executor.formatter.BuildStartedMessage(command),
		zap.String(logFieldCommandConstant, command.String()),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
		zap.Bool(logFieldStreamedConstant, command.Details.StreamOutput),
	)

	startedAt := executor.clock()
	result, runError := executor.runner.Run(executionContext, command)
	elapsed := executor.clock().Sub(startedAt)

	if runError == nil && result.ExitCode != 0 && executionContext.Err() != nil {
		runError = executionContext.Err()
	}

	if runError != nil {
		executionError := CommandExecutionError{Command: command, Cause: runError, Duration: elapsed}
		executor.logger.Debug(
			executor.formatter.BuildExecutionFailureMessage(command, runError),
			zap.String(logFieldCommandConstant, command.String()),
			zap.Duration(logFieldDurationConstant, elapsed),
			zap.Error(runError),
		)
		executor.notifyExecutionFailed(command, executionError)
		return ExecutionResult{}, executionError
	}

	result.Duration = elapsed
	if command.Details.StreamOutput {
		result.StandardOutput = ""
	} else {
		result.StandardOutput = strings.TrimSpace(result.StandardOutput)
	}

	executor.notifyCompleted(command, result)

	if result.ExitCode != 0 {
		executor.logger.Debug(
			executor.formatter.BuildFailureMessage(command, result),
			zap.String(logFieldCommandConstant, command.String()),
			zap.Int(logFieldExitCodeConstant, result.ExitCode),
			zap.Duration(logFieldDurationConstant, elapsed),
			zap.String(logFieldStandardOutputConstant, result.StandardOutput),
			zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)),
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: result}
	}

	executor.logger.Debug(
		executor.formatter.BuildSuccessMessage(command),
		zap.String(logFieldCommandConstant, command.String()),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.Duration(logFieldDurationConstant, elapsed),
		zap.String(logFieldStandardOutputConstant, result.StandardOutput),
	)

	return result, nil
}

func (executor *ShellExecutor) notifyStarted(command ShellCommand) {
	for _, observer := range executor.observers {
		observer.CommandStarted(command)
	}
}

func (executor *ShellExecutor) notifyCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range executor.observers {
		observer.CommandCompleted(command, result)
	}
}

func (executor *ShellExecutor) notifyExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range executor.observers {
		observer.CommandExecutionFailed(command, failure)
	}
}

// IsCommandFailure reports whether the error stems from a non-zero exit code and returns the failure.
func IsCommandFailure(candidate error) (CommandFailedError, bool) {
	var commandFailure CommandFailedError
	if errors.As(candidate, &commandFailure) {
		return commandFailure, true
	}
	return CommandFailedError{}, false
}
