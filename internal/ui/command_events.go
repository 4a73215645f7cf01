package ui

import (
	"go.uber.org/zap"

	"github.com/temirov/repomerge/internal/execshell"
)

const (
	commandEventExitCodeFieldConstant = "exit_code"
	commandEventDurationFieldConstant = "duration"
)

// ConsoleCommandEventLogger narrates external commands on the console logger when --verbose is set.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger returns an observer writing to logger; a nil logger discards everything.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger}
}

func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted logs successful commands at info and non-zero exits at warn.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	durationField := zap.Duration(commandEventDurationFieldConstant, result.Duration)
	if result.ExitCode != 0 {
		eventLogger.logger.Warn(
			eventLogger.formatter.BuildFailureMessage(command, result),
			zap.Int(commandEventExitCodeFieldConstant, result.ExitCode),
			durationField,
		)
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command), durationField)
}

func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
