package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	environmentAssignmentTemplateConstant = "%s=%s"
	processWaitDelayConstant              = 2 * time.Second
)

// OSCommandRunner runs commands as child processes. Streamed commands share the runner's terminal streams.
type OSCommandRunner struct {
	terminalInput  io.Reader
	terminalOutput io.Writer
	terminalError  io.Writer
}

// NewOSCommandRunner returns a runner attached to the process's own standard streams.
func NewOSCommandRunner() *OSCommandRunner {
	return NewOSCommandRunnerWithStreams(os.Stdin, os.Stdout, os.Stderr)
}

// NewOSCommandRunnerWithStreams returns a runner whose streamed commands use the supplied streams. Nil writers discard.
func NewOSCommandRunnerWithStreams(input io.Reader, output io.Writer, errorOutput io.Writer) *OSCommandRunner {
	runner := &OSCommandRunner{terminalInput: input, terminalOutput: output, terminalError: errorOutput}
	if runner.terminalOutput == nil {
		runner.terminalOutput = io.Discard
	}
	if runner.terminalError == nil {
		runner.terminalError = io.Discard
	}
	return runner
}

// Run starts the command and waits for it. A non-zero exit is reported through ExecutionResult.ExitCode;
// the error is reserved for commands that could not be started or were killed by the context.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := exec.CommandContext(executionContext, string(command.Name), slices.Clone(command.Details.Arguments)...)
	process.Dir = command.Details.WorkingDirectory
	process.Env = processEnvironment(command.Details.EnvironmentVariables)
	// Descendants that inherit the output pipes must not hold Run open after the child exits.
	process.WaitDelay = processWaitDelayConstant
	if !command.Details.StreamOutput && !runner.attachedToTerminal() {
		isolateProcessGroup(process)
	}

	capturedOutput := &bytes.Buffer{}
	capturedError := &bytes.Buffer{}
	errorDestinations := []io.Writer{capturedError}

	var progressLines *lineSplittingWriter
	if command.Details.StandardErrorLineHandler != nil {
		progressLines = newLineSplittingWriter(command.Details.StandardErrorLineHandler)
		errorDestinations = append(errorDestinations, progressLines)
	}

	switch {
	case command.Details.StreamOutput:
		process.Stdout = runner.terminalOutput
		errorDestinations = append(errorDestinations, runner.terminalError)
		process.Stdin = runner.terminalInput
	default:
		process.Stdout = capturedOutput
	}
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}
	process.Stderr = io.MultiWriter(errorDestinations...)

	runError := process.Run()
	if progressLines != nil {
		progressLines.Flush()
	}

	result := ExecutionResult{StandardOutput: capturedOutput.String(), StandardError: capturedError.String()}
	if runError == nil {
		return result, nil
	}
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}
	var exitError *exec.ExitError
	if !errors.As(runError, &exitError) {
		return ExecutionResult{}, runError
	}
	result.ExitCode = exitError.ExitCode()
	return result, nil
}

// attachedToTerminal reports whether the runner reads from a terminal. Children stay in the foreground
// process group then so git can prompt for credentials on the terminal.
func (runner *OSCommandRunner) attachedToTerminal() bool {
	inputFile, isFile := runner.terminalInput.(*os.File)
	return isFile && term.IsTerminal(int(inputFile.Fd()))
}

// processEnvironment appends overrides to the inherited environment in key order. Nil keeps the inherited environment.
func processEnvironment(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}
	environment := os.Environ()
	for _, variableName := range slices.Sorted(maps.Keys(overrides)) {
		environment = append(environment, fmt.Sprintf(environmentAssignmentTemplateConstant, variableName, overrides[variableName]))
	}
	return environment
}

// lineSplittingWriter forwards complete lines to a handler; git progress output separates updates with carriage returns.
type lineSplittingWriter struct {
	handler func(line string)
	pending []byte
	mutex   sync.Mutex
}

func newLineSplittingWriter(handler func(line string)) *lineSplittingWriter {
	return &lineSplittingWriter{handler: handler}
}

func (writer *lineSplittingWriter) Write(data []byte) (int, error) {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	for _, character := range data {
		if character == '\n' || character == '\r' {
			writer.emit()
			continue
		}
		writer.pending = append(writer.pending, character)
	}
	return len(data), nil
}

// Flush emits any trailing partial line.
func (writer *lineSplittingWriter) Flush() {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()
	writer.emit()
}

func (writer *lineSplittingWriter) emit() {
	if len(writer.pending) == 0 {
		return
	}
	line := string(writer.pending)
	writer.pending = writer.pending[:0]
	writer.handler(line)
}
