package analytics_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repomerge/internal/analytics"
	"github.com/temirov/repomerge/internal/execshell"
)

const (
	testCloneArgumentsConstant = "clone --progress https://example.com/base.git /workspace/base_repo"
	testMergeArgumentsConstant = "merge merge_repo/main"
)

func newCommand(arguments string) execshell.ShellCommand {
	return execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: strings.Fields(arguments)}}
}

type steppingClock struct {
	current time.Time
	step    time.Duration
}

func (clock *steppingClock) now() time.Time {
	reading := clock.current
	clock.current = clock.current.Add(clock.step)
	return reading
}

func TestRecorderAppendsRecordsInOrder(testInstance *testing.T) {
	commandLog := analytics.NewLog()
	clock := &steppingClock{current: time.Unix(0, 0), step: 1500 * time.Millisecond}
	recorder := analytics.NewRecorder(commandLog, clock.now)

	cloneCommand := newCommand(testCloneArgumentsConstant)
	recorder.CommandStarted(cloneCommand)
	recorder.CommandCompleted(cloneCommand, execshell.ExecutionResult{ExitCode: 0, Duration: 2 * time.Second})

	mergeCommand := newCommand(testMergeArgumentsConstant)
	recorder.CommandStarted(mergeCommand)
	recorder.CommandCompleted(mergeCommand, execshell.ExecutionResult{ExitCode: 1, Duration: 250 * time.Millisecond})

	pushCommand := newCommand("push origin HEAD")
	recorder.CommandStarted(pushCommand)
	recorder.CommandExecutionFailed(pushCommand, errors.New("signal: killed"))

	require.Equal(testInstance, []analytics.ExecutionRecord{
		{Command: "git " + testCloneArgumentsConstant, Succeeded: true, DurationSeconds: 2},
		{Command: "git " + testMergeArgumentsConstant, Succeeded: false, DurationSeconds: 0.25},
		{Command: "git push origin HEAD", Succeeded: false, DurationSeconds: 1.5},
	}, commandLog.Records())
}

func TestRecordsReturnsCopy(testInstance *testing.T) {
	commandLog := analytics.NewLog()
	commandLog.Append(analytics.ExecutionRecord{Command: "git fetch merge_repo", Succeeded: true})

	records := commandLog.Records()
	records[0].Command = "mutated"

	require.Equal(testInstance, "git fetch merge_repo", commandLog.Records()[0].Command)
}

func TestRenderTable(testInstance *testing.T) {
	testCases := []struct {
		name             string
		records          []analytics.ExecutionRecord
		expectedFragments []string
	}{
		{
			name: "mixed_results",
			records: []analytics.ExecutionRecord{
				{Command: "git clone --progress base", Succeeded: true, DurationSeconds: 1.234},
				{Command: "git merge merge_repo/main", Succeeded: false, DurationSeconds: 0.5},
			},
			expectedFragments: []string{"Analytics", "Command", "Time (s)", "Success", "git clone --progress base", "1.23", "0.50", "✅", "❌"},
		},
		{
			name:              "empty",
			expectedFragments: []string{"Analytics", "No commands were executed."},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rendered := analytics.RenderTable(testCase.records)
			for _, fragment := range testCase.expectedFragments {
				require.Contains(testInstance, rendered, fragment)
			}
		})
	}
}

func TestWriteYAMLExportsCommands(testInstance *testing.T) {
	records := []analytics.ExecutionRecord{{Command: "git clone base", Succeeded: true, DurationSeconds: 0.75}}
	var buffer bytes.Buffer

	require.NoError(testInstance, analytics.WriteYAML(&buffer, records))

	var decoded struct {
		Commands []analytics.ExecutionRecord `yaml:"commands"`
	}
	require.NoError(testInstance, yaml.Unmarshal(buffer.Bytes(), &decoded))
	require.Equal(testInstance, records, decoded.Commands)
	require.Contains(testInstance, buffer.String(), "duration_seconds: 0.75")
}
