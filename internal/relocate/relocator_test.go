package relocate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/repomerge/internal/relocate"
)

const (
	testRepositoryPathConstant = "/workspace/merge_repo"
	testSubdirectoryConstant   = "vendor"
)

type recordingRelocationTool struct {
	invocations int
	failure     error
}

func (tool *recordingRelocationTool) MoveHistoryToSubdirectory(context.Context, string, string) error {
	tool.invocations++
	return tool.failure
}

type staticTreeInspector struct {
	paths   []string
	failure error
}

func (inspector staticTreeInspector) HeadPaths(string) ([]string, error) {
	return inspector.paths, inspector.failure
}

func TestNewRelocatorValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name        string
		logger      *zap.Logger
		tool        relocate.HistoryRelocationTool
		inspector   relocate.TreeInspector
		expectError error
	}{
		{name: "missing_logger", tool: &recordingRelocationTool{}, inspector: staticTreeInspector{}, expectError: relocate.ErrLoggerNotConfigured},
		{name: "missing_tool", logger: zap.NewNop(), inspector: staticTreeInspector{}, expectError: relocate.ErrToolNotConfigured},
		{name: "missing_inspector", logger: zap.NewNop(), tool: &recordingRelocationTool{}, expectError: relocate.ErrInspectorNotConfigured},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			relocator, creationError := relocate.NewRelocator(testCase.logger, testCase.tool, testCase.inspector)
			require.Nil(testInstance, relocator)
			require.ErrorIs(testInstance, creationError, testCase.expectError)
		})
	}
}

func TestRelocateRunsToolOnceAndVerifiesTree(testInstance *testing.T) {
	testCases := []struct {
		name              string
		toolFailure       error
		headPaths         []string
		expectFailure     bool
		expectedToolCalls int
	}{
		{
			name:              "relocated",
			headPaths:         []string{"vendor/b.txt", "vendor/docs/readme.md"},
			expectedToolCalls: 1,
		},
		{
			name:              "tool_failure_is_not_retried",
			toolFailure:       errors.New("git-filter-repo failed with exit code 2"),
			expectFailure:     true,
			expectedToolCalls: 1,
		},
		{
			name:              "paths_left_outside",
			headPaths:         []string{"vendor/b.txt", "stray.txt"},
			expectFailure:     true,
			expectedToolCalls: 1,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			tool := &recordingRelocationTool{failure: testCase.toolFailure}
			relocator, creationError := relocate.NewRelocator(zap.NewNop(), tool, staticTreeInspector{paths: testCase.headPaths})
			require.NoError(testInstance, creationError)

			relocationError := relocator.Relocate(context.Background(), testRepositoryPathConstant, testSubdirectoryConstant)
			require.Equal(testInstance, testCase.expectedToolCalls, tool.invocations)
			if !testCase.expectFailure {
				require.NoError(testInstance, relocationError)
				return
			}
			var typedError relocate.RelocationError
			require.ErrorAs(testInstance, relocationError, &typedError)
			require.Equal(testInstance, testSubdirectoryConstant, typedError.Subdirectory)
		})
	}
}

func TestRelocateRejectsInvalidSubdirectoryWithoutRunningTool(testInstance *testing.T) {
	tool := &recordingRelocationTool{}
	relocator, creationError := relocate.NewRelocator(zap.NewNop(), tool, staticTreeInspector{})
	require.NoError(testInstance, creationError)

	relocationError := relocator.Relocate(context.Background(), testRepositoryPathConstant, "../escape")

	var subdirectoryError relocate.InvalidSubdirectoryError
	require.ErrorAs(testInstance, relocationError, &subdirectoryError)
	require.Zero(testInstance, tool.invocations)
}

func TestRelocateHonorsCancellation(testInstance *testing.T) {
	tool := &recordingRelocationTool{}
	relocator, creationError := relocate.NewRelocator(zap.NewNop(), tool, staticTreeInspector{})
	require.NoError(testInstance, creationError)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	relocationError := relocator.Relocate(cancelledContext, testRepositoryPathConstant, testSubdirectoryConstant)
	require.ErrorIs(testInstance, relocationError, context.Canceled)
	require.Zero(testInstance, tool.invocations)
}

func TestIsRelocated(testInstance *testing.T) {
	testCases := []struct {
		name     string
		paths    []string
		expected bool
	}{
		{name: "all_under_subdirectory", paths: []string{"vendor/a.txt", "vendor/b/c.txt"}, expected: true},
		{name: "mixed", paths: []string{"vendor/a.txt", "a.txt"}, expected: false},
		{name: "prefix_without_separator", paths: []string{"vendored.txt"}, expected: false},
		{name: "empty_tree", paths: []string{}, expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			relocator, creationError := relocate.NewRelocator(zap.NewNop(), &recordingRelocationTool{}, staticTreeInspector{paths: testCase.paths})
			require.NoError(testInstance, creationError)

			relocated, inspectionError := relocator.IsRelocated(testRepositoryPathConstant, testSubdirectoryConstant)
			require.NoError(testInstance, inspectionError)
			require.Equal(testInstance, testCase.expected, relocated)
		})
	}
}

func TestValidateSubdirectory(testInstance *testing.T) {
	testCases := []struct {
		name         string
		subdirectory string
		expectValid  bool
	}{
		{name: "simple", subdirectory: "vendor", expectValid: true},
		{name: "nested", subdirectory: "third_party/widgets", expectValid: true},
		{name: "empty", subdirectory: " "},
		{name: "absolute", subdirectory: "/vendor"},
		{name: "parent_segment", subdirectory: "vendor/../other"},
		{name: "trailing_separator", subdirectory: "vendor/"},
		{name: "current_directory", subdirectory: "."},
		{name: "flag_like", subdirectory: "--force"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			validationError := relocate.ValidateSubdirectory(testCase.subdirectory)
			if testCase.expectValid {
				require.NoError(testInstance, validationError)
				return
			}
			require.Error(testInstance, validationError)
		})
	}
}

func TestCountPathsUnder(testInstance *testing.T) {
	paths := []string{"a.txt", "vendor/b.txt", "vendor/c/d.txt", "vendorless.txt"}
	require.Equal(testInstance, 2, relocate.CountPathsUnder(paths, testSubdirectoryConstant))
}
