package utils_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/repomerge/internal/utils"
)

const (
	testLogMessageConstant        = "Merge session started"
	testDebugLogMessageConstant   = "configuration initialized"
	testLogFileNameConstant       = "repo-merge.log"
	testExistingLogLineConstant   = "{\"msg\":\"previous run\"}\n"
	testLogFileMessageKeyConstant = "msg"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name              string
		level             utils.LogLevel
		format            utils.LogFormat
		expectedError     string
		expectJSON        bool
		expectInfoWritten bool
	}{
		{name: "structured_debug", level: utils.LogLevelDebug, format: utils.LogFormatStructured, expectJSON: true, expectInfoWritten: true},
		{name: "console_info", level: utils.LogLevelInfo, format: utils.LogFormatConsole, expectInfoWritten: true},
		{name: "console_warn_drops_info", level: utils.LogLevelWarn, format: utils.LogFormatConsole},
		{name: "level_is_normalized", level: utils.LogLevel("  INFO "), format: utils.LogFormatStructured, expectJSON: true, expectInfoWritten: true},
		{name: "unknown_level", level: utils.LogLevel("chatty"), format: utils.LogFormatStructured, expectedError: "chatty"},
		{name: "unknown_format", level: utils.LogLevelInfo, format: utils.LogFormat("xml"), expectedError: "xml"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			logger, closeLogFile, creationError := utils.NewLoggerFactory().CreateLogger(utils.LoggerOptions{
				Level:  testCase.level,
				Format: testCase.format,
				Output: zapcore.AddSync(outputBuffer),
			})

			if len(testCase.expectedError) > 0 {
				require.ErrorContains(testInstance, creationError, testCase.expectedError)
				require.Nil(testInstance, logger)
				return
			}
			require.NoError(testInstance, creationError)
			defer closeLogFile()

			logger.Info(testLogMessageConstant)
			require.NoError(testInstance, logger.Sync())

			writtenOutput := bytes.TrimSpace(outputBuffer.Bytes())
			if !testCase.expectInfoWritten {
				require.Empty(testInstance, writtenOutput)
				return
			}
			require.Contains(testInstance, string(writtenOutput), testLogMessageConstant)
			require.Equal(testInstance, testCase.expectJSON, json.Valid(writtenOutput))
		})
	}
}

func TestLoggerFactoryTeesDebugEntriesIntoLogFile(testInstance *testing.T) {
	logFilePath := filepath.Join(testInstance.TempDir(), testLogFileNameConstant)
	require.NoError(testInstance, os.WriteFile(logFilePath, []byte(testExistingLogLineConstant), 0o600))

	consoleBuffer := &bytes.Buffer{}
	logger, closeLogFile, creationError := utils.NewLoggerFactory().CreateLogger(utils.LoggerOptions{
		Level:       utils.LogLevelWarn,
		Format:      utils.LogFormatConsole,
		LogFilePath: logFilePath,
		Output:      zapcore.AddSync(consoleBuffer),
	})
	require.NoError(testInstance, creationError)

	logger.Debug(testDebugLogMessageConstant)
	logger.Warn(testLogMessageConstant)
	_ = logger.Sync()
	closeLogFile()

	require.NotContains(testInstance, consoleBuffer.String(), testDebugLogMessageConstant)
	require.Contains(testInstance, consoleBuffer.String(), testLogMessageConstant)

	logFile, openError := os.Open(logFilePath)
	require.NoError(testInstance, openError)
	defer logFile.Close()

	recordedMessages := []string{}
	scanner := bufio.NewScanner(logFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		entry := map[string]any{}
		require.NoError(testInstance, json.Unmarshal([]byte(line), &entry))
		recordedMessages = append(recordedMessages, fmt.Sprint(entry[testLogFileMessageKeyConstant]))
	}
	require.NoError(testInstance, scanner.Err())
	require.Equal(testInstance, []string{"previous run", testDebugLogMessageConstant, testLogMessageConstant}, recordedMessages)
}
