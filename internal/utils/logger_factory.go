package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	logFileOpenErrorTemplateConstant     = "unable to open log file %s: %w"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LoggerOptions configures a logger built by LoggerFactory.
type LoggerOptions struct {
	Level  LogLevel
	Format LogFormat
	// LogFilePath, when set, receives every entry at debug level as JSON lines appended to the file.
	LogFilePath string
	// Output receives console or structured entries; nil selects standard error.
	Output zapcore.WriteSyncer
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct{}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger honoring the requested options together with a function releasing the log file.
func (factory *LoggerFactory) CreateLogger(options LoggerOptions) (*zap.Logger, func(), error) {
	zapLogLevel, levelExists := logLevelMapping[LogLevel(strings.ToLower(strings.TrimSpace(string(options.Level))))]
	if !levelExists {
		return nil, nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, options.Level)
	}

	encoder, encoderError := buildEncoder(options.Format)
	if encoderError != nil {
		return nil, nil, encoderError
	}

	output := options.Output
	if output == nil {
		output = zapcore.Lock(os.Stderr)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, output, zap.NewAtomicLevelAt(zapLogLevel))}
	closeLogFile := func() {}

	if logFilePath := strings.TrimSpace(options.LogFilePath); len(logFilePath) > 0 {
		fileSink, closeFile, openError := zap.Open(logFilePath)
		if openError != nil {
			return nil, nil, fmt.Errorf(logFileOpenErrorTemplateConstant, logFilePath, openError)
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, fileSink, zap.NewAtomicLevelAt(zapcore.DebugLevel)))
		closeLogFile = closeFile
	}

	return zap.New(zapcore.NewTee(cores...)), closeLogFile, nil
}

func buildEncoder(format LogFormat) (zapcore.Encoder, error) {
	switch LogFormat(strings.ToLower(strings.TrimSpace(string(format)))) {
	case LogFormatStructured:
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), nil
	case LogFormatConsole:
		encoderConfiguration := zap.NewDevelopmentEncoderConfig()
		encoderConfiguration.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfiguration.CallerKey = zapcore.OmitKey
		return zapcore.NewConsoleEncoder(encoderConfiguration), nil
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, format)
	}
}
