// Package utils exposes the ambient helpers of the repo-merge CLI.
//
// ConfigurationLoader layers the embedded defaults, an optional configuration
// file, prefixed environment variables and explicit environment aliases
// through Viper. LoggerFactory builds the zap logger, optionally teeing every
// entry into a JSON log file.
package utils
