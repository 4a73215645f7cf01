// Package cli constructs the repo-merge command-line interface. It wires the
// Cobra root command, the Viper configuration loader and the zap logger, then
// assembles one merge session from the git adapters, the working area
// manager and the interactive or preset decision source.
package cli
