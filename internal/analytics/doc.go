// Package analytics records every external command a merge session runs.
//
// Recorder observes the shell executor and appends one ExecutionRecord per
// finished command to a Log. The log only feeds reporting: RenderTable draws
// the console summary and WriteYAML exports the records for later inspection.
package analytics
