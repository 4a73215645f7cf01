// Package ui renders repo-merge console output.
//
// ConsoleCommandEventLogger narrates external commands at info level,
// CloneProgressRenderer draws clone progress bars and RenderBranchTable lists
// the branches an operator can merge. Detailed telemetry keeps flowing through
// the structured logger.
package ui
