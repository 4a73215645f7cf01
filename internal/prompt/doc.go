// Package prompt answers the questions a merge session asks its operator.
//
// ConsoleDecisionSource asks through huh forms on an interactive terminal.
// PresetDecisionSource answers every question with its documented default and
// backs -y as well as non-interactive runs.
package prompt
