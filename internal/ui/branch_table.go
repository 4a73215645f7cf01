package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/temirov/repomerge/internal/branches"
)

const (
	branchTableTitleConstant       = "Available Branches"
	branchColumnHeaderConstant     = "Branch"
	commitDateColumnHeaderConstant = "Last Commit Date"
	defaultBranchMarkerConstant    = " (default)"
	relativeAgeTemplateConstant    = "%s (%s)"
	commitTimestampLayoutConstant  = "2006-01-02 15:04:05 -0700"
	relativePastLabelConstant      = "ago"
	relativeFutureLabelConstant    = "from now"
	tableSeparatorConstant         = "\n"
	tableCellHorizontalPadding     = 1
)

var (
	tableTitleStyle  = lipgloss.NewStyle().Bold(true)
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, tableCellHorizontalPadding)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, tableCellHorizontalPadding)
)

// RenderBranchTable draws the branches of a description with their last commit dates relative to now.
func RenderBranchTable(description branches.Description, now time.Time) string {
	rows := make([][]string, 0, len(description.Branches))
	for _, branchInfo := range description.Branches {
		branchLabel := branchInfo.Name
		if branchInfo.Name == description.DefaultBranch {
			branchLabel += defaultBranchMarkerConstant
		}
		rows = append(rows, []string{branchLabel, describeCommitTimestamp(branchInfo.LastCommitTimestamp, now)})
	}

	renderedTable := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(branchColumnHeaderConstant, commitDateColumnHeaderConstant).
		Rows(rows...).
		StyleFunc(func(row int, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})

	return tableTitleStyle.Render(branchTableTitleConstant) + tableSeparatorConstant + renderedTable.String()
}

func describeCommitTimestamp(timestamp string, now time.Time) string {
	commitTime, parseError := time.Parse(commitTimestampLayoutConstant, timestamp)
	if parseError != nil {
		return timestamp
	}
	return fmt.Sprintf(relativeAgeTemplateConstant, timestamp, humanize.RelTime(commitTime, now, relativePastLabelConstant, relativeFutureLabelConstant))
}
