package analytics

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

const (
	reportTitleConstant           = "Analytics"
	commandHeaderConstant         = "Command"
	durationHeaderConstant        = "Time (s)"
	successHeaderConstant         = "Success"
	successMarkerConstant         = "✅"
	failureMarkerConstant         = "❌"
	durationFormatConstant        = "%.2f"
	emptyReportMessageConstant    = "No commands were executed."
	yamlIndentConstant            = 2
	reportSeparatorConstant       = "\n"
	durationColumnIndexConstant   = 1
	cellHorizontalPaddingConstant = 1
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, cellHorizontalPaddingConstant)
	cellStyle   = lipgloss.NewStyle().Padding(0, cellHorizontalPaddingConstant)
)

type yamlDocument struct {
	Commands []ExecutionRecord `yaml:"commands"`
}

// RenderTable draws the command log as a titled console table.
func RenderTable(records []ExecutionRecord) string {
	if len(records) == 0 {
		return titleStyle.Render(reportTitleConstant) + reportSeparatorConstant + emptyReportMessageConstant
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		marker := failureMarkerConstant
		if record.Succeeded {
			marker = successMarkerConstant
		}
		rows = append(rows, []string{record.Command, fmt.Sprintf(durationFormatConstant, record.DurationSeconds), marker})
	}

	renderedTable := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(commandHeaderConstant, durationHeaderConstant, successHeaderConstant).
		Rows(rows...).
		StyleFunc(func(row int, column int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if column == durationColumnIndexConstant {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})

	return titleStyle.Render(reportTitleConstant) + reportSeparatorConstant + renderedTable.String()
}

// WriteYAML exports the command log under a top-level commands key.
func WriteYAML(writer io.Writer, records []ExecutionRecord) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(yamlDocument{Commands: records}); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}
