// Package flags formats usage text for enumerated command-line flags.
package flags

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const (
	choicePlaceholderPrefix  = "<"
	choicePlaceholderSuffix  = ">"
	choiceSeparatorLiteral   = "|"
	choiceUsageEmptyTemplate = "`%s`"
	choiceUsageFullTemplate  = "`%s` %s"
)

// FormatChoiceUsage renders choices as a placeholder with the default option upper-cased, followed by description.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))

	trimmedChoices := lo.Filter(lo.Map(choices, func(choice string, _ int) string {
		return strings.TrimSpace(choice)
	}), func(choice string, _ int) bool {
		return len(choice) > 0
	})
	uniqueChoices := lo.UniqBy(trimmedChoices, strings.ToLower)

	return lo.Map(uniqueChoices, func(choice string, _ int) string {
		if len(normalizedDefault) > 0 && strings.ToLower(choice) == normalizedDefault {
			return strings.ToUpper(choice)
		}
		return choice
	})
}
