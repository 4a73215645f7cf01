package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/samber/lo"

	"github.com/temirov/repomerge/internal/branches"
	"github.com/temirov/repomerge/internal/session"
	"github.com/temirov/repomerge/internal/ui"
)

const (
	baseRepositoryTitleConstant      = "Base repo URL"
	incomingRepositoryTitleConstant  = "Repo to merge in"
	subdirectoryTitleConstant        = "Subdirectory to move merged code into"
	incomingBranchTitleConstant      = "Select branch to merge"
	baseBranchTitleConstant          = "Target branch to merge into"
	showDiffTitleConstant            = "Show diff before merge?"
	publishTitleConstant             = "Push to origin?"
	conflictTitleTemplateConstant    = "Resolve conflicts in subdir '%s' of %s, then continue"
	conflictedPathsHeaderConstant    = "Conflicted paths:"
	conflictedPathLinePrefixConstant = "  - "
	resolvedAffirmativeConstant      = "Resolved"
	abortNegativeConstant            = "Abort"
	yesAffirmativeConstant           = "Yes"
	noNegativeConstant               = "No"
	requiredValueMessageConstant     = "value required"
	lineSeparatorConstant            = "\n"
)

// FormRunner runs a huh form to completion.
type FormRunner func(executionContext context.Context, form *huh.Form) error

// ConsoleDecisionSource asks the operator through huh forms.
type ConsoleDecisionSource struct {
	input  io.Reader
	output io.Writer
	run    FormRunner
	clock  func() time.Time
}

// NewConsoleDecisionSource constructs a ConsoleDecisionSource reading from input and drawing to output.
// A nil runner runs forms on the supplied streams; a nil clock selects time.Now.
func NewConsoleDecisionSource(input io.Reader, output io.Writer, runner FormRunner, clock func() time.Time) *ConsoleDecisionSource {
	source := &ConsoleDecisionSource{input: input, output: output, run: runner, clock: clock}
	if source.run == nil {
		source.run = source.runOnStreams
	}
	if source.clock == nil {
		source.clock = time.Now
	}
	return source
}

// BaseRepositoryURL asks for the repository receiving the merge.
func (source *ConsoleDecisionSource) BaseRepositoryURL(executionContext context.Context) (string, error) {
	return source.askText(executionContext, baseRepositoryTitleConstant, "")
}

// IncomingRepositoryURL asks for the repository being merged in.
func (source *ConsoleDecisionSource) IncomingRepositoryURL(executionContext context.Context) (string, error) {
	return source.askText(executionContext, incomingRepositoryTitleConstant, "")
}

// Subdirectory asks where the incoming history should live.
func (source *ConsoleDecisionSource) Subdirectory(executionContext context.Context, defaultSubdirectory string) (string, error) {
	return source.askText(executionContext, subdirectoryTitleConstant, defaultSubdirectory)
}

// IncomingBranch shows the branch table and asks which branch to merge.
func (source *ConsoleDecisionSource) IncomingBranch(executionContext context.Context, description branches.Description, defaultBranch string) (string, error) {
	if len(description.Branches) == 0 {
		return source.askText(executionContext, incomingBranchTitleConstant, defaultBranch)
	}

	fmt.Fprintln(source.output, ui.RenderBranchTable(description, source.clock()))

	selectedBranch := defaultBranch
	options := lo.Map(description.Names(), func(branchName string, _ int) huh.Option[string] {
		return huh.NewOption(branchName, branchName)
	})
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(incomingBranchTitleConstant).
			Options(options...).
			Value(&selectedBranch),
	))
	if runError := source.run(executionContext, form); runError != nil {
		return "", translateFormError(executionContext, runError)
	}
	return selectedBranch, nil
}

// BaseBranch asks which base branch receives the merge.
func (source *ConsoleDecisionSource) BaseBranch(executionContext context.Context, defaultBranch string) (string, error) {
	return source.askText(executionContext, baseBranchTitleConstant, defaultBranch)
}

// ConfirmDiff asks whether to show the diff before merging.
func (source *ConsoleDecisionSource) ConfirmDiff(executionContext context.Context) (bool, error) {
	return source.askConfirmation(executionContext, showDiffTitleConstant, false)
}

// ConfirmPublish asks whether to push the merge; the default answer is no.
func (source *ConsoleDecisionSource) ConfirmPublish(executionContext context.Context) (bool, error) {
	return source.askConfirmation(executionContext, publishTitleConstant, false)
}

// AwaitConflictResolution lists the conflicted paths and waits until the operator reports them resolved.
func (source *ConsoleDecisionSource) AwaitConflictResolution(executionContext context.Context, repositoryPath string, subdirectory string, conflictedPaths []string) error {
	pathLines := lo.Map(conflictedPaths, func(conflictedPath string, _ int) string {
		return conflictedPathLinePrefixConstant + conflictedPath
	})
	fmt.Fprintln(source.output, conflictedPathsHeaderConstant+lineSeparatorConstant+strings.Join(pathLines, lineSeparatorConstant))

	resolved := true
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf(conflictTitleTemplateConstant, subdirectory, repositoryPath)).
			Affirmative(resolvedAffirmativeConstant).
			Negative(abortNegativeConstant).
			Value(&resolved),
	))
	if runError := source.run(executionContext, form); runError != nil {
		return translateFormError(executionContext, runError)
	}
	if !resolved {
		return session.ErrUserAbort
	}
	return nil
}

func (source *ConsoleDecisionSource) askText(executionContext context.Context, title string, defaultValue string) (string, error) {
	answer := defaultValue
	input := huh.NewInput().
		Title(title).
		Value(&answer).
		Validate(func(value string) error {
			if len(strings.TrimSpace(value)) == 0 && len(defaultValue) == 0 {
				return errors.New(requiredValueMessageConstant)
			}
			return nil
		})
	if len(defaultValue) > 0 {
		input = input.Placeholder(defaultValue)
	}

	if runError := source.run(executionContext, huh.NewForm(huh.NewGroup(input))); runError != nil {
		return "", translateFormError(executionContext, runError)
	}
	if trimmedAnswer := strings.TrimSpace(answer); len(trimmedAnswer) > 0 {
		return trimmedAnswer, nil
	}
	return defaultValue, nil
}

func (source *ConsoleDecisionSource) askConfirmation(executionContext context.Context, title string, defaultAnswer bool) (bool, error) {
	answer := defaultAnswer
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative(yesAffirmativeConstant).
			Negative(noNegativeConstant).
			Value(&answer),
	))
	if runError := source.run(executionContext, form); runError != nil {
		return false, translateFormError(executionContext, runError)
	}
	return answer, nil
}

func (source *ConsoleDecisionSource) runOnStreams(executionContext context.Context, form *huh.Form) error {
	return form.WithInput(source.input).WithOutput(source.output).RunWithContext(executionContext)
}

func translateFormError(executionContext context.Context, runError error) error {
	if errors.Is(runError, huh.ErrUserAborted) || executionContext.Err() != nil {
		return session.ErrUserAbort
	}
	return runError
}
