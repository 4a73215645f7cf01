package execshell

import (
	"fmt"
	"slices"
	"strings"
)

const (
	narrativeStartTemplateConstant            = "%s %s"
	narrativeSuccessTemplateConstant          = "%s %s"
	narrativeFailureTemplateConstant          = "Failed to %s %s (exit code %d%s)"
	narrativeExecutionFailureTemplateConstant = "Unable to %s %s: %s"
	genericStartTemplateConstant              = "Running %s"
	genericSuccessTemplateConstant            = "Completed %s"
	genericFailureTemplateConstant            = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant   = "%s failed: %s"
	workingDirectorySuffixTemplateConstant    = " (in %s)"
	standardErrorSuffixTemplateConstant       = ": %s"
	unknownFailureMessageConstant             = "unknown error"
	currentDirectoryLabelConstant             = "current directory"
	unknownValueLabelConstant                 = "unknown"
	flagPrefixConstant                        = "-"
	argumentTerminatorConstant                = "--"
	diffRangeSeparatorConstant                = ".."
	diffStatSuffixConstant                    = " (stat)"
	diffWorkingTreeLabelConstant              = "working tree"
	preferredSideSuffixTemplateConstant       = " preferring %s changes"
	baseSideLabelConstant                     = "base"
	incomingSideLabelConstant                 = "incoming"
)

const (
	cloneSubjectTemplateConstant          = "%s into %s"
	conflictSideSubjectTemplateConstant   = "%s version of %s in %s"
	branchSwitchSubjectTemplateConstant   = "%s to branch %s"
	remoteRegisterSubjectTemplateConstant = "remote %s for %s in %s"
	remoteInspectSubjectTemplateConstant  = "remote %s from %s"
	fetchSubjectTemplateConstant          = "from %s in %s"
	mergeSubjectTemplateConstant          = "%s into %s%s"
	diffSubjectTemplateConstant           = "%s in %s"
	pushSubjectTemplateConstant           = "%s to %s from %s"
	historyGraphSubjectTemplateConstant   = "history graph of %s"
	remoteBranchesSubjectTemplateConstant = "remote branches in %s"
	mergeCommitSubjectTemplateConstant    = "merge in %s"
	relocationSubjectTemplateConstant     = "history of %s under %s"
)

// narrativeVerb holds the forms a lifecycle message needs: "Cloning", "Cloned" and "clone".
type narrativeVerb struct {
	progressive string
	past        string
	base        string
}

var (
	verbClone    = narrativeVerb{progressive: "Cloning", past: "Cloned", base: "clone"}
	verbTake     = narrativeVerb{progressive: "Taking", past: "Took", base: "take"}
	verbSwitch   = narrativeVerb{progressive: "Switching", past: "Switched", base: "switch"}
	verbRegister = narrativeVerb{progressive: "Registering", past: "Registered", base: "register"}
	verbInspect  = narrativeVerb{progressive: "Inspecting", past: "Inspected", base: "inspect"}
	verbFetch    = narrativeVerb{progressive: "Fetching", past: "Fetched", base: "fetch"}
	verbMerge    = narrativeVerb{progressive: "Merging", past: "Merged", base: "merge"}
	verbCompare  = narrativeVerb{progressive: "Comparing", past: "Compared", base: "compare"}
	verbPush     = narrativeVerb{progressive: "Pushing", past: "Pushed", base: "push"}
	verbRender   = narrativeVerb{progressive: "Rendering", past: "Rendered", base: "render"}
	verbList     = narrativeVerb{progressive: "Listing", past: "Listed", base: "list"}
	verbCommit   = narrativeVerb{progressive: "Committing", past: "Committed", base: "commit"}
	verbRelocate = narrativeVerb{progressive: "Relocating", past: "Relocated", base: "relocate"}
)

// commandNarrative is a recognized command phrased as a verb and what it acts on.
type commandNarrative struct {
	verb    narrativeVerb
	subject string
}

type narrativeRecognizer func(arguments []string, workingDirectory string) (commandNarrative, bool)

var gitNarrativeRecognizers = map[string]narrativeRecognizer{
	"clone":    recognizeClone,
	"checkout": recognizeCheckout,
	"remote":   recognizeRemote,
	"fetch":    recognizeFetch,
	"merge":    recognizeMerge,
	"diff":     recognizeDiff,
	"push":     recognizePush,
	"log":      recognizeHistoryGraph,
	"branch":   recognizeRemoteBranches,
	"commit":   recognizeMergeCommit,
}

// CommandMessageFormatter phrases command lifecycle events for people. Commands the merge workflow
// issues get a sentence; anything else is described by its command line.
type CommandMessageFormatter struct{}

func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	if narrative, recognized := narrate(command); recognized {
		return fmt.Sprintf(narrativeStartTemplateConstant, narrative.verb.progressive, narrative.subject)
	}
	return fmt.Sprintf(genericStartTemplateConstant, commandLabel(command))
}

func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	if narrative, recognized := narrate(command); recognized {
		return fmt.Sprintf(narrativeSuccessTemplateConstant, narrative.verb.past, narrative.subject)
	}
	return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel(command))
}

// BuildFailureMessage describes a non-zero exit and appends trimmed standard error when present.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	standardErrorSuffix := ""
	if trimmedError := strings.TrimSpace(result.StandardError); len(trimmedError) > 0 {
		standardErrorSuffix = fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedError)
	}
	if narrative, recognized := narrate(command); recognized {
		return fmt.Sprintf(narrativeFailureTemplateConstant, narrative.verb.base, narrative.subject, result.ExitCode, standardErrorSuffix)
	}
	return fmt.Sprintf(genericFailureTemplateConstant, commandLabel(command), result.ExitCode, standardErrorSuffix)
}

// BuildExecutionFailureMessage describes a command that could not be run at all.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	reason := unknownFailureMessageConstant
	if failure != nil {
		reason = failure.Error()
	}
	if narrative, recognized := narrate(command); recognized {
		return fmt.Sprintf(narrativeExecutionFailureTemplateConstant, narrative.verb.base, narrative.subject, reason)
	}
	return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel(command), reason)
}

func narrate(command ShellCommand) (commandNarrative, bool) {
	arguments := trimmedArguments(command.Details.Arguments)
	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		workingDirectory = currentDirectoryLabelConstant
	}

	switch command.Name {
	case CommandFilterRepo:
		subdirectory := orUnknown(flagValue(arguments, "--to-subdirectory-filter"))
		return commandNarrative{verb: verbRelocate, subject: fmt.Sprintf(relocationSubjectTemplateConstant, workingDirectory, subdirectory)}, true
	case CommandGit:
		if len(arguments) == 0 {
			return commandNarrative{}, false
		}
		recognizer, known := gitNarrativeRecognizers[arguments[0]]
		if !known {
			return commandNarrative{}, false
		}
		return recognizer(arguments, workingDirectory)
	default:
		return commandNarrative{}, false
	}
}

func recognizeClone(arguments []string, _ string) (commandNarrative, bool) {
	positional := positionalArguments(arguments[1:])
	subject := fmt.Sprintf(cloneSubjectTemplateConstant, orUnknown(argumentAt(positional, 0)), orUnknown(argumentAt(positional, 1)))
	return commandNarrative{verb: verbClone, subject: subject}, true
}

func recognizeCheckout(arguments []string, workingDirectory string) (commandNarrative, bool) {
	side := ""
	switch {
	case slices.Contains(arguments, "--ours"):
		side = baseSideLabelConstant
	case slices.Contains(arguments, "--theirs"):
		side = incomingSideLabelConstant
	}
	if len(side) > 0 {
		subject := fmt.Sprintf(conflictSideSubjectTemplateConstant, side, orUnknown(argumentAfterTerminator(arguments)), workingDirectory)
		return commandNarrative{verb: verbTake, subject: subject}, true
	}
	subject := fmt.Sprintf(branchSwitchSubjectTemplateConstant, workingDirectory, orUnknown(argumentAt(arguments, 1)))
	return commandNarrative{verb: verbSwitch, subject: subject}, true
}

func recognizeRemote(arguments []string, workingDirectory string) (commandNarrative, bool) {
	if len(arguments) < 3 {
		return commandNarrative{}, false
	}
	remoteName := orUnknown(arguments[2])
	switch arguments[1] {
	case "add", "set-url":
		subject := fmt.Sprintf(remoteRegisterSubjectTemplateConstant, remoteName, orUnknown(argumentAt(arguments, 3)), workingDirectory)
		return commandNarrative{verb: verbRegister, subject: subject}, true
	case "show":
		return commandNarrative{verb: verbInspect, subject: fmt.Sprintf(remoteInspectSubjectTemplateConstant, remoteName, workingDirectory)}, true
	default:
		return commandNarrative{}, false
	}
}

func recognizeFetch(arguments []string, workingDirectory string) (commandNarrative, bool) {
	remoteName := orUnknown(argumentAt(positionalArguments(arguments[1:]), 0))
	return commandNarrative{verb: verbFetch, subject: fmt.Sprintf(fetchSubjectTemplateConstant, remoteName, workingDirectory)}, true
}

func recognizeMerge(arguments []string, workingDirectory string) (commandNarrative, bool) {
	preferredSide := ""
	switch flagValue(arguments, "-X") {
	case "ours":
		preferredSide = fmt.Sprintf(preferredSideSuffixTemplateConstant, baseSideLabelConstant)
	case "theirs":
		preferredSide = fmt.Sprintf(preferredSideSuffixTemplateConstant, incomingSideLabelConstant)
	}
	reference := orUnknown(argumentAt(positionalArguments(arguments[1:]), 0))
	return commandNarrative{verb: verbMerge, subject: fmt.Sprintf(mergeSubjectTemplateConstant, reference, workingDirectory, preferredSide)}, true
}

func recognizeDiff(arguments []string, workingDirectory string) (commandNarrative, bool) {
	comparison := diffWorkingTreeLabelConstant
	if references := positionalArguments(arguments[1:]); len(references) > 0 {
		comparison = strings.Join(references, diffRangeSeparatorConstant)
	}
	if slices.Contains(arguments, "--stat") {
		comparison += diffStatSuffixConstant
	}
	return commandNarrative{verb: verbCompare, subject: fmt.Sprintf(diffSubjectTemplateConstant, comparison, workingDirectory)}, true
}

func recognizePush(arguments []string, workingDirectory string) (commandNarrative, bool) {
	positional := positionalArguments(arguments[1:])
	subject := fmt.Sprintf(pushSubjectTemplateConstant, orUnknown(argumentAt(positional, 1)), orUnknown(argumentAt(positional, 0)), workingDirectory)
	return commandNarrative{verb: verbPush, subject: subject}, true
}

func recognizeHistoryGraph(arguments []string, workingDirectory string) (commandNarrative, bool) {
	if !slices.Contains(arguments, "--graph") {
		return commandNarrative{}, false
	}
	return commandNarrative{verb: verbRender, subject: fmt.Sprintf(historyGraphSubjectTemplateConstant, workingDirectory)}, true
}

func recognizeRemoteBranches(arguments []string, workingDirectory string) (commandNarrative, bool) {
	if !slices.Contains(arguments, "-r") {
		return commandNarrative{}, false
	}
	return commandNarrative{verb: verbList, subject: fmt.Sprintf(remoteBranchesSubjectTemplateConstant, workingDirectory)}, true
}

func recognizeMergeCommit(arguments []string, workingDirectory string) (commandNarrative, bool) {
	if !slices.Contains(arguments, "--no-edit") {
		return commandNarrative{}, false
	}
	return commandNarrative{verb: verbCommit, subject: fmt.Sprintf(mergeCommitSubjectTemplateConstant, workingDirectory)}, true
}

// commandLabel renders "git ls-tree -r HEAD (in /path)" for commands without a narrative.
func commandLabel(command ShellCommand) string {
	label := command.String()
	if workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(workingDirectory) > 0 {
		label += fmt.Sprintf(workingDirectorySuffixTemplateConstant, workingDirectory)
	}
	return label
}

func trimmedArguments(arguments []string) []string {
	trimmed := make([]string, len(arguments))
	for index, argument := range arguments {
		trimmed[index] = strings.TrimSpace(argument)
	}
	return trimmed
}

// positionalArguments drops flags and the value following -X.
func positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		switch {
		case arguments[index] == "-X":
			index++
		case strings.HasPrefix(arguments[index], flagPrefixConstant):
		default:
			positional = append(positional, arguments[index])
		}
	}
	return positional
}

func argumentAt(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return ""
	}
	return arguments[index]
}

func argumentAfterTerminator(arguments []string) string {
	terminatorIndex := slices.Index(arguments, argumentTerminatorConstant)
	if terminatorIndex < 0 {
		return ""
	}
	return argumentAt(arguments, terminatorIndex+1)
}

func flagValue(arguments []string, flag string) string {
	flagIndex := slices.Index(arguments, flag)
	if flagIndex < 0 {
		return ""
	}
	return argumentAt(arguments, flagIndex+1)
}

func orUnknown(value string) string {
	if len(value) == 0 {
		return unknownValueLabelConstant
	}
	return value
}
