package merge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repomerge/internal/execshell"
	"github.com/temirov/repomerge/internal/gitrepo"
)

const (
	// IncomingRemoteName is the remote under which the base working copy sees the incoming working copy.
	IncomingRemoteName = "merge_repo"

	headReferenceConstant                   = "HEAD"
	unrelatedHistoriesMarkerConstant        = "unrelated histories"
	unrelatedHistoriesErrorTemplateConstant = "merge of %s refused for unrelated histories after retry: %v"
	conflictErrorTemplateConstant           = "resolving %d conflicted paths failed: %v"
	stepErrorTemplateConstant               = "%s: %w"
	checkoutStepConstant                    = "checkout base branch"
	linkStepConstant                        = "link incoming working copy"
	fetchStepConstant                       = "fetch incoming working copy"
	previewStepConstant                     = "preview merge"
	diffStepConstant                        = "show diff"
	awaitResolutionStepConstant             = "await conflict resolution"
	loggerNotConfiguredMessageConstant      = "merge logger not configured"
	clientNotConfiguredMessageConstant      = "merge version control client not configured"
	decisionsNotConfiguredMessageConstant   = "merge decision source not configured"
	logMessageMergeCleanConstant            = "Merge completed"
	logMessageUnrelatedRetryConstant        = "Merge refused for unrelated histories, retrying"
	logMessageConflictsDetectedConstant     = "Merge conflicts detected"
	logMessageConflictsPendingConstant      = "Merge conflicts left for manual resolution"
	logMessageConflictsRemainConstant       = "Conflicted paths remain"
	logMessageConflictsResolvedConstant     = "Merge conflicts resolved"
	logMessageConflictListingFailedConstant = "Unable to list conflicted paths"
	logMessageTakingSideFailedConstant      = "Conflict side unavailable, removing path"
	logMessageConflictPredictionConstant    = "Unable to predict conflicted paths"
	logFieldBaseRepositoryConstant          = "base_repository"
	logFieldReferenceConstant               = "reference"
	logFieldSubdirectoryConstant            = "subdirectory"
	logFieldConflictedPathsConstant         = "conflicted_paths"
	logFieldOutcomeConstant                 = "outcome"
	logFieldFilePathConstant                = "file_path"
	logFieldConflictSideConstant            = "conflict_side"
)

var (
	// ErrLoggerNotConfigured indicates a nil logger was supplied.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrClientNotConfigured indicates a nil version control client was supplied.
	ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)
	// ErrDecisionsNotConfigured indicates a nil decision source was supplied.
	ErrDecisionsNotConfigured = errors.New(decisionsNotConfiguredMessageConstant)
)

// UnrelatedHistoriesError reports a merge git kept refusing for unrelated histories.
type UnrelatedHistoriesError struct {
	Reference string
	Cause     error
}

// Error describes the refusal.
func (unrelatedError UnrelatedHistoriesError) Error() string {
	return fmt.Sprintf(unrelatedHistoriesErrorTemplateConstant, unrelatedError.Reference, unrelatedError.Cause)
}

// Unwrap exposes the underlying cause.
func (unrelatedError UnrelatedHistoriesError) Unwrap() error {
	return unrelatedError.Cause
}

// ConflictError reports conflicted paths that could not be resolved.
type ConflictError struct {
	Paths []string
	Cause error
}

// Error describes the unresolved conflicts.
func (conflictError ConflictError) Error() string {
	return fmt.Sprintf(conflictErrorTemplateConstant, len(conflictError.Paths), conflictError.Cause)
}

// Unwrap exposes the underlying cause.
func (conflictError ConflictError) Unwrap() error {
	return conflictError.Cause
}

// Dependencies wires the collaborators of an Orchestrator.
type Dependencies struct {
	Logger    *zap.Logger
	Client    VersionControlClient
	Decisions OperatorDecisions
}

// Orchestrator merges a relocated incoming working copy into the base working copy.
type Orchestrator struct {
	logger    *zap.Logger
	client    VersionControlClient
	decisions OperatorDecisions
}

// NewOrchestrator validates dependencies and constructs an Orchestrator.
func NewOrchestrator(dependencies Dependencies) (*Orchestrator, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.Client == nil {
		return nil, ErrClientNotConfigured
	}
	if dependencies.Decisions == nil {
		return nil, ErrDecisionsNotConfigured
	}
	return &Orchestrator{logger: dependencies.Logger, client: dependencies.Client, decisions: dependencies.Decisions}, nil
}

// IncomingReference returns the remote-tracking reference the base working copy merges from.
func IncomingReference(incomingBranch string) string {
	return gitrepo.RemoteReference(IncomingRemoteName, incomingBranch)
}

// Merge checks out the base branch, links and fetches the incoming working copy, then previews or merges it.
func (orchestrator *Orchestrator) Merge(executionContext context.Context, request Request) (Report, error) {
	basePath := request.BaseRepositoryPath
	incomingReference := IncomingReference(request.IncomingBranch)

	if stepError := orchestrator.step(executionContext, checkoutStepConstant, func() error {
		return orchestrator.client.CheckoutBranch(executionContext, basePath, request.BaseBranch)
	}); stepError != nil {
		return Report{}, stepError
	}
	if stepError := orchestrator.step(executionContext, linkStepConstant, func() error {
		return orchestrator.client.EnsureRemote(executionContext, basePath, IncomingRemoteName, request.IncomingRepositoryPath)
	}); stepError != nil {
		return Report{}, stepError
	}
	if stepError := orchestrator.step(executionContext, fetchStepConstant, func() error {
		return orchestrator.client.Fetch(executionContext, basePath, IncomingRemoteName)
	}); stepError != nil {
		return Report{}, stepError
	}

	if request.Preview {
		if stepError := orchestrator.step(executionContext, previewStepConstant, func() error {
			if graphError := orchestrator.client.ShowHistoryGraph(executionContext, basePath); graphError != nil {
				return graphError
			}
			return orchestrator.client.ShowTrackedFiles(executionContext, basePath, incomingReference)
		}); stepError != nil {
			return Report{}, stepError
		}
		return Report{PreviewOnly: true}, nil
	}

	if request.ShowDiff {
		confirmed, confirmationError := orchestrator.decisions.ConfirmDiff(executionContext)
		if confirmationError != nil {
			return Report{}, confirmationError
		}
		if confirmed {
			if stepError := orchestrator.step(executionContext, diffStepConstant, func() error {
				return orchestrator.client.ShowDiff(executionContext, basePath, headReferenceConstant, incomingReference)
			}); stepError != nil {
				return Report{}, stepError
			}
		}
	}

	if contextError := executionContext.Err(); contextError != nil {
		return Report{}, contextError
	}

	mergeOptions := gitrepo.MergeOptions{
		Reference:               incomingReference,
		AllowUnrelatedHistories: true,
		StrategyOption:          request.Policy.ConflictSide(),
	}
	// A strategy option settles content conflicts inside git merge, so they are listed up front.
	policyPaths := orchestrator.predictConflicts(executionContext, basePath, incomingReference, mergeOptions.StrategyOption)
	mergeError := orchestrator.client.Merge(executionContext, basePath, mergeOptions)
	if mergeError == nil {
		return orchestrator.finish(basePath, incomingReference, settledReport(OutcomeClean, policyPaths)), nil
	}
	if contextError := executionContext.Err(); contextError != nil {
		return Report{}, contextError
	}

	if IsUnrelatedHistoriesFailure(mergeError) {
		orchestrator.logger.Warn(logMessageUnrelatedRetryConstant, zap.String(logFieldBaseRepositoryConstant, basePath), zap.String(logFieldReferenceConstant, incomingReference))
		if retryError := orchestrator.client.Merge(executionContext, basePath, mergeOptions); retryError != nil {
			if contextError := executionContext.Err(); contextError != nil {
				return Report{}, contextError
			}
			return Report{}, UnrelatedHistoriesError{Reference: incomingReference, Cause: retryError}
		}
		return orchestrator.finish(basePath, incomingReference, settledReport(OutcomeAutoResolvedUnrelated, policyPaths)), nil
	}

	conflictedPaths, listingError := orchestrator.client.ListUnmergedPaths(executionContext, basePath)
	if listingError != nil {
		orchestrator.logger.Debug(logMessageConflictListingFailedConstant, zap.String(logFieldBaseRepositoryConstant, basePath), zap.Error(listingError))
		return Report{}, mergeError
	}
	if len(conflictedPaths) == 0 {
		return Report{}, mergeError
	}

	orchestrator.logger.Warn(logMessageConflictsDetectedConstant,
		zap.String(logFieldSubdirectoryConstant, request.Subdirectory),
		zap.Strings(logFieldConflictedPathsConstant, conflictedPaths),
	)

	conflictSide := request.Policy.ConflictSide()
	switch {
	case len(conflictSide) > 0:
		if resolutionError := orchestrator.resolveWithSide(executionContext, basePath, conflictSide, conflictedPaths); resolutionError != nil {
			return Report{}, resolutionError
		}
		return orchestrator.finish(basePath, incomingReference, Report{Outcome: OutcomeConflictsResolvedByPolicy, ConflictedPaths: conflictedPaths}), nil
	case request.AssumeYes:
		orchestrator.logger.Warn(logMessageConflictsPendingConstant, zap.String(logFieldBaseRepositoryConstant, basePath))
		return Report{Outcome: OutcomeConflictsPending, ConflictedPaths: conflictedPaths}, nil
	default:
		if resolutionError := orchestrator.awaitManualResolution(executionContext, basePath, request.Subdirectory, conflictedPaths); resolutionError != nil {
			return Report{}, resolutionError
		}
		return orchestrator.finish(basePath, incomingReference, Report{Outcome: OutcomeConflictsResolvedManually, ConflictedPaths: conflictedPaths}), nil
	}
}

func (orchestrator *Orchestrator) predictConflicts(executionContext context.Context, basePath string, incomingReference string, side gitrepo.ConflictSide) []string {
	if len(side) == 0 {
		return nil
	}
	conflictingPaths, predictionError := orchestrator.client.ListConflictingPaths(executionContext, basePath, incomingReference)
	if predictionError != nil {
		orchestrator.logger.Debug(logMessageConflictPredictionConstant, zap.String(logFieldBaseRepositoryConstant, basePath), zap.Error(predictionError))
		return nil
	}
	return conflictingPaths
}

// settledReport reports paths a strategy option resolved as a policy resolution instead of cleanOutcome.
func settledReport(cleanOutcome Outcome, policyPaths []string) Report {
	if len(policyPaths) == 0 {
		return Report{Outcome: cleanOutcome}
	}
	return Report{Outcome: OutcomeConflictsResolvedByPolicy, ConflictedPaths: policyPaths}
}

func (orchestrator *Orchestrator) resolveWithSide(executionContext context.Context, basePath string, side gitrepo.ConflictSide, conflictedPaths []string) error {
	for _, conflictedPath := range conflictedPaths {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}

		checkoutError := orchestrator.client.CheckoutConflictSide(executionContext, basePath, side, conflictedPath)
		if checkoutError == nil {
			if stageError := orchestrator.client.StagePath(executionContext, basePath, conflictedPath); stageError != nil {
				return ConflictError{Paths: conflictedPaths, Cause: stageError}
			}
			continue
		}
		if _, isCommandFailure := execshell.IsCommandFailure(checkoutError); !isCommandFailure {
			return ConflictError{Paths: conflictedPaths, Cause: checkoutError}
		}

		orchestrator.logger.Debug(logMessageTakingSideFailedConstant, zap.String(logFieldFilePathConstant, conflictedPath), zap.String(logFieldConflictSideConstant, string(side)), zap.Error(checkoutError))
		if removalError := orchestrator.client.RemovePath(executionContext, basePath, conflictedPath); removalError != nil {
			return ConflictError{Paths: conflictedPaths, Cause: removalError}
		}
	}

	if commitError := orchestrator.client.CommitMerge(executionContext, basePath); commitError != nil {
		return ConflictError{Paths: conflictedPaths, Cause: commitError}
	}
	return nil
}

func (orchestrator *Orchestrator) awaitManualResolution(executionContext context.Context, basePath string, subdirectory string, conflictedPaths []string) error {
	remainingPaths := conflictedPaths
	for len(remainingPaths) > 0 {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		if awaitError := orchestrator.decisions.AwaitConflictResolution(executionContext, basePath, subdirectory, remainingPaths); awaitError != nil {
			return awaitError
		}

		listedPaths, listingError := orchestrator.client.ListUnmergedPaths(executionContext, basePath)
		if listingError != nil {
			return fmt.Errorf(stepErrorTemplateConstant, awaitResolutionStepConstant, listingError)
		}
		remainingPaths = listedPaths
		if len(remainingPaths) > 0 {
			orchestrator.logger.Warn(logMessageConflictsRemainConstant, zap.Strings(logFieldConflictedPathsConstant, remainingPaths))
		}
	}

	inProgress, inspectionError := orchestrator.client.MergeInProgress(executionContext, basePath)
	if inspectionError != nil {
		return ConflictError{Paths: conflictedPaths, Cause: inspectionError}
	}
	if !inProgress {
		return nil
	}
	if commitError := orchestrator.client.CommitMerge(executionContext, basePath); commitError != nil {
		return ConflictError{Paths: conflictedPaths, Cause: commitError}
	}
	return nil
}

func (orchestrator *Orchestrator) step(executionContext context.Context, stepName string, operation func() error) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	if operationError := operation(); operationError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		return fmt.Errorf(stepErrorTemplateConstant, stepName, operationError)
	}
	return nil
}

func (orchestrator *Orchestrator) finish(basePath string, incomingReference string, report Report) Report {
	message := logMessageMergeCleanConstant
	if len(report.ConflictedPaths) > 0 {
		message = logMessageConflictsResolvedConstant
	}
	orchestrator.logger.Info(message,
		zap.String(logFieldBaseRepositoryConstant, basePath),
		zap.String(logFieldReferenceConstant, incomingReference),
		zap.String(logFieldOutcomeConstant, string(report.Outcome)),
	)
	return report
}

// IsUnrelatedHistoriesFailure reports whether a merge failed because git refused to join unrelated histories.
func IsUnrelatedHistoriesFailure(mergeError error) bool {
	commandFailure, isCommandFailure := execshell.IsCommandFailure(mergeError)
	if !isCommandFailure {
		return false
	}
	combinedOutput := strings.ToLower(commandFailure.Result.StandardError + "\n" + commandFailure.Result.StandardOutput)
	return strings.Contains(combinedOutput, unrelatedHistoriesMarkerConstant)
}
