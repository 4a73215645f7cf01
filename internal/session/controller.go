package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/repomerge/internal/analytics"
	"github.com/temirov/repomerge/internal/branches"
	"github.com/temirov/repomerge/internal/dependencies"
	"github.com/temirov/repomerge/internal/gitrepo"
	"github.com/temirov/repomerge/internal/merge"
	"github.com/temirov/repomerge/internal/relocate"
	"github.com/temirov/repomerge/internal/workspace"
)

const (
	// DefaultSubdirectory is offered when neither configuration nor repository name suggests one.
	DefaultSubdirectory = "merged_content"

	originRemoteNameConstant                = "origin"
	headReferenceConstant                   = "HEAD"
	originalHeadReferenceConstant           = "ORIG_HEAD"
	userAbortMessageConstant                = "aborted by user"
	configurationErrorTemplateConstant      = "invalid configuration for %s: %s"
	stepErrorTemplateConstant               = "%s: %w"
	conflictingPoliciesMessageConstant      = "favor base and favor incoming are mutually exclusive"
	requiredValueMessageConstant            = "value required"
	unknownBranchTemplateConstant           = "branch %q not found (available: %s)"
	branchListSeparatorConstant             = ", "
	conflictPolicyFieldConstant             = "conflict_policy"
	baseURLFieldConstant                    = "base_repository_url"
	incomingURLFieldConstant                = "incoming_repository_url"
	subdirectoryFieldConstant               = "subdirectory"
	incomingBranchFieldConstant             = "incoming_branch"
	baseBranchFieldConstant                 = "base_branch"
	destroyStepConstant                     = "clean working areas"
	describeIncomingStepConstant            = "describe incoming branches"
	checkoutIncomingStepConstant            = "checkout incoming branch"
	inspectRelocationStepConstant           = "inspect incoming history"
	describeBaseStepConstant                = "describe base branches"
	loggerNotConfiguredMessageConstant      = "session logger not configured"
	missingCollaboratorTemplateConstant     = "session %s not configured"
	workspaceCollaboratorConstant           = "workspace manager"
	probeCollaboratorConstant               = "branch probe"
	relocatorCollaboratorConstant           = "history relocator"
	orchestratorCollaboratorConstant        = "merge orchestrator"
	clientCollaboratorConstant              = "repository client"
	inspectorCollaboratorConstant           = "tree inspector"
	checkerCollaboratorConstant             = "dependency checker"
	decisionsCollaboratorConstant           = "decision source"
	logMessageSessionStartedConstant        = "Merge session started"
	logMessagePlanResolvedConstant          = "Merge plan resolved"
	logMessageReusingAreaConstant           = "Reusing existing working area"
	logMessageRelocationSkippedConstant     = "Incoming history already relocated, skipping"
	logMessageAbortedConstant               = "Aborted by user. Cleaning up..."
	logMessageSessionFailedConstant         = "Merge session failed, cleaning up"
	logMessageCleanupFailedConstant         = "Unable to remove working areas"
	logMessageMergeSummaryConstant          = "Merge summary"
	logMessageSummaryUnavailableConstant    = "Merge summary unavailable"
	logMessagePublishedConstant             = "Merge published"
	logMessagePublishFailedConstant         = "Publishing the merge failed"
	logMessagePublishPromptFailedConstant   = "Publish confirmation unavailable"
	logMessagePendingConstant               = "Conflicts are left in the base working area; resolve and commit them manually"
	logMessageAnalyticsExportedConstant     = "Analytics exported"
	logMessageAnalyticsExportFailedConstant = "Unable to export analytics"
	logFieldRetryConstant                   = "retry"
	logFieldPreviewConstant                 = "preview"
	logFieldRoleConstant                    = "role"
	logFieldPathConstant                    = "path"
	logFieldSubdirectoryConstant            = "subdirectory"
	logFieldFileCountConstant               = "files"
	logFieldBaseBranchConstant              = "base_branch"
	logFieldIncomingBranchConstant          = "incoming_branch"
	logFieldOutcomeConstant                 = "outcome"
	logFieldConflictedPathsConstant         = "conflicted_paths"
)

// ErrUserAbort reports a session cancelled by the operator.
var ErrUserAbort = errors.New(userAbortMessageConstant)

// ErrLoggerNotConfigured indicates a nil logger was supplied.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ConfigurationError reports configuration that cannot drive a session.
type ConfigurationError struct {
	Field   string
	Message string
	Cause   error
}

// Error describes the configuration problem.
func (configurationError ConfigurationError) Error() string {
	return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.Field, configurationError.Message)
}

// Unwrap exposes the underlying cause.
func (configurationError ConfigurationError) Unwrap() error {
	return configurationError.Cause
}

// MissingCollaboratorError reports a Controller constructed without a required dependency.
type MissingCollaboratorError struct {
	Collaborator string
}

// Error describes the missing dependency.
func (missingError MissingCollaboratorError) Error() string {
	return fmt.Sprintf(missingCollaboratorTemplateConstant, missingError.Collaborator)
}

// Config carries every option of one session. Empty values are resolved through the DecisionSource.
type Config struct {
	BaseRepositoryURL     string
	IncomingRepositoryURL string
	Subdirectory          string
	IncomingBranch        string
	BaseBranch            string
	FavorBase             bool
	FavorIncoming         bool
	Retry                 bool
	Preview               bool
	ShowDiff              bool
	Smart                 bool
	AssumeYes             bool
	Push                  bool
	Verbose               bool
	Analytics             bool
	AnalyticsOutputPath   string
}

// Session is the state of one run.
type Session struct {
	ID                    string
	BaseRepositoryURL     string
	IncomingRepositoryURL string
	BaseArea              workspace.WorkingArea
	IncomingArea          workspace.WorkingArea
	IncomingBranch        string
	BaseBranch            string
	Subdirectory          string
	Policy                merge.ConflictPolicy
	Outcome               merge.Outcome
	CommandLog            *analytics.Log
}

// Result summarizes a finished run.
type Result struct {
	Success         bool
	Session         Session
	PreviewOnly     bool
	Published       bool
	ConflictedPaths []string
}

// Dependencies wires the collaborators of a Controller.
type Dependencies struct {
	Logger       *zap.Logger
	Workspace    WorkspaceManager
	Probe        BranchProbe
	Relocator    HistoryRelocator
	Orchestrator MergeOrchestrator
	Client       RepositoryClient
	Inspector    TreeInspector
	Checker      DependencyChecker
	Decisions    DecisionSource
	// Progress receives clone progress; nil disables progress reporting.
	Progress workspace.ProgressReporter
	// CommandLog is the log the analytics recorder feeds; nil records nothing.
	CommandLog *analytics.Log
	// Output receives the analytics report.
	Output io.Writer
	// SessionID identifies the run; empty generates a random identifier.
	SessionID string
}

// Controller runs merge sessions.
type Controller struct {
	logger       *zap.Logger
	workspace    WorkspaceManager
	probe        BranchProbe
	relocator    HistoryRelocator
	orchestrator MergeOrchestrator
	client       RepositoryClient
	inspector    TreeInspector
	checker      DependencyChecker
	decisions    DecisionSource
	progress     workspace.ProgressReporter
	commandLog   *analytics.Log
	output       io.Writer
	sessionID    string
}

// NewController validates dependencies and constructs a Controller.
func NewController(sessionDependencies Dependencies) (*Controller, error) {
	if sessionDependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	requiredCollaborators := []struct {
		name    string
		missing bool
	}{
		{name: workspaceCollaboratorConstant, missing: sessionDependencies.Workspace == nil},
		{name: probeCollaboratorConstant, missing: sessionDependencies.Probe == nil},
		{name: relocatorCollaboratorConstant, missing: sessionDependencies.Relocator == nil},
		{name: orchestratorCollaboratorConstant, missing: sessionDependencies.Orchestrator == nil},
		{name: clientCollaboratorConstant, missing: sessionDependencies.Client == nil},
		{name: inspectorCollaboratorConstant, missing: sessionDependencies.Inspector == nil},
		{name: checkerCollaboratorConstant, missing: sessionDependencies.Checker == nil},
		{name: decisionsCollaboratorConstant, missing: sessionDependencies.Decisions == nil},
	}
	for _, collaborator := range requiredCollaborators {
		if collaborator.missing {
			return nil, MissingCollaboratorError{Collaborator: collaborator.name}
		}
	}

	commandLog := sessionDependencies.CommandLog
	if commandLog == nil {
		commandLog = analytics.NewLog()
	}
	output := sessionDependencies.Output
	if output == nil {
		output = io.Discard
	}
	sessionID := sessionDependencies.SessionID
	if len(sessionID) == 0 {
		sessionID = uuid.NewString()
	}

	return &Controller{
		logger:       sessionDependencies.Logger,
		workspace:    sessionDependencies.Workspace,
		probe:        sessionDependencies.Probe,
		relocator:    sessionDependencies.Relocator,
		orchestrator: sessionDependencies.Orchestrator,
		client:       sessionDependencies.Client,
		inspector:    sessionDependencies.Inspector,
		checker:      sessionDependencies.Checker,
		decisions:    sessionDependencies.Decisions,
		progress:     sessionDependencies.Progress,
		commandLog:   commandLog,
		output:       output,
		sessionID:    sessionID,
	}, nil
}

// Run executes one session. Configuration and tooling are verified before any working area is touched.
// On failure or cancellation both working areas are destroyed before Run returns.
func (controller *Controller) Run(executionContext context.Context, config Config) (Result, error) {
	currentSession := Session{ID: controller.sessionID, CommandLog: controller.commandLog}
	result := Result{Session: currentSession}
	defer controller.reportAnalytics(config)

	policy, policyError := ResolveConflictPolicy(config)
	if policyError != nil {
		return result, policyError
	}
	currentSession.Policy = policy
	if len(strings.TrimSpace(config.Subdirectory)) > 0 {
		if validationError := relocate.ValidateSubdirectory(config.Subdirectory); validationError != nil {
			return result, ConfigurationError{Field: subdirectoryFieldConstant, Message: validationError.Error(), Cause: validationError}
		}
	}
	if dependencyError := controller.checker.Check(dependencies.RequiredExecutables...); dependencyError != nil {
		return result, dependencyError
	}

	controller.logger.Info(logMessageSessionStartedConstant, zap.Bool(logFieldRetryConstant, config.Retry), zap.Bool(logFieldPreviewConstant, config.Preview))

	runError := controller.execute(executionContext, config, &currentSession, &result)
	result.Session = currentSession
	if runError == nil {
		return result, nil
	}

	result.Success = false
	if executionContext.Err() != nil || errors.Is(runError, context.Canceled) || errors.Is(runError, ErrUserAbort) {
		controller.logger.Warn(logMessageAbortedConstant)
		runError = ErrUserAbort
	} else {
		controller.logger.Debug(logMessageSessionFailedConstant, zap.Error(runError))
	}
	if cleanupError := controller.workspace.DestroyAll(); cleanupError != nil {
		controller.logger.Error(logMessageCleanupFailedConstant, zap.Error(cleanupError))
	}
	result.Session.BaseArea = controller.workspace.Area(workspace.RoleBase)
	result.Session.IncomingArea = controller.workspace.Area(workspace.RoleIncoming)
	return result, runError
}

func (controller *Controller) execute(executionContext context.Context, config Config, currentSession *Session, result *Result) error {
	if !config.Retry {
		if destroyError := controller.workspace.DestroyAll(); destroyError != nil {
			return fmt.Errorf(stepErrorTemplateConstant, destroyStepConstant, destroyError)
		}
	}

	if resolutionError := controller.resolveSources(executionContext, config, currentSession); resolutionError != nil {
		return resolutionError
	}

	for _, role := range workspace.Roles {
		if acquireError := controller.acquire(executionContext, config, currentSession, role); acquireError != nil {
			return acquireError
		}
	}
	currentSession.BaseArea = controller.workspace.Area(workspace.RoleBase)
	currentSession.IncomingArea = controller.workspace.Area(workspace.RoleIncoming)

	if incomingError := controller.prepareIncoming(executionContext, config, currentSession); incomingError != nil {
		return incomingError
	}
	if relocationError := controller.relocate(executionContext, config, currentSession); relocationError != nil {
		return relocationError
	}
	if baseError := controller.chooseBaseBranch(executionContext, config, currentSession); baseError != nil {
		return baseError
	}

	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	report, mergeError := controller.orchestrator.Merge(executionContext, merge.Request{
		BaseRepositoryPath:     currentSession.BaseArea.Path,
		IncomingRepositoryPath: currentSession.IncomingArea.Path,
		BaseBranch:             currentSession.BaseBranch,
		IncomingBranch:         currentSession.IncomingBranch,
		Subdirectory:           currentSession.Subdirectory,
		Policy:                 currentSession.Policy,
		Preview:                config.Preview,
		ShowDiff:               config.ShowDiff,
		AssumeYes:              config.AssumeYes,
	})
	if mergeError != nil {
		return mergeError
	}

	currentSession.Outcome = report.Outcome
	result.Success = true
	result.PreviewOnly = report.PreviewOnly
	result.ConflictedPaths = report.ConflictedPaths
	if report.PreviewOnly {
		return nil
	}
	if report.Outcome == merge.OutcomeConflictsPending {
		controller.logger.Warn(logMessagePendingConstant,
			zap.String(logFieldPathConstant, currentSession.BaseArea.Path),
			zap.Strings(logFieldConflictedPathsConstant, report.ConflictedPaths),
		)
		return nil
	}

	if config.Verbose {
		controller.summarize(executionContext, currentSession)
	}
	if report.Outcome.Committed() {
		result.Published = controller.publish(executionContext, config, currentSession)
	}
	return nil
}

func (controller *Controller) resolveSources(executionContext context.Context, config Config, currentSession *Session) error {
	baseURL, baseError := resolveValue(executionContext, config.BaseRepositoryURL, controller.decisions.BaseRepositoryURL)
	if baseError != nil {
		return baseError
	}
	if len(baseURL) == 0 {
		return ConfigurationError{Field: baseURLFieldConstant, Message: requiredValueMessageConstant}
	}

	incomingURL, incomingError := resolveValue(executionContext, config.IncomingRepositoryURL, controller.decisions.IncomingRepositoryURL)
	if incomingError != nil {
		return incomingError
	}
	if len(incomingURL) == 0 {
		return ConfigurationError{Field: incomingURLFieldConstant, Message: requiredValueMessageConstant}
	}

	subdirectory := strings.TrimSpace(config.Subdirectory)
	if len(subdirectory) == 0 {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		promptedSubdirectory, promptError := controller.decisions.Subdirectory(executionContext, DefaultSubdirectoryFor(incomingURL, config.Smart))
		if promptError != nil {
			return promptError
		}
		subdirectory = strings.TrimSpace(promptedSubdirectory)
	}
	if validationError := relocate.ValidateSubdirectory(subdirectory); validationError != nil {
		return ConfigurationError{Field: subdirectoryFieldConstant, Message: validationError.Error(), Cause: validationError}
	}

	currentSession.BaseRepositoryURL = baseURL
	currentSession.IncomingRepositoryURL = incomingURL
	currentSession.Subdirectory = subdirectory
	return nil
}

func (controller *Controller) acquire(executionContext context.Context, config Config, currentSession *Session, role workspace.Role) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	if config.Retry && controller.workspace.Exists(role) {
		controller.logger.Info(logMessageReusingAreaConstant, zap.String(logFieldRoleConstant, string(role)), zap.String(logFieldPathConstant, controller.workspace.Area(role).Path))
		return nil
	}

	sourceURL := currentSession.BaseRepositoryURL
	if role == workspace.RoleIncoming {
		sourceURL = currentSession.IncomingRepositoryURL
	}
	exitStatus, acquireError := controller.workspace.Acquire(executionContext, sourceURL, role, controller.progress)
	if acquireError != nil {
		return acquireError
	}
	if exitStatus != 0 {
		return workspace.CloneError{Role: role, SourceURL: sourceURL, ExitStatus: exitStatus}
	}
	return nil
}

func (controller *Controller) prepareIncoming(executionContext context.Context, config Config, currentSession *Session) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	incomingPath := currentSession.IncomingArea.Path
	description, describeError := controller.probe.Describe(executionContext, incomingPath)
	if describeError != nil {
		return fmt.Errorf(stepErrorTemplateConstant, describeIncomingStepConstant, describeError)
	}

	incomingBranch := strings.TrimSpace(config.IncomingBranch)
	if len(incomingBranch) == 0 {
		defaultBranch := description.DefaultBranch
		if config.Smart {
			if mostRecentBranch := description.MostRecentBranch(); len(mostRecentBranch) > 0 {
				defaultBranch = mostRecentBranch
			}
		}
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		chosenBranch, promptError := controller.decisions.IncomingBranch(executionContext, description, defaultBranch)
		if promptError != nil {
			return promptError
		}
		incomingBranch = strings.TrimSpace(chosenBranch)
	}
	if branchError := requireListedBranch(incomingBranchFieldConstant, incomingBranch, description); branchError != nil {
		return branchError
	}

	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	if checkoutError := controller.client.CheckoutBranch(executionContext, incomingPath, incomingBranch); checkoutError != nil {
		return fmt.Errorf(stepErrorTemplateConstant, checkoutIncomingStepConstant, checkoutError)
	}
	currentSession.IncomingBranch = incomingBranch
	return nil
}

func (controller *Controller) relocate(executionContext context.Context, config Config, currentSession *Session) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	incomingPath := currentSession.IncomingArea.Path
	if config.Retry {
		relocated, inspectionError := controller.relocator.IsRelocated(incomingPath, currentSession.Subdirectory)
		if inspectionError != nil {
			return fmt.Errorf(stepErrorTemplateConstant, inspectRelocationStepConstant, inspectionError)
		}
		if relocated {
			controller.logger.Info(logMessageRelocationSkippedConstant, zap.String(logFieldSubdirectoryConstant, currentSession.Subdirectory))
			return nil
		}
	}
	return controller.relocator.Relocate(executionContext, incomingPath, currentSession.Subdirectory)
}

func (controller *Controller) chooseBaseBranch(executionContext context.Context, config Config, currentSession *Session) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	description, describeError := controller.probe.Describe(executionContext, currentSession.BaseArea.Path)
	if describeError != nil {
		return fmt.Errorf(stepErrorTemplateConstant, describeBaseStepConstant, describeError)
	}

	baseBranch := strings.TrimSpace(config.BaseBranch)
	if len(baseBranch) == 0 {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		chosenBranch, promptError := controller.decisions.BaseBranch(executionContext, description.DefaultBranch)
		if promptError != nil {
			return promptError
		}
		baseBranch = strings.TrimSpace(chosenBranch)
	}
	if branchError := requireListedBranch(baseBranchFieldConstant, baseBranch, description); branchError != nil {
		return branchError
	}

	currentSession.BaseBranch = baseBranch
	controller.logger.Info(logMessagePlanResolvedConstant,
		zap.String(logFieldBaseBranchConstant, baseBranch),
		zap.String(logFieldIncomingBranchConstant, currentSession.IncomingBranch),
		zap.String(logFieldSubdirectoryConstant, currentSession.Subdirectory),
	)
	return nil
}

func (controller *Controller) summarize(executionContext context.Context, currentSession *Session) {
	basePath := currentSession.BaseArea.Path
	if diffError := controller.client.ShowDiffStat(executionContext, basePath, originalHeadReferenceConstant, headReferenceConstant); diffError != nil {
		controller.logger.Debug(logMessageSummaryUnavailableConstant, zap.Error(diffError))
	}
	headPaths, inspectionError := controller.inspector.HeadPaths(basePath)
	if inspectionError != nil {
		controller.logger.Debug(logMessageSummaryUnavailableConstant, zap.Error(inspectionError))
		return
	}
	controller.logger.Info(logMessageMergeSummaryConstant,
		zap.String(logFieldSubdirectoryConstant, currentSession.Subdirectory),
		zap.Int(logFieldFileCountConstant, relocate.CountPathsUnder(headPaths, currentSession.Subdirectory)),
		zap.String(logFieldOutcomeConstant, string(currentSession.Outcome)),
	)
}

func (controller *Controller) publish(executionContext context.Context, config Config, currentSession *Session) bool {
	shouldPublish := config.Push
	if !shouldPublish {
		confirmed, confirmationError := controller.decisions.ConfirmPublish(executionContext)
		if confirmationError != nil {
			controller.logger.Warn(logMessagePublishPromptFailedConstant, zap.Error(confirmationError))
			return false
		}
		shouldPublish = confirmed
	}
	if !shouldPublish || executionContext.Err() != nil {
		return false
	}

	basePath := currentSession.BaseArea.Path
	if pushError := controller.client.Push(executionContext, basePath, originRemoteNameConstant, headReferenceConstant); pushError != nil {
		controller.logger.Warn(logMessagePublishFailedConstant, zap.String(logFieldPathConstant, basePath), zap.Error(pushError))
		return false
	}
	controller.logger.Info(logMessagePublishedConstant, zap.String(logFieldBaseBranchConstant, currentSession.BaseBranch))
	return true
}

func (controller *Controller) reportAnalytics(config Config) {
	records := controller.commandLog.Records()
	if config.Analytics {
		fmt.Fprintln(controller.output, analytics.RenderTable(records))
	}
	if len(config.AnalyticsOutputPath) == 0 {
		return
	}

	exportFile, createError := os.Create(config.AnalyticsOutputPath)
	if createError != nil {
		controller.logger.Warn(logMessageAnalyticsExportFailedConstant, zap.String(logFieldPathConstant, config.AnalyticsOutputPath), zap.Error(createError))
		return
	}
	defer exportFile.Close()
	if writeError := analytics.WriteYAML(exportFile, records); writeError != nil {
		controller.logger.Warn(logMessageAnalyticsExportFailedConstant, zap.String(logFieldPathConstant, config.AnalyticsOutputPath), zap.Error(writeError))
		return
	}
	controller.logger.Info(logMessageAnalyticsExportedConstant, zap.String(logFieldPathConstant, config.AnalyticsOutputPath))
}

// ResolveConflictPolicy maps the favor flags onto a merge.ConflictPolicy; both set is a ConfigurationError.
func ResolveConflictPolicy(config Config) (merge.ConflictPolicy, error) {
	switch {
	case config.FavorBase && config.FavorIncoming:
		return merge.ConflictPolicyNone, ConfigurationError{Field: conflictPolicyFieldConstant, Message: conflictingPoliciesMessageConstant}
	case config.FavorBase:
		return merge.ConflictPolicyFavorBase, nil
	case config.FavorIncoming:
		return merge.ConflictPolicyFavorIncoming, nil
	default:
		return merge.ConflictPolicyNone, nil
	}
}

// DefaultSubdirectoryFor returns the subdirectory to offer: the incoming repository name under smart defaults, else DefaultSubdirectory.
func DefaultSubdirectoryFor(incomingURL string, smart bool) string {
	if !smart {
		return DefaultSubdirectory
	}
	repositoryName := gitrepo.RepositoryName(incomingURL)
	if relocate.ValidateSubdirectory(repositoryName) != nil {
		return DefaultSubdirectory
	}
	return repositoryName
}

func resolveValue(executionContext context.Context, configured string, prompt func(context.Context) (string, error)) (string, error) {
	if trimmed := strings.TrimSpace(configured); len(trimmed) > 0 {
		return trimmed, nil
	}
	if contextError := executionContext.Err(); contextError != nil {
		return "", contextError
	}
	prompted, promptError := prompt(executionContext)
	if promptError != nil {
		return "", promptError
	}
	return strings.TrimSpace(prompted), nil
}

func requireListedBranch(fieldName string, branch string, description branches.Description) error {
	if len(branch) == 0 {
		return ConfigurationError{Field: fieldName, Message: requiredValueMessageConstant}
	}
	if len(description.Branches) == 0 || description.Contains(branch) {
		return nil
	}
	return ConfigurationError{
		Field:   fieldName,
		Message: fmt.Sprintf(unknownBranchTemplateConstant, branch, strings.Join(description.Names(), branchListSeparatorConstant)),
	}
}
