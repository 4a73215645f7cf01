package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/temirov/repomerge/internal/analytics"
	"github.com/temirov/repomerge/internal/branches"
	"github.com/temirov/repomerge/internal/dependencies"
	"github.com/temirov/repomerge/internal/execshell"
	"github.com/temirov/repomerge/internal/gitrepo"
	"github.com/temirov/repomerge/internal/merge"
	"github.com/temirov/repomerge/internal/prompt"
	"github.com/temirov/repomerge/internal/relocate"
	"github.com/temirov/repomerge/internal/session"
	"github.com/temirov/repomerge/internal/ui"
	"github.com/temirov/repomerge/internal/utils"
	flagutils "github.com/temirov/repomerge/internal/utils/flags"
	pathutils "github.com/temirov/repomerge/internal/utils/path"
	"github.com/temirov/repomerge/internal/workspace"
)

const (
	applicationNameConstant                 = "repo-merge"
	applicationUseConstant                  = applicationNameConstant + " [base-repository-url [incoming-repository-url]]"
	applicationShortDescriptionConstant     = "Merge the full history of one git repository into a subdirectory of another"
	applicationLongDescriptionConstant      = "repo-merge clones a base and an incoming repository, rewrites the incoming history under a subdirectory with git-filter-repo, merges the unrelated histories and optionally pushes the result."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagDescriptionConstant         = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagDescriptionConstant        = "Override the configured log format."
	logFileFlagNameConstant                 = "logfile"
	logFileFlagUsageConstant                = "Append every log entry at debug level as JSON to this file."
	verboseFlagNameConstant                 = "verbose"
	verboseFlagUsageConstant                = "Log every command and print a merge summary."
	debugFlagNameConstant                   = "debug"
	debugFlagUsageConstant                  = "Log command output and diagnostics."
	analyticsFlagNameConstant               = "analytics"
	analyticsFlagUsageConstant              = "Print a table of executed commands and their timings."
	analyticsOutputFlagNameConstant         = "analytics-output"
	analyticsOutputFlagUsageConstant        = "Write the executed commands as YAML to this file."
	retryFlagNameConstant                   = "retry"
	retryFlagUsageConstant                  = "Reuse working areas left by a previous run."
	favorBaseFlagNameConstant               = "merge-conflict-base"
	favorBaseFlagUsageConstant              = "Resolve conflicts in favor of the base repository."
	favorIncomingFlagNameConstant           = "merge-conflict-side"
	favorIncomingFlagUsageConstant          = "Resolve conflicts in favor of the incoming repository."
	previewFlagNameConstant                 = "merge-preview"
	previewFlagUsageConstant                = "Show the incoming history and files without merging."
	showDiffFlagNameConstant                = "show-diff"
	showDiffFlagUsageConstant               = "Offer a diff between the base and incoming branches before merging."
	smartFlagNameConstant                   = "smart"
	smartFlagUsageConstant                  = "Default the subdirectory to the repository name and the branch to the most recently committed one."
	assumeYesFlagNameConstant               = "yes"
	assumeYesFlagShorthandConstant          = "y"
	assumeYesFlagUsageConstant              = "Accept defaults without prompting."
	baseBranchFlagNameConstant              = "base-branch"
	baseBranchFlagUsageConstant             = "Base branch receiving the merge."
	incomingBranchFlagNameConstant          = "incoming-branch"
	incomingBranchFlagUsageConstant         = "Incoming branch to merge."
	subdirectoryFlagNameConstant            = "subdirectory"
	subdirectoryFlagUsageConstant           = "Subdirectory receiving the incoming history."
	pushFlagNameConstant                    = "push"
	pushFlagUsageConstant                   = "Push the merge to origin without asking."
	workspaceFlagNameConstant               = "workspace"
	workspaceFlagUsageConstant              = "Directory holding the base_repo and merge_repo working areas."
	environmentPrefixConstant               = "REPOMERGE"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	logFieldSessionIDConstant               = "session_id"
	logFieldOutcomeConstant                 = "outcome"
	logFieldPublishedConstant               = "published"
	sessionFinishedMessageConstant          = "Merge session finished"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	componentErrorTemplateConstant          = "unable to initialize %s: %w"
	shellExecutorComponentConstant          = "command executor"
	repositoryManagerComponentConstant      = "repository manager"
	workspaceComponentConstant              = "workspace manager"
	probeComponentConstant                  = "branch probe"
	filterRepoComponentConstant             = "history relocation tool"
	relocatorComponentConstant              = "history relocator"
	orchestratorComponentConstant           = "merge orchestrator"
	controllerComponentConstant             = "session controller"
	loggerNotInitializedMessageConstant     = "logger not initialized"
)

var (
	logLevelChoices  = []string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)}
	logFormatChoices = []string{string(utils.LogFormatConsole), string(utils.LogFormatStructured)}
)

// Environment supplies the process resources the application runs against.
type Environment struct {
	Input       io.Reader
	Output      io.Writer
	ErrorOutput io.Writer
	// CommandRunner executes git and git-filter-repo; nil runs them through os/exec on the supplied streams.
	CommandRunner execshell.CommandRunner
	// LookPath resolves required executables; nil selects exec.LookPath.
	LookPath dependencies.LookPathFunc
	// Interactive reports whether prompts can be shown; nil checks whether standard input is a terminal.
	Interactive func() bool
	// SessionIdentifier generates session identifiers; nil selects random UUIDs.
	SessionIdentifier func() string
}

type flagValues struct {
	logLevel        string
	logFormat       string
	logFile         string
	verbose         bool
	debug           bool
	analytics       bool
	analyticsOutput string
	retry           bool
	favorBase       bool
	favorIncoming   bool
	preview         bool
	showDiff        bool
	smart           bool
	assumeYes       bool
	baseBranch      string
	incomingBranch  string
	subdirectory    string
	push            bool
	workspace       string
}

// Application wires the Cobra root command, configuration loader, structured logger and merge session.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	closeLogFile           func()
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	flags                  flagValues
	commandContextAccessor utils.CommandContextAccessor
	homeExpander           *pathutils.HomeExpander
	environment            Environment
	lastResult             session.Result
}

// NewApplication assembles a CLI application bound to the process streams.
func NewApplication() *Application {
	return NewApplicationWithEnvironment(Environment{})
}

// NewApplicationWithEnvironment assembles a CLI application bound to the supplied environment.
func NewApplicationWithEnvironment(environment Environment) *Application {
	if environment.Input == nil {
		environment.Input = os.Stdin
	}
	if environment.Output == nil {
		environment.Output = os.Stdout
	}
	if environment.ErrorOutput == nil {
		environment.ErrorOutput = os.Stderr
	}
	if environment.Interactive == nil {
		environment.Interactive = func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		}
	}
	if environment.SessionIdentifier == nil {
		environment.SessionIdentifier = uuid.NewString
	}

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(defaultConfiguration())
	configurationLoader.SetEnvironmentAliases(environmentAliases())
	configurationLoader.AddDecodeHooks(conflictPolicyDecodeHook())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		closeLogFile:           func() {},
		commandContextAccessor: utils.NewCommandContextAccessor(),
		homeExpander:           pathutils.NewHomeExpander(nil),
		environment:            environment,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationUseConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command, arguments)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runMerge(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetIn(environment.Input)
	cobraCommand.SetOut(environment.Output)
	cobraCommand.SetErr(environment.ErrorOutput)
	application.bindFlags(cobraCommand.Flags())
	cobraCommand.MarkFlagsMutuallyExclusive(favorBaseFlagNameConstant, favorIncomingFlagNameConstant)

	application.rootCommand = cobraCommand

	return application
}

// Command exposes the root command.
func (application *Application) Command() *cobra.Command {
	return application.rootCommand
}

// LastResult returns the result of the most recent merge session.
func (application *Application) LastResult() session.Result {
	return application.lastResult
}

// Execute runs the root command and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command under executionContext; cancelling it aborts the session.
func (application *Application) ExecuteContext(executionContext context.Context) error {
	executionError := application.rootCommand.ExecuteContext(executionContext)
	syncError := application.flushLogger()
	application.closeLogFile()
	if syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes it under executionContext.
func Execute(executionContext context.Context) error {
	return NewApplication().ExecuteContext(executionContext)
}

func (application *Application) bindFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	flagSet.StringVar(&application.flags.logLevel, logLevelFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogLevelWarn), logLevelChoices, logLevelFlagDescriptionConstant))
	flagSet.StringVar(&application.flags.logFormat, logFormatFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogFormatConsole), logFormatChoices, logFormatFlagDescriptionConstant))
	flagSet.StringVar(&application.flags.logFile, logFileFlagNameConstant, "", logFileFlagUsageConstant)
	flagSet.BoolVar(&application.flags.verbose, verboseFlagNameConstant, false, verboseFlagUsageConstant)
	flagSet.BoolVar(&application.flags.debug, debugFlagNameConstant, false, debugFlagUsageConstant)
	flagSet.BoolVar(&application.flags.analytics, analyticsFlagNameConstant, false, analyticsFlagUsageConstant)
	flagSet.StringVar(&application.flags.analyticsOutput, analyticsOutputFlagNameConstant, "", analyticsOutputFlagUsageConstant)
	flagSet.BoolVar(&application.flags.retry, retryFlagNameConstant, false, retryFlagUsageConstant)
	flagSet.BoolVar(&application.flags.favorBase, favorBaseFlagNameConstant, false, favorBaseFlagUsageConstant)
	flagSet.BoolVar(&application.flags.favorIncoming, favorIncomingFlagNameConstant, false, favorIncomingFlagUsageConstant)
	flagSet.BoolVar(&application.flags.preview, previewFlagNameConstant, false, previewFlagUsageConstant)
	flagSet.BoolVar(&application.flags.showDiff, showDiffFlagNameConstant, false, showDiffFlagUsageConstant)
	flagSet.BoolVar(&application.flags.smart, smartFlagNameConstant, false, smartFlagUsageConstant)
	flagSet.BoolVarP(&application.flags.assumeYes, assumeYesFlagNameConstant, assumeYesFlagShorthandConstant, false, assumeYesFlagUsageConstant)
	flagSet.StringVar(&application.flags.baseBranch, baseBranchFlagNameConstant, "", baseBranchFlagUsageConstant)
	flagSet.StringVar(&application.flags.incomingBranch, incomingBranchFlagNameConstant, "", incomingBranchFlagUsageConstant)
	flagSet.StringVar(&application.flags.subdirectory, subdirectoryFlagNameConstant, "", subdirectoryFlagUsageConstant)
	flagSet.BoolVar(&application.flags.push, pushFlagNameConstant, false, pushFlagUsageConstant)
	flagSet.StringVar(&application.flags.workspace, workspaceFlagNameConstant, "", workspaceFlagUsageConstant)
}

func (application *Application) initializeConfiguration(command *cobra.Command, arguments []string) error {
	application.homeExpander.ExpandAll(&application.configurationFilePath)

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, nil, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	application.applyFlagOverrides(command, arguments)
	application.homeExpander.ExpandAll(
		&application.configuration.Common.LogFile,
		&application.configuration.Merge.Workspace,
		&application.configuration.Merge.AnalyticsOutput,
	)

	logger, closeLogFile, loggerCreationError := application.loggerFactory.CreateLogger(utils.LoggerOptions{
		Level:       resolveLogLevel(application.configuration.Common.LogLevel, application.flags),
		Format:      utils.LogFormat(application.configuration.Common.LogFormat),
		LogFilePath: application.configuration.Common.LogFile,
	})
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	sessionIdentifier := application.environment.SessionIdentifier()
	application.logger = logger.With(zap.String(logFieldSessionIDConstant, sessionIdentifier))
	application.closeLogFile = closeLogFile

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	updatedContext := application.commandContextAccessor.WithConfigurationFilePath(command.Context(), application.configurationMetadata.ConfigFileUsed)
	updatedContext = application.commandContextAccessor.WithSessionIdentifier(updatedContext, sessionIdentifier)
	command.SetContext(updatedContext)

	return nil
}

func (application *Application) applyFlagOverrides(command *cobra.Command, arguments []string) {
	common := &application.configuration.Common
	mergeConfiguration := &application.configuration.Merge
	flags := command.Flags()

	overrideString(flags, logLevelFlagNameConstant, &common.LogLevel, application.flags.logLevel)
	overrideString(flags, logFormatFlagNameConstant, &common.LogFormat, application.flags.logFormat)
	overrideString(flags, logFileFlagNameConstant, &common.LogFile, application.flags.logFile)
	overrideString(flags, baseBranchFlagNameConstant, &mergeConfiguration.BaseBranch, application.flags.baseBranch)
	overrideString(flags, incomingBranchFlagNameConstant, &mergeConfiguration.IncomingBranch, application.flags.incomingBranch)
	overrideString(flags, subdirectoryFlagNameConstant, &mergeConfiguration.Subdirectory, application.flags.subdirectory)
	overrideString(flags, workspaceFlagNameConstant, &mergeConfiguration.Workspace, application.flags.workspace)
	overrideString(flags, analyticsOutputFlagNameConstant, &mergeConfiguration.AnalyticsOutput, application.flags.analyticsOutput)
	overrideBool(flags, analyticsFlagNameConstant, &mergeConfiguration.Analytics, application.flags.analytics)
	overrideBool(flags, showDiffFlagNameConstant, &mergeConfiguration.ShowDiff, application.flags.showDiff)
	overrideBool(flags, smartFlagNameConstant, &mergeConfiguration.Smart, application.flags.smart)
	overrideBool(flags, pushFlagNameConstant, &mergeConfiguration.Push, application.flags.push)

	if len(arguments) > 0 {
		mergeConfiguration.BaseRepositoryURL = arguments[0]
	}
	if len(arguments) > 1 {
		mergeConfiguration.IncomingRepositoryURL = arguments[1]
	}
}

func (application *Application) runMerge(command *cobra.Command) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	sessionConfig := sessionConfiguration(application.configuration.Merge, application.flags)
	interactive := !sessionConfig.AssumeYes && application.environment.Interactive()
	if !interactive {
		sessionConfig.AssumeYes = true
	}

	sessionIdentifier, _ := application.commandContextAccessor.SessionIdentifier(command.Context())
	controller, buildError := application.buildController(interactive, sessionConfig.Verbose, sessionIdentifier)
	if buildError != nil {
		return buildError
	}

	result, runError := controller.Run(command.Context(), sessionConfig)
	application.lastResult = result
	application.logger.Info(
		sessionFinishedMessageConstant,
		zap.String(logFieldOutcomeConstant, string(result.Session.Outcome)),
		zap.Bool(logFieldPublishedConstant, result.Published),
	)
	return runError
}

func (application *Application) buildController(interactive bool, verbose bool, sessionIdentifier string) (*session.Controller, error) {
	commandLog := analytics.NewLog()
	observers := []execshell.CommandEventObserver{analytics.NewRecorder(commandLog, nil)}
	if verbose {
		observers = append(observers, ui.NewConsoleCommandEventLogger(application.logger))
	}

	streamedOutput := utils.NewFlushingWriter(application.environment.Output)
	commandRunner := application.environment.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunnerWithStreams(application.environment.Input, streamedOutput, utils.NewFlushingWriter(application.environment.ErrorOutput))
	}

	executor, executorError := execshell.NewShellExecutor(application.logger, commandRunner, observers...)
	if executorError != nil {
		return nil, fmt.Errorf(componentErrorTemplateConstant, shellExecutorComponentConstant, executorError)
	}
	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return nil, fmt.Errorf(componentErrorTemplateConstant, repositoryManagerComponentConstant, managerError)
	}
	workspaceManager, workspaceError := workspace.NewManager(application.logger, repositoryManager, workspace.OSFileSystem{}, application.configuration.Merge.Workspace)
	if workspaceError != nil {
		return nil, fmt.Errorf(componentErrorTemplateConstant, workspaceComponentConstant, workspaceError)
	}
	probe, probeError := branches.NewProbe(application.logger, repositoryManager)
	if probeError != nil {
		return nil, fmt.Errorf(componentErrorTemplateConstant, probeComponentConstant, probeError)
	}
	filterRepoTool, filterRepoError := relocate.NewFilterRepoTool(executor)
	if filterRepoError != nil {
		return nil, fmt.Errorf(componentErrorTemplateConstant, filterRepoComponentConstant, filterRepoError)
	}
	treeInspector := relocate.NewGoGitTreeInspector()
	relocator, relocatorError := relocate.NewRelocator(application.logger, filterRepoTool, treeInspector)
	if relocatorError != nil {
		return nil, fmt.Errorf(componentErrorTemplateConstant, relocatorComponentConstant, relocatorError)
	}

	decisions := application.decisionSource(interactive)
	orchestrator, orchestratorError := merge.NewOrchestrator(merge.Dependencies{
		Logger:    application.logger,
		Client:    repositoryManager,
		Decisions: decisions,
	})
	if orchestratorError != nil {
		return nil, fmt.Errorf(componentErrorTemplateConstant, orchestratorComponentConstant, orchestratorError)
	}

	controller, controllerError := session.NewController(session.Dependencies{
		Logger:       application.logger,
		Workspace:    workspaceManager,
		Probe:        probe,
		Relocator:    relocator,
		Orchestrator: orchestrator,
		Client:       repositoryManager,
		Inspector:    treeInspector,
		Checker:      dependencies.NewChecker(application.logger, application.environment.LookPath),
		Decisions:    decisions,
		Progress:     ui.NewCloneProgressRenderer(application.environment.ErrorOutput),
		CommandLog:   commandLog,
		Output:       streamedOutput,
		SessionID:    sessionIdentifier,
	})
	if controllerError != nil {
		return nil, fmt.Errorf(componentErrorTemplateConstant, controllerComponentConstant, controllerError)
	}
	return controller, nil
}

func (application *Application) decisionSource(interactive bool) session.DecisionSource {
	if interactive {
		return prompt.NewConsoleDecisionSource(application.environment.Input, application.environment.ErrorOutput, nil, nil)
	}
	return prompt.NewPresetDecisionSource()
}

// resolveLogLevel applies --log-level, then --debug, then --verbose on top of the configured level.
// --verbose only ever lowers the threshold to info.
func resolveLogLevel(configuredLevel string, flags flagValues) utils.LogLevel {
	normalizedLevel := utils.LogLevel(strings.ToLower(strings.TrimSpace(configuredLevel)))
	switch {
	case len(strings.TrimSpace(flags.logLevel)) > 0:
		return utils.LogLevel(flags.logLevel)
	case flags.debug:
		return utils.LogLevelDebug
	case flags.verbose && normalizedLevel != utils.LogLevelDebug:
		return utils.LogLevelInfo
	default:
		return normalizedLevel
	}
}

func overrideString(flagSet *pflag.FlagSet, flagName string, target *string, value string) {
	if flagSet.Changed(flagName) {
		*target = value
	}
}

func overrideBool(flagSet *pflag.FlagSet, flagName string, target *bool, value bool) {
	if flagSet.Changed(flagName) {
		*target = value
	}
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}
