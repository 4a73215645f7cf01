package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/repomerge/internal/execshell"
)

const (
	gitCloneSubcommandConstant          = "clone"
	gitProgressFlagConstant             = "--progress"
	gitBranchSubcommandConstant         = "branch"
	gitRemoteBranchesFlagConstant       = "-r"
	gitRemoteSubcommandConstant         = "remote"
	gitRemoteShowSubcommandConstant     = "show"
	gitRemoteAddSubcommandConstant      = "add"
	gitRemoteSetURLSubcommandConstant   = "set-url"
	gitLogSubcommandConstant            = "log"
	gitSingleCommitFlagConstant         = "-1"
	gitCommitDateFormatFlagConstant     = "--format=%ci"
	gitGraphFlagConstant                = "--graph"
	gitOnelineFlagConstant              = "--oneline"
	gitAllFlagConstant                  = "--all"
	gitCheckoutSubcommandConstant       = "checkout"
	gitOursFlagConstant                 = "--ours"
	gitTheirsFlagConstant               = "--theirs"
	gitArgumentTerminatorConstant       = "--"
	gitFetchSubcommandConstant          = "fetch"
	gitLsTreeSubcommandConstant         = "ls-tree"
	gitRecursiveFlagConstant            = "-r"
	gitNameOnlyFlagConstant             = "--name-only"
	gitDiffSubcommandConstant           = "diff"
	gitStatFlagConstant                 = "--stat"
	gitUnmergedFilterFlagConstant       = "--diff-filter=U"
	gitNullTerminatedFlagConstant       = "-z"
	gitMergeTreeSubcommandConstant      = "merge-tree"
	gitWriteTreeFlagConstant            = "--write-tree"
	headReferenceConstant               = "HEAD"
	pathSeparatorCharacterConstant      = "\x00"
	gitMergeSubcommandConstant          = "merge"
	gitAllowUnrelatedFlagConstant       = "--allow-unrelated-histories"
	gitNoEditFlagConstant               = "--no-edit"
	gitStrategyOptionFlagConstant       = "-X"
	gitRemoveSubcommandConstant         = "rm"
	gitAddSubcommandConstant            = "add"
	gitCommitSubcommandConstant         = "commit"
	gitPushSubcommandConstant           = "push"
	gitRevParseSubcommandConstant       = "rev-parse"
	gitQuietFlagConstant                = "-q"
	gitVerifyFlagConstant               = "--verify"
	mergeHeadReferenceConstant          = "MERGE_HEAD"
	remoteOriginNameConstant            = "origin"
	remoteReferenceTemplateConstant     = "%s/%s"
	headBranchMarkerConstant            = "HEAD branch:"
	repositoryPathFieldNameConstant     = "repository_path"
	sourceURLFieldNameConstant          = "source_url"
	destinationPathFieldNameConstant    = "destination_path"
	branchFieldNameConstant             = "branch"
	remoteNameFieldNameConstant         = "remote_name"
	remoteURLFieldNameConstant          = "remote_url"
	referenceFieldNameConstant          = "reference"
	filePathFieldNameConstant           = "file_path"
	conflictSideFieldNameConstant       = "conflict_side"
	requiredValueMessageConstant        = "value required"
	unsupportedConflictSideMessage      = "unsupported conflict side"
	executorNotConfiguredMessage        = "git executor not configured"
	invalidInputTemplateConstant        = "%s: %s"
	operationFailedTemplateConstant     = "%s operation failed: %v"
	cloneOperationNameConstant          = OperationName("Clone")
	listRemoteBranchesOperationConstant = OperationName("ListRemoteBranches")
	describeRemoteOperationConstant     = OperationName("DescribeRemote")
	lastCommitDateOperationConstant     = OperationName("LastCommitDate")
	checkoutOperationNameConstant       = OperationName("Checkout")
	listRemotesOperationNameConstant    = OperationName("ListRemotes")
	ensureRemoteOperationNameConstant   = OperationName("EnsureRemote")
	fetchOperationNameConstant          = OperationName("Fetch")
	historyGraphOperationNameConstant   = OperationName("ShowHistoryGraph")
	trackedFilesOperationNameConstant   = OperationName("ShowTrackedFiles")
	diffOperationNameConstant           = OperationName("ShowDiff")
	diffStatOperationNameConstant       = OperationName("ShowDiffStat")
	mergeOperationNameConstant          = OperationName("Merge")
	unmergedPathsOperationNameConstant  = OperationName("ListUnmergedPaths")
	conflictingPathsOperationConstant   = OperationName("ListConflictingPaths")
	conflictSideOperationNameConstant   = OperationName("CheckoutConflictSide")
	removePathOperationNameConstant     = OperationName("RemovePath")
	stagePathOperationNameConstant      = OperationName("StagePath")
	commitMergeOperationNameConstant    = OperationName("CommitMerge")
	mergeInProgressOperationConstant    = OperationName("MergeInProgress")
	pushOperationNameConstant           = OperationName("Push")
)

// OperationName identifies a repository manager operation in errors.
type OperationName string

// ConflictSide names which side of a merge wins a conflicted path.
type ConflictSide string

// Supported conflict sides.
const (
	ConflictSideOurs   ConflictSide = ConflictSide("ours")
	ConflictSideTheirs ConflictSide = ConflictSide("theirs")
)

// MergeOptions configures a merge invocation.
type MergeOptions struct {
	Reference               string
	AllowUnrelatedHistories bool
	// StrategyOption is passed through -X when non-empty.
	StrategyOption ConflictSide
}

// GitExecutor is the minimal interface required from execshell.ShellExecutor.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

var (
	// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
	ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessage)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for repository operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationFailedTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// RepositoryManager issues typed git operations against working copies.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// Clone clones sourceURL into destinationPath and returns the exit status of git clone.
// A non-zero status is not an error; errors report a process that could not run.
func (manager *RepositoryManager) Clone(executionContext context.Context, sourceURL string, destinationPath string, progressHandler func(line string)) (int, error) {
	trimmedSourceURL := strings.TrimSpace(sourceURL)
	if len(trimmedSourceURL) == 0 {
		return 0, InvalidInputError{FieldName: sourceURLFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedDestination := strings.TrimSpace(destinationPath)
	if len(trimmedDestination) == 0 {
		return 0, InvalidInputError{FieldName: destinationPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments:                []string{gitCloneSubcommandConstant, gitProgressFlagConstant, trimmedSourceURL, trimmedDestination},
		StandardErrorLineHandler: progressHandler,
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		if commandFailure, isCommandFailure := execshell.IsCommandFailure(executionError); isCommandFailure {
			return commandFailure.Result.ExitCode, nil
		}
		return 0, OperationError{Operation: cloneOperationNameConstant, Cause: executionError}
	}
	return 0, nil
}

// ListRemoteBranches returns the raw `git branch -r` listing.
func (manager *RepositoryManager) ListRemoteBranches(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.run(executionContext, listRemoteBranchesOperationConstant, repositoryPath, false, gitBranchSubcommandConstant, gitRemoteBranchesFlagConstant)
	if executionError != nil {
		return "", executionError
	}
	return executionResult.StandardOutput, nil
}

// DescribeRemote returns the `git remote show` description of the named remote.
func (manager *RepositoryManager) DescribeRemote(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		trimmedRemoteName = remoteOriginNameConstant
	}
	executionResult, executionError := manager.run(executionContext, describeRemoteOperationConstant, repositoryPath, false, gitRemoteSubcommandConstant, gitRemoteShowSubcommandConstant, trimmedRemoteName)
	if executionError != nil {
		return "", executionError
	}
	return executionResult.StandardOutput, nil
}

// LastCommitDate returns the committer date of the newest commit on origin/<branch>.
func (manager *RepositoryManager) LastCommitDate(executionContext context.Context, repositoryPath string, branch string) (string, error) {
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return "", InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	reference := fmt.Sprintf(remoteReferenceTemplateConstant, remoteOriginNameConstant, trimmedBranch)
	executionResult, executionError := manager.run(executionContext, lastCommitDateOperationConstant, repositoryPath, false, gitLogSubcommandConstant, reference, gitSingleCommitFlagConstant, gitCommitDateFormatFlagConstant)
	if executionError != nil {
		return "", executionError
	}
	return executionResult.StandardOutput, nil
}

// CheckoutBranch switches the working copy to branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branch string) error {
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	_, executionError := manager.run(executionContext, checkoutOperationNameConstant, repositoryPath, false, gitCheckoutSubcommandConstant, trimmedBranch)
	return executionError
}

// EnsureRemote registers remoteName pointing at remoteURL, updating the URL when the remote already exists.
func (manager *RepositoryManager) EnsureRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return InvalidInputError{FieldName: remoteNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedRemoteURL := strings.TrimSpace(remoteURL)
	if len(trimmedRemoteURL) == 0 {
		return InvalidInputError{FieldName: remoteURLFieldNameConstant, Message: requiredValueMessageConstant}
	}

	listingResult, listingError := manager.run(executionContext, listRemotesOperationNameConstant, repositoryPath, false, gitRemoteSubcommandConstant)
	if listingError != nil {
		return listingError
	}

	remoteSubcommand := gitRemoteAddSubcommandConstant
	for _, existingRemote := range strings.Split(listingResult.StandardOutput, "\n") {
		if strings.TrimSpace(existingRemote) == trimmedRemoteName {
			remoteSubcommand = gitRemoteSetURLSubcommandConstant
			break
		}
	}

	_, executionError := manager.run(executionContext, ensureRemoteOperationNameConstant, repositoryPath, false, gitRemoteSubcommandConstant, remoteSubcommand, trimmedRemoteName, trimmedRemoteURL)
	return executionError
}

// Fetch fetches every branch of the named remote.
func (manager *RepositoryManager) Fetch(executionContext context.Context, repositoryPath string, remoteName string) error {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return InvalidInputError{FieldName: remoteNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	_, executionError := manager.run(executionContext, fetchOperationNameConstant, repositoryPath, false, gitFetchSubcommandConstant, trimmedRemoteName)
	return executionError
}

// ShowHistoryGraph streams the combined history graph of every reference.
func (manager *RepositoryManager) ShowHistoryGraph(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.run(executionContext, historyGraphOperationNameConstant, repositoryPath, true, gitLogSubcommandConstant, gitGraphFlagConstant, gitOnelineFlagConstant, gitAllFlagConstant)
	return executionError
}

// ShowTrackedFiles streams every path tracked at reference.
func (manager *RepositoryManager) ShowTrackedFiles(executionContext context.Context, repositoryPath string, reference string) error {
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return InvalidInputError{FieldName: referenceFieldNameConstant, Message: requiredValueMessageConstant}
	}
	_, executionError := manager.run(executionContext, trackedFilesOperationNameConstant, repositoryPath, true, gitLsTreeSubcommandConstant, gitRecursiveFlagConstant, gitNameOnlyFlagConstant, trimmedReference)
	return executionError
}

// ShowDiff streams the difference between two references.
func (manager *RepositoryManager) ShowDiff(executionContext context.Context, repositoryPath string, fromReference string, toReference string) error {
	_, executionError := manager.run(executionContext, diffOperationNameConstant, repositoryPath, true, gitDiffSubcommandConstant, fromReference, toReference)
	return executionError
}

// ShowDiffStat streams a diffstat between two references.
func (manager *RepositoryManager) ShowDiffStat(executionContext context.Context, repositoryPath string, fromReference string, toReference string) error {
	_, executionError := manager.run(executionContext, diffStatOperationNameConstant, repositoryPath, true, gitDiffSubcommandConstant, gitStatFlagConstant, fromReference, toReference)
	return executionError
}

// Merge merges a reference into the current branch, streaming git output.
func (manager *RepositoryManager) Merge(executionContext context.Context, repositoryPath string, options MergeOptions) error {
	trimmedReference := strings.TrimSpace(options.Reference)
	if len(trimmedReference) == 0 {
		return InvalidInputError{FieldName: referenceFieldNameConstant, Message: requiredValueMessageConstant}
	}

	arguments := []string{gitMergeSubcommandConstant, trimmedReference}
	if options.AllowUnrelatedHistories {
		arguments = append(arguments, gitAllowUnrelatedFlagConstant)
	}
	arguments = append(arguments, gitNoEditFlagConstant)
	switch options.StrategyOption {
	case "":
	case ConflictSideOurs, ConflictSideTheirs:
		arguments = append(arguments, gitStrategyOptionFlagConstant, string(options.StrategyOption))
	default:
		return InvalidInputError{FieldName: conflictSideFieldNameConstant, Message: unsupportedConflictSideMessage}
	}

	_, executionError := manager.run(executionContext, mergeOperationNameConstant, repositoryPath, true, arguments...)
	return executionError
}

// ListUnmergedPaths returns the paths left conflicted by an interrupted merge.
func (manager *RepositoryManager) ListUnmergedPaths(executionContext context.Context, repositoryPath string) ([]string, error) {
	executionResult, executionError := manager.run(executionContext, unmergedPathsOperationNameConstant, repositoryPath, false, gitDiffSubcommandConstant, gitNameOnlyFlagConstant, gitNullTerminatedFlagConstant, gitUnmergedFilterFlagConstant)
	if executionError != nil {
		return nil, executionError
	}
	return splitNullTerminatedPaths(executionResult.StandardOutput), nil
}

// ListConflictingPaths returns the paths a merge of reference into HEAD would conflict on, without touching
// the index or working tree. Requires git 2.38 or newer.
func (manager *RepositoryManager) ListConflictingPaths(executionContext context.Context, repositoryPath string, reference string) ([]string, error) {
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return nil, InvalidInputError{FieldName: referenceFieldNameConstant, Message: requiredValueMessageConstant}
	}

	_, executionError := manager.run(executionContext, conflictingPathsOperationConstant, repositoryPath, false,
		gitMergeTreeSubcommandConstant, gitWriteTreeFlagConstant, gitNameOnlyFlagConstant, gitNullTerminatedFlagConstant, gitAllowUnrelatedFlagConstant,
		headReferenceConstant, trimmedReference)
	if executionError == nil {
		return []string{}, nil
	}
	commandFailure, isCommandFailure := execshell.IsCommandFailure(executionError)
	if !isCommandFailure || commandFailure.Result.ExitCode != 1 {
		return nil, executionError
	}

	// Output is the merged tree id followed by the conflicted paths; an empty field ends the path list.
	fields := strings.Split(commandFailure.Result.StandardOutput, pathSeparatorCharacterConstant)
	conflictingPaths := make([]string, 0, len(fields))
	for _, field := range fields[1:] {
		if len(field) == 0 {
			break
		}
		conflictingPaths = append(conflictingPaths, field)
	}
	return conflictingPaths, nil
}

// splitNullTerminatedPaths splits -z output into unquoted paths.
func splitNullTerminatedPaths(output string) []string {
	paths := make([]string, 0)
	for _, field := range strings.Split(output, pathSeparatorCharacterConstant) {
		if len(field) > 0 {
			paths = append(paths, field)
		}
	}
	return paths
}

// CheckoutConflictSide replaces a conflicted path with one side's version.
func (manager *RepositoryManager) CheckoutConflictSide(executionContext context.Context, repositoryPath string, side ConflictSide, filePath string) error {
	sideFlag := ""
	switch side {
	case ConflictSideOurs:
		sideFlag = gitOursFlagConstant
	case ConflictSideTheirs:
		sideFlag = gitTheirsFlagConstant
	default:
		return InvalidInputError{FieldName: conflictSideFieldNameConstant, Message: unsupportedConflictSideMessage}
	}
	trimmedFilePath, validationError := requireFilePath(filePath)
	if validationError != nil {
		return validationError
	}
	_, executionError := manager.run(executionContext, conflictSideOperationNameConstant, repositoryPath, false, gitCheckoutSubcommandConstant, sideFlag, gitArgumentTerminatorConstant, trimmedFilePath)
	return executionError
}

// RemovePath deletes a path from the index and working tree.
func (manager *RepositoryManager) RemovePath(executionContext context.Context, repositoryPath string, filePath string) error {
	trimmedFilePath, validationError := requireFilePath(filePath)
	if validationError != nil {
		return validationError
	}
	_, executionError := manager.run(executionContext, removePathOperationNameConstant, repositoryPath, false, gitRemoveSubcommandConstant, gitArgumentTerminatorConstant, trimmedFilePath)
	return executionError
}

// StagePath adds a path to the index.
func (manager *RepositoryManager) StagePath(executionContext context.Context, repositoryPath string, filePath string) error {
	trimmedFilePath, validationError := requireFilePath(filePath)
	if validationError != nil {
		return validationError
	}
	_, executionError := manager.run(executionContext, stagePathOperationNameConstant, repositoryPath, false, gitAddSubcommandConstant, gitArgumentTerminatorConstant, trimmedFilePath)
	return executionError
}

// CommitMerge concludes an in-progress merge with the prepared message.
func (manager *RepositoryManager) CommitMerge(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.run(executionContext, commitMergeOperationNameConstant, repositoryPath, false, gitCommitSubcommandConstant, gitNoEditFlagConstant)
	return executionError
}

// MergeInProgress reports whether the working copy holds an uncommitted merge.
func (manager *RepositoryManager) MergeInProgress(executionContext context.Context, repositoryPath string) (bool, error) {
	_, executionError := manager.run(executionContext, mergeInProgressOperationConstant, repositoryPath, false, gitRevParseSubcommandConstant, gitQuietFlagConstant, gitVerifyFlagConstant, mergeHeadReferenceConstant)
	if executionError == nil {
		return true, nil
	}
	if commandFailure, isCommandFailure := execshell.IsCommandFailure(executionError); isCommandFailure && commandFailure.Result.ExitCode == 1 {
		return false, nil
	}
	return false, executionError
}

// Push publishes reference to the named remote.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, remoteName string, reference string) error {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return InvalidInputError{FieldName: remoteNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return InvalidInputError{FieldName: referenceFieldNameConstant, Message: requiredValueMessageConstant}
	}
	_, executionError := manager.run(executionContext, pushOperationNameConstant, repositoryPath, true, gitPushSubcommandConstant, trimmedRemoteName, trimmedReference)
	return executionError
}

// ParseHeadBranch extracts the advertised default branch from `git remote show` output.
func ParseHeadBranch(remoteDescription string) string {
	for _, line := range strings.Split(remoteDescription, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmedLine, headBranchMarkerConstant) {
			continue
		}
		headBranch := strings.TrimSpace(strings.TrimPrefix(trimmedLine, headBranchMarkerConstant))
		if headBranch == "(unknown)" {
			return ""
		}
		return headBranch
	}
	return ""
}

// RemoteReference joins a remote name and branch into a remote-tracking reference.
func RemoteReference(remoteName string, branch string) string {
	return fmt.Sprintf(remoteReferenceTemplateConstant, remoteName, branch)
}

func (manager *RepositoryManager) run(executionContext context.Context, operation OperationName, repositoryPath string, streamOutput bool, arguments ...string) (execshell.ExecutionResult, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return execshell.ExecutionResult{}, InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: filepath.Clean(trimmedRepositoryPath),
		StreamOutput:     streamOutput,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return execshell.ExecutionResult{}, OperationError{Operation: operation, Cause: executionError}
	}
	return executionResult, nil
}

func requireFilePath(filePath string) (string, error) {
	trimmedFilePath := strings.TrimSpace(filePath)
	if len(trimmedFilePath) == 0 {
		return "", InvalidInputError{FieldName: filePathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return trimmedFilePath, nil
}
