// Package testsupport provides an in-memory git client for exercising merge sessions without real repositories.
package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/temirov/repomerge/internal/execshell"
	"github.com/temirov/repomerge/internal/gitrepo"
)

// Operation names a fake client operation for failure injection and call recording.
type Operation string

// Operations recorded by FakeClient.
const (
	OperationClone                Operation = Operation("clone")
	OperationListRemoteBranches   Operation = Operation("list_remote_branches")
	OperationDescribeRemote       Operation = Operation("describe_remote")
	OperationLastCommitDate       Operation = Operation("last_commit_date")
	OperationCheckoutBranch       Operation = Operation("checkout_branch")
	OperationEnsureRemote         Operation = Operation("ensure_remote")
	OperationFetch                Operation = Operation("fetch")
	OperationShowHistoryGraph     Operation = Operation("show_history_graph")
	OperationShowTrackedFiles     Operation = Operation("show_tracked_files")
	OperationShowDiff             Operation = Operation("show_diff")
	OperationShowDiffStat         Operation = Operation("show_diff_stat")
	OperationMerge                Operation = Operation("merge")
	OperationListUnmergedPaths    Operation = Operation("list_unmerged_paths")
	OperationCheckoutConflictSide Operation = Operation("checkout_conflict_side")
	OperationRemovePath           Operation = Operation("remove_path")
	OperationStagePath            Operation = Operation("stage_path")
	OperationCommitMerge          Operation = Operation("commit_merge")
	OperationPush                 Operation = Operation("push")
	OperationRelocate             Operation = Operation("relocate")
	OperationMergeInProgress      Operation = Operation("merge_in_progress")
	OperationListConflictingPaths Operation = Operation("list_conflicting_paths")
)

const (
	gitDirectoryNameConstant          = ".git"
	originRemoteNameConstant          = "origin"
	unrelatedHistoriesMessageConstant = "fatal: refusing to merge unrelated histories"
	mergeConflictMessageConstant      = "Automatic merge failed; fix conflicts and then commit the result."
	conflictLineTemplateConstant      = "CONFLICT (add/add): Merge conflict in %s"
	conflictMarkerTemplateConstant    = "<<<<<<< HEAD\n%s=======\n%s>>>>>>> %s\n"
	unknownAreaTemplateConstant       = "fatal: not a git repository: %s"
	unknownBranchTemplateConstant     = "error: pathspec '%s' did not match any file(s) known to git"
	unknownRevisionTemplateConstant   = "fatal: bad revision '%s'"
	unknownRemoteTemplateConstant     = "fatal: '%s' does not appear to be a git repository"
	missingSideTemplateConstant       = "error: path '%s' does not have %s version"
	unmergedFilesMessageConstant      = "error: Committing is not possible because you have unmerged files."
	noMergeMessageConstant            = "fatal: There is no merge to commit"
	progressHalfLineConstant          = "Receiving objects:  50% (1/2)"
	progressDoneLineConstant          = "Receiving objects: 100% (2/2), done."
	remoteBranchLineTemplateConstant  = "  origin/%s"
	remoteHeadLineTemplateConstant    = "  origin/HEAD -> origin/%s"
	remoteDescriptionTemplateConstant = "* remote origin\n  Fetch URL: %s\n  HEAD branch: %s\n"
	remoteReferenceTemplateConstant   = "%s/%s"
	pathJoinSeparatorConstant         = "/"
)

// Repository is an in-memory remote repository: branch name to file path to content.
type Repository struct {
	Branches      map[string]map[string]string
	DefaultBranch string
	CommitDates   map[string]string
}

// NewRepository constructs a repository whose default branch holds files.
func NewRepository(defaultBranch string, files map[string]string) *Repository {
	return &Repository{
		Branches:      map[string]map[string]string{defaultBranch: copyFiles(files)},
		DefaultBranch: defaultBranch,
		CommitDates:   map[string]string{},
	}
}

// WithBranch adds a branch and its last commit date.
func (repository *Repository) WithBranch(branch string, files map[string]string, commitDate string) *Repository {
	repository.Branches[branch] = copyFiles(files)
	if len(commitDate) > 0 {
		repository.CommitDates[branch] = commitDate
	}
	return repository
}

type conflictVersions struct {
	ours          string
	oursPresent   bool
	theirs        string
	theirsPresent bool
}

type workingCopy struct {
	origin        *Repository
	originURL     string
	currentBranch string
	branches      map[string]map[string]string
	remotes       map[string]string
	fetched       map[string]map[string]string
	tree          map[string]string
	conflicts     map[string]conflictVersions
	merging       bool
}

// FakeClient simulates git and git-filter-repo against in-memory repositories cloned into real directories.
type FakeClient struct {
	mutex        sync.Mutex
	repositories map[string]*Repository
	areas        map[string]*workingCopy

	// Failures makes the named operation return the error instead of running.
	Failures map[Operation]error
	// UnrelatedHistoriesFailures is the number of merges rejected for unrelated histories before merges proceed.
	UnrelatedHistoriesFailures int
	// ConflictsIgnoreStrategyOption keeps conflicts even when a merge strategy option names a side,
	// as git does for conflicts a strategy option cannot settle.
	ConflictsIgnoreStrategyOption bool
	// CloneExitCodes assigns a non-zero clone status per source URL.
	CloneExitCodes map[string]int
	// BeforeClone runs once a clone destination directory exists and before the clone completes.
	BeforeClone func(destinationPath string)

	calls  []Operation
	pushes []string
}

// NewFakeClient constructs a fake client serving the supplied repositories keyed by source URL.
func NewFakeClient(repositories map[string]*Repository) *FakeClient {
	registered := make(map[string]*Repository, len(repositories))
	for sourceURL, repository := range repositories {
		registered[sourceURL] = repository
	}
	return &FakeClient{
		repositories:   registered,
		areas:          map[string]*workingCopy{},
		Failures:       map[Operation]error{},
		CloneExitCodes: map[string]int{},
	}
}

// CommandFailure builds the error a failing git invocation produces.
func CommandFailure(exitCode int, standardError string) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result:  execshell.ExecutionResult{ExitCode: exitCode, StandardError: standardError},
	}
}

// Calls returns the operations invoked so far in order.
func (client *FakeClient) Calls() []Operation {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	return append([]Operation{}, client.calls...)
}

// Pushes returns the working copy paths that were pushed.
func (client *FakeClient) Pushes() []string {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	return append([]string{}, client.pushes...)
}

// HeadFiles returns the committed files of the current branch of a working copy.
func (client *FakeClient) HeadFiles(repositoryPath string) map[string]string {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	area, exists := client.areas[filepath.Clean(repositoryPath)]
	if !exists {
		return nil
	}
	return copyFiles(area.branches[area.currentBranch])
}

// WorkingFiles returns the working tree files of a working copy.
func (client *FakeClient) WorkingFiles(repositoryPath string) map[string]string {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	area, exists := client.areas[filepath.Clean(repositoryPath)]
	if !exists {
		return nil
	}
	return copyFiles(area.tree)
}

// CurrentBranch reports the checked out branch of a working copy.
func (client *FakeClient) CurrentBranch(repositoryPath string) string {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	area, exists := client.areas[filepath.Clean(repositoryPath)]
	if !exists {
		return ""
	}
	return area.currentBranch
}

// MergeInProgress reports whether a working copy holds an uncommitted merge.
func (client *FakeClient) MergeInProgress(_ context.Context, repositoryPath string) (bool, error) {
	area, failure := client.area(OperationMergeInProgress, repositoryPath)
	if failure != nil {
		return false, failure
	}
	defer client.mutex.Unlock()
	return area.merging, nil
}

// CommitResolvedMerge concludes a pending merge the way an operator would with git commit.
func (client *FakeClient) CommitResolvedMerge(repositoryPath string) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	area, exists := client.areas[filepath.Clean(repositoryPath)]
	if !exists || len(area.conflicts) > 0 {
		return
	}
	area.branches[area.currentBranch] = copyFiles(area.tree)
	area.merging = false
}

// ResolveConflict writes content for a conflicted path and stages it, as an operator would.
func (client *FakeClient) ResolveConflict(repositoryPath string, filePath string, content string) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	area, exists := client.areas[filepath.Clean(repositoryPath)]
	if !exists {
		return
	}
	area.tree[filePath] = content
	delete(area.conflicts, filePath)
}

// Clone materializes the repository registered for sourceURL at destinationPath.
func (client *FakeClient) Clone(executionContext context.Context, sourceURL string, destinationPath string, progressHandler func(line string)) (int, error) {
	if failure := client.begin(OperationClone); failure != nil {
		return 0, failure
	}

	cleanedDestination := filepath.Clean(destinationPath)
	if creationError := os.MkdirAll(filepath.Join(cleanedDestination, gitDirectoryNameConstant), 0o755); creationError != nil {
		return 0, creationError
	}

	if client.BeforeClone != nil {
		client.BeforeClone(cleanedDestination)
	}
	if progressHandler != nil {
		progressHandler(progressHalfLineConstant)
	}
	if contextError := executionContext.Err(); contextError != nil {
		return 0, execshell.CommandExecutionError{Command: execshell.ShellCommand{Name: execshell.CommandGit}, Cause: contextError}
	}

	client.mutex.Lock()
	defer client.mutex.Unlock()

	if exitCode := client.CloneExitCodes[sourceURL]; exitCode != 0 {
		return exitCode, nil
	}
	repository, exists := client.repositories[sourceURL]
	if !exists {
		return 128, nil
	}

	branches := map[string]map[string]string{repository.DefaultBranch: copyFiles(repository.Branches[repository.DefaultBranch])}
	client.areas[cleanedDestination] = &workingCopy{
		origin:        repository,
		originURL:     sourceURL,
		currentBranch: repository.DefaultBranch,
		branches:      branches,
		remotes:       map[string]string{originRemoteNameConstant: sourceURL},
		fetched:       map[string]map[string]string{},
		tree:          copyFiles(branches[repository.DefaultBranch]),
		conflicts:     map[string]conflictVersions{},
	}
	if progressHandler != nil {
		progressHandler(progressDoneLineConstant)
	}
	return 0, nil
}

// ListRemoteBranches renders the `git branch -r` listing of the area's origin.
func (client *FakeClient) ListRemoteBranches(_ context.Context, repositoryPath string) (string, error) {
	area, failure := client.area(OperationListRemoteBranches, repositoryPath)
	if failure != nil {
		return "", failure
	}
	defer client.mutex.Unlock()

	lines := []string{fmt.Sprintf(remoteHeadLineTemplateConstant, area.origin.DefaultBranch)}
	for _, branch := range sortedKeys(area.origin.Branches) {
		lines = append(lines, fmt.Sprintf(remoteBranchLineTemplateConstant, branch))
	}
	return strings.Join(lines, "\n"), nil
}

// DescribeRemote renders a `git remote show origin` description.
func (client *FakeClient) DescribeRemote(_ context.Context, repositoryPath string, _ string) (string, error) {
	area, failure := client.area(OperationDescribeRemote, repositoryPath)
	if failure != nil {
		return "", failure
	}
	defer client.mutex.Unlock()
	return fmt.Sprintf(remoteDescriptionTemplateConstant, area.originURL, area.origin.DefaultBranch), nil
}

// LastCommitDate returns the registered commit date of an origin branch.
func (client *FakeClient) LastCommitDate(_ context.Context, repositoryPath string, branch string) (string, error) {
	area, failure := client.area(OperationLastCommitDate, repositoryPath)
	if failure != nil {
		return "", failure
	}
	defer client.mutex.Unlock()

	commitDate, exists := area.origin.CommitDates[branch]
	if _, branchExists := area.origin.Branches[branch]; !exists || !branchExists {
		return "", CommandFailure(128, fmt.Sprintf(unknownRevisionTemplateConstant, branch))
	}
	return commitDate, nil
}

// CheckoutBranch switches to a local branch, creating it from origin when needed.
func (client *FakeClient) CheckoutBranch(_ context.Context, repositoryPath string, branch string) error {
	area, failure := client.area(OperationCheckoutBranch, repositoryPath)
	if failure != nil {
		return failure
	}
	defer client.mutex.Unlock()

	if _, exists := area.branches[branch]; !exists {
		originFiles, originExists := area.origin.Branches[branch]
		if !originExists || len(area.remotes[originRemoteNameConstant]) == 0 {
			return CommandFailure(1, fmt.Sprintf(unknownBranchTemplateConstant, branch))
		}
		area.branches[branch] = copyFiles(originFiles)
	}
	area.currentBranch = branch
	area.tree = copyFiles(area.branches[branch])
	return nil
}

// EnsureRemote registers or updates a named remote.
func (client *FakeClient) EnsureRemote(_ context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	area, failure := client.area(OperationEnsureRemote, repositoryPath)
	if failure != nil {
		return failure
	}
	defer client.mutex.Unlock()
	area.remotes[remoteName] = remoteURL
	return nil
}

// Fetch copies the local branches of the remote working copy into remote-tracking references.
func (client *FakeClient) Fetch(_ context.Context, repositoryPath string, remoteName string) error {
	area, failure := client.area(OperationFetch, repositoryPath)
	if failure != nil {
		return failure
	}
	defer client.mutex.Unlock()

	remoteURL, exists := area.remotes[remoteName]
	if !exists {
		return CommandFailure(128, fmt.Sprintf(unknownRemoteTemplateConstant, remoteName))
	}

	var sourceBranches map[string]map[string]string
	if remoteArea, areaExists := client.areas[filepath.Clean(remoteURL)]; areaExists {
		sourceBranches = remoteArea.branches
	} else if remoteRepository, repositoryExists := client.repositories[remoteURL]; repositoryExists {
		sourceBranches = remoteRepository.Branches
	} else {
		return CommandFailure(128, fmt.Sprintf(unknownRemoteTemplateConstant, remoteURL))
	}

	for branch, files := range sourceBranches {
		area.fetched[fmt.Sprintf(remoteReferenceTemplateConstant, remoteName, branch)] = copyFiles(files)
	}
	return nil
}

// ShowHistoryGraph records the preview graph request.
func (client *FakeClient) ShowHistoryGraph(_ context.Context, repositoryPath string) error {
	_, failure := client.area(OperationShowHistoryGraph, repositoryPath)
	if failure != nil {
		return failure
	}
	client.mutex.Unlock()
	return nil
}

// ShowTrackedFiles records the preview listing request for a fetched reference.
func (client *FakeClient) ShowTrackedFiles(_ context.Context, repositoryPath string, reference string) error {
	area, failure := client.area(OperationShowTrackedFiles, repositoryPath)
	if failure != nil {
		return failure
	}
	defer client.mutex.Unlock()
	if _, exists := area.fetched[reference]; !exists {
		return CommandFailure(128, fmt.Sprintf(unknownRevisionTemplateConstant, reference))
	}
	return nil
}

// ShowDiff records a diff request.
func (client *FakeClient) ShowDiff(_ context.Context, repositoryPath string, _ string, _ string) error {
	_, failure := client.area(OperationShowDiff, repositoryPath)
	if failure != nil {
		return failure
	}
	client.mutex.Unlock()
	return nil
}

// ShowDiffStat records a diffstat request.
func (client *FakeClient) ShowDiffStat(_ context.Context, repositoryPath string, _ string, _ string) error {
	_, failure := client.area(OperationShowDiffStat, repositoryPath)
	if failure != nil {
		return failure
	}
	client.mutex.Unlock()
	return nil
}

// Merge combines a fetched reference into the current branch, leaving conflicts for differing shared paths.
func (client *FakeClient) Merge(_ context.Context, repositoryPath string, options gitrepo.MergeOptions) error {
	area, failure := client.area(OperationMerge, repositoryPath)
	if failure != nil {
		return failure
	}
	defer client.mutex.Unlock()

	if client.UnrelatedHistoriesFailures > 0 {
		client.UnrelatedHistoriesFailures--
		return CommandFailure(128, unrelatedHistoriesMessageConstant)
	}

	incomingFiles, exists := area.fetched[options.Reference]
	if !exists {
		return CommandFailure(1, fmt.Sprintf(unknownRevisionTemplateConstant, options.Reference))
	}

	mergedFiles := copyFiles(area.tree)
	conflicts := map[string]conflictVersions{}
	for _, filePath := range sortedKeys(incomingFiles) {
		incomingContent := incomingFiles[filePath]
		baseContent, baseExists := mergedFiles[filePath]
		switch {
		case !baseExists:
			mergedFiles[filePath] = incomingContent
		case baseContent == incomingContent:
		case options.StrategyOption == gitrepo.ConflictSideOurs && !client.ConflictsIgnoreStrategyOption:
		case options.StrategyOption == gitrepo.ConflictSideTheirs && !client.ConflictsIgnoreStrategyOption:
			mergedFiles[filePath] = incomingContent
		default:
			conflicts[filePath] = conflictVersions{ours: baseContent, oursPresent: true, theirs: incomingContent, theirsPresent: true}
			mergedFiles[filePath] = fmt.Sprintf(conflictMarkerTemplateConstant, baseContent, incomingContent, options.Reference)
		}
	}

	area.tree = mergedFiles
	if len(conflicts) == 0 {
		area.branches[area.currentBranch] = copyFiles(mergedFiles)
		return nil
	}

	area.conflicts = conflicts
	area.merging = true
	conflictLines := make([]string, 0, len(conflicts))
	for _, filePath := range sortedKeys(conflicts) {
		conflictLines = append(conflictLines, fmt.Sprintf(conflictLineTemplateConstant, filePath))
	}
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result: execshell.ExecutionResult{
			ExitCode:       1,
			StandardOutput: strings.Join(conflictLines, "\n"),
			StandardError:  mergeConflictMessageConstant,
		},
	}
}

// ListConflictingPaths lists the shared paths whose content differs between the current tree and a fetched reference.
func (client *FakeClient) ListConflictingPaths(_ context.Context, repositoryPath string, reference string) ([]string, error) {
	area, failure := client.area(OperationListConflictingPaths, repositoryPath)
	if failure != nil {
		return nil, failure
	}
	defer client.mutex.Unlock()

	incomingFiles, exists := area.fetched[reference]
	if !exists {
		return nil, CommandFailure(128, fmt.Sprintf(unknownRevisionTemplateConstant, reference))
	}
	conflictingPaths := []string{}
	for _, filePath := range sortedKeys(incomingFiles) {
		if baseContent, baseExists := area.tree[filePath]; baseExists && baseContent != incomingFiles[filePath] {
			conflictingPaths = append(conflictingPaths, filePath)
		}
	}
	return conflictingPaths, nil
}

// ListUnmergedPaths lists the conflicted paths that are not staged yet.
func (client *FakeClient) ListUnmergedPaths(_ context.Context, repositoryPath string) ([]string, error) {
	area, failure := client.area(OperationListUnmergedPaths, repositoryPath)
	if failure != nil {
		return nil, failure
	}
	defer client.mutex.Unlock()
	return sortedKeys(area.conflicts), nil
}

// CheckoutConflictSide replaces a conflicted path with one side's content.
func (client *FakeClient) CheckoutConflictSide(_ context.Context, repositoryPath string, side gitrepo.ConflictSide, filePath string) error {
	area, failure := client.area(OperationCheckoutConflictSide, repositoryPath)
	if failure != nil {
		return failure
	}
	defer client.mutex.Unlock()

	versions, exists := area.conflicts[filePath]
	if !exists {
		return CommandFailure(1, fmt.Sprintf(unknownBranchTemplateConstant, filePath))
	}
	content, present := versions.ours, versions.oursPresent
	if side == gitrepo.ConflictSideTheirs {
		content, present = versions.theirs, versions.theirsPresent
	}
	if !present {
		return CommandFailure(1, fmt.Sprintf(missingSideTemplateConstant, filePath, side))
	}
	area.tree[filePath] = content
	return nil
}

// RemovePath deletes a path and clears its conflict.
func (client *FakeClient) RemovePath(_ context.Context, repositoryPath string, filePath string) error {
	area, failure := client.area(OperationRemovePath, repositoryPath)
	if failure != nil {
		return failure
	}
	defer client.mutex.Unlock()
	delete(area.tree, filePath)
	delete(area.conflicts, filePath)
	return nil
}

// StagePath marks a path as resolved.
func (client *FakeClient) StagePath(_ context.Context, repositoryPath string, filePath string) error {
	area, failure := client.area(OperationStagePath, repositoryPath)
	if failure != nil {
		return failure
	}
	defer client.mutex.Unlock()
	delete(area.conflicts, filePath)
	return nil
}

// CommitMerge concludes the pending merge once every conflict is staged.
func (client *FakeClient) CommitMerge(_ context.Context, repositoryPath string) error {
	area, failure := client.area(OperationCommitMerge, repositoryPath)
	if failure != nil {
		return failure
	}
	defer client.mutex.Unlock()

	if !area.merging {
		return CommandFailure(128, noMergeMessageConstant)
	}
	if len(area.conflicts) > 0 {
		return CommandFailure(1, unmergedFilesMessageConstant)
	}
	area.branches[area.currentBranch] = copyFiles(area.tree)
	area.merging = false
	return nil
}

// Push records a push of the working copy.
func (client *FakeClient) Push(_ context.Context, repositoryPath string, _ string, _ string) error {
	_, failure := client.area(OperationPush, repositoryPath)
	if failure != nil {
		return failure
	}
	defer client.mutex.Unlock()
	client.pushes = append(client.pushes, filepath.Clean(repositoryPath))
	return nil
}

// MoveHistoryToSubdirectory prefixes every path of every local branch with subdirectory and drops origin, as git-filter-repo does.
func (client *FakeClient) MoveHistoryToSubdirectory(_ context.Context, repositoryPath string, subdirectory string) error {
	area, failure := client.area(OperationRelocate, repositoryPath)
	if failure != nil {
		return failure
	}
	defer client.mutex.Unlock()

	for branch, files := range area.branches {
		area.branches[branch] = prefixFiles(files, subdirectory)
	}
	area.tree = prefixFiles(area.tree, subdirectory)
	delete(area.remotes, originRemoteNameConstant)
	return nil
}

// HeadPaths lists the committed paths of the current branch.
func (client *FakeClient) HeadPaths(repositoryPath string) ([]string, error) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	area, exists := client.areas[filepath.Clean(repositoryPath)]
	if !exists {
		return nil, fmt.Errorf(unknownAreaTemplateConstant, repositoryPath)
	}
	return sortedKeys(area.branches[area.currentBranch]), nil
}

func (client *FakeClient) begin(operation Operation) error {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	client.calls = append(client.calls, operation)
	return client.Failures[operation]
}

// area records the call and returns the working copy with the mutex held when no error is returned.
func (client *FakeClient) area(operation Operation, repositoryPath string) (*workingCopy, error) {
	client.mutex.Lock()
	client.calls = append(client.calls, operation)
	if failure := client.Failures[operation]; failure != nil {
		client.mutex.Unlock()
		return nil, failure
	}
	area, exists := client.areas[filepath.Clean(repositoryPath)]
	if !exists {
		client.mutex.Unlock()
		return nil, CommandFailure(128, fmt.Sprintf(unknownAreaTemplateConstant, repositoryPath))
	}
	if _, statError := os.Stat(filepath.Join(repositoryPath, gitDirectoryNameConstant)); statError != nil {
		delete(client.areas, filepath.Clean(repositoryPath))
		client.mutex.Unlock()
		return nil, CommandFailure(128, fmt.Sprintf(unknownAreaTemplateConstant, repositoryPath))
	}
	return area, nil
}

func prefixFiles(files map[string]string, subdirectory string) map[string]string {
	prefixed := make(map[string]string, len(files))
	for filePath, content := range files {
		prefixed[subdirectory+pathJoinSeparatorConstant+filePath] = content
	}
	return prefixed
}

func copyFiles(files map[string]string) map[string]string {
	copied := make(map[string]string, len(files))
	for filePath, content := range files {
		copied[filePath] = content
	}
	return copied
}

func sortedKeys[Value any](values map[string]Value) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
