package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

const (
	baseDirectoryNameConstant             = "base_repo"
	incomingDirectoryNameConstant         = "merge_repo"
	gitDirectoryNameConstant              = ".git"
	completePercentConstant               = 100
	writableDirectoryModeConstant         = fs.FileMode(0o700)
	writableFileModeConstant              = fs.FileMode(0o600)
	cloneErrorTemplateConstant            = "cloning %s into the %s working area exited with status %d"
	unknownRoleTemplateConstant           = "unknown working area role %q"
	removeErrorTemplateConstant           = "remove %s working area %s: %w"
	loggerNotConfiguredMessageConstant    = "workspace logger not configured"
	clonerNotConfiguredMessageConstant    = "workspace cloner not configured"
	logMessageRemovingAreaConstant        = "Removing working area"
	logMessageChmodFailedConstant         = "Unable to make path writable"
	logMessageRetryingRemovalConstant     = "Working area removal denied, retrying with writable permissions"
	logMessageCloneProgressConstant       = "Clone progress"
	logFieldRoleConstant                  = "role"
	logFieldPathConstant                  = "path"
	logFieldPercentConstant               = "percent"
	logFieldOffendingPathConstant         = "offending_path"
	progressPercentExpressionConstant     = `(\d{1,3})%`
	defaultWorkspaceRootDirectoryConstant = "."
)

// Role identifies one of the two working areas.
type Role string

// Working area roles.
const (
	RoleBase     Role = Role("base")
	RoleIncoming Role = Role("incoming")
)

// Roles lists every role in acquisition order.
var Roles = []Role{RoleBase, RoleIncoming}

var (
	// ErrLoggerNotConfigured indicates a nil logger was supplied.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrClonerNotConfigured indicates a nil cloner was supplied.
	ErrClonerNotConfigured = errors.New(clonerNotConfiguredMessageConstant)
)

var progressPercentPattern = regexp.MustCompile(progressPercentExpressionConstant)

// WorkingArea describes one on-disk working copy.
type WorkingArea struct {
	Role   Role
	Path   string
	Exists bool
}

// Cloner clones a repository and returns the exit status of the clone.
type Cloner interface {
	Clone(executionContext context.Context, sourceURL string, destinationPath string, progressHandler func(line string)) (int, error)
}

// ProgressReporter receives clone progress for a working area.
type ProgressReporter interface {
	CloneStarted(role Role, sourceURL string)
	CloneProgressed(role Role, percent int)
	CloneFinished(role Role, exitStatus int)
}

// CloneError reports a clone that exited with a non-zero status.
type CloneError struct {
	Role       Role
	SourceURL  string
	ExitStatus int
}

// Error describes the failed clone.
func (cloneError CloneError) Error() string {
	return fmt.Sprintf(cloneErrorTemplateConstant, cloneError.SourceURL, cloneError.Role, cloneError.ExitStatus)
}

// Manager owns the base and incoming working areas under a workspace root.
type Manager struct {
	logger     *zap.Logger
	cloner     Cloner
	fileSystem FileSystem
	paths      map[Role]string
}

// NewManager constructs a Manager rooted at rootDirectory. An empty root selects the working directory.
func NewManager(logger *zap.Logger, cloner Cloner, fileSystem FileSystem, rootDirectory string) (*Manager, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if cloner == nil {
		return nil, ErrClonerNotConfigured
	}
	if fileSystem == nil {
		fileSystem = OSFileSystem{}
	}
	if len(rootDirectory) == 0 {
		rootDirectory = defaultWorkspaceRootDirectoryConstant
	}

	absoluteRoot, absoluteError := fileSystem.Abs(rootDirectory)
	if absoluteError != nil {
		return nil, absoluteError
	}

	return &Manager{
		logger:     logger,
		cloner:     cloner,
		fileSystem: fileSystem,
		paths: map[Role]string{
			RoleBase:     filepath.Join(absoluteRoot, baseDirectoryNameConstant),
			RoleIncoming: filepath.Join(absoluteRoot, incomingDirectoryNameConstant),
		},
	}, nil
}

// Area describes the working area for role as it currently exists on disk.
func (manager *Manager) Area(role Role) WorkingArea {
	areaPath := manager.paths[role]
	return WorkingArea{Role: role, Path: areaPath, Exists: manager.isWorkingCopy(areaPath)}
}

// Exists reports whether the working area for role holds a git working copy.
func (manager *Manager) Exists(role Role) bool {
	return manager.Area(role).Exists
}

// Acquire clones sourceURL into the working area for role and returns the clone exit status.
// A non-zero status is returned without an error; errors report clones that could not run.
func (manager *Manager) Acquire(executionContext context.Context, sourceURL string, role Role, reporter ProgressReporter) (int, error) {
	areaPath, known := manager.paths[role]
	if !known {
		return 0, fmt.Errorf(unknownRoleTemplateConstant, role)
	}

	tracker := newProgressTracker(manager.logger, role, reporter)
	if reporter != nil {
		reporter.CloneStarted(role, sourceURL)
	}

	exitStatus, cloneError := manager.cloner.Clone(executionContext, sourceURL, areaPath, tracker.consume)
	if cloneError != nil {
		if reporter != nil {
			reporter.CloneFinished(role, -1)
		}
		return 0, cloneError
	}

	if exitStatus == 0 {
		tracker.report(completePercentConstant)
	}
	if reporter != nil {
		reporter.CloneFinished(role, exitStatus)
	}
	return exitStatus, nil
}

// DestroyAll removes both working areas. Missing areas are skipped, so repeated calls are no-ops.
func (manager *Manager) DestroyAll() error {
	var aggregated *multierror.Error
	for _, role := range Roles {
		if removalError := manager.destroy(role); removalError != nil {
			aggregated = multierror.Append(aggregated, removalError)
		}
	}
	return aggregated.ErrorOrNil()
}

func (manager *Manager) destroy(role Role) error {
	areaPath := manager.paths[role]
	if _, statError := manager.fileSystem.Lstat(areaPath); errors.Is(statError, fs.ErrNotExist) {
		return nil
	}

	manager.logger.Debug(logMessageRemovingAreaConstant, zap.String(logFieldRoleConstant, string(role)), zap.String(logFieldPathConstant, areaPath))

	removalError := manager.fileSystem.RemoveAll(areaPath)
	if removalError == nil {
		return nil
	}
	if !errors.Is(removalError, fs.ErrPermission) {
		return fmt.Errorf(removeErrorTemplateConstant, role, areaPath, removalError)
	}

	offendingPath := areaPath
	var pathError *fs.PathError
	if errors.As(removalError, &pathError) && len(pathError.Path) > 0 {
		offendingPath = pathError.Path
	}
	manager.logger.Debug(logMessageRetryingRemovalConstant, zap.String(logFieldPathConstant, areaPath), zap.String(logFieldOffendingPathConstant, offendingPath))
	manager.makeWritable(offendingPath)
	if offendingPath != areaPath {
		manager.makeWritable(filepath.Dir(offendingPath))
	}

	if retryError := manager.fileSystem.RemoveAll(areaPath); retryError != nil {
		return fmt.Errorf(removeErrorTemplateConstant, role, areaPath, retryError)
	}
	return nil
}

func (manager *Manager) makeWritable(targetPath string) {
	fileInfo, statError := manager.fileSystem.Lstat(targetPath)
	if statError != nil {
		return
	}
	mode := writableFileModeConstant
	if fileInfo.IsDir() {
		mode = writableDirectoryModeConstant
	}
	if chmodError := manager.fileSystem.Chmod(targetPath, fileInfo.Mode().Perm()|mode); chmodError != nil {
		manager.logger.Debug(logMessageChmodFailedConstant, zap.String(logFieldPathConstant, targetPath), zap.Error(chmodError))
	}
}

func (manager *Manager) isWorkingCopy(areaPath string) bool {
	fileInfo, statError := manager.fileSystem.Lstat(filepath.Join(areaPath, gitDirectoryNameConstant))
	return statError == nil && fileInfo.IsDir()
}

// progressTracker converts clone progress lines into monotonically increasing percentages.
type progressTracker struct {
	logger   *zap.Logger
	role     Role
	reporter ProgressReporter
	highest  int
}

func newProgressTracker(logger *zap.Logger, role Role, reporter ProgressReporter) *progressTracker {
	return &progressTracker{logger: logger, role: role, reporter: reporter, highest: -1}
}

func (tracker *progressTracker) consume(line string) {
	percent, found := ParseProgressPercent(line)
	if !found {
		return
	}
	tracker.report(percent)
}

func (tracker *progressTracker) report(percent int) {
	if percent <= tracker.highest {
		return
	}
	tracker.highest = percent
	tracker.logger.Debug(logMessageCloneProgressConstant, zap.String(logFieldRoleConstant, string(tracker.role)), zap.Int(logFieldPercentConstant, percent))
	if tracker.reporter != nil {
		tracker.reporter.CloneProgressed(tracker.role, percent)
	}
}

// ParseProgressPercent extracts the percentage marker from a git progress line.
func ParseProgressPercent(line string) (int, bool) {
	match := progressPercentPattern.FindStringSubmatch(line)
	if len(match) < 2 {
		return 0, false
	}
	percent, conversionError := strconv.Atoi(match[1])
	if conversionError != nil || percent > completePercentConstant {
		return 0, false
	}
	return percent, true
}
