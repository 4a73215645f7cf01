package relocate

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	relocationErrorTemplateConstant       = "relocating %s under %s failed: %v"
	outsidePathsTemplateConstant          = "%d paths remain outside %s, first %s"
	invalidSubdirectoryTemplateConstant   = "invalid subdirectory %q: %s"
	subdirectoryRequiredMessageConstant   = "value required"
	subdirectoryAbsoluteMessageConstant   = "must be relative"
	subdirectoryParentMessageConstant     = "must not contain .. segments"
	subdirectoryUncleanMessageConstant    = "must be a clean path"
	subdirectoryFlagLikeMessageConstant   = "must not start with -"
	loggerNotConfiguredMessageConstant    = "relocate logger not configured"
	toolNotConfiguredMessageConstant      = "history relocation tool not configured"
	inspectorNotConfiguredMessageConstant = "tree inspector not configured"
	parentDirectorySegmentConstant        = ".."
	currentDirectorySegmentConstant       = "."
	pathSeparatorConstant                 = "/"
	flagPrefixConstant                    = "-"
	logMessageRelocationVerifiedConstant  = "Relocated history verified"
	logFieldRepositoryPathConstant        = "repository_path"
	logFieldSubdirectoryConstant          = "subdirectory"
	logFieldTrackedPathCountConstant      = "tracked_paths"
)

var (
	// ErrLoggerNotConfigured indicates a nil logger was supplied.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrToolNotConfigured indicates a nil relocation tool was supplied.
	ErrToolNotConfigured = errors.New(toolNotConfiguredMessageConstant)
	// ErrInspectorNotConfigured indicates a nil tree inspector was supplied.
	ErrInspectorNotConfigured = errors.New(inspectorNotConfiguredMessageConstant)
)

// RelocationError reports a failed history rewrite. The working copy is unusable afterwards.
type RelocationError struct {
	RepositoryPath string
	Subdirectory   string
	Cause          error
}

// Error describes the relocation failure.
func (relocationError RelocationError) Error() string {
	return fmt.Sprintf(relocationErrorTemplateConstant, relocationError.RepositoryPath, relocationError.Subdirectory, relocationError.Cause)
}

// Unwrap exposes the underlying cause.
func (relocationError RelocationError) Unwrap() error {
	return relocationError.Cause
}

// InvalidSubdirectoryError reports a subdirectory that cannot host relocated history.
type InvalidSubdirectoryError struct {
	Subdirectory string
	Reason       string
}

// Error describes the invalid subdirectory.
func (subdirectoryError InvalidSubdirectoryError) Error() string {
	return fmt.Sprintf(invalidSubdirectoryTemplateConstant, subdirectoryError.Subdirectory, subdirectoryError.Reason)
}

// ValidateSubdirectory accepts relative, clean, slash separated paths without parent segments.
func ValidateSubdirectory(subdirectory string) error {
	trimmedSubdirectory := strings.TrimSpace(subdirectory)
	switch {
	case len(trimmedSubdirectory) == 0:
		return InvalidSubdirectoryError{Subdirectory: subdirectory, Reason: subdirectoryRequiredMessageConstant}
	case filepath.IsAbs(trimmedSubdirectory) || strings.HasPrefix(trimmedSubdirectory, pathSeparatorConstant):
		return InvalidSubdirectoryError{Subdirectory: subdirectory, Reason: subdirectoryAbsoluteMessageConstant}
	case lo.Contains(strings.Split(filepath.ToSlash(trimmedSubdirectory), pathSeparatorConstant), parentDirectorySegmentConstant):
		return InvalidSubdirectoryError{Subdirectory: subdirectory, Reason: subdirectoryParentMessageConstant}
	case strings.HasPrefix(trimmedSubdirectory, flagPrefixConstant):
		return InvalidSubdirectoryError{Subdirectory: subdirectory, Reason: subdirectoryFlagLikeMessageConstant}
	case path.Clean(filepath.ToSlash(trimmedSubdirectory)) != trimmedSubdirectory || trimmedSubdirectory == currentDirectorySegmentConstant:
		return InvalidSubdirectoryError{Subdirectory: subdirectory, Reason: subdirectoryUncleanMessageConstant}
	}
	return nil
}

// PathsOutside returns the paths that do not live under subdirectory.
func PathsOutside(paths []string, subdirectory string) []string {
	prefix := strings.TrimSuffix(subdirectory, pathSeparatorConstant) + pathSeparatorConstant
	return lo.Filter(paths, func(trackedPath string, _ int) bool {
		return !strings.HasPrefix(trackedPath, prefix)
	})
}

// CountPathsUnder counts the paths that live under subdirectory.
func CountPathsUnder(paths []string, subdirectory string) int {
	return len(paths) - len(PathsOutside(paths, subdirectory))
}

// Relocator moves the history of a working copy under a subdirectory.
type Relocator struct {
	logger    *zap.Logger
	tool      HistoryRelocationTool
	inspector TreeInspector
}

// NewRelocator constructs a Relocator.
func NewRelocator(logger *zap.Logger, tool HistoryRelocationTool, inspector TreeInspector) (*Relocator, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if tool == nil {
		return nil, ErrToolNotConfigured
	}
	if inspector == nil {
		return nil, ErrInspectorNotConfigured
	}
	return &Relocator{logger: logger, tool: tool, inspector: inspector}, nil
}

// Relocate rewrites the history once and verifies every HEAD path lies under subdirectory.
// Failures are never retried.
func (relocator *Relocator) Relocate(executionContext context.Context, repositoryPath string, subdirectory string) error {
	if validationError := ValidateSubdirectory(subdirectory); validationError != nil {
		return RelocationError{RepositoryPath: repositoryPath, Subdirectory: subdirectory, Cause: validationError}
	}
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	if relocationError := relocator.tool.MoveHistoryToSubdirectory(executionContext, repositoryPath, subdirectory); relocationError != nil {
		return RelocationError{RepositoryPath: repositoryPath, Subdirectory: subdirectory, Cause: relocationError}
	}

	headPaths, inspectionError := relocator.inspector.HeadPaths(repositoryPath)
	if inspectionError != nil {
		return RelocationError{RepositoryPath: repositoryPath, Subdirectory: subdirectory, Cause: inspectionError}
	}

	outsidePaths := PathsOutside(headPaths, subdirectory)
	if len(outsidePaths) > 0 {
		return RelocationError{
			RepositoryPath: repositoryPath,
			Subdirectory:   subdirectory,
			Cause:          fmt.Errorf(outsidePathsTemplateConstant, len(outsidePaths), subdirectory, outsidePaths[0]),
		}
	}

	relocator.logger.Debug(
		logMessageRelocationVerifiedConstant,
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.String(logFieldSubdirectoryConstant, subdirectory),
		zap.Int(logFieldTrackedPathCountConstant, len(headPaths)),
	)
	return nil
}

// IsRelocated reports whether every HEAD path of the working copy already lives under subdirectory.
func (relocator *Relocator) IsRelocated(repositoryPath string, subdirectory string) (bool, error) {
	headPaths, inspectionError := relocator.inspector.HeadPaths(repositoryPath)
	if inspectionError != nil {
		return false, inspectionError
	}
	return len(headPaths) > 0 && len(PathsOutside(headPaths, subdirectory)) == 0, nil
}
