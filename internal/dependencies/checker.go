// Package dependencies verifies that the external tools a merge session runs are installed.
package dependencies

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	// GitExecutableName is the git binary.
	GitExecutableName = "git"
	// FilterRepoExecutableName is the git-filter-repo binary.
	FilterRepoExecutableName = "git-filter-repo"

	missingDependencyTemplateConstant = "missing required tools: %s (install git and git-filter-repo, e.g. pip install git-filter-repo)"
	missingNamesSeparatorConstant     = ", "
	logMessageDependencyFoundConstant = "Dependency found"
	logFieldExecutableConstant        = "executable"
	logFieldPathConstant              = "path"
)

// RequiredExecutables lists the tools every session needs.
var RequiredExecutables = []string{GitExecutableName, FilterRepoExecutableName}

// MissingDependencyError lists executables that could not be found on PATH.
type MissingDependencyError struct {
	Executables []string
}

// Error describes the missing executables.
func (missingError MissingDependencyError) Error() string {
	return fmt.Sprintf(missingDependencyTemplateConstant, strings.Join(missingError.Executables, missingNamesSeparatorConstant))
}

// LookPathFunc resolves an executable name to its path.
type LookPathFunc func(executable string) (string, error)

// Checker resolves required executables before any work starts.
type Checker struct {
	logger   *zap.Logger
	lookPath LookPathFunc
}

// NewChecker constructs a Checker. A nil lookPath selects exec.LookPath; a nil logger discards output.
func NewChecker(logger *zap.Logger, lookPath LookPathFunc) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	return &Checker{logger: logger, lookPath: lookPath}
}

// Check resolves every executable and reports all missing ones together.
func (checker *Checker) Check(executables ...string) error {
	if len(executables) == 0 {
		executables = RequiredExecutables
	}
	missing := lo.Filter(executables, func(executable string, _ int) bool {
		resolvedPath, lookupError := checker.lookPath(executable)
		if lookupError != nil {
			return true
		}
		checker.logger.Debug(logMessageDependencyFoundConstant, zap.String(logFieldExecutableConstant, executable), zap.String(logFieldPathConstant, resolvedPath))
		return false
	})
	if len(missing) > 0 {
		return MissingDependencyError{Executables: missing}
	}
	return nil
}
