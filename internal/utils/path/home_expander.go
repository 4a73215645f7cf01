// Package pathutils normalizes user-supplied filesystem paths.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts leading "~" shortcuts in flag and configuration values to the user's home directory.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander; a nil provider selects os.UserHomeDir.
func NewHomeExpander(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand trims candidatePath and resolves a leading "~" or "~/" prefix. Other values, including "~user", pass through.
func (expander *HomeExpander) Expand(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if expander == nil || !strings.HasPrefix(trimmedPath, tildeSymbolConstant) {
		return trimmedPath
	}

	homeDirectory := expander.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return trimmedPath
	}

	switch {
	case trimmedPath == tildeSymbolConstant:
		return homeDirectory
	case strings.HasPrefix(trimmedPath, tildeForwardSlashPrefixConstant):
		return filepath.Join(homeDirectory, strings.TrimPrefix(trimmedPath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(trimmedPath, tildeSymbolConstant+string(os.PathSeparator)):
		return filepath.Join(homeDirectory, strings.TrimPrefix(trimmedPath, tildeSymbolConstant+string(os.PathSeparator)))
	default:
		return trimmedPath
	}
}

// ExpandAll expands every referenced value in place.
func (expander *HomeExpander) ExpandAll(paths ...*string) {
	for _, pathReference := range paths {
		if pathReference == nil {
			continue
		}
		*pathReference = expander.Expand(*pathReference)
	}
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}
