package relocate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	openRepositoryErrorTemplateConstant = "open %s: %w"
	readHeadErrorTemplateConstant       = "read HEAD of %s: %w"
	readTreeErrorTemplateConstant       = "read HEAD tree of %s: %w"
)

// GoGitTreeInspector reads HEAD trees directly from the object database.
type GoGitTreeInspector struct{}

// NewGoGitTreeInspector constructs a GoGitTreeInspector.
func NewGoGitTreeInspector() GoGitTreeInspector {
	return GoGitTreeInspector{}
}

// HeadPaths lists every file tracked by HEAD, sorted. A repository without commits has no paths.
func (GoGitTreeInspector) HeadPaths(repositoryPath string) ([]string, error) {
	repository, openError := git.PlainOpen(repositoryPath)
	if openError != nil {
		return nil, fmt.Errorf(openRepositoryErrorTemplateConstant, repositoryPath, openError)
	}

	headReference, headError := repository.Head()
	if errors.Is(headError, plumbing.ErrReferenceNotFound) {
		return []string{}, nil
	} else if headError != nil {
		return nil, fmt.Errorf(readHeadErrorTemplateConstant, repositoryPath, headError)
	}

	commit, commitError := repository.CommitObject(headReference.Hash())
	if commitError != nil {
		return nil, fmt.Errorf(readTreeErrorTemplateConstant, repositoryPath, commitError)
	}
	tree, treeError := commit.Tree()
	if treeError != nil {
		return nil, fmt.Errorf(readTreeErrorTemplateConstant, repositoryPath, treeError)
	}

	trackedPaths := make([]string, 0)
	iterationError := tree.Files().ForEach(func(file *object.File) error {
		trackedPaths = append(trackedPaths, file.Name)
		return nil
	})
	if iterationError != nil {
		return nil, fmt.Errorf(readTreeErrorTemplateConstant, repositoryPath, iterationError)
	}

	sort.Strings(trackedPaths)
	return trackedPaths, nil
}
