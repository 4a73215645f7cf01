package gitrepo

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

const (
	gitSuffixConstant                   = ".git"
	urlPathSeparatorConstant            = "/"
	fileProtocolConstant                = "file"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	localSourceMessageConstant          = "not a network remote"
	missingRepositoryMessageConstant    = "missing owner or repository"
)

// RemoteProtocol is the transport named by a clone source.
type RemoteProtocol string

// Network protocols a remote may use.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
	RemoteProtocolGit   RemoteProtocol = RemoteProtocol("git")
)

// RemoteURL is a network clone source split into its parts. Owner keeps nested groups joined by "/".
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a clone source is not a network remote with an owner and repository.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL splits an https, http, git or ssh remote (including the scp-like user@host:path form).
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	endpoint, endpointError := transport.NewEndpoint(trimmedRemote)
	if endpointError != nil {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: endpointError.Error()}
	}
	if endpoint.Protocol == fileProtocolConstant {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: localSourceMessageConstant}
	}

	owner, repository := splitRepositoryPath(endpoint.Path)
	if len(owner) == 0 || len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: missingRepositoryMessageConstant}
	}
	return RemoteURL{Protocol: RemoteProtocol(endpoint.Protocol), Host: endpoint.Host, Owner: owner, Repository: repository}, nil
}

// RepositoryName derives a repository name from any clone source, local paths included. It returns "" when none can be derived.
func RepositoryName(source string) string {
	trimmedSource := strings.TrimSpace(source)
	if len(trimmedSource) == 0 {
		return ""
	}
	endpoint, endpointError := transport.NewEndpoint(trimmedSource)
	if endpointError != nil {
		return ""
	}
	_, repository := splitRepositoryPath(endpoint.Path)
	return repository
}

func splitRepositoryPath(repositoryPath string) (string, string) {
	cleanedPath := strings.Trim(path.Clean(strings.ReplaceAll(repositoryPath, `\`, urlPathSeparatorConstant)), urlPathSeparatorConstant)
	if len(cleanedPath) == 0 || cleanedPath == "." {
		return "", ""
	}
	owner, repository := path.Split(cleanedPath)
	return strings.Trim(owner, urlPathSeparatorConstant), strings.TrimSuffix(repository, gitSuffixConstant)
}
