package branches

import "context"

// RemoteInspector exposes the git queries used to describe remote branches.
type RemoteInspector interface {
	ListRemoteBranches(executionContext context.Context, repositoryPath string) (string, error)
	DescribeRemote(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
	LastCommitDate(executionContext context.Context, repositoryPath string, branch string) (string, error)
}
