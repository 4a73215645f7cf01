package branches

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/temirov/repomerge/internal/gitrepo"
)

const (
	// UnavailableTimestamp marks a branch whose last commit date could not be read.
	UnavailableTimestamp = "N/A"
	// FallbackBranch is used when a repository lists no branches at all.
	FallbackBranch = "main"

	originRemoteNameConstant              = "origin"
	symbolicReferenceMarkerConstant       = "->"
	headReferenceNameConstant             = "HEAD"
	remotePrefixSeparatorConstant         = "/"
	commitTimestampLayoutConstant         = "2006-01-02 15:04:05 -0700"
	loggerNotConfiguredMessageConstant    = "branch probe logger not configured"
	inspectorNotConfiguredMessageConstant = "branch probe inspector not configured"
	logMessageDefaultBranchUnknown        = "Remote default branch could not be determined"
	logMessageCommitDateUnavailable       = "Last commit date unavailable"
	logFieldRepositoryPathConstant        = "repository_path"
	logFieldBranchConstant                = "branch"
)

var (
	// ErrLoggerNotConfigured indicates a nil logger was supplied.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrInspectorNotConfigured indicates a nil remote inspector was supplied.
	ErrInspectorNotConfigured = errors.New(inspectorNotConfiguredMessageConstant)
)

// BranchInfo pairs a remote branch with its last commit timestamp or UnavailableTimestamp.
type BranchInfo struct {
	Name                string
	LastCommitTimestamp string
}

// Description summarizes the remote branches of a working copy.
type Description struct {
	Branches []BranchInfo
	// DefaultBranch is the branch to offer first: the advertised default when listed, else the first branch, else FallbackBranch.
	DefaultBranch string
}

// Names returns the branch names in listing order.
func (description Description) Names() []string {
	return lo.Map(description.Branches, func(info BranchInfo, _ int) string {
		return info.Name
	})
}

// Contains reports whether branch is among the described branches.
func (description Description) Contains(branch string) bool {
	return lo.Contains(description.Names(), branch)
}

// MostRecentBranch returns the branch with the newest parsable commit timestamp, or "" when none parse.
func (description Description) MostRecentBranch() string {
	mostRecentName := ""
	var mostRecentTime time.Time
	for _, info := range description.Branches {
		commitTime, parseError := time.Parse(commitTimestampLayoutConstant, info.LastCommitTimestamp)
		if parseError != nil {
			continue
		}
		if len(mostRecentName) == 0 || commitTime.After(mostRecentTime) {
			mostRecentName = info.Name
			mostRecentTime = commitTime
		}
	}
	return mostRecentName
}

// Probe inspects the remote branches of a cloned working copy.
type Probe struct {
	logger    *zap.Logger
	inspector RemoteInspector
}

// NewProbe constructs a Probe.
func NewProbe(logger *zap.Logger, inspector RemoteInspector) (*Probe, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if inspector == nil {
		return nil, ErrInspectorNotConfigured
	}
	return &Probe{logger: logger, inspector: inspector}, nil
}

// ListRemoteBranches returns the deduplicated, sorted remote branch names without the HEAD alias.
func (probe *Probe) ListRemoteBranches(executionContext context.Context, repositoryPath string) ([]string, error) {
	listing, listingError := probe.inspector.ListRemoteBranches(executionContext, repositoryPath)
	if listingError != nil {
		return nil, listingError
	}
	return ParseRemoteBranches(listing), nil
}

// DefaultBranch returns the remote's advertised default branch, or "" when it cannot be determined.
func (probe *Probe) DefaultBranch(executionContext context.Context, repositoryPath string) string {
	remoteDescription, describeError := probe.inspector.DescribeRemote(executionContext, repositoryPath, originRemoteNameConstant)
	if describeError != nil {
		probe.logger.Debug(logMessageDefaultBranchUnknown, zap.String(logFieldRepositoryPathConstant, repositoryPath), zap.Error(describeError))
		return ""
	}
	return gitrepo.ParseHeadBranch(remoteDescription)
}

// LastCommitDates looks up one timestamp per branch; a failed lookup yields UnavailableTimestamp for that branch only.
func (probe *Probe) LastCommitDates(executionContext context.Context, repositoryPath string, branchNames []string) map[string]string {
	commitDates := make(map[string]string, len(branchNames))
	for _, branchName := range branchNames {
		commitDate, lookupError := probe.inspector.LastCommitDate(executionContext, repositoryPath, branchName)
		if lookupError != nil || len(strings.TrimSpace(commitDate)) == 0 {
			probe.logger.Debug(logMessageCommitDateUnavailable, zap.String(logFieldBranchConstant, branchName), zap.Error(lookupError))
			commitDates[branchName] = UnavailableTimestamp
			continue
		}
		commitDates[branchName] = strings.TrimSpace(commitDate)
	}
	return commitDates
}

// Describe lists the remote branches with their commit dates and resolves the branch to offer by default.
func (probe *Probe) Describe(executionContext context.Context, repositoryPath string) (Description, error) {
	branchNames, listingError := probe.ListRemoteBranches(executionContext, repositoryPath)
	if listingError != nil {
		return Description{}, listingError
	}

	commitDates := probe.LastCommitDates(executionContext, repositoryPath, branchNames)
	branchInfos := lo.Map(branchNames, func(branchName string, _ int) BranchInfo {
		return BranchInfo{Name: branchName, LastCommitTimestamp: commitDates[branchName]}
	})

	return Description{
		Branches:      branchInfos,
		DefaultBranch: ResolveDefaultBranch(probe.DefaultBranch(executionContext, repositoryPath), branchNames),
	}, nil
}

// ResolveDefaultBranch applies the fallback chain: advertised default if listed, first listed branch, FallbackBranch.
func ResolveDefaultBranch(advertisedDefault string, branchNames []string) string {
	if len(advertisedDefault) > 0 && lo.Contains(branchNames, advertisedDefault) {
		return advertisedDefault
	}
	if len(branchNames) > 0 {
		return branchNames[0]
	}
	return FallbackBranch
}

// ParseRemoteBranches converts `git branch -r` output into sorted unique branch names.
func ParseRemoteBranches(listing string) []string {
	branchNames := make([]string, 0)
	for _, line := range strings.Split(listing, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 || strings.Contains(trimmedLine, symbolicReferenceMarkerConstant) {
			continue
		}
		_, branchName, hasRemotePrefix := strings.Cut(trimmedLine, remotePrefixSeparatorConstant)
		if !hasRemotePrefix || len(branchName) == 0 || branchName == headReferenceNameConstant {
			continue
		}
		branchNames = append(branchNames, branchName)
	}

	uniqueBranchNames := lo.Uniq(branchNames)
	sort.Strings(uniqueBranchNames)
	return uniqueBranchNames
}
